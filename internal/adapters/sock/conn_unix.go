//go:build linux || darwin

package sock

import (
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// conn is a blocking socket descriptor. Deadlines are translated into
// SO_RCVTIMEO/SO_SNDTIMEO before every call.
type conn struct {
	fd int

	mu            sync.Mutex
	readDeadline  time.Time
	writeDeadline time.Time

	closeOnce sync.Once
	closeErr  error
}

func newConn(fd int) *conn { return &conn{fd: fd} }

func (c *conn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := c.applyTimeout(unix.SO_RCVTIMEO, c.deadline(&c.readDeadline)); err != nil {
		return 0, err
	}
	for {
		n, err := unix.Read(c.fd, p)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, os.ErrDeadlineExceeded
		case err != nil:
			return 0, os.NewSyscallError("read", err)
		case n == 0:
			return 0, io.EOF
		}
		return n, nil
	}
}

// Write loops until p is fully written; send(2) may accept fewer bytes.
func (c *conn) Write(p []byte) (int, error) {
	if err := c.applyTimeout(unix.SO_SNDTIMEO, c.deadline(&c.writeDeadline)); err != nil {
		return 0, err
	}
	written := 0
	for written < len(p) {
		n, err := unix.Write(c.fd, p[written:])
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return written, os.ErrDeadlineExceeded
		case err != nil:
			return written, os.NewSyscallError("write", err)
		}
		written += n
	}
	return written, nil
}

func (c *conn) Close() error {
	c.closeOnce.Do(func() {
		if err := unix.Close(c.fd); err != nil {
			c.closeErr = os.NewSyscallError("close", err)
		}
	})
	return c.closeErr
}

// Deadlines only take effect on the next Read or Write; a call already
// blocked in the kernel keeps the timeout it started with.
func (c *conn) SetReadDeadline(t time.Time) error {
	c.mu.Lock()
	c.readDeadline = t
	c.mu.Unlock()
	return nil
}

func (c *conn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	c.writeDeadline = t
	c.mu.Unlock()
	return nil
}

func (c *conn) deadline(d *time.Time) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *d
}

func (c *conn) applyTimeout(opt int, deadline time.Time) error {
	var tv unix.Timeval
	if !deadline.IsZero() {
		left := time.Until(deadline)
		if left <= 0 {
			return os.ErrDeadlineExceeded
		}
		if left < time.Microsecond {
			left = time.Microsecond
		}
		tv = unix.NsecToTimeval(left.Nanoseconds())
	}
	if err := unix.SetsockoptTimeval(c.fd, unix.SOL_SOCKET, opt, &tv); err != nil {
		return os.NewSyscallError("setsockopt", err)
	}
	return nil
}
