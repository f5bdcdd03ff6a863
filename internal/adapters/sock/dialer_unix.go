//go:build linux || darwin

package sock

import (
	"context"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/rwslabs/oneshot/internal/domain"
	"github.com/rwslabs/oneshot/internal/ports"
)

// Dial creates an AF_INET stream socket and connects it to target. The
// socket is closed before any error is returned.
func (d *Dialer) Dial(ctx context.Context, target domain.Target) (ports.Conn, error) {
	addr := target.Addr()
	if !target.Valid() {
		return nil, domain.NewTransportError(domain.ErrConnectFailed, addr, domain.ErrInvalidTarget)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, domain.NewTransportError(domain.ErrSocketCreateFailed, addr, os.NewSyscallError("socket", err))
	}
	unix.CloseOnExec(fd)

	sa := &unix.SockaddrInet4{Port: target.Port(), Addr: target.Addr4()}
	if err := connect(ctx, fd, sa); err != nil {
		unix.Close(fd)
		return nil, domain.NewTransportError(domain.ErrConnectFailed, addr, err)
	}
	return newConn(fd), nil
}

// connect performs a non-blocking connect so the context can bound it, then
// switches the socket back to blocking mode for the request itself.
func connect(ctx context.Context, fd int, sa unix.Sockaddr) error {
	if err := unix.SetNonblock(fd, true); err != nil {
		return os.NewSyscallError("setnonblock", err)
	}
	switch err := unix.Connect(fd, sa); err {
	case nil:
	case unix.EINPROGRESS, unix.EALREADY, unix.EINTR:
		if err := waitConnected(ctx, fd); err != nil {
			return err
		}
	default:
		return os.NewSyscallError("connect", err)
	}
	if err := unix.SetNonblock(fd, false); err != nil {
		return os.NewSyscallError("setnonblock", err)
	}
	return nil
}

func waitConnected(ctx context.Context, fd int) error {
	pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		wait := pollSlice
		if deadline, ok := ctx.Deadline(); ok {
			left := time.Until(deadline)
			if left <= 0 {
				return context.DeadlineExceeded
			}
			if left < wait {
				wait = left
			}
		}

		n, err := unix.Poll(pfd, int(wait.Milliseconds()))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return os.NewSyscallError("poll", err)
		}
		if n == 0 {
			continue
		}

		soerr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if err != nil {
			return os.NewSyscallError("getsockopt", err)
		}
		if soerr != 0 {
			return os.NewSyscallError("connect", unix.Errno(soerr))
		}
		return nil
	}
}
