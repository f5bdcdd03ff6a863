// Package client implements the one-shot HTTP client: one connection, one
// request written in full, one raw response captured, connection released.
package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/rwslabs/oneshot/internal/domain"
	"github.com/rwslabs/oneshot/internal/ports"
	"github.com/rwslabs/oneshot/internal/wire"
)

const (
	// DefaultMaxResponseBytes is the response cap used when Options leaves it unset.
	DefaultMaxResponseBytes = 1 << 20

	// DefaultIdleTimeout is the idle gap used when Options leaves it unset.
	DefaultIdleTimeout = 2 * time.Second
)

var aLongTimeAgo = time.Unix(1, 0)

// Options tune how the response is captured.
type Options struct {
	// MaxResponseBytes caps the captured response. Bytes past the cap are
	// left unread.
	MaxResponseBytes int

	// IdleTimeout ends the receive loop once at least one byte arrived and
	// the peer then stays silent this long. Zero selects DefaultIdleTimeout;
	// a negative value waits for EOF, the cap or the context deadline.
	IdleTimeout time.Duration

	// SingleRead performs exactly one read instead of draining the stream.
	SingleRead bool
}

// Client sends one request per call. It holds no connection state and is
// safe for concurrent use; every call opens its own socket.
type Client struct {
	dialer ports.Dialer
	opts   Options
}

// New creates a Client that acquires sockets through dialer.
func New(dialer ports.Dialer, opts Options) *Client {
	if opts.MaxResponseBytes <= 0 {
		opts.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	return &Client{dialer: dialer, opts: opts}
}

// Send connects to target, writes req in full and returns the raw bytes the
// peer sent back. The context deadline, if any, bounds every step.
//
// Failures are *domain.TransportError values; the connection is released
// on every path.
func (c *Client) Send(ctx context.Context, target domain.Target, req domain.Request) (domain.RawResponse, error) {
	payload := wire.Encode(req)
	addr := target.Addr()

	conn, err := c.dialer.Dial(ctx, target)
	if err != nil {
		return nil, domain.NewTransportError(domain.ErrConnectFailed, addr, err)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	if !deadline.IsZero() {
		conn.SetWriteDeadline(deadline)
		conn.SetReadDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		conn.SetWriteDeadline(aLongTimeAgo)
		conn.SetReadDeadline(aLongTimeAgo)
	})
	defer stop()

	if _, err := wire.WriteFull(conn, payload); err != nil {
		return nil, domain.NewTransportError(domain.ErrSendFailed, addr, err)
	}

	resp, err := c.receive(ctx, conn, deadline)
	if err != nil {
		return nil, domain.NewTransportError(domain.ErrReceiveFailed, addr, err)
	}
	return resp, nil
}

func (c *Client) receive(ctx context.Context, conn ports.Conn, deadline time.Time) (domain.RawResponse, error) {
	if c.opts.SingleRead {
		buf := make([]byte, c.opts.MaxResponseBytes)
		n, err := conn.Read(buf)
		if n == 0 && err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return domain.RawResponse(buf[:n]), nil
	}

	r := &idleReader{ctx: ctx, conn: conn, idle: c.opts.IdleTimeout, deadline: deadline}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(io.LimitReader(r, int64(c.opts.MaxResponseBytes))); err != nil {
		return nil, err
	}
	return domain.RawResponse(buf.Bytes()), nil
}

// idleReader turns a read deadline that expires after data has arrived into
// io.EOF, so a peer that keeps the connection open still yields a response.
// This holds for the idle gap and the overall deadline alike; only
// cancellation discards what was received.
type idleReader struct {
	ctx      context.Context
	conn     ports.Conn
	idle     time.Duration
	deadline time.Time
	received bool
}

func (r *idleReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, r.end(err)
	}
	if r.received && r.idle > 0 {
		d := time.Now().Add(r.idle)
		if !r.deadline.IsZero() && r.deadline.Before(d) {
			d = r.deadline
		}
		r.conn.SetReadDeadline(d)
		// The cancel hook may have fired before the deadline above replaced its own.
		if err := r.ctx.Err(); err != nil {
			return 0, r.end(err)
		}
	}

	n, err := r.conn.Read(p)
	if n > 0 {
		r.received = true
	}
	if err != nil && errors.Is(err, os.ErrDeadlineExceeded) {
		return n, r.end(err)
	}
	return n, err
}

// end maps a stop condition to the reader's result: io.EOF once data has
// arrived, unless the call was canceled.
func (r *idleReader) end(err error) error {
	if ctxErr := r.ctx.Err(); errors.Is(ctxErr, context.Canceled) {
		return ctxErr
	}
	if r.received {
		return io.EOF
	}
	return err
}
