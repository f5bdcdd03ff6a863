package ports

import (
	"context"
	"io"
	"time"

	"github.com/rwslabs/oneshot/internal/domain"
)

// Conn is a connected, bidirectional byte stream.
// *net.TCPConn satisfies this interface.
type Conn interface {
	io.ReadWriteCloser

	// SetReadDeadline bounds future Read calls. A zero value disables it.
	// Reads past the deadline fail with an error matching os.ErrDeadlineExceeded.
	SetReadDeadline(t time.Time) error

	// SetWriteDeadline bounds future Write calls. A zero value disables it.
	SetWriteDeadline(t time.Time) error
}

// Dialer acquires a stream socket and connects it to the target.
//
// Implementations MUST release the socket before returning an error, and
// MUST report failures as *domain.TransportError with kind
// domain.ErrSocketCreateFailed or domain.ErrConnectFailed.
// A Dialer holds no connection state and may be shared.
type Dialer interface {
	Dial(ctx context.Context, target domain.Target) (Conn, error)
}
