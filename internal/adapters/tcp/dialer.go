package tcp

import (
	"context"
	"errors"
	"net"
	"os"

	"github.com/rwslabs/oneshot/internal/domain"
	"github.com/rwslabs/oneshot/internal/ports"
)

// Dialer implements ports.Dialer with the standard library network poller.
// Only IPv4 is dialed; the target is always a literal so no lookup happens.
type Dialer struct {
	dialer net.Dialer
}

// NewDialer creates a Dialer. Keep-alive probes are disabled because every
// connection carries exactly one request.
func NewDialer() *Dialer {
	return &Dialer{dialer: net.Dialer{KeepAlive: -1}}
}

var _ ports.Dialer = (*Dialer)(nil)

// Dial connects to target over tcp4.
func (d *Dialer) Dial(ctx context.Context, target domain.Target) (ports.Conn, error) {
	if !target.Valid() {
		return nil, domain.NewTransportError(domain.ErrConnectFailed, target.Addr(), domain.ErrInvalidTarget)
	}
	conn, err := d.dialer.DialContext(ctx, "tcp4", target.Addr())
	if err != nil {
		return nil, domain.NewTransportError(classify(err), target.Addr(), err)
	}
	return conn, nil
}

// classify tells socket(2) failures apart from connect(2) failures.
func classify(err error) error {
	var se *os.SyscallError
	if errors.As(err, &se) && se.Syscall == "socket" {
		return domain.ErrSocketCreateFailed
	}
	return domain.ErrConnectFailed
}
