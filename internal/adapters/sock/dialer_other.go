//go:build !linux && !darwin

package sock

import (
	"context"

	"github.com/rwslabs/oneshot/internal/domain"
	"github.com/rwslabs/oneshot/internal/ports"
)

// Dial always fails on this platform.
func (d *Dialer) Dial(ctx context.Context, target domain.Target) (ports.Conn, error) {
	return nil, domain.NewTransportError(domain.ErrSocketCreateFailed, target.Addr(), ErrUnsupported)
}
