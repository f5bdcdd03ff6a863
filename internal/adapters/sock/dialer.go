// Package sock implements ports.Dialer directly on top of socket(2),
// connect(2), write(2) and read(2), without the Go network poller.
//
// Each failed step maps to its own transport error kind, which makes the
// package useful when the exact failing system call matters.
package sock

import (
	"errors"
	"fmt"
	"time"

	"github.com/rwslabs/oneshot/internal/ports"
)

// ErrUnsupported is returned by Dial on platforms without BSD sockets support
// in golang.org/x/sys/unix.
var ErrUnsupported = fmt.Errorf("raw socket transport: %w", errors.ErrUnsupported)

// pollSlice bounds each poll(2) wait so cancellation is noticed promptly.
const pollSlice = 50 * time.Millisecond

// Dialer implements ports.Dialer with raw IPv4 stream sockets.
type Dialer struct{}

// NewDialer creates a Dialer.
func NewDialer() *Dialer { return &Dialer{} }

var _ ports.Dialer = (*Dialer)(nil)
