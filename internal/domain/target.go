package domain

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

// ErrInvalidTarget is reported for a Target that was not built by NewTarget.
var ErrInvalidTarget = errors.New("target has no IPv4 address")

// Target identifies the peer of a single request.
// Host is always an IPv4 literal; no name resolution is ever performed.
// The zero Target is not valid.
type Target struct {
	addr netip.Addr
	port int
}

// NewTarget validates host and port and returns an immutable Target.
func NewTarget(host string, port int) (Target, error) {
	addr, err := netip.ParseAddr(host)
	if err != nil || !addr.Is4() {
		return Target{}, fmt.Errorf("host %q is not an IPv4 literal", host)
	}
	if port < 0 || port > 65535 {
		return Target{}, fmt.Errorf("port %d out of range 0-65535", port)
	}
	return Target{addr: addr, port: port}, nil
}

// Valid reports whether t holds an IPv4 address.
func (t Target) Valid() bool { return t.addr.Is4() }

// Host returns the IPv4 literal, or "" for an invalid Target.
func (t Target) Host() string {
	if !t.Valid() {
		return ""
	}
	return t.addr.String()
}

// Port returns the numeric port.
func (t Target) Port() int { return t.port }

// Addr4 returns the host as four raw bytes; all zero for an invalid Target.
func (t Target) Addr4() [4]byte {
	if !t.Valid() {
		return [4]byte{}
	}
	return t.addr.As4()
}

// Addr returns "host:port".
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host(), strconv.Itoa(t.port))
}

func (t Target) String() string { return t.Addr() }
