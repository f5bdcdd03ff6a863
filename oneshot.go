// Package oneshot sends a single HTTP/1.1 request over a fresh TCP
// connection and returns whatever bytes the server sends back, unparsed.
//
// Example usage:
//
//	target, err := oneshot.NewTarget("127.0.0.1", 5000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	req := oneshot.NewPostRequest(target, "/web_server", "your_api_key", body)
//	resp, err := oneshot.Send(ctx, target, req)
//	if errors.Is(err, oneshot.ErrConnectFailed) {
//	    // nobody listening
//	}
package oneshot

import (
	"context"

	"github.com/rwslabs/oneshot/internal/adapters/sock"
	"github.com/rwslabs/oneshot/internal/adapters/tcp"
	"github.com/rwslabs/oneshot/internal/client"
	"github.com/rwslabs/oneshot/internal/domain"
	"github.com/rwslabs/oneshot/internal/wire"
)

// Target is an IPv4 literal plus a TCP port.
type Target = domain.Target

// Request is an HTTP/1.1 request with ordered headers and a raw body.
type Request = domain.Request

// Header is an ordered header list.
type Header = domain.Header

// RawResponse holds the exact bytes received, unparsed.
type RawResponse = domain.RawResponse

// TransportError reports which step of an exchange failed.
type TransportError = domain.TransportError

// Options tune how the response is captured.
type Options = client.Options

// Client sends one request per call.
type Client = client.Client

// Failure kinds, matched with errors.Is.
var (
	ErrSocketCreateFailed = domain.ErrSocketCreateFailed
	ErrConnectFailed      = domain.ErrConnectFailed
	ErrSendFailed         = domain.ErrSendFailed
	ErrReceiveFailed      = domain.ErrReceiveFailed
)

// DefaultPath is the request path used by the service endpoint.
const DefaultPath = wire.DefaultPath

// NewTarget validates host as an IPv4 literal and port as 0-65535.
func NewTarget(host string, port int) (Target, error) {
	return domain.NewTarget(host, port)
}

// NewPostRequest builds a POST with Host, Authorization and a JSON content type.
func NewPostRequest(target Target, path, apiKey string, body []byte) Request {
	return wire.NewPostRequest(target, path, apiKey, body)
}

// Encode returns the exact bytes written for r.
func Encode(r Request) []byte {
	return wire.Encode(r)
}

// NewClient returns a Client using the standard library network stack.
func NewClient(opts Options) *Client {
	return client.New(tcp.NewDialer(), opts)
}

// NewSyscallClient returns a Client that drives the socket through raw
// system calls. It is available on Linux and macOS.
func NewSyscallClient(opts Options) *Client {
	return client.New(sock.NewDialer(), opts)
}

// Send performs one exchange with default options.
func Send(ctx context.Context, target Target, req Request) (RawResponse, error) {
	return NewClient(Options{}).Send(ctx, target, req)
}
