package domain

import "errors"

// Transport error kinds. Each one corresponds to a distinct step of a
// one-shot call and can be checked with errors.Is.
var (
	// ErrSocketCreateFailed is returned when no stream socket could be acquired.
	ErrSocketCreateFailed = errors.New("socket creation failed")

	// ErrConnectFailed is returned when the connection could not be established.
	ErrConnectFailed = errors.New("connection to server failed")

	// ErrSendFailed is returned when the serialized request could not be written.
	ErrSendFailed = errors.New("failed to send request")

	// ErrReceiveFailed is returned when reading the response failed.
	ErrReceiveFailed = errors.New("failed to receive response")
)

// TransportError reports a failed step of a one-shot call.
type TransportError struct {
	// Kind is one of the Err*Failed sentinels.
	Kind error
	// Addr is the "host:port" of the peer.
	Addr string
	// Err is the underlying platform error.
	Err error
}

// NewTransportError wraps err with the given kind. An error that already is
// a *TransportError is returned unchanged.
func NewTransportError(kind error, addr string, err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Kind: kind, Addr: addr, Err: err}
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the underlying error to errors.Is/As.
func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
