package app

import (
	"os"

	"github.com/rwslabs/oneshot/internal/payload"
)

// BodySource yields the request body for each send.
type BodySource interface {
	Load() ([]byte, error)
}

// StaticBody is a fixed body.
type StaticBody []byte

func (b StaticBody) Load() ([]byte, error) { return []byte(b), nil }

// FileBody reads the body from a file on every send. Watch mode requires it.
type FileBody string

func (f FileBody) Load() ([]byte, error) { return os.ReadFile(string(f)) }

// PayloadBody renders a service call.
type PayloadBody payload.Payload

func (p PayloadBody) Load() ([]byte, error) { return payload.Build(payload.Payload(p)) }
