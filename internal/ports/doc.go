// Package ports defines the interfaces that connect the one-shot client and
// the runner to infrastructure adapters.
//
// # Port Interfaces
//
//   - [Dialer]: acquires a connected stream socket to a target
//   - [Conn]: the byte stream a request is written to and a response read from
//   - [TranscriptRepository]: persists the record of the last exchange
//
// # Usage
//
// internal/client and internal/app depend only on these interfaces.
// internal/adapters implements them with net.Dialer, raw unix sockets and
// the file system.
package ports
