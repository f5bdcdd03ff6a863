// Package domain contains the core value objects of oneshot.
//
// It has no dependencies on infrastructure concerns (sockets, file system,
// logging) and contains only the request model and the error taxonomy.
//
// # Entities
//
//   - [Target]: IPv4 literal and port of the peer
//   - [Request]: method, path, ordered headers and raw body of one request
//   - [RawResponse]: unparsed bytes captured from the peer
//   - [Exchange]: transcript record of one request/response cycle
//
// # Errors
//
// Every transport failure is a *[TransportError] whose kind is one of
// [ErrSocketCreateFailed], [ErrConnectFailed], [ErrSendFailed] or
// [ErrReceiveFailed]. Use errors.Is to check the kind.
package domain
