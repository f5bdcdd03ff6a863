// Package wire serializes requests into HTTP/1.1 message syntax.
//
// Only the request side is implemented: responses are never parsed.
// The encoder writes, in order:
//
//	METHOD PATH HTTP/1.1\r\n
//	Name: Value\r\n          (caller headers, caller order)
//	Content-Length: N\r\n    (always derived from the body)
//	\r\n
//	body
package wire
