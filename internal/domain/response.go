package domain

// RawResponse holds the bytes returned by the peer, verbatim and unparsed.
type RawResponse []byte

func (r RawResponse) String() string { return string(r) }

// Len returns the number of bytes captured.
func (r RawResponse) Len() int { return len(r) }
