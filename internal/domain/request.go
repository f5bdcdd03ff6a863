package domain

import "strings"

// HeaderField is a single request header line.
type HeaderField struct {
	Name  string
	Value string
}

// Header is an ordered list of header fields. Order is preserved on the wire.
type Header []HeaderField

// Add appends a field and returns the extended header.
func (h Header) Add(name, value string) Header {
	return append(h, HeaderField{Name: name, Value: value})
}

// Get returns the value of the first field whose name matches
// case-insensitively.
func (h Header) Get(name string) (string, bool) {
	for _, f := range h {
		if strings.EqualFold(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

// Request describes one HTTP/1.1 request.
//
// The body length is not stored: Content-Length is always derived from Body
// when the request is serialized.
type Request struct {
	Method string
	Path   string
	Header Header
	Body   []byte
}
