package wire

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/rwslabs/oneshot/internal/domain"
)

const (
	// DefaultPath is the endpoint exercised by default.
	DefaultPath = "/web_server"

	// ContentTypeJSON is the only content type the client sends.
	ContentTypeJSON = "application/json"
)

// NewPostRequest builds the canonical request: POST with Host,
// Authorization and Content-Type headers in that order. The API key is
// placed verbatim into the Authorization header.
func NewPostRequest(target domain.Target, path, apiKey string, body []byte) domain.Request {
	if path == "" {
		path = DefaultPath
	}
	return domain.Request{
		Method: "POST",
		Path:   path,
		Header: domain.Header{}.
			Add("Host", target.Addr()).
			Add("Authorization", apiKey).
			Add("Content-Type", ContentTypeJSON),
		Body: body,
	}
}

// Encode returns the serialized request.
func Encode(r domain.Request) []byte {
	var buf bytes.Buffer
	buf.Grow(encodedHeadLen(r) + len(r.Body))
	_, _ = WriteTo(&buf, r)
	return buf.Bytes()
}

// WriteTo writes the serialized request to w and returns the number of
// bytes written.
func WriteTo(w io.Writer, r domain.Request) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	bw.WriteString(r.Method)
	bw.WriteByte(' ')
	bw.WriteString(r.Path)
	bw.WriteString(" HTTP/1.1\r\n")

	for _, f := range r.Header {
		// Content-Length is never taken from the caller.
		if strings.EqualFold(f.Name, "Content-Length") {
			continue
		}
		bw.WriteString(f.Name)
		bw.WriteString(": ")
		bw.WriteString(f.Value)
		bw.WriteString("\r\n")
	}
	bw.WriteString("Content-Length: ")
	bw.WriteString(strconv.Itoa(len(r.Body)))
	bw.WriteString("\r\n\r\n")
	bw.Write(r.Body)

	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

func encodedHeadLen(r domain.Request) int {
	n := len(r.Method) + 1 + len(r.Path) + len(" HTTP/1.1\r\n")
	for _, f := range r.Header {
		n += len(f.Name) + 2 + len(f.Value) + 2
	}
	return n + len("Content-Length: \r\n\r\n") + 20
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
