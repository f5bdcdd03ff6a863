package client

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/net/nettest"

	"github.com/rwslabs/oneshot/internal/adapters/sock"
	"github.com/rwslabs/oneshot/internal/adapters/tcp"
	"github.com/rwslabs/oneshot/internal/domain"
	"github.com/rwslabs/oneshot/internal/ports"
	"github.com/rwslabs/oneshot/internal/wire"
)

type namedDialer struct {
	name   string
	dialer ports.Dialer
}

func dialers(t *testing.T) []namedDialer {
	t.Helper()
	ds := []namedDialer{{name: "net", dialer: tcp.NewDialer()}}
	if runtime.GOOS == "linux" || runtime.GOOS == "darwin" {
		ds = append(ds, namedDialer{name: "syscall", dialer: sock.NewDialer()})
	}
	return ds
}

// stubServer accepts one connection and hands it to handle.
func stubServer(t *testing.T, handle func(c net.Conn)) domain.Target {
	t.Helper()
	ln, err := nettest.NewLocalListener("tcp4")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		handle(c)
	}()

	addr := ln.Addr().(*net.TCPAddr)
	target, err := domain.NewTarget(addr.IP.String(), addr.Port)
	if err != nil {
		t.Fatal(err)
	}
	return target
}

// readRequest consumes one serialized request: the header block and as many
// body bytes as its Content-Length announces.
func readRequest(c net.Conn) ([]byte, error) {
	br := bufio.NewReader(c)
	var raw bytes.Buffer
	length := 0
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return raw.Bytes(), err
		}
		raw.WriteString(line)
		if line == "\r\n" {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			length, _ = strconv.Atoi(strings.TrimSpace(v))
		}
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(br, body); err != nil {
		return raw.Bytes(), err
	}
	raw.Write(body)
	return raw.Bytes(), nil
}

func closedPort(t *testing.T) domain.Target {
	t.Helper()
	ln, err := nettest.NewLocalListener("tcp4")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()
	target, _ := domain.NewTarget(addr.IP.String(), addr.Port)
	return target
}

func TestSend_PongScenario(t *testing.T) {
	for _, d := range dialers(t) {
		t.Run(d.name, func(t *testing.T) {
			received := make(chan []byte, 1)
			target := stubServer(t, func(c net.Conn) {
				raw, err := readRequest(c)
				received <- raw
				if err != nil {
					return
				}
				c.Write([]byte("HTTP/1.1 200 OK\r\n\r\npong"))
			})
			req := wire.NewPostRequest(target, "/web_server", "k1", []byte(`{"a":1}`))

			resp, err := New(d.dialer, Options{}).Send(context.Background(), target, req)
			if err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			if got, want := resp.String(), "HTTP/1.1 200 OK\r\n\r\npong"; got != want {
				t.Errorf("response = %q, want %q", got, want)
			}

			wantReq := "POST /web_server HTTP/1.1\r\n" +
				"Host: " + target.Addr() + "\r\n" +
				"Authorization: k1\r\n" +
				"Content-Type: application/json\r\n" +
				"Content-Length: 7\r\n\r\n" +
				`{"a":1}`
			if got := string(<-received); got != wantReq {
				t.Errorf("server received %q, want %q", got, wantReq)
			}
		})
	}
}

func TestSend_EchoReturnsPeerBytesVerbatim(t *testing.T) {
	body := []byte("{\"bin\":\"\x00\xff\"}")
	for _, d := range dialers(t) {
		t.Run(d.name, func(t *testing.T) {
			target := stubServer(t, func(c net.Conn) {
				raw, err := readRequest(c)
				if err != nil {
					return
				}
				c.Write(raw)
			})
			req := wire.NewPostRequest(target, "/echo", "key", body)

			resp, err := New(d.dialer, Options{}).Send(context.Background(), target, req)
			if err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			if !bytes.Equal(resp, wire.Encode(req)) {
				t.Errorf("echo mismatch:\n got %q\nwant %q", resp, wire.Encode(req))
			}
		})
	}
}

func TestSend_ResponseCappedAtMaxResponseBytes(t *testing.T) {
	for _, d := range dialers(t) {
		for _, single := range []bool{false, true} {
			name := d.name + "/drain"
			if single {
				name = d.name + "/single"
			}
			t.Run(name, func(t *testing.T) {
				target := stubServer(t, func(c net.Conn) {
					if _, err := readRequest(c); err != nil {
						return
					}
					c.Write(bytes.Repeat([]byte("x"), 5000))
				})
				req := wire.NewPostRequest(target, "", "k", nil)

				cl := New(d.dialer, Options{MaxResponseBytes: 100, SingleRead: single})
				resp, err := cl.Send(context.Background(), target, req)
				if err != nil {
					t.Fatalf("Send() error = %v", err)
				}
				if resp.Len() > 100 {
					t.Errorf("response length = %d, want <= 100", resp.Len())
				}
				if !single && resp.Len() != 100 {
					t.Errorf("drained response length = %d, want 100", resp.Len())
				}
			})
		}
	}
}

func TestSend_EmptyResponseIsNotAnError(t *testing.T) {
	for _, d := range dialers(t) {
		for _, single := range []bool{false, true} {
			t.Run(d.name, func(t *testing.T) {
				target := stubServer(t, func(c net.Conn) {
					readRequest(c)
				})
				req := wire.NewPostRequest(target, "", "k", nil)

				resp, err := New(d.dialer, Options{SingleRead: single}).Send(context.Background(), target, req)
				if err != nil {
					t.Fatalf("Send() error = %v", err)
				}
				if resp.Len() != 0 {
					t.Errorf("response = %q, want empty", resp)
				}
			})
		}
	}
}

func TestSend_ConnectRefused(t *testing.T) {
	for _, d := range dialers(t) {
		t.Run(d.name, func(t *testing.T) {
			target := closedPort(t)
			req := wire.NewPostRequest(target, "", "k", []byte("{}"))

			_, err := New(d.dialer, Options{}).Send(context.Background(), target, req)
			if !errors.Is(err, domain.ErrConnectFailed) {
				t.Fatalf("Send() error = %v, want ErrConnectFailed", err)
			}
			var te *domain.TransportError
			if !errors.As(err, &te) || te.Addr != target.Addr() {
				t.Errorf("TransportError = %+v", te)
			}
		})
	}
}

func openFDs(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skip("descriptor table not inspectable on this platform")
	}
	return len(entries)
}

func TestSend_NoDescriptorLeakOnFailure(t *testing.T) {
	for _, d := range dialers(t) {
		t.Run(d.name, func(t *testing.T) {
			target := closedPort(t)
			req := wire.NewPostRequest(target, "", "k", nil)
			cl := New(d.dialer, Options{})

			before := openFDs(t)
			for i := 0; i < 200; i++ {
				if _, err := cl.Send(context.Background(), target, req); err == nil {
					t.Fatal("Send() to closed port succeeded")
				}
			}
			// Allow a little slack for runtime-owned descriptors.
			if after := openFDs(t); after > before+5 {
				t.Errorf("open descriptors grew from %d to %d", before, after)
			}
		})
	}
}

func TestSend_IdleTimeoutEndsResponse(t *testing.T) {
	for _, d := range dialers(t) {
		t.Run(d.name, func(t *testing.T) {
			release := make(chan struct{})
			t.Cleanup(func() { close(release) })
			target := stubServer(t, func(c net.Conn) {
				if _, err := readRequest(c); err != nil {
					return
				}
				c.Write([]byte("HTTP/1.1 200 OK\r\n\r\npartial"))
				<-release
			})
			req := wire.NewPostRequest(target, "", "k", nil)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			start := time.Now()
			resp, err := New(d.dialer, Options{IdleTimeout: 50 * time.Millisecond}).Send(ctx, target, req)
			if err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			if resp.String() != "HTTP/1.1 200 OK\r\n\r\npartial" {
				t.Errorf("response = %q", resp)
			}
			if elapsed := time.Since(start); elapsed > 5*time.Second {
				t.Errorf("Send() took %v, idle timeout not applied", elapsed)
			}
		})
	}
}

func TestSend_SilentPeerTimesOut(t *testing.T) {
	for _, d := range dialers(t) {
		t.Run(d.name, func(t *testing.T) {
			release := make(chan struct{})
			t.Cleanup(func() { close(release) })
			target := stubServer(t, func(c net.Conn) { <-release })
			req := wire.NewPostRequest(target, "", "k", nil)

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_, err := New(d.dialer, Options{IdleTimeout: time.Second}).Send(ctx, target, req)
			if !errors.Is(err, domain.ErrReceiveFailed) {
				t.Fatalf("Send() error = %v, want ErrReceiveFailed", err)
			}
		})
	}
}

type fakeConn struct {
	readErr  error
	writeErr error
	closed   bool
	written  bytes.Buffer
}

func (f *fakeConn) Read(p []byte) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	return 0, io.EOF
}

func (f *fakeConn) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.written.Write(p)
}

func (f *fakeConn) Close() error                     { f.closed = true; return nil }
func (f *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }

type fakeDialer struct {
	conn *fakeConn
	err  error
}

func (f *fakeDialer) Dial(context.Context, domain.Target) (ports.Conn, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.conn, nil
}

func TestSend_ErrorKinds(t *testing.T) {
	target, _ := domain.NewTarget("127.0.0.1", 5000)
	req := wire.NewPostRequest(target, "", "k", []byte("{}"))
	errPeer := errors.New("connection reset by peer")

	tests := []struct {
		name       string
		dialer     *fakeDialer
		wantKind   error
		wantClosed bool
	}{
		{
			name:     "plain dial error becomes connect failure",
			dialer:   &fakeDialer{err: errPeer},
			wantKind: domain.ErrConnectFailed,
		},
		{
			name:     "socket failure kind preserved",
			dialer:   &fakeDialer{err: domain.NewTransportError(domain.ErrSocketCreateFailed, target.Addr(), errPeer)},
			wantKind: domain.ErrSocketCreateFailed,
		},
		{
			name:       "write failure",
			dialer:     &fakeDialer{conn: &fakeConn{writeErr: errPeer}},
			wantKind:   domain.ErrSendFailed,
			wantClosed: true,
		},
		{
			name:       "read failure",
			dialer:     &fakeDialer{conn: &fakeConn{readErr: errPeer}},
			wantKind:   domain.ErrReceiveFailed,
			wantClosed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.dialer, Options{}).Send(context.Background(), target, req)
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("Send() error = %v, want kind %v", err, tt.wantKind)
			}
			if !errors.Is(err, errPeer) {
				t.Errorf("underlying error lost: %v", err)
			}
			if tt.wantClosed && !tt.dialer.conn.closed {
				t.Error("connection not released")
			}
		})
	}
}

func TestSend_WritesWholeRequest(t *testing.T) {
	target, _ := domain.NewTarget("127.0.0.1", 5000)
	req := wire.NewPostRequest(target, "", "k", []byte(strings.Repeat("a", 10000)))
	conn := &fakeConn{}

	if _, err := New(&fakeDialer{conn: conn}, Options{}).Send(context.Background(), target, req); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(conn.written.Bytes(), wire.Encode(req)) {
		t.Error("written bytes differ from encoded request")
	}
	if !conn.closed {
		t.Error("connection not released")
	}
}

// keepAliveReply answers the request and then holds the connection open
// until the client closes it.
func keepAliveReply(reply string) func(c net.Conn) {
	return func(c net.Conn) {
		if _, err := readRequest(c); err != nil {
			return
		}
		c.Write([]byte(reply))
		io.Copy(io.Discard, c)
	}
}

func TestSend_KeepAlivePeerAtDeadline(t *testing.T) {
	const reply = "HTTP/1.1 200 OK\r\n\r\npong"
	for _, d := range dialers(t) {
		t.Run(d.name, func(t *testing.T) {
			target := stubServer(t, keepAliveReply(reply))
			req := wire.NewPostRequest(target, "", "k", []byte("{}"))

			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()
			resp, err := New(d.dialer, Options{IdleTimeout: -1}).Send(ctx, target, req)
			if err != nil {
				t.Fatalf("Send() error = %v, want the bytes already received", err)
			}
			if resp.String() != reply {
				t.Errorf("response = %q, want %q", resp, reply)
			}
		})
	}
}

func TestSend_KeepAlivePeerDefaultOptions(t *testing.T) {
	const reply = "HTTP/1.1 200 OK\r\n\r\npong"
	for _, d := range dialers(t) {
		t.Run(d.name, func(t *testing.T) {
			target := stubServer(t, keepAliveReply(reply))
			req := wire.NewPostRequest(target, "", "k", []byte("{}"))

			type result struct {
				resp domain.RawResponse
				err  error
			}
			done := make(chan result, 1)
			go func() {
				resp, err := New(d.dialer, Options{}).Send(context.Background(), target, req)
				done <- result{resp, err}
			}()

			select {
			case res := <-done:
				if res.err != nil {
					t.Fatalf("Send() error = %v", res.err)
				}
				if res.resp.String() != reply {
					t.Errorf("response = %q, want %q", res.resp, reply)
				}
			case <-time.After(DefaultIdleTimeout + 5*time.Second):
				t.Fatal("Send() still blocked after the response arrived")
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantIdle time.Duration
		wantMax  int
	}{
		{name: "zero options", opts: Options{}, wantIdle: DefaultIdleTimeout, wantMax: DefaultMaxResponseBytes},
		{name: "explicit values kept", opts: Options{IdleTimeout: time.Second, MaxResponseBytes: 10}, wantIdle: time.Second, wantMax: 10},
		{name: "negative idle disables", opts: Options{IdleTimeout: -1}, wantIdle: -1, wantMax: DefaultMaxResponseBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&fakeDialer{}, tt.opts)
			if c.opts.IdleTimeout != tt.wantIdle {
				t.Errorf("IdleTimeout = %v, want %v", c.opts.IdleTimeout, tt.wantIdle)
			}
			if c.opts.MaxResponseBytes != tt.wantMax {
				t.Errorf("MaxResponseBytes = %v, want %v", c.opts.MaxResponseBytes, tt.wantMax)
			}
		})
	}
}

func TestSend_ZeroTarget(t *testing.T) {
	for _, d := range dialers(t) {
		t.Run(d.name, func(t *testing.T) {
			var target domain.Target
			req := wire.NewPostRequest(target, "", "k", []byte("{}"))

			_, err := New(d.dialer, Options{}).Send(context.Background(), target, req)
			if !errors.Is(err, domain.ErrConnectFailed) {
				t.Fatalf("Send() error = %v, want ErrConnectFailed", err)
			}
			if !errors.Is(err, domain.ErrInvalidTarget) {
				t.Errorf("Send() error = %v, want ErrInvalidTarget underneath", err)
			}
		})
	}
}

// rearmConn delivers one chunk, then cancels the call at the moment the
// idle deadline is re-armed. A later read would stall.
type rearmConn struct {
	mu      sync.Mutex
	reads   int
	onRearm func()
}

func (c *rearmConn) Read(p []byte) (int, error) {
	c.mu.Lock()
	c.reads++
	n := c.reads
	c.mu.Unlock()
	if n == 1 {
		return copy(p, "partial"), nil
	}
	time.Sleep(2 * time.Second)
	return 0, os.ErrDeadlineExceeded
}

func (c *rearmConn) Write(p []byte) (int, error) { return len(p), nil }
func (c *rearmConn) Close() error                { return nil }

func (c *rearmConn) SetReadDeadline(t time.Time) error {
	if t.After(time.Now()) {
		c.onRearm()
	}
	return nil
}

func (c *rearmConn) SetWriteDeadline(time.Time) error { return nil }

type connDialer struct{ conn ports.Conn }

func (d connDialer) Dial(context.Context, domain.Target) (ports.Conn, error) { return d.conn, nil }

func TestSend_CancelWhileRearmingIdleDeadline(t *testing.T) {
	target, err := domain.NewTarget("127.0.0.1", 1)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn := &rearmConn{onRearm: cancel}

	start := time.Now()
	_, err = New(connDialer{conn}, Options{IdleTimeout: time.Minute}).Send(ctx, target, wire.NewPostRequest(target, "", "k", nil))

	if !errors.Is(err, domain.ErrReceiveFailed) || !errors.Is(err, context.Canceled) {
		t.Fatalf("Send() error = %v, want ErrReceiveFailed wrapping context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Send() took %v after cancellation", elapsed)
	}
}
