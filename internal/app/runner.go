// Package app ties configuration, body sources and the one-shot client
// together for the command line.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rwslabs/oneshot/internal/domain"
	"github.com/rwslabs/oneshot/internal/ports"
	"github.com/rwslabs/oneshot/internal/wire"
	"github.com/rwslabs/oneshot/pkg/log"
)

// ErrWatchRequiresFile is returned by Watch when the body does not come from a file.
var ErrWatchRequiresFile = errors.New("watch requires a body file")

// Sender performs one request/response cycle. *client.Client implements it.
type Sender interface {
	Send(ctx context.Context, target domain.Target, req domain.Request) (domain.RawResponse, error)
}

// Options configure a Runner.
type Options struct {
	Target domain.Target
	Method string
	Path   string
	APIKey string
	Body   BodySource

	// Timeout bounds each send. Zero means no limit beyond the caller's context.
	Timeout time.Duration

	// Transcript, when set, receives a record of every exchange.
	Transcript ports.TranscriptRepository

	Logger log.Logger
	Out    io.Writer
}

// Runner sends requests on behalf of the CLI.
type Runner struct {
	sender Sender
	opts   Options
	log    log.Logger
	out    io.Writer
}

// NewRunner creates a Runner. A nil Logger discards logs; a nil Out writes to stdout.
func NewRunner(sender Sender, opts Options) *Runner {
	r := &Runner{sender: sender, opts: opts, log: opts.Logger, out: opts.Out}
	if r.log == nil {
		r.log = log.NewNoopLogger()
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.opts.Method == "" {
		r.opts.Method = "POST"
	}
	r.log = r.log.With(log.String("target", opts.Target.String()))
	return r
}

// Once performs a single request/response cycle and writes the raw response
// to the configured output.
func (r *Runner) Once(ctx context.Context) error {
	body, err := r.opts.Body.Load()
	if err != nil {
		return fmt.Errorf("load body: %w", err)
	}
	if !json.Valid(body) {
		r.log.Warn("body is not valid JSON, sending as-is", log.Int("bytes", len(body)))
	}

	req := wire.NewPostRequest(r.opts.Target, r.opts.Path, r.opts.APIKey, body)
	req.Method = r.opts.Method

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	r.log.Debug("sending request",
		log.String("method", req.Method),
		log.String("path", req.Path),
		log.Int("body_bytes", len(body)),
	)

	start := time.Now()
	resp, err := r.sender.Send(ctx, r.opts.Target, req)
	took := time.Since(start)

	r.record(ctx, req, start, took, resp, err)

	if err != nil {
		r.log.Debug("request failed", log.Duration("took", took))
		return err
	}

	r.log.Info("response received", log.Int("bytes", resp.Len()), log.Duration("took", took))
	if _, err := r.out.Write(resp); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

func (r *Runner) record(ctx context.Context, req domain.Request, start time.Time, took time.Duration, resp domain.RawResponse, sendErr error) {
	if r.opts.Transcript == nil {
		return
	}

	ex := domain.Exchange{
		Target:   r.opts.Target.String(),
		SentAt:   start.UTC(),
		Duration: took,
		Request:  string(wire.Encode(redact(req))),
		Response: resp.String(),
	}
	if sendErr != nil {
		ex.Error = sendErr.Error()
	}

	// The send context may already be past its deadline.
	if err := r.opts.Transcript.Save(context.WithoutCancel(ctx), ex); err != nil {
		r.log.Warn("failed to save transcript", log.Err(err))
	}
}

// redact hides the Authorization value.
func redact(req domain.Request) domain.Request {
	h := make(domain.Header, len(req.Header))
	copy(h, req.Header)
	for i := range h {
		if strings.EqualFold(h[i].Name, "Authorization") && h[i].Value != "" {
			h[i].Value = "*****"
		}
	}
	req.Header = h
	return req
}
