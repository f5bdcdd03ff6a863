package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rwslabs/oneshot/internal/domain"
)

const transcriptFileName = "last_exchange.json"

// TranscriptFile implements ports.TranscriptRepository using a JSON file.
type TranscriptFile struct {
	dir string
}

// NewTranscriptFile creates a TranscriptFile rooted at dir.
func NewTranscriptFile(dir string) *TranscriptFile {
	return &TranscriptFile{dir: dir}
}

// Load retrieves the last saved exchange from disk.
// Returns an empty exchange and nil error if no transcript exists.
func (r *TranscriptFile) Load(ctx context.Context) (domain.Exchange, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Exchange{}, nil
		}
		return domain.Exchange{}, err
	}

	var ex domain.Exchange
	if err := json.Unmarshal(data, &ex); err != nil {
		return domain.Exchange{}, fmt.Errorf("decode %s: %w", r.Path(), err)
	}
	return ex, nil
}

// Save replaces the transcript atomically: write to temp file, then rename.
func (r *TranscriptFile) Save(ctx context.Context, ex domain.Exchange) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(ex, "", "  ")
	if err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Path returns the full path to the transcript file.
func (r *TranscriptFile) Path() string {
	return filepath.Join(r.dir, transcriptFileName)
}
