package cliconfig

import (
	"io"
	"os"

	"github.com/rwslabs/oneshot/pkg/log"
)

// NewLogger returns the console logger used by the CLI. Output goes to
// stderr unless out is set; stdout is reserved for the response.
func NewLogger(out io.Writer, level string) (*log.ZerologAdapter, error) {
	if out == nil {
		out = os.Stderr
	}
	return log.NewConsoleLogger(out, level)
}
