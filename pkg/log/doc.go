// Package log provides the logging abstraction used by oneshot.
//
// The one-shot client itself never logs; the runner and the file watcher
// report progress through a [Logger]. Output goes to stderr so stdout
// carries nothing but the raw response.
//
// # Usage
//
//	logger, err := log.NewConsoleLogger(os.Stderr, "debug")
//	logger.Info("sending", log.String("target", "127.0.0.1:5000"))
//
// Tests and library callers that want silence use [NewNoopLogger].
package log
