package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/rwslabs/oneshot/internal/adapters/fs"
	"github.com/rwslabs/oneshot/internal/adapters/sock"
	"github.com/rwslabs/oneshot/internal/adapters/tcp"
	"github.com/rwslabs/oneshot/internal/app"
	"github.com/rwslabs/oneshot/internal/cliconfig"
	"github.com/rwslabs/oneshot/internal/client"
	"github.com/rwslabs/oneshot/internal/ports"
	"github.com/rwslabs/oneshot/pkg/log"
)

const longHelp = `Send one HTTP/1.1 request over a fresh TCP connection and print the raw reply.

oneshot connects to an IPv4 address, writes a single request with an
Authorization header and a JSON body, reads whatever the server sends back
and prints those bytes unparsed. Configure via file, env (ONESHOT_*), or flags.

With --service the body is built from a service call (--request-type,
--param, --mail-id, --phone-no). With --watch the request is re-sent each
time --body-file changes.`

var exampleUsage = strings.TrimSpace(`
  oneshot --api-key <api-key>
  oneshot --host 10.0.0.5 --port 8080 --api-key <api-key> --body-file req.json
  oneshot --api-key <api-key> --service report --request-type mail --mail-id ops@example.com
  oneshot --config $HOME/.oneshot/config.toml --body-file req.json --watch
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command and returns the process exit status.
func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stdout, err)
		return 1
	}
	return 0
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "oneshot",
		Short:         "Send one HTTP/1.1 request over raw TCP and print the raw reply",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Env overrides the file; explicitly set flags override both.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := cliconfig.NewLogger(stderr, cfg.LogLevel)
			if err != nil {
				return err
			}
			logger.Debug("configuration", log.Any("config", cfg.Masked()))

			runner, err := newRunner(cfg, logger, stdout)
			if err != nil {
				return err
			}

			if !cfg.Watch {
				return runner.Once(cmd.Context())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runner.Watch(ctx)
		},
	}

	root.SetOut(stderr)
	root.SetErr(stderr)

	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.oneshot/config.toml)")

	f.StringVar(&cfg.Host, "host", cfg.Host, "server IPv4 address")
	f.IntVar(&cfg.Port, "port", cfg.Port, "server TCP port")
	f.StringVar(&cfg.APIKey, "api-key", cfg.APIKey, "value of the Authorization header")
	f.StringVar(&cfg.Method, "method", cfg.Method, "request method")
	f.StringVar(&cfg.Path, "path", cfg.Path, "request path")

	f.StringVar(&cfg.Body, "body", cfg.Body, "request body")
	f.StringVar(&cfg.BodyFile, "body-file", cfg.BodyFile, "read the request body from this file")

	f.StringVar(&cfg.Service, "service", cfg.Service, "build the body as a call to this service")
	f.StringVar(&cfg.RequestType, "request-type", cfg.RequestType, "service call type: INLINE, FUTURE_CALL, MAIL or SMS")
	f.StringToStringVar(&cfg.Params, "param", cfg.Params, "service call parameter key=value (repeatable)")
	f.StringVar(&cfg.MailID, "mail-id", cfg.MailID, "recipient address for MAIL calls")
	f.StringVar(&cfg.PhoneNo, "phone-no", cfg.PhoneNo, "E.164 recipient number for SMS calls")

	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall per-request timeout (0 disables)")
	f.DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "end the response after this much silence once data has arrived")
	f.IntVar(&cfg.MaxResponseBytes, "max-response-bytes", cfg.MaxResponseBytes, "maximum response bytes captured")
	f.BoolVar(&cfg.SingleRead, "single-read", cfg.SingleRead, "perform exactly one read instead of draining the response")
	f.StringVar(&cfg.Transport, "transport", cfg.Transport, "socket implementation: net or syscall")

	f.StringVar(&cfg.TranscriptDir, "transcript-dir", cfg.TranscriptDir, "save the last exchange as JSON in this directory")
	f.BoolVar(&cfg.Watch, "watch", cfg.Watch, "re-send whenever --body-file changes")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	return root
}

// newRunner wires the configured transport, body source and transcript.
func newRunner(cfg cliconfig.Config, logger log.Logger, stdout io.Writer) (*app.Runner, error) {
	target, err := cfg.Target()
	if err != nil {
		return nil, err
	}

	var dialer ports.Dialer = tcp.NewDialer()
	if cfg.Transport == cliconfig.TransportSyscall {
		dialer = sock.NewDialer()
	}

	var body app.BodySource
	switch {
	case cfg.Service != "":
		body = app.PayloadBody{
			Service:     cfg.Service,
			Params:      cfg.Params,
			RequestType: cfg.RequestType,
			MailID:      cfg.MailID,
			PhoneNo:     cfg.PhoneNo,
		}
	case cfg.BodyFile != "":
		body = app.FileBody(cfg.BodyFile)
	default:
		body = app.StaticBody(cfg.Body)
	}

	opts := app.Options{
		Target:  target,
		Method:  cfg.Method,
		Path:    cfg.Path,
		APIKey:  cfg.APIKey,
		Body:    body,
		Timeout: cfg.Timeout,
		Logger:  logger,
		Out:     stdout,
	}
	if cfg.TranscriptDir != "" {
		opts.Transcript = fs.NewTranscriptFile(cfg.TranscriptDir)
	}

	c := client.New(dialer, client.Options{
		MaxResponseBytes: cfg.MaxResponseBytes,
		IdleTimeout:      cfg.IdleTimeout,
		SingleRead:       cfg.SingleRead,
	})
	return app.NewRunner(c, opts), nil
}
