package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rwslabs/oneshot/internal/domain"
	"github.com/rwslabs/oneshot/internal/wire"
)

// DefaultBody is the request body sent when no other body source is configured.
const DefaultBody = `{"service_name": "example_function", "sub_json": {"param1": "value1", "param2": "value2"}, "request_type": "INLINE"}`

// Transport names accepted by --transport.
const (
	TransportNet     = "net"
	TransportSyscall = "syscall"
)

// Config holds CLI configuration for oneshot.
type Config struct {
	Host   string
	Port   int
	APIKey string

	Method string
	Path   string

	Body     string
	BodyFile string

	Service     string
	RequestType string
	Params      map[string]string
	MailID      string
	PhoneNo     string

	Timeout          time.Duration
	IdleTimeout      time.Duration
	MaxResponseBytes int
	SingleRead       bool
	Transport        string

	TranscriptDir string
	Watch         bool
	LogLevel      string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Host:             "127.0.0.1",
		Port:             5000,
		Method:           "POST",
		Path:             wire.DefaultPath,
		Body:             DefaultBody,
		RequestType:      "INLINE",
		Timeout:          30 * time.Second,
		IdleTimeout:      2 * time.Second,
		MaxResponseBytes: 1 << 20, // 1MiB
		Transport:        TransportNet,
		LogLevel:         "info",
	}
}

// Validate checks the configuration for errors and normalises derived values.
func (c *Config) Validate() error {
	if _, err := c.Target(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("api-key is required")
	}

	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method == "" {
		return fmt.Errorf("method must not be empty")
	}
	if c.Path == "" {
		c.Path = wire.DefaultPath
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("path %q must start with /", c.Path)
	}

	if c.Service != "" && c.BodyFile != "" {
		return fmt.Errorf("service and body-file are mutually exclusive")
	}
	if c.Watch && c.BodyFile == "" {
		return fmt.Errorf("watch requires body-file")
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive")
	}
	if c.MaxResponseBytes <= 0 {
		return fmt.Errorf("max response bytes must be positive")
	}

	switch c.Transport {
	case TransportNet, TransportSyscall:
	case "":
		c.Transport = TransportNet
	default:
		return fmt.Errorf("unknown transport %q (want %s or %s)", c.Transport, TransportNet, TransportSyscall)
	}

	return nil
}

// Target returns the connection target described by Host and Port.
func (c Config) Target() (domain.Target, error) {
	return domain.NewTarget(c.Host, c.Port)
}

// Masked returns a copy suitable for logging, with the API key hidden.
func (c Config) Masked() Config {
	if c.APIKey != "" {
		c.APIKey = "*****"
	}
	return c
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setParams merges key/value pairs into dst unless the flag was set.
func (s *configSetter) setParams(flag string, value map[string]string, dst *map[string]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	merged := make(map[string]string, len(*dst)+len(value))
	for k, v := range *dst {
		merged[k] = v
	}
	for k, v := range value {
		merged[k] = v
	}
	*dst = merged
}

// setIntFromString parses a positive int from a string and sets the destination.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return fmt.Errorf("parse %s: %d is not positive", flag, i)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
