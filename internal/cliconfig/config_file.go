package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Host             string            `toml:"host"`
	Port             int               `toml:"port"`
	APIKey           string            `toml:"api_key"`
	Method           string            `toml:"method"`
	Path             string            `toml:"path"`
	Body             string            `toml:"body"`
	BodyFile         string            `toml:"body_file"`
	Service          string            `toml:"service"`
	RequestType      string            `toml:"request_type"`
	Params           map[string]string `toml:"params"`
	MailID           string            `toml:"mail_id"`
	PhoneNo          string            `toml:"phone_no"`
	Timeout          string            `toml:"timeout"`
	IdleTimeout      string            `toml:"idle_timeout"`
	MaxResponseBytes int               `toml:"max_response_bytes"`
	SingleRead       *bool             `toml:"single_read"`
	Transport        string            `toml:"transport"`
	TranscriptDir    string            `toml:"transcript_dir"`
	Watch            *bool             `toml:"watch"`
	LogLevel         string            `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.oneshot/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".oneshot", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", fc.Host, &cfg.Host)
	s.setString("api-key", fc.APIKey, &cfg.APIKey)
	s.setString("method", fc.Method, &cfg.Method)
	s.setString("path", fc.Path, &cfg.Path)
	s.setString("body", fc.Body, &cfg.Body)
	s.setString("body-file", fc.BodyFile, &cfg.BodyFile)
	s.setString("service", fc.Service, &cfg.Service)
	s.setString("request-type", fc.RequestType, &cfg.RequestType)
	s.setString("mail-id", fc.MailID, &cfg.MailID)
	s.setString("phone-no", fc.PhoneNo, &cfg.PhoneNo)
	s.setString("transport", fc.Transport, &cfg.Transport)
	s.setString("transcript-dir", fc.TranscriptDir, &cfg.TranscriptDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}
	if err := s.setDuration("idle-timeout", fc.IdleTimeout, &cfg.IdleTimeout); err != nil {
		return err
	}

	s.setInt("port", fc.Port, &cfg.Port)
	s.setInt("max-response-bytes", fc.MaxResponseBytes, &cfg.MaxResponseBytes)

	s.setParams("param", fc.Params, &cfg.Params)

	s.setBool("single-read", fc.SingleRead, &cfg.SingleRead)
	s.setBool("watch", fc.Watch, &cfg.Watch)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
