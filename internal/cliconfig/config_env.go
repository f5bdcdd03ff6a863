package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (ONESHOT_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", os.Getenv("ONESHOT_HOST"), &cfg.Host)
	s.setString("api-key", os.Getenv("ONESHOT_API_KEY"), &cfg.APIKey)
	s.setString("method", os.Getenv("ONESHOT_METHOD"), &cfg.Method)
	s.setString("path", os.Getenv("ONESHOT_PATH"), &cfg.Path)
	s.setString("body", os.Getenv("ONESHOT_BODY"), &cfg.Body)
	s.setString("body-file", os.Getenv("ONESHOT_BODY_FILE"), &cfg.BodyFile)
	s.setString("service", os.Getenv("ONESHOT_SERVICE"), &cfg.Service)
	s.setString("request-type", os.Getenv("ONESHOT_REQUEST_TYPE"), &cfg.RequestType)
	s.setString("mail-id", os.Getenv("ONESHOT_MAIL_ID"), &cfg.MailID)
	s.setString("phone-no", os.Getenv("ONESHOT_PHONE_NO"), &cfg.PhoneNo)
	s.setString("transport", os.Getenv("ONESHOT_TRANSPORT"), &cfg.Transport)
	s.setString("transcript-dir", os.Getenv("ONESHOT_TRANSCRIPT_DIR"), &cfg.TranscriptDir)
	s.setString("log-level", os.Getenv("ONESHOT_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("port", os.Getenv("ONESHOT_PORT"), &cfg.Port); err != nil {
		return err
	}
	if err := s.setIntFromString("max-response-bytes", os.Getenv("ONESHOT_MAX_RESPONSE_BYTES"), &cfg.MaxResponseBytes); err != nil {
		return err
	}

	if err := s.setDuration("timeout", os.Getenv("ONESHOT_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}
	if err := s.setDuration("idle-timeout", os.Getenv("ONESHOT_IDLE_TIMEOUT"), &cfg.IdleTimeout); err != nil {
		return err
	}

	s.setBoolFromString("single-read", os.Getenv("ONESHOT_SINGLE_READ"), &cfg.SingleRead)
	s.setBoolFromString("watch", os.Getenv("ONESHOT_WATCH"), &cfg.Watch)

	return nil
}
