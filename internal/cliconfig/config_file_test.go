package cliconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Host:             "10.1.2.3",
				Port:             9000,
				APIKey:           "secret",
				Method:           "PUT",
				Path:             "/svc",
				Body:             "{}",
				BodyFile:         "/tmp/body.json",
				Service:          "ping",
				RequestType:      "mail",
				Params:           map[string]string{"param1": "value1"},
				MailID:           "a@b.io",
				PhoneNo:          "+15551234567",
				Timeout:          "1m",
				IdleTimeout:      "500ms",
				MaxResponseBytes: 2048,
				SingleRead:       &trueVal,
				Transport:        "syscall",
				TranscriptDir:    "/state",
				Watch:            &trueVal,
				LogLevel:         "warn",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Host:             "10.1.2.3",
				Port:             9000,
				APIKey:           "secret",
				Method:           "PUT",
				Path:             "/svc",
				Body:             "{}",
				BodyFile:         "/tmp/body.json",
				Service:          "ping",
				RequestType:      "mail",
				Params:           map[string]string{"param1": "value1"},
				MailID:           "a@b.io",
				PhoneNo:          "+15551234567",
				Timeout:          time.Minute,
				IdleTimeout:      500 * time.Millisecond,
				MaxResponseBytes: 2048,
				SingleRead:       true,
				Transport:        "syscall",
				TranscriptDir:    "/state",
				Watch:            true,
				LogLevel:         "warn",
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Host: "10.0.0.9",
				Port: 6000,
			},
			changed: map[string]bool{"host": true},
			initial: Config{
				Host: "127.0.0.1",
				Port: 5000,
			},
			expected: Config{
				Host: "127.0.0.1", // unchanged because flag was set
				Port: 6000,
			},
		},
		{
			name:       "explicit false overrides",
			fileConfig: FileConfig{SingleRead: &falseVal},
			changed:    map[string]bool{},
			initial:    Config{SingleRead: true},
			expected:   Config{SingleRead: false},
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{IdleTimeout: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(cfg, tt.expected) {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")

	tomlContent := `
host = "10.0.0.7"
port = 5001
api_key = "secret"
timeout = "5s"
single_read = true

[params]
param1 = "value1"
param2 = "value2"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.Host != "10.0.0.7" {
		t.Errorf("Host = %v, want 10.0.0.7", fc.Host)
	}
	if fc.Port != 5001 {
		t.Errorf("Port = %v, want 5001", fc.Port)
	}
	if fc.APIKey != "secret" {
		t.Errorf("APIKey = %v, want secret", fc.APIKey)
	}
	if fc.Timeout != "5s" {
		t.Errorf("Timeout = %v, want 5s", fc.Timeout)
	}
	if fc.SingleRead == nil || *fc.SingleRead != true {
		t.Errorf("SingleRead = %v, want true", fc.SingleRead)
	}
	if fc.Params["param1"] != "value1" || fc.Params["param2"] != "value2" {
		t.Errorf("Params = %v, want param1/param2", fc.Params)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
host = "127.0.0.1"
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".oneshot") {
		t.Errorf("DefaultConfigPath() = %v, should contain .oneshot", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
