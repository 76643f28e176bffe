package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv(EnvAccessToken, "")

	cfg, err := Parse([]byte("access_token: abc\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if cfg.HAAddress != "localhost:8123" {
		t.Errorf("HAAddress = %s, want localhost:8123", cfg.HAAddress)
	}
	if cfg.CheckInterval.Duration() != 5*time.Second {
		t.Errorf("CheckInterval = %s, want 5s", cfg.CheckInterval.Duration())
	}
	if cfg.RetryDelay() != 25*time.Second {
		t.Errorf("RetryDelay() = %s, want 25s", cfg.RetryDelay())
	}
	if cfg.DebugLevel != "info" {
		t.Errorf("DebugLevel = %s, want info", cfg.DebugLevel)
	}
	if cfg.Database.Path == "" {
		t.Error("Database.Path should not be empty")
	}
	if cfg.SweepAbsent {
		t.Error("SweepAbsent should default to false")
	}
	if !cfg.Console.IsEnabled() {
		t.Error("Console should be enabled by default")
	}
	if !cfg.HTTP.IsEnabled() || cfg.HTTP.Addr != ":3000" {
		t.Errorf("HTTP = %+v, want enabled on :3000", cfg.HTTP)
	}
}

func TestParseOriginalStyleConfig(t *testing.T) {
	t.Setenv(EnvAccessToken, "")

	data := `
access_token: "eyJ0eXAi"
ha_ip: "192.168.2.10:8123"
check_interval: 10
raw_json_keep: true
debug_level: "DEBUG"
rsyslog: "192.168.2.5"
sweep_absent: true
console:
  enabled: false
http:
  enabled: false
  addr: "127.0.0.1:8080"
`
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if cfg.CheckInterval.Duration() != 10*time.Second {
		t.Errorf("CheckInterval = %s, want 10s (bare number is seconds)", cfg.CheckInterval.Duration())
	}
	if cfg.DebugLevel != "debug" {
		t.Errorf("DebugLevel = %s, want debug (normalized)", cfg.DebugLevel)
	}
	if !cfg.RawJSONKeep || cfg.RawJSONPath == "" {
		t.Errorf("RawJSONKeep = %v, RawJSONPath = %q", cfg.RawJSONKeep, cfg.RawJSONPath)
	}
	if cfg.Rsyslog != "192.168.2.5" {
		t.Errorf("Rsyslog = %s", cfg.Rsyslog)
	}
	if !cfg.SweepAbsent {
		t.Error("SweepAbsent should be true")
	}
	if cfg.Console.IsEnabled() {
		t.Error("Console should be disabled")
	}
	if cfg.HTTP.IsEnabled() {
		t.Error("HTTP should be disabled")
	}
	if cfg.HTTP.Addr != "127.0.0.1:8080" {
		t.Errorf("HTTP.Addr = %s", cfg.HTTP.Addr)
	}
	if got := cfg.WebsocketURL(); got != "ws://192.168.2.10:8123/api/websocket" {
		t.Errorf("WebsocketURL() = %s", got)
	}
}

func TestDurationFormats(t *testing.T) {
	t.Setenv(EnvAccessToken, "")

	tests := []struct {
		input string
		want  time.Duration
	}{
		{"check_interval: 5", 5 * time.Second},
		{"check_interval: 2.5", 2500 * time.Millisecond},
		{"check_interval: 1m30s", 90 * time.Second},
		{`check_interval: "250ms"`, 250 * time.Millisecond},
	}

	for _, tt := range tests {
		cfg, err := Parse([]byte("access_token: x\n" + tt.input + "\n"))
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.input, err)
			continue
		}
		if got := cfg.CheckInterval.Duration(); got != tt.want {
			t.Errorf("Parse(%q) CheckInterval = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParseValidation(t *testing.T) {
	t.Setenv(EnvAccessToken, "")

	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"missing token", "ha_ip: localhost:8123\n", "AccessToken"},
		{"bad address", "access_token: x\nha_ip: not a host\n", "HAAddress"},
		{"bad level", "access_token: x\ndebug_level: chatty\n", "DebugLevel"},
		{"bad interval", "access_token: x\ncheck_interval: soon\n", "parse config"},
		{"negative multiplier", "access_token: x\nretry_multiplier: -1\n", "RetryMultiplier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestAccessTokenFromEnv(t *testing.T) {
	t.Setenv(EnvAccessToken, "from-env")

	cfg, err := Parse([]byte("access_token: from-file\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.AccessToken != "from-env" {
		t.Errorf("AccessToken = %s, want from-env", cfg.AccessToken)
	}

	cfg, err = Parse([]byte("ha_ip: localhost:8123\n"))
	if err != nil {
		t.Fatalf("Parse() without file token error: %v", err)
	}
	if cfg.AccessToken != "from-env" {
		t.Errorf("AccessToken = %s, want from-env", cfg.AccessToken)
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv(EnvAccessToken, "")
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.AccessToken = "secret"
	cfg.SweepAbsent = true
	cfg.CheckInterval = Duration(30 * time.Second)

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("stat saved config: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}
	if !loaded.SweepAbsent || loaded.CheckInterval.Duration() != 30*time.Second {
		t.Errorf("loaded config does not match saved: %+v", loaded)
	}
}

func TestFindConfigPath(t *testing.T) {
	dir := t.TempDir()
	explicit := filepath.Join(dir, "explicit.yaml")
	if err := os.WriteFile(explicit, []byte("access_token: x\n"), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvConfigPath, explicit)
	if got := FindConfigPath(); got != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", got, explicit)
	}

	xdg := t.TempDir()
	xdgPath := filepath.Join(xdg, ConfigDirName, "config.yaml")
	if err := EnsureConfigDir(xdgPath); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(xdgPath, []byte("access_token: x\n"), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvConfigPath, filepath.Join(dir, "missing.yaml"))
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(t.TempDir())
	if got := FindConfigPath(); got != xdgPath {
		t.Errorf("FindConfigPath() = %s, want %s", got, xdgPath)
	}
}
