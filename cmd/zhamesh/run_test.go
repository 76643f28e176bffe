package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"zhamesh/internal/logging"
)

func TestReloadLevel(t *testing.T) {
	t.Setenv("ZHAMESH_ACCESS_TOKEN", "")
	t.Cleanup(func() { logging.SetLevel(zerolog.InfoLevel) })

	path := filepath.Join(t.TempDir(), "zhamesh.yaml")
	write := func(body string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(body), 0600); err != nil {
			t.Fatal(err)
		}
	}

	logging.SetLevel(zerolog.InfoLevel)
	reload := reloadLevel(path, zerolog.Nop())

	write("access_token: x\ndebug_level: debug\n")
	reload()
	if logging.Level() != zerolog.DebugLevel {
		t.Errorf("Level() = %v, want debug", logging.Level())
	}

	// an invalid file keeps the current level
	write("access_token: x\ndebug_level: chatty\n")
	reload()
	if logging.Level() != zerolog.DebugLevel {
		t.Errorf("Level() = %v, want debug after invalid change", logging.Level())
	}

	write("access_token: x\ndebug_level: WARNING\n")
	reload()
	if logging.Level() != zerolog.WarnLevel {
		t.Errorf("Level() = %v, want warn", logging.Level())
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	t.Setenv("ZHAMESH_ACCESS_TOKEN", "")
	path := filepath.Join(t.TempDir(), "zhamesh.yaml")
	if err := os.WriteFile(path, []byte("access_token: x\n"), 0600); err != nil {
		t.Fatal(err)
	}

	configPath, dbPath, httpAddr = path, "/tmp/other.db", "127.0.0.1:9000"
	t.Cleanup(func() { configPath, dbPath, httpAddr = "", "", "" })

	cfg, got, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if got != path {
		t.Errorf("path = %s, want %s", got, path)
	}
	if cfg.Database.Path != "/tmp/other.db" {
		t.Errorf("Database.Path = %s", cfg.Database.Path)
	}
	if cfg.HTTP.Addr != "127.0.0.1:9000" {
		t.Errorf("HTTP.Addr = %s", cfg.HTTP.Addr)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "zhamesh dev") {
		t.Errorf("version output = %q", out.String())
	}
}
