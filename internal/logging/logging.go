// Package logging provides structured logging using zerolog.
//
// Component loggers are derived from a single root logger. The level is
// held globally so SetLevel applies to loggers created before the change.
package logging

import (
	"fmt"
	"io"
	"log/syslog"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultSyslogPort is used when Syslog carries no port
const DefaultSyslogPort = "514"

// Config controls the root logger
type Config struct {
	Level  string `yaml:"level"`
	Output string `yaml:"output"` // stdout, stderr or console
	Syslog string `yaml:"syslog"` // host[:port] of a UDP syslog collector
}

var (
	mu     sync.RWMutex
	root   zerolog.Logger
	closer io.Closer
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	root = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Init replaces the root logger. Calling it again closes any syslog
// connection opened by the previous call.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	var out io.Writer
	switch cfg.Output {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "console":
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}
	default:
		return fmt.Errorf("unknown log output %q", cfg.Output)
	}

	var sysw *syslog.Writer
	if cfg.Syslog != "" {
		sysw, err = syslog.Dial("udp", SyslogAddress(cfg.Syslog), syslog.LOG_INFO|syslog.LOG_DAEMON, "zhamesh")
		if err != nil {
			return fmt.Errorf("dial syslog: %w", err)
		}
		out = zerolog.MultiLevelWriter(out, zerolog.SyslogLevelWriter(sysw))
	}

	mu.Lock()
	defer mu.Unlock()

	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
	if sysw != nil {
		closer = sysw
	}

	root = zerolog.New(out).With().Timestamp().Logger()
	log.Logger = root
	zerolog.SetGlobalLevel(level)

	return nil
}

// ParseLevel accepts zerolog level names plus "warning". Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	}

	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// SetLevel changes the level for every logger
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// Level reports the current global level
func Level() zerolog.Level {
	return zerolog.GlobalLevel()
}

// Logger returns the root logger
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root
}

// WithComponent returns a child logger tagged with component
func WithComponent(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With().Str("component", component).Logger()
}

// SyslogAddress appends the default port when addr has none
func SyslogAddress(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, DefaultSyslogPort)
}

// Close releases the syslog connection, if any
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}
