// Package logging builds the zerolog logger shared by the ledger packages.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/bitfsorg/libutxo-go/config"
)

// ParseLevel maps a config log level onto zerolog. Matching is case-insensitive.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info", "":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("%w: %q", config.ErrInvalidLogLevel, level)
	}
}

// New returns a logger at cfg.LogLevel. With an empty LogFile it writes a
// console format to stderr, otherwise JSON lines appended to LogFile. The
// returned closer releases the log file and is never nil.
func New(cfg config.Config, service string) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var (
		w      io.Writer
		closer io.Closer = nopCloser{}
	)
	if cfg.LogFile == "" {
		w = consoleWriter(os.Stderr)
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0700); err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("logging: create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("logging: open %s: %w", cfg.LogFile, err)
		}
		w, closer = f, f
	}

	return NewWithWriter(w, level, service), closer, nil
}

// NewWithWriter returns a timestamped logger writing to w.
func NewWithWriter(w io.Writer, level zerolog.Level, service string) zerolog.Logger {
	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if service != "" {
		ctx = ctx.Str("service", service)
	}
	return ctx.Logger()
}

func consoleWriter(f *os.File) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        f,
		NoColor:    !isatty.IsTerminal(f.Fd()),
		TimeFormat: time.TimeOnly,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
