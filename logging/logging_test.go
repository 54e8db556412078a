package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libutxo-go/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"Warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	assert.ErrorIs(t, err, config.ErrInvalidLogLevel)
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, zerolog.InfoLevel, "ledger")

	log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Info().Str("utxo", "abc").Msg("deposit")
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ledger", line["service"])
	assert.Equal(t, "abc", line["utxo"])
	assert.Equal(t, "deposit", line["message"])
}

func TestNew_LogFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "debug"
	cfg.LogFile = filepath.Join(t.TempDir(), "logs", "ledger.log")

	log, closer, err := New(cfg, "test")
	require.NoError(t, err)
	log.Debug().Msg("written")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"written"`)
}

func TestNew_InvalidLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogLevel = "loud"
	_, closer, err := New(cfg, "test")
	assert.ErrorIs(t, err, config.ErrInvalidLogLevel)
	assert.NotNil(t, closer)
}
