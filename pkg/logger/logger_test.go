package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/srm-sim/pkg/config"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	log := New(&config.Config{Env: "development", LogLevel: "warn", LogFormat: "json"})
	require.NotNil(t, log)
	assert.Equal(t, zerolog.WarnLevel, log.zlog.GetLevel())
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	log.Debug("hidden")
	assert.Zero(t, buf.Len())

	log.Infof("turn %d", 3)
	entry := decode(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "turn 3", entry["message"])
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug")

	log.WithFields(map[string]interface{}{
		"supplier": "V-STD",
		"qty":      300,
	}).Info("order placed")

	entry := decode(t, &buf)
	assert.Equal(t, "V-STD", entry["supplier"])
	assert.Equal(t, float64(300), entry["qty"])
	assert.Equal(t, "order placed", entry["message"])
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug")

	log.WithError(errors.New("invoice already paid")).WithField("invoice", 4).Warn("payment rejected")

	entry := decode(t, &buf)
	assert.Equal(t, "invoice already paid", entry["error"])
	assert.Equal(t, float64(4), entry["invoice"])
	assert.Equal(t, "warn", entry["level"])
}

func TestFormattedLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug")

	tests := []struct {
		level string
		emit  func(format string, args ...interface{})
	}{
		{"debug", log.Debugf},
		{"info", log.Infof},
		{"warn", log.Warnf},
		{"error", log.Errorf},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.emit("job %s took %d tries", "session_reaper", 2)
			entry := decode(t, &buf)
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "job session_reaper took 2 tries", entry["message"])
		})
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.WithField("k", "v").Errorf("nothing %d", 1)
	})
}
