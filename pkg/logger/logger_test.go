package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"redditactions/pkg/config"
)

func newBufferLogger(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := NewWithWriter(&config.LoggingConfig{Level: level, Format: "json"}, &buf)
	require.NoError(t, err)
	return l, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &out))
	return out
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{name: "info level", cfg: &config.LoggingConfig{Level: "info"}},
		{name: "debug level", cfg: &config.LoggingConfig{Level: "debug", Format: "console"}},
		{name: "invalid level", cfg: &config.LoggingConfig{Level: "invalid"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNewWithFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	var buf bytes.Buffer

	l, err := NewWithWriter(&config.LoggingConfig{Level: "info", Format: "json", File: path}, &buf)
	require.NoError(t, err)

	l.Info("written twice")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written twice")
	assert.Contains(t, buf.String(), "written twice")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"invalid", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestUseConsole(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, useConsole("console", &buf))
	assert.False(t, useConsole("json", &buf))
	assert.False(t, useConsole("auto", &buf), "a buffer is never a terminal")
}

func TestJSONOutputCarriesAppField(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	l.Info("hello")

	line := decodeLine(t, buf)
	assert.Equal(t, "redditactions", line["app"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "hello", line["message"])
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(t, "warn")

	l.Debug("hidden")
	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithFieldsChaining(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	l.WithField("item_id", "abc").
		WithFields(map[string]interface{}{"count": 3, "dry_run": true}).
		Info("chained")

	line := decodeLine(t, buf)
	assert.Equal(t, "abc", line["item_id"])
	assert.Equal(t, float64(3), line["count"])
	assert.Equal(t, true, line["dry_run"])
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	_ = l.WithField("child", "yes")
	l.Info("parent")

	line := decodeLine(t, buf)
	_, ok := line["child"]
	assert.False(t, ok)
}

func TestWithError(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	assert.Same(t, l, l.WithError(nil))

	l.WithError(errors.New("boom")).Error("failed")
	line := decodeLine(t, buf)
	assert.Equal(t, "boom", line["error"])
}

func TestFieldTypes(t *testing.T) {
	l, buf := newBufferLogger(t, "info")

	l.InfoWithFields("typed", map[string]interface{}{
		"created":  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"duration": 5 * time.Second,
		"strings":  []string{"a", "b"},
		"custom":   struct{ Name string }{Name: "x"},
	})

	line := decodeLine(t, buf)
	assert.Equal(t, "2024-01-01T00:00:00Z", line["created"])
	assert.Equal(t, []interface{}{"a", "b"}, line["strings"])
	assert.NotNil(t, line["custom"])
}

func TestLogRequestLevels(t *testing.T) {
	tl := NewTestLogger()

	LogRequest(tl, "reddit", "GET", "/api/v1/me", 200, time.Millisecond)
	LogRequest(tl, "instapaper", "GET", "/api/add", 403, time.Millisecond)
	LogRequest(tl, "reddit", "POST", "/api/unsave", 502, time.Millisecond)

	msgs := tl.GetMessages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "DEBUG", msgs[0].Level)
	assert.Equal(t, "WARN", msgs[1].Level)
	assert.Equal(t, "ERROR", msgs[2].Level)
	assert.Equal(t, "instapaper", msgs[1].Fields["service"])
}

func TestLogItem(t *testing.T) {
	tl := NewTestLogger()

	LogItem(tl, "abc", "https://example.com", "forwarded", nil)
	LogItem(tl, "def", "https://example.org", "forward_failed", errors.New("400"))

	msgs := tl.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "DEBUG", msgs[0].Level, "successes stay out of the default output")
	assert.Equal(t, "abc", msgs[0].Fields["item_id"])
	assert.Equal(t, "WARN", msgs[1].Level)
	assert.EqualError(t, msgs[1].Error, "400")
	assert.Equal(t, "forward_failed", msgs[1].Fields["outcome"])
}

func TestTestLoggerSharesMessagesWithChildren(t *testing.T) {
	tl := NewTestLogger()
	child := tl.WithField("component", "processor")
	child.Info("from child")
	tl.Error("from parent")

	assert.True(t, tl.HasMessage("from child"))
	assert.True(t, tl.HasError())
	assert.Contains(t, tl.String(), "component:processor")

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
}

func TestGlobalLogger(t *testing.T) {
	tl := NewTestLogger()
	SetLogger(tl)
	t.Cleanup(func() { SetLogger(nil) })

	Info("global info")
	WithField("k", "v").Warn("global warn")
	WithError(errors.New("e")).Error("global error")

	assert.Len(t, tl.GetMessages(), 3)
	assert.Same(t, tl, GetLogger())
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.WithField("a", 1).WithError(errors.New("x")).Info("ignored")
	assert.NotNil(t, l.GetZerolog())
}

func TestNewWritesToStderr(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stderr")
	require.NoError(t, err)
	defer f.Close()

	stderr := os.Stderr
	os.Stderr = f
	defer func() { os.Stderr = stderr }()

	l, err := New(&config.LoggingConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	l.Info("kept off stdout")

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept off stdout")
}
