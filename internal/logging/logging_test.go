package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		hasError bool
	}{
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"ERROR", LevelError, false},
		{"invalid", LevelInfo, true},
		{"", LevelInfo, true},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			level, err := ParseLevel(test.input)
			if test.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, level)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestLevelString(t *testing.T) {
	for _, level := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		parsed, err := ParseLevel(LevelString(level))
		require.NoError(t, err)
		assert.Equal(t, level, parsed)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, FormatText, cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.Equal(t, "filewatch", cfg.Component)
	assert.Positive(t, cfg.MaxSize)
	assert.Positive(t, cfg.MaxBackups)
	assert.NotEmpty(t, cfg.FilePath)
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{
		Level:     LevelInfo,
		Format:    FormatJSON,
		Component: "test",
		Writer:    &buf,
	})
	require.NoError(t, err)
	defer logger.Close()

	logger.Debug("hidden")
	logger.WithComponent("engine").Info("received event", "op", "WRITE")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "received event", entry["msg"])
	assert.Equal(t, "WRITE", entry["op"])
	assert.Equal(t, "engine", entry["component"])
}

func TestTextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&Config{Level: LevelDebug, Format: FormatText, Writer: &buf})
	require.NoError(t, err)

	logger.Debug("snapshot replaced", "size", 3)
	assert.Contains(t, buf.String(), `msg="snapshot replaced"`)
	assert.Contains(t, buf.String(), "size=3")
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nobody hears this")
	assert.NoError(t, logger.Close())
}

func TestFileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "filewatch.log")

	logger, err := New(&Config{
		Level:    LevelInfo,
		Output:   "file",
		FilePath: logPath,
	})
	require.NoError(t, err)

	logger.Info("hello file")
	require.NoError(t, logger.Sync())
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

func TestFileRotator(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	rotator, err := NewFileRotator(&Config{
		FilePath:   logPath,
		MaxSize:    1,
		MaxBackups: 3,
	})
	require.NoError(t, err)
	defer rotator.Close()

	data := []byte("test log line\n")
	n, err := rotator.Write(data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	require.NoError(t, rotator.Sync())

	_, err = os.Stat(logPath)
	assert.NoError(t, err)

	backups, err := rotator.Backups()
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestFileRotatorRotation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	rotator, err := NewFileRotator(&Config{
		FilePath:   logPath,
		MaxSize:    1,
		MaxBackups: 2,
		Compress:   true,
	})
	require.NoError(t, err)
	defer rotator.Close()

	chunk := bytes.Repeat([]byte("x"), 700*1024)
	for range 4 {
		_, err := rotator.Write(chunk)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	backups, err := rotator.Backups()
	require.NoError(t, err)
	assert.Len(t, backups, 2)
	for _, b := range backups {
		assert.True(t, strings.HasSuffix(b, ".log.gz"), b)
	}
}

func TestFileRotatorDue(t *testing.T) {
	r := &FileRotator{config: &Config{MaxSize: 1}, openedAt: time.Now()}
	assert.False(t, r.due(2*1024*1024, time.Now()), "empty file never rotates")

	r.size = 1024 * 1024
	assert.True(t, r.due(1, r.openedAt))
	r.size = 10
	assert.False(t, r.due(1, r.openedAt))
	assert.True(t, r.due(1, r.openedAt.AddDate(0, 0, 1)))
}

func TestNewFileRotatorEmptyPath(t *testing.T) {
	_, err := NewFileRotator(&Config{})
	assert.Error(t, err)
}
