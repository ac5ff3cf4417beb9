package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"warrantyboard/internal/config"
)

func TestNewWithOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithOutput(config.LogConfig{Level: "warn", JSON: true}, &buf)

	if logger.GetLevel() != logrus.WarnLevel {
		t.Fatalf("level want=warn got=%s", logger.GetLevel())
	}

	logger.Info("hidden")
	logger.WithField("period", "Jan").Warn("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	if entry["msg"] != "visible" || entry["period"] != "Jan" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestParseLevelFallback(t *testing.T) {
	t.Parallel()

	if parseLevel("nonsense") != logrus.InfoLevel {
		t.Fatalf("unknown level should fall back to info")
	}
	if parseLevel(" DEBUG ") != logrus.DebugLevel {
		t.Fatalf("level parsing should be case-insensitive")
	}
}
