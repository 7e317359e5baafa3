package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewWithWriterTagsService(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "eventhub", slog.LevelInfo)
	log.Debug("hidden")
	log.Info("started", "port", 8000)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["service"] != "eventhub" {
		t.Fatalf("expected service attribute, got %v", entry["service"])
	}
	if entry["msg"] != "started" {
		t.Fatalf("unexpected msg %v", entry["msg"])
	}
}
