package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestProductionLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerAdapterWithWriter("production", &buf)
	l.Info("Bike created successfully", map[string]interface{}{"bike_id": "abc"})

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "Bike created successfully" || rec["bike_id"] != "abc" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestProductionLoggerSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerAdapterWithWriter("production", &buf)
	l.Debug("noise", nil)
	if buf.Len() != 0 {
		t.Fatalf("debug must be filtered in production, got %q", buf.String())
	}
}

func TestDevelopmentLoggerWritesText(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerAdapterWithWriter("development", &buf)
	l.Warn("Failed to cache bike", map[string]interface{}{"error": "down"})
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "error=down") {
		t.Fatalf("unexpected text output %q", buf.String())
	}
}
