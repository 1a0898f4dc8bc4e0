package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, slog.LevelWarn, "text"))

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record logged at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn record missing")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newHandler(&buf, slog.LevelInfo, "json"))

	logger.Info("hello", "key", "value")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if record["msg"] != "hello" || record["key"] != "value" {
		t.Errorf("record = %v", record)
	}
}
