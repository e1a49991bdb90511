package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse log line as JSON: %v\nLine: %s", err, line)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_IncludesCheckFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.WithCheck(CheckMeta{Invocant: "db", Name: "ping"}).Info(context.Background(), "test message")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	entry := entries[0]

	if v := entry["check.id"]; v != "db.ping" {
		t.Errorf("expected check.id='db.ping', got %v", v)
	}
	if v := entry["check.name"]; v != "ping" {
		t.Errorf("expected check.name='ping', got %v", v)
	}
	if v := entry["check.invocant"]; v != "db" {
		t.Errorf("expected check.invocant='db', got %v", v)
	}
	if v := entry["msg"]; v != "test message" {
		t.Errorf("expected msg='test message', got %v", v)
	}
	if v := entry["level"]; v != "info" {
		t.Errorf("expected level='info', got %v", v)
	}
	if _, ok := entry["timestamp"].(string); !ok {
		t.Errorf("expected timestamp string, got %v", entry["timestamp"])
	}
}

func TestLogger_OmitsEmptyInvocant(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).WithCheck(CheckMeta{Name: "CODE"}).Info(context.Background(), "m")

	entry := decodeLines(t, &buf)[0]
	if _, ok := entry["check.invocant"]; ok {
		t.Errorf("expected no check.invocant for plain function, got %v", entry["check.invocant"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	logger.Warn(ctx, "warn")
	logger.Error(ctx, "error")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries at warn level, got %d", len(entries))
	}
	if entries[0]["level"] != "warn" || entries[1]["level"] != "error" {
		t.Errorf("unexpected levels: %v, %v", entries[0]["level"], entries[1]["level"])
	}
}

func TestLogger_RedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)

	logger.Info(context.Background(), "redaction",
		Field{Key: "params", Value: map[string]any{"dsn": "postgres://u:p@h/db"}},
		Field{Key: "password", Value: "hunter2"},
		Field{Key: "status", Value: "OK"},
	)

	entry := decodeLines(t, &buf)[0]
	if entry["params"] != "[REDACTED]" {
		t.Errorf("expected params redacted, got %v", entry["params"])
	}
	if entry["password"] != "[REDACTED]" {
		t.Errorf("expected password redacted, got %v", entry["password"])
	}
	if entry["status"] != "OK" {
		t.Errorf("expected status passthrough, got %v", entry["status"])
	}
}

func TestLogger_DropsUnmarshalableEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "bad", Field{Key: "fn", Value: func() {}})

	if buf.Len() != 0 {
		t.Errorf("expected malformed entry to be dropped, got %q", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"loud", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLogLevel(tt.in); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
