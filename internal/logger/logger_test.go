package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestInitTextFormat(t *testing.T) {
	var buf bytes.Buffer
	Init("info", "text", &buf)

	Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "hello") {
		t.Errorf("expected output to contain message, got %q", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("expected output to contain key=value, got %q", out)
	}
}

func TestInitJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init("debug", "json", &buf)

	Debug("structured", "count", 3)

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected valid JSON line, got error: %v, content: %q", err, buf.String())
	}
	if decoded["msg"] != "structured" {
		t.Errorf("msg = %v, want %q", decoded["msg"], "structured")
	}
	if decoded["count"] != float64(3) {
		t.Errorf("count = %v, want 3", decoded["count"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init("warn", "text", &buf)

	Info("should not appear")
	Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("info message leaked through warn level filter: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("warn message missing from output: %q", out)
	}
}

func TestWithAddsContext(t *testing.T) {
	var buf bytes.Buffer
	Init("info", "text", &buf)

	With("tag", "abc123").Info("tagged message")

	out := buf.String()
	if !strings.Contains(out, "tag=abc123") {
		t.Errorf("expected contextual field in output, got %q", out)
	}
}

func TestInitDefaultsUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	Init("not-a-level", "text", &buf)

	Info("defaults to info")
	Debug("should be filtered")

	out := buf.String()
	if !strings.Contains(out, "defaults to info") {
		t.Errorf("expected info message to appear, got %q", out)
	}
	if strings.Contains(out, "should be filtered") {
		t.Errorf("debug message should be filtered at default info level, got %q", out)
	}
}

func TestInitNilOutputDefaultsToStderr(t *testing.T) {
	// Just exercise the nil path without asserting on stderr contents.
	Init("error", "text", nil)
	Error("goes to stderr")
}
