package logging

import (
	"bytes"
	"strings"
	"testing"
)

func newBufferLogger(level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	log := New(Config{Level: level, Output: &buf, Prefix: "test"})
	return log, &buf
}

func TestLevelFiltering(t *testing.T) {
	log, buf := newBufferLogger(LevelWarn)

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("below-threshold messages leaked: %q", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("threshold messages missing: %q", out)
	}
}

func TestSetLevel(t *testing.T) {
	log, buf := newBufferLogger(LevelError)

	log.Info("before")
	log.SetLevel(LevelDebug)
	log.Info("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Errorf("filtered message leaked: %q", out)
	}
	if !strings.Contains(out, "after") {
		t.Errorf("message after SetLevel missing: %q", out)
	}
}

func TestFormatArgs(t *testing.T) {
	log, buf := newBufferLogger(LevelInfo)

	log.Info("saved in %dms to %s", 42, "cache")

	if !strings.Contains(buf.String(), "saved in 42ms to cache") {
		t.Errorf("formatted message missing: %q", buf.String())
	}
}

func TestFieldsAreSortedAndInherited(t *testing.T) {
	log, buf := newBufferLogger(LevelInfo)

	log.WithComponent("persist").WithField("save_id", "abc").Info("saved")

	out := buf.String()
	// Keys appear alphabetically: component before save_id.
	if !strings.Contains(out, "{component=persist, save_id=abc}") {
		t.Errorf("fields wrong or unsorted: %q", out)
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	log, buf := newBufferLogger(LevelInfo)

	_ = log.WithField("child", "only")
	log.Info("parent line")

	if strings.Contains(buf.String(), "child=only") {
		t.Errorf("child field leaked into parent: %q", buf.String())
	}
}

func TestPrefixAndLevelTag(t *testing.T) {
	log, buf := newBufferLogger(LevelInfo)

	log.Warn("careful")

	out := buf.String()
	if !strings.Contains(out, "[WARN] test: careful") {
		t.Errorf("line format unexpected: %q", out)
	}
}

func TestNullLoggerDiscards(t *testing.T) {
	var buf bytes.Buffer
	Null.SetOutput(&buf)
	Null.Error("should vanish")
	if buf.Len() != 0 {
		t.Errorf("null logger wrote output: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"nonsense", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}
