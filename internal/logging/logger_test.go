// BroSkate - Social Network for the Skateboarding Community
// Copyright 2026 Rogerio Santos
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rogeriosantos/broskate2

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// resetLogger restores default logging after a test that reconfigures the
// global logger.
func resetLogger(t *testing.T) {
	t.Cleanup(func() {
		Init(DefaultConfig())
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"disabled", zerolog.Disabled},
		{"WARN", zerolog.WarnLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestInitJSONOutput(t *testing.T) {
	resetLogger(t)

	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf, Timestamp: false})

	Info().Str("component", "test").Int64("user_id", 42).Msg("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output not JSON: %v (%s)", err, buf.String())
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["message"] != "hello" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["user_id"] != float64(42) {
		t.Errorf("user_id = %v", entry["user_id"])
	}
}

func TestInitLevelFiltering(t *testing.T) {
	resetLogger(t)

	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Output: &buf, Timestamp: false})

	Info().Msg("suppressed")
	Warn().Msg("visible")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Errorf("info line leaked through warn level: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn line missing: %s", out)
	}
}

func TestInitConsoleFormat(t *testing.T) {
	resetLogger(t)

	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "console", Output: &buf, Timestamp: false})

	Info().Msg("console line")

	out := buf.String()
	if !strings.Contains(out, "console line") {
		t.Fatalf("message missing: %s", out)
	}
	if json.Valid(buf.Bytes()) {
		t.Errorf("console output should not be a JSON document: %s", out)
	}
}

func TestNewTestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewTestLogger(&buf)

	l.Info().Str("k", "v").Msg("captured")

	if !strings.Contains(buf.String(), "captured") || !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("output = %s", buf.String())
	}
}

func TestSetLoggerReplacesGlobal(t *testing.T) {
	resetLogger(t)

	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	Info().Msg("through replacement")
	if !strings.Contains(buf.String(), "through replacement") {
		t.Errorf("output = %s", buf.String())
	}
}
