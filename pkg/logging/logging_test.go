package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"sorcerer/pkg/logging"
)

func TestNew_JSONWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(logging.Options{Level: "info", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	log.Named("orchestrator").Infow("created", "agent", "merlin", "port", 50100)
	log.Debugw("hidden")
	_ = log.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line at info level, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["msg"] != "created" || entry["agent"] != "merlin" || entry["logger"] != "orchestrator" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(logging.Options{Level: "warn", Format: logging.FormatConsole, Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	log.Infow("dropped")
	log.Warnw("kept", "agent", "amy")
	_ = log.Sync()

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, "kept") || strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("expected console-encoded warn line, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		got, err := logging.ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
