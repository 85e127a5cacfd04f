package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"simlink/pkg/config"
)

func TestInit(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tempDir := t.TempDir()
	serverLog := filepath.Join(tempDir, "server.log")
	trafficLog := filepath.Join(tempDir, "traffic.log")

	// A previous run's log is kept as .old
	if err := os.WriteFile(serverLog, []byte("old run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.LogConfig{
		Server:  config.LogSettings{Path: serverLog, Level: "DEBUG"},
		Traffic: config.LogSettings{Path: trafficLog, Level: "INFO"},
	}

	cleanup, err := Init(cfg)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	slog.Info("Server line", "k", 1)
	TrafficLogger.Info("in", "id", 12, "value", "1.0")
	cleanup()

	if _, err := os.Stat(serverLog + ".old"); err != nil {
		t.Errorf("previous log not rotated: %v", err)
	}
	server, err := os.ReadFile(serverLog)
	if err != nil {
		t.Fatalf("server log: %v", err)
	}
	if !strings.Contains(string(server), "Server line") {
		t.Errorf("server log missing line: %q", server)
	}
	if strings.Contains(string(server), "old run") {
		t.Error("server log should start fresh")
	}
	traffic, err := os.ReadFile(trafficLog)
	if err != nil {
		t.Fatalf("traffic log: %v", err)
	}
	if !strings.Contains(string(traffic), "id=12") {
		t.Errorf("traffic log missing record: %q", traffic)
	}
	if strings.Contains(string(traffic), "Server line") {
		t.Error("traffic log must not receive server lines")
	}
	if !strings.Contains(GlobalLogCapture.GetLastLine(), "Server line") {
		t.Errorf("capture missing line, got %q", GlobalLogCapture.GetLastLine())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogCaptureWriter(t *testing.T) {
	w := NewLogCaptureWriter(3)
	if w.GetLastLine() != "" || len(w.Lines()) != 0 {
		t.Fatal("new writer should be empty")
	}

	_, _ = w.Write([]byte("a\n"))
	_, _ = w.Write([]byte("b\nc\n"))
	if got := strings.Join(w.Lines(), ","); got != "a,b,c" {
		t.Errorf("Lines() = %s, want a,b,c", got)
	}

	_, _ = w.Write([]byte("d\n"))
	if got := strings.Join(w.Lines(), ","); got != "b,c,d" {
		t.Errorf("Lines() after wrap = %s, want b,c,d", got)
	}
	if w.GetLastLine() != "d" {
		t.Errorf("GetLastLine() = %q, want d", w.GetLastLine())
	}
}
