package logging

import (
	"strings"
	"sync"
)

// DefaultCaptureLines is the number of lines GlobalLogCapture keeps.
const DefaultCaptureLines = 100

// LogCaptureWriter is a thread-safe writer that keeps the most recent lines.
type LogCaptureWriter struct {
	mu    sync.RWMutex
	lines []string
	next  int
	full  bool
}

// GlobalLogCapture holds the log tail shown in the status report.
var GlobalLogCapture = NewLogCaptureWriter(DefaultCaptureLines)

// NewLogCaptureWriter creates a writer keeping the last n lines.
func NewLogCaptureWriter(n int) *LogCaptureWriter {
	if n <= 0 {
		n = 1
	}
	return &LogCaptureWriter{lines: make([]string, n)}
}

// Write implements io.Writer. Each call may carry several lines.
func (w *LogCaptureWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		w.lines[w.next] = line
		w.next = (w.next + 1) % len(w.lines)
		if w.next == 0 {
			w.full = true
		}
	}
	return len(p), nil
}

// Lines returns the captured lines, oldest first.
func (w *LogCaptureWriter) Lines() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.full {
		return append([]string(nil), w.lines[:w.next]...)
	}
	out := make([]string, 0, len(w.lines))
	out = append(out, w.lines[w.next:]...)
	return append(out, w.lines[:w.next]...)
}

// GetLastLine returns the most recent log line.
func (w *LogCaptureWriter) GetLastLine() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.full && w.next == 0 {
		return ""
	}
	return w.lines[(w.next-1+len(w.lines))%len(w.lines)]
}
