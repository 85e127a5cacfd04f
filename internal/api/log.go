package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"simlink/pkg/logging"
)

// Matches key=value and key="value with spaces" in text handler output.
var logAttr = regexp.MustCompile(`([a-zA-Z0-9_\-.]+)=(?:"([^"]*)"|([^ ]+))`)

// logEntry is one parsed line of the server log.
type logEntry struct {
	raw       string
	time      string // HH:MM:SS
	level     slog.Level
	msg       string
	component string
	params    []string // Sorted key=value pairs
}

func parseLogLine(raw string) logEntry {
	e := logEntry{raw: raw, level: slog.LevelInfo}
	for _, m := range logAttr.FindAllStringSubmatch(raw, -1) {
		key, val := m[1], m[2]
		if val == "" {
			val = m[3]
		}
		val = strings.TrimSpace(val)

		switch key {
		case "time":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				e.time = t.Format("15:04:05")
			}
		case "level":
			e.level = logging.ParseLevel(val)
		case "msg":
			e.msg = val
		case "component":
			e.component = val
		default:
			// Paths and error chains stay in the log file.
			if len(val) <= 20 {
				e.params = append(e.params, key+"="+val)
			}
		}
	}
	sort.Strings(e.params)
	return e
}

// String renders "HH:MM:SS [LEVEL] component: msg (key=value, ...)"; the
// level is shown for warnings and errors only.
func (e logEntry) String() string {
	if e.msg == "" {
		return e.raw
	}
	var b strings.Builder
	if e.time != "" {
		b.WriteString(e.time + " ")
	}
	if e.level >= slog.LevelWarn {
		b.WriteString(e.level.String() + " ")
	}
	if e.component != "" {
		b.WriteString(e.component + ": ")
	}
	b.WriteString(e.msg)
	if len(e.params) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.params, ", "))
	}
	return b.String()
}

func formatLogLine(raw string) string {
	return parseLogLine(raw).String()
}

// handleLatestLog returns the last captured log line and the formatted tail.
// The tail can be narrowed with ?component=session and ?level=warn.
func handleLatestLog(w http.ResponseWriter, r *http.Request) {
	component := r.URL.Query().Get("component")
	minLevel := slog.LevelDebug
	if lv := r.URL.Query().Get("level"); lv != "" {
		minLevel = logging.ParseLevel(lv)
	}

	tail := []string{}
	for _, l := range logging.GlobalLogCapture.Lines() {
		e := parseLogLine(l)
		if e.level < minLevel || (component != "" && e.component != component) {
			continue
		}
		tail = append(tail, e.String())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"log":  formatLogLine(logging.GlobalLogCapture.GetLastLine()),
		"tail": tail,
	})
}
