package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"simlink/pkg/logging"
)

func TestFormatLogLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Info",
			input: `time=2026-01-18T06:50:46.074+01:00 level=INFO msg="Function table built" component=dcs functions="31 " interface=AH-64D longparam=/very/long/path/to/definitions.yaml`,
			want:  "06:50:46 dcs: Function table built (functions=31, interface=AH-64D)",
		},
		{
			name:  "Warn",
			input: `time=2026-01-18T06:50:47.000+01:00 level=WARN msg="Duplicate export id" id=34`,
			want:  "06:50:47 WARN Duplicate export id (id=34)",
		},
		{
			name:  "NotStructured",
			input: "plain text",
			want:  "plain text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatLogLine(tt.input); got != tt.want {
				t.Errorf("formatLogLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandleLatestLog_Filters(t *testing.T) {
	saved := logging.GlobalLogCapture
	defer func() { logging.GlobalLogCapture = saved }()

	logging.GlobalLogCapture = logging.NewLogCaptureWriter(10)
	_, _ = logging.GlobalLogCapture.Write([]byte(
		"time=2026-01-18T06:50:46Z level=INFO msg=\"Link up\" component=session\n" +
			"time=2026-01-18T06:50:47Z level=WARN msg=\"Malformed record\" component=udp\n" +
			"time=2026-01-18T06:50:48Z level=ERROR msg=\"Send failed\" component=session\n"))

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"06:50:46 session: Link up", "06:50:47 WARN udp: Malformed record", "06:50:48 ERROR session: Send failed"}},
		{"?component=session", []string{"06:50:46 session: Link up", "06:50:48 ERROR session: Send failed"}},
		{"?level=warn", []string{"06:50:47 WARN udp: Malformed record", "06:50:48 ERROR session: Send failed"}},
		{"?component=session&level=error", []string{"06:50:48 ERROR session: Send failed"}},
		{"?component=falcon", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleLatestLog(rec, httptest.NewRequest(http.MethodGet, "/api/log/latest"+tt.query, nil))

			var body struct {
				Log  string   `json:"log"`
				Tail []string `json:"tail"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Log != "06:50:48 ERROR session: Send failed" {
				t.Errorf("log = %q", body.Log)
			}
			if len(body.Tail) != len(tt.want) {
				t.Fatalf("tail = %q, want %q", body.Tail, tt.want)
			}
			for i := range tt.want {
				if body.Tail[i] != tt.want[i] {
					t.Errorf("tail[%d] = %q, want %q", i, body.Tail[i], tt.want[i])
				}
			}
		})
	}
}
