package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"simlink/pkg/logging"
	"simlink/pkg/session"
	"simlink/pkg/version"
)

// NewServer creates the HTTP server of the cockpit bridge.
// shutdown is called after a POST /api/shutdown has been answered.
func NewServer(addr string, hub *Hub, src SessionSource, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health and version
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2. Session
	sh := &SessionHandler{src: src, hub: hub}
	mux.HandleFunc("GET /api/status", sh.HandleStatus)
	mux.HandleFunc("GET /api/snapshot", sh.HandleSnapshot)
	mux.HandleFunc("POST /api/action", sh.HandleAction)

	// 3. Logs
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// 4. Live bridge
	mux.HandleFunc("GET /ws", hub.ServeWs)

	// 5. Shutdown
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Let the response flush first
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	return &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}

// SessionHandler serves the status report, snapshots and actions of the
// attached session.
type SessionHandler struct {
	src SessionSource
	hub *Hub
}

type statusReport struct {
	session.Status
	Clients int      `json:"clients"`
	Log     []string `json:"log"`
}

// HandleStatus returns the session status report.
func (h *SessionHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.src.Session()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": ErrDetached.Error()})
		return
	}
	writeJSON(w, http.StatusOK, statusReport{
		Status:  sess.Status(),
		Clients: h.hub.ClientCount(),
		Log:     logging.GlobalLogCapture.Lines(),
	})
}

// HandleSnapshot returns every exported value.
func (h *SessionHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.src.Session()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": ErrDetached.Error()})
		return
	}
	writeJSON(w, http.StatusOK, Message{Type: MessageTypeSnapshot, Timestamp: time.Now(), Session: sess.ID(), Data: sess.Snapshot()})
}

// HandleAction queues an action for the next tick.
func (h *SessionHandler) HandleAction(w http.ResponseWriter, r *http.Request) {
	var a ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.hub.Enqueue(a); err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrDetached):
			status = http.StatusServiceUnavailable
		case errors.Is(err, session.ErrQueueFull):
			status = http.StatusTooManyRequests
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
