// Package server is the HTTP boundary. It validates requests, delegates to
// the session manager and maps error kinds to status codes. No stack traces
// cross this boundary, only the kind and a human-readable message.
package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"videoChat/core"
	"videoChat/session"
	"videoChat/youtube"
)

type Server struct {
	manager *session.Manager
	source  youtube.TranscriptSource
}

func New(manager *session.Manager, source youtube.TranscriptSource) *Server {
	return &Server{manager: manager, source: source}
}

// Routes builds the full route table wrapped in CORS and request logging.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /api/transcripts", s.handleTranscripts)
	mux.HandleFunc("POST /api/process", s.handleProcess)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/chat/timestamps", s.handleChatTimestamps)
	mux.HandleFunc("GET /api/status/{id}", s.handleStatus)
	mux.HandleFunc("DELETE /api/clear/{id}", s.handleClear)
	mux.HandleFunc("GET /api/videos", s.handleVideos)
	mux.HandleFunc("GET /api/analytics/{id}", s.handleAnalytics)
	mux.HandleFunc("GET /api/sentiment/{id}", s.handleSentiment)
	mux.HandleFunc("GET /api/summary/{id}", s.handleSummary)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/export/{id}", s.handleExport)

	return withCORS(withRequestLog(mux))
}

func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()[:8]
		log.Printf("[%s] %s %s", reqID, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error's kind to a status code and hides everything but
// the message.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch core.KindOf(err) {
	case core.KindInvalidInput:
		status = http.StatusBadRequest
	case core.KindNotFound:
		status = http.StatusNotFound
	case core.KindNotReady:
		status = http.StatusConflict
	case core.KindUpstreamTransient:
		status = http.StatusServiceUnavailable
	case core.KindUpstreamPermanent:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{
		"error":  core.KindOf(err).String(),
		"detail": err.Error(),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_input", "detail": "invalid JSON body"})
		return false
	}
	return true
}
