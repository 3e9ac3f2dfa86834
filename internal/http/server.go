package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"famfin/internal/data"
)

// Server exposes the data facade as a JSON API.
type Server struct {
	http.Server
	svc         *data.Service
	rateLimiter *rateLimiter
	stopOnce    sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, svc *data.Service) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:         svc,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /members", s.withRequestLog(s.handleListMembers))
	mux.HandleFunc("POST /members", s.withRequestLog(s.handleCreateMember))
	mux.HandleFunc("PUT /members/{id}", s.withRequestLog(s.handleUpdateMember))
	mux.HandleFunc("DELETE /members/{id}", s.withRequestLog(s.handleDeleteMember))

	mux.HandleFunc("GET /transactions", s.withRequestLog(s.handleListTransactions))
	mux.HandleFunc("POST /transactions", s.withRequestLog(s.handleCreateTransaction))
	mux.HandleFunc("POST /transactions/fuel", s.withRequestLog(s.handleCreateFuelEntry))
	mux.HandleFunc("PUT /transactions/{id}", s.withRequestLog(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.withRequestLog(s.handleDeleteTransaction))

	mux.HandleFunc("GET /categories", s.withRequestLog(s.handleListCategories))
	mux.HandleFunc("PUT /categories/{id}", s.withRequestLog(s.handleRenameCategory))
	mux.HandleFunc("DELETE /categories/{id}", s.withRequestLog(s.handleDeleteCategory))

	mux.HandleFunc("GET /summary", s.withRequestLog(s.handleSummary))

	return s
}

// Shutdown stops the rate limiter cleanup goroutine and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// withRequestLog tags the request with an id, logs start and completion, and
// applies rate limiting to writes.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := generateRequestID()
		ctx := r.Context()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.status,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady also reports which storage backend is serving requests.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "mode": string(s.svc.Mode())})
}
