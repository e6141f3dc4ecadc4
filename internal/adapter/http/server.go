package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/civicsignal/incident-fusion/internal/domain"
	"github.com/civicsignal/incident-fusion/internal/pipeline"
)

// Engine is the pipeline surface the HTTP API exposes.
type Engine interface {
	CheckReadiness(ctx context.Context) error
	RunOnce(ctx context.Context) (pipeline.RunResult, error)
	SynthesizeStored(ctx context.Context) (pipeline.RunResult, error)
	IngestOne(ctx context.Context, raw domain.RawReport) (domain.CategorizedReport, error)
}

// Server exposes health, readiness, metrics, task-trigger, and report-intake
// HTTP endpoints.
type Server struct {
	httpServer    *http.Server
	engine        Engine
	verifier      domain.MediaVerifier
	mediaClient   *http.Client
	maxMediaBytes int64
	logger        *slog.Logger
}

// NewServer creates the API server. Pass a nil verifier to accept reports
// without checking their attached media.
func NewServer(addr string, engine Engine, verifier domain.MediaVerifier, maxMediaBytes int64, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine:        engine,
		verifier:      verifier,
		mediaClient:   &http.Client{Timeout: 15 * time.Second},
		maxMediaBytes: maxMediaBytes,
		logger:        logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /tasks/run", s.handleRun)
	mux.HandleFunc("POST /tasks/synthesize", s.handleSynthesize)
	mux.HandleFunc("POST /reports", s.handleReport)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.engine.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.RunOnce(r.Context())
	if err != nil {
		s.logger.Error("manual run failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.SynthesizeStored(r.Context())
	if err != nil {
		s.logger.Error("synthesis failed", "error", err)
		status := http.StatusBadGateway
		if errors.Is(err, context.Canceled) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleReport accepts a single citizen-submitted report. Reports with an
// attached media URL pass through the verification gate before entering the
// store.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var raw domain.RawReport
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&raw); err != nil || raw == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be a JSON object"})
		return
	}

	if mediaURL := mediaURLOf(raw); mediaURL != "" && s.verifier != nil {
		verdict, err := s.verifyMedia(r.Context(), mediaURL, raw)
		if err != nil {
			// The gate closes on any verification failure: the error is
			// logged and the report rejected, never surfaced to the caller.
			s.logger.Error("media verification failed", "error", err, "media_url", mediaURL)
			verdict = false
		}
		if !verdict {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"status": "rejected",
				"error":  "media does not match the report",
			})
			return
		}
	}

	report, err := s.engine.IngestOne(r.Context(), raw)
	if err != nil {
		s.logger.Error("report intake failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, report)
}

// verifyMedia downloads the attachment, bounded by the configured size
// limit, and asks the verifier for a verdict.
func (s *Server) verifyMedia(ctx context.Context, mediaURL string, raw domain.RawReport) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return false, fmt.Errorf("create media request: %w", err)
	}

	resp, err := s.mediaClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("fetch media: status %d", resp.StatusCode)
	}

	media, err := io.ReadAll(io.LimitReader(resp.Body, s.maxMediaBytes+1))
	if err != nil {
		return false, fmt.Errorf("read media: %w", err)
	}
	if int64(len(media)) > s.maxMediaBytes {
		return false, fmt.Errorf("media exceeds %d byte limit", s.maxMediaBytes)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(media)
	}

	return s.verifier.VerifyMedia(ctx, media, mimeType, domain.ExtractText(raw))
}

func mediaURLOf(raw domain.RawReport) string {
	for _, key := range []string{"image_url", "media_url"} {
		if v, ok := raw[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
