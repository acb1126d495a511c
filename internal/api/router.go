// Package api exposes screenings over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/trustcheck/internal/model"
	"github.com/sells-group/trustcheck/internal/screen"
)

const maxBodyBytes = 1 << 20

// Screener runs one screening.
type Screener interface {
	Screen(ctx context.Context, entityName string, lang model.Language, maxResults int) (*model.ScreeningReport, error)
}

// Health is reported by GET /health.
type Health struct {
	OK           bool   `json:"ok"`
	Version      string `json:"version"`
	GoogleKeySet bool   `json:"googleKeySet"`
	GoogleCxSet  bool   `json:"googleCxSet"`
	MaxResults   int    `json:"maxResults"`
	CacheDriver  string `json:"cacheDriver"`
}

// Options configures the router.
type Options struct {
	CORSOrigins []string
	Health      Health
}

// AnalyzeRequest is the POST /analyze body.
type AnalyzeRequest struct {
	Query      string `json:"query"`
	Language   string `json:"language,omitempty"`
	MaxResults int    `json:"maxResults,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter builds the HTTP handler.
func NewRouter(s Screener, opts Options) http.Handler {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	health := opts.Health
	health.OK = true
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, health)
	})
	r.Post("/analyze", analyzeHandler(s))

	return r
}

func analyzeHandler(s Screener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnalyzeRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Query) == "" {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}

		lang, err := model.ParseLanguage(req.Language, "")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		maxResults := req.MaxResults
		if maxResults > 0 {
			maxResults = screen.ClampMaxResults(maxResults)
		}

		rep, err := s.Screen(r.Context(), req.Query, lang, maxResults)
		if err != nil {
			status := statusFor(r.Context(), err)
			zap.L().Warn("api: analyze failed",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Int("status", status),
				zap.Error(err),
			)
			writeError(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

// statusFor maps the screening error taxonomy onto HTTP statuses. A request
// whose own context has ended is 503 even when a provider error wraps the
// cancellation; a provider timeout on a live request stays 502.
func statusFor(ctx context.Context, err error) int {
	switch {
	case model.IsValidationError(err):
		return http.StatusBadRequest
	case ctx.Err() != nil:
		return http.StatusServiceUnavailable
	case model.IsProviderError(err):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
