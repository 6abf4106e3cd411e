// Package worker exposes the answer pipeline over HTTP for the stateless
// request-handling call site, with optional answer caching and Prometheus
// metrics.
package worker

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"docqa/internal/domain"
	"docqa/internal/logger"
)

// Answerer is the pipeline-facing contract of the worker.
type Answerer interface {
	AnswerQuestion(ctx context.Context, question string) domain.Answer
}

// Reloader triggers a full knowledge base rescan.
type Reloader interface {
	Reload() (int, error)
}

// Handler serves the worker's HTTP API.
type Handler struct {
	pipeline Answerer
	reloader Reloader
	cache    *AnswerCache
	metrics  *Metrics
	logger   *slog.Logger
}

// NewHandler creates the worker handler. cache and metrics may be nil.
func NewHandler(pipeline Answerer, reloader Reloader, cache *AnswerCache, metrics *Metrics) *Handler {
	return &Handler{
		pipeline: pipeline,
		reloader: reloader,
		cache:    cache,
		metrics:  metrics,
		logger:   logger.WithComponent("worker-handler"),
	}
}

// Routes mounts the worker endpoints on the given mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /ask", h.Ask)
	mux.HandleFunc("POST /reload", h.Reload)
	mux.HandleFunc("GET /cache/stats", h.CacheStats)
	mux.HandleFunc("GET /healthz", h.Health)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
	}
}

type askRequest struct {
	Question string `json:"question"`
}

// Ask answers one question. The response always carries an answer text;
// the outcome field distinguishes generated answers from degraded ones.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" {
		h.writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	var answer domain.Answer
	cacheHit := false
	if h.cache != nil {
		answer, cacheHit = h.cache.GetOrCompute(ctx, req.Question, func(ctx context.Context) domain.Answer {
			return h.pipeline.AnswerQuestion(ctx, req.Question)
		})
	} else {
		answer = h.pipeline.AnswerQuestion(ctx, req.Question)
	}

	elapsed := time.Since(start)
	log.Info("question handled",
		"outcome", string(answer.Outcome),
		"matched", len(answer.Matches),
		"cache_hit", cacheHit,
		"latency_ms", elapsed.Milliseconds(),
	)
	if h.metrics != nil {
		h.metrics.QuestionsTotal.WithLabelValues(string(answer.Outcome)).Inc()
		h.metrics.RequestDuration.Observe(elapsed.Seconds())
		if h.cache != nil {
			if cacheHit {
				h.metrics.CacheHitsTotal.Inc()
			} else {
				h.metrics.CacheMissesTotal.Inc()
			}
		}
	}

	h.writeJSON(w, http.StatusOK, answer)
}

// Reload rescans the knowledge directory and drops cached answers.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.reloader == nil {
		h.writeError(w, http.StatusServiceUnavailable, "reload not available")
		return
	}
	count, err := h.reloader.Reload()
	if err != nil {
		h.logger.Error("knowledge reload failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "reload failed")
		return
	}
	if h.cache != nil {
		if err := h.cache.Invalidate(r.Context()); err != nil {
			h.logger.Error("cache invalidation failed", "error", err)
		}
	}
	if h.metrics != nil {
		h.metrics.DocumentsIndexed.Set(float64(count))
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"documents": count})
}

// CacheStats reports answer cache hit/miss counts.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	h.writeJSON(w, http.StatusOK, map[string]int64{"hits": hits, "misses": misses})
}

// Health is a liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// RequestID tags every request's context with a random ID for log
// correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err == nil {
			ctx := logger.WithRequestID(r.Context(), hex.EncodeToString(buf))
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}
