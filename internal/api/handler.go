// Package api exposes the performance engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/brightpath/internal/course"
	"github.com/abhisek/brightpath/internal/performance"
	"github.com/abhisek/brightpath/internal/quiz"
	"github.com/abhisek/brightpath/internal/store"
)

const (
	maxBodyBytes      = 64 << 10
	defaultEventLimit = 20
	maxEventLimit     = 200
)

// EventReader is the read side of the event log used by the API.
type EventReader interface {
	Adaptations(ctx context.Context, learnerID string, opts store.QueryOpts) ([]store.AdaptationEvent, error)
	RewardTotals(ctx context.Context, learnerID string) (*store.RewardTotals, error)
}

// Handler serves the learner endpoints.
type Handler struct {
	quizzes *quiz.Service
	records store.RecordRepo
	events  EventReader
	planner *course.Planner
	logger  *slog.Logger
}

// New creates a Handler. planner may be nil, in which case course planning
// answers 503.
func New(quizzes *quiz.Service, records store.RecordRepo, events EventReader, planner *course.Planner, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		quizzes: quizzes,
		records: records,
		events:  events,
		planner: planner,
		logger:  logger,
	}
}

// Routes registers the handler's routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/learners/{learnerID}", func(r chi.Router) {
		r.Use(requireLearnerID)
		r.Post("/quizzes", h.handleCompleteQuiz)
		r.Get("/performance", h.handleGetPerformance)
		r.Delete("/performance", h.handleResetPerformance)
		r.Get("/adaptations", h.handleListAdaptations)
		r.Get("/rewards", h.handleGetRewards)
		r.Post("/course-plan", h.handlePlanCourse)
	})
}

// NewRouter returns a chi router with the standard middleware stack and the
// handler's routes mounted. CORS is enabled only when allowedOrigins is set.
func NewRouter(h *Handler, allowedOrigins ...string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(instrument)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"Content-Length"},
			MaxAge:         300,
		}))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	h.Routes(r)
	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func requireLearnerID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !quiz.ValidLearnerID(chi.URLParam(r, "learnerID")) {
			writeError(w, http.StatusBadRequest, "invalid learner ID")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type quizRequest struct {
	Score           float64  `json:"score"`
	Modality        string   `json:"modality"`
	Topic           string   `json:"topic"`
	CurrentStreak   *int     `json:"currentStreak,omitempty"`
	CompletionRatio *float64 `json:"completionRatio,omitempty"`
}

func (h *Handler) handleCompleteQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.quizzes.Complete(r.Context(), quiz.Submission{
		LearnerID:       chi.URLParam(r, "learnerID"),
		Score:           req.Score,
		Modality:        req.Modality,
		Topic:           req.Topic,
		CurrentStreak:   req.CurrentStreak,
		CompletionRatio: req.CompletionRatio,
	})
	switch {
	case errors.Is(err, quiz.ErrInvalidSubmission):
		quizzesCompleted.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, store.ErrConflict):
		quizzesCompleted.WithLabelValues("conflict").Inc()
		writeError(w, http.StatusConflict, "record is busy, try again")
		return
	case err != nil:
		quizzesCompleted.WithLabelValues("error").Inc()
		h.internalError(w, r, "complete quiz", err)
		return
	}
	quizzesCompleted.WithLabelValues("ok").Inc()
	difficultyDecisions.WithLabelValues(string(result.Decision.Rule), string(result.Decision.Direction)).Inc()
	writeJSON(w, http.StatusOK, result)
}

type performanceResponse struct {
	LearnerID   string              `json:"learnerId"`
	Version     int64               `json:"version"`
	Performance performance.History `json:"performance"`
	Recovered   bool                `json:"recovered,omitempty"`
	Exists      bool                `json:"exists"`
}

func (h *Handler) handleGetPerformance(w http.ResponseWriter, r *http.Request) {
	learnerID := chi.URLParam(r, "learnerID")
	rec, err := h.records.Get(r.Context(), learnerID)
	if err != nil {
		h.internalError(w, r, "get performance record", err)
		return
	}
	resp := performanceResponse{LearnerID: learnerID, Performance: performance.NewHistory()}
	if rec != nil {
		resp.Version = rec.Version
		resp.Performance = rec.History
		resp.Recovered = rec.Recovered
		resp.Exists = true
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleResetPerformance(w http.ResponseWriter, r *http.Request) {
	if err := h.records.Delete(r.Context(), chi.URLParam(r, "learnerID")); err != nil {
		h.internalError(w, r, "delete performance record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListAdaptations(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxEventLimit)
	}
	evts, err := h.events.Adaptations(r.Context(), chi.URLParam(r, "learnerID"), store.QueryOpts{Limit: limit})
	if err != nil {
		h.internalError(w, r, "list adaptations", err)
		return
	}
	out := make([]adaptationJSON, 0, len(evts))
	for _, e := range evts {
		out = append(out, toAdaptationJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetRewards(w http.ResponseWriter, r *http.Request) {
	totals, err := h.events.RewardTotals(r.Context(), chi.URLParam(r, "learnerID"))
	if err != nil {
		h.internalError(w, r, "reward totals", err)
		return
	}
	writeJSON(w, http.StatusOK, rewardsJSON{
		XP:              totals.XP,
		Gems:            totals.Gems,
		ByRarity:        totals.ByRarity,
		StreakMilestone: totals.StreakMilestone,
	})
}

func (h *Handler) handlePlanCourse(w http.ResponseWriter, r *http.Request) {
	if h.planner == nil {
		writeError(w, http.StatusServiceUnavailable, "course planning is not configured")
		return
	}
	var req course.Request
	if !h.decode(w, r, &req) {
		return
	}

	hist := performance.NewHistory()
	rec, err := h.records.Get(r.Context(), chi.URLParam(r, "learnerID"))
	if err != nil {
		h.internalError(w, r, "get performance record", err)
		return
	}
	if rec != nil {
		hist = rec.History
	}

	outline, err := h.planner.Plan(r.Context(), hist, req)
	switch {
	case errors.Is(err, course.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.WarnContext(r.Context(), "plan course", "error", err)
		writeError(w, http.StatusBadGateway, "course planner unavailable")
		return
	}
	writeJSON(w, http.StatusOK, outline)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.ErrorContext(r.Context(), op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
