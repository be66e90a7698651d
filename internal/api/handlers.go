// Package api exposes HTTP handlers for the fitness service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dev0919/Fitness-App1/internal/auth"
	"github.com/dev0919/Fitness-App1/internal/domain"
	"github.com/dev0919/Fitness-App1/internal/service"
)

// DegradedHeader is set on mutating responses whose side effects were rolled back.
const DegradedHeader = "X-Degraded-Write"

// Handler coordinates HTTP requests with the fitness service.
type Handler struct {
	service     *service.Service
	tokens      auth.Config
	revocations auth.Revocations
	logger      *zap.Logger
	now         func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithRevocations enables logout through a revocation list.
func WithRevocations(revocations auth.Revocations) Option {
	return func(h *Handler) {
		h.revocations = revocations
	}
}

// WithLogger sets the request and error logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithClock overrides the clock used to issue tokens.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// NewHandler builds a Handler. tokens configures issued and accepted bearer tokens.
func NewHandler(svc *service.Service, tokens auth.Config, opts ...Option) *Handler {
	h := &Handler{
		service: svc,
		tokens:  tokens,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RouterConfig holds the cross-cutting HTTP settings.
type RouterConfig struct {
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Routes builds the router serving /v1, /healthz and /metrics.
func (h *Handler) Routes(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(h.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{DegradedHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authn := auth.NewMiddleware(h.tokens, auth.PublicPaths(
		"/healthz",
		"/metrics",
		"/v1/auth/register",
		"/v1/auth/login",
	), h.revocations)
	r.Use(authn.Wrap)

	if cfg.RateLimitRPS > 0 {
		r.Use(NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, h.logger).Handler)
	}

	r.Get("/healthz", healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)
		r.Post("/auth/logout", h.logout)

		r.Get("/users/me", h.me)
		r.Put("/users/me", h.updateProfile)

		r.Get("/workouts", h.listWorkouts)
		r.Post("/workouts", h.createWorkout)
		r.Get("/workouts/templates", h.listTemplates)
		r.Post("/workouts/templates/{id}/clone", h.cloneTemplate)
		r.Get("/workouts/{id}", h.getWorkout)
		r.Put("/workouts/{id}", h.updateWorkout)
		r.Delete("/workouts/{id}", h.deleteWorkout)
		r.Get("/workouts/{id}/exercises", h.listExercises)
		r.Post("/workouts/{id}/exercises", h.createExercise)
		r.Put("/exercises/{id}", h.updateExercise)
		r.Delete("/exercises/{id}", h.deleteExercise)

		r.Get("/goals", h.listGoals)
		r.Post("/goals", h.createGoal)
		r.Put("/goals/{id}", h.updateGoal)
		r.Delete("/goals/{id}", h.deleteGoal)

		r.Get("/friends", h.listFriends)
		r.Post("/friends", h.requestFriend)
		r.Put("/friends/{id}", h.respondToFriend)
		r.Post("/friends/import", h.importContacts)

		r.Get("/feed", h.feed)
		r.Get("/activities", h.listActivities)
		r.Post("/activities", h.postActivity)
		r.Get("/achievements", h.listAchievements)

		r.Get("/stats/summary", h.summaryStats)
		r.Get("/stats/workouts", h.workoutStats)
	})

	return r
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// actor returns the authenticated user id when the token carries scope.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request, scope string) (int64, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return 0, false
	}
	if !claims.HasScope(scope) {
		writeError(w, http.StatusForbidden, "forbidden", "scope "+scope+" required")
		return 0, false
	}
	return claims.UserID, true
}

func (h *Handler) reader(w http.ResponseWriter, r *http.Request) (int64, bool) {
	return h.actor(w, r, auth.ScopeFitnessRead)
}

func (h *Handler) writer(w http.ResponseWriter, r *http.Request) (int64, bool) {
	return h.actor(w, r, auth.ScopeFitnessWrite)
}

// decode parses and validates the JSON body into dst.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", validationDetail(err))
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return 0, false
	}
	return id, true
}

func markDegraded(w http.ResponseWriter, effects service.Effects) {
	if effects.Degraded() {
		w.Header().Set(DegradedHeader, "true")
	}
}

// fail maps service errors onto HTTP statuses.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimw.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
