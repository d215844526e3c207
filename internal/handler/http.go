package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/whosthatpokemon/internal/auth"
	"github.com/whosthatpokemon/internal/config"
	"github.com/whosthatpokemon/internal/domain"
	"github.com/whosthatpokemon/internal/game"
	"github.com/whosthatpokemon/internal/leaderboard"
	"github.com/whosthatpokemon/internal/pokedex"
	"github.com/whosthatpokemon/internal/redis"
	"github.com/whosthatpokemon/internal/websocket"
)

// Handler provides the HTTP API.
type Handler struct {
	auth        *auth.Service
	game        *game.Service
	pokedex     *pokedex.Service
	leaderboard *leaderboard.Service
	hub         *websocket.Hub
	limiter     *redis.RateLimiter
	cfg         *config.Config
	logger      *slog.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	authSvc *auth.Service,
	gameSvc *game.Service,
	dex *pokedex.Service,
	lb *leaderboard.Service,
	hub *websocket.Hub,
	limiter *redis.RateLimiter,
	cfg *config.Config,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		auth:        authSvc,
		game:        gameSvc,
		pokedex:     dex,
		leaderboard: lb,
		hub:         hub,
		limiter:     limiter,
		cfg:         cfg,
		logger:      logger,
	}
}

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Router creates and configures the HTTP router.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(h.corsMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint
	r.Get("/ws", h.HandleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(h.rateLimitMiddleware)
				r.Post("/register", h.Register)
				r.Post("/login", h.Login)
				r.Post("/guest", h.GuestLogin)
				r.Get("/google/url", h.GoogleAuthURL)
				r.Post("/google/callback", h.GoogleLogin)
				r.Post("/refresh", h.RefreshToken)
			})
			r.Group(func(r chi.Router) {
				r.Use(h.authMiddleware)
				r.Get("/me", h.Me)
				r.Put("/profile", h.UpdateProfile)
				r.Post("/logout", h.Logout)
			})
		})

		r.Route("/pokemon", func(r chi.Router) {
			r.Get("/", h.ListPokemon)
			r.Get("/search", h.SearchPokemon)
			r.Get("/random", h.GetRandomPokemon)
			r.Get("/types", h.GetTypes)
			r.Get("/name/{name}", h.GetPokemonByName)
			r.Get("/{id}", h.GetPokemonByID)
		})

		r.Route("/game", func(r chi.Router) {
			r.Use(h.authMiddleware)
			r.Post("/start", h.StartGame)
			r.Post("/guess", h.SubmitGuess)
			r.Post("/end", h.EndGame)
			r.Get("/history", h.GetHistory)
			r.Get("/stats", h.GetStats)
			r.Get("/achievements", h.GetAchievements)
			r.Get("/leaderboard", h.GetGameLeaderboard)
		})

		r.Route("/leaderboard", func(r chi.Router) {
			r.Get("/{period}", h.GetLeaderboard)
			r.Get("/{period}/top", h.GetLeaderboardTop)
		})
	})

	return r
}

// corsMiddleware adds CORS headers for the configured origins.
func (h *Handler) corsMiddleware(next http.Handler) http.Handler {
	allowed := h.cfg.Server.CORSOrigins
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, o := range allowed {
			if o == "*" || o == origin {
				w.Header().Set("Access-Control-Allow-Origin", o)
				break
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type contextKey string

const (
	ctxKeyUserID  contextKey = "userID"
	ctxKeyIsGuest contextKey = "isGuest"
)

// authMiddleware requires a valid bearer access token and stores the user
// identity on the request context.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			h.writeError(w, http.StatusUnauthorized, domain.ErrInvalidToken)
			return
		}

		userID, isGuest, err := h.auth.VerifyAccess(token)
		if err != nil {
			h.writeError(w, http.StatusUnauthorized, domain.ErrInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, userID)
		ctx = context.WithValue(ctx, ctxKeyIsGuest, isGuest)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimitMiddleware throttles by client IP using the shared Redis counter.
func (h *Handler) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.limiter == nil || !h.cfg.RateLimit.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		allowed, err := h.limiter.Allow(r.Context(), r.RemoteAddr)
		if err != nil {
			// A broken limiter should not take auth down with it.
			h.logger.Warn("rate limiter unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			h.writeError(w, http.StatusTooManyRequests, domain.ErrRateLimited)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// userID reads the authenticated user id from the request context.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKeyUserID).(string)
	return id
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a successful JSON response
func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// writeMessage writes a successful JSON response with a display message
func (h *Handler) writeMessage(w http.ResponseWriter, status int, data interface{}, message string) {
	h.writeJSON(w, status, APIResponse{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, APIResponse{
		Success:   false,
		Error:     err.Error(),
		Timestamp: time.Now().UTC(),
	})
}

// writeDomainError maps a service error onto an HTTP status.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsNotFoundError(err):
		h.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrInvalidToken):
		h.writeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, domain.ErrUserExists):
		h.writeError(w, http.StatusConflict, err)
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, domain.ErrInvalidPeriod):
		h.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrRateLimited):
		h.writeError(w, http.StatusTooManyRequests, err)
	default:
		h.logger.Error("request failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
	}
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "ready"})
}
