package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/userstore/internal/api/shared"
	"github.com/phrazzld/userstore/internal/domain"
	"github.com/phrazzld/userstore/internal/platform/logger"
	"github.com/phrazzld/userstore/internal/redact"
	"github.com/phrazzld/userstore/internal/store"
)

// UsernameParam is the chi URL parameter naming the target user.
const UsernameParam = "username"

// RootGreeting is the body served at GET /.
const RootGreeting = "Hello, World!"

// UserHandler serves the user CRUD endpoints on top of a UserStore.
type UserHandler struct {
	store  store.UserStore
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userStore store.UserStore, logger *slog.Logger) *UserHandler {
	if userStore == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("userStore cannot be nil for UserHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}

	return &UserHandler{
		store:  userStore,
		logger: logger.With(slog.String("component", "user_handler")),
	}
}

// Root handles GET /
func (h *UserHandler) Root(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithText(w, r, http.StatusOK, RootGreeting)
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.respondWithError(w, r, fmt.Errorf("%w: %w", domain.ErrValidation, err))
		return
	}

	create := domain.CreateUser{Username: req.Username}
	if err := shared.ValidateRequest(create); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	msg, err := h.store.CreateUser(r.Context(), create)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("user created",
		slog.String("username", create.Username))
	shared.RespondWithJSON(w, r, http.StatusCreated, CreateUserResponse{Message: msg})
}

// GetUser handles GET /users/{username}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	username, ok := h.usernameFromPath(w, r)
	if !ok {
		return
	}

	user, err := h.store.GetUser(r.Context(), username)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// UpdateUser handles PATCH and PUT /users/{username}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	username, ok := h.usernameFromPath(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		h.respondWithError(w, r, fmt.Errorf("%w: %w", domain.ErrValidation, err))
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		h.respondWithError(w, r, fmt.Errorf("%w: age is required", domain.ErrValidation))
		return
	}

	if err := h.store.UpdateUser(r.Context(), username, domain.UpdateUser{Age: *req.Age}); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("user updated",
		slog.String("username", username),
		slog.Uint64("age", uint64(*req.Age)))
	w.WriteHeader(http.StatusOK)
}

// DeleteUser handles DELETE /users/{username}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username, ok := h.usernameFromPath(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteUser(r.Context(), username); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("user deleted",
		slog.String("username", username))
	w.WriteHeader(http.StatusOK)
}

// usernameFromPath extracts the username path parameter. chi matches
// against r.URL.RawPath when the request carried escapes that Path cannot
// represent (such as %2F), and against the already decoded Path otherwise,
// so the parameter is unescaped only in the first case.
func (h *UserHandler) usernameFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	username := chi.URLParam(r, UsernameParam)
	if r.URL.RawPath != "" {
		var err error
		if username, err = url.PathUnescape(username); err != nil {
			username = ""
		}
	}
	if username == "" {
		h.respondWithError(w, r, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrInvalidUsername))
		return "", false
	}
	return username, true
}

func (h *UserHandler) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}

// HealthHandler reports whether the store backend is reachable.
type HealthHandler struct {
	store  store.UserStore
	logger *slog.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(userStore store.UserStore, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		store:  userStore,
		logger: logger.With(slog.String("component", "health_handler")),
	}
}

// ServeHTTP handles GET /health
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("health check failed",
			slog.String("error", redact.Error(err)))
		shared.RespondWithText(w, r, http.StatusServiceUnavailable, "UNAVAILABLE")
		return
	}
	shared.RespondWithText(w, r, http.StatusOK, "OK")
}
