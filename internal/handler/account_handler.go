package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/abernathy-accounts/internal/metrics"
	"github.com/prn-tf/abernathy-accounts/internal/service"
)

// AccountHandler handles account API requests.
type AccountHandler struct {
	accounts *service.AccountService
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts *service.AccountService, m *metrics.Metrics, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		metrics:  m,
		logger:   logger.With().Str("handler", "account").Logger(),
	}
}

// RegisterRoutes registers the account routes. Profile routes are wrapped
// with the API key middleware; registration and login are public.
func (h *AccountHandler) RegisterRoutes(r chi.Router, requireAPIKey func(http.Handler) http.Handler) {
	r.Post("/api/register", h.handleRegister)
	r.Post("/api/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(requireAPIKey)
		r.Get("/api/profile", h.handleProfiles)
		r.Patch("/api/profile", h.handleUpdateProfile)
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AccountHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.Registrations.Inc()
	}
	writeMessage(w, http.StatusCreated, "User registered successfully")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *AccountHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.LoginAttempts.WithLabelValues(metrics.ResultFailure).Inc()
		}
		h.writeServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.LoginAttempts.WithLabelValues(metrics.ResultSuccess).Inc()
	}

	// Only username and email leave the service; the hash never does.
	writeJSON(w, http.StatusOK, loginResponse{
		Message:  "Login successful",
		Username: user.Username,
		Email:    user.Email,
	})
}

func (h *AccountHandler) handleProfiles(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.Profiles(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	// domain.User excludes the password hash from its JSON form, so this
	// projection is hash-free by construction.
	writeJSON(w, http.StatusOK, users)
}

type updateProfileRequest struct {
	Email       string `json:"email"`
	NewUsername string `json:"newUsername"`
}

func (h *AccountHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := readJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := h.accounts.UpdateUsername(r.Context(), service.UpdateUsernameInput{
		Email:       req.Email,
		NewUsername: req.NewUsername,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Username updated successfully")
}

// writeServiceError maps service errors to stable status/message pairs.
func (h *AccountHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		writeMessage(w, http.StatusBadRequest, "All fields are required")
	case errors.Is(err, service.ErrInvalidEmail):
		writeMessage(w, http.StatusBadRequest, "Invalid email format")
	case errors.Is(err, service.ErrInvalidPassword):
		writeMessage(w, http.StatusBadRequest, "Password must be at least 8 characters")
	case errors.Is(err, service.ErrUserAlreadyExists):
		writeMessage(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrInvalidUsername):
		writeMessage(w, http.StatusBadRequest, "Invalid username")
	case errors.Is(err, service.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	default:
		// Persistence failures are fatal to the request, never silently
		// treated as an empty store.
		h.logger.Error().Err(err).Msg("request failed")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
