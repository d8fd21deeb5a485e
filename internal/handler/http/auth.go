package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/openshelf/storefront/internal/domain"
	"github.com/openshelf/storefront/internal/session"
	apperrors "github.com/openshelf/storefront/pkg/errors"
	"github.com/openshelf/storefront/pkg/httputil"
	"github.com/openshelf/storefront/pkg/validator"
)

// Authenticator is the sign-in flow surface.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (session.Session, error)
	Register(ctx context.Context, profile domain.RegisterProfile) (session.Session, error)
	Logout()
}

// ProfileAPI reads and updates the signed-in shopper's profile.
type ProfileAPI interface {
	GetProfile(ctx context.Context) (domain.User, error)
	UpdateProfile(ctx context.Context, user domain.User) (domain.User, error)
}

// Aggregates is the slice of commerce state that follows session changes:
// sign-in pulls the shopper's server-side cart and favorites, sign-out drops
// them.
type Aggregates interface {
	Reload(ctx context.Context) error
	Reset()
}

// AuthHandler handles HTTP requests for the authentication endpoints.
type AuthHandler struct {
	auth       Authenticator
	profile    ProfileAPI
	session    *session.Store
	aggregates Aggregates
	logger     *slog.Logger
}

func NewAuthHandler(auth Authenticator, profile ProfileAPI, store *session.Store, aggregates Aggregates, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, profile: profile, session: store, aggregates: aggregates, logger: logger}
}

// --- Request DTOs ---

// LoginRequest is the JSON request body for signing in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the JSON request body for creating an account.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// UpdateProfileRequest is the JSON request body for profile updates.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// --- Handlers ---

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sess, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.aggregates.Reload(r.Context()); err != nil {
		h.logger.Warn("load shopper state after sign-in", slog.String("error", err.Error()))
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: sess})
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sess, err := h.auth.Register(r.Context(), domain.RegisterProfile{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.aggregates.Reload(r.Context()); err != nil {
		h.logger.Warn("load shopper state after registration", slog.String("error", err.Error()))
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: sess})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout()
	h.aggregates.Reset()

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.session.Current()})
}

// GetSession handles GET /api/v1/auth/session
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.session.Current()})
}

// GetProfile handles GET /api/v1/auth/profile
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if !h.session.Authenticated() {
		httputil.WriteError(w, r, apperrors.Unauthorized("please sign in to view your profile"), h.logger)
		return
	}

	user, err := h.profile.GetProfile(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// UpdateProfile handles PUT /api/v1/auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if !h.session.Authenticated() {
		httputil.WriteError(w, r, apperrors.Unauthorized("please sign in to update your profile"), h.logger)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	user := h.session.Current().User
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}

	updated, err := h.profile.UpdateProfile(r.Context(), user)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: updated})
}
