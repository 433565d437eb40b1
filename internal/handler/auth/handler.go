// Package auth exposes registration, login and the current-account endpoint.
package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/collegebuddy/backend/internal/middleware"
	"github.com/collegebuddy/backend/internal/model/user"
	authservice "github.com/collegebuddy/backend/internal/service/auth"
	"github.com/collegebuddy/backend/internal/store"
	"github.com/collegebuddy/backend/pkg/utils"
)

var validate = validator.New()

// Handler implements the auth endpoints.
type Handler struct {
	st      *store.Store
	authSvc *authservice.Service
}

// New creates the auth handler.
func New(st *store.Store, authSvc *authservice.Service) *Handler {
	return &Handler{st: st, authSvc: authSvc}
}

// RegisterRoutes mounts the public auth endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
}

// RegisterProtectedRoutes mounts endpoints that require a valid token.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/auth/me", h.handleMe)
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required"`
	Branch   string `json:"branch"`
	Year     int    `json:"year" validate:"omitempty,min=1,max=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	hashed, err := authservice.HashPassword(payload.Password)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	created, err := h.st.CreateUser(r.Context(), user.User{
		Username: payload.Username,
		Email:    payload.Email,
		Password: hashed,
		Name:     payload.Name,
		Branch:   payload.Branch,
		Year:     payload.Year,
	})
	if errors.Is(err, store.ErrEmailTaken) || errors.Is(err, store.ErrUsernameTaken) {
		utils.RespondError(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	token, err := h.authSvc.IssueToken(created.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessionResponse{User: created.Public(), Token: token})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.st.GetUserByEmail(r.Context(), payload.Email)
	if err != nil || !authservice.CheckPassword(u.Password, payload.Password) {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.authSvc.IssueToken(u.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessionResponse{User: u.Public(), Token: token})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "access token required")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]user.User{"user": u.Public()})
}
