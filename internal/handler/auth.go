package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/pokedex-api/internal/apperror"
	"github.com/sakif/pokedex-api/internal/auth"
	"github.com/sakif/pokedex-api/internal/service"
)

// AuthHandler exposes registration, login and the current-user lookup.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister → create an account, answer with a token
//   - HandleLogin    → check credentials, answer with a token
//   - HandleMe       → return the user resolved by RequireAuth
//
// Tokens travel in the response body and come back in the Authorization
// header; there are no cookies.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// credentialsRequest is the body of both register and login.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a user.
//
// HTTP: POST /api/v1/users
// REQUEST BODY: {"email": "ash@example.com", "password": "pikachu"}
// RESPONSE: 201 {"user": {...}, "accessToken": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// HandleLogin exchanges credentials for a token.
//
// HTTP: POST /api/v1/session/email
// RESPONSE: 200 {"user": {...}, "accessToken": "..."}
//
// Unknown email and wrong password produce the same 401.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// HandleMe returns the authenticated user.
//
// HTTP: GET /api/v1/users/me (behind RequireAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		// Only reachable if the route is mounted without RequireAuth.
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}
	writeJSON(w, http.StatusOK, user)
}
