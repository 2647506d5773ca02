package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/user/erp-api/internal/usecase"
)

// AuthHandler serves the authentication endpoints.
type AuthHandler struct {
	useCase usecase.AuthUseCase
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(uc usecase.AuthUseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{useCase: uc, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "email and password are required"})
		return
	}

	tok, err := h.useCase.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: tok})
}

type impersonateRequest struct {
	Grant string `json:"grant"`
}

// Impersonate handles POST /auth/impersonate: exchanges an admin-signed
// grant for a session token as the target user.
func (h *AuthHandler) Impersonate(w http.ResponseWriter, r *http.Request) {
	var req impersonateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	if req.Grant == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "grant is required"})
		return
	}

	tok, err := h.useCase.Impersonate(r.Context(), req.Grant)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: tok})
}
