package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/dimeda/stretcher-service/internal/apperr"
	"github.com/dimeda/stretcher-service/internal/auth"
	"github.com/dimeda/stretcher-service/internal/middleware"
	"github.com/dimeda/stretcher-service/internal/models"
)

// AuthHandler serves the portal login, session check and logout routes.
type AuthHandler struct {
	svc *auth.Service
	log *log.Entry
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(svc *auth.Service, logger *log.Entry) *AuthHandler {
	return &AuthHandler{svc: svc, log: logger}
}

// Login handles POST /api/auth/login (admin portal).
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.RoleAdmin, "Login successful")
}

// TechnicianLogin handles POST /api/auth/technician-login.
func (h *AuthHandler) TechnicianLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.RoleTechnician, "Technician login successful")
}

// CustomerLogin handles POST /api/auth/customer-login.
func (h *AuthHandler) CustomerLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.RoleCustomer, "Customer login successful")
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, role models.Role, message string) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	token, err := h.svc.Login(role, req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid password"})
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Message: message,
		Token:   token,
		Type:    role,
	})
}

// Check handles GET /api/auth/check. It never fails: an absent or invalid
// token simply reports an unauthenticated session.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	if token == "" {
		writeJSON(w, http.StatusOK, models.AuthCheckResponse{Authenticated: false})
		return
	}

	role, err := h.svc.Validate(token)
	if err != nil {
		writeJSON(w, http.StatusOK, models.AuthCheckResponse{Authenticated: false})
		return
	}

	writeJSON(w, http.StatusOK, models.AuthCheckResponse{Authenticated: true, Type: &role})
}

// Logout handles POST /api/auth/logout. Revoking an unknown token is a no-op,
// so logout always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	if token == "" {
		writeError(w, r, h.log, apperr.Validation("missing token", "token"))
		return
	}

	h.svc.Revoke(token)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
