package handler

import (
	"net/http"

	"github.com/recipebox/recipebox-go/internal/model"
	"github.com/recipebox/recipebox-go/internal/respond"
	"github.com/recipebox/recipebox-go/internal/service"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service *service.AuthService
	rs      *respond.Responder
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, rs *respond.Responder) *AuthHandler {
	return &AuthHandler{service: svc, rs: rs}
}

// HandleSignup handles POST /api/auth/signup requests.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if !decodeJSON(h.rs, w, r, &req) {
		return
	}

	resp, err := h.service.Signup(r.Context(), req)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.rs.JSON(w, http.StatusCreated, resp)
}

// HandleLogin handles POST /api/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(h.rs, w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.rs.JSON(w, http.StatusOK, resp)
}

// HandleRefresh handles POST /api/auth/refresh-token requests.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if !decodeJSON(h.rs, w, r, &req) {
		return
	}

	resp, err := h.service.Refresh(r.Context(), req)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}

	h.rs.JSON(w, http.StatusOK, resp)
}
