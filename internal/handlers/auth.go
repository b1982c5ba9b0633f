package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/sakshee44566/CareerHub/internal/session"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type AuthHandler struct {
	sessions *session.Authority
}

func NewAuthHandler(sessions *session.Authority) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Login exchanges the admin credentials for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	// An empty body is an attempt with no credentials, rejected like a wrong password.
	if err := decodeBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondBadBody(w, err)
		return
	}

	token, err := h.sessions.Login(req.Username, req.Password)
	if errors.Is(err, session.ErrInvalidCredentials) {
		slog.Warn("admin login rejected",
			"request_id", middleware.GetReqID(r.Context()),
			"remote", r.RemoteAddr,
		)
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		slog.Error("mint session token", "err", err, "request_id", middleware.GetReqID(r.Context()))
		respondError(w, http.StatusInternalServerError, "token error")
		return
	}
	respondJSON(w, http.StatusOK, LoginResponse{Token: token})
}

// Logout revokes the presented token, if any. It always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := session.BearerToken(r.Header.Get("Authorization")); token != "" {
		h.sessions.Logout(token)
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
