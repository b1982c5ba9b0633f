package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/sakshee44566/CareerHub/internal/notify"
)

// Relay queues submissions for delivery and can probe its transport.
type Relay interface {
	notify.Notifier
	notify.Verifier
}

const verifyTimeout = 15 * time.Second

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type SubscribeRequest struct {
	Email string `json:"email"`
}

type ContactHandler struct {
	relay Relay
}

func NewContactHandler(relay Relay) *ContactHandler {
	return &ContactHandler{relay: relay}
}

func (h *ContactHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadBody(w, err)
		return
	}
	p := notify.Payload{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if p.Name == "" || p.Email == "" || p.Subject == "" || p.Message == "" {
		respondError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	if err := h.enqueue(r, notify.KindContact, p); err != nil {
		respondJSON(w, http.StatusOK, map[string]string{
			"message": "Message received (email delivery pending)",
			"note":    "Your message has been received and will be processed shortly.",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Message sent successfully"})
}

func (h *ContactHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadBody(w, err)
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		respondError(w, http.StatusBadRequest, "Email is required")
		return
	}

	_ = h.enqueue(r, notify.KindSubscribe, notify.Payload{Email: email})
	respondJSON(w, http.StatusOK, map[string]string{"message": "Successfully subscribed to newsletter"})
}

// VerifyEmail probes the notification transport (session protected).
func (h *ContactHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), verifyTimeout)
	defer cancel()

	if err := h.relay.Verify(ctx); err != nil {
		slog.Error("notifier verify failed", "err", err, "request_id", middleware.GetReqID(r.Context()))
		respondJSON(w, http.StatusBadGateway, map[string]interface{}{"ok": false, "error": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// enqueue hands the submission to the relay. A failure is logged with the
// full submission for manual follow-up and returned.
func (h *ContactHandler) enqueue(r *http.Request, kind notify.Kind, p notify.Payload) error {
	err := h.relay.Notify(r.Context(), kind, p)
	if err != nil {
		slog.Warn("submission not queued",
			"err", err,
			"kind", kind,
			"name", p.Name,
			"email", p.Email,
			"subject", p.Subject,
			"message", p.Message,
			"request_id", middleware.GetReqID(r.Context()),
		)
	}
	return err
}
