package handlers

import (
	"fmt"
	"html"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/idalmas/chatterbox-be/internal/apperrors"
	"github.com/idalmas/chatterbox-be/internal/mail"
)

// DevMailHandler renders messages captured by the dev outbox so OTP emails
// can be inspected without a mail provider. Never mounted in production.
type DevMailHandler struct {
	outbox *mail.Outbox
}

// NewDevMailHandler creates a new DevMailHandler.
func NewDevMailHandler(outbox *mail.Outbox) *DevMailHandler {
	return &DevMailHandler{outbox: outbox}
}

// Get renders a stored message by ID.
func (h *DevMailHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	msg, ok := h.outbox.Get(id)
	if !ok {
		respondError(w, apperrors.New(apperrors.NotFound, "MAIL_NOT_FOUND"), true)
		return
	}

	body := msg.HTML
	if body == "" {
		body = "<pre>" + html.EscapeString(msg.Text) + "</pre>"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<html><body><p><b>To:</b> %s<br><b>Subject:</b> %s<br><b>Sent:</b> %s</p><hr>%s</body></html>",
		html.EscapeString(msg.To), html.EscapeString(msg.Subject), msg.SentAt.Format("2006-01-02 15:04:05"), body)
}
