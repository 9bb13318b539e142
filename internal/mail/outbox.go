package mail

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Message is a mail captured by the dev outbox.
type Message struct {
	ID      string    `json:"id"`
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Text    string    `json:"text"`
	HTML    string    `json:"html"`
	SentAt  time.Time `json:"sentAt"`
}

// Outbox is the development Mailer: instead of delivering, it stores messages
// in memory and hands back a preview link served by the dev mail endpoint.
// Nothing leaves the process, so OTP codes stay inspectable during local
// testing without SMTP credentials.
type Outbox struct {
	mu       sync.Mutex
	messages map[string]Message
	baseURL  string
}

// NewOutbox creates an Outbox whose preview links are rooted at baseURL.
func NewOutbox(baseURL string) *Outbox {
	return &Outbox{
		messages: make(map[string]Message),
		baseURL:  baseURL,
	}
}

// Send stores the message and returns a preview link for it.
func (o *Outbox) Send(ctx context.Context, to, subject, text, html string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	msg := Message{
		ID:      uuid.New().String(),
		To:      to,
		Subject: subject,
		Text:    text,
		HTML:    html,
		SentAt:  time.Now(),
	}

	o.mu.Lock()
	o.messages[msg.ID] = msg
	o.mu.Unlock()

	return Result{Preview: o.baseURL + "/api/dev/mail/" + msg.ID}, nil
}

// Get returns a stored message by ID.
func (o *Outbox) Get(id string) (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	msg, ok := o.messages[id]
	return msg, ok
}

// Last returns the most recently stored message, if any.
func (o *Outbox) Last() (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var latest Message
	var found bool
	for _, msg := range o.messages {
		if !found || msg.SentAt.After(latest.SentAt) {
			latest = msg
			found = true
		}
	}
	return latest, found
}
