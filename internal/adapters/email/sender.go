package email

import (
	"context"
	"time"
)

// SendRequest is one outgoing message.
type SendRequest struct {
	To      []string
	From    string // Sender address, e.g. "CUTRACKIT <noreply@cutrackit.app>"; empty uses the sender default
	Subject string
	HTML    string
	ReplyTo string // Reply-to address; empty uses the sender default
}

// SendResult is what the provider reported for an accepted message.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers mail. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
