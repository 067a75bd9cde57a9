package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// noopKeep bounds how many messages a NoopSender remembers.
const noopKeep = 100

// NoopSender stands in when no provider key is configured. Nothing leaves
// the process; each message is logged and kept so it can be inspected.
type NoopSender struct {
	seq atomic.Int64

	mu   sync.Mutex
	sent []SendRequest
}

// NewNoopSender returns an empty NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	return s.record(req), nil
}

func (s *NoopSender) SendBatch(_ context.Context, reqs []SendRequest) ([]SendResult, error) {
	results := make([]SendResult, 0, len(reqs))
	for _, req := range reqs {
		results = append(results, s.record(req))
	}
	return results, nil
}

// Sent returns a copy of the most recent messages, oldest first.
func (s *NoopSender) Sent() []SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SendRequest(nil), s.sent...)
}

func (s *NoopSender) record(req SendRequest) SendResult {
	s.mu.Lock()
	s.sent = append(s.sent, req)
	if len(s.sent) > noopKeep {
		s.sent = s.sent[len(s.sent)-noopKeep:]
	}
	s.mu.Unlock()

	id := fmt.Sprintf("noop-%d", s.seq.Add(1))
	slog.Info("email_skipped", "id", id, "to", req.To, "subject", req.Subject)
	return SendResult{MessageID: id, SentAt: time.Now()}
}
