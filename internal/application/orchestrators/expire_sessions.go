package orchestrators

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSessionTimeout is how long a session may stay open before the
// sweeper closes it.
const DefaultSessionTimeout = 2 * time.Hour

// SessionExpirer is the store interface needed by ExpireSessions.
type SessionExpirer interface {
	ExpireOlderThan(ctx context.Context, cutoff, now time.Time) (int, error)
	CountOpen(ctx context.Context) (int, error)
}

// ExpiryRecorder receives sweeper results.
type ExpiryRecorder interface {
	RecordExpired(n int)
	SetOpenSessions(n int)
}

// ExpireSessionsInput carries input for ExpireSessions.
type ExpireSessionsInput struct {
	Timeout time.Duration
}

// ExpireSessionsResult reports one sweep.
type ExpireSessionsResult struct {
	Expired int
	Open    int
}

// ExpireSessionsDeps holds dependencies for ExpireSessions.
type ExpireSessionsDeps struct {
	SessionStore SessionExpirer
	Metrics      ExpiryRecorder // optional
	Now          func() time.Time
}

// ExecuteExpireSessions closes sessions opened before now-Timeout and
// re-derives every court's occupancy from its remaining open sessions.
// PRE: Timeout > 0, or zero for the default
// POST: no open session is older than Timeout
func ExecuteExpireSessions(ctx context.Context, input ExpireSessionsInput, deps ExpireSessionsDeps) (ExpireSessionsResult, error) {
	timeout := input.Timeout
	if timeout <= 0 {
		timeout = DefaultSessionTimeout
	}
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	t := now()

	n, err := deps.SessionStore.ExpireOlderThan(ctx, t.Add(-timeout), t)
	if err != nil {
		return ExpireSessionsResult{}, err
	}
	open, err := deps.SessionStore.CountOpen(ctx)
	if err != nil {
		return ExpireSessionsResult{Expired: n}, err
	}

	if deps.Metrics != nil {
		deps.Metrics.RecordExpired(n)
		deps.Metrics.SetOpenSessions(open)
	}
	if n > 0 {
		slog.Info("checkin_event", "event", "sessions_expired", "count", n, "timeout", timeout.String())
	}
	return ExpireSessionsResult{Expired: n, Open: open}, nil
}

// StartSessionSweeper runs ExpireSessions every interval until ctx is
// cancelled. The returned channel is closed when the goroutine exits.
func StartSessionSweeper(ctx context.Context, interval time.Duration, input ExpireSessionsInput, deps ExpireSessionsDeps) <-chan struct{} {
	if interval <= 0 {
		interval = time.Minute
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := ExecuteExpireSessions(ctx, input, deps); err != nil && ctx.Err() == nil {
					slog.Error("sweeper_error", "error", err)
				}
			}
		}
	}()
	return done
}
