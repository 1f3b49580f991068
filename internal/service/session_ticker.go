package service

import (
	"context"
	"time"

	"practice-engine/internal/logger"

	"go.uber.org/zap"
)

// SessionTicker advances the clocks of all live sessions and discards idle ones.
// Each session is credited with its own wall time since it last ticked, so the
// interval only bounds how stale a clock can get.
type SessionTicker struct {
	sessions PracticeService
	interval time.Duration
	now      func() time.Time
}

func NewSessionTicker(sessions PracticeService, interval time.Duration) *SessionTicker {
	if interval <= 0 {
		interval = time.Second
	}
	return &SessionTicker{sessions: sessions, interval: interval, now: time.Now}
}

// Run ticks until ctx is cancelled.
func (t *SessionTicker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	logger.Get().Info("SessionTicker: started", zap.Duration("interval", t.interval))
	for {
		select {
		case <-ctx.Done():
			logger.Get().Info("SessionTicker: stopped")
			return
		case <-ticker.C:
			t.step()
		}
	}
}

func (t *SessionTicker) step() {
	now := t.now()
	expired := t.sessions.TickAll(now)
	evicted := t.sessions.EvictIdle(now)
	if expired > 0 || evicted > 0 {
		logger.Get().Debug("SessionTicker: tick",
			zap.Int("expired", expired),
			zap.Int("evicted", evicted),
			zap.Int("active", t.sessions.ActiveSessions()),
		)
	}
}
