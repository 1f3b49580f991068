package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"practice-engine/internal/domain"
	"practice-engine/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WritePolicy declares how attempt persistence relates to the session transition.
type WritePolicy string

const (
	// WriteEventual persists in the background. The caller never waits and failures are only logged.
	WriteEventual WritePolicy = "eventual"
	// WriteSynchronous persists before Record returns. Failures are still only logged.
	WriteSynchronous WritePolicy = "synchronous"
)

// ParseWritePolicy accepts the configured policy name. Empty means eventual.
func ParseWritePolicy(s string) (WritePolicy, error) {
	switch WritePolicy(s) {
	case "", WriteEventual:
		return WriteEventual, nil
	case WriteSynchronous:
		return WriteSynchronous, nil
	default:
		return "", fmt.Errorf("unknown attempt write policy %q", s)
	}
}

// AttemptSink receives every attempt created by a session. Record never fails
// into the caller; the in-memory session is authoritative.
type AttemptSink interface {
	Record(ctx context.Context, attempt domain.Attempt)
}

// WriterStats counts attempt writes since start.
type WriterStats struct {
	Submitted int64 `json:"submitted"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
}

// AttemptWriter persists attempts according to its WritePolicy.
type AttemptWriter struct {
	repo    domain.AttemptRepository
	policy  WritePolicy
	timeout time.Duration
	group   *errgroup.Group

	mu     sync.RWMutex
	closed bool

	submitted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewAttemptWriter bounds background writes to maxInflight; a write that finds
// no free slot is dropped.
func NewAttemptWriter(repo domain.AttemptRepository, policy WritePolicy, timeout time.Duration, maxInflight int) *AttemptWriter {
	if maxInflight <= 0 {
		maxInflight = 64
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	g := &errgroup.Group{}
	g.SetLimit(maxInflight)
	return &AttemptWriter{
		repo:    repo,
		policy:  policy,
		timeout: timeout,
		group:   g,
	}
}

func (w *AttemptWriter) Policy() WritePolicy { return w.policy }

func (w *AttemptWriter) Record(ctx context.Context, attempt domain.Attempt) {
	w.submitted.Add(1)
	// Writes outlive the request that produced them.
	base := context.WithoutCancel(ctx)

	// The read lock keeps Drain from starting its Wait between the closed
	// check and TryGo.
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		w.drop(attempt, "writer draining")
		return
	}
	if w.policy == WriteSynchronous {
		w.mu.RUnlock()
		w.write(base, attempt)
		return
	}
	defer w.mu.RUnlock()
	if !w.group.TryGo(func() error {
		w.write(base, attempt)
		return nil
	}) {
		w.drop(attempt, "too many in-flight writes")
	}
}

func (w *AttemptWriter) write(ctx context.Context, attempt domain.Attempt) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.repo.CreateAttempt(ctx, &attempt); err != nil {
		w.failed.Add(1)
		logger.Get().Error("AttemptWriter: failed to persist attempt",
			zap.String("attempt_id", attempt.ID),
			zap.String("session_id", attempt.SessionID),
			zap.String("question_id", attempt.QuestionID),
			zap.String("policy", string(w.policy)),
			zap.Error(err),
		)
		return
	}
	w.succeeded.Add(1)
	logger.Get().Debug("AttemptWriter: attempt persisted", zap.String("attempt_id", attempt.ID))
}

func (w *AttemptWriter) drop(attempt domain.Attempt, reason string) {
	w.dropped.Add(1)
	logger.Get().Warn("AttemptWriter: dropped attempt",
		zap.String("attempt_id", attempt.ID),
		zap.String("session_id", attempt.SessionID),
		zap.String("reason", reason),
	)
}

// Drain stops accepting writes and waits for in-flight ones until ctx is done.
func (w *AttemptWriter) Drain(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = w.group.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Get().Info("AttemptWriter: drained", zap.Any("stats", w.Stats()))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("attempt writer drain interrupted: %w", ctx.Err())
	}
}

func (w *AttemptWriter) Stats() WriterStats {
	return WriterStats{
		Submitted: w.submitted.Load(),
		Succeeded: w.succeeded.Load(),
		Failed:    w.failed.Load(),
		Dropped:   w.dropped.Load(),
	}
}

var _ AttemptSink = (*AttemptWriter)(nil)
