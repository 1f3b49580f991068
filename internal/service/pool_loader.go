package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"practice-engine/internal/cache"
	"practice-engine/internal/domain"
	"practice-engine/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PoolLoader fetches the active question pool of a scope.
type PoolLoader interface {
	// Load returns a non-empty pool or a NO_QUESTIONS_AVAILABLE error.
	Load(ctx context.Context, scope domain.Scope) ([]domain.Question, error)
	// Invalidate drops the cached pool so the next Load reads the content store.
	Invalidate(ctx context.Context, scope domain.Scope) error
}

type poolLoaderImpl struct {
	repo      domain.QuestionRepository
	txManager domain.TransactionManager
	cache     domain.Cache
	ttl       time.Duration
	group     singleflight.Group
}

// NewPoolLoader creates a loader. cache may be nil to disable pool caching.
func NewPoolLoader(repo domain.QuestionRepository, txManager domain.TransactionManager, cache domain.Cache, ttl time.Duration) PoolLoader {
	return &poolLoaderImpl{
		repo:      repo,
		txManager: txManager,
		cache:     cache,
		ttl:       ttl,
	}
}

func (l *poolLoaderImpl) Load(ctx context.Context, scope domain.Scope) ([]domain.Question, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	key := cache.PoolKey(string(scope.Kind), scope.ID)

	if pool, ok := l.fromCache(ctx, key); ok {
		return pool, nil
	}

	v, err, shared := l.group.Do(key, func() (interface{}, error) {
		return l.fromStore(ctx, scope, key)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Get().Debug("PoolLoader: shared in-flight load", zap.String("scope", scope.String()))
	}
	return v.([]domain.Question), nil
}

func (l *poolLoaderImpl) fromCache(ctx context.Context, key string) ([]domain.Question, bool) {
	if l.cache == nil {
		return nil, false
	}
	raw, err := l.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("PoolLoader: cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var pool []domain.Question
	if err := json.Unmarshal([]byte(raw), &pool); err != nil || len(pool) == 0 {
		logger.Get().Warn("PoolLoader: discarding unreadable cached pool", zap.String("key", key), zap.Error(err))
		_ = l.cache.Delete(ctx, key)
		return nil, false
	}
	logger.Get().Debug("PoolLoader: cache hit", zap.String("key", key), zap.Int("size", len(pool)))
	return pool, true
}

func (l *poolLoaderImpl) fromStore(ctx context.Context, scope domain.Scope, key string) ([]domain.Question, error) {
	var questions []domain.Question
	err := l.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		questions, err = l.repo.GetActiveQuestionsByScope(txCtx, scope)
		return err
	})
	if err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			return nil, domainErr
		}
		logger.Get().Error("PoolLoader: content store read failed", zap.String("scope", scope.String()), zap.Error(err))
		return nil, domain.NewContentLoadError(scope, err)
	}

	pool := usableQuestions(questions)
	if len(pool) == 0 {
		logger.Get().Info("PoolLoader: no questions available", zap.String("scope", scope.String()))
		return nil, domain.NewNoQuestionsError(scope)
	}

	if l.cache != nil {
		if payload, err := json.Marshal(pool); err == nil {
			if err := l.cache.Set(ctx, key, string(payload), l.ttl); err != nil {
				logger.Get().Warn("PoolLoader: cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}

	logger.Get().Info("PoolLoader: loaded pool",
		zap.String("scope", scope.String()),
		zap.Int("size", len(pool)),
		zap.Int("dropped", len(questions)-len(pool)),
	)
	return pool, nil
}

// usableQuestions keeps active, well-formed single-select questions.
func usableQuestions(questions []domain.Question) []domain.Question {
	pool := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if !q.IsActive {
			continue
		}
		if err := q.Validate(); err != nil {
			logger.Get().Warn("PoolLoader: skipping malformed question", zap.String("question_id", q.ID), zap.Error(err))
			continue
		}
		if !q.IsSingleSelect() {
			logger.Get().Warn("PoolLoader: skipping multi-correct question", zap.String("question_id", q.ID))
			continue
		}
		pool = append(pool, q)
	}
	return pool
}

func (l *poolLoaderImpl) Invalidate(ctx context.Context, scope domain.Scope) error {
	if l.cache == nil {
		return nil
	}
	return l.cache.Delete(ctx, cache.PoolKey(string(scope.Kind), scope.ID))
}
