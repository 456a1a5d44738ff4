package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tubequiz/internal/cache"
	"tubequiz/internal/domain"
)

// CacheSessionRepository stores quiz sessions as JSON documents in the
// cache. Each Save refreshes the session's TTL.
type CacheSessionRepository struct {
	cache domain.Cache
	ttl   time.Duration
}

var _ domain.SessionRepository = (*CacheSessionRepository)(nil)

func NewCacheSessionRepository(c domain.Cache, ttl time.Duration) *CacheSessionRepository {
	return &CacheSessionRepository{cache: c, ttl: ttl}
}

func sessionKey(id string) string {
	return cache.GenerateCacheKey(cache.ServiceSession, "quiz", id)
}

func (r *CacheSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return domain.NewInternalError("failed to encode session", err)
	}
	if err := r.cache.Set(ctx, sessionKey(session.ID), string(data), r.ttl); err != nil {
		return domain.NewInternalError("failed to store session", err)
	}
	return nil
}

func (r *CacheSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := r.cache.Get(ctx, sessionKey(id))
	if errors.Is(err, domain.ErrCacheMiss) {
		return nil, domain.NewSessionNotFoundError(id)
	}
	if err != nil {
		return nil, domain.NewInternalError("failed to load session", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, domain.NewInternalError("failed to decode session", err)
	}
	return &session, nil
}

func (r *CacheSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.cache.Delete(ctx, sessionKey(id)); err != nil {
		return domain.NewInternalError("failed to delete session", err)
	}
	return nil
}
