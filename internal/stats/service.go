package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Service serves aggregate figures through a Redis read-through cache.
// Concurrent cache misses for the same key are collapsed with singleflight
// so each aggregate hits Postgres at most once per TTL window.
type Service struct {
	logger *slog.Logger
	repo   Repository
	cache  *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewService builds a Service instance. A nil cache client disables caching.
func NewService(logger *slog.Logger, repo Repository, cache *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		logger: logger,
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
	}
}

// MonthlyRevenue returns per-month settled revenue for the given year.
func (s *Service) MonthlyRevenue(ctx context.Context, companyID string, year int) ([]MonthlyRevenue, error) {
	key := fmt.Sprintf("stats:%s:revenue:%d", companyID, year)
	return cached(ctx, s, key, func(ctx context.Context) ([]MonthlyRevenue, error) {
		return s.repo.MonthlyRevenue(ctx, companyID, year)
	})
}

// TopCustomers returns customers ranked by settled gross revenue.
func (s *Service) TopCustomers(ctx context.Context, companyID string, limit int) ([]CustomerRevenue, error) {
	key := fmt.Sprintf("stats:%s:customers:%d", companyID, limit)
	return cached(ctx, s, key, func(ctx context.Context) ([]CustomerRevenue, error) {
		return s.repo.TopCustomers(ctx, companyID, limit)
	})
}

// Overview returns the receivables summary.
func (s *Service) Overview(ctx context.Context, companyID string) (Overview, error) {
	key := "stats:" + companyID + ":overview"
	return cached(ctx, s, key, func(ctx context.Context) (Overview, error) {
		return s.repo.Overview(ctx, companyID)
	})
}

// Invalidate drops all cached aggregates for the company. Called after
// writes that change the financial picture.
func (s *Service) Invalidate(ctx context.Context, companyID string) {
	if s.cache == nil {
		return
	}
	iter := s.cache.Scan(ctx, 0, "stats:"+companyID+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("stats cache scan failed", slog.Any("error", err))
		return
	}
	if len(keys) > 0 {
		if err := s.cache.Del(ctx, keys...).Err(); err != nil {
			s.logger.Warn("stats cache invalidation failed", slog.Any("error", err))
		}
	}
}

// cached wraps a loader with the read-through and singleflight logic. Cache
// failures degrade to direct queries, never to request errors.
func cached[T any](ctx context.Context, s *Service, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var out T
			if err := json.Unmarshal(raw, &out); err == nil {
				return out, nil
			}
			// stale or corrupt entry, fall through to reload
		} else if err != redis.Nil {
			s.logger.Warn("stats cache read failed", slog.String("key", key), slog.Any("error", err))
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		out, err := load(ctx)
		if err != nil {
			return zero, err
		}
		if s.cache != nil {
			if raw, err := json.Marshal(out); err == nil {
				if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
					s.logger.Warn("stats cache write failed", slog.String("key", key), slog.Any("error", err))
				}
			}
		}
		return out, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}
