package availability

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"reservaja/internal/domain/booking"
	"reservaja/internal/domain/catalog"
)

// CachedSource is a read-through redis decorator. Availability lookups are
// idempotent, so a short TTL amortizes repeated calendar renders without
// changing semantics. Cache failures degrade to the inner source; inner
// failures are never cached.
type CachedSource struct {
	Inner  Source
	Redis  *redis.Client
	TTL    time.Duration
	Logger *slog.Logger
}

func (s *CachedSource) AvailableDays(ctx context.Context, productID catalog.ProductID, charging booking.ChargingType) ([]string, error) {
	key := "availability:days:" + string(productID) + ":" + string(charging)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}
	days, err := s.Inner.AvailableDays(ctx, productID, charging)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, days)
	return days, nil
}

func (s *CachedSource) AvailableHours(ctx context.Context, productID catalog.ProductID, date string) ([]string, error) {
	key := "availability:hours:" + string(productID) + ":" + date
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}
	hours, err := s.Inner.AvailableHours(ctx, productID, date)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, hours)
	return hours, nil
}

func (s *CachedSource) fromCache(ctx context.Context, key string) ([]string, bool) {
	if s.Redis == nil {
		return nil, false
	}
	raw, err := s.Redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil && s.Logger != nil {
			s.Logger.Warn("availability cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, false
	}
	return values, true
}

func (s *CachedSource) toCache(ctx context.Context, key string, values []string) {
	if s.Redis == nil {
		return
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, key, raw, s.TTL).Err(); err != nil && s.Logger != nil {
		s.Logger.Warn("availability cache write failed", "key", key, "error", err)
	}
}

var _ Source = (*CachedSource)(nil)
