package cache

import (
	"context"
	"time"

	"jardinerp/backend/internal/domain"
)

// SummaryCache memoizes derived period summaries. Every committed
// operation invalidates the whole cache, so a stale read is never
// served.
type SummaryCache interface {
	Get(ctx context.Context, key string) (*domain.Summary, bool, error)
	Set(ctx context.Context, key string, value *domain.Summary, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type NoopSummaryCache struct{}

func (NoopSummaryCache) Get(_ context.Context, _ string) (*domain.Summary, bool, error) {
	return nil, false, nil
}

func (NoopSummaryCache) Set(_ context.Context, _ string, _ *domain.Summary, _ time.Duration) error {
	return nil
}

func (NoopSummaryCache) Invalidate(_ context.Context) error {
	return nil
}
