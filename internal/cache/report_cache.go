package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/simonepenna/adibodyes/internal/config"
	"github.com/simonepenna/adibodyes/internal/domain"
)

const stockReportKey = "stock:report"

// ReportCache shields the upstream systems (Shopify, GLS, Google Sheets)
// from repeated report builds. There is a single current report, so the
// cache holds one key.
type ReportCache interface {
	Get(ctx context.Context) (*domain.StockReport, bool, error)
	Set(ctx context.Context, report *domain.StockReport) error
	Invalidate(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) Get(ctx context.Context) (*domain.StockReport, bool, error) {
	payload, err := c.client.Get(ctx, stockReportKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.StockReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode stock report cache: %w", err)
	}

	return &report, true, nil
}

func (c *redisReportCache) Set(ctx context.Context, report *domain.StockReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode stock report cache: %w", err)
	}

	if err := c.client.Set(ctx, stockReportKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, stockReportKey).Err()
}

func (n *noopReportCache) Get(ctx context.Context) (*domain.StockReport, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) Set(ctx context.Context, report *domain.StockReport) error {
	return nil
}

func (n *noopReportCache) Invalidate(ctx context.Context) error {
	return nil
}
