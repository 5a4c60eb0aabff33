package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nurpe/fleet-reports/internal/model"
)

const (
	dashboardKeyPrefix    = "reports:dashboard:"
	subscriptionKeyPrefix = "reports:subscription:"
)

func DashboardKey(scope string, r model.ReportRange) string {
	return dashboardKeyPrefix + scope + ":" + string(r)
}

func SubscriptionKey(scope string) string {
	return subscriptionKeyPrefix + scope
}

// ReportCache stores rendered view models in Redis as JSON.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func (c *ReportCache) GetDashboard(ctx context.Context, scope string, r model.ReportRange) (*model.DashboardReport, bool, error) {
	var report model.DashboardReport
	ok, err := c.get(ctx, DashboardKey(scope, r), &report)
	if err != nil || !ok {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *ReportCache) SetDashboard(ctx context.Context, scope string, report model.DashboardReport) error {
	return c.set(ctx, DashboardKey(scope, report.Range), report)
}

func (c *ReportCache) GetSubscription(ctx context.Context, scope string) (*model.SubscriptionUsage, bool, error) {
	var usage model.SubscriptionUsage
	ok, err := c.get(ctx, SubscriptionKey(scope), &usage)
	if err != nil || !ok {
		return nil, false, err
	}
	return &usage, true, nil
}

func (c *ReportCache) SetSubscription(ctx context.Context, scope string, usage model.SubscriptionUsage) error {
	return c.set(ctx, SubscriptionKey(scope), usage)
}

func (c *ReportCache) Ping(ctx context.Context) error {
	return HealthCheck(ctx, c.client)
}

func (c *ReportCache) get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// stale payload from an older layout, treat as a miss
		_ = c.client.Del(ctx, key).Err()
		return false, nil
	}
	return true, nil
}

func (c *ReportCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
