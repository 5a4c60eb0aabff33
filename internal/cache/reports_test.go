package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/fleet-reports/internal/config"
	"github.com/nurpe/fleet-reports/internal/model"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "reports:dashboard:platform:7d", DashboardKey("platform", model.Range7Days))
	assert.Equal(t, "reports:dashboard:company:42:all", DashboardKey("company:42", model.RangeAll))
	assert.Equal(t, "reports:subscription:company:42", SubscriptionKey("company:42"))
}

func TestNewRedisClientFailsWithoutServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, config.RedisConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: ping failed")
}

func TestReportCacheSurfacesConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	c := NewReportCache(client, time.Minute)

	_, ok, err := c.GetDashboard(context.Background(), "platform", model.Range7Days)
	assert.False(t, ok)
	assert.Error(t, err)

	assert.Error(t, c.SetDashboard(context.Background(), "platform", model.DashboardReport{Range: model.Range7Days}))
}
