package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func requiredValues() map[string]any {
	return map[string]any{
		"FLEET_API_BASE_URL": "https://fleet.example.com/api/",
		"DB_DSN":             "postgres://localhost/reports",
		"JWT_ACCESS_SECRET":  "secret",
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(requiredValues()))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 7090, cfg.HTTP.Port)
	assert.Equal(t, "https://fleet.example.com/api", cfg.FleetAPI.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.FleetAPI.Timeout)
	assert.Equal(t, 60*time.Second, cfg.Reports.CacheTTL)
	assert.Equal(t, "30d", cfg.Reports.DefaultRange)
	assert.Equal(t, time.UTC, cfg.Reports.Location())
	assert.Equal(t, "fleet.reports.exports", cfg.NATS.ExportsSubject)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.NATS.Enabled())
	assert.Empty(t, cfg.Reports.PDFFont)
}

func TestOverrides(t *testing.T) {
	values := requiredValues()
	values["HTTP_PORT"] = 8080
	values["FLEET_API_TIMEOUT"] = "3s"
	values["REDIS_ADDR"] = "localhost:6379"
	values["NATS_URL"] = "nats://localhost:4222"
	values["REPORTS_TIMEZONE"] = "Asia/Almaty"
	values["REPORTS_DEFAULT_RANGE"] = "7D"
	values["HTTP_CORS_ORIGINS"] = "https://a.example.com, https://b.example.com"
	values["REPORTS_PDF_FONT"] = " /fonts/NotoSans.ttf "

	cfg, err := fromViper(newViper(values))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 3*time.Second, cfg.FleetAPI.Timeout)
	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.NATS.Enabled())
	assert.Equal(t, "Asia/Almaty", cfg.Reports.Location().String())
	assert.Equal(t, "7d", cfg.Reports.DefaultRange)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "/fonts/NotoSans.ttf", cfg.Reports.PDFFont)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]any)
		wantErr string
	}{
		{name: "missing base url", mutate: func(m map[string]any) { delete(m, "FLEET_API_BASE_URL") }, wantErr: "FLEET_API_BASE_URL"},
		{name: "missing dsn", mutate: func(m map[string]any) { delete(m, "DB_DSN") }, wantErr: "DB_DSN"},
		{name: "missing secret", mutate: func(m map[string]any) { delete(m, "JWT_ACCESS_SECRET") }, wantErr: "JWT_ACCESS_SECRET"},
		{name: "bad range", mutate: func(m map[string]any) { m["REPORTS_DEFAULT_RANGE"] = "1y" }, wantErr: "REPORTS_DEFAULT_RANGE"},
		{name: "bad timezone", mutate: func(m map[string]any) { m["REPORTS_TIMEZONE"] = "Mars/Olympus" }, wantErr: "REPORTS_TIMEZONE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := requiredValues()
			tt.mutate(values)

			_, err := fromViper(newViper(values))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseList(t *testing.T) {
	assert.Nil(t, parseList("  "))
	assert.Equal(t, []string{"a", "b"}, parseList("a, ,b,"))
}
