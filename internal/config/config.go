package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins []string
}

type FleetAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

type NATSConfig struct {
	URL            string
	ExportsSubject string
}

func (c NATSConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

type ReportsConfig struct {
	CacheTTL     time.Duration
	Timezone     string
	DefaultRange string
	// PDFFont is a TrueType file embedded into PDF snapshots. Empty means
	// the Helvetica core font.
	PDFFont  string
	location *time.Location
}

// Location is the time zone used for weekday bucketing.
func (c ReportsConfig) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	FleetAPI    FleetAPIConfig
	DB          DBConfig
	Auth        AuthConfig
	Redis       RedisConfig
	NATS        NATSConfig
	Reports     ReportsConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host:        v.GetString("HTTP_HOST"),
			Port:        v.GetInt("HTTP_PORT"),
			CORSOrigins: parseList(v.GetString("HTTP_CORS_ORIGINS")),
		},
		FleetAPI: FleetAPIConfig{
			BaseURL: strings.TrimRight(strings.TrimSpace(v.GetString("FLEET_API_BASE_URL")), "/"),
			Timeout: v.GetDuration("FLEET_API_TIMEOUT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		NATS: NATSConfig{
			URL:            v.GetString("NATS_URL"),
			ExportsSubject: v.GetString("EXPORTS_SUBJECT"),
		},
		Reports: ReportsConfig{
			CacheTTL:     v.GetDuration("REPORTS_CACHE_TTL"),
			Timezone:     v.GetString("REPORTS_TIMEZONE"),
			DefaultRange: strings.ToLower(strings.TrimSpace(v.GetString("REPORTS_DEFAULT_RANGE"))),
			PDFFont:      strings.TrimSpace(v.GetString("REPORTS_PDF_FONT")),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if len(cfg.HTTP.CORSOrigins) == 0 {
		cfg.HTTP.CORSOrigins = []string{"*"}
	}
	if cfg.FleetAPI.Timeout <= 0 {
		cfg.FleetAPI.Timeout = 15 * time.Second
	}
	if cfg.DB.MaxOpenConns == 0 {
		cfg.DB.MaxOpenConns = 10
	}
	if cfg.DB.MaxIdleConns == 0 {
		cfg.DB.MaxIdleConns = 5
	}
	if cfg.NATS.ExportsSubject == "" {
		cfg.NATS.ExportsSubject = "fleet.reports.exports"
	}
	if cfg.Reports.CacheTTL <= 0 {
		cfg.Reports.CacheTTL = 60 * time.Second
	}
	if cfg.Reports.Timezone == "" {
		cfg.Reports.Timezone = "UTC"
	}
	if cfg.Reports.DefaultRange == "" {
		cfg.Reports.DefaultRange = "30d"
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.FleetAPI.BaseURL == "" {
		return fmt.Errorf("FLEET_API_BASE_URL is required")
	}
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	switch cfg.Reports.DefaultRange {
	case "7d", "30d", "90d", "all":
	default:
		return fmt.Errorf("REPORTS_DEFAULT_RANGE must be one of 7d, 30d, 90d, all")
	}
	loc, err := time.LoadLocation(cfg.Reports.Timezone)
	if err != nil {
		return fmt.Errorf("REPORTS_TIMEZONE: %w", err)
	}
	cfg.Reports.location = loc
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
