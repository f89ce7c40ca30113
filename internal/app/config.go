package app

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the admin console.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8081"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	AppCurrency       string        `envconfig:"APP_CURRENCY" default:"XOF"`
	PerPage           int           `envconfig:"PER_PAGE" default:"15"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	APIBaseURL string        `envconfig:"API_BASE_URL" default:"http://127.0.0.1:8000/api/admin"`
	APIToken   string        `envconfig:"API_TOKEN" required:"true"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"20s"`

	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
	SessionSecret  string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	ReportCacheTTL time.Duration `envconfig:"REPORT_CACHE_TTL" default:"5m"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"300"`

	WorkerConcurrency int    `envconfig:"WORKER_CONCURRENCY" default:"2"`
	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`
	ReportWarmupCron  string `envconfig:"REPORT_WARMUP_CRON" default:"*/15 7-21 * * *"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.APIToken) == "" {
		return errors.New("api token must be provided")
	}
	if c.SessionSecret == "" {
		return errors.New("session secret must be provided")
	}
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	if c.PerPage < 1 || c.PerPage > 100 {
		return errors.New("per page must be between 1 and 100")
	}
	if c.WorkerConcurrency < 1 {
		return errors.New("worker concurrency must be positive")
	}
	if c.ReportCacheTTL < 0 {
		return errors.New("report cache ttl must not be negative")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

const testModeEnv = "ATELIER_TEST_MODE"

// InTestMode reports whether the process should skip runtime side effects
// such as dialing Redis and listening on a port.
func InTestMode() bool {
	return os.Getenv(testModeEnv) == "1"
}
