package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT"`
		Host    string `env:"POSTGRES_HOST"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Telegram struct {
		User     int64  `env:"TELEGRAM_USER"`
		Token    string `env:"TELEGRAM_TOKEN"`
		ChatID   int64  `env:"TELEGRAM_CHAT_ID"`
		ChatTag  string `env:"TELEGRAM_CHAT_TAG"`
		Timezone string `env:"TELEGRAM_TIMEZONE" env-default:"Asia/Shanghai"`
	}
	Feed struct {
		URL           string `env:"FEED_URL" env-default:"https://www.v2ex.com/index.xml"`
		CheckInterval string `env:"FEED_CHECK_INTERVAL" env-default:"*/10 * * * *"`
		CleanupAfter  string `env:"FEED_CLEANUP_AFTER" env-default:"720h"`
	}
	Dispatcher struct {
		MaxAttempts     int           `env:"DISPATCHER_MAX_ATTEMPTS" env-default:"3"`
		InitialBackoff  time.Duration `env:"DISPATCHER_INITIAL_BACKOFF" env-default:"1s"`
		MaxBackoff      time.Duration `env:"DISPATCHER_MAX_BACKOFF" env-default:"30s"`
		FloodMargin     time.Duration `env:"DISPATCHER_FLOOD_MARGIN" env-default:"500ms"`
		FastSendEvery   time.Duration `env:"DISPATCHER_FAST_SEND_EVERY" env-default:"3s"`
		SustainedLimit  int           `env:"DISPATCHER_SUSTAINED_LIMIT" env-default:"20"`
		SustainedWindow time.Duration `env:"DISPATCHER_SUSTAINED_WINDOW" env-default:"60s"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}

// GetDSN returns the postgres connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User,
		c.Postgres.Pass,
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.Name,
		c.Postgres.SslMode,
	)
}
