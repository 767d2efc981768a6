// Package config loads settings from a .env file, an optional YAML file named
// by CONFIG_FILE and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port   string `yaml:"port"`
	AppEnv string `yaml:"app_env"`

	DBDriver           string        `yaml:"db_driver"`
	DBDSN              string        `yaml:"db_dsn"`
	DBMaxOpenConns     int           `yaml:"db_max_open_conns"`
	DBMaxIdleConns     int           `yaml:"db_max_idle_conns"`
	DBConnMaxLife      time.Duration `yaml:"db_conn_max_life"`
	RedisAddr          string        `yaml:"redis_addr"`
	RateLimit          int           `yaml:"rate_limit"`
	RateWindow         time.Duration `yaml:"rate_window"`
	RateMaxKeys        int           `yaml:"rate_max_keys"`
	IdempotencyTTL     time.Duration `yaml:"idempotency_ttl"`
	DedupeTTL          time.Duration `yaml:"dedupe_ttl"`
	CountsCacheTTL     time.Duration `yaml:"counts_cache_ttl"`
	TelegramToken      string        `yaml:"telegram_bot_token"`
	NotifyTimeout      time.Duration `yaml:"notify_timeout"`
	DirectorID         int64         `yaml:"director_telegram_id"`
	AutoAssignDirector bool          `yaml:"auto_assign_director"`
}

// Development reports whether human-friendly logging is wanted.
func (c Config) Development() bool { return c.AppEnv == "development" }

// Load reads the process configuration.
func Load() (Config, error) {
	_ = godotenv.Load()
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	var cfg Config
	if path := getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	e := envReader{getenv: getenv}
	e.str("PORT", &cfg.Port)
	e.str("APP_ENV", &cfg.AppEnv)
	e.str("DB_DRIVER", &cfg.DBDriver)
	e.str("DB_DSN", &cfg.DBDSN)
	e.int("DB_MAX_OPEN_CONNS", &cfg.DBMaxOpenConns)
	e.int("DB_MAX_IDLE_CONNS", &cfg.DBMaxIdleConns)
	e.dur("DB_CONN_MAX_LIFE", &cfg.DBConnMaxLife)
	e.str("REDIS_ADDR", &cfg.RedisAddr)
	e.int("RATE_LIMIT", &cfg.RateLimit)
	e.dur("RATE_WINDOW", &cfg.RateWindow)
	e.int("RATE_MAX_KEYS", &cfg.RateMaxKeys)
	e.dur("IDEMPOTENCY_TTL", &cfg.IdempotencyTTL)
	e.dur("DEDUPE_TTL", &cfg.DedupeTTL)
	e.dur("COUNTS_CACHE_TTL", &cfg.CountsCacheTTL)
	e.str("TELEGRAM_BOT_TOKEN", &cfg.TelegramToken)
	e.dur("NOTIFY_TIMEOUT", &cfg.NotifyTimeout)
	e.int64("DIRECTOR_TELEGRAM_ID", &cfg.DirectorID)
	e.bool("AUTO_ASSIGN_DIRECTOR", &cfg.AutoAssignDirector)
	if err := errors.Join(e.errs...); err != nil {
		return cfg, err
	}

	cfg.defaults()
	return cfg, cfg.validate()
}

func (c *Config) defaults() {
	pick(&c.Port, "8095")
	pick(&c.AppEnv, "production")
	pick(&c.DBDriver, "pgx")
	pickN(&c.DBMaxOpenConns, 25)
	pickN(&c.DBMaxIdleConns, 10)
	pickN(&c.DBConnMaxLife, 30*time.Minute)
	pickN(&c.RateLimit, 20)
	pickN(&c.RateWindow, time.Second)
	pickN(&c.RateMaxKeys, 10000)
	pickN(&c.IdempotencyTTL, time.Hour)
	pickN(&c.DedupeTTL, 5*time.Second)
	pickN(&c.CountsCacheTTL, 30*time.Second)
	pickN(&c.NotifyTimeout, 5*time.Second)
}

func (c Config) validate() error {
	var errs []error
	if c.DBDSN == "" {
		errs = append(errs, errors.New("DB_DSN required"))
	}
	if c.DBDriver != "pgx" && c.DBDriver != "sqlite3" {
		errs = append(errs, fmt.Errorf("DB_DRIVER %q: want pgx or sqlite3", c.DBDriver))
	}
	if c.AppEnv != "production" && c.AppEnv != "development" {
		errs = append(errs, fmt.Errorf("APP_ENV %q: want production or development", c.AppEnv))
	}
	if c.RateLimit < 0 || c.RateWindow < 0 || c.RateMaxKeys < 0 {
		errs = append(errs, errors.New("rate limit settings must be positive"))
	}
	if c.AutoAssignDirector && c.DirectorID <= 0 {
		errs = append(errs, errors.New("AUTO_ASSIGN_DIRECTOR needs DIRECTOR_TELEGRAM_ID"))
	}
	return errors.Join(errs...)
}

type envReader struct {
	getenv func(string) string
	errs   []error
}

func (e *envReader) str(key string, dst *string) {
	if v := e.getenv(key); v != "" {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	if v := e.getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}
}

func (e *envReader) int64(key string, dst *int64) {
	if v := e.getenv(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}
}

func (e *envReader) dur(key string, dst *time.Duration) {
	if v := e.getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}
}

func (e *envReader) bool(key string, dst *bool) {
	if v := e.getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}
}

func pick(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

func pickN[T int | time.Duration](v *T, def T) {
	if *v == 0 {
		*v = def
	}
}
