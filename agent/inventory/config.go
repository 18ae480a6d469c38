package inventory

import (
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config selects the inventory backend. With no database the mock answers.
type Config struct {
	DatabaseURL     string        `envconfig:"DATABASE_URL"`
	DatabaseTimeout time.Duration `envconfig:"DATABASE_TIMEOUT" default:"5s"`
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL        time.Duration `envconfig:"CACHE_TTL" default:"5m"`
}

// Build assembles the configured Source and returns a closer for whatever it opened.
func Build(cfg Config) (Source, func() error) {
	var closers []func() error

	var src Source = MockSource{}
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		pg := NewPostgresSource(dsn, cfg.DatabaseTimeout)
		closers = append(closers, pg.Close)
		src = pg
	} else {
		log.Warn().Msg("inventory database not configured - answering from mock stock data")
	}

	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		closers = append(closers, rdb.Close)
		src = NewCachedSource(src, rdb, WithCacheTTL(cfg.CacheTTL))
	}

	return src, func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
}
