// Package quota caps how often the proxy spends the shared pricing API token.
// The count lives in Redis so every proxy replica draws from one budget.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Guard interface {
	// Allow consumes one unit of the current window's budget.
	Allow(ctx context.Context) (bool, error)
	Close() error
}

type RedisGuard struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
	now    func() time.Time
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// Limit is the number of upstream calls allowed per Window.
	Limit  int64
	Window time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:   "localhost",
		Port:   "6379",
		DB:     0,
		Limit:  60,
		Window: time.Minute,
	}
}

// withDefaults fills unset fields from DefaultRedisConfig.
func (cfg RedisConfig) withDefaults() RedisConfig {
	def := DefaultRedisConfig()
	if cfg.Host == "" {
		cfg.Host = def.Host
	}
	if cfg.Port == "" {
		cfg.Port = def.Port
	}
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	return cfg
}

func NewRedisGuard(cfg RedisConfig) (*RedisGuard, error) {
	cfg = cfg.withDefaults()
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisGuard{
		client: client,
		limit:  cfg.Limit,
		window: cfg.Window,
		prefix: "quota:travelpayouts",
		now:    time.Now,
	}, nil
}

// Allow increments the fixed-window counter and reports whether the call
// fits in the budget. The key expires with its window.
func (g *RedisGuard) Allow(ctx context.Context) (bool, error) {
	key := windowKey(g.prefix, g.now(), g.window)

	pipe := g.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, g.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return incr.Val() <= g.limit, nil
}

func (g *RedisGuard) Close() error {
	return g.client.Close()
}

type NoOpGuard struct{}

func NewNoOpGuard() *NoOpGuard {
	return &NoOpGuard{}
}

func (g *NoOpGuard) Allow(ctx context.Context) (bool, error) {
	return true, nil
}

func (g *NoOpGuard) Close() error {
	return nil
}

func windowKey(prefix string, now time.Time, window time.Duration) string {
	start := now.Truncate(window).Unix()
	return fmt.Sprintf("%s:%d", prefix, start)
}
