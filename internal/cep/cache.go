package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"horizonte-forms/internal/validation"
)

const (
	DefaultCacheTTL = 10 * time.Hour
	cacheKeyPrefix  = "cep:"
)

// Entry is a cached lookup outcome. Found=false records a CEP the upstream
// reported as unknown.
type Entry struct {
	Found   bool    `json:"found"`
	Address Address `json:"address"`
}

type Cache interface {
	Get(ctx context.Context, cep string) (Entry, bool, error)
	Set(ctx context.Context, cep string, entry Entry) error
}

type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// OpenRedis parses url, applies it and checks the connection.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, code string) (Entry, bool, error) {
	raw, err := c.client.Get(ctx, cacheKeyPrefix+code).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("get cached cep: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode cached cep: %w", err)
	}
	return entry, true, nil
}

func (c *RedisCache) Set(ctx context.Context, code string, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cached cep: %w", err)
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+code, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached cep: %w", err)
	}
	return nil
}

// CachedLookup serves lookups from cache, falling back to next on a miss.
// Cache failures are logged and never fail the lookup.
type CachedLookup struct {
	next   Lookuper
	cache  Cache
	logger *slog.Logger
}

func NewCachedLookup(next Lookuper, cache Cache, logger *slog.Logger) *CachedLookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedLookup{next: next, cache: cache, logger: logger}
}

func (l *CachedLookup) Lookup(ctx context.Context, rawCEP string) (Address, error) {
	code := validation.NormalizeDigits(rawCEP)
	if len(code) != 8 {
		return Address{}, ErrInvalidCEP
	}

	entry, hit, err := l.cache.Get(ctx, code)
	if err != nil {
		l.logger.WarnContext(ctx, "read cep cache", "cep", code, "error", err)
	}
	if hit {
		if !entry.Found {
			return Address{}, fmt.Errorf("%w: %s", ErrNotFound, code)
		}
		return entry.Address, nil
	}

	address, err := l.next.Lookup(ctx, code)
	switch {
	case err == nil:
		l.store(ctx, code, Entry{Found: true, Address: address})
	case errors.Is(err, ErrNotFound):
		l.store(ctx, code, Entry{Found: false})
	}
	return address, err
}

func (l *CachedLookup) store(ctx context.Context, code string, entry Entry) {
	if err := l.cache.Set(ctx, code, entry); err != nil {
		// The lookup already succeeded; only the cache write failed.
		l.logger.WarnContext(ctx, "write cep cache", "cep", code, "error", err)
	}
}
