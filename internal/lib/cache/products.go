// Package cache keeps read-mostly data in Redis.
//
// The product catalog changes rarely and is read on every order screen, so
// listed pages and single products are cached. Any product write drops the
// whole catalog and bumps the catalog generation. Readers take the
// generation before querying the database and fill the cache only if it has
// not moved, so a page read before a write is never cached after it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/deppfellow/contosopizza/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix     = "contosopizza:products:"
	catalogKey    = keyPrefix + "catalog"
	generationKey = keyPrefix + "generation"
)

// errStale aborts a fill whose generation is outdated.
var errStale = errors.New("catalog generation changed")

// opTimeout bounds each Redis round trip.
const opTimeout = 2 * time.Second

// Stats counts cache lookups since start.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// ProductCache is a Redis-backed cache of the product catalog.
//
// Failures are logged and reported as misses.
type ProductCache struct {
	client *redis.Client
	logger *zerolog.Logger
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewProductCache creates the cache on an existing client.
func NewProductCache(client *redis.Client, logger *zerolog.Logger, ttl time.Duration) *ProductCache {
	return &ProductCache{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// ProductPage is a cached page of the catalog.
type ProductPage = model.PaginatedResponse[model.Product]

func pageField(page, limit int) string {
	return strconv.Itoa(page) + ":" + strconv.Itoa(limit)
}

func productKey(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// GetPage returns a cached catalog page.
func (c *ProductCache) GetPage(ctx context.Context, page, limit int) (*ProductPage, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := c.client.HGet(ctx, catalogKey, pageField(page, limit)).Bytes()
	var cached ProductPage
	if !c.decode(err, data, &cached, catalogKey) {
		return nil, false
	}
	return &cached, true
}

// Generation returns the current catalog generation. Take it before reading
// the database and pass it to SetPage or Set.
func (c *ProductCache) Generation(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", generationKey).Msg("redis get failed")
		return 0, fmt.Errorf("failed to read catalog generation: %w", err)
	}
	return gen, nil
}

// fill runs write in a transaction that only commits while the catalog is
// still at generation gen.
func (c *ProductCache) fill(ctx context.Context, gen int64, key string, write func(ctx context.Context, pipe redis.Pipeliner)) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStale
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			write(ctx, pipe)
			return nil
		})
		return err
	}, generationKey)

	switch {
	case err == nil:
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug().Str("key", key).Int64("generation", gen).Msg("catalog changed, skipping cache fill")
	default:
		c.logger.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}

// SetPage stores a catalog page read at generation gen. The catalog expires
// as a whole, ttl after the last page was cached.
func (c *ProductCache) SetPage(ctx context.Context, gen int64, p *ProductPage) {
	data, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", catalogKey).Msg("json marshal failed")
		return
	}

	c.fill(ctx, gen, catalogKey, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.HSet(ctx, catalogKey, pageField(p.Page, p.Limit), data)
		pipe.Expire(ctx, catalogKey, c.ttl)
	})
}

// Get returns a cached product.
func (c *ProductCache) Get(ctx context.Context, id int64) (*model.Product, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	key := productKey(id)
	data, err := c.client.Get(ctx, key).Bytes()
	var product model.Product
	if !c.decode(err, data, &product, key) {
		return nil, false
	}
	return &product, true
}

// Set stores a single product read at generation gen.
func (c *ProductCache) Set(ctx context.Context, gen int64, product *model.Product) {
	key := productKey(product.ID)
	data, err := json.Marshal(product)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("json marshal failed")
		return
	}

	c.fill(ctx, gen, key, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Set(ctx, key, data, c.ttl)
	})
}

// Invalidate bumps the catalog generation and drops the catalog pages and,
// when ids are given, those products.
func (c *ProductCache) Invalidate(ctx context.Context, ids ...int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, catalogKey)
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("redis delete failed")
		return fmt.Errorf("failed to invalidate product cache: %w", err)
	}
	return nil
}

// Stats returns the hit and miss counters.
func (c *ProductCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// decode turns a Redis reply into dst and counts the outcome.
func (c *ProductCache) decode(err error, data []byte, dst any, key string) bool {
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		c.misses.Add(1)
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("json unmarshal failed")
		c.misses.Add(1)
		return false
	}

	c.hits.Add(1)
	return true
}
