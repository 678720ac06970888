package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ListingCache is a redis-backed read-through cache for the public home
// listing. Invalidation is by version bump: every mutation increments
// listings:ver, and keys embed the version, so stale entries simply age
// out under their TTL.
type ListingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

const versionKey = "listings:ver"

func NewListingCache(cfg RedisConfig, ttl time.Duration) *ListingCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &ListingCache{rdb: rdb, ttl: ttl}
}

// this ping function checks redis connectivity

func (c *ListingCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *ListingCache) Close() error {
	return c.rdb.Close()
}

func (c *ListingCache) version(ctx context.Context) string {
	v, err := c.rdb.Get(ctx, versionKey).Result()

	if err != nil {
		return "0"
	}

	return v
}

// Get decodes a cached listing page into dest. A miss, a redis outage,
// or a decode failure all report false; the caller falls through to the
// database.
func (c *ListingCache) Get(ctx context.Context, key string, dest any) bool {
	raw, err := c.rdb.Get(ctx, c.version(ctx)+":"+key).Bytes()

	if err != nil {
		return false
	}

	if json.Unmarshal(raw, dest) != nil {
		return false
	}

	return true
}

func (c *ListingCache) Set(ctx context.Context, key string, val any) {
	raw, err := json.Marshal(val)

	if err != nil {
		return
	}

	// best effort; a failed write only costs the next request a DB hit
	_ = c.rdb.Set(ctx, c.version(ctx)+":"+key, raw, c.ttl).Err()
}

// Invalidate bumps the listing version after a create/update/delete.
func (c *ListingCache) Invalidate(ctx context.Context) {
	_ = c.rdb.Incr(ctx, versionKey).Err()
}

// BuildHomesListKey derives a stable cache key from the listing
// filters. Values go in verbatim: the SQL filters compare exactly, so
// any normalization here would alias keys for queries that return
// different rows.
func BuildHomesListKey(limit, offset int, city, propertyType *string, minPrice, maxPrice *float64) string {
	c := ""
	if city != nil {
		c = *city
	}
	pt := ""
	if propertyType != nil {
		pt = *propertyType
	}
	mn := ""
	if minPrice != nil {
		mn = strconv.FormatFloat(*minPrice, 'f', -1, 64)
	}
	mx := ""
	if maxPrice != nil {
		mx = strconv.FormatFloat(*maxPrice, 'f', -1, 64)
	}

	return "homes:list:v1:limit=" + strconv.Itoa(limit) +
		":offset=" + strconv.Itoa(offset) +
		":city=" + c +
		":type=" + pt +
		":min=" + mn +
		":max=" + mx
}
