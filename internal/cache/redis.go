package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var ctx = context.Background()

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache accepts either a bare host:port or a redis:// URL.
func NewRedisCache(url string) (*RedisCache, error) {
	opts := &redis.Options{
		Addr:     url,
		Password: "",
		DB:       0,
	}
	if strings.Contains(url, "://") {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}
	redisCache := &RedisCache{Client: redis.NewClient(opts)}

	return redisCache, nil
}

func (r *RedisCache) Ping() error {
	return r.Client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.Client.Close()
}

func (r *RedisCache) Set(key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisCache) Get(key string, dest any) error {
	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

/*
* title rating
 */

// GetTitleRating reports ok=false on a cache miss. A hit may still carry
// a nil rating for a title without reviews. gen is the invalidation count
// observed with the value and must be handed back to SetTitleRating.
func (r *RedisCache) GetTitleRating(titleID uint) (*float64, bool, int64, error) {
	values, err := r.Client.MGet(ctx, MakeTitleRatingKey(titleID), MakeTitleRatingGenKey(titleID)).Result()
	if err != nil {
		return nil, false, 0, err
	}

	var gen int64
	if raw, ok := values[1].(string); ok {
		if gen, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, false, 0, err
		}
	}

	raw, ok := values[0].(string)
	if !ok {
		return nil, false, gen, nil
	}
	var value TitleRatingCacheValue
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, false, gen, err
	}
	return value.Rating, true, gen, nil
}

// SetTitleRating stores rating unless the title was invalidated after gen
// was read. A skipped write is not an error.
func (r *RedisCache) SetTitleRating(titleID uint, rating *float64, gen int64) error {
	data, err := json.Marshal(TitleRatingCacheValue{Rating: rating})
	if err != nil {
		return err
	}
	keys := []string{MakeTitleRatingKey(titleID), MakeTitleRatingGenKey(titleID)}
	_, err = storeTitleRatingScript.Run(ctx, r.Client, keys,
		strconv.FormatInt(gen, 10), data, TitleRatingTTL.Milliseconds()).Result()
	return err
}

func (r *RedisCache) InvalidateTitleRating(titleID uint) error {
	keys := []string{MakeTitleRatingKey(titleID), MakeTitleRatingGenKey(titleID)}
	return invalidateTitleRatingScript.Run(ctx, r.Client, keys).Err()
}
