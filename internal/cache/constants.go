package cache

import (
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// key names definition
const (
	TitleRatingKey    = "title:%d:rating"     // cached mean score of a title, '%d' is title id
	TitleRatingGenKey = "title:%d:rating:gen" // bumped on every invalidation of that rating
)

// TitleRatingTTL bounds how long a rating survives without an explicit invalidation.
const TitleRatingTTL = 10 * time.Minute

func MakeTitleRatingKey(titleID uint) string {
	return fmt.Sprintf(TitleRatingKey, titleID)
}

func MakeTitleRatingGenKey(titleID uint) string {
	return fmt.Sprintf(TitleRatingGenKey, titleID)
}

// struct definitions
// a title without reviews is cached as {"rating": null}
type TitleRatingCacheValue struct {
	Rating *float64 `json:"rating"`
}

// lua scripts
var storeTitleRatingScript = redis.NewScript(`
	-- KEYS[1] = title:{title_id}:rating
	-- KEYS[2] = title:{title_id}:rating:gen

	-- ARGV[1] = generation the caller read before computing
	-- ARGV[2] = encoded rating
	-- ARGV[3] = ttl in milliseconds

	local gen = redis.call("GET", KEYS[2]) or "0"
	if gen ~= ARGV[1] then
		return 0  -- invalidated meanwhile, the value is stale
	end

	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
	return 1
`)

var invalidateTitleRatingScript = redis.NewScript(`
	-- KEYS[1] = title:{title_id}:rating
	-- KEYS[2] = title:{title_id}:rating:gen

	redis.call("DEL", KEYS[1])
	return redis.call("INCR", KEYS[2])
`)
