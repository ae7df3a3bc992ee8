package cache

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rendered day views go stale on their own even without an explicit
// invalidation, e.g. when another instance writes the same user's data.
const dayViewTTL = 15 * time.Minute

const autocompleteKey = "exercise:names"

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("Connected to Redis at %s", redisURL)
	return &RedisCache{client: client}, nil
}

// DayViewKey builds the cache key for one user's rendered calendar day.
// Format: "dayview:<userID>:<YYYY-MM-DD>"
func DayViewKey(userID int64, date string) string {
	return fmt.Sprintf("dayview:%d:%s", userID, date)
}

func (c *RedisCache) GetDayView(ctx context.Context, userID int64, date string) ([]byte, error) {
	return c.client.Get(ctx, DayViewKey(userID, date)).Bytes()
}

func (c *RedisCache) SetDayView(ctx context.Context, userID int64, date string, view []byte) error {
	return c.client.Set(ctx, DayViewKey(userID, date), view, dayViewTTL).Err()
}

func (c *RedisCache) InvalidateDayView(ctx context.Context, userID int64, date string) error {
	return c.client.Del(ctx, DayViewKey(userID, date)).Err()
}

// AddExerciseNames feeds catalog names into the autocomplete index. Names
// are stored lowercased in a lexicographic sorted set so prefix lookups
// are a single ZRANGEBYLEX.
func (c *RedisCache) AddExerciseNames(ctx context.Context, names []string) error {
	members := make([]redis.Z, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		members = append(members, redis.Z{Score: 0, Member: name})
	}
	if len(members) == 0 {
		return nil
	}
	return c.client.ZAdd(ctx, autocompleteKey, members...).Err()
}

// SuggestExerciseNames returns up to limit catalog names starting with the
// given prefix.
func (c *RedisCache) SuggestExerciseNames(ctx context.Context, prefix string, limit int64) ([]string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, nil
	}
	return c.client.ZRangeByLex(ctx, autocompleteKey, &redis.ZRangeBy{
		Min:   "[" + prefix,
		Max:   "[" + prefix + "\xff",
		Count: limit,
	}).Result()
}

// AutocompleteCount reports how many names the autocomplete index holds.
func (c *RedisCache) AutocompleteCount(ctx context.Context) (int64, error) {
	return c.client.ZCard(ctx, autocompleteKey).Result()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
