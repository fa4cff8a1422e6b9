package common

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client
var RedisEnabled = false

// InitRedisClient connects to redis when REDIS_CONN_STRING is configured.
// Redis is optional: without it the ORM runs uncached and rate limiting
// falls back to the in-memory store.
func InitRedisClient() (err error) {
	if RedisConnString == "" {
		SysLog("REDIS_CONN_STRING not set, redis is not enabled")
		return nil
	}
	opt, err := redis.ParseURL(RedisConnString)
	if err != nil {
		FatalLog("failed to parse redis connection string: " + err.Error())
	}
	RDB = redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = RDB.Ping(ctx).Result()
	if err != nil {
		return err
	}
	RedisEnabled = true
	return nil
}

// ParseRedisOption re-parses the connection string for callers that need the
// raw dial parameters, like the redis session store.
func ParseRedisOption() *redis.Options {
	opt, err := redis.ParseURL(RedisConnString)
	if err != nil {
		FatalLog("failed to parse redis connection string: " + err.Error())
	}
	return opt
}

func RedisSet(key string, value string, expiration time.Duration) error {
	ctx := context.Background()
	return RDB.Set(ctx, key, value, expiration).Err()
}

func RedisGet(key string) (string, error) {
	ctx := context.Background()
	return RDB.Get(ctx, key).Result()
}
