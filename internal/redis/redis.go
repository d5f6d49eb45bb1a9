package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect returns a client for the summary cache, or an error if redis is
// not reachable. Callers may treat the error as soft and fall back to an
// in-process cache.
func Connect(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
