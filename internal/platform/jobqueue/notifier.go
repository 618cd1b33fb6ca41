package jobqueue

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"todo_backend/internal/platform/logger"
)

const topicPrefix = "jobs:"

// Topic returns the Redis pub/sub channel used to signal new jobs on channel.
func Topic(channel string) string { return topicPrefix + channel }

// RedisNotifier wakes runners through Redis pub/sub after a job commit.
// Delivery is best effort; runners still poll.
type RedisNotifier struct {
	rdb redis.UniversalClient
}

// NewRedisNotifier returns a notifier publishing through rdb.
func NewRedisNotifier(rdb redis.UniversalClient) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

// Notify publishes a wake-up message for channel.
func (n *RedisNotifier) Notify(ctx context.Context, channel string) error {
	return n.rdb.Publish(ctx, Topic(channel), "1").Err()
}

// Subscribe returns a channel that receives a value whenever a job is
// announced on any of channels. Bursts collapse into one pending signal.
// The returned channel is closed when ctx is done.
func (n *RedisNotifier) Subscribe(ctx context.Context, channels ...string) <-chan struct{} {
	topics := make([]string, len(channels))
	for i, c := range channels {
		topics[i] = Topic(c)
	}

	wake := make(chan struct{}, 1)
	sub := n.rdb.Subscribe(ctx, topics...)

	go func() {
		defer close(wake)
		defer func() {
			if err := sub.Close(); err != nil {
				logger.L().Warn("closing job subscription", zap.Error(err))
			}
		}()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case wake <- struct{}{}:
				default:
				}
			}
		}
	}()

	return wake
}
