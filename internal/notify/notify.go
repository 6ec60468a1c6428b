package notify

import (
	"context"
	"encoding/json"
	"os"

	"github.com/redis/go-redis/v9"

	"vodmill/internal/model"
)

// Notifier publishes submission events to a Redis channel so that other
// services can follow the pipeline. It is optional: NewNotifier returns nil
// when REDIS_DSN is not set and callers skip publishing entirely.
type Notifier struct {
	client  *redis.Client
	channel string
}

func NewNotifier() *Notifier {
	redisDsn, ok := os.LookupEnv("REDIS_DSN")
	if !ok {
		return nil
	}
	return &Notifier{
		client:  redis.NewClient(&redis.Options{Addr: redisDsn}),
		channel: os.Getenv("REDIS_CHANNEL"),
	}
}

func (n *Notifier) PublishSubmission(ctx context.Context, notification model.SubmissionNotification) error {
	output, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, n.channel, output).Err(); err != nil {
		return err
	}
	return nil
}
