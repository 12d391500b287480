// Package redis implements a Redis pub/sub notifier.
//
// Publishes dataset events as JSON to a configurable Redis channel.
// Retries with exponential backoff on connection errors.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pithecene-io/numstore/notify"
)

// DefaultChannel is the default pub/sub channel name.
const DefaultChannel = "numstore:datasets"

// DefaultTimeout is the default per-publish timeout.
const DefaultTimeout = 5 * time.Second

// DefaultRetries is the default number of retry attempts.
const DefaultRetries = 3

// Config configures the Redis pub/sub notifier.
type Config struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// Channel is the pub/sub channel name (default: numstore:datasets).
	Channel string
	// Timeout is the per-publish timeout (default 5s).
	Timeout time.Duration
	// Retries is the number of retry attempts on failure.
	Retries int
}

// Notifier publishes dataset events via Redis PUBLISH.
type Notifier struct {
	config Config
	client *goredis.Client
}

// New creates a Redis pub/sub notifier from the given config.
// Returns an error if the URL is empty or invalid.
func New(cfg Config) (*Notifier, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis notifier requires a URL")
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis notifier: invalid URL: %w", err)
	}

	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}

	return &Notifier{
		config: cfg,
		client: goredis.NewClient(opts),
	}, nil
}

// Publish sends the event as a JSON PUBLISH to the configured channel.
func (n *Notifier) Publish(ctx context.Context, event *notify.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal event: %w", err)
	}

	return notify.Retry(ctx, "redis", n.config.Retries, func(ctx context.Context) error {
		publishCtx, cancel := context.WithTimeout(ctx, n.config.Timeout)
		defer cancel()
		return n.client.Publish(publishCtx, n.config.Channel, body).Err()
	}, isClosed)
}

// isClosed reports a client that can never succeed again.
func isClosed(err error) bool {
	return errors.Is(err, goredis.ErrClosed)
}

// Close releases notifier resources.
func (n *Notifier) Close() error {
	return n.client.Close()
}

var _ notify.Notifier = (*Notifier)(nil)
