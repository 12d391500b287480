// Package notify defines the dataset lifecycle notification boundary.
//
// Notifiers publish events to downstream systems when datasets are
// created or deleted. Publishing is best effort: callers log and count
// failures but never fail the dataset operation because of them.
package notify

import (
	"context"
	"fmt"
	"time"
)

// Event types.
const (
	EventDatasetCreated = "dataset_created"
	EventDatasetDeleted = "dataset_deleted"
)

// Event is the payload published on a dataset lifecycle change.
type Event struct {
	EventType   string `json:"event_type"`
	Key         string `json:"key"`
	Owner       string `json:"owner,omitempty"`
	Kind        string `json:"kind,omitempty"`
	ElementType string `json:"element_type,omitempty"`
	Length      uint64 `json:"length,omitempty"`
	Rows        uint64 `json:"rows,omitempty"`
	Cols        uint64 `json:"cols,omitempty"`
	Bytes       int64  `json:"bytes,omitempty"`
	Timestamp   string `json:"timestamp"` // RFC 3339
}

// Notifier publishes dataset events to a downstream system.
type Notifier interface {
	// Publish sends an event. Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *Event) error

	// Close releases notifier resources.
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, *Event) error { return nil }
func (Nop) Close() error                          { return nil }

var _ Notifier = Nop{}

// BackoffBase is the delay before the first retry; it doubles per retry.
var BackoffBase = 500 * time.Millisecond

// Retry runs attempt once plus up to retries more times with exponential
// backoff. It stops early when permanent reports the error as
// non-retriable or ctx ends. name prefixes returned errors.
func Retry(ctx context.Context, name string, retries int, attempt func(ctx context.Context) error, permanent func(error) bool) error {
	var lastErr error
	// attempts = 1 initial + retries
	attempts := 1 + retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}

		// Exponential backoff before retries (not before first attempt)
		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * BackoffBase
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-time.After(backoff):
			}
		}

		lastErr = attempt(ctx)
		if lastErr == nil {
			return nil
		}
		if permanent != nil && permanent(lastErr) {
			return fmt.Errorf("%s: non-retriable error: %w", name, lastErr)
		}
	}

	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}
