package notify

import (
	"context"
	"errors"
	"testing"
	"time"
)

func init() {
	BackoffBase = time.Millisecond
}

func TestRetry(t *testing.T) {
	errTransient := errors.New("transient")
	errPermanent := errors.New("permanent")

	tests := []struct {
		name         string
		retries      int
		failures     int
		failWith     error
		wantErr      bool
		wantAttempts int
	}{
		{"first attempt succeeds", 3, 0, nil, false, 1},
		{"succeeds after retries", 3, 2, errTransient, false, 3},
		{"exhausts retries", 2, 10, errTransient, true, 3},
		{"no retries configured", 0, 1, errTransient, true, 1},
		{"permanent error stops", 5, 10, errPermanent, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := Retry(t.Context(), "test", tt.retries, func(context.Context) error {
				attempts++
				if attempts <= tt.failures {
					return tt.failWith
				}
				return nil
			}, func(err error) bool { return errors.Is(err, errPermanent) })

			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, tt.failWith) {
				t.Errorf("err = %v should wrap %v", err, tt.failWith)
			}
			if attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
		})
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	called := false
	err := Retry(ctx, "test", 3, func(context.Context) error {
		called = true
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if called {
		t.Error("attempt ran on canceled context")
	}
}

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	if err := n.Publish(t.Context(), &Event{EventType: EventDatasetCreated}); err != nil {
		t.Errorf("Publish: %v", err)
	}
	if err := n.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
