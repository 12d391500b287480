// Package staging scopes the lifetime of locally staged dataset copies.
//
// A staged copy exists only for the duration of one read. Local and Fetch
// delete it on every exit path, panics included. Deletion is best effort:
// a failure is logged and counted but never replaces the read's result.
package staging

import (
	"context"

	"github.com/pithecene-io/numstore/iox"
	"github.com/pithecene-io/numstore/log"
	"github.com/pithecene-io/numstore/metrics"
)

// Fetcher stages a local copy of a stored object and returns its path.
type Fetcher interface {
	Get(ctx context.Context, key string) (string, error)
}

// Options carries the sinks for cleanup failures. Both may be nil.
type Options struct {
	Logger  *log.Logger
	Metrics *metrics.Collector
}

// Local runs read on path, then deletes path.
func Local[T any](path string, opts Options, read func(path string) (T, error)) (T, error) {
	defer Release(path, opts)
	return read(path)
}

// Fetch stages key from src and runs read on the staged copy, deleting
// it afterwards. Nothing is staged if src fails.
func Fetch[T any](ctx context.Context, src Fetcher, key string, opts Options, read func(path string) (T, error)) (T, error) {
	path, err := src.Get(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}
	return Local(path, opts, read)
}

// Release deletes path. A missing file is not an error.
func Release(path string, opts Options) {
	if err := iox.RemoveIfExists(path); err != nil {
		opts.Logger.Warn("failed to delete staged copy", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
		opts.Metrics.IncCleanupFailure()
	}
}
