// Package storage is the object-storage boundary for datasets.
//
// Datasets are stored under keys of the form "<owner>/<file>". Downloads
// are staged as uniquely named local copies so concurrent reads of the
// same key never share a file; callers delete the copy when done (see
// package staging).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/numstore/errs"
	"github.com/pithecene-io/numstore/iox"
	"github.com/pithecene-io/numstore/log"
	"github.com/pithecene-io/numstore/metrics"
)

// Store persists dataset files and their sidecar objects.
type Store interface {
	// Put uploads the local file at localPath under key, replacing any
	// existing object. Returns the key.
	Put(ctx context.Context, localPath, key string) (string, error)
	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)
	// Get stages a local copy of key and returns its path.
	Get(ctx context.Context, key string) (string, error)
	// Delete removes key.
	Delete(ctx context.Context, key string) error
	// PutObject stores a small in-memory object under key.
	PutObject(ctx context.Context, key string, data []byte) error
	// GetObject returns the object stored under key.
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// Backend names.
const (
	BackendFS     = "fs"
	BackendMemory = "memory"
	BackendS3     = "s3"
)

// LodeStore implements Store over a lode.Store.
// The underlying store is created lazily from the factory on first use.
type LodeStore struct {
	backend    string
	factory    lode.StoreFactory
	stagingDir string
	logger     *log.Logger
	metrics    *metrics.Collector

	storeOnce sync.Once
	store     lode.Store
	storeErr  error
}

var _ Store = (*LodeStore)(nil)

// Option configures a LodeStore.
type Option func(*LodeStore)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *LodeStore) { s.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *LodeStore) { s.metrics = c }
}

// New creates a LodeStore for an arbitrary factory. stagingDir receives
// downloaded copies and is created on demand.
func New(backend string, factory lode.StoreFactory, stagingDir string, opts ...Option) *LodeStore {
	s := &LodeStore{
		backend:    backend,
		factory:    factory,
		stagingDir: stagingDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFS creates a filesystem-backed store rooted at root.
func NewFS(root, stagingDir string, opts ...Option) (*LodeStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errs.Wrap(err, "storage_init", root)
	}
	return New(BackendFS, lode.NewFSFactory(root), stagingDir, opts...), nil
}

// NewMemory creates an in-memory store. Intended for tests.
func NewMemory(stagingDir string, opts ...Option) *LodeStore {
	return New(BackendMemory, lode.NewMemoryFactory(), stagingDir, opts...)
}

// Backend returns the backend name.
func (s *LodeStore) Backend() string { return s.backend }

// getOrCreateStore lazily initializes the Store from the factory.
func (s *LodeStore) getOrCreateStore() (lode.Store, error) {
	s.storeOnce.Do(func() {
		s.store, s.storeErr = s.factory()
		if s.storeErr != nil {
			s.storeErr = errs.Wrap(fmt.Errorf("store init failed: %w", s.storeErr), "storage_init", s.backend)
		}
	})
	return s.store, s.storeErr
}

// Put uploads localPath under key, replacing an existing object.
func (s *LodeStore) Put(ctx context.Context, localPath, key string) (_ string, err error) {
	const op = "put"
	defer func() { s.metrics.IncStoragePut(err == nil) }()

	if err := ValidateKey(key); err != nil {
		return "", err
	}
	f, err := os.Open(localPath)
	if err != nil {
		return "", errs.Wrap(err, op, localPath)
	}
	defer iox.DiscardClose(f)

	if err := s.put(ctx, op, key, f); err != nil {
		return "", err
	}
	s.logger.Debug("uploaded dataset", map[string]any{"key": key, "backend": s.backend})
	return key, nil
}

// PutObject stores data under key, replacing an existing object.
func (s *LodeStore) PutObject(ctx context.Context, key string, data []byte) (err error) {
	defer func() { s.metrics.IncStoragePut(err == nil) }()
	if err := ValidateKey(key); err != nil {
		return err
	}
	return s.put(ctx, "put_object", key, bytes.NewReader(data))
}

// put writes r under key. lode objects are write-once, so an existing
// object is replaced by uploading beside it under a pending key, then
// deleting it and promoting the pending copy. A failed upload leaves the
// existing object untouched.
func (s *LodeStore) put(ctx context.Context, op, key string, r io.Reader) error {
	store, err := s.getOrCreateStore()
	if err != nil {
		return err
	}
	exists, err := store.Exists(ctx, key)
	if err != nil {
		return errs.Wrap(err, op, key)
	}
	if !exists {
		if err := store.Put(ctx, key, r); err != nil {
			return errs.Wrap(err, op, key)
		}
		return nil
	}

	pending := key + ".pending-" + uuid.NewString()
	defer s.discard(ctx, store, pending)
	if err := store.Put(ctx, pending, r); err != nil {
		return errs.Wrap(err, op, key)
	}
	if err := store.Delete(ctx, key); err != nil {
		return errs.Wrap(err, op, key)
	}
	rc, err := store.Get(ctx, pending)
	if err != nil {
		return errs.Wrap(err, op, key)
	}
	defer iox.DiscardClose(rc)
	if err := store.Put(ctx, key, rc); err != nil {
		return errs.Wrap(err, op, key)
	}
	return nil
}

// discard removes a pending upload if one was written.
func (s *LodeStore) discard(ctx context.Context, store lode.Store, key string) {
	exists, err := store.Exists(ctx, key)
	if err == nil && !exists {
		return
	}
	if err == nil {
		err = store.Delete(ctx, key)
	}
	if err != nil {
		s.logger.Warn("failed to remove pending upload", map[string]any{"key": key, "error": err.Error()})
	}
}

// Exists reports whether key is present.
func (s *LodeStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	store, err := s.getOrCreateStore()
	if err != nil {
		return false, err
	}
	exists, err := store.Exists(ctx, key)
	if err != nil {
		return false, errs.Wrap(err, "exists", key)
	}
	return exists, nil
}

// Get stages a copy of key under the staging directory as
// "<uuid>-<base>" and returns its path. Missing keys fail with
// errs.ErrNotFound.
func (s *LodeStore) Get(ctx context.Context, key string) (_ string, err error) {
	const op = "get"
	defer func() { s.metrics.IncStorageGet(err == nil) }()

	rc, err := s.open(ctx, op, key)
	if err != nil {
		return "", err
	}
	defer iox.DiscardClose(rc)

	if err := os.MkdirAll(s.stagingDir, 0o755); err != nil {
		return "", errs.Wrap(err, op, s.stagingDir)
	}
	staged := filepath.Join(s.stagingDir, uuid.NewString()+"-"+path.Base(key))
	if err := copyTo(staged, rc); err != nil {
		_ = iox.RemoveIfExists(staged)
		return "", errs.Wrap(err, op, key)
	}
	s.logger.Debug("staged dataset", map[string]any{"key": key, "path": staged})
	return staged, nil
}

// GetObject returns the object under key.
func (s *LodeStore) GetObject(ctx context.Context, key string) (_ []byte, err error) {
	const op = "get_object"
	defer func() { s.metrics.IncStorageGet(err == nil) }()

	rc, err := s.open(ctx, op, key)
	if err != nil {
		return nil, err
	}
	defer iox.DiscardClose(rc)

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errs.Wrap(err, op, key)
	}
	return data, nil
}

func (s *LodeStore) open(ctx context.Context, op, key string) (io.ReadCloser, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	store, err := s.getOrCreateStore()
	if err != nil {
		return nil, err
	}
	exists, err := store.Exists(ctx, key)
	if err != nil {
		return nil, errs.Wrap(err, op, key)
	}
	if !exists {
		return nil, errs.Errorf(errs.ErrNotFound, op, key, "no such object")
	}
	rc, err := store.Get(ctx, key)
	if err != nil {
		return nil, errs.Wrap(err, op, key)
	}
	return rc, nil
}

// Delete removes key. Missing keys fail with errs.ErrNotFound.
func (s *LodeStore) Delete(ctx context.Context, key string) error {
	const op = "delete"
	if err := ValidateKey(key); err != nil {
		return err
	}
	store, err := s.getOrCreateStore()
	if err != nil {
		return err
	}
	exists, err := store.Exists(ctx, key)
	if err != nil {
		return errs.Wrap(err, op, key)
	}
	if !exists {
		return errs.Errorf(errs.ErrNotFound, op, key, "no such object")
	}
	if err := store.Delete(ctx, key); err != nil {
		return errs.Wrap(err, op, key)
	}
	s.metrics.IncStorageDelete()
	return nil
}

// ValidateKey rejects empty, absolute and parent-relative keys.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return errs.Errorf(errs.ErrInvalidArgument, "validate_key", key, "key is empty")
	case strings.HasPrefix(key, "/"), strings.Contains(key, `\`):
		return errs.Errorf(errs.ErrInvalidArgument, "validate_key", key, "key must be a relative slash-separated path")
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return errs.Errorf(errs.ErrInvalidArgument, "validate_key", key, "invalid path segment %q", seg)
		}
	}
	return nil
}

func copyTo(dst string, r io.Reader) (err error) {
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer iox.CloseInto(f, &err)
	_, err = io.Copy(f, r)
	return err
}
