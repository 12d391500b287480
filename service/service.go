// Package service is the request-layer entry point for numstore.
//
// It validates requests, generates datasets into a local work directory,
// uploads them under "<owner>/<file>" together with a descriptor, and
// serves paginated reads from staged copies. Lifecycle events are
// published to an optional notifier.
package service

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pithecene-io/numstore/errs"
	"github.com/pithecene-io/numstore/generate"
	"github.com/pithecene-io/numstore/log"
	"github.com/pithecene-io/numstore/metrics"
	"github.com/pithecene-io/numstore/notify"
	"github.com/pithecene-io/numstore/reader"
	"github.com/pithecene-io/numstore/staging"
	"github.com/pithecene-io/numstore/storage"
	"github.com/pithecene-io/numstore/types"
)

// DefaultMaxPageElements bounds the elements a single read may return.
const DefaultMaxPageElements = 1 << 20

// Service serves dataset requests.
type Service struct {
	store    storage.Store
	gen      *generate.Generator
	notifier notify.Notifier
	logger   *log.Logger
	metrics  *metrics.Collector
	validate *validator.Validate
	now      func() time.Time

	workDir         string
	maxPageElements int
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier publishes lifecycle events to n.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Service) { s.metrics = c }
}

// WithGenerator replaces the default generator.
func WithGenerator(g *generate.Generator) Option {
	return func(s *Service) { s.gen = g }
}

// WithMaxPageElements bounds page sizes. Non-positive values keep the default.
func WithMaxPageElements(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPageElements = n
		}
	}
}

// WithClock overrides the descriptor timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service storing datasets in store and generating them
// under workDir, which is created if missing.
func New(store storage.Store, workDir string, opts ...Option) (*Service, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, errs.Wrap(err, "service_init", workDir)
	}
	s := &Service{
		store:           store,
		gen:             generate.New(),
		notifier:        notify.Nop{},
		validate:        newValidator(),
		now:             time.Now,
		workDir:         workDir,
		maxPageElements: DefaultMaxPageElements,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Metrics returns a snapshot of the service counters.
func (s *Service) Metrics() metrics.Snapshot {
	return s.metrics.Snapshot()
}

// --- Creation ---

// CreateRandomArray generates and stores a random array for owner.
func (s *Service) CreateRandomArray(ctx context.Context, owner string, req RandomArrayRequest) (*types.Dataset, error) {
	const op = "create_random_array"
	if err := s.check(op, owner, &req); err != nil {
		return nil, err
	}
	d := types.Descriptor{Kind: types.KindArray, ElementType: req.Type, Length: req.Size}
	return s.create(ctx, op, owner, req.Name, d, func(local string) (string, error) {
		return s.gen.RandomArray(local, req.Size, generate.Random{Type: req.Type, Min: req.Min, Max: req.Max})
	})
}

// CreateOrderedArray generates and stores an ordered array for owner.
func (s *Service) CreateOrderedArray(ctx context.Context, owner string, req OrderedArrayRequest) (*types.Dataset, error) {
	const op = "create_ordered_array"
	if err := s.check(op, owner, &req); err != nil {
		return nil, err
	}
	d := types.Descriptor{Kind: types.KindArray, ElementType: req.Type, Length: req.Size}
	return s.create(ctx, op, owner, req.Name, d, func(local string) (string, error) {
		return s.gen.OrderedArray(local, req.Size, generate.Ordered{
			Type: req.Type, Pattern: req.Pattern, Start: req.Start, Step: req.Step, Interval: req.Interval,
		})
	})
}

// CreateRandomMatrix generates and stores a random matrix for owner.
func (s *Service) CreateRandomMatrix(ctx context.Context, owner string, req RandomMatrixRequest) (*types.Dataset, error) {
	const op = "create_random_matrix"
	if err := s.check(op, owner, &req); err != nil {
		return nil, err
	}
	d := types.Descriptor{Kind: types.KindMatrix, ElementType: req.Type, Rows: req.Rows, Cols: req.Cols}
	return s.create(ctx, op, owner, req.Name, d, func(local string) (string, error) {
		return s.gen.RandomMatrix(local, req.Rows, req.Cols, generate.Random{Type: req.Type, Min: req.Min, Max: req.Max})
	})
}

// CreateOrderedMatrix generates and stores an ordered matrix for owner.
func (s *Service) CreateOrderedMatrix(ctx context.Context, owner string, req OrderedMatrixRequest) (*types.Dataset, error) {
	const op = "create_ordered_matrix"
	if err := s.check(op, owner, &req); err != nil {
		return nil, err
	}
	d := types.Descriptor{Kind: types.KindMatrix, ElementType: req.Type, Rows: req.Rows, Cols: req.Cols}
	return s.create(ctx, op, owner, req.Name, d, func(local string) (string, error) {
		return s.gen.OrderedMatrix(local, req.Rows, req.Cols, generate.Ordered{
			Type: req.Type, Pattern: req.Pattern, Start: req.Start, Step: req.Step, Interval: req.Interval,
		})
	})
}

// CreateText stores a text dataset for owner.
func (s *Service) CreateText(ctx context.Context, owner string, req TextRequest) (*types.Dataset, error) {
	const op = "create_text"
	if err := s.check(op, owner, &req); err != nil {
		return nil, err
	}
	d := types.Descriptor{Kind: types.KindText}
	return s.create(ctx, op, owner, req.Name, d, func(local string) (string, error) {
		return s.gen.Text(local, req.Content)
	})
}

// create runs gen into the work directory, uploads the result with its
// descriptor, and deletes the local original.
func (s *Service) create(ctx context.Context, op, owner, name string, d types.Descriptor, gen func(local string) (string, error)) (*types.Dataset, error) {
	local := filepath.Join(s.workDir, uuid.NewString()+"-"+name)
	out, err := gen(local)
	if err != nil {
		s.metrics.IncGenerateFailure()
		s.logger.Warn("generation failed", map[string]any{"op": op, "owner": owner, "name": name, "error": err.Error()})
		return nil, err
	}
	defer staging.Release(out, s.stagingOptions())

	info, err := os.Stat(out)
	if err != nil {
		s.metrics.IncGenerateFailure()
		return nil, errs.Wrap(err, op, out)
	}

	key := owner + "/" + generate.WithSuffix(name, d.Kind)
	if _, err := s.store.Put(ctx, out, key); err != nil {
		s.metrics.IncGenerateFailure()
		s.dropOrphanDescriptor(ctx, key)
		return nil, err
	}

	d.FormatVersion = types.FormatVersion
	d.CreatedAt = s.now().UTC()
	if err := s.putDescriptor(ctx, key, d); err != nil {
		s.metrics.IncGenerateFailure()
		if derr := s.store.Delete(ctx, key); derr != nil {
			s.logger.Warn("failed to roll back dataset upload", map[string]any{"key": key, "error": derr.Error()})
		}
		return nil, err
	}

	ds := &types.Dataset{
		Key:         key,
		Kind:        d.Kind,
		ElementType: d.ElementType,
		Length:      d.Length,
		Rows:        d.Rows,
		Cols:        d.Cols,
		Bytes:       info.Size(),
	}
	s.metrics.IncGenerated(metricsLabel(d))
	s.logger.Info("dataset created", map[string]any{"key": key, "kind": string(d.Kind), "bytes": ds.Bytes})
	s.publish(ctx, notify.EventDatasetCreated, owner, ds)
	return ds, nil
}

// dropOrphanDescriptor removes the descriptor of a dataset that a failed
// replacement left absent.
func (s *Service) dropOrphanDescriptor(ctx context.Context, key string) {
	exists, err := s.store.Exists(ctx, key)
	if err != nil || exists {
		return
	}
	if err := s.store.Delete(ctx, descriptorKey(key)); err != nil && !errors.Is(err, errs.ErrNotFound) {
		s.logger.Warn("failed to delete orphaned descriptor", map[string]any{"key": key, "error": err.Error()})
	}
}

func metricsLabel(d types.Descriptor) string {
	if d.Kind == types.KindText {
		return string(types.KindText)
	}
	return d.ElementType.String()
}

// --- Reads ---

// ReadArray returns one page of the array stored under key. A zero hint
// uses the dataset's descriptor, or the legacy width mapping without one.
func (s *Service) ReadArray(ctx context.Context, key string, page, limit int, hint types.ElementType) (*types.ArrayPage, error) {
	const op = "read_array"
	if limit < 1 || limit > s.maxPageElements {
		s.metrics.IncReadFailure()
		return nil, errs.Errorf(errs.ErrInvalidArgument, op, key, "limit must be in [1, %d], got %d", s.maxPageElements, limit)
	}
	opts, err := s.readOptions(ctx, op, key, types.KindArray, hint)
	if err != nil {
		s.metrics.IncReadFailure()
		return nil, err
	}

	pg, err := staging.Fetch(ctx, s.store, key, s.stagingOptions(), func(path string) (*types.ArrayPage, error) {
		return reader.ReadArrayPage(path, page, limit, opts...)
	})
	if err != nil {
		s.metrics.IncReadFailure()
		return nil, err
	}
	s.metrics.AddPageRead(len(pg.Elements))
	return pg, nil
}

// ReadMatrix returns the window of the matrix stored under key.
func (s *Service) ReadMatrix(ctx context.Context, key string, q MatrixQuery) (*types.MatrixPage, error) {
	const op = "read_matrix"
	if err := s.validate.Struct(&q); err != nil {
		s.metrics.IncReadFailure()
		return nil, errs.New(errs.ErrInvalidArgument, op, key, err)
	}
	if q.LimitRow > s.maxPageElements/q.LimitCol {
		s.metrics.IncReadFailure()
		return nil, errs.Errorf(errs.ErrInvalidArgument, op, key,
			"window %d×%d exceeds %d elements", q.LimitRow, q.LimitCol, s.maxPageElements)
	}
	opts, err := s.readOptions(ctx, op, key, types.KindMatrix, q.Type)
	if err != nil {
		s.metrics.IncReadFailure()
		return nil, err
	}

	pg, err := staging.Fetch(ctx, s.store, key, s.stagingOptions(), func(path string) (*types.MatrixPage, error) {
		return reader.ReadMatrixPage(path, q.PageRow, q.LimitRow, q.PageCol, q.LimitCol, opts...)
	})
	if err != nil {
		s.metrics.IncReadFailure()
		return nil, err
	}
	n := 0
	for _, row := range pg.Elements {
		n += len(row)
	}
	s.metrics.AddPageRead(n)
	return pg, nil
}

// ReadText returns the content of the text dataset stored under key.
func (s *Service) ReadText(ctx context.Context, key string) (*types.TextContent, error) {
	const op = "read_text"
	if _, err := s.readOptions(ctx, op, key, types.KindText, 0); err != nil {
		s.metrics.IncReadFailure()
		return nil, err
	}
	content, err := staging.Fetch(ctx, s.store, key, s.stagingOptions(), reader.ReadText)
	if err != nil {
		s.metrics.IncReadFailure()
		return nil, err
	}
	s.metrics.AddPageRead(0)
	return &types.TextContent{Key: key, Content: content}, nil
}

// readOptions resolves the decode hint. An explicit hint wins; otherwise
// the descriptor supplies it. A dataset of another kind is rejected, judged
// by its descriptor or, without one, by its key suffix.
func (s *Service) readOptions(ctx context.Context, op, key string, kind types.Kind, hint types.ElementType) ([]reader.Option, error) {
	if err := checkKey(op, key); err != nil {
		return nil, err
	}
	d, err := s.getDescriptor(ctx, key)
	if err != nil {
		return nil, err
	}
	stored := kind
	if d != nil {
		stored = d.Kind
	} else if k, err := types.KindFromPath(key); err == nil {
		stored = k
	}
	if stored != kind {
		return nil, errs.Errorf(errs.ErrInvalidArgument, op, key, "dataset is a %s, not a %s", stored, kind)
	}
	if hint == 0 && d != nil {
		hint = d.ElementType
	}
	if hint == 0 {
		return nil, nil
	}
	return []reader.Option{reader.WithElementType(hint)}, nil
}

// --- Deletion ---

// Delete removes the dataset stored under key and its descriptor.
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := checkKey("delete", key); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, descriptorKey(key)); err != nil && !errors.Is(err, errs.ErrNotFound) {
		s.logger.Warn("failed to delete descriptor", map[string]any{"key": key, "error": err.Error()})
	}
	s.logger.Info("dataset deleted", map[string]any{"key": key})

	ds := &types.Dataset{Key: key}
	if kind, err := types.KindFromPath(key); err == nil {
		ds.Kind = kind
	}
	s.publish(ctx, notify.EventDatasetDeleted, ownerOf(key), ds)
	return nil
}

// --- Helpers ---

func (s *Service) check(op, owner string, req any) error {
	if err := s.validate.Var(owner, "required,dataset_name"); err != nil {
		return errs.Errorf(errs.ErrInvalidArgument, op, owner, "invalid owner %q", owner)
	}
	if err := s.validate.Struct(req); err != nil {
		return errs.New(errs.ErrInvalidArgument, op, owner, err)
	}
	return nil
}

// checkKey rejects keys that address a descriptor rather than a dataset.
func checkKey(op, key string) error {
	if strings.HasSuffix(key, descriptorSuffix) {
		return errs.Errorf(errs.ErrInvalidArgument, op, key, "%q addresses a descriptor, not a dataset", key)
	}
	return nil
}

func (s *Service) stagingOptions() staging.Options {
	return staging.Options{Logger: s.logger, Metrics: s.metrics}
}

// publish sends a lifecycle event. Failures are logged and counted only.
func (s *Service) publish(ctx context.Context, eventType, owner string, ds *types.Dataset) {
	event := &notify.Event{
		EventType: eventType,
		Key:       ds.Key,
		Owner:     owner,
		Kind:      string(ds.Kind),
		Length:    ds.Length,
		Rows:      ds.Rows,
		Cols:      ds.Cols,
		Bytes:     ds.Bytes,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}
	if s.notifier == nil {
		return
	}
	if ds.ElementType.Valid() {
		event.ElementType = ds.ElementType.String()
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.metrics.IncNotify(false)
		s.logger.Warn("failed to publish event", map[string]any{
			"event_type": eventType,
			"key":        ds.Key,
			"error":      err.Error(),
		})
		return
	}
	s.metrics.IncNotify(true)
}

func ownerOf(key string) string {
	dir := path.Dir(key)
	if dir == "." {
		return ""
	}
	return dir
}
