package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/numstore/cli/config"
	"github.com/pithecene-io/numstore/cli/render"
	"github.com/pithecene-io/numstore/errs"
	"github.com/pithecene-io/numstore/generate"
	"github.com/pithecene-io/numstore/log"
	"github.com/pithecene-io/numstore/metrics"
	"github.com/pithecene-io/numstore/notify"
	"github.com/pithecene-io/numstore/notify/redis"
	"github.com/pithecene-io/numstore/notify/webhook"
	"github.com/pithecene-io/numstore/service"
	"github.com/pithecene-io/numstore/storage"
)

// defaultConfigFile is loaded from the working directory when --config is unset.
const defaultConfigFile = "numstore.yaml"

// Read defaults applied when neither flags nor config set them.
const (
	defaultArrayLimit  = 100
	defaultMatrixLimit = 10
)

// env is the per-invocation wiring shared by all commands.
type env struct {
	cfg      *config.Config
	logger   *log.Logger
	metrics  *metrics.Collector
	notifier notify.Notifier
	svc      *service.Service
	render   *render.Renderer
}

// newEnv loads configuration and builds the service for one command.
// Callers must Close the returned env.
func newEnv(c *cli.Context) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, errs.New(errs.ErrInvalidArgument, "load_config", c.String("config"), err)
	}

	level := cfg.LogLevel
	if c.IsSet("log-level") || level == "" {
		level = c.String("log-level")
	}
	logger, err := log.New(log.Options{Level: level, Output: c.App.ErrWriter})
	if err != nil {
		return nil, errs.Errorf(errs.ErrInvalidArgument, "load_config", "", "invalid log level %q: %v", level, err)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return nil, errs.New(errs.ErrInvalidArgument, "parse_flags", "", err)
	}

	applyDefaults(cfg)
	m := metrics.NewCollector(cfg.Storage.Backend)

	store, err := buildStore(c.Context, cfg, logger, m)
	if err != nil {
		return nil, err
	}

	notifier, err := buildNotifier(cfg)
	if err != nil {
		return nil, errs.New(errs.ErrInvalidArgument, "load_config", "notify", err)
	}

	opts := []service.Option{
		service.WithLogger(logger.Named("service")),
		service.WithMetrics(m),
		service.WithNotifier(notifier),
		service.WithMaxPageElements(cfg.Read.MaxPageElements),
	}
	if cfg.Seed != nil {
		opts = append(opts, service.WithGenerator(generate.New(generate.WithSeed(*cfg.Seed))))
	}
	svc, err := service.New(store, cfg.WorkDir, opts...)
	if err != nil {
		_ = notifier.Close()
		return nil, err
	}

	logger.Debug("environment ready", map[string]any{
		"backend":     cfg.Storage.Backend,
		"work_dir":    cfg.WorkDir,
		"staging_dir": cfg.StagingDir,
		"notify":      cfg.Notify.Type,
	})

	return &env{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		notifier: notifier,
		svc:      svc,
		render:   r,
	}, nil
}

// Close logs the metrics snapshot and releases the notifier.
func (e *env) Close() {
	e.logger.Debug("metrics", e.metrics.Snapshot().Fields())
	if err := e.notifier.Close(); err != nil {
		e.logger.Warn("failed to close notifier", map[string]any{"error": err.Error()})
	}
	_ = e.logger.Sync()
}

// loadConfig reads --config, or ./numstore.yaml when present, or returns
// an empty config.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			return &config.Config{}, nil
		}
		path = defaultConfigFile
	}
	return config.Load(path)
}

func applyDefaults(cfg *config.Config) {
	base := filepath.Join(os.TempDir(), "numstore")
	if cfg.WorkDir == "" {
		cfg.WorkDir = filepath.Join(base, "work")
	}
	if cfg.StagingDir == "" {
		cfg.StagingDir = filepath.Join(base, "staging")
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = storage.BackendFS
	}
	if cfg.Storage.Backend == storage.BackendFS && cfg.Storage.Path == "" {
		cfg.Storage.Path = "numstore-data"
	}
}

func buildStore(ctx context.Context, cfg *config.Config, logger *log.Logger, m *metrics.Collector) (storage.Store, error) {
	opts := []storage.Option{
		storage.WithLogger(logger.Named("storage")),
		storage.WithMetrics(m),
	}
	sc := cfg.Storage
	switch sc.Backend {
	case storage.BackendFS:
		return storage.NewFS(sc.Path, cfg.StagingDir, opts...)
	case storage.BackendMemory:
		return storage.NewMemory(cfg.StagingDir, opts...), nil
	case storage.BackendS3:
		s3cfg, err := storage.ParseS3Location(sc.Path)
		if err != nil {
			return nil, err
		}
		s3cfg.Region = sc.Region
		s3cfg.Endpoint = sc.Endpoint
		s3cfg.PathStyle = sc.S3PathStyle
		return storage.NewS3(ctx, s3cfg, cfg.StagingDir, opts...)
	default:
		return nil, errs.Errorf(errs.ErrInvalidArgument, "load_config", "storage.backend",
			"unknown backend %q (must be fs, memory, or s3)", sc.Backend)
	}
}

func buildNotifier(cfg *config.Config) (notify.Notifier, error) {
	nc := cfg.Notify
	retries := func(def int) int {
		if nc.Retries != nil {
			return *nc.Retries
		}
		return def
	}
	switch nc.Type {
	case "":
		return notify.Nop{}, nil
	case "redis":
		return redis.New(redis.Config{
			URL:     nc.URL,
			Channel: nc.Channel,
			Timeout: nc.Timeout.Duration,
			Retries: retries(redis.DefaultRetries),
		})
	case "webhook":
		return webhook.New(webhook.Config{
			URL:     nc.URL,
			Headers: nc.Headers,
			Timeout: nc.Timeout.Duration,
			Retries: retries(webhook.DefaultRetries),
		})
	default:
		return nil, fmt.Errorf("unknown notify type %q (must be redis or webhook)", nc.Type)
	}
}

// withEnv runs fn with a freshly built env and maps its error to an exit code.
func withEnv(fn func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := newEnv(c)
		if err != nil {
			return fail(err)
		}
		defer e.Close()
		if err := fn(c, e); err != nil {
			var exitCoder cli.ExitCoder
			if !errors.As(err, &exitCoder) {
				e.logger.Debug("command failed", map[string]any{"command": c.Command.FullName(), "error": err.Error()})
			}
			return fail(err)
		}
		return nil
	}
}
