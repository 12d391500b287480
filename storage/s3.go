package storage

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/justapithecus/lode/lode"
	lodes3 "github.com/justapithecus/lode/lode/s3"

	"github.com/pithecene-io/numstore/errs"
)

// S3Config locates datasets in a bucket. With a Prefix, dataset keys are
// stored as "<Prefix>/<owner>/<file>".
type S3Config struct {
	Bucket string
	Prefix string
	Region string
	// Endpoint overrides the AWS endpoint for S3-compatible services.
	Endpoint  string
	PathStyle bool
}

// ParseS3Location reads "bucket" or "bucket/prefix", optionally with an
// s3:// scheme, and normalizes the prefix to a clean key path.
func ParseS3Location(loc string) (S3Config, error) {
	bucket, prefix, _ := strings.Cut(strings.TrimPrefix(loc, "s3://"), "/")
	cfg := S3Config{Bucket: bucket, Prefix: strings.Trim(prefix, "/")}
	return cfg, cfg.check()
}

func (c S3Config) check() error {
	if c.Bucket == "" {
		return errs.Errorf(errs.ErrInvalidArgument, "s3_config", "", "bucket is required")
	}
	if c.Prefix == "" {
		return nil
	}
	return ValidateKey(c.Prefix)
}

// NewS3 creates an S3-backed store. Credentials come from the AWS default
// chain; the client is built eagerly, the lode store on first use.
func NewS3(ctx context.Context, cfg S3Config, stagingDir string, opts ...Option) (*LodeStore, error) {
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	if err := cfg.check(); err != nil {
		return nil, err
	}
	client, err := cfg.client(ctx)
	if err != nil {
		return nil, err
	}
	factory := func() (lode.Store, error) {
		return lodes3.New(client, lodes3.Config{Bucket: cfg.Bucket, Prefix: cfg.Prefix})
	}
	return New(BackendS3, factory, stagingDir, opts...), nil
}

func (c S3Config) client(ctx context.Context) (*s3.Client, error) {
	var load []func(*config.LoadOptions) error
	if c.Region != "" {
		load = append(load, config.WithRegion(c.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, load...)
	if err != nil {
		return nil, errs.Wrap(err, "s3_config", c.Bucket)
	}
	endpoint := c.Endpoint
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = &endpoint
		}
		o.UsePathStyle = c.PathStyle
	}), nil
}
