package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents a numstore.yaml configuration file.
// All values are optional; CLI flags always override them.
type Config struct {
	WorkDir    string        `yaml:"work_dir"`
	StagingDir string        `yaml:"staging_dir"`
	LogLevel   string        `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Seed       *uint64       `yaml:"seed,omitempty"`
	Storage    StorageConfig `yaml:"storage"`
	Read       ReadConfig    `yaml:"read"`
	Notify     NotifyConfig  `yaml:"notify"`
}

// StorageConfig selects and configures the dataset store.
type StorageConfig struct {
	Backend     string `yaml:"backend" validate:"omitempty,oneof=fs memory s3"`
	Path        string `yaml:"path" validate:"required_if=Backend s3"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint" validate:"omitempty,url"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// ReadConfig holds paging defaults.
type ReadConfig struct {
	DefaultLimit    int `yaml:"default_limit" validate:"gte=0"`
	MaxPageElements int `yaml:"max_page_elements" validate:"gte=0"`
}

// NotifyConfig configures the optional dataset event notifier.
type NotifyConfig struct {
	Type    string            `yaml:"type" validate:"omitempty,oneof=redis webhook"`
	URL     string            `yaml:"url" validate:"required_with=Type"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty" validate:"omitempty,gte=0"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", s)
	}
	d.Duration = parsed
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation by its
// YAML-facing field path.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fieldPath(fe.Namespace()), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// yamlNames maps Go field names to their YAML keys for error messages.
var yamlNames = map[string]string{
	"WorkDir":         "work_dir",
	"StagingDir":      "staging_dir",
	"LogLevel":        "log_level",
	"Storage":         "storage",
	"Backend":         "backend",
	"Path":            "path",
	"Endpoint":        "endpoint",
	"Read":            "read",
	"DefaultLimit":    "default_limit",
	"MaxPageElements": "max_page_elements",
	"Notify":          "notify",
	"Type":            "type",
	"URL":             "url",
	"Retries":         "retries",
}

func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:] // drop "Config"
	}
	for i, p := range parts {
		if n, ok := yamlNames[p]; ok {
			parts[i] = n
		}
	}
	return strings.Join(parts, ".")
}
