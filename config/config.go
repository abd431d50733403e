package config

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
)

// Defaults
const (
	DefaultMaxDepth      = 32
	DefaultCacheSize     = 256
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultTelemetryPath = "rngen.generation"
)

// Config represents the complete engine configuration
type Config struct {
	Seed        int64           `json:"seed" yaml:"seed"`
	MaxDepth    int             `json:"max_depth" yaml:"max_depth" validate:"gte=1,lte=1024"`
	DatasetDirs []string        `json:"dataset_dirs,omitempty" yaml:"dataset_dirs,omitempty" validate:"dive,required"`
	CacheSize   int             `json:"cache_size" yaml:"cache_size" validate:"gte=1"`
	Log         LogConfig       `json:"log" yaml:"log"`
	Telemetry   TelemetryConfig `json:"telemetry" yaml:"telemetry"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" validate:"oneof=json text"`
}

// TelemetryConfig configures NATS lifecycle publishing. Empty NATSURL
// disables telemetry.
type TelemetryConfig struct {
	NATSURL string `json:"nats_url,omitempty" yaml:"nats_url,omitempty" validate:"omitempty,url"`
	Subject string `json:"subject" yaml:"subject" validate:"required"`
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		MaxDepth:  DefaultMaxDepth,
		CacheSize: DefaultCacheSize,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Telemetry: TelemetryConfig{
			Subject: DefaultTelemetryPath,
		},
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if c == nil {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "nil config check")
	}
	if err := structValidator().Struct(c); err != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err), "Config", "Validate", "field validation")
	}
	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return Defaults()
	}
	copied := *c
	copied.DatasetDirs = slices.Clone(c.DatasetDirs)
	return &copied
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// SafeConfig provides thread-safe access to configuration
type SafeConfig struct {
	mu     sync.RWMutex
	config *Config
}

// NewSafeConfig creates a new thread-safe config wrapper
func NewSafeConfig(cfg *Config) *SafeConfig {
	if cfg == nil {
		cfg = Defaults()
	}
	return &SafeConfig{
		config: cfg,
	}
}

// Get returns a deep copy of the current configuration
func (sc *SafeConfig) Get() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.Clone()
}

// Update atomically updates the configuration after validation
func (sc *SafeConfig) Update(cfg *Config) error {
	if cfg == nil {
		return errors.WrapInvalid(errors.ErrMissingConfig, "SafeConfig", "Update", "nil config check")
	}

	// Validate before updating
	if err := cfg.Validate(); err != nil {
		return err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.config = cfg.Clone()
	return nil
}
