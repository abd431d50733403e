package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
)

const (
	// Security limits for configuration
	maxConfigSize = 10 << 20 // 10MB max config file size
	maxEnvVarLen  = 10000    // Maximum environment variable value length
	maxPathLen    = 4096     // Maximum file path length
)

// validateConfigPath does basic path validation
func validateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty config path", errors.ErrInvalidConfig)
	}

	if len(path) > maxPathLen {
		return fmt.Errorf("%w: path too long: %d > %d", errors.ErrInvalidConfig, len(path), maxPathLen)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return nil
	}
	return fmt.Errorf("%w: only JSON or YAML config files allowed: %s", errors.ErrInvalidConfig, path)
}

// safeReadFile reads a config file with security validation
func safeReadFile(path string) ([]byte, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, errors.WrapInvalid(err, "config", "safeReadFile", "path validation")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("%w: %v", errors.ErrConfigNotFound, err), "config", "safeReadFile", "stat")
	}
	if info.Size() > maxConfigSize {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: config file too large: %d > %d", errors.ErrInvalidConfig, info.Size(), maxConfigSize),
			"config", "safeReadFile", "size check")
	}

	return os.ReadFile(path)
}
