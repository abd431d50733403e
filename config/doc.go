// Package config loads and validates the engine configuration.
//
// Configuration is layered: built-in defaults, then one or more JSON or YAML
// files, then environment overrides (RNGEN_SEED, RNGEN_LOG_LEVEL,
// RNGEN_LOG_FORMAT, RNGEN_NATS_URL). The result is validated with struct tags
// before use.
//
//	loader := config.NewLoader()
//	loader.AddLayer("rngen.yaml")
//	loader.EnableValidation(true)
//	cfg, err := loader.Load()
//
// SafeConfig wraps a Config for concurrent readers and validated updates.
package config
