package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/config"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/dataset"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/debug"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/engine"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/metric"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/middleware"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/pkg/retry"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategyregistry"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/telemetry"
)

// runtime is the assembled engine used by a single command invocation.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *metric.MetricsRegistry
	library  *dataset.Library
	mw       *middleware.Middleware
	recorder *debug.Recorder
	nc       *nats.Conn
}

type runtimeOptions struct {
	natsURL   string
	recording bool
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	loader := config.NewLoader()
	for _, path := range opts.configPaths {
		loader.AddLayer(path)
	}
	loader.EnableValidation(true)

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	cfg.DatasetDirs = append(cfg.DatasetDirs, opts.datasetDirs...)
	return cfg, cfg.Validate()
}

func newRuntime(ctx context.Context, opts *rootOptions, ro runtimeOptions, logOut io.Writer) (*runtime, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if ro.natsURL != "" {
		cfg.Telemetry.NATSURL = ro.natsURL
	}

	rt := &runtime{
		cfg:     cfg,
		logger:  setupLogger(logOut, cfg.Log.Level, cfg.Log.Format),
		metrics: metric.NewMetricsRegistry(),
	}

	rt.library, err = dataset.NewLibrary(
		dataset.WithCacheSize(cfg.CacheSize),
		dataset.WithLibraryMetrics(rt.metrics),
		dataset.WithLibraryLogger(rt.logger),
	)
	if err != nil {
		return nil, errors.WrapFatal(err, "rngen", "newRuntime", "dataset library creation")
	}
	for _, dir := range cfg.DatasetDirs {
		n, err := rt.library.LoadDir(dir)
		if err != nil {
			return nil, err
		}
		rt.logger.Info("Loaded datasets", "dir", dir, "count", n)
	}

	registry, err := strategyregistry.NewRegistry()
	if err != nil {
		return nil, err
	}

	engineCtx := engine.NewContext(cfg.Seed)
	mwOpts := []middleware.Option{
		middleware.WithLogger(rt.logger),
		middleware.WithMetrics(rt.metrics),
		middleware.WithResources(rt.library),
		middleware.WithMaxDepth(cfg.MaxDepth),
	}

	if ro.recording {
		rt.recorder = debug.NewRecorder()
		engineCtx.AddObserver(rt.recorder)
		mwOpts = append(mwOpts, middleware.WithListener(rt.recorder))
	}

	if cfg.Telemetry.NATSURL != "" {
		rt.nc, err = telemetry.Connect(ctx, cfg.Telemetry.NATSURL, retry.DefaultPolicy())
		if err != nil {
			return nil, errors.Wrap(err, "rngen", "newRuntime", "telemetry connection")
		}
		publisher := telemetry.NewPublisher(rt.nc, cfg.Telemetry.Subject, rt.logger)
		mwOpts = append(mwOpts, middleware.WithListener(publisher))
		rt.logger.Info("Publishing generation events", "url", cfg.Telemetry.NATSURL, "subject", cfg.Telemetry.Subject)
	}

	rt.mw = middleware.New(engineCtx, registry, mwOpts...)
	return rt, nil
}

// Close flushes telemetry and releases the NATS connection.
func (rt *runtime) Close() {
	if rt.nc == nil {
		return
	}
	if err := rt.nc.Drain(); err != nil {
		rt.logger.Warn("Failed to drain NATS connection", "error", err)
	}
}
