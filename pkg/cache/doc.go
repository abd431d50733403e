// Package cache provides a generic, thread-safe LRU cache with built-in
// statistics and optional Prometheus metrics.
//
// The dataset library uses it to keep parsed asset files in memory so that
// reloading a directory only re-parses files that changed:
//
//	c, err := cache.NewLRU[dataset.Asset](128,
//	    cache.WithMetrics[dataset.Asset](registry, "dataset"))
//	c.Set(key, asset)
//	asset, ok := c.Get(key)
//
// Statistics are always collected; metrics are exported only when a registry
// is supplied.
package cache
