package dataset

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/metric"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/pkg/cache"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/schema"
)

// DefaultCacheSize is the number of parsed asset files a Library keeps.
const DefaultCacheSize = 256

// Resolver looks assets up by name.
type Resolver interface {
	Resolve(name string) (Asset, bool)
}

// Library is an in-memory, named asset store safe for concurrent reads.
type Library struct {
	mu     sync.RWMutex
	assets map[string]Asset
	files  *cache.LRU[Asset]
	logger *slog.Logger
}

type libraryOptions struct {
	cacheSize int
	registry  *metric.MetricsRegistry
	logger    *slog.Logger
}

// LibraryOption configures a Library.
type LibraryOption func(*libraryOptions)

// WithCacheSize sets how many parsed files are cached between loads.
func WithCacheSize(size int) LibraryOption {
	return func(o *libraryOptions) {
		if size > 0 {
			o.cacheSize = size
		}
	}
}

// WithLibraryMetrics exports the file cache statistics to registry.
func WithLibraryMetrics(registry *metric.MetricsRegistry) LibraryOption {
	return func(o *libraryOptions) {
		o.registry = registry
	}
}

// WithLibraryLogger sets the logger used while loading files.
func WithLibraryLogger(logger *slog.Logger) LibraryOption {
	return func(o *libraryOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewLibrary creates an empty Library.
func NewLibrary(opts ...LibraryOption) (*Library, error) {
	o := &libraryOptions{cacheSize: DefaultCacheSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	files, err := cache.NewLRU[Asset](o.cacheSize, cache.WithMetrics[Asset](o.registry, "dataset"))
	if err != nil {
		return nil, errors.Wrap(err, "Library", "NewLibrary", "file cache creation")
	}

	return &Library{
		assets: make(map[string]Asset),
		files:  files,
		logger: o.logger.With("component", "dataset"),
	}, nil
}

// Add stores an asset under its name, replacing any previous asset.
func (l *Library) Add(asset Asset) error {
	if asset == nil || asset.AssetName() == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Library", "Add", "asset name check")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.assets[asset.AssetName()] = asset
	return nil
}

// Resolve implements Resolver.
func (l *Library) Resolve(name string) (Asset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	asset, ok := l.assets[name]
	return asset, ok
}

// Names returns the sorted names of all stored assets.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.assets))
	for name := range l.assets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CacheStats exposes the parsed-file cache statistics.
func (l *Library) CacheStats() *cache.Statistics {
	return l.files.Stats()
}

// LoadDir walks dir and adds every *.json, *.yaml and *.yml asset file.
// Files unchanged since the previous load are served from the cache.
// It returns the number of assets loaded.
func (l *Library) LoadDir(dir string) (int, error) {
	loaded := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !isAssetFile(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		key := fmt.Sprintf("%s@%d", path, info.ModTime().UnixNano())

		asset, cached := l.files.Get(key)
		if !cached {
			asset, err = ReadFile(path)
			if err != nil {
				return err
			}
			if _, err := l.files.Set(key, asset); err != nil {
				return err
			}
		}

		if err := l.Add(asset); err != nil {
			return errors.Wrap(err, "Library", "LoadDir", "add "+path)
		}
		l.logger.Debug("Loaded asset", "name", asset.AssetName(), "kind", asset.AssetKind(), "path", path, "cached", cached)
		loaded++
		return nil
	})
	if err != nil {
		return loaded, errors.Wrap(err, "Library", "LoadDir", "load "+dir)
	}
	return loaded, nil
}

func isAssetFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// ReadFile parses a single asset file. The document's "type" field selects
// the parser; a missing "name" defaults to the file name without extension.
func ReadFile(path string) (Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapResource(err, "dataset", "ReadFile", "read "+path)
	}

	raw := map[string]any{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrParsingFailed, err), "dataset", "ReadFile", "decode "+path)
	}

	if _, ok := raw["name"]; !ok {
		raw["name"] = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	asset, ge := Parse(raw)
	if ge != nil {
		return nil, errors.WrapResource(ge, "dataset", "ReadFile", "parse "+path)
	}
	return asset, nil
}

// Parse dispatches a typed asset document to its parser.
func Parse(raw map[string]any) (Asset, *errors.GenerationError) {
	kind := Kind(schema.String(raw, "type", ""))
	switch kind {
	case KindWordList:
		return ParseWordList(raw)
	case KindSyllableSet:
		return ParseSyllableSet(raw)
	case KindMarkovModel:
		return ParseMarkovModel(raw)
	}
	return nil, errors.NewGenerationError(errors.CodeInvalidResourceType,
		fmt.Sprintf("asset type %q is not one of wordlist, syllable_set, markov_model", kind),
		map[string]any{"type": string(kind)})
}
