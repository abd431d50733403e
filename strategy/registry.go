package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/schema"
)

// Registration holds the metadata for a registered strategy.
type Registration struct {
	ID          string
	Kind        Kind
	Description string
	Version     string
	Strategy    Strategy
}

// Info is the introspection view of a registration.
type Info struct {
	ID          string              `json:"id"`
	Kind        Kind                `json:"kind"`
	Description string              `json:"description"`
	Version     string              `json:"version"`
	Schema      schema.ConfigSchema `json:"schema"`
}

// Registry maps strategy ids to implementations. It is the single source of
// truth for which ids exist.
type Registry struct {
	mu            sync.RWMutex
	registrations map[string]Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		registrations: make(map[string]Registration),
	}
}

// Register adds reg. Registering an existing id replaces it.
func (r *Registry) Register(reg Registration) error {
	if reg.ID == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "strategy id check")
	}
	if reg.Strategy == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register",
			fmt.Sprintf("strategy %q implementation check", reg.ID))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations[reg.ID] = reg
	return nil
}

// Get returns the registration for id.
func (r *Registry) Get(id string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.registrations[id]
	return reg, ok
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.registrations))
	for id := range r.registrations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Describe returns the configuration contract of id.
func (r *Registry) Describe(id string) (schema.ConfigSchema, bool) {
	reg, ok := r.Get(id)
	if !ok {
		return schema.ConfigSchema{}, false
	}
	return reg.Strategy.Schema(), true
}

// List returns introspection info for every registration, sorted by id.
func (r *Registry) List() []Info {
	ids := r.IDs()
	infos := make([]Info, 0, len(ids))
	for _, id := range ids {
		reg, ok := r.Get(id)
		if !ok {
			continue
		}
		infos = append(infos, Info{
			ID:          reg.ID,
			Kind:        reg.Kind,
			Description: reg.Description,
			Version:     reg.Version,
			Schema:      reg.Strategy.Schema(),
		})
	}
	return infos
}

// Dispatch implements Dispatcher.
//
// It resolves config["strategy"], checks the recursion budget, validates the
// config against the strategy's contract and calls Generate. Validation runs
// on every call; nothing is cached.
func (r *Registry) Dispatch(req *Request) (string, *errors.GenerationError) {
	if req.Config == nil {
		return "", schema.Validate(nil, schema.ConfigSchema{})
	}

	raw, present := req.Config["strategy"]
	id, isString := raw.(string)
	if !present || !isString || id == "" {
		return "", errors.NewGenerationError(errors.CodeMissingStrategy,
			"configuration must name a strategy", map[string]any{"received": fmt.Sprint(raw)})
	}

	reg, ok := r.Get(id)
	if !ok {
		return "", errors.NewGenerationError(errors.CodeUnknownStrategy,
			fmt.Sprintf("unknown strategy %q", id),
			map[string]any{"strategy": id, "available": r.IDs()})
	}

	if req.Remaining < 0 {
		return "", errors.NewGenerationError(errors.CodeRecursionDepthExceeded,
			fmt.Sprintf("nested dispatch of %q exceeds the recursion limit", id),
			map[string]any{"strategy": id, "path": req.streamPath()})
	}

	if ge := schema.Validate(req.Config, reg.Strategy.Schema()); ge != nil {
		return "", ge.With("strategy", id)
	}

	if req.Dispatcher == nil {
		req.Dispatcher = r
	}
	return reg.Strategy.Generate(req)
}
