package strategyregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/schema"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategy"
)

func TestRegister_AllKinds(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	ids := registry.IDs()
	for _, kind := range strategy.Kinds() {
		assert.Contains(t, ids, string(kind))
		reg, ok := registry.Get(string(kind))
		require.True(t, ok)
		assert.Equal(t, kind, reg.Kind)
		assert.NotEmpty(t, reg.Description)
	}
}

func TestRegister_NilRegistry(t *testing.T) {
	err := Register(nil)
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestRegister_SchemasRequireStrategy(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	for _, id := range registry.IDs() {
		cs, ok := registry.Describe(id)
		require.True(t, ok)
		assert.True(t, cs.IsRequired("strategy"), id)
		assert.NotEmpty(t, schema.SortedPropertyNames(cs))
	}
}

func TestRegisterKind_Unknown(t *testing.T) {
	err := registerKind(strategy.NewRegistry(), strategy.Kind("bogus"))
	assert.Error(t, err)
}
