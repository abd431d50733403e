package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draws(s *Stream, n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = s.Uint64()
	}
	return out
}

func TestDerive_Deterministic(t *testing.T) {
	paths := [][]string{
		{"hybrid", "step_2", "material"},
		{"wordlist"},
		{"template", "x", "#2"},
	}
	for _, seed := range []int64{0, 1, 42, -7, 1 << 62} {
		for _, path := range paths {
			a := draws(Derive(seed, path), 32)
			b := draws(Derive(seed, path), 32)
			assert.Equal(t, a, b, "seed=%d path=%v", seed, path)
		}
	}
}

func TestDerive_PathIndependence(t *testing.T) {
	const samples = 500
	collisions := 0
	for i := 0; i < samples; i++ {
		seed := int64(i * 7919)
		a := draws(Derive(seed, []string{"hybrid", "step_1"}), 4)
		b := draws(Derive(seed, []string{"hybrid", "step_2"}), 4)
		if a[0] == b[0] {
			collisions++
		}
	}
	assert.Zero(t, collisions, "sibling paths produced identical first draws")
}

func TestDerive_SegmentBoundariesMatter(t *testing.T) {
	a := Seed(5, []string{"ab", "c"})
	b := Seed(5, []string{"a", "bc"})
	assert.NotEqual(t, a, b)
}

func TestSeed_NonNegative(t *testing.T) {
	for i := int64(-50); i < 50; i++ {
		seed := Seed(i, []string{"root", "leaf"})
		assert.GreaterOrEqual(t, seed, int64(0))
	}
}

func TestDerive_NewMasterSeedChangesSequence(t *testing.T) {
	path := []string{"material"}
	before := draws(Derive(1, path), 8)
	after := draws(Derive(2, path), 8)
	again := draws(Derive(2, path), 8)

	assert.NotEqual(t, before, after)
	assert.Equal(t, after, again)
}

func TestStream_ChildIgnoresParentPosition(t *testing.T) {
	parent := Derive(9, []string{"root"})
	fresh := draws(parent.Child("leaf"), 4)

	_ = parent.Float64()
	_ = parent.Float64()
	advanced := draws(parent.Child("leaf"), 4)

	assert.Equal(t, fresh, advanced)
	assert.Equal(t, []string{"root", "leaf"}, parent.Child("leaf").Path())
	assert.Equal(t, "root::leaf", parent.Child("leaf").PathString())
}

func TestStream_ChildDoesNotAliasParentPath(t *testing.T) {
	parent := Derive(9, make([]string, 1, 8))
	a := parent.Child("a")
	b := parent.Child("b")
	assert.Equal(t, []string{"", "a"}, a.Path())
	assert.Equal(t, []string{"", "b"}, b.Path())
}

func TestStream_Rebase(t *testing.T) {
	s := Derive(1, []string{"pipeline"})
	rebased := s.Rebase(77)

	assert.Equal(t, int64(77), rebased.MasterSeed())
	assert.Equal(t, s.Path(), rebased.Path())
	assert.Equal(t, draws(Derive(77, []string{"pipeline"}), 4), draws(rebased, 4))
}

func TestStream_IntRange(t *testing.T) {
	s := Derive(3, []string{"range"})
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		v := s.IntRange(2, 5)
		require.GreaterOrEqual(t, v, 2)
		require.LessOrEqual(t, v, 5)
		seen[v] = true
	}
	assert.Len(t, seen, 4)
	assert.Equal(t, 4, s.IntRange(4, 4))
	assert.Equal(t, 4, s.IntRange(4, 1))
}

func TestStream_Weighted(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, -1, Derive(1, []string{"w"}).Weighted(nil))
	})

	t.Run("zero weight never chosen", func(t *testing.T) {
		s := Derive(1, []string{"w"})
		for i := 0; i < 1000; i++ {
			assert.NotEqual(t, 1, s.Weighted([]float64{1, 0, 2}))
		}
	})

	t.Run("all zero falls back to uniform", func(t *testing.T) {
		s := Derive(1, []string{"w"})
		counts := make([]int, 3)
		for i := 0; i < 3000; i++ {
			counts[s.Weighted([]float64{0, 0, 0})]++
		}
		for _, c := range counts {
			assert.Greater(t, c, 800)
		}
	})

	t.Run("ratio follows weights", func(t *testing.T) {
		s := Derive(11, []string{"w"})
		heavy := 0
		const n = 10000
		for i := 0; i < n; i++ {
			if s.Weighted([]float64{3, 1}) == 0 {
				heavy++
			}
		}
		ratio := float64(heavy) / n
		assert.InDelta(t, 0.75, ratio, 0.03)
	})
}
