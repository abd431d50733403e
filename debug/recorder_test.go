package debug

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/engine"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/middleware"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategyregistry"
)

func fixedClock() func() time.Time {
	t := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

func newWiredRecorder(t *testing.T) (*Recorder, *middleware.Middleware) {
	t.Helper()
	rec := NewRecorder(WithClock(fixedClock()), WithSessionID("session-1"))
	ctx := engine.NewContext(42)
	ctx.AddObserver(rec)

	registry, err := strategyregistry.NewRegistry()
	require.NoError(t, err)
	return rec, middleware.New(ctx, registry, middleware.WithListener(rec))
}

func TestRecorder_Report(t *testing.T) {
	rec, mw := newWiredRecorder(t)

	_, ge := mw.Generate(map[string]any{
		"strategy": "wordlist",
		"sources":  []any{map[string]any{"entries": []any{"oak"}}},
	})
	require.Nil(t, ge)
	_, ge = mw.Generate(map[string]any{"strategy": "missing"})
	require.NotNil(t, ge)

	rec.RecordStrategyError("markov", errors.Newf(errors.CodeEmptyTransitionBlock, "token %q has an empty transition block", "a"))
	rec.Warn("dataset reloaded", map[string]any{"files": 3})

	var out strings.Builder
	require.NoError(t, rec.Close(&out))
	report := out.String()

	for _, heading := range []string{"Session", "Timeline", "Warnings", "Stream Usage", "Summary"} {
		assert.Contains(t, report, "\n"+heading+"\n")
	}
	assert.Contains(t, report, "Session ID: session-1")
	assert.Contains(t, report, `COMPLETE`)
	assert.Contains(t, report, `result="oak"`)
	assert.Contains(t, report, "code=unknown_strategy")
	assert.Contains(t, report, "STRATEGY_ERROR")
	assert.Contains(t, report, "dataset reloaded files=3")
	assert.Contains(t, report, "path=wordlist master_seed=42")

	assert.Contains(t, report, "Total Calls: 2\n")
	assert.Contains(t, report, "Successful Calls: 1\n")
	assert.Contains(t, report, "Failed Calls: 1\n")
	assert.Contains(t, report, "Strategy Errors: 1\n")
	assert.Contains(t, report, "Warnings: 1\n")
	assert.Contains(t, report, "Stream Records: 2\n")

	// START, COMPLETE, START, FAIL, STRATEGY_ERROR in order
	timeline := rec.Timeline()
	require.Len(t, timeline, 5)
	kinds := make([]EntryKind, len(timeline))
	for i, e := range timeline {
		kinds[i] = e.Kind
		assert.Equal(t, i+1, e.Seq)
	}
	assert.Equal(t, []EntryKind{EntryStart, EntryComplete, EntryStart, EntryFail, EntryStrategyError}, kinds)
}

func TestRecorder_CloseTwice(t *testing.T) {
	rec := NewRecorder()
	var first, second strings.Builder
	require.NoError(t, rec.Close(&first))
	assert.ErrorIs(t, rec.Close(&second), ErrRecorderClosed)
	assert.Empty(t, second.String())
	assert.Contains(t, first.String(), "(none)")

	rec.Warn("after close", nil)
	assert.Equal(t, 0, rec.Counters().Warnings)
}

func TestRecorder_ConcurrentAppends(t *testing.T) {
	rec, mw := newWiredRecorder(t)
	cfg := map[string]any{"strategy": "wordlist", "sources": []any{map[string]any{"entries": []any{"a", "b"}}}}

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = mw.Generate(cfg)
		}()
	}
	wg.Wait()

	c := rec.Counters()
	assert.Equal(t, 20, c.TotalCalls)
	assert.Equal(t, 20, c.SuccessfulCalls)
	assert.Equal(t, 20, c.StreamRecords)
	assert.Len(t, rec.Timeline(), 40)
}
