package debug

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Close writes the report to w and stops recording. Later events are
// ignored; a second Close returns ErrRecorderClosed and writes nothing.
func (r *Recorder) Close(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRecorderClosed
	}
	r.closed = true

	var b strings.Builder
	r.writeReport(&b, r.now())
	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, title string) {
	fmt.Fprintf(b, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (r *Recorder) writeReport(b *strings.Builder, closedAt time.Time) {
	b.WriteString("RNGEN Debug Report\n")
	b.WriteString("==================\n")

	section(b, "Session")
	fmt.Fprintf(b, "Session ID: %s\n", r.sessionID)
	fmt.Fprintf(b, "Started: %s\n", stamp(r.started))
	fmt.Fprintf(b, "Closed: %s\n", stamp(closedAt))
	fmt.Fprintf(b, "Duration: %s\n", closedAt.Sub(r.started))

	section(b, "Timeline")
	if len(r.timeline) == 0 {
		b.WriteString("(none)\n")
	}
	for _, e := range r.timeline {
		fmt.Fprintf(b, "[%04d] %s %-14s strategy=%s", e.Seq, stamp(e.Time), e.Kind, e.StrategyID)
		if e.RequestID != "" {
			fmt.Fprintf(b, " request=%s seed=%d path=%s", e.RequestID, e.Seed, e.StreamPath)
		}
		if e.Detail != "" {
			fmt.Fprintf(b, " %s", e.Detail)
		}
		b.WriteByte('\n')
	}

	section(b, "Warnings")
	if len(r.warnings) == 0 {
		b.WriteString("(none)\n")
	}
	for _, w := range r.warnings {
		fmt.Fprintf(b, "%s %s", stamp(w.Time), w.Message)
		keys := make([]string, 0, len(w.Context))
		for k := range w.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(b, " %s=%v", k, w.Context[k])
		}
		b.WriteByte('\n')
	}

	section(b, "Stream Usage")
	if len(r.streams) == 0 {
		b.WriteString("(none)\n")
	}
	for _, s := range r.streams {
		fmt.Fprintf(b, "%s path=%s master_seed=%d derived_seed=%d\n", stamp(s.Time), s.Path, s.MasterSeed, s.DerivedSeed)
	}

	section(b, "Summary")
	fmt.Fprintf(b, "Total Calls: %d\n", r.counters.TotalCalls)
	fmt.Fprintf(b, "Successful Calls: %d\n", r.counters.SuccessfulCalls)
	fmt.Fprintf(b, "Failed Calls: %d\n", r.counters.FailedCalls)
	fmt.Fprintf(b, "Strategy Errors: %d\n", r.counters.StrategyErrors)
	fmt.Fprintf(b, "Warnings: %d\n", r.counters.Warnings)
	fmt.Fprintf(b, "Stream Records: %d\n", r.counters.StreamRecords)
}
