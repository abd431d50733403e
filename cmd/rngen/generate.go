package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/spf13/cobra"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/middleware"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/sampling"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/schema"
)

type generateOptions struct {
	seed        int64
	count       int
	workers     int
	output      string
	debugReport string
	natsURL     string
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <payload-file>",
		Short: "Generate text from one or more strategy configurations",
		Long: `Generate reads a JSON or YAML file holding a strategy configuration, or a
list of them, and prints one result per line.

With --count N every configuration is generated N times. Each repetition gets
its own seed derived from the configuration seed (or the master seed), so the
output is reproducible.

Example: rngen generate names.yaml --seed 42 --count 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Master seed (overrides the configured seed)")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 1, "Generations per configuration")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent generations, 0 uses GOMAXPROCS")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "Output format: text, json")
	cmd.Flags().StringVar(&opts.debugReport, "debug-report", "", "Write a debug report to this path (- for stderr)")
	cmd.Flags().StringVar(&opts.natsURL, "nats-url", "", "Publish lifecycle events to this NATS server")

	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions, path string) error {
	if opts.count < 1 {
		return errors.WrapInvalid(fmt.Errorf("%w: count must be at least 1", errors.ErrInvalidConfig), "rngen", "generate", "flag validation")
	}
	if opts.output != "text" && opts.output != "json" {
		return errors.WrapInvalid(fmt.Errorf("%w: unknown output format %q", errors.ErrInvalidConfig, opts.output), "rngen", "generate", "flag validation")
	}

	payloads, err := readPayloads(path)
	if err != nil {
		return err
	}

	rt, err := newRuntime(cmd.Context(), root, runtimeOptions{natsURL: opts.natsURL, recording: opts.debugReport != ""}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	if cmd.Flags().Changed("seed") {
		rt.mw.Reseed(opts.seed)
	}

	configs := expand(payloads, opts.count, rt.mw.Engine().Seed())
	results, err := rt.mw.GenerateBatch(cmd.Context(), configs, opts.workers)
	if err != nil {
		return err
	}

	if err := writeResults(cmd.OutOrStdout(), opts.output, results); err != nil {
		return err
	}

	if opts.debugReport != "" {
		if err := writeDebugReport(cmd, rt, opts.debugReport); err != nil {
			return err
		}
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d generations failed", failed, len(results))
	}
	return nil
}

// expand repeats each payload count times. Repetitions carry a seed derived
// from the payload seed, or from the master seed when the payload has none.
func expand(payloads []map[string]any, count int, masterSeed int64) []map[string]any {
	if count == 1 {
		return payloads
	}
	configs := make([]map[string]any, 0, len(payloads)*count)
	for _, p := range payloads {
		base := schema.Int64(p, "seed", masterSeed)
		for i := range count {
			c := maps.Clone(p)
			c["seed"] = sampling.SampleSeed(base, i)
			configs = append(configs, c)
		}
	}
	return configs
}

func writeResults(w io.Writer, format string, results []middleware.Result) error {
	if format == "json" {
		wire := make([]any, len(results))
		for i, r := range results {
			wire[i] = r.Wire()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(wire)
	}

	for _, r := range results {
		var err error
		if r.Err != nil {
			_, err = fmt.Fprintf(w, "error: %s\n", r.Err.Error())
		} else {
			_, err = fmt.Fprintln(w, r.Value)
		}
		if err != nil {
			return errors.Wrap(err, "rngen", "writeResults", "write")
		}
	}
	return nil
}

func writeDebugReport(cmd *cobra.Command, rt *runtime, path string) error {
	if path == "-" {
		return rt.recorder.Close(cmd.ErrOrStderr())
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "rngen", "writeDebugReport", "create "+path)
	}
	defer f.Close()
	return rt.recorder.Close(f)
}
