package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/sampling"
)

type surveyOptions struct {
	samples  int
	baseSeed int64
	workers  int
	top      int
	expected map[string]string
	asJSON   bool
}

func newSurveyCmd(root *rootOptions) *cobra.Command {
	opts := &surveyOptions{}

	cmd := &cobra.Command{
		Use:   "survey <payload-file>",
		Short: "Sample a configuration many times and report its output distribution",
		Long: `Survey runs a single configuration under many derived seeds and reports
the frequency table, entropy and length statistics of the results.

Expected weights given with --expect enable a chi-square goodness-of-fit test.

Example: rngen survey colors.yaml --samples 5000 --expect red=3 --expect blue=1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSurvey(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.samples, "samples", 1000, "Number of generations")
	cmd.Flags().Int64Var(&opts.baseSeed, "base-seed", 0, "Seed the per-sample seeds are derived from")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent generations, 0 uses GOMAXPROCS")
	cmd.Flags().IntVar(&opts.top, "top", 20, "Frequency rows to print, 0 for all")
	cmd.Flags().StringToStringVar(&opts.expected, "expect", nil, "Expected relative weight per value (value=weight)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the report as JSON")

	return cmd
}

func runSurvey(cmd *cobra.Command, root *rootOptions, opts *surveyOptions, path string) error {
	payloads, err := readPayloads(path)
	if err != nil {
		return err
	}
	if len(payloads) != 1 {
		return errors.WrapInvalid(fmt.Errorf("%w: survey takes exactly one configuration, got %d", errors.ErrInvalidData, len(payloads)),
			"rngen", "survey", "payload check")
	}

	expected, err := parseExpected(opts.expected)
	if err != nil {
		return err
	}

	rt, err := newRuntime(cmd.Context(), root, runtimeOptions{}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := sampling.Survey(cmd.Context(), rt.mw, payloads[0], sampling.Options{
		Samples:  opts.samples,
		BaseSeed: opts.baseSeed,
		Workers:  opts.workers,
		Expected: expected,
	})
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return report.WriteText(cmd.OutOrStdout(), opts.top)
}

func parseExpected(raw map[string]string) (map[string]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	expected := make(map[string]float64, len(raw))
	for value, w := range raw {
		weight, err := strconv.ParseFloat(w, 64)
		if err != nil || weight < 0 {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: bad weight %q for %q", errors.ErrInvalidConfig, w, value),
				"rngen", "survey", "expected weights")
		}
		expected[value] = weight
	}
	return expected, nil
}
