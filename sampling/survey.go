// Package sampling surveys the output distribution of a configuration by
// running it many times under per-sample seeds.
package sampling

import (
	"context"
	"maps"
	"math"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/middleware"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/stream"
)

// Options controls a survey.
type Options struct {
	// Samples is the number of generations to run.
	Samples int
	// BaseSeed derives the per-sample seeds.
	BaseSeed int64
	// Workers bounds concurrency; zero uses GOMAXPROCS.
	Workers int
	// Expected optionally maps values to relative weights for a
	// chi-square goodness-of-fit test.
	Expected map[string]float64
}

// Frequency is one row of the frequency table.
type Frequency struct {
	Value string  `json:"value"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// LengthStats summarizes result lengths in characters.
type LengthStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// GoodnessOfFit is the outcome of a chi-square test against expected weights.
type GoodnessOfFit struct {
	Statistic        float64 `json:"statistic"`
	DegreesOfFreedom float64 `json:"degrees_of_freedom"`
	PValue           float64 `json:"p_value"`
	// Unexpected counts samples whose value had no expected weight.
	Unexpected int `json:"unexpected"`
}

// Report is the survey result.
type Report struct {
	Samples      int            `json:"samples"`
	Successes    int            `json:"successes"`
	Failures     int            `json:"failures"`
	FailureCodes map[string]int `json:"failure_codes,omitempty"`
	Distinct     int            `json:"distinct"`
	Entropy      float64        `json:"entropy_bits"`
	Frequencies  []Frequency    `json:"frequencies"`
	Length       *LengthStats   `json:"length,omitempty"`
	Fit          *GoodnessOfFit `json:"fit,omitempty"`
}

// SampleSeed is the seed used for sample i.
func SampleSeed(base int64, i int) int64 {
	return stream.Seed(base, []string{"survey", strconv.Itoa(i)})
}

// Survey runs config opts.Samples times through mw, each run with its own
// seed, and summarizes the results.
func Survey(ctx context.Context, mw *middleware.Middleware, config map[string]any, opts Options) (*Report, error) {
	if opts.Samples <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "sampling", "Survey", "sample count check")
	}

	configs := make([]map[string]any, opts.Samples)
	for i := range configs {
		cfg := maps.Clone(config)
		cfg["seed"] = SampleSeed(opts.BaseSeed, i)
		configs[i] = cfg
	}

	results, err := mw.GenerateBatch(ctx, configs, opts.Workers)
	if err != nil {
		return nil, errors.Wrap(err, "sampling", "Survey", "batch generation")
	}

	report := &Report{Samples: opts.Samples}
	counts := map[string]int{}
	var lengths []float64
	for _, r := range results {
		if r.Err != nil {
			report.Failures++
			if report.FailureCodes == nil {
				report.FailureCodes = map[string]int{}
			}
			report.FailureCodes[string(r.Err.Code)]++
			continue
		}
		report.Successes++
		counts[r.Value]++
		lengths = append(lengths, float64(utf8.RuneCountInString(r.Value)))
	}

	report.Distinct = len(counts)
	report.Frequencies = frequencies(counts, report.Successes)
	report.Entropy = entropy(report.Frequencies)

	if len(lengths) > 0 {
		report.Length, err = lengthStats(lengths)
		if err != nil {
			return nil, errors.Wrap(err, "sampling", "Survey", "length statistics")
		}
	}

	if len(opts.Expected) > 0 {
		report.Fit, err = ChiSquare(counts, opts.Expected)
		if err != nil {
			return nil, err
		}
	}
	return report, nil
}

func frequencies(counts map[string]int, total int) []Frequency {
	rows := make([]Frequency, 0, len(counts))
	for value, count := range counts {
		rows = append(rows, Frequency{Value: value, Count: count, Share: float64(count) / float64(total)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Value < rows[j].Value
	})
	return rows
}

// entropy is the Shannon entropy of the observed distribution in bits.
func entropy(rows []Frequency) float64 {
	h := 0.0
	for _, row := range rows {
		if row.Share > 0 {
			h -= row.Share * math.Log2(row.Share)
		}
	}
	return h
}

func lengthStats(data []float64) (*LengthStats, error) {
	var ls LengthStats
	var err error
	if ls.Mean, err = stats.Mean(data); err != nil {
		return nil, err
	}
	if ls.StdDev, err = stats.StandardDeviation(data); err != nil {
		return nil, err
	}
	if ls.Median, err = stats.Median(data); err != nil {
		return nil, err
	}
	if ls.Min, err = stats.Min(data); err != nil {
		return nil, err
	}
	if ls.Max, err = stats.Max(data); err != nil {
		return nil, err
	}
	return &ls, nil
}

// ChiSquare tests observed counts against expected relative weights.
// Values without an expected weight are counted in Unexpected and left out
// of the statistic.
func ChiSquare(observed map[string]int, expected map[string]float64) (*GoodnessOfFit, error) {
	weightSum := 0.0
	for _, w := range expected {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, errors.WrapInvalid(errors.ErrInvalidData, "sampling", "ChiSquare", "expected weight check")
		}
		weightSum += w
	}
	if weightSum <= 0 || len(expected) < 2 {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "sampling", "ChiSquare", "expected distribution check")
	}

	fit := &GoodnessOfFit{}
	n := 0
	for value, count := range observed {
		if _, ok := expected[value]; ok {
			n += count
		} else {
			fit.Unexpected += count
		}
	}
	if n == 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "sampling", "ChiSquare", "observed sample check")
	}

	categories := 0
	for value, w := range expected {
		e := float64(n) * w / weightSum
		if e == 0 {
			continue
		}
		categories++
		diff := float64(observed[value]) - e
		fit.Statistic += diff * diff / e
	}
	fit.DegreesOfFreedom = float64(categories - 1)
	if fit.DegreesOfFreedom < 1 {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "sampling", "ChiSquare", "degrees of freedom check")
	}

	chiDist := distuv.ChiSquared{K: fit.DegreesOfFreedom}
	fit.PValue = chiDist.Survival(fit.Statistic)
	return fit, nil
}
