package dpmm

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	errEmptyData = errors.New("dpmm: empty dataset")
	errNilPrior  = errors.New("dpmm: nil prior")
)

// Config controls DPMM fitting.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Alpha is the concentration parameter of the Chinese Restaurant
	// Process prior on partitions. Larger values favor more clusters.
	// Must be > 0; the zero value means "unset" and takes the default.
	// Default: 1.0.
	Alpha float64

	// Iterations is the number of full Gibbs sweeps Fit performs. Each
	// sweep reassigns every datum once, in random order. Must be >= 1.
	// Default: 200.
	Iterations int

	// Rand is the generator behind every draw the sampler makes: the
	// initial partition, per-sweep visit order, and each categorical
	// assignment draw. Supplying a seeded generator makes fits
	// reproducible. Default: a fresh randomly seeded generator.
	Rand *rand.Rand
}

// Result contains the output of a DPMM fit.
type Result struct {
	// Assignments is the cluster id of each datum, in the order the data
	// were submitted. Ids are arbitrary positional labels in [0, K); they
	// are not comparable across separate runs or re-fits.
	Assignments []int

	// K is the number of clusters in the final state.
	K int

	// Counts is the number of data assigned to each cluster.
	Counts []int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Alpha:      1.0,
		Iterations: 200,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Alpha == 0 {
		cfg.Alpha = 1.0
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = 200
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive
// error if not.
func validateConfig(cfg Config) error {
	if cfg.Alpha <= 0 {
		return fmt.Errorf("dpmm: Alpha must be > 0, got %f", cfg.Alpha)
	}
	if cfg.Iterations < 1 {
		return fmt.Errorf("dpmm: Iterations must be >= 1, got %d", cfg.Iterations)
	}
	return nil
}

// Fit draws a model from the prior and runs the collapsed Gibbs sampler for
// cfg.Iterations sweeps. The result's assignments are in original
// submission order. For incremental control (running extra sweeps, reading
// predictive probabilities) use [New] and [Model.Run] directly.
func Fit[X any](data []X, prior ConjugatePrior[X], cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	m, err := New(data, prior, cfg)
	if err != nil {
		return nil, err
	}
	m.Run(cfg.Iterations)
	return &Result{
		Assignments: m.Assignments(),
		K:           m.K(),
		Counts:      m.Counts(),
	}, nil
}
