package dpmm

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Objective scores a parameter vector; higher is better. When nested
// sampling drives hyperparameter search over this package's models, the
// natural objective sums a fitted [Model.LogPredictive] over held-out data.
type Objective func(theta []float64) float64

// Particle is one member of a nested-sampling population.
type Particle struct {
	// LogLik is the objective value at Theta.
	LogLik float64
	// Theta is the parameter vector.
	Theta []float64
	// Weight is the prior-volume weight assigned when the particle is
	// retired to the dead set.
	Weight float64
	// Iter is the iteration at which the particle was retired.
	Iter int
}

// Archive holds the live and dead particle populations of a nested-sampling
// run. The live set is kept sorted ascending by LogLik, so the worst
// particle is always at the front.
type Archive struct {
	live []Particle
	dead []Particle
}

// Len returns the number of live particles.
func (a *Archive) Len() int { return len(a.live) }

// Live returns the live particles, worst first. The slice is owned by the
// archive.
func (a *Archive) Live() []Particle { return a.live }

// Dead returns the retired particles in retirement order. The slice is
// owned by the archive.
func (a *Archive) Dead() []Particle { return a.dead }

// AddLive inserts p into the live set, keeping it sorted ascending by
// LogLik.
func (a *Archive) AddLive(p Particle) {
	pos := sort.Search(len(a.live), func(i int) bool {
		return a.live[i].LogLik >= p.LogLik
	})
	a.live = append(a.live, Particle{})
	copy(a.live[pos+1:], a.live[pos:])
	a.live[pos] = p
}

// UpdateWorst stamps the current worst live particle with its prior-volume
// weight and retirement iteration.
func (a *Archive) UpdateWorst(w float64, iter int) {
	if len(a.live) == 0 {
		panic("dpmm: UpdateWorst on empty live set")
	}
	a.live[0].Weight = w
	a.live[0].Iter = iter
}

// PopWorst moves the worst live particle to the dead set and returns it.
func (a *Archive) PopWorst() Particle {
	if len(a.live) == 0 {
		panic("dpmm: PopWorst on empty live set")
	}
	worst := a.live[0]
	a.live = a.live[1:]
	a.dead = append(a.dead, worst)
	return worst
}

// LogEvidence estimates the log of the Bayesian evidence from the dead set:
// logsumexp over retired particles of LogLik + ln(Weight). Returns -Inf
// when nothing has been retired.
func (a *Archive) LogEvidence() float64 {
	if len(a.dead) == 0 {
		return math.Inf(-1)
	}
	terms := make([]float64, len(a.dead))
	for i, p := range a.dead {
		terms[i] = p.LogLik + math.Log(p.Weight)
	}
	return floats.LogSumExp(terms)
}

// NestedConfig controls NestedSample.
type NestedConfig struct {
	// Particles is the live population size. Must be >= 2. Default: 100.
	Particles int

	// Samples is the number of nested-sampling iterations; each retires one
	// particle. Must be >= 1. Default: 1000.
	Samples int

	// MaxDraws bounds the rejection draws used to replace a retired
	// particle before the run stops early. Must be >= 1. Default: 1000.
	MaxDraws int

	// Rand is the generator behind every draw. Default: a fresh randomly
	// seeded generator.
	Rand *rand.Rand
}

func applyNestedDefaults(cfg *NestedConfig) {
	if cfg.Particles == 0 {
		cfg.Particles = 100
	}
	if cfg.Samples == 0 {
		cfg.Samples = 1000
	}
	if cfg.MaxDraws == 0 {
		cfg.MaxDraws = 1000
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
}

func validateNestedConfig(cfg NestedConfig, objective Objective, mu, sd []float64) error {
	if objective == nil {
		return fmt.Errorf("dpmm: nil objective")
	}
	if len(mu) == 0 {
		return fmt.Errorf("dpmm: empty prior means")
	}
	if len(mu) != len(sd) {
		return fmt.Errorf("dpmm: prior means and standard deviations differ in length: %d vs %d", len(mu), len(sd))
	}
	for d, s := range sd {
		if !(s > 0) {
			return fmt.Errorf("dpmm: prior standard deviation %d must be > 0, got %f", d, s)
		}
	}
	if cfg.Particles < 2 {
		return fmt.Errorf("dpmm: Particles must be >= 2, got %d", cfg.Particles)
	}
	if cfg.Samples < 1 {
		return fmt.Errorf("dpmm: Samples must be >= 1, got %d", cfg.Samples)
	}
	if cfg.MaxDraws < 1 {
		return fmt.Errorf("dpmm: MaxDraws must be >= 1, got %d", cfg.MaxDraws)
	}
	return nil
}

// NestedSample runs a basic nested sampler over the objective. The live
// population is drawn from independent Normal(mu[d], sd[d]) priors over the
// parameter vector. Each iteration shrinks the remaining prior volume by a
// Beta(1, Particles) factor, retires the worst live particle with the
// volume it accounts for, and replaces it with a prior draw constrained to
// exceed the retired likelihood. The run stops early if MaxDraws
// constrained draws all fail, which signals the prior can no longer reach
// the shrinking likelihood shell.
func NestedSample(objective Objective, mu, sd []float64, cfg NestedConfig) (*Archive, error) {
	applyNestedDefaults(&cfg)
	if err := validateNestedConfig(cfg, objective, mu, sd); err != nil {
		return nil, err
	}
	rng := cfg.Rand

	priors := make([]distuv.Normal, len(mu))
	for d := range mu {
		priors[d] = distuv.Normal{Mu: mu[d], Sigma: sd[d], Src: rng}
	}
	drawTheta := func() []float64 {
		theta := make([]float64, len(priors))
		for d := range priors {
			theta[d] = priors[d].Rand()
		}
		return theta
	}

	arch := &Archive{live: make([]Particle, 0, cfg.Particles)}
	for i := 0; i < cfg.Particles; i++ {
		theta := drawTheta()
		arch.AddLive(Particle{LogLik: objective(theta), Theta: theta})
	}

	// The shrinkage factor is the largest of Particles uniforms, i.e.
	// Beta(Particles, 1), with E[ln t] = -1/Particles. Beta(1, Particles)
	// would collapse the volume by ~Particles every iteration and underflow
	// x to zero within a couple hundred iterations.
	shrink := distuv.Beta{Alpha: float64(cfg.Particles), Beta: 1, Src: rng}

	// x tracks the remaining prior volume; each retired particle takes the
	// slab between the old and new volume as its weight.
	x := 1.0
	for i := 0; i < cfg.Samples; i++ {
		t := shrink.Rand()
		xNext := t * x
		arch.UpdateWorst(x-xNext, i)
		x = xNext

		worst := arch.PopWorst()
		repl, ok := drawAbove(objective, drawTheta, worst.LogLik, cfg.MaxDraws)
		if !ok {
			break
		}
		arch.AddLive(repl)
	}
	return arch, nil
}

// drawAbove rejection-samples the prior for a particle whose objective
// exceeds floor, giving up after maxDraws attempts.
func drawAbove(objective Objective, drawTheta func() []float64, floor float64, maxDraws int) (Particle, bool) {
	for i := 0; i < maxDraws; i++ {
		theta := drawTheta()
		if ll := objective(theta); ll > floor {
			return Particle{LogLik: ll, Theta: theta}, true
		}
	}
	return Particle{}, false
}
