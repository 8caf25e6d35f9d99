package dpmm

import (
	"fmt"
	"math"
)

// GammaPoisson is a gamma conjugate prior on the rate of Poisson count
// observations: rate ~ Gamma(Shape, Rate). The posterior predictive is a
// negative binomial.
type GammaPoisson struct {
	// Shape is the gamma shape parameter. Must be > 0.
	Shape float64
	// Rate is the gamma rate parameter. Must be > 0.
	Rate float64
}

// poissonStats are the sufficient statistics of count observations under a
// Poisson likelihood.
type poissonStats struct {
	n   int
	sum int
}

func (s *poissonStats) Observe(x int) {
	s.n++
	s.sum += x
}

func (s *poissonStats) Forget(x int) {
	s.n--
	s.sum -= x
}

func (s *poissonStats) N() int { return s.n }

// NewSuffStat returns empty Poisson sufficient statistics.
func (p GammaPoisson) NewSuffStat() SuffStat[int] { return &poissonStats{} }

// Validate checks the hyperparameters.
func (p GammaPoisson) Validate() error {
	if !(p.Shape > 0) {
		return fmt.Errorf("dpmm: GammaPoisson Shape must be > 0, got %f", p.Shape)
	}
	if !(p.Rate > 0) {
		return fmt.Errorf("dpmm: GammaPoisson Rate must be > 0, got %f", p.Rate)
	}
	return nil
}

// LogPosteriorPredictive returns the negative-binomial predictive log-mass
// of x under the posterior Gamma(Shape + sum, Rate + n). Negative counts
// have probability zero.
func (p GammaPoisson) LogPosteriorPredictive(x int, stats SuffStat[int]) float64 {
	if x < 0 {
		return math.Inf(-1)
	}
	s := stats.(*poissonStats)
	an := p.Shape + float64(s.sum)
	bn := p.Rate + float64(s.n)
	xf := float64(x)
	lgAx, _ := math.Lgamma(an + xf)
	lgA, _ := math.Lgamma(an)
	lgX, _ := math.Lgamma(xf + 1)
	return lgAx - lgA - lgX + an*math.Log(bn/(bn+1)) - xf*math.Log(bn+1)
}
