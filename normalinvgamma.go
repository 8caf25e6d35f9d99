package dpmm

import (
	"fmt"
	"math"
)

// NormalInvGamma is a normal-inverse-gamma conjugate prior for scalar
// Gaussian observations with unknown mean and variance: the variance
// follows InvGamma(A, B) and, given variance s2, the mean follows
// Normal(M, V*s2). The posterior predictive is a Student-t, computed here
// as a ratio of log marginal likelihoods so no distribution-specific
// density code is needed.
type NormalInvGamma struct {
	// M is the prior mean location.
	M float64
	// V scales the prior variance of the mean. Must be > 0.
	V float64
	// A is the inverse-gamma shape. Must be > 0.
	A float64
	// B is the inverse-gamma scale. Must be > 0.
	B float64
}

// gaussStats are the sufficient statistics of scalar observations under a
// Gaussian likelihood.
type gaussStats struct {
	n     int
	sum   float64
	sumSq float64
}

func (s *gaussStats) Observe(x float64) {
	s.n++
	s.sum += x
	s.sumSq += x * x
}

func (s *gaussStats) Forget(x float64) {
	s.n--
	s.sum -= x
	s.sumSq -= x * x
}

func (s *gaussStats) N() int { return s.n }

// NewSuffStat returns empty Gaussian sufficient statistics.
func (p NormalInvGamma) NewSuffStat() SuffStat[float64] { return &gaussStats{} }

// Validate checks the hyperparameters.
func (p NormalInvGamma) Validate() error {
	if math.IsNaN(p.M) || math.IsInf(p.M, 0) {
		return fmt.Errorf("dpmm: NormalInvGamma M must be finite, got %f", p.M)
	}
	if !(p.V > 0) {
		return fmt.Errorf("dpmm: NormalInvGamma V must be > 0, got %f", p.V)
	}
	if !(p.A > 0) {
		return fmt.Errorf("dpmm: NormalInvGamma A must be > 0, got %f", p.A)
	}
	if !(p.B > 0) {
		return fmt.Errorf("dpmm: NormalInvGamma B must be > 0, got %f", p.B)
	}
	return nil
}

// lnZ is the part of the log normalizer of the posterior implied by n
// observations with the given sum and sum of squares that varies with the
// data. Terms constant across n cancel in the predictive ratio and are
// dropped.
func (p NormalInvGamma) lnZ(n int, sum, sumSq float64) float64 {
	nf := float64(n)
	vn := 1 / (1/p.V + nf)
	mn := vn * (p.M/p.V + sum)
	an := p.A + nf/2
	bn := p.B + 0.5*(p.M*p.M/p.V+sumSq-mn*mn/vn)
	lg, _ := math.Lgamma(an)
	return 0.5*math.Log(vn) + lg - an*math.Log(bn)
}

// LogPosteriorPredictive returns the Student-t predictive log-density of x,
// evaluated as ln m(stats + x) - ln m(stats).
func (p NormalInvGamma) LogPosteriorPredictive(x float64, stats SuffStat[float64]) float64 {
	s := stats.(*gaussStats)
	return p.lnZ(s.n+1, s.sum+x, s.sumSq+x*x) - p.lnZ(s.n, s.sum, s.sumSq) - 0.5*math.Log(2*math.Pi)
}
