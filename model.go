package dpmm

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Model is a Dirichlet process mixture model over observations of type X,
// fit by collapsed Gibbs sampling. It keeps three parallel sequences in
// lockstep: the data in their current order, each datum's original
// submission position, and the cluster assignment. Gibbs steps shuffle the
// sequences; Run restores submission order before returning.
//
// A Model is not safe for concurrent use. The sampler is intrinsically
// serial: each step's outcome changes the distribution the next step draws
// from.
type Model[X any] struct {
	// xs holds the data in their current, possibly shuffled, order.
	xs []X
	// ixs tracks each datum's original submission position; it is a
	// permutation of 0..n at all times.
	ixs []int
	// alpha is the CRP concentration.
	alpha float64
	// partition holds the current assignment and per-cluster counts.
	partition *Partition
	// prior is shared read-only by the model and every component.
	prior ConjugatePrior[X]
	// components is index-aligned with cluster ids: components[j] summarizes
	// exactly the data currently assigned to cluster j.
	components []*component[X]
	// rng is the single generator behind every draw the sampler makes.
	rng *rand.Rand
}

// New draws a model from the prior: an initial partition from CRP(alpha, n)
// and one empty component per initial cluster, then replays the drawn
// assignment by observing each datum into its cluster's component.
// Returns an error for empty data, a nil or malformed prior, or an invalid
// Config.
func New[X any](data []X, prior ConjugatePrior[X], cfg Config) (*Model[X], error) {
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errEmptyData
	}
	if prior == nil {
		return nil, errNilPrior
	}
	if err := prior.Validate(); err != nil {
		return nil, err
	}

	n := len(data)
	xs := make([]X, n)
	copy(xs, data)
	ixs := make([]int, n)
	for i := range ixs {
		ixs[i] = i
	}

	p := drawPartition(cfg.Alpha, n, cfg.Rand)
	components := make([]*component[X], p.K())
	for j := range components {
		components[j] = newComponent(prior)
	}
	for i, zi := range p.Z() {
		components[zi].observe(xs[i])
	}

	return &Model[X]{
		xs:         xs,
		ixs:        ixs,
		alpha:      cfg.Alpha,
		partition:  p,
		prior:      prior,
		components: components,
		rng:        cfg.Rand,
	}, nil
}

// N returns the number of observations.
func (m *Model[X]) N() int { return len(m.xs) }

// K returns the current number of clusters.
func (m *Model[X]) K() int { return m.partition.K() }

// Alpha returns the concentration parameter the model was built with.
func (m *Model[X]) Alpha() float64 { return m.alpha }

// Assignments returns a copy of the assignment vector. After Run (which
// ends with a sort) entry i is the cluster id of the i-th datum as
// originally submitted. Ids are positional labels, not comparable across
// runs.
func (m *Model[X]) Assignments() []int {
	z := make([]int, len(m.partition.Z()))
	copy(z, m.partition.Z())
	return z
}

// Counts returns a copy of the per-cluster data counts.
func (m *Model[X]) Counts() []int {
	c := make([]int, len(m.partition.Counts()))
	copy(c, m.partition.Counts())
	return c
}

// remove detaches the datum at position pos from all three sequences and
// from its component, returning the datum and its original index. If the
// datum was its cluster's only member, the cluster and its component are
// evicted together.
func (m *Model[X]) remove(pos int) (X, int) {
	x := m.xs[pos]
	ix := m.ixs[pos]
	zi := m.partition.Z()[pos]

	// Singleton status must come from pre-removal counts; after Remove the
	// cluster slot may already be gone.
	isSingleton := m.partition.Counts()[zi] == 1

	m.xs = append(m.xs[:pos], m.xs[pos+1:]...)
	m.ixs = append(m.ixs[:pos], m.ixs[pos+1:]...)
	m.partition.Remove(pos)

	if isSingleton {
		// The component dies with its only datum. Eviction relabeled higher
		// cluster ids down by one, so drop the aligned component slot too.
		m.components = append(m.components[:zi], m.components[zi+1:]...)
	} else {
		m.components[zi].forget(x)
		if m.components[zi].n() == 0 {
			panic(fmt.Sprintf("dpmm: component %d empty after forgetting datum %d: singleton bookkeeping mismatch", zi, ix))
		}
	}
	return x, ix
}

// insert assigns x (originally submitted at position ix) to a cluster drawn
// from the collapsed conditional: existing cluster j with log-weight
// ln(count_j) + lnPP_j(x), a new cluster with log-weight ln(alpha) plus the
// prior predictive. The datum is appended to the end of all three sequences.
func (m *Model[X]) insert(x X, ix int) {
	k := m.partition.K()
	lnWeights := make([]float64, k+1)
	for j, cj := range m.components {
		lnWeights[j] = math.Log(float64(m.partition.Counts()[j])) + cj.lnPP(x)
	}

	// Provisional fresh component: its empty statistics give the prior
	// predictive of x. Committed only if the draw lands on "new".
	ctmp := newComponent(m.prior)
	lnWeights[k] = math.Log(m.alpha) + ctmp.lnPP(x)

	zi := sampleLogWeights(lnWeights, m.rng)
	if zi == k {
		m.components = append(m.components, ctmp)
	}
	m.components[zi].observe(x)
	m.xs = append(m.xs, x)
	m.ixs = append(m.ixs, ix)
	m.partition.Append(zi)
}

// step is the collapsed Gibbs update for one datum: remove it, then
// reinsert it under the predictive distribution computed without it.
// Removing first keeps the datum from inflating its own cluster's
// predictive and biasing its reassignment.
func (m *Model[X]) step(pos int) {
	x, ix := m.remove(pos)
	m.insert(x, ix)
}

// scan applies step once to every position, in uniformly random order. Each
// position indexes the live layout at the moment its step runs; the
// permutation stays valid because every step restores the sequence length
// before the next one starts.
func (m *Model[X]) scan() {
	for _, pos := range m.rng.Perm(m.N()) {
		m.step(pos)
	}
}

// Run performs iters full Gibbs sweeps and then restores the original
// submission order, so Assignments lines up with the data as passed to New.
func (m *Model[X]) Run(iters int) {
	for i := 0; i < iters; i++ {
		m.scan()
	}
	m.sort()
}

// sort restores the original submission order by following the cycles of
// the tracking permutation, swapping data, tracking, and assignment entries
// together. At most n swaps in total; a second call is a no-op because the
// permutation is already the identity.
func (m *Model[X]) sort() {
	z := m.partition.Z()
	for i := range m.ixs {
		for m.ixs[i] != i {
			j := m.ixs[i]
			m.ixs[i], m.ixs[j] = m.ixs[j], m.ixs[i]
			m.xs[i], m.xs[j] = m.xs[j], m.xs[i]
			z[i], z[j] = z[j], z[i]
		}
	}
}

// LogPredictive returns the marginal predictive log-probability of a new
// observation under the current state: the CRP-weighted mixture of every
// component's posterior predictive plus the new-cluster term. This is the
// quantity an outer driver (a forward model, a nested sampler) consumes
// from a fitted model.
func (m *Model[X]) LogPredictive(x X) float64 {
	denom := math.Log(float64(m.N()) + m.alpha)
	terms := make([]float64, 0, m.partition.K()+1)
	for j, cj := range m.components {
		terms = append(terms, math.Log(float64(m.partition.Counts()[j]))-denom+cj.lnPP(x))
	}
	fresh := newComponent(m.prior)
	terms = append(terms, math.Log(m.alpha)-denom+fresh.lnPP(x))
	return floats.LogSumExp(terms)
}

// ClusterLogPredictive returns the posterior predictive log-probability of
// x under live cluster j.
func (m *Model[X]) ClusterLogPredictive(j int, x X) float64 {
	if j < 0 || j >= len(m.components) {
		panic(fmt.Sprintf("dpmm: cluster %d out of range [0,%d)", j, len(m.components)))
	}
	return m.components[j].lnPP(x)
}
