package dpmm

// component pairs the shared conjugate prior with the sufficient statistics
// of one live cluster. The prior is shared read-only across every component
// of a model; only the statistics are owned.
type component[X any] struct {
	prior ConjugatePrior[X]
	stats SuffStat[X]
}

// newComponent creates a component with empty statistics. Its lnPP is the
// prior predictive until data are observed.
func newComponent[X any](prior ConjugatePrior[X]) *component[X] {
	return &component[X]{prior: prior, stats: prior.NewSuffStat()}
}

// observe folds x into the component's statistics.
func (c *component[X]) observe(x X) {
	c.stats.Observe(x)
}

// forget removes x's contribution. Forgetting from an empty component means
// the caller's counts and components are out of sync, which is unrecoverable.
func (c *component[X]) forget(x X) {
	if c.stats.N() == 0 {
		panic("dpmm: forget on empty component: counts/components out of sync")
	}
	c.stats.Forget(x)
}

// lnPP returns the posterior predictive log-probability of x under the
// component's current statistics.
func (c *component[X]) lnPP(x X) float64 {
	return c.prior.LogPosteriorPredictive(x, c.stats)
}

// n returns the number of observations assigned to the component.
func (c *component[X]) n() int {
	return c.stats.N()
}
