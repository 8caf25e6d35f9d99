package dpmm

// SuffStat accumulates the sufficient statistics of one mixture component.
// Implementations are paired with a ConjugatePrior over the same observation
// type. Observe and Forget must be exact inverses: forgetting every observed
// value returns the statistics to their empty state.
type SuffStat[X any] interface {
	// Observe folds x into the statistics.
	Observe(x X)

	// Forget removes x's contribution. Forgetting a value that was never
	// observed, or forgetting from empty statistics, corrupts the
	// statistics; callers must not do it.
	Forget(x X)

	// N returns the number of observations currently summarized.
	N() int
}

// ConjugatePrior is a conjugate prior over the parameters of a likelihood
// family. Conjugacy means the posterior predictive probability of a new
// observation is available in closed form from the sufficient statistics
// alone, so component parameters are marginalized away rather than sampled.
//
// Implementations must be immutable: one prior value is shared read-only by
// a Model and every component it creates.
type ConjugatePrior[X any] interface {
	// NewSuffStat returns empty sufficient statistics for a fresh component.
	NewSuffStat() SuffStat[X]

	// LogPosteriorPredictive returns ln p(x | stats), the predictive
	// log-probability of x under the posterior implied by the prior and the
	// observations summarized in stats. With empty stats this is the prior
	// predictive. Must not mutate stats.
	LogPosteriorPredictive(x X, stats SuffStat[X]) float64

	// Validate reports whether the hyperparameters are well formed.
	Validate() error
}
