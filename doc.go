// Package dpmm implements a Dirichlet Process Mixture Model (DPMM) fit by
// collapsed Gibbs sampling.
//
// A DPMM clusters data without fixing the number of clusters in advance: a
// Chinese Restaurant Process prior over partitions trades off between
// joining large existing clusters and opening new ones, and conjugate
// prior/likelihood pairs let component parameters be integrated out
// analytically, so the sampler only ever draws discrete cluster
// assignments.
//
// Basic usage:
//
//	prior := dpmm.NormalInvGamma{M: 0, V: 1, A: 1, B: 1}
//	cfg := dpmm.DefaultConfig()
//	result, err := dpmm.Fit(data, prior, cfg)
//	// result.Assignments[i] is the cluster ID for datum i
//	// result.K is the inferred number of clusters
//
// The sampler is generic over the observation type: any type works as long
// as a [ConjugatePrior] for its likelihood family is supplied. The package
// ships [NormalInvGamma] for scalar Gaussian data and [GammaPoisson] for
// counts.
//
// # Reproducibility
//
// Every random draw goes through the single generator in Config.Rand, so a
// seeded generator gives bit-identical fits. Cluster IDs are positional
// labels: they shift when clusters die and are not comparable across runs.
//
// # Nested sampling
//
// The package also provides a small nested sampler ([NestedSample]) whose
// particle archive tracks prior-volume weights and an evidence estimate. It
// is a separate consumer-side tool: its objective typically wraps a fitted
// model's [Model.LogPredictive].
package dpmm
