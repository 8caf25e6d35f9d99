package dpmm

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// sampleLogWeights draws one index from the categorical distribution whose
// unnormalized log-probabilities are lnWeights. The weights are shifted by
// their maximum before exponentiating; exponentiating raw log-weights
// under/overflows for all but the tamest inputs. lnWeights must be non-empty.
func sampleLogWeights(lnWeights []float64, rng *rand.Rand) int {
	maxw := floats.Max(lnWeights)
	ws := make([]float64, len(lnWeights))
	for i, lw := range lnWeights {
		ws[i] = math.Exp(lw - maxw)
	}
	floats.CumSum(ws, ws)

	u := rng.Float64() * ws[len(ws)-1]
	for i, c := range ws {
		if u < c {
			return i
		}
	}
	// u == total, possible only through floating-point rounding.
	return len(ws) - 1
}
