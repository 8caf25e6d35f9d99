// Command dpmm-demo fits a DPMM to 100 points drawn from two well-separated
// Gaussians and prints the recovered assignments, half by half. With the
// default configuration the two halves should come out as two clusters,
// subject to a few boundary misclassifications.
package main

import (
	"fmt"
	"math/rand/v2"
	"os"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/TrevorS/dpmm"
)

func main() {
	rng := rand.New(rand.NewPCG(1, 2))

	lo := distuv.Normal{Mu: -3, Sigma: 1, Src: rng}
	hi := distuv.Normal{Mu: 3, Sigma: 1, Src: rng}
	data := make([]float64, 0, 100)
	for i := 0; i < 50; i++ {
		data = append(data, lo.Rand())
	}
	for i := 0; i < 50; i++ {
		data = append(data, hi.Rand())
	}

	// Hyperparameters are more or less arbitrary; only the scale matters.
	prior := dpmm.NormalInvGamma{M: 0, V: 1, A: 1, B: 1}

	cfg := dpmm.DefaultConfig()
	cfg.Rand = rng
	result, err := dpmm.Fit(data, prior, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(result.Assignments[:50])
	fmt.Println(result.Assignments[50:])
	fmt.Printf("k = %d, counts = %v\n", result.K, result.Counts)
}
