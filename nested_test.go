package dpmm

import (
	"math"
	"testing"
)

func setUpTestArchive() *Archive {
	arch := &Archive{}
	eps := 0.0
	w := 0.1
	for i := 0; i < 3; i++ {
		arch.AddLive(Particle{
			LogLik: eps,
			Theta:  []float64{float64(i), float64(i)},
			Weight: w,
			Iter:   i,
		})
		eps += 1.0
		w *= 0.5
	}
	return arch
}

func TestArchive_PopWorst(t *testing.T) {
	arch := setUpTestArchive()
	if arch.Live()[0].LogLik != 0.0 {
		t.Fatalf("worst LogLik = %g, want 0", arch.Live()[0].LogLik)
	}
	if arch.Len() != 3 || len(arch.Dead()) != 0 {
		t.Fatalf("live/dead = %d/%d, want 3/0", arch.Len(), len(arch.Dead()))
	}

	arch.PopWorst()
	if arch.Live()[0].LogLik != 1.0 {
		t.Errorf("worst LogLik = %g after pop, want 1", arch.Live()[0].LogLik)
	}
	if arch.Dead()[0].LogLik != 0.0 {
		t.Errorf("dead[0].LogLik = %g, want 0", arch.Dead()[0].LogLik)
	}
	if arch.Len() != 2 || len(arch.Dead()) != 1 {
		t.Errorf("live/dead = %d/%d, want 2/1", arch.Len(), len(arch.Dead()))
	}

	arch.PopWorst()
	if arch.Live()[0].LogLik != 2.0 {
		t.Errorf("worst LogLik = %g after second pop, want 2", arch.Live()[0].LogLik)
	}
	if arch.Dead()[1].LogLik != 1.0 {
		t.Errorf("dead[1].LogLik = %g, want 1", arch.Dead()[1].LogLik)
	}
}

func TestArchive_UpdateWorst(t *testing.T) {
	arch := setUpTestArchive()
	arch.UpdateWorst(5.0, 7)
	if arch.Live()[0].Iter != 7 {
		t.Errorf("worst Iter = %d, want 7", arch.Live()[0].Iter)
	}
	if arch.Live()[0].Weight != 5.0 {
		t.Errorf("worst Weight = %g, want 5", arch.Live()[0].Weight)
	}
}

func TestArchive_AddLive(t *testing.T) {
	arch := setUpTestArchive()

	arch.AddLive(Particle{LogLik: 0.5, Theta: []float64{-1, -1}, Weight: 0.000001})
	if arch.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", arch.Len())
	}
	if arch.Live()[1].LogLik != 0.5 {
		t.Errorf("live[1].LogLik = %g, want 0.5", arch.Live()[1].LogLik)
	}
	if arch.Live()[1].Weight != 0.000001 {
		t.Errorf("live[1].Weight = %g, want 0.000001", arch.Live()[1].Weight)
	}

	arch.AddLive(Particle{LogLik: 0.4, Theta: []float64{-1, -1}, Weight: 0.111})
	if arch.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", arch.Len())
	}
	if arch.Live()[1].LogLik != 0.4 {
		t.Errorf("live[1].LogLik = %g, want 0.4", arch.Live()[1].LogLik)
	}
}

func TestArchive_SortedInvariant(t *testing.T) {
	arch := &Archive{}
	rng := newTestRNG(33)
	for i := 0; i < 100; i++ {
		arch.AddLive(Particle{LogLik: rng.NormFloat64() * 10})
	}
	live := arch.Live()
	for i := 1; i < len(live); i++ {
		if live[i].LogLik < live[i-1].LogLik {
			t.Fatalf("live set unsorted at %d: %g < %g", i, live[i].LogLik, live[i-1].LogLik)
		}
	}
}

func TestNestedSample_Quadratic(t *testing.T) {
	// Objective peaks at theta = (1, -2); higher is better.
	objective := func(theta []float64) float64 {
		d0 := theta[0] - 1
		d1 := theta[1] + 2
		return -(d0*d0 + d1*d1)
	}

	cfg := NestedConfig{Particles: 50, Samples: 200, Rand: newTestRNG(34)}
	arch, err := NestedSample(objective, []float64{0, 0}, []float64{3, 3}, cfg)
	if err != nil {
		t.Fatalf("NestedSample: %v", err)
	}

	if len(arch.Dead()) == 0 {
		t.Fatal("no particles retired")
	}

	// Dead particles are retired worst-first, so their likelihoods ascend.
	dead := arch.Dead()
	for i := 1; i < len(dead); i++ {
		if dead[i].LogLik < dead[i-1].LogLik {
			t.Fatalf("dead set not ascending at %d", i)
		}
	}

	// Volume weights are positive and sum below the unit prior volume.
	totalW := 0.0
	for _, p := range dead {
		if p.Weight <= 0 {
			t.Fatalf("retired particle has weight %g", p.Weight)
		}
		totalW += p.Weight
	}
	if totalW >= 1 {
		t.Errorf("retired weights sum to %g, want < 1", totalW)
	}

	// The volume shrinks by e^{-1/Particles} per iteration in expectation,
	// so after 200 iterations with 50 particles the remaining volume is
	// around e^-4 and the last weight near (1/50)e^-4. A shrinkage factor
	// drawn from the wrong side of the Beta would underflow the tracked
	// volume to exactly zero long before the run ends.
	if last := dead[len(dead)-1].Weight; last < 1e-12 {
		t.Errorf("last retired weight = %g, want well above underflow", last)
	}

	// The surviving population should sit near the peak compared to where
	// it started.
	best := arch.Live()[arch.Len()-1]
	if best.LogLik < -1.0 {
		t.Errorf("best live LogLik = %g, want > -1", best.LogLik)
	}

	if lz := arch.LogEvidence(); math.IsNaN(lz) || math.IsInf(lz, 1) {
		t.Errorf("LogEvidence() = %g, want finite", lz)
	}
}

func TestNestedSample_Errors(t *testing.T) {
	objective := func(theta []float64) float64 { return 0 }
	cfg := NestedConfig{Rand: newTestRNG(35)}

	if _, err := NestedSample(nil, []float64{0}, []float64{1}, cfg); err == nil {
		t.Error("expected error for nil objective")
	}
	if _, err := NestedSample(objective, nil, nil, cfg); err == nil {
		t.Error("expected error for empty priors")
	}
	if _, err := NestedSample(objective, []float64{0, 0}, []float64{1}, cfg); err == nil {
		t.Error("expected error for mismatched prior lengths")
	}
	if _, err := NestedSample(objective, []float64{0}, []float64{-1}, cfg); err == nil {
		t.Error("expected error for non-positive prior sd")
	}

	bad := cfg
	bad.Particles = 1
	if _, err := NestedSample(objective, []float64{0}, []float64{1}, bad); err == nil {
		t.Error("expected error for Particles < 2")
	}
}

func TestNestedSample_ModelObjective(t *testing.T) {
	// The intended integration: score prior hyperparameters by the fitted
	// model's predictive on held-out data.
	data := testData(30, 36)
	held := testData(10, 37)

	objective := func(theta []float64) float64 {
		prior := NormalInvGamma{M: theta[0], V: 1, A: 1, B: 1}
		if prior.Validate() != nil {
			return math.Inf(-1)
		}
		cfg := DefaultConfig()
		cfg.Iterations = 5
		cfg.Rand = newTestRNG(38)
		m, err := New(data, prior, cfg)
		if err != nil {
			return math.Inf(-1)
		}
		m.Run(cfg.Iterations)
		total := 0.0
		for _, x := range held {
			total += m.LogPredictive(x)
		}
		return total
	}

	cfg := NestedConfig{Particles: 8, Samples: 10, MaxDraws: 50, Rand: newTestRNG(39)}
	arch, err := NestedSample(objective, []float64{0}, []float64{2}, cfg)
	if err != nil {
		t.Fatalf("NestedSample: %v", err)
	}
	if arch.Len() == 0 {
		t.Fatal("live set empty")
	}
	for _, p := range arch.Live() {
		if math.IsNaN(p.LogLik) {
			t.Fatal("NaN objective in live set")
		}
	}
}
