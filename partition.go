package dpmm

import (
	"fmt"
	"math/rand/v2"
)

// Partition assigns n data to k clusters: z[i] is the cluster id of the
// datum currently at position i, counts[j] the number of data in cluster j.
// Cluster ids are positional labels in [0, k): evicting a cluster relabels
// every higher id down by one, so ids are not stable across mutations.
type Partition struct {
	z      []int
	counts []int
}

// drawPartition draws a partition of n items from the Chinese Restaurant
// Process with concentration alpha: item i joins existing cluster j with
// probability counts[j]/(i+alpha) and opens a new cluster with probability
// alpha/(i+alpha).
func drawPartition(alpha float64, n int, rng *rand.Rand) *Partition {
	p := &Partition{z: make([]int, 0, n)}
	for i := 0; i < n; i++ {
		u := rng.Float64() * (float64(i) + alpha)
		zi := len(p.counts) // lands here when u falls in the alpha slice
		acc := 0.0
		for j, c := range p.counts {
			acc += float64(c)
			if u < acc {
				zi = j
				break
			}
		}
		p.Append(zi)
	}
	return p
}

// N returns the number of assigned data.
func (p *Partition) N() int { return len(p.z) }

// K returns the number of live clusters.
func (p *Partition) K() int { return len(p.counts) }

// Z returns the assignment slice. The slice is owned by the partition;
// callers must not grow or shrink it.
func (p *Partition) Z() []int { return p.z }

// Counts returns the per-cluster counts slice, owned by the partition.
func (p *Partition) Counts() []int { return p.counts }

// Remove deletes the assignment at position pos and returns the cluster id
// it held. If the cluster's count drops to zero its slot is evicted and
// every higher cluster id is relabeled down by one. Whether the removed
// entry was a singleton must be decided by the caller from pre-removal
// counts: after Remove the slot may already be gone.
func (p *Partition) Remove(pos int) int {
	if pos < 0 || pos >= len(p.z) {
		panic(fmt.Sprintf("dpmm: Remove position %d out of range [0,%d)", pos, len(p.z)))
	}
	zi := p.z[pos]
	p.z = append(p.z[:pos], p.z[pos+1:]...)
	p.counts[zi]--
	if p.counts[zi] == 0 {
		p.counts = append(p.counts[:zi], p.counts[zi+1:]...)
		for i, zj := range p.z {
			if zj > zi {
				p.z[i] = zj - 1
			}
		}
	} else if p.counts[zi] < 0 {
		panic(fmt.Sprintf("dpmm: negative count for cluster %d after removing position %d", zi, pos))
	}
	return zi
}

// Append assigns a new datum, at the end of the sequence, to cluster id.
// id == K() opens a new cluster; anything larger is a bookkeeping error.
func (p *Partition) Append(id int) {
	if id < 0 || id > len(p.counts) {
		panic(fmt.Sprintf("dpmm: Append cluster id %d with %d live clusters", id, len(p.counts)))
	}
	if id == len(p.counts) {
		p.counts = append(p.counts, 0)
	}
	p.counts[id]++
	p.z = append(p.z, id)
}
