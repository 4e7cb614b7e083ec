// Batch variants of the per-point façade operations, supplemented from
// ms_c.c's modes_data/manifolds_data (ms_c.c:1134,1514), assign_clusters
// (ms_c.c:1316), probs (ms_c.c:898), and draws (ms_c.c:978): spec.md's
// distillation only describes the single-point forms, but the original
// exposes array-at-a-time siblings that reuse one spatial/balls build across
// many queries instead of paying Build's cost (and, in ms_c.c, a scratch
// allocation) per call. None of spec.md's Non-goals exclude this.
package kde

import "github.com/arimanyus/meanshift/internal/rng"

// Modes runs Mode(seed) for every seed in seeds, sharing one Density build
// (ms_c.c:1134).
func (f *Facade) Modes(seeds [][]float64) ([][]float64, error) {
	if _, err := f.ensureDensity(); err != nil {
		return nil, err
	}
	out := make([][]float64, len(seeds))
	for i, seed := range seeds {
		m, err := f.Mode(seed)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

// Manifolds runs Manifold(seed, codim, alwaysHessian) for every seed in
// seeds, sharing one Density build (ms_c.c:1514).
func (f *Facade) Manifolds(seeds [][]float64, codim int, alwaysHessian bool) ([][]float64, error) {
	if _, err := f.ensureDensity(); err != nil {
		return nil, err
	}
	out := make([][]float64, len(seeds))
	for i, seed := range seeds {
		m, err := f.Manifold(seed, codim, alwaysHessian)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

// AssignClusters runs AssignCluster(q) for every q in qs against the balls
// index built by the most recent Cluster call, without re-running cluster()
// (ms_c.c:1316).
func (f *Facade) AssignClusters(qs [][]float64) ([]int, [][]float64, error) {
	ids := make([]int, len(qs))
	modes := make([][]float64, len(qs))
	for i, q := range qs {
		id, m, err := f.AssignCluster(q)
		if err != nil {
			return nil, nil, err
		}
		ids[i] = id
		modes[i] = m
	}
	return ids, modes, nil
}

// Probs evaluates Prob(q) for every q in qs, sharing one Density build
// (ms_c.c:898).
func (f *Facade) Probs(qs [][]float64) ([]float64, error) {
	d, err := f.ensureDensity()
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(qs))
	for i, q := range qs {
		p, err := d.Prob(f.scale(q))
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// Draws performs Draw for every index in idxs in one call (ms_c.c:978).
func (f *Facade) Draws(idxs []rng.Index) ([][]float64, error) {
	out := make([][]float64, len(idxs))
	for i, idx := range idxs {
		d, err := f.Draw(idx)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
