// Package cluster implements C7: running mean shift from every exemplar and
// merging convergent trajectories into a set of cluster centers plus a
// per-exemplar assignment (spec §4.7).
//
// Grounded on ms_c.c's Clusters/cluster_data control loop (live trajectory
// list, ident_dist collapse, merge_check_step batching, balls-index
// resolution) and the teacher's pkg/tenant/manager.go for the "live registry
// shrinking as entries resolve" bookkeeping shape.
package cluster

import (
	"errors"

	"github.com/arimanyus/meanshift/pkg/balls"
	"github.com/arimanyus/meanshift/pkg/datamatrix"
	"github.com/arimanyus/meanshift/pkg/density"
)

// Params bundles the knobs the clustering algorithm consults (spec §3).
type Params struct {
	Epsilon        float64
	IterCap        int
	IdentDist      float64
	MergeRange     float64
	MergeCheckStep int
}

// Result is the output of Cluster: one mode per discovered ball, scaled back
// into the caller's original feature units, and one cluster id per exemplar.
type Result struct {
	Modes       [][]float64
	Assignments []int
}

type livePoint struct {
	id       int // exemplar id
	pos      []float64
	iters    int
	lastStep2 float64
	empty    bool // true once WeightedMean reports ErrEmptyKernel (treated as converged in place)
}

// Cluster runs the full algorithm of spec §4.7 over dm's exemplars, using d
// for the mean-shift update and idx (already constructed for dims=F,
// cellSize~=MergeRange) as the cluster-identity balls index.
func Cluster(dm *datamatrix.DataMatrix, d *density.Density, idx balls.Index, p Params) (*Result, error) {
	f, err := dm.Features()
	if err != nil {
		return nil, err
	}
	e := dm.Exemplars()

	live := make([]*livePoint, 0, e)
	for i := 0; i < e; i++ {
		buf := make([]float64, f)
		if _, err := dm.FV(i, buf, nil); err != nil {
			return nil, err
		}
		live = append(live, &livePoint{id: i, pos: buf})
	}

	assignment := make([]int, e)
	for i := range assignment {
		assignment[i] = -1
	}
	alias := make(map[int]int) // collapsed exemplar id -> surviving exemplar id

	identDist2 := p.IdentDist * p.IdentDist

	for len(live) > 0 {
		// (a) advance every live point by merge_check_step iterations.
		for _, lp := range live {
			for s := 0; s < p.MergeCheckStep && lp.iters < p.IterCap; s++ {
				next, step2, err := d.WeightedMean(lp.pos)
				if errors.Is(err, density.ErrEmptyKernel) {
					lp.empty = true
					break
				}
				if err != nil {
					return nil, err
				}
				lp.pos = next
				lp.lastStep2 = step2
				lp.iters++
			}
		}

		// (b) collapse live points within ident_dist of one another: the
		// later one in the list is aliased to the earlier and removed.
		if p.IdentDist > 0 {
			removed := make(map[int]bool)
			for i := 0; i < len(live); i++ {
				if removed[i] {
					continue
				}
				for j := i + 1; j < len(live); j++ {
					if removed[j] {
						continue
					}
					if distSq(live[i].pos, live[j].pos) < identDist2 {
						alias[live[j].id] = live[i].id
						removed[j] = true
					}
				}
			}
			if len(removed) > 0 {
				live = filterLive(live, removed)
			}
		}

		// (c) + (d) resolve live points that converged within the block, or
		// that have exhausted iter_cap, against the balls index.
		removed := make(map[int]bool)
		for i, lp := range live {
			converged := lp.empty || lp.lastStep2 < p.Epsilon*p.Epsilon
			capped := lp.iters >= p.IterCap
			if !converged && !capped {
				continue
			}
			id, ok := idx.NearestWithin(lp.pos, p.MergeRange)
			if !ok {
				id = idx.Add(lp.pos)
			}
			assignment[lp.id] = id
			removed[i] = true
		}
		if len(removed) > 0 {
			live = filterLive(live, removed)
		}
	}

	for i := 0; i < e; i++ {
		if assignment[i] != -1 {
			continue
		}
		cur := i
		for {
			next, ok := alias[cur]
			if !ok {
				break
			}
			cur = next
		}
		assignment[i] = assignment[cur]
	}

	mult := dm.Mult()
	modes := make([][]float64, idx.Count())
	for b := 0; b < idx.Count(); b++ {
		pos := idx.Pos(b)
		row := make([]float64, len(pos))
		for j := range pos {
			row[j] = pos[j] / mult[j]
		}
		modes[b] = row
	}

	return &Result{Modes: modes, Assignments: assignment}, nil
}

// AssignCluster runs mode(q) then resolves it against idx, per spec §4.7's
// assign_cluster(q). Returns -1 if the mode lies outside merge_range of every
// known cluster.
func AssignCluster(d *density.Density, idx balls.Index, q []float64, p Params) (int, []float64, error) {
	pos := append([]float64(nil), q...)
	for iter := 0; iter < p.IterCap; iter++ {
		next, step2, err := d.WeightedMean(pos)
		if errors.Is(err, density.ErrEmptyKernel) {
			break
		}
		if err != nil {
			return 0, nil, err
		}
		pos = next
		if step2 < p.Epsilon*p.Epsilon {
			break
		}
	}
	id, ok := idx.NearestWithin(pos, p.MergeRange)
	if !ok {
		return -1, pos, nil
	}
	return id, pos, nil
}

func filterLive(live []*livePoint, removed map[int]bool) []*livePoint {
	out := live[:0:0]
	for i, lp := range live {
		if removed[i] {
			continue
		}
		out = append(out, lp)
	}
	return out
}

func distSq(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}
