package kde

import (
	"github.com/arimanyus/meanshift/internal/kerr"
	"github.com/arimanyus/meanshift/internal/rng"
	"github.com/arimanyus/meanshift/pkg/cluster"
	"github.com/arimanyus/meanshift/pkg/meanshift"
	"github.com/arimanyus/meanshift/pkg/sampler"
)

// scale converts a caller-supplied (unscaled) feature vector into the scaled
// space every C5-C8 operation works in (spec §3: "feature i is presented to
// kernels as raw_i * mult[i]").
func (f *Facade) scale(v []float64) []float64 {
	mult := f.dm.Mult()
	out := make([]float64, len(v))
	for j := range v {
		out[j] = v[j] * mult[j]
	}
	return out
}

// unscale is scale's inverse, applied to values coming back out of C5-C8.
func (f *Facade) unscale(v []float64) []float64 {
	mult := f.dm.Mult()
	out := make([]float64, len(v))
	for j := range v {
		out[j] = v[j] / mult[j]
	}
	return out
}

func (f *Facade) meanshiftParams() meanshift.Params {
	return meanshift.Params{Epsilon: f.p.Epsilon, IterCap: f.p.IterCap}
}

func (f *Facade) clusterParams() cluster.Params {
	return cluster.Params{
		Epsilon:        f.p.Epsilon,
		IterCap:        f.p.IterCap,
		IdentDist:      f.p.IdentDist,
		MergeRange:     f.p.MergeRange,
		MergeCheckStep: f.p.MergeCheckStep,
	}
}

// Prob evaluates the KDE at q (unscaled feature-space units), spec §4.5.
func (f *Facade) Prob(q []float64) (float64, error) {
	d, err := f.ensureDensity()
	if err != nil {
		return 0, err
	}
	return d.Prob(f.scale(q))
}

// LooNLL computes the leave-one-out negative log-likelihood, clamping any
// per-exemplar probability below limit (spec §4.5, §7's underflow policy).
func (f *Facade) LooNLL(limit float64) (float64, error) {
	d, err := f.ensureDensity()
	if err != nil {
		return 0, err
	}
	return d.LooNLL(limit)
}

// Mode runs mean shift from seed (unscaled) to convergence or iter_cap,
// returning the result in unscaled units (spec §4.6).
func (f *Facade) Mode(seed []float64) ([]float64, error) {
	d, err := f.ensureDensity()
	if err != nil {
		return nil, err
	}
	out, err := meanshift.Mode(d, f.scale(seed), f.meanshiftParams())
	if err != nil {
		return nil, err
	}
	return f.unscale(out), nil
}

// Manifold runs subspace-constrained mean shift from seed, projecting every
// update onto the F-codim eigenvectors of the Hessian of log-density with
// the most negative eigenvalues (spec §4.6).
func (f *Facade) Manifold(seed []float64, codim int, alwaysHessian bool) ([]float64, error) {
	d, err := f.ensureDensity()
	if err != nil {
		return nil, err
	}
	out, err := meanshift.Manifold(d, f.scale(seed), codim, alwaysHessian, f.meanshiftParams())
	if err != nil {
		return nil, err
	}
	return f.unscale(out), nil
}

// Cluster runs C6 from every exemplar and merges convergent trajectories via
// a freshly built balls index, returning the discovered modes (unscaled) and
// a per-exemplar cluster assignment (spec §4.7). A subsequent AssignCluster
// resolves queries against the balls index this call built.
func (f *Facade) Cluster() (*cluster.Result, error) {
	d, err := f.ensureDensity()
	if err != nil {
		return nil, err
	}
	f.dropBalls()
	idx := f.ensureBalls()
	result, err := cluster.Cluster(f.dm, d, idx, f.clusterParams())
	if err != nil {
		return nil, err
	}
	f.clustered = true
	return result, nil
}

// AssignCluster runs mode(q) then resolves it against the balls index built
// by the most recent Cluster call, returning -1 if the mode lies outside
// merge_range of every known cluster (spec §4.7). Requires a prior Cluster
// call (spec §7's StateError example).
func (f *Facade) AssignCluster(q []float64) (int, []float64, error) {
	if !f.clustered {
		return 0, nil, kerr.New(kerr.StateError, "assign_cluster requires a prior cluster() call")
	}
	d, err := f.ensureDensity()
	if err != nil {
		return 0, nil, err
	}
	id, pos, err := cluster.AssignCluster(d, f.ballsIdx, f.scale(q), f.clusterParams())
	if err != nil {
		return 0, nil, err
	}
	return id, f.unscale(pos), nil
}

// Draw performs a weighted exemplar draw offset by a kernel sample (spec
// §4.8).
func (f *Facade) Draw(idx rng.Index) ([]float64, error) {
	if f.kernel == nil {
		return nil, kerr.New(kerr.StateError, "no kernel configured; call set_kernel first")
	}
	s := sampler.New(f.dm, f.kernel, f.cfg)
	return s.Draw(rng.New(idx))
}

// Bootstrap draws an exemplar with no kernel offset (spec §4.8).
func (f *Facade) Bootstrap(idx rng.Index) ([]float64, error) {
	if f.kernel == nil {
		return nil, kerr.New(kerr.StateError, "no kernel configured; call set_kernel first")
	}
	s := sampler.New(f.dm, f.kernel, f.cfg)
	return s.Bootstrap(rng.New(idx))
}

// Mult draws from the product of this façade's KDE and others' KDEs via
// Gibbs sampling over mixture components (spec §4.8's `mult`). p.Gibbs must
// be >= 1 whenever more than one façade participates.
func (f *Facade) Mult(others []*Facade, p sampler.ProductParams, fake sampler.Fake, idx rng.Index) ([]float64, error) {
	if f.kernel == nil {
		return nil, kerr.New(kerr.StateError, "no kernel configured; call set_kernel first")
	}
	slots := make([]sampler.Slot, 0, 1+len(others))
	slots = append(slots, sampler.Slot{DM: f.dm, K: f.kernel, Cfg: f.cfg})
	for _, o := range others {
		if o.kernel == nil {
			return nil, kerr.New(kerr.StateError, "no kernel configured; call set_kernel first")
		}
		slots = append(slots, sampler.Slot{DM: o.dm, K: o.kernel, Cfg: o.cfg})
	}
	if len(slots) > 1 && p.Gibbs < 1 {
		return nil, kerr.New(kerr.InvalidParameter, "gibbs must be >= 1 for a product of more than one KDE, got %d", p.Gibbs)
	}
	if fake < sampler.FakeNone || fake > sampler.FakeMean {
		return nil, kerr.New(kerr.InvalidParameter, "fake must be in {0,1,2}, got %d", fake)
	}
	return sampler.GibbsProduct(slots, p, fake, rng.New(idx))
}
