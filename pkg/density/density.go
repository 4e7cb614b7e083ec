// Package density evaluates the kernel density estimate, its leave-one-out
// negative log-likelihood, and the kernel-weighted mean update that drives
// mean shift, per spec §3, §4.5.
//
// Grounded on pkg/search/cache.go's lazily-built, invalidation-flagged
// aggregate (there: a result-set cache; here: the W/Z normalizers) and
// pkg/ivf/index.go's "query the index, accumulate over visited candidates"
// shape, generalized from a similarity accumulator to a kernel-weighted sum.
package density

import (
	"errors"
	"math"

	"github.com/arimanyus/meanshift/internal/kerr"
	"github.com/arimanyus/meanshift/pkg/datamatrix"
	"github.com/arimanyus/meanshift/pkg/kernel"
	"github.com/arimanyus/meanshift/pkg/spatial"
)

// ErrEmptyKernel reports that the weighted denominator was zero: no exemplar
// fell within the kernel's support of the query point. It is internal to the
// density/mean-shift layers (spec §4.5, §9 Glossary) — the mean-shift driver
// treats it as "stop here", it is never surfaced past pkg/meanshift.
var ErrEmptyKernel = errors.New("density: empty kernel")

// Density evaluates a KDE built from dm's exemplars through idx, using k/cfg
// as the kernel, with spatial cutoffs controlled by quality.
type Density struct {
	dm      *datamatrix.DataMatrix
	idx     spatial.Index
	k       kernel.Kernel
	cfg     *kernel.Config
	quality float64

	w    float64
	wSet bool
	z    float64
	zSet bool
}

// New builds a Density over dm, building idx's acceleration structure. cfg is
// retained but not released; the caller owns its lifecycle (spec §4.2's
// acquire/release contract).
func New(dm *datamatrix.DataMatrix, idx spatial.Index, k kernel.Kernel, cfg *kernel.Config, quality float64) (*Density, error) {
	if err := idx.Build(dm); err != nil {
		return nil, err
	}
	return &Density{dm: dm, idx: idx, k: k, cfg: cfg, quality: quality}, nil
}

// Invalidate drops the cached W/Z normalizers, required after the backing
// DataMatrix's scale or weight changes (spec §9's generation-counter note).
func (d *Density) Invalidate() {
	d.wSet = false
	d.zSet = false
}

// TotalWeight returns W = sum_i w_i * weight_scale, cached until Invalidate.
func (d *Density) TotalWeight() (float64, error) {
	if d.wSet {
		return d.w, nil
	}
	w, err := d.dm.TotalWeight()
	if err != nil {
		return 0, err
	}
	d.w = w
	d.wSet = true
	return w, nil
}

// Norm returns Z, the scalar that makes the KDE integrate to 1 over R^F
// (spec §4.5): Z = W * prod(1/mult) * kernel.norm(config).
func (d *Density) Norm() (float64, error) {
	if d.zSet {
		return d.z, nil
	}
	w, err := d.TotalWeight()
	if err != nil {
		return 0, err
	}
	multProd := 1.0
	for _, m := range d.dm.Mult() {
		multProd /= m
	}
	z := w * multProd * d.k.Norm(d.cfg)
	d.z = z
	d.zSet = true
	return z, nil
}

func (d *Density) effectiveRange() float64 {
	return d.k.EffectiveRange(d.cfg, d.quality)
}

// Prob evaluates (1/Z) * sum_i w_i * kernel(q - fv_i), enumerating candidates
// via the spatial index with the kernel's effective range as cutoff.
func (d *Density) Prob(q []float64) (float64, error) {
	return d.probExcluding(q, -1)
}

// probExcluding is Prob(q), except exemplar `exclude` (if >= 0) is skipped —
// the leave-one-out primitive loo_nll builds on (spec §4.5).
func (d *Density) probExcluding(q []float64, exclude int) (float64, error) {
	z, err := d.Norm()
	if err != nil {
		return 0, err
	}
	if z == 0 {
		return 0, nil
	}

	var sum float64
	radius := d.effectiveRange()
	err = d.idx.Query(q, radius, func(i int, fv []float64, w float64) {
		if i == exclude {
			return
		}
		delta := make([]float64, len(fv))
		for j := range fv {
			delta[j] = q[j] - fv[j]
		}
		sum += w * d.k.Weight(d.cfg, delta)
	})
	if err != nil {
		return 0, err
	}
	return sum / z, nil
}

// LooNLL computes the leave-one-out negative log-likelihood: for each
// exemplar j, p_j = max(limit, prob(fv_j) with j's own contribution removed),
// summed as -log(p_j)/W (spec §4.5).
func (d *Density) LooNLL(limit float64) (float64, error) {
	w, err := d.TotalWeight()
	if err != nil {
		return 0, err
	}
	if w == 0 {
		return 0, kerr.New(kerr.StateError, "leave-one-out nll requires nonzero total weight")
	}

	f, err := d.dm.Features()
	if err != nil {
		return 0, err
	}

	var sum float64
	n := d.dm.Exemplars()
	for j := 0; j < n; j++ {
		fv := make([]float64, f)
		if _, err := d.dm.FV(j, fv, nil); err != nil {
			return 0, err
		}
		p, err := d.probExcluding(fv, j)
		if err != nil {
			return 0, err
		}
		if p < limit {
			p = limit
		}
		sum += -math.Log(p)
	}
	return sum / w, nil
}

// WeightedMean computes the kernel-weighted mean of the exemplars around q,
// applies kernel.Offset to blend onto the kernel's manifold, and reports the
// squared step length in scaled space (spec §4.5, §4.6).
func (d *Density) WeightedMean(q []float64) (newQ []float64, step2 float64, err error) {
	f, err := d.dm.Features()
	if err != nil {
		return nil, 0, err
	}

	num := make([]float64, f)
	var den float64
	radius := d.effectiveRange()

	qErr := d.idx.Query(q, radius, func(i int, fv []float64, w float64) {
		delta := make([]float64, f)
		for j := range fv {
			delta[j] = q[j] - fv[j]
		}
		kw := w * d.k.Weight(d.cfg, delta)
		if kw == 0 {
			return
		}
		den += kw
		for j := 0; j < f; j++ {
			num[j] += kw * fv[j]
		}
	})
	if qErr != nil {
		return nil, 0, qErr
	}
	if den == 0 {
		return nil, 0, ErrEmptyKernel
	}

	mean := make([]float64, f)
	for j := 0; j < f; j++ {
		mean[j] = num[j] / den
	}

	target := append([]float64(nil), mean...)
	d.k.Offset(d.cfg, q, target)

	for j := 0; j < f; j++ {
		diff := target[j] - q[j]
		step2 += diff * diff
	}
	return target, step2, nil
}
