// Package kde implements C9, the MeanShift façade that binds C1-C8 together
// behind one stateful object: a DataMatrix, a refcounted kernel config, lazy
// spatial/balls indices, and the cached total-weight/norm pair, with the
// strict invalidation discipline of spec §4.9.
//
// Grounded on pkg/hnsw/index.go's Index/IndexConfig/New shape and its
// setter-invalidation discipline (there: inserting a vector invalidates
// nothing else; here: every data/scale/kernel setter invalidates a specific
// subset of the cached spatial/balls/W/Z state, so the façade tracks that
// subset explicitly rather than a single dirty flag).
package kde

import (
	"math"

	"github.com/arimanyus/meanshift/internal/kerr"
	"github.com/arimanyus/meanshift/pkg/balls"
	"github.com/arimanyus/meanshift/pkg/datamatrix"
	"github.com/arimanyus/meanshift/pkg/density"
	"github.com/arimanyus/meanshift/pkg/kernel"
	"github.com/arimanyus/meanshift/pkg/spatial"
)

// Params bundles the façade's configuration knobs (spec §3's "Configuration"
// list).
type Params struct {
	Quality        float64
	Epsilon        float64
	IterCap        int
	IdentDist      float64
	MergeRange     float64
	MergeCheckStep int
}

func (p Params) validate() error {
	if p.Quality < 0 || p.Quality > 1 {
		return kerr.New(kerr.InvalidParameter, "quality must be in [0,1], got %v", p.Quality)
	}
	if p.Epsilon <= 0 {
		return kerr.New(kerr.InvalidParameter, "epsilon must be > 0, got %v", p.Epsilon)
	}
	if p.IterCap < 1 {
		return kerr.New(kerr.InvalidParameter, "iter_cap must be >= 1, got %v", p.IterCap)
	}
	if p.IdentDist < 0 {
		return kerr.New(kerr.InvalidParameter, "ident_dist must be >= 0, got %v", p.IdentDist)
	}
	if p.MergeRange <= 0 {
		return kerr.New(kerr.InvalidParameter, "merge_range must be > 0, got %v", p.MergeRange)
	}
	if p.MergeCheckStep < 1 {
		return kerr.New(kerr.InvalidParameter, "merge_check_step must be >= 1, got %v", p.MergeCheckStep)
	}
	return nil
}

// Facade is the engine's single entry point: DataMatrix + kernel (refcounted
// config) + spatial/balls type tags + cached W/Z (spec §4.9).
type Facade struct {
	dm *datamatrix.DataMatrix

	kernel     kernel.Kernel
	kernelName string // registered name, with parameter suffix if any
	cfg        *kernel.Config

	spatialName spatial.Name
	spatialIdx  spatial.Index // nil until first query after invalidation

	ballsName Name
	ballsIdx  balls.Index // nil until Cluster() first runs
	clustered bool

	dens *density.Density // nil whenever W/Z/spatial must be rebuilt

	p Params
}

// Name re-exports balls.Name so callers need only import this package for
// façade construction.
type Name = balls.Name

// New builds an unconfigured façade. SetData and SetKernel must both be
// called before any query operation; calling one without the other raises
// StateError (spec §7).
func New(p Params) (*Facade, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Facade{
		dm:          datamatrix.New(),
		spatialName: spatial.BruteForceName,
		ballsName:   balls.BruteName,
		p:           p,
	}, nil
}

// invalidateAll implements the strict rule for set_data / set_scale /
// set_weight_scale / set_kernel / scale_silverman / scale_scott: drop
// spatial, drop balls, unset W and Z (spec §4.9).
func (f *Facade) invalidateAll() {
	f.spatialIdx = nil
	f.ballsIdx = nil
	f.clustered = false
	f.dens = nil
}

// dropSpatial implements set_spatial's narrower rule: spatial alone is
// rebuilt lazily.
func (f *Facade) dropSpatial() {
	f.spatialIdx = nil
	f.dens = nil
}

// dropBalls implements set_balls's narrower rule.
func (f *Facade) dropBalls() {
	f.ballsIdx = nil
	f.clustered = false
}

// SetData installs a new backing array (spec §4.1, §4.9). Resets scale to
// all-ones and weight_scale to 1 (DataMatrix.Set's own contract) and
// invalidates spatial, balls, W, and Z.
func (f *Facade) SetData(arr datamatrix.ArrayView, tags []datamatrix.DimType, weightIndex int) error {
	if err := f.dm.Set(arr, tags, weightIndex); err != nil {
		return err
	}
	f.invalidateAll()
	return nil
}

// SetScale installs a new per-feature mult vector and weight_scale (spec
// §4.9).
func (f *Facade) SetScale(mult []float64, weightScale float64) error {
	if err := f.dm.SetScale(mult, weightScale); err != nil {
		return err
	}
	f.invalidateAll()
	return nil
}

// SetWeightScale updates weight_scale alone (spec §4.9).
func (f *Facade) SetWeightScale(weightScale float64) error {
	if err := f.dm.SetWeightScale(weightScale); err != nil {
		return err
	}
	f.invalidateAll()
	return nil
}

// SetKernel resolves name (with optional parameter suffix) against the
// registry, builds a fresh refcount-1 config sized to the current feature
// count, releases the previous config, and invalidates spatial, balls, W,
// and Z (spec §4.9).
func (f *Facade) SetKernel(name string) error {
	dims, err := f.dm.Features()
	if err != nil {
		return err
	}
	k, params, err := kernel.ByName(name)
	if err != nil {
		return err
	}
	if err := k.VerifyConfig(dims, params); err != nil {
		return err
	}
	cfg, err := k.NewConfig(dims, params)
	if err != nil {
		return err
	}

	f.cfg.Release()
	f.kernel = k
	f.kernelName = name
	f.cfg = cfg
	f.invalidateAll()
	return nil
}

// CopyKernel shares other's kernel config by reference (acquiring it) in
// place of this façade's own, and drops the cached density evaluator (and
// with it W and Z) so the next query uses the shared kernel. The spatial
// index object and balls are kept; the spatial index is re-built over the
// same data when the evaluator is rebuilt. other must already have a kernel
// configured.
func (f *Facade) CopyKernel(other *Facade) error {
	if other.kernel == nil {
		return kerr.New(kerr.StateError, "copy_kernel source has no kernel configured")
	}
	other.cfg.Acquire()
	f.cfg.Release()
	f.kernel = other.kernel
	f.kernelName = other.kernelName
	f.cfg = other.cfg
	f.dens = nil
	return nil
}

// SetSpatial switches the spatial acceleration structure, dropping only the
// existing spatial index (rebuilt lazily on next query, spec §4.9).
func (f *Facade) SetSpatial(name spatial.Name) error {
	if name != spatial.BruteForceName && name != spatial.KDTreeName {
		return kerr.New(kerr.UnknownName, "unknown spatial index %q", name)
	}
	f.spatialName = name
	f.dropSpatial()
	return nil
}

// SetBalls switches the balls-index implementation used by future Cluster
// calls, dropping only the existing balls index (spec §4.9).
func (f *Facade) SetBalls(name Name) error {
	if name != balls.BruteName && name != balls.HashName {
		return kerr.New(kerr.UnknownName, "unknown balls index %q", name)
	}
	f.ballsName = name
	f.dropBalls()
	return nil
}

// ScaleSilverman applies Silverman's rule of thumb: mult[i] = (sd[i]*c)^-1
// with c = (W*(F+2)/4)^(-1/(F+4)) (spec §4.9).
func (f *Facade) ScaleSilverman() error {
	return f.applyBandwidthRule(func(w float64, fdim int) float64 {
		return math.Pow(w*float64(fdim+2)/4, -1/float64(fdim+4))
	})
}

// ScaleScott applies Scott's rule: mult[i] = (sd[i]*c)^-1 with
// c = W^(-1/(F+4)) (spec §4.9).
func (f *Facade) ScaleScott() error {
	return f.applyBandwidthRule(func(w float64, fdim int) float64 {
		return math.Pow(w, -1/float64(fdim+4))
	})
}

// applyBandwidthRule shares the stats() routine between scale_silverman and
// scale_scott, per spec §4.9's "implementations should share the stats
// routine with C1's stats()".
func (f *Facade) applyBandwidthRule(c func(w float64, fdim int) float64) error {
	stats, err := f.dm.Stats()
	if err != nil {
		return err
	}
	w, err := f.dm.TotalWeight()
	if err != nil {
		return err
	}
	fdim := len(stats.StdDev)
	factor := c(w, fdim)

	mult := make([]float64, fdim)
	for i, sd := range stats.StdDev {
		if sd <= 0 {
			return kerr.New(kerr.StateError, "feature %d has zero spread; bandwidth heuristics require nonzero variance", i)
		}
		mult[i] = 1 / (sd * factor)
	}
	if err := f.dm.SetScale(mult, f.dm.WeightScale()); err != nil {
		return err
	}
	f.invalidateAll()
	return nil
}

// Weight returns W, the total (weight_scale-adjusted) exemplar weight (spec
// §4.1's weight() accessor, ms_c.c:603).
func (f *Facade) Weight() (float64, error) {
	return f.dm.TotalWeight()
}

// Exemplars returns E.
func (f *Facade) Exemplars() int {
	return f.dm.Exemplars()
}

// Features returns F.
func (f *Facade) Features() (int, error) {
	return f.dm.Features()
}

// KernelName returns the currently configured kernel's registered name
// (including parameter suffix, if any).
func (f *Facade) KernelName() string {
	return f.kernelName
}

// ensureDensity lazily (re)builds the spatial index and the C5 density
// evaluator, the only place spatialIdx and dens transition from nil back to
// a usable value after an invalidating setter (spec §4.9, §5 "Ordering").
func (f *Facade) ensureDensity() (*density.Density, error) {
	if f.kernel == nil {
		return nil, kerr.New(kerr.StateError, "no kernel configured; call set_kernel first")
	}
	dims, err := f.dm.Features()
	if err != nil {
		return nil, err
	}
	if f.cfg.Dims != dims {
		return nil, kerr.New(kerr.StateError, "kernel config dimensionality %d does not match current feature count %d; call set_kernel after set_data", f.cfg.Dims, dims)
	}
	if f.dens != nil {
		return f.dens, nil
	}
	if f.spatialIdx == nil {
		f.spatialIdx = spatial.New(f.spatialName)
	}
	d, err := density.New(f.dm, f.spatialIdx, f.kernel, f.cfg, f.p.Quality)
	if err != nil {
		return nil, err
	}
	f.dens = d
	return d, nil
}

// ensureBalls lazily creates the balls index used by Cluster/AssignCluster.
func (f *Facade) ensureBalls() balls.Index {
	if f.ballsIdx == nil {
		dims, _ := f.dm.Features()
		f.ballsIdx = balls.New(f.ballsName, dims, f.p.MergeRange)
	}
	return f.ballsIdx
}
