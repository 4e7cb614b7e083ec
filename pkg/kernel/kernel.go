// Package kernel implements the closed family of kernels usable by the
// density/mean-shift engine, behind one capability-set contract (spec §3,
// §4.2, §9). The registry pattern is grounded on pkg/hnsw/distance.go's
// DistanceFunc table, generalized from a single function type into a
// {range, weight, norm, draw, offset, config} contract, since mean-shift
// (unlike nearest-neighbor search) needs kernels that can integrate, sample,
// and rewrite their own update rule. The contract has no mult (product of
// kernels) method: pkg/sampler evaluates products of kernels itself from
// each kernel's Weight.
package kernel

import "github.com/arimanyus/meanshift/internal/rng"

// Kernel is the contract every registered kernel variant implements.
type Kernel interface {
	// Name is the kernel's registered name, used for exact-match lookup.
	Name() string
	// Description is a short human-readable summary.
	Description() string
	// ConfigTemplate describes the parameter-string grammar this kernel
	// accepts (e.g. "(concentration)"), or ok=false if it takes none.
	ConfigTemplate() (template string, ok bool)

	// VerifyConfig validates a parameter suffix against dims without
	// constructing a Config, per spec §4.2.
	VerifyConfig(dims int, params string) error
	// NewConfig builds a fresh, refcount-1 Config from a parameter suffix.
	// Callers must have already called VerifyConfig successfully.
	NewConfig(dims int, params string) (*Config, error)

	// Range returns the outer support radius in scaled units (may be +Inf).
	Range(cfg *Config) float64
	// EffectiveRange returns the range used for spatial pruning: the exact
	// Range() for finite-support kernels, or a quality-derived truncation
	// radius for infinite-support kernels.
	EffectiveRange(cfg *Config, quality float64) float64

	// Weight returns the (unnormalized) kernel value at offset delta
	// (length cfg.Dims).
	Weight(cfg *Config, delta []float64) float64
	// Norm returns the integral of Weight over the kernel's domain (R^Dims,
	// or the unit sphere for directional kernels), so Weight/Norm integrates
	// to 1; it is the integration constant referenced by spec §4.5 (density
	// Z = W * prod(1/mult) * kernel.norm).
	Norm(cfg *Config) float64

	// Draw produces one deterministic sample from the unit kernel at the
	// origin into out (length cfg.Dims).
	Draw(cfg *Config, src *rng.Source, out []float64)

	// Offset maps an ambient weighted-mean update (center -> target) onto
	// this kernel's manifold, writing the corrected point into target
	// in-place. Euclidean kernels are a no-op; directional kernels
	// renormalize here (spec §4.6's "offset" note).
	Offset(cfg *Config, center, target []float64)
}
