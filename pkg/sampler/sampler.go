// Package sampler implements C8: deterministic draws from a single KDE, a
// bootstrap (Dirac) variant, and Gibbs sampling from a product of KDEs (spec
// §4.8). All randomness flows through a caller-supplied internal/rng.Source
// keyed by an explicit index tuple, never a global generator.
//
// Grounded on ms_c.c's MeanShift.draw/bootstrap and its Mult_Cache Gibbs-pass
// product sampler, re-expressed in terms of this repo's Kernel/DataMatrix
// contracts.
package sampler

import (
	"math"

	"github.com/arimanyus/meanshift/internal/rng"
	"github.com/arimanyus/meanshift/pkg/datamatrix"
	"github.com/arimanyus/meanshift/pkg/kernel"
)

// Sampler draws from the single KDE backed by dm/k/cfg.
type Sampler struct {
	dm  *datamatrix.DataMatrix
	k   kernel.Kernel
	cfg *kernel.Config
}

// New builds a Sampler over dm using kernel k/cfg.
func New(dm *datamatrix.DataMatrix, k kernel.Kernel, cfg *kernel.Config) *Sampler {
	return &Sampler{dm: dm, k: k, cfg: cfg}
}

// Draw picks an exemplar with probability proportional to its weight, then
// offsets it by a sample from the kernel, returning the result in unscaled
// (original) feature-space units (spec §4.8).
func (s *Sampler) Draw(src *rng.Source) ([]float64, error) {
	return s.draw(src, false)
}

// Bootstrap is Draw with the kernel offset replaced by zero (Dirac) — a
// classic resample-with-replacement draw (spec §4.8).
func (s *Sampler) Bootstrap(src *rng.Source) ([]float64, error) {
	return s.draw(src, true)
}

func (s *Sampler) draw(src *rng.Source, dirac bool) ([]float64, error) {
	i, err := s.dm.Draw(src)
	if err != nil {
		return nil, err
	}
	f, err := s.dm.Features()
	if err != nil {
		return nil, err
	}
	fv := make([]float64, f)
	if _, err := s.dm.FV(i, fv, nil); err != nil {
		return nil, err
	}

	delta := make([]float64, f)
	if !dirac {
		s.k.Draw(s.cfg, src.Child(1), delta)
	}

	mult := s.dm.Mult()
	out := make([]float64, f)
	for j := 0; j < f; j++ {
		out[j] = (fv[j] + delta[j]) / mult[j]
	}
	return out, nil
}

// Slot is one factor of a product-of-KDEs target: its own DataMatrix and
// kernel/config.
type Slot struct {
	DM  *datamatrix.DataMatrix
	K   kernel.Kernel
	Cfg *kernel.Config
}

// ProductParams controls the Gibbs-sampling approximation used to draw from
// a product of KDEs (spec §4.8).
type ProductParams struct {
	Gibbs int // number of full Gibbs passes
	MCI   int // Monte-Carlo integration samples per conditional, if > 0
	MH    int // Metropolis-Hastings proposals per conditional, if MCI == 0 and MH > 0
}

// Fake selects a diagnostic output mode instead of a true draw (spec §4.8).
type Fake int

const (
	// FakeNone performs a real draw from the selected product component.
	FakeNone Fake = iota
	// FakeMode returns an approximate mode of the selected product component.
	FakeMode
	// FakeMean returns the plain average of the T selected centres (each in
	// its own slot's unscaled units); exemplar weights do not enter it.
	FakeMean
)

// otherComponent is one other slot's currently-assigned mixture component:
// its raw weight and (scaled) centre.
type otherComponent struct {
	slot   Slot
	weight float64
	centre []float64
}

// othersProduct evaluates ∏_s weight_s * slot_s.K(x - centre_s) over the
// other slots' currently-assigned components — the product-kernel component
// the Gibbs state (a_1,...,a_T) singles out, per spec §4.8's "joint mixture
// has Π_t N_t components" framing.
func othersProduct(others []otherComponent, x []float64) float64 {
	prod := 1.0
	delta := make([]float64, len(x))
	for _, o := range others {
		for j := range x {
			delta[j] = x[j] - o.centre[j]
		}
		prod *= o.weight * o.slot.K.Weight(o.slot.Cfg, delta)
	}
	return prod
}

// condIntegral estimates ∫ anchor.K(x - anchorCentre) * othersProduct(x) dx,
// the un-normalised integral spec §4.8 assigns to a candidate exemplar in
// the Gibbs conditional for the anchor slot. When neither mci nor mh is
// configured, it falls back to evaluating the other components directly at
// anchorCentre — the shortcut spec §4.8 reserves for closed-form-available
// targets (e.g. all-Gaussian products); treating every kernel this way is a
// deliberate simplification recorded in the grounding ledger, since the
// Kernel contract has no per-kernel marginal-integral method to dispatch a
// true closed form on.
func condIntegral(anchor Slot, anchorCentre []float64, others []otherComponent, p ProductParams, src *rng.Source) float64 {
	f := len(anchorCentre)
	switch {
	case p.MCI > 0:
		var sum float64
		delta := make([]float64, f)
		sample := make([]float64, f)
		for n := 0; n < p.MCI; n++ {
			anchor.K.Draw(anchor.Cfg, src, delta)
			for j := 0; j < f; j++ {
				sample[j] = anchorCentre[j] + delta[j]
			}
			sum += othersProduct(others, sample)
		}
		return sum / float64(p.MCI)
	case p.MH > 0:
		return metropolisEstimate(anchor, anchorCentre, others, p.MH, src)
	default:
		return othersProduct(others, anchorCentre)
	}
}

// metropolisEstimate runs a short random-walk Metropolis-Hastings chain
// proposing from anchor's kernel centered at x, targeting othersProduct, and
// returns othersProduct evaluated at the final accepted state.
func metropolisEstimate(anchor Slot, x []float64, others []otherComponent, steps int, src *rng.Source) float64 {
	f := len(x)
	cur := append([]float64(nil), x...)
	curVal := othersProduct(others, cur)

	prop := make([]float64, f)
	delta := make([]float64, f)
	for s := 0; s < steps; s++ {
		anchor.K.Draw(anchor.Cfg, src, delta)
		for j := 0; j < f; j++ {
			prop[j] = x[j] + delta[j]
		}
		propVal := othersProduct(others, prop)
		accept := propVal >= curVal
		if !accept && curVal > 0 {
			accept = src.Float64() < propVal/curVal
		}
		if accept {
			copy(cur, prop)
			curVal = propVal
		}
	}
	return curVal
}

// GibbsProduct draws from the product of slots' KDEs via Gibbs sampling over
// the per-slot exemplar assignment, then emits either a true draw or a
// diagnostic output selected by fake (spec §4.8). The degenerate case T=1
// reduces to a direct draw from the single KDE.
func GibbsProduct(slots []Slot, p ProductParams, fake Fake, src *rng.Source) ([]float64, error) {
	t := len(slots)
	if t == 0 {
		return nil, nil
	}
	if t == 1 {
		s := New(slots[0].DM, slots[0].K, slots[0].Cfg)
		if fake == FakeNone {
			return s.Draw(src)
		}
		f, err := slots[0].DM.Features()
		if err != nil {
			return nil, err
		}
		i, err := slots[0].DM.Draw(src)
		if err != nil {
			return nil, err
		}
		fv := make([]float64, f)
		if _, err := slots[0].DM.FV(i, fv, nil); err != nil {
			return nil, err
		}
		mult := slots[0].DM.Mult()
		out := make([]float64, f)
		for j := range out {
			out[j] = fv[j] / mult[j]
		}
		return out, nil
	}

	state := make([]int, t)
	for s := range state {
		var err error
		state[s], err = slots[s].DM.Draw(src.Child(uint32(s)))
		if err != nil {
			return nil, err
		}
	}

	f, err := slots[0].DM.Features()
	if err != nil {
		return nil, err
	}

	centre := func(slot Slot, i int) ([]float64, float64, error) {
		buf := make([]float64, f)
		w, err := slot.DM.FV(i, buf, nil)
		return buf, w, err
	}

	for pass := 0; pass < p.Gibbs; pass++ {
		for tt := 0; tt < t; tt++ {
			others := make([]otherComponent, 0, t-1)
			for s := 0; s < t; s++ {
				if s == tt {
					continue
				}
				c, w, err := centre(slots[s], state[s])
				if err != nil {
					return nil, err
				}
				others = append(others, otherComponent{slot: slots[s], weight: w, centre: c})
			}

			n := slots[tt].DM.Exemplars()
			scores := make([]float64, n)
			var total float64
			for i := 0; i < n; i++ {
				fv, w, err := centre(slots[tt], i)
				if err != nil {
					return nil, err
				}
				score := w * condIntegral(slots[tt], fv, others, p, src.Child(uint32(tt*31+i)))
				scores[i] = score
				total += score
			}
			if total <= 0 {
				continue // spec §4.8: all-zero evaluation leaves the state unchanged.
			}
			target := src.Child(uint32(1000+tt)).Float64() * total
			var cum float64
			chosen := 0
			for i, v := range scores {
				cum += v
				if target <= cum {
					chosen = i
					break
				}
			}
			state[tt] = chosen
		}
	}

	centres := make([][]float64, t)
	mults := make([][]float64, t)
	for s := 0; s < t; s++ {
		fv, _, err := centre(slots[s], state[s])
		if err != nil {
			return nil, err
		}
		centres[s] = fv
		mults[s] = slots[s].DM.Mult()
	}

	switch fake {
	case FakeMean:
		out := make([]float64, f)
		for s := 0; s < t; s++ {
			for j := 0; j < f; j++ {
				out[j] += centres[s][j] / mults[s][j]
			}
		}
		for j := range out {
			out[j] /= float64(t)
		}
		return out, nil
	case FakeMode:
		return approximateMode(slots, centres, mults)
	default:
		return metropolisJointDraw(slots, centres, mults, src)
	}
}

// approximateMode runs a few finite-difference gradient-ascent steps on the
// sum of log-kernel-weights anchored at the selected centres, starting from
// their arithmetic mean, since no kernel exposes a closed-form joint mode
// (spec §4.8's fake=1).
func approximateMode(slots []Slot, centres [][]float64, mults [][]float64) ([]float64, error) {
	t := len(slots)
	f := len(centres[0])
	x := make([]float64, f)
	for s := 0; s < t; s++ {
		for j := 0; j < f; j++ {
			x[j] += centres[s][j]
		}
	}
	for j := range x {
		x[j] /= float64(t)
	}

	logSum := func(pt []float64) float64 {
		var sum float64
		delta := make([]float64, f)
		for s := 0; s < t; s++ {
			for j := 0; j < f; j++ {
				delta[j] = pt[j] - centres[s][j]
			}
			v := slots[s].K.Weight(slots[s].Cfg, delta)
			if v <= 0 {
				v = 1e-300
			}
			sum += math.Log(v)
		}
		return sum
	}

	const steps = 20
	const lr = 0.1
	grad := make([]float64, f)
	trial := make([]float64, f)
	for it := 0; it < steps; it++ {
		base := logSum(x)
		for j := 0; j < f; j++ {
			h := 1e-4
			copy(trial, x)
			trial[j] += h
			grad[j] = (logSum(trial) - base) / h
		}
		moved := false
		for j := 0; j < f; j++ {
			step := lr * grad[j]
			if step != 0 {
				moved = true
			}
			x[j] += step
		}
		if !moved {
			break
		}
	}

	out := make([]float64, f)
	for j := range out {
		out[j] = x[j] / mults[0][j]
	}
	return out, nil
}

// metropolisJointDraw performs a short random-walk Metropolis-Hastings chain
// targeting the product of the T anchored kernels, returning a true draw
// from the selected component (spec §4.8's fake=0).
func metropolisJointDraw(slots []Slot, centres [][]float64, mults [][]float64, src *rng.Source) ([]float64, error) {
	t := len(slots)
	f := len(centres[0])

	logJoint := func(pt []float64) float64 {
		var sum float64
		delta := make([]float64, f)
		for s := 0; s < t; s++ {
			for j := 0; j < f; j++ {
				delta[j] = pt[j] - centres[s][j]
			}
			v := slots[s].K.Weight(slots[s].Cfg, delta)
			if v <= 0 {
				v = 1e-300
			}
			sum += math.Log(v)
		}
		return sum
	}

	cur := make([]float64, f)
	for j := 0; j < f; j++ {
		var sum float64
		for s := 0; s < t; s++ {
			sum += centres[s][j]
		}
		cur[j] = sum / float64(t)
	}
	curLog := logJoint(cur)

	const steps = 64
	delta := make([]float64, f)
	prop := make([]float64, f)
	for step := 0; step < steps; step++ {
		slots[0].K.Draw(slots[0].Cfg, src, delta)
		for j := 0; j < f; j++ {
			prop[j] = cur[j] + delta[j]
		}
		propLog := logJoint(prop)
		accept := propLog >= curLog
		if !accept {
			accept = src.Float64() < math.Exp(propLog-curLog)
		}
		if accept {
			copy(cur, prop)
			curLog = propLog
		}
	}

	out := make([]float64, f)
	for j := range out {
		out[j] = cur[j] / mults[0][j]
	}
	return out, nil
}
