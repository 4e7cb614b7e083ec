// Package meanshift implements the mode-seeking (C6) driver: plain mean
// shift and subspace-constrained ("manifold") mean shift, both built on top
// of a pkg/density.Density. Grounded on ms_c.c's MeanShift.mode/manifold pair.
package meanshift

import (
	"errors"
	"math"

	"github.com/arimanyus/meanshift/pkg/density"
)

// Params bundles the convergence knobs shared by Mode and Manifold
// (spec §3's epsilon/iter_cap).
type Params struct {
	Epsilon float64
	IterCap int
}

// logDensityFloor keeps numerical-Hessian finite differences finite when a
// finite-support kernel's probability is exactly zero near the seed.
const logDensityFloor = 1e-300

// Mode runs plain mean shift from seed: repeatedly call d.WeightedMean until
// the squared step falls below epsilon^2 or iter_cap iterations have run
// (spec §4.6). If the density is empty at the very first step (no exemplar
// within range of seed), the seed is returned unchanged — a fixed point by
// construction.
func Mode(d *density.Density, seed []float64, p Params) ([]float64, error) {
	cur := append([]float64(nil), seed...)
	for iter := 0; iter < p.IterCap; iter++ {
		next, step2, err := d.WeightedMean(cur)
		if errors.Is(err, density.ErrEmptyKernel) {
			return cur, nil
		}
		if err != nil {
			return nil, err
		}
		cur = next
		if step2 < p.Epsilon*p.Epsilon {
			break
		}
	}
	return cur, nil
}

// Manifold runs subspace-constrained mean shift from seed, restricting the
// update at every step to the subspace spanned by the F-d eigenvectors of
// the local Hessian of log-density with the most negative eigenvalues (spec
// §4.6). If alwaysHessian is false, the eigenbasis is computed once at the
// initial seed and reused for every subsequent step.
func Manifold(d *density.Density, seed []float64, codim int, alwaysHessian bool, p Params) ([]float64, error) {
	f := len(seed)
	if codim < 0 || codim > f {
		return nil, errors.New("meanshift: codim out of range")
	}

	cur := append([]float64(nil), seed...)
	var basis [][]float64
	if !alwaysHessian {
		h, err := hessianLogDensity(d, cur)
		if err != nil {
			return nil, err
		}
		basis = subspaceBasis(h, codim)
	}

	for iter := 0; iter < p.IterCap; iter++ {
		next, _, err := d.WeightedMean(cur)
		if errors.Is(err, density.ErrEmptyKernel) {
			return cur, nil
		}
		if err != nil {
			return nil, err
		}

		if alwaysHessian {
			h, err := hessianLogDensity(d, cur)
			if err != nil {
				return nil, err
			}
			basis = subspaceBasis(h, codim)
		}

		update := make([]float64, f)
		for j := 0; j < f; j++ {
			update[j] = next[j] - cur[j]
		}
		projected := projectOnto(update, basis)

		var step2 float64
		for j := 0; j < f; j++ {
			cur[j] += projected[j]
			step2 += projected[j] * projected[j]
		}
		if step2 < p.Epsilon*p.Epsilon {
			break
		}
	}
	return cur, nil
}

// hessianLogDensity computes the Hessian of log(d.Prob(x)) at x via central
// finite differences (spec §4.6's "local Hessian H of log-density at seed").
// Grounded on ms_c.c's own finite-difference Hessian estimate inside
// manifold_data, kept here because pkg/kernel's Kernel contract has no
// analytic gradient/Hessian method shared by every kernel variant.
func hessianLogDensity(d *density.Density, x []float64) ([][]float64, error) {
	f := len(x)
	h := make([]float64, f)
	for i := range h {
		h[i] = stepSize(x[i])
	}

	logP := func(pt []float64) (float64, error) {
		p, err := d.Prob(pt)
		if err != nil {
			return 0, err
		}
		if p < logDensityFloor {
			p = logDensityFloor
		}
		return math.Log(p), nil
	}

	center, err := logP(x)
	if err != nil {
		return nil, err
	}

	hess := make([][]float64, f)
	for i := range hess {
		hess[i] = make([]float64, f)
	}

	work := append([]float64(nil), x...)

	for i := 0; i < f; i++ {
		work[i] = x[i] + h[i]
		plus, err := logP(work)
		if err != nil {
			return nil, err
		}
		work[i] = x[i] - h[i]
		minus, err := logP(work)
		if err != nil {
			return nil, err
		}
		work[i] = x[i]
		hess[i][i] = (plus - 2*center + minus) / (h[i] * h[i])
	}

	for i := 0; i < f; i++ {
		for j := i + 1; j < f; j++ {
			work[i] = x[i] + h[i]
			work[j] = x[j] + h[j]
			pp, err := logP(work)
			if err != nil {
				return nil, err
			}
			work[j] = x[j] - h[j]
			pm, err := logP(work)
			if err != nil {
				return nil, err
			}
			work[i] = x[i] - h[i]
			mm, err := logP(work)
			if err != nil {
				return nil, err
			}
			work[j] = x[j] + h[j]
			mp, err := logP(work)
			if err != nil {
				return nil, err
			}
			work[i], work[j] = x[i], x[j]

			v := (pp - pm - mp + mm) / (4 * h[i] * h[j])
			hess[i][j] = v
			hess[j][i] = v
		}
	}
	return hess, nil
}

func stepSize(v float64) float64 {
	s := math.Abs(v) * 1e-3
	if s < 1e-4 {
		s = 1e-4
	}
	return s
}

// subspaceBasis returns the F-codim eigenvectors of hess with the most
// negative eigenvalues (spec §4.6).
func subspaceBasis(hess [][]float64, codim int) [][]float64 {
	values, vectors := jacobiEigen(hess)
	f := len(values)
	order := make([]int, f)
	for i := range order {
		order[i] = i
	}
	// Ascending by eigenvalue: most negative first.
	for i := 1; i < f; i++ {
		for j := i; j > 0 && values[order[j]] < values[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	keep := f - codim
	basis := make([][]float64, 0, keep)
	for i := 0; i < keep; i++ {
		basis = append(basis, vectors[order[i]])
	}
	return basis
}

// projectOnto projects v onto the subspace spanned by the orthonormal basis
// vectors in basis.
func projectOnto(v []float64, basis [][]float64) []float64 {
	f := len(v)
	out := make([]float64, f)
	for _, b := range basis {
		var dot float64
		for j := 0; j < f; j++ {
			dot += v[j] * b[j]
		}
		for j := 0; j < f; j++ {
			out[j] += dot * b[j]
		}
	}
	return out
}
