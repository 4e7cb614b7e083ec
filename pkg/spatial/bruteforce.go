package spatial

import "github.com/arimanyus/meanshift/pkg/datamatrix"

// BruteForce visits every exemplar on every query; it is the reference
// implementation every other Index variant must agree with.
type BruteForce struct {
	dm *datamatrix.DataMatrix
	f  int
}

// NewBruteForce constructs an unbuilt BruteForce index.
func NewBruteForce() *BruteForce { return &BruteForce{} }

func (b *BruteForce) Build(dm *datamatrix.DataMatrix) error {
	f, err := dm.Features()
	if err != nil {
		return err
	}
	b.dm = dm
	b.f = f
	return nil
}

func (b *BruteForce) Query(q []float64, radius float64, visit Visit) error {
	buf := make([]float64, b.f)
	delta := make([]float64, b.f)
	n := b.dm.Exemplars()
	for i := 0; i < n; i++ {
		w, err := b.dm.FV(i, buf, nil)
		if err != nil {
			return err
		}
		if w <= 0 {
			continue
		}
		if radius < infRadius {
			s := 0.0
			for j := range buf {
				delta[j] = q[j] - buf[j]
				s += delta[j] * delta[j]
			}
			if s > radius*radius {
				continue
			}
		}
		fvCopy := append([]float64(nil), buf...)
		visit(i, fvCopy, w)
	}
	return nil
}

// infRadius is the threshold above which Query treats radius as "no
// pruning possible" (used for infinite-support kernels whose quality has
// been set to 1).
const infRadius = 1e300
