package density

import (
	"math"
	"testing"

	"github.com/arimanyus/meanshift/pkg/datamatrix"
	"github.com/arimanyus/meanshift/pkg/kernel"
	"github.com/arimanyus/meanshift/pkg/spatial"
)

type denseArray struct {
	shape []int
	data  []float64
}

func (d *denseArray) Rank() int               { return len(d.shape) }
func (d *denseArray) Len(axis int) int         { return d.shape[axis] }
func (d *denseArray) Kind() datamatrix.ElemKind { return datamatrix.Float64 }
func (d *denseArray) At(idx []int) float64 {
	off := 0
	for i, v := range idx {
		off = off*d.shape[i] + v
	}
	return d.data[off]
}

func buildMatrix(t *testing.T, points [][]float64) *datamatrix.DataMatrix {
	t.Helper()
	n := len(points)
	f := len(points[0])
	flat := make([]float64, 0, n*f)
	for _, p := range points {
		flat = append(flat, p...)
	}
	arr := &denseArray{shape: []int{n, f}, data: flat}
	dm := datamatrix.New()
	if err := dm.Set(arr, []datamatrix.DimType{datamatrix.Data, datamatrix.Feature}, -1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	return dm
}

func newDensity(t *testing.T, points [][]float64, kernelName string) *Density {
	t.Helper()
	return newDensityQ(t, points, kernelName, 1)
}

// newDensityQ builds a Density with an explicit quality, for tests that need
// to exercise the quality-derived truncation radius directly.
func newDensityQ(t *testing.T, points [][]float64, kernelName string, quality float64) *Density {
	t.Helper()
	dm := buildMatrix(t, points)
	k, params, err := kernel.ByName(kernelName)
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	cfg, err := k.NewConfig(len(points[0]), params)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	idx := spatial.New(spatial.BruteForceName)
	d, err := New(dm, idx, k, cfg, quality)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestProbPeaksAtExemplarUnderGaussian(t *testing.T) {
	points := [][]float64{{0, 0}, {0, 0}, {10, 10}}
	d := newDensity(t, points, "gaussian")

	pNear, err := d.Prob([]float64{0, 0})
	if err != nil {
		t.Fatalf("Prob: %v", err)
	}
	pFar, err := d.Prob([]float64{5, 5})
	if err != nil {
		t.Fatalf("Prob: %v", err)
	}
	if pNear <= pFar {
		t.Fatalf("expected density at a doubled exemplar to exceed density at the midpoint: near=%v far=%v", pNear, pFar)
	}
}

func TestTotalWeightAndNormCached(t *testing.T) {
	points := [][]float64{{0, 0}, {1, 1}, {2, 2}}
	d := newDensity(t, points, "gaussian")

	w1, err := d.TotalWeight()
	if err != nil {
		t.Fatalf("TotalWeight: %v", err)
	}
	if w1 != 3 {
		t.Fatalf("expected W=3, got %v", w1)
	}
	z1, err := d.Norm()
	if err != nil {
		t.Fatalf("Norm: %v", err)
	}

	// Cached value must survive repeated calls without Invalidate.
	z2, _ := d.Norm()
	if z1 != z2 {
		t.Fatalf("expected cached Z to be stable: %v vs %v", z1, z2)
	}

	d.Invalidate()
	z3, err := d.Norm()
	if err != nil {
		t.Fatalf("Norm after invalidate: %v", err)
	}
	if math.Abs(z3-z1) > 1e-9 {
		t.Fatalf("expected recomputed Z to match prior value: %v vs %v", z3, z1)
	}
}

func TestWeightedMeanConvergesTowardCluster(t *testing.T) {
	points := [][]float64{{-0.1, 0}, {0.1, 0}, {0, 0.1}, {0, -0.1}, {20, 20}}
	d := newDensity(t, points, "gaussian")

	q := []float64{5, 5}
	newQ, step2, err := d.WeightedMean(q)
	if err != nil {
		t.Fatalf("WeightedMean: %v", err)
	}
	if step2 <= 0 {
		t.Fatalf("expected a nonzero step, got %v", step2)
	}
	// The four tightly clustered points near the origin should outweigh the
	// single distant point under a Gaussian kernel from q=(5,5); the updated
	// point should move closer to the origin cluster than the step started.
	distOld := math.Hypot(q[0], q[1])
	distNew := math.Hypot(newQ[0], newQ[1])
	if distNew >= distOld {
		t.Fatalf("expected weighted mean to move toward the dense cluster: old=%v new=%v", distOld, distNew)
	}
}

func TestWeightedMeanEmptyKernel(t *testing.T) {
	points := [][]float64{{0, 0}, {1, 0}}
	d := newDensity(t, points, "uniform")

	_, _, err := d.WeightedMean([]float64{1000, 1000})
	if err != ErrEmptyKernel {
		t.Fatalf("expected ErrEmptyKernel far from all exemplars under a finite-support kernel, got %v", err)
	}
}

func TestLooNLLFinite(t *testing.T) {
	points := [][]float64{{0, 0}, {0.2, 0}, {0, 0.2}, {5, 5}}
	d := newDensity(t, points, "gaussian")

	nll, err := d.LooNLL(1e-6)
	if err != nil {
		t.Fatalf("LooNLL: %v", err)
	}
	if math.IsNaN(nll) || math.IsInf(nll, 0) {
		t.Fatalf("expected finite nll, got %v", nll)
	}
	if nll < 0 {
		t.Fatalf("expected nonnegative average nll for a limit-bounded density, got %v", nll)
	}
}
