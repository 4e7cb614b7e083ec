package meanshift

import (
	"math"
	"testing"

	"github.com/arimanyus/meanshift/pkg/datamatrix"
	"github.com/arimanyus/meanshift/pkg/density"
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

func newDensity(t *testing.T, points [][]float64, kernelName string) *density.Density {
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
	k, params, err := kernel.ByName(kernelName)
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	cfg, err := k.NewConfig(f, params)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	idx := spatial.New(spatial.BruteForceName)
	d, err := density.New(dm, idx, k, cfg, 1)
	if err != nil {
		t.Fatalf("density.New: %v", err)
	}
	return d
}

func TestModeConvergesToClusterCenter(t *testing.T) {
	points := [][]float64{{-0.1, 0}, {0.1, 0}, {0, 0.1}, {0, -0.1}}
	d := newDensity(t, points, "gaussian")

	mode, err := Mode(d, []float64{2, 2}, Params{Epsilon: 1e-6, IterCap: 200})
	if err != nil {
		t.Fatalf("Mode: %v", err)
	}
	if math.Hypot(mode[0], mode[1]) > 0.05 {
		t.Fatalf("expected mode near origin cluster, got %v", mode)
	}
}

func TestModeIsFixedPoint(t *testing.T) {
	points := [][]float64{{0, 0}, {1, 1}, {2, 2}, {-1, 3}}
	d := newDensity(t, points, "gaussian")

	mode, err := Mode(d, []float64{0.5, 0.5}, Params{Epsilon: 1e-7, IterCap: 500})
	if err != nil {
		t.Fatalf("Mode: %v", err)
	}

	next, step2, err := d.WeightedMean(mode)
	if err != nil {
		t.Fatalf("WeightedMean at mode: %v", err)
	}
	_ = next
	if step2 > 1e-6 {
		t.Fatalf("expected mode to be close to a fixed point, step2=%v", step2)
	}
}

func TestManifoldWithZeroCodimMatchesMode(t *testing.T) {
	points := [][]float64{{-0.1, 0}, {0.1, 0}, {0, 0.1}, {0, -0.1}}
	d := newDensity(t, points, "gaussian")

	seed := []float64{2, 2}
	mode, err := Mode(d, seed, Params{Epsilon: 1e-6, IterCap: 200})
	if err != nil {
		t.Fatalf("Mode: %v", err)
	}
	manifold, err := Manifold(d, seed, 0, true, Params{Epsilon: 1e-6, IterCap: 200})
	if err != nil {
		t.Fatalf("Manifold: %v", err)
	}
	if math.Hypot(mode[0]-manifold[0], mode[1]-manifold[1]) > 0.05 {
		t.Fatalf("expected codim=0 manifold to match plain mode: mode=%v manifold=%v", mode, manifold)
	}
}

func TestManifoldFullCodimStaysAtSeed(t *testing.T) {
	points := [][]float64{{-0.1, 0}, {0.1, 0}, {0, 0.1}, {0, -0.1}}
	d := newDensity(t, points, "gaussian")

	seed := []float64{2, 2}
	out, err := Manifold(d, seed, 2, true, Params{Epsilon: 1e-6, IterCap: 50})
	if err != nil {
		t.Fatalf("Manifold: %v", err)
	}
	if math.Hypot(out[0]-seed[0], out[1]-seed[1]) > 1e-9 {
		t.Fatalf("expected codim=F manifold update to vanish, seed=%v out=%v", seed, out)
	}
}

func TestManifoldReusesEigenbasisWhenNotAlwaysHessian(t *testing.T) {
	points := [][]float64{{-0.1, 0}, {0.1, 0}, {0, 0.1}, {0, -0.1}, {3, 3}}
	d := newDensity(t, points, "gaussian")

	seed := []float64{1, 1}
	out, err := Manifold(d, seed, 1, false, Params{Epsilon: 1e-6, IterCap: 200})
	if err != nil {
		t.Fatalf("Manifold: %v", err)
	}
	if math.IsNaN(out[0]) || math.IsNaN(out[1]) {
		t.Fatalf("expected finite manifold result, got %v", out)
	}
}
