package sampler

import (
	"math"
	"testing"

	"github.com/arimanyus/meanshift/internal/rng"
	"github.com/arimanyus/meanshift/pkg/datamatrix"
	"github.com/arimanyus/meanshift/pkg/kernel"
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

func mustKernel(t *testing.T, name string, dims int) (kernel.Kernel, *kernel.Config) {
	t.Helper()
	k, params, err := kernel.ByName(name)
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	cfg, err := k.NewConfig(dims, params)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	return k, cfg
}

func TestDrawIsDeterministicForSameIndex(t *testing.T) {
	dm := buildMatrix(t, [][]float64{{0, 0}, {5, 5}, {10, 10}})
	k, cfg := mustKernel(t, "gaussian", 2)
	s := New(dm, k, cfg)

	idx := rng.Index{StreamHi: 1, StreamLo: 2, Sample: 3}
	a, err := s.Draw(rng.New(idx))
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	b, err := s.Draw(rng.New(idx))
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if a[0] != b[0] || a[1] != b[1] {
		t.Fatalf("expected identical index to reproduce identical draw: %v vs %v", a, b)
	}

	idx2 := rng.Index{StreamHi: 1, StreamLo: 2, Sample: 4}
	c, err := s.Draw(rng.New(idx2))
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if c[0] == a[0] && c[1] == a[1] {
		t.Fatalf("expected a different sample index to produce a different draw (allowing for rare collision): %v", c)
	}
}

func TestBootstrapReturnsExemplarExactly(t *testing.T) {
	points := [][]float64{{1, 2}, {3, 4}}
	dm := buildMatrix(t, points)
	k, cfg := mustKernel(t, "gaussian", 2)
	s := New(dm, k, cfg)

	out, err := s.Bootstrap(rng.New(rng.Index{Sample: 7}))
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	matched := false
	for _, p := range points {
		if out[0] == p[0] && out[1] == p[1] {
			matched = true
		}
	}
	if !matched {
		t.Fatalf("expected bootstrap draw to exactly reproduce an exemplar, got %v", out)
	}
}

func TestGibbsProductDegenerateSingleSlot(t *testing.T) {
	dm := buildMatrix(t, [][]float64{{0, 0}, {1, 1}})
	k, cfg := mustKernel(t, "gaussian", 2)
	slots := []Slot{{DM: dm, K: k, Cfg: cfg}}

	out, err := GibbsProduct(slots, ProductParams{Gibbs: 3}, FakeNone, rng.New(rng.Index{Sample: 1}))
	if err != nil {
		t.Fatalf("GibbsProduct: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected a 2-feature draw, got %v", out)
	}
}

func TestGibbsProductTwoSlotsFakeMean(t *testing.T) {
	dmA := buildMatrix(t, [][]float64{{0, 0}, {10, 10}})
	dmB := buildMatrix(t, [][]float64{{0, 0.1}, {10, 10.1}})
	k, cfgA := mustKernel(t, "gaussian", 2)
	_, cfgB := mustKernel(t, "gaussian", 2)

	slots := []Slot{{DM: dmA, K: k, Cfg: cfgA}, {DM: dmB, K: k, Cfg: cfgB}}
	p := ProductParams{Gibbs: 5, MCI: 20}

	out, err := GibbsProduct(slots, p, FakeMean, rng.New(rng.Index{Sample: 42}))
	if err != nil {
		t.Fatalf("GibbsProduct: %v", err)
	}
	if math.IsNaN(out[0]) || math.IsNaN(out[1]) {
		t.Fatalf("expected finite fake-mean output, got %v", out)
	}
	// The two components both live near either (0,0) or (10,10); the product
	// should concentrate around one of those two centres, not drift to some
	// arbitrary midpoint far from both.
	near0 := math.Hypot(out[0], out[1])
	near10 := math.Hypot(out[0]-10, out[1]-10)
	if near0 > 1 && near10 > 1 {
		t.Fatalf("expected the product draw to land near one of the two shared modes, got %v", out)
	}
}

func TestGibbsProductFakeModeFinite(t *testing.T) {
	dmA := buildMatrix(t, [][]float64{{0, 0}})
	dmB := buildMatrix(t, [][]float64{{0.2, -0.1}})
	k, cfgA := mustKernel(t, "gaussian", 2)
	_, cfgB := mustKernel(t, "gaussian", 2)

	slots := []Slot{{DM: dmA, K: k, Cfg: cfgA}, {DM: dmB, K: k, Cfg: cfgB}}
	out, err := GibbsProduct(slots, ProductParams{Gibbs: 2}, FakeMode, rng.New(rng.Index{Sample: 9}))
	if err != nil {
		t.Fatalf("GibbsProduct: %v", err)
	}
	if math.IsNaN(out[0]) || math.IsNaN(out[1]) || math.IsInf(out[0], 0) || math.IsInf(out[1], 0) {
		t.Fatalf("expected a finite approximate mode, got %v", out)
	}
}
