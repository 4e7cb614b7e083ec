package kde

import (
	"math"
	"testing"

	"github.com/arimanyus/meanshift/internal/kerr"
	"github.com/arimanyus/meanshift/internal/rng"
	"github.com/arimanyus/meanshift/pkg/datamatrix"
	"github.com/arimanyus/meanshift/pkg/sampler"
	"github.com/arimanyus/meanshift/pkg/spatial"
)

type denseArray struct {
	shape []int
	data  []float64
}

func (d *denseArray) Rank() int                { return len(d.shape) }
func (d *denseArray) Len(axis int) int         { return d.shape[axis] }
func (d *denseArray) Kind() datamatrix.ElemKind { return datamatrix.Float64 }
func (d *denseArray) At(idx []int) float64 {
	off := 0
	for i, v := range idx {
		off = off*d.shape[i] + v
	}
	return d.data[off]
}

func arrayOf(points [][]float64) *denseArray {
	n := len(points)
	f := len(points[0])
	flat := make([]float64, 0, n*f)
	for _, p := range points {
		flat = append(flat, p...)
	}
	return &denseArray{shape: []int{n, f}, data: flat}
}

func defaultParams() Params {
	return Params{Quality: 1, Epsilon: 1e-6, IterCap: 200, IdentDist: 0.01, MergeRange: 1, MergeCheckStep: 4}
}

func twoBlobs(t *testing.T) *Facade {
	t.Helper()
	f, err := New(defaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	points := [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1}, {-0.1, 0}, {0, -0.1},
		{10, 10}, {10.1, 10}, {10, 10.1}, {9.9, 10}, {10, 9.9},
	}
	arr := arrayOf(points)
	if err := f.SetData(arr, []datamatrix.DimType{datamatrix.Data, datamatrix.Feature}, -1); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	if err := f.SetKernel("gaussian"); err != nil {
		t.Fatalf("SetKernel: %v", err)
	}
	return f
}

func TestProbBeforeKernelIsStateError(t *testing.T) {
	f, err := New(defaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	arr := arrayOf([][]float64{{0, 0}, {1, 1}})
	if err := f.SetData(arr, []datamatrix.DimType{datamatrix.Data, datamatrix.Feature}, -1); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	_, err = f.Prob([]float64{0, 0})
	if err == nil {
		t.Fatalf("expected StateError before set_kernel")
	}
	if !kerr.As(err, kerr.StateError) {
		t.Fatalf("expected StateError, got %v", err)
	}
}

func TestProbMatchesUniformKernelClosedForm(t *testing.T) {
	f, err := New(defaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	arr := arrayOf([][]float64{{2, 3}})
	if err := f.SetData(arr, []datamatrix.DimType{datamatrix.Data, datamatrix.Feature}, -1); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	if err := f.SetKernel("uniform"); err != nil {
		t.Fatalf("SetKernel: %v", err)
	}

	p, err := f.Prob([]float64{2, 3})
	if err != nil {
		t.Fatalf("Prob: %v", err)
	}
	want := 1 / math.Pi
	if math.Abs(p-want) > 1e-9 {
		t.Fatalf("Prob((2,3)) = %v, want %v", p, want)
	}

	p2, err := f.Prob([]float64{5, 5})
	if err != nil {
		t.Fatalf("Prob: %v", err)
	}
	if p2 != 0 {
		t.Fatalf("Prob((5,5)) = %v, want 0", p2)
	}
}

func TestClusterFindsTwoBlobsAndAssignsConsistently(t *testing.T) {
	f := twoBlobs(t)
	result, err := f.Cluster()
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	if len(result.Modes) != 2 {
		t.Fatalf("expected 2 modes, got %d", len(result.Modes))
	}
	if result.Assignments[0] == result.Assignments[5] {
		t.Fatalf("expected the two blobs in different clusters")
	}

	id, _, err := f.AssignCluster([]float64{0.05, 0.05})
	if err != nil {
		t.Fatalf("AssignCluster: %v", err)
	}
	if id != result.Assignments[0] {
		t.Fatalf("AssignCluster near first blob = %d, want %d", id, result.Assignments[0])
	}
}

func TestAssignClusterWithoutPriorClusterIsStateError(t *testing.T) {
	f := twoBlobs(t)
	_, _, err := f.AssignCluster([]float64{0, 0})
	if err == nil || !kerr.As(err, kerr.StateError) {
		t.Fatalf("expected StateError, got %v", err)
	}
}

func TestModeIsFixedPointOfItself(t *testing.T) {
	f := twoBlobs(t)
	mode, err := f.Mode([]float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("Mode: %v", err)
	}
	again, err := f.Mode(mode)
	if err != nil {
		t.Fatalf("Mode: %v", err)
	}
	for j := range mode {
		if math.Abs(mode[j]-again[j]) > 1e-4 {
			t.Fatalf("mode is not a fixed point: %v vs %v", mode, again)
		}
	}
}

func TestCacheCoherenceAfterInvalidatingSetter(t *testing.T) {
	f := twoBlobs(t)
	p1, err := f.Prob([]float64{0, 0})
	if err != nil {
		t.Fatalf("Prob: %v", err)
	}

	// set_scale is an invalidating setter: the next prob() must recompute Z
	// from scratch and agree with a freshly built façade of equivalent
	// configuration (spec §8 "Cache coherence").
	mult := f.dm.Mult()
	if err := f.SetScale(append([]float64(nil), mult...), f.dm.WeightScale()); err != nil {
		t.Fatalf("SetScale: %v", err)
	}
	p2, err := f.Prob([]float64{0, 0})
	if err != nil {
		t.Fatalf("Prob: %v", err)
	}
	if math.Abs(p1-p2) > 1e-9 {
		t.Fatalf("prob changed after a no-op rescale: %v vs %v", p1, p2)
	}
}

func TestSetSpatialDoesNotChangeProb(t *testing.T) {
	f := twoBlobs(t)
	p1, err := f.Prob([]float64{3, 3})
	if err != nil {
		t.Fatalf("Prob: %v", err)
	}
	if err := f.SetSpatial(spatial.KDTreeName); err != nil {
		t.Fatalf("SetSpatial: %v", err)
	}
	p2, err := f.Prob([]float64{3, 3})
	if err != nil {
		t.Fatalf("Prob: %v", err)
	}
	if math.Abs(p1-p2) > 1e-6 {
		t.Fatalf("spatial independence violated: %v vs %v", p1, p2)
	}
}

func TestScaleSilvermanAndScottProduceDistinctBandwidths(t *testing.T) {
	f := twoBlobs(t)
	if err := f.ScaleSilverman(); err != nil {
		t.Fatalf("ScaleSilverman: %v", err)
	}
	silverman := append([]float64(nil), f.dm.Mult()...)

	g := twoBlobs(t)
	if err := g.ScaleScott(); err != nil {
		t.Fatalf("ScaleScott: %v", err)
	}
	scott := g.dm.Mult()

	for j := range silverman {
		if silverman[j] <= 0 || scott[j] <= 0 {
			t.Fatalf("expected positive bandwidths, got silverman=%v scott=%v", silverman, scott)
		}
	}
}

func TestCopyKernelSharesConfigByReference(t *testing.T) {
	f := twoBlobs(t)
	g, err := New(defaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	arr := arrayOf([][]float64{{1, 1}, {2, 2}})
	if err := g.SetData(arr, []datamatrix.DimType{datamatrix.Data, datamatrix.Feature}, -1); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	if err := g.SetKernel("gaussian"); err != nil {
		t.Fatalf("SetKernel: %v", err)
	}
	refsBefore := f.cfg.Refs()

	if err := g.CopyKernel(f); err != nil {
		t.Fatalf("CopyKernel: %v", err)
	}
	if f.cfg.Refs() != refsBefore+1 {
		t.Fatalf("expected CopyKernel to acquire a reference, refs=%d", f.cfg.Refs())
	}
	if g.cfg != f.cfg {
		t.Fatalf("expected CopyKernel to share the same config object")
	}
}

func TestDrawAndBootstrapAreDeterministic(t *testing.T) {
	f := twoBlobs(t)
	idx := rng.Index{Sample: 5}
	a, err := f.Draw(idx)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	b, err := f.Draw(idx)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if a[0] != b[0] || a[1] != b[1] {
		t.Fatalf("expected identical index to reproduce identical draw: %v vs %v", a, b)
	}

	boot, err := f.Bootstrap(rng.Index{Sample: 11})
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if math.IsNaN(boot[0]) || math.IsNaN(boot[1]) {
		t.Fatalf("expected a finite bootstrap draw, got %v", boot)
	}
}

func TestMultProductOfTwoFacades(t *testing.T) {
	f, err := New(defaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.SetData(arrayOf([][]float64{{0, 0}, {10, 10}}), []datamatrix.DimType{datamatrix.Data, datamatrix.Feature}, -1); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	if err := f.SetKernel("gaussian"); err != nil {
		t.Fatalf("SetKernel: %v", err)
	}

	g, err := New(defaultParams())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.SetData(arrayOf([][]float64{{0, 0.1}, {10, 10.1}}), []datamatrix.DimType{datamatrix.Data, datamatrix.Feature}, -1); err != nil {
		t.Fatalf("SetData: %v", err)
	}
	if err := g.SetKernel("gaussian"); err != nil {
		t.Fatalf("SetKernel: %v", err)
	}

	out, err := f.Mult([]*Facade{g}, sampler.ProductParams{Gibbs: 5, MCI: 20}, sampler.FakeMean, rng.Index{Sample: 3})
	if err != nil {
		t.Fatalf("Mult: %v", err)
	}
	if math.IsNaN(out[0]) || math.IsNaN(out[1]) {
		t.Fatalf("expected a finite product draw, got %v", out)
	}
}

func TestModesAndProbsBatchMatchSinglePointForms(t *testing.T) {
	f := twoBlobs(t)
	seeds := [][]float64{{0.5, 0.5}, {9.5, 9.5}}
	modes, err := f.Modes(seeds)
	if err != nil {
		t.Fatalf("Modes: %v", err)
	}
	for i, seed := range seeds {
		want, err := f.Mode(seed)
		if err != nil {
			t.Fatalf("Mode: %v", err)
		}
		if math.Abs(modes[i][0]-want[0]) > 1e-9 || math.Abs(modes[i][1]-want[1]) > 1e-9 {
			t.Fatalf("Modes()[%d] = %v, want %v", i, modes[i], want)
		}
	}

	probs, err := f.Probs(seeds)
	if err != nil {
		t.Fatalf("Probs: %v", err)
	}
	for i, seed := range seeds {
		want, err := f.Prob(seed)
		if err != nil {
			t.Fatalf("Prob: %v", err)
		}
		if math.Abs(probs[i]-want) > 1e-9 {
			t.Fatalf("Probs()[%d] = %v, want %v", i, probs[i], want)
		}
	}
}
