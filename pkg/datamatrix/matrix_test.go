package datamatrix

import (
	"math"
	"testing"

	"github.com/arimanyus/meanshift/internal/rng"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestSetBasicDataFeature(t *testing.T) {
	// 3 exemplars, 2 features each
	arr := newDenseArray([]int{3, 2}, []float64{
		1, 2,
		3, 4,
		5, 6,
	})
	dm := New()
	if err := dm.Set(arr, []DimType{Data, Feature}, -1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if dm.Exemplars() != 3 {
		t.Fatalf("Exemplars() = %d, want 3", dm.Exemplars())
	}
	f, err := dm.Features()
	if err != nil || f != 2 {
		t.Fatalf("Features() = %d, %v, want 2, nil", f, err)
	}

	buf := make([]float64, 2)
	w, err := dm.FV(1, buf, nil)
	if err != nil {
		t.Fatalf("FV: %v", err)
	}
	if w != 1 {
		t.Fatalf("weight = %v, want 1", w)
	}
	if buf[0] != 3 || buf[1] != 4 {
		t.Fatalf("fv(1) = %v, want [3 4]", buf)
	}
}

func TestSetWithWeightChannel(t *testing.T) {
	// 2 exemplars, raw feature vector of length 3: [x, y, weight]
	arr := newDenseArray([]int{2, 3}, []float64{
		1, 2, 10,
		3, 4, 20,
	})
	dm := New()
	if err := dm.Set(arr, []DimType{Data, Feature}, 2); err != nil {
		t.Fatalf("Set: %v", err)
	}
	f, _ := dm.Features()
	if f != 2 {
		t.Fatalf("Features() = %d, want 2", f)
	}

	buf := make([]float64, 2)
	var raw float64
	w, err := dm.FV(0, buf, &raw)
	if err != nil {
		t.Fatalf("FV: %v", err)
	}
	if raw != 10 || w != 10 {
		t.Fatalf("raw=%v w=%v, want 10,10", raw, w)
	}
	if buf[0] != 1 || buf[1] != 2 {
		t.Fatalf("fv = %v, want [1 2]", buf)
	}
}

func TestSetDualAxis(t *testing.T) {
	// 2x2 "image": both axes are dual (position is both exemplar id and
	// feature), one feature axis of length 1 (a single channel value).
	arr := newDenseArray([]int{2, 2, 1}, []float64{
		100, 101,
		110, 111,
	})
	dm := New()
	if err := dm.Set(arr, []DimType{Dual, Dual, Feature}, -1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if dm.Exemplars() != 4 {
		t.Fatalf("Exemplars() = %d, want 4", dm.Exemplars())
	}
	f, _ := dm.Features()
	if f != 3 {
		t.Fatalf("Features() = %d, want 3 (2 dual + 1 feature)", f)
	}

	buf := make([]float64, 3)
	// exemplar index 1 -> row-major decompose over [2,2]: row 0, col 1
	if _, err := dm.FV(1, buf, nil); err != nil {
		t.Fatalf("FV: %v", err)
	}
	if buf[0] != 0 || buf[1] != 1 || buf[2] != 101 {
		t.Fatalf("fv(1) = %v, want [0 1 101]", buf)
	}
}

func TestInvalidShape(t *testing.T) {
	arr := newDenseArray([]int{3, 2}, make([]float64, 6))
	dm := New()
	if err := dm.Set(arr, []DimType{Data}, -1); err == nil {
		t.Fatal("expected error for mismatched tag length")
	}
	if err := dm.Set(arr, []DimType{Data, 'x'}, -1); err == nil {
		t.Fatal("expected error for unrecognized tag")
	}
	if err := dm.Set(arr, []DimType{Data, Feature}, 5); err == nil {
		t.Fatal("expected error for out-of-range weight index")
	}
}

func TestSetScaleValidation(t *testing.T) {
	arr := newDenseArray([]int{3, 2}, make([]float64, 6))
	dm := New()
	if err := dm.Set(arr, []DimType{Data, Feature}, -1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := dm.SetScale([]float64{1, -1}, 1); err == nil {
		t.Fatal("expected error for non-positive mult")
	}
	if err := dm.SetScale([]float64{1, 1}, 0); err == nil {
		t.Fatal("expected error for non-positive weight_scale")
	}
	if err := dm.SetScale([]float64{2, 3}, 1); err != nil {
		t.Fatalf("SetScale: %v", err)
	}
	buf := make([]float64, 2)
	dm2 := dm
	if _, err := dm2.FV(0, buf, nil); err != nil {
		t.Fatalf("FV: %v", err)
	}
}

func TestDrawDeterministicAndWeighted(t *testing.T) {
	// Single exemplar always drawn.
	arr := newDenseArray([]int{1, 1}, []float64{5})
	dm := New()
	if err := dm.Set(arr, []DimType{Data, Feature}, -1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	src1 := rng.New(rng.Index{Sample: 7})
	src2 := rng.New(rng.Index{Sample: 7})
	i1, err := dm.Draw(src1)
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	i2, _ := dm.Draw(src2)
	if i1 != i2 {
		t.Fatalf("Draw not deterministic: %d != %d", i1, i2)
	}
	if i1 != 0 {
		t.Fatalf("Draw() = %d, want 0 (only exemplar)", i1)
	}
}

func TestStatsMatchesNaive(t *testing.T) {
	arr := newDenseArray([]int{4, 1}, []float64{1, 2, 3, 4})
	dm := New()
	if err := dm.Set(arr, []DimType{Data, Feature}, -1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	st, err := dm.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	wantMean := 2.5
	wantVar := 1.25 // population variance of 1,2,3,4
	if !almostEqual(st.Mean[0], wantMean, 1e-9) {
		t.Fatalf("mean = %v, want %v", st.Mean[0], wantMean)
	}
	if !almostEqual(st.StdDev[0]*st.StdDev[0], wantVar, 1e-9) {
		t.Fatalf("var = %v, want %v", st.StdDev[0]*st.StdDev[0], wantVar)
	}
}
