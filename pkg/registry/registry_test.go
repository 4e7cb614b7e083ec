package registry

import (
	"testing"

	"github.com/arimanyus/meanshift/pkg/datamatrix"
	"github.com/arimanyus/meanshift/pkg/kde"
)

func testParams() kde.Params {
	return kde.Params{Quality: 1, Epsilon: 1e-6, IterCap: 200, IdentDist: 0.01, MergeRange: 1, MergeCheckStep: 4}
}

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

func TestRegistry_CreateAndGet(t *testing.T) {
	r := New(10)

	model, err := r.Create("prices", testParams(), DefaultQuota())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if model.Name != "prices" {
		t.Errorf("expected name 'prices', got %q", model.Name)
	}

	got, err := r.Get("prices")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != model {
		t.Fatal("Get returned a different model instance")
	}
}

func TestRegistry_CreateDuplicateRejected(t *testing.T) {
	r := New(10)
	if _, err := r.Create("prices", testParams(), DefaultQuota()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := r.Create("prices", testParams(), DefaultQuota()); err == nil {
		t.Fatal("expected error creating duplicate model")
	}
}

func TestRegistry_CapacityEnforced(t *testing.T) {
	r := New(1)
	if _, err := r.Create("a", testParams(), DefaultQuota()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := r.Create("b", testParams(), DefaultQuota()); err == nil {
		t.Fatal("expected error creating model beyond capacity")
	}
}

func TestRegistry_DeleteAndList(t *testing.T) {
	r := New(10)
	if _, err := r.Create("a", testParams(), DefaultQuota()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := r.Create("b", testParams(), DefaultQuota()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(r.List()) != 2 {
		t.Fatalf("expected 2 models, got %d", len(r.List()))
	}
	if err := r.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.Get("a"); err == nil {
		t.Fatal("expected error getting deleted model")
	}
	if len(r.List()) != 1 {
		t.Fatalf("expected 1 model after delete, got %d", len(r.List()))
	}
}

func TestModel_DoEnforcesDimensionQuota(t *testing.T) {
	r := New(10)
	model, err := r.Create("small", testParams(), Quota{MaxDimensions: 1, MaxExemplars: 100, RateLimitQPS: 0})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	arr := arrayOf([][]float64{{0, 0}, {1, 1}})
	err = model.Do(func(f *kde.Facade) error {
		return f.SetData(arr, []datamatrix.DimType{datamatrix.Data, datamatrix.Feature}, -1)
	})
	if err == nil {
		t.Fatal("expected dimension quota violation (2 dims > max 1)")
	}
}

func TestModel_DoEnforcesRateLimit(t *testing.T) {
	r := New(10)
	model, err := r.Create("limited", testParams(), Quota{RateLimitQPS: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	noop := func(f *kde.Facade) error { return nil }
	if err := model.Do(noop); err != nil {
		t.Fatalf("first Do: %v", err)
	}
	if err := model.Do(noop); err == nil {
		t.Fatal("expected second call within the same second to hit the rate limit")
	}
}

func TestModel_DoTracksUsage(t *testing.T) {
	r := New(10)
	model, err := r.Create("tracked", testParams(), DefaultQuota())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	noop := func(f *kde.Facade) error { return nil }
	if err := model.Do(noop); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if err := model.Do(noop); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if model.Usage.QueryCount != 2 {
		t.Fatalf("expected QueryCount 2, got %d", model.Usage.QueryCount)
	}
}
