package spatial

import (
	"math"
	"sort"
	"testing"

	"github.com/arimanyus/meanshift/pkg/datamatrix"
)

type denseArray struct {
	shape []int
	data  []float64
}

func (d *denseArray) Rank() int                   { return len(d.shape) }
func (d *denseArray) Len(axis int) int             { return d.shape[axis] }
func (d *denseArray) Kind() datamatrix.ElemKind     { return datamatrix.Float64 }
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

func collect(idx Index, dm *datamatrix.DataMatrix, q []float64, radius float64) []int {
	var got []int
	idx.Build(dm)
	idx.Query(q, radius, func(i int, fv []float64, w float64) {
		got = append(got, i)
	})
	sort.Ints(got)
	return got
}

func TestBruteForceAndKDTreeAgree(t *testing.T) {
	points := [][]float64{
		{0, 0}, {1, 0}, {0, 1}, {5, 5}, {10, 10}, {10.5, 10}, {-3, -3}, {2, 2}, {2.1, 2.1}, {7, 1},
	}
	dm := buildMatrix(t, points)

	bf := NewBruteForce()
	kd := NewKDTree()

	for _, q := range [][]float64{{0, 0}, {10, 10}, {2, 2}, {100, 100}} {
		for _, radius := range []float64{0.5, 2, 5} {
			a := collect(bf, dm, q, radius)
			b := collect(kd, dm, q, radius)
			if len(a) != len(b) {
				t.Fatalf("q=%v radius=%v: brute=%v kdtree=%v", q, radius, a, b)
			}
			for i := range a {
				if a[i] != b[i] {
					t.Fatalf("q=%v radius=%v: brute=%v kdtree=%v", q, radius, a, b)
				}
			}
		}
	}
}

func TestQueryInfiniteRadiusVisitsAll(t *testing.T) {
	points := [][]float64{{0, 0}, {100, 100}, {-50, 50}}
	dm := buildMatrix(t, points)
	bf := NewBruteForce()
	bf.Build(dm)
	count := 0
	bf.Query([]float64{0, 0}, math.Inf(1), func(i int, fv []float64, w float64) { count++ })
	if count != 3 {
		t.Fatalf("expected all 3 exemplars visited, got %d", count)
	}
}
