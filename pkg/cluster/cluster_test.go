package cluster

import (
	"testing"

	"github.com/arimanyus/meanshift/pkg/balls"
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

func TestClusterFindsTwoSeparatedBlobs(t *testing.T) {
	points := [][]float64{
		{0, 0}, {0.1, 0}, {0, 0.1}, {-0.1, 0}, {0, -0.1},
		{10, 10}, {10.1, 10}, {10, 10.1}, {9.9, 10}, {10, 9.9},
	}
	dm := buildMatrix(t, points)

	k, _, err := kernel.ByName("gaussian")
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	cfg, err := k.NewConfig(2, "")
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	idxSpatial := spatial.New(spatial.BruteForceName)
	d, err := density.New(dm, idxSpatial, k, cfg, 1)
	if err != nil {
		t.Fatalf("density.New: %v", err)
	}

	idxBalls := balls.New(balls.BruteName, 2, 0.5)
	p := Params{Epsilon: 1e-6, IterCap: 200, IdentDist: 0.01, MergeRange: 1, MergeCheckStep: 4}

	result, err := Cluster(dm, d, idxBalls, p)
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	if len(result.Modes) != 2 {
		t.Fatalf("expected 2 clusters, got %d modes=%v", len(result.Modes), result.Modes)
	}
	if len(result.Assignments) != len(points) {
		t.Fatalf("expected one assignment per exemplar, got %d", len(result.Assignments))
	}
	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			if result.Assignments[i] != result.Assignments[j] {
				t.Fatalf("expected first blob's exemplars to share a cluster id: %v", result.Assignments)
			}
		}
	}
	for i := 5; i < 10; i++ {
		for j := i + 1; j < 10; j++ {
			if result.Assignments[i] != result.Assignments[j] {
				t.Fatalf("expected second blob's exemplars to share a cluster id: %v", result.Assignments)
			}
		}
	}
	if result.Assignments[0] == result.Assignments[5] {
		t.Fatalf("expected the two separated blobs to land in different clusters")
	}
}

func TestAssignClusterMatchesExistingClustering(t *testing.T) {
	points := [][]float64{{0, 0}, {0.1, 0}, {0, 0.1}, {20, 20}, {20.1, 20}}
	dm := buildMatrix(t, points)

	k, _, err := kernel.ByName("gaussian")
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	cfg, err := k.NewConfig(2, "")
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	idxSpatial := spatial.New(spatial.BruteForceName)
	d, err := density.New(dm, idxSpatial, k, cfg, 1)
	if err != nil {
		t.Fatalf("density.New: %v", err)
	}

	idxBalls := balls.New(balls.BruteName, 2, 0.5)
	p := Params{Epsilon: 1e-6, IterCap: 200, IdentDist: 0.01, MergeRange: 1, MergeCheckStep: 4}

	if _, err := Cluster(dm, d, idxBalls, p); err != nil {
		t.Fatalf("Cluster: %v", err)
	}

	id, _, err := AssignCluster(d, idxBalls, []float64{0.05, 0.05}, p)
	if err != nil {
		t.Fatalf("AssignCluster: %v", err)
	}
	if id == -1 {
		t.Fatalf("expected a query near the first blob to resolve to an existing cluster")
	}

	farID, _, err := AssignCluster(d, idxBalls, []float64{1000, 1000}, p)
	if err != nil {
		t.Fatalf("AssignCluster: %v", err)
	}
	if farID != -1 {
		t.Fatalf("expected a query far from every exemplar and every ball to return -1, got %d", farID)
	}
}
