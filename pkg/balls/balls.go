// Package balls stores cluster-center positions and answers "is there an
// existing cluster within merge_range of this point?" (spec §3, §4.4).
// Grounded on pkg/ivf/index.go's centroid list (a flat slice of vectors
// queried by nearest-centroid search) and pkg/hnsw/node.go's ID-keyed
// storage idiom.
package balls

// Index is the contract every balls-index variant implements. All variants
// must return identical results; they differ only in query performance.
type Index interface {
	// Add appends p (copied) as a new cluster center and returns its id.
	Add(p []float64) int
	// NearestWithin returns the id of the nearest stored point within
	// distance r of p, ties broken by smaller id, or ok=false if none
	// qualifies.
	NearestWithin(p []float64, r float64) (id int, ok bool)
	// Count returns the number of stored points.
	Count() int
	// Pos returns the stored vector for id (read-only view).
	Pos(id int) []float64
	// Dims returns F, the feature dimensionality.
	Dims() int
}

// Name identifies a registered balls-index implementation.
type Name string

const (
	BruteName Name = "brute"
	HashName  Name = "hashgrid"
)

// New constructs a balls index of the given type and dimensionality.
// cellSize is the hash-grid cell width; pass the expected merge_range so
// each query touches O(1) cells.
func New(name Name, dims int, cellSize float64) Index {
	switch name {
	case HashName:
		return NewHashGrid(dims, cellSize)
	default:
		return NewBrute(dims)
	}
}
