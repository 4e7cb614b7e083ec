// Package spatial accelerates weighted kernel sums over a DataMatrix's
// exemplars by pruning regions that cannot contribute within a given radius
// of a query point (spec §3, §4.3). Every implementation must be
// correctness-sound (it may over-enumerate, never under-enumerate) and must
// produce results invariant to visitation order up to floating-point
// reduction order.
//
// Grounded on pkg/ivf/index.go's partition-then-prune shape and
// pkg/hnsw/search.go's candidate-list traversal shape, adapted from
// approximate nearest-neighbor search (which may miss points) to an exact,
// radius-sound enumerator (which never may).
package spatial

import "github.com/arimanyus/meanshift/pkg/datamatrix"

// Visit is called once per exemplar the index decides to enumerate. fv is
// only valid for the duration of the call; implementations must copy it if
// they retain it.
type Visit func(i int, fv []float64, w float64)

// Index is the contract every spatial acceleration structure implements.
type Index interface {
	// Build indexes dm's current exemplars. dm must outlive the Index; the
	// Index holds no ownership over it.
	Build(dm *datamatrix.DataMatrix) error
	// Query enumerates every exemplar within radius of q in scaled space
	// (sound over-approximation permitted), calling visit once per
	// enumerated exemplar. Visitation order is unspecified.
	Query(q []float64, radius float64, visit Visit) error
}

// Name identifies a registered spatial index implementation.
type Name string

const (
	BruteForceName Name = "bruteforce"
	KDTreeName     Name = "kdtree"
)

// New constructs a spatial index of the given type.
func New(name Name) Index {
	switch name {
	case KDTreeName:
		return NewKDTree()
	default:
		return NewBruteForce()
	}
}
