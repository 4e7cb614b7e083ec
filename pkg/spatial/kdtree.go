package spatial

import (
	"math"
	"sort"

	"github.com/arimanyus/meanshift/pkg/datamatrix"
)

type kdNode struct {
	// leaf data
	idx []int // exemplar indices held at this node (leaves only)

	// internal node data
	axis        int
	split       float64
	left, right *kdNode

	// bounding box over every point in this node's subtree, used to prune
	// whole branches against the query radius.
	lo, hi []float64
}

// KDTree partitions exemplars by recursive axis-aligned median splits and
// prunes subtrees whose bounding box cannot be within radius of the query,
// per spec §4.3's "bounding-box pruning against kernel.range(config) scaled
// by mult".
type KDTree struct {
	dm   *datamatrix.DataMatrix
	f    int
	fvs  [][]float64
	ws   []float64
	root *kdNode
}

// NewKDTree constructs an unbuilt KDTree index.
func NewKDTree() *KDTree { return &KDTree{} }

const kdLeafSize = 8

func (t *KDTree) Build(dm *datamatrix.DataMatrix) error {
	f, err := dm.Features()
	if err != nil {
		return err
	}
	n := dm.Exemplars()
	fvs := make([][]float64, n)
	ws := make([]float64, n)
	idx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		buf := make([]float64, f)
		w, err := dm.FV(i, buf, nil)
		if err != nil {
			return err
		}
		fvs[i] = buf
		ws[i] = w
		if w > 0 {
			idx = append(idx, i)
		}
	}
	t.dm = dm
	t.f = f
	t.fvs = fvs
	t.ws = ws
	t.root = t.build(idx)
	return nil
}

func (t *KDTree) bbox(idx []int) (lo, hi []float64) {
	lo = make([]float64, t.f)
	hi = make([]float64, t.f)
	copy(lo, t.fvs[idx[0]])
	copy(hi, t.fvs[idx[0]])
	for _, i := range idx[1:] {
		fv := t.fvs[i]
		for j := 0; j < t.f; j++ {
			if fv[j] < lo[j] {
				lo[j] = fv[j]
			}
			if fv[j] > hi[j] {
				hi[j] = fv[j]
			}
		}
	}
	return lo, hi
}

func (t *KDTree) build(idx []int) *kdNode {
	if len(idx) == 0 {
		return nil
	}
	lo, hi := t.bbox(idx)
	if len(idx) <= kdLeafSize {
		return &kdNode{idx: idx, lo: lo, hi: hi}
	}

	axis := 0
	spread := -1.0
	for j := 0; j < t.f; j++ {
		s := hi[j] - lo[j]
		if s > spread {
			spread = s
			axis = j
		}
	}

	sort.Slice(idx, func(a, b int) bool {
		return t.fvs[idx[a]][axis] < t.fvs[idx[b]][axis]
	})
	mid := len(idx) / 2
	split := t.fvs[idx[mid]][axis]

	left := append([]int(nil), idx[:mid]...)
	right := append([]int(nil), idx[mid:]...)

	return &kdNode{
		axis:  axis,
		split: split,
		left:  t.build(left),
		right: t.build(right),
		lo:    lo,
		hi:    hi,
	}
}

// boxDistSq returns the squared distance from q to node's bounding box (0 if
// q is inside it).
func boxDistSq(q, lo, hi []float64) float64 {
	var s float64
	for j := range q {
		if q[j] < lo[j] {
			d := lo[j] - q[j]
			s += d * d
		} else if q[j] > hi[j] {
			d := q[j] - hi[j]
			s += d * d
		}
	}
	return s
}

func (t *KDTree) Query(q []float64, radius float64, visit Visit) error {
	if t.root == nil {
		return nil
	}
	r2 := radius * radius
	if radius >= infRadius {
		r2 = math.Inf(1)
	}
	t.query(t.root, q, radius, r2, visit)
	return nil
}

func (t *KDTree) query(n *kdNode, q []float64, radius, r2 float64, visit Visit) {
	if n == nil {
		return
	}
	if radius < infRadius && boxDistSq(q, n.lo, n.hi) > r2 {
		return
	}
	if n.idx != nil {
		for _, i := range n.idx {
			fv := t.fvs[i]
			if radius < infRadius {
				var s float64
				for j := range fv {
					d := q[j] - fv[j]
					s += d * d
				}
				if s > r2 {
					continue
				}
			}
			visit(i, append([]float64(nil), fv...), t.ws[i])
		}
		return
	}
	t.query(n.left, q, radius, r2, visit)
	t.query(n.right, q, radius, r2, visit)
}
