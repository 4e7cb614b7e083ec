package datamatrix

// Dense is a row-major float64 ArrayView for callers that hold their data as
// plain Go slices rather than a native array object (spec §6's "numeric-array
// view" binding-layer interface, given a concrete in-process implementation
// for the REST/gRPC/CLI surface built on top of this package).
type Dense struct {
	shape []int
	data  []float64
}

// NewDense wraps data (row-major, len(data) == product(shape)) as an
// ArrayView of the given shape.
func NewDense(shape []int, data []float64) *Dense {
	return &Dense{shape: append([]int(nil), shape...), data: data}
}

// NewDenseRows builds a rank-2 (exemplar x feature) Dense array from rows of
// equal length, the common shape for the service layer's JSON request
// bodies.
func NewDenseRows(rows [][]float64) *Dense {
	if len(rows) == 0 {
		return NewDense([]int{0, 0}, nil)
	}
	f := len(rows[0])
	data := make([]float64, 0, len(rows)*f)
	for _, r := range rows {
		data = append(data, r...)
	}
	return NewDense([]int{len(rows), f}, data)
}

func (d *Dense) Rank() int        { return len(d.shape) }
func (d *Dense) Len(axis int) int { return d.shape[axis] }
func (d *Dense) Kind() ElemKind   { return Float64 }

func (d *Dense) At(idx []int) float64 {
	off := 0
	for i, v := range idx {
		off = off*d.shape[i] + v
	}
	return d.data[off]
}
