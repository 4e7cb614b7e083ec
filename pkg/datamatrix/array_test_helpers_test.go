package datamatrix

// denseArray is a simple row-major float64 ArrayView used by the test suite,
// standing in for the binding layer's numpy-backed view in production.
type denseArray struct {
	shape []int
	data  []float64
}

func newDenseArray(shape []int, data []float64) *denseArray {
	return &denseArray{shape: shape, data: data}
}

func (d *denseArray) Rank() int        { return len(d.shape) }
func (d *denseArray) Len(axis int) int { return d.shape[axis] }
func (d *denseArray) Kind() ElemKind   { return Float64 }

func (d *denseArray) At(idx []int) float64 {
	off := 0
	for i, v := range idx {
		off = off*d.shape[i] + v
	}
	return d.data[off]
}
