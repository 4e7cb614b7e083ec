package datamatrix

// DimType tags one axis of the backing numeric array.
type DimType byte

const (
	// Data: indexing this axis selects which exemplar is addressed.
	Data DimType = 'd'
	// Feature: indexing this axis selects which feature is addressed.
	Feature DimType = 'f'
	// Dual: this axis both selects an exemplar and contributes its index as
	// a feature value (e.g. pixel position in an image).
	Dual DimType = 'b'
)

func (t DimType) valid() bool {
	return t == Data || t == Feature || t == Dual
}
