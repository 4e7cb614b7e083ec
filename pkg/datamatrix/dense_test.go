package datamatrix

import "testing"

func TestNewDenseRows(t *testing.T) {
	d := NewDenseRows([][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})

	if d.Rank() != 2 {
		t.Fatalf("Rank() = %d, want 2", d.Rank())
	}
	if d.Len(0) != 2 || d.Len(1) != 3 {
		t.Fatalf("shape = (%d, %d), want (2, 3)", d.Len(0), d.Len(1))
	}
	if d.Kind() != Float64 {
		t.Fatalf("Kind() = %v, want Float64", d.Kind())
	}

	want := [][]float64{{1, 2, 3}, {4, 5, 6}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if got := d.At([]int{i, j}); got != want[i][j] {
				t.Errorf("At(%d,%d) = %v, want %v", i, j, got, want[i][j])
			}
		}
	}
}

func TestNewDenseRowsEmpty(t *testing.T) {
	d := NewDenseRows(nil)
	if d.Rank() != 2 || d.Len(0) != 0 || d.Len(1) != 0 {
		t.Fatalf("empty NewDenseRows should yield a (0,0) array, got rank=%d shape=(%d,%d)", d.Rank(), d.Len(0), d.Len(1))
	}
}

func TestDenseAsDataMatrix(t *testing.T) {
	arr := NewDenseRows([][]float64{
		{0, 0},
		{1, 1},
		{2, 2},
	})

	dm := New()
	if err := dm.Set(arr, []DimType{Data, Feature}, -1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if dm.Exemplars() != 3 {
		t.Fatalf("Exemplars() = %d, want 3", dm.Exemplars())
	}
	f, err := dm.Features()
	if err != nil {
		t.Fatalf("Features: %v", err)
	}
	if f != 2 {
		t.Fatalf("Features() = %d, want 2", f)
	}
}
