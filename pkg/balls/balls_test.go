package balls

import "testing"

func TestBruteAndHashGridAgree(t *testing.T) {
	points := [][]float64{
		{0, 0}, {1, 0}, {0, 1}, {5, 5}, {10, 10}, {10.5, 10}, {-3, -3}, {2, 2}, {2.1, 2.1}, {7, 1},
	}

	brute := NewBrute(2)
	grid := NewHashGrid(2, 0.5)
	for _, p := range points {
		if id := brute.Add(p); id != grid.Add(p) {
			t.Fatalf("id mismatch on insert")
		}
	}

	queries := [][]float64{{0, 0}, {10, 10}, {2, 2}, {100, 100}, {2.05, 2.05}}
	radii := []float64{0.1, 0.5, 1, 5, 20}

	for _, q := range queries {
		for _, r := range radii {
			bID, bOK := brute.NearestWithin(q, r)
			gID, gOK := grid.NearestWithin(q, r)
			if bOK != gOK {
				t.Fatalf("q=%v r=%v: brute ok=%v grid ok=%v", q, r, bOK, gOK)
			}
			if bOK && bID != gID {
				t.Fatalf("q=%v r=%v: brute id=%d grid id=%d", q, r, bID, gID)
			}
		}
	}
}

func TestNearestWithinTieBreaksSmallerID(t *testing.T) {
	idx := NewBrute(2)
	idx.Add([]float64{0, 0}) // id 0
	idx.Add([]float64{2, 0}) // id 1, same distance from (1,0) as id 0

	id, ok := idx.NearestWithin([]float64{1, 0}, 5)
	if !ok || id != 0 {
		t.Fatalf("expected tie-break to id 0, got id=%d ok=%v", id, ok)
	}
}

func TestNearestWithinNoneWithinRadius(t *testing.T) {
	idx := NewBrute(2)
	idx.Add([]float64{0, 0})
	idx.Add([]float64{100, 100})

	if _, ok := idx.NearestWithin([]float64{50, 50}, 1); ok {
		t.Fatalf("expected no point within radius")
	}
}

func TestCountAndPos(t *testing.T) {
	idx := New(HashName, 2, 1.0)
	idx.Add([]float64{1, 2})
	idx.Add([]float64{3, 4})
	if idx.Count() != 2 {
		t.Fatalf("expected count 2, got %d", idx.Count())
	}
	if p := idx.Pos(1); p[0] != 3 || p[1] != 4 {
		t.Fatalf("unexpected pos for id 1: %v", p)
	}
	if idx.Dims() != 2 {
		t.Fatalf("expected dims 2, got %d", idx.Dims())
	}
}
