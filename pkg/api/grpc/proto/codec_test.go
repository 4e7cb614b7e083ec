package proto

import "testing"

func TestJSONCodecRoundTrip(t *testing.T) {
	c := JSONCodec{}
	if c.Name() != "json" {
		t.Fatalf("Name() = %q, want %q", c.Name(), "json")
	}

	req := &ProbRequest{Model: "demo", Query: []float64{0.5, 1.5, -2}}

	data, err := c.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out ProbRequest
	if err := c.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if out.Model != req.Model {
		t.Errorf("Model = %q, want %q", out.Model, req.Model)
	}
	if len(out.Query) != len(req.Query) {
		t.Fatalf("Query length = %d, want %d", len(out.Query), len(req.Query))
	}
	for i := range req.Query {
		if out.Query[i] != req.Query[i] {
			t.Errorf("Query[%d] = %v, want %v", i, out.Query[i], req.Query[i])
		}
	}
}
