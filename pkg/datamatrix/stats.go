package datamatrix

import "math"

// Stats holds the per-feature weighted mean and standard deviation computed
// by a single pass over the exemplars.
type Stats struct {
	Mean   []float64
	StdDev []float64
}

// Stats computes per-feature weighted mean/stddev with a single-pass Welford
// recurrence (numerically stable, unlike the naive sum-then-sum-of-squares
// approach in internal/quantization/utils.go:ComputeVectorStats, which this
// generalizes to weighted samples). Used directly by scale_silverman and
// scale_scott (see pkg/kde).
func (m *DataMatrix) Stats() (*Stats, error) {
	F, err := m.Features()
	if err != nil {
		return nil, err
	}
	mean := make([]float64, F)
	m2 := make([]float64, F)
	var wsum float64

	raw := make([]float64, m.rawF)
	buf := make([]float64, F)
	E := m.Exemplars()
	for i := 0; i < E; i++ {
		w, err := m.fvRaw(i, raw)
		if err != nil {
			return nil, err
		}
		j := 0
		for k, v := range raw {
			if k == m.weightIndex {
				continue
			}
			buf[j] = v
			j++
		}
		w *= m.weightScale
		if w <= 0 {
			continue
		}
		wsum += w
		for j := 0; j < F; j++ {
			delta := buf[j] - mean[j]
			mean[j] += (w / wsum) * delta
			m2[j] += w * delta * (buf[j] - mean[j])
		}
	}

	sd := make([]float64, F)
	if wsum > 0 {
		for j := 0; j < F; j++ {
			v := m2[j] / wsum
			if v < 0 {
				v = 0
			}
			sd[j] = math.Sqrt(v)
		}
	}
	return &Stats{Mean: mean, StdDev: sd}, nil
}
