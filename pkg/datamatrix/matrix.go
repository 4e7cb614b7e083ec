// Package datamatrix presents a raw rank-R numeric array as a flat sequence
// of weighted, per-feature-scaled feature vectors, per spec §3-§4.1.
package datamatrix

import (
	"github.com/arimanyus/meanshift/internal/kerr"
	"github.com/arimanyus/meanshift/internal/rng"
)

// DataMatrix unrolls an externally-owned ArrayView into E weighted F-feature
// exemplars. It never copies the backing array; callers must not mutate it
// while a DataMatrix (or anything built on top of one) is in use.
type DataMatrix struct {
	arr         ArrayView
	tags        []DimType
	weightIndex int // index into the *raw* (pre-removal) feature vector, or -1

	dataAxes    []int // axes (Data or Dual) enumerating exemplars, in array order
	dualAxes    []int // subset of dataAxes tagged Dual
	featureAxes []int // axes tagged Feature

	rawF int // feature count before weight-channel removal
	f    int // Features() == rawF - (1 if weightIndex >= 0)
	e    int // Exemplars()

	mult        []float64 // length f, mult[i] > 0
	weightScale float64

	prefixSum []float64 // lazily built weighted prefix sum over exemplars, invalidated with caches
}

// New builds an empty, unconfigured DataMatrix. Call Set before use.
func New() *DataMatrix {
	return &DataMatrix{weightScale: 1}
}

// Set records arr by reference and recomputes the stride plan. weightIndex is
// an index into the raw (pre-removal) feature vector, or -1 if no feature is
// designated the weight channel. Calling Set resets scale to all-ones and
// weightScale to 1, per spec §4.1.
func (m *DataMatrix) Set(arr ArrayView, tags []DimType, weightIndex int) error {
	if len(tags) != arr.Rank() {
		return kerr.New(kerr.InvalidShape, "dim_type_tags length %d does not match array rank %d", len(tags), arr.Rank())
	}
	if !kindOK(arr.Kind()) {
		return kerr.New(kerr.InvalidShape, "unsupported element kind %d", arr.Kind())
	}
	for _, t := range tags {
		if !t.valid() {
			return kerr.New(kerr.InvalidShape, "unrecognized dim type tag %q", byte(t))
		}
	}

	var dataAxes, dualAxes, featureAxes []int
	for i, t := range tags {
		switch t {
		case Data:
			dataAxes = append(dataAxes, i)
		case Dual:
			dataAxes = append(dataAxes, i)
			dualAxes = append(dualAxes, i)
		case Feature:
			featureAxes = append(featureAxes, i)
		}
	}

	e := 1
	for _, a := range dataAxes {
		e *= arr.Len(a)
	}
	rawF := len(dualAxes)
	for _, a := range featureAxes {
		rawF += arr.Len(a)
	}

	if weightIndex >= 0 && weightIndex >= rawF {
		return kerr.New(kerr.InvalidShape, "weight_index %d out of range for feature vector of length %d", weightIndex, rawF)
	}

	f := rawF
	if weightIndex >= 0 {
		f--
	}

	m.arr = arr
	m.tags = tags
	m.weightIndex = weightIndex
	m.dataAxes = dataAxes
	m.dualAxes = dualAxes
	m.featureAxes = featureAxes
	m.rawF = rawF
	m.f = f
	m.e = e
	m.mult = onesF(f)
	m.weightScale = 1
	m.prefixSum = nil
	return nil
}

func onesF(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

// Exemplars returns E, the number of exemplars.
func (m *DataMatrix) Exemplars() int { return m.e }

// Features returns F, the scaled feature-vector length, or an error if Set
// has not been called.
func (m *DataMatrix) Features() (int, error) {
	if m.arr == nil {
		return 0, kerr.New(kerr.StateError, "data matrix has no array set")
	}
	return m.f, nil
}

// SetScale installs a new per-feature multiplier and global weight scale.
// Every entry of mult must be positive and weightScale must be positive.
func (m *DataMatrix) SetScale(mult []float64, weightScale float64) error {
	if len(mult) != m.f {
		return kerr.New(kerr.InvalidShape, "scale vector length %d does not match feature count %d", len(mult), m.f)
	}
	for _, v := range mult {
		if v <= 0 {
			return kerr.New(kerr.InvalidParameter, "mult entries must be positive, got %v", v)
		}
	}
	if weightScale <= 0 {
		return kerr.New(kerr.InvalidParameter, "weight_scale must be positive, got %v", weightScale)
	}
	m.mult = append([]float64(nil), mult...)
	m.weightScale = weightScale
	m.prefixSum = nil
	return nil
}

// SetWeightScale updates the global weight multiplier alone.
func (m *DataMatrix) SetWeightScale(weightScale float64) error {
	if weightScale <= 0 {
		return kerr.New(kerr.InvalidParameter, "weight_scale must be positive, got %v", weightScale)
	}
	m.weightScale = weightScale
	m.prefixSum = nil
	return nil
}

// Mult returns the current per-feature scale vector (read-only view).
func (m *DataMatrix) Mult() []float64 { return m.mult }

// WeightScale returns the current global weight multiplier.
func (m *DataMatrix) WeightScale() float64 { return m.weightScale }

// decompose turns an exemplar index into per-dataAxis index values, row-major
// (the last listed axis varies fastest).
func (m *DataMatrix) decompose(i int, out []int) {
	for a := len(m.dataAxes) - 1; a >= 0; a-- {
		axis := m.dataAxes[a]
		l := m.arr.Len(axis)
		out[a] = i % l
		i /= l
	}
}

// fvRaw fills buf (length rawF) with the unscaled, weight-channel-included
// feature vector for exemplar i, and returns its raw weight (1 if no weight
// channel is configured).
func (m *DataMatrix) fvRaw(i int, buf []float64) (float64, error) {
	if i < 0 || i >= m.e {
		return 0, kerr.New(kerr.InvalidParameter, "exemplar index %d out of range [0,%d)", i, m.e)
	}
	idx := make([]int, len(m.tags))
	dataIdx := make([]int, len(m.dataAxes))
	m.decompose(i, dataIdx)
	for a, axis := range m.dataAxes {
		idx[axis] = dataIdx[a]
	}

	pos := 0
	for a, axis := range m.dualAxes {
		buf[pos] = float64(idx[axis])
		pos++
		_ = a
	}
	for _, axis := range m.featureAxes {
		l := m.arr.Len(axis)
		for p := 0; p < l; p++ {
			idx[axis] = p
			buf[pos] = m.arr.At(idx)
			pos++
		}
		idx[axis] = 0
	}

	w := 1.0
	if m.weightIndex >= 0 {
		w = buf[m.weightIndex]
	}
	return w, nil
}

// FV materialises the scaled feature vector for exemplar i into out (length
// Features()), and returns the exemplar's scaled weight (raw weight *
// weightScale). If outWeight is non-nil, the unscaled raw weight is also
// written there.
func (m *DataMatrix) FV(i int, out []float64, outWeight *float64) (float64, error) {
	if len(out) != m.f {
		return 0, kerr.New(kerr.InvalidShape, "output buffer length %d does not match feature count %d", len(out), m.f)
	}
	raw := make([]float64, m.rawF)
	w, err := m.fvRaw(i, raw)
	if err != nil {
		return 0, err
	}
	if outWeight != nil {
		*outWeight = w
	}

	j := 0
	for k := 0; k < m.rawF; k++ {
		if k == m.weightIndex {
			continue
		}
		out[j] = raw[k] * m.mult[j]
		j++
	}
	return w * m.weightScale, nil
}

// buildPrefixSum lazily constructs the weighted cumulative-sum table used by
// Draw, invalidated by any scale/weight/data change.
func (m *DataMatrix) buildPrefixSum() error {
	sum := make([]float64, m.e)
	buf := make([]float64, m.rawF)
	total := 0.0
	for i := 0; i < m.e; i++ {
		w, err := m.fvRaw(i, buf)
		if err != nil {
			return err
		}
		total += w * m.weightScale
		sum[i] = total
	}
	m.prefixSum = sum
	return nil
}

// Draw performs a weighted discrete draw over exemplars using src, returning
// the chosen exemplar index.
func (m *DataMatrix) Draw(src *rng.Source) (int, error) {
	if m.e == 0 {
		return 0, kerr.New(kerr.StateError, "data matrix has no exemplars")
	}
	if m.prefixSum == nil {
		if err := m.buildPrefixSum(); err != nil {
			return 0, err
		}
	}
	total := m.prefixSum[m.e-1]
	if total <= 0 {
		return 0, kerr.New(kerr.StateError, "total exemplar weight is zero")
	}
	target := src.Float64() * total

	lo, hi := 0, m.e-1
	for lo < hi {
		mid := (lo + hi) / 2
		if m.prefixSum[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}

// TotalWeight returns W = sum_i w_i * weight_scale, building the prefix-sum
// table if necessary.
func (m *DataMatrix) TotalWeight() (float64, error) {
	if m.prefixSum == nil {
		if m.e == 0 {
			return 0, nil
		}
		if err := m.buildPrefixSum(); err != nil {
			return 0, err
		}
	}
	if m.e == 0 {
		return 0, nil
	}
	return m.prefixSum[m.e-1], nil
}
