package meanshift

import "math"

// jacobiEigen computes the eigenvalues and eigenvectors of a symmetric matrix
// a (n x n, not mutated) via the classical cyclic Jacobi rotation method.
// Eigenvalues are returned unsorted; eigenvectors[i] is the eigenvector for
// eigenvalues[i], stored as a unit-length row.
//
// Grounded on ms_c.c's own hand-rolled symmetric eigensolver (used there for
// the manifold/Hessian step); re-expressed as Jacobi rotations since Go's
// standard library has no linear-algebra package.
func jacobiEigen(a [][]float64) (values []float64, vectors [][]float64) {
	n := len(a)
	m := make([][]float64, n)
	for i := range a {
		m[i] = append([]float64(nil), a[i]...)
	}

	v := make([][]float64, n)
	for i := range v {
		v[i] = make([]float64, n)
		v[i][i] = 1
	}

	const maxSweeps = 100
	for sweep := 0; sweep < maxSweeps; sweep++ {
		off := 0.0
		for p := 0; p < n; p++ {
			for q := p + 1; q < n; q++ {
				off += m[p][q] * m[p][q]
			}
		}
		if off < 1e-18 {
			break
		}

		for p := 0; p < n; p++ {
			for q := p + 1; q < n; q++ {
				if math.Abs(m[p][q]) < 1e-300 {
					continue
				}
				theta := (m[q][q] - m[p][p]) / (2 * m[p][q])
				t := math.Copysign(1, theta) / (math.Abs(theta) + math.Sqrt(theta*theta+1))
				c := 1 / math.Sqrt(t*t+1)
				s := t * c

				mpp, mqq, mpq := m[p][p], m[q][q], m[p][q]
				m[p][p] = c*c*mpp - 2*s*c*mpq + s*s*mqq
				m[q][q] = s*s*mpp + 2*s*c*mpq + c*c*mqq
				m[p][q] = 0
				m[q][p] = 0

				for i := 0; i < n; i++ {
					if i == p || i == q {
						continue
					}
					mip, miq := m[i][p], m[i][q]
					m[i][p] = c*mip - s*miq
					m[p][i] = m[i][p]
					m[i][q] = s*mip + c*miq
					m[q][i] = m[i][q]
				}

				for i := 0; i < n; i++ {
					vip, viq := v[i][p], v[i][q]
					v[i][p] = c*vip - s*viq
					v[i][q] = s*vip + c*viq
				}
			}
		}
	}

	values = make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = m[i][i]
	}
	vectors = make([][]float64, n)
	for i := 0; i < n; i++ {
		vec := make([]float64, n)
		for j := 0; j < n; j++ {
			vec[j] = v[j][i]
		}
		vectors[i] = vec
	}
	return values, vectors
}
