package pca

import "math"

const (
	jacobiTol       = 1e-12
	jacobiMaxSweeps = 100
)

// svd computes the thin Singular Value Decomposition A = U * Sigma * V^T of an
// m × n matrix using one-sided Jacobi rotations, suitable for small matrices.
// It returns U (m × n, columns normalised where sigma > 0), Sigma and V (n × n).
//
// The input is modified in place (it becomes U).
func svd(a [][]float64) ([][]float64, []float64, [][]float64) {
	m := len(a)
	if m == 0 {
		return nil, nil, nil
	}
	n := len(a[0])

	v := make([][]float64, n)
	for i := range v {
		v[i] = make([]float64, n)
		v[i][i] = 1.0
	}

	u := a
	for range jacobiMaxSweeps {
		if !jacobiSweep(u, v, m, n) {
			break
		}
	}

	sigma := make([]float64, n)
	for j := range n {
		sum := 0.0
		for i := range m {
			sum += u[i][j] * u[i][j]
		}
		sigma[j] = math.Sqrt(sum)

		if sigma[j] > 1e-300 {
			inv := 1.0 / sigma[j]
			for i := range m {
				u[i][j] *= inv
			}
		}
	}

	return u, sigma, v
}

// jacobiSweep orthogonalises every column pair once and reports whether any
// rotation was applied.
func jacobiSweep(u, v [][]float64, m, n int) bool {
	changed := false
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			alpha, beta, gamma := 0.0, 0.0, 0.0
			for k := range m {
				alpha += u[k][i] * u[k][i]
				beta += u[k][j] * u[k][j]
				gamma += u[k][i] * u[k][j]
			}

			if alpha == 0 || beta == 0 {
				continue
			}
			if math.Abs(gamma) <= jacobiTol*math.Sqrt(alpha*beta) {
				continue
			}

			changed = true
			rotate(u, v, m, n, i, j, alpha, beta, gamma)
		}
	}
	return changed
}

func rotate(u, v [][]float64, m, n, i, j int, alpha, beta, gamma float64) {
	zeta := (beta - alpha) / (2 * gamma)
	var t float64
	if zeta > 0 {
		t = 1 / (zeta + math.Sqrt(1+zeta*zeta))
	} else {
		t = -1 / (-zeta + math.Sqrt(1+zeta*zeta))
	}
	c := 1 / math.Sqrt(1+t*t)
	s := c * t

	for k := range m {
		t1, t2 := u[k][i], u[k][j]
		u[k][i] = c*t1 - s*t2
		u[k][j] = s*t1 + c*t2
	}
	for k := range n {
		t1, t2 := v[k][i], v[k][j]
		v[k][i] = c*t1 - s*t2
		v[k][j] = s*t1 + c*t2
	}
}
