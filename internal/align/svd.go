package align

import "math"

// powerIterations is enough for convergence at the scales this package sees
// (cross-covariances of low-dimensional embedding sets).
const powerIterations = 64

// rankFloor is the eigenvalue magnitude below which deflation stops; smaller
// directions are numerical noise.
const rankFloor = 1e-12

// powerSeed returns the fixed start vector for power iteration. A
// deterministic seed keeps repeated alignments bit-for-bit reproducible; the
// decaying components avoid starting orthogonal to a dominant axis-aligned
// eigenvector.
func powerSeed(d int) []float64 {
	v := make([]float64, d)
	for j := range v {
		v[j] = 1 / float64(j+1)
	}
	normalize(v)
	return v
}

// topSingularTriplets extracts up to k leading singular triplets of the d x d
// matrix c by deflationary power iteration on c^T c. Returned slices are
// ordered by decreasing singular value and may be shorter than k when the
// matrix has lower numerical rank.
//
// This is an approximation, not a full SVD: it is accurate only while the
// true rank of c is at most k. That bound holds for the cross-covariances
// produced by Align, which caps k at 3.
func topSingularTriplets(c [][]float64, k int) (sigma []float64, u, v [][]float64) {
	d := len(c)
	if d == 0 || k <= 0 {
		return nil, nil, nil
	}

	m := matMul(transpose(c), c)

	for i := 0; i < k; i++ {
		vec := powerSeed(d)
		for it := 0; it < powerIterations; it++ {
			vec = matVec(m, vec)
			if !normalize(vec) {
				return sigma, u, v
			}
		}

		lambda := dot(vec, matVec(m, vec))
		if lambda < rankFloor {
			break
		}

		s := math.Sqrt(lambda)
		left := matVec(c, vec)
		for j := range left {
			left[j] /= s
		}

		sigma = append(sigma, s)
		v = append(v, vec)
		u = append(u, left)

		// Deflate the captured direction out of m.
		for r := 0; r < d; r++ {
			for col := 0; col < d; col++ {
				m[r][col] -= lambda * vec[r] * vec[col]
			}
		}
	}

	return sigma, u, v
}

func transpose(a [][]float64) [][]float64 {
	if len(a) == 0 {
		return nil
	}
	rows, cols := len(a), len(a[0])
	out := make([][]float64, cols)
	for i := range out {
		out[i] = make([]float64, rows)
		for j := 0; j < rows; j++ {
			out[i][j] = a[j][i]
		}
	}
	return out
}

func matMul(a, b [][]float64) [][]float64 {
	rows := len(a)
	inner := len(b)
	if rows == 0 || inner == 0 {
		return nil
	}
	cols := len(b[0])
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			var sum float64
			for t := 0; t < inner; t++ {
				sum += a[i][t] * b[t][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

func matVec(a [][]float64, x []float64) []float64 {
	out := make([]float64, len(a))
	for i, row := range a {
		var sum float64
		for j, v := range row {
			sum += v * x[j]
		}
		out[i] = sum
	}
	return out
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// normalize scales x to unit length in place and reports whether the vector
// was non-zero.
func normalize(x []float64) bool {
	norm := math.Sqrt(dot(x, x))
	if norm == 0 {
		return false
	}
	for i := range x {
		x[i] /= norm
	}
	return true
}
