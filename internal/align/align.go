// Package align fits a rigid-plus-scale (Procrustes) transform mapping one
// set of embedding vectors onto another, so embeddings from heterogeneous
// producers can be compared in a common coordinate frame. It also provides
// the row/column preprocessing used to condition embeddings before fitting.
//
// Two strategies exist: a closed-form 2D rotation for d == 2, and a general
// d-dimensional fit whose SVD is approximated by deflationary power
// iteration. The approximation is accurate while the cross-covariance has
// rank at most 3, which is the regime this engine operates in.
package align

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for contract violations. Alignment raises instead of
// degrading because a silently wrong transform would poison every projected
// vector downstream.
var (
	ErrEmptyInput        = errors.New("align: empty input")
	ErrDimensionMismatch = errors.New("align: dimension mismatch")
)

// Strategy names recorded on the resulting transform.
const (
	MethodExact2D  = "exact2d"
	MethodApproxND = "approxnd"
)

// Transform maps vectors from the source embedding space into the target
// space as scale * R * (v - SourceMean) + TargetMean. It is a plain value:
// two transforms with equal fields behave identically, and applying one
// never mutates it.
type Transform struct {
	Rotation   [][]float64 `json:"rotation"`
	Scale      float64     `json:"scale"`
	SourceMean []float64   `json:"source_mean"`
	TargetMean []float64   `json:"target_mean"`
	Method     string      `json:"method"`
}

// Dim returns the dimensionality of the spaces the transform maps between.
func (t Transform) Dim() int {
	return len(t.SourceMean)
}

// Apply projects a source-space vector into the target space. The vector
// length must equal Dim.
func (t Transform) Apply(v []float64) ([]float64, error) {
	if len(v) != t.Dim() {
		return nil, fmt.Errorf("%w: vector has dim %d, transform has dim %d", ErrDimensionMismatch, len(v), t.Dim())
	}
	centered := make([]float64, len(v))
	for i := range v {
		centered[i] = v[i] - t.SourceMean[i]
	}
	out := matVec(t.Rotation, centered)
	for i := range out {
		out[i] = out[i]*t.Scale + t.TargetMean[i]
	}
	return out, nil
}

// Align fits the transform mapping source vectors onto the paired target
// vectors. Both sets must be the same non-zero length and every vector must
// share one dimension; violations return ErrEmptyInput or
// ErrDimensionMismatch. The fit is deterministic: identical inputs always
// produce identical transforms.
func Align(source, target [][]float64) (Transform, error) {
	if len(source) == 0 || len(target) == 0 {
		return Transform{}, ErrEmptyInput
	}
	if len(source) != len(target) {
		return Transform{}, fmt.Errorf("%w: %d source vectors vs %d target vectors", ErrDimensionMismatch, len(source), len(target))
	}
	d := len(source[0])
	if d == 0 {
		return Transform{}, ErrEmptyInput
	}
	for _, row := range source {
		if len(row) != d {
			return Transform{}, fmt.Errorf("%w: source vector has dim %d, want %d", ErrDimensionMismatch, len(row), d)
		}
	}
	for _, row := range target {
		if len(row) != d {
			return Transform{}, fmt.Errorf("%w: target vector has dim %d, want %d", ErrDimensionMismatch, len(row), d)
		}
	}

	srcMean := columnMean(source)
	tgtMean := columnMean(target)
	xc := centerRows(source, srcMean)
	yc := centerRows(target, tgtMean)

	// Cross-covariance C = Xc^T * Yc, d x d.
	c := matMul(transpose(xc), yc)

	var rotation [][]float64
	var traceS float64
	method := MethodApproxND
	if d == 2 {
		method = MethodExact2D
		rotation, traceS = rotation2D(c)
	} else {
		rotation, traceS = rotationND(c, d)
	}

	scale := 1.0
	if frob := frobeniusSq(xc); frob > 0 {
		scale = traceS / frob
	}
	if scale < 0 {
		scale = 0
	}

	return Transform{
		Rotation:   rotation,
		Scale:      scale,
		SourceMean: srcMean,
		TargetMean: tgtMean,
		Method:     method,
	}, nil
}

// rotation2D is the closed-form planar special case: the optimal rotation
// angle follows directly from the cross-covariance, no SVD needed. It never
// produces a reflection.
func rotation2D(c [][]float64) ([][]float64, float64) {
	cosTerm := c[0][0] + c[1][1]
	sinTerm := c[0][1] - c[1][0]
	theta := math.Atan2(sinTerm, cosTerm)

	cos := math.Cos(theta)
	sin := math.Sin(theta)
	rotation := [][]float64{
		{cos, -sin},
		{sin, cos},
	}
	// The maximized trace of R^T C^T equals the singular value sum.
	return rotation, math.Hypot(cosTerm, sinTerm)
}

// rotationND builds R = V * U^T from up to min(3, d) approximate singular
// triplets of the cross-covariance. When the covariance has no usable
// direction at all (identical point sets collapse to rank zero) the identity
// is returned so the transform degenerates to pure translation.
func rotationND(c [][]float64, d int) ([][]float64, float64) {
	k := 3
	if d < k {
		k = d
	}
	sigma, u, v := topSingularTriplets(c, k)
	if len(sigma) == 0 {
		return identity(d), 0
	}

	rotation := make([][]float64, d)
	for r := range rotation {
		rotation[r] = make([]float64, d)
	}
	var traceS float64
	for i := range sigma {
		traceS += sigma[i]
		for r := 0; r < d; r++ {
			for col := 0; col < d; col++ {
				rotation[r][col] += v[i][r] * u[i][col]
			}
		}
	}
	return rotation, traceS
}

func identity(d int) [][]float64 {
	out := make([][]float64, d)
	for i := range out {
		out[i] = make([]float64, d)
		out[i][i] = 1
	}
	return out
}

func columnMean(rows [][]float64) []float64 {
	d := len(rows[0])
	mean := make([]float64, d)
	for _, row := range rows {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(len(rows))
	}
	return mean
}

func centerRows(rows [][]float64, mean []float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		centered := make([]float64, len(row))
		for j, v := range row {
			centered[j] = v - mean[j]
		}
		out[i] = centered
	}
	return out
}

func frobeniusSq(rows [][]float64) float64 {
	var sum float64
	for _, row := range rows {
		for _, v := range row {
			sum += v * v
		}
	}
	return sum
}
