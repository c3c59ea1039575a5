// Package geometry turns a stored fSpy camera transform into a camera pose
// and converts relative focal lengths into absolute ones.
package geometry

import (
	"fmt"
	"math"

	"github.com/menta2k/fspy-importer/pkg/types"
)

// epsilon32 is the float32 machine epsilon
const epsilon32 = 1.1920929e-07

// NonInvertibleTransformError reports a camera transform that has no inverse.
// A project carrying one cannot produce a camera pose.
type NonInvertibleTransformError struct {
	Determinant float32
}

func (e *NonInvertibleTransformError) Error() string {
	return fmt.Sprintf("geometry: camera transform is not invertible (determinant %g)", e.Determinant)
}

// Transpose4x4 returns m with rows and columns swapped
func Transpose4x4(m types.Matrix4) types.Matrix4 {
	var t types.Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			t[i][j] = m[j][i]
		}
	}
	return t
}

// Multiply4x4 returns the matrix product a·b
func Multiply4x4(a, b types.Matrix4) types.Matrix4 {
	var p types.Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[i][k] * b[k][j]
			}
			p[i][j] = sum
		}
	}
	return p
}

// Determinant4x4 returns the determinant of m
func Determinant4x4(m types.Matrix4) float32 {
	s, c := minors(m)
	return det(s, c)
}

// Invert4x4 returns the inverse of m using cofactor expansion.
//
// m is rejected as singular when its determinant is not finite or is within
// float32 rounding of zero relative to the Hadamard bound of m, so the test
// does not depend on the overall scale of the matrix.
func Invert4x4(m types.Matrix4) (types.Matrix4, error) {
	s, c := minors(m)
	d := det(s, c)

	bound := math.Min(hadamard(m), hadamard(Transpose4x4(m)))
	fd := float64(d)
	if math.IsNaN(fd) || math.IsInf(fd, 0) || bound == 0 || math.Abs(fd) <= epsilon32*bound {
		return types.Matrix4{}, &NonInvertibleTransformError{Determinant: d}
	}

	inv := 1 / d
	var r types.Matrix4

	r[0][0] = (m[1][1]*c[5] - m[1][2]*c[4] + m[1][3]*c[3]) * inv
	r[0][1] = (-m[0][1]*c[5] + m[0][2]*c[4] - m[0][3]*c[3]) * inv
	r[0][2] = (m[3][1]*s[5] - m[3][2]*s[4] + m[3][3]*s[3]) * inv
	r[0][3] = (-m[2][1]*s[5] + m[2][2]*s[4] - m[2][3]*s[3]) * inv

	r[1][0] = (-m[1][0]*c[5] + m[1][2]*c[2] - m[1][3]*c[1]) * inv
	r[1][1] = (m[0][0]*c[5] - m[0][2]*c[2] + m[0][3]*c[1]) * inv
	r[1][2] = (-m[3][0]*s[5] + m[3][2]*s[2] - m[3][3]*s[1]) * inv
	r[1][3] = (m[2][0]*s[5] - m[2][2]*s[2] + m[2][3]*s[1]) * inv

	r[2][0] = (m[1][0]*c[4] - m[1][1]*c[2] + m[1][3]*c[0]) * inv
	r[2][1] = (-m[0][0]*c[4] + m[0][1]*c[2] - m[0][3]*c[0]) * inv
	r[2][2] = (m[3][0]*s[4] - m[3][1]*s[2] + m[3][3]*s[0]) * inv
	r[2][3] = (-m[2][0]*s[4] + m[2][1]*s[2] - m[2][3]*s[0]) * inv

	r[3][0] = (-m[1][0]*c[3] + m[1][1]*c[1] - m[1][2]*c[0]) * inv
	r[3][1] = (m[0][0]*c[3] - m[0][1]*c[1] + m[0][2]*c[0]) * inv
	r[3][2] = (-m[3][0]*s[3] + m[3][1]*s[1] - m[3][2]*s[0]) * inv
	r[3][3] = (m[2][0]*s[3] - m[2][1]*s[1] + m[2][2]*s[0]) * inv

	return r, nil
}

// minors returns the 2x2 minors of the top two rows (s) and of the bottom
// two rows (c) of m.
func minors(m types.Matrix4) (s, c [6]float32) {
	s[0] = m[0][0]*m[1][1] - m[1][0]*m[0][1]
	s[1] = m[0][0]*m[1][2] - m[1][0]*m[0][2]
	s[2] = m[0][0]*m[1][3] - m[1][0]*m[0][3]
	s[3] = m[0][1]*m[1][2] - m[1][1]*m[0][2]
	s[4] = m[0][1]*m[1][3] - m[1][1]*m[0][3]
	s[5] = m[0][2]*m[1][3] - m[1][2]*m[0][3]

	c[0] = m[2][0]*m[3][1] - m[3][0]*m[2][1]
	c[1] = m[2][0]*m[3][2] - m[3][0]*m[2][2]
	c[2] = m[2][0]*m[3][3] - m[3][0]*m[2][3]
	c[3] = m[2][1]*m[3][2] - m[3][1]*m[2][2]
	c[4] = m[2][1]*m[3][3] - m[3][1]*m[2][3]
	c[5] = m[2][2]*m[3][3] - m[3][2]*m[2][3]
	return s, c
}

func det(s, c [6]float32) float32 {
	return s[0]*c[5] - s[1]*c[4] + s[2]*c[3] + s[3]*c[2] - s[4]*c[1] + s[5]*c[0]
}

// hadamard returns the product of the Euclidean norms of the rows of m,
// an upper bound on |det(m)|.
func hadamard(m types.Matrix4) float64 {
	p := 1.0
	for _, row := range m {
		var sq float64
		for _, v := range row {
			sq += float64(v) * float64(v)
		}
		p *= math.Sqrt(sq)
	}
	return p
}
