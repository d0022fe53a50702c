package model

import (
	"math"

	"github.com/paulmach/orb"
)

// Transform is a row-major 4x4 affine matrix acting on column vectors
// (x, y, z, 1). The last row is (0, 0, 0, 1) for every affine placement.
type Transform [4][4]float64

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translation returns a pure translation.
func Translation(dx, dy, dz float64) Transform {
	t := Identity()
	t[0][3] = dx
	t[1][3] = dy
	t[2][3] = dz
	return t
}

// RotationZ returns a counter-clockwise rotation about the z axis.
func RotationZ(radians float64) Transform {
	s, c := math.Sincos(radians)
	t := Identity()
	t[0][0], t[0][1] = c, -s
	t[1][0], t[1][1] = s, c
	return t
}

// Mul returns t·o, the transform that applies o first and then t.
func (t Transform) Mul(o Transform) Transform {
	var r Transform
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += t[i][k] * o[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

// IsZero reports whether every entry is zero.
func (t Transform) IsZero() bool {
	return t == Transform{}
}

// Normalize returns the identity for the zero matrix and t otherwise.
// A zero matrix only appears when a stored link omitted its transform.
func (t Transform) Normalize() Transform {
	if t.IsZero() {
		return Identity()
	}
	return t
}

// OfPoint maps a plan point (z = 0) through t.
func (t Transform) OfPoint(p orb.Point) orb.Point {
	x, y := p[0], p[1]
	return orb.Point{
		t[0][0]*x + t[0][1]*y + t[0][3],
		t[1][0]*x + t[1][1]*y + t[1][3],
	}
}
