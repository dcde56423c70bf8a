package math3d

import "math"

// Mat4 is a 4x4 matrix stored in column-major order.
// This matches OpenGL conventions for easier reasoning about transforms.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
//
// For a transform matrix:
// | Xx Yx Zx Tx |   X,Y,Z = basis vectors (rotation/scale)
// | Xy Yy Zy Ty |   T = translation
// | Xz Yz Zz Tz |
// | 0  0  0  1  |
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// LookAt creates a view matrix looking from eye towards center.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize() // Forward
	s := f.Cross(up).Normalize()     // Right
	u := s.Cross(f)                  // Up (recomputed)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Perspective creates a perspective projection matrix.
// fovy is vertical field of view in radians.
// aspect is width/height.
// near and far are clipping planes.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovy/2)
	nf := 1.0 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// Orthographic creates an orthographic projection matrix.
func Orthographic(left, right, bottom, top, near, far float64) Mat4 {
	rl := 1.0 / (right - left)
	tb := 1.0 / (top - bottom)
	fn := 1.0 / (far - near)

	return Mat4{
		2 * rl, 0, 0, 0,
		0, 2 * tb, 0, 0,
		0, 0, -2 * fn, 0,
		-(right + left) * rl, -(top + bottom) * tb, -(far + near) * fn, 1,
	}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec3 transforms a Vec3 as a point (w=1).
func (m Mat4) MulVec3(v Vec3) Vec3 {
	w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	if w == 0 {
		w = 1
	}
	return Vec3{
		(m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]) / w,
		(m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]) / w,
		(m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]) / w,
	}
}

// MulVec3Dir transforms a Vec3 as a direction (w=0, no translation).
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// minors returns the twelve 2x2 determinants the determinant and inverse
// are expanded from: s from the top two rows, c from the bottom two.
func (m Mat4) minors() (s, c [6]float64) {
	// m[row+col*4]
	a := func(row, col int) float64 { return m[row+col*4] }

	s[0] = a(0, 0)*a(1, 1) - a(1, 0)*a(0, 1)
	s[1] = a(0, 0)*a(1, 2) - a(1, 0)*a(0, 2)
	s[2] = a(0, 0)*a(1, 3) - a(1, 0)*a(0, 3)
	s[3] = a(0, 1)*a(1, 2) - a(1, 1)*a(0, 2)
	s[4] = a(0, 1)*a(1, 3) - a(1, 1)*a(0, 3)
	s[5] = a(0, 2)*a(1, 3) - a(1, 2)*a(0, 3)

	c[5] = a(2, 2)*a(3, 3) - a(3, 2)*a(2, 3)
	c[4] = a(2, 1)*a(3, 3) - a(3, 1)*a(2, 3)
	c[3] = a(2, 1)*a(3, 2) - a(3, 1)*a(2, 2)
	c[2] = a(2, 0)*a(3, 3) - a(3, 0)*a(2, 3)
	c[1] = a(2, 0)*a(3, 2) - a(3, 0)*a(2, 2)
	c[0] = a(2, 0)*a(3, 1) - a(3, 0)*a(2, 1)
	return s, c
}

// Determinant returns the determinant of the matrix.
func (m Mat4) Determinant() float64 {
	s, c := m.minors()
	return s[0]*c[5] - s[1]*c[4] + s[2]*c[3] + s[3]*c[2] - s[4]*c[1] + s[5]*c[0]
}

// Inverse returns the inverse of the matrix, or the identity when it is
// singular.
func (m Mat4) Inverse() Mat4 {
	s, c := m.minors()
	det := s[0]*c[5] - s[1]*c[4] + s[2]*c[3] + s[3]*c[2] - s[4]*c[1] + s[5]*c[0]
	if det == 0 {
		return Identity()
	}
	inv := 1 / det

	a := func(row, col int) float64 { return m[row+col*4] }
	var out Mat4
	set := func(row, col int, v float64) { out[row+col*4] = v * inv }

	set(0, 0, a(1, 1)*c[5]-a(1, 2)*c[4]+a(1, 3)*c[3])
	set(0, 1, -a(0, 1)*c[5]+a(0, 2)*c[4]-a(0, 3)*c[3])
	set(0, 2, a(3, 1)*s[5]-a(3, 2)*s[4]+a(3, 3)*s[3])
	set(0, 3, -a(2, 1)*s[5]+a(2, 2)*s[4]-a(2, 3)*s[3])

	set(1, 0, -a(1, 0)*c[5]+a(1, 2)*c[2]-a(1, 3)*c[1])
	set(1, 1, a(0, 0)*c[5]-a(0, 2)*c[2]+a(0, 3)*c[1])
	set(1, 2, -a(3, 0)*s[5]+a(3, 2)*s[2]-a(3, 3)*s[1])
	set(1, 3, a(2, 0)*s[5]-a(2, 2)*s[2]+a(2, 3)*s[1])

	set(2, 0, a(1, 0)*c[4]-a(1, 1)*c[2]+a(1, 3)*c[0])
	set(2, 1, -a(0, 0)*c[4]+a(0, 1)*c[2]-a(0, 3)*c[0])
	set(2, 2, a(3, 0)*s[4]-a(3, 1)*s[2]+a(3, 3)*s[0])
	set(2, 3, -a(2, 0)*s[4]+a(2, 1)*s[2]-a(2, 3)*s[0])

	set(3, 0, -a(1, 0)*c[3]+a(1, 1)*c[1]-a(1, 2)*c[0])
	set(3, 1, a(0, 0)*c[3]-a(0, 1)*c[1]+a(0, 2)*c[0])
	set(3, 2, -a(3, 0)*s[3]+a(3, 1)*s[1]-a(3, 2)*s[0])
	set(3, 3, a(2, 0)*s[3]-a(2, 1)*s[1]+a(2, 2)*s[0])

	return out
}

// Translation extracts the translation component.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// FromQuat builds a rotation matrix from a unit quaternion stored as
// (x, y, z, w), the layout glTF uses for node rotations.
func FromQuat(q [4]float64) Mat4 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy), 0,
		2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx), 0,
		2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// FromTRS composes translation * rotation * scale.
func FromTRS(t Vec3, r [4]float64, s Vec3) Mat4 {
	return Translate(t).Mul(FromQuat(r)).Mul(Scale(s))
}

// AbsRotation returns the upper 3x3 block with every element replaced by its
// absolute value. Multiplying box extents by it yields the extents of the
// transformed box.
func (m Mat4) AbsRotation() Mat4 {
	a := Identity()
	for col := range 3 {
		for row := range 3 {
			a[row+col*4] = math.Abs(m[row+col*4])
		}
	}
	return a
}
