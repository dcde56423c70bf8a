package render

import (
	"github.com/taigrr/skelcull/pkg/culling"
	"github.com/taigrr/skelcull/pkg/math3d"
)

// Frustum represents the 6 planes of a view frustum.
// Planes are ordered: Left, Right, Bottom, Top, Near, Far.
// Each plane's normal points inward (toward the center of the frustum).
type Frustum struct {
	Planes [6]culling.Plane
}

// FrustumPlane indices for clarity.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// Uses the Gribb/Hartmann method for extracting planes from the combined matrix.
// The resulting planes have normals pointing inward.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	var f Frustum

	// For column-major matrix m, row i element j is at m[i + j*4].
	row := func(i int) (x, y, z, w float64) {
		return m[i], m[i+4], m[i+8], m[i+12]
	}
	x3, y3, z3, w3 := row(3)

	for i := range 3 {
		x, y, z, w := row(i)
		// row3 + row i, then row3 - row i
		f.Planes[2*i] = culling.Plane{Normal: math3d.V3(x3+x, y3+y, z3+z), D: w3 + w}
		f.Planes[2*i+1] = culling.Plane{Normal: math3d.V3(x3-x, y3-y, z3-z), D: w3 - w}
	}

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// ExtractPlanes returns the six inward planes of the frustum described by a
// view-projection matrix, ready to be packed for culling.
func ExtractPlanes(viewProj math3d.Mat4) []culling.Plane {
	f := NewFrustumFromMatrix(viewProj)
	return f.Slice()
}

// Slice returns the planes as a slice.
func (f Frustum) Slice() []culling.Plane {
	return append([]culling.Plane(nil), f.Planes[:]...)
}

// ContainsPoint tests if a point is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere tests if a sphere intersects the frustum.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float64) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}

// Corners returns the eight world-space corners of the frustum described by
// viewProj, near quad first. Each quad runs (-x,-y), (+x,-y), (+x,+y), (-x,+y).
func Corners(viewProj math3d.Mat4) [8]math3d.Vec3 {
	inv := viewProj.Inverse()
	var out [8]math3d.Vec3
	for i, z := range [2]float64{-1, 1} {
		for j, xy := range [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			out[i*4+j] = inv.MulVec3(math3d.V3(xy[0], xy[1], z))
		}
	}
	return out
}

// FrustumEdges lists the 12 corner pairs of a frustum or box whose corners
// follow the Corners ordering.
var FrustumEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}
