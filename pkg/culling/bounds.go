package culling

import (
	"github.com/taigrr/skelcull/pkg/math3d"
)

// AABB is an axis-aligned bounding box stored as center and half-size.
// The culling tests only ever need the center and the extents, so they are
// kept directly instead of min/max corners.
type AABB struct {
	Center  math3d.Vec3
	Extents math3d.Vec3
}

// NewAABB creates an AABB from a center and extents.
func NewAABB(center, extents math3d.Vec3) AABB {
	return AABB{Center: center, Extents: extents}
}

// FromMinMax creates an AABB from min and max corners.
func FromMinMax(min, max math3d.Vec3) AABB {
	return AABB{
		Center:  min.Add(max).Scale(0.5),
		Extents: max.Sub(min).Scale(0.5),
	}
}

// Min returns the minimum corner.
func (b AABB) Min() math3d.Vec3 {
	return b.Center.Sub(b.Extents)
}

// Max returns the maximum corner.
func (b AABB) Max() math3d.Vec3 {
	return b.Center.Add(b.Extents)
}

// Size returns the full dimensions of the box.
func (b AABB) Size() math3d.Vec3 {
	return b.Extents.Scale(2)
}

// Radius returns the radius of the sphere centered on the box that encloses
// it, which is the length of the extents.
func (b AABB) Radius() float64 {
	return b.Extents.Len()
}

// Union returns the smallest AABB containing both boxes.
func (b AABB) Union(o AABB) AABB {
	return FromMinMax(b.Min().Min(o.Min()), b.Max().Max(o.Max()))
}

// Encapsulate grows the box to contain the point p.
func (b AABB) Encapsulate(p math3d.Vec3) AABB {
	return FromMinMax(b.Min().Min(p), b.Max().Max(p))
}

// Transform returns an AABB that bounds the original box after
// transformation by m. The extents are mapped through the absolute rotation
// block, which is equivalent to bounding all eight transformed corners.
func (b AABB) Transform(m math3d.Mat4) AABB {
	return AABB{
		Center:  m.MulVec3(b.Center),
		Extents: m.AbsRotation().MulVec3Dir(b.Extents),
	}
}

// ContainsPoint returns true if the point is inside the AABB.
func (b AABB) ContainsPoint(p math3d.Vec3) bool {
	min, max := b.Min(), b.Max()
	return p.X >= min.X && p.X <= max.X &&
		p.Y >= min.Y && p.Y <= max.Y &&
		p.Z >= min.Z && p.Z <= max.Z
}
