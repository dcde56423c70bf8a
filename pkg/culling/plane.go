// Package culling classifies skeleton bounds against camera and light
// frustums, one fixed-size batch at a time.
package culling

import (
	"github.com/taigrr/skelcull/pkg/math3d"
)

// Plane represents a plane in 3D space using the equation: Ax + By + Cz + D = 0
// where (A, B, C) is the normal and D is the distance from origin.
// Points with a non-negative signed distance are inside.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// NewPlane creates a plane through point with the given inward normal.
func NewPlane(normal, point math3d.Vec3) Plane {
	return Plane{Normal: normal, D: -normal.Dot(point)}
}

// Normalize normalizes the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// PacketWidth is the number of planes stored in one PlanePacket.
const PacketWidth = 4

// PlanePacket holds four planes in structure-of-arrays layout so a box can be
// tested against all four lanes with straight-line arithmetic.
// Unused lanes hold the zero plane, which never rejects anything.
type PlanePacket struct {
	NX, NY, NZ, D [PacketWidth]float64
}

// Plane returns lane i of the packet.
func (p *PlanePacket) Plane(i int) Plane {
	return Plane{Normal: math3d.V3(p.NX[i], p.NY[i], p.NZ[i]), D: p.D[i]}
}

// PlaneSet is an ordered sequence of packets describing a convex region.
// An empty set places no constraint: every box is inside it.
type PlaneSet []PlanePacket

// PackPlanes packs planes four at a time. The last packet is padded with
// zero planes.
func PackPlanes(planes []Plane) PlaneSet {
	if len(planes) == 0 {
		return nil
	}
	set := make(PlaneSet, (len(planes)+PacketWidth-1)/PacketWidth)
	for i, p := range planes {
		pk := &set[i/PacketWidth]
		lane := i % PacketWidth
		pk.NX[lane] = p.Normal.X
		pk.NY[lane] = p.Normal.Y
		pk.NZ[lane] = p.Normal.Z
		pk.D[lane] = p.D
	}
	return set
}

// Planes unpacks the set, including any zero padding lanes.
func (s PlaneSet) Planes() []Plane {
	planes := make([]Plane, 0, len(s)*PacketWidth)
	for i := range s {
		for lane := range PacketWidth {
			planes = append(planes, s[i].Plane(lane))
		}
	}
	return planes
}
