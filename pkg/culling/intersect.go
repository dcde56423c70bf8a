package culling

import "math"

// IntersectResult classifies a box against a PlaneSet.
type IntersectResult uint8

const (
	// Out means the box is entirely behind at least one plane.
	Out IntersectResult = iota
	// In means no part of the box is behind any plane.
	In
	// Partial means the box straddles at least one plane.
	Partial
)

func (r IntersectResult) String() string {
	switch r {
	case Out:
		return "out"
	case In:
		return "in"
	case Partial:
		return "partial"
	default:
		return "unknown"
	}
}

// Intersect classifies box against planes.
//
// For each lane the signed distance of the box center and the projected
// radius |n|·extents are computed. The box is Out if center distance plus
// radius is negative for any plane, In if center distance is at least the
// radius for every plane, and Partial otherwise. Zero distances count as
// inside.
func Intersect(planes PlaneSet, box AABB) IntersectResult {
	c, e := box.Center, box.Extents
	outCount, inCount := 0, 0

	for i := range planes {
		p := &planes[i]
		for lane := range PacketWidth {
			dist := p.NX[lane]*c.X + p.NY[lane]*c.Y + p.NZ[lane]*c.Z + p.D[lane]
			radius := math.Abs(p.NX[lane])*e.X + math.Abs(p.NY[lane])*e.Y + math.Abs(p.NZ[lane])*e.Z

			if dist+radius < 0 {
				outCount++
			}
			if dist >= radius {
				inCount++
			}
		}
	}

	if outCount > 0 {
		return Out
	}
	if inCount == len(planes)*PacketWidth {
		return In
	}
	return Partial
}

// IntersectNoPartial answers only whether the box survives: it returns Out
// as soon as one packet rejects the box and In otherwise. A straddling box is
// reported as In.
func IntersectNoPartial(planes PlaneSet, box AABB) IntersectResult {
	c, e := box.Center, box.Extents

	for i := range planes {
		p := &planes[i]
		outside := false
		for lane := range PacketWidth {
			dist := p.NX[lane]*c.X + p.NY[lane]*c.Y + p.NZ[lane]*c.Z + p.D[lane]
			radius := math.Abs(p.NX[lane])*e.X + math.Abs(p.NY[lane])*e.Y + math.Abs(p.NZ[lane])*e.Z
			outside = outside || dist+radius < 0
		}
		if outside {
			return Out
		}
	}
	return In
}
