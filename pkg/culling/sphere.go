package culling

// SphereTestResult is the outcome of testing a caster against a cascade
// sphere.
type SphereTestResult uint8

const (
	// CannotCastShadow means the caster's shadow cannot reach the cascade.
	CannotCastShadow SphereTestResult = iota
	// MightCastShadow means the caster has to be rendered into the cascade.
	MightCastShadow
)

// SphereTest tests box, taken as its bounding sphere, against the culling
// sphere of split i.
//
// A spherical caster casts a cylindrical shadow volume along the light
// direction, so in light-space XY the test reduces to two circles
// overlapping. Touching circles count as overlapping. Casters behind the
// receivers along the light axis are not handled here; receiver planes
// reject them.
func (s *Splits) SphereTest(i int, box AABB) SphereTestResult {
	casterXY := s.LightSpaceXY(box.Center)
	r := box.Radius() + s.sphereRadius[i]
	if casterXY.Sub(s.sphereXY[i]).LenSq() <= r*r {
		return MightCastShadow
	}
	return CannotCastShadow
}

// SphereTestMask tests box against every split at once and returns a mask
// with bit i set when the caster might cast a shadow into split i.
func (s *Splits) SphereTestMask(box AABB) uint8 {
	casterXY := s.LightSpaceXY(box.Center)
	casterRadius := box.Radius()

	var mask uint8
	for i := range s.splits {
		r := casterRadius + s.sphereRadius[i]
		if casterXY.Sub(s.sphereXY[i]).LenSq() <= r*r {
			mask |= 1 << uint(i)
		}
	}
	return mask
}
