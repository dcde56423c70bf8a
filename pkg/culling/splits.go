package culling

import (
	"errors"
	"fmt"

	"github.com/taigrr/skelcull/pkg/math3d"
)

// MaxSplits is the number of splits a SplitMask byte can represent.
const MaxSplits = 8

var (
	// ErrTooManySplits is returned when more than MaxSplits splits are supplied.
	ErrTooManySplits = errors.New("too many splits")
	// ErrPlaneRange is returned when a split references packets outside its
	// parent PlaneSet.
	ErrPlaneRange = errors.New("split plane range out of bounds")
)

// Split describes one shadow cascade. Offsets and counts are in packets and
// index into the shared split and combined PlaneSets of the owning Splits.
type Split struct {
	PlaneOffset    int
	PlaneCount     int
	CombinedOffset int
	CombinedCount  int

	// SphereCenter is the world-space center of the cascade's culling sphere.
	SphereCenter math3d.Vec3
	SphereRadius float64
}

// Splits is the read-only culling input for one camera or light view.
// A camera view is a single split whose planes are the view frustum.
// A light view has one split per cascade.
//
// A Splits is never modified after construction and may be shared by every
// goroutine culling batches for the same view.
type Splits struct {
	splitPlanes    PlaneSet
	combinedPlanes PlaneSet
	receiverPlanes PlaneSet
	splits         []Split

	lightSpace math3d.Mat4
	sphereTest bool

	// cascade circles in light-space XY, indexed by split
	sphereXY     [MaxSplits]math3d.Vec2
	sphereRadius [MaxSplits]float64
}

// NewSplits validates packed plane data and builds a Splits from it.
// lightSpace maps world positions into light view space; only the XY of the
// result is used.
func NewSplits(splitPlanes, combinedPlanes, receiverPlanes PlaneSet, splits []Split, lightSpace math3d.Mat4, sphereTest bool) (*Splits, error) {
	if len(splits) > MaxSplits {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManySplits, len(splits), MaxSplits)
	}

	for i, s := range splits {
		if !inRange(s.PlaneOffset, s.PlaneCount, len(splitPlanes)) {
			return nil, fmt.Errorf("%w: split %d planes [%d, +%d) of %d",
				ErrPlaneRange, i, s.PlaneOffset, s.PlaneCount, len(splitPlanes))
		}
		if !inRange(s.CombinedOffset, s.CombinedCount, len(combinedPlanes)) {
			return nil, fmt.Errorf("%w: split %d combined planes [%d, +%d) of %d",
				ErrPlaneRange, i, s.CombinedOffset, s.CombinedCount, len(combinedPlanes))
		}
	}

	out := &Splits{
		splitPlanes:    splitPlanes,
		combinedPlanes: combinedPlanes,
		receiverPlanes: receiverPlanes,
		splits:         append([]Split(nil), splits...),
		lightSpace:     lightSpace,
		sphereTest:     sphereTest,
	}
	for i, s := range out.splits {
		out.sphereXY[i] = out.LightSpaceXY(s.SphereCenter)
		out.sphereRadius[i] = s.SphereRadius
	}
	return out, nil
}

func inRange(offset, count, length int) bool {
	return offset >= 0 && count >= 0 && offset+count <= length
}

// Len returns the number of splits.
func (s *Splits) Len() int {
	return len(s.splits)
}

// Split returns split i.
func (s *Splits) Split(i int) Split {
	return s.splits[i]
}

// ViewPlanes returns the whole split PlaneSet. For a camera view this is the
// view frustum.
func (s *Splits) ViewPlanes() PlaneSet {
	return s.splitPlanes
}

// SplitPlanes returns the frustum planes of split i.
func (s *Splits) SplitPlanes(i int) PlaneSet {
	sp := &s.splits[i]
	return s.splitPlanes[sp.PlaneOffset : sp.PlaneOffset+sp.PlaneCount]
}

// CombinedPlanes returns the split planes of split i joined with the
// receiver planes.
func (s *Splits) CombinedPlanes(i int) PlaneSet {
	sp := &s.splits[i]
	return s.combinedPlanes[sp.CombinedOffset : sp.CombinedOffset+sp.CombinedCount]
}

// ReceiverPlanes returns the planes bounding every shadow receiver. It is
// empty when no receiver rejection should happen.
func (s *Splits) ReceiverPlanes() PlaneSet {
	return s.receiverPlanes
}

// SphereTestEnabled reports whether casters are tested against cascade
// spheres.
func (s *Splits) SphereTestEnabled() bool {
	return s.sphereTest
}

// LightSpace returns the world to light view transform.
func (s *Splits) LightSpace() math3d.Mat4 {
	return s.lightSpace
}

// LightSpaceXY projects a world position onto the light's XY plane.
func (s *Splits) LightSpaceXY(p math3d.Vec3) math3d.Vec2 {
	return s.lightSpace.MulVec3(p).XY()
}
