package culling

import (
	"math/rand"

	"github.com/taigrr/skelcull/pkg/math3d"
)

// regionPlanes returns the six inward planes of the axis-aligned region
// [min, max].
func regionPlanes(min, max math3d.Vec3) []Plane {
	return []Plane{
		NewPlane(math3d.V3(1, 0, 0), min),
		NewPlane(math3d.V3(-1, 0, 0), max),
		NewPlane(math3d.V3(0, 1, 0), min),
		NewPlane(math3d.V3(0, -1, 0), max),
		NewPlane(math3d.V3(0, 0, 1), min),
		NewPlane(math3d.V3(0, 0, -1), max),
	}
}

func cube(x, y, z, half float64) AABB {
	return NewAABB(math3d.V3(x, y, z), math3d.V3(half, half, half))
}

// fillBatch adds boxes to a fresh batch.
func fillBatch(boxes ...AABB) *Batch {
	b := &Batch{}
	for _, box := range boxes {
		b.Add(box)
	}
	return b
}

// randomBatch scatters n unit-ish boxes around center.
func randomBatch(rng *rand.Rand, n int, center math3d.Vec3, spread float64) *Batch {
	b := &Batch{}
	for range n {
		c := center.Add(math3d.V3(
			(rng.Float64()*2-1)*spread,
			(rng.Float64()*2-1)*spread,
			(rng.Float64()*2-1)*spread,
		))
		e := math3d.V3(0.2+rng.Float64(), 0.2+rng.Float64(), 0.2+rng.Float64())
		b.Add(NewAABB(c, e))
	}
	return b
}

// slantedPlanes returns a wedge bounded by two oblique planes and a far cap,
// which produces plenty of partial classifications.
func slantedPlanes() []Plane {
	return []Plane{
		NewPlane(math3d.V3(1, 0, 1).Normalize(), math3d.V3(0, 0, 0)),
		NewPlane(math3d.V3(-1, 0, 1).Normalize(), math3d.V3(0, 0, 0)),
		NewPlane(math3d.V3(0, 1, 0), math3d.V3(0, -20, 0)),
		NewPlane(math3d.V3(0, -1, 0), math3d.V3(0, 20, 0)),
		NewPlane(math3d.V3(0, 0, -1), math3d.V3(0, 0, 60)),
	}
}
