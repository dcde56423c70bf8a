package culling

import (
	"math"
	"math/rand"
	"testing"

	"github.com/taigrr/skelcull/pkg/math3d"
)

func TestPlaneDistanceToPoint(t *testing.T) {
	// Plane at Z=0, normal pointing +Z
	plane := Plane{Normal: math3d.V3(0, 0, 1), D: 0}

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected float64
	}{
		{"origin", math3d.V3(0, 0, 0), 0},
		{"in front", math3d.V3(0, 0, 5), 5},
		{"behind", math3d.V3(0, 0, -3), -3},
		{"offset XY", math3d.V3(10, -5, 2), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dist := plane.DistanceToPoint(tc.point)
			if math.Abs(dist-tc.expected) > 1e-9 {
				t.Errorf("got %v, want %v", dist, tc.expected)
			}
		})
	}
}

func TestPlaneNormalize(t *testing.T) {
	plane := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	plane.Normalize()

	if length := plane.Normal.Len(); math.Abs(length-1.0) > 1e-9 {
		t.Errorf("normalized normal length = %v, want 1.0", length)
	}
	if math.Abs(plane.D-2.0) > 1e-9 {
		t.Errorf("D = %v, want 2.0", plane.D)
	}

	// Degenerate planes are left alone
	zero := Plane{D: 3}
	zero.Normalize()
	if zero.D != 3 {
		t.Errorf("zero plane D changed to %v", zero.D)
	}
}

func TestPackPlanes(t *testing.T) {
	planes := regionPlanes(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))
	set := PackPlanes(planes)

	if len(set) != 2 {
		t.Fatalf("packed 6 planes into %d packets, want 2", len(set))
	}

	unpacked := set.Planes()
	for i, p := range planes {
		if unpacked[i] != p {
			t.Errorf("lane %d = %+v, want %+v", i, unpacked[i], p)
		}
	}
	for i := len(planes); i < len(unpacked); i++ {
		if unpacked[i] != (Plane{}) {
			t.Errorf("padding lane %d = %+v, want zero plane", i, unpacked[i])
		}
	}

	if PackPlanes(nil) != nil {
		t.Error("packing no planes should give an empty set")
	}
}

func TestIntersect(t *testing.T) {
	planes := PackPlanes(regionPlanes(math3d.V3(-10, -10, -10), math3d.V3(10, 10, 10)))

	tests := []struct {
		name string
		box  AABB
		want IntersectResult
	}{
		{"fully inside", cube(0, 0, 0, 1), In},
		{"inside touching face", cube(9, 0, 0, 1), In},
		{"straddling face", cube(10, 0, 0, 1), Partial},
		{"straddling corner", cube(10, 10, 10, 2), Partial},
		{"outside touching face", cube(11, 0, 0, 1), Partial},
		{"outside", cube(12, 0, 0, 1), Out},
		{"outside below", cube(0, -30, 0, 5), Out},
		{"containing region", cube(0, 0, 0, 50), Partial},
		{"zero extent inside", cube(3, 3, 3, 0), In},
		{"zero extent on plane", cube(10, 0, 0, 0), In},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Intersect(planes, tc.box); got != tc.want {
				t.Errorf("Intersect(%v) = %v, want %v", tc.box, got, tc.want)
			}
		})
	}
}

func TestIntersectNoPartial(t *testing.T) {
	planes := PackPlanes(regionPlanes(math3d.V3(-10, -10, -10), math3d.V3(10, 10, 10)))

	tests := []struct {
		name string
		box  AABB
		want IntersectResult
	}{
		{"inside", cube(0, 0, 0, 1), In},
		{"straddling reported in", cube(10, 0, 0, 1), In},
		{"outside", cube(12, 0, 0, 1), Out},
		{"outside in second packet", cube(0, 0, 30, 1), Out},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IntersectNoPartial(planes, tc.box); got != tc.want {
				t.Errorf("IntersectNoPartial(%v) = %v, want %v", tc.box, got, tc.want)
			}
		})
	}
}

func TestIntersectEmptySetIsInside(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for range 200 {
		box := NewAABB(
			math3d.V3(rng.NormFloat64()*1e3, rng.NormFloat64()*1e3, rng.NormFloat64()*1e3),
			math3d.V3(rng.Float64()*50, rng.Float64()*50, rng.Float64()*50),
		)
		if got := Intersect(nil, box); got != In {
			t.Fatalf("Intersect(empty, %v) = %v, want in", box, got)
		}
		if got := IntersectNoPartial(PlaneSet{}, box); got != In {
			t.Fatalf("IntersectNoPartial(empty, %v) = %v, want in", box, got)
		}
	}
}

// Batch shortcuts must agree with the per-object answer: a batch that is
// fully in contains no object that is out, and a batch that is fully out
// contains no object that is not out.
func TestBatchShortcutSoundness(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	planes := PackPlanes(slantedPlanes())

	seen := map[IntersectResult]int{}
	for range 500 {
		center := math3d.V3(rng.Float64()*120-60, rng.Float64()*40-20, rng.Float64()*120-40)
		b := randomBatch(rng, 1+rng.Intn(BatchCapacity), center, 1+rng.Float64()*8)

		res := Intersect(planes, b.Bounds)
		seen[res]++

		for i := range b.Len() {
			obj := Intersect(planes, b.Objects[i])
			switch res {
			case In:
				if obj == Out {
					t.Fatalf("batch in but object %d out: %v", i, b.Objects[i])
				}
			case Out:
				if obj != Out {
					t.Fatalf("batch out but object %d %v: %v", i, obj, b.Objects[i])
				}
			}
		}
	}

	for _, r := range []IntersectResult{In, Out, Partial} {
		if seen[r] == 0 {
			t.Errorf("no batch classified %v; fixture does not cover it", r)
		}
	}
}

func TestIntersectResultString(t *testing.T) {
	if In.String() != "in" || Out.String() != "out" || Partial.String() != "partial" {
		t.Errorf("unexpected names: %v %v %v", In, Out, Partial)
	}
}
