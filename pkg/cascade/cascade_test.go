package cascade

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/skelcull/pkg/culling"
	"github.com/taigrr/skelcull/pkg/math3d"
	"github.com/taigrr/skelcull/pkg/render"
)

func testCamera() *render.Camera {
	cam := render.NewCamera()
	cam.SetPosition(math3d.V3(0, 5, 30))
	cam.LookAt(math3d.V3(0, 0, 0))
	cam.SetClipPlanes(0.5, 100)
	return cam
}

// sunDir is a low afternoon sun coming in from +X.
var sunDir = math3d.V3(-1, -1.5, -0.3)

func TestSplitDistances(t *testing.T) {
	tests := []struct {
		name   string
		lambda float64
		want   []float64
	}{
		{"uniform", 0, []float64{1, 25.75, 50.5, 75.25, 100}},
		{"logarithmic", 1, []float64{1, math.Pow(100, 0.25), 10, math.Pow(100, 0.75), 100}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitDistances(1, 100, 4, tc.lambda)
			if len(got) != len(tc.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if math.Abs(got[i]-tc.want[i]) > 1e-9 {
					t.Errorf("d[%d] = %v, want %v", i, got[i], tc.want[i])
				}
			}
		})
	}

	t.Run("blend is increasing", func(t *testing.T) {
		d := SplitDistances(0.1, 80, 8, 0.75)
		for i := 1; i < len(d); i++ {
			if d[i] <= d[i-1] {
				t.Fatalf("d[%d] = %v <= d[%d] = %v", i, d[i], i-1, d[i-1])
			}
		}
	})
}

func TestBuildDirectionalErrors(t *testing.T) {
	cam := testCamera()

	tests := []struct {
		name string
		dir  math3d.Vec3
		n    int
		want error
	}{
		{"zero cascades", sunDir, 0, ErrCascadeCount},
		{"too many cascades", sunDir, culling.MaxSplits + 1, ErrCascadeCount},
		{"zero direction", math3d.Vec3{}, 2, ErrLightDirection},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Cascades = tc.n
			if _, err := BuildDirectional(cam, tc.dir, cfg); !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestBuildDirectionalCascades(t *testing.T) {
	cam := testCamera()
	cfg := DefaultConfig()

	light, err := BuildDirectional(cam, sunDir, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if light.Splits.Len() != cfg.Cascades || len(light.Cascades) != cfg.Cascades {
		t.Fatalf("got %d splits, %d cascades, want %d", light.Splits.Len(), len(light.Cascades), cfg.Cascades)
	}
	if !light.Splits.SphereTestEnabled() {
		t.Error("sphere test not enabled")
	}
	if math.Abs(light.Direction.Len()-1) > 1e-9 {
		t.Errorf("direction not normalized: %v", light.Direction)
	}

	for i, c := range light.Cascades {
		if i > 0 && c.Near != light.Cascades[i-1].Far {
			t.Errorf("cascade %d starts at %v, previous ends at %v", i, c.Near, light.Cascades[i-1].Far)
		}
		if c.Radius <= 0 {
			t.Errorf("cascade %d radius %v", i, c.Radius)
		}

		// every slice corner lies inside its split and inside the
		// sphere
		planes := light.Splits.SplitPlanes(i)
		for j, p := range c.Slice {
			if d := p.Distance(c.Center); d > c.Radius+1e-9 {
				t.Errorf("cascade %d corner %d is %v from center, radius %v", i, j, d, c.Radius)
			}
			box := culling.NewAABB(p, math3d.V3(0.01, 0.01, 0.01))
			if culling.Intersect(planes, box) == culling.Out {
				t.Errorf("cascade %d corner %d outside its split planes", i, j)
			}
			if light.Splits.SphereTestMask(box)&(1<<uint(i)) == 0 {
				t.Errorf("cascade %d corner %d fails its sphere test", i, j)
			}
		}
	}
	if last := light.Cascades[len(light.Cascades)-1]; last.Far != cfg.MaxDistance {
		t.Errorf("last cascade ends at %v, want %v", last.Far, cfg.MaxDistance)
	}
}

func TestCascadeProjectionMatchesBox(t *testing.T) {
	for _, extrusion := range []float64{0, 15} {
		cfg := DefaultConfig()
		cfg.Extrusion = extrusion
		light, err := BuildDirectional(testCamera(), sunDir, cfg)
		if err != nil {
			t.Fatal(err)
		}
		for i, c := range light.Cascades {
			corners := render.Corners(c.ViewProj)
			for k := range corners {
				if d := corners[k].Distance(c.Box[k]); d > 1e-6 {
					t.Errorf("extrusion %v cascade %d corner %d: %v vs %v", extrusion, i, k, corners[k], c.Box[k])
				}
			}
		}
	}
}

func TestCasterTowardLightIsKept(t *testing.T) {
	cam := testCamera()
	cfg := DefaultConfig()
	light, err := BuildDirectional(cam, sunDir, cfg)
	if err != nil {
		t.Fatal(err)
	}

	c := light.Cascades[1]
	dir := light.Direction

	// A caster lifted toward the sun still shadows the slice
	toward := culling.NewAABB(c.Center.Sub(dir.Scale(c.Radius+40)), math3d.V3(0.5, 1, 0.5))
	b := &culling.Batch{}
	b.Add(toward)
	b.CullLight(light.Splits)
	if b.SplitVisible[0]&0b10 == 0 {
		t.Errorf("caster toward the light dropped from cascade 1: %#b", b.SplitVisible[0])
	}

	// Past the slice along the light, its shadow falls beyond the cascade
	beyond := culling.NewAABB(c.Center.Add(dir.Scale(c.Radius+5)), math3d.V3(0.5, 1, 0.5))
	if culling.Intersect(light.Splits.SplitPlanes(1), beyond) != culling.Out {
		t.Error("caster beyond the cascade along the light not rejected by its far cap")
	}
}

func TestExtrusionCapsLightSide(t *testing.T) {
	cam := testCamera()
	cfg := DefaultConfig()
	cfg.Extrusion = 10

	light, err := BuildDirectional(cam, sunDir, cfg)
	if err != nil {
		t.Fatal(err)
	}
	c := light.Cascades[0]
	far := culling.NewAABB(c.Center.Sub(light.Direction.Scale(c.Radius+30)), math3d.V3(0.5, 0.5, 0.5))
	if culling.Intersect(light.Splits.SplitPlanes(0), far) != culling.Out {
		t.Error("caster past the extrusion not rejected")
	}
	near := culling.NewAABB(c.Center.Sub(light.Direction.Scale(c.Radius+5)), math3d.V3(0.5, 0.5, 0.5))
	if culling.Intersect(light.Splits.SplitPlanes(0), near) == culling.Out {
		t.Error("caster within the extrusion rejected")
	}
}

func TestReceiverPlanes(t *testing.T) {
	cam := testCamera()
	dir := sunDir.Normalize()

	planes := ReceiverPlanes(cam, 80, dir)
	if len(planes) == 0 || len(planes) > 6 {
		t.Fatalf("got %d receiver planes", len(planes))
	}
	for i, p := range planes {
		if p.Normal.Dot(dir) > 0 {
			t.Errorf("plane %d faces along the light", i)
		}
	}

	// Straight down light over a level camera: only the top plane faces
	// along the light, so it is the one dropped.
	level := render.NewCamera()
	level.SetPosition(math3d.V3(0, 2, 0))
	level.SetRotation(0, 0)
	down := ReceiverPlanes(level, 50, math3d.V3(0, -1, 0))
	if len(down) != 5 {
		t.Errorf("got %d planes for a vertical light, want 5", len(down))
	}
}

func TestReceiverRejectionDropsHiddenCasters(t *testing.T) {
	cam := testCamera()
	cfg := DefaultConfig()
	cfg.SphereTest = false

	light, err := BuildDirectional(cam, sunDir, cfg)
	if err != nil {
		t.Fatal(err)
	}

	// Far behind the camera: its shadow runs away from the view
	b := &culling.Batch{}
	b.Add(culling.NewAABB(math3d.V3(0, 0, 200), math3d.V3(1, 1, 1)))
	b.Add(culling.NewAABB(math3d.V3(3, 0, 205), math3d.V3(1, 1, 1)))
	res := b.CullLight(light.Splits)
	if !res.ReceiverRejected || !b.Visible.IsZero() {
		t.Errorf("casters behind the camera kept: %+v", res)
	}

	cfg.ReceiverRejection = false
	open, err := BuildDirectional(cam, sunDir, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(open.Splits.ReceiverPlanes()) != 0 {
		t.Error("receiver planes built with rejection disabled")
	}
}

func TestBuildCamera(t *testing.T) {
	cam := testCamera()
	splits, err := BuildCamera(cam)
	if err != nil {
		t.Fatal(err)
	}

	b := &culling.Batch{}
	b.Add(culling.NewAABB(math3d.V3(0, 0, 0), math3d.V3(1, 1, 1)))    // looked at
	b.Add(culling.NewAABB(math3d.V3(0, 0, 60), math3d.V3(1, 1, 1)))   // behind
	b.Add(culling.NewAABB(math3d.V3(200, 0, 0), math3d.V3(1, 1, 1)))  // off to the side
	b.Add(culling.NewAABB(math3d.V3(0, 0, -200), math3d.V3(1, 1, 1))) // past far
	b.CullCamera(splits.ViewPlanes())

	if !b.Visible.Test(0) || b.Visible.Count() != 1 {
		t.Errorf("visible = %#b, want only object 0", b.Visible.Lower)
	}
}

func TestLightViewVertical(t *testing.T) {
	view := LightView(math3d.V3(0, -1, 0))
	p := view.MulVec3(math3d.V3(0, -10, 0))
	if math.Abs(p.X) > 1e-9 || math.Abs(p.Y) > 1e-9 || p.Z > 0 {
		t.Errorf("point below a vertical light maps to %v", p)
	}
}
