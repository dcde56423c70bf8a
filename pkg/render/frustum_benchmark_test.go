package render

import (
	"math"
	"math/rand"
	"testing"

	"github.com/taigrr/skelcull/pkg/culling"
	"github.com/taigrr/skelcull/pkg/math3d"
)

// BenchmarkFrustumExtract benchmarks frustum plane extraction from view-projection matrix.
func BenchmarkFrustumExtract(b *testing.B) {
	proj := math3d.Perspective(math.Pi/3, 16.0/9.0, 0.1, 100)
	viewProj := proj.Mul(math3d.Identity())

	for b.Loop() {
		_ = ExtractPlanes(viewProj)
	}
}

// BenchmarkCullingScenario culls 1024 scattered skeletons one at a time and
// in batches of 128.
func BenchmarkCullingScenario(b *testing.B) {
	cam := NewCamera()
	cam.SetPosition(math3d.V3(0, 10, 20))
	cam.LookAt(math3d.V3(0, 0, 0))
	planes := culling.PackPlanes(ExtractPlanes(cam.ViewProjectionMatrix()))

	rng := rand.New(rand.NewSource(42))
	local := culling.FromMinMax(math3d.V3(-0.5, 0, -0.3), math3d.V3(0.5, 1.8, 0.3))

	var batches []*culling.Batch
	var all []culling.AABB
	cur := &culling.Batch{}
	for range 1024 {
		// X, Z in [-50, 50]
		m := math3d.Translate(math3d.V3(rng.Float64()*100-50, 0, rng.Float64()*100-50))
		box := local.Transform(m)
		all = append(all, box)
		if _, ok := cur.Add(box); !ok {
			batches = append(batches, cur)
			cur = &culling.Batch{}
			cur.Add(box)
		}
	}
	batches = append(batches, cur)

	b.Run("per_object", func(b *testing.B) {
		for b.Loop() {
			visible := 0
			for _, box := range all {
				if culling.IntersectNoPartial(planes, box) != culling.Out {
					visible++
				}
			}
			_ = visible
		}
	})

	b.Run("batched", func(b *testing.B) {
		for b.Loop() {
			visible := 0
			for _, batch := range batches {
				batch.CullCamera(planes)
				visible += batch.Visible.Count()
			}
			_ = visible
		}
	})
}

func BenchmarkTopDownDraw(b *testing.B) {
	fb := NewFramebuffer(160, 96)
	m := NewTopDown(fb, math3d.Vec3{}, 1.5)

	rng := rand.New(rand.NewSource(7))
	batch := &culling.Batch{}
	for !batch.Full() {
		batch.Add(culling.NewAABB(math3d.V3(rng.Float64()*100-50, 0, rng.Float64()*60-30), math3d.V3(0.5, 1, 0.5)))
	}
	batches := []*culling.Batch{batch}

	for b.Loop() {
		m.Clear(10)
		m.DrawBatches(batches, MapLight, true)
	}
}
