package culling

import (
	"math/rand"
	"testing"

	"github.com/taigrr/skelcull/pkg/math3d"
)

func BenchmarkIntersect(b *testing.B) {
	planes := PackPlanes(slantedPlanes())
	box := cube(1, 0, 10, 1)

	for b.Loop() {
		Intersect(planes, box)
	}
}

func BenchmarkIntersectNoPartial(b *testing.B) {
	planes := PackPlanes(slantedPlanes())
	box := cube(1, 0, 10, 1)

	for b.Loop() {
		IntersectNoPartial(planes, box)
	}
}

// partialBatch returns a full batch straddling the slanted wedge, which
// forces per-object tests.
func partialBatch() *Batch {
	rng := rand.New(rand.NewSource(1))
	return randomBatch(rng, BatchCapacity, math3d.V3(10, 0, 10), 6)
}

func BenchmarkCullSingleSplitPartial(b *testing.B) {
	planes := PackPlanes(slantedPlanes())
	batch := partialBatch()

	for b.Loop() {
		batch.CullCamera(planes)
	}
}

func BenchmarkCullMultiSplit(b *testing.B) {
	for _, sphere := range []bool{false, true} {
		name := "planes"
		if sphere {
			name = "planes+sphere"
		}
		b.Run(name, func(b *testing.B) {
			splits := twoSplitLight(b, sphere)
			rng := rand.New(rand.NewSource(2))
			batch := randomBatch(rng, BatchCapacity, math3d.V3(0, 0, 0), 8)

			for b.Loop() {
				batch.CullLight(splits)
			}
		})
	}
}

func BenchmarkMaskAll(b *testing.B) {
	m := Mask128{Lower: 0xaaaaaaaaaaaaaaaa, Upper: 0x5555555555555555}

	for b.Loop() {
		n := 0
		for i := range m.All() {
			n += i
		}
		_ = n
	}
}

func BenchmarkDispatcher(b *testing.B) {
	splits := twoSplitLight(b, true)
	batches := scatterBatches(5, 256)

	b.Run("serial", func(b *testing.B) {
		for b.Loop() {
			CullSerial(ViewLight, splits, batches)
		}
	})

	b.Run("pool", func(b *testing.B) {
		d := NewDispatcher(0)
		defer d.Close()
		for b.Loop() {
			d.Cull(ViewLight, splits, batches)
		}
	})
}
