// Package scene places skeleton instances in a world, animates them and
// groups their bounds into culling batches.
package scene

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/skelcull/pkg/culling"
	"github.com/taigrr/skelcull/pkg/math3d"
	"github.com/taigrr/skelcull/pkg/models"
)

var (
	// ErrNoSkeletons is returned when a world is built without models.
	ErrNoSkeletons = errors.New("no skeletons to instance")
	// ErrInstanceCount is returned for a negative instance count.
	ErrInstanceCount = errors.New("instance count is negative")
)

// Config controls how instances are placed and animated.
type Config struct {
	// Count is the number of instances.
	Count int
	// Spread is the half-width of the square the instances stand in.
	Spread float64
	// Seed makes placement and animation repeatable.
	Seed int64
	// Sway is how far an instance leans, as a fraction of its height.
	Sway float64
	// FPS is the frame rate the sway springs are tuned for.
	FPS int
}

// DefaultConfig returns the configuration used by the CLI.
func DefaultConfig() Config {
	return Config{
		Count:  2000,
		Spread: 60,
		Seed:   1,
		Sway:   0.25,
		FPS:    60,
	}
}

// Instance is one placed skeleton.
type Instance struct {
	Skeleton *models.Skeleton
	Position math3d.Vec3
	Yaw      float64
	Scale    float64

	// Bounds is the world-space bounds for the current frame.
	Bounds culling.AABB

	// batch and slot locate Bounds in the world's batches.
	batch, slot int

	rest   culling.AABB
	lean   float64
	vel    float64
	target float64
	period int
	phase  int
}

// World owns the instances and the batches their bounds are stored in.
type World struct {
	cfg       Config
	spring    harmonica.Spring
	Instances []Instance
	batches   []*culling.Batch
	frame     int
}

// NewWorld scatters cfg.Count instances of skels, picked round-robin, over
// the square [-Spread, Spread] on the ground plane.
func NewWorld(skels []*models.Skeleton, cfg Config) (*World, error) {
	if len(skels) == 0 {
		return nil, ErrNoSkeletons
	}
	if cfg.Count < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInstanceCount, cfg.Count)
	}
	if cfg.FPS <= 0 {
		cfg.FPS = DefaultConfig().FPS
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	w := &World{
		cfg:       cfg,
		spring:    harmonica.NewSpring(harmonica.FPS(cfg.FPS), 3.0, 0.4),
		Instances: make([]Instance, cfg.Count),
	}

	for i := range w.Instances {
		inst := &w.Instances[i]
		inst.Skeleton = skels[i%len(skels)]
		inst.Position = math3d.V3(
			(rng.Float64()*2-1)*cfg.Spread,
			0,
			(rng.Float64()*2-1)*cfg.Spread,
		)
		inst.Yaw = rng.Float64() * 2 * math.Pi
		inst.Scale = 0.8 + rng.Float64()*0.4
		inst.period = max(1, cfg.FPS/2+rng.Intn(cfg.FPS*2))
		inst.phase = rng.Intn(inst.period)

		model := math3d.Translate(inst.Position).
			Mul(math3d.RotateY(inst.Yaw)).
			Mul(math3d.Scale(math3d.V3(inst.Scale, inst.Scale, inst.Scale)))
		inst.rest = inst.Skeleton.Bounds.Transform(model)
		inst.Bounds = inst.rest
	}

	w.batch()
	return w, nil
}

// batch assigns every instance a slot, filling batches in placement order.
func (w *World) batch() {
	w.batches = w.batches[:0]
	var cur *culling.Batch
	for i := range w.Instances {
		if cur == nil || cur.Full() {
			cur = &culling.Batch{}
			w.batches = append(w.batches, cur)
		}
		slot, _ := cur.Add(w.Instances[i].Bounds)
		w.Instances[i].batch = len(w.batches) - 1
		w.Instances[i].slot = slot
	}
}

// Config returns the configuration the world was built with.
func (w *World) Config() Config {
	return w.cfg
}

// Frame returns the number of Step calls so far.
func (w *World) Frame() int {
	return w.frame
}

// Step advances the animation by one frame. Each instance leans toward a
// target that flips side every period frames; the lean follows the target
// through a damped spring and widens the bounds on the leaning side.
func (w *World) Step() {
	w.frame++
	for i := range w.Instances {
		inst := &w.Instances[i]
		if (w.frame+inst.phase)%inst.period == 0 {
			if inst.target > 0 {
				inst.target = -w.cfg.Sway
			} else {
				inst.target = w.cfg.Sway
			}
		}
		inst.lean, inst.vel = w.spring.Update(inst.lean, inst.vel, inst.target)
		inst.Bounds = leanBounds(inst.rest, inst.Yaw, inst.lean)
	}
}

// leanBounds grows rest to cover its top shifted sideways by lean times its
// height, along the instance's local X axis.
func leanBounds(rest culling.AABB, yaw, lean float64) culling.AABB {
	if lean == 0 {
		return rest
	}
	h := rest.Size().Y
	shift := math3d.V3(math.Cos(yaw), 0, -math.Sin(yaw)).Scale(lean * h)
	return rest.Union(culling.NewAABB(rest.Center.Add(shift), rest.Extents))
}

// Gather writes the current instance bounds into the batches and returns
// them. The returned slice and batches are reused by the next call.
func (w *World) Gather() []*culling.Batch {
	for i := range w.Instances {
		inst := &w.Instances[i]
		w.batches[inst.batch].Set(inst.slot, inst.Bounds)
	}
	for _, b := range w.batches {
		b.RecomputeBounds()
	}
	return w.batches
}

// Bounds returns the box around every instance, or the spread square when
// the world is empty.
func (w *World) Bounds() culling.AABB {
	if len(w.Instances) == 0 {
		s := w.cfg.Spread
		return culling.NewAABB(math3d.Vec3{}, math3d.V3(s, 1, s))
	}
	out := w.Instances[0].Bounds
	for _, inst := range w.Instances[1:] {
		out = out.Union(inst.Bounds)
	}
	return out
}

// Visible returns the instances marked visible by the last cull of the
// gathered batches.
func (w *World) Visible() []int {
	var out []int
	for i, inst := range w.Instances {
		if w.batches[inst.batch].Visible.Test(inst.slot) {
			out = append(out, i)
		}
	}
	return out
}
