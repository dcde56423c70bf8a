// Package models loads skinned models and reduces them to the skeleton
// bounds the culler works on.
package models

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/skelcull/pkg/culling"
	"github.com/taigrr/skelcull/pkg/math3d"
)

// Joint is one bone of a skeleton in its bind pose.
type Joint struct {
	Name string
	// Parent indexes Skeleton.Joints, or is -1 for a root.
	Parent int
	// Position is the joint origin in model space.
	Position math3d.Vec3
}

// Skeleton is a skinned model reduced to its joints and model-space bounds.
type Skeleton struct {
	Name   string
	Joints []Joint
	Bounds culling.AABB
}

// JointPadding is added around joint positions when bounds come from joints
// alone, standing in for the flesh around each bone.
const JointPadding = 0.1

// JointBounds returns the box around every joint, grown by pad on each side.
func JointBounds(joints []Joint, pad float64) culling.AABB {
	if len(joints) == 0 {
		return culling.NewAABB(math3d.Vec3{}, math3d.V3(pad, pad, pad))
	}
	lo, hi := joints[0].Position, joints[0].Position
	for _, j := range joints[1:] {
		lo = lo.Min(j.Position)
		hi = hi.Max(j.Position)
	}
	p := math3d.V3(pad, pad, pad)
	return culling.FromMinMax(lo.Sub(p), hi.Add(p))
}

// BoxSkeleton returns a humanoid skeleton of the given height standing on
// the origin. It is used when no model files are supplied.
func BoxSkeleton(name string, height float64) *Skeleton {
	h := height
	joints := []Joint{
		{Name: "hips", Parent: -1, Position: math3d.V3(0, 0.5*h, 0)},
		{Name: "spine", Parent: 0, Position: math3d.V3(0, 0.65*h, 0)},
		{Name: "neck", Parent: 1, Position: math3d.V3(0, 0.85*h, 0)},
		{Name: "head", Parent: 2, Position: math3d.V3(0, 0.95*h, 0)},
		{Name: "arm.L", Parent: 1, Position: math3d.V3(-0.2*h, 0.8*h, 0)},
		{Name: "hand.L", Parent: 4, Position: math3d.V3(-0.25*h, 0.5*h, 0.05*h)},
		{Name: "arm.R", Parent: 1, Position: math3d.V3(0.2*h, 0.8*h, 0)},
		{Name: "hand.R", Parent: 6, Position: math3d.V3(0.25*h, 0.5*h, 0.05*h)},
		{Name: "leg.L", Parent: 0, Position: math3d.V3(-0.1*h, 0.45*h, 0)},
		{Name: "foot.L", Parent: 8, Position: math3d.V3(-0.1*h, 0, 0.05*h)},
		{Name: "leg.R", Parent: 0, Position: math3d.V3(0.1*h, 0.45*h, 0)},
		{Name: "foot.R", Parent: 10, Position: math3d.V3(0.1*h, 0, 0.05*h)},
	}
	return &Skeleton{
		Name:   name,
		Joints: joints,
		Bounds: JointBounds(joints, JointPadding*h/1.8),
	}
}

// DefaultHeight is the height of BoxSkeleton models built by the CLI.
const DefaultHeight = 1.8

// LoadAll loads every path concurrently. The result has the same order as
// paths; the first error cancels the remaining loads.
func LoadAll(ctx context.Context, paths []string) ([]*Skeleton, error) {
	out := make([]*Skeleton, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sk, err := LoadSkeleton(path)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			out[i] = sk
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
