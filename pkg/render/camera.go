package render

import (
	"math"

	"github.com/taigrr/skelcull/pkg/math3d"
)

// Camera represents a perspective camera with position and orientation.
type Camera struct {
	// Position in world space
	Position math3d.Vec3

	// Orientation (Euler angles in radians)
	Pitch float64 // Rotation around X axis (look up/down)
	Yaw   float64 // Rotation around Y axis (look left/right)

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	// Cached matrices (computed on demand)
	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	vpValid        bool
}

// NewCamera creates a new camera with default settings.
func NewCamera() *Camera {
	return &Camera{
		Position:    math3d.V3(0, 2, 10),
		FOV:         math.Pi / 3, // 60 degrees
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         200,
		viewDirty:   true,
		projDirty:   true,
	}
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.viewDirty = true
}

// SetRotation sets the camera rotation (pitch, yaw in radians).
func (c *Camera) SetRotation(pitch, yaw float64) {
	c.Pitch = clampPitch(pitch)
	c.Yaw = yaw
	c.viewDirty = true
}

// SetFOV sets the field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// Forward returns the forward direction vector.
func (c *Camera) Forward() math3d.Vec3 {
	// Forward is -Z in camera space, rotated by yaw and pitch
	return math3d.V3(
		-math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		-math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// Right returns the right direction vector.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.V3(
		math.Cos(c.Yaw),
		0,
		-math.Sin(c.Yaw),
	)
}

// Up returns the up direction vector.
func (c *Camera) Up() math3d.Vec3 {
	return c.Right().Cross(c.Forward())
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Position, c.Position.Add(c.Forward()), c.Up())
		c.viewDirty = false
		c.vpValid = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
		c.vpValid = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	view, proj := c.ViewMatrix(), c.ProjectionMatrix()
	if !c.vpValid {
		c.viewProjMatrix = proj.Mul(view)
		c.vpValid = true
	}
	return c.viewProjMatrix
}

// Frustum returns the current view frustum.
func (c *Camera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}

// SliceCorners returns the world-space corners of the part of the view
// frustum between the view distances near and far, near quad first and in
// the same order as Corners.
func (c *Camera) SliceCorners(near, far float64) [8]math3d.Vec3 {
	fwd, right, up := c.Forward(), c.Right(), c.Up()
	tanY := math.Tan(c.FOV / 2)
	tanX := tanY * c.AspectRatio

	var out [8]math3d.Vec3
	for i, d := range [2]float64{near, far} {
		center := c.Position.Add(fwd.Scale(d))
		hx, hy := right.Scale(d*tanX), up.Scale(d*tanY)
		out[i*4+0] = center.Sub(hx).Sub(hy)
		out[i*4+1] = center.Add(hx).Sub(hy)
		out[i*4+2] = center.Add(hx).Add(hy)
		out[i*4+3] = center.Sub(hx).Add(hy)
	}
	return out
}

// Rotate rotates the camera by the given angles (in radians).
func (c *Camera) Rotate(deltaPitch, deltaYaw float64) {
	c.Pitch = clampPitch(c.Pitch + deltaPitch)
	c.Yaw += deltaYaw
	c.viewDirty = true
}

// Orbit places the camera distance units from target at the given angles,
// looking at target.
func (c *Camera) Orbit(target math3d.Vec3, distance, pitch, yaw float64) {
	c.SetRotation(pitch, yaw)
	c.SetPosition(target.Sub(c.Forward().Scale(distance)))
}

// LookAt makes the camera look at a target point.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Position).Normalize()

	c.Pitch = clampPitch(math.Asin(dir.Y))
	c.Yaw = math.Atan2(-dir.X, -dir.Z)
	c.viewDirty = true
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	m := c.ViewProjectionMatrix()

	// Check if behind camera
	if w := m[3]*worldPos.X + m[7]*worldPos.Y + m[11]*worldPos.Z + m[15]; w <= 0 {
		return 0, 0, 0, false
	}

	ndc := m.MulVec3(worldPos)
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	return x, y, ndc.Z, true
}

func clampPitch(p float64) float64 {
	// avoid the LookAt singularity straight up or down
	const maxPitch = math.Pi/2 - 0.01
	return max(-maxPitch, min(maxPitch, p))
}
