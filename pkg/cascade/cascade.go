// Package cascade turns a camera and a directional light into the culling
// input for a camera pass and a cascaded shadow pass.
package cascade

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/skelcull/pkg/culling"
	"github.com/taigrr/skelcull/pkg/math3d"
	"github.com/taigrr/skelcull/pkg/render"
)

var (
	// ErrCascadeCount is returned when the cascade count is outside
	// [1, culling.MaxSplits].
	ErrCascadeCount = errors.New("cascade count out of range")
	// ErrLightDirection is returned for a zero light direction.
	ErrLightDirection = errors.New("light direction is zero")
)

// Config controls how the camera view range is split into cascades.
type Config struct {
	// Cascades is the number of shadow splits.
	Cascades int
	// Lambda blends between uniform (0) and logarithmic (1) split distances.
	Lambda float64
	// MaxDistance limits how far from the camera shadows are received.
	// Zero uses the camera far plane.
	MaxDistance float64
	// Extrusion bounds how far toward the light a caster may sit in front
	// of a cascade. Zero leaves that side open.
	Extrusion float64
	// SphereTest enables the caster sphere test.
	SphereTest bool
	// ReceiverRejection enables receiver plane rejection.
	ReceiverRejection bool
}

// DefaultConfig returns the configuration used by the CLI.
func DefaultConfig() Config {
	return Config{
		Cascades:          4,
		Lambda:            0.75,
		MaxDistance:       80,
		SphereTest:        true,
		ReceiverRejection: true,
	}
}

// Cascade describes one split of a directional light.
type Cascade struct {
	// Near and Far are the view distances covered by this split.
	Near, Far float64

	// Center and Radius bound the camera slice.
	Center math3d.Vec3
	Radius float64

	// Slice holds the camera slice corners and Box the light-aligned box
	// around the bounding sphere, both in render.Corners order.
	Slice [8]math3d.Vec3
	Box   [8]math3d.Vec3

	// ViewProj is the orthographic light projection whose clip volume is Box,
	// the matrix a shadow map for this split would be rendered with.
	ViewProj math3d.Mat4
}

// Light is the culling input for a directional light together with the
// geometry it was built from.
type Light struct {
	// Direction is the normalized direction light travels in.
	Direction math3d.Vec3
	// View maps world positions into light space.
	View     math3d.Mat4
	Cascades []Cascade
	Splits   *culling.Splits
}

// SplitDistances returns n+1 view distances from near to far using the
// practical split scheme: each boundary blends the logarithmic and uniform
// distributions by lambda.
func SplitDistances(near, far float64, n int, lambda float64) []float64 {
	out := make([]float64, n+1)
	for i := range out {
		t := float64(i) / float64(n)
		logD := near * math.Pow(far/near, t)
		uniD := near + (far-near)*t
		out[i] = lambda*logD + (1-lambda)*uniD
	}
	// keep the ends exact
	out[0], out[n] = near, far
	return out
}

// BuildCamera returns the single-split culling input for cam.
func BuildCamera(cam *render.Camera) (*culling.Splits, error) {
	splits, err := culling.CameraSplits(render.ExtractPlanes(cam.ViewProjectionMatrix()))
	if err != nil {
		return nil, fmt.Errorf("camera splits: %w", err)
	}
	return splits, nil
}

// BuildDirectional splits the camera view range into cascades for a light
// travelling along lightDir and builds their culling input.
func BuildDirectional(cam *render.Camera, lightDir math3d.Vec3, cfg Config) (*Light, error) {
	if cfg.Cascades < 1 || cfg.Cascades > culling.MaxSplits {
		return nil, fmt.Errorf("%w: %d", ErrCascadeCount, cfg.Cascades)
	}
	if lightDir.LenSq() == 0 {
		return nil, ErrLightDirection
	}

	far := cam.Far
	if cfg.MaxDistance > 0 {
		far = min(far, cfg.MaxDistance)
	}

	dir := lightDir.Normalize()
	view := LightView(dir)
	right, up := lightBasis(view)

	b := culling.NewSplitsBuilder().
		WithLightSpace(view).
		WithSphereTest(cfg.SphereTest)
	if cfg.ReceiverRejection {
		b.WithReceiverPlanes(ReceiverPlanes(cam, far, dir))
	}

	light := &Light{Direction: dir, View: view}
	dists := SplitDistances(cam.Near, far, cfg.Cascades, cfg.Lambda)
	for i := range cfg.Cascades {
		c := Cascade{Near: dists[i], Far: dists[i+1]}
		c.Slice = cam.SliceCorners(c.Near, c.Far)
		c.Center, c.Radius = boundingSphere(c.Slice[:])

		planes := splitPlanes(c.Center, c.Radius, right, up, dir, cfg.Extrusion)
		c.Box = boxCorners(c.Center, c.Radius, right, up, dir, cfg.Extrusion)
		c.ViewProj = lightProjection(view, c.Center, c.Radius, backDepth(c.Radius, cfg.Extrusion)).Mul(view)

		b.AddSplit(planes, c.Center, c.Radius)
		light.Cascades = append(light.Cascades, c)
	}

	splits, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("light splits: %w", err)
	}
	light.Splits = splits
	return light, nil
}

// LightView returns the world to light-space transform for a light
// travelling along dir. Light space looks down -Z.
func LightView(dir math3d.Vec3) math3d.Mat4 {
	up := math3d.Up()
	if math.Abs(dir.Normalize().Y) > 0.99 {
		up = math3d.V3(0, 0, -1)
	}
	return math3d.LookAt(math3d.Vec3{}, dir, up)
}

// lightBasis reads the world-space right and up axes out of a view matrix.
func lightBasis(view math3d.Mat4) (right, up math3d.Vec3) {
	return math3d.V3(view[0], view[4], view[8]), math3d.V3(view[1], view[5], view[9])
}

// ReceiverPlanes returns the camera frustum planes, with the far plane at
// far, that casters cannot cross by moving along dir. A caster outside any
// of them casts its whole shadow outside the view.
func ReceiverPlanes(cam *render.Camera, far float64, dir math3d.Vec3) []culling.Plane {
	proj := math3d.Perspective(cam.FOV, cam.AspectRatio, cam.Near, far)
	frustum := render.NewFrustumFromMatrix(proj.Mul(cam.ViewMatrix()))

	var out []culling.Plane
	for _, p := range frustum.Planes {
		if p.Normal.Dot(dir) <= 0 {
			out = append(out, p)
		}
	}
	return out
}

// boundingSphere returns the centroid of pts and the distance to the
// farthest one.
func boundingSphere(pts []math3d.Vec3) (math3d.Vec3, float64) {
	var c math3d.Vec3
	for _, p := range pts {
		c = c.Add(p)
	}
	c = c.Scale(1 / float64(len(pts)))

	r := 0.0
	for _, p := range pts {
		r = max(r, p.Distance(c))
	}
	return c, r
}

// splitPlanes bounds the light-aligned box around a cascade sphere. The four
// sides clamp light-space XY and the far cap drops casters beyond the sphere
// along the light. The cap toward the light is only added for a positive
// extrusion.
func splitPlanes(center math3d.Vec3, radius float64, right, up, dir math3d.Vec3, extrusion float64) []culling.Plane {
	planes := []culling.Plane{
		culling.NewPlane(right, center.Sub(right.Scale(radius))),
		culling.NewPlane(right.Negate(), center.Add(right.Scale(radius))),
		culling.NewPlane(up, center.Sub(up.Scale(radius))),
		culling.NewPlane(up.Negate(), center.Add(up.Scale(radius))),
		culling.NewPlane(dir.Negate(), center.Add(dir.Scale(radius))),
	}
	if extrusion > 0 {
		planes = append(planes, culling.NewPlane(dir, center.Sub(dir.Scale(radius+extrusion))))
	}
	return planes
}

// boxCorners returns the corners of the box bounded by splitPlanes. An open
// light side is drawn one radius deep.
func boxCorners(center math3d.Vec3, radius float64, right, up, dir math3d.Vec3, extrusion float64) [8]math3d.Vec3 {
	back := backDepth(radius, extrusion)
	var out [8]math3d.Vec3
	for i, d := range [2]float64{-back, radius} {
		c := center.Add(dir.Scale(d))
		hx, hy := right.Scale(radius), up.Scale(radius)
		out[i*4+0] = c.Sub(hx).Sub(hy)
		out[i*4+1] = c.Add(hx).Sub(hy)
		out[i*4+2] = c.Add(hx).Add(hy)
		out[i*4+3] = c.Sub(hx).Add(hy)
	}
	return out
}

// backDepth is how far the box reaches from the sphere center toward the
// light.
func backDepth(radius, extrusion float64) float64 {
	if extrusion > 0 {
		return radius + extrusion
	}
	return radius + radius
}

// lightProjection returns the orthographic projection around a cascade
// sphere in the light space of view. Light space looks down -Z, so depth
// along the light is -z.
func lightProjection(view math3d.Mat4, center math3d.Vec3, radius, back float64) math3d.Mat4 {
	c := view.MulVec3(center)
	return math3d.Orthographic(c.X-radius, c.X+radius, c.Y-radius, c.Y+radius, -c.Z-back, -c.Z+radius)
}
