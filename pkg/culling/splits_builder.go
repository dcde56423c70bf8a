package culling

import (
	"github.com/taigrr/skelcull/pkg/math3d"
)

// SplitsBuilder accumulates per-split planes and packs them into the shared
// PlaneSets of a Splits.
type SplitsBuilder struct {
	splitPlanes    PlaneSet
	combinedPlanes PlaneSet
	receiver       []Plane
	splits         []Split
	lightSpace     math3d.Mat4
	sphereTest     bool
}

// NewSplitsBuilder creates a builder with an identity light-space transform
// and the sphere test disabled.
func NewSplitsBuilder() *SplitsBuilder {
	return &SplitsBuilder{lightSpace: math3d.Identity()}
}

// WithReceiverPlanes sets the receiver planes. They are also appended to the
// combined planes of every split added afterwards.
func (b *SplitsBuilder) WithReceiverPlanes(planes []Plane) *SplitsBuilder {
	b.receiver = append([]Plane(nil), planes...)
	return b
}

// WithLightSpace sets the world to light view transform.
func (b *SplitsBuilder) WithLightSpace(m math3d.Mat4) *SplitsBuilder {
	b.lightSpace = m
	return b
}

// WithSphereTest enables or disables the caster sphere test.
func (b *SplitsBuilder) WithSphereTest(enabled bool) *SplitsBuilder {
	b.sphereTest = enabled
	return b
}

// AddSplit appends a split with the given frustum planes and culling sphere.
func (b *SplitsBuilder) AddSplit(planes []Plane, sphereCenter math3d.Vec3, sphereRadius float64) *SplitsBuilder {
	packed := PackPlanes(planes)
	combined := PackPlanes(append(append([]Plane(nil), planes...), b.receiver...))

	b.splits = append(b.splits, Split{
		PlaneOffset:    len(b.splitPlanes),
		PlaneCount:     len(packed),
		CombinedOffset: len(b.combinedPlanes),
		CombinedCount:  len(combined),
		SphereCenter:   sphereCenter,
		SphereRadius:   sphereRadius,
	})
	b.splitPlanes = append(b.splitPlanes, packed...)
	b.combinedPlanes = append(b.combinedPlanes, combined...)
	return b
}

// Build validates and returns the Splits.
func (b *SplitsBuilder) Build() (*Splits, error) {
	return NewSplits(b.splitPlanes, b.combinedPlanes, PackPlanes(b.receiver), b.splits, b.lightSpace, b.sphereTest)
}

// CameraSplits builds the single-split input for a camera view.
func CameraSplits(frustum []Plane) (*Splits, error) {
	return NewSplitsBuilder().AddSplit(frustum, math3d.Vec3{}, 0).Build()
}
