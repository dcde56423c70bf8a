package render

import (
	"image"
	"math"

	"github.com/taigrr/skelcull/pkg/culling"
	"github.com/taigrr/skelcull/pkg/math3d"
)

// TopDown paints the XZ footprint of the scene into a framebuffer, looking
// straight down the Y axis. Screen X follows world X and screen Y follows
// world Z.
type TopDown struct {
	fb *Framebuffer

	// Center is the world position drawn in the middle of the framebuffer.
	Center math3d.Vec3
	// Scale is in pixels per world unit.
	Scale float64
}

// NewTopDown creates a map over fb.
func NewTopDown(fb *Framebuffer, center math3d.Vec3, scale float64) *TopDown {
	return &TopDown{fb: fb, Center: center, Scale: scale}
}

// Fit picks Center and Scale so that the box fits the framebuffer with a
// small margin.
func (m *TopDown) Fit(box culling.AABB) {
	m.Center = box.Center
	w, h := max(box.Extents.X, 1e-6), max(box.Extents.Z, 1e-6)
	m.Scale = 0.45 * min(float64(m.fb.Width)/w, float64(m.fb.Height)/h)
}

// ToPixel maps a world position to framebuffer coordinates.
func (m *TopDown) ToPixel(p math3d.Vec3) (int, int) {
	x := (p.X-m.Center.X)*m.Scale + float64(m.fb.Width)/2
	y := (p.Z-m.Center.Z)*m.Scale + float64(m.fb.Height)/2
	return int(math.Floor(x)), int(math.Floor(y))
}

// Clear fills the background and draws a grid line every spacing world
// units.
func (m *TopDown) Clear(spacing float64) {
	m.fb.Clear(ColorBackground)
	if spacing <= 0 || spacing*m.Scale < 4 {
		return
	}
	halfW := float64(m.fb.Width) / 2 / m.Scale
	halfH := float64(m.fb.Height) / 2 / m.Scale
	for x := math.Floor((m.Center.X-halfW)/spacing) * spacing; x <= m.Center.X+halfW; x += spacing {
		px, _ := m.ToPixel(math3d.V3(x, 0, m.Center.Z))
		m.fb.DrawLine(px, 0, px, m.fb.Height-1, ColorGrid)
	}
	for z := math.Floor((m.Center.Z-halfH)/spacing) * spacing; z <= m.Center.Z+halfH; z += spacing {
		_, py := m.ToPixel(math3d.V3(m.Center.X, 0, z))
		m.fb.DrawLine(0, py, m.fb.Width-1, py, ColorGrid)
	}
}

// DrawBox fills the footprint of box. Boxes smaller than a pixel still
// cover one pixel.
func (m *TopDown) DrawBox(box culling.AABB, c Color) {
	x0, y0 := m.ToPixel(box.Min())
	x1, y1 := m.ToPixel(box.Max())
	m.fb.FillRect(image.Rect(x0, y0, x0+max(x1-x0, 1), y0+max(y1-y0, 1)), c)
}

// OutlineBox draws the outline of the footprint of box.
func (m *TopDown) OutlineBox(box culling.AABB, c Color) {
	x0, y0 := m.ToPixel(box.Min())
	x1, y1 := m.ToPixel(box.Max())
	m.fb.StrokeRect(image.Rect(x0, y0, x1+1, y1+1), c)
}

// DrawLine draws a world-space segment flattened onto XZ.
func (m *TopDown) DrawLine(a, b math3d.Vec3, c Color) {
	x0, y0 := m.ToPixel(a)
	x1, y1 := m.ToPixel(b)
	m.fb.DrawLine(x0, y0, x1, y1, c)
}

// DrawCorners draws the 12 edges of a frustum or box given by its corners in
// Corners order.
func (m *TopDown) DrawCorners(corners [8]math3d.Vec3, c Color) {
	for _, e := range FrustumEdges {
		m.DrawLine(corners[e[0]], corners[e[1]], c)
	}
}

// MapMode selects how object footprints are colored.
type MapMode int

const (
	// MapCamera colors objects by camera visibility.
	MapCamera MapMode = iota
	// MapLight colors objects by the nearest cascade they cast into.
	MapLight
)

// DrawBatches draws every occupied object of batches, colored from the
// masks of the last cull. When outline is set the aggregate batch bounds are
// drawn too.
func (m *TopDown) DrawBatches(batches []*culling.Batch, mode MapMode, outline bool) {
	for _, b := range batches {
		if outline && b.Len() > 0 {
			m.OutlineBox(b.Bounds, ColorBatch)
		}
		for i := range b.Len() {
			c := ColorCulled
			switch {
			case mode == MapLight:
				c = SplitColor(b.SplitVisible[i])
			case b.Visible.Test(i):
				c = ColorVisible
			}
			m.DrawBox(b.Objects[i], c)
		}
	}
}
