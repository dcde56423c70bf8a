package culling

// BatchCapacity is the maximum number of objects in a batch, matching the
// two 64-bit words of a Mask128.
const BatchCapacity = 128

// Batch is a fixed-capacity group of skeleton bounds culled together.
// It owns the aggregate bounds used for coarse rejection and the output masks
// written by the culling routines. A Batch must only be touched by one
// goroutine at a time.
type Batch struct {
	// Bounds is the union of all occupied object bounds.
	Bounds AABB

	Objects [BatchCapacity]AABB
	count   int

	// Visible and SplitVisible are overwritten by every cull.
	Visible      Mask128
	SplitVisible SplitMask
}

// Len returns the number of occupied object slots.
func (b *Batch) Len() int {
	return b.count
}

// Full reports whether the batch has no free slot.
func (b *Batch) Full() bool {
	return b.count == BatchCapacity
}

// Add appends box and grows the aggregate bounds. It returns the slot index,
// or false if the batch is full.
func (b *Batch) Add(box AABB) (int, bool) {
	if b.count == BatchCapacity {
		return 0, false
	}
	i := b.count
	b.Objects[i] = box
	if i == 0 {
		b.Bounds = box
	} else {
		b.Bounds = b.Bounds.Union(box)
	}
	b.count++
	return i, true
}

// Set replaces the bounds in slot i. Call RecomputeBounds after a round of
// updates.
func (b *Batch) Set(i int, box AABB) {
	b.Objects[i] = box
}

// RecomputeBounds rebuilds the aggregate bounds from the occupied slots.
func (b *Batch) RecomputeBounds() {
	if b.count == 0 {
		b.Bounds = AABB{}
		return
	}
	agg := b.Objects[0]
	for i := 1; i < b.count; i++ {
		agg = agg.Union(b.Objects[i])
	}
	b.Bounds = agg
}

// Reset empties the batch and clears its masks.
func (b *Batch) Reset() {
	b.count = 0
	b.Bounds = AABB{}
	b.Visible = Mask128{}
	b.SplitVisible = SplitMask{}
}

// CullCamera runs the single-split routine against planes and stores the
// result in b.Visible.
func (b *Batch) CullCamera(planes PlaneSet) IntersectResult {
	return CullSingleSplit(planes, b.Bounds, b.Objects[:b.count], &b.Visible)
}

// CullLight runs the multi-split routine against splits and stores the
// results in b.Visible and b.SplitVisible.
func (b *Batch) CullLight(splits *Splits) MultiResult {
	return CullMultiSplit(splits, b.Bounds, b.Objects[:b.count], &b.Visible, &b.SplitVisible)
}
