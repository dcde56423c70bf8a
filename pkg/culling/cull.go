package culling

// CullSingleSplit writes into mask which of objects intersect planes.
//
// The aggregate bounds are classified first. A batch fully inside sets the
// first len(objects) bits without looking at any object, a batch fully
// outside clears the mask, and only a straddling batch tests each object.
// objects must hold at most BatchCapacity boxes. The batch classification is
// returned.
func CullSingleSplit(planes PlaneSet, bounds AABB, objects []AABB, mask *Mask128) IntersectResult {
	res := Intersect(planes, bounds)

	switch res {
	case In:
		mask.SetFirst(len(objects))
	case Out:
		*mask = Mask128{}
	default:
		var m Mask128
		for i := range objects {
			if IntersectNoPartial(planes, objects[i]) != Out {
				m.Set(i)
			}
		}
		*mask = m
	}
	return res
}

// MultiResult summarises how a batch was classified by CullMultiSplit. Each
// field except ReceiverRejected is a bitset over split indices.
type MultiResult struct {
	// ReceiverRejected is set when the whole batch was outside the receiver
	// planes; no split was examined.
	ReceiverRejected bool

	SphereRejected uint8
	In             uint8
	Out            uint8
	Partial        uint8
}

// CullMultiSplit writes per-split visibility for objects into splitMask and
// the union over all splits into mask.
//
// Per split the batch is first tested against the cascade sphere and then
// classified against the split planes. Straddling batches test each object
// against the split planes combined with the receiver planes. Once every
// split is done, surviving objects are tested against all cascade spheres at
// once and their split bits are narrowed to the spheres they can reach.
// objects must hold at most BatchCapacity boxes.
func CullMultiSplit(splits *Splits, bounds AABB, objects []AABB, mask *Mask128, splitMask *SplitMask) MultiResult {
	var res MultiResult

	if receivers := splits.ReceiverPlanes(); len(receivers) > 0 {
		if IntersectNoPartial(receivers, bounds) == Out {
			*mask = Mask128{}
			*splitMask = SplitMask{}
			res.ReceiverRejected = true
			return res
		}
	}

	*splitMask = SplitMask{}

	var occupied Mask128
	occupied.SetFirst(len(objects))
	sphereTest := splits.SphereTestEnabled()

	for s := range splits.Len() {
		bit := uint8(1) << uint(s)

		if sphereTest && splits.SphereTest(s, bounds) == CannotCastShadow {
			res.SphereRejected |= bit
			continue
		}

		switch Intersect(splits.SplitPlanes(s), bounds) {
		case In:
			res.In |= bit
			for i := range objects {
				splitMask[i] |= bit
			}
		case Out:
			// bits for this split are already clear
			res.Out |= bit
		case Partial:
			res.Partial |= bit
			combined := splits.CombinedPlanes(s)
			for i := range occupied.All() {
				if IntersectNoPartial(combined, objects[i]) != Out {
					splitMask[i] |= bit
				}
			}
		}
	}

	*mask = splitMask.Visible()

	if sphereTest && !mask.IsZero() {
		for i := range mask.All() {
			splitMask[i] &= splits.SphereTestMask(objects[i])
		}
		*mask = splitMask.Visible()
	}
	return res
}
