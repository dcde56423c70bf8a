package culling

import (
	"iter"
	"math/bits"
)

// Mask128 is a per-batch visibility mask: bit i set means object i of the
// batch is visible. Objects 0-63 live in Lower, 64-127 in Upper.
type Mask128 struct {
	Lower uint64
	Upper uint64
}

// Set sets bit i.
func (m *Mask128) Set(i int) {
	if i < 64 {
		m.Lower |= 1 << uint(i)
	} else {
		m.Upper |= 1 << uint(i-64)
	}
}

// Clear clears bit i.
func (m *Mask128) Clear(i int) {
	if i < 64 {
		m.Lower &^= 1 << uint(i)
	} else {
		m.Upper &^= 1 << uint(i-64)
	}
}

// Test reports whether bit i is set.
func (m Mask128) Test(i int) bool {
	if i < 64 {
		return m.Lower&(1<<uint(i)) != 0
	}
	return m.Upper&(1<<uint(i-64)) != 0
}

// SetFirst sets bits [0, n) and clears everything else.
func (m *Mask128) SetFirst(n int) {
	m.Lower = lowBits(min(n, 64))
	m.Upper = lowBits(max(n-64, 0))
}

// lowBits returns a word with the lowest n bits set, 0 <= n <= 64.
func lowBits(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}

// IsZero reports whether no bit is set.
func (m Mask128) IsZero() bool {
	return m.Lower|m.Upper == 0
}

// Count returns the number of set bits.
func (m Mask128) Count() int {
	return bits.OnesCount64(m.Lower) + bits.OnesCount64(m.Upper)
}

// And returns the intersection of both masks.
func (m Mask128) And(o Mask128) Mask128 {
	return Mask128{Lower: m.Lower & o.Lower, Upper: m.Upper & o.Upper}
}

// All yields the index of every set bit in ascending order. Each word is
// walked by extracting and clearing its lowest set bit, so the cost is
// proportional to the number of set bits.
func (m Mask128) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for w := m.Lower; w != 0; w &= w - 1 {
			if !yield(bits.TrailingZeros64(w)) {
				return
			}
		}
		for w := m.Upper; w != 0; w &= w - 1 {
			if !yield(64 + bits.TrailingZeros64(w)) {
				return
			}
		}
	}
}

// SplitMask holds one byte per object slot of a batch; bit s of byte i set
// means object i is visible in split s.
type SplitMask [BatchCapacity]uint8

// Visible derives the visibility mask: bit i is set iff byte i is nonzero.
func (s *SplitMask) Visible() Mask128 {
	var m Mask128
	for i := range 64 {
		if s[i] != 0 {
			m.Lower |= 1 << uint(i)
		}
	}
	for i := range 64 {
		if s[i+64] != 0 {
			m.Upper |= 1 << uint(i)
		}
	}
	return m
}

// CountSplit returns how many objects have bit s set.
func (s *SplitMask) CountSplit(split int) int {
	bit := uint8(1) << uint(split)
	n := 0
	for _, b := range s {
		if b&bit != 0 {
			n++
		}
	}
	return n
}
