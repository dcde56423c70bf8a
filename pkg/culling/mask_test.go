package culling

import (
	"slices"
	"testing"
)

func TestMaskSetClearTest(t *testing.T) {
	var m Mask128
	for _, i := range []int{0, 1, 63, 64, 65, 127} {
		m.Set(i)
		if !m.Test(i) {
			t.Errorf("bit %d not set", i)
		}
	}
	if m.Count() != 6 {
		t.Errorf("Count = %d, want 6", m.Count())
	}
	if m.Lower != 1|2|1<<63 || m.Upper != 1|2|1<<63 {
		t.Errorf("words = %#x %#x", m.Lower, m.Upper)
	}

	m.Clear(63)
	m.Clear(64)
	if m.Test(63) || m.Test(64) {
		t.Error("cleared bits still set")
	}
	if m.Count() != 4 {
		t.Errorf("Count after clear = %d, want 4", m.Count())
	}
}

func TestMaskSetFirst(t *testing.T) {
	tests := []struct {
		n            int
		lower, upper uint64
	}{
		{0, 0, 0},
		{1, 1, 0},
		{63, 1<<63 - 1, 0},
		{64, ^uint64(0), 0},
		{65, ^uint64(0), 1},
		{100, ^uint64(0), 1<<36 - 1},
		{128, ^uint64(0), ^uint64(0)},
	}

	for _, tc := range tests {
		m := Mask128{Lower: 0xdead, Upper: 0xbeef}
		m.SetFirst(tc.n)
		if m.Lower != tc.lower || m.Upper != tc.upper {
			t.Errorf("SetFirst(%d) = %#x %#x, want %#x %#x", tc.n, m.Lower, m.Upper, tc.lower, tc.upper)
		}
		if m.Count() != tc.n {
			t.Errorf("SetFirst(%d) Count = %d", tc.n, m.Count())
		}
	}
}

func TestMaskAll(t *testing.T) {
	want := []int{0, 5, 31, 63, 64, 90, 127}
	var m Mask128
	for _, i := range slices.Backward(want) {
		m.Set(i)
	}

	got := slices.Collect(m.All())
	if !slices.Equal(got, want) {
		t.Errorf("All() = %v, want %v", got, want)
	}

	// Stopping early must not yield further bits
	var first []int
	for i := range m.All() {
		first = append(first, i)
		if len(first) == 3 {
			break
		}
	}
	if !slices.Equal(first, want[:3]) {
		t.Errorf("early break yielded %v", first)
	}

	if n := len(slices.Collect(Mask128{}.All())); n != 0 {
		t.Errorf("zero mask yielded %d bits", n)
	}
}

func TestMaskAnd(t *testing.T) {
	a := Mask128{Lower: 0b1100, Upper: 0b1010}
	b := Mask128{Lower: 0b0110, Upper: 0b0011}
	got := a.And(b)
	if got.Lower != 0b0100 || got.Upper != 0b0010 {
		t.Errorf("And = %#b %#b", got.Lower, got.Upper)
	}
	if !a.And(Mask128{}).IsZero() {
		t.Error("And with zero mask is not zero")
	}
}

func TestSplitMaskVisible(t *testing.T) {
	var sm SplitMask
	sm[0] = 0b001
	sm[7] = 0b100
	sm[64] = 0b010
	sm[127] = 0b111

	m := sm.Visible()
	got := slices.Collect(m.All())
	if want := []int{0, 7, 64, 127}; !slices.Equal(got, want) {
		t.Errorf("Visible bits = %v, want %v", got, want)
	}

	if n := sm.CountSplit(0); n != 2 {
		t.Errorf("CountSplit(0) = %d, want 2", n)
	}
	if n := sm.CountSplit(1); n != 2 {
		t.Errorf("CountSplit(1) = %d, want 2", n)
	}
	if n := sm.CountSplit(2); n != 2 {
		t.Errorf("CountSplit(2) = %d, want 2", n)
	}
	if n := sm.CountSplit(3); n != 0 {
		t.Errorf("CountSplit(3) = %d, want 0", n)
	}
}
