package bcvi

import "testing"

func TestDefaultPortFormula(t *testing.T) {
	cases := []struct {
		uid  int
		want int
	}{
		{0, 9},
		{1000, 10009},
		{6551, 65519},
		{6552, 65529 % 65536},
	}
	for _, c := range cases {
		if got := DefaultPort(c.uid); got != c.want {
			t.Errorf("DefaultPort(%d) = %d, want %d", c.uid, got, c.want)
		}
	}
}

func TestDefaultPortWrapsAt65536(t *testing.T) {
	// Find a uid whose formula result exceeds 65536 unmodded and check
	// the wraparound happened.
	uid := 6554 // 6554*10+9 = 65549
	got := DefaultPort(uid)
	want := (uid*10 + 9) % 65536
	if got != want || got >= 65536 {
		t.Fatalf("DefaultPort(%d) = %d, want %d (< 65536)", uid, got, want)
	}
}
