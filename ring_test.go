package taptempo

import "testing"

func equal(a, b []int16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRingPrimesOnFirstPush(t *testing.T) {
	r := NewRing(5)
	if r.Initialized() {
		t.Fatal("new ring should not be initialized")
	}

	r.Push(7)
	if !r.Initialized() {
		t.Fatal("ring should be initialized after the first push")
	}
	if got, want := r.Snapshot(nil), []int16{7, 7, 7, 7, 7}; !equal(got, want) {
		t.Fatalf("Snapshot() = %v, want %v", got, want)
	}
}

func TestRingOverwritesOldest(t *testing.T) {
	r := NewRing(3)
	r.Push(1, 2, 3, 4)

	if got, want := r.Snapshot(nil), []int16{2, 3, 4}; !equal(got, want) {
		t.Fatalf("Snapshot() = %v, want %v", got, want)
	}

	r.Push(5)
	if got, want := r.Snapshot(nil), []int16{3, 4, 5}; !equal(got, want) {
		t.Fatalf("Snapshot() = %v, want %v", got, want)
	}
}

func TestRingPartialFillKeepsPrimedValue(t *testing.T) {
	r := NewRing(4)
	r.Push(9, 1)

	// the priming value stays in the slots not yet overwritten
	if got, want := r.Snapshot(nil), []int16{9, 9, 9, 1}; !equal(got, want) {
		t.Fatalf("Snapshot() = %v, want %v", got, want)
	}
}

func TestRingResetPrimesAgain(t *testing.T) {
	r := NewRing(4)
	r.Push(1, 2, 3, 4, 5)
	r.Reset()
	if r.Initialized() {
		t.Fatal("ring should not be initialized after Reset")
	}

	r.Push(-3)
	if got, want := r.Snapshot(nil), []int16{-3, -3, -3, -3}; !equal(got, want) {
		t.Fatalf("Snapshot() = %v, want %v", got, want)
	}
}

func TestRingSnapshotReusesDst(t *testing.T) {
	r := NewRing(3)
	r.Push(1, 2, 3)

	dst := make([]int16, 0, 8)
	got := r.Snapshot(dst)
	if len(got) != 3 {
		t.Fatalf("len(Snapshot()) = %d, want 3", len(got))
	}
	if &got[0] != &dst[:1][0] {
		t.Fatal("Snapshot should reuse dst when it is large enough")
	}
}

func TestNewRingMinimumSize(t *testing.T) {
	if n := NewRing(0).Len(); n != 1 {
		t.Fatalf("Len() = %d, want 1", n)
	}
	if n := NewRing(-4).Len(); n != 1 {
		t.Fatalf("Len() = %d, want 1", n)
	}
}
