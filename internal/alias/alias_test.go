package alias

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestAssignReusesDisjointLifetimes(t *testing.T) {
	got := Assign([]Interval{
		{Start: 0, End: 1, Aliasable: true},
		{Start: 2, End: 3, Aliasable: true},
		{Start: 1, End: 2, Aliasable: true},
	})

	if got.IDs[0] != got.IDs[1] {
		t.Errorf("[0,1] and [2,3] got slots %d and %d, want shared", got.IDs[0], got.IDs[1])
	}
	if got.IDs[2] == got.IDs[0] {
		t.Errorf("[1,2] shares slot %d with an overlapping interval", got.IDs[2])
	}
	if got.AliasedSlots != 2 || got.DedicatedSlots != 0 {
		t.Errorf("slots = %d aliased, %d dedicated, want 2, 0", got.AliasedSlots, got.DedicatedSlots)
	}
}

func TestAssignTouchingEndsDoNotShare(t *testing.T) {
	// End must be strictly before the next start.
	got := Assign([]Interval{
		{Start: 0, End: 1, Aliasable: true},
		{Start: 1, End: 2, Aliasable: true},
	})
	if got.IDs[0] == got.IDs[1] {
		t.Errorf("intervals sharing position 1 got the same slot %d", got.IDs[0])
	}
}

func TestAssignDedicatedOffsetPastAliasedPool(t *testing.T) {
	got := Assign([]Interval{
		{Start: 0, End: 3, Aliasable: false},
		{Start: 0, End: 0, Aliasable: true},
		{Start: 1, End: 1, Aliasable: true},
		{Start: 2, End: 2, Aliasable: false},
	})

	want := []int{1, 0, 0, 2}
	if !slices.Equal(got.IDs, want) {
		t.Errorf("IDs = %v, want %v", got.IDs, want)
	}
	if got.Slots() != 3 {
		t.Errorf("Slots = %d, want 3", got.Slots())
	}
}

func TestAssignEmpty(t *testing.T) {
	got := Assign(nil)
	if len(got.IDs) != 0 || got.Slots() != 0 {
		t.Errorf("Assign(nil) = %+v, want empty", got)
	}
}

func TestAssignNeverOverlapsWithinSlot(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for iter := 0; iter < 300; iter++ {
		n := rng.IntN(16)
		in := make([]Interval, n)
		for i := range in {
			s := rng.IntN(10)
			in[i] = Interval{Start: s, End: s + rng.IntN(4), Aliasable: rng.IntN(4) != 0}
		}

		got := Assign(in)
		seen := make(map[int]bool)
		for i := range in {
			id := got.IDs[i]
			if id < 0 || id >= got.Slots() {
				t.Fatalf("iter %d: id %d out of range [0,%d)", iter, id, got.Slots())
			}
			if !in[i].Aliasable {
				if seen[id] {
					t.Fatalf("iter %d: dedicated slot %d reused", iter, id)
				}
				seen[id] = true
			}
			for j := i + 1; j < n; j++ {
				if got.IDs[j] != id {
					continue
				}
				a, b := in[i], in[j]
				if a.Start <= b.End && b.Start <= a.End {
					t.Fatalf("iter %d: %+v and %+v overlap in slot %d", iter, a, b, id)
				}
			}
		}
	}
}
