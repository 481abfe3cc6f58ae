// Package alias assigns memory slots to resources with known lifetimes so
// that resources whose lifetimes never overlap can share one allocation.
package alias

import "sort"

// Interval is the inclusive lifetime [Start, End] of one resource, measured
// in positions of the compiled pass order.
type Interval struct {
	Start, End int

	// Aliasable resources may share a slot. Others get a slot of their own.
	Aliasable bool
}

// Assignment is the result of Assign.
type Assignment struct {
	// IDs holds the slot of each input interval, in input order.
	IDs []int

	// AliasedSlots is the number of shared slots, numbered [0, AliasedSlots).
	AliasedSlots int

	// DedicatedSlots is the number of private slots, numbered
	// [AliasedSlots, AliasedSlots+DedicatedSlots).
	DedicatedSlots int
}

// Slots returns the total number of slots.
func (a Assignment) Slots() int { return a.AliasedSlots + a.DedicatedSlots }

// Assign runs a greedy first-fit interval colouring. Intervals are visited
// by ascending start (ties keep input order); an aliasable interval reuses
// the first shared slot whose last end is strictly before its start and
// opens a new slot otherwise. This is not an optimal packing.
func Assign(intervals []Interval) Assignment {
	order := make([]int, len(intervals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return intervals[order[a]].Start < intervals[order[b]].Start
	})

	ids := make([]int, len(intervals))
	var ends []int
	dedicated := 0

	for _, i := range order {
		it := intervals[i]
		if !it.Aliasable {
			ids[i] = dedicated
			dedicated++
			continue
		}

		slot := -1
		for s, end := range ends {
			if end < it.Start {
				slot = s
				break
			}
		}
		if slot < 0 {
			slot = len(ends)
			ends = append(ends, it.End)
		} else {
			ends[slot] = it.End
		}
		ids[i] = slot
	}

	for i, it := range intervals {
		if !it.Aliasable {
			ids[i] += len(ends)
		}
	}

	return Assignment{IDs: ids, AliasedSlots: len(ends), DedicatedSlots: dedicated}
}
