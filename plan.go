package framegraph

import "github.com/gogpu/framegraph/gpucore"

// PlannedPass is one entry of the execution order.
type PlannedPass struct {
	Handle PassHandle
	Name   string
}

// Barrier is a state transition of one resource between two passes.
type Barrier struct {
	// Src is the pass after which the transition happens, or PlanStart.
	Src PassHandle

	// Dst is the pass the transition must precede.
	Dst PassHandle

	Resource ResourceHandle

	Old, New             gpucore.State
	SrcStage, DstStage   gpucore.Stage
	SrcAccess, DstAccess gpucore.AccessMask
}

// Plan is the compiled form of a Graph. It is value data and does not
// reference the graph it came from.
type Plan struct {
	// Passes is the execution order. Culled passes are absent.
	Passes []PlannedPass

	// Resources is a snapshot of the resource table with lifetimes filled in.
	Resources []Resource

	// AllocationIDs maps each resource to its memory slot, or -1 if no pass
	// touches it. Ids in [0, AliasedSlots) are shared between transient
	// resources, ids in [AliasedSlots, AliasedSlots+DedicatedSlots) are
	// private.
	AllocationIDs  []int
	AliasedSlots   int
	DedicatedSlots int

	// Barriers is ordered by resource, then by execution order.
	Barriers []Barrier

	// Edges are the ordering constraints between live passes.
	Edges [][2]PassHandle

	position map[PassHandle]int
	before   [][]Barrier
}

// Empty reports whether the plan has no passes.
func (p *Plan) Empty() bool { return len(p.Passes) == 0 }

// Slots returns the number of memory slots the plan needs.
func (p *Plan) Slots() int { return p.AliasedSlots + p.DedicatedSlots }

// Position returns the index of pass in the execution order.
func (p *Plan) Position(pass PassHandle) (int, bool) {
	i, ok := p.position[pass]
	return i, ok
}

// BarriersBefore returns the barriers whose destination is pass, in the
// order they must be recorded.
func (p *Plan) BarriersBefore(pass PassHandle) []Barrier {
	i, ok := p.position[pass]
	if !ok {
		return nil
	}
	return p.before[i]
}

func (p *Plan) index() {
	p.position = make(map[PassHandle]int, len(p.Passes))
	for i, pp := range p.Passes {
		p.position[pp.Handle] = i
	}
	p.before = make([][]Barrier, len(p.Passes))
	for _, b := range p.Barriers {
		i := p.position[b.Dst]
		p.before[i] = append(p.before[i], b)
	}
}
