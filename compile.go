package framegraph

import (
	"errors"
	"fmt"

	"github.com/gogpu/framegraph/gpucore"
	"github.com/gogpu/framegraph/internal/alias"
	"github.com/gogpu/framegraph/internal/dag"
)

// ErrCycle is returned by Compile when the ordering constraints of the
// surviving passes contain a cycle.
var ErrCycle = errors.New("framegraph: dependency cycle")

type use struct {
	pass   PassHandle
	access Access
}

// Compile derives the execution plan of the graph.
//
// Compile does not modify the graph, so compiling twice without changes in
// between yields deep-equal plans. On a dependency cycle it returns an
// empty plan and an error wrapping ErrCycle.
func (g *Graph) Compile() (Plan, error) {
	uses := make([][]use, len(g.resources))
	for p := range g.passes {
		for _, a := range g.passes[p].Accesses {
			uses[a.Resource] = append(uses[a.Resource], use{PassHandle(p), a})
		}
	}

	alive := g.liveness(uses)

	live := make([]PassHandle, 0, len(g.passes))
	remap := make([]int, len(g.passes))
	for p := range g.passes {
		remap[p] = -1
		if alive[p] {
			remap[p] = len(live)
			live = append(live, PassHandle(p))
		}
	}
	if len(live) == 0 {
		return Plan{}, nil
	}

	deps := hazardEdges(uses, remap)
	for _, d := range g.deps {
		if a, b := remap[d[0]], remap[d[1]]; a >= 0 && b >= 0 {
			deps.AddEdge(a, b)
		}
	}

	topo, err := deps.Sort()
	if err != nil {
		slogger().Error("framegraph: dependency cycle", "passes", len(live), "err", err)
		return Plan{}, fmt.Errorf("%w among %d passes", ErrCycle, len(live))
	}

	order := make([]PassHandle, len(topo))
	for i, idx := range topo {
		order[i] = live[idx]
	}

	plan := Plan{
		Passes:    make([]PlannedPass, len(order)),
		Resources: make([]Resource, len(g.resources)),
	}
	copy(plan.Resources, g.resources)
	for i := range plan.Resources {
		plan.Resources[i].FirstUse, plan.Resources[i].LastUse = -1, -1
	}

	// In execution order, per resource.
	timeline := make([][]int, len(g.resources))
	for pos, p := range order {
		plan.Passes[pos] = PlannedPass{Handle: p, Name: g.passes[p].Name}
		for _, a := range g.passes[p].Accesses {
			r := &plan.Resources[a.Resource]
			if r.FirstUse < 0 {
				r.FirstUse = pos
			}
			r.LastUse = pos
			timeline[a.Resource] = append(timeline[a.Resource], pos)
		}
	}

	for _, e := range deps.Edges() {
		plan.Edges = append(plan.Edges, [2]PassHandle{live[e[0]], live[e[1]]})
	}

	plan.assignAllocations()
	plan.Barriers = g.synthesizeBarriers(order, timeline)
	plan.index()

	slogger().Debug("framegraph: compiled",
		"passes", len(order),
		"culled", len(g.passes)-len(order),
		"edges", len(plan.Edges),
		"barriers", len(plan.Barriers),
		"aliased_slots", plan.AliasedSlots,
		"dedicated_slots", plan.DedicatedSlots)

	return plan, nil
}

// liveness marks the passes whose results can reach an imported resource.
//
// The walk is seeded with every pass touching an imported resource and
// goes backwards: for each resource a live pass touches, every earlier
// declared pass writing that resource becomes live too. Without any import
// nothing can be proven dead, and all passes are kept.
func (g *Graph) liveness(uses [][]use) []bool {
	alive := make([]bool, len(g.passes))
	var queue []PassHandle

	for r, res := range g.resources {
		if !res.Imported {
			continue
		}
		for _, u := range uses[r] {
			if !alive[u.pass] {
				alive[u.pass] = true
				queue = append(queue, u.pass)
			}
		}
	}

	if len(queue) == 0 {
		for i := range alive {
			alive[i] = true
		}
		return alive
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, a := range g.passes[p].Accesses {
			for _, u := range uses[a.Resource] {
				if u.pass < p && !alive[u.pass] && u.access.Kind.IsWrite() {
					alive[u.pass] = true
					queue = append(queue, u.pass)
				}
			}
		}
	}
	return alive
}

// hazardEdges derives ordering edges between live passes, in remapped index
// space. Per resource, in declaration order: a write depends on the last
// writer and on every reader since; a read depends on the last writer.
// Reads never depend on each other.
func hazardEdges(uses [][]use, remap []int) *dag.Graph {
	n := 0
	for _, i := range remap {
		if i >= 0 {
			n++
		}
	}
	d := dag.New(n)

	var readers []int
	for _, list := range uses {
		lastWriter := -1
		readers = readers[:0]
		for _, u := range list {
			i := remap[u.pass]
			if i < 0 {
				continue
			}
			if lastWriter >= 0 {
				d.AddEdge(lastWriter, i)
			}
			if u.access.Kind.IsWrite() {
				for _, rd := range readers {
					d.AddEdge(rd, i)
				}
				readers = readers[:0]
				lastWriter = i
			} else {
				readers = append(readers, i)
			}
		}
	}
	return d
}

// assignAllocations fills AllocationIDs from the resource lifetimes.
func (p *Plan) assignAllocations() {
	var (
		intervals []alias.Interval
		owners    []int
	)
	for r, res := range p.Resources {
		if !res.Used() {
			continue
		}
		intervals = append(intervals, alias.Interval{
			Start:     res.FirstUse,
			End:       res.LastUse,
			Aliasable: res.Aliasable(),
		})
		owners = append(owners, r)
	}

	a := alias.Assign(intervals)
	p.AllocationIDs = make([]int, len(p.Resources))
	for i := range p.AllocationIDs {
		p.AllocationIDs[i] = -1
	}
	for i, r := range owners {
		p.AllocationIDs[r] = a.IDs[i]
	}
	p.AliasedSlots = a.AliasedSlots
	p.DedicatedSlots = a.DedicatedSlots
}

// synthesizeBarriers emits, per resource, one barrier from PlanStart into
// its first use and one between each pair of consecutive uses, except
// between two reads in the same state.
func (g *Graph) synthesizeBarriers(order []PassHandle, timeline [][]int) []Barrier {
	var out []Barrier
	for r, positions := range timeline {
		if len(positions) == 0 {
			continue
		}
		h := ResourceHandle(r)

		first, _ := g.passes[order[positions[0]]].Access(h)
		out = append(out, Barrier{
			Src:       PlanStart,
			Dst:       order[positions[0]],
			Resource:  h,
			Old:       gpucore.StateUndefined,
			New:       first.State,
			SrcStage:  gpucore.StageTopOfPipe,
			DstStage:  first.Stage,
			SrcAccess: gpucore.AccessNone,
			DstAccess: first.Rights,
		})

		// Source masks cover every use since the last barrier, including
		// readers whose barrier was elided.
		prev := first
		srcStage, srcAccess := first.Stage, first.Rights
		for i := 1; i < len(positions); i++ {
			src, dst := order[positions[i-1]], order[positions[i]]
			next, _ := g.passes[dst].Access(h)
			if !prev.Kind.IsWrite() && !next.Kind.IsWrite() && prev.State == next.State {
				srcStage |= next.Stage
				srcAccess |= next.Rights
				prev = next
				continue
			}
			out = append(out, Barrier{
				Src:       src,
				Dst:       dst,
				Resource:  h,
				Old:       prev.State,
				New:       next.State,
				SrcStage:  srcStage,
				DstStage:  next.Stage,
				SrcAccess: srcAccess,
				DstAccess: next.Rights,
			})
			prev = next
			srcStage, srcAccess = next.Stage, next.Rights
		}
	}
	return out
}
