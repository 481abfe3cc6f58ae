package framegraph

import (
	"fmt"

	"github.com/gogpu/framegraph/gpucore"
)

// Graph is the resource and pass table of one frame.
//
// A Graph is an arena: it is filled once per frame, compiled, and then
// cleared with Reset. It is not safe for concurrent use.
type Graph struct {
	resources []Resource
	passes    []Pass

	// deps are explicit ordering constraints, in addition to the hazards
	// derived from accesses.
	deps [][2]PassHandle
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

func (g *Graph) addResource(r Resource) ResourceHandle {
	r.FirstUse, r.LastUse = -1, -1
	g.resources = append(g.resources, r)
	return ResourceHandle(len(g.resources) - 1)
}

// CreateImage declares an image owned by the graph.
func (g *Graph) CreateImage(name string, desc gpucore.ImageDesc) ResourceHandle {
	return g.addResource(Resource{Name: name, Kind: KindImage, Image: desc})
}

// ImportImage declares an image owned outside the graph, such as the
// swapchain image. Passes touching imported resources are never culled.
func (g *Graph) ImportImage(name string, desc gpucore.ImageDesc) ResourceHandle {
	return g.addResource(Resource{Name: name, Kind: KindImage, Image: desc, Imported: true})
}

// CreateBuffer declares a buffer owned by the graph.
func (g *Graph) CreateBuffer(name string, desc gpucore.BufferDesc) ResourceHandle {
	return g.addResource(Resource{Name: name, Kind: KindBuffer, Buffer: desc})
}

// ImportBuffer declares a buffer owned outside the graph.
func (g *Graph) ImportBuffer(name string, desc gpucore.BufferDesc) ResourceHandle {
	return g.addResource(Resource{Name: name, Kind: KindBuffer, Buffer: desc, Imported: true})
}

// AddPass declares a pass. setup runs immediately and declares the pass's
// accesses; record runs later, once per execution of a compiled plan.
// Either may be nil.
func (g *Graph) AddPass(name string, setup SetupFunc, record RecordFunc) PassHandle {
	b := PassBuilder{graph: g, pass: name, accesses: make(map[ResourceHandle]*Access)}
	if setup != nil {
		setup(&b)
	}
	g.passes = append(g.passes, Pass{Name: name, Accesses: b.flush(), record: record})
	return PassHandle(len(g.passes) - 1)
}

// AddDependency forces before to execute ahead of after, even if they share
// no resource. Constraints involving a culled pass are ignored.
func (g *Graph) AddDependency(before, after PassHandle) {
	g.checkPass(before)
	g.checkPass(after)
	g.deps = append(g.deps, [2]PassHandle{before, after})
}

// Resource returns the declaration of h.
func (g *Graph) Resource(h ResourceHandle) Resource {
	if int(h) >= len(g.resources) {
		panic(fmt.Sprintf("framegraph: resource %d out of range [0,%d)", h, len(g.resources)))
	}
	return g.resources[h]
}

// Pass returns the declaration of h.
func (g *Graph) Pass(h PassHandle) Pass {
	g.checkPass(h)
	return g.passes[h]
}

func (g *Graph) checkPass(h PassHandle) {
	if int(h) >= len(g.passes) {
		panic(fmt.Sprintf("framegraph: pass %d out of range [0,%d)", h, len(g.passes)))
	}
}

// NumResources returns the number of declared resources.
func (g *Graph) NumResources() int { return len(g.resources) }

// NumPasses returns the number of declared passes.
func (g *Graph) NumPasses() int { return len(g.passes) }

// Reset clears the graph for the next frame, keeping allocated capacity.
func (g *Graph) Reset() {
	clear(g.passes) // drop references to record callbacks
	g.resources = g.resources[:0]
	g.passes = g.passes[:0]
	g.deps = g.deps[:0]
}
