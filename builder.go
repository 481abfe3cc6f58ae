package framegraph

import (
	"fmt"
	"slices"

	"github.com/gogpu/framegraph/gpucore"
)

// PassBuilder collects the accesses of one pass while its SetupFunc runs.
//
// Several declarations against the same resource merge into one Access:
// the kinds are combined (Read and Write become ReadWrite), stage and
// rights masks are unioned, and the state of the latest declaration wins.
type PassBuilder struct {
	graph    *Graph
	pass     string
	accesses map[ResourceHandle]*Access
}

func (b *PassBuilder) declare(h ResourceHandle, kind AccessKind, state gpucore.State, stage gpucore.Stage, rights gpucore.AccessMask) {
	if int(h) >= len(b.graph.resources) {
		panic(fmt.Sprintf("framegraph: pass %q accesses resource %d, graph has %d resources",
			b.pass, h, len(b.graph.resources)))
	}
	if a, ok := b.accesses[h]; ok {
		a.Kind |= kind
		a.State = state
		a.Stage |= stage
		a.Rights |= rights
		return
	}
	b.accesses[h] = &Access{Resource: h, Kind: kind, State: state, Stage: stage, Rights: rights}
}

// Reads declares that the pass reads h in state at the given stages.
func (b *PassBuilder) Reads(h ResourceHandle, state gpucore.State, stage gpucore.Stage, rights gpucore.AccessMask) {
	b.declare(h, Read, state, stage, rights)
}

// Writes declares that the pass writes h in state at the given stages.
func (b *PassBuilder) Writes(h ResourceHandle, state gpucore.State, stage gpucore.Stage, rights gpucore.AccessMask) {
	b.declare(h, Write, state, stage, rights)
}

// ReadWrites declares a read-modify-write of h.
func (b *PassBuilder) ReadWrites(h ResourceHandle, state gpucore.State, stage gpucore.Stage, rights gpucore.AccessMask) {
	b.declare(h, ReadWrite, state, stage, rights)
}

// Sample declares a fragment shader read of h.
func (b *PassBuilder) Sample(h ResourceHandle) {
	b.Reads(h, gpucore.StateShaderRead, gpucore.StageFragment, gpucore.AccessShaderRead)
}

// RenderTarget declares h as a color attachment written by the pass.
func (b *PassBuilder) RenderTarget(h ResourceHandle) {
	b.Writes(h, gpucore.StateColorAttachment, gpucore.StageColorOutput, gpucore.AccessColorWrite)
}

// DepthTarget declares h as the depth/stencil attachment of the pass.
func (b *PassBuilder) DepthTarget(h ResourceHandle) {
	b.ReadWrites(h, gpucore.StateDepthAttachment,
		gpucore.StageEarlyFragmentTests|gpucore.StageLateFragmentTests,
		gpucore.AccessDepthRead|gpucore.AccessDepthWrite)
}

// Storage declares a compute shader read/write of h.
func (b *PassBuilder) Storage(h ResourceHandle) {
	b.ReadWrites(h, gpucore.StateStorage, gpucore.StageCompute,
		gpucore.AccessShaderRead|gpucore.AccessShaderWrite)
}

// CopyFrom declares h as the source of a copy.
func (b *PassBuilder) CopyFrom(h ResourceHandle) {
	b.Reads(h, gpucore.StateCopySrc, gpucore.StageTransfer, gpucore.AccessTransferRead)
}

// CopyTo declares h as the destination of a copy.
func (b *PassBuilder) CopyTo(h ResourceHandle) {
	b.Writes(h, gpucore.StateCopyDst, gpucore.StageTransfer, gpucore.AccessTransferWrite)
}

// Present declares that the pass hands h to the presentation engine.
func (b *PassBuilder) Present(h ResourceHandle) {
	b.Reads(h, gpucore.StatePresent, gpucore.StageBottomOfPipe, gpucore.AccessMemoryRead)
}

// flush returns the merged accesses sorted by resource handle.
func (b *PassBuilder) flush() []Access {
	out := make([]Access, 0, len(b.accesses))
	for _, a := range b.accesses {
		out = append(out, *a)
	}
	slices.SortFunc(out, func(x, y Access) int {
		return int(x.Resource) - int(y.Resource)
	})
	return out
}
