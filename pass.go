package framegraph

import "github.com/gogpu/framegraph/gpucore"

// AccessKind says whether a pass reads, writes, or both.
type AccessKind uint8

const (
	Read      AccessKind = 1 << iota
	Write                // Write implies the previous contents may be replaced.
	ReadWrite = Read | Write
)

// IsWrite reports whether the access modifies the resource.
func (k AccessKind) IsWrite() bool { return k&Write != 0 }

func (k AccessKind) String() string {
	switch k {
	case Read:
		return "read"
	case Write:
		return "write"
	case ReadWrite:
		return "readwrite"
	default:
		return "none"
	}
}

// Access is the merged declaration of one pass's use of one resource.
type Access struct {
	Resource ResourceHandle
	Kind     AccessKind
	State    gpucore.State
	Stage    gpucore.Stage
	Rights   gpucore.AccessMask
}

// Resources resolves graph handles to the physical objects bound for the
// current frame. It is only valid inside a RecordFunc.
type Resources interface {
	Image(h ResourceHandle) gpucore.Image
	Buffer(h ResourceHandle) gpucore.Buffer
}

// RecordFunc records the commands of one pass. It runs after the barriers
// for the pass have been recorded.
type RecordFunc func(cmd gpucore.CommandStream, res Resources)

// SetupFunc declares the accesses of a pass.
type SetupFunc func(b *PassBuilder)

// Pass is one entry of the pass table.
type Pass struct {
	Name string

	// Accesses holds one merged entry per resource, sorted by handle.
	Accesses []Access

	record RecordFunc
}

// Access returns the pass's access to r, if any.
func (p Pass) Access(r ResourceHandle) (Access, bool) {
	for _, a := range p.Accesses {
		if a.Resource == r {
			return a, true
		}
	}
	return Access{}, false
}

// Record runs the pass callback. Passes declared without one record nothing.
func (p Pass) Record(cmd gpucore.CommandStream, res Resources) {
	if p.record != nil {
		p.record(cmd, res)
	}
}
