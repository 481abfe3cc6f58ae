package framegraph

import "github.com/gogpu/framegraph/gpucore"

// ResourceKind distinguishes images from buffers.
type ResourceKind uint8

const (
	KindImage ResourceKind = iota
	KindBuffer
)

func (k ResourceKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindBuffer:
		return "buffer"
	default:
		return "unknown"
	}
}

// Resource is one entry of the resource table.
type Resource struct {
	Name string
	Kind ResourceKind

	// Image is set for KindImage, Buffer for KindBuffer.
	Image  gpucore.ImageDesc
	Buffer gpucore.BufferDesc

	// Imported resources are owned outside the graph (the swapchain image,
	// history buffers). They anchor liveness and never alias.
	Imported bool

	// FirstUse and LastUse are positions in the compiled pass order, or -1
	// if the resource is untouched. They are only meaningful on the
	// resource snapshot carried by a Plan.
	FirstUse int
	LastUse  int
}

// Transient reports whether the descriptor marks the resource as frame-local.
func (r Resource) Transient() bool {
	if r.Kind == KindBuffer {
		return r.Buffer.Transient
	}
	return r.Image.Transient
}

// Aliasable reports whether the resource may share memory with others.
func (r Resource) Aliasable() bool {
	return !r.Imported && r.Transient()
}

// Used reports whether any pass of the plan touches the resource.
func (r Resource) Used() bool { return r.FirstUse >= 0 }
