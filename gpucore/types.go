// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
)

// State is the access mode/layout a resource must be in for a pass to use it.
// Transitions between states are what barriers encode.
type State uint8

// Resource states.
const (
	// StateUndefined means the contents are not preserved. Every resource
	// enters a compiled plan from this state.
	StateUndefined State = iota

	// StateColorAttachment is a writable color render target.
	StateColorAttachment

	// StateDepthAttachment is a depth/stencil render target.
	StateDepthAttachment

	// StateShaderRead is a sampled or read-only shader input.
	StateShaderRead

	// StateStorage is a read/write storage binding.
	StateStorage

	// StateCopySrc is the source of a copy.
	StateCopySrc

	// StateCopyDst is the destination of a copy.
	StateCopyDst

	// StatePresent is ready for presentation by the swapchain.
	StatePresent
)

var stateNames = [...]string{
	StateUndefined:       "Undefined",
	StateColorAttachment: "ColorAttachment",
	StateDepthAttachment: "DepthAttachment",
	StateShaderRead:      "ShaderRead",
	StateStorage:         "Storage",
	StateCopySrc:         "CopySrc",
	StateCopyDst:         "CopyDst",
	StatePresent:         "Present",
}

// String returns the state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// TextureUsage maps the state to the WebGPU texture usage that a HAL
// transition expects. Undefined and Present map to no usage: the former has
// no contents and the latter is owned by the presentation engine.
func (s State) TextureUsage() gputypes.TextureUsage {
	switch s {
	case StateColorAttachment, StateDepthAttachment:
		return gputypes.TextureUsageRenderAttachment
	case StateShaderRead:
		return gputypes.TextureUsageTextureBinding
	case StateStorage:
		return gputypes.TextureUsageStorageBinding
	case StateCopySrc:
		return gputypes.TextureUsageCopySrc
	case StateCopyDst:
		return gputypes.TextureUsageCopyDst
	default:
		return gputypes.TextureUsage(0)
	}
}

// Stage is a bitmask of pipeline stages.
type Stage uint32

// Pipeline stages.
const (
	StageTopOfPipe Stage = 1 << iota
	StageVertex
	StageEarlyFragmentTests
	StageFragment
	StageLateFragmentTests
	StageColorOutput
	StageCompute
	StageTransfer
	StageBottomOfPipe

	// StageNone is the empty stage mask.
	StageNone Stage = 0
)

var stageNames = []string{
	"TopOfPipe", "Vertex", "EarlyFragmentTests", "Fragment",
	"LateFragmentTests", "ColorOutput", "Compute", "Transfer", "BottomOfPipe",
}

// String returns the set stage names joined by '|'.
func (s Stage) String() string {
	return flagString(uint32(s), stageNames)
}

// AccessMask is a bitmask of memory access rights.
type AccessMask uint32

// Access rights.
const (
	AccessShaderRead AccessMask = 1 << iota
	AccessShaderWrite
	AccessColorRead
	AccessColorWrite
	AccessDepthRead
	AccessDepthWrite
	AccessTransferRead
	AccessTransferWrite
	AccessMemoryRead

	// AccessNone is the empty access mask.
	AccessNone AccessMask = 0
)

var accessNames = []string{
	"ShaderRead", "ShaderWrite", "ColorRead", "ColorWrite", "DepthRead",
	"DepthWrite", "TransferRead", "TransferWrite", "MemoryRead",
}

// String returns the set access names joined by '|'.
func (a AccessMask) String() string {
	return flagString(uint32(a), accessNames)
}

// ImageDesc describes an image resource.
type ImageDesc struct {
	Width       uint32
	Height      uint32
	Format      gputypes.TextureFormat
	Usage       gputypes.TextureUsage
	SampleCount uint32

	// Transient marks the image as frame-local scratch memory. Only
	// transient, non-imported images may share memory with others.
	Transient bool
}

// Extent returns the image size as a 3D extent with a single layer.
func (d ImageDesc) Extent() gputypes.Extent3D {
	return gputypes.Extent3D{Width: d.Width, Height: d.Height, DepthOrArrayLayers: 1}
}

// Samples returns the sample count, treating zero as one.
func (d ImageDesc) Samples() uint32 {
	if d.SampleCount == 0 {
		return 1
	}
	return d.SampleCount
}

// BufferDesc describes a buffer resource.
type BufferDesc struct {
	Size      uint64
	Usage     gputypes.BufferUsage
	Transient bool
}

// Barrier is one entry of a batched transition call.
type Barrier struct {
	// Resource is the frame graph resource index, kept for diagnostics.
	Resource uint32

	// Target is the physical object being transitioned.
	Target Resource

	Old, New             State
	SrcStage, DstStage   Stage
	SrcAccess, DstAccess AccessMask
}

func flagString(v uint32, names []string) string {
	if v == 0 {
		return "None"
	}
	var b strings.Builder
	for i, name := range names {
		if v&(1<<uint(i)) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(name)
		v &^= 1 << uint(i)
	}
	if v != 0 {
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString("0x")
		b.WriteString(strconv.FormatUint(uint64(v), 16))
	}
	return b.String()
}
