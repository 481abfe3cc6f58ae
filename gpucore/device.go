// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"errors"
	"time"

	"github.com/gogpu/gputypes"
)

// Transient frame errors reported by swapchains and devices.
var (
	// ErrSurfaceOutOfDate is returned when the swapchain no longer matches
	// the surface (typically after a resize). The frame is skipped and the
	// swapchain should be recreated.
	ErrSurfaceOutOfDate = errors.New("gpucore: surface out of date")

	// ErrSurfaceLost is returned when the presentation surface is gone.
	ErrSurfaceLost = errors.New("gpucore: surface lost")

	// ErrTimeout is returned when a fence wait exceeds its timeout.
	ErrTimeout = errors.New("gpucore: wait timed out")
)

// Resource is any object created by a Device.
type Resource interface {
	// Label returns the debug label given at creation.
	Label() string

	// Destroy releases the object. Destroying twice is a no-op.
	Destroy()
}

// Image is a GPU image (texture).
type Image interface {
	Resource
	Width() uint32
	Height() uint32
	Format() gputypes.TextureFormat
}

// Buffer is a GPU buffer.
type Buffer interface {
	Resource
	Size() uint64
}

// Fence is a completion fence: signalled by the GPU when submitted work
// finishes and observable from the CPU.
type Fence interface {
	Resource
}

// Semaphore is a binary GPU-side signal: signalled exactly once by a
// producer and consumed exactly once by a waiter.
type Semaphore interface {
	Resource
}

// CommandStream records commands for a single submission.
//
// State machine:
//
//	Idle      -> Begin() -> Recording
//	Recording -> End()   -> Executable
//	Executable -> (submitted, fence signalled) -> Begin() again
//
// A CommandStream is not safe for concurrent use.
type CommandStream interface {
	Label() string

	// Begin starts recording, discarding previously recorded commands.
	Begin() error

	// Transition records a single batched transition covering all barriers.
	Transition(barriers []Barrier)

	// ClearImage clears img, which must be in StateColorAttachment.
	ClearImage(img Image, color gputypes.Color)

	// BeginPass and EndPass bracket the commands of one frame graph pass.
	BeginPass(name string)
	EndPass()

	// End finishes recording.
	End() error

	// Destroy releases the stream.
	Destroy()
}

// SubmitInfo describes one queue submission.
type SubmitInfo struct {
	Stream CommandStream

	// Wait semaphores are consumed before WaitStages of the stream execute.
	Wait       []Semaphore
	WaitStages []Stage

	// Signal semaphores are signalled when the stream completes.
	Signal []Semaphore

	// Fence, if non-nil, is signalled when the stream completes.
	Fence Fence
}

// Device creates GPU objects and submits work.
type Device interface {
	CreateImage(label string, desc ImageDesc) (Image, error)
	CreateBuffer(label string, desc BufferDesc) (Buffer, error)

	// CreateFence creates a fence, optionally already signalled so the
	// first wait on it returns immediately.
	CreateFence(label string, signaled bool) (Fence, error)

	// ResetFence returns a signalled fence to the unsignalled state.
	ResetFence(f Fence) error

	// WaitFence blocks until f is signalled or timeout elapses, in which
	// case it returns ErrTimeout.
	WaitFence(f Fence, timeout time.Duration) error

	CreateSemaphore(label string) (Semaphore, error)
	CreateCommandStream(label string) (CommandStream, error)

	Submit(info SubmitInfo) error

	// WaitIdle blocks until all submitted work has completed.
	WaitIdle() error

	// Destroy releases the device. All objects created by it must have been
	// destroyed first.
	Destroy()
}

// Swapchain yields presentable images and accepts presentation requests.
type Swapchain interface {
	// AcquireNext returns the next presentable image and arranges for
	// signal to be signalled once the image is ready to be rendered to.
	AcquireNext(signal Semaphore) (Image, error)

	// Present queues the last acquired image for presentation after wait
	// is signalled. done is signalled when presentation no longer uses the
	// image.
	Present(wait Semaphore, done Fence) error

	// Recreate rebuilds the swapchain images at the new extent.
	Recreate(width, height uint32) error

	Width() uint32
	Height() uint32
	Format() gputypes.TextureFormat

	Destroy()
}

// SwapchainFactory creates the swapchain on the goroutine that owns device.
type SwapchainFactory func(device Device, width, height uint32) (Swapchain, error)
