// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/gpucore"
	"github.com/gogpu/gputypes"
)

// ErrFrameSkipped is returned by FrameEngine.Frame when the frame was
// abandoned for a recoverable reason (surface out of date, lost surface,
// dependency cycle). The engine stays consistent and the next frame can
// be attempted right away. The cause is wrapped.
var ErrFrameSkipped = errors.New("render: frame skipped")

// Names of the passes the engine adds to every frame.
const (
	ClearPassName   = "backbuffer.clear"
	PresentPassName = "backbuffer.present"
)

// FrameStats counts what the engine has done.
type FrameStats struct {
	Frames          uint64
	Skipped         uint64
	Recreates       uint64
	Passes          int
	Barriers        int
	PooledResources int
}

// FrameEngine runs frames against one device and swapchain. It is not safe
// for concurrent use; the Renderer drives it from a single goroutine.
type FrameEngine struct {
	device    gpucore.Device
	swapchain gpucore.Swapchain
	cfg       Config
	log       *slog.Logger

	slots []*frameSlot
	index int

	graph    *framegraph.Graph
	exec     Executor
	bindings Bindings
	pool     *ResourcePool

	acquireFailures int
	stats           FrameStats
}

// NewFrameEngine creates the per-slot synchronization objects.
func NewFrameEngine(device gpucore.Device, swapchain gpucore.Swapchain, opts ...Option) (*FrameEngine, error) {
	return newFrameEngine(device, swapchain, buildConfig(opts))
}

func newFrameEngine(device gpucore.Device, swapchain gpucore.Swapchain, cfg Config) (*FrameEngine, error) {
	e := &FrameEngine{
		device:    device,
		swapchain: swapchain,
		cfg:       cfg,
		log:       cfg.Logger,
		graph:     framegraph.NewGraph(),
		pool:      NewResourcePool(device, cfg.FramesInFlight, cfg.MaxIdleFrames, cfg.Logger),
	}
	for i := 0; i < cfg.FramesInFlight; i++ {
		s, err := newFrameSlot(device, i)
		if err != nil {
			e.Destroy()
			return nil, fmt.Errorf("render: create frame slot %d: %w", i, err)
		}
		e.slots = append(e.slots, s)
	}
	return e, nil
}

// FrameIndex returns the frame-in-flight slot the next frame will use.
func (e *FrameEngine) FrameIndex() int { return e.index }

// Stats returns a snapshot of the engine counters.
func (e *FrameEngine) Stats() FrameStats {
	s := e.stats
	s.PooledResources = e.pool.Len()
	return s
}

// NeedsRecreate reports whether acquisition has failed often enough in a
// row that the swapchain should be rebuilt.
func (e *FrameEngine) NeedsRecreate() bool {
	return e.acquireFailures >= e.cfg.MaxAcquireFailures
}

// Frame renders one frame made of the given packets.
//
// The sequence is: wait for the slot's previous submission, acquire the
// next swapchain image, build and compile the frame graph, record it,
// submit, wait for the slot's previous presentation, present, and advance
// to the next slot. A failed acquire returns before any state changes.
func (e *FrameEngine) Frame(packets []Packet) error {
	slot := e.slots[e.index]

	if err := slot.waitInFlight(e.device, e.cfg.FenceTimeout); err != nil {
		return err
	}
	e.pool.Reclaim(e.index)

	img, err := e.swapchain.AcquireNext(slot.imageAvailable)
	if err != nil {
		e.acquireFailures++
		e.stats.Skipped++
		return fmt.Errorf("%w: acquire: %w", ErrFrameSkipped, err)
	}
	e.acquireFailures = 0

	if err := e.device.ResetFence(slot.inFlight); err != nil {
		return fmt.Errorf("render: reset in-flight fence: %w", err)
	}
	slot.inFlightArmed = false

	// A cycle in application passes still presents the cleared image so the
	// acquired image and its semaphores are consumed.
	plan, target, compileErr := e.build(img, packets)
	if compileErr != nil {
		e.log.Warn("render: frame graph rejected, presenting clear frame", "err", compileErr)
		plan, target, err = e.build(img, nil)
		if err != nil {
			return err
		}
	}

	if e.cfg.PlanObserver != nil {
		e.cfg.PlanObserver(e.stats.Frames, &plan)
	}

	if err := e.record(slot, &plan, target, img); err != nil {
		return err
	}

	err = e.device.Submit(gpucore.SubmitInfo{
		Stream:     slot.stream,
		Wait:       []gpucore.Semaphore{slot.imageAvailable},
		WaitStages: []gpucore.Stage{gpucore.StageColorOutput},
		Signal:     []gpucore.Semaphore{slot.renderFinished},
		Fence:      slot.inFlight,
	})
	if err != nil {
		return fmt.Errorf("render: submit: %w", err)
	}
	slot.inFlightArmed = true

	if err := slot.waitPresent(e.device, e.cfg.FenceTimeout); err != nil {
		return err
	}
	if err := e.device.ResetFence(slot.inPresent); err != nil {
		return fmt.Errorf("render: reset present fence: %w", err)
	}
	slot.inPresentArmed = false

	presentErr := e.swapchain.Present(slot.renderFinished, slot.inPresent)
	if presentErr == nil {
		slot.inPresentArmed = true
	}

	e.pool.EndFrame()
	e.index = (e.index + 1) % len(e.slots)
	e.stats.Frames++
	e.stats.Passes = len(plan.Passes)

	switch {
	case presentErr != nil:
		e.stats.Skipped++
		return fmt.Errorf("%w: present: %w", ErrFrameSkipped, presentErr)
	case compileErr != nil:
		e.stats.Skipped++
		return fmt.Errorf("%w: %w", ErrFrameSkipped, compileErr)
	}
	return nil
}

// build fills the graph for one frame and compiles it.
func (e *FrameEngine) build(img gpucore.Image, packets []Packet) (framegraph.Plan, framegraph.ResourceHandle, error) {
	g := e.graph
	g.Reset()

	target := g.ImportImage("backbuffer", gpucore.ImageDesc{
		Width:  img.Width(),
		Height: img.Height(),
		Format: img.Format(),
		Usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopyDst,
	})

	clearColor := e.cfg.ClearColor
	g.AddPass(ClearPassName, func(b *framegraph.PassBuilder) {
		b.RenderTarget(target)
	}, func(cmd gpucore.CommandStream, res framegraph.Resources) {
		cmd.ClearImage(res.Image(target), clearColor)
	})

	for _, p := range packets {
		if p.Declare != nil {
			p.Declare(g, target)
		}
	}

	g.AddPass(PresentPassName, func(b *framegraph.PassBuilder) {
		b.Present(target)
	}, nil)

	plan, err := g.Compile()
	return plan, target, err
}

func (e *FrameEngine) record(slot *frameSlot, plan *framegraph.Plan, target framegraph.ResourceHandle, img gpucore.Image) error {
	e.bindings.Reset(len(plan.Resources))
	e.bindings.Bind(target, img)
	if err := e.pool.Bind(e.index, plan, &e.bindings); err != nil {
		return err
	}

	if err := slot.stream.Begin(); err != nil {
		return fmt.Errorf("render: begin commands: %w", err)
	}
	n, err := e.exec.Record(plan, e.graph, slot.stream, &e.bindings)
	if err != nil {
		return err
	}
	if err := slot.stream.End(); err != nil {
		return fmt.Errorf("render: end commands: %w", err)
	}
	e.stats.Barriers = n

	e.log.Debug("render: recorded frame",
		"frame", e.stats.Frames,
		"slot", e.index,
		"passes", len(plan.Passes),
		"barriers", n,
		"slots", plan.Slots())
	return nil
}

// Drain waits until no frame is in flight or being presented.
func (e *FrameEngine) Drain() error {
	for _, s := range e.slots {
		if err := s.waitInFlight(e.device, e.cfg.FenceTimeout); err != nil {
			return err
		}
		if err := s.waitPresent(e.device, e.cfg.FenceTimeout); err != nil {
			return err
		}
	}
	return nil
}

// Recreate drains in-flight frames and rebuilds the swapchain at the new
// extent.
func (e *FrameEngine) Recreate(width, height uint32) error {
	if err := e.Drain(); err != nil {
		return err
	}
	if err := e.swapchain.Recreate(width, height); err != nil {
		return fmt.Errorf("render: recreate swapchain: %w", err)
	}
	e.acquireFailures = 0
	e.stats.Recreates++
	e.log.Info("render: swapchain recreated", "width", width, "height", height)
	return nil
}

// Destroy releases every object the engine created. The caller must have
// waited for the device to go idle.
func (e *FrameEngine) Destroy() {
	e.pool.Destroy()
	for _, s := range e.slots {
		s.destroy()
	}
	e.slots = nil
}
