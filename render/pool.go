// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/gpucore"
)

type poolKey struct {
	frame  int
	slot   int
	kind   framegraph.ResourceKind
	image  gpucore.ImageDesc
	buffer gpucore.BufferDesc
}

type pooled struct {
	obj      gpucore.Resource
	lastUsed uint64
}

// ResourcePool realises the allocation slots of compiled plans as physical
// images and buffers.
//
// Objects are cached per frame-in-flight slot, keyed by allocation slot
// and descriptor, so an object is only reused once the fence of the frame
// that last used it has been waited on. Resources of one plan that share
// an aliased slot and an identical descriptor share one object.
//
// Idle objects of a frame slot are only released by Reclaim, which the
// caller runs after waiting on that slot's fence.
type ResourcePool struct {
	device  gpucore.Device
	maxIdle uint64
	log     *slog.Logger

	entries map[poolKey]*pooled
	frame   uint64
	created uint64
}

// NewResourcePool returns a pool for framesInFlight frame slots that
// releases objects unused for more than maxIdleFrames frames. An object is
// always kept for at least framesInFlight frames, since its slot comes
// round only once in that many frames.
func NewResourcePool(device gpucore.Device, framesInFlight, maxIdleFrames int, log *slog.Logger) *ResourcePool {
	if log == nil {
		log = framegraph.Logger()
	}
	return &ResourcePool{
		device:  device,
		maxIdle: uint64(max(maxIdleFrames, framesInFlight, 1)),
		log:     log,
		entries: make(map[poolKey]*pooled),
	}
}

func keyFor(frameSlot, allocSlot int, res framegraph.Resource) poolKey {
	k := poolKey{frame: frameSlot, slot: allocSlot, kind: res.Kind}
	if res.Kind == framegraph.KindBuffer {
		k.buffer = res.Buffer
	} else {
		k.image = res.Image
	}
	return k
}

// Bind binds every used, non-imported resource of plan to a pooled object,
// creating objects as needed. frameSlot is the frame-in-flight index the
// plan will execute in.
func (p *ResourcePool) Bind(frameSlot int, plan *framegraph.Plan, b *Bindings) error {
	for r, res := range plan.Resources {
		if !res.Used() || res.Imported {
			continue
		}
		key := keyFor(frameSlot, plan.AllocationIDs[r], res)
		e, ok := p.entries[key]
		if !ok {
			obj, err := p.create(res)
			if err != nil {
				return fmt.Errorf("render: allocate %q: %w", res.Name, err)
			}
			e = &pooled{obj: obj}
			p.entries[key] = e
			p.created++
		}
		e.lastUsed = p.frame
		b.Bind(framegraph.ResourceHandle(r), e.obj)
	}
	return nil
}

func (p *ResourcePool) create(res framegraph.Resource) (gpucore.Resource, error) {
	if res.Kind == framegraph.KindBuffer {
		return p.device.CreateBuffer(res.Name, res.Buffer)
	}
	return p.device.CreateImage(res.Name, res.Image)
}

// EndFrame advances the pool clock.
func (p *ResourcePool) EndFrame() { p.frame++ }

// Reclaim releases the idle objects of frameSlot. The GPU must be done
// with the slot's last submission.
func (p *ResourcePool) Reclaim(frameSlot int) {
	for k, e := range p.entries {
		if k.frame == frameSlot && p.frame-e.lastUsed > p.maxIdle {
			p.log.Debug("render: releasing pooled resource", "label", e.obj.Label(), "slot", k.slot)
			e.obj.Destroy()
			delete(p.entries, k)
		}
	}
}

// Len returns the number of live pooled objects.
func (p *ResourcePool) Len() int { return len(p.entries) }

// Created returns how many objects the pool has created in total.
func (p *ResourcePool) Created() uint64 { return p.created }

// Destroy releases every pooled object.
func (p *ResourcePool) Destroy() {
	for k, e := range p.entries {
		e.obj.Destroy()
		delete(p.entries, k)
	}
}
