// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/gpucore"
)

// ErrUnbound is returned when a plan touches a resource that has no
// physical object bound.
var ErrUnbound = errors.New("render: resource not bound")

// Bindings maps the resources of one graph to physical objects. It
// implements framegraph.Resources for pass callbacks.
type Bindings struct {
	objects []gpucore.Resource
}

// Reset clears all bindings and sizes the table for n resources.
func (b *Bindings) Reset(n int) {
	clear(b.objects)
	if cap(b.objects) < n {
		b.objects = make([]gpucore.Resource, n)
	}
	b.objects = b.objects[:n]
}

// Bind binds h to obj.
func (b *Bindings) Bind(h framegraph.ResourceHandle, obj gpucore.Resource) {
	b.objects[h] = obj
}

// Lookup returns the object bound to h, or nil.
func (b *Bindings) Lookup(h framegraph.ResourceHandle) gpucore.Resource {
	if int(h) >= len(b.objects) {
		return nil
	}
	return b.objects[h]
}

// Image returns the image bound to h, or nil if h is unbound or a buffer.
func (b *Bindings) Image(h framegraph.ResourceHandle) gpucore.Image {
	img, _ := b.Lookup(h).(gpucore.Image)
	return img
}

// Buffer returns the buffer bound to h, or nil if h is unbound or an image.
func (b *Bindings) Buffer(h framegraph.ResourceHandle) gpucore.Buffer {
	buf, _ := b.Lookup(h).(gpucore.Buffer)
	return buf
}

// Executor records compiled plans into command streams. It keeps scratch
// buffers between calls and is not safe for concurrent use.
type Executor struct {
	states []gpucore.State
	batch  []gpucore.Barrier
}

// Record replays plan into cmd. Before each pass it issues one Transition
// covering every barrier whose destination is that pass, then runs the
// pass callback between BeginPass and EndPass. It returns the number of
// barriers recorded.
//
// The executor tracks the current state of every resource through the
// stream; a barrier's Old state is taken from that tracking, which for a
// well-formed plan equals the compiled Old state.
func (e *Executor) Record(plan *framegraph.Plan, g *framegraph.Graph, cmd gpucore.CommandStream, b *Bindings) (int, error) {
	n := len(plan.Resources)
	if cap(e.states) < n {
		e.states = make([]gpucore.State, n)
	}
	e.states = e.states[:n]
	for i := range e.states {
		e.states[i] = gpucore.StateUndefined
	}

	for r, res := range plan.Resources {
		if res.Used() && b.Lookup(framegraph.ResourceHandle(r)) == nil {
			return 0, fmt.Errorf("%w: %q", ErrUnbound, res.Name)
		}
	}

	recorded := 0
	for _, pp := range plan.Passes {
		e.batch = e.batch[:0]
		for _, br := range plan.BarriersBefore(pp.Handle) {
			e.batch = append(e.batch, gpucore.Barrier{
				Resource:  uint32(br.Resource),
				Target:    b.Lookup(br.Resource),
				Old:       e.states[br.Resource],
				New:       br.New,
				SrcStage:  br.SrcStage,
				DstStage:  br.DstStage,
				SrcAccess: br.SrcAccess,
				DstAccess: br.DstAccess,
			})
			e.states[br.Resource] = br.New
		}
		if len(e.batch) > 0 {
			cmd.Transition(e.batch)
			recorded += len(e.batch)
		}

		cmd.BeginPass(pp.Name)
		g.Pass(pp.Handle).Record(cmd, b)
		cmd.EndPass()
	}
	return recorded, nil
}

// State returns the tracked state of h after the last Record.
func (e *Executor) State(h framegraph.ResourceHandle) gpucore.State {
	if int(h) >= len(e.states) {
		return gpucore.StateUndefined
	}
	return e.states[h]
}
