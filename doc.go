// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package framegraph compiles a per-frame declaration of GPU resources and
// passes into an execution plan.
//
// # Overview
//
// A frame is described declaratively: resources (images and buffers) are
// created or imported on a [Graph], and passes declare, through a
// [PassBuilder], which resources they read and write and in which state.
// [Graph.Compile] then derives everything the GPU needs to run the frame
// correctly:
//
//   - which passes are needed at all (passes whose output never reaches an
//     imported resource are culled)
//   - the pass order, from read/write hazards between passes
//   - the lifetime of every resource and which transient resources can share
//     one allocation
//   - the state transitions (barriers) to insert before each pass
//
// The resulting [Plan] is plain value data. It is rebuilt from scratch every
// frame and replayed into a command stream by the render package.
//
// # Quick Start
//
//	g := framegraph.NewGraph()
//	backbuffer := g.ImportImage("backbuffer", gpucore.ImageDesc{Width: w, Height: h})
//	scratch := g.CreateImage("scratch", gpucore.ImageDesc{Width: w, Height: h, Transient: true})
//
//	g.AddPass("draw", func(b *framegraph.PassBuilder) {
//	    b.RenderTarget(scratch)
//	}, drawScene)
//	g.AddPass("compose", func(b *framegraph.PassBuilder) {
//	    b.Sample(scratch)
//	    b.RenderTarget(backbuffer)
//	}, compose)
//
//	plan, err := g.Compile()
//
// # Determinism
//
// Compilation is a pure function of the declared graph. Among several valid
// orders the one with the lowest declaration index first is chosen, so the
// same graph always compiles to the same plan.
//
// # Errors
//
// The only compile error is a dependency cycle ([ErrCycle]), which can only
// arise from explicit ordering constraints added with
// [Graph.AddDependency]. A failed compile returns an empty plan.
package framegraph
