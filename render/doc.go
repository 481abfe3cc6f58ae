// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render executes compiled frame graphs on a GPU.
//
// # Layers
//
//   - [Executor] replays one [framegraph.Plan] into a command stream,
//     inserting one batched transition before each pass.
//   - [ResourcePool] turns allocation slots into physical images and buffers
//     and keeps them across frames.
//   - [FrameEngine] runs one frame: wait for the frame-in-flight slot,
//     acquire, build and compile the graph, record, submit, present.
//   - [Renderer] owns a FrameEngine on a dedicated goroutine and exposes a
//     non-blocking mailbox to the application.
//
// # Threading
//
// Only the Renderer goroutine touches GPU objects. The application hands
// work over as [Packet] values; a newer payload replaces one that has not
// been picked up yet, so a slow GPU drops stale frames instead of queueing
// them.
//
// # Usage
//
//	device, swapchains, _ := backend.Default()
//	r, err := render.New(device, swapchains, 800, 600,
//	    render.WithClearColor(gputypes.Color{R: 0.1, G: 0.1, B: 0.1, A: 1}))
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	for running {
//	    r.Submit([]render.Packet{scenePacket})
//	}
package render
