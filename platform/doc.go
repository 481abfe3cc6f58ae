// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package platform connects a window's event stream to a render.Renderer.
//
// Window events are a closed set of value types implementing Event.
// Handlers are plain functions; On adapts a function over one concrete event
// type and Dispatch offers an event to handlers in order until one consumes
// it.
//
// App owns the loop: it polls the window, dispatches events, and submits a
// frame payload to the renderer unless the window is minimized. Closing the
// window or cancelling the context stops the loop and closes the renderer.
//
//	app := platform.NewApp(window, renderer, func(frame uint64) []render.Packet {
//		return []render.Packet{scene}
//	})
//	app.Handle(platform.On(func(e platform.KeyPressed) bool { ... }))
//	err := app.Run(ctx)
package platform
