// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package platform

import (
	"context"
	"log/slog"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/render"
)

// Renderer is the renderer surface App drives. *render.Renderer
// implements it.
type Renderer interface {
	Submit(packets []render.Packet) []render.Packet
	RequestResize(width, height uint32)
	Done() <-chan struct{}
	Close() error
}

// FrameFunc builds the payload for frame n.
type FrameFunc func(n uint64) []render.Packet

// App runs the event loop for one window and one renderer.
type App struct {
	window   Window
	renderer Renderer
	frameFn  FrameFunc
	handlers []Handler
	interval time.Duration
	log      *slog.Logger

	frames    uint64
	closing   bool
	minimized bool
	events    []Event
}

// AppOption configures an App.
type AppOption func(*App)

// WithFrameInterval paces the loop to at most one iteration per d.
// Zero runs unpaced.
func WithFrameInterval(d time.Duration) AppOption {
	return func(a *App) {
		if d >= 0 {
			a.interval = d
		}
	}
}

// WithAppLogger sets the logger used by the loop.
func WithAppLogger(l *slog.Logger) AppOption {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// NewApp returns an App. frameFn may be nil, in which case empty payloads
// are submitted and the renderer only clears and presents.
func NewApp(window Window, renderer Renderer, frameFn FrameFunc, opts ...AppOption) *App {
	a := &App{
		window:   window,
		renderer: renderer,
		frameFn:  frameFn,
		log:      framegraph.Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handle adds handlers. They run after the built-in window handlers, which
// never consume events.
func (a *App) Handle(handlers ...Handler) {
	a.handlers = append(a.handlers, handlers...)
}

// Frames returns the number of payloads submitted.
func (a *App) Frames() uint64 { return a.frames }

// Minimized reports whether the window is currently minimized.
func (a *App) Minimized() bool { return a.minimized }

// Run polls, dispatches, and submits until the window closes, the renderer
// stops on its own, or ctx is cancelled. It then closes the window and the
// renderer and returns the renderer's error, or ctx.Err() on cancellation.
func (a *App) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if a.interval > 0 {
		t := time.NewTicker(a.interval)
		defer t.Stop()
		tick = t.C
	}

	var ctxErr error
loop:
	for !a.closing {
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break loop
		case <-a.renderer.Done():
			break loop
		default:
		}

		a.events = a.window.PollEvents(a.events[:0])
		for _, ev := range a.events {
			Dispatch(ev, a.builtin, a.dispatchUser)
		}
		clear(a.events)

		if a.closing {
			break
		}
		if !a.minimized {
			var packets []render.Packet
			if a.frameFn != nil {
				packets = a.frameFn(a.frames)
			}
			a.renderer.Submit(packets)
			a.frames++
		}

		if tick != nil {
			select {
			case <-ctx.Done():
			case <-tick:
			}
		}
	}

	a.log.Debug("platform: loop stopped", "frames", a.frames, "closed", a.closing)
	a.window.Close()
	if err := a.renderer.Close(); err != nil {
		return err
	}
	return ctxErr
}

func (a *App) dispatchUser(ev Event) bool {
	return Dispatch(ev, a.handlers...)
}

func (a *App) builtin(ev Event) bool {
	switch e := ev.(type) {
	case WindowClosed:
		a.closing = true
	case WindowMinimized:
		a.minimized = e.Minimized
	case WindowResized:
		if e.Width == 0 || e.Height == 0 {
			a.minimized = true
			break
		}
		a.minimized = false
		a.renderer.RequestResize(e.Width, e.Height)
		a.log.Debug("platform: resize requested", "width", e.Width, "height", e.Height)
	}
	return false
}
