// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package platform

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/framegraph/backend/record"
	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/gputypes"
)

type fakeRenderer struct {
	mu       sync.Mutex
	submits  int
	resizes  [][2]uint32
	closed   int
	closeErr error
	done     chan struct{}
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{done: make(chan struct{})}
}

func (f *fakeRenderer) Submit(packets []render.Packet) []render.Packet {
	f.mu.Lock()
	f.submits++
	f.mu.Unlock()
	return nil
}

func (f *fakeRenderer) RequestResize(w, h uint32) {
	f.mu.Lock()
	f.resizes = append(f.resizes, [2]uint32{w, h})
	f.mu.Unlock()
}

func (f *fakeRenderer) Done() <-chan struct{} { return f.done }

func (f *fakeRenderer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return f.closeErr
}

func TestAppStopsOnClose(t *testing.T) {
	w := NewHeadlessWindow(64, 48)
	w.CloseAfter(4)
	r := newFakeRenderer()

	var frames []uint64
	app := NewApp(w, r, func(n uint64) []render.Packet {
		frames = append(frames, n)
		return nil
	})
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if r.submits != 3 || app.Frames() != 3 {
		t.Errorf("submits = %d, frames = %d, want 3", r.submits, app.Frames())
	}
	if len(frames) != 3 || frames[2] != 2 {
		t.Errorf("frame numbers = %v", frames)
	}
	if r.closed != 1 || !w.Closed() {
		t.Errorf("renderer closed %d times, window closed %v", r.closed, w.Closed())
	}
}

func TestAppMinimizeSkipsFrames(t *testing.T) {
	w := NewHeadlessWindow(64, 48)
	w.Script(
		nil,
		[]Event{WindowMinimized{Minimized: true}},
		nil,
		[]Event{WindowMinimized{Minimized: false}},
		[]Event{WindowResized{Width: 0, Height: 10}},
		[]Event{WindowResized{Width: 20, Height: 10}},
	)
	w.CloseAfter(7)
	r := newFakeRenderer()

	app := NewApp(w, r, nil)
	if err := app.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	// Polls 1, 4 and 6 submit; 2 and 3 are minimized, 5 has a zero-area
	// size, 7 closes.
	if r.submits != 3 {
		t.Errorf("submits = %d, want 3", r.submits)
	}
	if len(r.resizes) != 1 || r.resizes[0] != [2]uint32{20, 10} {
		t.Errorf("resizes = %v, want [[20 10]]", r.resizes)
	}
	if app.Minimized() {
		t.Error("app should not be minimized after a non-zero resize")
	}
}

func TestAppUserHandlersSeeBuiltinEvents(t *testing.T) {
	w := NewHeadlessWindow(8, 8)
	w.Script([]Event{WindowResized{Width: 4, Height: 4}, MouseScrolled{DY: 1}})
	w.CloseAfter(2)
	r := newFakeRenderer()

	var resized, scrolled, closed int
	app := NewApp(w, r, nil)
	app.Handle(
		On(func(WindowResized) bool { resized++; return true }),
		On(func(MouseScrolled) bool { scrolled++; return true }),
		On(func(WindowClosed) bool { closed++; return false }),
	)
	if err := app.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if resized != 1 || scrolled != 1 || closed != 1 {
		t.Errorf("resized=%d scrolled=%d closed=%d", resized, scrolled, closed)
	}
	if len(r.resizes) != 1 {
		t.Errorf("built-in resize handler did not run: %v", r.resizes)
	}
}

func TestAppContextCancel(t *testing.T) {
	w := NewHeadlessWindow(8, 8)
	r := newFakeRenderer()
	ctx, cancel := context.WithCancel(context.Background())

	app := NewApp(w, r, func(n uint64) []render.Packet {
		if n == 5 {
			cancel()
		}
		return nil
	}, WithFrameInterval(time.Millisecond))

	err := app.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}
	if r.closed != 1 {
		t.Errorf("renderer closed %d times", r.closed)
	}
}

func TestAppRendererStopped(t *testing.T) {
	w := NewHeadlessWindow(8, 8)
	r := newFakeRenderer()
	r.closeErr = errors.New("device lost")
	close(r.done)

	app := NewApp(w, r, nil)
	if err := app.Run(context.Background()); !errors.Is(err, r.closeErr) {
		t.Fatalf("Run() = %v, want renderer error", err)
	}
	if r.submits != 0 {
		t.Errorf("submitted %d frames to a stopped renderer", r.submits)
	}
}

func TestAppWithRecordRenderer(t *testing.T) {
	dev := record.NewDevice()
	rd, err := render.New(dev, record.SwapchainFactory(2, gputypes.TextureFormatBGRA8Unorm), 32, 32)
	if err != nil {
		t.Fatalf("render.New() = %v", err)
	}

	w := NewHeadlessWindow(32, 32)
	w.Script(nil, []Event{WindowResized{Width: 48, Height: 40}})
	w.CloseAfter(10)

	app := NewApp(w, rd, nil, WithFrameInterval(time.Millisecond))
	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if rd.State() != render.Stopped {
		t.Errorf("renderer state = %v, want Stopped", rd.State())
	}
	if !dev.Destroyed() {
		t.Error("device should be destroyed after shutdown")
	}
}
