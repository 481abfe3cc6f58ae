// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package platform

import "sync"

// Window is the part of a native window the application loop needs.
type Window interface {
	// Size returns the framebuffer size in pixels.
	Size() (width, height uint32)

	// PollEvents appends pending events to dst and returns it.
	PollEvents(dst []Event) []Event

	Close()
}

// HeadlessWindow is a Window without a display. Each PollEvents call
// delivers the next scripted batch followed by anything pushed to Queue.
// Once the script is exhausted and CloseAfter polls have happened, it
// reports WindowClosed.
type HeadlessWindow struct {
	// Queue accepts events injected from other goroutines.
	Queue EventQueue

	mu         sync.Mutex
	width      uint32
	height     uint32
	script     [][]Event
	polls      int
	closeAfter int
	closed     bool
}

// NewHeadlessWindow returns a headless window of the given size.
func NewHeadlessWindow(width, height uint32) *HeadlessWindow {
	return &HeadlessWindow{width: width, height: height, closeAfter: -1}
}

// Script appends batches of events, one batch per poll.
func (w *HeadlessWindow) Script(batches ...[]Event) {
	w.mu.Lock()
	w.script = append(w.script, batches...)
	w.mu.Unlock()
}

// CloseAfter makes the window report WindowClosed on poll n (counting from
// one). A negative n disables it.
func (w *HeadlessWindow) CloseAfter(n int) {
	w.mu.Lock()
	w.closeAfter = n
	w.mu.Unlock()
}

// Size returns the current size. WindowResized events delivered by
// PollEvents update it.
func (w *HeadlessWindow) Size() (uint32, uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// Polls returns how many times PollEvents has been called.
func (w *HeadlessWindow) Polls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polls
}

// PollEvents delivers the next scripted batch and the queued events.
func (w *HeadlessWindow) PollEvents(dst []Event) []Event {
	w.mu.Lock()
	w.polls++
	start := len(dst)
	if len(w.script) > 0 {
		dst = append(dst, w.script[0]...)
		w.script = w.script[1:]
	}
	closing := w.closeAfter >= 0 && w.polls >= w.closeAfter && !w.closed
	w.mu.Unlock()

	dst = w.Queue.Poll(dst)
	if closing {
		dst = append(dst, WindowClosed{})
	}

	w.mu.Lock()
	for _, ev := range dst[start:] {
		switch e := ev.(type) {
		case WindowResized:
			w.width, w.height = e.Width, e.Height
		case WindowClosed:
			w.closed = true
		}
	}
	w.mu.Unlock()
	return dst
}

// Close marks the window closed.
func (w *HeadlessWindow) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

// Closed reports whether the window was closed.
func (w *HeadlessWindow) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}
