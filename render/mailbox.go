// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"sync"
	"sync/atomic"
)

type extent struct {
	width, height uint32
}

// mailbox hands work from the application to the rendering goroutine. It
// holds at most one frame payload and one resize request; newer values
// replace older ones.
//
// The Running <-> ResizePending transitions of state are made under mu, so
// ResizePending is set exactly while a resize is waiting or being applied.
type mailbox struct {
	mu    sync.Mutex
	cond  *sync.Cond
	state *atomic.Int32

	frame     []Packet
	hasFrame  bool
	resize    extent
	hasResize bool
	shutdown  bool
	stopped   bool
}

func newMailbox(state *atomic.Int32) *mailbox {
	m := &mailbox{state: state}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// put stores a payload and returns the one it replaced, if it was never
// picked up. After close or stop the payload is refused and ok is false.
func (m *mailbox) put(frame []Packet) (stale []Packet, dropped, ok bool) {
	m.mu.Lock()
	if m.shutdown || m.stopped {
		m.mu.Unlock()
		return nil, false, false
	}
	stale, dropped = m.frame, m.hasFrame
	m.frame, m.hasFrame = frame, true
	m.mu.Unlock()
	m.cond.Signal()
	return stale, dropped, true
}

// requestResize records the latest extent and marks the renderer
// ResizePending. Zero-area requests and requests after close or stop are
// dropped.
func (m *mailbox) requestResize(w, h uint32) bool {
	if w == 0 || h == 0 {
		return false
	}
	m.mu.Lock()
	if m.shutdown || m.stopped {
		m.mu.Unlock()
		return false
	}
	m.resize, m.hasResize = extent{w, h}, true
	m.state.CompareAndSwap(int32(Running), int32(ResizePending))
	m.mu.Unlock()
	m.cond.Signal()
	return true
}

// resized returns the renderer to Running after a resize was applied,
// unless another one arrived meanwhile.
func (m *mailbox) resized() {
	m.mu.Lock()
	if !m.hasResize {
		m.state.CompareAndSwap(int32(ResizePending), int32(Running))
	}
	m.mu.Unlock()
}

// stop refuses all further work. The rendering goroutine calls it when it
// leaves its loop.
func (m *mailbox) stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

func (m *mailbox) close() {
	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
	m.cond.Signal()
}

// work is what the rendering goroutine takes out of the mailbox in one go.
type work struct {
	frame     []Packet
	hasFrame  bool
	resize    extent
	hasResize bool
	shutdown  bool
}

// take blocks until there is a payload, a resize, or shutdown, and
// empties the mailbox.
func (m *mailbox) take() work {
	m.mu.Lock()
	defer m.mu.Unlock()
	for !m.hasFrame && !m.hasResize && !m.shutdown {
		m.cond.Wait()
	}
	w := work{
		frame:     m.frame,
		hasFrame:  m.hasFrame,
		resize:    m.resize,
		hasResize: m.hasResize,
		shutdown:  m.shutdown,
	}
	m.frame, m.hasFrame = nil, false
	m.hasResize = false
	return w
}

// pending reports whether a payload or resize is waiting.
func (m *mailbox) pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasFrame || m.hasResize
}
