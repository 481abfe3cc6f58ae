// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"sync/atomic"
	"testing"
	"time"
)

func newRunningMailbox() (*mailbox, *atomic.Int32) {
	state := new(atomic.Int32)
	state.Store(int32(Running))
	return newMailbox(state), state
}

func TestMailboxSwapsPayload(t *testing.T) {
	m, _ := newRunningMailbox()

	a := []Packet{{Name: "a"}}
	b := []Packet{{Name: "b"}}

	if stale, dropped, ok := m.put(a); !ok || dropped || stale != nil {
		t.Fatalf("first put returned stale %v", stale)
	}
	stale, dropped, ok := m.put(b)
	if !ok || !dropped || len(stale) != 1 || stale[0].Name != "a" {
		t.Fatalf("second put returned %v, %v; want payload a", stale, dropped)
	}

	w := m.take()
	if !w.hasFrame || w.frame[0].Name != "b" {
		t.Errorf("take() = %+v, want payload b", w)
	}
	if m.pending() {
		t.Error("mailbox not empty after take")
	}
}

func TestMailboxCoalescesResize(t *testing.T) {
	m, _ := newRunningMailbox()

	if m.requestResize(0, 100) || m.requestResize(100, 0) {
		t.Error("zero-area resize accepted")
	}
	if m.pending() {
		t.Fatal("zero-area resize left work pending")
	}

	m.requestResize(100, 50)
	m.requestResize(300, 200)
	w := m.take()
	if !w.hasResize || w.resize != (extent{300, 200}) {
		t.Errorf("take() resize = %+v, want 300x200", w.resize)
	}
}

func TestMailboxTakeBlocksUntilWork(t *testing.T) {
	m, _ := newRunningMailbox()
	got := make(chan work, 1)
	go func() { got <- m.take() }()

	select {
	case <-got:
		t.Fatal("take returned without work")
	case <-time.After(20 * time.Millisecond):
	}

	m.close()
	select {
	case w := <-got:
		if !w.shutdown {
			t.Errorf("take() = %+v, want shutdown", w)
		}
	case <-time.After(time.Second):
		t.Fatal("take did not wake on close")
	}
}

func TestMailboxResizeState(t *testing.T) {
	m, state := newRunningMailbox()

	m.requestResize(100, 50)
	if Lifecycle(state.Load()) != ResizePending {
		t.Fatalf("state = %v after resize request", Lifecycle(state.Load()))
	}

	// A second request lands while the first is being applied.
	m.take()
	m.requestResize(200, 100)
	m.resized()
	if Lifecycle(state.Load()) != ResizePending {
		t.Fatalf("state = %v with a resize still waiting", Lifecycle(state.Load()))
	}

	w := m.take()
	if w.resize != (extent{200, 100}) {
		t.Errorf("resize = %+v, want 200x100", w.resize)
	}
	m.resized()
	if Lifecycle(state.Load()) != Running {
		t.Errorf("state = %v after last resize, want Running", Lifecycle(state.Load()))
	}
}

func TestMailboxRefusesWorkAfterStop(t *testing.T) {
	tests := []struct {
		name string
		end  func(*mailbox)
	}{
		{"close", (*mailbox).close},
		{"stop", (*mailbox).stop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, state := newRunningMailbox()
			tt.end(m)

			if _, _, ok := m.put([]Packet{{Name: "late"}}); ok {
				t.Error("put accepted a payload")
			}
			if m.requestResize(10, 10) {
				t.Error("resize accepted")
			}
			if Lifecycle(state.Load()) != Running {
				t.Errorf("state = %v, want untouched", Lifecycle(state.Load()))
			}
		})
	}
}
