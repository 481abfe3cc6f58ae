// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package platform

import (
	"testing"

	"github.com/gogpu/gpucontext"
)

func TestOnFiltersByType(t *testing.T) {
	var keys []gpucontext.Key
	h := On(func(e KeyPressed) bool {
		keys = append(keys, e.Key)
		return true
	})

	if h(MouseMoved{X: 1, Y: 2}) {
		t.Error("handler consumed an event of another type")
	}
	if !h(KeyPressed{Key: gpucontext.KeySpace}) {
		t.Error("handler did not consume its own event type")
	}
	if len(keys) != 1 || keys[0] != gpucontext.KeySpace {
		t.Errorf("keys = %v", keys)
	}
}

func TestDispatchShortCircuits(t *testing.T) {
	var calls []string
	mk := func(name string, consume bool) Handler {
		return func(Event) bool {
			calls = append(calls, name)
			return consume
		}
	}

	tests := []struct {
		name     string
		handlers []Handler
		want     bool
		calls    []string
	}{
		{"none", nil, false, nil},
		{"nobody consumes", []Handler{mk("a", false), mk("b", false)}, false, []string{"a", "b"}},
		{"first consumes", []Handler{mk("a", true), mk("b", false)}, true, []string{"a"}},
		{"second consumes", []Handler{mk("a", false), mk("b", true), mk("c", true)}, true, []string{"a", "b"}},
		{"nil skipped", []Handler{nil, mk("b", true)}, true, []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls = nil
			if got := Dispatch(WindowClosed{}, tt.handlers...); got != tt.want {
				t.Errorf("Dispatch() = %v, want %v", got, tt.want)
			}
			if len(calls) != len(tt.calls) {
				t.Fatalf("calls = %v, want %v", calls, tt.calls)
			}
			for i := range calls {
				if calls[i] != tt.calls[i] {
					t.Errorf("calls = %v, want %v", calls, tt.calls)
					break
				}
			}
		})
	}
}

func TestMouseButtonString(t *testing.T) {
	tests := []struct {
		b    MouseButton
		want string
	}{
		{MouseButtonLeft, "Left"},
		{MouseButtonRight, "Right"},
		{MouseButtonMiddle, "Middle"},
		{MouseButton(7), "Button7"},
	}
	for _, tt := range tests {
		if got := tt.b.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.b, got, tt.want)
		}
	}
}
