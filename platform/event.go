// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package platform

import (
	"fmt"

	"github.com/gogpu/gpucontext"
)

// Event is a window event. The set of implementations is closed.
type Event interface {
	event()
}

// MouseButton identifies a mouse button.
type MouseButton uint8

// Mouse buttons.
const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

func (b MouseButton) String() string {
	switch b {
	case MouseButtonLeft:
		return "Left"
	case MouseButtonRight:
		return "Right"
	case MouseButtonMiddle:
		return "Middle"
	default:
		return fmt.Sprintf("Button%d", uint8(b))
	}
}

// WindowClosed is sent when the user asks to close the window.
type WindowClosed struct{}

// WindowResized carries the new framebuffer size in pixels.
type WindowResized struct {
	Width, Height uint32
}

// WindowMoved carries the new window position.
type WindowMoved struct {
	X, Y int
}

// WindowMinimized reports entering or leaving the minimized state.
type WindowMinimized struct {
	Minimized bool
}

// WindowFocused reports gaining or losing input focus.
type WindowFocused struct {
	Focused bool
}

// KeyPressed is sent when a key goes down or auto-repeats.
type KeyPressed struct {
	Key    gpucontext.Key
	Mods   gpucontext.Modifiers
	Repeat bool
}

// KeyReleased is sent when a key goes up.
type KeyReleased struct {
	Key  gpucontext.Key
	Mods gpucontext.Modifiers
}

// KeyTyped carries a character produced by text input.
type KeyTyped struct {
	Rune rune
}

type MouseButtonPressed struct {
	Button MouseButton
}

type MouseButtonReleased struct {
	Button MouseButton
}

// MouseMoved carries the cursor position in window coordinates.
type MouseMoved struct {
	X, Y float64
}

// MouseScrolled carries scroll offsets.
type MouseScrolled struct {
	DX, DY float64
}

func (WindowClosed) event()        {}
func (WindowResized) event()       {}
func (WindowMoved) event()         {}
func (WindowMinimized) event()     {}
func (WindowFocused) event()       {}
func (KeyPressed) event()          {}
func (KeyReleased) event()         {}
func (KeyTyped) event()            {}
func (MouseButtonPressed) event()  {}
func (MouseButtonReleased) event() {}
func (MouseMoved) event()          {}
func (MouseScrolled) event()       {}

// Handler receives an event and reports whether it consumed it.
type Handler func(Event) bool

// On returns a handler that calls fn for events of type T and ignores
// everything else.
func On[T Event](fn func(T) bool) Handler {
	return func(ev Event) bool {
		e, ok := ev.(T)
		if !ok {
			return false
		}
		return fn(e)
	}
}

// Dispatch offers ev to handlers in order and stops at the first one that
// consumes it. It reports whether any handler did.
func Dispatch(ev Event, handlers ...Handler) bool {
	for _, h := range handlers {
		if h != nil && h(ev) {
			return true
		}
	}
	return false
}
