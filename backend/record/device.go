// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package record

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/gpucore"
	"github.com/gogpu/gputypes"
)

// Protocol violations detected by the recorder.
var (
	// ErrSemaphoreMisuse is returned when a semaphore is signalled twice
	// without a wait in between, or waited on while unsignalled.
	ErrSemaphoreMisuse = errors.New("record: semaphore misuse")

	// ErrDestroyed is returned when a destroyed object is used.
	ErrDestroyed = errors.New("record: object destroyed")

	// ErrNotExecutable is returned when a stream that is not fully recorded
	// is submitted.
	ErrNotExecutable = errors.New("record: stream not executable")
)

// EventKind classifies trace events.
type EventKind uint8

const (
	EventSubmit EventKind = iota
	EventAcquire
	EventPresent
	EventRecreate
	EventWaitIdle
)

func (k EventKind) String() string {
	switch k {
	case EventSubmit:
		return "submit"
	case EventAcquire:
		return "acquire"
	case EventPresent:
		return "present"
	case EventRecreate:
		return "recreate"
	case EventWaitIdle:
		return "wait-idle"
	default:
		return "unknown"
	}
}

// Event is one entry of the device trace.
type Event struct {
	Kind  EventKind
	Label string
}

// Submission is a snapshot of one Submit call.
type Submission struct {
	Stream   string
	Commands []Command
	Wait     []string
	Signal   []string
	Fence    string
}

// Device is an in-memory gpucore.Device. It is safe for concurrent use.
type Device struct {
	mu          sync.Mutex
	trace       []Event
	submissions []Submission
	live        map[*object]struct{}
	created     int
	destroyed   bool
	failSubmit  error

	logger atomic.Pointer[slog.Logger]
}

// NewDevice returns an empty recorder.
func NewDevice() *Device {
	d := &Device{live: make(map[*object]struct{})}
	d.logger.Store(framegraph.Logger())
	return d
}

// SetLogger sets the device logger. Nil restores framegraph.Logger().
func (d *Device) SetLogger(l *slog.Logger) {
	if l == nil {
		l = framegraph.Logger()
	}
	d.logger.Store(l)
}

func (d *Device) log() *slog.Logger { return d.logger.Load() }

type object struct {
	dev       *Device
	label     string
	destroyed bool
}

func (d *Device) newObject(label string) object {
	return object{dev: d, label: label}
}

func (d *Device) track(o *object) {
	d.mu.Lock()
	d.live[o] = struct{}{}
	d.created++
	d.mu.Unlock()
}

// Label returns the debug label.
func (o *object) Label() string { return o.label }

// Destroy releases the object. Destroying twice is a no-op.
func (o *object) Destroy() {
	d := o.dev
	d.mu.Lock()
	defer d.mu.Unlock()
	if o.destroyed {
		return
	}
	o.destroyed = true
	delete(d.live, o)
}

func (o *object) alive() error {
	if o.destroyed {
		return fmt.Errorf("%w: %q", ErrDestroyed, o.label)
	}
	return nil
}

// Image is a recorded image.
type Image struct {
	object
	desc gpucore.ImageDesc
}

func (i *Image) Width() uint32                  { return i.desc.Width }
func (i *Image) Height() uint32                 { return i.desc.Height }
func (i *Image) Format() gputypes.TextureFormat { return i.desc.Format }

// Desc returns the descriptor the image was created with.
func (i *Image) Desc() gpucore.ImageDesc { return i.desc }

// Buffer is a recorded buffer.
type Buffer struct {
	object
	desc gpucore.BufferDesc
}

func (b *Buffer) Size() uint64 { return b.desc.Size }

// Fence is a recorded fence. Submissions complete immediately, so a fence
// is signalled as soon as the work it guards is submitted.
type Fence struct {
	object
	signaled bool
}

// Semaphore is a recorded binary semaphore.
type Semaphore struct {
	object
	signaled bool
}

// CreateImage implements gpucore.Device.
func (d *Device) CreateImage(label string, desc gpucore.ImageDesc) (gpucore.Image, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("record: image %q has zero extent", label)
	}
	img := &Image{object: d.newObject(label), desc: desc}
	d.track(&img.object)
	return img, nil
}

// CreateBuffer implements gpucore.Device.
func (d *Device) CreateBuffer(label string, desc gpucore.BufferDesc) (gpucore.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("record: buffer %q has zero size", label)
	}
	buf := &Buffer{object: d.newObject(label), desc: desc}
	d.track(&buf.object)
	return buf, nil
}

// CreateFence implements gpucore.Device.
func (d *Device) CreateFence(label string, signaled bool) (gpucore.Fence, error) {
	f := &Fence{object: d.newObject(label), signaled: signaled}
	d.track(&f.object)
	return f, nil
}

// ResetFence implements gpucore.Device.
func (d *Device) ResetFence(f gpucore.Fence) error {
	rf := f.(*Fence)
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := rf.alive(); err != nil {
		return err
	}
	rf.signaled = false
	return nil
}

// WaitFence implements gpucore.Device. Work completes at submission, so an
// unsignalled fence can never become signalled and the wait fails with
// gpucore.ErrTimeout right away.
func (d *Device) WaitFence(f gpucore.Fence, timeout time.Duration) error {
	rf := f.(*Fence)
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := rf.alive(); err != nil {
		return err
	}
	if !rf.signaled {
		return fmt.Errorf("%w: fence %q after %v", gpucore.ErrTimeout, rf.label, timeout)
	}
	return nil
}

// FenceSignaled reports whether f is signalled.
func (d *Device) FenceSignaled(f gpucore.Fence) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return f.(*Fence).signaled
}

// CreateSemaphore implements gpucore.Device.
func (d *Device) CreateSemaphore(label string) (gpucore.Semaphore, error) {
	s := &Semaphore{object: d.newObject(label)}
	d.track(&s.object)
	return s, nil
}

// signal and wait must be called with d.mu held.
func (s *Semaphore) signal() error {
	if err := s.alive(); err != nil {
		return err
	}
	if s.signaled {
		return fmt.Errorf("%w: %q signalled twice", ErrSemaphoreMisuse, s.label)
	}
	s.signaled = true
	return nil
}

func (s *Semaphore) wait() error {
	if err := s.alive(); err != nil {
		return err
	}
	if !s.signaled {
		return fmt.Errorf("%w: wait on unsignalled %q", ErrSemaphoreMisuse, s.label)
	}
	s.signaled = false
	return nil
}

// CreateCommandStream implements gpucore.Device.
func (d *Device) CreateCommandStream(label string) (gpucore.CommandStream, error) {
	s := &Stream{object: d.newObject(label)}
	d.track(&s.object)
	return s, nil
}

// FailNextSubmit makes the next Submit return err.
func (d *Device) FailNextSubmit(err error) {
	d.mu.Lock()
	d.failSubmit = err
	d.mu.Unlock()
}

// Submit implements gpucore.Device. The submission is validated as a whole
// before any semaphore or fence changes state.
func (d *Device) Submit(info gpucore.SubmitInfo) error {
	s := info.Stream.(*Stream)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.failSubmit; err != nil {
		d.failSubmit = nil
		return err
	}
	if err := s.alive(); err != nil {
		return err
	}
	if s.err != nil {
		return s.err
	}
	if !s.executable {
		return fmt.Errorf("%w: %q", ErrNotExecutable, s.label)
	}

	sub := Submission{Stream: s.label, Commands: append([]Command(nil), s.cmds...)}
	for _, w := range info.Wait {
		ws := w.(*Semaphore)
		if !ws.signaled || ws.destroyed {
			return fmt.Errorf("%w: wait on unsignalled %q", ErrSemaphoreMisuse, ws.label)
		}
		sub.Wait = append(sub.Wait, ws.label)
	}
	for _, sg := range info.Signal {
		ss := sg.(*Semaphore)
		if (ss.signaled && !waitsOn(info.Wait, ss)) || ss.destroyed {
			return fmt.Errorf("%w: %q signalled twice", ErrSemaphoreMisuse, ss.label)
		}
		sub.Signal = append(sub.Signal, ss.label)
	}

	for _, w := range info.Wait {
		_ = w.(*Semaphore).wait()
	}
	for _, sg := range info.Signal {
		_ = sg.(*Semaphore).signal()
	}
	if info.Fence != nil {
		f := info.Fence.(*Fence)
		if err := f.alive(); err != nil {
			return err
		}
		f.signaled = true
		sub.Fence = f.label
	}

	d.submissions = append(d.submissions, sub)
	d.trace = append(d.trace, Event{Kind: EventSubmit, Label: s.label})
	d.log().Debug("record: submit", "stream", s.label, "commands", len(sub.Commands))
	return nil
}

func waitsOn(list []gpucore.Semaphore, s *Semaphore) bool {
	for _, w := range list {
		if w.(*Semaphore) == s {
			return true
		}
	}
	return false
}

// WaitIdle implements gpucore.Device.
func (d *Device) WaitIdle() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.trace = append(d.trace, Event{Kind: EventWaitIdle})
	return nil
}

// Destroy implements gpucore.Device.
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.destroyed && len(d.live) > 0 {
		d.log().Warn("record: device destroyed with live objects", "count", len(d.live))
	}
	d.destroyed = true
}

// Destroyed reports whether Destroy has been called.
func (d *Device) Destroyed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.destroyed
}

// LiveObjects returns the number of created but not destroyed objects.
func (d *Device) LiveObjects() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// Created returns the number of objects ever created.
func (d *Device) Created() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.created
}

// Trace returns a copy of the event trace.
func (d *Device) Trace() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event(nil), d.trace...)
}

// Submissions returns a copy of all submissions so far.
func (d *Device) Submissions() []Submission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Submission(nil), d.submissions...)
}

func (d *Device) event(kind EventKind, label string) {
	d.trace = append(d.trace, Event{Kind: kind, Label: label})
}

var _ gpucore.Device = (*Device)(nil)
