// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package record

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/framegraph/backend"
	"github.com/gogpu/framegraph/gpucore"
	"github.com/gogpu/gputypes"
)

func mustSemaphore(t *testing.T, d *Device, label string) gpucore.Semaphore {
	t.Helper()
	s, err := d.CreateSemaphore(label)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func recordedStream(t *testing.T, d *Device) gpucore.CommandStream {
	t.Helper()
	s, err := d.CreateCommandStream("cmd")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Begin(); err != nil {
		t.Fatal(err)
	}
	s.BeginPass("p")
	s.EndPass()
	if err := s.End(); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSubmitSignalsFenceAndSemaphores(t *testing.T) {
	d := NewDevice()
	stream := recordedStream(t, d)
	wait := mustSemaphore(t, d, "wait")
	signal := mustSemaphore(t, d, "signal")
	fence, _ := d.CreateFence("fence", false)

	if err := d.WaitFence(fence, time.Millisecond); !errors.Is(err, gpucore.ErrTimeout) {
		t.Fatalf("WaitFence on unsignalled fence = %v, want ErrTimeout", err)
	}

	// Nothing signalled wait yet.
	err := d.Submit(gpucore.SubmitInfo{Stream: stream, Wait: []gpucore.Semaphore{wait}})
	if !errors.Is(err, ErrSemaphoreMisuse) {
		t.Fatalf("Submit waiting on unsignalled semaphore = %v, want ErrSemaphoreMisuse", err)
	}
	if len(d.Submissions()) != 0 {
		t.Fatal("rejected submission was recorded")
	}

	wait.(*Semaphore).signaled = true
	err = d.Submit(gpucore.SubmitInfo{
		Stream: stream,
		Wait:   []gpucore.Semaphore{wait},
		Signal: []gpucore.Semaphore{signal},
		Fence:  fence,
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := d.WaitFence(fence, time.Millisecond); err != nil {
		t.Errorf("WaitFence after submit = %v", err)
	}
	if wait.(*Semaphore).signaled || !signal.(*Semaphore).signaled {
		t.Error("semaphores not consumed/signalled by submit")
	}

	// Signalling an already signalled semaphore is misuse.
	err = d.Submit(gpucore.SubmitInfo{Stream: stream, Signal: []gpucore.Semaphore{signal}})
	if !errors.Is(err, ErrSemaphoreMisuse) {
		t.Errorf("double signal = %v, want ErrSemaphoreMisuse", err)
	}

	subs := d.Submissions()
	if len(subs) != 1 || subs[0].Fence != "fence" || len(subs[0].Commands) != 2 {
		t.Errorf("Submissions() = %+v", subs)
	}
}

func TestResetFence(t *testing.T) {
	d := NewDevice()
	f, _ := d.CreateFence("f", true)
	if err := d.WaitFence(f, 0); err != nil {
		t.Fatalf("signalled fence wait = %v", err)
	}
	if err := d.ResetFence(f); err != nil {
		t.Fatal(err)
	}
	if d.FenceSignaled(f) {
		t.Error("fence still signalled after reset")
	}
}

func TestStreamRecordingRules(t *testing.T) {
	d := NewDevice()
	s, _ := d.CreateCommandStream("cmd")

	s.BeginPass("early")
	if err := s.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := s.End(); err != nil {
		t.Errorf("End after clean Begin = %v", err)
	}
	if err := s.End(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("End twice = %v, want ErrNotRecording", err)
	}

	// Unsubmitted, unfinished streams cannot be submitted.
	if err := s.Begin(); err != nil {
		t.Fatal(err)
	}
	if err := d.Submit(gpucore.SubmitInfo{Stream: s}); !errors.Is(err, ErrNotExecutable) {
		t.Errorf("Submit while recording = %v, want ErrNotExecutable", err)
	}
}

func TestStreamRejectsDestroyedTarget(t *testing.T) {
	d := NewDevice()
	img, _ := d.CreateImage("img", gpucore.ImageDesc{Width: 4, Height: 4})
	s, _ := d.CreateCommandStream("cmd")
	_ = s.Begin()
	img.Destroy()
	s.ClearImage(img, gputypes.Color{})
	if err := s.End(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("End after using destroyed image = %v, want ErrDestroyed", err)
	}
}

func TestTransitionCopiesBarriers(t *testing.T) {
	d := NewDevice()
	img, _ := d.CreateImage("img", gpucore.ImageDesc{Width: 4, Height: 4})
	s, _ := d.CreateCommandStream("cmd")
	_ = s.Begin()

	batch := []gpucore.Barrier{{Target: img, New: gpucore.StateColorAttachment}}
	s.Transition(batch)
	batch[0].New = gpucore.StatePresent

	cmds := s.(*Stream).Commands()
	if got := cmds[0].Barriers[0].New; got != gpucore.StateColorAttachment {
		t.Errorf("recorded barrier aliased caller slice: New = %v", got)
	}
}

func TestLiveObjects(t *testing.T) {
	d := NewDevice()
	img, _ := d.CreateImage("img", gpucore.ImageDesc{Width: 1, Height: 1})
	buf, _ := d.CreateBuffer("buf", gpucore.BufferDesc{Size: 16})
	if d.LiveObjects() != 2 {
		t.Fatalf("LiveObjects = %d, want 2", d.LiveObjects())
	}
	img.Destroy()
	img.Destroy()
	buf.Destroy()
	if d.LiveObjects() != 0 || d.Created() != 2 {
		t.Errorf("LiveObjects = %d Created = %d", d.LiveObjects(), d.Created())
	}
	if _, err := d.CreateImage("zero", gpucore.ImageDesc{}); err == nil {
		t.Error("zero-extent image accepted")
	}
}

func TestSwapchainCycleAndFailures(t *testing.T) {
	d := NewDevice()
	sc, err := NewSwapchain(d, 2, 8, 6, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	acquire := mustSemaphore(t, d, "acquire")
	fence, _ := d.CreateFence("present", false)

	var labels []string
	for i := 0; i < 3; i++ {
		img, err := sc.AcquireNext(acquire)
		if err != nil {
			t.Fatalf("AcquireNext #%d: %v", i, err)
		}
		labels = append(labels, img.Label())
		if err := sc.Present(acquire, fence); err != nil {
			t.Fatalf("Present #%d: %v", i, err)
		}
	}
	if labels[0] != "swapchain0" || labels[1] != "swapchain1" || labels[2] != "swapchain0" {
		t.Errorf("acquired %v", labels)
	}

	sc.FailNextAcquire(gpucore.ErrSurfaceOutOfDate)
	if _, err := sc.AcquireNext(acquire); !errors.Is(err, gpucore.ErrSurfaceOutOfDate) {
		t.Errorf("injected acquire error = %v", err)
	}
	if acquire.(*Semaphore).signaled {
		t.Error("failed acquire signalled the semaphore")
	}

	if _, err := sc.AcquireNext(acquire); err != nil {
		t.Fatal(err)
	}
	_ = d.ResetFence(fence)
	sc.FailNextPresent(gpucore.ErrSurfaceLost)
	if err := sc.Present(acquire, fence); !errors.Is(err, gpucore.ErrSurfaceLost) {
		t.Errorf("injected present error = %v", err)
	}
	if acquire.(*Semaphore).signaled || d.FenceSignaled(fence) {
		t.Error("failed present: semaphore must be consumed and fence left unsignalled")
	}

	if err := sc.Recreate(16, 12); err != nil {
		t.Fatal(err)
	}
	if sc.Width() != 16 || sc.Height() != 12 || sc.Recreates() != 1 || sc.Presents() != 3 {
		t.Errorf("after recreate: %dx%d recreates=%d presents=%d", sc.Width(), sc.Height(), sc.Recreates(), sc.Presents())
	}

	kinds := map[EventKind]int{}
	for _, ev := range d.Trace() {
		kinds[ev.Kind]++
	}
	if kinds[EventAcquire] != 4 || kinds[EventPresent] != 3 || kinds[EventRecreate] != 1 {
		t.Errorf("trace counts = %v", kinds)
	}
}

func TestSwapchainFactoryRejectsForeignDevice(t *testing.T) {
	type other struct{ gpucore.Device }
	if _, err := SwapchainFactory(2, gputypes.TextureFormatBGRA8Unorm)(other{}, 4, 4); err == nil {
		t.Error("factory accepted a non-record device")
	}
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendRecord) {
		t.Fatal("record backend not registered")
	}
	dev, swapchains, err := backend.Get(backend.BackendRecord)
	if err != nil {
		t.Fatal(err)
	}
	sc, err := swapchains(dev, 32, 32)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Format() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Format() = %v", sc.Format())
	}
	sc.Destroy()
	dev.Destroy()
}
