// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"time"

	"github.com/gogpu/framegraph/gpucore"
)

// frameSlot is the synchronization state of one frame in flight.
type frameSlot struct {
	imageAvailable gpucore.Semaphore
	renderFinished gpucore.Semaphore
	inFlight       gpucore.Fence
	inPresent      gpucore.Fence
	stream         gpucore.CommandStream

	// A fence is armed while some operation will eventually signal it (or
	// it was created signalled). Only armed fences are waited on, so a
	// failed submit or present cannot leave the next frame waiting forever.
	inFlightArmed  bool
	inPresentArmed bool
}

func newFrameSlot(device gpucore.Device, index int) (_ *frameSlot, err error) {
	s := &frameSlot{}
	defer func() {
		if err != nil {
			s.destroy()
		}
	}()

	label := func(name string) string { return fmt.Sprintf("frame%d.%s", index, name) }

	if s.imageAvailable, err = device.CreateSemaphore(label("image_available")); err != nil {
		return nil, err
	}
	if s.renderFinished, err = device.CreateSemaphore(label("render_finished")); err != nil {
		return nil, err
	}
	if s.inFlight, err = device.CreateFence(label("in_flight"), true); err != nil {
		return nil, err
	}
	if s.inPresent, err = device.CreateFence(label("in_present"), true); err != nil {
		return nil, err
	}
	if s.stream, err = device.CreateCommandStream(label("commands")); err != nil {
		return nil, err
	}
	s.inFlightArmed = true
	s.inPresentArmed = true
	return s, nil
}

// waitInFlight waits for the last submission of this slot to complete.
func (s *frameSlot) waitInFlight(device gpucore.Device, timeout time.Duration) error {
	if !s.inFlightArmed {
		return nil
	}
	if err := device.WaitFence(s.inFlight, timeout); err != nil {
		return fmt.Errorf("render: wait in-flight fence: %w", err)
	}
	return nil
}

// waitPresent waits for the last presentation of this slot to finish.
func (s *frameSlot) waitPresent(device gpucore.Device, timeout time.Duration) error {
	if !s.inPresentArmed {
		return nil
	}
	if err := device.WaitFence(s.inPresent, timeout); err != nil {
		return fmt.Errorf("render: wait present fence: %w", err)
	}
	return nil
}

func (s *frameSlot) destroy() {
	for _, r := range []gpucore.Resource{s.stream, s.inPresent, s.inFlight, s.renderFinished, s.imageAvailable} {
		if r != nil {
			r.Destroy()
		}
	}
}
