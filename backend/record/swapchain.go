// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package record

import (
	"fmt"

	"github.com/gogpu/framegraph/gpucore"
	"github.com/gogpu/gputypes"
)

// DefaultImageCount is the number of images of swapchains created by
// SwapchainFactory when no count is given.
const DefaultImageCount = 3

// Swapchain is an in-memory swapchain cycling through a fixed set of
// images. Failures can be injected to exercise the renderer's recovery.
type Swapchain struct {
	dev    *Device
	format gputypes.TextureFormat
	count  int

	images        []*Image
	width, height uint32
	next          int
	acquired      int

	failAcquire []error
	failPresent []error

	presents  int
	recreates int
}

// NewSwapchain creates a swapchain with n images of the given extent.
func NewSwapchain(dev *Device, n int, width, height uint32, format gputypes.TextureFormat) (*Swapchain, error) {
	if n < 1 {
		return nil, fmt.Errorf("record: swapchain needs at least one image, got %d", n)
	}
	sc := &Swapchain{dev: dev, format: format, count: n, acquired: -1}
	if err := sc.build(width, height); err != nil {
		return nil, err
	}
	return sc, nil
}

// SwapchainFactory returns a gpucore.SwapchainFactory creating n-image
// swapchains on a record Device.
func SwapchainFactory(n int, format gputypes.TextureFormat) gpucore.SwapchainFactory {
	return func(device gpucore.Device, width, height uint32) (gpucore.Swapchain, error) {
		dev, ok := device.(*Device)
		if !ok {
			return nil, fmt.Errorf("record: swapchain needs a record device, got %T", device)
		}
		return NewSwapchain(dev, n, width, height, format)
	}
}

func (sc *Swapchain) build(width, height uint32) error {
	for _, img := range sc.images {
		img.Destroy()
	}
	sc.images = sc.images[:0]
	for i := 0; i < sc.count; i++ {
		img, err := sc.dev.CreateImage(fmt.Sprintf("swapchain%d", i), gpucore.ImageDesc{
			Width:  width,
			Height: height,
			Format: sc.format,
			Usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopyDst,
		})
		if err != nil {
			return err
		}
		sc.images = append(sc.images, img.(*Image))
	}
	sc.width, sc.height = width, height
	sc.next, sc.acquired = 0, -1
	return nil
}

// FailNextAcquire queues an error for the next AcquireNext call. Queued
// errors are returned in order, one per call.
func (sc *Swapchain) FailNextAcquire(err error) {
	sc.dev.mu.Lock()
	sc.failAcquire = append(sc.failAcquire, err)
	sc.dev.mu.Unlock()
}

// FailNextPresent queues an error for the next Present call.
func (sc *Swapchain) FailNextPresent(err error) {
	sc.dev.mu.Lock()
	sc.failPresent = append(sc.failPresent, err)
	sc.dev.mu.Unlock()
}

// AcquireNext implements gpucore.Swapchain. A failed acquire leaves signal
// untouched.
func (sc *Swapchain) AcquireNext(signal gpucore.Semaphore) (gpucore.Image, error) {
	sc.dev.mu.Lock()
	defer sc.dev.mu.Unlock()

	if len(sc.failAcquire) > 0 {
		err := sc.failAcquire[0]
		sc.failAcquire = sc.failAcquire[1:]
		return nil, err
	}
	if err := signal.(*Semaphore).signal(); err != nil {
		return nil, err
	}
	sc.acquired = sc.next
	sc.next = (sc.next + 1) % len(sc.images)
	img := sc.images[sc.acquired]
	sc.dev.event(EventAcquire, img.label)
	return img, nil
}

// Present implements gpucore.Swapchain. The wait semaphore is consumed
// even when presentation fails; done is only signalled on success.
func (sc *Swapchain) Present(wait gpucore.Semaphore, done gpucore.Fence) error {
	sc.dev.mu.Lock()
	defer sc.dev.mu.Unlock()

	if sc.acquired < 0 {
		return fmt.Errorf("record: present without an acquired image")
	}
	if err := wait.(*Semaphore).wait(); err != nil {
		return err
	}
	label := sc.images[sc.acquired].label
	sc.acquired = -1

	if len(sc.failPresent) > 0 {
		err := sc.failPresent[0]
		sc.failPresent = sc.failPresent[1:]
		return err
	}
	if done != nil {
		f := done.(*Fence)
		if err := f.alive(); err != nil {
			return err
		}
		f.signaled = true
	}
	sc.presents++
	sc.dev.event(EventPresent, label)
	return nil
}

// Recreate implements gpucore.Swapchain.
func (sc *Swapchain) Recreate(width, height uint32) error {
	if err := sc.build(width, height); err != nil {
		return err
	}
	sc.dev.mu.Lock()
	sc.recreates++
	sc.dev.event(EventRecreate, fmt.Sprintf("%dx%d", width, height))
	sc.dev.mu.Unlock()
	return nil
}

func (sc *Swapchain) Width() uint32                  { return sc.width }
func (sc *Swapchain) Height() uint32                 { return sc.height }
func (sc *Swapchain) Format() gputypes.TextureFormat { return sc.format }

// Presents returns the number of successful presentations.
func (sc *Swapchain) Presents() int {
	sc.dev.mu.Lock()
	defer sc.dev.mu.Unlock()
	return sc.presents
}

// Recreates returns the number of Recreate calls.
func (sc *Swapchain) Recreates() int {
	sc.dev.mu.Lock()
	defer sc.dev.mu.Unlock()
	return sc.recreates
}

// Destroy implements gpucore.Swapchain.
func (sc *Swapchain) Destroy() {
	for _, img := range sc.images {
		img.Destroy()
	}
	sc.images = nil
}

var _ gpucore.Swapchain = (*Swapchain)(nil)
