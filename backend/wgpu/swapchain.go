package wgpu

import (
	"fmt"

	"github.com/gogpu/framegraph/gpucore"
	"github.com/gogpu/gputypes"
)

// OffscreenSwapchain is a ring of textures standing in for a surface.
// Presenting marks the done fence at the last submission.
type OffscreenSwapchain struct {
	dev    *Device
	format gputypes.TextureFormat
	count  int
	width  uint32
	height uint32

	images   []gpucore.Image
	next     int
	acquired int
}

// NewOffscreenSwapchain creates n images of the given size and format.
func NewOffscreenSwapchain(dev *Device, n int, width, height uint32, format gputypes.TextureFormat) (*OffscreenSwapchain, error) {
	if n <= 0 {
		return nil, fmt.Errorf("wgpu: swapchain needs at least one image, got %d", n)
	}
	sc := &OffscreenSwapchain{dev: dev, format: format, count: n, acquired: -1}
	if err := sc.Recreate(width, height); err != nil {
		return nil, err
	}
	return sc, nil
}

// SwapchainFactory returns a factory creating offscreen swapchains on
// *Device values.
func SwapchainFactory(n int, format gputypes.TextureFormat) gpucore.SwapchainFactory {
	return func(device gpucore.Device, width, height uint32) (gpucore.Swapchain, error) {
		d, ok := device.(*Device)
		if !ok {
			return nil, fmt.Errorf("%w: device %T", ErrForeignObject, device)
		}
		return NewOffscreenSwapchain(d, n, width, height, format)
	}
}

// AcquireNext returns the next ring image and signals the semaphore.
func (sc *OffscreenSwapchain) AcquireNext(signal gpucore.Semaphore) (gpucore.Image, error) {
	sem, ok := signal.(*Semaphore)
	if !ok {
		return nil, fmt.Errorf("%w: semaphore %T", ErrForeignObject, signal)
	}
	if len(sc.images) == 0 {
		return nil, gpucore.ErrSurfaceLost
	}
	sc.acquired = sc.next
	sc.next = (sc.next + 1) % len(sc.images)
	sem.signaled.Store(true)
	return sc.images[sc.acquired], nil
}

// Present consumes wait and attaches done to the last submission.
func (sc *OffscreenSwapchain) Present(wait gpucore.Semaphore, done gpucore.Fence) error {
	sem, ok := wait.(*Semaphore)
	if !ok {
		return fmt.Errorf("%w: semaphore %T", ErrForeignObject, wait)
	}
	if sc.acquired < 0 {
		return fmt.Errorf("wgpu: present without acquired image")
	}
	sem.signaled.Store(false)
	sc.acquired = -1
	if done != nil {
		return sc.dev.signalAtCurrent(done)
	}
	return nil
}

// Recreate replaces every image with one of the new size.
func (sc *OffscreenSwapchain) Recreate(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("wgpu: swapchain extent %dx%d", width, height)
	}
	sc.destroyImages()
	for i := 0; i < sc.count; i++ {
		img, err := sc.dev.CreateImage(fmt.Sprintf("swapchain%d", i), gpucore.ImageDesc{
			Width:  width,
			Height: height,
			Format: sc.format,
			Usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
		})
		if err != nil {
			sc.destroyImages()
			return err
		}
		sc.images = append(sc.images, img)
	}
	sc.width, sc.height = width, height
	sc.next, sc.acquired = 0, -1
	return nil
}

func (sc *OffscreenSwapchain) Width() uint32                  { return sc.width }
func (sc *OffscreenSwapchain) Height() uint32                 { return sc.height }
func (sc *OffscreenSwapchain) Format() gputypes.TextureFormat { return sc.format }

// Destroy releases the images.
func (sc *OffscreenSwapchain) Destroy() { sc.destroyImages() }

func (sc *OffscreenSwapchain) destroyImages() {
	for _, img := range sc.images {
		img.Destroy()
	}
	sc.images = sc.images[:0]
}

var _ gpucore.Swapchain = (*OffscreenSwapchain)(nil)
