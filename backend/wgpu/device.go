package wgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/gpucore"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Errors reported by the device.
var (
	// ErrForeignObject is returned when an object created by another device
	// is passed in.
	ErrForeignObject = errors.New("wgpu: object not created by this device")

	// ErrDeviceDestroyed is returned by operations on a destroyed device.
	ErrDeviceDestroyed = errors.New("wgpu: device destroyed")
)

// unarmed marks a fence that has been reset and not yet attached to a
// submission.
const unarmed = math.MaxUint64

// Device is a gpucore.Device backed by a HAL device and queue.
type Device struct {
	device hal.Device
	queue  hal.Queue

	// owned resources released by Destroy when the device was opened here.
	instance hal.Instance
	owned    bool

	surfaceFormat gputypes.TextureFormat

	mu        sync.Mutex
	timeline  hal.Fence
	submitted uint64
	destroyed bool
	cleanups  []func()

	logger atomic.Pointer[slog.Logger]
}

// NewDevice wraps an existing HAL device and queue. The caller keeps
// ownership of both; Destroy releases only objects created here.
func NewDevice(device hal.Device, queue hal.Queue) (*Device, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("wgpu: nil device or queue")
	}
	timeline, err := device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("wgpu: create timeline fence: %w", err)
	}
	d := &Device{device: device, queue: queue, timeline: timeline}
	d.logger.Store(framegraph.Logger())
	return d, nil
}

// SetLogger sets the device logger. Nil restores framegraph.Logger().
func (d *Device) SetLogger(l *slog.Logger) {
	if l == nil {
		l = framegraph.Logger()
	}
	d.logger.Store(l)
}

func (d *Device) log() *slog.Logger { return d.logger.Load() }

// HalDevice returns the underlying HAL device.
func (d *Device) HalDevice() hal.Device { return d.device }

// SurfaceFormat returns the host surface format for shared devices and
// BGRA8Unorm otherwise.
func (d *Device) SurfaceFormat() gputypes.TextureFormat {
	if d.surfaceFormat == gputypes.TextureFormatUndefined {
		return gputypes.TextureFormatBGRA8Unorm
	}
	return d.surfaceFormat
}

// HalQueue returns the underlying HAL queue.
func (d *Device) HalQueue() hal.Queue { return d.queue }

// Image is a HAL texture together with its default view.
type Image struct {
	dev     *Device
	label   string
	desc    gpucore.ImageDesc
	texture hal.Texture
	view    hal.TextureView

	// external images belong to someone else and are never destroyed here.
	external bool
	once     sync.Once
}

func (i *Image) Label() string                  { return i.label }
func (i *Image) Width() uint32                  { return i.desc.Width }
func (i *Image) Height() uint32                 { return i.desc.Height }
func (i *Image) Format() gputypes.TextureFormat { return i.desc.Format }
func (i *Image) Texture() hal.Texture           { return i.texture }
func (i *Image) View() hal.TextureView          { return i.view }
func (i *Image) Desc() gpucore.ImageDesc        { return i.desc }

// Destroy releases the view and texture.
func (i *Image) Destroy() {
	if i.external {
		return
	}
	i.once.Do(func() {
		i.dev.device.DestroyTextureView(i.view)
		i.dev.device.DestroyTexture(i.texture)
	})
}

// Buffer is a HAL buffer.
type Buffer struct {
	dev    *Device
	label  string
	size   uint64
	buffer hal.Buffer
	once   sync.Once
}

func (b *Buffer) Label() string      { return b.label }
func (b *Buffer) Size() uint64       { return b.size }
func (b *Buffer) Buffer() hal.Buffer { return b.buffer }

// Destroy releases the buffer.
func (b *Buffer) Destroy() {
	b.once.Do(func() { b.dev.device.DestroyBuffer(b.buffer) })
}

// Fence is a point on the device timeline. A zero value is signalled.
type Fence struct {
	label string
	value atomic.Uint64
}

func (f *Fence) Label() string { return f.label }
func (f *Fence) Destroy()      {}

// Semaphore orders submissions on the single queue. It records whether it
// has been signalled so misuse is caught early.
type Semaphore struct {
	label    string
	signaled atomic.Bool
}

func (s *Semaphore) Label() string { return s.label }
func (s *Semaphore) Destroy()      {}

// CreateImage creates a 2D texture and its default view.
func (d *Device) CreateImage(label string, desc gpucore.ImageDesc) (gpucore.Image, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("wgpu: image %q has zero extent %dx%d", label, desc.Width, desc.Height)
	}
	usage := desc.Usage
	if usage == 0 {
		usage = gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding
	}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   desc.Samples(),
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %q: %w", label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label + "_view"})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create view %q: %w", label, err)
	}
	desc.Usage = usage
	return &Image{dev: d, label: label, desc: desc, texture: tex, view: view}, nil
}

// WrapImage adopts a texture and view owned by the caller, such as a
// surface texture. Destroy on the result is a no-op.
func (d *Device) WrapImage(label string, desc gpucore.ImageDesc, tex hal.Texture, view hal.TextureView) *Image {
	return &Image{dev: d, label: label, desc: desc, texture: tex, view: view, external: true}
}

// CreateBuffer creates a HAL buffer.
func (d *Device) CreateBuffer(label string, desc gpucore.BufferDesc) (gpucore.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("wgpu: buffer %q has zero size", label)
	}
	usage := desc.Usage
	if usage == 0 {
		usage = gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: desc.Size, Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create buffer %q: %w", label, err)
	}
	return &Buffer{dev: d, label: label, size: desc.Size, buffer: buf}, nil
}

// CreateFence creates a timeline point. A signalled fence waits on value
// zero, which every timeline has already passed.
func (d *Device) CreateFence(label string, signaled bool) (gpucore.Fence, error) {
	f := &Fence{label: label}
	if !signaled {
		f.value.Store(unarmed)
	}
	return f, nil
}

// ResetFence detaches f from the timeline until the next submission that
// names it.
func (d *Device) ResetFence(f gpucore.Fence) error {
	ff, ok := f.(*Fence)
	if !ok {
		return fmt.Errorf("%w: fence %T", ErrForeignObject, f)
	}
	ff.value.Store(unarmed)
	return nil
}

// WaitFence waits for the timeline to reach f. A fence that was reset and
// never submitted cannot be signalled, so it times out immediately.
func (d *Device) WaitFence(f gpucore.Fence, timeout time.Duration) error {
	ff, ok := f.(*Fence)
	if !ok {
		return fmt.Errorf("%w: fence %T", ErrForeignObject, f)
	}
	v := ff.value.Load()
	switch v {
	case 0:
		return nil
	case unarmed:
		return fmt.Errorf("%w: fence %q was never submitted", gpucore.ErrTimeout, ff.label)
	}
	reached, err := d.device.Wait(d.timeline, v, timeout)
	if err != nil {
		return fmt.Errorf("wgpu: wait fence %q: %w", ff.label, err)
	}
	if !reached {
		return fmt.Errorf("%w: fence %q after %v", gpucore.ErrTimeout, ff.label, timeout)
	}
	return nil
}

// signalAtCurrent attaches f to the most recent submission.
func (d *Device) signalAtCurrent(f gpucore.Fence) error {
	ff, ok := f.(*Fence)
	if !ok {
		return fmt.Errorf("%w: fence %T", ErrForeignObject, f)
	}
	d.mu.Lock()
	ff.value.Store(d.submitted)
	d.mu.Unlock()
	return nil
}

// CreateSemaphore creates a binary semaphore.
func (d *Device) CreateSemaphore(label string) (gpucore.Semaphore, error) {
	return &Semaphore{label: label}, nil
}

// CreateCommandStream creates a stream that encodes with this device.
func (d *Device) CreateCommandStream(label string) (gpucore.CommandStream, error) {
	return &Stream{dev: d, label: label}, nil
}

// Submit submits the stream's command buffer and advances the timeline.
func (d *Device) Submit(info gpucore.SubmitInfo) error {
	s, ok := info.Stream.(*Stream)
	if !ok {
		return fmt.Errorf("%w: stream %T", ErrForeignObject, info.Stream)
	}
	if s.cmd == nil || s.recording {
		return fmt.Errorf("wgpu: stream %q is not executable", s.label)
	}
	for _, w := range info.Wait {
		sem, ok := w.(*Semaphore)
		if !ok {
			return fmt.Errorf("%w: semaphore %T", ErrForeignObject, w)
		}
		if !sem.signaled.Swap(false) {
			return fmt.Errorf("wgpu: wait on unsignalled semaphore %q", sem.label)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrDeviceDestroyed
	}
	value := d.submitted + 1
	if err := d.queue.Submit([]hal.CommandBuffer{s.cmd}, d.timeline, value); err != nil {
		return fmt.Errorf("wgpu: submit %q: %w", s.label, err)
	}
	d.submitted = value
	s.submitted = value
	for _, sig := range info.Signal {
		if sem, ok := sig.(*Semaphore); ok {
			sem.signaled.Store(true)
		}
	}
	if f, ok := info.Fence.(*Fence); ok {
		f.value.Store(value)
	}
	d.log().Debug("wgpu: submitted", "stream", s.label, "value", value)
	return nil
}

// onDestroy registers fn to run when the device is destroyed, before the
// HAL device is released.
func (d *Device) onDestroy(fn func()) {
	d.mu.Lock()
	d.cleanups = append(d.cleanups, fn)
	d.mu.Unlock()
}

// WaitIdle waits for the last submission to complete.
func (d *Device) WaitIdle() error {
	d.mu.Lock()
	value := d.submitted
	d.mu.Unlock()
	if value == 0 {
		return nil
	}
	reached, err := d.device.Wait(d.timeline, value, 10*time.Second)
	if err != nil {
		return fmt.Errorf("wgpu: wait idle: %w", err)
	}
	if !reached {
		return fmt.Errorf("%w: device idle", gpucore.ErrTimeout)
	}
	return nil
}

// Destroy releases the timeline fence and, for devices opened by this
// package, the HAL device and instance.
func (d *Device) Destroy() {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return
	}
	d.destroyed = true
	cleanups := d.cleanups
	d.cleanups = nil
	d.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	d.device.DestroyFence(d.timeline)
	if d.owned {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.log().Debug("wgpu: device destroyed", "owned", d.owned)
}

var _ gpucore.Device = (*Device)(nil)
