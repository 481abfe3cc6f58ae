package wgpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Vulkan is the backend Open selects.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// ErrNoAdapter is returned when no GPU adapter is available.
var ErrNoAdapter = errors.New("wgpu: no GPU adapters found")

// Open creates a standalone device on the first discrete or integrated GPU,
// falling back to the first adapter found. Destroy releases the HAL device
// and instance.
func Open() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("wgpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	d, err := openInstance(instance)
	if err != nil {
		instance.Destroy()
		return nil, err
	}
	return d, nil
}

func openInstance(instance hal.Instance) (*Device, error) {
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}
	d, err := NewDevice(openDev.Device, openDev.Queue)
	if err != nil {
		openDev.Device.Destroy()
		return nil, err
	}
	d.instance = instance
	d.owned = true
	d.log().Info("wgpu: device opened", "adapter", selected.Info.Name)
	return d, nil
}

type halProvider interface {
	HalDevice() any
	HalQueue() any
}

var (
	hostMu sync.Mutex
	host   render.DeviceHandle = render.NullDeviceHandle{}
)

// SetHost sets the host device the registered wgpu backend shares. The
// default, render.NullDeviceHandle, makes it open a standalone device.
func SetHost(h render.DeviceHandle) {
	if h == nil {
		h = render.NullDeviceHandle{}
	}
	hostMu.Lock()
	host = h
	hostMu.Unlock()
}

func currentHost() render.DeviceHandle {
	hostMu.Lock()
	defer hostMu.Unlock()
	return host
}

// OpenHost shares the device of h when it exposes one and opens a
// standalone device otherwise.
func OpenHost(h render.DeviceHandle) (*Device, error) {
	if hp, ok := h.(halProvider); ok && hp.HalDevice() != nil {
		return FromProvider(h)
	}
	return Open()
}

// FromProvider adapts a host-owned device. The provider must also expose
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
// The host keeps ownership; Destroy leaves its device alive.
func FromProvider(provider render.DeviceHandle) (*Device, error) {
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider %T does not expose HAL device", provider)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}
	d, err := NewDevice(device, queue)
	if err != nil {
		return nil, err
	}
	d.surfaceFormat = provider.SurfaceFormat()
	d.log().Info("wgpu: sharing host device", "adapter", provider.AdapterInfo().Name)
	return d, nil
}
