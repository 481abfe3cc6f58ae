package backend

import (
	"errors"

	"github.com/gogpu/framegraph/gpucore"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or cannot open a device.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend names.
const (
	// BackendWGPU renders through the gogpu/wgpu HAL (Vulkan).
	BackendWGPU = "wgpu"

	// BackendRecord records commands in memory without a GPU.
	BackendRecord = "record"
)

// Factory opens a device and returns it together with the factory for
// swapchains on that device.
type Factory func() (gpucore.Device, gpucore.SwapchainFactory, error)
