package wgpu

import (
	"fmt"

	"github.com/gogpu/framegraph/backend"
	"github.com/gogpu/framegraph/gpucore"
	"github.com/gogpu/gputypes"
)

// DefaultImageCount is the ring size of the registered offscreen swapchain.
const DefaultImageCount = 3

func init() {
	backend.Register(backend.BackendWGPU, func() (gpucore.Device, gpucore.SwapchainFactory, error) {
		d, err := OpenHost(currentHost())
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", backend.ErrBackendNotAvailable, err)
		}
		return d, SwapchainFactory(DefaultImageCount, gputypes.TextureFormatBGRA8Unorm), nil
	})
}
