// Package wgpu implements the gpucore device interfaces on top of the
// gogpu/wgpu hardware abstraction layer.
//
// Images become HAL textures with a default view, buffers become HAL
// buffers, and command streams record into a fresh HAL command encoder per
// Begin. Frame graph barriers are translated into batched
// TransitionTextures calls using the WebGPU usage each state maps to.
//
// All submissions go to a single queue, so semaphores only carry ordering
// bookkeeping. Fences are points on one device-wide timeline: every Submit
// advances the timeline and a fence attached to it records the value to
// wait for.
//
// # Devices
//
// Open creates a standalone Vulkan device. FromProvider reuses the device
// owned by a host application through its DeviceProvider, and NewDevice
// wraps an existing HAL device and queue directly.
//
// # Presentation
//
// NewOffscreenSwapchain renders into a ring of textures that are never
// shown. It is what the registered "wgpu" backend uses; windowed hosts
// supply their own gpucore.SwapchainFactory.
//
//	import _ "github.com/gogpu/framegraph/backend/wgpu"
package wgpu
