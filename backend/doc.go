// Package backend selects the GPU implementation the renderer runs on.
//
// Backends register a [Factory] from their init functions and are picked
// at runtime by name:
//
//	import (
//		"github.com/gogpu/framegraph/backend"
//		_ "github.com/gogpu/framegraph/backend/record"
//		_ "github.com/gogpu/framegraph/backend/wgpu"
//	)
//
//	device, swapchains, err := backend.Default()
//
// # Available Backends
//
//   - wgpu: gogpu/wgpu HAL device (Vulkan), offscreen swapchain
//   - record: in-memory command recorder for tests and headless runs
//
// [Default] tries wgpu first and falls back to record when no GPU can be
// opened.
package backend
