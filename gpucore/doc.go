// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpucore provides the backend-neutral GPU vocabulary shared by the
// frame graph compiler and the frame execution engine.
//
// The package defines two things:
//
//   - Synchronization vocabulary: [State] (the layout/usage a resource must be
//     in), [Stage] (pipeline stages) and [AccessMask] (memory access rights).
//     The compiler reasons in these terms; backends translate them.
//   - Collaborator interfaces: [Device], [CommandStream], [Swapchain],
//     [Image], [Buffer], [Fence] and [Semaphore]. The execution engine only
//     talks to these, so the same engine drives the wgpu HAL backend and the
//     in-memory record backend used by tests.
//
// # Architecture
//
//	               +-------------------+
//	               |    framegraph     |
//	               | (compile → Plan)  |
//	               +---------+---------+
//	                         |
//	               +---------v---------+
//	               |      render       |
//	               | (record, submit)  |
//	               +---------+---------+
//	                         | gpucore.Device
//	         +---------------+---------------+
//	         |                               |
//	+--------v--------+             +--------v--------+
//	|  backend/wgpu   |             | backend/record  |
//	|  (hal.Device)   |             |   (in-memory)   |
//	+-----------------+             +-----------------+
//
// # Ownership
//
// Every object created through a [Device] is owned by the goroutine that
// drives the renderer. Applications never hold these handles directly; they
// refer to resources through frame graph handles instead.
package gpucore
