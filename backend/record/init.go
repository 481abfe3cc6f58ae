// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package record

import (
	"github.com/gogpu/framegraph/backend"
	"github.com/gogpu/framegraph/gpucore"
	"github.com/gogpu/gputypes"
)

func init() {
	backend.Register(backend.BackendRecord, func() (gpucore.Device, gpucore.SwapchainFactory, error) {
		return NewDevice(), SwapchainFactory(DefaultImageCount, gputypes.TextureFormatBGRA8Unorm), nil
	})
}
