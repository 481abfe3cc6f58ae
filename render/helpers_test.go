// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend/record"
	"github.com/gogpu/framegraph/gpucore"
	"github.com/gogpu/gputypes"
)

const testFormat = gputypes.TextureFormatBGRA8Unorm

func newTestEngine(t *testing.T, opts ...Option) (*FrameEngine, *record.Device, *record.Swapchain) {
	t.Helper()
	dev := record.NewDevice()
	sc, err := record.NewSwapchain(dev, 3, 64, 48, testFormat)
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewFrameEngine(dev, sc, opts...)
	if err != nil {
		t.Fatalf("NewFrameEngine() error = %v", err)
	}
	t.Cleanup(func() {
		e.Destroy()
		sc.Destroy()
	})
	return e, dev, sc
}

// blurPacket renders into a transient image and composes it into the
// backbuffer.
func blurPacket() Packet {
	return Packet{
		Name: "blur",
		Declare: func(g *framegraph.Graph, target framegraph.ResourceHandle) {
			desc := g.Resource(target).Image
			tmp := g.CreateImage("blur.tmp", gpucore.ImageDesc{
				Width:     desc.Width / 2,
				Height:    desc.Height / 2,
				Format:    gputypes.TextureFormatRGBA8Unorm,
				Usage:     gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
				Transient: true,
			})
			g.AddPass("blur.draw", func(b *framegraph.PassBuilder) { b.RenderTarget(tmp) }, nil)
			g.AddPass("blur.compose", func(b *framegraph.PassBuilder) {
				b.Sample(tmp)
				b.RenderTarget(target)
			}, nil)
		},
	}
}

// cyclePacket declares two passes whose explicit ordering contradicts
// their hazards.
func cyclePacket() Packet {
	return Packet{
		Name: "cycle",
		Declare: func(g *framegraph.Graph, target framegraph.ResourceHandle) {
			a := g.AddPass("a", func(b *framegraph.PassBuilder) { b.RenderTarget(target) }, nil)
			b := g.AddPass("b", func(b *framegraph.PassBuilder) { b.RenderTarget(target) }, nil)
			g.AddDependency(b, a)
		},
	}
}
