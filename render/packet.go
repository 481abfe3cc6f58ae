// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/framegraph"

// Packet is one unit of per-frame work handed from the application to the
// renderer. Declare runs on the rendering goroutine while the frame graph
// is built, after the backbuffer clear pass and before the present pass.
// target is the imported backbuffer.
type Packet struct {
	Name    string
	Declare func(g *framegraph.Graph, target framegraph.ResourceHandle)
}

// PassSetup declares the accesses of a single-pass packet.
type PassSetup func(b *framegraph.PassBuilder, target framegraph.ResourceHandle)

// NewPassPacket returns a packet that adds one pass named name.
func NewPassPacket(name string, setup PassSetup, record framegraph.RecordFunc) Packet {
	return Packet{
		Name: name,
		Declare: func(g *framegraph.Graph, target framegraph.ResourceHandle) {
			g.AddPass(name, func(b *framegraph.PassBuilder) {
				if setup != nil {
					setup(b, target)
				}
			}, record)
		},
	}
}
