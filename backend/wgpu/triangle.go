package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/gpucore"
	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// TrianglePassName is the pass added by Triangle.Packet.
const TrianglePassName = "triangle"

const triangleShaderSource = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOutput {
    var positions = array<vec2<f32>, 3>(
        vec2<f32>(0.0, 0.5),
        vec2<f32>(-0.5, -0.5),
        vec2<f32>(0.5, -0.5),
    );
    var colors = array<vec4<f32>, 3>(
        vec4<f32>(1.0, 0.0, 0.0, 1.0),
        vec4<f32>(0.0, 1.0, 0.0, 1.0),
        vec4<f32>(0.0, 0.0, 1.0, 1.0),
    );
    var out: VertexOutput;
    out.position = vec4<f32>(positions[index], 0.0, 1.0);
    out.color = colors[index];
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

// Triangle draws a single colored triangle into the backbuffer. The
// pipeline is created on first use for the stream's device.
type Triangle struct {
	format gputypes.TextureFormat

	mu       sync.Mutex
	dev      *Device
	shader   hal.ShaderModule
	layout   hal.PipelineLayout
	pipeline hal.RenderPipeline
}

// NewTriangle returns a triangle drawer targeting images of format.
func NewTriangle(format gputypes.TextureFormat) *Triangle {
	return &Triangle{format: format}
}

// Packet returns a render packet adding the triangle pass.
func (t *Triangle) Packet() render.Packet {
	return render.Packet{
		Name: TrianglePassName,
		Declare: func(g *framegraph.Graph, target framegraph.ResourceHandle) {
			g.AddPass(TrianglePassName,
				func(b *framegraph.PassBuilder) { b.RenderTarget(target) },
				func(cmd gpucore.CommandStream, res framegraph.Resources) {
					t.record(cmd, res.Image(target))
				})
		},
	}
}

func (t *Triangle) record(cmd gpucore.CommandStream, target gpucore.Image) {
	s, ok := cmd.(*Stream)
	if !ok || target == nil {
		return
	}
	if err := t.ensurePipeline(s.dev); err != nil {
		s.err = err
		return
	}
	rp, err := s.RenderPass(target, gputypes.LoadOpLoad, gputypes.Color{})
	if err != nil {
		s.err = err
		return
	}
	rp.SetPipeline(t.pipeline)
	rp.Draw(3, 1, 0, 0)
	rp.End()
}

func (t *Triangle) ensurePipeline(dev *Device) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pipeline != nil && t.dev == dev {
		return nil
	}
	t.destroyLocked()

	shader, err := dev.createShaderModule("triangle_shader", triangleShaderSource)
	if err != nil {
		return err
	}
	t.dev, t.shader = dev, shader

	layout, err := dev.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{Label: "triangle_pipe_layout"})
	if err != nil {
		t.destroyLocked()
		return fmt.Errorf("wgpu: create triangle pipeline layout: %w", err)
	}
	t.layout = layout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := dev.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "triangle_pipeline",
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    t.format,
				Blend:     &premulBlend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		t.destroyLocked()
		return fmt.Errorf("wgpu: create triangle pipeline: %w", err)
	}
	t.pipeline = pipeline
	dev.onDestroy(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.dev == dev {
			t.destroyLocked()
		}
	})
	return nil
}

// Destroy releases the pipeline objects. Destroying the device they were
// created on releases them as well.
func (t *Triangle) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.destroyLocked()
}

func (t *Triangle) destroyLocked() {
	if t.dev == nil {
		return
	}
	d := t.dev.device
	if t.pipeline != nil {
		d.DestroyRenderPipeline(t.pipeline)
		t.pipeline = nil
	}
	if t.layout != nil {
		d.DestroyPipelineLayout(t.layout)
		t.layout = nil
	}
	if t.shader != nil {
		d.DestroyShaderModule(t.shader)
		t.shader = nil
	}
	t.dev = nil
}
