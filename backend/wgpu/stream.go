package wgpu

import (
	"fmt"

	"github.com/gogpu/framegraph/gpucore"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Stream is a gpucore.CommandStream recording into HAL command encoders.
type Stream struct {
	dev   *Device
	label string

	encoder   hal.CommandEncoder
	cmd       hal.CommandBuffer
	recording bool
	submitted uint64
	pass      string
	err       error

	barriers []hal.TextureBarrier
}

// Label returns the stream label.
func (s *Stream) Label() string { return s.label }

// Begin starts a new encoder. The command buffer from the previous
// recording is freed; the caller must have waited for its fence.
func (s *Stream) Begin() error {
	s.release()
	enc, err := s.dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: s.label})
	if err != nil {
		return fmt.Errorf("wgpu: create encoder %q: %w", s.label, err)
	}
	if err := enc.BeginEncoding(s.label); err != nil {
		return fmt.Errorf("wgpu: begin encoding %q: %w", s.label, err)
	}
	s.encoder = enc
	s.recording = true
	s.err = nil
	return nil
}

// Transition records one TransitionTextures call for the image barriers.
// Buffers need no explicit transitions on HAL queues and are skipped.
func (s *Stream) Transition(barriers []gpucore.Barrier) {
	if !s.check("transition") {
		return
	}
	s.barriers = s.barriers[:0]
	for _, b := range barriers {
		img, ok := b.Target.(*Image)
		if !ok {
			continue
		}
		// Present maps to no usage; the presentation engine takes the
		// image as it was last rendered.
		old, next := b.Old.TextureUsage(), b.New.TextureUsage()
		if old == next || next == 0 {
			continue
		}
		s.barriers = append(s.barriers, hal.TextureBarrier{
			Texture: img.texture,
			Usage:   hal.TextureUsageTransition{OldUsage: old, NewUsage: next},
		})
	}
	if len(s.barriers) > 0 {
		s.encoder.TransitionTextures(s.barriers)
	}
}

// ClearImage clears img with an empty render pass.
func (s *Stream) ClearImage(img gpucore.Image, color gputypes.Color) {
	if !s.check("clear") {
		return
	}
	rp, err := s.RenderPass(img, gputypes.LoadOpClear, color)
	if err != nil {
		s.err = err
		return
	}
	rp.End()
}

// RenderPass begins a HAL render pass with img as the single color
// attachment. The caller ends it.
func (s *Stream) RenderPass(img gpucore.Image, load gputypes.LoadOp, clear gputypes.Color) (hal.RenderPassEncoder, error) {
	if !s.recording {
		return nil, fmt.Errorf("wgpu: stream %q is not recording", s.label)
	}
	target, ok := img.(*Image)
	if !ok {
		return nil, fmt.Errorf("%w: image %T", ErrForeignObject, img)
	}
	label := s.pass
	if label == "" {
		label = target.label
	}
	return s.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       target.view,
			LoadOp:     load,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clear,
		}},
	}), nil
}

// BeginPass names the render passes opened until EndPass.
func (s *Stream) BeginPass(name string) {
	if s.check("begin pass") {
		s.pass = name
	}
}

// EndPass clears the current pass name.
func (s *Stream) EndPass() { s.pass = "" }

// End finishes encoding. Errors recorded since Begin are reported here and
// the encoding is discarded.
func (s *Stream) End() error {
	if !s.recording {
		return fmt.Errorf("wgpu: stream %q is not recording", s.label)
	}
	s.recording = false
	if s.err != nil {
		s.encoder.DiscardEncoding()
		s.encoder = nil
		return s.err
	}
	cmd, err := s.encoder.EndEncoding()
	if err != nil {
		s.encoder = nil
		return fmt.Errorf("wgpu: end encoding %q: %w", s.label, err)
	}
	s.cmd = cmd
	s.submitted = 0
	return nil
}

// Destroy frees the last command buffer.
func (s *Stream) Destroy() {
	if s.recording {
		s.encoder.DiscardEncoding()
		s.recording = false
	}
	s.release()
}

func (s *Stream) release() {
	if s.cmd != nil {
		s.dev.device.FreeCommandBuffer(s.cmd)
		s.cmd = nil
	}
	s.encoder = nil
}

func (s *Stream) check(op string) bool {
	if s.err != nil {
		return false
	}
	if !s.recording {
		s.err = fmt.Errorf("wgpu: %s on stream %q outside Begin/End", op, s.label)
		return false
	}
	return true
}

var _ gpucore.CommandStream = (*Stream)(nil)
