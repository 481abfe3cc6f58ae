// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package record

import (
	"errors"
	"fmt"

	"github.com/gogpu/framegraph/gpucore"
	"github.com/gogpu/gputypes"
)

// ErrNotRecording is reported when commands are recorded outside
// Begin/End.
var ErrNotRecording = errors.New("record: stream not recording")

// CommandKind classifies recorded commands.
type CommandKind uint8

const (
	CmdTransition CommandKind = iota
	CmdClear
	CmdBeginPass
	CmdEndPass
)

func (k CommandKind) String() string {
	switch k {
	case CmdTransition:
		return "transition"
	case CmdClear:
		return "clear"
	case CmdBeginPass:
		return "begin-pass"
	case CmdEndPass:
		return "end-pass"
	default:
		return "unknown"
	}
}

// Command is one recorded command.
type Command struct {
	Kind CommandKind

	// Label is the pass name for pass markers and the image label for
	// clears.
	Label string

	// Barriers is set for CmdTransition.
	Barriers []gpucore.Barrier

	// Color is set for CmdClear.
	Color gputypes.Color
}

// Stream is a recorded command stream.
type Stream struct {
	object
	recording  bool
	executable bool
	cmds       []Command
	err        error
}

// Begin implements gpucore.CommandStream.
func (s *Stream) Begin() error {
	if err := s.check(); err != nil {
		return err
	}
	s.cmds = s.cmds[:0]
	s.err = nil
	s.recording = true
	s.executable = false
	return nil
}

func (s *Stream) check() error {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	return s.alive()
}

// fail keeps the first recording error; it is reported by End and Submit.
func (s *Stream) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *Stream) push(c Command) {
	if !s.recording {
		s.fail(fmt.Errorf("%w: %s in %q", ErrNotRecording, c.Kind, s.label))
		return
	}
	s.cmds = append(s.cmds, c)
}

func (s *Stream) targetAlive(r gpucore.Resource) {
	if r == nil {
		s.fail(fmt.Errorf("record: nil target in %q", s.label))
		return
	}
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	var err error
	switch o := r.(type) {
	case *Image:
		err = o.alive()
	case *Buffer:
		err = o.alive()
	}
	if err != nil {
		s.fail(err)
	}
}

// Transition implements gpucore.CommandStream. The barriers are copied.
func (s *Stream) Transition(barriers []gpucore.Barrier) {
	for _, b := range barriers {
		s.targetAlive(b.Target)
	}
	s.push(Command{Kind: CmdTransition, Barriers: append([]gpucore.Barrier(nil), barriers...)})
}

// ClearImage implements gpucore.CommandStream.
func (s *Stream) ClearImage(img gpucore.Image, color gputypes.Color) {
	s.targetAlive(img)
	label := ""
	if img != nil {
		label = img.Label()
	}
	s.push(Command{Kind: CmdClear, Label: label, Color: color})
}

// BeginPass implements gpucore.CommandStream.
func (s *Stream) BeginPass(name string) {
	s.push(Command{Kind: CmdBeginPass, Label: name})
}

// EndPass implements gpucore.CommandStream.
func (s *Stream) EndPass() {
	s.push(Command{Kind: CmdEndPass})
}

// End implements gpucore.CommandStream.
func (s *Stream) End() error {
	if !s.recording {
		return fmt.Errorf("%w: End on %q", ErrNotRecording, s.label)
	}
	s.recording = false
	if s.err != nil {
		return s.err
	}
	s.executable = true
	return nil
}

// Commands returns a copy of the commands recorded since the last Begin.
func (s *Stream) Commands() []Command {
	return append([]Command(nil), s.cmds...)
}

var _ gpucore.CommandStream = (*Stream)(nil)
