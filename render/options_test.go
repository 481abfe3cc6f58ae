// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := buildConfig(nil)
	if cfg.FramesInFlight != 2 {
		t.Errorf("FramesInFlight = %d, want 2", cfg.FramesInFlight)
	}
	if cfg.FenceTimeout <= 0 || cfg.MaxAcquireFailures < 1 || cfg.MaxIdleFrames < 1 {
		t.Errorf("bad defaults: %+v", cfg)
	}
	if cfg.Logger != framegraph.Logger() {
		t.Error("default logger should be framegraph.Logger()")
	}
}

func TestOptions(t *testing.T) {
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	color := gputypes.Color{R: 1, A: 1}
	called := false

	cfg := buildConfig([]Option{
		WithFramesInFlight(3),
		WithFenceTimeout(time.Second),
		WithClearColor(color),
		WithMaxAcquireFailures(7),
		WithMaxIdleFrames(16),
		WithLogger(l),
		WithPlanObserver(func(uint64, *framegraph.Plan) { called = true }),
	})

	if cfg.FramesInFlight != 3 || cfg.FenceTimeout != time.Second || cfg.ClearColor != color ||
		cfg.MaxAcquireFailures != 7 || cfg.MaxIdleFrames != 16 || cfg.Logger != l {
		t.Errorf("options not applied: %+v", cfg)
	}
	cfg.PlanObserver(0, nil)
	if !called {
		t.Error("plan observer not installed")
	}
}

func TestOptionsIgnoreInvalid(t *testing.T) {
	cfg := buildConfig([]Option{
		WithFramesInFlight(0),
		WithFenceTimeout(-1),
		WithMaxAcquireFailures(0),
		WithMaxIdleFrames(-3),
	})
	def := DefaultConfig()
	if cfg.FramesInFlight != def.FramesInFlight || cfg.FenceTimeout != def.FenceTimeout ||
		cfg.MaxAcquireFailures != def.MaxAcquireFailures || cfg.MaxIdleFrames != def.MaxIdleFrames {
		t.Errorf("invalid options changed config: %+v", cfg)
	}
}
