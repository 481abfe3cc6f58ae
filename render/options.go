// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"log/slog"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gputypes"
)

// PlanObserver is called on the rendering goroutine with every plan
// compiled by the engine. The plan must not be retained.
type PlanObserver func(frame uint64, plan *framegraph.Plan)

// Config holds the tunables of a FrameEngine and Renderer.
type Config struct {
	// FramesInFlight is the number of frame slots. The CPU may run at most
	// this many frames ahead of the GPU.
	FramesInFlight int

	// FenceTimeout bounds every fence wait.
	FenceTimeout time.Duration

	// ClearColor is used by the built-in clear pass.
	ClearColor gputypes.Color

	// MaxAcquireFailures consecutive acquire failures force a swapchain
	// recreate.
	MaxAcquireFailures int

	// MaxIdleFrames is how many frames a pooled resource may go unused
	// before it is released. Values below FramesInFlight act as
	// FramesInFlight.
	MaxIdleFrames int

	// Logger receives renderer logs. Nil uses framegraph.Logger().
	Logger *slog.Logger

	PlanObserver PlanObserver
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		FramesInFlight:     2,
		FenceTimeout:       5 * time.Second,
		ClearColor:         gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		MaxAcquireFailures: 3,
		MaxIdleFrames:      8,
	}
}

// Option configures a Renderer or FrameEngine.
//
// Example:
//
//	r := render.New(device, swapchains, 800, 600,
//	    render.WithFramesInFlight(3),
//	    render.WithLogger(slog.Default()))
type Option func(*Config)

// WithFramesInFlight sets the number of frame slots. Values below 1 are
// ignored.
func WithFramesInFlight(n int) Option {
	return func(c *Config) {
		if n >= 1 {
			c.FramesInFlight = n
		}
	}
}

// WithFenceTimeout sets the fence wait timeout.
func WithFenceTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.FenceTimeout = d
		}
	}
}

// WithClearColor sets the backbuffer clear color.
func WithClearColor(color gputypes.Color) Option {
	return func(c *Config) {
		c.ClearColor = color
	}
}

// WithMaxAcquireFailures sets how many consecutive acquire failures are
// tolerated before the swapchain is recreated.
func WithMaxAcquireFailures(n int) Option {
	return func(c *Config) {
		if n >= 1 {
			c.MaxAcquireFailures = n
		}
	}
}

// WithMaxIdleFrames sets how long unused pooled resources are kept.
func WithMaxIdleFrames(n int) Option {
	return func(c *Config) {
		if n >= 1 {
			c.MaxIdleFrames = n
		}
	}
}

// WithLogger sets the logger for this renderer only.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithPlanObserver installs a callback that sees every compiled plan.
func WithPlanObserver(fn PlanObserver) Option {
	return func(c *Config) {
		c.PlanObserver = fn
	}
}

func buildConfig(opts []Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = framegraph.Logger()
	}
	return cfg
}
