// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/framegraph/gpucore"
)

// ErrClosed is returned by operations on a renderer that has shut down.
var ErrClosed = errors.New("render: renderer closed")

// Lifecycle is the state of a Renderer.
//
//	Starting -> Running -> (ResizePending <-> Running) -> Stopping -> Stopped
//
// A renderer whose construction fails goes from Starting to Stopped.
type Lifecycle int32

const (
	Starting Lifecycle = iota
	Running
	ResizePending
	Stopping
	Stopped
)

func (l Lifecycle) String() string {
	switch l {
	case Starting:
		return "Starting"
	case Running:
		return "Running"
	case ResizePending:
		return "ResizePending"
	case Stopping:
		return "Stopping"
	case Stopped:
		return "Stopped"
	default:
		return fmt.Sprintf("Lifecycle(%d)", int32(l))
	}
}

// Stats is a snapshot of renderer counters.
type Stats struct {
	FrameStats

	// Submitted counts payloads handed to Submit; Dropped counts payloads
	// replaced before the rendering goroutine picked them up.
	Submitted uint64
	Dropped   uint64
}

// loggerSetter is implemented by devices that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// Renderer drives a FrameEngine on a dedicated goroutine. The goroutine
// owns the device, the swapchain and every GPU object; the methods of
// Renderer only exchange values with it and are safe for concurrent use.
type Renderer struct {
	cfg Config
	log *slog.Logger
	mb  *mailbox

	state     atomic.Int32
	submitted atomic.Uint64
	dropped   atomic.Uint64

	statsMu sync.Mutex
	stats   FrameStats

	errMu sync.Mutex
	err   error

	closeOnce sync.Once
	done      chan struct{}
}

// New starts a renderer. It takes ownership of device: the swapchain is
// created with swapchains on the rendering goroutine, and everything is
// destroyed when the renderer stops. New returns once the renderer is
// Running or construction has failed.
func New(device gpucore.Device, swapchains gpucore.SwapchainFactory, width, height uint32, opts ...Option) (*Renderer, error) {
	cfg := buildConfig(opts)
	r := &Renderer{
		cfg:  cfg,
		log:  cfg.Logger,
		done: make(chan struct{}),
	}
	r.mb = newMailbox(&r.state)
	r.state.Store(int32(Starting))

	if ls, ok := device.(loggerSetter); ok {
		ls.SetLogger(cfg.Logger)
	}

	ready := make(chan error, 1)
	go r.run(device, swapchains, width, height, ready)
	if err := <-ready; err != nil {
		<-r.done
		return nil, err
	}
	return r, nil
}

// State returns the current lifecycle state.
func (r *Renderer) State() Lifecycle { return Lifecycle(r.state.Load()) }

// Done is closed once the renderer has stopped and released its objects.
func (r *Renderer) Done() <-chan struct{} { return r.done }

// Err returns the error that stopped the renderer, if any.
func (r *Renderer) Err() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.err
}

// Stats returns a snapshot of the renderer counters.
func (r *Renderer) Stats() Stats {
	r.statsMu.Lock()
	fs := r.stats
	r.statsMu.Unlock()
	return Stats{FrameStats: fs, Submitted: r.submitted.Load(), Dropped: r.dropped.Load()}
}

// Submit hands a frame payload to the rendering goroutine without
// blocking. If the previous payload has not been picked up yet it is
// replaced and returned so the caller can recycle it. After shutdown the
// given payload itself is returned.
func (r *Renderer) Submit(packets []Packet) []Packet {
	stale, dropped, ok := r.mb.put(packets)
	if !ok {
		return packets
	}
	r.submitted.Add(1)
	if dropped {
		r.dropped.Add(1)
	}
	return stale
}

// RequestResize asks the renderer to rebuild the swapchain at the given
// extent. Requests are coalesced: only the latest one arriving before the
// rendering goroutine wakes is applied. Zero-area requests are ignored.
func (r *Renderer) RequestResize(width, height uint32) {
	r.mb.requestResize(width, height)
}

// Close stops the renderer. A payload that was submitted but not yet
// rendered is rendered first; then the device is drained and all objects
// are released. Close blocks until that is done and returns the error that
// stopped the renderer, if any. Calling Close more than once is safe.
func (r *Renderer) Close() error {
	r.closeOnce.Do(r.mb.close)
	<-r.done
	return r.Err()
}

func (r *Renderer) setErr(err error) {
	r.errMu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.errMu.Unlock()
}

func (r *Renderer) run(device gpucore.Device, swapchains gpucore.SwapchainFactory, width, height uint32, ready chan<- error) {
	defer close(r.done)

	swapchain, err := swapchains(device, width, height)
	if err != nil {
		err = fmt.Errorf("render: create swapchain: %w", err)
		r.log.Error("render: construction failed", "err", err)
		r.setErr(err)
		device.Destroy()
		r.state.Store(int32(Stopped))
		ready <- err
		return
	}

	engine, err := newFrameEngine(device, swapchain, r.cfg)
	if err != nil {
		r.log.Error("render: construction failed", "err", err)
		r.setErr(err)
		swapchain.Destroy()
		device.Destroy()
		r.state.Store(int32(Stopped))
		ready <- err
		return
	}

	r.state.Store(int32(Running))
	r.log.Info("render: renderer started",
		"width", width, "height", height, "frames_in_flight", r.cfg.FramesInFlight)
	ready <- nil

	r.loop(engine, swapchain)

	r.mb.stop()
	r.state.Store(int32(Stopping))
	if err := device.WaitIdle(); err != nil {
		r.log.Warn("render: wait idle failed", "err", err)
	}
	engine.Destroy()
	swapchain.Destroy()
	device.Destroy()
	r.publish(engine)
	r.state.Store(int32(Stopped))
	r.log.Info("render: renderer stopped", "frames", engine.Stats().Frames)
}

// loop processes mailbox work until shutdown or a fatal error.
func (r *Renderer) loop(engine *FrameEngine, swapchain gpucore.Swapchain) {
	for {
		w := r.mb.take()

		if w.hasResize && !w.shutdown {
			r.state.CompareAndSwap(int32(Running), int32(ResizePending))
			if err := engine.Recreate(w.resize.width, w.resize.height); err != nil {
				r.fail(err)
				return
			}
			r.mb.resized()
		}

		if w.shutdown {
			r.state.Store(int32(Stopping))
			if w.hasFrame {
				r.frame(engine, swapchain, w.frame)
			}
			return
		}

		if w.hasFrame && !r.frame(engine, swapchain, w.frame) {
			return
		}
	}
}

// frame renders one payload. It returns false on a fatal error.
func (r *Renderer) frame(engine *FrameEngine, swapchain gpucore.Swapchain, packets []Packet) bool {
	defer r.publish(engine)

	err := engine.Frame(packets)
	switch {
	case err == nil:
	case errors.Is(err, ErrFrameSkipped):
		r.log.Warn("render: frame skipped", "err", err)
	default:
		r.fail(err)
		return false
	}

	if engine.NeedsRecreate() {
		r.log.Warn("render: persistent acquire failure, recreating swapchain")
		if err := engine.Recreate(swapchain.Width(), swapchain.Height()); err != nil {
			r.fail(err)
			return false
		}
	}
	return true
}

func (r *Renderer) fail(err error) {
	r.log.Error("render: stopping on device error", "err", err)
	r.setErr(err)
	r.mb.stop()
	r.state.Store(int32(Stopping))
}

func (r *Renderer) publish(engine *FrameEngine) {
	s := engine.Stats()
	r.statsMu.Lock()
	r.stats = s
	r.statsMu.Unlock()
}
