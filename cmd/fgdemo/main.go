// Command fgdemo renders a few frames through the frame graph renderer on a
// headless window and reports what was compiled and submitted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend"
	"github.com/gogpu/framegraph/backend/wgpu"
	"github.com/gogpu/framegraph/gpucore"
	"github.com/gogpu/framegraph/platform"
	"github.com/gogpu/framegraph/render"
	"github.com/gogpu/gputypes"

	_ "github.com/gogpu/framegraph/backend/record"
)

func main() {
	var (
		backendName = flag.String("backend", "", "backend to use (default: best available)")
		frames      = flag.Int("frames", 120, "number of frames to render")
		width       = flag.Uint("width", 800, "window width")
		height      = flag.Uint("height", 600, "window height")
		resizeAt    = flag.Int("resize-at", 60, "frame at which the window is resized, negative to disable")
		dotPath     = flag.String("dot", "", "write the first compiled plan as Graphviz DOT to this file")
		fps         = flag.Int("fps", 60, "frame rate cap, 0 for unpaced")
		verbose     = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	framegraph.SetLogger(logger)

	if err := run(logger, *backendName, *frames, uint32(*width), uint32(*height), *resizeAt, *dotPath, *fps); err != nil {
		logger.Error("fgdemo failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, name string, frames int, width, height uint32, resizeAt int, dotPath string, fps int) error {
	var (
		device     gpucore.Device
		swapchains gpucore.SwapchainFactory
		err        error
	)
	// No host window here, so the wgpu backend opens its own device.
	wgpu.SetHost(render.NullDeviceHandle{})
	if name == "" {
		device, swapchains, err = backend.Default()
	} else {
		device, swapchains, err = backend.Get(name)
	}
	if err != nil {
		return err
	}
	logger.Info("backend selected", "available", backend.Available(), "device", fmt.Sprintf("%T", device))

	opts := []render.Option{
		render.WithLogger(logger),
		render.WithClearColor(gputypes.Color{R: 0.1, G: 0.1, B: 0.15, A: 1}),
	}
	if dotPath != "" {
		opts = append(opts, render.WithPlanObserver(dotWriter(logger, dotPath)))
	}
	renderer, err := render.New(device, swapchains, width, height, opts...)
	if err != nil {
		return err
	}

	packets := []render.Packet{bloomPacket()}
	var tri *wgpu.Triangle
	if d, ok := device.(*wgpu.Device); ok {
		tri = wgpu.NewTriangle(d.SurfaceFormat())
		packets = append(packets, tri.Packet())
	}

	window := platform.NewHeadlessWindow(width, height)
	window.CloseAfter(frames + 1)
	if resizeAt >= 0 && resizeAt < frames {
		script := make([][]platform.Event, resizeAt+1)
		script[resizeAt] = []platform.Event{platform.WindowResized{Width: width / 2, Height: height / 2}}
		window.Script(script...)
	}

	var appOpts []platform.AppOption
	if fps > 0 {
		appOpts = append(appOpts, platform.WithFrameInterval(time.Second/time.Duration(fps)))
	}
	appOpts = append(appOpts, platform.WithAppLogger(logger))
	app := platform.NewApp(window, renderer, func(uint64) []render.Packet { return packets }, appOpts...)
	app.Handle(platform.On(func(e platform.WindowResized) bool {
		logger.Info("window resized", "width", e.Width, "height", e.Height)
		return false
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runErr := app.Run(ctx)
	if tri != nil {
		tri.Destroy()
	}

	st := renderer.Stats()
	logger.Info("done",
		"submitted", st.Submitted,
		"dropped", st.Dropped,
		"frames", st.Frames,
		"skipped", st.Skipped,
		"recreates", st.Recreates,
		"passes", st.Passes,
		"barriers", st.Barriers,
		"pooled", st.PooledResources,
	)
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// bloomPacket extracts bright areas into a half-size transient image, blurs
// them twice, and composes the result onto the backbuffer. bloom.bright is
// dead before bloom.blur_y is written, so the two share an allocation.
func bloomPacket() render.Packet {
	return render.Packet{
		Name: "bloom",
		Declare: func(g *framegraph.Graph, target framegraph.ResourceHandle) {
			desc := g.Resource(target).Image
			half := gpucore.ImageDesc{
				Width:     max(desc.Width/2, 1),
				Height:    max(desc.Height/2, 1),
				Format:    gputypes.TextureFormatRGBA8Unorm,
				Usage:     gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
				Transient: true,
			}
			bright := g.CreateImage("bloom.bright", half)
			blurX := g.CreateImage("bloom.blur_x", half)
			blurY := g.CreateImage("bloom.blur_y", half)

			g.AddPass("bloom.extract", func(b *framegraph.PassBuilder) {
				b.RenderTarget(bright)
			}, nil)
			g.AddPass("bloom.blur_x", func(b *framegraph.PassBuilder) {
				b.Sample(bright)
				b.RenderTarget(blurX)
			}, nil)
			g.AddPass("bloom.blur_y", func(b *framegraph.PassBuilder) {
				b.Sample(blurX)
				b.RenderTarget(blurY)
			}, nil)
			g.AddPass("bloom.compose", func(b *framegraph.PassBuilder) {
				b.Sample(blurY)
				b.RenderTarget(target)
			}, nil)
		},
	}
}

// dotWriter writes the first plan it sees to path.
func dotWriter(logger *slog.Logger, path string) render.PlanObserver {
	written := false
	return func(frame uint64, plan *framegraph.Plan) {
		if written {
			return
		}
		written = true
		if err := os.WriteFile(path, []byte(plan.DOT()), 0o644); err != nil {
			logger.Warn("write DOT", "path", path, "err", err)
			return
		}
		logger.Info("plan written", "path", path, "frame", frame, "passes", len(plan.Passes), "barriers", len(plan.Barriers))
	}
}
