package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/megakode/wallrus/export"
	"github.com/megakode/wallrus/glfwcontext"
	"github.com/megakode/wallrus/graphics"
	"github.com/megakode/wallrus/headless"
	"github.com/megakode/wallrus/options"
	"github.com/megakode/wallrus/palette"
	"github.com/megakode/wallrus/renderer"
	"github.com/megakode/wallrus/shader"
	"github.com/megakode/wallrus/translator"
	"gopkg.in/natefinch/lumberjack.v2"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	opts, err := options.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid options: %v", err)
	}
	if *opts.Help {
		fmt.Println("Wallrus wallpaper pattern renderer")
		flag.PrintDefaults()
		return
	}
	if *opts.ListPalettes {
		listPalettes(os.Stdout)
		return
	}

	if logFile := setupLogging(*opts.LogFile); logFile != nil {
		defer logFile.Close()
	}
	log.Printf("Starting wallrus: %s", opts)

	if opts.Offscreen() {
		err = runOffscreen(opts)
	} else {
		err = runPreview(opts)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", *opts.Mode, err)
	}
}

// listPalettes prints every installed palette as Category/name, the form
// -palette accepts.
func listPalettes(w io.Writer) {
	cats := palette.List(palette.Roots()...)
	for _, name := range cats.Names() {
		fmt.Fprintf(w, "%s:\n", name)
		for _, path := range cats[name] {
			base := filepath.Base(path)
			fmt.Fprintf(w, "  %s/%s\n", name, strings.TrimSuffix(base, filepath.Ext(base)))
		}
	}
}

// setupLogging tees the standard logger into a rotating file.
func setupLogging(path string) io.Closer {
	if path == "" {
		return nil
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	log.SetOutput(io.MultiWriter(os.Stderr, lj))
	return lj
}

// newRenderer builds the device, translator and renderer for the current
// context and applies the command-line parameters.
func newRenderer(ctx graphics.Context, opts *options.WallrusOptions) (*renderer.Renderer, error) {
	dev, err := graphics.NewGLDevice()
	if err != nil {
		return nil, err
	}
	log.Printf("OpenGL: %s", dev.Describe())

	var tr shader.Translator = shader.Passthrough{}
	t, err := translator.New(context.Background(), ctx.IsGLES())
	if err != nil {
		log.Printf("Shader translation unavailable, compiling sources as-is: %v", err)
	} else {
		tr = t
	}

	r := renderer.New(dev, renderer.Options{GLES: ctx.IsGLES(), Translator: tr})
	if err := applyOptions(r, opts); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

func applyOptions(r *renderer.Renderer, opts *options.WallrusOptions) error {
	if err := r.SelectPreset(*opts.Preset); err != nil {
		return err
	}
	if *opts.Palette != "" {
		path, err := palette.Resolve(*opts.Palette, palette.Roots()...)
		if err != nil {
			return err
		}
		colors, err := palette.Load(path)
		if err != nil {
			return err
		}
		r.Params.SetPalette(colors)
	}

	p := &r.Params
	p.Angle = mgl32.DegToRad(float32(*opts.Angle))
	p.Scale = float32(*opts.Scale)
	p.Blend = float32(*opts.Blend)
	p.Dither = *opts.Dither
	if opts.IsSet("speed") {
		p.Speed = float32(*opts.Speed)
	}

	blur, err := renderer.ParseBlurType(*opts.Blur)
	if err != nil {
		return err
	}
	p.BlurType = blur
	p.BlurStrength = float32(*opts.BlurStrength)
	p.BloomEnabled = *opts.Bloom
	p.ChromaticEnabled = *opts.Chromatic
	return nil
}

func runPreview(opts *options.WallrusOptions) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return err
	}
	defer glfwcontext.TerminateGraphics()

	ctx, err := glfwcontext.New(*opts.Width, *opts.Height, "Wallrus", true)
	if err != nil {
		return err
	}
	defer ctx.Shutdown()
	ctx.MakeCurrent()

	r, err := newRenderer(ctx, opts)
	if err != nil {
		return err
	}
	defer r.Release()

	names := shader.Names()
	presetIndex := 0
	for i, name := range names {
		if name == r.Preset() {
			presetIndex = i
		}
	}
	cyclePreset := func(step int) {
		presetIndex = (presetIndex + step + len(names)) % len(names)
		if err := r.SelectPreset(names[presetIndex]); err != nil {
			log.Printf("Error loading preset: %v", err)
			return
		}
		ctx.SetTitle("Wallrus - " + r.Preset())
	}
	ctx.SetTitle("Wallrus - " + r.Preset())

	ctx.RegisterKeyCallback(glfw.KeyRight, func() { cyclePreset(1) })
	ctx.RegisterKeyCallback(glfw.KeyLeft, func() { cyclePreset(-1) })
	ctx.RegisterKeyCallback(glfw.KeyB, func() {
		r.Params.BlurType = (r.Params.BlurType + 1) % (renderer.BlurRadial + 1)
		log.Printf("Blur: %s", r.Params.BlurType)
	})
	ctx.RegisterKeyCallback(glfw.KeyL, func() {
		r.Params.BloomEnabled = !r.Params.BloomEnabled
		log.Printf("Bloom: %t", r.Params.BloomEnabled)
	})
	ctx.RegisterKeyCallback(glfw.KeyC, func() {
		r.Params.ChromaticEnabled = !r.Params.ChromaticEnabled
		log.Printf("Chromatic aberration: %t", r.Params.ChromaticEnabled)
	})
	ctx.RegisterKeyCallback(glfw.KeyS, func() {
		res, err := exportResolution(opts, ctx)
		if err != nil {
			log.Printf("Error exporting: %v", err)
			return
		}
		format, err := opts.StillFormat()
		if err != nil {
			log.Printf("Error exporting: %v", err)
			return
		}
		if _, err := export.Still(r, res, format, ""); err != nil {
			log.Printf("Error exporting: %v", err)
		}
	})
	ctx.RegisterKeyCallback(glfw.KeyW, func() {
		res, err := exportResolution(opts, ctx)
		if err != nil {
			log.Printf("Error writing wallpaper: %v", err)
			return
		}
		if _, err := export.Wallpaper(r, res); err != nil {
			log.Printf("Error writing wallpaper: %v", err)
		}
	})

	log.Println("Starting interactive render loop...")
	for !ctx.ShouldClose() {
		width, height := ctx.GetFramebufferSize()
		r.Render(width, height)
		ctx.EndFrame()
	}
	return nil
}

// newOffscreenContext prefers an EGL pbuffer and falls back to a hidden
// GLFW window. The returned func tears down whatever was created.
func newOffscreenContext() (graphics.Context, func(), error) {
	// exports render into their own framebuffers; the surface size is moot
	const surfaceSize = 16

	h, err := headless.NewHeadless(surfaceSize, surfaceSize)
	if err == nil {
		return h, h.Shutdown, nil
	}
	log.Printf("Headless EGL unavailable (%v), using a hidden window", err)

	if err := glfwcontext.InitGraphics(); err != nil {
		return nil, nil, err
	}
	c, err := glfwcontext.New(surfaceSize, surfaceSize, "Wallrus", false)
	if err != nil {
		glfwcontext.TerminateGraphics()
		return nil, nil, err
	}
	c.MakeCurrent()
	return c, func() {
		c.Shutdown()
		glfwcontext.TerminateGraphics()
	}, nil
}

func runOffscreen(opts *options.WallrusOptions) error {
	ctx, shutdown, err := newOffscreenContext()
	if err != nil {
		return err
	}
	defer shutdown()

	r, err := newRenderer(ctx, opts)
	if err != nil {
		return err
	}
	defer r.Release()

	res, err := export.ParseResolution(*opts.Resolution, *opts.Width, *opts.Height)
	if err != nil {
		return err
	}

	switch *opts.Mode {
	case options.ModeExport:
		var format export.Format
		if format, err = opts.StillFormat(); err == nil {
			_, err = export.Still(r, res, format, *opts.OutputFile)
		}
	case options.ModeWallpaper:
		_, err = export.Wallpaper(r, res)
	case options.ModeRecord:
		err = record(r, res, opts)
	}
	return err
}

// record renders a clip. Presets whose speed control is labeled "Time" take
// their animation from that parameter, so it advances with the clip.
func record(r *renderer.Renderer, res export.Resolution, opts *options.WallrusOptions) error {
	output := *opts.OutputFile
	if output == "" {
		output = "output.mp4"
	}
	base := r.Params.Speed
	timeControl := r.Controls().SpeedLabel == "Time"

	return export.Record(export.RecordOptions{
		Output:     output,
		Width:      res.Width,
		Height:     res.Height,
		FPS:        *opts.FPS,
		Duration:   *opts.Duration,
		Codec:      *opts.Codec,
		Bitrate:    *opts.Bitrate,
		FFmpegPath: *opts.FFMPEGPath,
		Hardware:   *opts.Hardware,
	}, func(t float64) ([]byte, error) {
		if timeControl {
			r.Params.Speed = base + float32(t)
		}
		return r.CaptureFrameAt(float32(t), res.Width, res.Height)
	})
}

// exportResolution resolves -resolution against the preview surface size.
func exportResolution(opts *options.WallrusOptions, ctx graphics.Context) (export.Resolution, error) {
	width, height := ctx.GetFramebufferSize()
	return export.ParseResolution(*opts.Resolution, width, height)
}
