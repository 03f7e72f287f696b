package options

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/megakode/wallrus/export"
)

// Modes accepted by -mode.
const (
	ModePreview   = "preview"
	ModeExport    = "export"
	ModeWallpaper = "wallpaper"
	ModeRecord    = "record"
)

type WallrusOptions struct {
	Help       *bool
	Mode       *string
	Preset     *string
	Width      *int // preview window size
	Height     *int
	Resolution *string // export size: display, hd, qhd, 4k, phone or WxH
	OutputFile *string
	Format     *string // still format when OutputFile has no extension
	Palette    *string // 1x4 palette image, or Category/name from the palette directories
	LogFile    *string

	ListPalettes *bool

	// Pattern parameters
	Angle  *float64 // degrees
	Scale  *float64
	Speed  *float64
	Blend  *float64
	Dither *bool

	Blur         *string
	BlurStrength *float64
	Bloom        *bool
	Chromatic    *bool

	// Clip recording
	Duration   *float64
	FPS        *int
	Codec      *string
	Bitrate    *string
	FFMPEGPath *string
	Hardware   *bool

	// set tracks the flags given on the command line
	set map[string]bool
}

// Parse registers the flags on fs and parses args.
func Parse(fs *flag.FlagSet, args []string) (*WallrusOptions, error) {
	o := &WallrusOptions{
		Help:       fs.Bool("help", false, "Show help message"),
		Mode:       fs.String("mode", ModePreview, "preview, export, wallpaper or record"),
		Preset:     fs.String("preset", "Bars", "Pattern preset"),
		Width:      fs.Int("width", 1280, "Preview window width"),
		Height:     fs.Int("height", 720, "Preview window height"),
		Resolution: fs.String("resolution", "display", "Export size: display, hd, qhd, 4k, phone or WxH"),
		OutputFile: fs.String("output", "", "Output file (default: pictures directory, or output.mp4 when recording)"),
		Format:     fs.String("format", "png", "Image format: png, jpg, bmp or tiff"),
		Palette:    fs.String("palette", "", "Palette image (1x4 pixels, one colour per row) or Category/name"),
		LogFile:    fs.String("logfile", "", "Also write the log to this file, rotated"),

		ListPalettes: fs.Bool("list-palettes", false, "List the installed palettes and exit"),

		Angle:  fs.Float64("angle", 45, "Pattern angle in degrees"),
		Scale:  fs.Float64("scale", 1, "Pattern scale"),
		Speed:  fs.Float64("speed", 1, "Pattern speed, or time for presets with a Time control"),
		Blend:  fs.Float64("blend", 0.5, "Palette blend softness"),
		Dither: fs.Bool("dither", false, "Ordered dithering"),

		Blur:         fs.String("blur", "none", "Blur: none, gaussian, directional or radial"),
		BlurStrength: fs.Float64("blur-strength", 0.5, "Blur strength"),
		Bloom:        fs.Bool("bloom", false, "Enable bloom"),
		Chromatic:    fs.Bool("chromatic", false, "Enable chromatic aberration"),

		Duration:   fs.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:        fs.Int("fps", 30, "Frames per second for recording"),
		Codec:      fs.String("codec", "h264", "Video codec: h264 or hevc"),
		Bitrate:    fs.String("bitrate", "", "Video bitrate, e.g. 25M"),
		FFMPEGPath: fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Hardware:   fs.Bool("hwaccel", false, "Use the platform hardware video encoder"),
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	o.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, o.validate()
}

// IsSet reports whether the named flag was given explicitly.
func (o *WallrusOptions) IsSet(name string) bool {
	return o.set[name]
}

func (o *WallrusOptions) validate() error {
	switch *o.Mode {
	case ModePreview, ModeExport, ModeWallpaper, ModeRecord:
	default:
		return fmt.Errorf("unknown mode %q", *o.Mode)
	}
	if *o.Width <= 0 || *o.Height <= 0 {
		return errors.New("width and height must be positive")
	}
	if *o.Mode == ModeRecord && (*o.Duration <= 0 || *o.FPS <= 0) {
		return errors.New("duration and fps must be positive when recording")
	}
	// stills are written by export mode and by the preview's save key
	if *o.Mode == ModeExport || *o.Mode == ModePreview {
		if _, err := o.StillFormat(); err != nil {
			return err
		}
	}
	return nil
}

// StillFormat is the format of exported stills: -format when given, else the
// extension of -output, else the -format default.
func (o *WallrusOptions) StillFormat() (export.Format, error) {
	if ext := filepath.Ext(*o.OutputFile); ext != "" && !o.IsSet("format") {
		return export.ParseFormat(ext)
	}
	return export.ParseFormat(*o.Format)
}

// Offscreen reports whether the mode renders without a preview window.
func (o *WallrusOptions) Offscreen() bool {
	return *o.Mode != ModePreview
}

func (o *WallrusOptions) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mode=%s preset=%s", *o.Mode, *o.Preset)
	if o.Offscreen() {
		fmt.Fprintf(&b, " resolution=%s", *o.Resolution)
	}
	if *o.Palette != "" {
		fmt.Fprintf(&b, " palette=%s", *o.Palette)
	}
	return b.String()
}
