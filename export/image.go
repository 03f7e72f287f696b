package export

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/megakode/wallrus/xdg"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an image file format for stills.
type Format int

const (
	PNG Format = iota
	JPEG
	BMP
	TIFF
)

var extensions = map[Format]string{PNG: "png", JPEG: "jpg", BMP: "bmp", TIFF: "tiff"}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	if ext, ok := extensions[f]; ok {
		return ext
	}
	return "png"
}

func (f Format) String() string {
	return strings.ToUpper(f.Extension())
}

// ParseFormat maps a format name or file extension, with or without the dot,
// to its Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return PNG, fmt.Errorf("unsupported image format %q", s)
}

// JPEGQuality is used for every JPEG export.
const JPEGQuality = 95

// NewImage wraps top-down RGBA pixels, as returned by CaptureFrame, without
// copying them.
func NewImage(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return nil, fmt.Errorf("export: %d bytes do not form a %dx%d RGBA image", len(pixels), width, height)
	}
	return &image.RGBA{Pix: pixels, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}, nil
}

// Encode writes img in the given format. JPEG drops the alpha channel.
func Encode(w io.Writer, img image.Image, format Format) error {
	var err error
	switch format {
	case JPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case BMP:
		err = bmp.Encode(w, img)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		err = png.Encode(w, img)
	}
	if err != nil {
		return fmt.Errorf("export: encode %s: %w", format, err)
	}
	return nil
}

// Save writes top-down RGBA pixels to path.
func Save(path string, pixels []byte, width, height int, format Format) error {
	img, err := NewImage(pixels, width, height)
	if err != nil {
		return err
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("export: create file: %w", err)
	}
	if err := Encode(f, img, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// FileName builds the default export name, e.g. wallrus_plasma_1700000000.png.
func FileName(preset string, format Format, now time.Time) string {
	if preset == "" {
		preset = "wallpaper"
	}
	return fmt.Sprintf("wallrus_%s_%d.%s", strings.ToLower(preset), now.Unix(), format.Extension())
}

// DefaultDir returns the export directory inside the user's pictures
// directory, creating it if needed.
func DefaultDir() (string, error) {
	pictures, err := xdg.PicturesDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(pictures, "Wallrus")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create directory: %w", err)
	}
	return dir, nil
}

// WallpaperPath returns where the current wallpaper image is written,
// creating its directory if needed. Applying it as the desktop background is
// left to the desktop environment.
func WallpaperPath() (string, error) {
	data, err := xdg.DataHome()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(data, "backgrounds")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create directory: %w", err)
	}
	return filepath.Join(dir, "wallrus_current.png"), nil
}

// Capturer renders offscreen frames; *renderer.Renderer satisfies it.
type Capturer interface {
	CaptureFrame(width, height int) ([]byte, error)
	Preset() string
}

// Still captures one frame at res and saves it. An empty path saves into
// DefaultDir under FileName. It returns the path written.
func Still(c Capturer, res Resolution, format Format, path string) (string, error) {
	pixels, err := c.CaptureFrame(res.Width, res.Height)
	if err != nil {
		return "", fmt.Errorf("export: capture: %w", err)
	}
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, FileName(c.Preset(), format, time.Now()))
	}
	if err := Save(path, pixels, res.Width, res.Height, format); err != nil {
		return "", err
	}
	log.Printf("Saved %s %s to %s", res, format, path)
	return path, nil
}

// Wallpaper captures one frame at res and writes it as a PNG to
// WallpaperPath.
func Wallpaper(c Capturer, res Resolution) (string, error) {
	path, err := WallpaperPath()
	if err != nil {
		return "", err
	}
	return Still(c, res, PNG, path)
}
