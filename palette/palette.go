// Package palette reads four-colour palettes from images and lists the
// palette images available on disk, grouped by category.
//
// A palette image is normally 1×4 pixels, one colour per row from top to
// bottom. Larger images are split into four horizontal bands and the centre
// pixel of each band is used.
package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/megakode/wallrus/xdg"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Uncategorized holds images found directly in a palette root.
const Uncategorized = "Uncategorized"

var ErrEmptyImage = errors.New("palette: image has zero dimensions")

// Load decodes the image at path and extracts its palette.
func Load(path string) ([4]mgl32.Vec3, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return [4]mgl32.Vec3{}, fmt.Errorf("palette: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return [4]mgl32.Vec3{}, fmt.Errorf("palette: decode %s: %w", path, err)
	}
	return Extract(img)
}

// Extract samples the four palette colours of img.
func Extract(img image.Image) ([4]mgl32.Vec3, error) {
	var colors [4]mgl32.Vec3
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return colors, ErrEmptyImage
	}

	cx := width / 2
	band := height / 4
	for i := range colors {
		cy := min(band*i+band/2, height-1)
		// straight alpha, so translucent pixels keep their colour
		c := color.NRGBAModel.Convert(img.At(b.Min.X+cx, b.Min.Y+cy)).(color.NRGBA)
		colors[i] = mgl32.Vec3{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
	}
	return colors, nil
}

// Categories maps a category name to its palette image paths, sorted by
// file name.
type Categories map[string][]string

// Names returns the category names in alphabetical order.
func (c Categories) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List scans each root for palette images. Subdirectories become categories
// named after the directory with its first letter upper-cased; images in a
// root itself go to Uncategorized. Missing roots are skipped. Categories of
// the same name in different roots are merged.
func List(roots ...string) Categories {
	cats := make(Categories)
	for _, root := range roots {
		collect(root, cats)
	}
	for _, paths := range cats {
		sort.Slice(paths, func(i, j int) bool {
			return filepath.Base(paths[i]) < filepath.Base(paths[j])
		})
	}
	return cats
}

func collect(root string, cats Categories) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if entry.IsDir() {
			name := capitalizeFirst(entry.Name())
			sub, err := os.ReadDir(path)
			if err != nil {
				continue
			}
			for _, s := range sub {
				if !s.IsDir() && IsImageFile(s.Name()) {
					cats[name] = append(cats[name], filepath.Join(path, s.Name()))
				}
			}
			continue
		}
		if IsImageFile(entry.Name()) {
			cats[Uncategorized] = append(cats[Uncategorized], path)
		}
	}
}

// Resolve turns a -palette argument into a file path. An existing file is
// used as is; otherwise name is read as "Category/palette" (case
// insensitive, extension optional) and looked up in List(roots...).
func Resolve(name string, roots ...string) (string, error) {
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		return name, nil
	}
	category, base, ok := strings.Cut(filepath.ToSlash(name), "/")
	if !ok {
		category, base = Uncategorized, name
	}
	cats := List(roots...)
	for _, cat := range cats.Names() {
		if !strings.EqualFold(cat, category) {
			continue
		}
		for _, path := range cats[cat] {
			file := filepath.Base(path)
			if strings.EqualFold(file, base) || strings.EqualFold(strings.TrimSuffix(file, filepath.Ext(file)), base) {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("palette: %q not found", name)
}

// IsImageFile reports whether name has an extension Load can decode.
func IsImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Roots returns the palette directories that exist: the bundled ones next to
// the executable or in the system share directories, then the user's.
func Roots() []string {
	var candidates []string
	if exe, err := os.Executable(); err == nil {
		prefix := filepath.Dir(filepath.Dir(exe))
		candidates = append(candidates,
			filepath.Join(prefix, "data", "palettes"),
			filepath.Join(prefix, "share", "wallrus", "palettes"),
		)
	}
	candidates = append(candidates, "/usr/share/wallrus/palettes", "/app/share/wallrus/palettes")

	var roots []string
	for _, dir := range candidates {
		if isDir(dir) {
			// only the first bundled location is used
			roots = append(roots, dir)
			break
		}
	}
	if data, err := xdg.DataHome(); err == nil {
		if dir := filepath.Join(data, "wallrus", "palettes"); isDir(dir) {
			roots = append(roots, dir)
		}
	}
	return roots
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
