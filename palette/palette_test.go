package palette

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/bmp"
)

var stripe = []color.RGBA{
	{255, 0, 0, 255},
	{0, 255, 0, 255},
	{0, 0, 255, 255},
	{255, 255, 255, 255},
}

// bands returns a width×height image made of four horizontal bands.
func bands(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		c := stripe[min(y*4/height, 3)]
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func want() [4]mgl32.Vec3 {
	var out [4]mgl32.Vec3
	for i, c := range stripe {
		out[i] = mgl32.Vec3{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
	}
	return out
}

func TestExtract(t *testing.T) {
	for _, size := range [][2]int{{1, 4}, {3, 8}, {10, 40}} {
		got, err := Extract(bands(size[0], size[1]))
		if err != nil {
			t.Fatalf("%v: %v", size, err)
		}
		if got != want() {
			t.Errorf("%dx%d: got %v, want %v", size[0], size[1], got, want())
		}
	}

	// a non-zero origin must not shift the samples
	offset := image.NewRGBA(image.Rect(5, 10, 9, 18))
	for y := 10; y < 18; y++ {
		for x := 5; x < 9; x++ {
			offset.SetRGBA(x, y, stripe[(y-10)/2])
		}
	}
	if got, _ := Extract(offset); got != want() {
		t.Errorf("sub-image: got %v", got)
	}

	if _, err := Extract(image.NewRGBA(image.Rect(0, 0, 0, 0))); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("empty image error = %v, want ErrEmptyImage", err)
	}
}

func TestExtractIgnoresAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 4))
	for y, c := range stripe {
		img.SetNRGBA(0, y, color.NRGBA{c.R, c.G, c.B, 128})
	}
	got, err := Extract(img)
	if err != nil {
		t.Fatal(err)
	}
	if got != want() {
		t.Errorf("half-transparent palette: got %v, want %v", got, want())
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "p.png")
	writeImage(t, pngPath, func(f *os.File) error { return png.Encode(f, bands(1, 4)) })
	bmpPath := filepath.Join(dir, "p.bmp")
	writeImage(t, bmpPath, func(f *os.File) error { return bmp.Encode(f, bands(2, 8)) })

	for _, path := range []string{pngPath, bmpPath} {
		got, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", path, err)
		}
		if got != want() {
			t.Errorf("Load(%s) = %v", path, got)
		}
	}

	if _, err := Load(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(garbage); err == nil {
		t.Error("Load of a non-image succeeded")
	}
}

func writeImage(t *testing.T, path string, encode func(*os.File) error) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := encode(f); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestList(t *testing.T) {
	bundled, user := t.TempDir(), t.TempDir()
	touch(t, bundled, "root-b.png")
	touch(t, bundled, "root-a.jpg")
	touch(t, bundled, "notes.txt")
	touch(t, bundled, "warm/z.png")
	touch(t, bundled, "warm/a.webp")
	touch(t, bundled, "empty/readme.md")
	touch(t, user, "warm/m.PNG")
	touch(t, user, "cool/x.bmp")

	cats := List(bundled, user, filepath.Join(user, "does-not-exist"))

	if got, want := cats.Names(), []string{"Cool", "Uncategorized", "Warm"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	base := func(paths []string) []string {
		out := make([]string, len(paths))
		for i, p := range paths {
			out[i] = filepath.Base(p)
		}
		return out
	}
	if got, want := base(cats["Warm"]), []string{"a.webp", "m.PNG", "z.png"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Warm = %v, want %v", got, want)
	}
	if got, want := base(cats[Uncategorized]), []string{"root-a.jpg", "root-b.png"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Uncategorized = %v, want %v", got, want)
	}
}

func touch(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolve(t *testing.T) {
	bundled, user := t.TempDir(), t.TempDir()
	touch(t, bundled, "warm/sunset.png")
	touch(t, bundled, "plain.bmp")
	touch(t, user, "cool/ice.webp")

	tests := []struct {
		name string
		want string
	}{
		{"warm/sunset", filepath.Join(bundled, "warm", "sunset.png")},
		{"Warm/SUNSET.png", filepath.Join(bundled, "warm", "sunset.png")},
		{"cool/ice", filepath.Join(user, "cool", "ice.webp")},
		{"plain", filepath.Join(bundled, "plain.bmp")},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.name, bundled, user)
		if err != nil {
			t.Errorf("Resolve(%q): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}

	// an existing path wins over the catalogue
	direct := filepath.Join(bundled, "warm", "sunset.png")
	if got, err := Resolve(direct); err != nil || got != direct {
		t.Errorf("Resolve(path) = %s, %v", got, err)
	}
	for _, missing := range []string{"warm/dawn", "hot/sunset", "nothing"} {
		if _, err := Resolve(missing, bundled, user); err == nil {
			t.Errorf("Resolve(%q) succeeded", missing)
		}
	}
}

func TestCapitalizeFirst(t *testing.T) {
	for in, want := range map[string]string{"": "", "warm": "Warm", "Cool": "Cool", "élan": "Élan"} {
		if got := capitalizeFirst(in); got != want {
			t.Errorf("capitalizeFirst(%q) = %q, want %q", in, got, want)
		}
	}
}
