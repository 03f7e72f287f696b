package options

import (
	"flag"
	"io"
	"testing"

	"github.com/megakode/wallrus/export"
)

func parse(t *testing.T, args ...string) (*WallrusOptions, error) {
	t.Helper()
	fs := flag.NewFlagSet("wallrus", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return Parse(fs, args)
}

func TestDefaults(t *testing.T) {
	o, err := parse(t)
	if err != nil {
		t.Fatal(err)
	}
	if *o.Mode != ModePreview || *o.Preset != "Bars" || *o.Resolution != "display" {
		t.Errorf("defaults: %s", o)
	}
	if o.Offscreen() {
		t.Error("preview is offscreen")
	}
	if o.IsSet("angle") {
		t.Error("angle reported as set")
	}
}

func TestParseFlags(t *testing.T) {
	o, err := parse(t, "-mode", "record", "-preset", "Waves", "-angle", "30", "-bloom", "-fps", "24")
	if err != nil {
		t.Fatal(err)
	}
	if *o.Mode != ModeRecord || *o.Preset != "Waves" || *o.Angle != 30 || !*o.Bloom || *o.FPS != 24 {
		t.Errorf("parsed: %s angle=%v bloom=%v fps=%v", o, *o.Angle, *o.Bloom, *o.FPS)
	}
	if !o.Offscreen() {
		t.Error("record is not offscreen")
	}
	if !o.IsSet("angle") || o.IsSet("scale") {
		t.Error("IsSet does not track explicit flags")
	}
}

func TestValidate(t *testing.T) {
	tests := [][]string{
		{"-mode", "slideshow"},
		{"-width", "0"},
		{"-mode", "record", "-duration", "0"},
		{"-mode", "record", "-fps", "-1"},
		{"-no-such-flag"},
		{"-mode", "export", "-format", "gif"},
		{"-format", "webp"},
		{"-mode", "export", "-output", "still.gif"},
	}
	for _, args := range tests {
		if _, err := parse(t, args...); err == nil {
			t.Errorf("%v accepted", args)
		}
	}
	// a clip name does not constrain the still format
	if _, err := parse(t, "-mode", "record", "-output", "clip.mp4"); err != nil {
		t.Errorf("record to clip.mp4: %v", err)
	}
	// fps is only checked when recording
	if _, err := parse(t, "-mode", "export", "-fps", "0"); err != nil {
		t.Errorf("export with -fps 0: %v", err)
	}
}

func TestStillFormat(t *testing.T) {
	tests := []struct {
		args []string
		want export.Format
	}{
		{nil, export.PNG},
		{[]string{"-format", "JPEG"}, export.JPEG},
		{[]string{"-mode", "export", "-output", "out.tif"}, export.TIFF},
		{[]string{"-mode", "export", "-output", "out.tif", "-format", "bmp"}, export.BMP},
	}
	for _, tt := range tests {
		o, err := parse(t, tt.args...)
		if err != nil {
			t.Fatalf("%v: %v", tt.args, err)
		}
		got, err := o.StillFormat()
		if err != nil || got != tt.want {
			t.Errorf("%v: StillFormat() = %v, %v; want %v", tt.args, got, err, tt.want)
		}
	}
}
