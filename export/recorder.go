package export

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"runtime"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// RecordOptions describes a clip recording.
type RecordOptions struct {
	Output     string
	Width      int
	Height     int
	FPS        int
	Duration   float64 // seconds
	Codec      string  // "h264" or "hevc"
	Bitrate    string  // e.g. "25M"; empty lets the encoder decide
	FFmpegPath string
	// Hardware selects the platform encoder (VideoToolbox on macOS, NVENC
	// elsewhere) instead of libx264/libx265.
	Hardware bool
}

// FrameFunc renders the frame at t seconds into the clip and returns its
// top-down RGBA pixels.
type FrameFunc func(t float64) ([]byte, error)

func (o RecordOptions) validate() error {
	switch {
	case o.Output == "":
		return errors.New("export: no output file")
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("export: invalid clip size %dx%d", o.Width, o.Height)
	case o.FPS <= 0:
		return fmt.Errorf("export: invalid frame rate %d", o.FPS)
	case o.Duration <= 0:
		return fmt.Errorf("export: invalid duration %g", o.Duration)
	case o.Codec != "" && o.Codec != "h264" && o.Codec != "hevc":
		return fmt.Errorf("export: unsupported codec %q", o.Codec)
	}
	return nil
}

// Frames is the number of frames the clip holds.
func (o RecordOptions) Frames() int {
	n := int(o.Duration*float64(o.FPS) + 0.5)
	return max(n, 1)
}

// frameTime is the clip time of frame i. Dividing per frame keeps long
// clips from accumulating rounding error.
func (o RecordOptions) frameTime(i int) float64 {
	return float64(i) / float64(o.FPS)
}

func videoEncoder(codec string, hardware bool) string {
	hevc := codec == "hevc"
	if hardware {
		switch runtime.GOOS {
		case "darwin":
			if hevc {
				return "hevc_videotoolbox"
			}
			return "h264_videotoolbox"
		default:
			if hevc {
				return "hevc_nvenc"
			}
			return "h264_nvenc"
		}
	}
	if hevc {
		return "libx265"
	}
	return "libx264"
}

func (o RecordOptions) args() (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", o.Width, o.Height),
		"r":       o.FPS,
	}

	encoder := videoEncoder(o.Codec, o.Hardware)
	outputArgs = ffmpeg.KwArgs{
		"c:v":     encoder,
		"pix_fmt": "yuv420p",
	}
	switch encoder {
	case "libx264", "libx265":
		outputArgs["preset"] = "slow"
	case "h264_nvenc", "hevc_nvenc":
		outputArgs["preset"] = "p2"
	}
	if o.Bitrate != "" {
		outputArgs["b:v"] = o.Bitrate
	}
	if o.Codec == "hevc" && strings.EqualFold(filepath.Ext(o.Output), ".mp4") {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}

type frame struct {
	pixels []byte
	index  int
}

// Record renders o.Frames() frames at a fixed time step and pipes them to
// ffmpeg. render is called on the calling goroutine, which must own the GL
// context; encoding runs on its own goroutine.
func Record(o RecordOptions, render FrameFunc) error {
	if err := o.validate(); err != nil {
		return err
	}

	frames := make(chan frame, 4)
	encoderDone := make(chan error, 1)
	go runEncoder(o, frames, encoderDone)

	total := o.Frames()
	log.Printf("Recording %d frames at %dx%d to %s", total, o.Width, o.Height, o.Output)

	var renderErr error
	for i := 0; i < total; i++ {
		pixels, err := render(o.frameTime(i))
		if err != nil {
			renderErr = fmt.Errorf("export: frame %d: %w", i, err)
			break
		}
		if len(pixels) != o.Width*o.Height*4 {
			renderErr = fmt.Errorf("export: frame %d has %d bytes, want %d", i, len(pixels), o.Width*o.Height*4)
			break
		}
		select {
		case frames <- frame{pixels: pixels, index: i}:
		case err := <-encoderDone:
			// ffmpeg exited before taking every frame
			close(frames)
			if err == nil {
				err = errors.New("ffmpeg exited early")
			}
			return fmt.Errorf("export: encoder: %w", err)
		}
	}
	close(frames)

	encErr := <-encoderDone
	if renderErr != nil {
		return renderErr
	}
	if encErr != nil {
		return fmt.Errorf("export: encoder: %w", encErr)
	}
	log.Printf("Recording finished: %s", o.Output)
	return nil
}

// runEncoder consumes frames and writes them to ffmpeg's stdin.
func runEncoder(o RecordOptions, frames <-chan frame, done chan<- error) {
	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := o.args()

	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(o.Output, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if o.FFmpegPath != "" {
		cmd = cmd.SetFfmpegPath(o.FFmpegPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := cmd.Run()
		// unblock the writer if ffmpeg stops reading
		_ = pipeReader.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()

	for f := range frames {
		if _, err := pipeWriter.Write(f.pixels); err != nil {
			log.Printf("Error writing frame %d to ffmpeg: %v", f.index, err)
			break
		}
	}
	_ = pipeWriter.Close()

	err := <-errc
	// drain so the producer never blocks on a dead encoder
	go func() {
		for range frames {
		}
	}()
	done <- err
}
