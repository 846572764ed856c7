// Package playblast runs the capture pipeline: validate, grab frames from a
// source with display state temporarily overridden, burn the shot mask,
// encode with ffmpeg, and restore everything the run touched.
package playblast

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	xdraw "golang.org/x/image/draw"

	"github.com/dshepstone/playblast-tool/internal/camera"
	"github.com/dshepstone/playblast-tool/internal/encoder"
	"github.com/dshepstone/playblast-tool/internal/ffmpeg"
	"github.com/dshepstone/playblast-tool/internal/logger"
	"github.com/dshepstone/playblast-tool/internal/render"
	"github.com/dshepstone/playblast-tool/internal/settings"
	"github.com/dshepstone/playblast-tool/internal/shotmask"
	"github.com/dshepstone/playblast-tool/internal/tags"
)

// FormatImage skips encoding and leaves the captured frames as the result.
const FormatImage = "image"

// Options is one playblast request. It is consumed by a single Run call;
// on success its effective values are mirrored into the settings store so
// the next invocation starts from them.
type Options struct {
	// CameraName overrides the scene's active camera. Empty falls back
	// to the active one.
	CameraName string

	// OutputDir and Filename are tag templates. Filename gets the
	// encoder's extension appended.
	OutputDir string
	Filename  string

	Width  int
	Height int

	StartFrame int
	EndFrame   int

	// Format is an encoder name, or FormatImage for a raw sequence.
	Format  string
	Quality string
	Preset  string

	// Padding is the zero-pad width for frame numbers in file names and
	// the {counter} tag.
	Padding int

	ShowOrnaments bool

	// UseCameraOverscan keeps the camera's own overscan during capture.
	// By default it is forced to 1.0 so the mask frames the full output.
	UseCameraOverscan bool

	Viewer    bool
	Overwrite bool

	AudioPath       string
	AudioOffsetSecs float64

	BurnMask bool
	Mask     shotmask.Config

	// LookupTag resolves site-specific tags ahead of the built-in ones.
	LookupTag func(string) string

	// Progress draws a terminal progress bar during capture.
	Progress bool
}

// Result reports a finished playblast.
type Result struct {
	OutputPath string
	Frames     int
}

// Executor drives playblast runs against one scene and frame source.
type Executor struct {
	scene  *camera.Scene
	source FrameSource
	proc   *ffmpeg.Processor
	store  *settings.Store
}

// NewExecutor creates an executor.
func NewExecutor(scene *camera.Scene, source FrameSource, proc *ffmpeg.Processor) *Executor {
	return &Executor{
		scene:  scene,
		source: source,
		proc:   proc,
	}
}

// WithSettings attaches a settings store that successful runs mirror their
// option values into.
func (e *Executor) WithSettings(store *settings.Store) *Executor {
	e.store = store
	return e
}

// Run executes one playblast. Whatever happens mid-capture, the source's
// ornament state and the camera's overscan are restored before it returns.
func (e *Executor) Run(opts Options) (*Result, error) {
	cam, err := e.validate(&opts)
	if err != nil {
		return nil, err
	}

	ctx := tags.Context{
		SceneName:   e.scene.BaseName(),
		Project:     e.scene.Project,
		CameraName:  cam.ShortName(),
		FocalLength: cam.FocalLength,
		Frame:       opts.StartFrame,
		Padding:     opts.Padding,
		Lookup:      opts.LookupTag,
	}
	outputDir := tags.Resolve(opts.OutputDir, ctx).Text
	baseName := tags.Resolve(opts.Filename, ctx).Text

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	outputPath, framesDir, pattern, err := e.layout(opts, outputDir, baseName)
	if err != nil {
		return nil, err
	}

	// Snapshot display state and force capture overscan; restored
	// unconditionally, capture failure included.
	prevOrnaments := e.source.Ornaments()
	prevOverscan := cam.Overscan
	prevActive := e.scene.ActiveCamera

	e.source.SetOrnaments(opts.ShowOrnaments)
	if !opts.UseCameraOverscan {
		cam.Overscan = 1.0
	}
	e.scene.ActiveCamera = cam.Name

	defer func() {
		e.source.SetOrnaments(prevOrnaments)
		cam.Overscan = prevOverscan
		e.scene.ActiveCamera = prevActive
	}()

	frames, err := e.capture(opts, framesDir, pattern)
	if err != nil {
		logger.Log.Errorf("playblast capture failed: %v", err)
		return nil, err
	}

	if opts.Format == FormatImage {
		e.mirrorSettings(opts)
		logger.Log.Infof("playblast wrote %d frames to %s", frames, framesDir)
		return &Result{OutputPath: framesDir, Frames: frames}, nil
	}

	err = e.proc.EncodeSequence(ffmpeg.SequenceOptions{
		Pattern:         filepath.Join(framesDir, pattern),
		FrameRate:       e.scene.FPS,
		StartNumber:     opts.StartFrame,
		AudioPath:       opts.AudioPath,
		AudioOffsetSecs: opts.AudioOffsetSecs,
		OutputPath:      outputPath,
		Encoder:         opts.Format,
		Quality:         opts.Quality,
		Preset:          opts.Preset,
	})
	if err != nil {
		return nil, err
	}

	// The temp frame sequence is only removed on success so a failed
	// encode can be retried from the captured frames.
	if err := os.RemoveAll(framesDir); err != nil {
		logger.Log.Warnf("failed to remove temp frames %s: %v", framesDir, err)
	}

	e.mirrorSettings(opts)
	logger.Log.Infof("playblast complete: %s (%d frames)", outputPath, frames)

	if opts.Viewer {
		openViewer(outputPath)
	}

	return &Result{OutputPath: outputPath, Frames: frames}, nil
}

func (e *Executor) validate(opts *Options) (*camera.Camera, error) {
	if e.scene == nil || e.source == nil {
		return nil, errors.New("playblast requires a scene and a frame source")
	}

	cam := e.scene.Active()
	if opts.CameraName != "" {
		c, ok := e.scene.Camera(opts.CameraName)
		if !ok {
			return nil, errors.Errorf("camera not found: %s", opts.CameraName)
		}
		cam = c
	}
	if cam == nil {
		return nil, errors.New("scene has no camera to capture from")
	}

	if opts.StartFrame == 0 && opts.EndFrame == 0 {
		opts.StartFrame = e.scene.StartFrame
		opts.EndFrame = e.scene.EndFrame
	}
	if opts.StartFrame > opts.EndFrame {
		return nil, errors.Errorf("invalid frame range: %d-%d", opts.StartFrame, opts.EndFrame)
	}

	srcWidth, srcHeight := e.source.Size()
	if srcWidth <= 0 || srcHeight <= 0 {
		return nil, errors.New("frame source has no size")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width = srcWidth
		opts.Height = srcHeight
	}

	if opts.Padding < 1 || opts.Padding > 6 {
		opts.Padding = 4
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Filename == "" {
		opts.Filename = "{scene}_{camera}"
	}
	if opts.Format == "" {
		opts.Format = "h264"
	}
	if opts.Quality == "" {
		opts.Quality = "high"
	}
	if opts.Preset == "" {
		opts.Preset = "fast"
	}

	if opts.Format != FormatImage {
		if _, err := encoder.Get(opts.Format); err != nil {
			return nil, err
		}
		if !ffmpeg.Available() {
			return nil, errors.New("ffmpeg not found on PATH; required for encoded output")
		}
	}

	return cam, nil
}

// layout decides where frames and the final movie land. Encoded formats
// capture into a temp directory; image format captures straight into the
// output directory.
func (e *Executor) layout(opts Options, outputDir, baseName string) (outputPath, framesDir, pattern string, err error) {
	pattern = fmt.Sprintf("%s.%%0%dd.png", baseName, opts.Padding)

	if opts.Format == FormatImage {
		return "", outputDir, pattern, nil
	}

	enc, err := encoder.Get(opts.Format)
	if err != nil {
		return "", "", "", err
	}
	outputPath = filepath.Join(outputDir, baseName+enc.FileExtension())

	if !opts.Overwrite {
		if _, statErr := os.Stat(outputPath); statErr == nil {
			return "", "", "", errors.Errorf("output already exists: %s", outputPath)
		}
	}

	framesDir, err = os.MkdirTemp("", "playblast_")
	if err != nil {
		return "", "", "", errors.Wrap(err, "failed to create temp directory")
	}
	return outputPath, framesDir, pattern, nil
}

func (e *Executor) capture(opts Options, framesDir, pattern string) (int, error) {
	var overlay *shotmask.Overlay
	var renderer *render.ImageRenderer
	if opts.BurnMask {
		var err error
		renderer, err = render.NewImageRenderer(nil, opts.Mask.FontName)
		if err != nil {
			return 0, err
		}
		overlay = shotmask.NewOverlay(func() shotmask.Config { return opts.Mask })
		overlay.LookupTag = opts.LookupTag
	}

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.Default(int64(opts.EndFrame-opts.StartFrame+1), "capturing")
	}

	view := shotmask.Viewport{Width: opts.Width, Height: opts.Height, DPIScale: 1.0}

	count := 0
	for frame := opts.StartFrame; frame <= opts.EndFrame; frame++ {
		img, err := e.source.Grab(frame)
		if err != nil {
			return count, err
		}

		target := scaleFrame(img, opts.Width, opts.Height)

		if overlay != nil {
			renderer.SetTarget(target)
			overlay.Draw(renderer, view, e.scene, frame)
		}

		framePath := filepath.Join(framesDir, fmt.Sprintf(pattern, frame))
		if err := writePNG(framePath, target); err != nil {
			return count, err
		}

		count++
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	return count, nil
}

func (e *Executor) mirrorSettings(opts Options) {
	if e.store == nil {
		return
	}
	e.store.SetInt("playblast.width", opts.Width)
	e.store.SetInt("playblast.height", opts.Height)
	e.store.SetString("playblast.format", opts.Format)
	e.store.SetString("playblast.quality", opts.Quality)
	e.store.SetString("playblast.preset", opts.Preset)
	e.store.SetInt("playblast.padding", opts.Padding)
	e.store.SetString("playblast.output_dir", opts.OutputDir)
	e.store.SetString("playblast.filename", opts.Filename)
	if err := e.store.Save(); err != nil {
		logger.Log.Warnf("failed to save settings: %v", err)
	}
}

func scaleFrame(img image.Image, width, height int) *image.RGBA {
	target := image.NewRGBA(image.Rect(0, 0, width, height))
	bounds := img.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		xdraw.Draw(target, target.Bounds(), img, bounds.Min, xdraw.Src)
		return target
	}
	xdraw.CatmullRom.Scale(target, target.Bounds(), img, bounds, xdraw.Src, nil)
	return target
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	return errors.Wrapf(png.Encode(f, img), "failed to write %s", path)
}

func openViewer(path string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		logger.Log.Warnf("failed to open viewer: %v", err)
	}
}
