// Package playblast is the public entry point for running playblasts,
// encodes, and mask burn-ins without going through the CLI.
package playblast

import (
	"github.com/pkg/errors"

	"github.com/dshepstone/playblast-tool/internal/camera"
	"github.com/dshepstone/playblast-tool/internal/encoder"
	"github.com/dshepstone/playblast-tool/internal/ffmpeg"
	"github.com/dshepstone/playblast-tool/internal/playblast"
	"github.com/dshepstone/playblast-tool/internal/settings"
	"github.com/dshepstone/playblast-tool/internal/shotmask"
)

// Result reports a finished playblast.
type Result = playblast.Result

// CaptureOptions configures one end-to-end playblast run.
type CaptureOptions struct {
	// ScenePath is the JSON scene description the capture runs against.
	ScenePath string

	// FramesDir serves frames from an image sequence; Movie extracts
	// them from a movie file. Exactly one must be set.
	FramesDir string
	Movie     string

	// Camera overrides the scene's active camera.
	Camera string

	// OutputDir and Filename are tag templates.
	OutputDir string
	Filename  string

	Width  int
	Height int

	StartFrame int
	EndFrame   int

	// Format is an encoder name ("h264", "prores") or "image" for a raw
	// frame sequence.
	Format  string
	Quality string
	Preset  string

	Padding int

	ShowOrnaments     bool
	UseCameraOverscan bool
	Viewer            bool
	Overwrite         bool

	AudioPath       string
	AudioOffsetSecs float64

	// BurnMask composites the shot mask, configured from the persisted
	// mask.* settings, over every captured frame.
	BurnMask bool

	// SettingsPath overrides the per-user settings file. Empty uses the
	// default location.
	SettingsPath string

	// LookupTag resolves site-specific tags ahead of the built-in ones.
	LookupTag func(string) string

	Progress bool
}

// Capture runs one playblast.
func Capture(opts *CaptureOptions) (*Result, error) {
	scene, err := camera.LoadScene(opts.ScenePath)
	if err != nil {
		return nil, err
	}

	store := settings.Load(opts.SettingsPath)
	proc := ffmpeg.NewProcessor()

	source, err := openSource(opts, scene, proc)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	exec := playblast.NewExecutor(scene, source, proc).WithSettings(store)
	return exec.Run(playblast.Options{
		CameraName:        opts.Camera,
		OutputDir:         opts.OutputDir,
		Filename:          opts.Filename,
		Width:             opts.Width,
		Height:            opts.Height,
		StartFrame:        opts.StartFrame,
		EndFrame:          opts.EndFrame,
		Format:            opts.Format,
		Quality:           opts.Quality,
		Preset:            opts.Preset,
		Padding:           opts.Padding,
		ShowOrnaments:     opts.ShowOrnaments,
		UseCameraOverscan: opts.UseCameraOverscan,
		Viewer:            opts.Viewer,
		Overwrite:         opts.Overwrite,
		AudioPath:         opts.AudioPath,
		AudioOffsetSecs:   opts.AudioOffsetSecs,
		BurnMask:          opts.BurnMask,
		Mask:              shotmask.LoadConfig(store),
		LookupTag:         opts.LookupTag,
		Progress:          opts.Progress,
	})
}

// BurnMask composites the configured shot mask over an existing frame
// source and writes the result as a raw image sequence: Capture with the
// format pinned to images and the mask forced on.
func BurnMask(opts *CaptureOptions) (*Result, error) {
	opts.Format = playblast.FormatImage
	opts.BurnMask = true
	return Capture(opts)
}

func openSource(opts *CaptureOptions, scene *camera.Scene, proc *ffmpeg.Processor) (playblast.FrameSource, error) {
	switch {
	case opts.FramesDir != "" && opts.Movie != "":
		return nil, errors.New("frames directory and movie source are mutually exclusive")
	case opts.FramesDir != "":
		return playblast.NewDirectorySource(opts.FramesDir, scene.StartFrame)
	case opts.Movie != "":
		if !ffmpeg.Available() {
			return nil, errors.New("ffmpeg not found on PATH; required for a movie source")
		}
		return playblast.NewMovieSource(opts.Movie, proc, scene.StartFrame)
	}
	return nil, errors.New("a frames directory or movie source is required")
}

// EncodeOptions configures a standalone encode of an existing source.
type EncodeOptions struct {
	// InputPath is a movie to transcode; Pattern is a printf-style frame
	// sequence to encode. Exactly one must be set.
	InputPath string
	Pattern   string

	FrameRate   float64
	StartNumber int

	AudioPath       string
	AudioOffsetSecs float64

	OutputPath string
	Format     string
	Quality    string
	Preset     string
}

// Encode transcodes a movie or encodes a frame sequence.
func Encode(opts *EncodeOptions) error {
	if !ffmpeg.Available() {
		return errors.New("ffmpeg not found on PATH")
	}

	proc := ffmpeg.NewProcessor()

	switch {
	case opts.InputPath != "" && opts.Pattern != "":
		return errors.New("input movie and frame pattern are mutually exclusive")
	case opts.InputPath != "":
		return proc.Transcode(opts.InputPath, opts.OutputPath, opts.Format, opts.Quality, opts.Preset)
	case opts.Pattern != "":
		fps := opts.FrameRate
		if fps <= 0 {
			fps = 24
		}
		return proc.EncodeSequence(ffmpeg.SequenceOptions{
			Pattern:         opts.Pattern,
			FrameRate:       fps,
			StartNumber:     opts.StartNumber,
			AudioPath:       opts.AudioPath,
			AudioOffsetSecs: opts.AudioOffsetSecs,
			OutputPath:      opts.OutputPath,
			Encoder:         opts.Format,
			Quality:         opts.Quality,
			Preset:          opts.Preset,
		})
	}
	return errors.New("an input movie or frame pattern is required")
}

// SupportedEncoders returns the registered encoder names.
func SupportedEncoders() []string {
	return encoder.Supported()
}

// EncoderQualities returns the quality names an encoder accepts.
func EncoderQualities(name string) ([]string, error) {
	enc, err := encoder.Get(name)
	if err != nil {
		return nil, err
	}
	return enc.Qualities(), nil
}
