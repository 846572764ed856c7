// Package encoder defines the registry of output encoders a playblast can
// finish with.
package encoder

import (
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Encoder describes one compressed output target.
type Encoder interface {
	// Name returns the encoder id used in options and on the CLI.
	Name() string

	// Container returns the container format (e.g. "mp4").
	Container() string

	// FileExtension returns the output extension including the dot.
	FileExtension() string

	// Qualities returns the supported quality preset names.
	Qualities() []string

	// Presets returns the supported encode speed presets. May be empty
	// for encoders that have no speed/size tradeoff knob.
	Presets() []string

	// VideoKwArgs returns the ffmpeg output arguments for the given
	// quality and speed preset.
	VideoKwArgs(quality, preset string) (ffmpeg.KwArgs, error)
}

var encoders = make(map[string]Encoder)

// Register adds an encoder to the registry.
func Register(e Encoder) {
	encoders[e.Name()] = e
}

// Get returns an encoder by name.
func Get(name string) (Encoder, error) {
	e, ok := encoders[name]
	if !ok {
		return nil, errors.Errorf("unsupported encoder: %s", name)
	}
	return e, nil
}

// Supported returns the registered encoder names in sorted order.
func Supported() []string {
	names := maps.Keys(encoders)
	slices.Sort(names)
	return names
}
