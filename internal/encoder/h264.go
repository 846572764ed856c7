package encoder

import (
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// H264 encodes to an mp4 container with libx264.
type H264 struct{}

func init() {
	Register(&H264{})
}

var h264CRF = map[string]int{
	"very_high": 18,
	"high":      23,
	"medium":    28,
	"low":       32,
}

var h264Presets = []string{
	"ultrafast", "superfast", "veryfast", "faster", "fast",
	"medium", "slow", "slower", "veryslow",
}

func (e *H264) Name() string {
	return "h264"
}

func (e *H264) Container() string {
	return "mp4"
}

func (e *H264) FileExtension() string {
	return ".mp4"
}

func (e *H264) Qualities() []string {
	return []string{"very_high", "high", "medium", "low"}
}

func (e *H264) Presets() []string {
	return h264Presets
}

func (e *H264) VideoKwArgs(quality, preset string) (ffmpeg.KwArgs, error) {
	crf, ok := h264CRF[quality]
	if !ok {
		return nil, errors.Errorf("unsupported h264 quality: %s", quality)
	}

	found := false
	for _, p := range h264Presets {
		if p == preset {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.Errorf("unsupported h264 preset: %s", preset)
	}

	return ffmpeg.KwArgs{
		"c:v":       "libx264",
		"crf:v":     crf,
		"preset:v":  preset,
		"profile:v": "high",
		"pix_fmt":   "yuv420p",
	}, nil
}
