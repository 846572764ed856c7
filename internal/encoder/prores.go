package encoder

import (
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ProRes encodes to a mov container with prores_ks. Quality maps onto the
// ProRes profile; there is no separate speed preset.
type ProRes struct{}

func init() {
	Register(&ProRes{})
}

var proresProfiles = map[string]int{
	"very_high": 3, // HQ
	"high":      2, // standard
	"medium":    1, // LT
	"low":       0, // proxy
}

func (e *ProRes) Name() string {
	return "prores"
}

func (e *ProRes) Container() string {
	return "mov"
}

func (e *ProRes) FileExtension() string {
	return ".mov"
}

func (e *ProRes) Qualities() []string {
	return []string{"very_high", "high", "medium", "low"}
}

func (e *ProRes) Presets() []string {
	return nil
}

func (e *ProRes) VideoKwArgs(quality, preset string) (ffmpeg.KwArgs, error) {
	profile, ok := proresProfiles[quality]
	if !ok {
		return nil, errors.Errorf("unsupported prores quality: %s", quality)
	}

	return ffmpeg.KwArgs{
		"c:v":       "prores_ks",
		"profile:v": profile,
		"pix_fmt":   "yuv422p10le",
	}, nil
}
