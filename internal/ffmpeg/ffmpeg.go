// Package ffmpeg wraps the external transcoder: frame-sequence encodes,
// movie-to-movie transcodes, frame extraction, and metadata probes.
package ffmpeg

import (
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/dshepstone/playblast-tool/internal/encoder"
	"github.com/dshepstone/playblast-tool/internal/logger"
)

// Available reports whether the ffmpeg binary can be found. Checked before
// any encode is attempted so a missing install fails early, not mid-run.
func Available() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// SequenceOptions describes a frame-sequence encode.
type SequenceOptions struct {
	// Pattern is a printf-style frame path, e.g. dir/shot.%04d.png.
	Pattern     string
	FrameRate   float64
	StartNumber int

	// AudioPath, when set, muxes an audio track padded to the video length.
	AudioPath       string
	AudioOffsetSecs float64

	OutputPath string
	Encoder    string
	Quality    string
	Preset     string
}

// Processor issues ffmpeg invocations. Transcoder stderr is streamed to
// standard output so encode progress lands in the log.
type Processor struct{}

// NewProcessor creates a Processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// EncodeSequence encodes a captured frame sequence into a movie.
func (p *Processor) EncodeSequence(opts SequenceOptions) error {
	enc, err := encoder.Get(opts.Encoder)
	if err != nil {
		return err
	}
	outputKwargs, err := enc.VideoKwArgs(opts.Quality, opts.Preset)
	if err != nil {
		return err
	}

	video := ffmpeg.Input(opts.Pattern, ffmpeg.KwArgs{
		"framerate":    opts.FrameRate,
		"start_number": opts.StartNumber,
	})

	streams := []*ffmpeg.Stream{video}
	if opts.AudioPath != "" {
		audio := ffmpeg.Input(opts.AudioPath, ffmpeg.KwArgs{
			"ss": opts.AudioOffsetSecs,
		})
		streams = append(streams, audio)
		// Pad the audio to the video length and stop at the shorter of
		// the two, so a short track doesn't truncate the movie.
		outputKwargs["filter_complex"] = "[1:0] apad"
		outputKwargs["shortest"] = ""
	}

	logger.Log.Debugf("encoding %s -> %s (%s/%s)", opts.Pattern, opts.OutputPath, opts.Encoder, opts.Quality)

	err = ffmpeg.Output(streams, opts.OutputPath, outputKwargs).
		OverWriteOutput().
		ErrorToStdOut().
		Run()
	return errors.Wrap(err, "frame sequence encode failed")
}

// Transcode re-encodes an existing movie with the given encoder settings.
func (p *Processor) Transcode(inputPath, outputPath, encoderName, quality, preset string) error {
	enc, err := encoder.Get(encoderName)
	if err != nil {
		return err
	}
	outputKwargs, err := enc.VideoKwArgs(quality, preset)
	if err != nil {
		return err
	}

	logger.Log.Debugf("transcoding %s -> %s (%s/%s)", inputPath, outputPath, encoderName, quality)

	err = ffmpeg.Input(inputPath).
		Output(outputPath, outputKwargs).
		OverWriteOutput().
		ErrorToStdOut().
		Run()
	return errors.Wrap(err, "transcode failed")
}

// ExtractFrames decodes a movie into an image sequence under pattern.
func (p *Processor) ExtractFrames(inputPath, pattern string) error {
	logger.Log.Debugf("extracting frames %s -> %s", inputPath, pattern)

	err := ffmpeg.Input(inputPath).
		Output(pattern, ffmpeg.KwArgs{}).
		OverWriteOutput().
		ErrorToStdOut().
		Run()
	return errors.Wrap(err, "frame extraction failed")
}

// Metadata holds the probe results the executor needs.
type Metadata struct {
	Duration float64
	Width    int
	Height   int
	Codec    string
	FPS      float64
}

// Probe reads video metadata via ffprobe.
func (p *Processor) Probe(inputPath string) (*Metadata, error) {
	probe, err := ffmpeg.Probe(inputPath)
	if err != nil {
		return nil, errors.Wrap(err, "error probing video")
	}
	return parseProbe(probe)
}

func parseProbe(probe string) (*Metadata, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(probe), &data); err != nil {
		return nil, errors.WithStack(err)
	}

	streams, ok := data["streams"].([]interface{})
	if !ok || len(streams) == 0 {
		return nil, errors.New("no streams found in video")
	}

	var videoStream map[string]interface{}
	for _, stream := range streams {
		s, ok := stream.(map[string]interface{})
		if !ok {
			continue
		}
		if s["codec_type"] == "video" {
			videoStream = s
			break
		}
	}
	if videoStream == nil {
		return nil, errors.New("no video stream found")
	}

	meta := &Metadata{}
	if w, ok := videoStream["width"].(float64); ok {
		meta.Width = int(w)
	}
	if h, ok := videoStream["height"].(float64); ok {
		meta.Height = int(h)
	}
	if c, ok := videoStream["codec_name"].(string); ok {
		meta.Codec = c
	}

	if durationStr, ok := videoStream["duration"].(string); ok {
		if d, err := strconv.ParseFloat(strings.TrimSpace(durationStr), 64); err == nil {
			meta.Duration = d
		}
	}
	if meta.Duration == 0 {
		if format, ok := data["format"].(map[string]interface{}); ok {
			if durationStr, ok := format["duration"].(string); ok {
				if d, err := strconv.ParseFloat(strings.TrimSpace(durationStr), 64); err == nil {
					meta.Duration = d
				}
			}
		}
	}

	if rateStr, ok := videoStream["r_frame_rate"].(string); ok {
		if nums := strings.Split(rateStr, "/"); len(nums) == 2 {
			num, err1 := strconv.ParseFloat(nums[0], 64)
			den, err2 := strconv.ParseFloat(nums[1], 64)
			if err1 == nil && err2 == nil && den != 0 {
				meta.FPS = num / den
			}
		}
	}

	return meta, nil
}
