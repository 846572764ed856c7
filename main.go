package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshepstone/playblast-tool/internal/logger"
	"github.com/dshepstone/playblast-tool/internal/settings"
	"github.com/dshepstone/playblast-tool/internal/shotmask"
	"github.com/dshepstone/playblast-tool/pkg/playblast"
)

var (
	rootCmd = &cobra.Command{
		Use:   "playblast-tool",
		Short: "A viewport capture and shot mask tool",
		Long: `playblast-tool captures frame sequences, burns in a configurable shot mask
(letterbox borders plus tag-templated metadata labels), and encodes the
result with ffmpeg.

Examples:
  # Capture a playblast from a frame sequence with the shot mask burned in
  playblast-tool capture --scene shot010.json --frames ./frames -o ./review --mask

  # Encode an existing frame sequence
  playblast-tool encode --pattern './frames/shot.%04d.png' --fps 24 -o review.mp4

  # Configure a mask label
  playblast-tool settings set mask.text.bottom_right '{counter}'`,
	}

	captureCmd = &cobra.Command{
		Use:   "capture",
		Short: "Run a playblast capture",
		Long: fmt.Sprintf(`Capture a frame range from a source, optionally burn in the shot mask, and
encode the result.

Supported formats: image (raw frame sequence)
%s

Example:
  playblast-tool capture --scene shot010.json --frames ./frames -o ./review --mask --viewer`,
			formatSupportedEncoders()),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &playblast.CaptureOptions{}

			opts.ScenePath, _ = cmd.Flags().GetString("scene")
			opts.FramesDir, _ = cmd.Flags().GetString("frames")
			opts.Movie, _ = cmd.Flags().GetString("movie")
			opts.Camera, _ = cmd.Flags().GetString("camera")
			opts.OutputDir, _ = cmd.Flags().GetString("output")
			opts.Filename, _ = cmd.Flags().GetString("filename")
			opts.Width, _ = cmd.Flags().GetInt("width")
			opts.Height, _ = cmd.Flags().GetInt("height")
			opts.StartFrame, _ = cmd.Flags().GetInt("start")
			opts.EndFrame, _ = cmd.Flags().GetInt("end")
			opts.Format, _ = cmd.Flags().GetString("format")
			opts.Quality, _ = cmd.Flags().GetString("quality")
			opts.Preset, _ = cmd.Flags().GetString("preset")
			opts.Padding, _ = cmd.Flags().GetInt("padding")
			opts.ShowOrnaments, _ = cmd.Flags().GetBool("ornaments")
			opts.UseCameraOverscan, _ = cmd.Flags().GetBool("keep-overscan")
			opts.Viewer, _ = cmd.Flags().GetBool("viewer")
			opts.Overwrite, _ = cmd.Flags().GetBool("overwrite")
			opts.AudioPath, _ = cmd.Flags().GetString("audio")
			opts.AudioOffsetSecs, _ = cmd.Flags().GetFloat64("audio-offset")
			opts.BurnMask, _ = cmd.Flags().GetBool("mask")
			opts.Progress = true

			verbose, _ := cmd.Flags().GetBool("verbose")
			logger.SetVerbose(verbose)

			result, err := playblast.Capture(opts)
			if err != nil {
				return err
			}
			fmt.Println(result.OutputPath)
			return nil
		},
	}

	encodeCmd = &cobra.Command{
		Use:   "encode",
		Short: "Encode a frame sequence or transcode a movie",
		Long: fmt.Sprintf(`Encode an existing frame sequence, or transcode a movie, with the same
encoder settings a capture uses.
%s

Example:
  playblast-tool encode --pattern './frames/shot.%%04d.png' --fps 24 -o review.mp4 --quality high`,
			formatSupportedEncoders()),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &playblast.EncodeOptions{}

			opts.InputPath, _ = cmd.Flags().GetString("input")
			opts.Pattern, _ = cmd.Flags().GetString("pattern")
			opts.FrameRate, _ = cmd.Flags().GetFloat64("fps")
			opts.StartNumber, _ = cmd.Flags().GetInt("start-number")
			opts.AudioPath, _ = cmd.Flags().GetString("audio")
			opts.AudioOffsetSecs, _ = cmd.Flags().GetFloat64("audio-offset")
			opts.OutputPath, _ = cmd.Flags().GetString("output")
			opts.Format, _ = cmd.Flags().GetString("format")
			opts.Quality, _ = cmd.Flags().GetString("quality")
			opts.Preset, _ = cmd.Flags().GetString("preset")

			verbose, _ := cmd.Flags().GetBool("verbose")
			logger.SetVerbose(verbose)

			if opts.OutputPath == "" {
				return fmt.Errorf("output path is required")
			}
			return playblast.Encode(opts)
		},
	}

	burnCmd = &cobra.Command{
		Use:   "burn",
		Short: "Burn the shot mask into a frame sequence",
		Long: `Composite the configured shot mask over an existing frame sequence without
encoding. Equivalent to capture --format image --mask.

Example:
  playblast-tool burn --scene shot010.json --frames ./frames -o ./masked`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &playblast.CaptureOptions{Progress: true}

			opts.ScenePath, _ = cmd.Flags().GetString("scene")
			opts.FramesDir, _ = cmd.Flags().GetString("frames")
			opts.Movie, _ = cmd.Flags().GetString("movie")
			opts.Camera, _ = cmd.Flags().GetString("camera")
			opts.OutputDir, _ = cmd.Flags().GetString("output")
			opts.Filename, _ = cmd.Flags().GetString("filename")
			opts.Width, _ = cmd.Flags().GetInt("width")
			opts.Height, _ = cmd.Flags().GetInt("height")
			opts.StartFrame, _ = cmd.Flags().GetInt("start")
			opts.EndFrame, _ = cmd.Flags().GetInt("end")
			opts.Padding, _ = cmd.Flags().GetInt("padding")

			verbose, _ := cmd.Flags().GetBool("verbose")
			logger.SetVerbose(verbose)

			result, err := playblast.BurnMask(opts)
			if err != nil {
				return err
			}
			fmt.Println(result.OutputPath)
			return nil
		},
	}

	settingsCmd = &cobra.Command{
		Use:   "settings",
		Short: "Inspect and edit persisted tool settings",
	}

	settingsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List all stored settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := settings.Load("")
			for _, key := range store.Keys() {
				value, _ := store.Value(key)
				data, err := json.Marshal(value)
				if err != nil {
					return err
				}
				fmt.Printf("%s = %s\n", key, data)
			}
			return nil
		},
	}

	settingsGetCmd = &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := settings.Load("")
			value, ok := store.Value(args[0])
			if !ok {
				return fmt.Errorf("no such setting: %s", args[0])
			}
			data, err := json.Marshal(value)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}

	settingsSetCmd = &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store one setting",
		Long: `Store one setting. The value is parsed as JSON (bool, number, or array of
numbers) and stored as a string when it isn't valid JSON.

Example:
  playblast-tool settings set mask.border_color '[0, 0, 0, 0.8]'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := settings.Load("")
			if err := setParsed(store, args[0], args[1]); err != nil {
				return err
			}
			return store.Save()
		},
	}

	settingsResetCmd = &cobra.Command{
		Use:   "reset [key]",
		Short: "Remove one setting, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := settings.Load("")
			if len(args) == 1 {
				store.Delete(args[0])
			} else {
				store.Reset()
			}
			return store.Save()
		},
	}
)

func formatSupportedEncoders() string {
	var sb strings.Builder
	sb.WriteString("Supported encoders:\n")
	for _, name := range playblast.SupportedEncoders() {
		qualities, _ := playblast.EncoderQualities(name)
		sb.WriteString(fmt.Sprintf("- %s (%s)\n", name, strings.Join(qualities, ", ")))
	}
	return sb.String()
}

// setParsed stores a value with its JSON type when it parses, and as a
// plain string otherwise. Range-constrained mask keys are validated before
// anything is written, so a bad value never displaces the stored one.
func setParsed(store *settings.Store, key, raw string) error {
	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		store.SetString(key, raw)
		return nil
	}

	switch v := value.(type) {
	case bool:
		store.SetBool(key, v)
	case float64:
		if err := shotmask.CheckRange(key, v); err != nil {
			return err
		}
		store.SetFloat(key, v)
	case []interface{}:
		floats := make([]float64, 0, len(v))
		for _, item := range v {
			f, ok := item.(float64)
			if !ok {
				store.SetString(key, raw)
				return nil
			}
			floats = append(floats, f)
		}
		store.SetFloats(key, floats)
	default:
		store.SetString(key, raw)
	}
	return nil
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("scene", "", "Scene description JSON file")
	cmd.Flags().String("frames", "", "Source image sequence directory")
	cmd.Flags().String("movie", "", "Source movie file")
	cmd.Flags().String("camera", "", "Camera to capture from (defaults to the scene's active camera)")
	cmd.Flags().StringP("output", "o", "", "Output directory (tag template)")
	cmd.Flags().StringP("filename", "f", "{scene}_{camera}", "Output file name (tag template)")
	cmd.Flags().Int("width", 0, "Output width (defaults to source width)")
	cmd.Flags().Int("height", 0, "Output height (defaults to source height)")
	cmd.Flags().Int("start", 0, "Start frame (defaults to scene range)")
	cmd.Flags().Int("end", 0, "End frame (defaults to scene range)")
	cmd.Flags().Int("padding", 4, "Frame number zero-pad width (1-6)")
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.MarkFlagRequired("scene")
}

func init() {
	addSourceFlags(captureCmd)
	captureCmd.Flags().StringP("format", "t", "h264", "Output format (image or an encoder name)")
	captureCmd.Flags().String("quality", "high", "Encode quality (very_high, high, medium, low)")
	captureCmd.Flags().String("preset", "fast", "Encode speed preset")
	captureCmd.Flags().Bool("ornaments", false, "Show viewport ornaments during capture")
	captureCmd.Flags().Bool("keep-overscan", false, "Keep the camera's overscan instead of forcing 1.0")
	captureCmd.Flags().Bool("viewer", false, "Open the result when done")
	captureCmd.Flags().Bool("overwrite", false, "Overwrite an existing output file")
	captureCmd.Flags().String("audio", "", "Audio track to mux into the result")
	captureCmd.Flags().Float64("audio-offset", 0, "Audio start offset in seconds")
	captureCmd.Flags().Bool("mask", false, "Burn the configured shot mask into every frame")

	encodeCmd.Flags().StringP("input", "i", "", "Input movie to transcode")
	encodeCmd.Flags().String("pattern", "", "Input frame sequence pattern (printf style)")
	encodeCmd.Flags().Float64("fps", 24, "Frame rate for sequence encodes")
	encodeCmd.Flags().Int("start-number", 1, "First frame number of the sequence")
	encodeCmd.Flags().String("audio", "", "Audio track to mux into the result")
	encodeCmd.Flags().Float64("audio-offset", 0, "Audio start offset in seconds")
	encodeCmd.Flags().StringP("output", "o", "", "Output movie path")
	encodeCmd.Flags().StringP("format", "t", "h264", "Encoder name")
	encodeCmd.Flags().String("quality", "high", "Encode quality (very_high, high, medium, low)")
	encodeCmd.Flags().String("preset", "fast", "Encode speed preset")
	encodeCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")

	encodeCmd.MarkFlagRequired("output")

	addSourceFlags(burnCmd)

	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)

	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(burnCmd)
	rootCmd.AddCommand(settingsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
