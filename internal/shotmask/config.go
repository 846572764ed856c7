// Package shotmask renders the burned-in overlay (letterbox borders plus six
// metadata label slots) over a viewport. The draw pass is stateless across
// frames: every refresh re-reads the config, re-resolves the labels, and
// recomputes the geometry from scratch.
package shotmask

import (
	"github.com/pkg/errors"

	"github.com/dshepstone/playblast-tool/internal/logger"
	"github.com/dshepstone/playblast-tool/internal/settings"
)

// Position indexes the six label slots.
type Position int

const (
	TopLeft Position = iota
	TopCenter
	TopRight
	BottomLeft
	BottomCenter
	BottomRight
)

// Color is an RGBA color with components in [0, 1]. A is opacity.
type Color struct {
	R, G, B, A float64
}

// Valid setter ranges. Out-of-range values are rejected, not clamped.
const (
	MinLabelScale = 0.1
	MaxLabelScale = 2.0

	MinBorderScale = 0.5
	MaxBorderScale = 5.0

	MinBorderAspectRatio = 0.1
	MaxBorderAspectRatio = 10.0

	MinCounterPadding = 1
	MaxCounterPadding = 6
)

// Config is the full mask description. It is re-read once per draw call.
type Config struct {
	// CameraName filters which camera the mask draws over. Empty applies
	// to every camera.
	CameraName string

	// Labels are ordered top-left, top-center, top-right, bottom-left,
	// bottom-center, bottom-right. Each may be a literal, a tag template,
	// or an image directive.
	Labels [6]string

	FontName   string
	LabelColor Color
	LabelScale float64

	TopBorder    bool
	BottomBorder bool
	BorderColor  Color
	BorderScale  float64

	AspectRatioBorders bool
	BorderAspectRatio  float64

	CounterPadding int

	LogoPath string
}

// DefaultConfig mirrors the hardcoded defaults every settings accessor
// falls back to.
func DefaultConfig() Config {
	return Config{
		Labels: [6]string{
			"{scene}", "", "{date}",
			"{username}", "", "{counter}",
		},
		FontName:           "regular",
		LabelColor:         Color{1, 1, 1, 1},
		LabelScale:         1.0,
		TopBorder:          true,
		BottomBorder:       true,
		BorderColor:        Color{0, 0, 0, 1},
		BorderScale:        1.0,
		AspectRatioBorders: false,
		BorderAspectRatio:  2.35,
		CounterPadding:     4,
	}
}

// SetLabelScale updates the label scale. Out-of-range values are logged and
// ignored, leaving the prior value untouched.
func (c *Config) SetLabelScale(v float64) {
	if v < MinLabelScale || v > MaxLabelScale {
		logger.Log.Warnf("label scale %.2f out of range [%.1f, %.1f]; keeping %.2f",
			v, MinLabelScale, MaxLabelScale, c.LabelScale)
		return
	}
	c.LabelScale = v
}

// SetBorderScale updates the border scale, rejecting out-of-range values.
func (c *Config) SetBorderScale(v float64) {
	if v < MinBorderScale || v > MaxBorderScale {
		logger.Log.Warnf("border scale %.2f out of range [%.1f, %.1f]; keeping %.2f",
			v, MinBorderScale, MaxBorderScale, c.BorderScale)
		return
	}
	c.BorderScale = v
}

// SetBorderAspectRatio updates the aspect-ratio-border target, rejecting
// out-of-range values.
func (c *Config) SetBorderAspectRatio(v float64) {
	if v < MinBorderAspectRatio || v > MaxBorderAspectRatio {
		logger.Log.Warnf("border aspect ratio %.2f out of range [%.1f, %.1f]; keeping %.2f",
			v, MinBorderAspectRatio, MaxBorderAspectRatio, c.BorderAspectRatio)
		return
	}
	c.BorderAspectRatio = v
}

// SetCounterPadding updates the {counter} zero-pad width, rejecting
// out-of-range values.
func (c *Config) SetCounterPadding(v int) {
	if v < MinCounterPadding || v > MaxCounterPadding {
		logger.Log.Warnf("counter padding %d out of range [%d, %d]; keeping %d",
			v, MinCounterPadding, MaxCounterPadding, c.CounterPadding)
		return
	}
	c.CounterPadding = v
}

// Settings keys for mask persistence.
const (
	keyCamera             = "mask.camera"
	keyFont               = "mask.font"
	keyLabelColor         = "mask.label_color"
	keyLabelScale         = "mask.label_scale"
	keyTopBorder          = "mask.top_border"
	keyBottomBorder       = "mask.bottom_border"
	keyBorderColor        = "mask.border_color"
	keyBorderScale        = "mask.border_scale"
	keyAspectRatioBorders = "mask.aspect_ratio_borders"
	keyBorderAspectRatio  = "mask.border_aspect_ratio"
	keyCounterPadding     = "mask.counter_padding"
	keyLogoPath           = "mask.logo_path"
)

var labelKeys = [6]string{
	"mask.text.top_left",
	"mask.text.top_center",
	"mask.text.top_right",
	"mask.text.bottom_left",
	"mask.text.bottom_center",
	"mask.text.bottom_right",
}

// CheckRange validates a range-constrained mask setting by its store key
// before it is written. Keys without a range constraint pass.
func CheckRange(key string, value float64) error {
	switch key {
	case keyLabelScale:
		if value < MinLabelScale || value > MaxLabelScale {
			return errors.Errorf("%s %.2f out of range [%.1f, %.1f]",
				key, value, MinLabelScale, MaxLabelScale)
		}
	case keyBorderScale:
		if value < MinBorderScale || value > MaxBorderScale {
			return errors.Errorf("%s %.2f out of range [%.1f, %.1f]",
				key, value, MinBorderScale, MaxBorderScale)
		}
	case keyBorderAspectRatio:
		if value < MinBorderAspectRatio || value > MaxBorderAspectRatio {
			return errors.Errorf("%s %.2f out of range [%.1f, %.1f]",
				key, value, MinBorderAspectRatio, MaxBorderAspectRatio)
		}
	case keyCounterPadding:
		if value < MinCounterPadding || value > MaxCounterPadding {
			return errors.Errorf("%s %.0f out of range [%d, %d]",
				key, value, MinCounterPadding, MaxCounterPadding)
		}
	}
	return nil
}

// LoadConfig reads a mask config from the settings store, falling back to
// DefaultConfig values key by key. Range-constrained values pass through the
// validating setters, so an out-of-range stored value is warned about and
// replaced with its default rather than reaching the draw pass.
func LoadConfig(store *settings.Store) Config {
	def := DefaultConfig()

	cfg := Config{
		CameraName:         store.String(keyCamera, def.CameraName),
		FontName:           store.String(keyFont, def.FontName),
		LabelColor:         loadColor(store, keyLabelColor, def.LabelColor),
		LabelScale:         def.LabelScale,
		TopBorder:          store.Bool(keyTopBorder, def.TopBorder),
		BottomBorder:       store.Bool(keyBottomBorder, def.BottomBorder),
		BorderColor:        loadColor(store, keyBorderColor, def.BorderColor),
		BorderScale:        def.BorderScale,
		AspectRatioBorders: store.Bool(keyAspectRatioBorders, def.AspectRatioBorders),
		BorderAspectRatio:  def.BorderAspectRatio,
		CounterPadding:     def.CounterPadding,
		LogoPath:           store.String(keyLogoPath, def.LogoPath),
	}
	cfg.SetLabelScale(store.Float(keyLabelScale, def.LabelScale))
	cfg.SetBorderScale(store.Float(keyBorderScale, def.BorderScale))
	cfg.SetBorderAspectRatio(store.Float(keyBorderAspectRatio, def.BorderAspectRatio))
	cfg.SetCounterPadding(store.Int(keyCounterPadding, def.CounterPadding))
	for i, key := range labelKeys {
		cfg.Labels[i] = store.String(key, def.Labels[i])
	}
	return cfg
}

// Store writes the config into the settings store. The caller saves.
func (c Config) Store(store *settings.Store) {
	store.SetString(keyCamera, c.CameraName)
	store.SetString(keyFont, c.FontName)
	storeColor(store, keyLabelColor, c.LabelColor)
	store.SetFloat(keyLabelScale, c.LabelScale)
	store.SetBool(keyTopBorder, c.TopBorder)
	store.SetBool(keyBottomBorder, c.BottomBorder)
	storeColor(store, keyBorderColor, c.BorderColor)
	store.SetFloat(keyBorderScale, c.BorderScale)
	store.SetBool(keyAspectRatioBorders, c.AspectRatioBorders)
	store.SetFloat(keyBorderAspectRatio, c.BorderAspectRatio)
	store.SetInt(keyCounterPadding, c.CounterPadding)
	store.SetString(keyLogoPath, c.LogoPath)
	for i, key := range labelKeys {
		store.SetString(key, c.Labels[i])
	}
}

func loadColor(store *settings.Store, key string, fallback Color) Color {
	v := store.Floats(key, []float64{fallback.R, fallback.G, fallback.B, fallback.A})
	return Color{v[0], v[1], v[2], v[3]}
}

func storeColor(store *settings.Store, key string, c Color) {
	store.SetFloats(key, []float64{c.R, c.G, c.B, c.A})
}
