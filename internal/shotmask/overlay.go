package shotmask

import (
	"math"

	"github.com/dshepstone/playblast-tool/internal/camera"
	"github.com/dshepstone/playblast-tool/internal/filmgate"
	"github.com/dshepstone/playblast-tool/internal/logger"
	"github.com/dshepstone/playblast-tool/internal/tags"
)

// TextAlign selects the horizontal anchor of a label slot.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// Renderer is the 2D overlay capability the host must provide. Coordinates
// are pixels with the origin at the top-left, y growing down.
type Renderer interface {
	// DrawRect fills a rectangle.
	DrawRect(x, y, width, height int, color Color)

	// DrawText draws one line of text. y is the vertical center of the
	// line; x is interpreted per align.
	DrawText(x, y int, text string, size int, color Color, align TextAlign)

	// DrawImage blits an image scaled to maxHeight preserving its source
	// aspect ratio, vertically centered on y, anchored at x per align.
	DrawImage(path string, x, y, maxHeight int, align TextAlign, alpha float64)
}

// Viewport describes the surface being refreshed.
type Viewport struct {
	Width    int
	Height   int
	DPIScale float64
}

// Overlay is the per-refresh mask draw pass. It carries no state between
// frames: the config source is re-read and the full geometry and label
// resolve is redone on every Draw.
type Overlay struct {
	source func() Config

	// LookupTag, when set, resolves site-specific tags ahead of the
	// built-in ones.
	LookupTag func(string) string
}

// NewOverlay builds an overlay that re-reads its config from source on
// every draw call.
func NewOverlay(source func() Config) *Overlay {
	return &Overlay{source: source}
}

// Draw runs one refresh pass. It never panics and never reports an error:
// any condition that prevents drawing (camera filter mismatch, unsized
// viewport, unsupported film fit) results in no visual output this frame.
func (o *Overlay) Draw(r Renderer, view Viewport, scene *camera.Scene, frame int) {
	// The host calls this from its refresh loop; a panic here would take
	// the loop down with it.
	defer func() {
		if rec := recover(); rec != nil {
			logger.Log.Errorf("shot mask draw pass panicked: %v", rec)
		}
	}()

	cfg := o.source()

	cam := scene.Active()
	if cam == nil || !cam.Matches(cfg.CameraName) {
		return
	}

	labels := o.resolveLabels(cfg, scene, cam, frame)

	if view.Width <= 0 || view.Height <= 0 {
		return
	}

	maskWidth, maskHeight, err := filmgate.ComputeMaskSize(
		cam.FilmFit, cam.AspectRatio, scene.DeviceAspectRatio, cam.Overscan,
		view.Width, view.Height)
	if err != nil {
		logger.Log.Warnf("skipping shot mask: %v", err)
		return
	}

	borderHeight := filmgate.BorderHeight(maskWidth, maskHeight, filmgate.BorderOptions{
		Scale:              cfg.BorderScale,
		AspectRatioEnabled: cfg.AspectRatioBorders,
		AspectRatio:        cfg.BorderAspectRatio,
	})

	dpi := view.DPIScale
	if dpi <= 0 {
		dpi = 1.0
	}
	bh := float64(borderHeight)
	fontSize := int(math.Round((bh - bh*0.15) * cfg.LabelScale / dpi))

	maskX := int(math.Round((float64(view.Width) - maskWidth) / 2.0))
	maskY := int(math.Round((float64(view.Height) - maskHeight) / 2.0))
	maskW := int(math.Round(maskWidth))
	maskH := int(math.Round(maskHeight))

	if cfg.TopBorder {
		r.DrawRect(maskX, maskY, maskW, borderHeight, cfg.BorderColor)
	}
	if cfg.BottomBorder {
		r.DrawRect(maskX, maskY+maskH-borderHeight, maskW, borderHeight, cfg.BorderColor)
	}

	pad := borderHeight / 4
	anchors := [6]struct {
		x     int
		y     int
		align TextAlign
	}{
		{maskX + pad, maskY + borderHeight/2, AlignLeft},
		{maskX + maskW/2, maskY + borderHeight/2, AlignCenter},
		{maskX + maskW - pad, maskY + borderHeight/2, AlignRight},
		{maskX + pad, maskY + maskH - borderHeight/2, AlignLeft},
		{maskX + maskW/2, maskY + maskH - borderHeight/2, AlignCenter},
		{maskX + maskW - pad, maskY + maskH - borderHeight/2, AlignRight},
	}

	for i, label := range labels {
		anchor := anchors[i]
		if label.ImagePath != "" {
			r.DrawImage(label.ImagePath, anchor.x, anchor.y, borderHeight, anchor.align, cfg.LabelColor.A)
			continue
		}
		if label.Text == "" {
			continue
		}

		top, bottom, split := tags.SplitLines(label.Text)
		if !split {
			r.DrawText(anchor.x, anchor.y, label.Text, fontSize, cfg.LabelColor, anchor.align)
			continue
		}

		half := fontSize / 2
		fh := float64(half)
		if top != "" {
			r.DrawText(anchor.x, anchor.y-int(math.Round(0.6*fh)), top, half, cfg.LabelColor, anchor.align)
		}
		if bottom != "" {
			r.DrawText(anchor.x, anchor.y+int(math.Round(0.5*fh)), bottom, half, cfg.LabelColor, anchor.align)
		}
	}
}

func (o *Overlay) resolveLabels(cfg Config, scene *camera.Scene, cam *camera.Camera, frame int) [6]tags.Label {
	ctx := tags.Context{
		SceneName:   scene.BaseName(),
		Project:     scene.Project,
		CameraName:  cam.ShortName(),
		FocalLength: cam.FocalLength,
		Frame:       frame,
		Padding:     cfg.CounterPadding,
		LogoPath:    cfg.LogoPath,
		Lookup:      o.LookupTag,
	}

	var labels [6]tags.Label
	for i, template := range cfg.Labels {
		labels[i] = tags.Resolve(template, ctx)
	}
	return labels
}
