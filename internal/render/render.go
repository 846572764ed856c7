// Package render implements the shotmask.Renderer capability over an
// in-memory RGBA image, so masks can be burned into captured frames without
// a hosted viewport.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"

	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/dshepstone/playblast-tool/internal/logger"
	"github.com/dshepstone/playblast-tool/internal/shotmask"
)

// ImageRenderer draws into a destination RGBA image.
type ImageRenderer struct {
	dst   *image.RGBA
	font  *sfnt.Font
	faces map[int]font.Face
}

// NewImageRenderer builds a renderer over dst. fontName selects the label
// face: "bold" or "regular" (the default for any other value).
func NewImageRenderer(dst *image.RGBA, fontName string) (*ImageRenderer, error) {
	src := goregular.TTF
	if fontName == "bold" {
		src = gobold.TTF
	}
	f, err := opentype.Parse(src)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse label font")
	}
	return &ImageRenderer{
		dst:   dst,
		font:  f,
		faces: make(map[int]font.Face),
	}, nil
}

// Target returns the destination image.
func (r *ImageRenderer) Target() *image.RGBA {
	return r.dst
}

// SetTarget swaps the destination image, keeping the parsed font and sized
// faces. The capture loop reuses one renderer across every frame.
func (r *ImageRenderer) SetTarget(dst *image.RGBA) {
	r.dst = dst
}

// DrawRect fills a rectangle, alpha-blending over existing pixels.
func (r *ImageRenderer) DrawRect(x, y, width, height int, c shotmask.Color) {
	if width <= 0 || height <= 0 || c.A <= 0 {
		return
	}
	rect := image.Rect(x, y, x+width, y+height)
	draw.Draw(r.dst, rect, image.NewUniform(toNRGBA(c)), image.Point{}, draw.Over)
}

// DrawText draws one line of text vertically centered on y.
func (r *ImageRenderer) DrawText(x, y int, text string, size int, c shotmask.Color, align shotmask.TextAlign) {
	if text == "" || size <= 0 || c.A <= 0 {
		return
	}
	face := r.face(size)
	if face == nil {
		return
	}

	width := font.MeasureString(face, text)
	switch align {
	case shotmask.AlignCenter:
		x -= width.Round() / 2
	case shotmask.AlignRight:
		x -= width.Round()
	}

	metrics := face.Metrics()
	baseline := y + (metrics.Ascent - metrics.Descent).Round()/2

	drawer := font.Drawer{
		Dst:  r.dst,
		Src:  image.NewUniform(toNRGBA(c)),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	drawer.DrawString(text)
}

// DrawImage blits the image at path scaled to maxHeight, preserving its
// aspect ratio, vertically centered on y. A missing or unreadable file is
// logged and skipped; the slot simply stays empty that frame.
func (r *ImageRenderer) DrawImage(path string, x, y, maxHeight int, align shotmask.TextAlign, alpha float64) {
	if path == "" || maxHeight <= 0 || alpha <= 0 {
		return
	}
	src, err := loadImage(path)
	if err != nil {
		logger.Log.Warnf("shot mask image %s: %v", path, err)
		return
	}

	bounds := src.Bounds()
	if bounds.Dy() == 0 {
		return
	}
	scale := float64(maxHeight) / float64(bounds.Dy())
	width := int(math.Round(float64(bounds.Dx()) * scale))
	if width <= 0 {
		return
	}

	scaled := image.NewRGBA(image.Rect(0, 0, width, maxHeight))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, bounds, xdraw.Src, nil)

	switch align {
	case shotmask.AlignCenter:
		x -= width / 2
	case shotmask.AlignRight:
		x -= width
	}
	rect := image.Rect(x, y-maxHeight/2, x+width, y-maxHeight/2+maxHeight)

	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(alpha * 255))})
	draw.DrawMask(r.dst, rect, scaled, image.Point{}, mask, image.Point{}, draw.Over)
}

func (r *ImageRenderer) face(size int) font.Face {
	if face, ok := r.faces[size]; ok {
		return face
	}
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		logger.Log.Warnf("failed to size label font to %dpx: %v", size, err)
		return nil
	}
	r.faces[size] = face
	return face
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, errors.WithStack(err)
}

func toNRGBA(c shotmask.Color) color.NRGBA {
	return color.NRGBA{
		R: uint8(math.Round(clamp01(c.R) * 255)),
		G: uint8(math.Round(clamp01(c.G) * 255)),
		B: uint8(math.Round(clamp01(c.B) * 255)),
		A: uint8(math.Round(clamp01(c.A) * 255)),
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
