// Package filmgate computes the on-screen rectangle that frames a camera's
// output region inside a viewport, replicating the four film-fit policies,
// and derives border band heights from it.
package filmgate

import (
	"math"

	"github.com/pkg/errors"

	"github.com/dshepstone/playblast-tool/internal/camera"
	"github.com/dshepstone/playblast-tool/internal/logger"
)

// ErrUnsupportedFilmFit is returned for film-fit modes outside the four
// supported policies. Callers skip the mask for that frame.
var ErrUnsupportedFilmFit = errors.New("unsupported film fit mode")

// ComputeMaskSize returns the pixel width and height of the mask rectangle
// for the given camera framing. The result always satisfies
// width/height == deviceAspect.
func ComputeMaskSize(fit camera.FilmFit, cameraAspect, deviceAspect, overscan float64, viewportWidth, viewportHeight int) (float64, float64, error) {
	vpWidth := float64(viewportWidth)
	vpHeight := float64(viewportHeight)

	switch fit {
	case camera.FitHorizontal:
		w := vpWidth / overscan
		return w, w / deviceAspect, nil

	case camera.FitVertical:
		h := vpHeight / overscan
		return h * deviceAspect, h, nil

	case camera.FitFill:
		scale := fillScale(vpWidth/vpHeight, cameraAspect, deviceAspect)
		w := vpWidth / overscan * scale
		return w, w / deviceAspect, nil

	case camera.FitOverscan:
		scale := fillScale(vpWidth/vpHeight, cameraAspect, deviceAspect)
		h := vpHeight / overscan / scale
		return h * deviceAspect, h, nil
	}

	return 0, 0, errors.Wrapf(ErrUnsupportedFilmFit, "%v", fit)
}

// fillScale is shared by the fill and overscan policies.
func fillScale(viewportAspect, cameraAspect, deviceAspect float64) float64 {
	if viewportAspect < cameraAspect {
		if cameraAspect < deviceAspect {
			return cameraAspect / viewportAspect
		}
		return deviceAspect / viewportAspect
	}
	if cameraAspect > deviceAspect {
		return deviceAspect / cameraAspect
	}
	return 1
}

// BorderOptions selects how border band thickness is derived: from a scale
// on the mask height, or from forcing the visible region to a target aspect
// ratio. Exactly one is active, chosen by AspectRatioEnabled.
type BorderOptions struct {
	Scale              float64
	AspectRatioEnabled bool
	AspectRatio        float64
}

// BorderHeight returns the border band height in whole pixels. When aspect
// ratio mode requests a ratio the mask cannot letterbox to (derived height
// would be zero or negative), it logs a warning and falls back to the scale
// formula for this call only.
func BorderHeight(maskWidth, maskHeight float64, opts BorderOptions) int {
	scaled := int(math.Round(0.05 * maskHeight * opts.Scale))

	if !opts.AspectRatioEnabled {
		return scaled
	}

	derived := (maskHeight - maskWidth/opts.AspectRatio) / 2.0
	if derived <= 0 {
		logger.Log.Warnf(
			"border aspect ratio %.3f is not achievable for a %.0fx%.0f mask; using border scale instead",
			opts.AspectRatio, maskWidth, maskHeight)
		return scaled
	}
	return int(math.Round(derived))
}
