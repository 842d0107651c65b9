// Package ocr wraps the external text-detection capability: an engine that
// takes pixels and a language configuration and returns quadrilateral text
// detections with confidences. Engines are expensive to construct, so they
// are cached per language configuration.
package ocr

import (
	"image"
	"strings"

	"github.com/MeKo-Tech/yomi/internal/region"
	"github.com/MeKo-Tech/yomi/internal/utils"
)

// Detection is one raw OCR result: a 4-point box, the recognized text and a
// confidence in [0, 1]. Box points are engine-ordered and may be rotated.
type Detection struct {
	Box        [4]utils.Point
	Text       string
	Confidence float64
}

// Engine recognizes text in an image. Implementations may fail arbitrarily
// (missing language data, unsupported configuration); callers treat an error
// as zero yield for that configuration.
type Engine interface {
	Recognize(img image.Image) ([]Detection, error)
}

// Factory constructs an engine for a normalized language list.
type Factory func(langs []string) (Engine, error)

// Region converts a detection into a pipeline text region.
func (d Detection) Region() region.TextRegion {
	return region.TextRegion{
		Text:       d.Text,
		Box:        d.Box,
		Confidence: d.Confidence,
	}
}

// Clean drops detections with empty text and clamps confidences into [0, 1].
// Order is preserved.
func Clean(detections []Detection) []Detection {
	out := make([]Detection, 0, len(detections))
	for _, d := range detections {
		d.Text = strings.TrimSpace(d.Text)
		if d.Text == "" {
			continue
		}
		if d.Confidence < 0 {
			d.Confidence = 0
		} else if d.Confidence > 1 {
			d.Confidence = 1
		}
		out = append(out, d)
	}
	return out
}
