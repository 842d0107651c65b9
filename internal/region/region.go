// Package region holds the text-region model produced by OCR and the
// reading-order and merge heuristics that operate on it.
package region

import (
	"strings"

	"github.com/MeKo-Tech/yomi/internal/utils"
)

// TextRegion is one detected piece of text with its bounding geometry.
// Box points come straight from the OCR engine and are not guaranteed to be
// axis-aligned or consistently ordered.
type TextRegion struct {
	Text        string
	Box         [4]utils.Point
	Confidence  float64
	Index       int    // 1-based reading order; 0 until assigned
	Translation string // empty until translated
}

// Rect derives the axis-aligned bounding rectangle of the region's quad.
func (r *TextRegion) Rect() utils.Box {
	return utils.BoundingBox(r.Box[:])
}

// Center returns the midpoint of the region's bounding rectangle.
func (r *TextRegion) Center() utils.Point {
	return r.Rect().Center()
}

// QuadFromBox builds an axis-aligned 4-point quad from a rectangle,
// clockwise from the top-left corner.
func QuadFromBox(b utils.Box) [4]utils.Point {
	return [4]utils.Point{
		{X: b.MinX, Y: b.MinY},
		{X: b.MaxX, Y: b.MinY},
		{X: b.MaxX, Y: b.MaxY},
		{X: b.MinX, Y: b.MaxY},
	}
}

// FilterByConfidence returns the regions with non-empty text and confidence
// at or above min, preserving order.
func FilterByConfidence(regions []TextRegion, min float64) []TextRegion {
	out := make([]TextRegion, 0, len(regions))
	for _, r := range regions {
		if strings.TrimSpace(r.Text) == "" || r.Confidence < min {
			continue
		}
		r.Text = strings.TrimSpace(r.Text)
		out = append(out, r)
	}
	return out
}

// AssignIndices sets 1-based reading-order indices in slice order.
func AssignIndices(regions []TextRegion) {
	for i := range regions {
		regions[i].Index = i + 1
	}
}
