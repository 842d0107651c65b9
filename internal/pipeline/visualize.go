package pipeline

import (
	"fmt"
	"image"
	"image/color"

	"github.com/MeKo-Tech/yomi/internal/utils"
)

var (
	overlayBoxColor   = color.RGBA{R: 255, A: 255}
	overlayLabelColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

const (
	overlayBoxThickness = 3
	labelPadX           = 4
	labelPadY           = 3
	// basicfont.Face7x13 glyph metrics
	glyphWidth  = 7
	glyphHeight = 13
)

// RenderOverlay draws each region's bounding rectangle and its reading-order
// index onto a copy of the page. Regions without an index are skipped.
func RenderOverlay(img image.Image, res *Result) *image.RGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
		}
	}
	if res == nil {
		return dst
	}

	for i := range res.Regions {
		r := &res.Regions[i]
		if r.Index <= 0 {
			continue
		}
		rect := r.Rect().ToRect(dst.Bounds())
		utils.DrawRect(dst, rect, overlayBoxColor, overlayBoxThickness)

		label := fmt.Sprintf("%d", r.Index)
		w := glyphWidth*len(label) + 2*labelPadX
		h := glyphHeight + 2*labelPadY
		badge := image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+w, rect.Min.Y+h)
		utils.FillRect(dst, badge, overlayBoxColor)
		utils.DrawLabel(dst, label, rect.Min.X+labelPadX, rect.Min.Y+labelPadY, overlayLabelColor)
	}
	return dst
}
