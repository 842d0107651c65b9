package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/MeKo-Tech/yomi/internal/utils"
)

// tessdataCodes maps pipeline language tags to tesseract traineddata names.
var tessdataCodes = map[string]string{
	"en":     "eng",
	"ja":     "jpn",
	"ko":     "kor",
	"ch_sim": "chi_sim",
	"ch_tra": "chi_tra",
	"ar":     "ara",
	"fr":     "fra",
	"es":     "spa",
	"de":     "deu",
	"ru":     "rus",
	"pt":     "por",
	"it":     "ita",
	"tr":     "tur",
}

// TesseractEngine recognizes text line-by-line through a shared gosseract
// client. The client is not safe for concurrent use, so calls serialize on a
// mutex; the pipeline is sequential anyway and the server shares engines
// through the cache.
type TesseractEngine struct {
	langs []string

	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractEngine builds an engine for the normalized language tuple.
func NewTesseractEngine(langs []string) (Engine, error) {
	codes := make([]string, 0, len(langs))
	for _, l := range langs {
		code, ok := tessdataCodes[l]
		if !ok {
			return nil, fmt.Errorf("no tesseract language data mapping for %q", l)
		}
		codes = append(codes, code)
	}
	return &TesseractEngine{langs: codes}, nil
}

// Recognize returns line-level detections with confidences scaled to [0, 1].
func (e *TesseractEngine) Recognize(img image.Image) ([]Detection, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image for ocr: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		client := gosseract.NewClient()
		if err := client.SetLanguage(e.langs...); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set ocr languages %v: %w", e.langs, err)
		}
		e.client = client
	}

	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set ocr image: %w", err)
	}
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("ocr bounding boxes: %w", err)
	}

	detections := make([]Detection, 0, len(boxes))
	for _, b := range boxes {
		detections = append(detections, Detection{
			Box: [4]utils.Point{
				{X: float64(b.Box.Min.X), Y: float64(b.Box.Min.Y)},
				{X: float64(b.Box.Max.X), Y: float64(b.Box.Min.Y)},
				{X: float64(b.Box.Max.X), Y: float64(b.Box.Max.Y)},
				{X: float64(b.Box.Min.X), Y: float64(b.Box.Max.Y)},
			},
			Text:       b.Word,
			Confidence: b.Confidence / 100.0,
		})
	}
	return detections, nil
}

// Close releases the underlying tesseract client.
func (e *TesseractEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	return err
}
