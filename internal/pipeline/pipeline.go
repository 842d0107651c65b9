// Package pipeline wires OCR, reading-order reconstruction, and translation
// into the end-to-end page processing flow.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/MeKo-Tech/yomi/internal/ocr"
	"github.com/MeKo-Tech/yomi/internal/region"
	"github.com/MeKo-Tech/yomi/internal/translate"
)

// AutoLanguage requests per-page language probing instead of a fixed engine
// configuration.
const AutoLanguage = "auto"

// Config holds the processing options for one page.
type Config struct {
	Language       string  // OCR language tag, or "auto"
	MinConfidence  float64 // detections below this are dropped
	MergeNearby    bool    // fuse fragmented same-line detections
	MergeThreshold float64 // distance threshold for merging
	TargetLanguage string  // translation target; empty disables translation
}

// DefaultConfig returns defaults matching the CLI and server.
func DefaultConfig() Config {
	return Config{
		Language:       AutoLanguage,
		MinConfidence:  0.35,
		MergeNearby:    true,
		MergeThreshold: region.DefaultMergeThreshold,
		TargetLanguage: "en",
	}
}

// Pipeline processes single page images. It is synchronous: OCR, each remote
// translation call, and rendering all block the caller.
type Pipeline struct {
	cfg        Config
	engines    *ocr.Cache
	translator *translate.Translator
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg        Config
	engines    *ocr.Cache
	translator *translate.Translator
}

// NewBuilder creates a pipeline builder with defaults and the tesseract
// engine factory.
func NewBuilder() *Builder {
	return &Builder{
		cfg:     DefaultConfig(),
		engines: ocr.NewCache(ocr.NewTesseractEngine),
	}
}

// WithConfig replaces the whole processing config.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithLanguage sets the OCR language tag ("auto" probes).
func (b *Builder) WithLanguage(lang string) *Builder {
	if lang != "" {
		b.cfg.Language = lang
	}
	return b
}

// WithMinConfidence sets the detection confidence floor.
func (b *Builder) WithMinConfidence(min float64) *Builder {
	b.cfg.MinConfidence = min
	return b
}

// WithMerging toggles fragment merging and its threshold.
func (b *Builder) WithMerging(enabled bool, threshold float64) *Builder {
	b.cfg.MergeNearby = enabled
	if threshold > 0 {
		b.cfg.MergeThreshold = threshold
	}
	return b
}

// WithTargetLanguage sets the translation target; empty disables translation.
func (b *Builder) WithTargetLanguage(lang string) *Builder {
	b.cfg.TargetLanguage = lang
	return b
}

// WithEngineCache replaces the OCR engine cache (tests inject fakes here).
func (b *Builder) WithEngineCache(cache *ocr.Cache) *Builder {
	if cache != nil {
		b.engines = cache
	}
	return b
}

// WithTranslator sets the translator; nil leaves regions untranslated.
func (b *Builder) WithTranslator(t *translate.Translator) *Builder {
	b.translator = t
	return b
}

// Build validates the configuration and assembles the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if b.cfg.MinConfidence < 0 || b.cfg.MinConfidence > 1 {
		return nil, fmt.Errorf("invalid min confidence: %.2f", b.cfg.MinConfidence)
	}
	if b.cfg.MergeThreshold <= 0 {
		b.cfg.MergeThreshold = region.DefaultMergeThreshold
	}
	return &Pipeline{cfg: b.cfg, engines: b.engines, translator: b.translator}, nil
}

// Config returns the pipeline's processing configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Process runs the full flow on one page: OCR (fixed language or probed),
// confidence filter, optional merge, reading-order sort, 1-based indexing,
// and translation. Empty results are a valid outcome, not an error, and
// translation failures surface as tagged strings rather than aborting.
func (p *Pipeline) Process(ctx context.Context, img image.Image) (*Result, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}

	lang, raw, err := p.recognize(img)
	if err != nil {
		return nil, err
	}
	slog.Debug("ocr complete", "language", lang, "raw_detections", len(raw))

	regions := make([]region.TextRegion, 0, len(raw))
	for _, d := range ocr.Clean(raw) {
		regions = append(regions, d.Region())
	}
	regions = region.FilterByConfidence(regions, p.cfg.MinConfidence)

	if p.cfg.MergeNearby {
		before := len(regions)
		regions = region.MergeNearby(regions, p.cfg.MergeThreshold)
		slog.Debug("merged fragments", "before", before, "after", len(regions))
	}

	regions = region.SortReadingOrder(regions)
	region.AssignIndices(regions)

	if p.translator != nil && p.cfg.TargetLanguage != "" && len(regions) > 0 {
		src := p.sourceLanguage(lang, regions)
		p.translator.TranslateRegions(ctx, regions, src, p.cfg.TargetLanguage)
	}

	b := img.Bounds()
	return &Result{
		Language: lang,
		Width:    b.Dx(),
		Height:   b.Dy(),
		Regions:  regions,
	}, nil
}

func (p *Pipeline) recognize(img image.Image) (string, []ocr.Detection, error) {
	if p.cfg.Language == "" || p.cfg.Language == AutoLanguage {
		lang, raw := ocr.Probe(p.engines, img)
		return lang, raw, nil
	}

	langs := ocr.NormalizeLanguages(p.cfg.Language)
	eng, err := p.engines.Get(langs)
	if err != nil {
		return "", nil, fmt.Errorf("ocr engine for %q: %w", p.cfg.Language, err)
	}
	raw, err := eng.Recognize(img)
	if err != nil {
		return "", nil, fmt.Errorf("ocr recognition (%q): %w", p.cfg.Language, err)
	}
	return p.cfg.Language, raw, nil
}

// sourceLanguage resolves the tag handed to the translator. When the OCR
// language is unknown, the text's script is the best remaining hint.
func (p *Pipeline) sourceLanguage(lang string, regions []region.TextRegion) string {
	if lang != "" && lang != AutoLanguage {
		return lang
	}
	var joined string
	for _, r := range regions {
		joined += r.Text + " "
	}
	return ocr.DetectScript(joined)
}
