package pipeline

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/MeKo-Tech/yomi/internal/ocr"
	"github.com/MeKo-Tech/yomi/internal/translate"
	"github.com/MeKo-Tech/yomi/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	detections []ocr.Detection
	err        error
}

func (s *stubEngine) Recognize(image.Image) ([]ocr.Detection, error) {
	return s.detections, s.err
}

func detAt(text string, cx, cy, conf float64) ocr.Detection {
	return ocr.Detection{
		Box: [4]utils.Point{
			{X: cx - 10, Y: cy - 6}, {X: cx + 10, Y: cy - 6},
			{X: cx + 10, Y: cy + 6}, {X: cx - 10, Y: cy + 6},
		},
		Text:       text,
		Confidence: conf,
	}
}

// fixedCache returns the same engine for every language tuple.
func fixedCache(eng ocr.Engine) *ocr.Cache {
	return ocr.NewCache(func([]string) (ocr.Engine, error) { return eng, nil })
}

type echoBatch struct{ src, tgt string }

func (e *echoBatch) TranslateBatch(_ context.Context, texts []string, src, tgt string) []string {
	e.src, e.tgt = src, tgt
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = "T:" + t
	}
	return out
}

func quietTranslator(b translate.BatchTranslator) *translate.Translator {
	tr := translate.New(b, nil)
	tr.Pause = 0
	return tr
}

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 640, 480))
}

func TestProcessFullFlow(t *testing.T) {
	eng := &stubEngine{detections: []ocr.Detection{
		detAt("second", 300, 20, 0.9),
		detAt("fourth", 100, 400, 0.8),
		detAt("first", 40, 22, 0.7),
		detAt("noise", 200, 200, 0.1), // below confidence floor
	}}
	echo := &echoBatch{}
	p, err := NewBuilder().
		WithLanguage("ja").
		WithEngineCache(fixedCache(eng)).
		WithMerging(false, 0).
		WithTargetLanguage("en").
		WithTranslator(quietTranslator(echo)).
		Build()
	require.NoError(t, err)

	res, err := p.Process(context.Background(), testImage())
	require.NoError(t, err)

	assert.Equal(t, "ja", res.Language)
	assert.Equal(t, 640, res.Width)
	assert.Equal(t, 480, res.Height)

	require.Len(t, res.Regions, 3)
	assert.Equal(t, "first", res.Regions[0].Text)
	assert.Equal(t, "second", res.Regions[1].Text)
	assert.Equal(t, "fourth", res.Regions[2].Text)
	for i, r := range res.Regions {
		assert.Equal(t, i+1, r.Index)
		assert.Equal(t, "T:"+r.Text, r.Translation)
	}
	assert.Equal(t, "ja", echo.src)
	assert.Equal(t, "en", echo.tgt)
}

func TestProcessMergesFragments(t *testing.T) {
	eng := &stubEngine{detections: []ocr.Detection{
		detAt("Hello", 100, 50, 0.8),
		detAt("World", 140, 52, 0.6),
	}}
	p, err := NewBuilder().
		WithLanguage("en").
		WithEngineCache(fixedCache(eng)).
		WithMerging(true, 50).
		WithTargetLanguage(""). // translation off
		Build()
	require.NoError(t, err)

	res, err := p.Process(context.Background(), testImage())
	require.NoError(t, err)
	require.Len(t, res.Regions, 1)
	assert.Equal(t, "Hello World", res.Regions[0].Text)
	assert.InDelta(t, 0.7, res.Regions[0].Confidence, 1e-9)
	assert.Equal(t, 1, res.Regions[0].Index)
	assert.Empty(t, res.Regions[0].Translation)
}

func TestProcessEmptyDetectionsIsNotAnError(t *testing.T) {
	p, err := NewBuilder().
		WithLanguage("en").
		WithEngineCache(fixedCache(&stubEngine{})).
		Build()
	require.NoError(t, err)

	res, err := p.Process(context.Background(), testImage())
	require.NoError(t, err)
	assert.Empty(t, res.Regions)
}

func TestProcessFixedLanguageEngineFailure(t *testing.T) {
	p, err := NewBuilder().
		WithLanguage("ja").
		WithEngineCache(fixedCache(&stubEngine{err: errors.New("no model")})).
		Build()
	require.NoError(t, err)

	_, err = p.Process(context.Background(), testImage())
	require.Error(t, err)
}

func TestProcessAutoProbesAndDetectsScriptForTranslation(t *testing.T) {
	// Every candidate engine fails, so the probe defaults to English with no
	// detections; the pipeline still returns an empty result.
	failing := ocr.NewCache(func([]string) (ocr.Engine, error) {
		return nil, errors.New("nothing installed")
	})
	p, err := NewBuilder().
		WithLanguage(AutoLanguage).
		WithEngineCache(failing).
		Build()
	require.NoError(t, err)

	res, err := p.Process(context.Background(), testImage())
	require.NoError(t, err)
	assert.Equal(t, "en", res.Language)
	assert.Empty(t, res.Regions)
}

func TestProcessNilImage(t *testing.T) {
	p, err := NewBuilder().WithEngineCache(fixedCache(&stubEngine{})).Build()
	require.NoError(t, err)
	_, err = p.Process(context.Background(), nil)
	require.Error(t, err)
}

func TestBuilderValidation(t *testing.T) {
	_, err := NewBuilder().WithMinConfidence(1.5).Build()
	require.Error(t, err)

	p, err := NewBuilder().WithMerging(true, -1).Build()
	require.NoError(t, err)
	assert.InDelta(t, 50.0, p.Config().MergeThreshold, 1e-9)
}

func TestProcessTranslationFailureDoesNotAbort(t *testing.T) {
	eng := &stubEngine{detections: []ocr.Detection{detAt("hola", 50, 50, 0.9)}}
	failing := translate.New(&failAllBatch{}, nil)
	failing.Pause = 0

	p, err := NewBuilder().
		WithLanguage("es").
		WithEngineCache(fixedCache(eng)).
		WithTranslator(failing).
		Build()
	require.NoError(t, err)

	res, err := p.Process(context.Background(), testImage())
	require.NoError(t, err)
	require.Len(t, res.Regions, 1)
	assert.True(t, translate.IsFailureTagged(res.Regions[0].Translation))
}

type failAllBatch struct{}

func (failAllBatch) TranslateBatch(_ context.Context, texts []string, _, _ string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = translate.FailedPrefix + ": down] " + t
	}
	return out
}
