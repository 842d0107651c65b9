package translate

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/MeKo-Tech/yomi/internal/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedBatch returns canned results per call and records batch sizes.
type scriptedBatch struct {
	results [][]string
	sizes   []int
}

func (s *scriptedBatch) TranslateBatch(_ context.Context, texts []string, _, _ string) []string {
	s.sizes = append(s.sizes, len(texts))
	if len(s.results) == 0 {
		out := make([]string, len(texts))
		for i, t := range texts {
			out[i] = "T:" + t
		}
		return out
	}
	r := s.results[0]
	s.results = s.results[1:]
	return r
}

type scriptedSingle struct {
	out   string
	err   error
	calls int
}

func (s *scriptedSingle) Translate(_ context.Context, text, _, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.out != "" {
		return s.out, nil
	}
	return "FB:" + text, nil
}

func newTestTranslator(p BatchTranslator, f SingleTranslator) (*Translator, *int) {
	tr := New(p, f)
	pauses := 0
	tr.sleep = func(time.Duration) { pauses++ }
	return tr, &pauses
}

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("text-%02d", i)
	}
	return out
}

func TestTranslateAllBatchesSequentially(t *testing.T) {
	primary := &scriptedBatch{}
	tr, pauses := newTestTranslator(primary, nil)

	in := texts(20)
	out := tr.TranslateAll(context.Background(), in, "ja", "en")

	require.Len(t, out, 20)
	assert.Equal(t, []int{18, 2}, primary.sizes)
	assert.Equal(t, 2, *pauses, "one etiquette pause per batch")
	for i, s := range out {
		assert.Equal(t, "T:"+in[i], s)
	}
}

func TestTranslateAllFallbackForTaggedItems(t *testing.T) {
	primary := &scriptedBatch{results: [][]string{
		{"ok-1", FailedPrefix + ": boom] text-01", "ok-2"},
	}}
	fallback := &scriptedSingle{}
	tr, _ := newTestTranslator(primary, fallback)

	out := tr.TranslateAll(context.Background(), []string{"text-00", "text-01", "text-02"}, "ja", "en")
	assert.Equal(t, []string{"ok-1", "FB:text-01", "ok-2"}, out)
	assert.Equal(t, 1, fallback.calls, "fallback only runs for tagged items")
}

func TestTranslateAllKeepsTagWhenFallbackFails(t *testing.T) {
	tagged := FailedPrefix + ": boom] text-00"
	primary := &scriptedBatch{results: [][]string{{tagged}}}
	fallback := &scriptedSingle{err: errors.New("also down")}
	tr, _ := newTestTranslator(primary, fallback)

	out := tr.TranslateAll(context.Background(), []string{"text-00"}, "ja", "en")
	assert.Equal(t, []string{tagged}, out)
}

func TestTranslateAllLengthPreservedUnderTotalFailure(t *testing.T) {
	failAll := &scriptedBatch{results: [][]string{
		tagAll(texts(18), FailedPrefix+": down]"),
		tagAll(texts(2), FailedPrefix+": down]"),
	}}
	fallback := &scriptedSingle{err: errors.New("down too")}
	tr, _ := newTestTranslator(failAll, fallback)

	in := texts(20)
	out := tr.TranslateAll(context.Background(), in, "ja", "en")
	require.Len(t, out, 20)
	for _, s := range out {
		assert.True(t, IsFailureTagged(s))
	}
}

func TestTranslateAllFallbackOnlyMode(t *testing.T) {
	fallback := &scriptedSingle{}
	tr, _ := newTestTranslator(nil, fallback)

	out := tr.TranslateAll(context.Background(), []string{"a", "b"}, "ja", "en")
	assert.Equal(t, []string{"FB:a", "FB:b"}, out)
}

func TestTranslateAllNoBackendsPassesThrough(t *testing.T) {
	tr, _ := newTestTranslator(nil, nil)
	out := tr.TranslateAll(context.Background(), []string{"a", "b"}, "ja", "en")
	assert.Equal(t, []string{"a", "b"}, out)
}

func TestTranslateAllEmptyInput(t *testing.T) {
	tr, _ := newTestTranslator(&scriptedBatch{}, nil)
	assert.Empty(t, tr.TranslateAll(context.Background(), nil, "ja", "en"))
}

func TestTranslateRegionsFillsInPlace(t *testing.T) {
	tr, _ := newTestTranslator(&scriptedBatch{}, nil)
	regions := []region.TextRegion{
		{Text: "hello", Index: 1},
		{Text: "world", Index: 2},
	}
	tr.TranslateRegions(context.Background(), regions, "ja", "en")
	assert.Equal(t, "T:hello", regions[0].Translation)
	assert.Equal(t, "T:world", regions[1].Translation)
}

func TestIsFailureTagged(t *testing.T) {
	assert.True(t, IsFailureTagged(FailedPrefix+": x] y"))
	assert.False(t, IsFailureTagged(MissingKeyPrefix+" y"))
	assert.False(t, IsFailureTagged("fine"))
}
