package translate

import (
	"context"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/yomi/internal/region"
)

// DefaultBatchSize balances remote call count against token limits.
const DefaultBatchSize = 18

// defaultBatchPause is the fixed etiquette pause between successive batches.
const defaultBatchPause = 500 * time.Millisecond

// BatchTranslator translates a group of segments in one remote call. The
// result always has the same length and order as the input.
type BatchTranslator interface {
	TranslateBatch(ctx context.Context, texts []string, src, tgt string) []string
}

// SingleTranslator translates one segment, best effort.
type SingleTranslator interface {
	Translate(ctx context.Context, text, src, tgt string) (string, error)
}

// Translator orchestrates the two-tier translation flow: batched primary
// first, then a per-item secondary pass for every segment the primary gave
// up on. Batches run strictly sequentially; ordering carries index alignment
// and batching exists to cut request count, not wall-clock time.
type Translator struct {
	Primary   BatchTranslator  // nil means fallback-only mode
	Fallback  SingleTranslator // nil disables the secondary pass
	BatchSize int
	Pause     time.Duration

	sleep func(time.Duration)
}

// New builds a translator with the default batch size and inter-batch pause.
func New(primary BatchTranslator, fallback SingleTranslator) *Translator {
	return &Translator{
		Primary:   primary,
		Fallback:  fallback,
		BatchSize: DefaultBatchSize,
		Pause:     defaultBatchPause,
		sleep:     time.Sleep,
	}
}

// TranslateAll translates texts preserving length and order under every
// failure mode.
func (t *Translator) TranslateAll(ctx context.Context, texts []string, src, tgt string) []string {
	if len(texts) == 0 {
		return nil
	}
	if t.Primary == nil {
		return t.fallbackOnly(ctx, texts, src, tgt)
	}

	batchSize := t.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	out := make([]string, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := min(start+batchSize, len(texts))
		chunk := texts[start:end]
		slog.Info("translating batch",
			"batch", start/batchSize+1, "segments", len(chunk), "target", tgt)

		results := t.Primary.TranslateBatch(ctx, chunk, src, tgt)
		for i, r := range results {
			if IsFailureTagged(r) && t.Fallback != nil {
				if fb, err := t.Fallback.Translate(ctx, chunk[i], src, tgt); err == nil {
					r = fb
				} else {
					slog.Debug("fallback translation failed", "error", err)
				}
			}
			out = append(out, r)
		}

		// Etiquette pause so consecutive batches do not burst the endpoint.
		if t.Pause > 0 {
			t.sleep(t.Pause)
		}
	}
	return out
}

func (t *Translator) fallbackOnly(ctx context.Context, texts []string, src, tgt string) []string {
	out := make([]string, len(texts))
	for i, text := range texts {
		if t.Fallback == nil {
			out[i] = text
			continue
		}
		if fb, err := t.Fallback.Translate(ctx, text, src, tgt); err == nil {
			out[i] = fb
		} else {
			slog.Debug("fallback translation failed", "error", err)
			out[i] = text
		}
	}
	return out
}

// TranslateRegions fills each region's Translation field in place.
func (t *Translator) TranslateRegions(ctx context.Context, regions []region.TextRegion, src, tgt string) {
	if len(regions) == 0 {
		return
	}
	texts := make([]string, len(regions))
	for i := range regions {
		texts[i] = regions[i].Text
	}
	translated := t.TranslateAll(ctx, texts, src, tgt)
	for i := range regions {
		regions[i].Translation = translated[i]
	}
}
