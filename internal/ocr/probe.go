package ocr

import (
	"image"
	"log/slog"
)

// Probe candidates in expected manga-source frequency order.
var probeCandidates = []string{"ja", "ch_sim", "ko", "en", "ar", "fr", "ch_tra"}

// Empirically chosen "good enough" cutoffs that bound how many engine
// configurations the probe pays for.
const (
	probeEarlyExitScore = 6.0
	probeEarlyExitCount = 8
)

// Probe runs OCR under several candidate language configurations and keeps
// the one with the best yield. Score is detection count times mean
// confidence, computed over cleaned detections; the returned detections are
// the winning candidate's raw (uncleaned) results so that the caller's
// confidence filter sees everything. Candidates that error are skipped. If
// every candidate fails, the result is English with no detections.
func Probe(cache *Cache, img image.Image) (string, []Detection) {
	bestLang := "en"
	bestScore := 0.0
	var bestRaw []Detection

	for _, primary := range probeCandidates {
		langs := NormalizeLanguages(primary)
		eng, err := cache.Get(langs)
		if err != nil {
			slog.Debug("probe: engine unavailable", "lang", primary, "error", err)
			continue
		}
		raw, err := eng.Recognize(img)
		if err != nil {
			slog.Debug("probe: recognition failed", "lang", primary, "error", err)
			continue
		}

		cleaned := Clean(raw)
		score := scoreDetections(cleaned)
		slog.Debug("probe: candidate scored", "lang", primary, "detections", len(cleaned), "score", score)

		if score > bestScore {
			bestLang, bestScore, bestRaw = primary, score, raw
		}

		if bestScore >= probeEarlyExitScore && len(Clean(bestRaw)) >= probeEarlyExitCount {
			break
		}
	}

	return bestLang, bestRaw
}

func scoreDetections(cleaned []Detection) float64 {
	if len(cleaned) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, d := range cleaned {
		sum += d.Confidence
	}
	return float64(len(cleaned)) * (sum / float64(len(cleaned)))
}
