package region

import (
	"math"
	"strings"
)

// DefaultMergeThreshold is the distance threshold, in pixel units, for
// considering two detections fragments of the same line.
const DefaultMergeThreshold = 50.0

// MergeNearby fuses detections that look like horizontal fragments of one
// text line. Two regions belong together when their vertical centers are
// within threshold/2 and their horizontal centers within threshold*2; OCR
// splits lines horizontally far more often than vertically, hence the
// asymmetric tolerances.
//
// Grouping is a single left-to-right scan: each unclaimed region anchors a
// group and claims every later unclaimed region satisfying the predicate
// against the anchor (not against other members). This is deliberately not
// connected-components clustering; downstream ordering depends on the
// anchor semantics.
//
// Merged regions get space-joined text in encounter order, the union
// bounding rectangle as an axis-aligned quad, and the mean confidence of
// their constituents. Regions with no partner pass through with their
// original quad untouched.
func MergeNearby(regions []TextRegion, threshold float64) []TextRegion {
	if len(regions) <= 1 {
		return append([]TextRegion(nil), regions...)
	}

	merged := make([]TextRegion, 0, len(regions))
	claimed := make([]bool, len(regions))

	for i := range regions {
		if claimed[i] {
			continue
		}
		anchor := regions[i].Center()
		group := []int{i}

		for j := i + 1; j < len(regions); j++ {
			if claimed[j] {
				continue
			}
			c := regions[j].Center()
			if math.Abs(anchor.Y-c.Y) < threshold/2 && math.Abs(anchor.X-c.X) < threshold*2 {
				group = append(group, j)
				claimed[j] = true
			}
		}

		if len(group) == 1 {
			merged = append(merged, regions[i])
			continue
		}

		texts := make([]string, len(group))
		union := regions[group[0]].Rect()
		confSum := 0.0
		for gi, idx := range group {
			texts[gi] = regions[idx].Text
			union = union.Union(regions[idx].Rect())
			confSum += regions[idx].Confidence
		}

		merged = append(merged, TextRegion{
			Text:       strings.Join(texts, " "),
			Box:        QuadFromBox(union),
			Confidence: confSum / float64(len(group)),
		})
	}

	return merged
}
