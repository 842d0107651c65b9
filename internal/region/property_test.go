package region

import (
	"testing"

	"github.com/MeKo-Tech/yomi/internal/utils"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genRegions builds a deterministic pseudo-random region slice from seeds.
func genRegions(xs, ys []int) []TextRegion {
	n := min(len(xs), len(ys))
	regions := make([]TextRegion, 0, n)
	for i := 0; i < n; i++ {
		cx := float64(xs[i]%2000) + 10
		cy := float64(ys[i]%3000) + 10
		regions = append(regions, TextRegion{
			Text:       "t",
			Box:        QuadFromBox(utils.NewBox(cx-6, cy-4, cx+6, cy+4)),
			Confidence: 0.5,
		})
	}
	return regions
}

func TestSortReadingOrder_Idempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("sorting a sorted list is a no-op", prop.ForAll(
		func(xs, ys []int) bool {
			regions := genRegions(xs, ys)
			once := SortReadingOrder(regions)
			twice := SortReadingOrder(once)
			if len(once) != len(twice) {
				return false
			}
			for i := range once {
				if once[i] != twice[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5000)),
		gen.SliceOf(gen.IntRange(0, 5000)),
	))

	properties.TestingRun(t)
}

func TestMergeNearby_Invariants(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("merge never increases count", prop.ForAll(
		func(xs, ys []int) bool {
			regions := genRegions(xs, ys)
			return len(MergeNearby(regions, DefaultMergeThreshold)) <= len(regions)
		},
		gen.SliceOf(gen.IntRange(0, 5000)),
		gen.SliceOf(gen.IntRange(0, 5000)),
	))

	properties.Property("every input rect is contained in some output rect", prop.ForAll(
		func(xs, ys []int) bool {
			regions := genRegions(xs, ys)
			merged := MergeNearby(regions, DefaultMergeThreshold)
			for _, r := range regions {
				contained := false
				for _, m := range merged {
					if m.Rect().Contains(r.Rect()) {
						contained = true
						break
					}
				}
				if !contained {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5000)),
		gen.SliceOf(gen.IntRange(0, 5000)),
	))

	properties.TestingRun(t)
}
