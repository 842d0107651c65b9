package region

import (
	"math"
	"sort"
)

const (
	// minRowHeight keeps row buckets from degenerating when every region
	// sits on a single line.
	minRowHeight = 12.0
	// rowDivisor approximates the number of reading rows on a typical page.
	rowDivisor = 20.0
)

// SortReadingOrder reorders regions into human reading order: rows top to
// bottom, then left to right within a row. Rows are approximated by bucketing
// vertical centers with a dynamically sized row height. The input slice is
// not modified; region contents are never mutated.
func SortReadingOrder(regions []TextRegion) []TextRegion {
	if len(regions) <= 1 {
		return append([]TextRegion(nil), regions...)
	}

	centers := make([]struct{ x, y float64 }, len(regions))
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := range regions {
		c := regions[i].Center()
		centers[i].x, centers[i].y = c.X, c.Y
		minY = math.Min(minY, c.Y)
		maxY = math.Max(maxY, c.Y)
	}

	rowHeight := math.Max(minRowHeight, (maxY-minY)/rowDivisor)

	buckets := make(map[int][]int)
	keys := make([]int, 0)
	for i := range regions {
		k := int(math.Floor(centers[i].y / rowHeight))
		if _, ok := buckets[k]; !ok {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], i)
	}
	sort.Ints(keys)

	out := make([]TextRegion, 0, len(regions))
	for _, k := range keys {
		row := buckets[k]
		// Stable so that center-x ties keep relative input order.
		sort.SliceStable(row, func(a, b int) bool {
			return centers[row[a]].x < centers[row[b]].x
		})
		for _, i := range row {
			out = append(out, regions[i])
		}
	}
	return out
}
