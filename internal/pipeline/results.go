package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/yomi/internal/region"
)

// Result is the processed page: detected language and regions in reading
// order with 1-based indices.
type Result struct {
	Language string              `json:"language"`
	Width    int                 `json:"width"`
	Height   int                 `json:"height"`
	Regions  []region.TextRegion `json:"-"`
}

// exportItem is the wire shape of one region.
type exportItem struct {
	Text        string       `json:"text"`
	Box         [][2]float64 `json:"box"`
	Conf        float64      `json:"conf"`
	Index       int          `json:"index"`
	Translation string       `json:"translation"`
}

func exportItems(regions []region.TextRegion) []exportItem {
	items := make([]exportItem, len(regions))
	for i, r := range regions {
		box := make([][2]float64, len(r.Box))
		for j, p := range r.Box {
			box[j] = [2]float64{p.X, p.Y}
		}
		items[i] = exportItem{
			Text:        r.Text,
			Box:         box,
			Conf:        r.Confidence,
			Index:       r.Index,
			Translation: r.Translation,
		}
	}
	return items
}

// ToJSON serializes a result as pretty JSON with non-ASCII text preserved.
func ToJSON(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{"items": exportItems(res.Regions)}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToCSV exports one row per region with the box as its textual
// list-of-points representation.
func ToCSV(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"index", "text", "translation", "conf", "box"})
	for _, item := range exportItems(res.Regions) {
		boxJSON, err := json.Marshal(item.Box)
		if err != nil {
			return "", fmt.Errorf("serialize box: %w", err)
		}
		_ = w.Write([]string{
			strconv.Itoa(item.Index),
			item.Text,
			item.Translation,
			fmt.Sprintf("%.3f", item.Conf),
			string(boxJSON),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToPlainText lists "index. text -> translation" lines in reading order.
func ToPlainText(res *Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	lines := make([]string, 0, len(res.Regions))
	for _, r := range res.Regions {
		line := fmt.Sprintf("%d. %s", r.Index, r.Text)
		if r.Translation != "" {
			line += " -> " + r.Translation
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}
