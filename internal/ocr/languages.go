package ocr

import (
	"strings"

	"golang.org/x/text/language"
)

// latinPaired lists Latin-script languages the engine can run alongside
// English in one configuration.
var latinPaired = map[string]bool{
	"fr": true, "es": true, "de": true, "ru": true,
	"pt": true, "it": true, "tr": true,
}

// chineseAliases folds the engine's historical Chinese tag spellings onto the
// canonical ones.
var chineseAliases = map[string]string{
	"zh_sim": "ch_sim",
	"zh_tra": "ch_tra",
}

// NormalizeLanguages maps a requested primary language tag to the engine's
// multi-language configuration. The pairing rules come from the engine's
// internal model-combination limitation, not from linguistics: Chinese
// variants load only alongside English and never together, and the CJK,
// Arabic, and common Latin-script languages all pair with English. Anything
// unrecognized falls back to English alone.
func NormalizeLanguages(primary string) []string {
	tag := canonicalTag(primary)

	if alias, ok := chineseAliases[tag]; ok {
		tag = alias
	}

	switch {
	case tag == "ch_sim" || tag == "ch_tra":
		return []string{tag, "en"}
	case tag == "ja" || tag == "ko":
		return []string{tag, "en"}
	case tag == "ar":
		return []string{tag, "en"}
	case latinPaired[tag]:
		return []string{tag, "en"}
	case tag == "" || tag == "en":
		return []string{"en"}
	default:
		return []string{"en"}
	}
}

// canonicalTag lowercases and strips region subtags: "ja-JP" and "ja_JP"
// both become "ja". Engine-specific tags with underscores (ch_sim) pass
// through untouched.
func canonicalTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" || strings.Contains(tag, "_") {
		return tag
	}
	if parsed, err := language.Parse(tag); err == nil {
		if base, conf := parsed.Base(); conf != language.No {
			return base.String()
		}
	}
	return tag
}

// DetectScript guesses a source language from text using Unicode ranges.
// It distinguishes Arabic, Japanese kana, Hangul, CJK ideographs (assumed
// simplified Chinese when no kana is present), and accented Latin (assumed
// French); everything else reads as English. Intended as a translation-source
// hint when the OCR language is unknown, not as real language identification.
func DetectScript(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "en"
	}

	hasRange := func(lo, hi rune) bool {
		for _, r := range text {
			if r >= lo && r <= hi {
				return true
			}
		}
		return false
	}

	switch {
	case hasRange(0x0600, 0x06FF) || hasRange(0x0750, 0x077F):
		return "ar"
	case hasRange(0x3040, 0x309F) || hasRange(0x30A0, 0x30FF):
		return "ja"
	case hasRange(0xAC00, 0xD7AF):
		return "ko"
	case hasRange(0x4E00, 0x9FFF):
		return "ch_sim"
	case hasRange(0x00C0, 0x00FF):
		return "fr"
	default:
		return "en"
	}
}
