package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLanguages(t *testing.T) {
	tests := []struct {
		name    string
		primary string
		want    []string
	}{
		{"simplified chinese pairs only with english", "ch_sim", []string{"ch_sim", "en"}},
		{"traditional chinese pairs only with english", "ch_tra", []string{"ch_tra", "en"}},
		{"zh_sim alias", "zh_sim", []string{"ch_sim", "en"}},
		{"zh_tra alias", "zh_tra", []string{"ch_tra", "en"}},
		{"japanese", "ja", []string{"ja", "en"}},
		{"korean", "ko", []string{"ko", "en"}},
		{"arabic", "ar", []string{"ar", "en"}},
		{"french", "fr", []string{"fr", "en"}},
		{"turkish", "tr", []string{"tr", "en"}},
		{"english alone", "en", []string{"en"}},
		{"empty defaults to english", "", []string{"en"}},
		{"unknown defaults to english", "tlh", []string{"en"}},
		{"region subtag stripped", "ja-JP", []string{"ja", "en"}},
		{"uppercase normalized", "KO", []string{"ko", "en"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLanguages(tt.primary))
		})
	}
}

func TestDetectScript(t *testing.T) {
	assert.Equal(t, "ja", DetectScript("こんにちは世界"))
	assert.Equal(t, "ko", DetectScript("안녕하세요"))
	assert.Equal(t, "ar", DetectScript("مرحبا"))
	// Ideographs without kana read as simplified Chinese.
	assert.Equal(t, "ch_sim", DetectScript("你好世界"))
	assert.Equal(t, "fr", DetectScript("où est la bibliothèque"))
	assert.Equal(t, "en", DetectScript("hello world"))
	assert.Equal(t, "en", DetectScript("   "))
}
