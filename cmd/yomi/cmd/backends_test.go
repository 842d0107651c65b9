package cmd

import (
	"testing"

	"github.com/MeKo-Tech/yomi/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTranslatorDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Translate.Backend = config.BackendNone
	assert.Nil(t, buildTranslator(cfg))

	cfg = config.DefaultConfig()
	cfg.Translate.TargetLanguage = ""
	assert.Nil(t, buildTranslator(cfg))
}

func TestBuildTranslatorOpenAI(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Translate.APIKey = "sk-test"
	cfg.Translate.BatchSize = 7

	tr := buildTranslator(cfg)
	require.NotNil(t, tr)
	assert.NotNil(t, tr.Primary)
	assert.NotNil(t, tr.Fallback)
	assert.Equal(t, 7, tr.BatchSize)
}

func TestBuildTranslatorLibreOnly(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Translate.Backend = config.BackendLibre

	tr := buildTranslator(cfg)
	require.NotNil(t, tr)
	assert.Nil(t, tr.Primary)
	assert.NotNil(t, tr.Fallback)
}
