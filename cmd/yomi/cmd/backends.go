package cmd

import (
	"github.com/MeKo-Tech/yomi/internal/config"
	"github.com/MeKo-Tech/yomi/internal/translate"
)

// buildTranslator assembles the translation stack from configuration.
// Returns nil when translation is disabled.
func buildTranslator(cfg *config.Config) *translate.Translator {
	if cfg.Translate.TargetLanguage == "" || cfg.Translate.Backend == config.BackendNone {
		return nil
	}

	fallback := translate.NewLibreClient(cfg.Translate.FallbackEndpoint)

	if cfg.Translate.Backend == config.BackendLibre {
		return translate.New(nil, fallback)
	}

	cc := translate.DefaultChatConfig()
	cc.APIKey = cfg.Translate.APIKey
	if cfg.Translate.Model != "" {
		cc.Model = cfg.Translate.Model
	}
	if cfg.Translate.BaseURL != "" {
		cc.BaseURL = cfg.Translate.BaseURL
	}
	if cfg.Translate.MaxRetries > 0 {
		cc.MaxRetries = cfg.Translate.MaxRetries
	}

	tr := translate.New(translate.NewChatClient(cc), fallback)
	if cfg.Translate.BatchSize > 0 {
		tr.BatchSize = cfg.Translate.BatchSize
	}
	return tr
}
