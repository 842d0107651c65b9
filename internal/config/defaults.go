package config

import (
	"github.com/MeKo-Tech/yomi/internal/pipeline"
	"github.com/MeKo-Tech/yomi/internal/translate"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	pipe := pipeline.DefaultConfig()
	chat := translate.DefaultChatConfig()

	return &Config{
		LogLevel: "info",
		Verbose:  false,
		OCR: OCRConfig{
			Language:       pipe.Language,
			MinConfidence:  pipe.MinConfidence,
			MergeNearby:    pipe.MergeNearby,
			MergeThreshold: pipe.MergeThreshold,
		},
		Translate: TranslateConfig{
			Backend:          BackendOpenAI,
			TargetLanguage:   pipe.TargetLanguage,
			Model:            chat.Model,
			BaseURL:          chat.BaseURL,
			BatchSize:        translate.DefaultBatchSize,
			MaxRetries:       chat.MaxRetries,
			FallbackEndpoint: translate.DefaultLibreEndpoint,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      120,
			ShutdownTimeout: 10,
		},
	}
}

// PipelineConfig maps the OCR and translation sections onto a pipeline
// configuration.
func (c *Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		Language:       c.OCR.Language,
		MinConfidence:  c.OCR.MinConfidence,
		MergeNearby:    c.OCR.MergeNearby,
		MergeThreshold: c.OCR.MergeThreshold,
		TargetLanguage: c.Translate.TargetLanguage,
	}
}
