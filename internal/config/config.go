package config

import (
	"fmt"
	"strings"
)

// Backend identifiers for the translation primary path.
const (
	BackendOpenAI = "openai"
	BackendLibre  = "libre"
	BackendNone   = "none"
)

var validFormats = []string{"json", "csv", "text"}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate performs consistency checks on the configuration.
func (c *Config) Validate() error {
	if c.LogLevel != "" && !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level %q (must be one of: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if c.OCR.MinConfidence < 0 || c.OCR.MinConfidence > 1 {
		return fmt.Errorf("invalid min confidence %.2f (must be between 0.0 and 1.0)", c.OCR.MinConfidence)
	}
	if c.OCR.MergeThreshold <= 0 {
		return fmt.Errorf("invalid merge threshold %.2f (must be positive)", c.OCR.MergeThreshold)
	}
	if !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format %q (must be one of: %s)",
			c.Output.Format, strings.Join(validFormats, ", "))
	}
	switch c.Translate.Backend {
	case BackendOpenAI, BackendLibre, BackendNone:
	default:
		return fmt.Errorf("invalid translation backend %q", c.Translate.Backend)
	}
	if c.Translate.BatchSize <= 0 {
		return fmt.Errorf("invalid batch size %d (must be positive)", c.Translate.BatchSize)
	}
	if c.Translate.MaxRetries <= 0 {
		return fmt.Errorf("invalid max retries %d (must be positive)", c.Translate.MaxRetries)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size %d MB", c.Server.MaxUploadMB)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
