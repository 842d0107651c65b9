package config

// Config represents the complete configuration for the yomi application.
// Values load from configuration files, environment variables, and
// command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// OCR settings
	OCR OCRConfig `mapstructure:"ocr" yaml:"ocr" json:"ocr"`

	// Translation settings
	Translate TranslateConfig `mapstructure:"translate" yaml:"translate" json:"translate"`

	// Output settings
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server settings (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// OCRConfig contains text detection settings.
type OCRConfig struct {
	Language       string  `mapstructure:"language" yaml:"language" json:"language"`
	MinConfidence  float64 `mapstructure:"min_confidence" yaml:"min_confidence" json:"min_confidence"`
	MergeNearby    bool    `mapstructure:"merge_nearby" yaml:"merge_nearby" json:"merge_nearby"`
	MergeThreshold float64 `mapstructure:"merge_threshold" yaml:"merge_threshold" json:"merge_threshold"`
}

// TranslateConfig contains translation backend settings.
type TranslateConfig struct {
	Backend          string `mapstructure:"backend" yaml:"backend" json:"backend"`
	TargetLanguage   string `mapstructure:"target_language" yaml:"target_language" json:"target_language"`
	APIKey           string `mapstructure:"api_key" yaml:"api_key" json:"api_key"`
	Model            string `mapstructure:"model" yaml:"model" json:"model"`
	BaseURL          string `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
	BatchSize        int    `mapstructure:"batch_size" yaml:"batch_size" json:"batch_size"`
	MaxRetries       int    `mapstructure:"max_retries" yaml:"max_retries" json:"max_retries"`
	FallbackEndpoint string `mapstructure:"fallback_endpoint" yaml:"fallback_endpoint" json:"fallback_endpoint"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format      string `mapstructure:"format" yaml:"format" json:"format"`
	File        string `mapstructure:"file" yaml:"file" json:"file"`
	OverlayPath string `mapstructure:"overlay_path" yaml:"overlay_path" json:"overlay_path"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}
