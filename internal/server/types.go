package server

import (
	"fmt"

	"github.com/MeKo-Tech/yomi/internal/ocr"
	"github.com/MeKo-Tech/yomi/internal/pipeline"
	"github.com/MeKo-Tech/yomi/internal/translate"
)

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	PipelineConfig pipeline.Config
}

// Server holds the HTTP server state and dependencies.
//
// The OCR engine cache and translator are shared across requests; a
// lightweight pipeline is assembled per request so callers can override
// language and merge options through form fields.
type Server struct {
	cfg        Config
	engines    *ocr.Cache
	translator *translate.Translator
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// PageItem is one recognized region in a page response.
type PageItem struct {
	Index       int          `json:"index"`
	Text        string       `json:"text"`
	Translation string       `json:"translation,omitempty"`
	Confidence  float64      `json:"conf"`
	Box         [][2]float64 `json:"box"`
}

// PageResponse is the JSON body for /v1/page.
type PageResponse struct {
	Success  bool       `json:"success"`
	Language string     `json:"language,omitempty"`
	Width    int        `json:"width,omitempty"`
	Height   int        `json:"height,omitempty"`
	Items    []PageItem `json:"items,omitempty"`
	Overlay  string     `json:"overlay,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// NewServer creates a server around shared OCR and translation backends.
func NewServer(cfg Config, engines *ocr.Cache, translator *translate.Translator) (*Server, error) {
	if engines == nil {
		return nil, fmt.Errorf("engine cache is required")
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 50
	}
	return &Server{
		cfg:        cfg,
		engines:    engines,
		translator: translator,
	}, nil
}
