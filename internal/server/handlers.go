package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MeKo-Tech/yomi/internal/pipeline"
	"github.com/MeKo-Tech/yomi/internal/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "golang.org/x/image/bmp"
)

const (
	formatJSON    = "json"
	formatCSV     = "csv"
	formatText    = "text"
	formatOverlay = "overlay"
)

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/v1/page", s.corsMiddleware(s.pageHandler))
	mux.Handle("/metrics", promhttp.Handler())
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("failed to encode health response", "error", err)
	}
}

// pageHandler recognizes and translates text on an uploaded page image.
func (s *Server) pageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	maxBytes := s.cfg.MaxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxBytes {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return
	}
	uploadSizeBytes.Observe(float64(len(imageData)))

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	p, err := s.buildPipeline(r)
	if err != nil {
		s.writeErrorResponse(w, fmt.Sprintf("Invalid request options: %v", err), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if s.cfg.TimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSec)*time.Second)
		defer cancel()
	}

	start := time.Now()
	res, err := p.Process(ctx, img)
	pageProcessingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		pageRequestsTotal.WithLabelValues("error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("Page processing failed: %v", err), http.StatusInternalServerError)
		return
	}
	pageRequestsTotal.WithLabelValues("ok").Inc()
	pageRegionsDetected.Observe(float64(len(res.Regions)))

	s.writePageResponse(w, r, img, res)
}

// buildPipeline assembles a per-request pipeline from the base configuration
// and any form overrides.
func (s *Server) buildPipeline(r *http.Request) (*pipeline.Pipeline, error) {
	cfg := s.cfg.PipelineConfig
	if v := r.FormValue("language"); v != "" {
		cfg.Language = v
	}
	if v := r.FormValue("target"); v != "" {
		cfg.TargetLanguage = v
	}
	if v := r.FormValue("min_confidence"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("min_confidence: %w", err)
		}
		cfg.MinConfidence = f
	}
	if v := r.FormValue("merge"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		cfg.MergeNearby = b
	}

	return pipeline.NewBuilder().
		WithConfig(cfg).
		WithEngineCache(s.engines).
		WithTranslator(s.translator).
		Build()
}

// writePageResponse renders the result in the requested output format.
func (s *Server) writePageResponse(w http.ResponseWriter, r *http.Request, img image.Image, res *pipeline.Result) {
	format := r.FormValue("format")
	if format == "" {
		format = r.URL.Query().Get("format")
	}

	switch format {
	case formatCSV:
		out, err := pipeline.ToCSV(res)
		if err != nil {
			s.writeErrorResponse(w, fmt.Sprintf("formatting failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(out))

	case formatText:
		out, err := pipeline.ToPlainText(res)
		if err != nil {
			s.writeErrorResponse(w, fmt.Sprintf("formatting failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(out))

	case formatOverlay:
		ov := pipeline.RenderOverlay(img, res)
		if ov == nil {
			s.writeErrorResponse(w, "overlay rendering failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, ov)

	case "", formatJSON:
		resp := PageResponse{
			Success:  true,
			Language: res.Language,
			Width:    res.Width,
			Height:   res.Height,
			Items:    pageItems(res),
		}
		if wantOverlay, _ := strconv.ParseBool(r.FormValue("overlay")); wantOverlay {
			encoded, err := encodeOverlay(img, res)
			if err != nil {
				s.writeErrorResponse(w, fmt.Sprintf("overlay rendering failed: %v", err), http.StatusInternalServerError)
				return
			}
			resp.Overlay = encoded
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("failed to encode page response", "error", err)
		}

	default:
		s.writeErrorResponse(w, fmt.Sprintf("unknown format %q", format), http.StatusBadRequest)
	}
}

func pageItems(res *pipeline.Result) []PageItem {
	items := make([]PageItem, len(res.Regions))
	for i, reg := range res.Regions {
		box := make([][2]float64, len(reg.Box))
		for j, pt := range reg.Box {
			box[j] = [2]float64{pt.X, pt.Y}
		}
		items[i] = PageItem{
			Index:       reg.Index,
			Text:        reg.Text,
			Translation: reg.Translation,
			Confidence:  reg.Confidence,
			Box:         box,
		}
	}
	return items
}

// encodeOverlay renders the annotated page and returns it as base64 PNG.
func encodeOverlay(img image.Image, res *pipeline.Result) (string, error) {
	ov := pipeline.RenderOverlay(img, res)
	if ov == nil {
		return "", fmt.Errorf("nil overlay")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, ov); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := PageResponse{
		Success: false,
		Error:   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
