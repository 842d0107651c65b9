package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/yomi/internal/config"
	"github.com/MeKo-Tech/yomi/internal/pipeline"
	"github.com/MeKo-Tech/yomi/internal/utils"
	"github.com/spf13/cobra"
)

const (
	outputFormatJSON = "json"
	outputFormatCSV  = "csv"
	outputFormatText = "text"
)

// imageCmd represents the image command.
var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Recognize and translate text on page images",
	Long: `Process one or more page images: recognize text, sort it into reading
order, merge nearby fragments, and translate the result.

Supported formats: JPEG, PNG, BMP

Examples:
  yomi image page.png
  yomi image page.png --language ja --target en
  yomi image page.png --format csv --output results.csv
  yomi image page.png --overlay annotated.png`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg, err := imageConfig(cmd)
		if err != nil {
			return err
		}

		outputFile := cfg.Output.File
		overlayPath := cfg.Output.OverlayPath
		if len(args) > 1 && (outputFile != "" || overlayPath != "") {
			return errors.New("--output and --overlay require a single input file")
		}

		p, err := pipeline.NewBuilder().
			WithConfig(cfg.PipelineConfig()).
			WithTranslator(buildTranslator(cfg)).
			Build()
		if err != nil {
			return fmt.Errorf("failed to build pipeline: %w", err)
		}

		for _, path := range args {
			if err := processImageFile(cmd, p, cfg, path); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		return nil
	},
}

// imageConfig merges the loaded configuration with command flag overrides
// and validates the result.
func imageConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := GetConfig()

	if cmd.Flags().Changed("language") {
		cfg.OCR.Language, _ = cmd.Flags().GetString("language")
	}
	if cmd.Flags().Changed("min-confidence") {
		cfg.OCR.MinConfidence, _ = cmd.Flags().GetFloat64("min-confidence")
	}
	if cmd.Flags().Changed("merge") {
		cfg.OCR.MergeNearby, _ = cmd.Flags().GetBool("merge")
	}
	if cmd.Flags().Changed("merge-threshold") {
		cfg.OCR.MergeThreshold, _ = cmd.Flags().GetFloat64("merge-threshold")
	}
	if cmd.Flags().Changed("target") {
		cfg.Translate.TargetLanguage, _ = cmd.Flags().GetString("target")
	}
	if cmd.Flags().Changed("backend") {
		cfg.Translate.Backend, _ = cmd.Flags().GetString("backend")
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format, _ = cmd.Flags().GetString("format")
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.File, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("overlay") {
		cfg.Output.OverlayPath, _ = cmd.Flags().GetString("overlay")
	}
	if noTranslate, _ := cmd.Flags().GetBool("no-translate"); noTranslate {
		cfg.Translate.Backend = config.BackendNone
		cfg.Translate.TargetLanguage = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func processImageFile(cmd *cobra.Command, p *pipeline.Pipeline, cfg *config.Config, path string) error {
	slog.Info("processing image", "file", path)

	img, meta, err := utils.LoadImage(path)
	if err != nil {
		return err
	}
	slog.Debug("image loaded", "width", meta.Width, "height", meta.Height, "format", meta.Format)

	res, err := p.Process(cmd.Context(), img)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	var out string
	switch cfg.Output.Format {
	case outputFormatCSV:
		out, err = pipeline.ToCSV(res)
	case outputFormatText:
		out, err = pipeline.ToPlainText(res)
	default:
		out, err = pipeline.ToJSON(res)
	}
	if err != nil {
		return fmt.Errorf("formatting failed: %w", err)
	}

	if cfg.Output.File != "" {
		if err := os.WriteFile(cfg.Output.File, []byte(out), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), out); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	}

	if cfg.Output.OverlayPath != "" {
		ov := pipeline.RenderOverlay(img, res)
		if ov == nil {
			return errors.New("overlay rendering failed")
		}
		if err := utils.SaveImage(ov, cfg.Output.OverlayPath); err != nil {
			return fmt.Errorf("failed to save overlay: %w", err)
		}
		slog.Info("overlay written", "file", cfg.Output.OverlayPath)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(imageCmd)
	imageCmd.Flags().StringP("language", "l", "", "source language (ja, ch_sim, ko, ... or auto)")
	imageCmd.Flags().Float64P("min-confidence", "c", 0.35, "minimum recognition confidence (0.0-1.0)")
	imageCmd.Flags().Bool("merge", true, "merge nearby text fragments")
	imageCmd.Flags().Float64("merge-threshold", 50, "fragment merge distance in pixels")
	imageCmd.Flags().StringP("target", "t", "", "target translation language")
	imageCmd.Flags().String("backend", "", "translation backend (openai, libre, none)")
	imageCmd.Flags().Bool("no-translate", false, "skip translation entirely")
	imageCmd.Flags().StringP("format", "f", "json", "output format (json, csv, text)")
	imageCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	imageCmd.Flags().String("overlay", "", "write annotated overlay PNG to this path")
}
