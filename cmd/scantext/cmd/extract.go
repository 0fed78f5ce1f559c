package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/MeKo-Tech/scantext/internal/config"
	"github.com/MeKo-Tech/scantext/internal/pipeline"
	"github.com/spf13/cobra"
)

// extractCmd represents the extract command.
var extractCmd = &cobra.Command{
	Use:   "extract [file...]",
	Short: "Extract text from scanned PDF files",
	Long: `Extract text from scanned PDF files using OCR.

Each page is rendered to an image, optionally enhanced, and recognized with
Tesseract. Page texts are joined in page order. With the default enhanced
strategy unreadable pages are skipped and reported instead of aborting the
document.

Examples:
  scantext extract document.pdf
  scantext extract scan.pdf --language vie --dpi 400
  scantext extract *.pdf --format json --output results.json
  scantext extract legacy.pdf --strategy standard`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("strategy", "s", "", "extraction strategy (enhanced, standard, alternative)")
	extractCmd.Flags().StringP("language", "l", "", "recognition language profile, languages joined by '+' (e.g. eng+vie)")
	extractCmd.Flags().Int("dpi", 0, "raster resolution in dots per inch")
	extractCmd.Flags().Int("workers", 0, "max worker goroutines for page processing (0=NumCPU)")
	extractCmd.Flags().String("scratch-dir", "", "base directory for temporary page images (default: system temp)")
	extractCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
	extractCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	extractCmd.Flags().Bool("progress", false, "show a per-page progress bar on stderr")
}

// extractConfig holds the effective settings for one extract invocation.
type extractConfig struct {
	strategy   string
	language   string
	dpi        int
	workers    int
	scratchDir string
	format     string
	outputFile string
	progress   bool
}

// configToExtractConfig maps centralized configuration to extractConfig.
// CLI flags override config file values through Viper's precedence system.
func configToExtractConfig(centralCfg *config.Config, cmd *cobra.Command) (*extractConfig, error) {
	setStringWithFlag := func(configValue, flagName string, target *string) {
		*target = configValue
		if cmd.Flags().Changed(flagName) {
			*target, _ = cmd.Flags().GetString(flagName)
		}
	}
	setIntWithFlag := func(configValue int, flagName string, target *int) {
		*target = configValue
		if cmd.Flags().Changed(flagName) {
			*target, _ = cmd.Flags().GetInt(flagName)
		}
	}

	cfg := &extractConfig{}
	setStringWithFlag(centralCfg.Pipeline.Strategy, "strategy", &cfg.strategy)
	setStringWithFlag(centralCfg.Pipeline.Language, "language", &cfg.language)
	setIntWithFlag(centralCfg.Pipeline.DPI, "dpi", &cfg.dpi)
	setIntWithFlag(centralCfg.Pipeline.MaxWorkers, "workers", &cfg.workers)
	setStringWithFlag(centralCfg.Pipeline.ScratchDir, "scratch-dir", &cfg.scratchDir)
	setStringWithFlag(centralCfg.Output.Format, "format", &cfg.format)
	setStringWithFlag(centralCfg.Output.File, "output", &cfg.outputFile)
	cfg.progress, _ = cmd.Flags().GetBool("progress")

	if _, err := pipeline.ParseStrategy(cfg.strategy); err != nil {
		return nil, err
	}
	if cfg.dpi < 0 {
		return nil, fmt.Errorf("invalid dpi: %d (must be positive)", cfg.dpi)
	}
	if cfg.format != "text" && cfg.format != "json" {
		return nil, fmt.Errorf("invalid output format: %s (must be one of: text, json)", cfg.format)
	}
	return cfg, nil
}

// fileResult pairs one input file with its extraction result.
type fileResult struct {
	File        string           `json:"file"`
	Outcome     pipeline.Outcome `json:"outcome"`
	PageCount   int              `json:"page_count"`
	FailedPages []int            `json:"failed_pages,omitempty"`
	Text        string           `json:"text"`
	Error       string           `json:"error,omitempty"`
}

// runExtract handles the main extraction logic.
func runExtract(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files provided")
	}

	centralCfg := GetConfig()
	cfg, err := configToExtractConfig(centralCfg, cmd)
	if err != nil {
		return err
	}

	pipelineCfg := centralCfg.ToPipelineConfig()
	if cfg.scratchDir != "" {
		pipelineCfg.ScratchDir = cfg.scratchDir
	}

	pl, err := pipeline.FromConfig(pipelineCfg).Build()
	if err != nil {
		return fmt.Errorf("failed to build extraction pipeline: %w", err)
	}

	opts := pipeline.Options{
		Strategy:   pipeline.Strategy(cfg.strategy),
		Language:   cfg.language,
		DPI:        cfg.dpi,
		MaxWorkers: cfg.workers,
	}
	if cfg.progress {
		opts.Progress = pipeline.NewConsoleProgress(cmd.ErrOrStderr())
	}

	results := make([]fileResult, 0, len(args))
	var failed int
	for _, file := range args {
		fr := extractFile(cmd.Context(), pl, file, opts)
		if fr.Error != "" {
			failed++
		}
		results = append(results, fr)
	}

	if err := outputResults(results, cfg.format, cfg.outputFile); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(args))
	}
	return nil
}

// extractFile runs one PDF through the pipeline and never aborts the batch;
// per-file failures are reported in the result.
func extractFile(ctx context.Context, pl *pipeline.Pipeline, file string, opts pipeline.Options) fileResult {
	fr := fileResult{File: file}

	data, err := os.ReadFile(file)
	if err != nil {
		fr.Error = fmt.Sprintf("read file: %v", err)
		return fr
	}

	result, err := pl.ExtractTextContext(ctx, data, opts)
	if err != nil {
		fr.Error = err.Error()
		return fr
	}

	fr.Outcome = result.Outcome
	fr.PageCount = result.PageCount
	fr.FailedPages = result.FailedPages
	fr.Text = result.Text
	return fr
}

// outputResults formats the extraction results and writes them to the
// output file or stdout.
func outputResults(results []fileResult, format, outputFile string) error {
	var output string
	switch format {
	case "json":
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		output = string(data) + "\n"
	default: // text
		output = formatText(results)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Results written to %s\n", outputFile)
		return nil
	}
	fmt.Print(output)
	return nil
}

// formatText renders results as plain text. A single successful file prints
// its text verbatim; batches get per-file separators.
func formatText(results []fileResult) string {
	if len(results) == 1 && results[0].Error == "" {
		return ensureTrailingNewline(results[0].Text)
	}

	var b strings.Builder
	for i, fr := range results {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "File: %s\n", fr.File)
		if fr.Error != "" {
			fmt.Fprintf(&b, "Error: %s\n", fr.Error)
			continue
		}
		fmt.Fprintf(&b, "Pages: %d", fr.PageCount)
		if len(fr.FailedPages) > 0 {
			fmt.Fprintf(&b, " (failed: %v)", fr.FailedPages)
		}
		b.WriteString("\n\n")
		b.WriteString(ensureTrailingNewline(fr.Text))
	}
	return b.String()
}

func ensureTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
