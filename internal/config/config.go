package config

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/scantext/internal/pipeline"
	"github.com/MeKo-Tech/scantext/internal/rasterizer"
	"github.com/MeKo-Tech/scantext/internal/recognizer"
)

// DefaultConfig returns the configuration defaults used when neither a
// config file, environment variables, nor flags override them.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Pipeline: PipelineConfig{
			Strategy:   string(pipeline.StrategyEnhanced),
			Language:   recognizer.DefaultLanguage,
			DPI:        rasterizer.DefaultDPI,
			MaxWorkers: 0,
			ScratchDir: "",
		},
		Output: OutputConfig{
			Format: "text",
			File:   "",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      300,
			ShutdownTimeout: 10,
		},
	}
}

// Validate checks the configuration for inconsistent or unusable values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", c.LogLevel)
	}

	if _, err := pipeline.ParseStrategy(c.Pipeline.Strategy); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if c.Pipeline.DPI < 0 {
		return fmt.Errorf("pipeline: dpi must be positive, got %d", c.Pipeline.DPI)
	}
	if c.Pipeline.MaxWorkers < 0 {
		return fmt.Errorf("pipeline: max_workers must not be negative, got %d", c.Pipeline.MaxWorkers)
	}
	if lang := c.Pipeline.Language; lang != "" {
		for _, part := range strings.Split(lang, "+") {
			if part == "" {
				return fmt.Errorf("pipeline: malformed language profile %q", lang)
			}
		}
	}

	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("output: invalid format %q (want text or json)", c.Output.Format)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server: max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}

	return nil
}

// ToPipelineConfig maps the loaded configuration onto pipeline defaults.
func (c *Config) ToPipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.ScratchDir = c.Pipeline.ScratchDir
	if c.Pipeline.Language != "" {
		cfg.Language = c.Pipeline.Language
		cfg.Recognizer.Language = c.Pipeline.Language
	}
	if c.Pipeline.DPI > 0 {
		cfg.DPI = c.Pipeline.DPI
	}
	if c.Pipeline.MaxWorkers > 0 {
		cfg.MaxWorkers = c.Pipeline.MaxWorkers
	}
	if c.Pipeline.TessdataPrefix != "" {
		cfg.Recognizer.TessdataPrefix = c.Pipeline.TessdataPrefix
	}
	return cfg
}
