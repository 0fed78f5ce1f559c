package config

// Config represents the complete configuration for the scantext
// application. It covers all commands (extract, serve) and supports
// loading from configuration files, environment variables, and
// command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Pipeline configuration
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`

	// Output configuration (for extract command)
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// PipelineConfig contains extraction pipeline settings.
type PipelineConfig struct {
	// Strategy selects the default extraction strategy
	// (enhanced, standard, alternative).
	Strategy string `mapstructure:"strategy" yaml:"strategy" json:"strategy"`

	// Language is the recognition language profile, languages joined
	// by "+" (e.g. "eng+vie").
	Language string `mapstructure:"language" yaml:"language" json:"language"`

	// DPI is the raster resolution for page rendering.
	DPI int `mapstructure:"dpi" yaml:"dpi" json:"dpi"`

	// MaxWorkers caps page-level concurrency (0 = number of CPUs).
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers" json:"max_workers"`

	// ScratchDir is the base directory for run-scoped scratch arenas
	// ("" = system temp directory).
	ScratchDir string `mapstructure:"scratch_dir" yaml:"scratch_dir" json:"scratch_dir"`

	// TessdataPrefix optionally points at a custom tessdata directory.
	TessdataPrefix string `mapstructure:"tessdata_prefix" yaml:"tessdata_prefix" json:"tessdata_prefix"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"` // text or json
	File   string `mapstructure:"file" yaml:"file" json:"file"`       // "" = stdout
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int64  `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}
