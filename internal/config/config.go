package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Input       []string          `yaml:"input" mapstructure:"input"`
	Keywords    KeywordsConfig    `yaml:"keywords" mapstructure:"keywords"`
	Corrections CorrectionsConfig `yaml:"corrections" mapstructure:"corrections"`
	Pipeline    PipelineConfig    `yaml:"pipeline" mapstructure:"pipeline"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Export      ExportConfig      `yaml:"export" mapstructure:"export"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// KeywordsConfig points at the keyword mapping (code;de;en CSV or XLSX).
type KeywordsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// CorrectionsConfig configures paragraph corrections. An empty Path uses
// the built-in list; Disabled skips corrections entirely.
type CorrectionsConfig struct {
	Path     string `yaml:"path" mapstructure:"path"`
	Disabled bool   `yaml:"disabled" mapstructure:"disabled"`
}

// GapRange is an inclusive range of citation numbers missing from a volume.
type GapRange struct {
	Start int `yaml:"start" mapstructure:"start"`
	End   int `yaml:"end" mapstructure:"end"`
}

// PipelineConfig configures the parse run.
type PipelineConfig struct {
	Concurrency        int                   `yaml:"concurrency" mapstructure:"concurrency"`
	FindAuthors        bool                  `yaml:"find_authors" mapstructure:"find_authors"`
	ResolveRepetitions bool                  `yaml:"resolve_repetitions" mapstructure:"resolve_repetitions"`
	MaxCitationGap     int                   `yaml:"max_citation_gap" mapstructure:"max_citation_gap"`
	KnownGaps          map[string][]GapRange `yaml:"known_gaps" mapstructure:"known_gaps"`
	TempDir            string                `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ExportConfig configures output files.
type ExportConfig struct {
	Dir     string   `yaml:"dir" mapstructure:"dir"`
	Formats []string `yaml:"formats" mapstructure:"formats"`
}

// ServerConfig configures the read API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	TimeoutSecs    int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TURKOLOGY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input", []string{})
	v.SetDefault("keywords.path", "")
	v.SetDefault("corrections.path", "")
	v.SetDefault("corrections.disabled", false)
	v.SetDefault("pipeline.concurrency", 4)
	v.SetDefault("pipeline.find_authors", true)
	v.SetDefault("pipeline.resolve_repetitions", true)
	v.SetDefault("pipeline.max_citation_gap", 500)
	v.SetDefault("pipeline.temp_dir", "")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "turkology.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("export.dir", "out")
	v.SetDefault("export.formats", []string{"json"})
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.timeout_secs", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration holds what the given mode needs.
// Modes: "parse", "store", "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "parse":
		if c.Pipeline.Concurrency < 1 || c.Pipeline.Concurrency > 64 {
			errs = append(errs, "pipeline.concurrency must be between 1 and 64")
		}
		if c.Pipeline.MaxCitationGap < 1 {
			errs = append(errs, "pipeline.max_citation_gap must be > 0")
		}
		for volume, gaps := range c.Pipeline.KnownGaps {
			for _, g := range gaps {
				if g.Start > g.End {
					errs = append(errs, fmt.Sprintf("pipeline.known_gaps[%s]: start %d after end %d", volume, g.Start, g.End))
				}
			}
		}
		errs = append(errs, c.storeErrors()...)
	case "store":
		errs = append(errs, c.storeErrors()...)
	case "serve":
		errs = append(errs, c.storeErrors()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) storeErrors() []string {
	var errs []string
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be sqlite or postgres", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
