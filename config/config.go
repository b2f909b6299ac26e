// Package config loads the run configuration from config.yaml, a .env file
// and VR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/warp/benefit-engine/factory"
	"github.com/warp/benefit-engine/source"
	"github.com/warp/benefit-engine/source/csvdir"
	"github.com/warp/benefit-engine/source/xlsx"
	"github.com/warp/benefit-engine/store/sqlite"
	"github.com/warp/benefit-engine/voucher"
)

// DefaultPath is used when no config path is given. A missing file at this
// path falls back to the built-in defaults.
const DefaultPath = "config.yaml"

// Source kinds.
const (
	KindXLSX   = "xlsx"
	KindCSV    = "csv"
	KindSQLite = "sqlite"
)

// Environment overrides.
const (
	EnvRule       = "VR_POS15_REGRA"
	EnvSourceKind = "VR_SOURCE_KIND"
	EnvSourcePath = "VR_SOURCE_PATH"
	EnvServerAddr = "VR_SERVER_ADDR"
	EnvWorkers    = "VR_WORKERS"
)

// ErrInvalidConfig is returned when the configuration fails validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the whole application configuration.
type Config struct {
	Pos15Rule string `yaml:"pos15_regra" validate:"required,oneof=integral pro-rata"`

	Source     SourceConfig     `yaml:"source"`
	Server     ServerConfig     `yaml:"server"`
	Calculator CalculatorConfig `yaml:"calculator"`
	Report     ReportConfig     `yaml:"report"`

	// Files maps an input key (ativos, admissoes, ...) to a file-name fragment.
	Files map[string]string `yaml:"arquivos_entrada"`
	// Sheets maps an input key to a sheet-name hint.
	Sheets map[string]string `yaml:"sheets"`

	// RulesFile optionally replaces the built-in region rules and header synonyms.
	RulesFile string `yaml:"rules_file"`

	layout source.Layout
	rules  *factory.Rules
}

// SourceConfig selects the input backend.
type SourceConfig struct {
	Kind string `yaml:"kind" validate:"oneof=xlsx csv sqlite"`
	// Path is the default input location: a directory, or the database
	// file for sqlite.
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP front-end.
type ServerConfig struct {
	Addr           string   `yaml:"addr" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins" validate:"dive,required"`
	// InputRoot and OutputRoot confine the directories a request may name.
	InputRoot  string `yaml:"input_root" validate:"required"`
	OutputRoot string `yaml:"output_root" validate:"required"`
}

// CalculatorConfig tunes the calculation.
type CalculatorConfig struct {
	Workers int `yaml:"workers" validate:"gte=1,lte=64"`
}

// ReportConfig tunes the outputs.
type ReportConfig struct {
	CSV bool `yaml:"csv"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Pos15Rule: string(voucher.Pos15ProRata),
		Source:    SourceConfig{Kind: KindXLSX, Path: "documentos"},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
			InputRoot:      ".",
			OutputRoot:     ".",
		},
		Calculator: CalculatorConfig{Workers: 1},
	}
}

// Load reads the configuration. The .env file of the working directory is
// loaded first when present; VR_* variables override the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}
	cfg := Default()
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
		slog.Warn("config: file not found, using defaults", "path", path)
	default:
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse builds a configuration from YAML bytes without reading the
// environment.
func Parse(b []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvRule); v != "" {
		c.Pos15Rule = v
	}
	if v := os.Getenv(EnvSourceKind); v != "" {
		c.Source.Kind = v
	}
	if v := os.Getenv(EnvSourcePath); v != "" {
		c.Source.Path = v
	}
	if v := os.Getenv(EnvServerAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvWorkers, err)
		}
		c.Calculator.Workers = n
	}
	return nil
}

func (c *Config) validateAndNormalize() error {
	if rule, err := voucher.ParsePos15Rule(c.Pos15Rule); err == nil {
		c.Pos15Rule = string(rule)
	}
	c.Source.Kind = strings.ToLower(strings.TrimSpace(c.Source.Kind))
	if c.Source.Kind == "" {
		c.Source.Kind = KindXLSX
	}
	if c.Calculator.Workers == 0 {
		c.Calculator.Workers = 1
	}

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if len(c.Files) == 0 {
		c.layout = source.DefaultLayout()
		sheets, unknown := source.LayoutFromKeys(nil, c.Sheets)
		if len(unknown) > 0 {
			return fmt.Errorf("%w: unknown input keys: %s", ErrInvalidConfig, strings.Join(unknown, ", "))
		}
		c.layout.Sheets = sheets.Sheets
	} else {
		layout, unknown := source.LayoutFromKeys(c.Files, c.Sheets)
		if len(unknown) > 0 {
			return fmt.Errorf("%w: unknown input keys: %s", ErrInvalidConfig, strings.Join(unknown, ", "))
		}
		c.layout = layout
	}

	c.rules = factory.Defaults()
	if c.RulesFile != "" {
		rules, err := factory.NewRulesFactory().LoadFile(c.RulesFile)
		if err != nil {
			return fmt.Errorf("config: rules_file: %w", err)
		}
		c.rules = rules
	}
	return nil
}

// Rule is the configured post-15 termination rule.
func (c *Config) Rule() voucher.Pos15Rule { return voucher.Pos15Rule(c.Pos15Rule) }

// Layout is the input file layout.
func (c *Config) Layout() source.Layout { return c.layout }

// Rules are the region rules and header synonyms.
func (c *Config) Rules() *factory.Rules { return c.rules }

// NewSource builds the configured input backend.
func (c *Config) NewSource(logger *slog.Logger) (source.Source, error) {
	switch c.Source.Kind {
	case KindXLSX:
		return xlsx.New(c.layout, logger), nil
	case KindCSV:
		return csvdir.New(c.layout, logger), nil
	case KindSQLite:
		return sqlite.NewSource(logger), nil
	}
	return nil, fmt.Errorf("%w: source.kind %q", ErrInvalidConfig, c.Source.Kind)
}
