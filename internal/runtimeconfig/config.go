package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-directive/internal/grammar"
	"github.com/goliatone/go-directive/internal/htmlrender"
	"github.com/goliatone/go-directive/internal/lint"
	"github.com/goliatone/go-directive/internal/pipeline"
	"github.com/goliatone/go-directive/internal/registrar"
	"github.com/goliatone/go-directive/pkg/interfaces"
)

var ErrConfigInvalid = errors.New("directive config: invalid field values")
var ErrLoggingProviderUnknown = errors.New("directive config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("directive config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("directive config: logging format is invalid")

// ErrLegacyHostWithoutExtensions flags a host that declares a legacy
// interface and extension support at the same time.
var ErrLegacyHostWithoutExtensions = errors.New("directive config: legacy capabilities cannot be combined with extensions")

// Config aggregates the settings of the directive tooling.
type Config struct {
	Grammar GrammarConfig `yaml:"grammar" json:"grammar"`
	Host    HostConfig    `yaml:"host" json:"host"`
	Files   FilesConfig   `yaml:"files" json:"files"`
	Render  RenderConfig  `yaml:"render" json:"render"`
	Lint    lint.Config   `yaml:"lint" json:"lint"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// GrammarConfig tunes how directives are recognized.
type GrammarConfig struct {
	TextPriority  int    `yaml:"text_priority" json:"text_priority"`
	BlockPriority int    `yaml:"block_priority" json:"block_priority"`
	TextBoundary  string `yaml:"text_boundary" json:"text_boundary"`
	DisableText   bool   `yaml:"disable_text" json:"disable_text"`
}

// HostConfig describes the Markdown pipeline directives are installed into.
type HostConfig struct {
	pipeline.HostOptions `yaml:",inline"`
	Capabilities         []string `yaml:"capabilities" json:"capabilities"`
}

// FilesConfig selects the files the CLI works on.
type FilesConfig struct {
	Include []string `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude" json:"exclude"`
	Workers int      `yaml:"workers" json:"workers"`
}

// RenderConfig tunes HTML output.
type RenderConfig struct {
	SlugIDs bool `yaml:"slug_ids" json:"slug_ids"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider" json:"provider"`
	Level     string   `yaml:"level" json:"level"`
	Format    string   `yaml:"format" json:"format"`
	AddSource bool     `yaml:"add_source" json:"add_source"`
	Focus     []string `yaml:"focus" json:"focus"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		Grammar: GrammarConfig{
			TextPriority:  grammar.DefaultTextPriority,
			BlockPriority: grammar.DefaultBlockPriority,
			TextBoundary:  grammar.BoundaryStrict.String(),
		},
		Host: HostConfig{
			Capabilities: []string{string(pipeline.CapabilityExtensions)},
		},
		Files: FilesConfig{
			Include: []string{"**/*.md", "**/*.markdown"},
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "warn",
		},
	}
}

// LoadFile reads a YAML file over DefaultConfig and validates the result.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate performs field and consistency checks.
func (cfg Config) Validate() error {
	err := validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Grammar),
		validation.Field(&cfg.Host),
		validation.Field(&cfg.Files),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	declared := pipeline.Config{}
	for _, c := range cfg.Host.Capabilities {
		declared.Declare(pipeline.Capability(c))
	}
	if declared.Has(pipeline.CapabilityExtensions) &&
		(declared.Has(pipeline.CapabilityLegacyParser) || declared.Has(pipeline.CapabilityLegacyCompiler)) {
		return ErrLegacyHostWithoutExtensions
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Logging.Provider))
	switch provider {
	case "", "console", "gologger":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// Validate implements validation.Validatable.
func (g GrammarConfig) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.TextPriority, validation.Min(1)),
		validation.Field(&g.BlockPriority, validation.Min(1)),
		validation.Field(&g.TextBoundary, validation.In("", "strict", "loose")),
	)
}

// Validate implements validation.Validatable.
func (h HostConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Extensions, validation.Each(validation.By(func(value any) error {
			if name, _ := value.(string); !pipeline.KnownExtension(name) {
				return validation.NewError("directive.host.extension_unknown", "unknown extension")
			}
			return nil
		}))),
		validation.Field(&h.Capabilities, validation.Each(validation.In(
			string(pipeline.CapabilityExtensions),
			string(pipeline.CapabilityLegacyParser),
			string(pipeline.CapabilityLegacyCompiler),
		))),
	)
}

// Validate implements validation.Validatable.
func (f FilesConfig) Validate() error {
	pattern := validation.By(func(value any) error {
		if p, _ := value.(string); !doublestar.ValidatePattern(p) {
			return validation.NewError("directive.files.pattern_invalid", "invalid glob pattern")
		}
		return nil
	})
	return validation.ValidateStruct(&f,
		validation.Field(&f.Include, validation.Each(pattern)),
		validation.Field(&f.Exclude, validation.Each(pattern)),
		validation.Field(&f.Workers, validation.Min(0)),
	)
}

// GrammarOptions converts the grammar settings into extension options.
// Validate must have accepted cfg.
func (cfg Config) GrammarOptions() []grammar.Option {
	boundary, _ := grammar.ParseBoundary(cfg.Grammar.TextBoundary)
	opts := []grammar.Option{grammar.WithTextBoundary(boundary)}
	if cfg.Grammar.TextPriority > 0 {
		opts = append(opts, grammar.WithTextPriority(cfg.Grammar.TextPriority))
	}
	if cfg.Grammar.BlockPriority > 0 {
		opts = append(opts, grammar.WithBlockPriority(cfg.Grammar.BlockPriority))
	}
	if cfg.Grammar.DisableText {
		opts = append(opts, grammar.WithoutText())
	}
	return opts
}

// PipelineConfig returns a pipeline configuration with the host options
// and declared capabilities. Extension lists are left empty.
func (cfg Config) PipelineConfig() *pipeline.Config {
	out := &pipeline.Config{Host: cfg.Host.HostOptions}
	for _, c := range cfg.Host.Capabilities {
		out.Declare(pipeline.Capability(c))
	}
	return out
}

// ProcessorOptions carries the runtime pieces a processor needs besides
// the configuration.
type ProcessorOptions struct {
	Advisory *registrar.Advisory
	Logger   interfaces.LoggerProvider
	Render   []htmlrender.Option
}

// NewProcessor registers the directive extensions and the HTML renderer on
// the pipeline configuration described by cfg. Slug ids and safe mode
// follow the render and host sections.
func (cfg Config) NewProcessor(opts ProcessorOptions) *pipeline.Processor {
	pc := cfg.PipelineConfig()
	registrar.Register(pc, registrar.Options{
		Grammar:  cfg.GrammarOptions(),
		Advisory: opts.Advisory,
		Logger:   opts.Logger,
	})
	render := append([]htmlrender.Option(nil), opts.Render...)
	if cfg.Render.SlugIDs {
		render = append(render, htmlrender.WithSlugIDs())
	}
	if cfg.Host.SafeMode {
		render = append(render, htmlrender.WithSafeMode())
	}
	pc.Render = append(pc.Render, htmlrender.NewRenderer(render...))
	return pipeline.New(pc)
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
