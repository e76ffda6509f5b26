// Package bootstrap turns CLI options into a ready directive workspace.
package bootstrap

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	directivecmd "github.com/goliatone/go-directive/internal/commands/directive"
	"github.com/goliatone/go-directive/internal/logging"
	"github.com/goliatone/go-directive/internal/logging/console"
	"github.com/goliatone/go-directive/internal/logging/gologger"
	"github.com/goliatone/go-directive/internal/runtimeconfig"
	"github.com/goliatone/go-directive/pkg/interfaces"
)

// Options captures what the CLI passes to Build.
type Options struct {
	// ConfigPath is a YAML configuration file. Empty uses the defaults.
	ConfigPath string
	// Color is auto, always or never. Empty means auto.
	Color  string
	Stdout io.Writer
	Stderr io.Writer
	// Verbose lowers the console level to debug.
	Verbose bool
}

// Module bundles the configuration, workspace and logging of a CLI run.
type Module struct {
	Config    runtimeconfig.Config
	Workspace *directivecmd.Workspace
	Provider  interfaces.LoggerProvider
	Logger    interfaces.Logger
}

// Build loads configuration and constructs the workspace.
func Build(opts Options) (*Module, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	cfg := runtimeconfig.DefaultConfig()
	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		loaded, err := runtimeconfig.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}

	stdoutColor, err := UseColor(opts.Color, opts.Stdout)
	if err != nil {
		return nil, err
	}
	stderrColor, _ := UseColor(opts.Color, opts.Stderr)

	provider, err := LoggerProvider(cfg.Logging, opts.Stderr, stderrColor)
	if err != nil {
		return nil, err
	}

	ws, err := directivecmd.NewWorkspace(cfg,
		directivecmd.WithOutput(opts.Stdout),
		directivecmd.WithColor(stdoutColor),
		directivecmd.WithLoggerProvider(provider),
	)
	if err != nil {
		return nil, fmt.Errorf("initialise workspace: %w", err)
	}

	return &Module{
		Config:    cfg,
		Workspace: ws,
		Provider:  provider,
		Logger:    logging.ModuleLogger(provider, "directive.cli"),
	}, nil
}

// LoggerProvider builds the provider selected by cfg. Console output goes
// to w.
func LoggerProvider(cfg runtimeconfig.LoggingConfig, w io.Writer, color bool) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		level := console.ParseLevel(cfg.Level)
		return console.NewProvider(console.Options{
			Writer:   w,
			MinLevel: &level,
			Color:    color,
		}), nil
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}

// UseColor resolves a color mode for w. Auto enables color for terminals
// unless NO_COLOR is set.
func UseColor(mode string, w io.Writer) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "", "auto":
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		f, ok := w.(*os.File)
		if !ok {
			return false, nil
		}
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()), nil
	default:
		return false, fmt.Errorf("unsupported color mode %q", mode)
	}
}
