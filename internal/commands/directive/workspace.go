// Package directivecmd exposes the directive tooling operations as
// go-command handlers.
package directivecmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/goliatone/go-directive/internal/files"
	"github.com/goliatone/go-directive/internal/lint"
	"github.com/goliatone/go-directive/internal/logging"
	"github.com/goliatone/go-directive/internal/pipeline"
	"github.com/goliatone/go-directive/internal/registrar"
	"github.com/goliatone/go-directive/internal/runtimeconfig"
	"github.com/goliatone/go-directive/pkg/interfaces"
)

// Workspace is the state shared by the handlers: the configuration, one
// processor, the linter and the output stream.
type Workspace struct {
	Config    runtimeconfig.Config
	Processor *pipeline.Processor
	Linter    *lint.Linter
	Out       io.Writer
	Color     bool

	provider interfaces.LoggerProvider
	advisory *registrar.Advisory
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*Workspace)

// WithOutput sets where command results are printed. Defaults to stdout.
func WithOutput(w io.Writer) WorkspaceOption {
	return func(ws *Workspace) {
		if w != nil {
			ws.Out = w
		}
	}
}

// WithColor enables colored diffs.
func WithColor(enabled bool) WorkspaceOption {
	return func(ws *Workspace) { ws.Color = enabled }
}

// WithLoggerProvider sets the provider handlers and registration log to.
func WithLoggerProvider(provider interfaces.LoggerProvider) WorkspaceOption {
	return func(ws *Workspace) { ws.provider = provider }
}

// WithAdvisory overrides the advisory used for legacy hosts.
func WithAdvisory(advisory *registrar.Advisory) WorkspaceOption {
	return func(ws *Workspace) { ws.advisory = advisory }
}

// NewWorkspace validates cfg and builds the processor and linter.
func NewWorkspace(cfg runtimeconfig.Config, opts ...WorkspaceOption) (*Workspace, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ws := &Workspace{Config: cfg, Out: os.Stdout}
	for _, opt := range opts {
		opt(ws)
	}
	linter, err := lint.New(cfg.Lint)
	if err != nil {
		return nil, err
	}
	ws.Linter = linter
	ws.Processor = cfg.NewProcessor(runtimeconfig.ProcessorOptions{
		Advisory: ws.advisory,
		Logger:   ws.provider,
	})
	return ws, nil
}

func (ws *Workspace) logger() interfaces.Logger {
	return logging.CommandsLogger(ws.provider)
}

func (ws *Workspace) filesOptions() files.Options {
	return files.Options{
		Workers: ws.Config.Files.Workers,
		Logger:  logging.FilesLogger(ws.provider),
	}
}

// resolve returns the cleaned explicit paths, or the discovered ones when
// none are given.
func (ws *Workspace) resolve(root string, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return files.Discover(os.DirFS(root), ws.Config.Files.Include, ws.Config.Files.Exclude)
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, cleanPath(p))
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// document is a loaded file.
type document struct {
	raw    []byte
	source files.Source
	mode   os.FileMode
}

func load(root, rel string) (document, error) {
	full := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		return document{}, err
	}
	raw, err := os.ReadFile(full)
	if err != nil {
		return document{}, err
	}
	src, err := files.Split(raw)
	if err != nil {
		return document{}, fmt.Errorf("%s: %w", rel, err)
	}
	return document{raw: raw, source: src, mode: info.Mode().Perm()}, nil
}

// frontMatterShift returns the byte and line counts that body positions
// are offset by in the file.
func (d document) frontMatterShift() (offset, lines int) {
	return len(d.source.FrontMatter), bytes.Count(d.source.FrontMatter, []byte("\n"))
}
