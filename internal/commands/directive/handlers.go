package directivecmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-directive/ast"
	"github.com/goliatone/go-directive/internal/commands"
	"github.com/goliatone/go-directive/internal/diffview"
	"github.com/goliatone/go-directive/internal/files"
	"github.com/goliatone/go-directive/internal/inspect"
	"github.com/goliatone/go-directive/internal/lint"
	"github.com/goliatone/go-directive/internal/logging"
)

const (
	formatOperation  = "directive.format"
	renderOperation  = "directive.render"
	inspectOperation = "directive.inspect"
	checkOperation   = "directive.check"
)

var (
	// ErrUnformatted is returned by a format check when files would change.
	ErrUnformatted = errors.New("directive command: files are not formatted")
	// ErrLintFindings is returned when the linter reports problems.
	ErrLintFindings = errors.New("directive command: lint findings")
)

var (
	_ command.Commander[FormatCommand]  = (*FormatHandler)(nil)
	_ command.Commander[RenderCommand]  = (*RenderHandler)(nil)
	_ command.Commander[InspectCommand] = (*InspectHandler)(nil)
	_ command.Commander[CheckCommand]   = (*CheckHandler)(nil)
)

// FormatHandler runs FormatCommand.
type FormatHandler struct {
	inner *commands.Handler[FormatCommand]
}

type formatResult struct {
	before, after []byte
}

func (r formatResult) changed() bool {
	return !bytes.Equal(r.before, r.after)
}

// NewFormatHandler creates a format handler bound to ws.
func NewFormatHandler(ws *Workspace, opts ...commands.HandlerOption[FormatCommand]) *FormatHandler {
	logger := ws.logger()

	exec := func(ctx context.Context, msg FormatCommand) error {
		paths, err := ws.resolve(msg.Root, msg.Paths)
		if err != nil {
			return err
		}
		results := make([]formatResult, len(paths))
		index := make(map[string]int, len(paths))
		for i, p := range paths {
			index[p] = i
		}

		err = files.Process(ctx, paths, ws.filesOptions(), func(ctx context.Context, rel string) error {
			doc, err := load(msg.Root, rel)
			if err != nil {
				return err
			}
			body, err := ws.Processor.Format(doc.source.Body)
			if err != nil {
				return fmt.Errorf("%s: %w", rel, err)
			}
			res := formatResult{before: doc.raw, after: doc.source.Join(body)}
			results[index[rel]] = res
			if msg.Write && res.changed() {
				full := filepath.Join(msg.Root, filepath.FromSlash(rel))
				if err := os.WriteFile(full, res.after, doc.mode); err != nil {
					return err
				}
				logging.WithFileContext(logger, rel, "write").Info("directive.format.written")
			}
			return nil
		})
		if err != nil {
			return err
		}

		unformatted := 0
		for i, rel := range paths {
			res := results[i]
			if res.changed() {
				unformatted++
			}
			switch {
			case msg.Diff:
				if err := diffview.Write(ws.Out, rel, res.before, res.after, diffview.Options{Color: ws.Color}); err != nil {
					return err
				}
			case msg.Check:
				if res.changed() {
					fmt.Fprintln(ws.Out, rel)
				}
			case msg.Write:
			default:
				if _, err := ws.Out.Write(res.after); err != nil {
					return err
				}
			}
		}
		logging.WithFields(logger, map[string]any{
			"files":   len(paths),
			"changed": unformatted,
		}).Info("directive.format.completed")

		if msg.Check && unformatted > 0 {
			return fmt.Errorf("%w: %d of %d", ErrUnformatted, unformatted, len(paths))
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[FormatCommand]{
		commands.WithLogger[FormatCommand](logger),
		commands.WithOperation[FormatCommand](formatOperation),
		commands.WithMessageFields(func(msg FormatCommand) map[string]any {
			fields := map[string]any{"root": msg.Root}
			if len(msg.Paths) > 0 {
				fields["paths"] = len(msg.Paths)
			}
			if msg.Write {
				fields["write"] = true
			}
			if msg.Check {
				fields["check"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[FormatCommand](logger)),
	}
	return &FormatHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[FormatCommand].
func (h *FormatHandler) Execute(ctx context.Context, msg FormatCommand) error {
	return h.inner.Execute(ctx, msg)
}

// RenderHandler runs RenderCommand.
type RenderHandler struct {
	inner *commands.Handler[RenderCommand]
}

// NewRenderHandler creates a render handler bound to ws.
func NewRenderHandler(ws *Workspace, opts ...commands.HandlerOption[RenderCommand]) *RenderHandler {
	logger := ws.logger()

	exec := func(ctx context.Context, msg RenderCommand) error {
		rel := cleanPath(msg.Path)
		doc, err := load(msg.Root, rel)
		if err != nil {
			return err
		}
		html, err := ws.Processor.RenderSource(doc.source.Body)
		if err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}
		if msg.Output == "" {
			_, err = ws.Out.Write(html)
			return err
		}
		if err := os.WriteFile(msg.Output, html, 0o644); err != nil {
			return err
		}
		logging.WithFileContext(logger, msg.Output, "render").Info("directive.render.written")
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderCommand]{
		commands.WithLogger[RenderCommand](logger),
		commands.WithOperation[RenderCommand](renderOperation),
		commands.WithMessageFields(func(msg RenderCommand) map[string]any {
			return map[string]any{"path": msg.Path}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderCommand](logger)),
	}
	return &RenderHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[RenderCommand].
func (h *RenderHandler) Execute(ctx context.Context, msg RenderCommand) error {
	return h.inner.Execute(ctx, msg)
}

// InspectHandler runs InspectCommand.
type InspectHandler struct {
	inner *commands.Handler[InspectCommand]
}

// Inspection is the JSON document printed by InspectCommand.
type Inspection struct {
	Path        string          `json:"path"`
	FrontMatter map[string]any  `json:"frontmatter,omitempty"`
	Tree        *inspect.Node   `json:"tree,omitempty"`
	Tokens      []inspect.Token `json:"tokens,omitempty"`
}

// NewInspectHandler creates an inspect handler bound to ws.
func NewInspectHandler(ws *Workspace, opts ...commands.HandlerOption[InspectCommand]) *InspectHandler {
	logger := ws.logger()

	exec := func(ctx context.Context, msg InspectCommand) error {
		rel := cleanPath(msg.Path)
		doc, err := load(msg.Root, rel)
		if err != nil {
			return err
		}
		parsed := ws.Processor.Parse(doc.source.Body)
		offset, lines := doc.frontMatterShift()

		out := Inspection{Path: rel}
		if len(doc.source.Meta) > 0 {
			out.FrontMatter = doc.source.Meta
		}
		if msg.Tokens {
			out.Tokens = inspect.Tokens(parsed)
			for i := range out.Tokens {
				out.Tokens[i].Start = shift(out.Tokens[i].Start, offset, lines)
				out.Tokens[i].End = shift(out.Tokens[i].End, offset, lines)
			}
		} else {
			var treeOpts []inspect.Option
			if msg.Positions {
				treeOpts = append(treeOpts, inspect.WithPositions())
			}
			out.Tree = inspect.Tree(parsed, treeOpts...)
			shiftTree(out.Tree, offset, lines)
		}

		enc := json.NewEncoder(ws.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	handlerOpts := []commands.HandlerOption[InspectCommand]{
		commands.WithLogger[InspectCommand](logger),
		commands.WithOperation[InspectCommand](inspectOperation),
		commands.WithMessageFields(func(msg InspectCommand) map[string]any {
			return map[string]any{"path": msg.Path, "tokens": msg.Tokens}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[InspectCommand](logger)),
	}
	return &InspectHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[InspectCommand].
func (h *InspectHandler) Execute(ctx context.Context, msg InspectCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CheckHandler runs CheckCommand.
type CheckHandler struct {
	inner *commands.Handler[CheckCommand]
}

// NewCheckHandler creates a lint handler bound to ws.
func NewCheckHandler(ws *Workspace, opts ...commands.HandlerOption[CheckCommand]) *CheckHandler {
	logger := ws.logger()

	exec := func(ctx context.Context, msg CheckCommand) error {
		paths, err := ws.resolve(msg.Root, msg.Paths)
		if err != nil {
			return err
		}
		results := make([][]lint.Finding, len(paths))
		index := make(map[string]int, len(paths))
		for i, p := range paths {
			index[p] = i
		}

		err = files.Process(ctx, paths, ws.filesOptions(), func(ctx context.Context, rel string) error {
			doc, err := load(msg.Root, rel)
			if err != nil {
				return err
			}
			offset, lines := doc.frontMatterShift()
			findings := ws.Linter.Check(ws.Processor.Parse(doc.source.Body))
			for i := range findings {
				findings[i].Position = shift(findings[i].Position, offset, lines)
			}
			results[index[rel]] = findings
			return nil
		})
		if err != nil {
			return err
		}

		total := 0
		for i, rel := range paths {
			for _, f := range results[i] {
				fmt.Fprintf(ws.Out, "%s:%s\n", rel, f)
				total++
			}
		}
		logging.WithFields(logger, map[string]any{
			"files":    len(paths),
			"findings": total,
		}).Info("directive.check.completed")
		if total > 0 {
			return fmt.Errorf("%w: %d", ErrLintFindings, total)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[CheckCommand]{
		commands.WithLogger[CheckCommand](logger),
		commands.WithOperation[CheckCommand](checkOperation),
		commands.WithMessageFields(func(msg CheckCommand) map[string]any {
			return map[string]any{"root": msg.Root, "paths": len(msg.Paths)}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[CheckCommand](logger)),
	}
	return &CheckHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

// Execute satisfies command.Commander[CheckCommand].
func (h *CheckHandler) Execute(ctx context.Context, msg CheckCommand) error {
	return h.inner.Execute(ctx, msg)
}

// shift moves a body position into file coordinates. Zero positions belong
// to constructed nodes and stay zero.
func shift(p ast.Position, offset, lines int) ast.Position {
	if p.Line == 0 {
		return p
	}
	p.Offset += offset
	p.Line += lines
	return p
}

func shiftTree(n *inspect.Node, offset, lines int) {
	if n == nil {
		return
	}
	if n.Position != nil {
		n.Position.Start = shift(n.Position.Start, offset, lines)
		n.Position.End = shift(n.Position.End, offset, lines)
	}
	for _, c := range n.Children {
		shiftTree(c, offset, lines)
	}
}
