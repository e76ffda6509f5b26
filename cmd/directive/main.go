package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/goliatone/go-directive/cmd/directive/internal/bootstrap"
	directivecmd "github.com/goliatone/go-directive/internal/commands/directive"
	"github.com/goliatone/go-directive/internal/files"
	"github.com/goliatone/go-directive/internal/logging"
)

var moduleBuilder = bootstrap.Build

const usage = `usage: directive <command> [flags] [paths]

commands:
  fmt      format Markdown files with directives
  render   render one file to HTML
  inspect  print the tree or token stream of one file as JSON
  check    lint directives against configured rules
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch name, rest := args[0], args[1:]; name {
	case "fmt":
		err = runFormat(ctx, rest, stdout, stderr)
	case "render":
		err = runRender(ctx, rest, stdout, stderr)
	case "inspect":
		err = runInspect(ctx, rest, stdout, stderr)
	case "check":
		err = runCheck(ctx, rest, stdout, stderr)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "directive: unknown command %q\n%s", name, usage)
		return 2
	}

	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	case errors.Is(err, directivecmd.ErrUnformatted), errors.Is(err, directivecmd.ErrLintFindings):
		return 1
	default:
		fmt.Fprintf(stderr, "directive %s: %v\n", args[0], err)
		return 1
	}
}

var errUsage = errors.New("usage")

// common holds the flags every command accepts.
type common struct {
	config  string
	root    string
	color   string
	verbose bool
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *common) {
	fs := flag.NewFlagSet("directive "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	c := &common{}
	fs.StringVar(&c.config, "config", "", "Path to a YAML configuration file")
	fs.StringVar(&c.root, "root", ".", "Directory paths are resolved against")
	fs.StringVar(&c.color, "color", "auto", "Color output: auto, always or never")
	fs.BoolVar(&c.verbose, "v", false, "Log debug entries to stderr")
	return fs, c
}

func (c *common) build(stdout, stderr io.Writer) (*bootstrap.Module, error) {
	module, err := moduleBuilder(bootstrap.Options{
		ConfigPath: c.config,
		Color:      c.color,
		Stdout:     stdout,
		Stderr:     stderr,
		Verbose:    c.verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return module, nil
}

func runFormat(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, c := newFlagSet("fmt", stderr)
	write := fs.Bool("w", false, "Write the result back to the files")
	check := fs.Bool("check", false, "List files that are not formatted and exit with status 1")
	diff := fs.Bool("diff", false, "Print a unified diff instead of the formatted output")
	watch := fs.Bool("watch", false, "Keep formatting files as they change (implies -w)")
	if err := parse(fs, args); err != nil {
		return err
	}

	module, err := c.build(stdout, stderr)
	if err != nil {
		return err
	}
	handler := directivecmd.NewFormatHandler(module.Workspace)
	cmd := directivecmd.FormatCommand{
		Root:  c.root,
		Paths: fs.Args(),
		Write: *write || *watch,
		Check: *check && !*watch,
		Diff:  *diff,
	}
	if err := handler.Execute(ctx, cmd); err != nil || !*watch {
		return err
	}

	cfg := module.Config.Files
	return files.Watch(ctx, c.root, files.WatchOptions{
		Include: cfg.Include,
		Exclude: cfg.Exclude,
		Logger:  logging.FilesLogger(module.Provider),
	}, func(path string) {
		msg := directivecmd.FormatCommand{Root: c.root, Paths: []string{path}, Write: true}
		if err := handler.Execute(ctx, msg); err != nil {
			logging.WithFileContext(module.Logger, path, "format").Error("directive.watch.failed", "error", err)
		}
	})
}

func runRender(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, c := newFlagSet("render", stderr)
	output := fs.String("o", "", "Write HTML to this file instead of stdout")
	if err := parse(fs, args); err != nil {
		return err
	}
	path, err := singlePath(fs, stderr)
	if err != nil {
		return err
	}
	module, err := c.build(stdout, stderr)
	if err != nil {
		return err
	}
	return directivecmd.NewRenderHandler(module.Workspace).Execute(ctx, directivecmd.RenderCommand{
		Root:   c.root,
		Path:   path,
		Output: *output,
	})
}

func runInspect(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, c := newFlagSet("inspect", stderr)
	tokens := fs.Bool("tokens", false, "Print the directive token stream instead of the tree")
	positions := fs.Bool("positions", false, "Include directive positions in the tree")
	if err := parse(fs, args); err != nil {
		return err
	}
	path, err := singlePath(fs, stderr)
	if err != nil {
		return err
	}
	module, err := c.build(stdout, stderr)
	if err != nil {
		return err
	}
	return directivecmd.NewInspectHandler(module.Workspace).Execute(ctx, directivecmd.InspectCommand{
		Root:      c.root,
		Path:      path,
		Tokens:    *tokens,
		Positions: *positions,
	})
}

func runCheck(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, c := newFlagSet("check", stderr)
	if err := parse(fs, args); err != nil {
		return err
	}
	module, err := c.build(stdout, stderr)
	if err != nil {
		return err
	}
	return directivecmd.NewCheckHandler(module.Workspace).Execute(ctx, directivecmd.CheckCommand{
		Root:  c.root,
		Paths: fs.Args(),
	})
}

// parse reports flag errors other than -h as usage errors; the flag set
// already printed them.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

func singlePath(fs *flag.FlagSet, stderr io.Writer) (string, error) {
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "%s: expected exactly one file\n", fs.Name())
		return "", errUsage
	}
	return fs.Arg(0), nil
}
