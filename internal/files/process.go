package files

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-directive/internal/logging"
	"github.com/goliatone/go-directive/pkg/interfaces"
)

// Func handles one path. Returning an error stops the remaining work.
type Func func(ctx context.Context, path string) error

// Options tunes Process.
type Options struct {
	// Workers bounds concurrency. Zero selects GOMAXPROCS.
	Workers int
	Logger  interfaces.Logger
}

// Process runs fn for every path with at most opts.Workers in flight. It
// returns the first error; the context passed to fn is cancelled once any
// call fails.
func Process(ctx context.Context, paths []string, opts Options, fn Func) error {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, path); err != nil {
				logging.WithFileContext(logger, path, "process").Error("files.failed", "error", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
