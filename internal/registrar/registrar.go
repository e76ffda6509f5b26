// Package registrar installs the directive grammar, tree construction and
// serialization into a host pipeline configuration.
package registrar

import (
	"github.com/goliatone/go-directive/internal/grammar"
	"github.com/goliatone/go-directive/internal/logging"
	"github.com/goliatone/go-directive/internal/pipeline"
	"github.com/goliatone/go-directive/internal/serialize"
	"github.com/goliatone/go-directive/internal/tree"
	"github.com/goliatone/go-directive/pkg/interfaces"
)

// Options tunes a registration. The zero value is valid.
type Options struct {
	// Grammar options are passed to the syntax extension.
	Grammar []grammar.Option
	// Advisory receives the legacy host warning. Nil selects
	// ProcessAdvisory().
	Advisory *Advisory
	// Logger records registrations at debug level.
	Logger interfaces.LoggerProvider
}

// Register appends one syntax, one tree and one serialize extension to cfg.
// Existing entries are kept and nil lists are created. When the host is
// legacy the advisory is emitted; registration still happens and the
// processor built from cfg ignores the lists.
func Register(cfg *pipeline.Config, opts Options) {
	if cfg == nil {
		return
	}
	logger := logging.RegistrarLogger(opts.Logger)

	if cfg.Legacy() {
		advisory := opts.Advisory
		if advisory == nil {
			advisory = ProcessAdvisory()
		}
		if advisory.Emit() {
			logger.Debug("registrar.advisory", "capabilities", len(cfg.Capabilities))
		}
	}

	cfg.Syntax = append(cfg.Syntax, grammar.NewExtension(opts.Grammar...))
	cfg.Tree = append(cfg.Tree, tree.NewExtension())
	cfg.Serialize = append(cfg.Serialize, serialize.NewExtension())

	logger.Debug("registrar.registered",
		"syntax", len(cfg.Syntax),
		"tree", len(cfg.Tree),
		"serialize", len(cfg.Serialize),
	)
}
