package registrar

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-directive/pkg/interfaces"
)

// AdvisoryMessage is emitted once when directives are registered on a host
// that cannot use them.
const AdvisoryMessage = "[directive] Warning: please upgrade to a pipeline with extension support to use directives"

// Advisory emits AdvisoryMessage at most once. Entries go to Logger when
// set, otherwise to Writer, otherwise to stderr.
type Advisory struct {
	Logger interfaces.Logger
	Writer io.Writer

	fired atomic.Bool
}

// NewAdvisory returns an advisory that writes to w.
func NewAdvisory(w io.Writer) *Advisory {
	return &Advisory{Writer: w}
}

var (
	processAdvisory     *Advisory
	processAdvisoryOnce sync.Once
)

// ProcessAdvisory returns the advisory shared by registrations that do not
// supply their own.
func ProcessAdvisory() *Advisory {
	processAdvisoryOnce.Do(func() {
		processAdvisory = &Advisory{}
	})
	return processAdvisory
}

// Emit writes the advisory unless it already fired. It reports whether this
// call wrote it.
func (a *Advisory) Emit() bool {
	if a == nil || !a.fired.CompareAndSwap(false, true) {
		return false
	}
	if a.Logger != nil {
		a.Logger.Warn(AdvisoryMessage)
		return true
	}
	w := a.Writer
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintln(w, AdvisoryMessage)
	return true
}

// Fired reports whether the advisory was emitted.
func (a *Advisory) Fired() bool {
	return a != nil && a.fired.Load()
}

// Reset re-arms the advisory.
func (a *Advisory) Reset() {
	if a != nil {
		a.fired.Store(false)
	}
}
