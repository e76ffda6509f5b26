// Package diffview prints line diffs between two versions of a file in
// unified form.
package diffview

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Context is the number of unchanged lines shown around each change.
const Context = 3

type op int

const (
	opEqual op = iota
	opDelete
	opInsert
)

type line struct {
	op   op
	text string
}

// lines returns the line-level edit script turning before into after.
func lines(before, after string) []line {
	dmp := diffpatch.New()
	a, b, table := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), table)

	var out []line
	for _, d := range diffs {
		kind := opEqual
		switch d.Type {
		case diffpatch.DiffDelete:
			kind = opDelete
		case diffpatch.DiffInsert:
			kind = opInsert
		}
		for _, text := range strings.SplitAfter(d.Text, "\n") {
			if text != "" {
				out = append(out, line{op: kind, text: text})
			}
		}
	}
	return out
}

// Options tunes Write.
type Options struct {
	// Color highlights removed and added lines.
	Color bool
}

// Write prints the unified diff of before and after under the given name.
// Nothing is written when the inputs are equal.
func Write(w io.Writer, name string, before, after []byte, opts Options) error {
	script := lines(string(before), string(after))

	del := color.New(color.FgRed)
	ins := color.New(color.FgGreen)
	hdr := color.New(color.FgCyan)
	for _, c := range []*color.Color{del, ins, hdr} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	hunks := group(script)
	if len(hunks) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "--- a/%s\n+++ b/%s\n", name, name); err != nil {
		return err
	}
	for _, h := range hunks {
		if _, err := hdr.Fprintf(w, "@@ -%d,%d +%d,%d @@\n", h.oldStart, h.oldLen, h.newStart, h.newLen); err != nil {
			return err
		}
		for _, l := range script[h.from:h.to] {
			text := l.text
			if !strings.HasSuffix(text, "\n") {
				text += "\n\\ No newline at end of file\n"
			}
			var err error
			switch l.op {
			case opDelete:
				_, err = del.Fprint(w, "-"+text)
			case opInsert:
				_, err = ins.Fprint(w, "+"+text)
			default:
				_, err = fmt.Fprint(w, " "+text)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

type hunk struct {
	from, to         int
	oldStart, oldLen int
	newStart, newLen int
}

// group splits the script into hunks of changes with Context lines around
// them. Hunks whose context overlaps are merged.
func group(script []line) []hunk {
	var out []hunk
	for i := 0; i < len(script); {
		if script[i].op == opEqual {
			i++
			continue
		}
		from := max(i-Context, 0)
		if n := len(out); n > 0 && from <= out[n-1].to {
			from = out[n-1].from
			out = out[:n-1]
		}
		end := i
		for end < len(script) {
			if script[end].op != opEqual {
				end++
				continue
			}
			run := end
			for run < len(script) && script[run].op == opEqual {
				run++
			}
			if run == len(script) || run-end > 2*Context {
				break
			}
			end = run
		}
		to := min(end+Context, len(script))
		out = append(out, span(script, from, to))
		i = end
	}
	return out
}

func span(script []line, from, to int) hunk {
	h := hunk{from: from, to: to, oldStart: 1, newStart: 1}
	for _, l := range script[:from] {
		if l.op != opInsert {
			h.oldStart++
		}
		if l.op != opDelete {
			h.newStart++
		}
	}
	for _, l := range script[from:to] {
		if l.op != opInsert {
			h.oldLen++
		}
		if l.op != opDelete {
			h.newLen++
		}
	}
	if h.oldLen == 0 {
		h.oldStart--
	}
	if h.newLen == 0 {
		h.newStart--
	}
	return h
}
