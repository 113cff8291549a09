// SPDX-License-Identifier: MIT

// Package progress reports per-repository results while a batch runs.
package progress

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/skaphos/gitfleet/internal/model"
	"github.com/skaphos/gitfleet/internal/termstyle"
)

// Reporter receives batch lifecycle events. The engine invokes all three
// methods from its collector goroutine, so implementations can write
// terminal output without additional synchronization.
type Reporter interface {
	// Begin announces the batch size before any repository is processed.
	Begin(total int)
	// Observe is called once per repository result, in completion order.
	Observe(result model.ActionResult)
	// End is called after the last result, before the summary prints.
	End()
}

// Discard drops all events. Used for quiet runs and non-terminal output.
type Discard struct{}

func (Discard) Begin(int)                  {}
func (Discard) Observe(model.ActionResult) {}
func (Discard) End()                       {}

// Bar renders a live single-line counter:
//
//	[12/40] ✓ 9 ⊘ 2 ✗ 1 acme/api-server
//
// The line is redrawn in place and cleared by End so it never survives
// into scrollback. Only suitable for terminals.
type Bar struct {
	out   io.Writer
	color bool
	total int

	done    int
	ok      int
	skipped int
	failed  int
	width   int
}

// NewBar returns a Bar writing to out, usually stderr so machine-readable
// stdout stays clean.
func NewBar(out io.Writer, color bool) *Bar {
	return &Bar{out: out, color: color}
}

func (b *Bar) Begin(total int) {
	b.total = total
	b.done = 0
	b.ok = 0
	b.skipped = 0
	b.failed = 0
	b.width = 0
	b.redraw("")
}

func (b *Bar) Observe(result model.ActionResult) {
	b.done++
	switch result.Outcome {
	case model.OutcomeSuccess:
		b.ok++
	case model.OutcomeSkipped:
		b.skipped++
	case model.OutcomeFailed:
		b.failed++
	}
	b.redraw(result.Repo)
}

// End blanks the counter line so the summary starts on a clean row.
func (b *Bar) End() {
	if b.width == 0 {
		return
	}
	fmt.Fprintf(b.out, "\r%*s\r", b.width, "")
	b.width = 0
}

func (b *Bar) redraw(current string) {
	var line strings.Builder
	width := 0
	put := func(s string) {
		line.WriteString(s)
		width += utf8.RuneCountInString(s)
	}
	// ANSI escapes occupy no terminal columns; the glyphs themselves are
	// single-column runes.
	glyph := func(g, color string) {
		line.WriteString(termstyle.Paint(b.color, g, color))
		width++
	}

	put(fmt.Sprintf("[%d/%d] ", b.done, b.total))
	glyph(termstyle.GlyphOK, termstyle.Healthy)
	put(fmt.Sprintf(" %d ", b.ok))
	glyph(termstyle.GlyphSkip, termstyle.Warn)
	put(fmt.Sprintf(" %d ", b.skipped))
	glyph(termstyle.GlyphFail, termstyle.Error)
	put(fmt.Sprintf(" %d", b.failed))
	if current != "" {
		put(" " + current)
	}

	// Pad with spaces so a shorter redraw fully covers the previous line.
	pad := b.width - width
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(b.out, "\r%s%*s", line.String(), pad, "")
	b.width = width
}
