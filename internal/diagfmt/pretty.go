package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"rill/internal/diag"
	"rill/internal/source"
)

type palette struct {
	sev    map[diag.Severity]*color.Color
	code   *color.Color
	path   *color.Color
	gutter *color.Color
	caret  *color.Color
	note   *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   mk(color.FgRed, color.Bold),
			diag.SevWarning: mk(color.FgYellow, color.Bold),
			diag.SevInfo:    mk(color.FgCyan, color.Bold),
		},
		code:   mk(color.Bold),
		path:   mk(color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgRed, color.Bold),
		note:   mk(color.FgCyan),
	}
}

// Pretty writes diagnostics for people. Call bag.Sort() first for a stable
// order. Each entry reads
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	   1 | [1 2]
//	     |    ^
//
// followed by notes when opts.ShowNotes is set.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	var sb strings.Builder
	for _, d := range bag.Items() {
		writeDiagnostic(&sb, d, fs, opts, p)
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(&sb, "... %d more diagnostic(s) not shown\n", n)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeDiagnostic(sb *strings.Builder, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	sev, ok := p.sev[d.Severity]
	if !ok {
		sev = p.code
	}

	file := lookupFile(fs, d.Primary.File)
	if file != nil {
		start, _ := fs.Resolve(d.Primary)
		sb.WriteString(p.path.Sprintf("%s:%d:%d", formatPath(file, fs, opts.PathMode), start.Line, start.Col))
		sb.WriteString(": ")
	}
	sb.WriteString(sev.Sprint(d.Severity.String()))
	sb.WriteByte(' ')
	sb.WriteString(p.code.Sprint(d.Code.ID()))
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	sb.WriteByte('\n')

	if file != nil {
		writeExcerpt(sb, fs, file, d.Primary, opts, p)
	}

	if !opts.ShowNotes && d.Code != diag.ObsTimings {
		return
	}
	for _, note := range d.Notes {
		sb.WriteString("  ")
		sb.WriteString(p.note.Sprint("note"))
		sb.WriteString(": ")
		sb.WriteString(note.Msg)
		sb.WriteByte('\n')
	}
}

func lookupFile(fs *source.FileSet, id source.FileID) *source.File {
	if fs == nil || int(id) >= fs.Len() {
		return nil
	}
	return fs.Get(id)
}

// writeExcerpt prints the first line of span with a caret underline. Widths
// are measured in terminal columns so wide and combining characters keep the
// caret under the right place.
func writeExcerpt(sb *strings.Builder, fs *source.FileSet, file *source.File, span source.Span, opts PrettyOpts, p palette) {
	start, end := fs.Resolve(span)
	line := strings.ReplaceAll(file.Line(start.Line), "\t", " ")

	from := clampCol(start.Col, line)
	to := len(line)
	if end.Line == start.Line {
		to = max(clampCol(end.Col, line), from)
	}

	lead := runewidth.StringWidth(line[:from])
	width := max(runewidth.StringWidth(line[from:to]), 1)
	if opts.Width > 0 && runewidth.StringWidth(line) > opts.Width {
		line = runewidth.Truncate(line, opts.Width, "…")
	}

	num := strconv.FormatUint(uint64(start.Line), 10)
	pad := strings.Repeat(" ", len(num))

	sb.WriteString(p.gutter.Sprintf(" %s | ", num))
	sb.WriteString(line)
	sb.WriteByte('\n')
	sb.WriteString(p.gutter.Sprintf(" %s | ", pad))
	sb.WriteString(strings.Repeat(" ", lead))
	sb.WriteString(p.caret.Sprint("^" + strings.Repeat("~", width-1)))
	sb.WriteByte('\n')
}

func clampCol(col uint32, line string) int {
	if col == 0 {
		return 0
	}
	return min(int(col-1), len(line))
}
