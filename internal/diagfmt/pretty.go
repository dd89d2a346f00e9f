package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"sable/internal/diag"
	"sable/internal/source"
)

// PrettyOpts tune the human-readable renderer.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	Width     int // перенос сообщения по ширине, 0 - без переноса
	ShowNotes bool
	ShowFixes bool
}

type palette struct {
	err, warn, info *color.Color
	code, path      *color.Color
	note, help      *color.Color
}

func paint(on bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if on {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func newPalette(on bool) palette {
	return palette{
		err:  paint(on, color.FgRed, color.Bold),
		warn: paint(on, color.FgYellow, color.Bold),
		info: paint(on, color.FgCyan),
		code: paint(on, color.Faint),
		path: paint(on, color.Bold),
		note: paint(on, color.FgBlue),
		help: paint(on, color.FgGreen),
	}
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем Notes и подсказку с отступом.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s: %s %s: ",
			p.path.Sprint(formatSpan(fs, d.Primary, opts.PathMode)),
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
		)
		writeWrapped(w, d.Message, opts.Width, "    ")
		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "    %s %s: ", p.note.Sprint("note:"), formatSpan(fs, n.Span, opts.PathMode))
				writeWrapped(w, n.Msg, opts.Width, "      ")
			}
		}
		if text := d.Suggestion.Text(); opts.ShowFixes && text != "" {
			fmt.Fprintf(w, "    %s ", p.help.Sprint("help:"))
			writeWrapped(w, text, opts.Width, "      ")
		}
	}
}

// writeWrapped prints msg, breaking it between words so that no line is
// wider than width display columns. Continuation lines start with indent.
func writeWrapped(w io.Writer, msg string, width int, indent string) {
	if width <= 0 || runewidth.StringWidth(msg) <= width {
		fmt.Fprintln(w, msg)
		return
	}
	line := 0
	for i, word := range strings.Fields(msg) {
		ww := runewidth.StringWidth(word)
		if i > 0 {
			if line+1+ww > width {
				fmt.Fprint(w, "\n"+indent)
				line = 0
			} else {
				fmt.Fprint(w, " ")
				line++
			}
		}
		fmt.Fprint(w, word)
		line += ww
	}
	fmt.Fprintln(w)
}

// Summary prints the closing "N errors, M warnings" line.
func Summary(w io.Writer, errs, warns int, useColor bool) {
	p := newPalette(useColor)
	c := p.info
	switch {
	case errs > 0:
		c = p.err
	case warns > 0:
		c = p.warn
	}
	fmt.Fprintln(w, c.Sprintf("%s, %s", plural(errs, "error"), plural(warns, "warning")))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
