package diagfmt

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"

	"sable/internal/diag"
	"sable/internal/source"
)

type shortLine struct {
	sev, code, loc, msg string
}

// Short prints one aligned line per diagnostic:
//
//	error    SCP1002  main.sbl:3:3   unresolved reference to 'nope'
//
// Notes and suggestions follow as "note" and "help" lines when requested.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode, withNotes bool) {
	var lines []shortLine
	for _, d := range bag.Items() {
		lines = append(lines, shortLine{d.Severity.Label(), d.Code.ID(), formatSpan(fs, d.Primary, mode), d.Message})
		if !withNotes {
			continue
		}
		for _, n := range d.Notes {
			lines = append(lines, shortLine{"note", d.Code.ID(), formatSpan(fs, n.Span, mode), n.Msg})
		}
		if text := d.Suggestion.Text(); text != "" {
			lines = append(lines, shortLine{"help", d.Code.ID(), formatSpan(fs, d.Primary, mode), text})
		}
	}
	var sevW, codeW, locW int
	for _, l := range lines {
		sevW = max(sevW, runewidth.StringWidth(l.sev))
		codeW = max(codeW, runewidth.StringWidth(l.code))
		locW = max(locW, runewidth.StringWidth(l.loc))
	}
	for _, l := range lines {
		fmt.Fprintf(w, "%s  %s  %s  %s\n",
			runewidth.FillRight(l.sev, sevW),
			runewidth.FillRight(l.code, codeW),
			runewidth.FillRight(l.loc, locW),
			l.msg)
	}
}
