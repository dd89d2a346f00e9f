package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"sable/internal/ast"
	"sable/internal/sema"
	"sable/internal/source"
	"sable/internal/symbols"
	"sable/internal/types"
)

// ScopeDump carries what DumpScopes prints. Sema is optional; with it every
// binding also shows its type.
type ScopeDump struct {
	Builder *ast.Builder
	Symbols *symbols.Result
	Sema    *sema.Result
	Files   *source.FileSet
	Mode    PathMode
}

// DumpScopes prints the scope tree of every resolved unit, imported units
// first. Each scope lists its bindings in binding order:
//
//	#1 global main.sbl:1:1
//	  limit  global  Int  main.sbl:3:1
//	  #2 function main main.sbl:5:1
func DumpScopes(w io.Writer, d ScopeDump) {
	if d.Symbols == nil || d.Symbols.Table == nil {
		return
	}
	for _, unit := range d.Symbols.UnitOrder {
		if root, ok := d.Symbols.Units[unit]; ok {
			d.scope(w, root, 0)
		}
	}
}

func (d ScopeDump) scope(w io.Writer, id symbols.ScopeID, depth int) {
	s := d.Symbols.Table.Scopes.Get(id)
	if s == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	header := fmt.Sprintf("%s#%d %s", indent, id, s.Kind)
	if s.Owner.IsValid() {
		header += " " + d.Builder.NameOf(s.Owner)
	}
	header += " " + formatSpan(d.Files, s.Span, d.Mode)
	if s.Import.IsValid() {
		header += fmt.Sprintf(" (imports #%d)", s.Import)
	}
	fmt.Fprintln(w, header)

	rows := make([][4]string, 0, len(s.Keys))
	var keyW, kindW, typW int
	for _, key := range s.Keys {
		decl := d.Builder.Decls.Get(s.Entries[key])
		if decl == nil {
			continue
		}
		row := [4]string{key.String(), decl.Kind.String(), d.typeOf(s.Entries[key]), formatSpan(d.Files, decl.Span, d.Mode)}
		keyW = max(keyW, runewidth.StringWidth(row[0]))
		kindW = max(kindW, runewidth.StringWidth(row[1]))
		typW = max(typW, runewidth.StringWidth(row[2]))
		rows = append(rows, row)
	}
	for _, row := range rows {
		line := indent + "  " + runewidth.FillRight(row[0], keyW) + "  " + runewidth.FillRight(row[1], kindW)
		if typW > 0 {
			line += "  " + runewidth.FillRight(row[2], typW)
		}
		fmt.Fprintln(w, line+"  "+row[3])
	}
	for _, child := range s.Children {
		d.scope(w, child, depth+1)
	}
}

func (d ScopeDump) typeOf(decl ast.DeclID) string {
	if d.Sema == nil {
		return ""
	}
	if t, ok := d.Sema.DeclTypes[decl]; ok && t != types.NoTypeID {
		return types.Label(d.Sema.TypeInterner, t)
	}
	if t, ok := d.Sema.Nominal[decl]; ok {
		return types.Label(d.Sema.TypeInterner, t)
	}
	return "-"
}
