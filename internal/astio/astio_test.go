package astio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/go-test/deep"

	"sable/internal/ast"
	"sable/internal/testkit"
)

const program = `{
  "version": 1,
  "units": [
    {
      "path": "main.sbl",
      "imports": [{"path": "lib.sbl", "span": {"line": 1, "col": 1}}],
      "enums": [{"name": "Color", "consts": [{"name": "Red", "span": {"line": 2, "col": 12}}], "span": {"line": 2, "col": 1}}],
      "globals": [{"name": "g", "type": {"kind": "named", "name": "Int", "span": {"line": 3, "col": 11}},
                   "init": {"kind": "lit", "lit": "int", "value": "1", "span": {"line": 3, "col": 17}},
                   "mods": ["const"], "span": {"line": 3, "col": 1}}],
      "classes": [{
        "name": "Box", "mods": ["public"],
        "type_params": [{"name": "T", "constraint": "scalar", "span": {"line": 4, "col": 11}}],
        "fields": [{"name": "v", "type": {"kind": "named", "name": "T", "span": {"line": 5, "col": 6}}, "span": {"line": 5, "col": 3}}],
        "methods": [{"name": "get", "ret": {"kind": "named", "name": "T", "span": {"line": 6, "col": 12}},
                     "body": [{"kind": "return", "value": {"kind": "field", "recv": {"kind": "this", "span": {"line": 6, "col": 23}}, "name": "v", "span": {"line": 6, "col": 23}}, "span": {"line": 6, "col": 16}}],
                     "span": {"line": 6, "col": 3}},
                    {"name": "put", "no_body": true, "span": {"line": 7, "col": 3}}],
        "span": {"line": 4, "col": 1}
      }],
      "main": {"name": "main", "span": {"line": 9, "col": 1}, "body": [
        {"kind": "for", "var": "i", "from": {"kind": "lit", "lit": "int", "value": "0", "span": {"line": 10, "col": 12}},
         "to": {"kind": "name", "name": "g", "span": {"line": 10, "col": 15}},
         "body": {"kind": "block", "stmts": [
           {"kind": "if", "cond": {"kind": "binary", "op": "<", "left": {"kind": "name", "name": "i", "span": {"line": 11, "col": 9}},
                                   "right": {"kind": "lit", "lit": "int", "value": "2", "span": {"line": 11, "col": 13}}, "span": {"line": 11, "col": 9}},
            "then": {"kind": "block", "span": {"line": 11, "col": 16}}, "span": {"line": 11, "col": 5}}
         ], "span": {"line": 10, "col": 18}}, "span": {"line": 10, "col": 3}},
        {"kind": "case", "subject": {"kind": "name", "name": "g", "span": {"line": 13, "col": 8}},
         "arms": [{"values": [{"kind": "lit", "lit": "int", "value": "1", "span": {"line": 14, "col": 5}}],
                   "body": {"kind": "block", "span": {"line": 14, "col": 8}}, "span": {"line": 14, "col": 5}}],
         "span": {"line": 13, "col": 3}}
      ]}
    },
    {
      "path": "lib.sbl",
      "functions": [{"name": "twice", "params": [{"name": "x", "type": {"kind": "named", "name": "Int", "span": {"line": 1, "col": 16}}, "mods": ["in"], "span": {"line": 1, "col": 13}}],
                     "ret": {"kind": "named", "name": "Int", "span": {"line": 1, "col": 23}},
                     "body": [{"kind": "return", "value": {"kind": "binary", "op": "*", "left": {"kind": "name", "name": "x", "span": {"line": 1, "col": 34}}, "right": {"kind": "lit", "lit": "int", "value": "2", "span": {"line": 1, "col": 38}}, "span": {"line": 1, "col": 34}}, "span": {"line": 1, "col": 27}}],
                     "span": {"line": 1, "col": 1}}]
    }
  ]
}`

func decodeJSON(t *testing.T, text string) *Document {
	t.Helper()
	doc, err := Decode(strings.NewReader(text), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestLoadBuildsTree(t *testing.T) {
	l := NewLoader()
	root, err := l.Load(decodeJSON(t, program))
	if err != nil {
		t.Fatal(err)
	}
	if err := testkit.CheckTreeInvariants(l.B, root); err != nil {
		t.Fatal(err)
	}
	u := l.B.Units.Get(root)
	if len(u.Imports) != 1 || len(u.Enums) != 1 || len(u.Globals) != 1 || len(u.Classes) != 1 || !u.Main.IsValid() {
		t.Fatalf("unexpected unit shape %+v", u)
	}

	imp, _ := l.B.Decls.Import(u.Imports[0])
	lib := l.B.Units.Get(imp.Target)
	if lib == nil || len(lib.Functions) != 1 || l.B.NameOf(lib.Functions[0]) != "twice" {
		t.Fatal("import must link to the lib unit of the same document")
	}
	if f := l.Files.Get(lib.File); f == nil || f.Path != "lib.sbl" {
		t.Fatalf("lib unit registered under %+v", f)
	}

	g := l.B.Decls.Get(u.Globals[0])
	if !g.Mods.Has(ast.ModConst) || g.Span.Start.Line != 3 {
		t.Fatalf("global lost modifiers or span: %+v", g)
	}

	cls, _ := l.B.Decls.Class(u.Classes[0])
	if len(cls.TypeParams) != 1 || len(cls.Methods) != 2 {
		t.Fatalf("unexpected class payload %+v", cls)
	}
	tp, _ := l.B.Decls.TemplateParam(cls.TypeParams[0])
	if tp.Constraint != ast.ConstraintScalar {
		t.Fatalf("constraint %s", tp.Constraint)
	}
	put, _ := l.B.Decls.Fn(cls.Methods[1])
	if put.Body.IsValid() {
		t.Fatal("no_body method must stay bodiless")
	}
	if owner := l.B.Decls.Get(cls.Methods[0]).Owner; owner != u.Classes[0] {
		t.Fatalf("method owner %d, want %d", owner, u.Classes[0])
	}

	main, _ := l.B.Decls.Fn(u.Main)
	body := l.B.Stmts.Block(main.Body)
	if len(body.Stmts) != 2 {
		t.Fatalf("main has %d statements", len(body.Stmts))
	}
	loop := l.B.Stmts.For(body.Stmts[0])
	if loop == nil || l.B.NameOf(loop.Var) != "i" {
		t.Fatal("for loop variable not declared")
	}
}

func TestImportResolution(t *testing.T) {
	doc := decodeJSON(t, `{"version": 1, "units": [{"path": "a.sbl", "imports": [
		{"path": "b.sbl", "span": {"line": 1}},
		{"path": "./c.sbl", "span": {"line": 2}},
		{"path": "gone.sbl", "span": {"line": 3}}
	]}]}`)
	var asked []string
	l := NewLoader()
	l.Resolve = func(path string) (*Unit, error) {
		asked = append(asked, path)
		switch path {
		case "b.sbl":
			return &Unit{Path: "b.sbl", Imports: []*Import{{Path: "a.sbl"}}}, nil
		case "./c.sbl":
			return &Unit{Path: "c.sbl"}, nil
		}
		return nil, nil
	}
	root, err := l.Load(doc)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(asked, []string{"b.sbl", "./c.sbl", "gone.sbl"}); diff != nil {
		t.Fatal(diff)
	}
	u := l.B.Units.Get(root)
	targets := make([]ast.UnitID, len(u.Imports))
	for i, id := range u.Imports {
		imp, _ := l.B.Decls.Import(id)
		targets[i] = imp.Target
	}
	if !targets[0].IsValid() || !targets[1].IsValid() || targets[2].IsValid() {
		t.Fatalf("unexpected import targets %v", targets)
	}
	b := l.B.Units.Get(targets[0])
	back, _ := l.B.Decls.Import(b.Imports[0])
	if back.Target != root {
		t.Fatal("a cyclic import must reuse the unit being loaded")
	}
}

func TestMalformedDocuments(t *testing.T) {
	tests := []struct {
		name string
		unit string
		want string
	}{
		{"unknown expression", `{"path": "m.sbl", "globals": [{"name": "x", "init": {"kind": "lambda", "span": {"line": 4, "col": 2}}, "span": {"line": 4}}]}`,
			`m.sbl:4:2: expression: unknown expression kind "lambda"`},
		{"unknown modifier", `{"path": "m.sbl", "globals": [{"name": "x", "mods": ["static"], "span": {"line": 2, "col": 1}}]}`,
			`m.sbl:2:1: x: unknown modifier "static"`},
		{"missing operand", `{"path": "m.sbl", "globals": [{"name": "x", "init": {"kind": "binary", "op": "+", "left": {"kind": "name", "name": "a"}, "span": {"line": 1, "col": 9}}}]}`,
			`m.sbl:1:9: right operand: missing expression`},
		{"bad operator", `{"path": "m.sbl", "globals": [{"name": "x", "init": {"kind": "unary", "op": "++", "operand": {"kind": "name", "name": "a"}}}]}`,
			`unknown operator "++"`},
		{"bad constraint", `{"path": "m.sbl", "functions": [{"name": "f", "type_params": [{"name": "T", "constraint": "numeric"}]}]}`,
			`unknown constraint "numeric"`},
		{"short union", `{"path": "m.sbl", "globals": [{"name": "x", "type": {"kind": "union", "elems": [{"kind": "named", "name": "Int"}]}}]}`,
			`union needs at least two members`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decodeJSON(t, `{"version": 1, "units": [`+tt.unit+`]}`)
			_, err := NewLoader().Load(doc)
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	if _, err := Decode(strings.NewReader(`{"version": 2, "units": [{"path": "m"}]}`), FormatJSON); !errors.Is(err, ErrVersion) {
		t.Fatalf("expected ErrVersion, got %v", err)
	}
	if _, err := Decode(strings.NewReader(`{"version": 1, "units": []}`), FormatJSON); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if _, err := Decode(strings.NewReader(`{"version": 1, "unit": []}`), FormatJSON); err == nil {
		t.Fatal("unknown fields must be rejected")
	}
	if _, err := FormatOf("prog.txt"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestMsgpackCarriesSameDocument(t *testing.T) {
	doc := decodeJSON(t, program)
	var buf bytes.Buffer
	if err := Encode(&buf, doc, FormatMsgpack); err != nil {
		t.Fatal(err)
	}
	back, err := Decode(&buf, FormatMsgpack)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(back, doc); diff != nil {
		t.Fatal(diff)
	}
}

func TestAddTopLevel(t *testing.T) {
	l := NewLoader()
	unit := l.NewUnit("<repl>")
	top, err := DecodeTopLevel(strings.NewReader(`{"global": {"name": "a", "type": {"kind": "named", "name": "Int"}}}`), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	added, err := l.AddTopLevel(unit, top)
	if err != nil {
		t.Fatal(err)
	}
	if got := l.B.Units.Get(unit).Globals; len(got) != 1 || got[0] != added.Decl || added.Stmt.IsValid() {
		t.Fatalf("global not appended: %v", got)
	}
	if _, err := l.AddTopLevel(unit, &TopLevel{}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestAddTopLevelStatement(t *testing.T) {
	l := NewLoader()
	unit := l.NewUnit("<repl>")
	top, err := DecodeTopLevel(strings.NewReader(`{"stmt": {"kind": "local", "decl": {"name": "x", "type": {"kind": "named", "name": "Int"}}}}`), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	added, err := l.AddTopLevel(unit, top)
	if err != nil {
		t.Fatal(err)
	}
	u := l.B.Units.Get(unit)
	if len(u.Stmts) != 1 || u.Stmts[0] != added.Stmt || added.Decl.IsValid() {
		t.Fatalf("statement not appended: %+v", added)
	}
	if len(u.TopLevel()) != 0 {
		t.Fatalf("statement must not be listed as a declaration")
	}
	decl := l.B.Stmts.Decl(added.Stmt).Decl
	if got := l.B.Decls.Get(decl).Kind; got != ast.DeclLocal {
		t.Fatalf("kind = %v", got)
	}

	bad := &TopLevel{Stmt: &Stmt{Kind: "local"}}
	if _, err := l.AddTopLevel(unit, bad); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if len(u.Stmts) != 1 {
		t.Fatalf("failed statement must not be appended")
	}
}
