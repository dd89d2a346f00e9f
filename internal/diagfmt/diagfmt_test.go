package diagfmt

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-test/deep"

	"sable/internal/ast"
	"sable/internal/diag"
	"sable/internal/pipeline"
	"sable/internal/source"
	"sable/internal/testkit"
)

func sampleBag(fs *source.FileSet) *diag.Bag {
	file := fs.Add("/work/src/main.sbl", source.FileVirtual)
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.ScpUnresolved, source.At(file, 3, 5), "nope").
		WithSuggestion(diag.SugDidYouMean, "note").
		WithNote(source.At(file, 1, 1), "declared here"))
	bag.Add(diag.NewWarning(diag.ScpShadowsGlobal, source.At(file, 12, 3), "x", "global"))
	return bag
}

func TestPrettyPlain(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/work")
	bag := sampleBag(fs)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true, ShowFixes: true})
	want := "src/main.sbl:3:5: ERROR SCP1002: unresolved reference to 'nope'\n" +
		"    note: src/main.sbl:1:1: declared here\n" +
		"    help: did you mean 'note'?\n" +
		"src/main.sbl:12:3: WARNING SCP1007: 'x' shadows the global declared in an enclosing scope\n"
	if diff := deep.Equal(buf.String(), want); diff != nil {
		t.Fatal(diff)
	}

	buf.Reset()
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	if !strings.HasPrefix(buf.String(), "main.sbl:3:5: ERROR") || strings.Contains(buf.String(), "note:") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestPrettyColorAndWrap(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: true, Width: 20})
	out := buf.String()
	if !strings.Contains(out, "\x1b[") {
		t.Fatal("expected ANSI escapes with Color set")
	}
	if !strings.Contains(out, "\n    an enclosing scope\n") {
		t.Fatalf("long message was not wrapped:\n%s", out)
	}
}

func TestWriteWrappedCountsDisplayWidth(t *testing.T) {
	var buf bytes.Buffer
	writeWrapped(&buf, "имя 名前 名前 x", 5, "> ")
	if diff := deep.Equal(buf.String(), "имя\n> 名前\n> 名前\n> x\n"); diff != nil {
		t.Fatal(diff)
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, 1, 2, false)
	Summary(&buf, 0, 0, false)
	if diff := deep.Equal(buf.String(), "1 error, 2 warnings\n0 errors, 0 warnings\n"); diff != nil {
		t.Fatal(diff)
	}
}

func TestShortAligns(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs)

	var buf bytes.Buffer
	Short(&buf, bag, fs, PathModeBasename, true)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"error    SCP1002  main.sbl:3:5   unresolved reference to 'nope'",
		"note     SCP1002  main.sbl:1:1   declared here",
		"help     SCP1002  main.sbl:3:5   did you mean 'note'?",
		"warning  SCP1007  main.sbl:12:3  'x' shadows the global declared in an enclosing scope",
	}
	if diff := deep.Equal(lines, want); diff != nil {
		t.Fatal(diff)
	}
}

func TestJSONOutput(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs)

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeBasename, Max: 1, IncludeFixes: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	want := DiagnosticsOutput{
		Count: 1,
		Diagnostics: []DiagnosticJSON{{
			Severity: "error",
			Code:     "SCP1002",
			Title:    diag.ScpUnresolved.Title(),
			Message:  "unresolved reference to 'nope'",
			Args:     []string{"nope"},
			Location: LocationJSON{File: "main.sbl", StartLine: 3, StartCol: 5, EndLine: 3, EndCol: 5},
			Fix:      "did you mean 'note'?",
		}},
	}
	if diff := deep.Equal(out, want); diff != nil {
		t.Fatal(diff)
	}
}

func checked(t *testing.T) (*testkit.Program, *pipeline.Output) {
	t.Helper()
	p := testkit.New("main.sbl")
	p.Global("g", p.T("Int"), p.Int("1"), 0)
	p.Main(p.Local("x", p.T("Int"), p.Bin(ast.OpAdd, p.Name("g"), p.Int("2"))))
	out, err := pipeline.Default().Run(context.Background(), p.B, p.Unit, pipeline.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return p, out
}

func TestDumpScopes(t *testing.T) {
	p, out := checked(t)
	var buf bytes.Buffer
	DumpScopes(&buf, ScopeDump{Builder: p.B, Symbols: out.Symbols, Sema: out.Sema, Files: p.Files})
	dump := buf.String()
	for _, want := range []string{"#1 global main.sbl:1:1\n", "  g ", " global ", " Int ", "function main", "x ", " local "} {
		if !strings.Contains(dump, want) {
			t.Fatalf("scope dump lacks %q:\n%s", want, dump)
		}
	}
}

func TestTreeAnnotatesTypes(t *testing.T) {
	p, out := checked(t)
	var buf bytes.Buffer
	if err := Tree(&buf, p.Unit, TreeDump{Builder: p.B, Sema: out.Sema, Files: p.Files}); err != nil {
		t.Fatal(err)
	}
	tree := buf.String()
	for _, want := range []string{"unit main.sbl\n", "├─ global g Int : Int", "└─ function main", "local x Int : Int", "binary + : Int", "int 2 : Int"} {
		if !strings.Contains(tree, want) {
			t.Fatalf("tree lacks %q:\n%s", want, tree)
		}
	}
	if err := Tree(&buf, ast.UnitID(99), TreeDump{Builder: p.B}); err == nil {
		t.Fatal("expected an error for a missing unit")
	}
}
