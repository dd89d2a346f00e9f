package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-test/deep"

	"sable/internal/astio"
	"sable/internal/diag"
	"sable/internal/pipeline"
)

const libDoc = `{"version": 1, "units": [{"path": "lib.sbl", "globals": [
	{"name": "limit", "type": {"kind": "named", "name": "Int"}, "init": {"kind": "lit", "lit": "int", "value": "3"}, "span": {"line": 1, "col": 1}}
]}]}`

const mainDoc = `{"version": 1, "units": [{"path": "main.sbl",
	"imports": [{"path": "lib", "span": {"line": 1, "col": 1}}],
	"main": {"name": "main", "span": {"line": 3, "col": 1}, "body": [
		{"kind": "local", "decl": {"name": "n", "type": {"kind": "named", "name": "Int"}, "init": {"kind": "name", "name": "limit", "span": {"line": 4, "col": 16}}, "span": {"line": 4, "col": 3}}, "span": {"line": 4, "col": 3}}
	]}
}]}`

const brokenDoc = `{"version": 1, "units": [{"path": "broken.sbl",
	"imports": [{"path": "missing", "span": {"line": 1, "col": 1}}],
	"main": {"name": "main", "span": {"line": 2, "col": 1}, "body": [
		{"kind": "assign", "target": {"kind": "name", "name": "nope", "span": {"line": 3, "col": 3}}, "value": {"kind": "lit", "lit": "int", "value": "1", "span": {"line": 3, "col": 10}}, "span": {"line": 3, "col": 3}}
	]}
}]}`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func codesOf(r *Result) []diag.Code {
	var out []diag.Code
	for _, d := range r.Bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestCheckFileResolvesSiblingImports(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.json": mainDoc, "lib.json": libDoc})
	res, err := CheckFile(context.Background(), filepath.Join(dir, "main.json"), Options{Timings: true})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Succeeded() {
		t.Fatalf("unexpected diagnostics %v (load error %v)", codesOf(res), res.Err)
	}
	if diff := deep.Equal(res.Output.Ran, pipeline.DefaultPassNames()); diff != nil {
		t.Fatal(diff)
	}
	if res.Files.Len() != 2 {
		t.Fatalf("expected the lib file to be registered, have %d files", res.Files.Len())
	}
	if res.Timing == nil || len(res.Timing.Phases) != 1+len(pipeline.DefaultPassNames()) {
		t.Fatalf("unexpected timings %+v", res.Timing)
	}
}

func TestCheckAllKeepsProgramsApart(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.json": mainDoc, "lib.json": libDoc, "broken.json": brokenDoc, "bad.json": `{"version": 1}`})
	paths := []string{
		filepath.Join(dir, "broken.json"),
		filepath.Join(dir, "main.json"),
		filepath.Join(dir, "bad.json"),
	}
	results, err := CheckAll(context.Background(), paths, Options{Jobs: 2})
	if err != nil {
		t.Fatal(err)
	}
	broken, main, bad := results[0], results[1], results[2]

	if diff := deep.Equal(codesOf(broken), []diag.Code{diag.ScpUnresolvedImport, diag.ScpUnresolved}); diff != nil {
		t.Fatal(diff)
	}
	if diff := deep.Equal(broken.Output.Ran, []string{pipeline.PassResolve}); diff != nil {
		t.Fatal(diff)
	}
	if !main.Succeeded() {
		t.Fatalf("main must not see the diagnostics of broken: %v", codesOf(main))
	}
	if !errors.Is(bad.Err, astio.ErrMalformed) || bad.Succeeded() {
		t.Fatalf("expected a load error, got %v", bad.Err)
	}
}

func TestCheckAllStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := writeFiles(t, map[string]string{"main.json": mainDoc})
	if _, err := CheckAll(ctx, []string{filepath.Join(dir, "main.json")}, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDiskCacheReplaysDiagnostics(t *testing.T) {
	dir := writeFiles(t, map[string]string{"broken.json": brokenDoc})
	cache, err := OpenDiskCache(t.TempDir(), "sable")
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Cache: cache}
	path := filepath.Join(dir, "broken.json")

	first, err := CheckFile(context.Background(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CheckFile(context.Background(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached || !second.Cached {
		t.Fatalf("cached flags: first %v, second %v", first.Cached, second.Cached)
	}
	if diff := deep.Equal(second.Bag.Items(), first.Bag.Items()); diff != nil {
		t.Fatal(diff)
	}
	if diff := deep.Equal(second.Output.Ran, first.Output.Ran); diff != nil {
		t.Fatal(diff)
	}

	// a different pass configuration must not hit the entry
	opts.WarningsAsErrors = true
	third, err := CheckFile(context.Background(), path, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.Cached {
		t.Fatal("cache key ignores the pipeline settings")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	fourth, err := CheckFile(context.Background(), path, Options{Cache: cache})
	if err != nil {
		t.Fatal(err)
	}
	if fourth.Cached {
		t.Fatal("DropAll left entries behind")
	}
}

func TestSiblingCandidates(t *testing.T) {
	got := siblingCandidates("d", "lib.sbl")
	want := []string{
		filepath.Join("d", "lib.sbl.json"),
		filepath.Join("d", "lib.sbl.sbt"),
		filepath.Join("d", "lib.json"),
		filepath.Join("d", "lib.sbt"),
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatal(diff)
	}
	if got := siblingCandidates("d", "x/lib.sbt"); len(got) != 1 || got[0] != filepath.Join("d", "x", "lib.sbt") {
		t.Fatalf("explicit tree file must be used as is: %v", got)
	}
}

func TestCheckFileInteractive(t *testing.T) {
	dir := writeFiles(t, map[string]string{"main.json": mainDoc, "lib.json": libDoc, "broken.json": brokenDoc})
	opts := Options{Interactive: true, Timings: true}

	res, err := CheckFile(context.Background(), filepath.Join(dir, "main.json"), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Succeeded() {
		t.Fatalf("unexpected diagnostics %v", codesOf(res))
	}
	if res.Timing.Phases[1].Note != "2 declarations, 0 aborted" {
		t.Fatalf("unexpected submit note %q", res.Timing.Phases[1].Note)
	}

	// every failing declaration is aborted on its own; the next one still runs
	res, err = CheckFile(context.Background(), filepath.Join(dir, "broken.json"), opts)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(codesOf(res), []diag.Code{diag.ScpUnresolvedImport, diag.ScpUnresolved}); diff != nil {
		t.Fatal(diff)
	}
	if res.Output.Errors != 2 || res.Timing.Phases[1].Note != "2 declarations, 2 aborted" {
		t.Fatalf("unexpected output %+v / %q", res.Output, res.Timing.Phases[1].Note)
	}
}
