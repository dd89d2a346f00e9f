package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/go-test/deep"
	"github.com/spf13/cobra"

	"sable/internal/pipeline"
)

func testCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "t", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.PersistentFlags().String("color", "auto", "")
	cmd.PersistentFlags().Int("max-diagnostics", 0, "")
	cmd.Flags().StringSlice("passes", nil, "")
	cmd.Flags().String("stop-after", "", "")
	cmd.Flags().Bool("interactive", false, "")
	cmd.Flags().String("format", "pretty", "")
	cmd.Flags().Bool("warnings-as-errors", false, "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestOverrideConfig(t *testing.T) {
	cfg := pipeline.DefaultConfig()
	cmd := testCommand(t, "--passes=resolve,typecheck", "--stop-after=1", "--interactive",
		"--format=short", "--max-diagnostics=7", "--color=off", "--warnings-as-errors")
	if err := overrideConfig(cmd, &cfg); err != nil {
		t.Fatalf("overrideConfig: %v", err)
	}
	want := pipeline.Config{
		Pipeline: pipeline.PipelineConfig{
			Passes:    []string{"resolve", "typecheck"},
			StopAfter: 1,
			Mode:      pipeline.ModeInteractive,
		},
		Diagnostics: pipeline.DiagnosticsConfig{
			Max:              7,
			Format:           "short",
			Color:            "off",
			WarningsAsErrors: true,
		},
	}
	if diff := deep.Equal(cfg, want); diff != nil {
		t.Error(diff)
	}
}

func TestOverrideConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"cutoff past the end", []string{"--passes=resolve", "--stop-after=2"}, pipeline.ErrBadCutoff},
		{"malformed cutoff", []string{"--stop-after=two"}, pipeline.ErrBadCutoff},
		{"missing prerequisite", []string{"--passes=typecheck"}, pipeline.ErrBadConfig},
		{"unknown format", []string{"--format=sarif"}, pipeline.ErrBadConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := pipeline.DefaultConfig()
			err := overrideConfig(testCommand(t, tt.args...), &cfg)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCollectTrees(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.sbt", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0o755); err != nil {
		t.Fatal(err)
	}
	single := filepath.Join(dir, "notes.txt")

	got, err := collectTrees([]string{dir, single})
	if err != nil {
		t.Fatalf("collectTrees: %v", err)
	}
	want := []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.sbt"), single}
	if diff := deep.Equal(got, want); diff != nil {
		t.Error(diff)
	}

	empty := t.TempDir()
	if _, err := collectTrees([]string{empty}); err == nil || !strings.Contains(err.Error(), "no tree files") {
		t.Errorf("empty dir: err = %v", err)
	}
	if _, err := collectTrees([]string{filepath.Join(dir, "gone.json")}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v", err)
	}
}

func TestUseColor(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if !useColor("on", f) || useColor("off", f) || useColor("auto", f) {
		t.Error("on forces colour, off and a non-terminal auto disable it")
	}
}

func TestRenderVersion(t *testing.T) {
	info := versionInfo{Version: "1.2.3", GitCommit: "abc"}
	var buf bytes.Buffer
	renderVersionPretty(&buf, info, versionOptions{showHash: true, showDate: true})
	want := "sable 1.2.3: every name in its place\ncommit: abc\nbuilt:  unknown\n"
	if buf.String() != want {
		t.Errorf("pretty = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := renderVersionJSON(&buf, info, versionOptions{showHash: true}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"git_commit": "abc"`) || strings.Contains(buf.String(), "build_date") {
		t.Errorf("json = %s", buf.String())
	}
}

var ansi = regexp.MustCompile("\x1b\\[[0-9;]*m")

func TestWritePassTable(t *testing.T) {
	p, err := pipeline.New(pipeline.PipelineConfig{Passes: pipeline.DefaultPassNames(), StopAfter: 1})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	writePassTable(&buf, pipeline.DefaultPassNames(), p)
	got := strings.Split(strings.TrimRight(ansi.ReplaceAllString(buf.String(), ""), "\n"), "\n")
	want := []string{
		"#  PASS       REQUIRES   RUNS",
		"1  resolve    -          yes",
		"2  typecheck  resolve    no",
		"3  modifiers  typecheck  no",
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatal(diff)
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("fancy"); err == nil {
		t.Error("expected an error for an unknown mode")
	}
	if shouldUseTUI(uiModeAuto, "json", false) || shouldUseTUI(uiModeOff, "pretty", false) || !shouldUseTUI(uiModeOn, "json", true) {
		t.Error("auto needs pretty output on a terminal; on and off are forced")
	}
}
