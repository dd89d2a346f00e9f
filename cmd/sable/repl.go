package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"sable/internal/ast"
	"sable/internal/astio"
	"sable/internal/diag"
	"sable/internal/diagfmt"
	"sable/internal/pipeline"
	"sable/internal/types"
)

const (
	replHistoryFile = ".sable_history"
	replUnitPath    = "<repl>"
	promptMain      = "sable> "
	promptCont      = "  ...> "
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Analyse declarations and statements one at a time as they are typed",
	Long: `Each input is one top-level declaration or statement in tree JSON form,
for example
  {"global": {"name": "x", "type": {"kind": "named", "name": "Int"}}}
  {"stmt": {"kind": "local", "decl": {"name": "y", "init": {"kind": "name", "name": "x"}}}}
Every input is resolved, checked and validated against the ones submitted
before it. The first error aborts that input only.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	replCmd.Flags().StringSlice("passes", nil, "passes to run, in order (default: config or all)")
	replCmd.Flags().String("stop-after", "", "debug cutoff: run passes 1..N only (N or stop-after=N)")
	replCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
}

// submissionSink collects what one submission reports.
type submissionSink struct{ bag *diag.Bag }

func (s *submissionSink) Report(d diag.Diagnostic) { s.bag.Add(d) }

type repl struct {
	cmd     *cobra.Command
	loader  *astio.Loader
	session *pipeline.Session
	sink    *submissionSink
	color   bool
	decls   int
}

func runRepl(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg.Pipeline)
	if err != nil {
		return err
	}

	loader := astio.NewLoader()
	loader.Resolve = replResolver
	unit := loader.NewUnit(replUnitPath)
	sink := &submissionSink{bag: diag.NewBag(0)}
	r := &repl{
		cmd:    cmd,
		loader: loader,
		sink:   sink,
		color:  useColor(cfg.Diagnostics.Color, os.Stdout),
		session: p.NewSession(cmd.Context(), loader.B, unit, pipeline.SessionOptions{
			Reporter:         sink,
			WarningsAsErrors: cfg.Diagnostics.WarningsAsErrors,
		}),
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, replHistoryFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	out := cmd.OutOrStdout()
	if !quiet(cmd) {
		fmt.Fprintf(out, "sable repl (%s mode, passes: %s). Type :help for commands.\n",
			pipeline.ModeInteractive, strings.Join(passNames(p), ", "))
	}
	for {
		input, ok := readDecl(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		text := strings.TrimSpace(input)
		if text == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(text, "\n", " "))
		if strings.HasPrefix(text, ":") {
			if r.command(text) {
				return nil
			}
			continue
		}
		r.submit(text)
	}
}

// readDecl reads lines until they form a complete JSON value or a syntax
// error that more input cannot fix.
func readDecl(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		_, perr := astio.DecodeTopLevel(strings.NewReader(src), astio.FormatJSON)
		if perr != nil && errors.Is(perr, io.ErrUnexpectedEOF) {
			continue
		}
		return src, true
	}
}

func (r *repl) submit(text string) {
	out := r.cmd.OutOrStdout()
	top, err := astio.DecodeTopLevel(strings.NewReader(text), astio.FormatJSON)
	if err != nil {
		fmt.Fprintf(r.cmd.ErrOrStderr(), "%v\n", err)
		return
	}
	added, err := r.loader.AddTopLevel(r.session.Unit(), top)
	if err != nil {
		fmt.Fprintf(r.cmd.ErrOrStderr(), "%v\n", err)
		return
	}
	r.decls++

	r.sink.bag = diag.NewBag(0)
	if added.Stmt.IsValid() {
		err = r.session.SubmitStmt(added.Stmt)
	} else {
		err = r.session.Submit(added.Decl)
	}
	diagfmt.Pretty(out, r.sink.bag, r.loader.Files, diagfmt.PrettyOpts{
		Color:     r.color,
		ShowNotes: true,
		ShowFixes: true,
	})
	if err != nil {
		if _, ok := pipeline.IsRaised(err); !ok {
			fmt.Fprintf(r.cmd.ErrOrStderr(), "%v\n", err)
		}
		return
	}
	if quiet(r.cmd) {
		return
	}
	id := added.Decl
	if added.Stmt.IsValid() {
		id = r.stmtDecl(added.Stmt)
		if !id.IsValid() {
			fmt.Fprintln(out, "ok")
			return
		}
	}
	name := r.loader.B.NameOf(id)
	if sr := r.session.State().Sema; sr != nil {
		if t, ok := sr.DeclTypes[id]; ok {
			fmt.Fprintf(out, "%s : %s\n", name, types.Label(sr.TypeInterner, t))
			return
		}
	}
	fmt.Fprintf(out, "%s ok\n", name)
}

// stmtDecl returns the local a top-level statement declares, if any.
func (r *repl) stmtDecl(id ast.StmtID) ast.DeclID {
	if d := r.loader.B.Stmts.Decl(id); d != nil {
		return d.Decl
	}
	return ast.NoDeclID
}

// command runs a ":" command and reports whether the repl should exit.
func (r *repl) command(text string) bool {
	out := r.cmd.OutOrStdout()
	switch strings.ToLower(strings.Fields(text)[0]) {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprintln(out, "  :scopes   print the scope table")
		fmt.Fprintln(out, "  :tree     print the declarations submitted so far")
		fmt.Fprintln(out, "  :quit     leave")
		fmt.Fprintln(out, "anything else is read as one top-level declaration or {\"stmt\": ...} in tree JSON form")
	case ":scopes":
		st := r.session.State()
		if st.Symbols == nil {
			fmt.Fprintln(out, "nothing submitted yet")
			return false
		}
		diagfmt.DumpScopes(out, diagfmt.ScopeDump{
			Builder: st.Builder,
			Symbols: st.Symbols,
			Sema:    st.Sema,
			Files:   r.loader.Files,
		})
	case ":tree":
		st := r.session.State()
		if err := diagfmt.Tree(out, r.session.Unit(), diagfmt.TreeDump{
			Builder: st.Builder,
			Sema:    st.Sema,
			Files:   r.loader.Files,
		}); err != nil {
			fmt.Fprintf(r.cmd.ErrOrStderr(), "%v\n", err)
		}
	default:
		fmt.Fprintf(out, "unknown command %s. Type :help for commands.\n", text)
	}
	return false
}

// replResolver loads an imported tree file relative to the working directory.
func replResolver(path string) (*astio.Unit, error) {
	if _, err := astio.FormatOf(path); err != nil {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	doc, err := astio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	u := doc.Units[0]
	u.Path = path
	return u, nil
}

func passNames(p *pipeline.Pipeline) []string {
	passes := p.Passes()
	names := make([]string, len(passes))
	for i, pass := range passes {
		names[i] = pass.Name()
	}
	return names
}
