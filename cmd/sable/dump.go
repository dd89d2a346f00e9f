package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sable/internal/diagfmt"
	"sable/internal/driver"
	"sable/internal/pipeline"
)

var scopesCmd = &cobra.Command{
	Use:   "scopes [flags] <tree.json|tree.sbt>",
	Short: "Print the scope table of a program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer dumpTraceOnPanic()
		res, mode, err := analyse(cmd, args[0])
		if err != nil {
			return err
		}
		if res.Output == nil || res.Output.Symbols == nil {
			return fmt.Errorf("%s: name resolution did not run", res.Path)
		}
		diagfmt.DumpScopes(cmd.OutOrStdout(), diagfmt.ScopeDump{
			Builder: res.Builder,
			Symbols: res.Output.Symbols,
			Sema:    res.Output.Sema,
			Files:   res.Files,
			Mode:    mode,
		})
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree [flags] <tree.json|tree.sbt>",
	Short: "Print a program tree annotated with the types it checked to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer dumpTraceOnPanic()
		res, mode, err := analyse(cmd, args[0])
		if err != nil {
			return err
		}
		d := diagfmt.TreeDump{Builder: res.Builder, Files: res.Files, Mode: mode}
		if res.Output != nil {
			d.Sema = res.Output.Sema
		}
		return diagfmt.Tree(cmd.OutOrStdout(), res.Root, d)
	},
}

func init() {
	for _, c := range []*cobra.Command{scopesCmd, treeCmd} {
		c.Flags().StringSlice("passes", nil, "passes to run, in order (default: config or all)")
		c.Flags().String("stop-after", "", "debug cutoff: run passes 1..N only (N or stop-after=N)")
		c.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	}
}

// analyse checks one program without the disk cache, whose entries carry no
// annotations. Diagnostics go to stderr; the dump is printed even when a
// pass halted, showing what the completed passes recorded.
func analyse(cmd *cobra.Command, path string) (*driver.Result, diagfmt.PathMode, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, 0, err
	}
	p, err := pipeline.New(cfg.Pipeline)
	if err != nil {
		return nil, 0, err
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	mode := diagfmt.PathModeAuto
	if fullPath {
		mode = diagfmt.PathModeAbsolute
	}

	res, err := driver.CheckFile(cmd.Context(), path, driver.Options{
		Pipeline:         p,
		MaxDiagnostics:   cfg.Diagnostics.Max,
		WarningsAsErrors: cfg.Diagnostics.WarningsAsErrors,
		Interactive:      cfg.Pipeline.Mode == pipeline.ModeInteractive,
	})
	if err != nil {
		return nil, 0, err
	}
	if res.Err != nil {
		return nil, 0, res.Err
	}
	if wd, err := os.Getwd(); err == nil {
		res.Files.SetBaseDir(wd)
	}
	if !quiet(cmd) {
		diagfmt.Pretty(cmd.ErrOrStderr(), res.Bag, res.Files, diagfmt.PrettyOpts{
			Color:    useColor(cfg.Diagnostics.Color, os.Stderr),
			PathMode: mode,
		})
	}
	return res, mode, nil
}
