package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"sable/internal/diagfmt"
	"sable/internal/driver"
	"sable/internal/observ"
	"sable/internal/pipeline"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <tree.json|tree.sbt|directory>...",
	Short: "Run semantic analysis over serialized program trees",
	Long: `Run name resolution, type checking and modifier legality over each program.
A directory argument checks every tree file directly inside it. Imports are
resolved to sibling tree files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().StringSlice("passes", nil, "passes to run, in order (default: config or all)")
	checkCmd.Flags().String("stop-after", "", "debug cutoff: run passes 1..N only (N or stop-after=N)")
	checkCmd.Flags().Bool("interactive", false, "submit declarations one at a time, aborting each on its first error")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Int("jobs", 0, "max programs checked in parallel (0=auto)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("validate", false, "re-check scope table invariants after resolution")
	checkCmd.Flags().Bool("disk-cache", false, "replay diagnostics of unchanged programs from the disk cache")
	checkCmd.Flags().String("cache-dir", "", "disk cache directory (default: user cache dir)")
	checkCmd.Flags().Bool("clear-cache", false, "drop every cached result before checking")
	checkCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

// checkOutput is the json form of a whole check run.
type checkOutput struct {
	Programs []programOutput `json:"programs"`
	Errors   int             `json:"errors"`
	Warnings int             `json:"warnings"`
}

type programOutput struct {
	Path    string                     `json:"path"`
	Error   string                     `json:"error,omitempty"`
	Ran     []string                   `json:"ran,omitempty"`
	Cached  bool                       `json:"cached,omitempty"`
	Result  *diagfmt.DiagnosticsOutput `json:"result,omitempty"`
	Timings *observ.Report             `json:"timings,omitempty"`
}

// runCheck executes the "check" command. It exits with a non-zero status
// when a program fails to load or any pass reports an error.
func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg.Pipeline)
	if err != nil {
		return err
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	validate, err := cmd.Flags().GetBool("validate")
	if err != nil {
		return fmt.Errorf("failed to get validate flag: %w", err)
	}

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	ui, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	cache, err := openCache(cmd)
	if err != nil {
		return err
	}

	paths, err := collectTrees(args)
	if err != nil {
		return err
	}

	checkAll := driver.CheckAll
	if shouldUseTUI(ui, cfg.Diagnostics.Format, quiet(cmd)) {
		checkAll = checkAllWithUI
	}
	results, err := checkAll(cmd.Context(), paths, driver.Options{
		Pipeline:         p,
		MaxDiagnostics:   cfg.Diagnostics.Max,
		WarningsAsErrors: cfg.Diagnostics.WarningsAsErrors,
		Validate:         validate,
		Jobs:             jobs,
		Timings:          showTimings,
		Interactive:      cfg.Pipeline.Mode == pipeline.ModeInteractive,
		Cache:            cache,
	})
	if err != nil {
		return err
	}

	mode := diagfmt.PathModeAuto
	if fullPath {
		mode = diagfmt.PathModeAbsolute
	}
	wd, _ := os.Getwd()
	for _, res := range results {
		if res.Files != nil && wd != "" {
			res.Files.SetBaseDir(wd)
		}
	}

	out := cmd.OutOrStdout()
	colored := useColor(cfg.Diagnostics.Color, os.Stdout)
	var errs, warns int
	failed := false
	for _, res := range results {
		if res.Err != nil {
			errs++
			failed = true
			continue
		}
		errs += res.Output.Errors
		warns += res.Output.Warns
		if !res.Succeeded() {
			failed = true
		}
	}

	switch cfg.Diagnostics.Format {
	case "json":
		if err := writeCheckJSON(out, results, errs, warns, mode, withNotes, suggest); err != nil {
			return err
		}
	case "short":
		for _, res := range results {
			if res.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", res.Err)
				continue
			}
			diagfmt.Short(out, res.Bag, res.Files, mode, withNotes)
			writeTimings(cmd.ErrOrStderr(), res, showTimings)
		}
		writeTotalTimings(cmd.ErrOrStderr(), results, showTimings)
	default:
		for _, res := range results {
			if res.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", res.Err)
				continue
			}
			diagfmt.Pretty(out, res.Bag, res.Files, diagfmt.PrettyOpts{
				Color:     colored,
				PathMode:  mode,
				Width:     terminalWidth(os.Stdout),
				ShowNotes: withNotes,
				ShowFixes: suggest,
			})
			writeTimings(cmd.ErrOrStderr(), res, showTimings)
		}
		writeTotalTimings(cmd.ErrOrStderr(), results, showTimings)
		if !quiet(cmd) {
			diagfmt.Summary(out, errs, warns, colored)
		}
	}

	if failed {
		exit(1)
	}
	return nil
}

func openCache(cmd *cobra.Command) (*driver.DiskCache, error) {
	enabled, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	drop, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	if !enabled && !drop {
		return nil, nil
	}
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	cache, err := driver.OpenDiskCache(dir, "sable")
	if err != nil {
		return nil, fmt.Errorf("failed to open disk cache: %w", err)
	}
	if drop {
		if err := cache.DropAll(); err != nil {
			return nil, fmt.Errorf("failed to clear disk cache: %w", err)
		}
	}
	if !enabled {
		return nil, nil
	}
	return cache, nil
}

// collectTrees expands directory arguments to the tree files they hold.
func collectTrees(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		found := 0
		for _, e := range entries {
			if e.IsDir() || !isTreeFile(e.Name()) {
				continue
			}
			paths = append(paths, filepath.Join(arg, e.Name()))
			found++
		}
		if found == 0 {
			return nil, fmt.Errorf("%s: no tree files (*.json, *.sbt)", arg)
		}
	}
	return paths, nil
}

func isTreeFile(name string) bool {
	return slices.Contains([]string{".json", ".sbt"}, strings.ToLower(filepath.Ext(name)))
}

func writeCheckJSON(w io.Writer, results []*driver.Result, errs, warns int, mode diagfmt.PathMode, notes, fixes bool) error {
	payload := checkOutput{
		Programs: make([]programOutput, 0, len(results)),
		Errors:   errs,
		Warnings: warns,
	}
	for _, res := range results {
		po := programOutput{Path: res.Path, Cached: res.Cached}
		if res.Err != nil {
			po.Error = res.Err.Error()
		} else {
			diags := diagfmt.BuildDiagnosticsOutput(res.Bag, res.Files, diagfmt.JSONOpts{
				PathMode:     mode,
				IncludeNotes: notes,
				IncludeFixes: fixes,
			})
			po.Result = &diags
			po.Ran = res.Output.Ran
		}
		po.Timings = res.Timing
		payload.Programs = append(payload.Programs, po)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func writeTimings(w io.Writer, res *driver.Result, show bool) {
	if !show || res.Timing == nil {
		return
	}
	suffix := ""
	if res.Cached {
		suffix = " (cached)"
	}
	fmt.Fprintf(w, "%s%s\n%s", res.Path, suffix, res.Timing.Summary())
}

// writeTotalTimings sums the phases of every program of a multi-program run.
func writeTotalTimings(w io.Writer, results []*driver.Result, show bool) {
	if !show || len(results) < 2 {
		return
	}
	reports := make([]*observ.Report, 0, len(results))
	for _, res := range results {
		reports = append(reports, res.Timing)
	}
	total := observ.Aggregate(reports...)
	fmt.Fprintf(w, "all %d programs\n%s", len(results), total.Summary())
	if slow, ok := total.Slowest(); ok {
		fmt.Fprintf(w, "slowest phase: %s (%.2f ms)\n", slow.Name, slow.DurationMS)
	}
}
