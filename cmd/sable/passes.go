package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"sable/internal/pipeline"
)

var passesCmd = &cobra.Command{
	Use:   "passes",
	Short: "List the configured passes and the stop-after cutoff",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		p, err := pipeline.New(cfg.Pipeline)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		writePassTable(out, cfg.Pipeline.Passes, p)
		if !quiet(cmd) {
			fmt.Fprintf(out, "mode: %s\n", cfg.Pipeline.Mode)
			if cfg.Pipeline.StopAfter > 0 {
				fmt.Fprintf(out, "stop after: %d\n", cfg.Pipeline.StopAfter)
			}
		}
		return nil
	},
}

func init() {
	passesCmd.Flags().StringSlice("passes", nil, "passes to run, in order (default: config or all)")
	passesCmd.Flags().String("stop-after", "", "debug cutoff: run passes 1..N only (N or stop-after=N)")
	passesCmd.Flags().Bool("interactive", false, "show the interactive pipeline")
}

var (
	passHeaderStyle = lipgloss.NewStyle().Bold(true)
	passSkipStyle   = lipgloss.NewStyle().Faint(true)
)

// writePassTable prints one row per configured pass; passes cut off by
// stop-after are dimmed.
func writePassTable(w io.Writer, names []string, p *pipeline.Pipeline) {
	rows := [][]string{{"#", "PASS", "REQUIRES", "RUNS"}}
	for i, name := range names {
		req := "-"
		if pass, ok := pipeline.LookupPass(name); ok && pass.Requires() != "" {
			req = pass.Requires()
		}
		runs := "yes"
		if !p.Has(name) {
			runs = "no"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), name, req, runs})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	for r, row := range rows {
		style := lipgloss.NewStyle()
		switch {
		case r == 0:
			style = passHeaderStyle
		case row[3] == "no":
			style = passSkipStyle
		}
		cells := make([]string, len(row))
		for i, cell := range row {
			if i < len(row)-1 {
				cell = lipgloss.NewStyle().Width(widths[i] + 2).Render(cell)
			}
			cells[i] = cell
		}
		fmt.Fprintln(w, style.Render(strings.Join(cells, "")))
	}
}
