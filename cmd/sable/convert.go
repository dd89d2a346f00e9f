package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sable/internal/astio"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in.json|in.sbt> <out.json|out.sbt>",
	Short: "Re-encode a tree file, json to msgpack or back",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := astio.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := astio.WriteFile(args[1], doc); err != nil {
			return err
		}
		if !quiet(cmd) {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d units)\n", args[1], len(doc.Units))
		}
		return nil
	},
}
