package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sable/internal/diag"
	"sable/internal/diagfmt"
	"sable/internal/pipeline"
)

// loadConfig reads --config, or the nearest sable.toml, or the defaults.
func loadConfig(cmd *cobra.Command) (pipeline.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return pipeline.Config{}, err
		}
		found, ok, err := pipeline.FindConfig(wd)
		if err != nil {
			return pipeline.Config{}, err
		}
		if !ok {
			return pipeline.DefaultConfig(), nil
		}
		path = found
	}
	return pipeline.LoadConfig(path)
}

// overrideConfig applies the command-line flags that shadow config keys and
// re-validates the result.
func overrideConfig(cmd *cobra.Command, cfg *pipeline.Config) error {
	root := cmd.Root().PersistentFlags()
	if root.Changed("color") {
		v, err := root.GetString("color")
		if err != nil {
			return fmt.Errorf("failed to get color flag: %w", err)
		}
		cfg.Diagnostics.Color = strings.ToLower(v)
	}
	if root.Changed("max-diagnostics") {
		v, err := root.GetInt("max-diagnostics")
		if err != nil {
			return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
		cfg.Diagnostics.Max = v
	}

	flags := cmd.Flags()
	if f := flags.Lookup("passes"); f != nil && f.Changed {
		v, err := flags.GetStringSlice("passes")
		if err != nil {
			return fmt.Errorf("failed to get passes flag: %w", err)
		}
		cfg.Pipeline.Passes = v
		cfg.Pipeline.StopAfter = 0
	}
	if f := flags.Lookup("stop-after"); f != nil && f.Changed {
		v, err := flags.GetString("stop-after")
		if err != nil {
			return fmt.Errorf("failed to get stop-after flag: %w", err)
		}
		n, err := pipeline.ParseCutoff(v, len(cfg.Pipeline.Passes))
		if err != nil {
			return err
		}
		cfg.Pipeline.StopAfter = n
	}
	if f := flags.Lookup("interactive"); f != nil && f.Changed {
		v, err := flags.GetBool("interactive")
		if err != nil {
			return fmt.Errorf("failed to get interactive flag: %w", err)
		}
		cfg.Pipeline.Mode = pipeline.ModeBatch
		if v {
			cfg.Pipeline.Mode = pipeline.ModeInteractive
		}
	}
	if f := flags.Lookup("format"); f != nil && f.Changed {
		v, err := flags.GetString("format")
		if err != nil {
			return fmt.Errorf("failed to get format flag: %w", err)
		}
		cfg.Diagnostics.Format = strings.ToLower(v)
	}
	if f := flags.Lookup("warnings-as-errors"); f != nil && f.Changed {
		v, err := flags.GetBool("warnings-as-errors")
		if err != nil {
			return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
		}
		cfg.Diagnostics.WarningsAsErrors = v
	}
	return cfg.Validate()
}

// resolveConfig is loadConfig followed by overrideConfig. A configuration
// diagnostic is printed to stderr before the error is returned.
func resolveConfig(cmd *cobra.Command) (pipeline.Config, error) {
	cfg, err := loadConfig(cmd)
	if err == nil {
		err = overrideConfig(cmd, &cfg)
	}
	if err != nil {
		var cerr *pipeline.ConfigError
		if errors.As(err, &cerr) {
			bag := diag.NewBag(1)
			cerr.Report(diag.BagReporter{Bag: bag})
			diagfmt.Pretty(cmd.ErrOrStderr(), bag, nil, diagfmt.PrettyOpts{
				Color: useColor(cfg.Diagnostics.Color, os.Stderr),
			})
		}
		return pipeline.Config{}, err
	}
	return cfg, nil
}

// useColor decides colouring for f from an auto|on|off mode.
func useColor(mode string, f *os.File) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(f)
	}
}

func quiet(cmd *cobra.Command) bool {
	q, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && q
}
