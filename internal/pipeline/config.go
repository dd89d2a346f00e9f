package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"sable/internal/diag"
)

// ConfigFileName is the project configuration file looked up by the CLI.
const ConfigFileName = "sable.toml"

// Mode selects how diagnostics are delivered.
type Mode string

const (
	// ModeBatch collects diagnostics per pass and halts on errors.
	ModeBatch Mode = "batch"
	// ModeInteractive raises the first error of each submission.
	ModeInteractive Mode = "interactive"
)

// Config mirrors sable.toml.
type Config struct {
	Pipeline    PipelineConfig    `toml:"pipeline"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
}

// PipelineConfig is the [pipeline] section.
type PipelineConfig struct {
	Passes []string `toml:"passes"`
	// StopAfter is the debug cutoff: 0 runs every pass, N runs passes 1..N.
	StopAfter int  `toml:"stop_after"`
	Mode      Mode `toml:"mode"`
}

// DiagnosticsConfig is the [diagnostics] section.
type DiagnosticsConfig struct {
	Max              int    `toml:"max"`
	Format           string `toml:"format"`
	Color            string `toml:"color"`
	WarningsAsErrors bool   `toml:"warnings_as_errors"`
}

var (
	diagnosticFormats = []string{"pretty", "json", "short"}
	colorModes        = []string{"auto", "on", "off"}
)

// DefaultConfig returns the configuration used when no sable.toml exists.
func DefaultConfig() Config {
	return Config{
		Pipeline: PipelineConfig{
			Passes: DefaultPassNames(),
			Mode:   ModeBatch,
		},
		Diagnostics: DiagnosticsConfig{
			Max:    100,
			Format: "pretty",
			Color:  "auto",
		},
	}
}

// FindConfig walks up from startDir to locate sable.toml.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadConfig decodes path on top of DefaultConfig. Keys missing from the
// file keep their defaults; the result is validated.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("pipeline", "passes") && cfg.Pipeline.Passes == nil {
		cfg.Pipeline.Passes = []string{}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig parses TOML text, for configs that do not come from disk.
func DecodeConfig(text string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.Decode(text, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting and returns the first *ConfigError.
func (c Config) Validate() error {
	if _, err := buildPasses(c.Pipeline.Passes); err != nil {
		return err
	}
	if err := checkCutoff(c.Pipeline.StopAfter, len(c.Pipeline.Passes)); err != nil {
		return err
	}
	switch c.Pipeline.Mode {
	case ModeBatch, ModeInteractive:
	default:
		return newConfigError(diag.CfgBadMode, string(c.Pipeline.Mode))
	}
	if !slices.Contains(diagnosticFormats, c.Diagnostics.Format) {
		return newConfigError(diag.CfgBadFormat, "format", c.Diagnostics.Format)
	}
	if !slices.Contains(colorModes, c.Diagnostics.Color) {
		return newConfigError(diag.CfgBadFormat, "color mode", c.Diagnostics.Color)
	}
	return nil
}
