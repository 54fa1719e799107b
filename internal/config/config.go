// Package config handles loading pipeline configuration from files.
//
// Configuration can be specified in a JSON file named nzsl.json, .nzslrc or
// .nzslrc.json. The config file is searched for in the current directory and
// parent directories.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/nzsl-go/nzsl/internal/ast"
	"github.com/nzsl-go/nzsl/internal/backend/sltext"
	"github.com/nzsl-go/nzsl/internal/pipeline"
)

// Config represents the configuration file structure.
// All fields are optional and will use default values if not specified.
type Config struct {
	// MinifyWhitespace removes unnecessary whitespace and newlines from
	// printed SL output.
	MinifyWhitespace *bool `json:"minifyWhitespace,omitempty"`

	// TreeShaking enables dead code elimination (default false: a module
	// compiled without a chosen entry stage has nothing safe to eliminate).
	TreeShaking *bool `json:"treeShaking,omitempty"`

	// UsedStages lists which entry-point stages ("vert", "frag", "comp")
	// tree shaking treats as roots. Unrecognized names are ignored.
	UsedStages []string `json:"usedStages,omitempty"`

	// AllowUnknownIdentifiers and PartialCompilation mirror
	// pipeline.Options' same-named fields, for editor-style incremental
	// compilation of a module still being typed.
	AllowUnknownIdentifiers *bool `json:"allowUnknownIdentifiers,omitempty"`
	PartialCompilation      *bool `json:"partialCompilation,omitempty"`

	// KeepNames lists identifier names that should not be tree-shaken away.
	KeepNames []string `json:"keepNames,omitempty"`
}

// ConfigFileNames are the names searched for config files, in order of preference.
var ConfigFileNames = []string{
	"nzsl.json",
	".nzslrc",
	".nzslrc.json",
}

// Load searches for a config file starting from the given directory
// and walking up to parent directories. Returns nil if no config file is found.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root, no config found
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// stageNames maps the config file's stage spelling onto ast.ShaderStage.
// Unrecognized names are silently dropped rather than rejected, since a
// config file is meant to be hand-edited and forward-compatible with
// stage names a future version might add.
var stageNames = map[string]ast.ShaderStage{
	"vert": ast.StageVertex,
	"frag": ast.StageFragment,
	"comp": ast.StageCompute,
}

func parseStages(names []string) []ast.ShaderStage {
	if len(names) == 0 {
		return nil
	}
	stages := make([]ast.ShaderStage, 0, len(names))
	for _, name := range names {
		if stage, ok := stageNames[name]; ok {
			stages = append(stages, stage)
		}
	}
	return stages
}

// ToOptions converts a Config to pipeline.Options, using defaults for unset fields.
func (c *Config) ToOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()

	if c.TreeShaking != nil {
		opts.TreeShaking = *c.TreeShaking
	}
	if stages := parseStages(c.UsedStages); stages != nil {
		opts.UsedStages = stages
	}
	if c.AllowUnknownIdentifiers != nil {
		opts.AllowUnknownIdentifiers = *c.AllowUnknownIdentifiers
	}
	if c.PartialCompilation != nil {
		opts.PartialCompilation = *c.PartialCompilation
	}
	if len(c.KeepNames) > 0 {
		opts.KeepNames = c.KeepNames
	}

	return opts
}

// PrintOptions converts a Config to sltext.Options, using defaults for unset
// fields. Kept separate from ToOptions because printing and compiling are
// two different stages a caller may run independently.
func (c *Config) PrintOptions() sltext.Options {
	opts := sltext.Options{}
	if c.MinifyWhitespace != nil {
		opts.MinifyWhitespace = *c.MinifyWhitespace
	}
	return opts
}

// MergeOptions carries CLI flags (nil/false meaning "not specified on CLI").
// CLI options take precedence over config file options.
type MergeOptions struct {
	MinifyWhitespace        *bool
	TreeShaking             *bool
	NoTreeShaking           bool
	UsedStages              []string
	AllowUnknownIdentifiers *bool
	PartialCompilation      *bool
	KeepNames               []string
}

// Merge merges CLI options with config file options, for pipeline.Compile.
// CLI options override config file options when specified.
func (c *Config) Merge(cli MergeOptions) pipeline.Options {
	opts := c.ToOptions()

	if cli.TreeShaking != nil {
		opts.TreeShaking = *cli.TreeShaking
	}
	if cli.NoTreeShaking {
		opts.TreeShaking = false
	}
	if stages := parseStages(cli.UsedStages); stages != nil {
		opts.UsedStages = stages
	}
	if cli.AllowUnknownIdentifiers != nil {
		opts.AllowUnknownIdentifiers = *cli.AllowUnknownIdentifiers
	}
	if cli.PartialCompilation != nil {
		opts.PartialCompilation = *cli.PartialCompilation
	}
	if len(cli.KeepNames) > 0 {
		// Append CLI keep names to config keep names
		opts.KeepNames = append(opts.KeepNames, cli.KeepNames...)
	}

	return opts
}

// MergePrintOptions merges CLI options with config file options, for the
// sltext.Emitter.
func (c *Config) MergePrintOptions(cli MergeOptions) sltext.Options {
	opts := c.PrintOptions()
	if cli.MinifyWhitespace != nil {
		opts.MinifyWhitespace = *cli.MinifyWhitespace
	}
	return opts
}
