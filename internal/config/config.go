package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fjglira/sweepgen/internal/domain"
)

// Config is the top-level configuration struct.
type Config struct {
	Template TemplateConfig `yaml:"template"`
	Scan     ScanConfig     `yaml:"scan"`
	Symmetry SymmetryConfig `yaml:"symmetry"`
	Output   OutputConfig   `yaml:"output"`
	Submit   SubmitConfig   `yaml:"submit"`
	Logging  LoggingConfig  `yaml:"logging"`
	Scans    []ScanEntry    `yaml:"scans"`
	DryRun   bool           `yaml:"dry_run"`
}

type TemplateConfig struct {
	Directory       string `yaml:"directory"`
	InputFile       string `yaml:"input_file"`
	Marker          string `yaml:"marker"`
	Separator       string `yaml:"separator"`
	DescriptionOpen string `yaml:"description_open"`
	Strict          bool   `yaml:"strict"`
}

type ScanConfig struct {
	Tolerance       float64 `yaml:"tolerance"`
	Precision       int     `yaml:"precision"`
	MaxCombinations int     `yaml:"max_combinations"`
}

type SymmetryConfig struct {
	Pairs [][]string `yaml:"pairs"`
}

type OutputConfig struct {
	Directory     string `yaml:"directory"`
	Manifest      string `yaml:"manifest"`
	TaskPrefix    string `yaml:"task_prefix"`
	NameSeparator string `yaml:"name_separator"`
	Summary       bool   `yaml:"summary"`

	// SummaryTemplates holds .tmpl files overriding the built-in summary
	SummaryTemplates string `yaml:"summary_templates"`
}

type SubmitConfig struct {
	Enabled         bool     `yaml:"enabled"`
	Command         string   `yaml:"command"`
	Args            []string `yaml:"args"`
	BlockedPatterns []string `yaml:"blocked_patterns"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ScanEntry is a pre-declared scan range. Bounds stay strings so that
// "1" and "1.0" keep their integer/real distinction.
type ScanEntry struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	Step  string `yaml:"step"`
}

// StrictTemplate reports whether template parsing rejects excess and
// duplicate names. Off by default: excess names are ignored and the last
// declaration of a name wins.
func (c *Config) StrictTemplate() bool {
	return c.Template.Strict
}

// Load reads a YAML configuration file and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError("config", path, 0, "failed to read config file", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, domain.NewError("config", path, 0, "failed to parse config file", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to DefaultConfig
// otherwise, so the tool works in a bare campaign directory.
func LoadOrDefault(path string) (*Config, bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), false, nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}
