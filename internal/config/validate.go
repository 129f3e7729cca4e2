package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fjglira/sweepgen/internal/domain"
)

// Validate checks the Config for required fields and valid values.
func Validate(cfg *Config) error {
	var errs []string

	// Template validation
	if cfg.Template.Directory == "" {
		errs = append(errs, "template.directory must not be empty")
	}
	if cfg.Template.InputFile == "" {
		errs = append(errs, "template.input_file must not be empty")
	}
	if filepath.IsAbs(cfg.Template.InputFile) || strings.HasPrefix(filepath.Clean(cfg.Template.InputFile), "..") {
		errs = append(errs, "template.input_file must be relative to template.directory")
	}
	if cfg.Template.Marker == "" {
		errs = append(errs, "template.marker must not be empty")
	}
	if cfg.Template.Separator == "" {
		errs = append(errs, "template.separator must not be empty")
	}
	if cfg.Template.Separator != "" && cfg.Template.Separator == cfg.Template.Marker {
		errs = append(errs, "template.separator must differ from template.marker")
	}

	// Scan validation
	if cfg.Scan.Tolerance < 0 {
		errs = append(errs, "scan.tolerance must not be negative")
	}
	if cfg.Scan.Precision < 0 || cfg.Scan.Precision > 15 {
		errs = append(errs, fmt.Sprintf("scan.precision must be between 0 and 15 (got %d)", cfg.Scan.Precision))
	}
	if cfg.Scan.MaxCombinations <= 0 {
		errs = append(errs, "scan.max_combinations must be positive")
	}

	// Symmetry validation
	for i, pair := range cfg.Symmetry.Pairs {
		if len(pair) != 2 {
			errs = append(errs, fmt.Sprintf("symmetry.pairs[%d] must name exactly two fields", i))
			continue
		}
		if pair[0] == "" || pair[1] == "" || pair[0] == pair[1] {
			errs = append(errs, fmt.Sprintf("symmetry.pairs[%d] must name two distinct fields", i))
		}
	}

	// Output validation
	if cfg.Output.Directory == "" {
		errs = append(errs, "output.directory must not be empty")
	}
	if cfg.Output.Manifest == "" {
		errs = append(errs, "output.manifest must not be empty")
	}
	if cfg.Output.TaskPrefix == "" {
		errs = append(errs, "output.task_prefix must not be empty")
	}
	if cfg.Output.NameSeparator == "" {
		errs = append(errs, "output.name_separator must not be empty")
	}
	if strings.ContainsAny(cfg.Output.TaskPrefix+cfg.Output.NameSeparator, `/\`) {
		errs = append(errs, "output.task_prefix and output.name_separator must not contain path separators")
	}

	// Submission validation
	if cfg.Submit.Command == "" {
		errs = append(errs, "submit.command must not be empty")
	}

	// Scan plan validation
	seen := make(map[string]bool)
	for i, s := range cfg.Scans {
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("scans[%d].name must not be empty", i))
			continue
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Sprintf("scans[%d]: field %q is scanned twice", i, s.Name))
		}
		seen[s.Name] = true
		if s.Start == "" || s.End == "" || s.Step == "" {
			errs = append(errs, fmt.Sprintf("scans[%d] (%s) needs start, end and step", i, s.Name))
		}
	}

	// Validate logging level
	if cfg.Logging.Level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[cfg.Logging.Level] {
			errs = append(errs, fmt.Sprintf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
		}
	}

	if len(errs) > 0 {
		return domain.NewError("config", "", 0, fmt.Sprintf("validation failed: %s", strings.Join(errs, "; ")), nil)
	}

	return nil
}
