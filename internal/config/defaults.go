package config

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Template: TemplateConfig{
			Directory:       "origin",
			InputFile:       "inputN.in",
			Marker:          "!",
			Separator:       ",",
			DescriptionOpen: "(",
		},
		Scan: ScanConfig{
			Tolerance:       1e-12,
			Precision:       12,
			MaxCombinations: 100000,
		},
		Symmetry: SymmetryConfig{
			Pairs: [][]string{{"asub1", "asub2"}},
		},
		Output: OutputConfig{
			Directory:     "tasks",
			Manifest:      "tasks.csv",
			TaskPrefix:    "task",
			NameSeparator: "_",
			Summary:       true,
		},
		Submit: SubmitConfig{
			Enabled: false,
			Command: "sbatch",
			Args:    []string{"V-3.sh"},
			BlockedPatterns: []string{
				"rm -rf",
				"mkfs",
				"dd if=",
				"> /dev/sd",
				"scancel",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		DryRun: false,
	}
}
