package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fjglira/sweepgen/internal/config"
)

var (
	cfgFile string
	verbose bool
	log     *logrus.Logger
	logFile io.Closer
)

// rootCmd is the base command for sweepgen.
var rootCmd = &cobra.Command{
	Use:   "sweepgen",
	Short: "Generate parameter-sweep task directories from an annotated template",
	Long: `sweepgen reads a template input file whose tunable fields are annotated
with "! name1, name2" comments, expands scan ranges over the selected fields
and writes one ready-to-run task directory per combination, plus a CSV
manifest of what was generated.

Everything is driven by a YAML configuration file (sweepgen.yaml).`,
	SilenceUsage: true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logFile != nil {
			err := logFile.Close()
			logFile = nil
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "sweepgen.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Replaced by setupLogger once the config is loaded
	log = logrus.New()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads and validates the config file. A missing file yields the
// defaults so the tool works in a bare campaign directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, found, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if err := setupLogger(cfg, cmd.ErrOrStderr()); err != nil {
		return nil, err
	}
	if found {
		log.Debugf("Loaded config %s", cfgFile)
	} else {
		log.Debugf("No config file at %s, using defaults", cfgFile)
	}
	return cfg, nil
}

// setupLogger configures the shared logger from the logging section and
// --verbose, teeing into logging.file when set.
func setupLogger(cfg *config.Config, stderr io.Writer) error {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	level := logrus.InfoLevel
	if cfg.Logging.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("invalid logging.level: %w", err)
		}
		level = parsed
	}
	if verbose {
		level = logrus.DebugLevel
	}
	l.SetLevel(level)

	out := stderr
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		out = io.MultiWriter(stderr, f)
	}
	l.SetOutput(out)

	log = l
	return nil
}
