package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/fjglira/sweepgen/internal/materializer"
	"github.com/fjglira/sweepgen/internal/scanner"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [task-dir]...",
	Short: "Decode task directory names into their parameter values",
	Long: `Prints the id and parameter values encoded in each task directory name.
Without arguments every task directory under output.directory is listed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			pattern := scanner.TaskPattern(cfg.Output.TaskPrefix, cfg.Output.NameSeparator)
			args, err = scanner.NewScanner().Scan(cfg.Output.Directory, []string{pattern}, nil)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return fmt.Errorf("no task directories found in %s", cfg.Output.Directory)
			}
		}

		type entry struct {
			name    string
			decoded materializer.DecodedName
		}
		var entries []entry
		for _, arg := range args {
			name := filepath.Base(filepath.Clean(arg))
			decoded, err := materializer.ParseTaskName(name, cfg.Output.TaskPrefix, cfg.Output.NameSeparator)
			if err != nil {
				log.Warnf("Skipping %s: %v", arg, err)
				continue
			}
			entries = append(entries, entry{name: name, decoded: decoded})
		}
		if len(entries) == 0 {
			return fmt.Errorf("none of the %d argument(s) is a task directory name", len(args))
		}

		sort.SliceStable(entries, func(i, j int) bool { return entries[i].decoded.ID < entries[j].decoded.ID })
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", e.name, e.decoded.ID, e.decoded)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
