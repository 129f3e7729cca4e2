package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fjglira/sweepgen/internal/generator"
	"github.com/fjglira/sweepgen/internal/prompt"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the sweepgen.yaml configuration file and the template",
	Long: `Loads the configuration file, checks it for missing or invalid values,
parses the template and, when a scans section is present, expands it without
writing anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		gen, err := newGenerator(cfg)
		if err != nil {
			return err
		}
		tpl, err := gen.LoadTemplate(cfg)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration file %q is valid.\n", cfgFile)
		fmt.Fprintf(out, "Template %s declares %d adjustable field(s).\n", generator.TemplatePath(cfg), len(tpl.Fields))

		if len(cfg.Scans) == 0 {
			return nil
		}
		specs, err := prompt.NewPlanPrompter(cfg.Scans, false, false, out).SelectSpecs(tpl.Fields.Names())
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		plan, err := gen.Plan(cfg, tpl, specs)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(out, "Configured scans expand to %d task(s).\n", len(plan.Combinations))
		log.Debugf("Loaded config: %+v", cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
