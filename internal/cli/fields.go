package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fjglira/sweepgen/internal/parser"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the adjustable fields of the template",
	Long:  `Parses the template input file and prints every annotated field with its line and current value.`,
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
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tFIELD\tLINE\tVALUE")
		for i, name := range tpl.Fields.Names() {
			value, _ := parser.FieldValue(tpl, name)
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", i+1, name, tpl.Fields[name].Line+1, value)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}
