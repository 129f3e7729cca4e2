package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fjglira/sweepgen/internal/config"
	"github.com/fjglira/sweepgen/internal/domain"
	"github.com/fjglira/sweepgen/internal/generator"
	"github.com/fjglira/sweepgen/internal/materializer"
	"github.com/fjglira/sweepgen/internal/parser"
	"github.com/fjglira/sweepgen/internal/prompt"
	"github.com/fjglira/sweepgen/internal/report"
	"github.com/fjglira/sweepgen/internal/scan"
)

var (
	assumeYes bool
	doSubmit  bool
	noSubmit  bool
	dryRun    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Select fields, expand the scan and generate task directories",
	Long: `Parses the template, asks which fields to scan (or takes them from the
scans section of the config), shows the resulting combinations and, once
confirmed, writes one task directory per combination plus the manifest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if doSubmit && noSubmit {
			return errors.New("--submit and --no-submit are mutually exclusive")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if dryRun {
			cfg.DryRun = true
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		_, err = runSweep(ctx, cfg, newRunPrompter(cmd, cfg))
		return err
	},
}

func init() {
	runCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation gate")
	runCmd.Flags().BoolVar(&doSubmit, "submit", false, "submit every generated task")
	runCmd.Flags().BoolVar(&noSubmit, "no-submit", false, "never submit generated tasks")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan the sweep but don't write anything")
	rootCmd.AddCommand(runCmd)
}

// newGenerator wires all components from cfg.
func newGenerator(cfg *config.Config) (*generator.DefaultGenerator, error) {
	p := parser.NewAnnotatedParser(parserOptions(cfg), log)
	e := scan.NewExpander(scan.Options{
		Tolerance:       cfg.Scan.Tolerance,
		Precision:       cfg.Scan.Precision,
		MaxCombinations: cfg.Scan.MaxCombinations,
	})

	var r report.Reporter
	if cfg.Output.Summary {
		engine, err := report.NewEngine(cfg.Output.SummaryTemplates, report.DefaultTemplate)
		if err != nil {
			return nil, fmt.Errorf("failed to create report engine: %w", err)
		}
		r = report.NewMarkdownReporter(engine)
	}

	return generator.NewGenerator(p, e, materializer.NewTreeCopier(), r, log), nil
}

func parserOptions(cfg *config.Config) parser.Options {
	return parser.Options{
		Marker:          cfg.Template.Marker,
		Separator:       cfg.Template.Separator,
		DescriptionOpen: cfg.Template.DescriptionOpen,
		Strict:          cfg.StrictTemplate(),
	}
}

// runSweep wires all components and runs the generator.
func runSweep(ctx context.Context, cfg *config.Config, p prompt.Prompter) (*domain.RunResult, error) {
	gen, err := newGenerator(cfg)
	if err != nil {
		return nil, err
	}
	return gen.Generate(ctx, cfg, p)
}

// newRunPrompter picks the answers for the run command: scans from the config
// when present, gates from --yes/--submit/--no-submit, the console otherwise.
func newRunPrompter(cmd *cobra.Command, cfg *config.Config) prompt.Prompter {
	rp := &runPrompter{
		Prompter:  prompt.NewConsolePrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
		out:       cmd.OutOrStdout(),
		assumeYes: assumeYes,
	}
	if len(cfg.Scans) > 0 {
		rp.specs = prompt.NewPlanPrompter(cfg.Scans, assumeYes, cfg.Submit.Enabled, cmd.OutOrStdout())
	}

	switch {
	case doSubmit:
		rp.submit = boolPtr(true)
	case noSubmit:
		rp.submit = boolPtr(false)
	case assumeYes:
		rp.submit = boolPtr(cfg.Submit.Enabled)
	}
	return rp
}

// runPrompter overrides parts of the console dialogue with flag and config
// answers.
type runPrompter struct {
	prompt.Prompter
	specs     prompt.Prompter
	out       io.Writer
	assumeYes bool
	submit    *bool
}

func (p *runPrompter) SelectSpecs(fields []string) ([]domain.ScanSpec, error) {
	if p.specs != nil {
		return p.specs.SelectSpecs(fields)
	}
	return p.Prompter.SelectSpecs(fields)
}

func (p *runPrompter) Confirm(plan *domain.Plan) (bool, error) {
	if p.assumeYes {
		prompt.WritePreview(p.out, plan)
		return true, nil
	}
	return p.Prompter.Confirm(plan)
}

func (p *runPrompter) ConfirmSubmit(command string) (bool, error) {
	if p.submit != nil {
		return *p.submit, nil
	}
	return p.Prompter.ConfirmSubmit(command)
}

func boolPtr(b bool) *bool { return &b }
