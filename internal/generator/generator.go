package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fjglira/sweepgen/internal/config"
	"github.com/fjglira/sweepgen/internal/domain"
	"github.com/fjglira/sweepgen/internal/materializer"
	"github.com/fjglira/sweepgen/internal/parser"
	"github.com/fjglira/sweepgen/internal/prompt"
	"github.com/fjglira/sweepgen/internal/report"
	"github.com/fjglira/sweepgen/internal/scan"
	"github.com/fjglira/sweepgen/internal/submit"
	"github.com/fjglira/sweepgen/internal/symmetry"
)

// Generator is the top-level orchestrator.
type Generator interface {
	LoadTemplate(cfg *config.Config) (*domain.Template, error)
	Plan(cfg *config.Config, tpl *domain.Template, specs []domain.ScanSpec) (*domain.Plan, error)
	Run(ctx context.Context, cfg *config.Config, tpl *domain.Template, plan *domain.Plan, s submit.Submitter) (*domain.RunResult, error)
	Generate(ctx context.Context, cfg *config.Config, p prompt.Prompter) (*domain.RunResult, error)
}

// DefaultGenerator implements Generator by wiring all components together.
type DefaultGenerator struct {
	parser    parser.Parser
	expander  scan.Expander
	copier    materializer.Copier
	reporter  report.Reporter
	submitter func(cfg *config.Config) (submit.Submitter, error)
	log       *logrus.Logger
}

// NewGenerator creates a new DefaultGenerator with all dependencies.
// A nil reporter disables the run summary.
func NewGenerator(
	p parser.Parser,
	e scan.Expander,
	c materializer.Copier,
	r report.Reporter,
	log *logrus.Logger,
) *DefaultGenerator {
	return &DefaultGenerator{
		parser:    p,
		expander:  e,
		copier:    c,
		reporter:  r,
		submitter: execSubmitter,
		log:       log,
	}
}

// WithSubmitterFactory replaces how the submission backend is built once the
// operator asked for submission.
func (g *DefaultGenerator) WithSubmitterFactory(f func(cfg *config.Config) (submit.Submitter, error)) *DefaultGenerator {
	g.submitter = f
	return g
}

func execSubmitter(cfg *config.Config) (submit.Submitter, error) {
	return submit.NewExecSubmitter(&cfg.Submit)
}

// TemplatePath is the annotated input file inside the template directory.
func TemplatePath(cfg *config.Config) string {
	return filepath.Join(cfg.Template.Directory, cfg.Template.InputFile)
}

// LoadTemplate parses the configured template input file.
func (g *DefaultGenerator) LoadTemplate(cfg *config.Config) (*domain.Template, error) {
	path := TemplatePath(cfg)
	g.log.Debugf("Parsing template: %s", path)
	tpl, err := g.parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	g.log.Debugf("Found %d adjustable field(s) in %s", len(tpl.Fields), path)
	return tpl, nil
}

// Plan expands specs, applies the symmetry filters and stamps a run id.
// Nothing is written.
func (g *DefaultGenerator) Plan(cfg *config.Config, tpl *domain.Template, specs []domain.ScanSpec) (*domain.Plan, error) {
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		if _, ok := tpl.Fields[s.Name]; !ok {
			return nil, domain.NewError("config", tpl.Path, 0, fmt.Sprintf("invalid parameter %q: not an adjustable field", s.Name), nil)
		}
		if seen[s.Name] {
			return nil, domain.NewError("config", tpl.Path, 0, fmt.Sprintf("parameter %q selected twice", s.Name), nil)
		}
		seen[s.Name] = true
	}

	names, combos, err := g.expander.Expand(specs)
	if err != nil {
		return nil, err
	}

	combos, reports := symmetry.Filter(names, combos, symmetry.PairsFromConfig(cfg.Symmetry.Pairs))
	for _, r := range reports {
		if r.Applied {
			g.log.Infof("Applied symmetry filter %s <= %s: %d -> %d combinations", r.First, r.Second, r.Before, r.After)
		}
	}

	return &domain.Plan{
		RunID:        uuid.NewString(),
		CreatedAt:    time.Now(),
		TemplatePath: tpl.Path,
		Names:        names,
		Specs:        specs,
		Combinations: combos,
		Filters:      reports,
	}, nil
}

// Run materializes plan and writes the run summary. A nil submitter
// disables submission.
func (g *DefaultGenerator) Run(ctx context.Context, cfg *config.Config, tpl *domain.Template, plan *domain.Plan, s submit.Submitter) (*domain.RunResult, error) {
	opts := materializer.Options{
		TemplateDir:   cfg.Template.Directory,
		InputFile:     cfg.Template.InputFile,
		OutputDir:     cfg.Output.Directory,
		ManifestPath:  cfg.Output.Manifest,
		TaskPrefix:    cfg.Output.TaskPrefix,
		NameSeparator: cfg.Output.NameSeparator,
		DryRun:        cfg.DryRun,
	}

	log := g.log.WithField("run", plan.RunID)
	log.Infof("Materializing %d task(s) into %s", len(plan.Combinations), cfg.Output.Directory)

	m := materializer.NewMaterializer(tpl, opts, g.copier, s, g.log)
	result, err := m.Materialize(ctx, plan)
	if err != nil {
		log.Errorf("Run stopped after %d task(s); manifest %s holds the rows written so far", len(result.Tasks), cfg.Output.Manifest)
		return result, err
	}

	if g.reporter != nil && cfg.Output.Summary && !cfg.DryRun {
		paths, err := g.reporter.Write(result)
		if err != nil {
			// the tasks and manifest are already complete
			log.Warnf("Failed to write run summary: %v", err)
		} else {
			log.Debugf("Wrote summary: %v", paths)
		}
	}

	verb := "Prepared"
	if result.Submitted {
		verb = "Prepared and submitted"
	}
	if cfg.DryRun {
		verb = "[DRY-RUN] Planned"
	}
	log.Infof("%s %d task(s); metadata in %s", verb, len(result.Tasks), cfg.Output.Manifest)
	return result, nil
}

// Generate runs the full pipeline: parse -> select -> expand -> filter ->
// confirm -> materialize. It returns a nil result when the operator declines.
func (g *DefaultGenerator) Generate(ctx context.Context, cfg *config.Config, p prompt.Prompter) (*domain.RunResult, error) {
	tpl, err := g.LoadTemplate(cfg)
	if err != nil {
		return nil, err
	}

	specs, err := p.SelectSpecs(tpl.Fields.Names())
	if err != nil {
		return nil, err
	}

	plan, err := g.Plan(cfg, tpl, specs)
	if err != nil {
		return nil, err
	}
	if len(plan.Combinations) == 0 {
		g.log.Warn("No combinations left to materialize")
		return nil, nil
	}

	ok, err := p.Confirm(plan)
	if err != nil {
		return nil, err
	}
	if !ok {
		g.log.Info("Aborted by user")
		return nil, nil
	}

	var s submit.Submitter
	if !cfg.DryRun {
		want, err := p.ConfirmSubmit(submitCommandLine(cfg))
		if err != nil {
			return nil, err
		}
		if want {
			if s, err = g.submitter(cfg); err != nil {
				return nil, err
			}
		}
	}

	return g.Run(ctx, cfg, tpl, plan, s)
}

func submitCommandLine(cfg *config.Config) string {
	line := cfg.Submit.Command
	for _, a := range cfg.Submit.Args {
		line += " " + a
	}
	return line
}
