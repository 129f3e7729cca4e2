// Package materializer turns planned combinations into task directories.
package materializer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fjglira/sweepgen/internal/domain"
	"github.com/fjglira/sweepgen/internal/manifest"
	"github.com/fjglira/sweepgen/internal/parser"
	"github.com/fjglira/sweepgen/internal/submit"
)

// Options locates the template tree and the generated output.
type Options struct {
	TemplateDir   string // Tree copied into every task directory
	InputFile     string // Template file path relative to TemplateDir
	OutputDir     string // Parent of the task directories
	ManifestPath  string
	TaskPrefix    string
	NameSeparator string
	DryRun        bool
}

// Materializer creates one directory per combination of a plan.
type Materializer interface {
	Materialize(ctx context.Context, plan *domain.Plan) (*domain.RunResult, error)
}

// DefaultMaterializer implements Materializer. Tasks are processed strictly
// one after another; a nil submitter disables submission.
type DefaultMaterializer struct {
	tpl       *domain.Template
	opts      Options
	copier    Copier
	submitter submit.Submitter
	log       *logrus.Logger
}

// NewMaterializer creates a new DefaultMaterializer.
func NewMaterializer(tpl *domain.Template, opts Options, c Copier, s submit.Submitter, log *logrus.Logger) *DefaultMaterializer {
	return &DefaultMaterializer{
		tpl:       tpl,
		opts:      opts,
		copier:    c,
		submitter: s,
		log:       log,
	}
}

// Materialize writes every task of plan. On error the tasks completed so far
// are returned together with the error; nothing is rolled back.
func (m *DefaultMaterializer) Materialize(ctx context.Context, plan *domain.Plan) (*domain.RunResult, error) {
	result := &domain.RunResult{
		Plan:         plan,
		ManifestPath: m.opts.ManifestPath,
		OutputDir:    m.opts.OutputDir,
		Submitted:    m.submitter != nil,
	}

	if err := m.checkLayout(); err != nil {
		return result, err
	}

	if m.opts.DryRun {
		for i, combo := range plan.Combinations {
			task := m.newTask(i, plan.Names, combo)
			m.log.Infof("[DRY-RUN] Would create: %s", task.Dir)
			result.Tasks = append(result.Tasks, task)
		}
		result.FinishedAt = time.Now()
		return result, nil
	}

	if err := os.MkdirAll(m.opts.OutputDir, 0755); err != nil {
		return result, domain.NewErrorWithSuggestion("materialize", m.opts.OutputDir, 0,
			"failed to create output directory",
			"check that the parent directory exists and has write permissions",
			err)
	}

	mw, err := manifest.Create(m.opts.ManifestPath, plan.Names)
	if err != nil {
		return result, err
	}

	runErr := m.materializeAll(ctx, plan, mw, result)
	if err := mw.Close(); err != nil && runErr == nil {
		runErr = err
	}
	result.FinishedAt = time.Now()
	return result, runErr
}

func (m *DefaultMaterializer) materializeAll(ctx context.Context, plan *domain.Plan, mw *manifest.Writer, result *domain.RunResult) error {
	for i, combo := range plan.Combinations {
		if err := ctx.Err(); err != nil {
			return domain.NewError("materialize", m.opts.OutputDir, 0,
				fmt.Sprintf("run interrupted after %d of %d tasks", len(result.Tasks), len(plan.Combinations)), err)
		}

		task := m.newTask(i, plan.Names, combo)
		entry := m.log.WithFields(logrus.Fields{"run": plan.RunID, "task": task.ID})

		if err := m.prepareDir(task.Dir); err != nil {
			return err
		}
		if err := m.writeInput(task.Dir, plan.Names, combo); err != nil {
			return err
		}
		if err := mw.Append(task); err != nil {
			return err
		}
		entry.Infof("Created: %s", task.Dir)

		if m.submitter != nil {
			task.Submission = m.submitter.Submit(ctx, task.Dir)
			if task.Submission.Succeeded() {
				entry.Debugf("Submitted %s: %s", task.Name, task.Submission.Output)
			} else {
				entry.Warnf("Submission of %s failed (exit %d): %v %s",
					task.Name, task.Submission.ExitCode, task.Submission.Err, task.Submission.Output)
			}
		}

		result.Tasks = append(result.Tasks, task)
	}
	return nil
}

func (m *DefaultMaterializer) newTask(i int, names []string, combo domain.Combination) domain.Task {
	id := i + 1
	name := TaskName(m.opts.TaskPrefix, m.opts.NameSeparator, id, names, combo)
	return domain.Task{
		ID:          id,
		Name:        name,
		Dir:         filepath.Join(m.opts.OutputDir, name),
		Combination: combo,
	}
}

// prepareDir replaces dir with a fresh copy of the template tree.
func (m *DefaultMaterializer) prepareDir(dir string) error {
	if _, err := os.Lstat(dir); err == nil {
		m.log.Debugf("Removing existing directory: %s", dir)
		if err := os.RemoveAll(dir); err != nil {
			return domain.NewErrorWithSuggestion("materialize", dir, 0,
				"failed to remove existing task directory",
				"check file permissions or remove the directory by hand",
				err)
		}
	} else if !os.IsNotExist(err) {
		return domain.NewError("materialize", dir, 0, "failed to inspect task directory", err)
	}
	return m.copier.CopyTree(m.opts.TemplateDir, dir)
}

func (m *DefaultMaterializer) writeInput(dir string, names []string, combo domain.Combination) error {
	lines, err := parser.Render(m.tpl, names, combo)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, m.opts.InputFile)
	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	// never write through a link into the template
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return domain.NewError("materialize", path, 0, "failed to replace input file", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "")), perm); err != nil {
		return domain.NewErrorWithSuggestion("materialize", path, 0,
			"failed to write input file",
			"check disk space and write permissions for the output directory",
			err)
	}
	return nil
}

// checkLayout refuses an output directory inside the template tree, which
// would be copied into every new task.
func (m *DefaultMaterializer) checkLayout() error {
	info, err := os.Stat(m.opts.TemplateDir)
	if err != nil {
		return domain.NewErrorWithSuggestion("config", m.opts.TemplateDir, 0,
			"template directory not found",
			"set template.directory in sweepgen.yaml",
			err)
	}
	if !info.IsDir() {
		return domain.NewError("config", m.opts.TemplateDir, 0, "template path is not a directory", nil)
	}

	tplAbs, err := filepath.Abs(m.opts.TemplateDir)
	if err != nil {
		return domain.NewError("config", m.opts.TemplateDir, 0, "cannot resolve template directory", err)
	}
	outAbs, err := filepath.Abs(m.opts.OutputDir)
	if err != nil {
		return domain.NewError("config", m.opts.OutputDir, 0, "cannot resolve output directory", err)
	}
	rel, err := filepath.Rel(tplAbs, outAbs)
	if err == nil && (rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))) {
		return domain.NewErrorWithSuggestion("config", m.opts.OutputDir, 0,
			"output directory lies inside the template directory",
			"move output.directory next to template.directory",
			nil)
	}
	return nil
}
