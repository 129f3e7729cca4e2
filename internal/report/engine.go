package report

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/fjglira/sweepgen/internal/domain"
)

//go:embed templates/*.tmpl
var builtin embed.FS

// DefaultTemplate is the name of the built-in summary template.
const DefaultTemplate = "summary.md"

// Engine renders run results into Markdown.
type Engine struct {
	templates   map[string]*template.Template
	defaultName string
}

// NewEngine loads the built-in templates, then any .tmpl files found in
// templateDir (which may be empty). Files in templateDir win on name clashes.
func NewEngine(templateDir, defaultTemplate string) (*Engine, error) {
	if defaultTemplate == "" {
		defaultTemplate = DefaultTemplate
	}
	e := &Engine{
		templates:   make(map[string]*template.Template),
		defaultName: defaultTemplate,
	}

	if err := e.load(builtin, "templates"); err != nil {
		return nil, err
	}
	if templateDir != "" {
		if err := e.load(os.DirFS(templateDir), "."); err != nil {
			return nil, err
		}
	}
	if _, ok := e.templates[e.defaultName]; !ok {
		return nil, domain.NewError("report", templateDir, 0,
			fmt.Sprintf("template %q not found (available: %s)", e.defaultName, strings.Join(e.ListTemplates(), ", ")), nil)
	}
	return e, nil
}

func (e *Engine) load(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return domain.NewError("report", dir, 0, "failed to read template directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tmpl") {
			continue
		}
		path := filepath.ToSlash(filepath.Join(dir, entry.Name()))
		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return domain.NewError("report", path, 0, "failed to read template file", err)
		}

		name := strings.TrimSuffix(entry.Name(), ".tmpl")
		tmpl, err := template.New(name).Funcs(CustomFuncMap()).Parse(string(content))
		if err != nil {
			return domain.NewError("report", path, 0, "failed to parse template", err)
		}
		e.templates[name] = tmpl
	}
	return nil
}

// ListTemplates returns the names of all loaded templates, sorted.
func (e *Engine) ListTemplates() []string {
	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render renders result with the default template.
func (e *Engine) Render(result *domain.RunResult) (string, error) {
	tmpl := e.templates[e.defaultName]

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newSummaryData(result)); err != nil {
		return "", domain.NewError("report", e.defaultName, 0, "failed to execute template", err)
	}
	return buf.String(), nil
}

type taskRow struct {
	ID     int
	Name   string
	Values []string
	Status string
}

type summaryData struct {
	RunID        string
	TemplatePath string
	OutputDir    string
	ManifestPath string
	CreatedAt    string
	FinishedAt   string
	Names        []string
	Specs        []domain.ScanSpec
	Filters      []domain.FilterReport
	Tasks        []taskRow
	Submitted    bool
	Failed       int
}

func newSummaryData(result *domain.RunResult) summaryData {
	const layout = "2006-01-02 15:04:05 MST"
	data := summaryData{
		OutputDir:    result.OutputDir,
		ManifestPath: result.ManifestPath,
		FinishedAt:   result.FinishedAt.Format(layout),
		Submitted:    result.Submitted,
	}
	if p := result.Plan; p != nil {
		data.RunID = p.RunID
		data.TemplatePath = p.TemplatePath
		data.CreatedAt = p.CreatedAt.Format(layout)
		data.Names = p.Names
		data.Specs = p.Specs
		data.Filters = p.Filters
	}

	for _, t := range result.Tasks {
		row := taskRow{ID: t.ID, Name: t.Name, Values: t.Combination.Strings()}
		switch {
		case t.Submission == nil:
			row.Status = "not submitted"
		case t.Submission.Succeeded():
			row.Status = "ok"
			if t.Submission.Output != "" {
				row.Status = t.Submission.Output
			}
		default:
			row.Status = fmt.Sprintf("failed (exit %d)", t.Submission.ExitCode)
			data.Failed++
		}
		data.Tasks = append(data.Tasks, row)
	}
	return data
}
