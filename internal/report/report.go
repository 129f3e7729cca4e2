// Package report writes a human-readable summary of a sweep run.
package report

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/fjglira/sweepgen/internal/domain"
)

// Reporter persists the summary of a run.
type Reporter interface {
	Write(result *domain.RunResult) ([]string, error)
}

// MarkdownReporter renders summary.md and converts it to summary.html.
type MarkdownReporter struct {
	engine *Engine
	md     goldmark.Markdown
}

// NewMarkdownReporter creates a MarkdownReporter backed by engine.
func NewMarkdownReporter(engine *Engine) *MarkdownReporter {
	return &MarkdownReporter{
		engine: engine,
		md:     goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Write renders the summary into the run's output directory and returns the
// paths it wrote.
func (r *MarkdownReporter) Write(result *domain.RunResult) ([]string, error) {
	markdown, err := r.engine.Render(result)
	if err != nil {
		return nil, err
	}
	page, err := r.HTML(markdown, "Sweep "+runID(result))
	if err != nil {
		return nil, err
	}

	mdPath := filepath.Join(result.OutputDir, "summary.md")
	htmlPath := filepath.Join(result.OutputDir, "summary.html")
	if err := os.WriteFile(mdPath, []byte(markdown), 0644); err != nil {
		return nil, domain.NewError("report", mdPath, 0, "failed to write summary", err)
	}
	if err := os.WriteFile(htmlPath, []byte(page), 0644); err != nil {
		return nil, domain.NewError("report", htmlPath, 0, "failed to write summary", err)
	}
	return []string{mdPath, htmlPath}, nil
}

// HTML converts Markdown into a standalone HTML page.
func (r *MarkdownReporter) HTML(markdown, title string) (string, error) {
	var body bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &body); err != nil {
		return "", domain.NewError("report", "", 0, "failed to convert summary to HTML", err)
	}
	return fmt.Sprintf("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(title), body.String()), nil
}

func runID(result *domain.RunResult) string {
	if result.Plan == nil {
		return ""
	}
	return result.Plan.RunID
}
