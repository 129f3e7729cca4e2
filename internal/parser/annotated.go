package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fjglira/sweepgen/internal/domain"
)

// AnnotatedParser parses line-oriented templates whose adjustable lines look
// like "<tok1> <tok2> ... ! name1, name2, ... (description)".
type AnnotatedParser struct {
	opts Options
	log  *logrus.Logger
}

// NewAnnotatedParser creates a new AnnotatedParser. A nil logger discards output.
func NewAnnotatedParser(opts Options, log *logrus.Logger) *AnnotatedParser {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &AnnotatedParser{opts: opts, log: log}
}

// ParseFile reads and parses the template at filePath.
func (p *AnnotatedParser) ParseFile(filePath string) (*domain.Template, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, domain.NewErrorWithSuggestion("parse", filePath, 0,
			"failed to read template",
			"check template.directory and template.input_file in sweepgen.yaml",
			err)
	}
	return p.Parse(filePath, content)
}

// Parse builds the field map of an annotated template.
func (p *AnnotatedParser) Parse(filePath string, content []byte) (*domain.Template, error) {
	tpl := &domain.Template{
		Path:   filePath,
		Lines:  strings.SplitAfter(string(content), "\n"),
		Marker: p.opts.Marker,
		Fields: make(domain.FieldMap),
	}
	// SplitAfter leaves an empty tail when content ends with a newline
	if n := len(tpl.Lines); n > 0 && tpl.Lines[n-1] == "" {
		tpl.Lines = tpl.Lines[:n-1]
	}

	for idx, line := range tpl.Lines {
		values, names, ok := p.splitAnnotation(line)
		if !ok {
			continue
		}
		tokens := strings.Fields(values)

		if p.opts.Strict && len(names) > len(tokens) {
			return nil, domain.NewErrorWithSuggestion("parse", filePath, idx+1,
				fmt.Sprintf("annotation declares %d names (%s) for %d values", len(names), strings.Join(names, ", "), len(tokens)),
				"fix the annotation or set template.strict to false to ignore excess names",
				nil)
		}

		for pos, name := range names {
			if pos >= len(tokens) {
				p.log.Debugf("%s:%d: ignoring %q, no value at position %d", filePath, idx+1, name, pos+1)
				continue
			}
			if prev, dup := tpl.Fields[name]; dup {
				if p.opts.Strict {
					return nil, domain.NewErrorWithSuggestion("parse", filePath, idx+1,
						fmt.Sprintf("field %q already declared on line %d", name, prev.Line+1),
						"rename one of the fields or set template.strict to false to keep the last declaration",
						nil)
				}
				p.log.Debugf("%s:%d: field %q overrides declaration on line %d", filePath, idx+1, name, prev.Line+1)
			}
			tpl.Fields[name] = domain.FieldRef{Line: idx, Position: pos}
		}
	}

	return tpl, nil
}

// splitAnnotation returns the value part of an adjustable line and the names
// listed in its annotation. A line without marker or separator is not adjustable.
func (p *AnnotatedParser) splitAnnotation(line string) (string, []string, bool) {
	idx := strings.Index(line, p.opts.Marker)
	if idx < 0 {
		return "", nil, false
	}
	annotation := line[idx+len(p.opts.Marker):]
	if next := strings.Index(annotation, p.opts.Marker); next >= 0 {
		annotation = annotation[:next]
	}
	if !strings.Contains(annotation, p.opts.Separator) {
		return "", nil, false
	}
	if p.opts.DescriptionOpen != "" {
		if d := strings.Index(annotation, p.opts.DescriptionOpen); d >= 0 {
			annotation = annotation[:d]
		}
	}

	var names []string
	for _, n := range strings.Split(annotation, p.opts.Separator) {
		n = strings.TrimSpace(n)
		if n != "" {
			names = append(names, n)
		}
	}
	return line[:idx], names, true
}
