package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/fjglira/sweepgen/internal/domain"
)

// Render returns a copy of the template lines with every named field set to
// the matching value of combo. Whitespace, the marker and the trailing
// annotation are kept byte for byte; tpl itself is not modified.
func Render(tpl *domain.Template, names []string, combo domain.Combination) ([]string, error) {
	if len(names) != len(combo) {
		return nil, fmt.Errorf("got %d values for %d fields", len(combo), len(names))
	}

	out := make([]string, len(tpl.Lines))
	copy(out, tpl.Lines)

	for i, name := range names {
		ref, ok := tpl.Fields[name]
		if !ok {
			return nil, domain.NewError("parse", tpl.Path, 0, fmt.Sprintf("unknown field %q", name), nil)
		}
		line, err := replaceToken(out[ref.Line], tpl.Marker, ref.Position, combo[i].String())
		if err != nil {
			return nil, domain.NewError("parse", tpl.Path, ref.Line+1, fmt.Sprintf("cannot set %q", name), err)
		}
		out[ref.Line] = line
	}

	return out, nil
}

// FieldValue returns the current token of a named field.
func FieldValue(tpl *domain.Template, name string) (string, bool) {
	ref, ok := tpl.Fields[name]
	if !ok || ref.Line >= len(tpl.Lines) {
		return "", false
	}
	values := valuePart(tpl.Lines[ref.Line], tpl.Marker)
	spans := tokenSpans(values)
	if ref.Position >= len(spans) {
		return "", false
	}
	s := spans[ref.Position]
	return values[s[0]:s[1]], true
}

func replaceToken(line, marker string, position int, value string) (string, error) {
	values := valuePart(line, marker)
	spans := tokenSpans(values)
	if position >= len(spans) {
		return "", fmt.Errorf("no value at position %d", position+1)
	}
	s := spans[position]
	return values[:s[0]] + value + line[s[1]:], nil
}

// valuePart is the text before the marker, or the whole line without one.
func valuePart(line, marker string) string {
	if idx := strings.Index(line, marker); idx >= 0 {
		return line[:idx]
	}
	return line
}

// tokenSpans returns the [start, end) byte offsets of each whitespace
// separated token, matching strings.Fields.
func tokenSpans(s string) [][2]int {
	var spans [][2]int
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, [2]int{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, [2]int{start, len(s)})
	}
	return spans
}
