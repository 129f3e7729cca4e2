package parser

import (
	"github.com/fjglira/sweepgen/internal/domain"
)

// Parser extracts adjustable fields from an annotated template.
type Parser interface {
	Parse(filePath string, content []byte) (*domain.Template, error)
	ParseFile(filePath string) (*domain.Template, error)
}

// Options controls how annotations are recognized.
type Options struct {
	Marker          string // Separates values from the annotation, e.g. "!"
	Separator       string // Separates field names inside the annotation, e.g. ","
	DescriptionOpen string // Starts the free-text description, e.g. "("
	Strict          bool   // Reject excess and duplicate names instead of ignoring them
}

// DefaultOptions returns the conventional "! a, b (description)" annotation.
func DefaultOptions() Options {
	return Options{
		Marker:          "!",
		Separator:       ",",
		DescriptionOpen: "(",
	}
}
