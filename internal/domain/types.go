package domain

import (
	"sort"
	"time"
)

// Template holds a parsed annotated input file.
type Template struct {
	Path   string   // Path the template was read from
	Lines  []string // Raw lines, terminators included
	Marker string   // Annotation marker that separated values from names
	Fields FieldMap // Adjustable fields, read-only after parsing
}

// FieldRef locates an adjustable numeric token inside a template.
type FieldRef struct {
	Line     int // 0-based line index
	Position int // 0-based token index among the tokens before the marker
}

// FieldMap maps a field name to its location in the template.
type FieldMap map[string]FieldRef

// ScanSpec is an operator-declared range for one swept field.
type ScanSpec struct {
	Name  string
	Start Value
	End   Value
	Step  Value
}

// Combination is one value per scanned name, in scan order.
type Combination []Value

// FilterReport records the effect of one symmetry pair on the combination set.
type FilterReport struct {
	First   string
	Second  string
	Applied bool // false when either name is not scanned
	Before  int
	After   int
}

// Plan is what the operator confirms before anything is written.
type Plan struct {
	RunID        string
	CreatedAt    time.Time
	TemplatePath string
	Names        []string
	Specs        []ScanSpec
	Combinations []Combination
	Filters      []FilterReport
}

// Task is one materialized combination.
type Task struct {
	ID          int
	Name        string // Directory name encoding ID and all (name, value) pairs
	Dir         string // Full path of the generated directory
	Combination Combination
	Submission  *SubmitOutcome // nil when submission was not requested
}

// SubmitOutcome is the observable result of one submission trigger.
type SubmitOutcome struct {
	Dir      string
	Command  string
	ExitCode int
	Output   string
	Err      error
}

// Succeeded reports whether the submission command ran and exited zero.
func (o *SubmitOutcome) Succeeded() bool {
	return o != nil && o.Err == nil && o.ExitCode == 0
}

// RunResult summarizes a completed (or interrupted) materialization.
type RunResult struct {
	Plan         *Plan
	Tasks        []Task
	ManifestPath string
	OutputDir    string
	Submitted    bool
	FinishedAt   time.Time
}

// Names returns the field names in sorted order.
func (m FieldMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
