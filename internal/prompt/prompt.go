// Package prompt collects the operator's choices for a sweep.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fjglira/sweepgen/internal/config"
	"github.com/fjglira/sweepgen/internal/domain"
	"github.com/fjglira/sweepgen/internal/scan"
)

// PreviewCount is how many combinations are shown before confirmation.
const PreviewCount = 5

// Prompter is the operator dialogue of a run.
type Prompter interface {
	// SelectSpecs picks the fields to scan among fields (sorted) and their ranges.
	SelectSpecs(fields []string) ([]domain.ScanSpec, error)
	// Confirm is the gate before anything is written.
	Confirm(plan *domain.Plan) (bool, error)
	// ConfirmSubmit decides whether task directories are submitted.
	ConfirmSubmit(command string) (bool, error)
}

// ConsolePrompter asks questions on a line-oriented terminal. Invalid
// answers abort the run; there is no retry loop.
type ConsolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsolePrompter creates a ConsolePrompter.
func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{in: bufio.NewReader(in), out: out}
}

func (p *ConsolePrompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", domain.NewError("config", "", 0, "no answer from operator", err)
	}
	return strings.TrimSpace(line), nil
}

// SelectSpecs lists the fields, then asks how many to scan and the range of each.
func (p *ConsolePrompter) SelectSpecs(fields []string) ([]domain.ScanSpec, error) {
	if len(fields) == 0 {
		return nil, domain.NewError("config", "", 0, "template has no adjustable fields", nil)
	}

	fmt.Fprintln(p.out, "Available adjustable parameters:")
	for i, name := range fields {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, name)
	}

	answer, err := p.ask("\nHow many parameters would you like to scan? ")
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(fields) {
		return nil, domain.NewError("config", "", 0, fmt.Sprintf("invalid number %q", answer), nil)
	}

	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f] = true
	}

	chosen := make(map[string]bool)
	specs := make([]domain.ScanSpec, 0, n)
	for i := 1; i <= n; i++ {
		choice, err := p.ask(fmt.Sprintf("Select parameter %d by number or name: ", i))
		if err != nil {
			return nil, err
		}
		name, err := resolveChoice(choice, fields, known)
		if err != nil {
			return nil, err
		}
		if chosen[name] {
			return nil, domain.NewError("config", "", 0, fmt.Sprintf("parameter %q selected twice", name), nil)
		}
		chosen[name] = true

		start, err := p.ask(fmt.Sprintf("Enter start value for '%s': ", name))
		if err != nil {
			return nil, err
		}
		end, err := p.ask(fmt.Sprintf("Enter end   value for '%s': ", name))
		if err != nil {
			return nil, err
		}
		step, err := p.ask(fmt.Sprintf("Enter step  value for '%s': ", name))
		if err != nil {
			return nil, err
		}

		spec, err := scan.ParseSpec(name, start, end, step)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func resolveChoice(choice string, fields []string, known map[string]bool) (string, error) {
	if idx, err := strconv.Atoi(choice); err == nil {
		if idx >= 1 && idx <= len(fields) {
			return fields[idx-1], nil
		}
	} else if known[choice] {
		return choice, nil
	}
	return "", domain.NewError("config", "", 0, fmt.Sprintf("invalid parameter %q", choice), nil)
}

// Confirm prints the plan preview and asks for a y/N answer.
func (p *ConsolePrompter) Confirm(plan *domain.Plan) (bool, error) {
	WritePreview(p.out, plan)
	answer, err := p.ask(fmt.Sprintf("Proceed to create %d tasks? [y/N] ", len(plan.Combinations)))
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}

// ConfirmSubmit asks for a Y/n answer; anything but "n" submits.
func (p *ConsolePrompter) ConfirmSubmit(command string) (bool, error) {
	answer, err := p.ask(fmt.Sprintf("Submit jobs via %s? [Y/n] ", command))
	if err != nil {
		return false, err
	}
	return !strings.EqualFold(answer, "n"), nil
}

// WritePreview prints the filter reports and the first combinations of plan.
func WritePreview(out io.Writer, plan *domain.Plan) {
	for _, f := range plan.Filters {
		if f.Applied {
			fmt.Fprintf(out, "Applied symmetry filter %s <= %s: %d -> %d combinations.\n", f.First, f.Second, f.Before, f.After)
		}
	}
	fmt.Fprintf(out, "\nPlanning %d tasks for parameters: %s\n", len(plan.Combinations), strings.Join(plan.Names, ", "))

	n := min(PreviewCount, len(plan.Combinations))
	if n == 0 {
		return
	}
	fmt.Fprintln(out, "First few parameter sets:")
	for _, combo := range plan.Combinations[:n] {
		pairs := make([]string, len(plan.Names))
		for i, name := range plan.Names {
			pairs[i] = name + "=" + combo[i].String()
		}
		fmt.Fprintf(out, "  %s\n", strings.Join(pairs, " "))
	}
}

// PlanPrompter answers from the scans section of the configuration.
type PlanPrompter struct {
	scans     []config.ScanEntry
	assumeYes bool
	submit    bool
	out       io.Writer
}

// NewPlanPrompter creates a non-interactive Prompter. assumeYes passes the
// confirmation gate; submit answers the submission gate.
func NewPlanPrompter(scans []config.ScanEntry, assumeYes, submit bool, out io.Writer) *PlanPrompter {
	return &PlanPrompter{scans: scans, assumeYes: assumeYes, submit: submit, out: out}
}

// SelectSpecs converts the configured scans, rejecting unknown fields.
func (p *PlanPrompter) SelectSpecs(fields []string) ([]domain.ScanSpec, error) {
	if len(p.scans) == 0 {
		return nil, domain.NewErrorWithSuggestion("config", "", 0,
			"no scans configured",
			"add a scans section to sweepgen.yaml or run interactively",
			nil)
	}
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f] = true
	}

	specs := make([]domain.ScanSpec, 0, len(p.scans))
	for _, s := range p.scans {
		if !known[s.Name] {
			return nil, domain.NewError("config", "", 0, fmt.Sprintf("invalid parameter %q: not an adjustable field of the template", s.Name), nil)
		}
		spec, err := scan.ParseSpec(s.Name, s.Start, s.End, s.Step)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Confirm prints the preview and returns the configured answer.
func (p *PlanPrompter) Confirm(plan *domain.Plan) (bool, error) {
	WritePreview(p.out, plan)
	return p.assumeYes, nil
}

// ConfirmSubmit returns the configured answer.
func (p *PlanPrompter) ConfirmSubmit(string) (bool, error) {
	return p.submit, nil
}
