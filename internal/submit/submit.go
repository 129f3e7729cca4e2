// Package submit hands generated task directories to an external scheduler.
package submit

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"

	"github.com/fjglira/sweepgen/internal/config"
	"github.com/fjglira/sweepgen/internal/domain"
)

// Submitter triggers the execution of one prepared task directory.
type Submitter interface {
	Submit(ctx context.Context, dir string) *domain.SubmitOutcome
}

// ExecSubmitter runs an external command (sbatch by default) with the task
// directory as working directory.
type ExecSubmitter struct {
	command string
	args    []string
}

// NewExecSubmitter creates an ExecSubmitter after checking the command
// against the configured blocked patterns.
func NewExecSubmitter(cfg *config.SubmitConfig) (*ExecSubmitter, error) {
	line := strings.TrimSpace(strings.Join(append([]string{cfg.Command}, cfg.Args...), " "))
	if err := ValidateCommand(line, cfg.BlockedPatterns); err != nil {
		return nil, domain.NewError("submit", "", 0, err.Error(), nil)
	}
	return &ExecSubmitter{command: cfg.Command, args: cfg.Args}, nil
}

// CommandLine returns the command as it would be typed in a shell.
func (s *ExecSubmitter) CommandLine() string {
	return strings.Join(append([]string{s.command}, s.args...), " ")
}

// Submit runs the command in dir and waits for it to exit.
func (s *ExecSubmitter) Submit(ctx context.Context, dir string) *domain.SubmitOutcome {
	outcome := &domain.SubmitOutcome{Dir: dir, Command: s.CommandLine()}

	cmd := exec.CommandContext(ctx, s.command, s.args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	outcome.Output = strings.TrimSpace(string(output))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			outcome.ExitCode = exitErr.ExitCode()
		} else {
			outcome.ExitCode = -1
		}
		outcome.Err = err
	}
	return outcome
}

// RecordingSubmitter records submissions instead of running anything.
type RecordingSubmitter struct {
	mu   sync.Mutex
	dirs []string
	// Fail makes Submit report a non-zero exit for directories it returns true for.
	Fail func(dir string) bool
}

// NewRecordingSubmitter creates a RecordingSubmitter that always succeeds.
func NewRecordingSubmitter() *RecordingSubmitter {
	return &RecordingSubmitter{}
}

// Submit records dir.
func (r *RecordingSubmitter) Submit(_ context.Context, dir string) *domain.SubmitOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dirs = append(r.dirs, dir)

	outcome := &domain.SubmitOutcome{Dir: dir, Command: "record"}
	if r.Fail != nil && r.Fail(dir) {
		outcome.ExitCode = 1
		outcome.Err = errors.New("submission rejected")
	}
	return outcome
}

// Dirs returns the submitted directories in order.
func (r *RecordingSubmitter) Dirs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.dirs...)
}
