package submit_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/sweepgen/internal/config"
	"github.com/fjglira/sweepgen/internal/submit"
)

var _ = Describe("ExecSubmitter", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("should run the command inside the task directory", func() {
		s, err := submit.NewExecSubmitter(&config.SubmitConfig{
			Command: "sh",
			Args:    []string{"-c", "pwd > submitted.txt && echo queued"},
		})
		Expect(err).ToNot(HaveOccurred())

		outcome := s.Submit(context.Background(), dir)
		Expect(outcome.Succeeded()).To(BeTrue())
		Expect(outcome.Output).To(Equal("queued"))
		Expect(outcome.Dir).To(Equal(dir))

		content, err := os.ReadFile(filepath.Join(dir, "submitted.txt"))
		Expect(err).ToNot(HaveOccurred())
		resolved, err := filepath.EvalSymlinks(dir)
		Expect(err).ToNot(HaveOccurred())
		Expect(strings.TrimSpace(string(content))).To(Equal(resolved))
	})

	It("should report the exit code of a failing command", func() {
		s, err := submit.NewExecSubmitter(&config.SubmitConfig{Command: "sh", Args: []string{"-c", "exit 3"}})
		Expect(err).ToNot(HaveOccurred())

		outcome := s.Submit(context.Background(), dir)
		Expect(outcome.Succeeded()).To(BeFalse())
		Expect(outcome.ExitCode).To(Equal(3))
		Expect(outcome.Err).To(HaveOccurred())
	})

	It("should report a command that cannot start", func() {
		s, err := submit.NewExecSubmitter(&config.SubmitConfig{Command: "sweepgen-no-such-binary"})
		Expect(err).ToNot(HaveOccurred())

		outcome := s.Submit(context.Background(), dir)
		Expect(outcome.Succeeded()).To(BeFalse())
		Expect(outcome.ExitCode).To(Equal(-1))
	})

	It("should refuse blocked commands", func() {
		_, err := submit.NewExecSubmitter(&config.SubmitConfig{
			Command:         "sh",
			Args:            []string{"-c", "rm -rf ."},
			BlockedPatterns: []string{"rm -rf"},
		})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("blocked by security policy"))
	})

	It("should render the default command line", func() {
		s, err := submit.NewExecSubmitter(&config.DefaultConfig().Submit)
		Expect(err).ToNot(HaveOccurred())
		Expect(s.CommandLine()).To(Equal("sbatch V-3.sh"))
	})
})

var _ = Describe("RecordingSubmitter", func() {
	It("should record directories in order", func() {
		r := submit.NewRecordingSubmitter()
		r.Submit(context.Background(), "tasks/task_1")
		r.Submit(context.Background(), "tasks/task_2")
		Expect(r.Dirs()).To(Equal([]string{"tasks/task_1", "tasks/task_2"}))
	})

	It("should simulate failures", func() {
		r := submit.NewRecordingSubmitter()
		r.Fail = func(dir string) bool { return strings.HasSuffix(dir, "_2") }
		Expect(r.Submit(context.Background(), "task_1").Succeeded()).To(BeTrue())
		Expect(r.Submit(context.Background(), "task_2").Succeeded()).To(BeFalse())
	})
})
