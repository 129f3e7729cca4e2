package materializer_test

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/fjglira/sweepgen/internal/domain"
	"github.com/fjglira/sweepgen/internal/materializer"
	"github.com/fjglira/sweepgen/internal/parser"
	"github.com/fjglira/sweepgen/internal/submit"
)

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.DebugLevel)
	return log
}

func readManifest(path string) [][]string {
	f, err := os.Open(path)
	Expect(err).ToNot(HaveOccurred())
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	Expect(err).ToNot(HaveOccurred())
	return records
}

type failingCopier struct{ after int }

func (c *failingCopier) CopyTree(src, dst string) error {
	if c.after == 0 {
		return errors.New("disk full")
	}
	c.after--
	return materializer.NewTreeCopier().CopyTree(src, dst)
}

// linkingCopier creates dst with input as a symlink to target.
type linkingCopier struct{ input, target string }

func (c *linkingCopier) CopyTree(src, dst string) error {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}
	return os.Symlink(c.target, filepath.Join(dst, c.input))
}

var _ = Describe("Materializer", func() {
	var (
		root string
		opts materializer.Options
		tpl  *domain.Template
		plan *domain.Plan
	)

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		origin := filepath.Join(root, "origin")
		Expect(os.MkdirAll(filepath.Join(origin, "pot"), 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(origin, "inputN.in"), []byte("# run\n10 20 ! a, b\n"), 0644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(origin, "V-3.sh"), []byte("#!/bin/sh\n"), 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(origin, "pot", "coeffs.dat"), []byte("1 2 3\n"), 0644)).To(Succeed())

		var err error
		tpl, err = parser.NewAnnotatedParser(parser.DefaultOptions(), nil).ParseFile(filepath.Join(origin, "inputN.in"))
		Expect(err).ToNot(HaveOccurred())

		opts = materializer.Options{
			TemplateDir:   origin,
			InputFile:     "inputN.in",
			OutputDir:     filepath.Join(root, "tasks"),
			ManifestPath:  filepath.Join(root, "tasks.csv"),
			TaskPrefix:    "task",
			NameSeparator: "_",
		}
		plan = &domain.Plan{
			RunID: "test-run",
			Names: []string{"a", "b"},
			Combinations: []domain.Combination{
				{domain.IntValue(10), domain.IntValue(20)},
				{domain.IntValue(12), domain.IntValue(20)},
			},
		}
	})

	It("should create one directory per combination with a manifest", func() {
		m := materializer.NewMaterializer(tpl, opts, materializer.NewTreeCopier(), nil, discardLogger())
		result, err := m.Materialize(context.Background(), plan)
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Tasks).To(HaveLen(2))
		Expect(result.Tasks[0].Name).To(Equal("task_1_a_10_b_20"))
		Expect(result.Tasks[1].Name).To(Equal("task_2_a_12_b_20"))
		Expect(result.Submitted).To(BeFalse())

		entries, err := os.ReadDir(opts.OutputDir)
		Expect(err).ToNot(HaveOccurred())
		Expect(entries).To(HaveLen(2))

		Expect(readManifest(opts.ManifestPath)).To(Equal([][]string{
			{"id", "directory", "a", "b"},
			{"1", "task_1_a_10_b_20", "10", "20"},
			{"2", "task_2_a_12_b_20", "12", "20"},
		}))
	})

	It("should rewrite the input file and copy everything else unchanged", func() {
		m := materializer.NewMaterializer(tpl, opts, materializer.NewTreeCopier(), nil, discardLogger())
		_, err := m.Materialize(context.Background(), plan)
		Expect(err).ToNot(HaveOccurred())

		dir := filepath.Join(opts.OutputDir, "task_2_a_12_b_20")
		content, err := os.ReadFile(filepath.Join(dir, "inputN.in"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(content)).To(Equal("# run\n12 20 ! a, b\n"))

		coeffs, err := os.ReadFile(filepath.Join(dir, "pot", "coeffs.dat"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(coeffs)).To(Equal("1 2 3\n"))

		info, err := os.Stat(filepath.Join(dir, "V-3.sh"))
		Expect(err).ToNot(HaveOccurred())
		Expect(info.Mode().Perm() & 0100).ToNot(BeZero())

		original, err := os.ReadFile(filepath.Join(opts.TemplateDir, "inputN.in"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(original)).To(Equal("# run\n10 20 ! a, b\n"))
	})

	It("should copy the contents behind relative links that leave the template", func() {
		shared := filepath.Join(root, "shared")
		Expect(os.MkdirAll(filepath.Join(shared, "tables"), 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(shared, "pot.dat"), []byte("potential\n"), 0644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(shared, "tables", "t.dat"), []byte("table\n"), 0644)).To(Succeed())
		Expect(os.Symlink(filepath.Join("..", "shared", "pot.dat"), filepath.Join(opts.TemplateDir, "pot.dat"))).To(Succeed())
		Expect(os.Symlink(filepath.Join("..", "shared", "tables"), filepath.Join(opts.TemplateDir, "tables"))).To(Succeed())

		m := materializer.NewMaterializer(tpl, opts, materializer.NewTreeCopier(), nil, discardLogger())
		_, err := m.Materialize(context.Background(), plan)
		Expect(err).ToNot(HaveOccurred())

		dir := filepath.Join(opts.OutputDir, "task_1_a_10_b_20")
		info, err := os.Lstat(filepath.Join(dir, "pot.dat"))
		Expect(err).ToNot(HaveOccurred())
		Expect(info.Mode().IsRegular()).To(BeTrue())

		content, err := os.ReadFile(filepath.Join(dir, "pot.dat"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(content)).To(Equal("potential\n"))

		content, err = os.ReadFile(filepath.Join(dir, "tables", "t.dat"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(content)).To(Equal("table\n"))
	})

	It("should leave a linked template input file untouched", func() {
		master := filepath.Join(root, "master.in")
		Expect(os.WriteFile(master, []byte("# run\n10 20 ! a, b\n"), 0644)).To(Succeed())
		input := filepath.Join(opts.TemplateDir, "inputN.in")
		Expect(os.Remove(input)).To(Succeed())
		Expect(os.Symlink(master, input)).To(Succeed())

		m := materializer.NewMaterializer(tpl, opts, materializer.NewTreeCopier(), nil, discardLogger())
		_, err := m.Materialize(context.Background(), plan)
		Expect(err).ToNot(HaveOccurred())

		content, err := os.ReadFile(master)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(content)).To(Equal("# run\n10 20 ! a, b\n"))

		for name, want := range map[string]string{
			"task_1_a_10_b_20": "# run\n10 20 ! a, b\n",
			"task_2_a_12_b_20": "# run\n12 20 ! a, b\n",
		} {
			path := filepath.Join(opts.OutputDir, name, "inputN.in")
			info, err := os.Lstat(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(info.Mode().IsRegular()).To(BeTrue())
			content, err := os.ReadFile(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(content)).To(Equal(want))
		}
	})

	It("should replace a link the copier left at the input path", func() {
		master := filepath.Join(root, "master.in")
		Expect(os.WriteFile(master, []byte("# run\n10 20 ! a, b\n"), 0644)).To(Succeed())
		m := materializer.NewMaterializer(tpl, opts, &linkingCopier{input: "inputN.in", target: master}, nil, discardLogger())
		_, err := m.Materialize(context.Background(), plan)
		Expect(err).ToNot(HaveOccurred())

		content, err := os.ReadFile(master)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(content)).To(Equal("# run\n10 20 ! a, b\n"))

		info, err := os.Lstat(filepath.Join(opts.OutputDir, "task_2_a_12_b_20", "inputN.in"))
		Expect(err).ToNot(HaveOccurred())
		Expect(info.Mode().IsRegular()).To(BeTrue())
	})

	It("should overwrite colliding directories on a re-run", func() {
		m := materializer.NewMaterializer(tpl, opts, materializer.NewTreeCopier(), nil, discardLogger())
		_, err := m.Materialize(context.Background(), plan)
		Expect(err).ToNot(HaveOccurred())

		stale := filepath.Join(opts.OutputDir, "task_1_a_10_b_20", "PELOOP.00000500.dat")
		Expect(os.WriteFile(stale, []byte("output"), 0644)).To(Succeed())

		_, err = m.Materialize(context.Background(), plan)
		Expect(err).ToNot(HaveOccurred())
		Expect(stale).ToNot(BeAnExistingFile())
		Expect(readManifest(opts.ManifestPath)).To(HaveLen(3))

		content, err := os.ReadFile(filepath.Join(opts.OutputDir, "task_1_a_10_b_20", "inputN.in"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(content)).To(Equal("# run\n10 20 ! a, b\n"))
	})

	It("should submit every directory in order", func() {
		rec := submit.NewRecordingSubmitter()
		rec.Fail = func(dir string) bool { return strings.HasSuffix(dir, "task_2_a_12_b_20") }
		m := materializer.NewMaterializer(tpl, opts, materializer.NewTreeCopier(), rec, discardLogger())

		result, err := m.Materialize(context.Background(), plan)
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Submitted).To(BeTrue())
		Expect(rec.Dirs()).To(Equal([]string{
			filepath.Join(opts.OutputDir, "task_1_a_10_b_20"),
			filepath.Join(opts.OutputDir, "task_2_a_12_b_20"),
		}))
		Expect(result.Tasks[0].Submission.Succeeded()).To(BeTrue())
		Expect(result.Tasks[1].Submission.Succeeded()).To(BeFalse())
	})

	It("should stop at the first filesystem error and keep earlier rows", func() {
		m := materializer.NewMaterializer(tpl, opts, &failingCopier{after: 1}, nil, discardLogger())
		result, err := m.Materialize(context.Background(), plan)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("disk full"))
		Expect(result.Tasks).To(HaveLen(1))
		Expect(readManifest(opts.ManifestPath)).To(HaveLen(2))
	})

	It("should stop when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		m := materializer.NewMaterializer(tpl, opts, materializer.NewTreeCopier(), nil, discardLogger())
		result, err := m.Materialize(ctx, plan)
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(result.Tasks).To(BeEmpty())
		Expect(readManifest(opts.ManifestPath)).To(HaveLen(1))
	})

	It("should not touch the filesystem in dry-run mode", func() {
		opts.DryRun = true
		m := materializer.NewMaterializer(tpl, opts, materializer.NewTreeCopier(), nil, discardLogger())
		result, err := m.Materialize(context.Background(), plan)
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Tasks).To(HaveLen(2))
		Expect(opts.OutputDir).ToNot(BeADirectory())
		Expect(opts.ManifestPath).ToNot(BeAnExistingFile())
	})

	It("should refuse an output directory inside the template", func() {
		opts.OutputDir = filepath.Join(opts.TemplateDir, "tasks")
		m := materializer.NewMaterializer(tpl, opts, materializer.NewTreeCopier(), nil, discardLogger())
		_, err := m.Materialize(context.Background(), plan)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("inside the template directory"))
	})

	It("should report a missing template directory before writing", func() {
		opts.TemplateDir = filepath.Join(root, "missing")
		m := materializer.NewMaterializer(tpl, opts, materializer.NewTreeCopier(), nil, discardLogger())
		_, err := m.Materialize(context.Background(), plan)
		Expect(err).To(HaveOccurred())
		Expect(opts.ManifestPath).ToNot(BeAnExistingFile())
	})
})
