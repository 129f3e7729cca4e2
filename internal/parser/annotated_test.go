package parser_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fjglira/sweepgen/internal/domain"
	"github.com/fjglira/sweepgen/internal/parser"
)

var _ = Describe("AnnotatedParser", func() {
	var p *parser.AnnotatedParser

	BeforeEach(func() {
		p = parser.NewAnnotatedParser(parser.DefaultOptions(), nil)
	})

	Describe("ParseFile inputN.in", func() {
		var tpl *domain.Template

		BeforeEach(func() {
			var err error
			tpl, err = p.ParseFile(filepath.Join("..", "..", "testdata", "origin", "inputN.in"))
			Expect(err).ToNot(HaveOccurred())
		})

		It("should keep every line with its terminator", func() {
			Expect(tpl.Lines).To(HaveLen(7))
			for _, l := range tpl.Lines {
				Expect(l).To(HaveSuffix("\n"))
			}
		})

		It("should map each annotated name to its token", func() {
			Expect(tpl.Fields).To(HaveLen(13))
			Expect(tpl.Fields["nx"]).To(Equal(domain.FieldRef{Line: 1, Position: 0}))
			Expect(tpl.Fields["nz"]).To(Equal(domain.FieldRef{Line: 1, Position: 2}))
			Expect(tpl.Fields["asub2"]).To(Equal(domain.FieldRef{Line: 2, Position: 1}))
			Expect(tpl.Fields["tol"]).To(Equal(domain.FieldRef{Line: 4, Position: 3}))
			Expect(tpl.Fields["nout"]).To(Equal(domain.FieldRef{Line: 5, Position: 1}))
		})

		It("should accept a single name followed by the separator", func() {
			Expect(tpl.Fields["temp"]).To(Equal(domain.FieldRef{Line: 3, Position: 0}))
		})

		It("should stop names at the description", func() {
			Expect(tpl.Fields).ToNot(HaveKey("angstrom"))
			Expect(tpl.Fields).To(HaveKey("afilm"))
		})

		It("should skip lines without a name separator", func() {
			for _, ref := range tpl.Fields {
				Expect(ref.Line).ToNot(Equal(6))
			}
		})

		It("should list names sorted", func() {
			names := tpl.Fields.Names()
			Expect(names[0]).To(Equal("afilm"))
			Expect(names).To(HaveLen(13))
		})

		It("should expose current values", func() {
			v, ok := parser.FieldValue(tpl, "tol")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("1.0d-3"))
		})
	})

	It("should return an error for a missing file", func() {
		_, err := p.ParseFile("nonexistent.in")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("[parse]"))
	})

	It("should treat content without annotations as non-adjustable", func() {
		tpl, err := p.Parse("plain.in", []byte("1 2 3\n# comment only\n4 ! note\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(tpl.Fields).To(BeEmpty())
		Expect(tpl.Lines).To(HaveLen(3))
	})

	It("should keep a last line without newline", func() {
		tpl, err := p.Parse("t.in", []byte("10 20 ! a, b"))
		Expect(err).ToNot(HaveOccurred())
		Expect(tpl.Lines).To(Equal([]string{"10 20 ! a, b"}))
		Expect(tpl.Fields).To(HaveLen(2))
	})

	It("should only read names up to the next marker", func() {
		tpl, err := p.Parse("t.in", []byte("1 2 ! a, b ! c, d\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(tpl.Fields).To(HaveLen(2))
		Expect(tpl.Fields).To(HaveKey("b"))
	})

	Describe("strict mode", func() {
		BeforeEach(func() {
			opts := parser.DefaultOptions()
			opts.Strict = true
			p = parser.NewAnnotatedParser(opts, nil)
		})

		It("should reject names exceeding the values", func() {
			_, err := p.ParseFile(filepath.Join("..", "..", "testdata", "templates", "excess.in"))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("excess.in:1"))
			Expect(err.Error()).To(ContainSubstring("3 names"))
		})

		It("should reject duplicate names", func() {
			_, err := p.ParseFile(filepath.Join("..", "..", "testdata", "templates", "duplicate.in"))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(`field "b" already declared on line 1`))
		})
	})

	Describe("default lenient mode", func() {
		It("should ignore excess names", func() {
			tpl, err := p.ParseFile(filepath.Join("..", "..", "testdata", "templates", "excess.in"))
			Expect(err).ToNot(HaveOccurred())
			Expect(tpl.Fields).To(HaveLen(2))
			Expect(tpl.Fields).ToNot(HaveKey("c"))
		})

		It("should let the last declaration win", func() {
			tpl, err := p.ParseFile(filepath.Join("..", "..", "testdata", "templates", "duplicate.in"))
			Expect(err).ToNot(HaveOccurred())
			Expect(tpl.Fields["b"]).To(Equal(domain.FieldRef{Line: 1, Position: 0}))
			Expect(tpl.Fields["a"]).To(Equal(domain.FieldRef{Line: 0, Position: 0}))
		})
	})

	Describe("custom annotation characters", func() {
		It("should honour marker and separator options", func() {
			p = parser.NewAnnotatedParser(parser.Options{Marker: "#", Separator: ";", DescriptionOpen: "["}, nil)
			tpl, err := p.Parse("t.in", []byte("5 6 # x; y [units]\n"))
			Expect(err).ToNot(HaveOccurred())
			Expect(tpl.Fields["y"]).To(Equal(domain.FieldRef{Line: 0, Position: 1}))
		})
	})
})
