package scanner

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/fjglira/sweepgen/internal/domain"
)

// Scanner discovers generated task directories in an output tree.
type Scanner interface {
	Scan(rootDir string, patterns []string, excludes []string) ([]string, error)
}

// DirScanner implements Scanner by listing the immediate subdirectories of
// rootDir.
type DirScanner struct{}

// NewScanner creates a new DirScanner.
func NewScanner() *DirScanner {
	return &DirScanner{}
}

// Scan returns the sorted paths of the subdirectories of rootDir whose name
// matches any of patterns and none of excludes. Files are ignored.
func (s *DirScanner) Scan(rootDir string, patterns []string, excludes []string) ([]string, error) {
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return nil, domain.NewError("scan", rootDir, 0, "failed to list output directory", err)
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if matchAny(e.Name(), excludes) || !matchAny(e.Name(), patterns) {
			continue
		}
		dirs = append(dirs, filepath.Join(rootDir, e.Name()))
	}

	sort.Strings(dirs)
	return dirs, nil
}

// TaskPattern is the glob matching directory names built with prefix and sep.
func TaskPattern(prefix, sep string) string {
	return prefix + sep + "[0-9]*"
}

func matchAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if matched, _ := filepath.Match(p, name); matched {
			return true
		}
	}
	return false
}
