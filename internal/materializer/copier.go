package materializer

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fjglira/sweepgen/internal/domain"
)

// Copier creates a full copy of a directory tree.
type Copier interface {
	CopyTree(src, dst string) error
}

// TreeCopier implements Copier with filepath.WalkDir, preserving file modes.
// Symlinks are followed and copied as the contents they point to.
type TreeCopier struct{}

// NewTreeCopier creates a new TreeCopier.
func NewTreeCopier() *TreeCopier {
	return &TreeCopier{}
}

// CopyTree copies src into dst, which must not exist yet.
func (c *TreeCopier) CopyTree(src, dst string) error {
	if resolved, err := filepath.EvalSymlinks(src); err == nil {
		src = resolved
	}
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		case info.Mode()&os.ModeSymlink != 0:
			resolved, err := os.Stat(path)
			if err != nil {
				return err
			}
			if resolved.IsDir() {
				return c.copyLinkedDir(src, path, target)
			}
			if resolved.Mode().IsRegular() {
				return copyFile(path, target, resolved.Mode().Perm())
			}
			return nil
		case info.Mode().IsRegular():
			return copyFile(path, target, info.Mode().Perm())
		default:
			// sockets, devices and pipes have no place in a template tree
			return nil
		}
	})
	if err != nil {
		return domain.NewError("materialize", src, 0, "failed to copy template tree to "+dst, err)
	}
	return nil
}

// copyLinkedDir copies the directory behind the link at path, refusing links
// back into an ancestor of src.
func (c *TreeCopier) copyLinkedDir(src, path, target string) error {
	dir, err := filepath.EvalSymlinks(path)
	if err != nil {
		return err
	}
	root, err := filepath.EvalSymlinks(src)
	if err != nil {
		return err
	}
	if rel, err := filepath.Rel(dir, root); err == nil && !strings.HasPrefix(rel, "..") {
		return fmt.Errorf("%s links back into the tree being copied", path)
	}
	return c.CopyTree(dir, target)
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
