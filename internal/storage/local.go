// Package storage places trimmed files into the mirrored output tree
// on local disk and, when configured, mirrors them to S3.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Tree manages an output directory tree. Files are created at paths
// relative to the root, mirroring the structure of the input tree;
// parent directories are created on demand.
type Tree struct {
	root string
}

// NewTree creates the output root directory (and any missing parents)
// and returns a Tree rooted there.
func NewTree(root string) (*Tree, error) {
	if err := os.MkdirAll(root, 0750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Tree{root: root}, nil
}

// Root returns the output root path.
func (t *Tree) Root() string {
	return t.root
}

// Path returns the absolute output path for a tree-relative file path.
func (t *Tree) Path(rel string) string {
	return filepath.Join(t.root, rel)
}

// Create opens a new file for writing at the tree-relative path,
// creating intermediate directories as needed. The caller owns the
// returned file and must close it.
func (t *Tree) Create(rel string) (*os.File, error) {
	dst := t.Path(rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return nil, fmt.Errorf("create output subdirectory: %w", err)
	}

	f, err := os.Create(dst) // #nosec G304 - path derives from the scanned input tree
	if err != nil {
		return nil, fmt.Errorf("create output WAV file: %w", err)
	}
	return f, nil
}
