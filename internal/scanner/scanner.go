package scanner

import (
	"context"
	"path/filepath"
)

// Archive represents a package archive found during scanning
type Archive struct {
	Path    string
	Name    string
	Version string
	Ext     string
	Size    int64
}

// Filename returns the base name of the archive, e.g. Foo-1.0.0.tgz
func (a Archive) Filename() string {
	return filepath.Base(a.Path)
}

// Release returns the release id, e.g. Foo-1.0.0
func (a Archive) Release() string {
	return a.Name + "-" + a.Version
}

// Scanner interface for discovering archives
type Scanner interface {
	// Scan recursively scans a directory for archives
	Scan(ctx context.Context, dir string) ([]Archive, error)
}
