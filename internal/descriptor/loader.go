package descriptor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ralt/pirum/internal/archive"
	"github.com/ralt/pirum/internal/models"
	"github.com/ralt/pirum/internal/scanner"
	"github.com/sirupsen/logrus"
)

// CachedPath returns where a previous build published the package.xml of
// name-version, relative to the publish root.
func CachedPath(root, name, version string) string {
	return filepath.Join(root, "rest", "r", models.PathName(name), fmt.Sprintf("package.%s.xml", version))
}

// Loader builds descriptors for scanned archives
type Loader struct {
	archives *archive.Reader
	root     string
	refresh  map[string]bool
}

// NewLoader creates a loader. root is the publish root searched for
// previously published package.xml files; empty disables the shortcut.
func NewLoader(archives *archive.Reader, root string) *Loader {
	return &Loader{
		archives: archives,
		root:     root,
		refresh:  make(map[string]bool),
	}
}

// Refresh makes Load ignore the published package.xml of name-version
func (l *Loader) Refresh(name, version string) {
	l.refresh[name+"-"+version] = true
}

// Load returns the descriptor of an archive, from the published
// package.xml when one exists, from the archive otherwise.
func (l *Loader) Load(a scanner.Archive) (*models.Descriptor, error) {
	doc, err := l.cached(a)
	if err != nil {
		return nil, err
	}

	if doc == nil {
		logrus.Debugf("Extracting %s from %s", archive.MetadataFile, a.Path)
		doc, err = l.archives.ReadMetadata(a.Path, a.Ext)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", a.Filename(), err)
		}
	}

	d, err := Parse(doc, a.Name, a.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", a.Filename(), err)
	}

	d.Filename = a.Path
	d.Size = a.Size
	return d, nil
}

func (l *Loader) cached(a scanner.Archive) ([]byte, error) {
	if l.root == "" || l.refresh[a.Release()] {
		return nil, nil
	}

	path := CachedPath(l.root, a.Name, a.Version)
	doc, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, models.WrapIO(a.Filename(), err)
	}

	logrus.Debugf("Using published %s", path)
	return doc, nil
}
