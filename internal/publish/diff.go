package publish

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ralt/pirum/internal/utils"
)

// vcsDirs are version control metadata directories. They are never part of
// a diff and are carried over from one generation to the next.
var vcsDirs = map[string]bool{
	".git": true,
	".svn": true,
	"CVS":  true,
	".hg":  true,
	".bzr": true,
}

// Diff classifies the files of a staged tree against the live tree.
// Paths are relative to the tree roots, with forward slashes.
type Diff struct {
	Added     []string
	Changed   []string
	Removed   []string
	Unchanged []string
}

// Empty reports whether the staged tree matches the live tree
func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

// listFiles returns the regular files under base/name for every name,
// skipping version control metadata.
func listFiles(base string, names []string) (map[string]bool, error) {
	files := make(map[string]bool)
	for _, name := range names {
		top := filepath.Join(base, name)
		if _, err := os.Lstat(top); os.IsNotExist(err) {
			continue
		}

		err := filepath.WalkDir(top, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if vcsDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(base, path)
			if err != nil {
				return err
			}
			files[filepath.ToSlash(rel)] = true
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// diffTrees compares stage against live. liveNames limits which top-level
// entries of live are considered.
func diffTrees(ctx context.Context, stage string, stageNames []string, live string, liveNames []string) (*Diff, error) {
	staged, err := listFiles(stage, stageNames)
	if err != nil {
		return nil, err
	}

	current := map[string]bool{}
	if live != "" {
		current, err = listFiles(live, liveNames)
		if err != nil {
			return nil, err
		}
	}

	d := &Diff{}
	for rel := range staged {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !current[rel] {
			d.Added = append(d.Added, rel)
			continue
		}
		same, err := utils.SameContent(filepath.Join(stage, rel), filepath.Join(live, rel))
		if err != nil {
			return nil, err
		}
		if same {
			d.Unchanged = append(d.Unchanged, rel)
		} else {
			d.Changed = append(d.Changed, rel)
		}
	}
	for rel := range current {
		if !staged[rel] {
			d.Removed = append(d.Removed, rel)
		}
	}

	sort.Strings(d.Added)
	sort.Strings(d.Changed)
	sort.Strings(d.Removed)
	sort.Strings(d.Unchanged)
	return d, nil
}

// vcsPaths returns the version control directories under base/name for
// every name, relative to base.
func vcsPaths(base string, names []string) ([]string, error) {
	var paths []string
	for _, name := range names {
		top := filepath.Join(base, name)
		if info, err := os.Lstat(top); err != nil || !info.IsDir() {
			continue
		}

		err := filepath.WalkDir(top, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() && vcsDirs[d.Name()] {
				rel, err := filepath.Rel(base, path)
				if err != nil {
					return err
				}
				paths = append(paths, rel)
				return filepath.SkipDir
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// topLevel lists the entry names of dir
func topLevel(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
