package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ralt/pirum/internal/models"
	"github.com/ralt/pirum/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	// StateDir holds every rendered generation and the current pointer
	StateDir = ".pirum"

	generationsDir = "generations"
	currentLink    = "current"
	legacyPrefix   = "legacy-"
)

// Result reports what a publish changed
type Result struct {
	Diff

	// Flipped is false when the live tree already matched and nothing was touched
	Flipped    bool
	Generation string
}

// Publisher installs rendered trees into a publish root.
//
// Layout:
//
//	<root>/.pirum/generations/<id>/...        complete rendered trees
//	<root>/.pirum/current -> generations/<id>
//	<root>/<entry> -> .pirum/current/<entry>  one link per top-level entry
//
// Readers resolve every path through .pirum/current, so replacing that
// single link switches the whole tree at once.
type Publisher struct {
	root  string
	newID func() string
}

// NewPublisher creates a publisher for root
func NewPublisher(root string) *Publisher {
	return &Publisher{
		root:  root,
		newID: uuid.NewString,
	}
}

func (p *Publisher) stateDir() string {
	return filepath.Join(p.root, StateDir)
}

func (p *Publisher) currentPath() string {
	return filepath.Join(p.stateDir(), currentLink)
}

// liveGeneration returns the directory of the current generation and its id,
// or empty strings when nothing was published through a generation yet.
func (p *Publisher) liveGeneration() (string, string, error) {
	target, err := os.Readlink(p.currentPath())
	if os.IsNotExist(err) {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}

	dir := filepath.Join(p.stateDir(), target)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return "", "", nil
		}
		return "", "", err
	}
	return dir, filepath.Base(target), nil
}

// Publish makes the tree rendered in stage the live content of the root.
// The staged directory is left untouched.
func (p *Publisher) Publish(ctx context.Context, stage string) (*Result, error) {
	res, err := p.publish(ctx, stage)
	if err != nil {
		return nil, models.WrapIO("", fmt.Errorf("failed to publish: %w", err))
	}
	return res, nil
}

func (p *Publisher) publish(ctx context.Context, stage string) (*Result, error) {
	stageNames, err := topLevel(stage)
	if err != nil {
		return nil, err
	}

	liveDir, liveID, err := p.liveGeneration()
	if err != nil {
		return nil, err
	}

	// Before the first generation the live tree is the root itself,
	// restricted to the entries we render.
	live, liveNames := liveDir, stageNames
	if liveDir == "" {
		live = p.root
	} else if liveNames, err = topLevel(liveDir); err != nil {
		return nil, err
	}

	diff, err := diffTrees(ctx, stage, stageNames, live, liveNames)
	if err != nil {
		return nil, err
	}
	res := &Result{Diff: *diff, Generation: liveID}

	if diff.Empty() && liveDir != "" && p.linked(stageNames) {
		logrus.Info("Published tree is up to date")
		return res, nil
	}

	id := p.newID()
	genDir := filepath.Join(p.stateDir(), generationsDir, id)
	if err := p.materialize(ctx, genDir, stage, live, liveNames, diff); err != nil {
		os.RemoveAll(genDir)
		return nil, err
	}

	if err := p.flip(id); err != nil {
		os.RemoveAll(genDir)
		return nil, err
	}
	res.Flipped = true
	res.Generation = id
	logrus.Infof("Published generation %s (%d added, %d changed, %d removed)",
		id, len(diff.Added), len(diff.Changed), len(diff.Removed))

	legacy := filepath.Join(p.stateDir(), legacyPrefix+id)
	if err := p.link(stageNames, legacy); err != nil {
		return nil, err
	}
	if err := p.unlinkStale(stageNames); err != nil {
		return nil, err
	}

	p.cleanup(id, legacy)
	return res, nil
}

// materialize builds the new generation: unchanged files are linked from the
// live tree, new and changed files copied from the stage.
func (p *Publisher) materialize(ctx context.Context, genDir, stage, live string, liveNames []string, diff *Diff) error {
	if err := utils.EnsureDir(genDir); err != nil {
		return err
	}

	for _, rel := range diff.Unchanged {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := utils.LinkOrCopy(filepath.Join(live, rel), filepath.Join(genDir, rel)); err != nil {
			return fmt.Errorf("failed to carry over %s: %w", rel, err)
		}
	}

	for _, list := range [][]string{diff.Added, diff.Changed} {
		for _, rel := range list {
			if err := ctx.Err(); err != nil {
				return err
			}
			logrus.Debugf("Installing %s", rel)
			if err := utils.CopyFile(filepath.Join(stage, rel), filepath.Join(genDir, rel)); err != nil {
				return fmt.Errorf("failed to install %s: %w", rel, err)
			}
		}
	}

	vcs, err := vcsPaths(live, liveNames)
	if err != nil {
		return err
	}
	for _, rel := range vcs {
		logrus.Debugf("Preserving %s", rel)
		if err := utils.CopyTree(filepath.Join(live, rel), filepath.Join(genDir, rel)); err != nil {
			return fmt.Errorf("failed to preserve %s: %w", rel, err)
		}
	}

	return nil
}

// flip points .pirum/current at generation id with a single rename
func (p *Publisher) flip(id string) error {
	tmp := filepath.Join(p.stateDir(), currentLink+".tmp-"+id)
	if err := os.Symlink(filepath.Join(generationsDir, id), tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, p.currentPath()); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func linkTarget(name string) string {
	return filepath.Join(StateDir, currentLink, name)
}

// linked reports whether every name is a link into the current generation
func (p *Publisher) linked(names []string) bool {
	for _, name := range names {
		target, err := os.Readlink(filepath.Join(p.root, name))
		if err != nil || target != linkTarget(name) {
			return false
		}
	}
	return true
}

// link makes every name at the root a link into the current generation.
// Real files and directories left by earlier layouts are moved to legacy.
func (p *Publisher) link(names []string, legacy string) error {
	for _, name := range names {
		path := filepath.Join(p.root, name)
		want := linkTarget(name)

		info, err := os.Lstat(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return err
		case info.Mode()&os.ModeSymlink != 0:
			if target, _ := os.Readlink(path); target == want {
				continue
			}
		case info.IsDir():
			if err := utils.EnsureDir(legacy); err != nil {
				return err
			}
			logrus.Warnf("Replacing directory %s with a link: it is missing until the link is in place", name)
			if err := os.Rename(path, filepath.Join(legacy, name)); err != nil {
				return err
			}
		}

		tmp := filepath.Join(p.root, "."+name+".pirum-link")
		os.Remove(tmp)
		if err := os.Symlink(want, tmp); err != nil {
			return err
		}
		if err := os.Rename(tmp, path); err != nil {
			os.Remove(tmp)
			return err
		}
	}
	return nil
}

// unlinkStale removes root links into the current generation whose entry
// was not rendered this time
func (p *Publisher) unlinkStale(names []string) error {
	keep := make(map[string]bool)
	for _, name := range names {
		keep[name] = true
	}

	entries, err := os.ReadDir(p.root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if keep[e.Name()] || e.Type()&os.ModeSymlink == 0 {
			continue
		}
		path := filepath.Join(p.root, e.Name())
		target, err := os.Readlink(path)
		if err != nil || !strings.HasPrefix(target, filepath.Join(StateDir, currentLink)+string(filepath.Separator)) {
			continue
		}
		logrus.Debugf("Removing stale link %s", e.Name())
		if err := os.Remove(path); err != nil {
			return err
		}
	}
	return nil
}

// cleanup deletes every generation but id, and the legacy directory.
// Failures only leave garbage behind.
func (p *Publisher) cleanup(id, legacy string) {
	gens := filepath.Join(p.stateDir(), generationsDir)
	entries, err := os.ReadDir(gens)
	if err != nil {
		logrus.Warnf("Failed to list generations: %v", err)
		return
	}
	for _, e := range entries {
		if e.Name() == id {
			continue
		}
		if err := os.RemoveAll(filepath.Join(gens, e.Name())); err != nil {
			logrus.Warnf("Failed to remove generation %s: %v", e.Name(), err)
		}
	}
	if err := os.RemoveAll(legacy); err != nil {
		logrus.Warnf("Failed to remove %s: %v", legacy, err)
	}
}
