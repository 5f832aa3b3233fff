package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ralt/pirum/internal/archive"
	"github.com/ralt/pirum/internal/models"
	"github.com/ralt/pirum/internal/publish"
	"github.com/ralt/pirum/internal/scanner"
	"github.com/ralt/pirum/internal/utils"
	"github.com/sirupsen/logrus"
)

// parseArchivePath checks that path is named like an archive
func parseArchivePath(path string) (scanner.Archive, error) {
	filename := filepath.Base(path)
	name, version, ext, ok := scanner.ParseArchiveName(filename)
	if !ok {
		return scanner.Archive{}, models.NewError(models.ErrNaming, filename,
			"the archive filename does not follow the <name>-<version>.<ext> convention")
	}
	return scanner.Archive{Path: path, Name: name, Version: version, Ext: ext}, nil
}

// Add copies the archive at path into get/ and rebuilds the channel
func (b *Builder) Add(ctx context.Context, path string) (*publish.Result, error) {
	incoming, err := parseArchivePath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, models.WrapIO(incoming.Filename(), err)
	}
	if info.IsDir() {
		return nil, models.NewError(models.ErrIO, incoming.Filename(), "%s is a directory", path)
	}

	if err := utils.EnsureDir(b.getDir()); err != nil {
		return nil, models.WrapIO("", err)
	}

	existing, err := b.scanner.Scan(ctx, b.getDir())
	if err != nil {
		return nil, err
	}
	conflicts := utils.DetectConflicts(releases(existing), releases([]scanner.Archive{incoming}))
	for _, r := range conflicts {
		logrus.Warnf("Replacing existing release %s %s", r.Name, r.Version)
	}

	dst := filepath.Join(b.getDir(), incoming.Filename())
	if !samePath(path, dst) {
		logrus.Infof("Adding %s", incoming.Filename())
		if err := utils.CopyFile(path, dst); err != nil {
			return nil, models.WrapIO(incoming.Filename(), fmt.Errorf("failed to copy archive: %w", err))
		}
	}

	// Another compression of the same release shares the twin
	for _, a := range existing {
		if a.Release() == incoming.Release() && !samePath(a.Path, dst) {
			logrus.Infof("Removing %s", a.Filename())
			if err := os.Remove(a.Path); err != nil {
				return nil, models.WrapIO(a.Filename(), err)
			}
		}
	}

	// The twin and the published metadata describe the replaced archive
	if err := removeIfExists(archive.TwinPath(dst)); err != nil {
		return nil, models.WrapIO(incoming.Filename(), err)
	}

	return b.build(ctx, []scanner.Archive{incoming})
}

// Remove deletes the archive named filename from get/, with its tar twin,
// and rebuilds the channel
func (b *Builder) Remove(ctx context.Context, filename string) (*publish.Result, error) {
	a, err := parseArchivePath(filename)
	if err != nil {
		return nil, err
	}
	if filepath.Base(filename) != filename {
		return nil, models.NewError(models.ErrNaming, filename, "expected an archive name, not a path")
	}

	path := filepath.Join(b.getDir(), filename)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, models.NewError(models.ErrIO, a.Filename(), "the archive does not exist in %s", b.getDir())
		}
		return nil, models.WrapIO(a.Filename(), err)
	}

	logrus.Infof("Removing %s", filename)
	if err := os.Remove(path); err != nil {
		return nil, models.WrapIO(a.Filename(), err)
	}
	if err := removeIfExists(archive.TwinPath(path)); err != nil {
		return nil, models.WrapIO(a.Filename(), err)
	}

	return b.build(ctx, nil)
}

func releases(archives []scanner.Archive) []*models.Release {
	var list []*models.Release
	for _, a := range archives {
		list = append(list, &models.Release{Name: a.Name, Version: a.Version})
	}
	return list
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
