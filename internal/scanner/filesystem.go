package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ralt/pirum/internal/models"
	"github.com/sirupsen/logrus"
)

// FileSystemScanner implements Scanner interface for filesystem scanning
type FileSystemScanner struct{}

// NewFileSystemScanner creates a new filesystem scanner
func NewFileSystemScanner() *FileSystemScanner {
	return &FileSystemScanner{}
}

// Scan recursively scans a directory for archives. A file with an archive
// extension whose name does not follow <name>-<version>.<ext> aborts the scan.
func (s *FileSystemScanner) Scan(ctx context.Context, dir string) ([]Archive, error) {
	var archives []Archive

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Skip directories, hidden files and anything that is not an archive
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") || !HasArchiveExtension(info.Name()) {
			return nil
		}

		name, version, ext, ok := ParseArchiveName(info.Name())
		if !ok {
			return models.NewError(models.ErrNaming, info.Name(),
				"the archive filename does not follow the <name>-<version>.<ext> convention")
		}

		matches, err := MatchesCompression(path, ext)
		if err != nil {
			return models.WrapIO(info.Name(), err)
		}
		if !matches {
			return models.NewError(models.ErrIntegrity, info.Name(), "the archive is not %s compressed", ext)
		}

		logrus.Debugf("Found archive %s", path)

		archives = append(archives, Archive{
			Path:    path,
			Name:    name,
			Version: version,
			Ext:     ext,
			Size:    info.Size(),
		})

		return nil
	})

	if err != nil {
		return nil, models.WrapIO(dir, err)
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Path < archives[j].Path
	})

	logrus.Infof("Found %d archives in %s", len(archives), dir)
	return archives, nil
}
