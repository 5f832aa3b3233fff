package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ralt/pirum/internal/models"
	"github.com/sirupsen/logrus"
)

// TwinPath returns the path of the uncompressed tar kept next to an archive,
// e.g. get/Foo-1.0.0.tgz -> get/Foo-1.0.0.tar
func TwinPath(archivePath string) string {
	ext := filepath.Ext(archivePath)
	return strings.TrimSuffix(archivePath, ext) + ".tar"
}

// Reader extracts package.xml from archives, maintaining the tar twin cache
type Reader struct {
	// WriteTwins controls whether missing tar twins are created
	WriteTwins bool
}

// NewReader creates a reader that keeps tar twins up to date
func NewReader() *Reader {
	return &Reader{WriteTwins: true}
}

// ReadMetadata returns the package.xml embedded in the archive at path.
// ext selects the decompressor.
func (r *Reader) ReadMetadata(path, ext string) ([]byte, error) {
	twin := TwinPath(path)
	if doc, err := readTwin(twin); err == nil {
		return doc, nil
	} else if !os.IsNotExist(err) {
		logrus.Warnf("Ignoring tar twin %s: %v", twin, err)
	}

	tarData, err := r.Decompress(path, ext)
	if err != nil {
		return nil, err
	}

	if r.WriteTwins {
		if err := writeTwin(twin, tarData); err != nil {
			logrus.Warnf("Failed to write tar twin %s: %v", twin, err)
		}
	}

	return ReadMetadata(bytes.NewReader(tarData))
}

func readTwin(twin string) ([]byte, error) {
	f, err := os.Open(twin)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	logrus.Debugf("Reading %s from tar twin %s", MetadataFile, twin)
	return ReadMetadata(f)
}

// Decompress returns the full tar payload of an archive
func (r *Reader) Decompress(path, ext string) ([]byte, error) {
	decompress, err := DecompressorFor(ext)
	if err != nil {
		return nil, &models.PirumError{Type: models.ErrNaming, Package: filepath.Base(path), Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, models.WrapIO(filepath.Base(path), err)
	}
	defer f.Close()

	dr, err := decompress(f)
	if err != nil {
		return nil, models.NewError(models.ErrIntegrity, filepath.Base(path), "failed to decompress: %v", err)
	}
	defer dr.Close()

	data, err := io.ReadAll(dr)
	if err != nil {
		return nil, models.NewError(models.ErrIntegrity, filepath.Base(path), "failed to decompress: %v", err)
	}
	return data, nil
}

// writeTwin writes data next to the archive through a scratch file so a
// partially written twin is never visible under its final name.
func writeTwin(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".twin-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to install twin: %w", err)
	}
	return nil
}
