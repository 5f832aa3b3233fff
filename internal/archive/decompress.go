package archive

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Decompressor opens a decompressed view of an archive stream
type Decompressor func(r io.Reader) (io.ReadCloser, error)

// decompressors maps archive extensions to their decompressor
var decompressors = map[string]Decompressor{
	"tgz":  gzipReader,
	"txz":  xzReader,
	"tzst": zstdReader,
}

// Extensions returns the archive extensions that can be read
func Extensions() []string {
	return []string{"tgz", "txz", "tzst"}
}

// DecompressorFor returns the decompressor registered for ext
func DecompressorFor(ext string) (Decompressor, error) {
	d, ok := decompressors[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported archive extension: %s", ext)
	}
	return d, nil
}

func gzipReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func xzReader(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(r)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(xr), nil
}

func zstdReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return zr.IOReadCloser(), nil
}
