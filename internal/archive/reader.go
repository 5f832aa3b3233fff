package archive

import (
	"errors"
	"fmt"
	"io"

	"github.com/ralt/pirum/internal/models"
)

// MetadataFile is the name of the metadata document embedded in every archive
const MetadataFile = "package.xml"

// FindEntry walks a tar stream and returns the data of the first entry
// called name. The header checksum of that entry is verified; other entries
// are skipped unverified.
func FindEntry(r io.Reader, name string) ([]byte, error) {
	block := make([]byte, BlockSize)

	for {
		if _, err := io.ReadFull(r, block); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, models.NewError(models.ErrIntegrity, "", "%s not found in archive", name)
			}
			return nil, models.WrapIO("", err)
		}

		header, err := DecodeHeader(block)
		if err != nil {
			return nil, &models.PirumError{Type: models.ErrIntegrity, Err: err}
		}

		if header.Name != name {
			if err := skip(r, header.DataBlocks()); err != nil {
				return nil, err
			}
			continue
		}

		if !header.Verify() {
			return nil, models.NewError(models.ErrIntegrity, "",
				"checksum mismatch for %s: stored %d, computed %d",
				name, header.StoredChecksum, header.ComputedChecksum)
		}

		// The declared size is untrusted until that many bytes are read
		data, err := io.ReadAll(io.LimitReader(r, header.Size))
		if err != nil {
			return nil, models.WrapIO("", err)
		}
		if int64(len(data)) != header.Size {
			return nil, models.NewError(models.ErrIntegrity, "",
				"truncated %s: %d of %d bytes", name, len(data), header.Size)
		}
		return data, nil
	}
}

// skip discards n bytes of entry data
func skip(r io.Reader, n int64) error {
	if n == 0 {
		return nil
	}
	if s, ok := r.(io.Seeker); ok {
		if _, err := s.Seek(n, io.SeekCurrent); err == nil {
			return nil
		}
	}
	copied, err := io.CopyN(io.Discard, r, n)
	if err != nil && !errors.Is(err, io.EOF) {
		return models.WrapIO("", err)
	}
	if copied < n {
		return models.NewError(models.ErrIntegrity, "", "truncated archive: entry data ends after %d of %d bytes", copied, n)
	}
	return nil
}

// ReadMetadata returns the package.xml of a tar stream
func ReadMetadata(r io.Reader) ([]byte, error) {
	data, err := FindEntry(r, MetadataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", MetadataFile, err)
	}
	return data, nil
}
