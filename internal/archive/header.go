package archive

import (
	"bytes"
	"fmt"
	"strconv"
)

// BlockSize is the size of a tar header block and the data alignment unit
const BlockSize = 512

// FieldEncoding describes how the bytes of a header field are interpreted
type FieldEncoding int

const (
	// EncodingASCII is raw text padded with NUL bytes
	EncodingASCII FieldEncoding = iota
	// EncodingOctal is zero-padded ASCII octal, NUL or space terminated
	EncodingOctal
)

// Field is one fixed-width field of a header block
type Field struct {
	Name     string
	Offset   int
	Length   int
	Encoding FieldEncoding
}

// bytes returns the raw bytes of the field within block
func (f Field) bytes(block []byte) []byte {
	return block[f.Offset : f.Offset+f.Length]
}

// HeaderLayout describes the header fields the reader relies on
var HeaderLayout = struct {
	Name     Field
	Size     Field
	Checksum Field
}{
	Name:     Field{Name: "name", Offset: 0, Length: 100, Encoding: EncodingASCII},
	Size:     Field{Name: "size", Offset: 124, Length: 12, Encoding: EncodingOctal},
	Checksum: Field{Name: "checksum", Offset: 148, Length: 8, Encoding: EncodingOctal},
}

// Header is a decoded header block
type Header struct {
	Name             string
	Size             int64
	StoredChecksum   int64
	ComputedChecksum int64
}

// Verify reports whether the stored checksum matches the header bytes
func (h *Header) Verify() bool {
	return h.StoredChecksum == h.ComputedChecksum
}

// DataBlocks returns the number of bytes occupied by the entry's data,
// rounded up to the block size.
func (h *Header) DataBlocks() int64 {
	if rem := h.Size % BlockSize; rem != 0 {
		return h.Size + BlockSize - rem
	}
	return h.Size
}

// DecodeHeader decodes a 512-byte header block
func DecodeHeader(block []byte) (*Header, error) {
	if len(block) != BlockSize {
		return nil, fmt.Errorf("header block is %d bytes, want %d", len(block), BlockSize)
	}

	size, err := decodeOctal(HeaderLayout.Size, block)
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, fmt.Errorf("negative %s field: %d", HeaderLayout.Size.Name, size)
	}

	stored, err := decodeOctal(HeaderLayout.Checksum, block)
	if err != nil {
		return nil, err
	}

	return &Header{
		Name:             decodeASCII(HeaderLayout.Name, block),
		Size:             size,
		StoredChecksum:   stored,
		ComputedChecksum: ComputeChecksum(block),
	}, nil
}

// ComputeChecksum sums the header bytes as unsigned values, counting the
// checksum field as eight ASCII spaces.
func ComputeChecksum(block []byte) int64 {
	f := HeaderLayout.Checksum
	var sum int64
	for i, b := range block {
		if i >= f.Offset && i < f.Offset+f.Length {
			sum += ' '
			continue
		}
		sum += int64(b)
	}
	return sum
}

func decodeASCII(f Field, block []byte) string {
	return string(bytes.TrimRight(f.bytes(block), "\x00"))
}

func decodeOctal(f Field, block []byte) (int64, error) {
	raw := bytes.Trim(f.bytes(block), " \x00")
	if len(raw) == 0 {
		return 0, nil
	}
	n, err := strconv.ParseInt(string(raw), 8, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s field %q: %w", f.Name, raw, err)
	}
	return n, nil
}
