package scanner

import (
	"bytes"
	"os"
	"regexp"
	"strings"
)

// archivePattern matches <name>-<version>.<ext>. Names are PEAR package
// names (letters, digits, underscores); the version is digits and dots with
// an optional stability suffix such as beta2, RC1 or snapshot.
var archivePattern = regexp.MustCompile(`(?i)^(?P<name>[A-Za-z0-9_]+)-(?P<version>[\d.]+(?:(?:RC|beta|alpha|dev|snapshot|a|b)\d*)?)\.(?P<ext>tgz|txz|tzst)$`)

// Magic bytes for compression detection
var (
	// Gzip magic bytes (.tgz)
	gzipMagic = []byte{0x1F, 0x8B}

	// XZ magic bytes (.txz)
	xzMagic = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}

	// Zstandard magic bytes (.tzst)
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

var magicByExt = map[string][]byte{
	"tgz":  gzipMagic,
	"txz":  xzMagic,
	"tzst": zstdMagic,
}

// ParseArchiveName splits an archive filename into name, version and
// extension. ok is false when the filename does not follow the convention.
func ParseArchiveName(filename string) (name, version, ext string, ok bool) {
	m := archivePattern.FindStringSubmatch(filename)
	if m == nil {
		return "", "", "", false
	}
	return m[archivePattern.SubexpIndex("name")],
		m[archivePattern.SubexpIndex("version")],
		strings.ToLower(m[archivePattern.SubexpIndex("ext")]),
		true
}

// HasArchiveExtension reports whether filename carries an archive extension,
// whatever the rest of its name looks like.
func HasArchiveExtension(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	_, ok := magicByExt[strings.ToLower(filename[i+1:])]
	return ok
}

// MatchesCompression reports whether the file starts with the magic bytes
// of the compression its extension announces.
func MatchesCompression(path, ext string) (bool, error) {
	magic, ok := magicByExt[ext]
	if !ok {
		return false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, len(magic))
	n, err := f.Read(header)
	if err != nil && n == 0 {
		return false, nil
	}
	return bytes.Equal(header[:n], magic), nil
}
