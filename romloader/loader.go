// Package romloader handles loading ROM and BIOS images from various
// sources, including compressed archives (ZIP, 7z, gzip, tar.gz, xz, RAR).
package romloader

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicXZ     = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// Maximum image size. Cartridges top out at 32KB; the limit only guards
// against unpacking something that is obviously not a ROM.
const maxROMSize = 1024 * 1024

// ErrNoROMFile is returned when no ROM file is found in an archive
var ErrNoROMFile = errors.New("no .col, .rom or .bin file found in archive")

// ErrUnsupportedFormat is returned for unrecognized file formats
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrFileTooLarge is returned when extracted content exceeds size limit
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")

// romExtensions are the file name suffixes accepted as raw images.
var romExtensions = []string{".col", ".rom", ".bin"}

// formatType represents the detected file format
type formatType int

const (
	formatUnknown formatType = iota
	formatRaw
	formatZIP
	format7z
	formatGzip
	formatXZ
	formatRAR
)

// LoadROM loads a ROM from a file path on the host file system.
// See LoadROMFs.
func LoadROM(path string) ([]byte, string, error) {
	return LoadROMFs(afero.NewOsFs(), path)
}

// LoadROMFs loads a ROM from path in fs. It automatically detects and
// extracts from archives. Returns the ROM data, the filename of the ROM
// (useful for display), and any error encountered.
func LoadROMFs(fs afero.Fs, path string) ([]byte, string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to open file")
	}
	defer f.Close()

	// Read header for magic byte detection
	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", errors.Wrap(err, "failed to read file header")
	}
	header = header[:n]

	format := detectFormat(header, path)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", errors.Wrap(err, "failed to seek file")
	}

	switch format {
	case formatRaw:
		data, err := limitedRead(f)
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to read ROM")
		}
		return data, filepath.Base(path), nil

	case formatZIP:
		return extractFromZIP(f)

	case format7z:
		return extractFrom7z(f)

	case formatGzip:
		return extractFromGzip(f, path)

	case formatXZ:
		return extractFromXZ(f, path)

	case formatRAR:
		return extractFromRAR(f)

	default:
		return nil, "", errors.Wrap(ErrUnsupportedFormat, path)
	}
}

// detectFormat determines the file format based on magic bytes and extension
func detectFormat(header []byte, path string) formatType {
	switch {
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return formatZIP
	case bytes.HasPrefix(header, magicRAR):
		return formatRAR
	case bytes.HasPrefix(header, magic7z):
		return format7z
	case bytes.HasPrefix(header, magicXZ):
		return formatXZ
	case bytes.HasPrefix(header, magicGzip):
		return formatGzip
	}

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".tar.gz") {
		return formatGzip
	}
	switch filepath.Ext(lower) {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".xz":
		return formatXZ
	case ".rar":
		return formatRAR
	}
	if isROMFile(lower) {
		return formatRaw
	}
	return formatUnknown
}

// isROMFile checks if a filename has a ROM extension (case-insensitive)
func isROMFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range romExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// innerName strips a compression suffix to recover the packed file name.
func innerName(path string, suffixes ...string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s) {
			return base[:len(base)-len(s)]
		}
	}
	return base
}

// limitedRead reads from r up to maxROMSize bytes, returning an error if exceeded
func limitedRead(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, maxROMSize+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if len(data) > maxROMSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
