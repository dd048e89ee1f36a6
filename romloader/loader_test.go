package romloader

import (
	"archive/tar"
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/ulikunitz/xz"
)

// writeFile stores data at path in a fresh in-memory file system.
func writeFile(t *testing.T, path string, data []byte) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return fs
}

func zipBytes(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create %s in zip: %v", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("Failed to write to zip: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Failed to write to gzip: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close gzip: %v", err)
	}
	return buf.Bytes()
}

func xzBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("Failed to create xz writer: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Failed to write to xz: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close xz: %v", err)
	}
	return buf.Bytes()
}

func tarBytes(t *testing.T, name string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := tar.NewWriter(&buf)
	if err := w.WriteHeader(&tar.Header{Name: "docs/readme.txt", Mode: 0644, Size: 2, Typeflag: tar.TypeReg}); err != nil {
		t.Fatalf("Failed to write tar header: %v", err)
	}
	w.Write([]byte("hi"))
	if err := w.WriteHeader(&tar.Header{Name: name, Mode: 0644, Size: int64(len(data)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatalf("Failed to write tar header: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Failed to write to tar: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close tar: %v", err)
	}
	return buf.Bytes()
}

func TestLoader_Formats(t *testing.T) {
	rom := []byte{0xAA, 0x55, 0x00, 0x80, 0x01, 0x02}

	tests := []struct {
		name     string
		path     string
		data     []byte
		wantName string
	}{
		{"raw col", "/roms/game.col", rom, "game.col"},
		{"raw rom upper", "/roms/GAME.ROM", rom, "GAME.ROM"},
		{"zip", "/roms/game.zip", zipBytes(t, map[string][]byte{"game.col": rom}), "game.col"},
		{"zip nested", "/roms/game.zip", zipBytes(t, map[string][]byte{"a/b/game.bin": rom}), "game.bin"},
		{"gzip", "/roms/game.col.gz", gzipBytes(t, rom), "game.col"},
		{"tar.gz", "/roms/game.tar.gz", gzipBytes(t, tarBytes(t, "roms/game.col", rom)), "game.col"},
		{"xz", "/roms/game.col.xz", xzBytes(t, rom), "game.col"},
		{"tar.xz", "/roms/game.tar.xz", xzBytes(t, tarBytes(t, "game.rom", rom)), "game.rom"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := writeFile(t, tc.path, tc.data)
			data, name, err := LoadROMFs(fs, tc.path)
			if err != nil {
				t.Fatalf("LoadROMFs failed: %v", err)
			}
			if !bytes.Equal(data, rom) {
				t.Errorf("Data mismatch: expected %v, got %v", rom, data)
			}
			if name != tc.wantName {
				t.Errorf("Name mismatch: expected %s, got %s", tc.wantName, name)
			}
		})
	}
}

func TestLoader_FormatDetectionMagic(t *testing.T) {
	testCases := []struct {
		header   []byte
		expected formatType
	}{
		{[]byte{0x50, 0x4B, 0x03, 0x04}, formatZIP},
		{[]byte{0x50, 0x4B, 0x05, 0x06}, formatZIP},
		{[]byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, format7z},
		{[]byte{0x1F, 0x8B}, formatGzip},
		{[]byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}, formatXZ},
		{[]byte{0x52, 0x61, 0x72, 0x21}, formatRAR},
	}

	for _, tc := range testCases {
		result := detectFormat(tc.header, "file.dat")
		if result != tc.expected {
			t.Errorf("detectFormat(%v): expected %d, got %d", tc.header, tc.expected, result)
		}
	}
}

func TestLoader_FormatDetectionExtension(t *testing.T) {
	testCases := []struct {
		path     string
		expected formatType
	}{
		{"game.col", formatRaw},
		{"game.COL", formatRaw},
		{"coleco.rom", formatRaw},
		{"bios.bin", formatRaw},
		{"game.zip", formatZIP},
		{"game.ZIP", formatZIP},
		{"game.7z", format7z},
		{"game.gz", formatGzip},
		{"game.tgz", formatGzip},
		{"game.tar.gz", formatGzip},
		{"game.xz", formatXZ},
		{"game.rar", formatRAR},
		{"game.sms", formatUnknown},
		{"game.unknown", formatUnknown},
	}

	for _, tc := range testCases {
		result := detectFormat(nil, tc.path)
		if result != tc.expected {
			t.Errorf("detectFormat(nil, %s): expected %d, got %d", tc.path, tc.expected, result)
		}
	}
}

func TestLoader_NoROMInArchive(t *testing.T) {
	fs := writeFile(t, "/test.zip", zipBytes(t, map[string][]byte{"readme.txt": []byte("hello")}))

	_, _, err := LoadROMFs(fs, "/test.zip")
	if !errors.Is(err, ErrNoROMFile) {
		t.Errorf("Expected ErrNoROMFile, got %v", err)
	}
}

func TestLoader_TarWithoutROM(t *testing.T) {
	var buf bytes.Buffer
	w := tar.NewWriter(&buf)
	w.WriteHeader(&tar.Header{Name: "notes.txt", Mode: 0644, Size: 1, Typeflag: tar.TypeReg})
	w.Write([]byte("x"))
	w.Close()
	fs := writeFile(t, "/pack.tar.gz", gzipBytes(t, buf.Bytes()))

	_, _, err := LoadROMFs(fs, "/pack.tar.gz")
	if !errors.Is(err, ErrNoROMFile) {
		t.Errorf("Expected ErrNoROMFile, got %v", err)
	}
}

func TestLoader_FileTooLarge(t *testing.T) {
	fs := writeFile(t, "/large.col.gz", gzipBytes(t, make([]byte, maxROMSize+1)))

	_, _, err := LoadROMFs(fs, "/large.col.gz")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Expected ErrFileTooLarge, got %v", err)
	}
}

func TestLoader_Unsupported(t *testing.T) {
	fs := writeFile(t, "/notes.txt", []byte("plain text"))

	_, _, err := LoadROMFs(fs, "/notes.txt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoader_FileNotFound(t *testing.T) {
	_, _, err := LoadROMFs(afero.NewMemMapFs(), "/nonexistent/game.col")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoader_IsROMFile(t *testing.T) {
	testCases := []struct {
		name     string
		expected bool
	}{
		{"game.col", true},
		{"GAME.COL", true},
		{"coleco.rom", true},
		{"path/to/bios.bin", true},
		{"game.sms", false},
		{"game.col.txt", false},
		{"col", false},
	}

	for _, tc := range testCases {
		if got := isROMFile(tc.name); got != tc.expected {
			t.Errorf("isROMFile(%q): expected %v, got %v", tc.name, tc.expected, got)
		}
	}
}

func TestLoader_InnerName(t *testing.T) {
	testCases := []struct {
		path string
		want string
	}{
		{"/a/game.col.gz", "game.col"},
		{"/a/game.col.GZ", "game.col"},
		{"/a/game.tgz", "game"},
		{"/a/game.col", "game.col"},
	}
	for _, tc := range testCases {
		if got := innerName(tc.path, ".tgz", ".gz"); got != tc.want {
			t.Errorf("innerName(%q): expected %q, got %q", tc.path, tc.want, got)
		}
	}
}
