package romloader

import (
	"archive/tar"
	"bufio"
	"bytes"
	"io"
	"path/filepath"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/ulikunitz/xz"
)

// sizeOf returns the length of an open file.
func sizeOf(f afero.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "failed to stat archive")
	}
	return info.Size(), nil
}

// extractFromZIP extracts the first ROM file from a ZIP archive
func extractFromZIP(f afero.File) ([]byte, string, error) {
	size, err := sizeOf(f)
	if err != nil {
		return nil, "", err
	}
	r, err := zip.NewReader(f, size)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to open zip")
	}

	for _, zf := range r.File {
		if zf.FileInfo().IsDir() || !isROMFile(zf.Name) {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, "", errors.Wrapf(err, "failed to open %s", zf.Name)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, "", errors.Wrapf(err, "failed to read %s", zf.Name)
		}
		return data, filepath.Base(zf.Name), nil
	}
	return nil, "", ErrNoROMFile
}

// extractFrom7z extracts the first ROM file from a 7z archive
func extractFrom7z(f afero.File) ([]byte, string, error) {
	size, err := sizeOf(f)
	if err != nil {
		return nil, "", err
	}
	r, err := sevenzip.NewReader(f, size)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to open 7z")
	}

	for _, sf := range r.File {
		if sf.FileInfo().IsDir() || !isROMFile(sf.Name) {
			continue
		}
		rc, err := sf.Open()
		if err != nil {
			return nil, "", errors.Wrapf(err, "failed to open %s", sf.Name)
		}
		data, err := limitedRead(rc)
		rc.Close()
		if err != nil {
			return nil, "", errors.Wrapf(err, "failed to read %s", sf.Name)
		}
		return data, filepath.Base(sf.Name), nil
	}
	return nil, "", ErrNoROMFile
}

// extractFromGzip handles both a single gzipped image and a gzipped tar.
func extractFromGzip(f afero.File, path string) ([]byte, string, error) {
	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to open gzip")
	}
	defer gz.Close()
	return unpackStream(gz, innerName(path, ".tgz", ".gz"))
}

// extractFromXZ handles both a single xz-compressed image and a tar.xz.
func extractFromXZ(f afero.File, path string) ([]byte, string, error) {
	xr, err := xz.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to open xz")
	}
	return unpackStream(xr, innerName(path, ".xz"))
}

// unpackStream reads a decompressed stream that is either a tar archive
// or the image itself. name is the image name used in the second case.
func unpackStream(r io.Reader, name string) ([]byte, string, error) {
	data, err := limitedRead(r)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to decompress")
	}
	if !isTar(data) {
		return data, name, nil
	}

	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to read tar entry")
		}
		if hdr.Typeflag != tar.TypeReg || !isROMFile(hdr.Name) {
			continue
		}
		rom, err := limitedRead(tr)
		if err != nil {
			return nil, "", errors.Wrapf(err, "failed to read %s", hdr.Name)
		}
		return rom, filepath.Base(hdr.Name), nil
	}
	return nil, "", ErrNoROMFile
}

// isTar reports whether data starts with a POSIX or GNU tar header.
func isTar(data []byte) bool {
	const magicOffset = 257
	if len(data) < magicOffset+5 {
		return false
	}
	return string(data[magicOffset:magicOffset+5]) == "ustar"
}
