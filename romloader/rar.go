package romloader

import (
	"io"
	"path/filepath"

	"github.com/nwaples/rardecode/v2"
	"github.com/pkg/errors"
)

// extractFromRAR extracts the first ROM file from a RAR archive
func extractFromRAR(f io.Reader) ([]byte, string, error) {
	r, err := rardecode.NewReader(f)
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to open rar")
	}

	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to read rar entry")
		}

		if header.IsDir || !isROMFile(header.Name) {
			continue
		}

		data, err := limitedRead(r)
		if err != nil {
			return nil, "", errors.Wrapf(err, "failed to read %s", header.Name)
		}
		return data, filepath.Base(header.Name), nil
	}

	return nil, "", ErrNoROMFile
}
