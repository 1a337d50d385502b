package reader

import (
	"io"
	"os"

	"github.com/tsawler/pdfxref/logging"
)

// tempCopy copies filename to a new temporary file and returns its path.
func tempCopy(filename string) (string, error) {
	src, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "pdfxref-*.pdf")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		removeTemp(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		removeTemp(tmp.Name())
		return "", err
	}
	logging.Logger().Debug("reading from temporary copy", "file", filename, "copy", tmp.Name())
	return tmp.Name(), nil
}

// removeTemp deletes a temporary copy. Failures are only logged.
func removeTemp(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Logger().Warn("failed to remove temporary copy", "path", path, "err", err)
	}
}
