// Package filex holds file helpers for the CLI: the data directory and the
// avatar image checks done before an upload.
package filex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotImage     = errors.New("only image files can be uploaded")
	ErrFileTooLarge = errors.New("file is too large")
	ErrEmptyFile    = errors.New("file is empty")
)

// EnsureSubdDir creates dirName and returns its absolute path. Relative
// names are resolved against the working directory.
func EnsureSubdDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// Image is a file that passed ReadImage checks.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadImage loads path if it is at most maxSize bytes and its content, not
// its extension, is an image.
func ReadImage(path string, maxSize int64) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > maxSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, fi.Size(), maxSize)
	}

	// The file may grow between Stat and Read.
	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: limit %d", ErrFileTooLarge, maxSize)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	ct, err := DetectImageType(data)
	if err != nil {
		return nil, err
	}

	return &Image{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}

// DetectImageType returns the image MIME type of data, without parameters.
func DetectImageType(data []byte) (string, error) {
	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	if !strings.HasPrefix(mt, "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mt)
	}
	return mt, nil
}
