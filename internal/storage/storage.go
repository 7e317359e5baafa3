// Package storage keeps uploaded event images on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// URLPrefix is the public path stored images are served under.
const URLPrefix = "/uploads/"

// MaxImageBytes is the upload limit for a single image.
const MaxImageBytes = 5 << 20

var (
	// ErrNotImage is returned for uploads whose content type is not image/*.
	ErrNotImage = errors.New("only image files are allowed")
	// ErrTooLarge is returned for uploads over MaxImageBytes.
	ErrTooLarge = errors.New("image exceeds the 5MB limit")
)

// DiskStore writes images under a single directory.
type DiskStore struct {
	dir string
	now func() time.Time
}

// NewDiskStore creates dir if needed and returns a DiskStore rooted there.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, now: time.Now}, nil
}

// Dir returns the directory images are written to.
func (s *DiskStore) Dir() string { return s.dir }

// Save stores fh as <unix-millis>-<basename> and returns its /uploads reference.
func (s *DiskStore) Save(fh *multipart.FileHeader) (string, error) {
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image") {
		return "", ErrNotImage
	}
	if fh.Size > MaxImageBytes {
		return "", ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), sanitize(fh.Filename))
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	n, err := io.Copy(dst, io.LimitReader(src, MaxImageBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxImageBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write image: %w", err)
	}
	return URLPrefix + name, nil
}

// Remove deletes the file behind ref. Unknown or foreign references are ignored.
func (s *DiskStore) Remove(ref string) error {
	if !strings.HasPrefix(ref, URLPrefix) {
		return nil
	}
	name := path.Base(ref)
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

func sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' || r < 0x20 {
			return '_'
		}
		return r
	}, name)
	if name == "." || name == "" {
		return "image"
	}
	return name
}
