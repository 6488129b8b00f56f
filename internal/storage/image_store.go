package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrAssetNotFound is returned by Find when no image exists for a plate.
var ErrAssetNotFound = errors.New("image asset not found")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ValidExtension returns the lowercase extension of filename and whether
// it is an accepted image type.
func ValidExtension(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext, allowedExtensions[ext]
}

// ImageStore persists vehicle images. References returned by Save and Find
// are the path strings stored on the vehicle row.
type ImageStore interface {
	// Save writes the image under a name derived from the canonical plate,
	// overwriting any previous asset for the same plate and extension.
	Save(plate, ext string, r io.Reader) (string, error)
	// Remove deletes the asset behind a stored reference. A missing file
	// is not an error.
	Remove(ref string) error
	// Find locates an existing asset for a plate, trying each accepted
	// extension.
	Find(plate string) (string, error)
}

// LocalImageStore keeps images on the local filesystem under baseDir,
// e.g. uploads/vehicles.
type LocalImageStore struct {
	baseDir string
}

func NewLocalImageStore(baseDir string) *LocalImageStore {
	return &LocalImageStore{baseDir: baseDir}
}

func (s *LocalImageStore) Save(plate, ext string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("ImageStore.Save: %w", err)
	}

	name := plate + strings.ToLower(ext)
	f, err := os.Create(filepath.Join(s.baseDir, name))
	if err != nil {
		return "", fmt.Errorf("ImageStore.Save: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("ImageStore.Save: %w", err)
	}
	return s.ref(name), nil
}

func (s *LocalImageStore) Remove(ref string) error {
	err := os.Remove(s.localPath(ref))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ImageStore.Remove: %w", err)
	}
	return nil
}

func (s *LocalImageStore) Find(plate string) (string, error) {
	for ext := range allowedExtensions {
		name := plate + ext
		if _, err := os.Stat(filepath.Join(s.baseDir, name)); err == nil {
			return s.ref(name), nil
		}
	}
	return "", fmt.Errorf("%w: plate %s", ErrAssetNotFound, plate)
}

// ref builds the reference path stored in the database, always with
// forward slashes, e.g. "/uploads/vehicles/29A12345.jpg".
func (s *LocalImageStore) ref(name string) string {
	return "/" + filepath.ToSlash(filepath.Join(s.baseDir, name))
}

func (s *LocalImageStore) localPath(ref string) string {
	return filepath.FromSlash(strings.TrimPrefix(ref, "/"))
}
