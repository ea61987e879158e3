package vfs

import (
	"fmt"
	"os"
	"path/filepath"
)

// OSFS implements Store using the operating system's file system.
type OSFS struct {
	// Perm is the mode used when creating files. Zero means 0644.
	Perm os.FileMode
}

// NewOSFS creates a new OS file system store.
func NewOSFS() *OSFS {
	return &OSFS{Perm: 0o644}
}

// Ensure OSFS implements Store.
var _ Store = (*OSFS)(nil)

// ReadFile reads and decodes the file at path.
func (f *OSFS) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text, err := decode(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return text, nil
}

// WriteFile writes text to path. The write goes to a temporary file in the
// same directory which is then renamed over the target.
func (f *OSFS) WriteFile(path string, text string) error {
	perm := f.Perm
	if perm == 0 {
		perm = 0o644
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
