package vfs

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

// MemFS implements Store in memory. It is used for testing and for
// scratch workspaces. Failures can be injected per path.
//
// MemFS is safe for concurrent use.
type MemFS struct {
	mu     sync.RWMutex
	files  map[string]string
	failOn map[string]error
}

// NewMemFS creates a new in-memory store.
func NewMemFS() *MemFS {
	return &MemFS{
		files:  make(map[string]string),
		failOn: make(map[string]error),
	}
}

// Ensure MemFS implements Store.
var _ Store = (*MemFS)(nil)

// ReadFile returns the content stored at filePath.
func (m *MemFS) ReadFile(filePath string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filePath = cleanPath(filePath)
	if err := m.failOn[filePath]; err != nil {
		return "", &fs.PathError{Op: "read", Path: filePath, Err: err}
	}
	text, ok := m.files[filePath]
	if !ok {
		return "", &fs.PathError{Op: "read", Path: filePath, Err: fs.ErrNotExist}
	}
	return text, nil
}

// WriteFile stores text at filePath.
func (m *MemFS) WriteFile(filePath string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = cleanPath(filePath)
	if err := m.failOn[filePath]; err != nil {
		return &fs.PathError{Op: "write", Path: filePath, Err: err}
	}
	m.files[filePath] = text
	return nil
}

// AddFile is a convenience for seeding content.
func (m *MemFS) AddFile(filePath, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[cleanPath(filePath)] = text
}

// Exists returns true if filePath holds a file.
func (m *MemFS) Exists(filePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[cleanPath(filePath)]
	return ok
}

// Fail makes every subsequent read and write of filePath return err.
// A nil err clears the injected failure.
func (m *MemFS) Fail(filePath string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = cleanPath(filePath)
	if err == nil {
		delete(m.failOn, filePath)
		return
	}
	m.failOn[filePath] = err
}

// Paths returns all stored paths in sorted order.
func (m *MemFS) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func cleanPath(p string) string {
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
