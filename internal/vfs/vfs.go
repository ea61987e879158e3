// Package vfs provides the persistence capability used by documents.
//
// The Store interface lets the editor core swap the underlying storage:
// OSFS for real files, MemFS for tests and scratch workspaces. Files are
// plain UTF-8 text without any envelope.
package vfs

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Store reads and writes whole text files.
type Store interface {
	// ReadFile returns the decoded content of path.
	ReadFile(path string) (string, error)

	// WriteFile replaces the content of path with text, creating it
	// if necessary.
	WriteFile(path string, text string) error
}

// DefaultExportName is the export file name for documents without a path.
const DefaultExportName = "untitled.html"

// ExportName returns the suggested HTML export file name for a document
// path: the base name with its extension replaced by ".html".
func ExportName(path string) string {
	if path == "" {
		return DefaultExportName
	}
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return DefaultExportName
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
}

// ExportPath returns the export path next to the document, or the bare
// default name for untitled documents.
func ExportPath(path string) string {
	if path == "" {
		return DefaultExportName
	}
	return filepath.Join(filepath.Dir(path), ExportName(path))
}

// decode converts raw file bytes to text. A UTF-8 byte order mark is
// stripped and UTF-16 content with a byte order mark is transcoded.
func decode(data []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
