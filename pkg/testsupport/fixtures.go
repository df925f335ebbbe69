// Package testsupport holds filesystem helpers shared by package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// LoadFixture reads the file at path, failing the test when it is missing.
func LoadFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}

// WriteFile writes body to path, creating parent directories.
func WriteFile(tb testing.TB, path, body string) {
	tb.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
}

// WriteTree writes every entry of files below root. Keys are slash
// separated paths relative to root.
func WriteTree(tb testing.TB, root string, files map[string]string) {
	tb.Helper()
	for name, body := range files {
		WriteFile(tb, filepath.Join(root, filepath.FromSlash(name)), body)
	}
}
