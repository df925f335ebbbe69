package i18n

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Catalog maps translation keys to text for one language.
type Catalog struct {
	Language string
	entries  map[string]string
}

// Translate returns the translation for key, or key itself when missing.
func (c *Catalog) Translate(key string) string {
	if c == nil {
		return key
	}
	if value, ok := c.entries[key]; ok {
		return value
	}
	return key
}

// Len reports the number of entries in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Loader reads "<language>.csv" catalogs from a directory.
type Loader struct {
	dir string
}

// NewLoader constructs a loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Path returns the catalog file for language.
func (l *Loader) Path(language string) string {
	return filepath.Join(l.dir, language+".csv")
}

// Load parses the catalog for language.
func (l *Loader) Load(ctx context.Context, language string) (*Catalog, error) {
	if l == nil || l.dir == "" {
		return nil, errors.New("i18n: loader directory cannot be empty")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	path := l.Path(language)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("i18n: open catalog %q: %w", path, err)
	}
	defer file.Close()

	catalog, err := decodeCatalog(file)
	if err != nil {
		return nil, fmt.Errorf("i18n: parse catalog %q: %w", path, err)
	}
	catalog.Language = language
	return catalog, nil
}

// decodeCatalog reads "key,value" lines. Blank lines and lines starting
// with '#' are skipped; only the first comma separates key from value.
func decodeCatalog(r io.Reader) (*Catalog, error) {
	catalog := &Catalog{entries: map[string]string{}}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		catalog.entries[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return catalog, nil
}
