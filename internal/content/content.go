package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/goliatone/go-ssg/internal/formatted"
)

var (
	ErrUnknownContentType = errors.New("unknown content type")
	ErrProblemNotFound    = errors.New("problem file not found")
	ErrBodyNotFound       = errors.New("no body file found")
	ErrPageNotFound       = errors.New("no content file found")
)

// Content is a loaded item. Problems use Statement, Solutions and Hints;
// blog posts and pages use Body.
type Content struct {
	Dir       string
	Metadata  Metadata
	Statement formatted.Text
	Solutions []formatted.Text
	Hints     []formatted.Text
	Body      formatted.Text
}

// Kind returns the item kind declared in its metadata.
func (c *Content) Kind() Kind {
	if c == nil {
		return ""
	}
	return c.Metadata.Kind
}

// Load reads the item stored in dir and dispatches on its metadata kind.
func Load(dir string) (*Content, error) {
	meta, err := LoadMetadata(dir)
	if err != nil {
		return nil, err
	}
	return LoadWithMetadata(dir, meta)
}

// LoadWithMetadata loads the body files of dir for already parsed metadata.
func LoadWithMetadata(dir string, meta Metadata) (*Content, error) {
	item := &Content{Dir: dir, Metadata: meta}

	switch meta.Kind {
	case KindProblem:
		statement, err := firstExisting(dir, "problem.tex", "problem.md")
		if err != nil {
			return nil, err
		}
		if statement == "" {
			return nil, fmt.Errorf("%s: %w", dir, ErrProblemNotFound)
		}
		if item.Statement, err = formatted.ReadFile(statement); err != nil {
			return nil, err
		}
		if item.Solutions, err = loadMultiple(dir, "solution"); err != nil {
			return nil, err
		}
		if item.Hints, err = loadMultiple(dir, "hint"); err != nil {
			return nil, err
		}
	case KindBlog:
		body, err := loadSingle(dir, "body", ErrBodyNotFound)
		if err != nil {
			return nil, err
		}
		item.Body = body
	case KindPage:
		body, err := loadSingle(dir, "content", ErrPageNotFound)
		if err != nil {
			return nil, err
		}
		item.Body = body
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownContentType, meta.Kind)
	}
	return item, nil
}

// loadSingle prefers base.md over base.tex.
func loadSingle(dir, base string, missing error) (formatted.Text, error) {
	path, err := firstExisting(dir, base+".md", base+".tex")
	if err != nil {
		return formatted.Text{}, err
	}
	if path == "" {
		return formatted.Text{}, fmt.Errorf("%s: %w", dir, missing)
	}
	return formatted.ReadFile(path)
}

func firstExisting(dir string, names ...string) (string, error) {
	for _, name := range names {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
	}
	return "", nil
}

type numberedFile struct {
	order int
	path  string
}

// loadMultiple reads base.(tex|md) and base.N.(tex|md) ordered by N, with
// the unnumbered file counting as 0 and the path breaking ties.
func loadMultiple(dir, base string) ([]formatted.Text, error) {
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(base) + `(?:\.(\d+))?\.(tex|md)$`)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []numberedFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := pattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		order := 0
		if match[1] != "" {
			if n, err := strconv.Atoi(match[1]); err == nil {
				order = n
			}
		}
		files = append(files, numberedFile{order: order, path: filepath.Join(dir, entry.Name())})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].order != files[j].order {
			return files[i].order < files[j].order
		}
		return files[i].path < files[j].path
	})

	texts := make([]formatted.Text, 0, len(files))
	for _, file := range files {
		text, err := formatted.ReadFile(file.path)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, nil
}
