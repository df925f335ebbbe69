package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-ssg/internal/markdown"
	"github.com/goliatone/go-ssg/internal/validation"
)

// MetadataFile is the per-item metadata document.
const MetadataFile = "metadata.yaml"

var (
	ErrMetadataNotFound = errors.New("content: metadata not found")
	ErrMetadataInvalid  = errors.New("content: metadata invalid")
)

// Kind selects the loader and template for an item.
type Kind string

const (
	KindProblem Kind = "problem"
	KindBlog    Kind = "blog"
	KindPage    Kind = "page"
)

// Known reports whether k is one of the supported item kinds.
func (k Kind) Known() bool {
	switch k {
	case KindProblem, KindBlog, KindPage:
		return true
	default:
		return false
	}
}

// Template returns the template file used to render items of kind k.
func (k Kind) Template() string {
	return string(k) + ".html"
}

// Metadata describes a content item. Slug and Path are derived by the
// listing code and never read from disk.
type Metadata struct {
	Title     string   `yaml:"title" json:"title"`
	Author    string   `yaml:"author,omitempty" json:"author,omitempty"`
	ID        string   `yaml:"id,omitempty" json:"id,omitempty"`
	Tags      []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Timestamp string   `yaml:"timestamp,omitempty" json:"timestamp,omitempty"`
	Language  string   `yaml:"language,omitempty" json:"language,omitempty"`
	Image     string   `yaml:"image,omitempty" json:"image,omitempty"`
	Kind      Kind     `yaml:"type" json:"type"`

	Slug string `yaml:"-" json:"slug,omitempty"`
	Path string `yaml:"-" json:"path,omitempty"`
}

// frontMatterSources are the Markdown bodies consulted, in order, when an
// item has no metadata.yaml.
var frontMatterSources = []string{"problem.md", "body.md", "content.md"}

// LoadMetadata reads dir/metadata.yaml. Without it, the front matter of the
// item's primary Markdown body is used instead.
func LoadMetadata(dir string) (Metadata, error) {
	raw, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err == nil {
		meta, err := ParseMetadata(raw)
		if err != nil {
			return Metadata{}, fmt.Errorf("%s: %w", filepath.Join(dir, MetadataFile), err)
		}
		return meta, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return Metadata{}, fmt.Errorf("read %s: %w", filepath.Join(dir, MetadataFile), err)
	}

	for _, name := range frontMatterSources {
		path := filepath.Join(dir, name)
		source, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if !markdown.HasFrontMatter(source) {
			continue
		}
		meta, err := parseFrontMatterMetadata(source)
		if err != nil {
			return Metadata{}, fmt.Errorf("%s: %w", path, err)
		}
		return meta, nil
	}
	return Metadata{}, fmt.Errorf("%w: %s", ErrMetadataNotFound, dir)
}

// ParseMetadata decodes and validates a metadata YAML document.
func ParseMetadata(raw []byte) (Metadata, error) {
	var document map[string]any
	if err := yaml.Unmarshal(raw, &document); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrMetadataInvalid, err)
	}
	if err := validation.ValidateMetadata(document); err != nil {
		return Metadata{}, fmt.Errorf("%w: %w", ErrMetadataInvalid, err)
	}

	var meta Metadata
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	if err := decoder.Decode(&meta); err != nil && !errors.Is(err, io.EOF) {
		return Metadata{}, fmt.Errorf("%w: %v", ErrMetadataInvalid, err)
	}
	return meta, nil
}

func parseFrontMatterMetadata(source []byte) (Metadata, error) {
	var document map[string]any
	if _, err := markdown.ParseFrontMatter(source, &document); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrMetadataInvalid, err)
	}
	if err := validation.ValidateMetadata(document); err != nil {
		return Metadata{}, fmt.Errorf("%w: %w", ErrMetadataInvalid, err)
	}

	var meta Metadata
	if _, err := markdown.ParseFrontMatter(source, &meta); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrMetadataInvalid, err)
	}
	return meta, nil
}

// MarksItem reports whether the file at path makes its directory an item:
// either it is metadata.yaml, or the directory has no metadata.yaml and path
// is the body file LoadMetadata reads front matter from. Each item
// directory has exactly one marking file.
func MarksItem(path string) bool {
	dir, name := filepath.Split(path)
	if name == MetadataFile {
		return true
	}
	if !slices.Contains(frontMatterSources, name) {
		return false
	}
	source, ok := frontMatterSource(dir)
	return ok && source == name
}

// IsItemDir reports whether dir holds metadata.yaml or a body with front
// matter.
func IsItemDir(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, MetadataFile)); err == nil {
		return true
	}
	_, ok := frontMatterSource(dir)
	return ok
}

// frontMatterSource names the body LoadMetadata falls back to in a
// directory without metadata.yaml.
func frontMatterSource(dir string) (string, bool) {
	if _, err := os.Stat(filepath.Join(dir, MetadataFile)); err == nil {
		return "", false
	}
	for _, name := range frontMatterSources {
		source, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil && markdown.HasFrontMatter(source) {
			return name, true
		}
	}
	return "", false
}
