package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-slug"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-ssg/internal/content"
	"github.com/goliatone/go-ssg/pkg/interfaces"
)

// IndexFile declares a listing page for the directory that holds it.
const IndexFile = "index.yaml"

var ErrIndexInvalid = errors.New("generator: invalid index")

// IndexConfig is the decoded index.yaml document.
type IndexConfig struct {
	Title       string       `yaml:"title"`
	ContentType content.Kind `yaml:"content-type"`
	Language    string       `yaml:"language,omitempty"`
	Path        string       `yaml:"path,omitempty"`
}

// LoadIndex reads and checks an index.yaml file.
func LoadIndex(path string) (IndexConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return IndexConfig{}, fmt.Errorf("read index %s: %w", path, err)
	}
	var index IndexConfig
	if err := yaml.Unmarshal(raw, &index); err != nil {
		return IndexConfig{}, fmt.Errorf("%w: %s: %v", ErrIndexInvalid, path, err)
	}
	if strings.TrimSpace(index.Title) == "" {
		return IndexConfig{}, fmt.Errorf("%w: %s: title is required", ErrIndexInvalid, path)
	}
	if !index.ContentType.Known() {
		return IndexConfig{}, fmt.Errorf("%w: %s: %s: %s", ErrIndexInvalid, path, content.ErrUnknownContentType, index.ContentType)
	}
	return index, nil
}

// FindItems walks root for items of the given kind, including items whose
// metadata lives in body front matter. Items whose metadata cannot be
// loaded are logged and skipped.
func FindItems(root string, kind content.Kind, logger interfaces.Logger) ([]ItemRef, error) {
	var items []ItemRef
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !content.MarksItem(path) {
			return nil
		}
		dir := filepath.Dir(path)
		meta, err := content.LoadMetadata(dir)
		if err != nil {
			logger.Warn("failed to load metadata", "path", path, "error", err)
			return nil
		}
		if meta.Kind == kind {
			items = append(items, ItemRef{Dir: dir, Metadata: meta})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ItemRef is an item discovered on disk with its metadata.
type ItemRef struct {
	Dir      string
	Metadata content.Metadata
}

// SortItems orders newest first when both items carry a timestamp and by
// title otherwise.
func SortItems(items []ItemRef) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Metadata, items[j].Metadata
		if a.Timestamp != "" && b.Timestamp != "" {
			return a.Timestamp > b.Timestamp
		}
		return a.Title < b.Title
	})
}

func itemSlug(title string) string {
	normalized, err := slug.Normalize(title)
	if err != nil || normalized == "" {
		return strings.ToLower(strings.Join(strings.Fields(title), "-"))
	}
	return normalized
}

func listItemContext(meta content.Metadata) map[string]any {
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"title":     meta.Title,
		"author":    meta.Author,
		"id":        meta.ID,
		"tags":      tags,
		"timestamp": meta.Timestamp,
		"language":  meta.Language,
		"image":     meta.Image,
		"type":      string(meta.Kind),
		"slug":      meta.Slug,
		"path":      meta.Path,
	}
}
