package buildcmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-ssg/internal/generator"
)

const (
	buildContentMessageType = "ssg.build.content"
	buildListMessageType    = "ssg.build.list"
	buildSiteMessageType    = "ssg.build.site"
)

// ResultCallback receives the outcome of a site build. It is invoked
// synchronously even when the build returns an error.
type ResultCallback func(*generator.BuildResult)

// PageCallback receives the page written by a content or list build.
type PageCallback func(*generator.RenderedPage)

// BuildContentCommand renders one content directory.
type BuildContentCommand struct {
	Path     string       `json:"path"`
	OnResult PageCallback `json:"-"`
}

func (BuildContentCommand) Type() string { return buildContentMessageType }

// Validate requires Path to name an existing directory.
func (m BuildContentCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Path, validation.Required, validation.By(existingDir)),
	)
}

// BuildListCommand renders the listing declared by an index.yaml file.
type BuildListCommand struct {
	IndexPath string       `json:"index_path"`
	OnResult  PageCallback `json:"-"`
}

func (BuildListCommand) Type() string { return buildListMessageType }

// Validate requires IndexPath to name an existing YAML file.
func (m BuildListCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.IndexPath, validation.Required, validation.By(yamlFile), validation.By(existingFile)),
	)
}

// BuildSiteCommand renders the whole content tree.
type BuildSiteCommand struct {
	DryRun   bool           `json:"dry_run,omitempty"`
	OnResult ResultCallback `json:"-"`
}

func (BuildSiteCommand) Type() string { return buildSiteMessageType }

func (BuildSiteCommand) Validate() error { return nil }

var (
	errNotDirectory = errors.New("must be an existing directory")
	errNotFile      = errors.New("must be an existing file")
	errNotYAML      = errors.New("must be a .yaml or .yml file")
)

func existingDir(value any) error {
	path, _ := value.(string)
	if strings.TrimSpace(path) == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return errNotDirectory
	}
	return nil
}

func existingFile(value any) error {
	path, _ := value.(string)
	if strings.TrimSpace(path) == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return errNotFile
	}
	return nil
}

func yamlFile(value any) error {
	path, _ := value.(string)
	if strings.TrimSpace(path) == "" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return nil
	default:
		return errNotYAML
	}
}
