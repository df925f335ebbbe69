package buildcmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-ssg/internal/generator"
)

type stubGenerator struct {
	contentPaths []string
	listPaths    []string
	builds       []generator.BuildOptions
	buildErr     error
}

func (s *stubGenerator) Build(_ context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
	s.builds = append(s.builds, opts)
	return &generator.BuildResult{PagesBuilt: 2, DryRun: opts.DryRun}, s.buildErr
}

func (s *stubGenerator) BuildContent(_ context.Context, dir string) (*generator.RenderedPage, error) {
	s.contentPaths = append(s.contentPaths, dir)
	return &generator.RenderedPage{Source: dir, Output: "build/out.html"}, nil
}

func (s *stubGenerator) BuildList(_ context.Context, indexPath string) (*generator.RenderedPage, error) {
	s.listPaths = append(s.listPaths, indexPath)
	return &generator.RenderedPage{Source: indexPath, Output: "build/index.html", List: true}, nil
}

func (s *stubGenerator) BuildLists(context.Context) (*generator.BuildResult, error) {
	return &generator.BuildResult{}, nil
}

func TestBuildContentCommandValidation(t *testing.T) {
	err := BuildContentCommand{}.Validate()
	var errs validation.Errors
	if !errors.As(err, &errs) || errs["path"] == nil {
		t.Fatalf("expected path error, got %v", err)
	}

	file := filepath.Join(t.TempDir(), "metadata.yaml")
	if err := os.WriteFile(file, []byte("title: x\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := (BuildContentCommand{Path: file}).Validate(); err == nil {
		t.Fatalf("expected error for file path")
	}
	if err := (BuildContentCommand{Path: t.TempDir()}).Validate(); err != nil {
		t.Fatalf("expected directory to validate, got %v", err)
	}
}

func TestBuildListCommandValidation(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.yaml")
	if err := os.WriteFile(index, []byte("title: Posts\ncontent-type: blog\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := (BuildListCommand{IndexPath: index}).Validate(); err != nil {
		t.Fatalf("expected index to validate, got %v", err)
	}
	if err := (BuildListCommand{IndexPath: filepath.Join(dir, "missing.yaml")}).Validate(); err == nil {
		t.Fatalf("expected error for missing index")
	}
	if err := (BuildListCommand{IndexPath: filepath.Join(dir, "index.json")}).Validate(); err == nil {
		t.Fatalf("expected error for non yaml index")
	}
}

func TestBuildContentHandlerInvokesGenerator(t *testing.T) {
	gen := &stubGenerator{}
	dir := t.TempDir()
	var got *generator.RenderedPage

	handler := NewBuildContentHandler(gen, nil)
	err := handler.Execute(context.Background(), BuildContentCommand{
		Path:     dir,
		OnResult: func(page *generator.RenderedPage) { got = page },
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(gen.contentPaths) != 1 || gen.contentPaths[0] != dir {
		t.Fatalf("unexpected generator calls: %v", gen.contentPaths)
	}
	if got == nil || got.Source != dir {
		t.Fatalf("expected callback with page, got %+v", got)
	}
}

func TestBuildContentHandlerRejectsInvalidMessage(t *testing.T) {
	gen := &stubGenerator{}
	err := NewBuildContentHandler(gen, nil).Execute(context.Background(), BuildContentCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(gen.contentPaths) != 0 {
		t.Fatalf("expected generator not to run")
	}
}

func TestBuildListHandlerInvokesGenerator(t *testing.T) {
	gen := &stubGenerator{}
	index := filepath.Join(t.TempDir(), "index.yaml")
	if err := os.WriteFile(index, []byte("title: Posts\ncontent-type: blog\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := NewBuildListHandler(gen, nil).Execute(context.Background(), BuildListCommand{IndexPath: index}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(gen.listPaths) != 1 || gen.listPaths[0] != index {
		t.Fatalf("unexpected generator calls: %v", gen.listPaths)
	}
}

func TestBuildSiteHandlerReportsResultOnFailure(t *testing.T) {
	gen := &stubGenerator{buildErr: errors.New("one page failed")}
	var result *generator.BuildResult

	err := NewBuildSiteHandler(gen, nil).Execute(context.Background(), BuildSiteCommand{
		DryRun:   true,
		OnResult: func(r *generator.BuildResult) { result = r },
	})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if result == nil || result.PagesBuilt != 2 || !result.DryRun {
		t.Fatalf("expected result callback, got %+v", result)
	}
	if len(gen.builds) != 1 || !gen.builds[0].DryRun {
		t.Fatalf("expected dry run build, got %+v", gen.builds)
	}
}

func TestHandlersRequireGenerator(t *testing.T) {
	err := NewBuildSiteHandler(nil, nil).Execute(context.Background(), BuildSiteCommand{})
	if !errors.Is(err, ErrGeneratorRequired) {
		t.Fatalf("expected ErrGeneratorRequired, got %v", err)
	}
}
