package render

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/renameio/v2"
)

// AssetsDir is the build subdirectory holding copied item images.
const AssetsDir = "static/assets"

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {}, ".tiff": {}, ".svg": {},
}

var (
	imgTagPattern = regexp.MustCompile(`<img\s+[^>]*src=["']([^"']+)["'][^>]*>`)
	cssURLPattern = regexp.MustCompile(`url\(['"]?([^'"\)]+)['"]?\)`)
)

// ImageProcessor copies the images of one content item into the build
// directory and points the rendered HTML at the copies.
type ImageProcessor struct {
	dir        string
	contentDir string
	buildDir   string
	images     []string
	urlPrefix  string
}

// NewImageProcessor scans dir recursively for image files.
func NewImageProcessor(dir, contentDir, buildDir string) (*ImageProcessor, error) {
	images, err := FindImages(dir)
	if err != nil {
		return nil, err
	}
	return &ImageProcessor{
		dir:        dir,
		contentDir: contentDir,
		buildDir:   buildDir,
		images:     images,
	}, nil
}

// FindImages returns the slash separated paths of all images below root,
// relative to root.
func FindImages(root string) ([]string, error) {
	var images []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := imageExtensions[strings.ToLower(filepath.Ext(p))]; !ok {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		images = append(images, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find images in %s: %w", root, err)
	}
	return images, nil
}

func (p *ImageProcessor) HasImages() bool { return len(p.images) > 0 }

func (p *ImageProcessor) Images() []string { return append([]string(nil), p.images...) }

// URLPrefix is empty until CopyToBuildDir has run with at least one image.
func (p *ImageProcessor) URLPrefix() string { return p.urlPrefix }

// CopyToBuildDir copies every image to build/static/assets/<rel>/ where rel
// is the item directory relative to the content root. Items outside the
// content root use their directory name.
func (p *ImageProcessor) CopyToBuildDir() ([]string, error) {
	if len(p.images) == 0 {
		return nil, nil
	}
	rel := relativeItemPath(p.dir, p.contentDir)
	target := filepath.Join(p.buildDir, filepath.FromSlash(AssetsDir), rel)

	written := make([]string, 0, len(p.images))
	for _, image := range p.images {
		src := filepath.Join(p.dir, filepath.FromSlash(image))
		dst := filepath.Join(target, filepath.FromSlash(image))
		if err := copyFile(src, dst); err != nil {
			return written, err
		}
		written = append(written, dst)
	}

	p.urlPrefix = "/" + path.Join(AssetsDir, filepath.ToSlash(rel)) + "/"
	return written, nil
}

// Rewrite prefixes matching <img src> and CSS url() references in html with
// the asset URL. It is a no-op before CopyToBuildDir.
func (p *ImageProcessor) Rewrite(html string) string {
	if p.urlPrefix == "" {
		return html
	}
	return PrefixImageURLs(html, p.images, p.urlPrefix)
}

// PrefixImageURLs rewrites references in html that point at one of images.
func PrefixImageURLs(html string, images []string, prefix string) string {
	html = imgTagPattern.ReplaceAllStringFunc(html, func(tag string) string {
		src := imgTagPattern.FindStringSubmatch(tag)[1]
		if !shouldPrefix(src, images) {
			return tag
		}
		return strings.Replace(tag, src, prefix+src, 1)
	})
	return cssURLPattern.ReplaceAllStringFunc(html, func(ref string) string {
		target := cssURLPattern.FindStringSubmatch(ref)[1]
		if !shouldPrefix(target, images) {
			return ref
		}
		return "url('" + prefix + target + "')"
	})
}

// shouldPrefix matches exact image paths as well as parent or child paths
// of an image. Absolute and data URLs never match.
func shouldPrefix(ref string, images []string) bool {
	for _, skip := range []string{"http://", "https://", "data:", "/"} {
		if strings.HasPrefix(ref, skip) {
			return false
		}
	}
	normalized := strings.ReplaceAll(ref, `\`, "/")
	for _, image := range images {
		if normalized == image || strings.HasPrefix(normalized, image) || strings.HasPrefix(image, normalized) {
			return true
		}
	}
	return false
}

func relativeItemPath(dir, root string) string {
	if rel, err := filepath.Rel(root, dir); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return rel
	}
	return filepath.Base(dir)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("copy image %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("copy image %s: %w", src, err)
	}
	if err := renameio.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("copy image %s: %w", src, err)
	}
	return nil
}
