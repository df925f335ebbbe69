package generator

import (
	"path"
	"path/filepath"
	"strings"
)

// OutputPath maps a content item directory to its HTML file in buildDir.
// The directory keeps its position relative to contentDir; items outside
// contentDir use their base name. A missing extension becomes .html and any
// other extension is replaced by it.
func OutputPath(itemDir, buildDir, contentDir string) string {
	rel, ok := relativeTo(itemDir, contentDir)
	if !ok || rel == "." {
		rel = filepath.Base(filepath.Clean(itemDir))
	}
	if ext := filepath.Ext(rel); ext != "" {
		rel = strings.TrimSuffix(rel, ext)
	}
	return filepath.Join(buildDir, rel+".html")
}

// ListOutputPath returns the index.html written for a listing declared at
// indexPath. override, when set, replaces the directory derived from the
// listing location and is taken relative to buildDir.
func ListOutputPath(indexPath, buildDir, contentDir, override string) string {
	if trimmed := strings.Trim(strings.TrimSpace(override), "/"); trimmed != "" {
		return filepath.Join(buildDir, filepath.FromSlash(trimmed), "index.html")
	}
	dir := filepath.Dir(indexPath)
	rel, ok := relativeTo(dir, contentDir)
	if !ok {
		rel = dir
	}
	return filepath.Join(buildDir, rel, "index.html")
}

// Route returns the site URL path of an output file below buildDir.
// index.html files are addressed by their directory.
func Route(outputPath, buildDir string) string {
	rel, ok := relativeTo(outputPath, buildDir)
	if !ok {
		rel = filepath.Base(outputPath)
	}
	route := "/" + filepath.ToSlash(rel)
	if path.Base(route) == "index.html" {
		route = strings.TrimSuffix(route, "index.html")
	}
	return route
}

func relativeTo(target, root string) (string, bool) {
	if strings.TrimSpace(root) == "" {
		return "", false
	}
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}
