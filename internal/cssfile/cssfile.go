// Package cssfile discovers files in the asset tree.
//
// Discovery is glob based (doublestar) and honours the project .gitignore.
package cssfile

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// File is a discovered file.
type File struct {
	Path string // OS path, usable with os.ReadFile
	Rel  string // slash path relative to the walked directory
}

// Walker finds files below a directory.
type Walker struct {
	// ProjectRoot anchors .gitignore lookups. Empty disables gitignore filtering.
	ProjectRoot string
	// Exclude holds doublestar patterns matched against File.Rel.
	Exclude []string
	// SkipDirs are directory names never descended into.
	SkipDirs []string

	gi       *ignore.GitIgnore
	giLoaded bool
}

// DefaultSkipDirs are never scanned for HTML or CSS.
var DefaultSkipDirs = []string{".git", "node_modules", "backups"}

var hashedRe = regexp.MustCompile(`(?i)\.[a-f0-9]{6,}\.css$`)

// IsHashed reports whether name carries a content hash (core.min.0a1b2c3d4e.css).
func IsHashed(name string) bool {
	return hashedRe.MatchString(name)
}

// IsHashedBundle reports whether name is a hashed minified bundle.
func IsHashedBundle(name string) bool {
	return IsHashed(name) && strings.Contains(filepath.Base(name), ".min.")
}

// Find returns every file under dir matching pattern, sorted by Rel.
// A missing dir yields an empty result, not an error.
func (w *Walker) Find(dir, pattern string) ([]File, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []File
	fsys := os.DirFS(dir)
	err = doublestar.GlobWalk(fsys, pattern, func(rel string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		if w.skip(dir, rel) {
			return nil
		}
		files = append(files, File{
			Path: filepath.Join(dir, filepath.FromSlash(rel)),
			Rel:  rel,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("glob %s in %s: %w", pattern, dir, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}

// FindAll runs Find over several directories and drops duplicate paths.
func (w *Walker) FindAll(dirs []string, pattern string) ([]File, error) {
	seen := make(map[string]bool)
	var all []File
	for _, dir := range dirs {
		files, err := w.Find(dir, pattern)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			abs, err := filepath.Abs(f.Path)
			if err != nil {
				abs = f.Path
			}
			if seen[abs] {
				continue
			}
			seen[abs] = true
			all = append(all, f)
		}
	}
	return all, nil
}

// skip applies directory, exclude and gitignore filtering.
func (w *Walker) skip(dir, rel string) bool {
	skipDirs := w.SkipDirs
	if skipDirs == nil {
		skipDirs = DefaultSkipDirs
	}
	parts := strings.Split(rel, "/")
	for _, part := range parts[:len(parts)-1] {
		for _, s := range skipDirs {
			if part == s {
				return true
			}
		}
	}

	for _, pattern := range w.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}

	gi := w.gitignore()
	if gi == nil {
		return false
	}
	full := filepath.Join(dir, filepath.FromSlash(rel))
	fromRoot, err := filepath.Rel(w.ProjectRoot, full)
	if err != nil || strings.HasPrefix(fromRoot, "..") {
		return false
	}
	return gi.MatchesPath(filepath.ToSlash(fromRoot))
}

// gitignore loads .gitignore from ProjectRoot once.
// A missing file just disables the filter.
func (w *Walker) gitignore() *ignore.GitIgnore {
	if w.giLoaded {
		return w.gi
	}
	w.giLoaded = true
	if w.ProjectRoot == "" {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(filepath.Join(w.ProjectRoot, ".gitignore"))
	if err != nil {
		return nil
	}
	w.gi = gi
	return gi
}
