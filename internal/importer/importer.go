// Package importer inlines local @import statements into a single stylesheet.
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// importRe matches @import "x.css"; @import 'x.css'; and @import url(x.css);
// Anything between the target and the semicolon (media lists, layer names)
// is consumed and dropped.
var importRe = regexp.MustCompile(`(?i)@import\s+(?:url\(\s*['"]?([^'")\s]+)['"]?\s*\)|['"]([^'"\n]+)['"])[^;\n]*;?`)

// Marker precedes every inlined file.
const Marker = "/* >>> Inlined: %s */"

// Resolver inlines imports relative to BaseDir.
type Resolver struct {
	// BaseDir is tried first for every import; the importing file's own
	// directory is the fallback.
	BaseDir string
	Log     *zap.SugaredLogger
}

// Result is one resolved entry.
type Result struct {
	CSS     []byte
	Inlined []string // rel paths in inline order
	Missing []string // imports that could not be found
}

type state struct {
	visited map[string]bool
	res     *Result
}

// ResolveFile reads entry and inlines its imports recursively.
func (r *Resolver) ResolveFile(entry string) (*Result, error) {
	// #nosec G304 - entry comes from the build configuration
	raw, err := os.ReadFile(entry)
	if err != nil {
		return nil, fmt.Errorf("read entry: %w", err)
	}
	abs, err := filepath.Abs(entry)
	if err != nil {
		abs = entry
	}

	st := &state{visited: map[string]bool{abs: true}, res: &Result{}}
	st.res.CSS = []byte(r.inline(string(raw), filepath.Dir(entry), st))
	return st.res, nil
}

// Resolve inlines imports in src as if it lived in dir.
func (r *Resolver) Resolve(src []byte, dir string) *Result {
	st := &state{visited: make(map[string]bool), res: &Result{}}
	st.res.CSS = []byte(r.inline(string(src), dir, st))
	return st.res
}

func (r *Resolver) inline(content, dir string, st *state) string {
	return importRe.ReplaceAllStringFunc(content, func(stmt string) string {
		m := importRe.FindStringSubmatch(stmt)
		rel := m[1]
		if rel == "" {
			rel = m[2]
		}
		rel = strings.TrimSpace(rel)
		if isRemote(rel) {
			return stmt
		}

		target, ok := r.locate(rel, dir)
		if !ok {
			r.warnf("import not found: %s", rel)
			st.res.Missing = append(st.res.Missing, rel)
			return ""
		}
		if st.visited[target] {
			return ""
		}
		st.visited[target] = true

		// #nosec G304 - target was resolved inside the CSS tree
		data, err := os.ReadFile(target)
		if err != nil {
			r.warnf("read import %s: %v", rel, err)
			st.res.Missing = append(st.res.Missing, rel)
			return ""
		}
		st.res.Inlined = append(st.res.Inlined, rel)
		return "\n" + fmt.Sprintf(Marker, rel) + "\n" + r.inline(string(data), filepath.Dir(target), st)
	})
}

// locate returns the absolute path for rel, trying BaseDir then dir.
func (r *Resolver) locate(rel, dir string) (string, bool) {
	rel = filepath.FromSlash(rel)
	var candidates []string
	if r.BaseDir != "" {
		candidates = append(candidates, filepath.Join(r.BaseDir, rel))
	}
	if dir != "" && dir != r.BaseDir {
		candidates = append(candidates, filepath.Join(dir, rel))
	}
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil || info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(c)
		if err != nil {
			abs = c
		}
		return abs, true
	}
	return "", false
}

func (r *Resolver) warnf(format string, args ...any) {
	if r.Log != nil {
		r.Log.Warnf(format, args...)
	}
}

func isRemote(target string) bool {
	t := strings.ToLower(target)
	return strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://") ||
		strings.HasPrefix(t, "//") || strings.HasPrefix(t, "data:")
}
