package cssfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func rels(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Rel)
	}
	return out
}

func TestIsHashed(t *testing.T) {
	tests := []struct {
		name   string
		hashed bool
		bundle bool
	}{
		{"core.min.0a1b2c3d4e.css", true, true},
		{"pages/login.min.abcdef.css", true, true},
		{"core.min.css", false, false},
		{"core.css", false, false},
		{"theme.abcdef1234.css", true, false},
		{"core.min.xyz123.css", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hashed, IsHashed(tt.name))
			assert.Equal(t, tt.bundle, IsHashedBundle(tt.name))
		})
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	css := filepath.Join(root, "static", "css")
	writeFile(t, filepath.Join(css, "core.css"), "")
	writeFile(t, filepath.Join(css, "pages", "login.css"), "")
	writeFile(t, filepath.Join(css, "pages", "login.min.abcdef1234.css"), "")
	writeFile(t, filepath.Join(css, "vendor", "lib.css"), "")
	writeFile(t, filepath.Join(css, "node_modules", "x.css"), "")
	writeFile(t, filepath.Join(css, "notes.txt"), "")
	writeFile(t, filepath.Join(root, ".gitignore"), "static/css/vendor/\n")

	t.Run("all css files", func(t *testing.T) {
		w := &Walker{}
		files, err := w.Find(css, "**/*.css")
		require.NoError(t, err)
		assert.Equal(t, []string{
			"core.css",
			"pages/login.css",
			"pages/login.min.abcdef1234.css",
			"vendor/lib.css",
		}, rels(files))
	})

	t.Run("excludes and gitignore", func(t *testing.T) {
		w := &Walker{ProjectRoot: root, Exclude: []string{"**/*.min.*.css"}}
		files, err := w.Find(css, "**/*.css")
		require.NoError(t, err)
		assert.Equal(t, []string{"core.css", "pages/login.css"}, rels(files))
	})

	t.Run("missing dir", func(t *testing.T) {
		w := &Walker{}
		files, err := w.Find(filepath.Join(root, "nope"), "**/*.css")
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}

func TestFindAllDeduplicates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "index.html"), "")
	writeFile(t, filepath.Join(root, "views", "app", "dashboard.html"), "")

	w := &Walker{}
	files, err := w.FindAll([]string{filepath.Join(root, "views"), root}, "**/*.html")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
