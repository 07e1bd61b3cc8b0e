package plicss

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

// testConfig returns the default layout rooted in a temp dir with a frozen clock.
func testConfig(t *testing.T) Config {
	t.Helper()
	old := nowFunc
	nowFunc = func() time.Time { return fixedNow }
	t.Cleanup(func() { nowFunc = old })

	cfg := DefaultConfig()
	cfg.Root = t.TempDir()
	cfg.HTMLDirs = []string{"views"}
	return cfg
}

// writeTree creates files (slash paths relative to root) with their contents.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func readString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func readDoc(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "--pli-", cfg.TokenPrefix)
	assert.Equal(t, "@deprecated", cfg.DeprecationMarker)
	assert.Equal(t, 10, cfg.Build.HashLength)
	assert.Equal(t, "--pli-info", cfg.Cleanup.Aliases["--pli-azul-medio"])
	assert.Len(t, cfg.Cleanup.Aliases, 7)
	assert.Equal(t, []string{"--pli-success", "--pli-warning", "--pli-error", "--pli-info"}, cfg.Merge.Preference)
}

func TestConfigPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Root = filepath.FromSlash("/srv/pli")

	assert.Equal(t, filepath.FromSlash("/srv/pli/static/css"), cfg.CSSPath())
	assert.Equal(t, filepath.FromSlash("/srv/pli/docs/audit.json"), cfg.DocPath("audit.json"))
	assert.Equal(t, filepath.FromSlash("/srv/pli/backups"), cfg.BackupPath())
	assert.Equal(t, []string{
		filepath.FromSlash("/srv/pli/static/css/00-configuracoes/tokens.css"),
		filepath.FromSlash("/srv/pli/static/css/00-settings/_root.css"),
	}, cfg.tokenPaths())

	assert.Equal(t, "static/css/core.css", cfg.rel(filepath.FromSlash("/srv/pli/static/css/core.css")))
	assert.Equal(t, "/elsewhere/x.css", cfg.rel(filepath.FromSlash("/elsewhere/x.css")))
}

func TestIsThemeOverride(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		rel  string
		want bool
	}{
		{"08-themes/dark.css", true},
		{"pages/08-themes/dark.css", true},
		{"08-themes-old/dark.css", false},
		{"components/button.css", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.isThemeOverride(tt.rel))
		})
	}
}

func TestSourceCSSFilesSkipsHashedBundles(t *testing.T) {
	cfg := testConfig(t)
	writeTree(t, cfg.Root, map[string]string{
		"static/css/core.css":                  "",
		"static/css/core.min.css":              "",
		"static/css/core.min.0a1b2c3d4e.css":   "",
		"static/css/pages/login.css":           "",
		"static/css/node_modules/x/vendor.css": "",
	})

	files, err := cfg.sourceCSSFiles()
	require.NoError(t, err)

	var rels []string
	for _, f := range files {
		rels = append(rels, f.Rel)
	}
	assert.Equal(t, []string{"core.css", "core.min.css", "pages/login.css"}, rels)
}

func TestTimestampFormat(t *testing.T) {
	testConfig(t)
	assert.Equal(t, "2025-03-14T09:26:53.589Z", timestamp())
}

func TestReadJSONCToleratesComments(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "wl.json")
	require.NoError(t, os.WriteFile(p, []byte(`{
  // maintained by hand
  "variables": ["--pli-a", "--pli-b",],
}`), 0o644))

	wl, err := LoadWhitelist(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"--pli-a", "--pli-b"}, wl.Variables)
}
