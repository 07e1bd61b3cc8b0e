package plicss

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFixture(t *testing.T) Config {
	t.Helper()
	cfg := testConfig(t)
	writeTree(t, cfg.Root, map[string]string{
		"static/css/core.css":            "@import \"base.css\";\n.core { color: red; }\n",
		"static/css/base.css":            "/* reset */\nbody { margin: 0; }\n",
		"static/css/pages/login.css":     ".login { padding: 1px; }\n",
		"static/css/pages/login.min.css": "stale",
	})
	return cfg
}

func TestBuildEntries(t *testing.T) {
	cfg := buildFixture(t)

	entries, err := BuildEntries(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"core.css", "pages/login.css"}, entries)

	cfg.Build.Entries = []string{"custom.css"}
	entries, err = BuildEntries(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"custom.css"}, entries)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "pages/login.min.css", MinifiedName("pages/login.css"))
	assert.Equal(t, "core.min.0123456789.css", HashedName("core.min.css", "0123456789"))
	assert.Len(t, ContentHash([]byte("x"), 10), 10)
	assert.Len(t, ContentHash([]byte("x"), 0), 64)
	assert.Equal(t, ContentHash([]byte("x"), 10), ContentHash([]byte("x"), 10))
	assert.NotEqual(t, ContentHash([]byte("x"), 10), ContentHash([]byte("y"), 10))
}

func TestBuild(t *testing.T) {
	cfg := buildFixture(t)
	cssDir := cfg.CSSPath()

	res, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, ExitOK, res.ExitCode())

	core := readString(t, filepath.Join(cssDir, "core.min.css"))
	assert.Equal(t, "body{margin:0}.core{color:red}", core)

	entry := res.Manifest["core.min.css"]
	assert.Equal(t, ContentHash([]byte(core), 10), entry.Hash)
	assert.Equal(t, "core.min."+entry.Hash+".css", entry.Hashed)
	assert.Equal(t, len(core), entry.Bytes)
	assert.Equal(t, core, readString(t, filepath.Join(cssDir, entry.Hashed)))
	assert.Equal(t, []string{"base.css"}, res.Entries[0].Inlined)

	login := res.Manifest["pages/login.min.css"]
	assert.Equal(t, ".login{padding:1px}", readString(t, filepath.Join(cssDir, "pages", "login.min.css")))
	assert.FileExists(t, filepath.Join(cssDir, filepath.FromSlash(login.Hashed)))

	var onDisk Manifest
	readDoc(t, filepath.Join(cssDir, ManifestName), &onDisk)
	assert.Equal(t, res.Manifest, onDisk)
}

func TestBuildIsIdempotent(t *testing.T) {
	cfg := buildFixture(t)

	first, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	second, err := Build(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Manifest, second.Manifest)
}

func TestBuildKeepsGoingWhenAnEntryFails(t *testing.T) {
	cfg := buildFixture(t)
	cfg.Build.Entries = []string{"core.css", "nope.css"}

	res, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Error(t, res.Entries[1].Err)
	assert.Equal(t, ExitOK, res.ExitCode())
	assert.Contains(t, res.Manifest, "core.min.css")
}

func TestBuildAllEntriesFail(t *testing.T) {
	cfg := testConfig(t)
	cfg.Build.Entries = []string{"nope.css"}
	require.NoError(t, os.MkdirAll(cfg.CSSPath(), 0o755))

	res, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, ExitFatal, res.ExitCode())
	assert.NoFileExists(t, filepath.Join(cfg.CSSPath(), ManifestName))
}

func TestBuildUnknownEngine(t *testing.T) {
	cfg := buildFixture(t)
	cfg.Build.Engine = "closure"

	_, err := Build(context.Background(), cfg)
	require.Error(t, err)
	assert.Equal(t, ExitFatal, ExitCode(err))
}

func TestBuildEngines(t *testing.T) {
	for _, engine := range []string{"tdewolff", "cssmin"} {
		t.Run(engine, func(t *testing.T) {
			cfg := buildFixture(t)
			cfg.Build.Engine = engine

			res, err := Build(context.Background(), cfg)
			require.NoError(t, err)
			assert.Equal(t, 0, res.Failed)
			assert.NotContains(t, readString(t, filepath.Join(cfg.CSSPath(), "core.min.css")), "@import")
		})
	}
}
