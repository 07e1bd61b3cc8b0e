package plicss

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pruneFixture(t *testing.T) Config {
	t.Helper()
	cfg := testConfig(t)
	writeTree(t, cfg.Root, map[string]string{
		"views/index.html": `<link rel="stylesheet" href="/static/css/core.min.0123456789.css">
<link rel="stylesheet" href="/static/css/pages/login.min.css">`,
		"static/css/core.css":                       ".core{}",
		"static/css/core.min.css":                   ".core{}",
		"static/css/core.min.0123456789.css":        ".core{}",
		"static/css/core.min.aaaaaaaaaa.css":        ".old{}",
		"static/css/pages/login.min.css":            ".login{}",
		"static/css/pages/login.min.bbbbbbbbbb.css": ".login{}",
		"static/css/pages/extra.css":                ".extra{}",
	})
	return cfg
}

var pruned = []string{
	"core.min.aaaaaaaaaa.css",
	"core.min.css",
	"pages/login.min.bbbbbbbbbb.css",
}

func TestCSSReferences(t *testing.T) {
	cfg := pruneFixture(t)

	refs, htmlCount, err := CSSReferences(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, htmlCount)
	assert.Equal(t, map[string]bool{
		"core.min.0123456789.css": true,
		"pages/login.min.css":     true,
	}, refs)
}

func TestPrune(t *testing.T) {
	cfg := pruneFixture(t)
	css := cfg.CSSPath()

	report, err := Prune(cfg, false)
	require.NoError(t, err)

	assert.Equal(t, pruned, report.Removed)
	assert.Equal(t, 4, report.Kept)
	assert.Equal(t, []string{"core.min.0123456789.css", "pages/login.min.css"}, report.Referenced)

	for _, rel := range pruned {
		assert.NoFileExists(t, filepath.Join(css, filepath.FromSlash(rel)))
	}
	for _, rel := range []string{"core.css", "core.min.0123456789.css", "pages/login.min.css", "pages/extra.css"} {
		assert.FileExists(t, filepath.Join(css, filepath.FromSlash(rel)))
	}

	require.Equal(t, "backups/prune-20250314092653", report.BackupDir)
	assert.FileExists(t, filepath.Join(cfg.Root, "backups", "prune-20250314092653", "static", "css", "core.min.aaaaaaaaaa.css"))

	var written PruneReport
	readDoc(t, cfg.DocPath(PruneReportFile), &written)
	assert.Equal(t, pruned, written.Removed)
}

func TestPruneDryRun(t *testing.T) {
	cfg := pruneFixture(t)

	report, err := Prune(cfg, true)
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, pruned, report.Removed)
	assert.Empty(t, report.BackupDir)
	for _, rel := range pruned {
		assert.FileExists(t, filepath.Join(cfg.CSSPath(), filepath.FromSlash(rel)))
	}
}

func TestPruneNeverDeletesReferencedFiles(t *testing.T) {
	cfg := testConfig(t)
	writeTree(t, cfg.Root, map[string]string{
		"views/a.html":                       `<link href="/static/css/core.min.0123456789.css">`,
		"views/b.html":                       `<link href="/static/css/core.min.css">`,
		"static/css/core.min.css":            "",
		"static/css/core.min.0123456789.css": "",
	})

	report, err := Prune(cfg, false)
	require.NoError(t, err)
	assert.Empty(t, report.Removed)
	assert.Equal(t, 2, report.Kept)
}

func TestHasHashedSibling(t *testing.T) {
	all := map[string]bool{
		"core.min.0123456789.css":   true,
		"pages/login.min.css":       true,
		"pages/home.min.abcdef.css": true,
	}
	assert.True(t, hasHashedSibling("core.min.css", all))
	assert.False(t, hasHashedSibling("core.css", all))
	assert.False(t, hasHashedSibling("pages/login.min.css", all))
	assert.True(t, hasHashedSibling("pages/home.min.css", all))
	assert.False(t, hasHashedSibling("home.min.css", all))
}
