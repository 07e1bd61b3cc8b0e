package plicss

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanup(t *testing.T) {
	cfg := testConfig(t)
	const core = ".a{color:var(--pli-azul-medio)}.b{color:var(--pli-amarelo-claro);background:var(--pli-amarelo)}"
	const other = ".x{color:var(--pli-amarelo)}"
	writeTree(t, cfg.Root, map[string]string{
		"static/css/core.min.0123456789.css":        core,
		"static/css/pages/login.min.abcdef1234.css": ".l{background:var(--pli-glass-bg-color);border-color:var(--pli-glass-bg-color)}",
		"static/css/pages/other.min.abcdef1234.css": other,
		"static/css/core.css":                       ":root { --pli-amarelo: #ff0; }",
	})

	report, err := Cleanup(cfg)
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalReplacements)
	assert.Equal(t, []CleanedFile{
		{
			File: "static/css/core.min.0123456789.css",
			Replacements: []AliasReplacement{
				{Deprecated: "--pli-amarelo", Canonical: "--pli-warning", Count: 1},
				{Deprecated: "--pli-azul-medio", Canonical: "--pli-info", Count: 1},
			},
		},
		{
			File: "static/css/pages/login.min.abcdef1234.css",
			Replacements: []AliasReplacement{
				{Deprecated: "--pli-glass-bg-color", Canonical: "--pli-branco", Count: 2},
			},
		},
	}, report.Processed)

	css := cfg.CSSPath()
	assert.Equal(t,
		".a{color:var(--pli-info)}.b{color:var(--pli-amarelo-claro);background:var(--pli-warning)}",
		readString(t, filepath.Join(css, "core.min.0123456789.css")))
	assert.Equal(t, other, readString(t, filepath.Join(css, "pages", "other.min.abcdef1234.css")))
	assert.Equal(t, ":root { --pli-amarelo: #ff0; }", readString(t, filepath.Join(css, "core.css")))

	require.Equal(t, "backups/cleanup-20250314092653", report.BackupDir)
	assert.Equal(t, core, readString(t, filepath.Join(cfg.Root, "backups", "cleanup-20250314092653", "static", "css", "core.min.0123456789.css")))

	var written CleanupReport
	readDoc(t, cfg.DocPath(CleanupReportFile), &written)
	assert.Equal(t, 4, written.TotalReplacements)
}

func TestCleanupNothingToDo(t *testing.T) {
	cfg := testConfig(t)
	writeTree(t, cfg.Root, map[string]string{
		"static/css/core.min.0123456789.css": ".a{color:var(--pli-info)}",
	})

	report, err := Cleanup(cfg)
	require.NoError(t, err)
	assert.Empty(t, report.Processed)
	assert.Empty(t, report.BackupDir)
	assert.NoDirExists(t, cfg.BackupPath())
}
