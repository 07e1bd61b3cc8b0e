package plicss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pli-cadastros/plicss/internal/reporter"
)

func TestFindUnused(t *testing.T) {
	cfg := testConfig(t)
	writeTree(t, cfg.Root, map[string]string{
		"static/css/00-configuracoes/tokens.css": `:root {
  --pli-azul: #00f;
  --pli-verde: green;
  --pli-nunca: 1px;
}
`,
		"static/css/00-settings/_root.css": ":root { --pli-azul: #00f; }\n",
		"static/css/core.css": `.a { color: var(--pli-azul); }
.b { color: var( --pli-verde , 4px); border-color: var(--pli-azul); }
.c { color: var(--pli-fora-do-inventario); }
`,
	})

	res, err := FindUnused(cfg)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Report.TotalTokens)
	assert.Equal(t, []string{"--pli-nunca"}, res.Report.Unused)
	assert.Equal(t, 1, res.Report.UnusedCount)
	assert.Equal(t, ExitAdvisory, res.ExitCode())

	require.Len(t, res.Report.Tokens, 3)
	azul := res.Report.Tokens[0]
	assert.Equal(t, "--pli-azul", azul.Name)
	assert.Equal(t, 2, azul.UsageCount)
	assert.Equal(t, []string{
		"static/css/00-configuracoes/tokens.css",
		"static/css/00-settings/_root.css",
	}, azul.Definitions)
	assert.Equal(t, 1, res.Report.Tokens[1].UsageCount)

	require.Len(t, res.Issues, 1)
	issue := res.Issues[0]
	assert.Equal(t, reporter.LinterUnused, issue.FromLinter)
	assert.Equal(t, reporter.IssuePos{Filename: "static/css/00-configuracoes/tokens.css", Line: 4, Column: 3}, issue.Pos)

	var report UnusedReport
	readDoc(t, cfg.DocPath(UnusedReportFile), &report)
	assert.Equal(t, res.Report.Unused, report.Unused)
}

func TestFindUnusedAllUsed(t *testing.T) {
	cfg := testConfig(t)
	writeTree(t, cfg.Root, map[string]string{
		"static/css/00-configuracoes/tokens.css": ":root { --pli-a: 1px; --pli-b: var(--pli-a); }\n",
		"static/css/core.css":                    ".x { margin: var(--pli-b); }\n",
	})

	res, err := FindUnused(cfg)
	require.NoError(t, err)
	assert.Empty(t, res.Report.Unused)
	assert.Equal(t, ExitOK, res.ExitCode())
}
