package plicss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"--pli-breakpoint-md", CategoryBreakpoints},
		{"--pli-container-xl", CategoryContainerSize},
		{"--pli-container-max-width", CategoryContainerSize},
		{"--pli-header-height", CategoryLayoutDimension},
		{"--pli-footer-height-mobile", CategoryLayoutDimension},
		{"--pli-header-height-extra", CategoryOther},
		{"--pli-spacing-responsive-sm", CategoryResponsiveSpacing},
		{"--pli-font-size-responsive-lg", CategoryResponsiveTypography},
		{"--pli-login-bg", CategoryLoginAuth},
		{"--pli-auth-card-shadow", CategoryLoginAuth},
		{"--pli-layout-mode", CategoryLayoutMode},
		{"--pli-bg-opacity", CategoryOpacity},
		{"--pli-amarelo", CategoryDeprecatedKnown},
		{"--pli-glass-bg-color", CategoryDeprecatedKnown},
		{"--pli-qualquer-coisa", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name))
		})
	}
}

func TestClassifyViolations(t *testing.T) {
	cfg := testConfig(t)
	writeTree(t, cfg.Root, map[string]string{
		"docs/fase8-audit-relatorio.json": `{
  "violations": [
    {"file": "static/css/pages/login.css", "line": 3, "name": "--pli-login-bg"},
    {"file": "static/css/pages/auth.css", "line": 9, "name": "--pli-login-bg"},
    {"file": "static/css/pages/login.css", "line": 4, "name": "--pli-breakpoint-md"},
    {"file": "static/css/core.css", "line": 1, "name": "--pli-random"},
    {"file": "static/css/core.css", "line": 2, "name": "--pli-amarelo"}
  ],
  "deprecatedUsages": [],
  "counts": {"violations": 5, "deprecated": 0}
}`,
	})

	out, err := ClassifyViolations(cfg)
	require.NoError(t, err)

	assert.Equal(t, 5, out.TotalViolations)
	assert.Equal(t, []CategorySummary{
		{Category: CategoryBreakpoints, Variables: []string{"--pli-breakpoint-md"}, Count: 1},
		{Category: CategoryDeprecatedKnown, Variables: []string{"--pli-amarelo"}, Count: 1},
		{Category: CategoryLoginAuth, Variables: []string{"--pli-login-bg"}, Count: 2},
		{Category: CategoryOther, Variables: []string{"--pli-random"}, Count: 1},
	}, out.Categories)

	assert.Equal(t, Recommendation{
		AddToWhitelist: []string{"--pli-breakpoint-md"},
		KeepInternal:   []string{"--pli-login-bg"},
		Deprecated:     []string{"--pli-amarelo"},
		Review:         []string{"--pli-random"},
	}, out.Recommendation)

	require.Len(t, out.Variables, 4)
	login := out.Variables[2]
	assert.Equal(t, "--pli-login-bg", login.Name)
	assert.Equal(t, 2, login.Occurrences)
	assert.Equal(t, []string{"static/css/pages/auth.css", "static/css/pages/login.css"}, login.Files)

	var written Classification
	readDoc(t, cfg.DocPath(ClassifiedFile), &written)
	assert.Equal(t, out.Categories, written.Categories)
}

func TestClassifyViolationsMissingAudit(t *testing.T) {
	cfg := testConfig(t)

	_, err := ClassifyViolations(cfg)
	require.ErrorIs(t, err, ErrMissingInput)
}
