package reporter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plain(buf *bytes.Buffer) *Reporter {
	return &Reporter{w: buf, printLines: true, printLinterName: true}
}

func TestBuildCaretIndicator(t *testing.T) {
	reporter := &Reporter{}

	tests := []struct {
		name       string
		sourceLine string
		column     int
		want       string
	}{
		{
			name:       "spaces only",
			sourceLine: "  --pli-foo: 1px;",
			column:     3,
			want:       "  ^",
		},
		{
			name:       "tabs and spaces",
			sourceLine: "\t\tcolor: var(--pli-x);",
			column:     14,
			want:       "\t\t           ^",
		},
		{
			name:       "start of line",
			sourceLine: "--pli-a: 0;",
			column:     1,
			want:       "^",
		},
		{
			name:       "column 0 fallback",
			sourceLine: "some line",
			column:     0,
			want:       "^",
		},
		{
			name:       "column beyond line length",
			sourceLine: "short",
			column:     100,
			want:       "     ^",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, reporter.buildCaretIndicator(tt.sourceLine, tt.column))
		})
	}
}

func TestPrintIssuesSortsAndFormats(t *testing.T) {
	var buf bytes.Buffer
	r := plain(&buf)

	r.PrintIssues([]Issue{
		{
			FromLinter:  LinterTokenAudit,
			Text:        "second",
			Pos:         IssuePos{Filename: "b.css", Line: 1, Column: 1},
			SourceLines: []string{"--pli-b: 1px;"},
		},
		{
			FromLinter:  LinterTokenAudit,
			Text:        "first",
			Pos:         IssuePos{Filename: "a.css", Line: 4, Column: 3},
			SourceLines: []string{"  --pli-a: 1px;"},
		},
		{
			FromLinter: LinterLinks,
			Text:       "no position",
			Pos:        IssuePos{Filename: "index.html"},
		},
	})

	want := "a.css:4:3: first (tokenaudit)\n" +
		"\t  --pli-a: 1px;\n" +
		"\t  ^\n" +
		"b.css:1:1: second (tokenaudit)\n" +
		"\t--pli-b: 1px;\n" +
		"\t^\n" +
		"index.html: no position (csslinks)\n"
	assert.Equal(t, want, buf.String())
}

func TestPrintSummary(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		var buf bytes.Buffer
		plain(&buf).PrintSummary(nil)
		assert.Equal(t, "\n0 issues.\n", buf.String())
	})

	t.Run("mixed", func(t *testing.T) {
		var buf bytes.Buffer
		plain(&buf).PrintSummary([]Issue{
			{FromLinter: LinterTokenAudit, Severity: SeverityError},
			{FromLinter: LinterTokenAudit, Severity: SeverityError},
			{FromLinter: LinterDeprecated, Severity: SeverityWarning},
		})
		assert.Equal(t, "\n3 issues (2 errors, 1 warning):\n* deprecated: 1\n* tokenaudit: 2\n", buf.String())
	})
}

func TestPrintStatsAndList(t *testing.T) {
	var buf bytes.Buffer
	r := plain(&buf)

	r.PrintStats("Tokens", []Stat{{"Defined", 3}, {"Unused", 1}})
	r.PrintList("Unused", []string{"--pli-a", "--pli-b", "--pli-c"}, 2)
	r.PrintList("Empty", nil, 0)

	want := "\nTokens\n------\nDefined: 3\nUnused:  1\n" +
		"\nUnused\n• --pli-a\n• --pli-b\n  ... and 1 more\n"
	assert.Equal(t, want, buf.String())
}

func TestShouldUseColors(t *testing.T) {
	assert.True(t, ShouldUseColors(true))

	t.Setenv("FORCE_COLOR", "")
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ShouldUseColors(false))

	t.Setenv("NO_COLOR", "")
	t.Setenv("FORCE_COLOR", "1")
	assert.True(t, ShouldUseColors(false))
}
