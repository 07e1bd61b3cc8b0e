// Package reporter prints plicss findings for humans.
//
// Issues use the golangci-lint layout so editors and CI annotate them:
//
//	static/css/pages/login.css:12:3: custom property --pli-foo is not in the whitelist (tokenaudit)
//		  --pli-foo: 1px;
//		  ^
package reporter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Options configures a Reporter.
type Options struct {
	UseColors       bool // force colors on
	PrintLines      bool // print the source line and a caret
	PrintLinterName bool // append "(linter)"
}

// DefaultOptions prints source lines and linter names.
func DefaultOptions() Options {
	return Options{PrintLines: true, PrintLinterName: true}
}

// Reporter handles formatting and outputting results
type Reporter struct {
	w               io.Writer
	useColors       bool
	printLines      bool
	printLinterName bool
}

// New creates a reporter writing to w.
func New(w io.Writer, opts Options) *Reporter {
	return &Reporter{
		w:               w,
		useColors:       ShouldUseColors(opts.UseColors),
		printLines:      opts.PrintLines,
		printLinterName: opts.PrintLinterName,
	}
}

// ShouldUseColors determines if colors should be enabled
func ShouldUseColors(force bool) bool {
	// Explicit flag wins
	if force {
		return true
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// Check for FORCE_COLOR environment variable (GitHub Actions, etc.)
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return true
	}

	// Auto-detect TTY
	if fileInfo, err := os.Stdout.Stat(); err == nil && (fileInfo.Mode()&os.ModeCharDevice) != 0 {
		return true
	}

	return false
}

// UseColors returns whether colors are enabled
func (r *Reporter) UseColors() bool {
	return r.useColors
}

// PrintIssues outputs issues sorted by file, line and column.
func (r *Reporter) PrintIssues(issues []Issue) {
	sorted := make([]Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Pos.Filename != sorted[j].Pos.Filename {
			return sorted[i].Pos.Filename < sorted[j].Pos.Filename
		}
		if sorted[i].Pos.Line != sorted[j].Pos.Line {
			return sorted[i].Pos.Line < sorted[j].Pos.Line
		}
		return sorted[i].Pos.Column < sorted[j].Pos.Column
	})

	for _, issue := range sorted {
		r.printIssue(issue)
	}
}

func (r *Reporter) printIssue(issue Issue) {
	// Format: file:line:col: message (linter)
	var location string
	switch {
	case issue.Pos.Line > 0 && issue.Pos.Column > 0:
		location = fmt.Sprintf("%s:%d:%d:", issue.Pos.Filename, issue.Pos.Line, issue.Pos.Column)
	case issue.Pos.Line > 0:
		location = fmt.Sprintf("%s:%d:", issue.Pos.Filename, issue.Pos.Line)
	default:
		location = issue.Pos.Filename + ":"
	}

	linterSuffix := ""
	if r.printLinterName && issue.FromLinter != "" {
		linterSuffix = fmt.Sprintf(" (%s)", issue.FromLinter)
	}

	fmt.Fprintf(r.w, "%s %s%s\n",
		RenderStyle(StyleCyan, location, r.useColors),
		issue.Text,
		RenderStyle(StyleGray, linterSuffix, r.useColors))

	if r.printLines && len(issue.SourceLines) > 0 {
		for _, line := range issue.SourceLines {
			fmt.Fprintf(r.w, "\t%s\n", line)
		}
		caret := r.buildCaretIndicator(issue.SourceLines[0], issue.Pos.Column)
		fmt.Fprintf(r.w, "\t%s\n", RenderStyle(StyleYellow, caret, r.useColors))
	}
}

// buildCaretIndicator aligns "^" under column, copying tabs from the
// source line so the caret lines up in any tab width.
func (r *Reporter) buildCaretIndicator(sourceLine string, column int) string {
	if column <= 0 {
		return "^"
	}

	prefixLen := column - 1
	if prefixLen > len(sourceLine) {
		prefixLen = len(sourceLine)
	}

	var padding strings.Builder
	for _, ch := range sourceLine[:prefixLen] {
		if ch == '\t' {
			padding.WriteRune('\t')
		} else {
			padding.WriteRune(' ')
		}
	}

	return padding.String() + "^"
}

// PrintSummary outputs the issue count with a per-linter breakdown.
func (r *Reporter) PrintSummary(issues []Issue) {
	var errors, warnings int
	linterCounts := make(map[string]int)
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
		linterCounts[issue.FromLinter]++
	}

	fmt.Fprintln(r.w, "")
	if len(issues) == 0 {
		fmt.Fprintln(r.w, RenderStyle(StyleGreen, "0 issues.", r.useColors))
		return
	}

	header := pluralizeCount(len(issues), "issue", "issues")
	if errors > 0 && warnings > 0 {
		header = fmt.Sprintf("%s (%s, %s)", header,
			pluralizeCount(errors, "error", "errors"),
			pluralizeCount(warnings, "warning", "warnings"))
	}
	fmt.Fprintln(r.w, RenderStyle(StyleRed, header+":", r.useColors))

	linters := make([]string, 0, len(linterCounts))
	for l := range linterCounts {
		linters = append(linters, l)
	}
	sort.Strings(linters)
	for _, l := range linters {
		fmt.Fprintf(r.w, "* %s: %d\n", l, linterCounts[l])
	}
}

// Stat is one labelled number in a statistics block.
type Stat struct {
	Label string
	Value any
}

// PrintStats prints a titled block of aligned label/value pairs.
func (r *Reporter) PrintStats(title string, stats []Stat) {
	width := 0
	for _, s := range stats {
		if len(s.Label) > width {
			width = len(s.Label)
		}
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleCyan, title, r.useColors))
	fmt.Fprintln(r.w, strings.Repeat("-", len(title)))
	for _, s := range stats {
		fmt.Fprintf(r.w, "%-*s %v\n", width+1, s.Label+":", s.Value)
	}
}

// PrintList prints a titled bullet list, limited to max entries when max > 0.
func (r *Reporter) PrintList(title string, items []string, max int) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleYellow, title, r.useColors))
	for i, item := range items {
		if max > 0 && i >= max {
			fmt.Fprintf(r.w, "  ... and %d more\n", len(items)-max)
			break
		}
		fmt.Fprintf(r.w, "• %s\n", item)
	}
}

// Success prints a green one-liner.
func (r *Reporter) Success(format string, args ...any) {
	fmt.Fprintln(r.w, RenderStyle(StyleGreen, fmt.Sprintf(format, args...), r.useColors))
}

// Hint prints a gray one-liner.
func (r *Reporter) Hint(format string, args ...any) {
	fmt.Fprintln(r.w, RenderStyle(StyleGray, fmt.Sprintf(format, args...), r.useColors))
}

func pluralizeCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
