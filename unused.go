package plicss

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"go.uber.org/multierr"

	"github.com/pli-cadastros/plicss/internal/csstoken"
	"github.com/pli-cadastros/plicss/internal/logger"
	"github.com/pli-cadastros/plicss/internal/reporter"
)

// UnusedReportFile is the unused-token report inside the docs directory.
const UnusedReportFile = "purge-unused-tokens-report.json"

// TokenUsage is the usage count of one defined token.
type TokenUsage struct {
	Name        string   `json:"name"`
	Definitions []string `json:"definitions"`
	UsageCount  int      `json:"usageCount"`
}

// UnusedReport is the JSON document written by FindUnused.
type UnusedReport struct {
	GeneratedAt string       `json:"generatedAt"`
	RunID       string       `json:"runId,omitempty"`
	TotalTokens int          `json:"totalTokens"`
	UnusedCount int          `json:"unusedCount"`
	Unused      []string     `json:"unused"`
	Tokens      []TokenUsage `json:"tokens"`
}

// UnusedResult carries the report plus one issue per unused token.
type UnusedResult struct {
	Report UnusedReport
	Issues []reporter.Issue
	Errors error
}

// ExitCode is ExitAdvisory when any token is unused.
func (r *UnusedResult) ExitCode() int {
	if r.Report.UnusedCount > 0 {
		return ExitAdvisory
	}
	return ExitOK
}

// FindUnused counts var() references to every token defined in the token
// files, across the whole CSS tree. Fallback arguments do not matter.
func FindUnused(cfg Config) (*UnusedResult, error) {
	log := logger.For("unused")
	res := &UnusedResult{}

	type defSite struct {
		decl csstoken.Declaration
		file string
		line string
	}
	var order []string
	meta := map[string]*TokenUsage{}
	first := map[string]defSite{}

	for _, path := range cfg.tokenPaths() {
		// #nosec G304 - token files come from configuration
		src, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, Fatal(fmt.Errorf("read token file: %w", err))
		}
		rel := cfg.rel(path)
		lines := csstoken.Lines(src)
		for _, d := range csstoken.Scan(src, cfg.TokenPrefix).Declarations {
			tu, ok := meta[d.Name]
			if !ok {
				tu = &TokenUsage{Name: d.Name, Definitions: []string{}}
				meta[d.Name] = tu
				order = append(order, d.Name)
				first[d.Name] = defSite{decl: d, file: rel, line: lines[d.Line-1]}
			}
			if !slices.Contains(tu.Definitions, rel) {
				tu.Definitions = append(tu.Definitions, rel)
			}
		}
	}

	files, err := cfg.cssFiles()
	if err != nil {
		return nil, Fatal(err)
	}
	for _, f := range files {
		// #nosec G304 - walked from the CSS directory
		src, err := os.ReadFile(f.Path)
		if err != nil {
			res.Errors = multierr.Append(res.Errors, fmt.Errorf("read %s: %w", f.Rel, err))
			continue
		}
		for _, u := range csstoken.Scan(src, cfg.TokenPrefix).Usages {
			if tu, ok := meta[u.Name]; ok {
				tu.UsageCount++
			}
		}
	}
	if res.Errors != nil {
		log.Warnf("some files were skipped: %v", res.Errors)
	}

	res.Report = UnusedReport{
		GeneratedAt: timestamp(),
		RunID:       newRunID(),
		TotalTokens: len(order),
		Unused:      []string{},
		Tokens:      make([]TokenUsage, 0, len(order)),
	}
	for _, name := range order {
		tu := meta[name]
		res.Report.Tokens = append(res.Report.Tokens, *tu)
		if tu.UsageCount > 0 {
			continue
		}
		res.Report.Unused = append(res.Report.Unused, name)
		site := first[name]
		res.Issues = append(res.Issues, reporter.Issue{
			FromLinter:  reporter.LinterUnused,
			Severity:    reporter.SeverityWarning,
			Text:        fmt.Sprintf(reporter.IssueUnusedToken, name),
			Pos:         reporter.IssuePos{Filename: site.file, Line: site.decl.Line, Column: site.decl.Column},
			SourceLines: []string{site.line},
		})
	}
	res.Report.UnusedCount = len(res.Report.Unused)

	if err := writeJSON(cfg.DocPath(UnusedReportFile), res.Report); err != nil {
		return nil, Fatal(err)
	}
	log.Infof("report written: %d tokens, %d unused", res.Report.TotalTokens, res.Report.UnusedCount)
	return res, nil
}
