package plicss

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"

	"github.com/pli-cadastros/plicss/internal/csstoken"
	"github.com/pli-cadastros/plicss/internal/logger"
	"github.com/pli-cadastros/plicss/internal/reporter"
)

// AuditReportFile is the audit report inside the docs directory.
const AuditReportFile = "fase8-audit-relatorio.json"

// Finding is one declaration located in the tree.
type Finding struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Name string `json:"name"`
}

// AuditCounts totals an audit.
type AuditCounts struct {
	Violations int `json:"violations"`
	Deprecated int `json:"deprecated"`
}

// AuditReport is the JSON document written by Audit.
type AuditReport struct {
	GeneratedAt      string      `json:"generatedAt"`
	RunID            string      `json:"runId,omitempty"`
	Violations       []Finding   `json:"violations"`
	DeprecatedUsages []Finding   `json:"deprecatedUsages"`
	Counts           AuditCounts `json:"counts"`
}

// AuditResult carries the report plus reporter issues for the terminal.
type AuditResult struct {
	Report       AuditReport
	Issues       []reporter.Issue // violations
	Deprecated   []reporter.Issue // deprecated declarations, informational
	FilesScanned int
	// Errors aggregates files that could not be read.
	Errors error
}

// ExitCode is ExitViolations when any violation was found.
func (r *AuditResult) ExitCode() int {
	if r.Report.Counts.Violations > 0 {
		return ExitViolations
	}
	return ExitOK
}

// Audit checks every custom property declaration in the CSS tree against
// the whitelist. A declaration passes when its name is whitelisted or
// internally allowed, when it is marked deprecated, or when the file lives
// in a theme directory. A missing or malformed whitelist counts as empty.
func Audit(cfg Config) (*AuditResult, error) {
	log := logger.For("audit")

	allowed := map[string]bool{}
	wlPath := cfg.DocPath(WhitelistFile)
	if wl, err := LoadWhitelist(wlPath); err != nil {
		log.Warnf("whitelist unavailable, treating as empty: %v", err)
	} else {
		for _, v := range wl.Variables {
			allowed[v] = true
		}
		for _, v := range wl.InternalAllowed {
			allowed[v] = true
		}
	}

	files, err := cfg.cssFiles()
	if err != nil {
		return nil, Fatal(err)
	}

	res := &AuditResult{
		Report: AuditReport{
			GeneratedAt:      timestamp(),
			RunID:            newRunID(),
			Violations:       []Finding{},
			DeprecatedUsages: []Finding{},
		},
	}
	marker := strings.ToLower(cfg.DeprecationMarker)

	for _, f := range files {
		// #nosec G304 - walked from the CSS directory
		src, err := os.ReadFile(f.Path)
		if err != nil {
			res.Errors = multierr.Append(res.Errors, fmt.Errorf("read %s: %w", f.Rel, err))
			continue
		}
		res.FilesScanned++

		rel := cfg.rel(f.Path)
		theme := cfg.isThemeOverride(f.Rel)
		lines := csstoken.Lines(src)

		for _, d := range csstoken.Scan(src, cfg.TokenPrefix).Declarations {
			lineText := ""
			if d.Line-1 < len(lines) {
				lineText = lines[d.Line-1]
			}
			isDeprecated := marker != "" &&
				(strings.Contains(strings.ToLower(lineText), marker) || d.HasMarker(marker))
			finding := Finding{File: rel, Line: d.Line, Name: d.Name}
			issue := reporter.Issue{
				Pos:         reporter.IssuePos{Filename: rel, Line: d.Line, Column: d.Column},
				SourceLines: []string{lineText},
			}

			if !allowed[d.Name] && !isDeprecated && !theme {
				res.Report.Violations = append(res.Report.Violations, finding)
				issue.FromLinter = reporter.LinterTokenAudit
				issue.Severity = reporter.SeverityError
				issue.Text = fmt.Sprintf(reporter.IssueNotWhitelisted, d.Name)
				res.Issues = append(res.Issues, issue)
			}
			if isDeprecated {
				res.Report.DeprecatedUsages = append(res.Report.DeprecatedUsages, finding)
				issue.FromLinter = reporter.LinterDeprecated
				issue.Severity = reporter.SeverityWarning
				issue.Text = fmt.Sprintf(reporter.IssueDeprecatedInUse, d.Name)
				res.Deprecated = append(res.Deprecated, issue)
			}
		}
	}

	res.Report.Counts = AuditCounts{
		Violations: len(res.Report.Violations),
		Deprecated: len(res.Report.DeprecatedUsages),
	}
	if res.Errors != nil {
		log.Warnf("some files were skipped: %v", res.Errors)
	}

	if err := writeJSON(cfg.DocPath(AuditReportFile), res.Report); err != nil {
		return nil, Fatal(err)
	}
	log.Infof("audit done: %d violations, %d deprecated declarations", res.Report.Counts.Violations, res.Report.Counts.Deprecated)
	return res, nil
}
