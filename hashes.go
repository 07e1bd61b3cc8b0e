package plicss

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/pli-cadastros/plicss/internal/logger"
	"github.com/pli-cadastros/plicss/internal/reporter"
)

// HashRewrite lists the HTML files RewriteHashes changed.
type HashRewrite struct {
	Changed   []string
	BackupDir string
}

// LoadManifest reads css-manifest.json from CSSDir.
func LoadManifest(cfg Config) (Manifest, error) {
	p := filepath.Join(cfg.CSSPath(), ManifestName)
	if !exists(p) {
		return nil, missingInput(p)
	}
	m := Manifest{}
	if err := readJSONC(p, &m); err != nil {
		return nil, Fatal(err)
	}
	return m, nil
}

// logicalRefRe matches /static/css/<logical> with or without a stale hash.
// The reference must end the URL, so core.min.css.map is left alone; the
// terminator is captured as $1.
func logicalRefRe(logical string) *regexp.Regexp {
	stem := strings.TrimSuffix(strings.ReplaceAll(logical, `\`, "/"), ".css")
	return regexp.MustCompile(`/static/css/` + regexp.QuoteMeta(stem) + `(?:\.[a-f0-9]{6,})?\.css(["'?#)\s]|$)`)
}

// RewriteHashes points every /static/css/<logical> reference in the HTML
// roots at the hashed bundle from the manifest. Changed files are backed up
// before they are written.
func RewriteHashes(cfg Config) (*HashRewrite, error) {
	log := logger.For("hashes")

	manifest, err := LoadManifest(cfg)
	if err != nil {
		return nil, err
	}
	logicals := keysOf(manifest)
	sort.Strings(logicals)

	type rule struct {
		re     *regexp.Regexp
		target []byte
	}
	rules := make([]rule, 0, len(logicals))
	for _, l := range logicals {
		rules = append(rules, rule{
			re:     logicalRefRe(l),
			target: []byte("/static/css/" + strings.ReplaceAll(strings.ReplaceAll(manifest[l].Hashed, `\`, "/"), "$", "$$") + "${1}"),
		})
	}

	htmlFiles, err := cfg.htmlFiles()
	if err != nil {
		return nil, Fatal(err)
	}

	type pending struct {
		path, rel string
		updated   []byte
	}
	var writes []pending
	for _, f := range htmlFiles {
		// #nosec G304 - walked from the HTML roots
		src, err := os.ReadFile(f.Path)
		if err != nil {
			log.Warnf("skipping %s: %v", f.Rel, err)
			continue
		}
		updated := src
		for _, r := range rules {
			updated = r.re.ReplaceAll(updated, r.target)
		}
		if !bytes.Equal(updated, src) {
			writes = append(writes, pending{path: f.Path, rel: cfg.rel(f.Path), updated: updated})
		}
	}

	res := &HashRewrite{Changed: []string{}}
	if len(writes) == 0 {
		log.Infof("all HTML references are up to date")
		return res, nil
	}

	paths := make([]string, 0, len(writes))
	for _, w := range writes {
		paths = append(paths, w.path)
	}
	dir, err := backupFiles(cfg, "hashes", paths)
	if err != nil {
		return nil, Fatal(err)
	}
	res.BackupDir = cfg.rel(dir)

	var errs error
	for _, w := range writes {
		if err := os.WriteFile(w.path, w.updated, 0o644); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("write %s: %w", w.rel, err))
			continue
		}
		res.Changed = append(res.Changed, w.rel)
		log.Infof("updated %s", w.rel)
	}
	if errs != nil {
		return res, Fatal(errs)
	}
	return res, nil
}

var hashedLinkRe = regexp.MustCompile(`(?i)/static/css/(?:core\.min\.[0-9a-f]{8,}\.css|pages/[a-z0-9-]+\.min\.[0-9a-f]{8,}\.css)`)

// LinkCheck is the outcome of ValidateLinks.
type LinkCheck struct {
	HTMLFiles int
	Issues    []reporter.Issue
}

// ExitCode is ExitViolations when any HTML file links a hashed bundle.
func (l *LinkCheck) ExitCode() int {
	if len(l.Issues) > 0 {
		return ExitViolations
	}
	return ExitOK
}

// ValidateLinks reports HTML that links hashed bundles directly instead of
// their logical names.
func ValidateLinks(cfg Config) (*LinkCheck, error) {
	log := logger.For("links")

	htmlFiles, err := cfg.htmlFiles()
	if err != nil {
		return nil, Fatal(err)
	}

	res := &LinkCheck{HTMLFiles: len(htmlFiles)}
	for _, f := range htmlFiles {
		// #nosec G304 - walked from the HTML roots
		src, err := os.ReadFile(f.Path)
		if err != nil {
			log.Warnf("skipping %s: %v", f.Rel, err)
			continue
		}
		rel := cfg.rel(f.Path)
		lines := strings.Split(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n")
		for i, line := range lines {
			for _, loc := range hashedLinkRe.FindAllStringIndex(line, -1) {
				res.Issues = append(res.Issues, reporter.Issue{
					FromLinter:  reporter.LinterLinks,
					Severity:    reporter.SeverityError,
					Text:        fmt.Sprintf(reporter.IssueHashedLink, line[loc[0]:loc[1]]),
					Pos:         reporter.IssuePos{Filename: rel, Line: i + 1, Column: loc[0] + 1},
					SourceLines: []string{line},
				})
			}
		}
	}

	if len(res.Issues) == 0 {
		log.Infof("OK, no direct hashed references left")
	} else {
		log.Errorf("%d direct hashed references found; use the logical name (e.g. /static/css/core.min.css)", len(res.Issues))
	}
	return res, nil
}
