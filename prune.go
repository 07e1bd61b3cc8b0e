package plicss

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"

	"go.uber.org/multierr"

	"github.com/pli-cadastros/plicss/internal/cssfile"
	"github.com/pli-cadastros/plicss/internal/logger"
)

// PruneReportFile is the prune report inside the docs directory.
const PruneReportFile = "prune-report.json"

var cssRefRe = regexp.MustCompile(`/static/css/([A-Za-z0-9_\-/.]+\.css)`)

// PruneReport is the JSON document written by Prune.
type PruneReport struct {
	GeneratedAt string   `json:"generatedAt"`
	RunID       string   `json:"runId,omitempty"`
	DryRun      bool     `json:"dryRun"`
	HTMLFiles   int      `json:"htmlFiles"`
	Referenced  []string `json:"referenced"`
	Removed     []string `json:"removed"`
	Kept        int      `json:"kept"`
	BackupDir   string   `json:"backupDir,omitempty"`
}

// CSSReferences collects every /static/css/<path>.css referenced by the HTML
// files under the configured HTML roots, as paths relative to CSSDir.
func CSSReferences(cfg Config) (map[string]bool, int, error) {
	htmlFiles, err := cfg.htmlFiles()
	if err != nil {
		return nil, 0, err
	}
	refs := map[string]bool{}
	var errs error
	for _, f := range htmlFiles {
		// #nosec G304 - walked from the HTML roots
		src, err := os.ReadFile(f.Path)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, m := range cssRefRe.FindAllSubmatch(src, -1) {
			refs[strings.TrimPrefix(string(m[1]), "./")] = true
		}
	}
	if errs != nil {
		logger.For("prune").Warnf("some HTML files were skipped: %v", errs)
	}
	return refs, len(htmlFiles), nil
}

// hasHashedSibling reports whether dir holds <stem>.<hash>.css for rel.
func hasHashedSibling(rel string, all map[string]bool) bool {
	dir, name := path.Split(rel)
	stem := strings.TrimSuffix(name, ".css")
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(stem) + `\.[a-f0-9]{6,}\.css$`)
	for other := range all {
		odir, oname := path.Split(other)
		if odir == dir && re.MatchString(oname) {
			return true
		}
	}
	return false
}

// Prune deletes stylesheets no HTML file references. Unreferenced hashed
// bundles always go; unreferenced plain files go only when a hashed copy
// sits next to them. Referenced files are never deleted. With dryRun nothing
// is removed.
func Prune(cfg Config, dryRun bool) (*PruneReport, error) {
	log := logger.For("prune")

	refs, htmlCount, err := CSSReferences(cfg)
	if err != nil {
		return nil, Fatal(err)
	}
	files, err := cfg.cssFiles()
	if err != nil {
		return nil, Fatal(err)
	}
	all := make(map[string]bool, len(files))
	for _, f := range files {
		all[f.Rel] = true
	}

	report := &PruneReport{
		GeneratedAt: timestamp(),
		RunID:       newRunID(),
		DryRun:      dryRun,
		HTMLFiles:   htmlCount,
		Referenced:  sortedKeys(refs),
		Removed:     []string{},
	}

	var doomed []cssfile.File
	for _, f := range files {
		if refs[f.Rel] {
			continue
		}
		if cssfile.IsHashedBundle(f.Rel) || hasHashedSibling(f.Rel, all) {
			doomed = append(doomed, f)
		}
	}
	report.Kept = len(files) - len(doomed)

	if !dryRun && len(doomed) > 0 {
		paths := make([]string, 0, len(doomed))
		for _, f := range doomed {
			paths = append(paths, f.Path)
		}
		dir, err := backupFiles(cfg, "prune", paths)
		if err != nil {
			return nil, Fatal(err)
		}
		report.BackupDir = cfg.rel(dir)
	}

	var errs error
	for _, f := range doomed {
		if !dryRun {
			if err := os.Remove(f.Path); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("remove %s: %w", f.Rel, err))
				report.Kept++
				continue
			}
		}
		report.Removed = append(report.Removed, f.Rel)
	}
	if errs != nil {
		log.Warnf("some files could not be removed: %v", errs)
	}

	if err := writeJSON(cfg.DocPath(PruneReportFile), report); err != nil {
		return nil, Fatal(err)
	}

	verb := "removed"
	if dryRun {
		verb = "would remove"
	}
	if len(report.Removed) == 0 {
		log.Infof("no files removed")
	} else {
		log.Infof("%s %d files", verb, len(report.Removed))
		for _, r := range report.Removed {
			log.Infof(" - %s", r)
		}
	}
	return report, nil
}
