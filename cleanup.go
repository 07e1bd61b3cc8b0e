package plicss

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/multierr"

	"github.com/pli-cadastros/plicss/internal/cssfile"
	"github.com/pli-cadastros/plicss/internal/logger"
)

// CleanupReportFile is the cleanup report inside the docs directory.
const CleanupReportFile = "fase10-cleanup-report.json"

// AliasReplacement counts one deprecated name rewritten in one bundle.
type AliasReplacement struct {
	Deprecated string `json:"deprecated"`
	Canonical  string `json:"canonical"`
	Count      int    `json:"count"`
}

// CleanedFile is one processed bundle.
type CleanedFile struct {
	File         string             `json:"file"`
	Replacements []AliasReplacement `json:"replacements,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// CleanupReport is the JSON document written by Cleanup.
type CleanupReport struct {
	GeneratedAt       string        `json:"generatedAt"`
	RunID             string        `json:"runId,omitempty"`
	BackupDir         string        `json:"backupDir,omitempty"`
	Processed         []CleanedFile `json:"processed"`
	TotalReplacements int           `json:"totalReplacements"`
}

// Cleanup replaces deprecated names left inside built bundles with their
// canonical names. Only files matching Cleanup.Targets are touched, and
// each one is backed up before it is rewritten.
func Cleanup(cfg Config) (*CleanupReport, error) {
	log := logger.For("cleanup")

	files, err := cfg.cssFiles()
	if err != nil {
		return nil, Fatal(err)
	}
	var targets []cssfile.File
	for _, f := range files {
		for _, pattern := range cfg.Cleanup.Targets {
			if ok, _ := doublestar.Match(pattern, f.Rel); ok {
				targets = append(targets, f)
				break
			}
		}
	}

	deprecated := keysOf(cfg.Cleanup.Aliases)
	sort.Strings(deprecated)
	patterns := make(map[string]*regexp.Regexp, len(deprecated))
	for _, name := range deprecated {
		patterns[name] = aliasRe(name)
	}

	report := &CleanupReport{GeneratedAt: timestamp(), RunID: newRunID(), Processed: []CleanedFile{}}
	type pending struct {
		file    cssfile.File
		updated []byte
	}
	var writes []pending
	var errs error

	for _, f := range targets {
		rel := cfg.rel(f.Path)
		// #nosec G304 - walked from the CSS directory
		src, err := os.ReadFile(f.Path)
		if err != nil {
			report.Processed = append(report.Processed, CleanedFile{File: rel, Error: err.Error()})
			errs = multierr.Append(errs, err)
			continue
		}

		content := src
		var reps []AliasReplacement
		for _, name := range deprecated {
			canonical := cfg.Cleanup.Aliases[name]
			count := 0
			content = patterns[name].ReplaceAllFunc(content, func(m []byte) []byte {
				count++
				return append([]byte(canonical), m[len(name):]...)
			})
			if count > 0 {
				reps = append(reps, AliasReplacement{Deprecated: name, Canonical: canonical, Count: count})
				report.TotalReplacements += count
			}
		}
		if len(reps) == 0 {
			continue
		}
		report.Processed = append(report.Processed, CleanedFile{File: rel, Replacements: reps})
		writes = append(writes, pending{file: f, updated: content})
	}

	if len(writes) > 0 {
		paths := make([]string, 0, len(writes))
		for _, w := range writes {
			paths = append(paths, w.file.Path)
		}
		dir, err := backupFiles(cfg, "cleanup", paths)
		if err != nil {
			return nil, Fatal(err)
		}
		report.BackupDir = cfg.rel(dir)

		for _, w := range writes {
			if err := os.WriteFile(w.file.Path, w.updated, 0o644); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("write %s: %w", w.file.Rel, err))
			}
		}
	}
	if errs != nil {
		log.Warnf("some bundles were not cleaned: %v", errs)
	}

	if err := writeJSON(cfg.DocPath(CleanupReportFile), report); err != nil {
		return nil, Fatal(err)
	}
	log.Infof("cleanup done: %d files changed, %d replacements", len(writes), report.TotalReplacements)
	return report, nil
}
