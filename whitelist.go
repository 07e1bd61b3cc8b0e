package plicss

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/pli-cadastros/plicss/internal/csstoken"
	"github.com/pli-cadastros/plicss/internal/logger"
	"github.com/pli-cadastros/plicss/internal/reporter"
)

// Report and snapshot file names inside the docs directory.
const (
	WhitelistFile       = "variables-whitelist.json"
	WhitelistSnapshot   = "variables-whitelist.snapshot.json"
	WhitelistDiffReport = "whitelist-diff-report.json"
)

// Whitelist is the set of tokens stylesheets may declare.
type Whitelist struct {
	GeneratedAt     string   `json:"generatedAt"`
	RunID           string   `json:"runId,omitempty"`
	Count           int      `json:"count"`
	Variables       []string `json:"variables"`
	Deprecated      []string `json:"deprecated"`
	InternalAllowed []string `json:"internalAllowed"`
}

// ExtractWhitelist scans the token files. Declarations whose attached
// comment carries the deprecation marker are listed as deprecated; every
// other name is a variable. A name deprecated anywhere is never a variable.
// Missing token files are skipped.
func ExtractWhitelist(cfg Config) (*Whitelist, error) {
	log := logger.For("whitelist")
	variables := map[string]bool{}
	deprecated := map[string]bool{}

	for _, path := range cfg.tokenPaths() {
		// #nosec G304 - token files come from configuration
		src, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debugf("skipping missing token file %s", cfg.rel(path))
				continue
			}
			return nil, fmt.Errorf("read token file: %w", err)
		}
		for _, d := range csstoken.Scan(src, cfg.TokenPrefix).Declarations {
			if d.HasMarker(cfg.DeprecationMarker) {
				deprecated[d.Name] = true
				continue
			}
			variables[d.Name] = true
		}
	}
	for name := range deprecated {
		delete(variables, name)
	}

	wl := &Whitelist{
		GeneratedAt:     timestamp(),
		RunID:           newRunID(),
		Variables:       sortedKeys(variables),
		Deprecated:      sortedKeys(deprecated),
		InternalAllowed: []string{},
	}
	wl.Count = len(wl.Variables)
	return wl, nil
}

// GenerateWhitelist extracts the whitelist and rewrites the document,
// keeping the hand-maintained internalAllowed list from the previous one.
func GenerateWhitelist(cfg Config) (*Whitelist, error) {
	wl, err := ExtractWhitelist(cfg)
	if err != nil {
		return nil, Fatal(err)
	}

	path := cfg.DocPath(WhitelistFile)
	if prev, err := LoadWhitelist(path); err == nil {
		wl.InternalAllowed = nonNil(prev.InternalAllowed)
		sort.Strings(wl.InternalAllowed)
	}

	if err := writeJSON(path, wl); err != nil {
		return nil, Fatal(err)
	}
	logger.For("whitelist").Infof("whitelist generated: %d variables, %d deprecated", wl.Count, len(wl.Deprecated))
	return wl, nil
}

// LoadWhitelist reads a whitelist document. Comments are tolerated.
func LoadWhitelist(path string) (*Whitelist, error) {
	var wl Whitelist
	if err := readJSONC(path, &wl); err != nil {
		return nil, err
	}
	return &wl, nil
}

// WhitelistDiff compares the whitelist with its snapshot.
type WhitelistDiff struct {
	GeneratedAt         string   `json:"generatedAt"`
	RunID               string   `json:"runId,omitempty"`
	SnapshotExists      bool     `json:"snapshotExists"`
	SnapshotCount       int      `json:"snapshotCount"`
	CurrentCount        int      `json:"currentCount"`
	Added               []string `json:"added"`
	Removed             []string `json:"removed"`
	UnjustifiedRemovals []string `json:"unjustifiedRemovals"`

	// Updated is set when the snapshot was rewritten.
	Updated bool `json:"-"`
}

// ExitCode fails on removals that were not deprecated first, unless the
// snapshot was just updated.
func (d *WhitelistDiff) ExitCode() int {
	if d.Updated || len(d.UnjustifiedRemovals) == 0 {
		return ExitOK
	}
	return ExitViolations
}

// Issues renders the unjustified removals for the terminal.
func (d *WhitelistDiff) Issues() []reporter.Issue {
	issues := make([]reporter.Issue, 0, len(d.UnjustifiedRemovals))
	for _, name := range d.UnjustifiedRemovals {
		issues = append(issues, reporter.Issue{
			FromLinter: reporter.LinterWhitelistDiff,
			Severity:   reporter.SeverityError,
			Text:       fmt.Sprintf(reporter.IssueUnjustifiedDrop, name),
			Pos:        reporter.IssuePos{Filename: WhitelistFile},
		})
	}
	return issues
}

type whitelistSnapshot struct {
	GeneratedAt string   `json:"generatedAt"`
	Variables   []string `json:"variables"`
	Deprecated  []string `json:"deprecated"`
}

// DiffWhitelist compares the current whitelist with the snapshot and writes
// the diff report. With update it also replaces the snapshot.
func DiffWhitelist(cfg Config, update bool) (*WhitelistDiff, error) {
	log := logger.For("whitelist-diff")

	currentPath := cfg.DocPath(WhitelistFile)
	if !exists(currentPath) {
		return nil, missingInput(currentPath)
	}
	current, err := LoadWhitelist(currentPath)
	if err != nil {
		return nil, Fatal(err)
	}

	snapPath := cfg.DocPath(WhitelistSnapshot)
	var snap whitelistSnapshot
	snapExists := exists(snapPath)
	if snapExists {
		if err := readJSONC(snapPath, &snap); err != nil {
			log.Warnf("failed to read snapshot: %v", err)
			snap = whitelistSnapshot{}
		}
	}

	currentVars := toSet(current.Variables)
	currentDeprecated := toSet(current.Deprecated)
	snapVars := toSet(snap.Variables)

	diff := &WhitelistDiff{
		GeneratedAt:         timestamp(),
		RunID:               newRunID(),
		SnapshotExists:      snapExists,
		SnapshotCount:       len(snapVars),
		CurrentCount:        len(currentVars),
		Added:               []string{},
		Removed:             []string{},
		UnjustifiedRemovals: []string{},
	}
	for _, v := range sortedKeys(snapVars) {
		if currentVars[v] {
			continue
		}
		diff.Removed = append(diff.Removed, v)
		if !currentDeprecated[v] {
			diff.UnjustifiedRemovals = append(diff.UnjustifiedRemovals, v)
		}
	}
	for _, v := range sortedKeys(currentVars) {
		if !snapVars[v] {
			diff.Added = append(diff.Added, v)
		}
	}

	if err := writeJSON(cfg.DocPath(WhitelistDiffReport), diff); err != nil {
		return nil, Fatal(err)
	}
	log.Infof("report written to %s", cfg.rel(cfg.DocPath(WhitelistDiffReport)))

	if update {
		next := whitelistSnapshot{
			GeneratedAt: timestamp(),
			Variables:   sortedKeys(currentVars),
			Deprecated:  sortedKeys(currentDeprecated),
		}
		if err := writeJSON(snapPath, next); err != nil {
			return nil, Fatal(err)
		}
		diff.Updated = true
		log.Infof("snapshot updated")
		return diff, nil
	}

	if len(diff.UnjustifiedRemovals) > 0 {
		log.Errorf("unjustified removals detected: %d", len(diff.UnjustifiedRemovals))
	} else {
		log.Infof("no unjustified removals")
	}
	return diff, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
