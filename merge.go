package plicss

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/pli-cadastros/plicss/internal/logger"
)

// Merge documents inside the docs directory.
const (
	MergePlanFile    = "tokens-merge-dry-run.json"
	MergeTableFile   = "tokens-merge-substituicoes.md"
	MergeAppliedFile = "tokens-merge-aplicado.json"
	MergeDiffFile    = "tokens-merge-diff.md"
)

// MergeGroup folds aliases into one canonical token.
type MergeGroup struct {
	Value     string   `json:"value"`
	Canonical string   `json:"canonical"`
	Aliases   []string `json:"aliases"`
}

// Occurrence is a byte offset of an alias in a file.
type Occurrence struct {
	File  string `json:"file"`
	Index int    `json:"index"`
}

// MergePlan is the dry-run document.
type MergePlan struct {
	RunID       string                  `json:"runId,omitempty"`
	Plan        []MergeGroup            `json:"plan"`
	Occurrences map[string][]Occurrence `json:"occurrences"`
}

// TotalOccurrences sums the occurrences of a group's aliases.
func (p *MergePlan) TotalOccurrences(g MergeGroup) int {
	n := 0
	for _, a := range g.Aliases {
		n += len(p.Occurrences[a])
	}
	return n
}

// ChooseCanonical picks the first preferred name present in tokens, else
// the shortest name with ties broken lexicographically.
func ChooseCanonical(tokens, preference []string) string {
	for _, p := range preference {
		for _, t := range tokens {
			if t == p {
				return p
			}
		}
	}
	sorted := append([]string(nil), tokens...)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) < len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	if len(sorted) == 0 {
		return ""
	}
	return sorted[0]
}

// aliasRe matches a token name not followed by further name characters, so
// --pli-a does not match inside --pli-ab.
func aliasRe(alias string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(alias) + `(?:[^a-zA-Z0-9_-]|$)`)
}

// PlanMerge reads the merge candidates, picks a canonical name per group and
// counts alias occurrences in every non-hashed CSS file. It never writes CSS.
func PlanMerge(cfg Config) (*MergePlan, error) {
	log := logger.For("merge")

	candPath := cfg.DocPath(MergeCandidatesFile)
	if !exists(candPath) {
		return nil, missingInput(candPath)
	}
	var candidates []MergeCandidate
	if err := readJSONC(candPath, &candidates); err != nil {
		return nil, Fatal(err)
	}

	plan := &MergePlan{RunID: newRunID(), Plan: []MergeGroup{}, Occurrences: map[string][]Occurrence{}}
	var aliases []string
	for _, c := range candidates {
		canonical := ChooseCanonical(c.Tokens, cfg.Merge.Preference)
		g := MergeGroup{Value: c.Value, Canonical: canonical, Aliases: []string{}}
		for _, t := range c.Tokens {
			if t == canonical {
				continue
			}
			g.Aliases = append(g.Aliases, t)
			if _, ok := plan.Occurrences[t]; !ok {
				plan.Occurrences[t] = []Occurrence{}
				aliases = append(aliases, t)
			}
		}
		plan.Plan = append(plan.Plan, g)
	}

	files, err := cfg.sourceCSSFiles()
	if err != nil {
		return nil, Fatal(err)
	}
	var errs error
	for _, f := range files {
		// #nosec G304 - walked from the CSS directory
		src, err := os.ReadFile(f.Path)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %s: %w", f.Rel, err))
			continue
		}
		rel := cfg.rel(f.Path)
		for _, alias := range aliases {
			for _, loc := range aliasRe(alias).FindAllIndex(src, -1) {
				plan.Occurrences[alias] = append(plan.Occurrences[alias], Occurrence{File: rel, Index: loc[0]})
			}
		}
	}
	if errs != nil {
		log.Warnf("some files were skipped: %v", errs)
	}

	if err := writeJSON(cfg.DocPath(MergePlanFile), plan); err != nil {
		return nil, Fatal(err)
	}
	if err := writeFile(cfg.DocPath(MergeTableFile), []byte(mergeTable(plan))); err != nil {
		return nil, Fatal(err)
	}
	log.Infof("dry-run done: %d groups, %d aliases", len(plan.Plan), len(aliases))
	return plan, nil
}

func mergeTable(plan *MergePlan) string {
	var b strings.Builder
	b.WriteString("# Dry-Run Merge de Tokens\n")
	fmt.Fprintf(&b, "Gerado em %s\n\n", timestamp())
	b.WriteString("| Valor | Canônico | Aliases | Ocorrências (total) |\n")
	b.WriteString("|-------|----------|---------|---------------------|\n")
	for _, g := range plan.Plan {
		fmt.Fprintf(&b, "| %s | %s | %s | %d |\n",
			escapePipes(g.Value), g.Canonical, strings.Join(g.Aliases, ", "), plan.TotalOccurrences(g))
	}
	b.WriteString("\n## Observações\n")
	b.WriteString("- Substituição proposta: aliases -> canônico; tokens canônicos permanecem.\n")
	return b.String()
}

// Replacement records what ApplyMerge changed for one alias in one file.
type Replacement struct {
	Alias                string `json:"alias"`
	Canonical            string `json:"canonical"`
	UsageReplacements    int    `json:"usageReplacements"`
	DefinitionDeprecated bool   `json:"definitionDeprecated,omitempty"`
}

// FileChange is one rewritten file.
type FileChange struct {
	File         string        `json:"file"`
	BeforeBytes  int           `json:"beforeBytes"`
	AfterBytes   int           `json:"afterBytes"`
	Replacements []Replacement `json:"replacements"`
}

// MergeApplied is the document written by ApplyMerge.
type MergeApplied struct {
	Timestamp string       `json:"timestamp"`
	RunID     string       `json:"runId,omitempty"`
	BackupDir string       `json:"backupDir,omitempty"`
	Changes   []FileChange `json:"changes"`
}

// ApplyMerge rewrites var(--alias) reads to the canonical name and turns
// every alias definition into a deprecated pointer at the canonical token.
// Hashed bundles are never touched. The CSS tree is backed up first.
func ApplyMerge(cfg Config) (*MergeApplied, error) {
	log := logger.For("merge")

	planPath := cfg.DocPath(MergePlanFile)
	if !exists(planPath) {
		return nil, missingInput(planPath)
	}
	var plan MergePlan
	if err := readJSONC(planPath, &plan); err != nil {
		return nil, Fatal(err)
	}

	type pair struct{ alias, canonical string }
	var pairs []pair
	for _, g := range plan.Plan {
		for _, a := range g.Aliases {
			pairs = append(pairs, pair{a, g.Canonical})
		}
	}

	backup, err := Backup(cfg)
	if err != nil {
		return nil, Fatal(fmt.Errorf("backup before merge: %w", err))
	}

	files, err := cfg.sourceCSSFiles()
	if err != nil {
		return nil, Fatal(err)
	}

	out := &MergeApplied{Timestamp: timestamp(), RunID: newRunID(), BackupDir: cfg.rel(backup.Dir), Changes: []FileChange{}}
	var errs error
	for _, f := range files {
		// #nosec G304 - walked from the CSS directory
		src, err := os.ReadFile(f.Path)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read %s: %w", f.Rel, err))
			continue
		}
		original := string(src)
		modified := original
		var reps []Replacement

		for _, p := range pairs {
			var count int
			modified, count = replaceUsages(modified, p.alias, p.canonical)
			var deprecated bool
			modified, deprecated = deprecateDefinition(modified, p.alias, p.canonical)
			if count > 0 || deprecated {
				reps = append(reps, Replacement{
					Alias:                p.alias,
					Canonical:            p.canonical,
					UsageReplacements:    count,
					DefinitionDeprecated: deprecated,
				})
			}
		}

		if modified == original {
			continue
		}
		if err := os.WriteFile(f.Path, []byte(modified), 0o644); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("write %s: %w", f.Rel, err))
			continue
		}
		out.Changes = append(out.Changes, FileChange{
			File:         cfg.rel(f.Path),
			BeforeBytes:  len(original),
			AfterBytes:   len(modified),
			Replacements: reps,
		})
	}
	if errs != nil {
		log.Warnf("some files were not rewritten: %v", errs)
	}

	if err := writeJSON(cfg.DocPath(MergeAppliedFile), out); err != nil {
		return nil, Fatal(err)
	}
	if err := writeFile(cfg.DocPath(MergeDiffFile), []byte(mergeDiff(out))); err != nil {
		return nil, Fatal(err)
	}
	log.Infof("merges applied, files changed: %d", len(out.Changes))
	return out, nil
}

// replaceUsages rewrites var(--alias) and var(--alias, fallback).
func replaceUsages(content, alias, canonical string) (string, int) {
	re := regexp.MustCompile(`var\(\s*` + regexp.QuoteMeta(alias) + `(\s*[,)])`)
	count := 0
	content = re.ReplaceAllStringFunc(content, func(m string) string {
		count++
		return strings.Replace(m, alias, canonical, 1)
	})
	return content, count
}

// deprecateDefinition turns "--alias: value;" into a deprecated pointer.
// Definitions already pointing at the canonical token are left alone.
func deprecateDefinition(content, alias, canonical string) (string, bool) {
	re := regexp.MustCompile(`(^|\s)(` + regexp.QuoteMeta(alias) + `)\s*:\s*([^;]+);`)
	changed := false
	content = re.ReplaceAllStringFunc(content, func(full string) string {
		m := re.FindStringSubmatch(full)
		pre, name, val := m[1], m[2], m[3]
		if strings.Contains(val, "var("+canonical) {
			return full
		}
		changed = true
		return fmt.Sprintf("%s/* @deprecated merged -> %s (original %s) */ %s: var(%s);",
			pre, canonical, strings.TrimSpace(val), name, canonical)
	})
	return content, changed
}

func mergeDiff(applied *MergeApplied) string {
	var b strings.Builder
	b.WriteString("# Diff Simplificado - Merges de Tokens Aplicados\n")
	fmt.Fprintf(&b, "Gerado em %s\n", applied.Timestamp)
	for _, c := range applied.Changes {
		fmt.Fprintf(&b, "\n## %s\n", c.File)
		for _, r := range c.Replacements {
			suffix := ""
			if r.DefinitionDeprecated {
				suffix = "; definição marcada @deprecated"
			}
			fmt.Fprintf(&b, "- %s -> %s (usos alterados: %d%s)\n", r.Alias, r.Canonical, r.UsageReplacements, suffix)
		}
	}
	return b.String()
}
