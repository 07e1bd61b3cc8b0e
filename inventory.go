package plicss

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/mazznoer/csscolorparser"
	"go.uber.org/multierr"

	"github.com/pli-cadastros/plicss/internal/csstoken"
	"github.com/pli-cadastros/plicss/internal/logger"
)

// Inventory outputs inside the docs directory.
const (
	InventoryFile       = "tokens-inventory.json"
	DuplicatesFile      = "tokens-duplicatas.json"
	MetricsFile         = "tokens-metricas.json"
	MergeCandidatesFile = "tokens-merge-candidatos.json"
	InventoryTableFile  = "Fase2-Tokens-TABELA.md"
)

const (
	maxUsageContext = 240
	maxUsageSites   = 2000
)

// DefinitionSite is where a token is defined.
type DefinitionSite struct {
	File  string `json:"file"`
	Line  int    `json:"line"`
	Value string `json:"value"`
}

// UsageSite is where a token is read.
type UsageSite struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Context string `json:"context"`
}

// TokenRecord is the inventory entry of one token.
type TokenRecord struct {
	DefinitionCount int              `json:"definitionCount"`
	UsageCount      int              `json:"usageCount"`
	Values          []string         `json:"values"`
	Conflicting     bool             `json:"conflicting"`
	Definitions     []DefinitionSite `json:"definitions"`
	Usage           []UsageSite      `json:"usage"`
}

// ValueGroup gathers the tokens sharing one normalised value.
type ValueGroup struct {
	NormalizedValue string   `json:"normalizedValue"`
	Tokens          []string `json:"tokens"`
	RawValues       []string `json:"rawValues"`
	Occurrences     int      `json:"occurrences"`
	Duplicate       bool     `json:"duplicate"`
}

// InventoryMetrics summarises the inventory.
type InventoryMetrics struct {
	TotalTokens                   int     `json:"totalTokens"`
	TokensWithoutDefinition       int     `json:"tokensWithoutDefinition"`
	TokensWithoutUsage            int     `json:"tokensWithoutUsage"`
	TokensWithConflictingValues   int     `json:"tokensWithConflictingValues"`
	DuplicateValueGroups          int     `json:"duplicateValueGroups"`
	TotalValueGroups              int     `json:"totalValueGroups"`
	PercentageTokensConflicting   float64 `json:"percentageTokensConflicting"`
	PercentageDuplicateValueGroup float64 `json:"percentageDuplicateValueGroups"`
	MergeCandidateGroups          int     `json:"mergeCandidateGroups"`
}

// MergeCandidate is a group of tokens that can safely share one name.
type MergeCandidate struct {
	Value  string   `json:"value"`
	Tokens []string `json:"tokens"`
}

// InventoryResult is everything BuildInventory computed.
type InventoryResult struct {
	Tokens     map[string]*TokenRecord
	Groups     []ValueGroup
	Metrics    InventoryMetrics
	Candidates []MergeCandidate
	Errors     error
}

var (
	colorLeadRe = regexp.MustCompile(`(?i)^(#|rgba?\(|hsla?\()`)
	hexInValue  = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)
	spacesRe    = regexp.MustCompile(`\s+`)
)

// NormalizeValue canonicalises a token value for duplicate detection.
// Whole-value colours become lower-case hex, hex colours inside composite
// values are expanded and everything is lower-cased with whitespace
// collapsed.
func NormalizeValue(raw string) string {
	v := strings.TrimSpace(raw)
	v = strings.TrimSpace(strings.TrimSuffix(v, ";"))
	v = spacesRe.ReplaceAllString(v, " ")

	if colorLeadRe.MatchString(v) {
		if c, err := csscolorparser.Parse(v); err == nil {
			return c.HexString()
		}
		return strings.ToLower(v)
	}

	v = hexInValue.ReplaceAllStringFunc(v, func(hex string) string {
		c, err := csscolorparser.Parse(hex)
		if err != nil {
			return hex
		}
		return c.HexString()
	})
	return strings.ToLower(v)
}

// BuildInventory records every definition and usage of every token in the
// non-hashed CSS files and writes the inventory documents.
func BuildInventory(cfg Config) (*InventoryResult, error) {
	log := logger.For("inventory")

	files, err := cfg.sourceCSSFiles()
	if err != nil {
		return nil, Fatal(err)
	}

	res := &InventoryResult{Tokens: map[string]*TokenRecord{}}
	record := func(name string) *TokenRecord {
		t, ok := res.Tokens[name]
		if !ok {
			t = &TokenRecord{Values: []string{}, Definitions: []DefinitionSite{}, Usage: []UsageSite{}}
			res.Tokens[name] = t
		}
		return t
	}

	for _, f := range files {
		// #nosec G304 - walked from the CSS directory
		src, err := os.ReadFile(f.Path)
		if err != nil {
			res.Errors = multierr.Append(res.Errors, fmt.Errorf("read %s: %w", f.Rel, err))
			continue
		}
		rel := cfg.rel(f.Path)
		lines := csstoken.Lines(src)
		scan := csstoken.Scan(src, cfg.TokenPrefix)

		for _, d := range scan.Declarations {
			t := record(d.Name)
			t.Definitions = append(t.Definitions, DefinitionSite{File: rel, Line: d.Line, Value: d.Value})
			if !slices.Contains(t.Values, d.Value) {
				t.Values = append(t.Values, d.Value)
			}
		}
		for _, u := range scan.Usages {
			t := record(u.Name)
			t.UsageCount++
			if len(t.Usage) < maxUsageSites {
				t.Usage = append(t.Usage, UsageSite{File: rel, Line: u.Line, Context: usageContext(lines[u.Line-1])})
			}
		}
	}
	if res.Errors != nil {
		log.Warnf("some files were skipped: %v", res.Errors)
	}

	names := keysOf(res.Tokens)
	sort.Strings(names)

	type group struct {
		raw    []string
		tokens map[string]bool
		occ    int
	}
	groups := map[string]*group{}
	var groupOrder []string

	for _, name := range names {
		t := res.Tokens[name]
		t.DefinitionCount = len(t.Definitions)
		t.Conflicting = len(t.Values) > 1

		for _, v := range t.Values {
			norm := NormalizeValue(v)
			g, ok := groups[norm]
			if !ok {
				g = &group{tokens: map[string]bool{}}
				groups[norm] = g
				groupOrder = append(groupOrder, norm)
			}
			if !slices.Contains(g.raw, v) {
				g.raw = append(g.raw, v)
			}
			g.tokens[name] = true
			for _, d := range t.Definitions {
				if d.Value == v {
					g.occ++
				}
			}
		}
	}

	m := &res.Metrics
	m.TotalTokens = len(names)
	for _, name := range names {
		t := res.Tokens[name]
		if t.DefinitionCount == 0 {
			m.TokensWithoutDefinition++
		}
		if t.UsageCount == 0 {
			m.TokensWithoutUsage++
		}
		if t.Conflicting {
			m.TokensWithConflictingValues++
		}
	}
	m.TotalValueGroups = len(groups)

	res.Candidates = []MergeCandidate{}
	for _, norm := range groupOrder {
		g := groups[norm]
		members := sortedKeys(g.tokens)
		vg := ValueGroup{
			NormalizedValue: norm,
			Tokens:          members,
			RawValues:       g.raw,
			Occurrences:     g.occ,
			Duplicate:       len(members) > 1,
		}
		res.Groups = append(res.Groups, vg)
		if !vg.Duplicate {
			continue
		}
		m.DuplicateValueGroups++

		conflict := false
		for _, name := range members {
			if res.Tokens[name].Conflicting {
				conflict = true
				break
			}
		}
		if !conflict {
			res.Candidates = append(res.Candidates, MergeCandidate{Value: norm, Tokens: members})
		}
	}
	m.MergeCandidateGroups = len(res.Candidates)
	m.PercentageTokensConflicting = percent(m.TokensWithConflictingValues, m.TotalTokens)
	m.PercentageDuplicateValueGroup = percent(m.DuplicateValueGroups, m.TotalValueGroups)

	sort.SliceStable(res.Groups, func(i, j int) bool {
		a, b := res.Groups[i], res.Groups[j]
		if len(a.Tokens) != len(b.Tokens) {
			return len(a.Tokens) > len(b.Tokens)
		}
		return a.Occurrences > b.Occurrences
	})
	if res.Groups == nil {
		res.Groups = []ValueGroup{}
	}

	var errs error
	errs = multierr.Append(errs, writeJSON(cfg.DocPath(InventoryFile), res.Tokens))
	errs = multierr.Append(errs, writeJSON(cfg.DocPath(DuplicatesFile), res.Groups))
	errs = multierr.Append(errs, writeJSON(cfg.DocPath(MetricsFile), res.Metrics))
	errs = multierr.Append(errs, writeJSON(cfg.DocPath(MergeCandidatesFile), res.Candidates))
	errs = multierr.Append(errs, writeFile(cfg.DocPath(InventoryTableFile), []byte(inventoryMarkdown(res))))
	if errs != nil {
		return nil, Fatal(errs)
	}

	log.Infof("inventory written: %d tokens, %d value groups, %d merge candidates",
		m.TotalTokens, m.TotalValueGroups, m.MergeCandidateGroups)
	return res, nil
}

func inventoryMarkdown(res *InventoryResult) string {
	var b strings.Builder
	m := res.Metrics

	b.WriteString("# Inventário de Tokens CSS (Fase 2)\n\n")
	fmt.Fprintf(&b, "Gerado em: %s\n\n", timestamp())
	b.WriteString("## Métricas\n")
	for _, kv := range []struct {
		k string
		v any
	}{
		{"totalTokens", m.TotalTokens},
		{"tokensWithoutDefinition", m.TokensWithoutDefinition},
		{"tokensWithoutUsage", m.TokensWithoutUsage},
		{"tokensWithConflictingValues", m.TokensWithConflictingValues},
		{"duplicateValueGroups", m.DuplicateValueGroups},
		{"totalValueGroups", m.TotalValueGroups},
		{"percentageTokensConflicting", m.PercentageTokensConflicting},
		{"percentageDuplicateValueGroups", m.PercentageDuplicateValueGroup},
		{"mergeCandidateGroups", m.MergeCandidateGroups},
	} {
		fmt.Fprintf(&b, "- %s: %v\n", kv.k, kv.v)
	}

	b.WriteString("\n## Tokens (resumo)\n")
	b.WriteString("| Token | Definições | Usos | Valores | Conflito |\n")
	b.WriteString("|-------|------------|------|---------|----------|\n")
	names := keysOf(res.Tokens)
	sort.Strings(names)
	for _, name := range names {
		t := res.Tokens[name]
		flag := ""
		if t.Conflicting {
			flag = "⚠️"
		}
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %s |\n", name, t.DefinitionCount, t.UsageCount, len(t.Values), flag)
	}

	b.WriteString("\n## Grupos de Valor Duplicado (top 30)\n")
	b.WriteString("| Valor Normalizado | Qtde Tokens | Tokens |\n")
	b.WriteString("|-------------------|-------------|--------|\n")
	for i, g := range res.Groups {
		if i >= 30 {
			break
		}
		if !g.Duplicate {
			continue
		}
		fmt.Fprintf(&b, "| %s | %d | %s |\n", escapePipes(g.NormalizedValue), len(g.Tokens), strings.Join(g.Tokens, ", "))
	}

	b.WriteString("\n## Candidatos a Merge\n")
	for i, c := range res.Candidates {
		if i >= 50 {
			break
		}
		fmt.Fprintf(&b, "- Valor: %s → Tokens: %s\n", c.Value, strings.Join(c.Tokens, ", "))
	}
	return b.String()
}

func usageContext(line string) string {
	line = strings.TrimSpace(line)
	r := []rune(line)
	if len(r) > maxUsageContext {
		return string(r[:maxUsageContext])
	}
	return line
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
