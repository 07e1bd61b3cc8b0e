package plicss

import (
	"regexp"
	"sort"

	"github.com/pli-cadastros/plicss/internal/logger"
)

// ClassifiedFile is the classification report inside the docs directory.
const ClassifiedFile = "fase8-violations-classified.json"

// Violation categories.
const (
	CategoryBreakpoints          = "breakpoints"
	CategoryContainerSize        = "container-size"
	CategoryLayoutDimension      = "layout-dimension"
	CategoryResponsiveSpacing    = "responsive-spacing"
	CategoryResponsiveTypography = "responsive-typography"
	CategoryLoginAuth            = "login-auth"
	CategoryLayoutMode           = "layout-mode"
	CategoryOpacity              = "opacity"
	CategoryDeprecatedKnown      = "deprecated-known"
	CategoryOther                = "outros"
)

// categories are tried in order; the first match wins.
var categories = []struct {
	name string
	re   *regexp.Regexp
}{
	{CategoryBreakpoints, regexp.MustCompile(`--pli-breakpoint-`)},
	{CategoryContainerSize, regexp.MustCompile(`--pli-container-(max-width|xs|sm|md|lg|xl|2xl|ultrawide)`)},
	{CategoryLayoutDimension, regexp.MustCompile(`--pli-(header-height|footer-height)(-mobile)?$`)},
	{CategoryResponsiveSpacing, regexp.MustCompile(`--pli-spacing-responsive-`)},
	{CategoryResponsiveTypography, regexp.MustCompile(`--pli-font-size-responsive-`)},
	{CategoryLoginAuth, regexp.MustCompile(`--pli-(login|auth)-`)},
	{CategoryLayoutMode, regexp.MustCompile(`--pli-layout-mode`)},
	{CategoryOpacity, regexp.MustCompile(`--pli-bg-opacity`)},
	{CategoryDeprecatedKnown, regexp.MustCompile(`--pli-(azul-medio|verde-principal|amarelo|font-size-(xl|2xl)|glass-(bg-color|border-color))`)},
}

// recommendations group categories by what should happen to their names.
var recommendations = map[string]string{
	CategoryBreakpoints:          "addToWhitelist",
	CategoryContainerSize:        "addToWhitelist",
	CategoryLayoutDimension:      "addToWhitelist",
	CategoryResponsiveSpacing:    "addToWhitelist",
	CategoryResponsiveTypography: "addToWhitelist",
	CategoryLoginAuth:            "keepInternal",
	CategoryLayoutMode:           "keepInternal",
	CategoryOpacity:              "keepInternal",
	CategoryDeprecatedKnown:      "deprecated",
	CategoryOther:                "review",
}

// Classify returns the category of a violating name.
func Classify(name string) string {
	for _, c := range categories {
		if c.re.MatchString(name) {
			return c.name
		}
	}
	return CategoryOther
}

// CategorySummary lists the names in one category.
type CategorySummary struct {
	Category  string   `json:"category"`
	Variables []string `json:"variables"`
	Count     int      `json:"count"`
}

// Recommendation buckets names by suggested action.
type Recommendation struct {
	AddToWhitelist []string `json:"addToWhitelist"`
	KeepInternal   []string `json:"keepInternal"`
	Deprecated     []string `json:"deprecated"`
	Review         []string `json:"review"`
}

// ClassifiedVariable aggregates the violations of one name.
type ClassifiedVariable struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Occurrences int      `json:"occurrences"`
	Files       []string `json:"files"`
}

// Classification is the JSON document written by ClassifyViolations.
type Classification struct {
	GeneratedAt     string               `json:"generatedAt"`
	RunID           string               `json:"runId,omitempty"`
	TotalViolations int                  `json:"totalViolations"`
	Categories      []CategorySummary    `json:"categories"`
	Recommendation  Recommendation       `json:"recommendation"`
	Variables       []ClassifiedVariable `json:"variables"`
}

// ClassifyViolations buckets the names of the last audit report.
func ClassifyViolations(cfg Config) (*Classification, error) {
	auditPath := cfg.DocPath(AuditReportFile)
	if !exists(auditPath) {
		return nil, missingInput(auditPath)
	}
	var audit AuditReport
	if err := readJSONC(auditPath, &audit); err != nil {
		return nil, Fatal(err)
	}

	occurrences := map[string]int{} // category -> violation count
	names := map[string]map[string]bool{}
	byVar := map[string]*ClassifiedVariable{}
	files := map[string]map[string]bool{}

	for _, v := range audit.Violations {
		cat := Classify(v.Name)
		occurrences[cat]++
		if names[cat] == nil {
			names[cat] = map[string]bool{}
		}
		names[cat][v.Name] = true

		cv, ok := byVar[v.Name]
		if !ok {
			cv = &ClassifiedVariable{Name: v.Name, Category: cat}
			byVar[v.Name] = cv
			files[v.Name] = map[string]bool{}
		}
		cv.Occurrences++
		files[v.Name][v.File] = true
	}

	out := &Classification{
		GeneratedAt:     timestamp(),
		RunID:           newRunID(),
		TotalViolations: audit.Counts.Violations,
		Categories:      []CategorySummary{},
		Recommendation: Recommendation{
			AddToWhitelist: []string{},
			KeepInternal:   []string{},
			Deprecated:     []string{},
			Review:         []string{},
		},
		Variables: []ClassifiedVariable{},
	}

	cats := keysOf(names)
	sort.Strings(cats)
	for _, c := range cats {
		vars := sortedKeys(names[c])
		out.Categories = append(out.Categories, CategorySummary{Category: c, Variables: vars, Count: occurrences[c]})

		rec := &out.Recommendation
		switch recommendations[c] {
		case "addToWhitelist":
			rec.AddToWhitelist = append(rec.AddToWhitelist, vars...)
		case "keepInternal":
			rec.KeepInternal = append(rec.KeepInternal, vars...)
		case "deprecated":
			rec.Deprecated = append(rec.Deprecated, vars...)
		default:
			rec.Review = append(rec.Review, vars...)
		}
	}
	sort.Strings(out.Recommendation.AddToWhitelist)
	sort.Strings(out.Recommendation.KeepInternal)
	sort.Strings(out.Recommendation.Deprecated)
	sort.Strings(out.Recommendation.Review)

	varNames := keysOf(byVar)
	sort.Strings(varNames)
	for _, name := range varNames {
		cv := byVar[name]
		cv.Files = sortedKeys(files[name])
		out.Variables = append(out.Variables, *cv)
	}

	if err := writeJSON(cfg.DocPath(ClassifiedFile), out); err != nil {
		return nil, Fatal(err)
	}
	logger.For("classify").Infof("classification done: %d categories", len(out.Categories))
	return out, nil
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
