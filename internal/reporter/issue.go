package reporter

// Issue is one finding in golangci-lint shape.
type Issue struct {
	FromLinter  string   `json:"FromLinter"`
	Text        string   `json:"Text"`
	Severity    string   `json:"Severity"`
	SourceLines []string `json:"SourceLines"`
	Pos         IssuePos `json:"Pos"`
}

// IssuePos is a 1-based source location.
type IssuePos struct {
	Filename string `json:"Filename"`
	Line     int    `json:"Line"`
	Column   int    `json:"Column"`
}

// Severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = ""
)

// Linter names printed after each issue.
const (
	LinterTokenAudit    = "tokenaudit"
	LinterDeprecated    = "deprecated"
	LinterUnused        = "unusedtokens"
	LinterLinks         = "csslinks"
	LinterWhitelistDiff = "whitelistdiff"
)

// Issue texts.
const (
	IssueNotWhitelisted  = "custom property %s is not in the whitelist"
	IssueDeprecatedInUse = "deprecated custom property %s is still declared"
	IssueUnusedToken     = "token %s is defined but never used"
	IssueHashedLink      = "direct link to hashed bundle %s"
	IssueUnjustifiedDrop = "token %s was removed from the whitelist without being deprecated first"
)
