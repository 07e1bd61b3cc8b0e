// Package csstoken finds custom-property declarations and var() usages in CSS
// source using the tdewolff lexer.
//
// It is not a parser: declarations are recognised as a custom property name
// followed by a colon, and usages as a custom property name directly inside
// var(. That is enough for linting design tokens and keeps positions exact.
package csstoken

import (
	"bytes"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Declaration is a custom property definition: "--pli-gap: 1rem;".
type Declaration struct {
	Name   string
	Value  string
	Line   int // 1-based
	Column int // 1-based, start of the name
	Offset int // byte offset of the name

	// LeadingComment is the comment block directly before the name,
	// separated only by whitespace.
	LeadingComment string
	// TrailingComment holds comments inside the value and a comment
	// following the terminating semicolon on the same line.
	TrailingComment string
}

// HasMarker reports whether the leading or trailing comment contains marker
// (case-insensitive).
func (d Declaration) HasMarker(marker string) bool {
	if marker == "" {
		return false
	}
	m := strings.ToLower(marker)
	return strings.Contains(strings.ToLower(d.LeadingComment), m) ||
		strings.Contains(strings.ToLower(d.TrailingComment), m)
}

// Usage is a var() reference: "var(--pli-gap)" or "var(--pli-gap, 8px)".
type Usage struct {
	Name   string
	Line   int
	Column int
	Offset int
}

// Result holds everything found in one source.
type Result struct {
	Declarations []Declaration
	Usages       []Usage
}

// scanner carries lexer position and the small amount of state needed to
// tell declarations from usages.
type scanner struct {
	prefix string

	line, col, offset int

	res Result

	pendingComment string // candidate leading comment

	// candidate declaration: name seen, waiting for ':'
	candidate *Declaration

	// open declaration value
	current *Declaration
	value   strings.Builder
	depth   int

	// last finished declaration, eligible for a same-line trailing comment
	trailing     int
	trailingLine int

	// var( tracking
	varOpen    bool
	varPending bool
}

// Scan tokenises src and returns declarations and usages whose names start
// with prefix. An empty prefix keeps every custom property.
func Scan(src []byte, prefix string) Result {
	s := &scanner{prefix: prefix, line: 1, col: 1, trailing: -1}
	lexer := css.NewLexer(parse.NewInputString(string(src)))

	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			// EOF or a lexer error: close whatever is open
			s.finish()
			break
		}
		line, col, offset := s.line, s.col, s.offset
		s.advance(data)
		s.token(tt, string(data), line, col, offset)
	}

	return s.res
}

// advance moves the position past data.
func (s *scanner) advance(data []byte) {
	s.offset += len(data)
	if n := bytes.Count(data, []byte{'\n'}); n > 0 {
		s.line += n
		s.col = len(data) - bytes.LastIndexByte(data, '\n')
		return
	}
	s.col += len(data)
}

func (s *scanner) token(tt css.TokenType, text string, line, col, offset int) {
	switch tt {
	case css.WhitespaceToken:
		if s.current != nil {
			s.value.WriteString(text)
		}
		return

	case css.CommentToken:
		if s.current != nil {
			s.current.TrailingComment = joinComment(s.current.TrailingComment, text)
			return
		}
		if s.trailing >= 0 && line == s.trailingLine {
			d := &s.res.Declarations[s.trailing]
			d.TrailingComment = joinComment(d.TrailingComment, text)
			s.trailing = -1
			return
		}
		s.pendingComment = text
		return
	}

	// every significant token ends the trailing-comment window
	s.trailing = -1

	if isCustomName(tt, text) {
		if s.varOpen {
			s.varOpen = false
			if s.keep(text) {
				s.res.Usages = append(s.res.Usages, Usage{Name: text, Line: line, Column: col, Offset: offset})
			}
			if s.current != nil {
				s.value.WriteString(text)
			}
			s.pendingComment = ""
			return
		}
		if s.current == nil {
			s.candidate = &Declaration{
				Name:           text,
				Line:           line,
				Column:         col,
				Offset:         offset,
				LeadingComment: s.pendingComment,
			}
			s.pendingComment = ""
			return
		}
	}

	s.pendingComment = ""
	s.trackVar(tt, text)

	if s.candidate != nil {
		cand := s.candidate
		s.candidate = nil
		if tt == css.ColonToken {
			s.current = cand
			s.value.Reset()
			s.depth = 0
			return
		}
	}

	if s.current == nil {
		return
	}

	switch tt {
	case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
		s.depth++
	case css.RightParenthesisToken, css.RightBracketToken:
		if s.depth > 0 {
			s.depth--
		}
	case css.LeftBraceToken:
		s.depth++
	case css.SemicolonToken:
		if s.depth == 0 {
			s.closeValue(line)
			return
		}
	case css.RightBraceToken:
		if s.depth == 0 {
			s.closeValue(line)
			return
		}
		s.depth--
	}
	s.value.WriteString(text)
}

// trackVar notices "var(" so the next custom name is read as a usage.
func (s *scanner) trackVar(tt css.TokenType, text string) {
	switch tt {
	case css.FunctionToken:
		name := strings.TrimSuffix(text, "(")
		if strings.EqualFold(name, "var") {
			if strings.HasSuffix(text, "(") {
				s.varOpen = true
			} else {
				s.varPending = true
			}
			return
		}
	case css.IdentToken:
		if strings.EqualFold(text, "var") {
			s.varPending = true
			return
		}
	case css.LeftParenthesisToken:
		if s.varPending {
			s.varPending = false
			s.varOpen = true
			return
		}
	}
	s.varOpen = false
	s.varPending = false
}

func (s *scanner) closeValue(line int) {
	d := s.current
	s.current = nil
	d.Value = strings.TrimSpace(s.value.String())
	s.value.Reset()
	if !s.keep(d.Name) {
		return
	}
	s.res.Declarations = append(s.res.Declarations, *d)
	s.trailing = len(s.res.Declarations) - 1
	s.trailingLine = line
}

func (s *scanner) finish() {
	if s.current != nil && strings.TrimSpace(s.value.String()) != "" {
		s.closeValue(s.line)
	}
	s.current = nil
	s.candidate = nil
}

func joinComment(prev, text string) string {
	if prev == "" {
		return text
	}
	return prev + " " + text
}

func (s *scanner) keep(name string) bool {
	return s.prefix == "" || strings.HasPrefix(name, s.prefix)
}

// isCustomName accepts both token kinds the lexer may use for "--name".
func isCustomName(tt css.TokenType, text string) bool {
	if tt == css.CustomPropertyNameToken {
		return true
	}
	return tt == css.IdentToken && strings.HasPrefix(text, "--") && len(text) > 2
}

// Lines splits src into lines for source display and same-line checks.
func Lines(src []byte) []string {
	return strings.Split(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n")
}
