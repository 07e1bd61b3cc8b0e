// Package minify shrinks stylesheets with one of several engines.
package minify

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dchest/cssmin"
	tdminify "github.com/tdewolff/minify/v2"
	tdcss "github.com/tdewolff/minify/v2/css"
)

// Engine names accepted by Minify.
const (
	EngineTextual  = "textual"
	EngineTdewolff = "tdewolff"
	EngineCSSMin   = "cssmin"
)

// Func minifies one stylesheet.
type Func func(src []byte) ([]byte, error)

var engines = map[string]Func{
	EngineTextual:  textualFunc,
	EngineTdewolff: tdewolffFunc,
	EngineCSSMin:   cssminFunc,
}

// Engines lists the registered engine names.
func Engines() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the engine registered under name. An empty name selects
// the textual engine.
func Lookup(name string) (Func, error) {
	if name == "" {
		name = EngineTextual
	}
	fn, ok := engines[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown minify engine %q (valid: %s)", name, strings.Join(Engines(), ", "))
	}
	return fn, nil
}

// Minify runs src through the named engine.
func Minify(engine string, src []byte) ([]byte, error) {
	fn, err := Lookup(engine)
	if err != nil {
		return nil, err
	}
	return fn(src)
}

var (
	commentRe = regexp.MustCompile(`/\*(?:\*/|[^!][\s\S]*?\*/)`)
	spaceRe   = regexp.MustCompile(`\s+`)
	punctRe   = regexp.MustCompile(`\s*([:;{},>])\s*`)
)

// Textual is the regex minifier the PLI bundles have always shipped with.
// Comments other than /*! ones are removed and whitespace is collapsed
// and trimmed around punctuation.
//
// It does not understand strings, so content like "a : b" loses its spaces.
func Textual(css string) string {
	css = commentRe.ReplaceAllString(css, "")
	css = spaceRe.ReplaceAllString(css, " ")
	css = punctRe.ReplaceAllString(css, "$1")
	css = strings.ReplaceAll(css, ";}", "}")
	return strings.TrimSpace(css)
}

func textualFunc(src []byte) ([]byte, error) {
	return []byte(Textual(string(src))), nil
}

var tdewolff = func() *tdminify.M {
	m := tdminify.New()
	m.AddFunc("text/css", tdcss.Minify)
	return m
}()

func tdewolffFunc(src []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := tdewolff.Minify("text/css", &out, bytes.NewReader(src)); err != nil {
		return nil, fmt.Errorf("tdewolff minify: %w", err)
	}
	return out.Bytes(), nil
}

func cssminFunc(src []byte) ([]byte, error) {
	return cssmin.Minify(src), nil
}
