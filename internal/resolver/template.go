package resolver

import (
	"regexp"
)

// Coordinate binds one dimension name to a value
type Coordinate struct {
	Dim   string
	Value string
}

type tokenPatterns struct {
	withValue *regexp.Regexp
	elided    *regexp.Regexp
	plain     *regexp.Regexp
}

func compileToken(dim string) tokenPatterns {
	token := regexp.QuoteMeta("${" + dim + "}")
	return tokenPatterns{
		withValue: regexp.MustCompile(`\??` + token),
		elided:    regexp.MustCompile(`.\?` + token),
		plain:     regexp.MustCompile(token),
	}
}

// Template is a name template with the token patterns of its dimensions
// compiled once
type Template struct {
	format string
	tokens map[string]tokenPatterns
}

// CompileTemplate prepares format for repeated substitution over dims
func CompileTemplate(format string, dims []string) *Template {
	t := &Template{format: format, tokens: make(map[string]tokenPatterns, len(dims))}
	for _, d := range dims {
		if _, ok := t.tokens[d]; !ok {
			t.tokens[d] = compileToken(d)
		}
	}
	return t
}

// Format returns the raw template
func (t *Template) Format() string {
	return t.format
}

// Fill substitutes one value per dimension, in the order given. A
// dimension the template was not compiled for is compiled on the fly.
func (t *Template) Fill(coords []Coordinate) string {
	name := t.format
	for _, c := range coords {
		p, ok := t.tokens[c.Dim]
		if !ok {
			p = compileToken(c.Dim)
		}
		if c.Value != "" {
			name = p.withValue.ReplaceAllLiteralString(name, c.Value)
			continue
		}
		name = p.elided.ReplaceAllLiteralString(name, "")
		name = p.plain.ReplaceAllLiteralString(name, "")
	}
	return name
}

// Substitute fills the name template with one value per dimension, in the
// order given. A template token is ${name}; ?${name} marks a token whose
// preceding character is dropped together with it when the value is empty.
func Substitute(template string, coords []Coordinate) string {
	return (&Template{format: template}).Fill(coords)
}
