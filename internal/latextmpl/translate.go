package latextmpl

import (
	"errors"
	"fmt"
	"strings"
)

// Template markup. The default {{ }} delimiters collide with LaTeX braces,
// so templates use backslash commands instead:
//
//	\BLOCK{range .experience}   action
//	\VAR{.name.first}           escaped expression
//	\#{note}                    comment
//	%%% if .photo               line statement (whole line)
//	%%# note                    line comment
//
// Translate rewrites this markup into text/template actions delimited by
// Private Use Area runes, which never occur in LaTeX sources. Line numbers
// are preserved so that parse errors point at the original source.
const (
	blockOpen   = `\BLOCK{`
	varOpen     = `\VAR{`
	commentOpen = `\#{`

	lineStatement = "%%%"
	lineComment   = "%%#"

	leftDelim  = "\uE000"
	rightDelim = "\uE001"

	// escapeFuncName is appended to every \VAR{} pipeline.
	escapeFuncName = "autoescape"
)

var (
	errUnclosedTag    = errors.New("unclosed template tag")
	errUnclosedString = errors.New("unterminated string in template tag")
)

// SyntaxError is a markup error found before parsing.
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Translate converts template markup into text/template source using the
// engine's private delimiters.
func Translate(src string) (string, error) {
	if i := strings.IndexAny(src, leftDelim+rightDelim); i >= 0 {
		return "", &SyntaxError{Line: lineOf(src, i), Message: "reserved character U+E000 or U+E001 in template"}
	}
	return translateInline(translateLines(src))
}

// translateLines handles the line-oriented markers. A removed line leaves a
// template comment holding its newline so the line count is unchanged.
func translateLines(src string) string {
	const lineBreak = leftDelim + "/*\n*/" + rightDelim

	var b strings.Builder
	b.Grow(len(src))
	for _, line := range strings.SplitAfter(src, "\n") {
		nl := strings.HasSuffix(line, "\n")
		trimmed := strings.TrimLeft(line, " \t")
		switch {
		case strings.HasPrefix(trimmed, lineStatement):
			stmt := strings.TrimSpace(trimmed[len(lineStatement):])
			b.WriteString(leftDelim + " " + stmt + " " + rightDelim)
			if nl {
				b.WriteString(lineBreak)
			}
		case strings.HasPrefix(trimmed, lineComment):
			if nl {
				b.WriteString(lineBreak)
			}
		default:
			if i := strings.Index(line, lineComment); i >= 0 {
				line = line[:i]
				if nl {
					line += "\n"
				}
			}
			b.WriteString(line)
		}
	}
	return b.String()
}

func translateInline(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s) + len(s)/8)

	pos := 0
	for {
		i, marker := nextMarker(s, pos)
		if i < 0 {
			b.WriteString(s[pos:])
			return b.String(), nil
		}
		b.WriteString(s[pos:i])

		start := i + len(marker)
		end, err := matchBrace(s, start)
		if err != nil {
			return "", &SyntaxError{Line: lineOf(s, i), Message: err.Error()}
		}
		inner := s[start:end]

		switch marker {
		case blockOpen:
			b.WriteString(leftDelim + " " + inner + " " + rightDelim)
		case varOpen:
			if strings.TrimSpace(inner) == "" {
				return "", &SyntaxError{Line: lineOf(s, i), Message: `empty \VAR{}`}
			}
			b.WriteString(leftDelim + " " + inner + " | " + escapeFuncName + " " + rightDelim)
		case commentOpen:
			b.WriteString(leftDelim + "/*" + strings.Repeat("\n", strings.Count(inner, "\n")) + "*/" + rightDelim)
		}
		pos = end + 1
	}
}

// nextMarker finds the earliest opening marker in s at or after pos.
func nextMarker(s string, pos int) (int, string) {
	best, marker := -1, ""
	for _, m := range []string{blockOpen, varOpen, commentOpen} {
		if i := strings.Index(s[pos:], m); i >= 0 && (best < 0 || pos+i < best) {
			best, marker = pos+i, m
		}
	}
	return best, marker
}

// matchBrace returns the index of the brace closing the one just before
// start. Braces inside string literals are ignored.
func matchBrace(s string, start int) (int, error) {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '"':
			j, err := skipQuoted(s, i)
			if err != nil {
				return 0, err
			}
			i = j
		case '`':
			j := strings.IndexByte(s[i+1:], '`')
			if j < 0 {
				return 0, errUnclosedString
			}
			i += j + 1
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, errUnclosedTag
}

func skipQuoted(s string, i int) (int, error) {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j, nil
		case '\n':
			return 0, errUnclosedString
		}
	}
	return 0, errUnclosedString
}

func lineOf(s string, offset int) int {
	return 1 + strings.Count(s[:offset], "\n")
}
