// Package markdown converts inline Markdown found in résumé fields into
// LaTeX. Only the constructs that make sense inside a résumé line are
// rendered: emphasis, code spans, links, line breaks, short lists and
// paragraphs. Raw HTML is dropped.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/alnah/go-mkresume/internal/latextmpl"
)

// Converter turns Markdown into LaTeX using goldmark's parser.
type Converter struct {
	md goldmark.Markdown
}

// New creates a Converter with bare-URL autolinking enabled.
func New() *Converter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Linkify, // www.example.com and https:// URLs become links
		),
	)
	return &Converter{md: md}
}

// Convert renders src as LaTeX. Text is escaped with latextmpl.TeXEscape.
func (c *Converter) Convert(src string) (latextmpl.Raw, error) {
	source := []byte(src)
	doc := c.md.Parser().Parse(text.NewReader(source))

	w := &writer{source: source}
	if err := ast.Walk(doc, w.visit); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	return latextmpl.Raw(strings.TrimRight(w.buf.String(), "\n")), nil
}

// Filter is the template filter form of Convert: \VAR{.summary | markdown}.
func (c *Converter) Filter(v any) (latextmpl.Raw, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case latextmpl.Raw:
		return x, nil
	case string:
		return c.Convert(x)
	default:
		return c.Convert(fmt.Sprint(v))
	}
}

type writer struct {
	source []byte
	buf    bytes.Buffer
	blocks int
}

func (w *writer) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering && n.Parent() != nil && n.Parent().Kind() == ast.KindDocument {
		if w.blocks > 0 {
			w.buf.WriteString("\n\n")
		}
		w.blocks++
	}

	switch n := n.(type) {
	case *ast.Text:
		if entering {
			w.text(n.Segment.Value(w.source))
			switch {
			case n.HardLineBreak():
				w.buf.WriteString("\\\\\n")
			case n.SoftLineBreak():
				w.buf.WriteByte('\n')
			}
		}
	case *ast.String:
		if entering {
			w.text(n.Value)
		}
	case *ast.Emphasis:
		if entering {
			if n.Level >= 2 {
				w.buf.WriteString(`\textbf{`)
			} else {
				w.buf.WriteString(`\emph{`)
			}
		} else {
			w.buf.WriteByte('}')
		}
	case *ast.CodeSpan:
		if entering {
			w.buf.WriteString(`\texttt{`)
		} else {
			w.buf.WriteByte('}')
		}
	case *ast.Link:
		if entering {
			w.buf.WriteString(`\href{` + escapeURL(n.Destination) + `}{`)
		} else {
			w.buf.WriteByte('}')
		}
	case *ast.AutoLink:
		if entering {
			url := n.URL(w.source)
			if n.AutoLinkType == ast.AutoLinkEmail && !bytes.HasPrefix(url, []byte("mailto:")) {
				url = append([]byte("mailto:"), url...)
			}
			w.buf.WriteString(`\href{` + escapeURL(url) + `}{`)
			w.text(n.Label(w.source))
			w.buf.WriteByte('}')
		}
		return ast.WalkSkipChildren, nil
	case *ast.Heading:
		if entering {
			w.buf.WriteString(`\textbf{`)
		} else {
			w.buf.WriteByte('}')
		}
	case *ast.List:
		env := "itemize"
		if n.IsOrdered() {
			env = "enumerate"
		}
		if entering {
			w.buf.WriteString(`\begin{` + env + "}\n")
		} else {
			w.buf.WriteString(`\end{` + env + `}`)
		}
	case *ast.ListItem:
		if entering {
			w.buf.WriteString(`\item `)
		} else {
			w.buf.WriteByte('\n')
		}
	case *ast.CodeBlock, *ast.FencedCodeBlock:
		if entering {
			w.codeBlock(n)
		}
		return ast.WalkSkipChildren, nil
	case *ast.RawHTML, *ast.HTMLBlock:
		return ast.WalkSkipChildren, nil
	case *ast.ThematicBreak:
		if entering {
			w.buf.WriteString(`\medskip\hrule\medskip`)
		}
	}
	return ast.WalkContinue, nil
}

func (w *writer) text(b []byte) {
	w.buf.WriteString(latextmpl.TeXEscape(string(b)))
}

func (w *writer) codeBlock(n ast.Node) {
	lines := n.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(w.source)), "\n")
		parts = append(parts, latextmpl.TeXEscape(line))
	}
	w.buf.WriteString(`\texttt{` + strings.Join(parts, "\\\\\n") + `}`)
}

// escapeURL escapes the characters hyperref cannot take verbatim in \href.
func escapeURL(b []byte) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `#`, `\#`, `{`, `\{`, `}`, `\}`).Replace(string(b))
}
