// Package sexy reads the s-expression patterns used by the markdown test
// suites and matches them against rendered syntax trees.
package sexy

import (
	"fmt"
	"strings"
	"unicode"
)

// NodeType represents the type of a Node
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeInteger
	NodeEllipsis
	NodeList
)

func (t NodeType) String() string {
	switch t {
	case NodeSymbol:
		return "symbol"
	case NodeString:
		return "string"
	case NodeInteger:
		return "integer"
	case NodeEllipsis:
		return "ellipsis"
	case NodeList:
		return "list"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// Node represents any Sexy datum
type Node struct {
	Type  NodeType
	Text  string  // NodeSymbol, NodeString, NodeInteger
	Items []*Node // NodeList
}

func (n *Node) String() string {
	switch n.Type {
	case NodeSymbol, NodeInteger:
		return n.Text
	case NodeString:
		escaped := strings.ReplaceAll(n.Text, "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
		return "\"" + escaped + "\""
	case NodeEllipsis:
		return "..."
	case NodeList:
		parts := make([]string, len(n.Items))
		for i, item := range n.Items {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return "?"
	}
}

// Match reports whether actual fits pattern. An ellipsis matches any single
// datum, and inside a list it matches any run of items (including none).
// The error describes the first mismatch.
func Match(pattern, actual *Node) error {
	return match(pattern, actual, "root")
}

func match(pattern, actual *Node, path string) error {
	if pattern.Type == NodeEllipsis {
		return nil
	}
	if pattern.Type != actual.Type {
		return fmt.Errorf("at %s: expected %s %s, got %s %s", path, pattern.Type, pattern, actual.Type, actual)
	}
	if pattern.Type != NodeList {
		if pattern.Text != actual.Text {
			return fmt.Errorf("at %s: expected %s, got %s", path, pattern, actual)
		}
		return nil
	}
	if !matchItems(pattern.Items, actual.Items, path) {
		return fmt.Errorf("at %s: expected %s, got %s", path, pattern, actual)
	}
	return nil
}

func matchItems(patterns, actuals []*Node, path string) bool {
	if len(patterns) == 0 {
		return len(actuals) == 0
	}
	if patterns[0].Type == NodeEllipsis {
		for skip := 0; skip <= len(actuals); skip++ {
			if matchItems(patterns[1:], actuals[skip:], path) {
				return true
			}
		}
		return false
	}
	if len(actuals) == 0 {
		return false
	}
	if match(patterns[0], actuals[0], path) != nil {
		return false
	}
	return matchItems(patterns[1:], actuals[1:], path)
}

// Parse reads a single datum. Comments run from ';' to the end of the line.
func Parse(input string) (*Node, error) {
	r := &reader{src: input}
	n, err := r.datum()
	if err != nil {
		return nil, err
	}
	r.skip()
	if r.pos < len(r.src) {
		return nil, fmt.Errorf("expected EOF but got %q at offset %d", r.src[r.pos], r.pos)
	}
	return n, nil
}

type reader struct {
	src string
	pos int
}

// skip advances past whitespace and comments.
func (r *reader) skip() {
	for r.pos < len(r.src) {
		switch c := r.src[r.pos]; {
		case c == ';':
			for r.pos < len(r.src) && r.src[r.pos] != '\n' {
				r.pos++
			}
		case unicode.IsSpace(rune(c)):
			r.pos++
		default:
			return
		}
	}
}

func (r *reader) datum() (*Node, error) {
	r.skip()
	if r.pos >= len(r.src) {
		return nil, fmt.Errorf("unexpected token: EOF")
	}
	rest := r.src[r.pos:]
	c := rest[0]
	switch {
	case c == '(':
		return r.list()
	case c == ')':
		return nil, fmt.Errorf("unexpected token: ')' at offset %d", r.pos)
	case c == '"':
		return r.str()
	case strings.HasPrefix(rest, "..."):
		r.pos += 3
		return &Node{Type: NodeEllipsis}, nil
	case isDigit(c) || ((c == '-' || c == '+') && len(rest) > 1 && isDigit(rest[1])):
		return &Node{Type: NodeInteger, Text: r.span(isDigit, 1)}, nil
	case isSymbolStart(c):
		return &Node{Type: NodeSymbol, Text: r.span(isSymbolChar, 0)}, nil
	default:
		return nil, fmt.Errorf("unexpected character '%c' at offset %d", c, r.pos)
	}
}

// span consumes skip bytes unconditionally and then every byte accepted by
// ok, returning the consumed text.
func (r *reader) span(ok func(byte) bool, skip int) string {
	start := r.pos
	r.pos += skip
	for r.pos < len(r.src) && ok(r.src[r.pos]) {
		r.pos++
	}
	return r.src[start:r.pos]
}

func (r *reader) list() (*Node, error) {
	r.pos++
	items := []*Node{}
	for {
		r.skip()
		if r.pos >= len(r.src) {
			return nil, fmt.Errorf("expected ')' but got EOF")
		}
		if r.src[r.pos] == ')' {
			r.pos++
			return &Node{Type: NodeList, Items: items}, nil
		}
		item, err := r.datum()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

// str reads a quoted string. Only \" and \\ are escapes.
func (r *reader) str() (*Node, error) {
	r.pos++
	var b strings.Builder
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		r.pos++
		switch c {
		case '"':
			return &Node{Type: NodeString, Text: b.String()}, nil
		case '\\':
			if r.pos >= len(r.src) {
				return nil, fmt.Errorf("unterminated string")
			}
			esc := r.src[r.pos]
			if esc != '"' && esc != '\\' {
				return nil, fmt.Errorf("invalid escape sequence: \\%c", esc)
			}
			b.WriteByte(esc)
			r.pos++
		default:
			b.WriteByte(c)
		}
	}
	return nil, fmt.Errorf("unterminated string")
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isSymbolStart(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_' || c == '+' || c == '-'
}

func isSymbolChar(c byte) bool {
	return isSymbolStart(c) || isDigit(c)
}
