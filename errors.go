package macs

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseError reports the first grammar violation found by the parser.
type ParseError struct {
	Token   Token
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error: %s at line %d, column %d: token %q (%s)",
		e.Message, e.Token.Line, e.Token.Column, e.Token.Literal, e.Token.Type)
}

// Pos returns the line and column of the offending token.
func (e *ParseError) Pos() (line, col int) {
	return e.Token.Line, e.Token.Column
}

// Frame renders the offending source line with a caret under the token.
func (e *ParseError) Frame(source string) string {
	return formatCodeFrame(source, e.Token.Line, e.Token.Column)
}

// SemanticError reports the first rule violation found by the analyzer.
// Token is nil when the violation has no single source location.
type SemanticError struct {
	Token   *Token
	Message string
}

func (e *SemanticError) Error() string {
	if e.Token == nil {
		return "semantic error: " + e.Message
	}
	return fmt.Sprintf("semantic error: %s at line %d, column %d: token %q (%s)",
		e.Message, e.Token.Line, e.Token.Column, e.Token.Literal, e.Token.Type)
}

// Pos returns the line and column of the offending token, or zeros when the
// error has no location.
func (e *SemanticError) Pos() (line, col int) {
	if e.Token == nil {
		return 0, 0
	}
	return e.Token.Line, e.Token.Column
}

// Frame renders the offending source line with a caret under the token.
func (e *SemanticError) Frame(source string) string {
	line, col := e.Pos()
	return formatCodeFrame(source, line, col)
}

func semanticErrorf(tok Token, format string, args ...any) *SemanticError {
	return &SemanticError{Token: &tok, Message: fmt.Sprintf(format, args...)}
}

// formatCodeFrame renders one line of source with a caret under column.
// Columns count bytes like token positions do. The caret padding has one
// blank per rune and keeps tabs, so it lines up with the text above it.
func formatCodeFrame(source string, line, column int) string {
	if source == "" || line <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	text := strings.TrimRight(lines[line-1], "\r")
	column = min(max(column, 1), len(text)+1)

	label := strconv.Itoa(line)
	var b strings.Builder
	fmt.Fprintf(&b, "  --> line %d, column %d\n", line, column)
	fmt.Fprintf(&b, " %s | %s\n", label, text)
	fmt.Fprintf(&b, " %s | %s^", strings.Repeat(" ", len(label)), caretPad(text[:column-1]))
	return b.String()
}

// caretPad returns blanks as wide as prefix when printed.
func caretPad(prefix string) string {
	var b strings.Builder
	for i := 0; i < len(prefix); i++ {
		switch c := prefix[i]; {
		case c == '\t':
			b.WriteByte('\t')
		case utf8.RuneStart(c):
			b.WriteByte(' ')
		}
	}
	return b.String()
}
