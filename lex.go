package macs

// TokenType is the type of token (identifier, operator, literal, etc.).
type TokenType string

// Definition of token types
const (
	// Keywords
	VAR            TokenType = "VAR"
	FUNC           TokenType = "FUNC"
	INT_KEYWORD    TokenType = "INT_KEYWORD"
	FLOAT_KEYWORD  TokenType = "FLOAT_KEYWORD"
	CHAR_KEYWORD   TokenType = "CHAR_KEYWORD"
	BOOL_KEYWORD   TokenType = "BOOL_KEYWORD"
	STRING_KEYWORD TokenType = "STRING_KEYWORD"
	IF             TokenType = "IF"
	ELSE           TokenType = "ELSE"
	WHILE          TokenType = "WHILE"
	FOR            TokenType = "FOR"
	RETURN         TokenType = "RETURN"
	PRINT          TokenType = "PRINT"
	INPUT          TokenType = "INPUT"
	TRUE           TokenType = "TRUE"
	FALSE          TokenType = "FALSE"

	// Operators
	ASSIGN        TokenType = "ASSIGN"
	PLUS          TokenType = "PLUS"
	MINUS         TokenType = "MINUS"
	MULTIPLY      TokenType = "MULTIPLY"
	DIVIDE        TokenType = "DIVIDE"
	MODULO        TokenType = "MODULO"
	EQUALS        TokenType = "EQUALS"
	NOT_EQUALS    TokenType = "NOT_EQUALS"
	LESS_THAN     TokenType = "LESS_THAN"
	GREATER_THAN  TokenType = "GREATER_THAN"
	LESS_EQUAL    TokenType = "LESS_EQUAL"
	GREATER_EQUAL TokenType = "GREATER_EQUAL"
	AND           TokenType = "AND"
	OR            TokenType = "OR"
	NOT           TokenType = "NOT"

	// Delimiters
	OPEN_PAREN  TokenType = "OPEN_PAREN"
	CLOSE_PAREN TokenType = "CLOSE_PAREN"
	OPEN_BRACE  TokenType = "OPEN_BRACE"
	CLOSE_BRACE TokenType = "CLOSE_BRACE"
	SEMICOLON   TokenType = "SEMICOLON"
	COLON       TokenType = "COLON"
	COMMA       TokenType = "COMMA"

	// Identifiers + literals
	IDENTIFIER     TokenType = "IDENTIFIER"
	INT_LITERAL    TokenType = "INT_LITERAL"
	FLOAT_LITERAL  TokenType = "FLOAT_LITERAL"
	CHAR_LITERAL   TokenType = "CHAR_LITERAL"
	STRING_LITERAL TokenType = "STRING_LITERAL"

	// Special tokens
	EOF     TokenType = "EOF"
	UNKNOWN TokenType = "UNKNOWN"
)

// Lexical problems attached to UNKNOWN tokens.
const (
	problemUnexpectedChar   = "unexpected character"
	problemUnterminatedStr  = "unterminated string literal"
	problemBadChar          = "invalid character literal"
	problemBadFloat         = "malformed float literal: expected digit after '.'"
	problemUnterminatedNote = "unterminated block comment"
	problemBadOperator      = "invalid operator"
)

var keywords = map[string]TokenType{
	"var":    VAR,
	"func":   FUNC,
	"int":    INT_KEYWORD,
	"float":  FLOAT_KEYWORD,
	"char":   CHAR_KEYWORD,
	"bool":   BOOL_KEYWORD,
	"string": STRING_KEYWORD,
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"for":    FOR,
	"return": RETURN,
	"print":  PRINT,
	"input":  INPUT,
	"true":   TRUE,
	"false":  FALSE,
}

// Token is a single lexical unit. Line and Column are 1-based and point at
// the token's first byte.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int

	// Problem describes why an UNKNOWN token was produced. Empty otherwise.
	Problem string
}

// Lexer turns source text into tokens on demand.
type Lexer struct {
	input  string
	pos    int
	line   int
	column int
}

// NewLexer creates a lexer positioned at the start of input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, column: 1}
}

// Tokenize scans the whole input and returns every token including the
// trailing EOF.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

// peek returns the byte offset bytes ahead of the cursor, or 0 past the end.
func (l *Lexer) peek(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) advance() {
	if l.atEnd() {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
}

// NextToken scans and returns the next token. Once the input is exhausted
// every call returns an EOF token.
func (l *Lexer) NextToken() Token {
	if tok, ok := l.skipWhitespaceAndComments(); !ok {
		return tok
	}

	line, col := l.line, l.column
	if l.atEnd() {
		return Token{Type: EOF, Line: line, Column: col}
	}

	c := l.peek(0)
	simple := func(typ TokenType, lit string) Token {
		for range lit {
			l.advance()
		}
		return Token{Type: typ, Literal: lit, Line: line, Column: col}
	}

	switch c {
	case '=':
		if l.peek(1) == '=' {
			return simple(EQUALS, "==")
		}
		return simple(ASSIGN, "=")
	case '!':
		if l.peek(1) == '=' {
			return simple(NOT_EQUALS, "!=")
		}
		return simple(NOT, "!")
	case '<':
		if l.peek(1) == '=' {
			return simple(LESS_EQUAL, "<=")
		}
		return simple(LESS_THAN, "<")
	case '>':
		if l.peek(1) == '=' {
			return simple(GREATER_EQUAL, ">=")
		}
		return simple(GREATER_THAN, ">")
	case '&':
		if l.peek(1) == '&' {
			return simple(AND, "&&")
		}
		tok := simple(UNKNOWN, "&")
		tok.Problem = problemBadOperator
		return tok
	case '|':
		if l.peek(1) == '|' {
			return simple(OR, "||")
		}
		tok := simple(UNKNOWN, "|")
		tok.Problem = problemBadOperator
		return tok
	case '+':
		return simple(PLUS, "+")
	case '-':
		return simple(MINUS, "-")
	case '*':
		return simple(MULTIPLY, "*")
	case '/':
		return simple(DIVIDE, "/")
	case '%':
		return simple(MODULO, "%")
	case '(':
		return simple(OPEN_PAREN, "(")
	case ')':
		return simple(CLOSE_PAREN, ")")
	case '{':
		return simple(OPEN_BRACE, "{")
	case '}':
		return simple(CLOSE_BRACE, "}")
	case ';':
		return simple(SEMICOLON, ";")
	case ':':
		return simple(COLON, ":")
	case ',':
		return simple(COMMA, ",")
	case '"':
		return l.readString(line, col)
	case '\'':
		return l.readChar(line, col)
	}

	switch {
	case isDigit(c):
		return l.readNumber(line, col)
	case isLetter(c):
		lit := l.readIdentifier()
		if typ, ok := keywords[lit]; ok {
			return Token{Type: typ, Literal: lit, Line: line, Column: col}
		}
		return Token{Type: IDENTIFIER, Literal: lit, Line: line, Column: col}
	}

	l.advance()
	return Token{Type: UNKNOWN, Literal: string(c), Line: line, Column: col, Problem: problemUnexpectedChar}
}

// skipWhitespaceAndComments skips blanks, line comments and block comments.
// It reports false together with an UNKNOWN token when a block comment runs
// to the end of the input.
func (l *Lexer) skipWhitespaceAndComments() (Token, bool) {
	for !l.atEnd() {
		switch c := l.peek(0); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.peek(1) == '/':
			for !l.atEnd() && l.peek(0) != '\n' {
				l.advance()
			}
		case c == '/' && l.peek(1) == '*':
			line, col := l.line, l.column
			l.advance()
			l.advance()
			closed := false
			for !l.atEnd() {
				if l.peek(0) == '*' && l.peek(1) == '/' {
					l.advance()
					l.advance()
					closed = true
					break
				}
				l.advance()
			}
			if !closed {
				return Token{Type: UNKNOWN, Literal: "/*", Line: line, Column: col, Problem: problemUnterminatedNote}, false
			}
		default:
			return Token{}, true
		}
	}
	return Token{}, true
}

func (l *Lexer) readString(line, col int) Token {
	l.advance() // opening "
	start := l.pos
	for !l.atEnd() && l.peek(0) != '"' {
		l.advance()
	}
	lit := l.input[start:l.pos]
	if l.atEnd() {
		return Token{Type: UNKNOWN, Literal: lit, Line: line, Column: col, Problem: problemUnterminatedStr}
	}
	l.advance() // closing "
	return Token{Type: STRING_LITERAL, Literal: lit, Line: line, Column: col}
}

// readChar scans 'x'. Anything other than exactly one byte between the
// quotes is UNKNOWN.
func (l *Lexer) readChar(line, col int) Token {
	l.advance() // opening '
	if l.atEnd() || l.peek(0) == '\'' {
		if !l.atEnd() {
			l.advance()
		}
		return Token{Type: UNKNOWN, Literal: "", Line: line, Column: col, Problem: problemBadChar}
	}
	ch := l.peek(0)
	l.advance()
	if l.peek(0) != '\'' || l.atEnd() {
		return Token{Type: UNKNOWN, Literal: string(ch), Line: line, Column: col, Problem: problemBadChar}
	}
	l.advance() // closing '
	return Token{Type: CHAR_LITERAL, Literal: string(ch), Line: line, Column: col}
}

func (l *Lexer) readNumber(line, col int) Token {
	start := l.pos
	for isDigit(l.peek(0)) {
		l.advance()
	}
	if l.peek(0) != '.' {
		return Token{Type: INT_LITERAL, Literal: l.input[start:l.pos], Line: line, Column: col}
	}
	l.advance() // '.'
	if !isDigit(l.peek(0)) {
		return Token{Type: UNKNOWN, Literal: l.input[start:l.pos], Line: line, Column: col, Problem: problemBadFloat}
	}
	for isDigit(l.peek(0)) {
		l.advance()
	}
	return Token{Type: FLOAT_LITERAL, Literal: l.input[start:l.pos], Line: line, Column: col}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.peek(0)) || isDigit(l.peek(0)) {
		l.advance()
	}
	return l.input[start:l.pos]
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
