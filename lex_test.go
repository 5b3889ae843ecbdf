package macs

import (
	"testing"

	"github.com/nalgeon/be"
)

func tokenTypes(toks []Token) []TokenType {
	types := make([]TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestIntLiteral(t *testing.T) {
	toks := Tokenize("12345")
	be.Equal(t, len(toks), 2)
	be.Equal(t, toks[0].Type, INT_LITERAL)
	be.Equal(t, toks[0].Literal, "12345")
	be.Equal(t, toks[1].Type, EOF)
}

func TestFloatLiteral(t *testing.T) {
	toks := Tokenize("123.45")
	be.Equal(t, toks[0].Type, FLOAT_LITERAL)
	be.Equal(t, toks[0].Literal, "123.45")
}

func TestMalformedFloat(t *testing.T) {
	toks := Tokenize("1.x")
	be.Equal(t, toks[0].Type, UNKNOWN)
	be.Equal(t, toks[0].Literal, "1.")
	be.Equal(t, toks[0].Problem, problemBadFloat)
	// Scanning resumes after the bad literal.
	be.Equal(t, toks[1].Type, IDENTIFIER)
}

func TestIdentifier(t *testing.T) {
	toks := Tokenize("foo_Bar9")
	be.Equal(t, toks[0].Type, IDENTIFIER)
	be.Equal(t, toks[0].Literal, "foo_Bar9")
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"var", VAR},
		{"func", FUNC},
		{"int", INT_KEYWORD},
		{"float", FLOAT_KEYWORD},
		{"char", CHAR_KEYWORD},
		{"bool", BOOL_KEYWORD},
		{"string", STRING_KEYWORD},
		{"if", IF},
		{"else", ELSE},
		{"while", WHILE},
		{"for", FOR},
		{"return", RETURN},
		{"print", PRINT},
		{"input", INPUT},
		{"true", TRUE},
		{"false", FALSE},
	}

	for _, tt := range tests {
		toks := Tokenize(tt.input)
		be.Equal(t, toks[0].Type, tt.typ)
		be.Equal(t, toks[0].Literal, tt.input)
	}
}

func TestKeywordPrefixIsIdentifier(t *testing.T) {
	toks := Tokenize("variable iffy Int")
	be.Equal(t, tokenTypes(toks), []TokenType{IDENTIFIER, IDENTIFIER, IDENTIFIER, EOF})
}

func TestOperators(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"=", ASSIGN},
		{"+", PLUS},
		{"-", MINUS},
		{"*", MULTIPLY},
		{"/", DIVIDE},
		{"%", MODULO},
		{"==", EQUALS},
		{"!=", NOT_EQUALS},
		{"<", LESS_THAN},
		{">", GREATER_THAN},
		{"<=", LESS_EQUAL},
		{">=", GREATER_EQUAL},
		{"&&", AND},
		{"||", OR},
		{"!", NOT},
	}

	for _, tt := range tests {
		toks := Tokenize(tt.input)
		be.Equal(t, toks[0].Type, tt.typ)
		be.Equal(t, toks[0].Literal, tt.input)
		be.Equal(t, toks[1].Type, EOF)
	}
}

func TestDelimiters(t *testing.T) {
	toks := Tokenize("(){};:,")
	be.Equal(t, tokenTypes(toks), []TokenType{
		OPEN_PAREN, CLOSE_PAREN, OPEN_BRACE, CLOSE_BRACE, SEMICOLON, COLON, COMMA, EOF,
	})
}

func TestLongestMatch(t *testing.T) {
	toks := Tokenize("a<=b==c!d")
	be.Equal(t, tokenTypes(toks), []TokenType{
		IDENTIFIER, LESS_EQUAL, IDENTIFIER, EQUALS, IDENTIFIER, NOT, IDENTIFIER, EOF,
	})
}

func TestStringLiteral(t *testing.T) {
	toks := Tokenize(`"hello world"`)
	be.Equal(t, toks[0].Type, STRING_LITERAL)
	be.Equal(t, toks[0].Literal, "hello world")
}

func TestStringLiteralKeepsBackslash(t *testing.T) {
	toks := Tokenize(`"a\nb"`)
	be.Equal(t, toks[0].Literal, `a\nb`)
}

func TestUnterminatedString(t *testing.T) {
	toks := Tokenize(`"oops`)
	be.Equal(t, toks[0].Type, UNKNOWN)
	be.Equal(t, toks[0].Problem, problemUnterminatedStr)
	be.Equal(t, toks[1].Type, EOF)
}

func TestCharLiteral(t *testing.T) {
	toks := Tokenize("'a'")
	be.Equal(t, toks[0].Type, CHAR_LITERAL)
	be.Equal(t, toks[0].Literal, "a")
}

func TestBadCharLiterals(t *testing.T) {
	for _, input := range []string{"''", "'ab'", "'a", "'"} {
		toks := Tokenize(input)
		be.Equal(t, toks[0].Type, UNKNOWN)
		be.Equal(t, toks[0].Problem, problemBadChar)
	}
}

func TestMultibyteCharIsUnknown(t *testing.T) {
	toks := Tokenize("'é'")
	be.Equal(t, toks[0].Type, UNKNOWN)
}

func TestLoneAmpersandAndPipe(t *testing.T) {
	for _, input := range []string{"&", "|"} {
		toks := Tokenize(input)
		be.Equal(t, toks[0].Type, UNKNOWN)
		be.Equal(t, toks[0].Literal, input)
		be.Equal(t, toks[0].Problem, problemBadOperator)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	toks := Tokenize("a # b")
	be.Equal(t, tokenTypes(toks), []TokenType{IDENTIFIER, UNKNOWN, IDENTIFIER, EOF})
	be.Equal(t, toks[1].Literal, "#")
	be.Equal(t, toks[1].Problem, problemUnexpectedChar)
}

func TestComments(t *testing.T) {
	toks := Tokenize("a // line\n/* block\n * more */ b")
	be.Equal(t, tokenTypes(toks), []TokenType{IDENTIFIER, IDENTIFIER, EOF})
	be.Equal(t, toks[1].Line, 3)
	be.Equal(t, toks[1].Column, 12)
}

func TestUnterminatedBlockComment(t *testing.T) {
	toks := Tokenize("a /* never")
	be.Equal(t, toks[1].Type, UNKNOWN)
	be.Equal(t, toks[1].Problem, problemUnterminatedNote)
	be.Equal(t, toks[1].Column, 3)
}

func TestPositions(t *testing.T) {
	toks := Tokenize("func f() {\n  return 1;\n}")
	be.Equal(t, toks[0].Line, 1)
	be.Equal(t, toks[0].Column, 1)
	be.Equal(t, toks[1].Column, 6)

	ret := toks[5]
	be.Equal(t, ret.Type, RETURN)
	be.Equal(t, ret.Line, 2)
	be.Equal(t, ret.Column, 3)

	closing := toks[8]
	be.Equal(t, closing.Type, CLOSE_BRACE)
	be.Equal(t, closing.Line, 3)
	be.Equal(t, closing.Column, 1)
}

func TestEOFRepeats(t *testing.T) {
	l := NewLexer("  ")
	be.Equal(t, l.NextToken().Type, EOF)
	be.Equal(t, l.NextToken().Type, EOF)
}

func FuzzTokenize(f *testing.F) {
	for _, name := range SampleNames() {
		f.Add(Samples[name].Source)
	}
	f.Add("'")
	f.Add("/*")
	f.Add("1.")
	f.Fuzz(func(t *testing.T, src string) {
		toks := Tokenize(src)
		be.True(t, len(toks) > 0)
		be.Equal(t, toks[len(toks)-1].Type, EOF)
		for _, tok := range toks {
			be.True(t, tok.Line >= 1)
			be.True(t, tok.Column >= 1)
			if tok.Type == UNKNOWN {
				be.True(t, tok.Problem != "")
			}
		}
		// The parser must never panic, whatever it returns.
		_, _ = Parse(src)
	})
}
