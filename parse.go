package macs

import "strconv"

// Parser is a recursive-descent parser over a Lexer. Expressions use
// precedence climbing. The first grammar violation aborts parsing.
type Parser struct {
	lexer *Lexer
	buf   []Token // buf[0] is the current token
}

// NewParser creates a parser reading tokens from l.
func NewParser(l *Lexer) *Parser {
	p := &Parser{lexer: l}
	p.fill(1)
	return p
}

func (p *Parser) fill(n int) {
	for len(p.buf) < n {
		p.buf = append(p.buf, p.lexer.NextToken())
	}
}

func (p *Parser) cur() Token {
	return p.buf[0]
}

// peek returns the token k positions after the current one.
func (p *Parser) peek(k int) Token {
	p.fill(k + 1)
	return p.buf[k]
}

func (p *Parser) advance() Token {
	tok := p.buf[0]
	p.buf = p.buf[1:]
	p.fill(1)
	return tok
}

func (p *Parser) at(typ TokenType) bool {
	return p.cur().Type == typ
}

// expect consumes the current token if it has type typ. Otherwise it fails
// with msg.
func (p *Parser) expect(typ TokenType, msg string) (Token, error) {
	if !p.at(typ) {
		return Token{}, p.fail(msg)
	}
	return p.advance(), nil
}

// fail builds a ParseError at the current token. An UNKNOWN token reports
// its lexical problem instead of the grammar expectation.
func (p *Parser) fail(msg string) error {
	tok := p.cur()
	if tok.Type == UNKNOWN && tok.Problem != "" {
		msg = tok.Problem
	}
	return &ParseError{Token: tok, Message: msg}
}

// ParseProgram parses functions until EOF.
func (p *Parser) ParseProgram() (*Node, error) {
	prog := &Node{Kind: NodeProgram, Token: p.cur()}
	for !p.at(EOF) {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		prog.Children = append(prog.Children, fn)
	}
	return prog, nil
}

// ParseExpression parses a single expression that must span the whole input.
func (p *Parser) ParseExpression() (*Node, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.at(EOF) {
		return nil, p.fail("expected end of input after expression")
	}
	return expr, nil
}

func (p *Parser) parseFunction() (*Node, error) {
	if _, err := p.expect(FUNC, "expected 'func'"); err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER, "expected function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(OPEN_PAREN, "expected '(' after function name"); err != nil {
		return nil, err
	}

	fn := &Node{Kind: NodeFunc, Token: name, Name: name.Literal}
	if !p.at(CLOSE_PAREN) {
		for {
			param, err := p.parseParam()
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, param)
			if !p.at(COMMA) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(CLOSE_PAREN, "expected ')' after function parameters"); err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON, "expected ':' before function return type"); err != nil {
		return nil, err
	}
	if fn.Type, err = p.parseType(); err != nil {
		return nil, err
	}
	if fn.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *Parser) parseParam() (*Node, error) {
	name, err := p.expect(IDENTIFIER, "expected parameter name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON, "expected ':' before parameter type"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &Node{Kind: NodeParam, Token: name, Name: name.Literal, Type: typ}, nil
}

func (p *Parser) parseType() (Type, error) {
	typ := typeFromToken(p.cur().Type)
	if typ == TypeInvalid {
		return TypeInvalid, p.fail("expected a type (int, float, char, bool, string)")
	}
	p.advance()
	return typ, nil
}

func (p *Parser) parseBlock() (*Node, error) {
	open, err := p.expect(OPEN_BRACE, "expected '{' to open block")
	if err != nil {
		return nil, err
	}
	block := &Node{Kind: NodeBlock, Token: open}
	for !p.at(CLOSE_BRACE) && !p.at(EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Children = append(block.Children, stmt)
	}
	if _, err := p.expect(CLOSE_BRACE, "expected '}' to close block"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *Parser) parseStatement() (*Node, error) {
	switch p.cur().Type {
	case VAR:
		return p.parseVarDecl()
	case RETURN:
		return p.parseReturn()
	case PRINT:
		return p.parsePrint()
	case INPUT:
		return p.parseInput()
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case FOR:
		return p.parseFor()
	case IDENTIFIER:
		if p.peek(1).Type == ASSIGN {
			stmt, err := p.parseAssignment()
			if err != nil {
				return nil, err
			}
			return stmt, p.terminate("expected ';' after assignment")
		}
	}

	if !startsExpression(p.cur().Type) {
		return nil, p.fail("unexpected token at start of statement")
	}
	stmt, err := p.parseExprStmt()
	if err != nil {
		return nil, err
	}
	return stmt, p.terminate("expected ';' after expression statement")
}

// terminate consumes the ';' that ends a statement.
func (p *Parser) terminate(msg string) error {
	_, err := p.expect(SEMICOLON, msg)
	return err
}

// parseVarDecl parses 'var' IDENT ':' type ('=' expr)? ';'. The terminator
// is consumed here so the for-header can reuse it as its first separator.
func (p *Parser) parseVarDecl() (*Node, error) {
	if _, err := p.expect(VAR, "expected 'var'"); err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER, "expected variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON, "expected ':' before variable type"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	decl := &Node{Kind: NodeVarDecl, Token: name, Name: name.Literal, Type: typ}
	if p.at(ASSIGN) {
		p.advance()
		if decl.Value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if err := p.terminate("expected ';' after variable declaration"); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseAssignment parses IDENT '=' expr without the terminator.
func (p *Parser) parseAssignment() (*Node, error) {
	name, err := p.expect(IDENTIFIER, "expected identifier in assignment")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ASSIGN, "expected '=' in assignment"); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &Node{Kind: NodeAssign, Token: name, Name: name.Literal, Value: value}, nil
}

// parseExprStmt parses an expression used as a statement, without the
// terminator.
func (p *Parser) parseExprStmt() (*Node, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &Node{Kind: NodeExprStmt, Token: expr.Token, Value: expr}, nil
}

func (p *Parser) parseReturn() (*Node, error) {
	ret, err := p.expect(RETURN, "expected 'return'")
	if err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.terminate("expected ';' after return value"); err != nil {
		return nil, err
	}
	return &Node{Kind: NodeReturn, Token: ret, Value: value}, nil
}

func (p *Parser) parsePrint() (*Node, error) {
	printTok, err := p.expect(PRINT, "expected 'print'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(OPEN_PAREN, "expected '(' after 'print'"); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(CLOSE_PAREN, "expected ')' after print argument"); err != nil {
		return nil, err
	}
	if err := p.terminate("expected ';' after 'print'"); err != nil {
		return nil, err
	}
	return &Node{Kind: NodePrint, Token: printTok, Value: value}, nil
}

func (p *Parser) parseInput() (*Node, error) {
	if _, err := p.expect(INPUT, "expected 'input'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(OPEN_PAREN, "expected '(' after 'input'"); err != nil {
		return nil, err
	}
	name, err := p.expect(IDENTIFIER, "expected variable name in 'input'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(CLOSE_PAREN, "expected ')' after input target"); err != nil {
		return nil, err
	}
	if err := p.terminate("expected ';' after 'input'"); err != nil {
		return nil, err
	}
	return &Node{Kind: NodeInput, Token: name, Name: name.Literal}, nil
}

// parseCondition parses '(' expr ')' following if/while.
func (p *Parser) parseCondition(keyword string) (*Node, error) {
	if _, err := p.expect(OPEN_PAREN, "expected '(' after '"+keyword+"'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(CLOSE_PAREN, "expected ')' after '"+keyword+"' condition"); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIf() (*Node, error) {
	ifTok, err := p.expect(IF, "expected 'if'")
	if err != nil {
		return nil, err
	}
	node := &Node{Kind: NodeIf, Token: ifTok}
	if node.Cond, err = p.parseCondition("if"); err != nil {
		return nil, err
	}
	if node.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}
	if p.at(ELSE) {
		p.advance()
		if node.Else, err = p.parseBlock(); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func (p *Parser) parseWhile() (*Node, error) {
	whileTok, err := p.expect(WHILE, "expected 'while'")
	if err != nil {
		return nil, err
	}
	node := &Node{Kind: NodeWhile, Token: whileTok}
	if node.Cond, err = p.parseCondition("while"); err != nil {
		return nil, err
	}
	if node.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}
	return node, nil
}

// parseFor parses 'for' '(' init? ';' cond? ';' step? ')' block.
func (p *Parser) parseFor() (*Node, error) {
	forTok, err := p.expect(FOR, "expected 'for'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(OPEN_PAREN, "expected '(' after 'for'"); err != nil {
		return nil, err
	}
	node := &Node{Kind: NodeFor, Token: forTok}

	switch {
	case p.at(SEMICOLON):
		p.advance()
	case p.at(VAR):
		// parseVarDecl consumes the first header separator.
		if node.Init, err = p.parseVarDecl(); err != nil {
			return nil, err
		}
	default:
		if node.Init, err = p.parseSimpleStatement(); err != nil {
			return nil, err
		}
		if err := p.terminate("expected ';' after 'for' initializer"); err != nil {
			return nil, err
		}
	}

	if !p.at(SEMICOLON) {
		if node.Cond, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if err := p.terminate("expected ';' after 'for' condition"); err != nil {
		return nil, err
	}

	if !p.at(CLOSE_PAREN) {
		if node.Step, err = p.parseSimpleStatement(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(CLOSE_PAREN, "expected ')' after 'for' clauses"); err != nil {
		return nil, err
	}
	if node.Body, err = p.parseBlock(); err != nil {
		return nil, err
	}
	return node, nil
}

// parseSimpleStatement parses an assignment or expression statement without
// its terminator, as used by the for-header.
func (p *Parser) parseSimpleStatement() (*Node, error) {
	if p.at(IDENTIFIER) && p.peek(1).Type == ASSIGN {
		return p.parseAssignment()
	}
	if !startsExpression(p.cur().Type) {
		return nil, p.fail("expected assignment or expression in 'for' header")
	}
	return p.parseExprStmt()
}

func startsExpression(tt TokenType) bool {
	switch tt {
	case INT_LITERAL, FLOAT_LITERAL, CHAR_LITERAL, STRING_LITERAL, TRUE, FALSE,
		IDENTIFIER, OPEN_PAREN, NOT, MINUS:
		return true
	}
	return false
}

// precedence returns the binding power of a binary operator, or 0 if the
// token is not a binary operator.
func precedence(tt TokenType) int {
	switch tt {
	case OR:
		return 1
	case AND:
		return 2
	case EQUALS, NOT_EQUALS:
		return 3
	case LESS_THAN, GREATER_THAN, LESS_EQUAL, GREATER_EQUAL:
		return 4
	case PLUS, MINUS:
		return 5
	case MULTIPLY, DIVIDE, MODULO:
		return 6
	default:
		return 0
	}
}

func (p *Parser) parseExpression() (*Node, error) {
	return p.parseExpressionWithPrecedence(1)
}

// parseExpressionWithPrecedence implements precedence climbing. All binary
// operators are left-associative.
func (p *Parser) parseExpressionWithPrecedence(minPrec int) (*Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec := precedence(p.cur().Type)
		if prec == 0 || prec < minPrec {
			return left, nil
		}
		op := p.advance()
		right, err := p.parseExpressionWithPrecedence(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &Node{Kind: NodeBinary, Token: op, Op: op.Type, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (*Node, error) {
	if p.at(NOT) || p.at(MINUS) {
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: NodeUnary, Token: op, Op: op.Type, Left: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (*Node, error) {
	tok := p.cur()
	switch tok.Type {
	case INT_LITERAL:
		v, err := strconv.ParseInt(tok.Literal, 10, 32)
		if err != nil {
			return nil, p.fail("integer literal out of range for int")
		}
		p.advance()
		return &Node{Kind: NodeLiteral, Token: tok, Literal: Literal{Type: TypeInt, Int: v}}, nil

	case FLOAT_LITERAL:
		v, err := strconv.ParseFloat(tok.Literal, 32)
		if err != nil {
			return nil, p.fail("float literal out of range for float")
		}
		p.advance()
		return &Node{Kind: NodeLiteral, Token: tok, Literal: Literal{Type: TypeFloat, Float: v}}, nil

	case CHAR_LITERAL:
		p.advance()
		return &Node{Kind: NodeLiteral, Token: tok, Literal: Literal{Type: TypeChar, Char: tok.Literal[0]}}, nil

	case STRING_LITERAL:
		p.advance()
		return &Node{Kind: NodeLiteral, Token: tok, Literal: Literal{Type: TypeString, String: tok.Literal}}, nil

	case TRUE, FALSE:
		p.advance()
		return &Node{Kind: NodeLiteral, Token: tok, Literal: Literal{Type: TypeBool, Bool: tok.Type == TRUE}}, nil

	case IDENTIFIER:
		if p.peek(1).Type == OPEN_PAREN {
			return p.parseCall()
		}
		p.advance()
		return &Node{Kind: NodeIdent, Token: tok, Name: tok.Literal}, nil

	case OPEN_PAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(CLOSE_PAREN, "expected ')' to close parenthesized expression"); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.fail("unexpected token at start of expression")
	}
}

func (p *Parser) parseCall() (*Node, error) {
	name, err := p.expect(IDENTIFIER, "expected function name in call")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(OPEN_PAREN, "expected '(' after function name in call"); err != nil {
		return nil, err
	}
	call := &Node{Kind: NodeCall, Token: name, Name: name.Literal}
	if !p.at(CLOSE_PAREN) {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			call.Children = append(call.Children, arg)
			if !p.at(COMMA) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(CLOSE_PAREN, "expected ')' after call arguments"); err != nil {
		return nil, err
	}
	return call, nil
}
