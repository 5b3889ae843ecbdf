package macs

// Info holds the results of semantic analysis. The syntax tree itself is
// never modified; later stages look nodes up here by identity.
type Info struct {
	// Types maps every expression node to its resolved type.
	Types map[*Node]Type

	// Defs maps function, parameter and variable declaration nodes to the
	// symbols they define.
	Defs map[*Node]*Symbol

	// Uses maps identifier, call, assignment and input nodes to the symbols
	// they refer to.
	Uses map[*Node]*Symbol

	// InputTypes maps input statements to the declared type of their target.
	InputTypes map[*Node]Type

	// Global is the program scope holding every function symbol.
	Global *Scope
}

func newInfo(global *Scope) *Info {
	return &Info{
		Types:      make(map[*Node]Type),
		Defs:       make(map[*Node]*Symbol),
		Uses:       make(map[*Node]*Symbol),
		InputTypes: make(map[*Node]Type),
		Global:     global,
	}
}

// TypeOf returns the resolved type of an expression, or TypeInvalid if the
// expression was not analyzed.
func (info *Info) TypeOf(expr *Node) Type {
	return info.Types[expr]
}

// checker walks one program. The current scope and enclosing function are
// passed explicitly through the recursion.
type checker struct {
	info *Info
}

// Analyze checks prog and returns the resolved types and symbols. The first
// rule violation stops analysis and is returned as a *SemanticError.
func Analyze(prog *Node) (*Info, error) {
	if prog == nil || prog.Kind != NodeProgram {
		return nil, &SemanticError{Message: "expected a program node"}
	}
	c := &checker{info: newInfo(NewScope(nil))}

	// Register every signature first so calls may refer to functions
	// declared later in the program.
	for _, fn := range prog.Children {
		if err := c.declareFunction(fn); err != nil {
			return nil, err
		}
	}
	for _, fn := range prog.Children {
		if err := c.checkFunction(fn); err != nil {
			return nil, err
		}
	}
	return c.info, nil
}

// AnalyzeExpr checks a single expression against scope, which may hold
// variables and functions defined by the caller.
func AnalyzeExpr(expr *Node, scope *Scope) (*Info, error) {
	c := &checker{info: newInfo(scope)}
	if _, err := c.checkExpr(expr, scope); err != nil {
		return nil, err
	}
	return c.info, nil
}

// IsAssignable reports whether a value of type src may be stored in a
// location of type dst. The only implicit conversion is int to float.
func IsAssignable(dst, src Type) bool {
	return dst == src || (dst == TypeFloat && src == TypeInt)
}

// IsComparable reports whether == and != accept operands of types a and b.
func IsComparable(a, b Type) bool {
	if a.IsNumeric() && b.IsNumeric() {
		return true
	}
	return a == b && a != TypeInvalid
}

func (c *checker) declareFunction(fn *Node) error {
	sym := &Symbol{Kind: SymFunction, Name: fn.Name, Return: fn.Type, Token: fn.Token}
	for _, param := range fn.Params {
		sym.Params = append(sym.Params, param.Type)
	}
	if c.info.Global.LookupLocal(fn.Name) != nil {
		return semanticErrorf(fn.Token, "function '%s' already declared", fn.Name)
	}
	if fn.Name == "main" && (len(fn.Params) != 0 || fn.Type != TypeInt) {
		return semanticErrorf(fn.Token, "function 'main' must take no parameters and return int")
	}
	if err := c.info.Global.Define(sym); err != nil {
		return semanticErrorf(fn.Token, "%s", err)
	}
	c.info.Defs[fn] = sym
	return nil
}

func (c *checker) checkFunction(fn *Node) error {
	sym := c.info.Defs[fn]
	scope := NewScope(c.info.Global)
	for _, param := range fn.Params {
		if err := c.define(scope, param, param.Type); err != nil {
			return err
		}
	}
	// The function body shares the parameter scope.
	return c.checkStmts(fn.Body.Children, scope, sym)
}

// define declares a variable for a var or param node in scope.
func (c *checker) define(scope *Scope, node *Node, typ Type) error {
	if scope.LookupLocal(node.Name) != nil {
		return semanticErrorf(node.Token, "variable '%s' already declared in this scope", node.Name)
	}
	sym := &Symbol{Kind: SymVariable, Name: node.Name, Type: typ, Token: node.Token}
	if err := scope.Define(sym); err != nil {
		return semanticErrorf(node.Token, "%s", err)
	}
	c.info.Defs[node] = sym
	return nil
}

func (c *checker) checkStmts(stmts []*Node, scope *Scope, fn *Symbol) error {
	for _, stmt := range stmts {
		if err := c.checkStmt(stmt, scope, fn); err != nil {
			return err
		}
	}
	return nil
}

// checkBlock checks the body of an if, else or while in a fresh child scope.
func (c *checker) checkBlock(block *Node, scope *Scope, fn *Symbol) error {
	return c.checkStmts(block.Children, NewScope(scope), fn)
}

func (c *checker) checkStmt(node *Node, scope *Scope, fn *Symbol) error {
	switch node.Kind {
	case NodeVarDecl:
		// The initializer is checked before the name comes into scope.
		if node.Value != nil {
			typ, err := c.checkExpr(node.Value, scope)
			if err != nil {
				return err
			}
			if !IsAssignable(node.Type, typ) {
				return semanticErrorf(node.Value.Token,
					"type mismatch in declaration of '%s': expected %s, found %s", node.Name, node.Type, typ)
			}
		}
		return c.define(scope, node, node.Type)

	case NodeAssign:
		target, err := c.resolveVariable(node, scope)
		if err != nil {
			return err
		}
		typ, err := c.checkExpr(node.Value, scope)
		if err != nil {
			return err
		}
		if !IsAssignable(target.Type, typ) {
			return semanticErrorf(node.Value.Token,
				"type mismatch in assignment to '%s': expected %s, found %s", node.Name, target.Type, typ)
		}
		return nil

	case NodeInput:
		target, err := c.resolveVariable(node, scope)
		if err != nil {
			return err
		}
		c.info.InputTypes[node] = target.Type
		return nil

	case NodePrint, NodeExprStmt:
		_, err := c.checkExpr(node.Value, scope)
		return err

	case NodeReturn:
		if fn == nil {
			return semanticErrorf(node.Token, "'return' outside of a function")
		}
		typ, err := c.checkExpr(node.Value, scope)
		if err != nil {
			return err
		}
		if !IsAssignable(fn.Return, typ) {
			return semanticErrorf(node.Value.Token,
				"type mismatch in return from '%s': expected %s, found %s", fn.Name, fn.Return, typ)
		}
		return nil

	case NodeIf:
		if err := c.checkCondition(node.Cond, scope, "if"); err != nil {
			return err
		}
		if err := c.checkBlock(node.Body, scope, fn); err != nil {
			return err
		}
		if node.Else != nil {
			return c.checkBlock(node.Else, scope, fn)
		}
		return nil

	case NodeWhile:
		if err := c.checkCondition(node.Cond, scope, "while"); err != nil {
			return err
		}
		return c.checkBlock(node.Body, scope, fn)

	case NodeFor:
		// One scope holds the header clauses and the body.
		loop := NewScope(scope)
		if node.Init != nil {
			if err := c.checkStmt(node.Init, loop, fn); err != nil {
				return err
			}
		}
		if node.Cond != nil {
			if err := c.checkCondition(node.Cond, loop, "for"); err != nil {
				return err
			}
		}
		if err := c.checkStmts(node.Body.Children, loop, fn); err != nil {
			return err
		}
		if node.Step != nil {
			return c.checkStmt(node.Step, loop, fn)
		}
		return nil

	case NodeBlock:
		return c.checkBlock(node, scope, fn)

	default:
		panic("checkStmt: unexpected node kind " + string(node.Kind))
	}
}

func (c *checker) checkCondition(cond *Node, scope *Scope, keyword string) error {
	typ, err := c.checkExpr(cond, scope)
	if err != nil {
		return err
	}
	if typ != TypeBool {
		return semanticErrorf(cond.Token, "'%s' condition must be bool, found %s", keyword, typ)
	}
	return nil
}

// resolveVariable resolves the target of an assignment or input statement.
func (c *checker) resolveVariable(node *Node, scope *Scope) (*Symbol, error) {
	sym := scope.Resolve(node.Name)
	if sym == nil {
		return nil, semanticErrorf(node.Token, "undeclared variable '%s'", node.Name)
	}
	if sym.Kind != SymVariable {
		return nil, semanticErrorf(node.Token, "'%s' is a function, not a variable", node.Name)
	}
	c.info.Uses[node] = sym
	return sym, nil
}

// checkExpr computes the type of an expression and records it in Info.
func (c *checker) checkExpr(node *Node, scope *Scope) (Type, error) {
	typ, err := c.exprType(node, scope)
	if err != nil {
		return TypeInvalid, err
	}
	c.info.Types[node] = typ
	return typ, nil
}

func (c *checker) exprType(node *Node, scope *Scope) (Type, error) {
	switch node.Kind {
	case NodeLiteral:
		return node.Literal.Type, nil

	case NodeIdent:
		sym, err := c.resolveVariable(node, scope)
		if err != nil {
			return TypeInvalid, err
		}
		return sym.Type, nil

	case NodeCall:
		return c.checkCall(node, scope)

	case NodeUnary:
		operand, err := c.checkExpr(node.Left, scope)
		if err != nil {
			return TypeInvalid, err
		}
		switch node.Op {
		case MINUS:
			if !operand.IsNumeric() {
				return TypeInvalid, semanticErrorf(node.Token, "operator '-' expects a numeric operand, found %s", operand)
			}
			return operand, nil
		case NOT:
			if operand != TypeBool {
				return TypeInvalid, semanticErrorf(node.Token, "operator '!' expects a bool operand, found %s", operand)
			}
			return TypeBool, nil
		}
		panic("exprType: unexpected unary operator " + string(node.Op))

	case NodeBinary:
		return c.checkBinary(node, scope)

	default:
		panic("exprType: unexpected node kind " + string(node.Kind))
	}
}

func (c *checker) checkBinary(node *Node, scope *Scope) (Type, error) {
	left, err := c.checkExpr(node.Left, scope)
	if err != nil {
		return TypeInvalid, err
	}
	right, err := c.checkExpr(node.Right, scope)
	if err != nil {
		return TypeInvalid, err
	}

	mismatch := func() error {
		return semanticErrorf(node.Token, "incompatible operand types for '%s': %s and %s", opSymbols[node.Op], left, right)
	}
	arith := func() Type {
		if left == TypeFloat || right == TypeFloat {
			return TypeFloat
		}
		return TypeInt
	}

	switch node.Op {
	case PLUS:
		if left == TypeString || right == TypeString {
			return TypeString, nil
		}
		if !left.IsNumeric() || !right.IsNumeric() {
			return TypeInvalid, mismatch()
		}
		return arith(), nil
	case MINUS, MULTIPLY, DIVIDE, MODULO:
		if !left.IsNumeric() || !right.IsNumeric() {
			return TypeInvalid, mismatch()
		}
		return arith(), nil
	case EQUALS, NOT_EQUALS:
		if !IsComparable(left, right) {
			return TypeInvalid, mismatch()
		}
		return TypeBool, nil
	case LESS_THAN, GREATER_THAN, LESS_EQUAL, GREATER_EQUAL:
		if !left.IsNumeric() || !right.IsNumeric() {
			return TypeInvalid, mismatch()
		}
		return TypeBool, nil
	case AND, OR:
		if left != TypeBool || right != TypeBool {
			return TypeInvalid, mismatch()
		}
		return TypeBool, nil
	}
	panic("checkBinary: unexpected operator " + string(node.Op))
}

func (c *checker) checkCall(node *Node, scope *Scope) (Type, error) {
	sym := scope.Resolve(node.Name)
	if sym == nil {
		return TypeInvalid, semanticErrorf(node.Token, "undeclared function '%s'", node.Name)
	}
	if sym.Kind != SymFunction {
		return TypeInvalid, semanticErrorf(node.Token, "'%s' is not a function", node.Name)
	}
	if len(node.Children) != len(sym.Params) {
		return TypeInvalid, semanticErrorf(node.Token,
			"wrong number of arguments to '%s': expected %d, found %d", node.Name, len(sym.Params), len(node.Children))
	}
	for i, arg := range node.Children {
		typ, err := c.checkExpr(arg, scope)
		if err != nil {
			return TypeInvalid, err
		}
		if !IsAssignable(sym.Params[i], typ) {
			return TypeInvalid, semanticErrorf(arg.Token,
				"type mismatch in argument %d to '%s': expected %s, found %s", i+1, node.Name, sym.Params[i], typ)
		}
	}
	c.info.Uses[node] = sym
	return sym.Return, nil
}
