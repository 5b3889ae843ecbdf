package macs

import (
	"strconv"
	"strings"
)

// NodeKind represents different types of AST nodes
type NodeKind string

const (
	NodeProgram  NodeKind = "NodeProgram"
	NodeFunc     NodeKind = "NodeFunc"
	NodeParam    NodeKind = "NodeParam"
	NodeBlock    NodeKind = "NodeBlock"
	NodeVarDecl  NodeKind = "NodeVarDecl"
	NodeAssign   NodeKind = "NodeAssign"
	NodePrint    NodeKind = "NodePrint"
	NodeInput    NodeKind = "NodeInput"
	NodeReturn   NodeKind = "NodeReturn"
	NodeIf       NodeKind = "NodeIf"
	NodeWhile    NodeKind = "NodeWhile"
	NodeFor      NodeKind = "NodeFor"
	NodeExprStmt NodeKind = "NodeExprStmt"
	NodeBinary   NodeKind = "NodeBinary"
	NodeUnary    NodeKind = "NodeUnary"
	NodeLiteral  NodeKind = "NodeLiteral"
	NodeIdent    NodeKind = "NodeIdent"
	NodeCall     NodeKind = "NodeCall"
)

// Type is one of the five MACSLang value types.
type Type int

const (
	TypeInvalid Type = iota
	TypeInt
	TypeFloat
	TypeChar
	TypeBool
	TypeString
)

// String returns the MACSLang spelling of the type.
func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeChar:
		return "char"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	default:
		return "invalid"
	}
}

// IsNumeric reports whether t is int or float.
func (t Type) IsNumeric() bool {
	return t == TypeInt || t == TypeFloat
}

// typeFromToken maps a type keyword to its Type.
func typeFromToken(tt TokenType) Type {
	switch tt {
	case INT_KEYWORD:
		return TypeInt
	case FLOAT_KEYWORD:
		return TypeFloat
	case CHAR_KEYWORD:
		return TypeChar
	case BOOL_KEYWORD:
		return TypeBool
	case STRING_KEYWORD:
		return TypeString
	default:
		return TypeInvalid
	}
}

// Node represents a node in the syntax tree. Which fields are meaningful
// depends on Kind:
//
//	NodeProgram:  Children = functions
//	NodeFunc:     Name, Params, Type (return type), Body
//	NodeParam:    Name, Type
//	NodeBlock:    Children = statements
//	NodeVarDecl:  Name, Type, Value (optional initializer)
//	NodeAssign:   Name, Value
//	NodePrint:    Value
//	NodeInput:    Name
//	NodeReturn:   Value
//	NodeIf:       Cond, Body, Else (optional)
//	NodeWhile:    Cond, Body
//	NodeFor:      Init, Cond, Step (all optional), Body
//	NodeExprStmt: Value
//	NodeBinary:   Op, Left, Right
//	NodeUnary:    Op, Left (operand)
//	NodeLiteral:  Literal
//	NodeIdent:    Name
//	NodeCall:     Name, Children = arguments
//
// Token is the token the node was built from and is used for diagnostics.
// Nodes are never mutated after parsing; analysis results live in Info.
type Node struct {
	Kind  NodeKind
	Token Token

	Name     string
	Type     Type
	Op       TokenType
	Literal  Literal
	Children []*Node
	Params   []*Node

	Value *Node
	Left  *Node
	Right *Node
	Cond  *Node
	Init  *Node
	Step  *Node
	Body  *Node
	Else  *Node
}

// Literal holds the parsed native value of a literal token. Only the field
// matching Type is set.
type Literal struct {
	Type   Type
	Int    int64
	Float  float64
	Char   byte
	Bool   bool
	String string
}

// IsExpr reports whether the node is an expression.
func (n *Node) IsExpr() bool {
	switch n.Kind {
	case NodeBinary, NodeUnary, NodeLiteral, NodeIdent, NodeCall:
		return true
	}
	return false
}

// opSymbols maps operator tokens to their source spelling.
var opSymbols = map[TokenType]string{
	PLUS:          "+",
	MINUS:         "-",
	MULTIPLY:      "*",
	DIVIDE:        "/",
	MODULO:        "%",
	EQUALS:        "==",
	NOT_EQUALS:    "!=",
	LESS_THAN:     "<",
	GREATER_THAN:  ">",
	LESS_EQUAL:    "<=",
	GREATER_EQUAL: ">=",
	AND:           "&&",
	OR:            "||",
	NOT:           "!",
}

// ToSExpr converts an AST node to s-expression string representation
func ToSExpr(node *Node) string {
	if node == nil {
		return "nil"
	}
	switch node.Kind {
	case NodeProgram:
		return list("program", sexprs(node.Children)...)
	case NodeFunc:
		parts := []string{quote(node.Name), list("params", sexprs(node.Params)...), node.Type.String(), ToSExpr(node.Body)}
		return list("func", parts...)
	case NodeParam:
		return list("param", quote(node.Name), node.Type.String())
	case NodeBlock:
		return list("block", sexprs(node.Children)...)
	case NodeVarDecl:
		if node.Value == nil {
			return list("var", quote(node.Name), node.Type.String())
		}
		return list("var", quote(node.Name), node.Type.String(), ToSExpr(node.Value))
	case NodeAssign:
		return list("assign", quote(node.Name), ToSExpr(node.Value))
	case NodePrint:
		return list("print", ToSExpr(node.Value))
	case NodeInput:
		return list("input", quote(node.Name))
	case NodeReturn:
		return list("return", ToSExpr(node.Value))
	case NodeIf:
		if node.Else == nil {
			return list("if", ToSExpr(node.Cond), ToSExpr(node.Body))
		}
		return list("if", ToSExpr(node.Cond), ToSExpr(node.Body), ToSExpr(node.Else))
	case NodeWhile:
		return list("while", ToSExpr(node.Cond), ToSExpr(node.Body))
	case NodeFor:
		return list("for", ToSExpr(node.Init), ToSExpr(node.Cond), ToSExpr(node.Step), ToSExpr(node.Body))
	case NodeExprStmt:
		return list("expr", ToSExpr(node.Value))
	case NodeBinary:
		return list("binary", quote(opSymbols[node.Op]), ToSExpr(node.Left), ToSExpr(node.Right))
	case NodeUnary:
		return list("unary", quote(opSymbols[node.Op]), ToSExpr(node.Left))
	case NodeLiteral:
		return literalSExpr(node.Literal)
	case NodeIdent:
		return list("ident", quote(node.Name))
	case NodeCall:
		return list("call", append([]string{quote(node.Name)}, sexprs(node.Children)...)...)
	default:
		panic("ToSExpr: unknown node kind " + string(node.Kind))
	}
}

func literalSExpr(lit Literal) string {
	switch lit.Type {
	case TypeInt:
		return strconv.FormatInt(lit.Int, 10)
	case TypeFloat:
		return list("float", quote(strconv.FormatFloat(lit.Float, 'g', -1, 32)))
	case TypeChar:
		return list("char", quote(string(lit.Char)))
	case TypeBool:
		return list("bool", strconv.FormatBool(lit.Bool))
	case TypeString:
		return quote(lit.String)
	default:
		return "?"
	}
}

func sexprs(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = ToSExpr(n)
	}
	return out
}

func list(head string, items ...string) string {
	if len(items) == 0 {
		return "(" + head + ")"
	}
	return "(" + head + " " + strings.Join(items, " ") + ")"
}

// quote writes s as a Sexy string: only backslash and double quote are
// escaped.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
