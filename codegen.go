package macs

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// runtimeShow is the fully qualified helper every stringification goes
// through, so print and concatenation format values the same way on every
// culture.
const runtimeShow = "global::MACSLangRuntime.Runtime.Show"

// csharpTypes maps MACSLang types to C# primitive spellings.
var csharpTypes = map[Type]string{
	TypeInt:    "int",
	TypeFloat:  "float",
	TypeChar:   "char",
	TypeBool:   "bool",
	TypeString: "string",
}

// csharpDefaults are the values given to variables declared without an
// initializer.
var csharpDefaults = map[Type]string{
	TypeInt:    "0",
	TypeFloat:  "0.0f",
	TypeChar:   `'\0'`,
	TypeBool:   "false",
	TypeString: "string.Empty",
}

// csharpKeywords are reserved in C# and must be escaped with '@' when used
// as identifiers.
var csharpKeywords = map[string]bool{
	"abstract": true, "as": true, "base": true, "bool": true, "break": true,
	"byte": true, "case": true, "catch": true, "char": true, "checked": true,
	"class": true, "const": true, "continue": true, "decimal": true, "default": true,
	"delegate": true, "do": true, "double": true, "else": true, "enum": true,
	"event": true, "explicit": true, "extern": true, "false": true, "finally": true,
	"fixed": true, "float": true, "for": true, "foreach": true, "goto": true,
	"if": true, "implicit": true, "in": true, "int": true, "interface": true,
	"internal": true, "is": true, "lock": true, "long": true, "namespace": true,
	"new": true, "null": true, "object": true, "operator": true, "out": true,
	"override": true, "params": true, "private": true, "protected": true, "public": true,
	"readonly": true, "ref": true, "return": true, "sbyte": true, "sealed": true,
	"short": true, "sizeof": true, "stackalloc": true, "static": true, "string": true,
	"struct": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "uint": true, "ulong": true, "unchecked": true,
	"unsafe": true, "ushort": true, "using": true, "virtual": true, "void": true,
	"volatile": true, "while": true,
}

// reservedNames are C# names the generated program already uses. User
// functions and variables with these names are renamed.
var reservedNames = []string{
	"Main", "Program", "Runtime", "args", "_",
	"System", "Console", "CultureInfo", "StreamWriter", "MACSLangRuntime",
}

// Generator lowers an analyzed program to C# source text.
type Generator struct {
	info   *Info
	buf    strings.Builder
	indent int

	// names holds the C# spelling chosen for every function and variable.
	names   map[*Symbol]string
	methods []string
}

// Generate returns the C# translation of prog. info must come from Analyze
// on the same tree; Generate panics on nodes that were not analyzed.
func Generate(prog *Node, info *Info) string {
	g := &Generator{info: info, names: make(map[*Symbol]string)}
	return g.program(prog)
}

func (g *Generator) line(format string, args ...any) {
	if format == "" {
		g.buf.WriteByte('\n')
		return
	}
	g.buf.WriteString(strings.Repeat("    ", g.indent))
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteByte('\n')
}

func (g *Generator) program(prog *Node) string {
	g.nameFunctions(prog)

	g.line("using System;")
	g.line("using System.Globalization;")
	g.line("using System.IO;")
	g.line("")
	g.line("namespace MACSLangRuntime")
	g.line("{")
	g.indent++
	g.line("public static class Program")
	g.line("{")
	g.indent++
	for i, fn := range prog.Children {
		if i > 0 {
			g.line("")
		}
		g.function(fn)
	}
	g.indent--
	g.line("}")
	g.line("")
	g.runtime()
	g.indent--
	g.line("}")
	return g.buf.String()
}

func (g *Generator) runtime() {
	g.line("internal static class Runtime")
	g.line("{")
	g.indent++
	g.line("public static string Show(int value) => value.ToString(CultureInfo.InvariantCulture);")
	g.line("public static string Show(float value) => value.ToString(CultureInfo.InvariantCulture);")
	g.line(`public static string Show(bool value) => value ? "true" : "false";`)
	g.line("public static string Show(char value) => value.ToString();")
	g.line("public static string Show(string value) => value;")
	g.indent--
	g.line("}")
}

// nameFunctions picks C# method names. main becomes Main; other names keep
// their spelling unless they collide with a reserved name.
func (g *Generator) nameFunctions(prog *Node) {
	used := make(map[string]bool)
	for _, name := range reservedNames {
		used[name] = true
	}
	for _, fn := range prog.Children {
		if fn.Name != "main" {
			used[fn.Name] = true
		}
	}
	for _, fn := range prog.Children {
		sym := g.symbolOf(fn)
		switch {
		case fn.Name == "main":
			g.names[sym] = "Main"
		case slices.Contains(reservedNames, fn.Name):
			g.names[sym] = uniqueName(fn.Name, used)
		default:
			g.names[sym] = escapeIdent(fn.Name)
		}
		g.methods = append(g.methods, g.names[sym])
	}
}

// uniqueName returns base with the smallest numeric suffix not in used, and
// marks it used.
func uniqueName(base string, used map[string]bool) string {
	for i := 1; ; i++ {
		name := base + "_" + strconv.Itoa(i)
		if !used[name] {
			used[name] = true
			return name
		}
	}
}

func escapeIdent(name string) string {
	if csharpKeywords[name] {
		return "@" + name
	}
	return name
}

func (g *Generator) symbolOf(decl *Node) *Symbol {
	sym, ok := g.info.Defs[decl]
	if !ok {
		panic("codegen: declaration was not analyzed: " + decl.Name)
	}
	return sym
}

func (g *Generator) nameOf(use *Node) string {
	sym, ok := g.info.Uses[use]
	if !ok {
		panic("codegen: reference was not analyzed: " + use.Name)
	}
	name, ok := g.names[sym]
	if !ok {
		panic("codegen: no name for symbol " + sym.Name)
	}
	return name
}

// funcScope tracks the C# local names taken in one function. C# forbids a
// local from sharing a name with any other local of the same method body,
// so every later variable with a repeated name gets a suffix.
type funcScope struct {
	used map[string]bool
}

func (g *Generator) newFuncScope() *funcScope {
	fs := &funcScope{used: make(map[string]bool)}
	for _, name := range reservedNames {
		fs.used[name] = true
	}
	for _, name := range g.methods {
		fs.used[name] = true
	}
	return fs
}

// declare assigns a C# name to the variable introduced by decl.
func (g *Generator) declare(fs *funcScope, decl *Node) string {
	sym := g.symbolOf(decl)
	name := escapeIdent(decl.Name)
	if fs.used[name] {
		name = uniqueName(decl.Name, fs.used)
	}
	fs.used[name] = true
	g.names[sym] = name
	return name
}

func (g *Generator) function(fn *Node) {
	sym := g.symbolOf(fn)
	fs := g.newFuncScope()
	var params []string
	for _, param := range fn.Params {
		params = append(params, csharpTypes[param.Type]+" "+g.declare(fs, param))
	}

	if fn.Name == "main" {
		g.line("public static int Main(string[] args)")
	} else {
		g.line("public static %s %s(%s)", csharpTypes[fn.Type], g.names[sym], strings.Join(params, ", "))
	}
	g.line("{")
	g.indent++
	if fn.Name == "main" {
		g.line("Console.SetOut(new StreamWriter(Console.OpenStandardOutput()) { AutoFlush = true });")
	}
	for _, stmt := range fn.Body.Children {
		g.stmt(stmt, fs)
	}
	// A body that can fall off its end returns the default value.
	if n := len(fn.Body.Children); n == 0 || fn.Body.Children[n-1].Kind != NodeReturn {
		g.line("return %s;", csharpDefaults[fn.Type])
	}
	g.indent--
	g.line("}")
}

func (g *Generator) block(block *Node, fs *funcScope) {
	g.line("{")
	g.indent++
	for _, stmt := range block.Children {
		g.stmt(stmt, fs)
	}
	g.indent--
	g.line("}")
}

func (g *Generator) stmt(node *Node, fs *funcScope) {
	switch node.Kind {
	case NodeVarDecl, NodeAssign, NodeExprStmt:
		g.line("%s;", g.simpleStmt(node, fs))

	case NodePrint:
		g.line("Console.WriteLine(%s);", g.show(node.Value))

	case NodeInput:
		g.line("Console.Out.Flush();")
		g.line("%s = %s;", g.nameOf(node), readLine(g.info.InputTypes[node]))

	case NodeReturn:
		g.line("return %s;", g.expr(node.Value))

	case NodeIf:
		g.line("if (%s)", g.expr(node.Cond))
		g.block(node.Body, fs)
		if node.Else != nil {
			g.line("else")
			g.block(node.Else, fs)
		}

	case NodeWhile:
		g.line("while (%s)", g.expr(node.Cond))
		g.block(node.Body, fs)

	case NodeFor:
		if g.stepReadsBody(node) {
			g.forAsWhile(node, fs)
			return
		}
		var header strings.Builder
		if node.Init != nil {
			header.WriteString(g.simpleStmt(node.Init, fs))
		}
		header.WriteString(";")
		if node.Cond != nil {
			header.WriteString(" " + g.expr(node.Cond))
		}
		header.WriteString(";")
		if node.Step != nil {
			header.WriteString(" " + g.simpleStmt(node.Step, fs))
		}
		g.line("for (%s)", header.String())
		g.block(node.Body, fs)

	case NodeBlock:
		g.block(node, fs)

	default:
		panic("codegen: unexpected statement kind " + string(node.Kind))
	}
}

// stepReadsBody reports whether the step of a for loop names a variable
// declared directly in the loop body. Those are in scope for the step in
// MACSLang but not in a C# for header.
func (g *Generator) stepReadsBody(node *Node) bool {
	if node.Step == nil {
		return false
	}
	declared := make(map[*Symbol]bool)
	for _, stmt := range node.Body.Children {
		if stmt.Kind == NodeVarDecl {
			declared[g.symbolOf(stmt)] = true
		}
	}
	if len(declared) == 0 {
		return false
	}
	found := false
	visitRefs(node.Step, func(ref *Node) {
		if sym, ok := g.info.Uses[ref]; ok && declared[sym] {
			found = true
		}
	})
	return found
}

// visitRefs calls visit for n and every expression below it.
func visitRefs(n *Node, visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	visitRefs(n.Value, visit)
	visitRefs(n.Left, visit)
	visitRefs(n.Right, visit)
	for _, arg := range n.Children {
		visitRefs(arg, visit)
	}
}

// forAsWhile lowers a for loop to a while loop whose body ends with the
// step, inside a block that holds the init clause:
//
//	{ init; while (cond) { body; step; } }
func (g *Generator) forAsWhile(node *Node, fs *funcScope) {
	g.line("{")
	g.indent++
	if node.Init != nil {
		g.line("%s;", g.simpleStmt(node.Init, fs))
	}
	cond := "true"
	if node.Cond != nil {
		cond = g.expr(node.Cond)
	}
	g.line("while (%s)", cond)
	g.line("{")
	g.indent++
	for _, stmt := range node.Body.Children {
		g.stmt(stmt, fs)
	}
	g.line("%s;", g.simpleStmt(node.Step, fs))
	g.indent--
	g.line("}")
	g.indent--
	g.line("}")
}

// simpleStmt renders a declaration, assignment or expression statement
// without its terminator so it can also appear in a for header.
func (g *Generator) simpleStmt(node *Node, fs *funcScope) string {
	switch node.Kind {
	case NodeVarDecl:
		// The initializer is rendered before the new name is introduced.
		value := csharpDefaults[node.Type]
		if node.Value != nil {
			value = g.expr(node.Value)
		}
		return fmt.Sprintf("%s %s = %s", csharpTypes[node.Type], g.declare(fs, node), value)
	case NodeAssign:
		return g.nameOf(node) + " = " + g.expr(node.Value)
	case NodeExprStmt:
		if node.Value.Kind == NodeCall {
			return g.expr(node.Value)
		}
		// C# only allows calls and assignments as statements.
		return "_ = " + g.expr(node.Value)
	default:
		panic("codegen: unexpected simple statement kind " + string(node.Kind))
	}
}

func readLine(typ Type) string {
	switch typ {
	case TypeInt:
		return "int.Parse(Console.ReadLine()!, CultureInfo.InvariantCulture)"
	case TypeFloat:
		return "float.Parse(Console.ReadLine()!, CultureInfo.InvariantCulture)"
	case TypeBool:
		return "bool.Parse(Console.ReadLine()!)"
	case TypeChar:
		return "Console.ReadLine()![0]"
	case TypeString:
		return "Console.ReadLine() ?? string.Empty"
	default:
		panic("codegen: input target was not analyzed")
	}
}

func (g *Generator) typeOf(expr *Node) Type {
	typ, ok := g.info.Types[expr]
	if !ok {
		panic("codegen: expression was not analyzed: " + string(expr.Kind))
	}
	return typ
}

// show renders expr converted to string.
func (g *Generator) show(expr *Node) string {
	return runtimeShow + "(" + g.expr(expr) + ")"
}

func (g *Generator) expr(node *Node) string {
	switch node.Kind {
	case NodeLiteral:
		return literal(node)

	case NodeIdent:
		return g.nameOf(node)

	case NodeCall:
		if node.Name == "main" {
			return "Main(System.Array.Empty<string>())"
		}
		args := make([]string, len(node.Children))
		for i, arg := range node.Children {
			args[i] = g.expr(arg)
		}
		return g.nameOf(node) + "(" + strings.Join(args, ", ") + ")"

	case NodeUnary:
		return "(" + opSymbols[node.Op] + g.expr(node.Left) + ")"

	case NodeBinary:
		left, right := g.expr(node.Left), g.expr(node.Right)
		if node.Op == PLUS && g.typeOf(node) == TypeString {
			if g.typeOf(node.Left) != TypeString {
				left = runtimeShow + "(" + left + ")"
			}
			if g.typeOf(node.Right) != TypeString {
				right = runtimeShow + "(" + right + ")"
			}
		}
		return "(" + left + " " + opSymbols[node.Op] + " " + right + ")"

	default:
		panic("codegen: unexpected expression kind " + string(node.Kind))
	}
}

func literal(node *Node) string {
	lit := node.Literal
	switch lit.Type {
	case TypeInt:
		return strconv.FormatInt(lit.Int, 10)
	case TypeFloat:
		return node.Token.Literal + "f"
	case TypeBool:
		return strconv.FormatBool(lit.Bool)
	case TypeChar:
		return "'" + escapeChar(rune(lit.Char), '\'') + "'"
	case TypeString:
		var b strings.Builder
		b.WriteByte('"')
		for i := 0; i < len(lit.String); {
			r, size := utf8.DecodeRuneInString(lit.String[i:])
			if r == utf8.RuneError && size == 1 {
				r = rune(lit.String[i])
			}
			b.WriteString(escapeChar(r, '"'))
			i += size
		}
		b.WriteByte('"')
		return b.String()
	default:
		panic("codegen: literal without a type")
	}
}

// escapeChar renders r inside a C# literal delimited by quote.
func escapeChar(r rune, quote rune) string {
	switch r {
	case '\\':
		return `\\`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case 0:
		return `\0`
	case quote:
		return `\` + string(quote)
	}
	// U+2028 and U+2029 end a line in C# source.
	if r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0) || r == 0x2028 || r == 0x2029 {
		return fmt.Sprintf(`\u%04x`, r)
	}
	return string(r)
}
