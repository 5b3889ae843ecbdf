package macs

import "fmt"

// SymbolKind distinguishes variables from functions.
type SymbolKind int

const (
	SymVariable SymbolKind = iota
	SymFunction
)

func (k SymbolKind) String() string {
	if k == SymFunction {
		return "function"
	}
	return "variable"
}

// Symbol is a named entity recorded in a scope. For variables only Type is
// meaningful; for functions Params and Return describe the signature.
type Symbol struct {
	Kind   SymbolKind
	Name   string
	Type   Type
	Params []Type
	Return Type

	// Token is where the symbol was declared.
	Token Token
}

// Scope maps names to symbols and links to its enclosing scope. The global
// scope has a nil parent.
type Scope struct {
	parent  *Scope
	symbols map[string]*Symbol
	order   []*Symbol
}

// NewScope creates an empty scope nested in parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, symbols: make(map[string]*Symbol)}
}

// Parent returns the enclosing scope, or nil for the global scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Define adds sym to this scope. A name may be defined once per scope.
func (s *Scope) Define(sym *Symbol) error {
	if _, exists := s.symbols[sym.Name]; exists {
		return fmt.Errorf("%s '%s' already declared in this scope", sym.Kind, sym.Name)
	}
	s.symbols[sym.Name] = sym
	s.order = append(s.order, sym)
	return nil
}

// LookupLocal finds name in this scope only.
func (s *Scope) LookupLocal(name string) *Symbol {
	return s.symbols[name]
}

// Resolve finds name in this scope or the nearest enclosing scope that
// defines it. It returns nil when the name is not declared.
func (s *Scope) Resolve(name string) *Symbol {
	for scope := s; scope != nil; scope = scope.parent {
		if sym, ok := scope.symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// Symbols returns the symbols defined directly in this scope in declaration
// order.
func (s *Scope) Symbols() []*Symbol {
	return s.order
}
