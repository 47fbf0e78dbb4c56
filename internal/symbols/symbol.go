package symbols

import (
	"drift/internal/source"
)

// SymbolID addresses a symbol in the table's arena. Zero is invalid.
type SymbolID uint32

const NoSymbolID SymbolID = 0

func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// SymbolKind discriminates what a name is bound to.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolFunction
	SymbolLet
	SymbolParam
	SymbolForVar
	SymbolBuiltin
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolLet:
		return "let"
	case SymbolParam:
		return "param"
	case SymbolForVar:
		return "for"
	case SymbolBuiltin:
		return "builtin"
	}
	return "invalid"
}

// SymbolFlags carries resolution bookkeeping bits.
type SymbolFlags uint8

const (
	// SymbolFlagBuiltin marks predeclared names.
	SymbolFlagBuiltin SymbolFlags = 1 << iota
	// SymbolFlagUsed is set once a usage binds to the symbol.
	SymbolFlagUsed
)

// Symbol is one declared name. Span is the declaration name span; Scope is
// the scope the symbol was declared in (back-reference by index).
type Symbol struct {
	Name   source.StringID
	Kind   SymbolKind
	Span   source.Span
	Scope  ScopeID
	Flags  SymbolFlags
	Params []source.StringID // function parameter names, in order
}
