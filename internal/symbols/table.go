package symbols

import (
	"drift/internal/ast"
	"drift/internal/source"
)

// Table owns the scope and symbol arenas for one resolved file.
type Table struct {
	Scopes  *ast.Arena[Scope]
	Symbols *ast.Arena[Symbol]
	Strings *source.Interner
}

// NewTable creates an empty table backed by the given interner.
func NewTable(strings *source.Interner) *Table {
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Table{
		Scopes:  ast.NewArena[Scope](16),
		Symbols: ast.NewArena[Symbol](32),
		Strings: strings,
	}
}

// Scope returns the scope for id, or nil.
func (t *Table) Scope(id ScopeID) *Scope {
	return t.Scopes.Get(uint32(id))
}

// Symbol returns the symbol for id, or nil.
func (t *Table) Symbol(id SymbolID) *Symbol {
	return t.Symbols.Get(uint32(id))
}

// NewScope allocates a scope and links it to its parent.
func (t *Table) NewScope(parent ScopeID, kind ScopeKind, span source.Span) ScopeID {
	id := ScopeID(t.Scopes.Allocate(Scope{
		Parent:    parent,
		Kind:      kind,
		Span:      span,
		NameIndex: make(map[source.StringID][]SymbolID),
	}))
	if p := t.Scope(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

// Declare allocates a symbol in the given scope and indexes its name.
func (t *Table) Declare(scopeID ScopeID, sym Symbol) SymbolID {
	sym.Scope = scopeID
	id := SymbolID(t.Symbols.Allocate(sym))
	scope := t.Scope(scopeID)
	scope.Symbols = append(scope.Symbols, id)
	scope.NameIndex[sym.Name] = append(scope.NameIndex[sym.Name], id)
	return id
}

// Lookup walks the scope chain from scopeID outward and returns the last
// declaration for name, or NoSymbolID.
func (t *Table) Lookup(scopeID ScopeID, name source.StringID) SymbolID {
	for scopeID.IsValid() {
		scope := t.Scope(scopeID)
		if scope == nil {
			break
		}
		if ids := scope.NameIndex[name]; len(ids) > 0 {
			return ids[len(ids)-1]
		}
		scopeID = scope.Parent
	}
	return NoSymbolID
}

// LookupName resolves an interned name, returning "" for invalid IDs.
func (t *Table) LookupName(id source.StringID) string {
	if name, ok := t.Strings.Lookup(id); ok {
		return name
	}
	return ""
}

// ScopeAt returns the innermost scope under root whose span contains the
// byte offset. Scopes without a span (builtin) never match their span but
// still fall through to children.
func (t *Table) ScopeAt(root ScopeID, fileID source.FileID, offset uint32) ScopeID {
	scope := t.Scope(root)
	if scope == nil {
		return NoScopeID
	}
	if scope.Span != (source.Span{}) {
		if scope.Span.File != fileID {
			return NoScopeID
		}
		if offset < scope.Span.Start || offset > scope.Span.End {
			return NoScopeID
		}
	}
	best := root
	for _, child := range scope.Children {
		if nested := t.ScopeAt(child, fileID, offset); nested.IsValid() {
			best = nested
		}
	}
	return best
}
