package symbols

import (
	"drift/internal/source"
)

// ScopeID addresses a scope in the table's arena. Zero is invalid.
type ScopeID uint32

const NoScopeID ScopeID = 0

func (id ScopeID) IsValid() bool { return id != NoScopeID }

// ScopeKind discriminates lexical scope levels.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	// ScopeBuiltin holds predeclared names; parent of every file scope.
	ScopeBuiltin
	ScopeFile
	ScopeFunction
	ScopeBlock
	ScopeLoop
)

// Scope is one lexical scope. Parent/Children and the declared symbols are
// stored as arena indices; NameIndex keeps declaration order per name.
type Scope struct {
	Parent    ScopeID
	Kind      ScopeKind
	Span      source.Span
	Children  []ScopeID
	Symbols   []SymbolID
	NameIndex map[source.StringID][]SymbolID
}
