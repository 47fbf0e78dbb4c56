package ast

import (
	"drift/internal/source"
)

// File is the root of a parsed source file: its top-level statements.
type File struct {
	FileID source.FileID
	Stmts  []StmtID
	Span   source.Span
}

// Builder owns the node arenas for one parse. All cross-node relations are
// arena indices, so the whole graph shares the builder's lifetime.
type Builder struct {
	Exprs   *Arena[Expr]
	Stmts   *Arena[Stmt]
	Strings *source.Interner
	File    File
}

// NewBuilder creates an empty builder backed by the given interner. A nil
// interner allocates a fresh one.
func NewBuilder(strings *source.Interner) *Builder {
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{
		Exprs:   NewArena[Expr](64),
		Stmts:   NewArena[Stmt](32),
		Strings: strings,
	}
}

// AddExpr allocates an expression node and returns its ID.
func (b *Builder) AddExpr(e Expr) ExprID {
	return ExprID(b.Exprs.Allocate(e))
}

// AddStmt allocates a statement node and returns its ID.
func (b *Builder) AddStmt(s Stmt) StmtID {
	return StmtID(b.Stmts.Allocate(s))
}

// Expr returns the node for id, or nil.
func (b *Builder) Expr(id ExprID) *Expr {
	return b.Exprs.Get(uint32(id))
}

// Stmt returns the node for id, or nil.
func (b *Builder) Stmt(id StmtID) *Stmt {
	return b.Stmts.Get(uint32(id))
}

// LookupName resolves an interned name, returning "" for invalid IDs.
func (b *Builder) LookupName(id source.StringID) string {
	if name, ok := b.Strings.Lookup(id); ok {
		return name
	}
	return ""
}
