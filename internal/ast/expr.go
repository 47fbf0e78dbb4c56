package ast

import (
	"drift/internal/source"
	"drift/internal/token"
)

// ExprID addresses an expression in the builder's arena.
type ExprID uint32

const NoExprID ExprID = 0

func (id ExprID) IsValid() bool { return id != NoExprID }

// ExprKind discriminates expression nodes.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprIdent
	ExprIntLit
	ExprFloatLit
	ExprStringLit
	ExprBoolLit
	ExprNilLit
	ExprUnary
	ExprBinary
	ExprCall
	ExprIndex
	ExprArray
	ExprParen
)

// Expr is a single expression node. Child relations are stored as ExprIDs
// into the owning builder; which fields are meaningful depends on Kind:
//
//	ExprIdent:  Name
//	ExprUnary:  Op, X
//	ExprBinary: Op, X, Y
//	ExprCall:   X (callee), Args
//	ExprIndex:  X, Y
//	ExprArray:  Args (elements)
//	ExprParen:  X
//	literals:   Text holds the raw spelling
type Expr struct {
	Kind ExprKind
	Span source.Span
	Name source.StringID
	Text string
	Op   token.Kind
	X    ExprID
	Y    ExprID
	Args []ExprID
}
