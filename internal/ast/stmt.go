package ast

import (
	"drift/internal/source"
)

// StmtID addresses a statement in the builder's arena.
type StmtID uint32

const NoStmtID StmtID = 0

func (id StmtID) IsValid() bool { return id != NoStmtID }

// StmtKind discriminates statement nodes.
type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtLet
	StmtFn
	StmtExpr
	StmtAssign
	StmtIf
	StmtWhile
	StmtFor
	StmtReturn
	StmtBreak
	StmtContinue
	StmtBlock
)

// Param is a function parameter declaration.
type Param struct {
	Name source.StringID
	Span source.Span
}

// Stmt is a single statement node. Meaningful fields per Kind:
//
//	StmtLet:    Name, NameSpan, Expr (initializer, may be NoExprID)
//	StmtFn:     Name, NameSpan, Params, Body, BodySpan
//	StmtExpr:   Expr
//	StmtAssign: Expr (target), Expr2 (value)
//	StmtIf:     Expr (cond), Body, BodySpan, Else (may be empty), ElseSpan
//	StmtWhile:  Expr (cond), Body, BodySpan
//	StmtFor:    Name, NameSpan (loop variable), Expr (iterable), Body, BodySpan
//	StmtReturn: Expr (may be NoExprID)
//	StmtBlock:  Body, BodySpan
type Stmt struct {
	Kind     StmtKind
	Span     source.Span
	Name     source.StringID
	NameSpan source.Span
	Params   []Param
	Expr     ExprID
	Expr2    ExprID
	Body     []StmtID
	BodySpan source.Span
	Else     []StmtID
	ElseSpan source.Span
}
