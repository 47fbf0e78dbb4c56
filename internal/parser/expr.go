package parser

import (
	"drift/internal/ast"
	"drift/internal/diag"
	"drift/internal/token"
)

// Binding powers for the Pratt loop; higher binds tighter.
const (
	bpNone    = 0
	bpOr      = 1
	bpAnd     = 2
	bpEq      = 3
	bpCompare = 4
	bpAdd     = 5
	bpMul     = 6
	bpUnary   = 7
	bpPostfix = 8
)

func infixPower(kind token.Kind) int {
	switch kind {
	case token.OrOr:
		return bpOr
	case token.AndAnd:
		return bpAnd
	case token.EqEq, token.BangEq:
		return bpEq
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return bpCompare
	case token.Plus, token.Minus:
		return bpAdd
	case token.Star, token.Slash, token.Percent:
		return bpMul
	default:
		return bpNone
	}
}

func (p *parser) parseExpr(minPower int) ast.ExprID {
	left := p.parseUnary()
	if !left.IsValid() {
		return ast.NoExprID
	}
	for {
		op := p.peek().Kind
		power := infixPower(op)
		if power == bpNone || power <= minPower {
			return left
		}
		p.advance()
		right := p.parseExpr(power)
		span := p.builder.Expr(left).Span
		if r := p.builder.Expr(right); r != nil {
			span = span.Cover(r.Span)
		}
		left = p.builder.AddExpr(ast.Expr{
			Kind: ast.ExprBinary,
			Span: span,
			Op:   op,
			X:    left,
			Y:    right,
		})
	}
}

func (p *parser) parseUnary() ast.ExprID {
	switch p.peek().Kind {
	case token.Minus, token.Bang:
		opTok := p.advance()
		operand := p.parseUnary()
		span := opTok.Span
		if x := p.builder.Expr(operand); x != nil {
			span = span.Cover(x.Span)
		}
		return p.builder.AddExpr(ast.Expr{
			Kind: ast.ExprUnary,
			Span: span,
			Op:   opTok.Kind,
			X:    operand,
		})
	default:
		return p.parsePostfix()
	}
}

func (p *parser) parsePostfix() ast.ExprID {
	expr := p.parsePrimary()
	if !expr.IsValid() {
		return ast.NoExprID
	}
	for {
		switch p.peek().Kind {
		case token.LParen:
			expr = p.parseCall(expr)
		case token.LBracket:
			expr = p.parseIndex(expr)
		default:
			return expr
		}
	}
}

func (p *parser) parseCall(callee ast.ExprID) ast.ExprID {
	open := p.advance()
	args := make([]ast.ExprID, 0, 4)
	for !p.at(token.RParen) && !p.at(token.EOF) {
		arg := p.parseExpr(0)
		if !arg.IsValid() {
			break
		}
		args = append(args, arg)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	span := p.builder.Expr(callee).Span.Cover(open.Span)
	if p.at(token.RParen) {
		closeTok := p.advance()
		span = span.Cover(closeTok.Span)
	} else {
		diag.ReportError(p.reporter, diag.SynUnclosedParen, open.Span, "missing ')' in call")
	}
	return p.builder.AddExpr(ast.Expr{
		Kind: ast.ExprCall,
		Span: span,
		X:    callee,
		Args: args,
	})
}

func (p *parser) parseIndex(target ast.ExprID) ast.ExprID {
	open := p.advance()
	index := p.parseExpr(0)
	span := p.builder.Expr(target).Span.Cover(open.Span)
	if p.at(token.RBracket) {
		closeTok := p.advance()
		span = span.Cover(closeTok.Span)
	} else {
		diag.ReportError(p.reporter, diag.SynUnclosedBracket, open.Span, "missing ']' in index")
	}
	return p.builder.AddExpr(ast.Expr{
		Kind: ast.ExprIndex,
		Span: span,
		X:    target,
		Y:    index,
	})
}

func (p *parser) parsePrimary() ast.ExprID {
	tok := p.peek()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		return p.builder.AddExpr(ast.Expr{
			Kind: ast.ExprIdent,
			Span: tok.Span,
			Name: p.builder.Strings.Intern(tok.Text),
			Text: tok.Text,
		})
	case token.IntLit:
		p.advance()
		return p.builder.AddExpr(ast.Expr{Kind: ast.ExprIntLit, Span: tok.Span, Text: tok.Text})
	case token.FloatLit:
		p.advance()
		return p.builder.AddExpr(ast.Expr{Kind: ast.ExprFloatLit, Span: tok.Span, Text: tok.Text})
	case token.StringLit:
		p.advance()
		return p.builder.AddExpr(ast.Expr{Kind: ast.ExprStringLit, Span: tok.Span, Text: tok.Text})
	case token.KwTrue, token.KwFalse:
		p.advance()
		return p.builder.AddExpr(ast.Expr{Kind: ast.ExprBoolLit, Span: tok.Span, Text: tok.Text})
	case token.KwNil:
		p.advance()
		return p.builder.AddExpr(ast.Expr{Kind: ast.ExprNilLit, Span: tok.Span, Text: tok.Text})
	case token.LParen:
		open := p.advance()
		inner := p.parseExpr(0)
		span := open.Span
		if p.at(token.RParen) {
			closeTok := p.advance()
			span = span.Cover(closeTok.Span)
		} else {
			diag.ReportError(p.reporter, diag.SynUnclosedParen, open.Span, "missing closing ')'")
		}
		return p.builder.AddExpr(ast.Expr{Kind: ast.ExprParen, Span: span, X: inner})
	case token.LBracket:
		return p.parseArray()
	default:
		diag.ReportError(p.reporter, diag.SynExpectExpression, tok.Span,
			"expected expression, found '"+tok.Kind.String()+"'")
		return ast.NoExprID
	}
}

func (p *parser) parseArray() ast.ExprID {
	open := p.advance()
	elems := make([]ast.ExprID, 0, 4)
	for !p.at(token.RBracket) && !p.at(token.EOF) {
		elem := p.parseExpr(0)
		if !elem.IsValid() {
			break
		}
		elems = append(elems, elem)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	span := open.Span
	if p.at(token.RBracket) {
		closeTok := p.advance()
		span = span.Cover(closeTok.Span)
	} else {
		diag.ReportError(p.reporter, diag.SynUnclosedBracket, open.Span, "missing closing ']'")
	}
	return p.builder.AddExpr(ast.Expr{Kind: ast.ExprArray, Span: span, Args: elems})
}
