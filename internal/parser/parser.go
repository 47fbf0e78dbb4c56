package parser

import (
	"drift/internal/ast"
	"drift/internal/diag"
	"drift/internal/lexer"
	"drift/internal/source"
	"drift/internal/token"
)

// Options configures parsing behavior.
type Options struct {
	Reporter diag.Reporter
	Strings  *source.Interner
}

// ParseFile lexes and parses a whole file into a fresh builder. The parser
// always returns a builder; syntax errors surface through the reporter and
// leave partial nodes behind so later phases can still work.
func ParseFile(file *source.File, opts Options) *ast.Builder {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	tokens := lexer.Tokenize(file, lexer.Options{Reporter: reporter})
	return Parse(file, tokens, opts)
}

// Parse parses already-lexed tokens. The token slice must be terminated by
// an EOF token, as produced by lexer.Tokenize.
func Parse(file *source.File, tokens []token.Token, opts Options) *ast.Builder {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	p := &parser{
		file:     file,
		tokens:   tokens,
		builder:  ast.NewBuilder(opts.Strings),
		reporter: reporter,
	}
	p.parseFile()
	return p.builder
}

type parser struct {
	file     *source.File
	tokens   []token.Token
	idx      int
	builder  *ast.Builder
	reporter diag.Reporter
}

func (p *parser) parseFile() {
	stmts := make([]ast.StmtID, 0, 16)
	for !p.at(token.EOF) {
		start := p.idx
		if id := p.parseStmt(); id.IsValid() {
			stmts = append(stmts, id)
		}
		if p.idx == start {
			// защита от зависания на непотреблённом токене
			p.advance()
		}
	}
	fileSpan := source.Span{File: p.file.ID, Start: 0, End: uint32(len(p.file.Content))}
	p.builder.File = ast.File{FileID: p.file.ID, Stmts: stmts, Span: fileSpan}
}

func (p *parser) parseStmt() ast.StmtID {
	switch p.peek().Kind {
	case token.KwLet:
		return p.parseLet()
	case token.KwFn:
		return p.parseFn()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwBreak:
		tok := p.advance()
		return p.builder.AddStmt(ast.Stmt{Kind: ast.StmtBreak, Span: tok.Span})
	case token.KwContinue:
		tok := p.advance()
		return p.builder.AddStmt(ast.Stmt{Kind: ast.StmtContinue, Span: tok.Span})
	case token.LBrace:
		body, span := p.parseBlock()
		return p.builder.AddStmt(ast.Stmt{Kind: ast.StmtBlock, Span: span, Body: body, BodySpan: span})
	case token.Semicolon:
		p.advance()
		return ast.NoStmtID
	default:
		return p.parseExprOrAssign()
	}
}

func (p *parser) parseLet() ast.StmtID {
	letTok := p.advance()
	nameTok, ok := p.expectIdent()
	if !ok {
		p.sync()
		return ast.NoStmtID
	}
	value := ast.NoExprID
	if p.at(token.Assign) {
		p.advance()
		value = p.parseExpr(0)
	}
	span := letTok.Span.Cover(nameTok.Span)
	if value.IsValid() {
		if v := p.builder.Expr(value); v != nil {
			span = span.Cover(v.Span)
		}
	}
	return p.builder.AddStmt(ast.Stmt{
		Kind:     ast.StmtLet,
		Span:     span,
		Name:     p.builder.Strings.Intern(nameTok.Text),
		NameSpan: nameTok.Span,
		Expr:     value,
	})
}

func (p *parser) parseFn() ast.StmtID {
	fnTok := p.advance()
	nameTok, ok := p.expectIdent()
	if !ok {
		p.sync()
		return ast.NoStmtID
	}
	if !p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name") {
		p.sync()
		return ast.NoStmtID
	}
	params := make([]ast.Param, 0, 4)
	for !p.at(token.RParen) && !p.at(token.EOF) {
		paramTok, pok := p.expectIdent()
		if !pok {
			break
		}
		params = append(params, ast.Param{
			Name: p.builder.Strings.Intern(paramTok.Text),
			Span: paramTok.Span,
		})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	if !p.expect(token.RParen, diag.SynUnclosedParen, "missing ')' in parameter list") {
		p.sync()
		return ast.NoStmtID
	}
	body, bodySpan := p.parseBlock()
	return p.builder.AddStmt(ast.Stmt{
		Kind:     ast.StmtFn,
		Span:     fnTok.Span.Cover(bodySpan),
		Name:     p.builder.Strings.Intern(nameTok.Text),
		NameSpan: nameTok.Span,
		Params:   params,
		Body:     body,
		BodySpan: bodySpan,
	})
}

func (p *parser) parseIf() ast.StmtID {
	ifTok := p.advance()
	cond := p.parseExpr(0)
	body, bodySpan := p.parseBlock()
	stmt := ast.Stmt{
		Kind:     ast.StmtIf,
		Span:     ifTok.Span.Cover(bodySpan),
		Expr:     cond,
		Body:     body,
		BodySpan: bodySpan,
	}
	if p.at(token.KwElse) {
		p.advance()
		if p.at(token.KwIf) {
			elseIf := p.parseIf()
			stmt.Else = []ast.StmtID{elseIf}
			if node := p.builder.Stmt(elseIf); node != nil {
				stmt.ElseSpan = node.Span
				stmt.Span = stmt.Span.Cover(node.Span)
			}
		} else {
			elseBody, elseSpan := p.parseBlock()
			stmt.Else = elseBody
			stmt.ElseSpan = elseSpan
			stmt.Span = stmt.Span.Cover(elseSpan)
		}
	}
	return p.builder.AddStmt(stmt)
}

func (p *parser) parseWhile() ast.StmtID {
	whileTok := p.advance()
	cond := p.parseExpr(0)
	body, bodySpan := p.parseBlock()
	return p.builder.AddStmt(ast.Stmt{
		Kind:     ast.StmtWhile,
		Span:     whileTok.Span.Cover(bodySpan),
		Expr:     cond,
		Body:     body,
		BodySpan: bodySpan,
	})
}

func (p *parser) parseFor() ast.StmtID {
	forTok := p.advance()
	nameTok, ok := p.expectIdent()
	if !ok {
		p.sync()
		return ast.NoStmtID
	}
	if !p.at(token.KwIn) {
		diag.ReportError(p.reporter, diag.SynForMissingIn, p.peek().Span,
			"expected 'in' after loop variable")
		p.sync()
		return ast.NoStmtID
	}
	p.advance()
	iter := p.parseExpr(0)
	body, bodySpan := p.parseBlock()
	return p.builder.AddStmt(ast.Stmt{
		Kind:     ast.StmtFor,
		Span:     forTok.Span.Cover(bodySpan),
		Name:     p.builder.Strings.Intern(nameTok.Text),
		NameSpan: nameTok.Span,
		Expr:     iter,
		Body:     body,
		BodySpan: bodySpan,
	})
}

func (p *parser) parseReturn() ast.StmtID {
	retTok := p.advance()
	span := retTok.Span
	value := ast.NoExprID
	if p.startsExpr() {
		value = p.parseExpr(0)
		if v := p.builder.Expr(value); v != nil {
			span = span.Cover(v.Span)
		}
	}
	return p.builder.AddStmt(ast.Stmt{Kind: ast.StmtReturn, Span: span, Expr: value})
}

func (p *parser) parseExprOrAssign() ast.StmtID {
	target := p.parseExpr(0)
	if !target.IsValid() {
		p.sync()
		return ast.NoStmtID
	}
	targetNode := p.builder.Expr(target)
	if p.at(token.Assign) {
		assignTok := p.advance()
		if targetNode.Kind != ast.ExprIdent && targetNode.Kind != ast.ExprIndex {
			diag.ReportError(p.reporter, diag.SynBadAssignTarget, assignTok.Span,
				"invalid assignment target")
		}
		value := p.parseExpr(0)
		span := targetNode.Span
		if v := p.builder.Expr(value); v != nil {
			span = span.Cover(v.Span)
		}
		return p.builder.AddStmt(ast.Stmt{
			Kind:  ast.StmtAssign,
			Span:  span,
			Expr:  target,
			Expr2: value,
		})
	}
	return p.builder.AddStmt(ast.Stmt{Kind: ast.StmtExpr, Span: targetNode.Span, Expr: target})
}

func (p *parser) parseBlock() ([]ast.StmtID, source.Span) {
	open := p.peek()
	if !p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'") {
		return nil, open.Span
	}
	stmts := make([]ast.StmtID, 0, 8)
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		start := p.idx
		if id := p.parseStmt(); id.IsValid() {
			stmts = append(stmts, id)
		}
		if p.idx == start {
			p.advance()
		}
	}
	span := open.Span
	if p.at(token.RBrace) {
		closeTok := p.advance()
		span = open.Span.Cover(closeTok.Span)
	} else {
		diag.ReportError(p.reporter, diag.SynUnclosedBrace, open.Span, "missing closing '}'")
		span = open.Span.Cover(p.peek().Span)
	}
	return stmts, span
}

// startsExpr reports whether the current token can begin an expression.
func (p *parser) startsExpr() bool {
	switch p.peek().Kind {
	case token.Ident, token.IntLit, token.FloatLit, token.StringLit,
		token.KwTrue, token.KwFalse, token.KwNil,
		token.Minus, token.Bang, token.LParen, token.LBracket:
		return true
	default:
		return false
	}
}

// sync skips tokens until a likely statement boundary.
func (p *parser) sync() {
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.KwLet, token.KwFn, token.KwIf, token.KwWhile, token.KwFor,
			token.KwReturn, token.KwBreak, token.KwContinue, token.RBrace:
			return
		case token.Semicolon:
			p.advance()
			return
		}
		p.advance()
	}
}

func (p *parser) peek() token.Token {
	if p.idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.idx]
}

func (p *parser) at(kind token.Kind) bool {
	return p.peek().Kind == kind
}

func (p *parser) advance() token.Token {
	tok := p.peek()
	if p.idx < len(p.tokens)-1 {
		p.idx++
	}
	return tok
}

func (p *parser) expect(kind token.Kind, code diag.Code, msg string) bool {
	if p.at(kind) {
		p.advance()
		return true
	}
	diag.ReportError(p.reporter, code, p.peek().Span, msg)
	return false
}

func (p *parser) expectIdent() (token.Token, bool) {
	if p.at(token.Ident) {
		return p.advance(), true
	}
	diag.ReportError(p.reporter, diag.SynExpectIdentifier, p.peek().Span,
		"expected identifier, found '"+p.peek().Kind.String()+"'")
	return token.Token{}, false
}
