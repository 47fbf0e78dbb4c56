package lsp

import (
	"drift/internal/ast"
	"drift/internal/driver"
	"drift/internal/source"
	"drift/internal/symbols"
	"drift/internal/token"
)

// tokenAtOffset returns the token covering the byte offset. A cursor sitting
// right after an identifier still resolves to it, which is what editors
// expect for hover and completion at word boundaries.
func tokenAtOffset(tokens []token.Token, offset uint32) (token.Token, bool) {
	for _, tok := range tokens {
		if tok.Kind == token.EOF {
			break
		}
		if tok.Span.Contains(offset) {
			return tok, true
		}
		if tok.Kind == token.Ident && tok.Span.End == offset {
			return tok, true
		}
	}
	return token.Token{}, false
}

// symbolAtOffset resolves the symbol under a byte offset: a declaration name
// span wins, otherwise an identifier usage bound during resolution.
func symbolAtOffset(analysis *driver.FileAnalysis, offset uint32) (symbols.SymbolID, *symbols.Symbol) {
	if analysis == nil || analysis.Symbols == nil {
		return symbols.NoSymbolID, nil
	}
	table := analysis.Symbols.Table
	for i := uint32(1); i <= table.Symbols.Len(); i++ {
		sym := table.Symbols.Get(i)
		if sym.Span == (source.Span{}) {
			continue
		}
		if sym.Span.Contains(offset) || sym.Span.End == offset {
			return symbols.SymbolID(i), sym
		}
	}
	builder := analysis.Builder
	if builder == nil {
		return symbols.NoSymbolID, nil
	}
	for i := uint32(1); i <= builder.Exprs.Len(); i++ {
		expr := builder.Exprs.Get(i)
		if expr.Kind != ast.ExprIdent {
			continue
		}
		if !expr.Span.Contains(offset) && expr.Span.End != offset {
			continue
		}
		if symID, ok := analysis.Symbols.ExprSymbols[ast.ExprID(i)]; ok {
			return symID, table.Symbol(symID)
		}
	}
	return symbols.NoSymbolID, nil
}

func lookupName(analysis *driver.FileAnalysis, id source.StringID) string {
	if analysis == nil || analysis.Builder == nil {
		return ""
	}
	return analysis.Builder.LookupName(id)
}

// enclosingFunctionName returns the name of the innermost function whose
// body contains the offset, or "" at file scope.
func enclosingFunctionName(builder *ast.Builder, offset uint32) string {
	if builder == nil {
		return ""
	}
	name := ""
	var walk func(stmts []ast.StmtID)
	walk = func(stmts []ast.StmtID) {
		for _, id := range stmts {
			stmt := builder.Stmt(id)
			if stmt == nil {
				continue
			}
			if stmt.Kind == ast.StmtFn && stmt.BodySpan.Contains(offset) {
				name = builder.LookupName(stmt.Name)
			}
			walk(stmt.Body)
			walk(stmt.Else)
		}
	}
	walk(builder.File.Stmts)
	return name
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b >= 0x80
}

// identPrefixAt returns the identifier text immediately preceding offset.
func identPrefixAt(content []byte, offset uint32) string {
	if offset > safeUint32(len(content)) {
		offset = safeUint32(len(content))
	}
	start := offset
	for start > 0 && isIdentByte(content[start-1]) {
		start--
	}
	return string(content[start:offset])
}
