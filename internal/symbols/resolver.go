package symbols

import (
	"drift/internal/ast"
	"drift/internal/diag"
	"drift/internal/source"
)

// Options configures resolution.
type Options struct {
	Reporter diag.Reporter
}

// Result is the symbol information for one resolved file.
type Result struct {
	Table        *Table
	BuiltinScope ScopeID
	FileScope    ScopeID
	// ExprSymbols binds every resolved identifier expression to its symbol.
	ExprSymbols map[ast.ExprID]SymbolID
	// Usages records the reference spans for each symbol, in source order.
	Usages map[SymbolID][]source.Span
}

// Resolve builds the scope tree for a parsed file, binds identifier usages
// to declarations, and reports semantic diagnostics.
func Resolve(builder *ast.Builder, opts Options) *Result {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	table := NewTable(builder.Strings)
	res := &Result{
		Table:       table,
		ExprSymbols: make(map[ast.ExprID]SymbolID),
		Usages:      make(map[SymbolID][]source.Span),
	}
	r := &resolver{
		builder:  builder,
		table:    table,
		res:      res,
		reporter: reporter,
	}

	res.BuiltinScope = table.NewScope(NoScopeID, ScopeBuiltin, source.Span{})
	for _, b := range Builtins() {
		params := make([]source.StringID, 0, len(b.Params))
		for _, p := range b.Params {
			params = append(params, builder.Strings.Intern(p))
		}
		table.Declare(res.BuiltinScope, Symbol{
			Name:   builder.Strings.Intern(b.Name),
			Kind:   SymbolBuiltin,
			Flags:  SymbolFlagBuiltin,
			Params: params,
		})
	}

	res.FileScope = table.NewScope(res.BuiltinScope, ScopeFile, builder.File.Span)
	r.resolveStmts(builder.File.Stmts, res.FileScope, 0)
	r.reportUnused()
	return res
}

type resolver struct {
	builder  *ast.Builder
	table    *Table
	res      *Result
	reporter diag.Reporter
}

func (r *resolver) resolveStmts(stmts []ast.StmtID, scope ScopeID, loopDepth int) {
	for _, id := range stmts {
		r.resolveStmt(id, scope, loopDepth)
	}
}

func (r *resolver) resolveStmt(id ast.StmtID, scope ScopeID, loopDepth int) {
	stmt := r.builder.Stmt(id)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ast.StmtLet:
		// Инициализатор видит внешнюю привязку: let x = x читает старый x.
		r.resolveExpr(stmt.Expr, scope)
		r.declare(scope, Symbol{Name: stmt.Name, Kind: SymbolLet, Span: stmt.NameSpan})
	case ast.StmtFn:
		r.declare(scope, Symbol{
			Name:   stmt.Name,
			Kind:   SymbolFunction,
			Span:   stmt.NameSpan,
			Params: paramNames(stmt.Params),
		})
		fnScope := r.table.NewScope(scope, ScopeFunction, stmt.BodySpan)
		for _, param := range stmt.Params {
			r.declare(fnScope, Symbol{Name: param.Name, Kind: SymbolParam, Span: param.Span})
		}
		// Тело не наследует loop-контекст вызывающего.
		r.resolveStmts(stmt.Body, fnScope, 0)
	case ast.StmtExpr:
		r.resolveExpr(stmt.Expr, scope)
	case ast.StmtAssign:
		r.resolveExpr(stmt.Expr, scope)
		r.resolveExpr(stmt.Expr2, scope)
	case ast.StmtIf:
		r.resolveExpr(stmt.Expr, scope)
		thenScope := r.table.NewScope(scope, ScopeBlock, stmt.BodySpan)
		r.resolveStmts(stmt.Body, thenScope, loopDepth)
		if len(stmt.Else) > 0 {
			elseScope := r.table.NewScope(scope, ScopeBlock, stmt.ElseSpan)
			r.resolveStmts(stmt.Else, elseScope, loopDepth)
		}
	case ast.StmtWhile:
		r.resolveExpr(stmt.Expr, scope)
		bodyScope := r.table.NewScope(scope, ScopeLoop, stmt.BodySpan)
		r.resolveStmts(stmt.Body, bodyScope, loopDepth+1)
	case ast.StmtFor:
		r.resolveExpr(stmt.Expr, scope)
		bodyScope := r.table.NewScope(scope, ScopeLoop, stmt.BodySpan)
		r.declare(bodyScope, Symbol{Name: stmt.Name, Kind: SymbolForVar, Span: stmt.NameSpan})
		r.resolveStmts(stmt.Body, bodyScope, loopDepth+1)
	case ast.StmtReturn:
		r.resolveExpr(stmt.Expr, scope)
	case ast.StmtBreak, ast.StmtContinue:
		if loopDepth == 0 {
			diag.ReportError(r.reporter, diag.SemBreakOutsideLoop, stmt.Span,
				"loop control statement outside a loop")
		}
	case ast.StmtBlock:
		blockScope := r.table.NewScope(scope, ScopeBlock, stmt.BodySpan)
		r.resolveStmts(stmt.Body, blockScope, loopDepth)
	}
}

func (r *resolver) resolveExpr(id ast.ExprID, scope ScopeID) {
	expr := r.builder.Expr(id)
	if expr == nil {
		return
	}
	switch expr.Kind {
	case ast.ExprIdent:
		symID := r.table.Lookup(scope, expr.Name)
		if !symID.IsValid() {
			diag.ReportError(r.reporter, diag.SemUndefinedName, expr.Span,
				"undefined name '"+r.builder.LookupName(expr.Name)+"'")
			return
		}
		r.res.ExprSymbols[id] = symID
		r.res.Usages[symID] = append(r.res.Usages[symID], expr.Span)
		r.table.Symbol(symID).Flags |= SymbolFlagUsed
	case ast.ExprUnary, ast.ExprParen:
		r.resolveExpr(expr.X, scope)
	case ast.ExprBinary, ast.ExprIndex:
		r.resolveExpr(expr.X, scope)
		r.resolveExpr(expr.Y, scope)
	case ast.ExprCall:
		r.resolveExpr(expr.X, scope)
		for _, arg := range expr.Args {
			r.resolveExpr(arg, scope)
		}
	case ast.ExprArray:
		for _, elem := range expr.Args {
			r.resolveExpr(elem, scope)
		}
	}
}

func (r *resolver) declare(scope ScopeID, sym Symbol) {
	name := r.table.LookupName(sym.Name)
	if ids := r.table.Scope(scope).NameIndex[sym.Name]; len(ids) > 0 {
		prev := r.table.Symbol(ids[len(ids)-1])
		r.reporter.Report(diag.SemDuplicateName, diag.SevError, sym.Span,
			"duplicate declaration of '"+name+"'",
			[]diag.Note{{Span: prev.Span, Msg: "previously declared here"}})
	} else if builtinShadowed(r.table, r.res.BuiltinScope, sym.Name) {
		diag.ReportWarning(r.reporter, diag.SemShadowsBuiltin, sym.Span,
			"declaration of '"+name+"' shadows a builtin")
	}
	r.table.Declare(scope, sym)
}

// reportUnused warns about let-bindings in local scopes that were never read.
func (r *resolver) reportUnused() {
	for i := uint32(1); i <= r.table.Symbols.Len(); i++ {
		sym := r.table.Symbols.Get(i)
		if sym.Kind != SymbolLet {
			continue
		}
		if sym.Flags&SymbolFlagUsed != 0 {
			continue
		}
		scope := r.table.Scope(sym.Scope)
		if scope == nil || scope.Kind == ScopeFile {
			continue
		}
		diag.ReportWarning(r.reporter, diag.SemUnusedLocal, sym.Span,
			"unused local '"+r.table.LookupName(sym.Name)+"'")
	}
}

func builtinShadowed(table *Table, builtinScope ScopeID, name source.StringID) bool {
	scope := table.Scope(builtinScope)
	if scope == nil {
		return false
	}
	return len(scope.NameIndex[name]) > 0
}

func paramNames(params []ast.Param) []source.StringID {
	out := make([]source.StringID, 0, len(params))
	for _, p := range params {
		out = append(out, p.Name)
	}
	return out
}
