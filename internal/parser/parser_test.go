package parser

import (
	"testing"

	"drift/internal/ast"
	"drift/internal/diag"
	"drift/internal/source"
)

func parse(t *testing.T, src string) (*ast.Builder, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.dr", []byte(src))
	bag := diag.NewBag(16)
	builder := ParseFile(fs.Get(id), Options{Reporter: diag.BagReporter{Bag: bag}})
	return builder, bag
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestParseLet(t *testing.T) {
	builder, bag := parse(t, "let answer = 40 + 2\n")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	stmts := builder.File.Stmts
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	stmt := builder.Stmt(stmts[0])
	if stmt.Kind != ast.StmtLet || builder.LookupName(stmt.Name) != "answer" {
		t.Fatalf("unexpected statement: %+v", stmt)
	}
	init := builder.Expr(stmt.Expr)
	if init == nil || init.Kind != ast.ExprBinary {
		t.Fatalf("expected binary initializer, got %+v", init)
	}
}

func TestParseFn(t *testing.T) {
	builder, bag := parse(t, "fn add(a, b) {\n    return a + b\n}\n")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	stmt := builder.Stmt(builder.File.Stmts[0])
	if stmt.Kind != ast.StmtFn || builder.LookupName(stmt.Name) != "add" {
		t.Fatalf("unexpected statement: %+v", stmt)
	}
	if len(stmt.Params) != 2 ||
		builder.LookupName(stmt.Params[0].Name) != "a" ||
		builder.LookupName(stmt.Params[1].Name) != "b" {
		t.Fatalf("unexpected params: %+v", stmt.Params)
	}
	if len(stmt.Body) != 1 || builder.Stmt(stmt.Body[0]).Kind != ast.StmtReturn {
		t.Fatalf("unexpected body: %+v", stmt.Body)
	}
}

func TestParseIfElseChain(t *testing.T) {
	builder, bag := parse(t, "if a {\n} else if b {\n} else {\n}\n")
	// a и b не объявлены, но это дело резолвера.
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	stmt := builder.Stmt(builder.File.Stmts[0])
	if stmt.Kind != ast.StmtIf {
		t.Fatalf("expected if, got %+v", stmt)
	}
	if len(stmt.Else) != 1 {
		t.Fatalf("expected nested else-if, got %+v", stmt.Else)
	}
	nested := builder.Stmt(stmt.Else[0])
	if nested.Kind != ast.StmtIf {
		t.Fatalf("expected nested if, got %+v", nested)
	}
	if nested.ElseSpan.Empty() {
		t.Fatalf("expected final else block, got %+v", nested)
	}
}

func TestParseForIn(t *testing.T) {
	builder, bag := parse(t, "for i in range(3) {\n    i\n}\n")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	stmt := builder.Stmt(builder.File.Stmts[0])
	if stmt.Kind != ast.StmtFor || builder.LookupName(stmt.Name) != "i" {
		t.Fatalf("unexpected statement: %+v", stmt)
	}
	if iter := builder.Expr(stmt.Expr); iter == nil || iter.Kind != ast.ExprCall {
		t.Fatalf("expected call iterable, got %+v", iter)
	}
}

func TestParseForMissingIn(t *testing.T) {
	_, bag := parse(t, "for i 10 {\n}\n")
	if !hasCode(bag, diag.SynForMissingIn) {
		t.Fatalf("expected SynForMissingIn, got %+v", bag.Items())
	}
}

func TestParseLetMissingName(t *testing.T) {
	builder, bag := parse(t, "let = 1\n")
	if bag.Len() != 1 || bag.Items()[0].Code != diag.SynExpectIdentifier {
		t.Fatalf("expected exactly one SynExpectIdentifier, got %+v", bag.Items())
	}
	if len(builder.File.Stmts) != 0 {
		t.Fatalf("expected no statements, got %d", len(builder.File.Stmts))
	}
}

func TestParseRecoveryContinues(t *testing.T) {
	builder, bag := parse(t, "let = 1\nlet y = 2\n")
	if !hasCode(bag, diag.SynExpectIdentifier) {
		t.Fatalf("expected SynExpectIdentifier, got %+v", bag.Items())
	}
	// Второй let выживает после синхронизации.
	if len(builder.File.Stmts) != 1 {
		t.Fatalf("expected 1 surviving statement, got %d", len(builder.File.Stmts))
	}
	stmt := builder.Stmt(builder.File.Stmts[0])
	if stmt.Kind != ast.StmtLet || builder.LookupName(stmt.Name) != "y" {
		t.Fatalf("unexpected statement: %+v", stmt)
	}
}

func TestParseUnclosedParen(t *testing.T) {
	_, bag := parse(t, "let y = (1\n")
	if !hasCode(bag, diag.SynUnclosedParen) {
		t.Fatalf("expected SynUnclosedParen, got %+v", bag.Items())
	}
}

func TestParseUnclosedBracket(t *testing.T) {
	_, bag := parse(t, "let xs = [1, 2\n")
	if !hasCode(bag, diag.SynUnclosedBracket) {
		t.Fatalf("expected SynUnclosedBracket, got %+v", bag.Items())
	}
}

func TestParseUnclosedBrace(t *testing.T) {
	_, bag := parse(t, "fn f() {\n    1\n")
	if !hasCode(bag, diag.SynUnclosedBrace) {
		t.Fatalf("expected SynUnclosedBrace, got %+v", bag.Items())
	}
}

func TestParseBadAssignTarget(t *testing.T) {
	_, bag := parse(t, "1 = 2\n")
	if !hasCode(bag, diag.SynBadAssignTarget) {
		t.Fatalf("expected SynBadAssignTarget, got %+v", bag.Items())
	}
}

func TestParseAssign(t *testing.T) {
	builder, bag := parse(t, "x = 1\nxs[0] = 2\n")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	first := builder.Stmt(builder.File.Stmts[0])
	second := builder.Stmt(builder.File.Stmts[1])
	if first.Kind != ast.StmtAssign || second.Kind != ast.StmtAssign {
		t.Fatalf("expected assignments, got %+v / %+v", first, second)
	}
	if builder.Expr(second.Expr).Kind != ast.ExprIndex {
		t.Fatalf("expected index target, got %+v", builder.Expr(second.Expr))
	}
}

func TestParsePrecedence(t *testing.T) {
	builder, bag := parse(t, "let v = 1 + 2 * 3\n")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	stmt := builder.Stmt(builder.File.Stmts[0])
	root := builder.Expr(stmt.Expr)
	if root.Kind != ast.ExprBinary {
		t.Fatalf("expected binary root, got %+v", root)
	}
	// Корень должен быть сложением, умножение справа.
	right := builder.Expr(root.Y)
	if right == nil || right.Kind != ast.ExprBinary {
		t.Fatalf("expected nested binary on the right, got %+v", right)
	}
}

func TestParseArrayLiteral(t *testing.T) {
	builder, bag := parse(t, "let xs = [1, 2, 3]\n")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	stmt := builder.Stmt(builder.File.Stmts[0])
	arr := builder.Expr(stmt.Expr)
	if arr.Kind != ast.ExprArray || len(arr.Args) != 3 {
		t.Fatalf("unexpected array: %+v", arr)
	}
}
