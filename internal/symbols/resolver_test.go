package symbols

import (
	"testing"

	"drift/internal/ast"
	"drift/internal/diag"
	"drift/internal/parser"
	"drift/internal/source"
)

func resolve(t *testing.T, src string) (*ast.Builder, *Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.dr", []byte(src))
	bag := diag.NewBag(16)
	reporter := diag.BagReporter{Bag: bag}
	builder := parser.ParseFile(fs.Get(id), parser.Options{Reporter: reporter})
	res := Resolve(builder, Options{Reporter: reporter})
	return builder, res, bag
}

func findSymbol(res *Result, name string) (SymbolID, *Symbol) {
	nameID, ok := res.Table.Strings.ID(name)
	if !ok {
		return NoSymbolID, nil
	}
	for i := uint32(1); i <= res.Table.Symbols.Len(); i++ {
		sym := res.Table.Symbols.Get(i)
		if sym.Name == nameID && sym.Flags&SymbolFlagBuiltin == 0 {
			return SymbolID(i), sym
		}
	}
	return NoSymbolID, nil
}

func countCode(bag *diag.Bag, code diag.Code) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func TestResolveUndefinedName(t *testing.T) {
	_, _, bag := resolve(t, "mystery\n")
	if countCode(bag, diag.SemUndefinedName) != 1 {
		t.Fatalf("expected one SemUndefinedName, got %+v", bag.Items())
	}
}

func TestResolveDuplicateDeclaration(t *testing.T) {
	_, _, bag := resolve(t, "let a = 1\nlet a = 2\n")
	if countCode(bag, diag.SemDuplicateName) != 1 {
		t.Fatalf("expected one SemDuplicateName, got %+v", bag.Items())
	}
	for _, d := range bag.Items() {
		if d.Code == diag.SemDuplicateName && len(d.Notes) != 1 {
			t.Fatalf("expected note pointing at first declaration, got %+v", d)
		}
	}
}

func TestResolveShadowsBuiltin(t *testing.T) {
	_, _, bag := resolve(t, "let len = 1\n")
	if countCode(bag, diag.SemShadowsBuiltin) != 1 {
		t.Fatalf("expected one SemShadowsBuiltin, got %+v", bag.Items())
	}
	for _, d := range bag.Items() {
		if d.Code == diag.SemShadowsBuiltin && d.Severity != diag.SevWarning {
			t.Fatalf("shadowing must be a warning, got %+v", d)
		}
	}
}

func TestResolveUnusedLocal(t *testing.T) {
	_, _, bag := resolve(t, "fn f() {\n    let unused = 1\n}\n")
	if countCode(bag, diag.SemUnusedLocal) != 1 {
		t.Fatalf("expected one SemUnusedLocal, got %+v", bag.Items())
	}
}

func TestResolveFileScopeLetNeverUnused(t *testing.T) {
	// Файловые let — публичная поверхность, их не считаем мусором.
	_, _, bag := resolve(t, "let exported = 1\n")
	if countCode(bag, diag.SemUnusedLocal) != 0 {
		t.Fatalf("unexpected SemUnusedLocal: %+v", bag.Items())
	}
}

func TestResolveBreakOutsideLoop(t *testing.T) {
	_, _, bag := resolve(t, "break\n")
	if countCode(bag, diag.SemBreakOutsideLoop) != 1 {
		t.Fatalf("expected one SemBreakOutsideLoop, got %+v", bag.Items())
	}

	_, _, clean := resolve(t, "while true {\n    break\n}\n")
	if countCode(clean, diag.SemBreakOutsideLoop) != 0 {
		t.Fatalf("break inside loop must be fine, got %+v", clean.Items())
	}
}

func TestResolveBreakNotInheritedByFn(t *testing.T) {
	// Тело функции не наследует loop-контекст вызывающего.
	_, _, bag := resolve(t, "while true {\n    fn f() {\n        break\n    }\n}\n")
	if countCode(bag, diag.SemBreakOutsideLoop) != 1 {
		t.Fatalf("expected one SemBreakOutsideLoop, got %+v", bag.Items())
	}
}

func TestResolveUsagesRecorded(t *testing.T) {
	_, res, bag := resolve(t, "let a = 1\na\na\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	symID, sym := findSymbol(res, "a")
	if !symID.IsValid() || sym == nil {
		t.Fatal("symbol 'a' not found")
	}
	if len(res.Usages[symID]) != 2 {
		t.Fatalf("expected 2 usages, got %+v", res.Usages[symID])
	}
	if sym.Flags&SymbolFlagUsed == 0 {
		t.Fatal("expected used flag")
	}
}

func TestResolveLetInitializerSeesOuter(t *testing.T) {
	// let x = x читает внешний x, а не себя.
	_, res, bag := resolve(t, "let x = 1\nfn f() {\n    let x = x\n}\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	outerID, outer := findSymbol(res, "x")
	if outer == nil {
		t.Fatal("outer x not found")
	}
	if len(res.Usages[outerID]) != 1 {
		t.Fatalf("expected outer x to be read once, got %+v", res.Usages[outerID])
	}
}

func TestResolveParamsVisibleInBody(t *testing.T) {
	_, res, bag := resolve(t, "fn add(a, b) {\n    return a + b\n}\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	_, fn := findSymbol(res, "add")
	if fn == nil || fn.Kind != SymbolFunction || len(fn.Params) != 2 {
		t.Fatalf("unexpected function symbol: %+v", fn)
	}
}

func TestResolveBuiltinBinding(t *testing.T) {
	_, res, bag := resolve(t, "println(1)\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %+v", bag.Items())
	}
	found := false
	for _, symID := range res.ExprSymbols {
		sym := res.Table.Symbol(symID)
		if sym != nil && sym.Kind == SymbolBuiltin {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a usage bound to a builtin")
	}
}

func TestResolveForVariableScopedToBody(t *testing.T) {
	_, _, bag := resolve(t, "for i in range(3) {\n    i\n}\ni\n")
	// Внутри тела i видна, снаружи - нет.
	if countCode(bag, diag.SemUndefinedName) != 1 {
		t.Fatalf("expected one SemUndefinedName, got %+v", bag.Items())
	}
}

func TestScopeAtFindsInnermost(t *testing.T) {
	builder, res, _ := resolve(t, "fn f() {\n    let inner = 1\n    inner\n}\n")
	fileID := builder.File.FileID

	// Смещение внутри тела функции.
	scopeID := res.Table.ScopeAt(res.FileScope, fileID, 15)
	scope := res.Table.Scope(scopeID)
	if scope == nil || scope.Kind != ScopeFunction {
		t.Fatalf("expected function scope, got %+v", scope)
	}

	// Смещение на первом символе файла.
	topID := res.Table.ScopeAt(res.FileScope, fileID, 0)
	top := res.Table.Scope(topID)
	if top == nil || top.Kind != ScopeFile {
		t.Fatalf("expected file scope, got %+v", top)
	}
}
