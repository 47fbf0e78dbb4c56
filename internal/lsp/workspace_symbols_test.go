package lsp

import (
	"testing"
)

func workspaceStore(t *testing.T) *documentStore {
	t.Helper()
	st := newDocumentStore(0)
	if _, err := st.Open("file:///wsa.dr", 1, "fn parse() {\n    let parsed = 1\n}\n"); err != nil {
		t.Fatalf("open wsa.dr: %v", err)
	}
	if _, err := st.Open("file:///wsb.dr", 1, "let unparse = 1\n"); err != nil {
		t.Fatalf("open wsb.dr: %v", err)
	}
	return st
}

func TestWorkspaceSymbolsPrefixBeforeSubstring(t *testing.T) {
	st := workspaceStore(t)

	out, aborted := buildWorkspaceSymbols(st, "par", nil)
	if aborted {
		t.Fatal("unexpected abort")
	}
	names := make([]string, 0, len(out))
	for _, info := range out {
		names = append(names, info.Name)
	}
	want := []string{"parse", "parsed", "unparse"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
	if out[0].Kind != symbolKindFunction || out[1].Kind != symbolKindVariable {
		t.Fatalf("unexpected kinds: %+v", out)
	}
}

func TestWorkspaceSymbolsCaseInsensitive(t *testing.T) {
	st := workspaceStore(t)

	upper, aborted := buildWorkspaceSymbols(st, "PAR", nil)
	if aborted {
		t.Fatal("unexpected abort")
	}
	lower, _ := buildWorkspaceSymbols(st, "par", nil)
	if len(upper) != len(lower) {
		t.Fatalf("case-insensitive mismatch: %d vs %d", len(upper), len(lower))
	}
}

func TestWorkspaceSymbolsContainerName(t *testing.T) {
	st := workspaceStore(t)

	out, _ := buildWorkspaceSymbols(st, "parsed", nil)
	if len(out) != 1 {
		t.Fatalf("expected 1 match, got %+v", out)
	}
	if out[0].ContainerName != "parse" {
		t.Fatalf("expected container 'parse', got %q", out[0].ContainerName)
	}
}

func TestWorkspaceSymbolsSkipsBuiltins(t *testing.T) {
	st := workspaceStore(t)

	out, _ := buildWorkspaceSymbols(st, "println", nil)
	if len(out) != 0 {
		t.Fatalf("builtins must not appear, got %+v", out)
	}
}

func TestWorkspaceSymbolsCancelled(t *testing.T) {
	st := workspaceStore(t)

	out, aborted := buildWorkspaceSymbols(st, "par", func() bool { return true })
	if !aborted {
		t.Fatal("expected abort")
	}
	if out != nil {
		t.Fatalf("expected nil result on abort, got %+v", out)
	}
}
