package lsp

import "testing"

func TestApplyChangesFullReplace(t *testing.T) {
	got := applyChanges("old text", []textDocumentContentChangeEvent{
		{Text: "new text"},
	})
	if got != "new text" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestApplyChangesRangedSplice(t *testing.T) {
	src := "let x = 1\nlet y = 2\n"
	got := applyChanges(src, []textDocumentContentChangeEvent{
		{
			Range: &lspRange{
				Start: position{Line: 1, Character: 4},
				End:   position{Line: 1, Character: 5},
			},
			Text: "zzz",
		},
	})
	if got != "let x = 1\nlet zzz = 2\n" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestApplyChangesSequential(t *testing.T) {
	src := "ab"
	got := applyChanges(src, []textDocumentContentChangeEvent{
		{
			Range: &lspRange{Start: position{Line: 0, Character: 1}, End: position{Line: 0, Character: 1}},
			Text:  "X",
		},
		{
			Range: &lspRange{Start: position{Line: 0, Character: 0}, End: position{Line: 0, Character: 1}},
			Text:  "",
		},
	})
	if got != "Xb" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestApplyChangesUTF16Positions(t *testing.T) {
	// Позиция 3 — после эмодзи (два юнита).
	got := applyChanges("a🙂b", []textDocumentContentChangeEvent{
		{
			Range: &lspRange{Start: position{Line: 0, Character: 3}, End: position{Line: 0, Character: 3}},
			Text:  "X",
		},
	})
	if got != "a🙂Xb" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestApplyChangesClampsOutOfRange(t *testing.T) {
	got := applyChanges("ab\n", []textDocumentContentChangeEvent{
		{
			Range: &lspRange{
				Start: position{Line: 5, Character: 0},
				End:   position{Line: 9, Character: 9},
			},
			Text: "tail",
		},
	})
	if got != "ab\ntail" {
		t.Fatalf("unexpected text: %q", got)
	}
}
