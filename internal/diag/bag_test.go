package diag

import (
	"testing"

	"drift/internal/source"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(2)
	if !bag.Add(NewError(SynUnexpectedToken, span(0, 0, 1), "one")) {
		t.Fatal("first add must succeed")
	}
	if !bag.Add(NewError(SynUnexpectedToken, span(0, 1, 2), "two")) {
		t.Fatal("second add must succeed")
	}
	if bag.Add(NewError(SynUnexpectedToken, span(0, 2, 3), "three")) {
		t.Fatal("third add must be rejected")
	}
	if bag.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", bag.Len())
	}
}

func TestBagSortOrder(t *testing.T) {
	bag := NewBag(8)
	bag.Add(New(SevWarning, SemUnusedLocal, span(1, 0, 1), "other file"))
	bag.Add(NewError(SynExpectExpression, span(0, 10, 11), "later"))
	bag.Add(NewError(SynUnexpectedToken, span(0, 2, 3), "earlier"))
	// На одном спане: ошибка раньше предупреждения, затем по коду.
	bag.Add(New(SevWarning, SemShadowsBuiltin, span(0, 2, 3), "same span warning"))
	bag.Sort()

	items := bag.Items()
	if items[0].Message != "earlier" {
		t.Fatalf("expected error first at same span, got %+v", items[0])
	}
	if items[1].Message != "same span warning" {
		t.Fatalf("expected warning second, got %+v", items[1])
	}
	if items[2].Message != "later" {
		t.Fatalf("expected later span third, got %+v", items[2])
	}
	if items[3].Message != "other file" {
		t.Fatalf("expected other file last, got %+v", items[3])
	}
}

func TestBagDedup(t *testing.T) {
	bag := NewBag(8)
	d := NewError(SemUndefinedName, span(0, 4, 5), "undefined name 'x'")
	bag.Add(d)
	bag.Add(d)
	bag.Add(NewError(SemUndefinedName, span(0, 8, 9), "undefined name 'y'"))
	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 items after dedup, got %d", bag.Len())
	}
}

func TestBagMergeGrowsLimit(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(SynUnexpectedToken, span(0, 0, 1), "a"))
	b := NewBag(2)
	b.Add(NewError(SynUnexpectedToken, span(0, 1, 2), "b1"))
	b.Add(NewError(SynUnexpectedToken, span(0, 2, 3), "b2"))

	a.Merge(b)
	if a.Len() != 3 {
		t.Fatalf("expected 3 items after merge, got %d", a.Len())
	}
	if a.Cap() < 3 {
		t.Fatalf("expected capacity to grow, got %d", a.Cap())
	}
}

func TestBagHasErrorsAndWarnings(t *testing.T) {
	bag := NewBag(4)
	if bag.HasErrors() || bag.HasWarnings() {
		t.Fatal("empty bag must be clean")
	}
	bag.Add(New(SevWarning, SemUnusedLocal, span(0, 0, 1), "w"))
	if bag.HasErrors() {
		t.Fatal("warning is not an error")
	}
	if !bag.HasWarnings() {
		t.Fatal("expected HasWarnings")
	}
	bag.Add(NewError(SemUndefinedName, span(0, 1, 2), "e"))
	if !bag.HasErrors() {
		t.Fatal("expected HasErrors")
	}
}

func TestCodeID(t *testing.T) {
	cases := []struct {
		code Code
		want string
	}{
		{LexBadNumber, "LEX1003"},
		{SynUnexpectedToken, "SYN2001"},
		{SemUndefinedName, "SEM3001"},
		{UnknownCode, "E0000"},
	}
	for _, tc := range cases {
		if got := tc.code.ID(); got != tc.want {
			t.Errorf("Code(%d).ID() = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestReporterShortcuts(t *testing.T) {
	bag := NewBag(4)
	r := BagReporter{Bag: bag}
	ReportError(r, SynUnexpectedToken, span(0, 0, 1), "boom")
	ReportWarning(r, SemUnusedLocal, span(0, 1, 2), "meh")
	if bag.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", bag.Len())
	}
	if bag.Items()[0].Severity != SevError || bag.Items()[1].Severity != SevWarning {
		t.Fatalf("unexpected severities: %+v", bag.Items())
	}
}
