package lsp

import (
	"errors"
	"testing"
)

func TestStoreOpenTwiceFails(t *testing.T) {
	st := newDocumentStore(0)
	if _, err := st.Open("file:///dup.dr", 1, "let x = 1\n"); err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := st.Open("file:///dup.dr", 2, "let y = 2\n"); !errors.Is(err, errAlreadyOpen) {
		t.Fatalf("expected errAlreadyOpen, got %v", err)
	}
	doc, ok := st.Get("file:///dup.dr")
	if !ok || doc.Version != 1 {
		t.Fatalf("second open must not touch the document: %+v", doc)
	}
}

func TestStoreOpenNegativeVersion(t *testing.T) {
	st := newDocumentStore(0)
	if _, err := st.Open("file:///neg.dr", -1, "let x = 1\n"); !errors.Is(err, errNegativeVersion) {
		t.Fatalf("expected errNegativeVersion, got %v", err)
	}
	if st.Len() != 0 {
		t.Fatalf("rejected open must not store the document")
	}
}

func TestStoreApplyStaleVersion(t *testing.T) {
	st := newDocumentStore(0)
	if _, err := st.Open("file:///v.dr", 3, "let x = 1\n"); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := st.Apply("file:///v.dr", 3, "let y = 2\n"); !errors.Is(err, errStaleVersion) {
		t.Fatalf("expected errStaleVersion for equal version, got %v", err)
	}
	if _, err := st.Apply("file:///v.dr", 2, "let y = 2\n"); !errors.Is(err, errStaleVersion) {
		t.Fatalf("expected errStaleVersion for older version, got %v", err)
	}
	doc, err := st.Apply("file:///v.dr", 4, "let y = 2\n")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if doc.Version != 4 || doc.Text != "let y = 2\n" {
		t.Fatalf("unexpected document after apply: %+v", doc)
	}
	if doc.Analysis == nil {
		t.Fatal("apply must re-analyze")
	}
}

func TestStoreApplyNotOpen(t *testing.T) {
	st := newDocumentStore(0)
	if _, err := st.Apply("file:///ghost.dr", 1, ""); !errors.Is(err, errNotOpen) {
		t.Fatalf("expected errNotOpen, got %v", err)
	}
}

func TestStoreClose(t *testing.T) {
	st := newDocumentStore(0)
	if _, err := st.Open("file:///c.dr", 1, ""); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := st.Close("file:///c.dr"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := st.Close("file:///c.dr"); !errors.Is(err, errNotOpen) {
		t.Fatalf("expected errNotOpen on double close, got %v", err)
	}
	if st.Len() != 0 {
		t.Fatalf("expected empty store, got %d", st.Len())
	}
}

func TestStoreURIsSorted(t *testing.T) {
	st := newDocumentStore(0)
	for _, uri := range []string{"file:///b.dr", "file:///a.dr", "file:///c.dr"} {
		if _, err := st.Open(uri, 1, ""); err != nil {
			t.Fatalf("open %s: %v", uri, err)
		}
	}
	uris := st.URIs()
	want := []string{"file:///a.dr", "file:///b.dr", "file:///c.dr"}
	for i := range want {
		if uris[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, uris)
		}
	}
}

func TestStoreOpenAnalyzes(t *testing.T) {
	st := newDocumentStore(0)
	doc, err := st.Open("file:///an.dr", 1, "let x = 1\n")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if doc.Analysis == nil || doc.Analysis.File == nil || doc.Analysis.Symbols == nil {
		t.Fatalf("expected full analysis, got %+v", doc.Analysis)
	}
	if doc.Path != "/an.dr" {
		t.Fatalf("unexpected path: %q", doc.Path)
	}
}
