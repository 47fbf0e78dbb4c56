package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestListDriftFiles(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "b.dr", "let b = 1\n")
	writeFixture(t, dir, "a.dr", "let a = 1\n")
	writeFixture(t, dir, "notes.txt", "ignore me\n")
	nested := writeFixture(t, dir, filepath.Join("sub", "c.dr"), "let c = 1\n")

	files, err := ListDriftFiles(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %v", files)
	}
	if filepath.Base(files[0]) != "a.dr" || filepath.Base(files[1]) != "b.dr" || files[2] != nested {
		t.Fatalf("unexpected order: %v", files)
	}
}

func TestAnalyzePathsKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	good := writeFixture(t, dir, "good.dr", "let g = 1\n")
	bad := writeFixture(t, dir, "bad.dr", "let = 1\n")
	missing := filepath.Join(dir, "missing.dr")

	paths := []string{good, bad, missing}
	results, err := AnalyzePaths(context.Background(), paths, AnalyzeOptions{}, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, path := range paths {
		if results[i].Path != path {
			t.Fatalf("result %d out of order: %+v", i, results[i])
		}
	}
	if results[0].Err != nil || results[0].Analysis.Bag.HasErrors() {
		t.Fatalf("good file must be clean: %+v", results[0])
	}
	if results[1].Analysis == nil || !results[1].Analysis.Bag.HasErrors() {
		t.Fatalf("bad file must carry diagnostics: %+v", results[1])
	}
	// Отсутствующий файл не валит весь батч.
	if results[2].Err == nil || results[2].Analysis != nil {
		t.Fatalf("missing file must record its read error: %+v", results[2])
	}
}

func TestAnalyzePathsPublishesEvents(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "one.dr", "let one = 1\n")

	events := make(chan Event, 16)
	_, err := AnalyzePaths(context.Background(), []string{path}, AnalyzeOptions{}, ChannelSink{Ch: events})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	close(events)

	var queued, done bool
	for ev := range events {
		if ev.File != path {
			t.Fatalf("unexpected event file: %+v", ev)
		}
		if ev.Status == StatusQueued {
			queued = true
		}
		if ev.Stage == StageResolve && ev.Status == StatusDone {
			done = true
		}
	}
	if !queued || !done {
		t.Fatalf("expected queued and done events, got queued=%v done=%v", queued, done)
	}
}

func TestAnalyzePathsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	path := writeFixture(t, dir, "x.dr", "let x = 1\n")
	if _, err := AnalyzePaths(ctx, []string{path}, AnalyzeOptions{}, nil); err == nil {
		t.Fatal("expected context error")
	}
}
