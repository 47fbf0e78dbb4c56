package driver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskCacheRoundtrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	analysis := AnalyzeFile("broken.dr", []byte("let = 1\n"), AnalyzeOptions{})
	payload := PayloadFromAnalysis(analysis)
	if err := cache.Store(payload); err != nil {
		t.Fatalf("store: %v", err)
	}

	loaded, ok := cache.Load(analysis.File.Hash)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if loaded.Path != "broken.dr" || !loaded.HasErrors {
		t.Fatalf("unexpected payload: %+v", loaded)
	}
	if len(loaded.Diagnostics) != analysis.Bag.Len() {
		t.Fatalf("expected %d diagnostics, got %d", analysis.Bag.Len(), len(loaded.Diagnostics))
	}

	diags := DiagnosticsFromPayload(loaded, analysis.File)
	for i, d := range diags {
		want := analysis.Bag.Items()[i]
		if d.Code != want.Code || d.Primary.Start != want.Primary.Start || d.Message != want.Message {
			t.Fatalf("rebuilt diagnostic %d differs: %+v vs %+v", i, d, want)
		}
	}
}

func TestDiskCacheMiss(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	var key [32]byte
	key[0] = 0xAB
	if _, ok := cache.Load(key); ok {
		t.Fatal("expected miss on empty cache")
	}
}

func TestDiskCacheCorruptEntryCountsAsMiss(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	analysis := AnalyzeFile("c.dr", []byte("let x = 1\n"), AnalyzeOptions{})
	payload := PayloadFromAnalysis(analysis)
	if err := cache.Store(payload); err != nil {
		t.Fatalf("store: %v", err)
	}

	// Портим запись на диске.
	path := cache.pathFor(analysis.File.Hash)
	if err := os.WriteFile(path, []byte("not msgpack"), 0o644); err != nil {
		t.Fatalf("corrupt entry: %v", err)
	}
	if _, ok := cache.Load(analysis.File.Hash); ok {
		t.Fatal("corrupt entry must be a miss")
	}
}

func TestDiskCacheHashMismatchCountsAsMiss(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	analysis := AnalyzeFile("h.dr", []byte("let x = 1\n"), AnalyzeOptions{})
	payload := PayloadFromAnalysis(analysis)
	if err := cache.Store(payload); err != nil {
		t.Fatalf("store: %v", err)
	}

	// Кладём ту же запись под чужой ключ: Load обязан заметить подмену.
	var wrong [32]byte
	wrong[0] = 0x01
	raw, err := os.ReadFile(cache.pathFor(analysis.File.Hash))
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(cache.pathFor(wrong)), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(cache.pathFor(wrong), raw, 0o644); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if _, ok := cache.Load(wrong); ok {
		t.Fatal("payload stored under a foreign key must be a miss")
	}
}
