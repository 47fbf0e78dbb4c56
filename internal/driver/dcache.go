package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"drift/internal/diag"
	"drift/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит результаты анализа по хэшу содержимого файла на диске.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedNote mirrors diag.Note with plain offsets.
type CachedNote struct {
	Start uint32
	End   uint32
	Msg   string
}

// CachedDiagnostic is one diagnostic in a cache payload.
type CachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
	Notes    []CachedNote
}

// DiskPayload stores cached per-file analysis results keyed by content hash.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Path        string
	Hash        [32]byte
	Diagnostics []CachedDiagnostic
	HasErrors   bool
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt places the cache in an explicit directory (tests).
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key [32]byte) string {
	hexKey := hex.EncodeToString(key[:])
	// Подкаталог "checks" для удобства очистки.
	return filepath.Join(c.dir, "checks", hexKey[:2], hexKey+".bin")
}

// Load returns the payload for the content hash, or (nil, false) on miss.
// A corrupt or schema-mismatched entry counts as a miss.
func (c *DiskCache) Load(key [32]byte) (*DiskPayload, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	raw, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return nil, false
	}
	var payload DiskPayload
	if err := msgpack.Unmarshal(raw, &payload); err != nil {
		return nil, false
	}
	if payload.Schema != diskCacheSchemaVersion {
		return nil, false
	}
	if payload.Hash != key {
		return nil, false
	}
	return &payload, true
}

// Store writes the payload under its content hash, atomically.
func (c *DiskCache) Store(payload *DiskPayload) error {
	if payload == nil {
		return errors.New("nil payload")
	}
	payload.Schema = diskCacheSchemaVersion
	raw, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode cache payload: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	path := c.pathFor(payload.Hash)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// PayloadFromAnalysis converts a bag into a cacheable payload.
func PayloadFromAnalysis(analysis *FileAnalysis) *DiskPayload {
	payload := &DiskPayload{
		Path:      analysis.File.Path,
		Hash:      analysis.File.Hash,
		HasErrors: analysis.Bag.HasErrors(),
	}
	for _, d := range analysis.Bag.Items() {
		cached := CachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, note := range d.Notes {
			cached.Notes = append(cached.Notes, CachedNote{
				Start: note.Span.Start,
				End:   note.Span.End,
				Msg:   note.Msg,
			})
		}
		payload.Diagnostics = append(payload.Diagnostics, cached)
	}
	return payload
}

// DiagnosticsFromPayload rebuilds diagnostics against a freshly loaded file.
func DiagnosticsFromPayload(payload *DiskPayload, file *source.File) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(payload.Diagnostics))
	for _, cached := range payload.Diagnostics {
		d := diag.Diagnostic{
			Severity: diag.Severity(cached.Severity),
			Code:     diag.Code(cached.Code),
			Message:  cached.Message,
			Primary:  source.Span{File: file.ID, Start: cached.Start, End: cached.End},
		}
		for _, note := range cached.Notes {
			d.Notes = append(d.Notes, diag.Note{
				Span: source.Span{File: file.ID, Start: note.Start, End: note.End},
				Msg:  note.Msg,
			})
		}
		out = append(out, d)
	}
	return out
}
