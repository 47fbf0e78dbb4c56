package lsp

import (
	"errors"
	"sort"

	"drift/internal/driver"
)

var (
	errAlreadyOpen     = errors.New("document already open")
	errNotOpen         = errors.New("document not open")
	errStaleVersion    = errors.New("stale document version")
	errNegativeVersion = errors.New("negative document version")
)

// document is one open editor buffer plus its derived analysis. Providers
// read documents during a dispatch but never hold on to them.
type document struct {
	URI      string
	Path     string
	Version  int
	Text     string
	Analysis *driver.FileAnalysis
}

// documentStore keeps every open document keyed by URI. Dispatch is
// strictly serial, so the store needs no locking: each mutation finishes
// before the next frame is read.
type documentStore struct {
	docs           map[string]*document
	maxDiagnostics int
}

func newDocumentStore(maxDiagnostics int) *documentStore {
	if maxDiagnostics <= 0 {
		maxDiagnostics = driver.DefaultMaxDiagnostics
	}
	return &documentStore{
		docs:           make(map[string]*document),
		maxDiagnostics: maxDiagnostics,
	}
}

// Open inserts a new document and analyzes it. Opening an already-open URI
// fails with errAlreadyOpen and leaves the existing entry untouched.
// Versions are non-negative integers; a negative didOpen version is rejected.
func (st *documentStore) Open(uri string, version int, text string) (*document, error) {
	if _, ok := st.docs[uri]; ok {
		return nil, errAlreadyOpen
	}
	if version < 0 {
		return nil, errNegativeVersion
	}
	doc := &document{
		URI:     uri,
		Path:    uriToPath(uri),
		Version: version,
		Text:    text,
	}
	st.analyze(doc)
	st.docs[uri] = doc
	return doc, nil
}

// Apply replaces the text of an open document. The version must be strictly
// greater than the stored one; otherwise the edit is dropped.
func (st *documentStore) Apply(uri string, version int, text string) (*document, error) {
	doc, ok := st.docs[uri]
	if !ok {
		return nil, errNotOpen
	}
	if version <= doc.Version {
		return nil, errStaleVersion
	}
	doc.Version = version
	doc.Text = text
	st.analyze(doc)
	return doc, nil
}

// Close removes the document for uri.
func (st *documentStore) Close(uri string) error {
	if _, ok := st.docs[uri]; !ok {
		return errNotOpen
	}
	delete(st.docs, uri)
	return nil
}

// Get returns the open document for uri, if any.
func (st *documentStore) Get(uri string) (*document, bool) {
	doc, ok := st.docs[uri]
	return doc, ok
}

func (st *documentStore) Len() int {
	return len(st.docs)
}

// URIs returns the open document URIs in sorted order.
func (st *documentStore) URIs() []string {
	out := make([]string, 0, len(st.docs))
	for uri := range st.docs {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}

func (st *documentStore) analyze(doc *document) {
	doc.Analysis = driver.AnalyzeFile(doc.Path, []byte(doc.Text), driver.AnalyzeOptions{
		MaxDiagnostics: st.maxDiagnostics,
	})
}
