package lsp

import (
	"encoding/json"
	"sort"

	"drift/internal/source"
	"drift/internal/symbols"
	"drift/internal/token"
)

func (s *Server) handleReferences(msg *rpcMessage) error {
	var params referenceParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	doc, ok := s.store.Get(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, []location{})
	}
	result, aborted := buildReferences(s.store, doc, params.Position,
		params.Context.IncludeDeclaration, s.cancelCheck(msg.ID))
	if aborted {
		return s.sendError(msg.ID, codeRequestCancelled, "request cancelled")
	}
	if result == nil {
		result = []location{}
	}
	return s.sendResponse(msg.ID, result)
}

// buildReferences finds every usage bound to the declaration under the
// position. The scan covers currently open documents only: same-document
// usages come straight from the resolver, and file-scope declarations are
// additionally matched by name in the other open documents. The cancelled
// callback is polled once per document.
func buildReferences(store *documentStore, doc *document, pos position, includeDecl bool, cancelled func() bool) ([]location, bool) {
	analysis := doc.Analysis
	if analysis == nil || analysis.Symbols == nil {
		return nil, false
	}
	file := analysis.File
	offset := offsetForPositionInFile(file, pos)
	tok, tokOK := tokenAtOffset(analysis.Tokens, offset)
	if !tokOK || tok.Kind != token.Ident {
		return nil, false
	}
	symID, sym := symbolAtOffset(analysis, offset)
	if !symID.IsValid() || sym == nil {
		return nil, false
	}

	declScope := analysis.Symbols.Table.Scope(sym.Scope)
	crossDocument := declScope != nil &&
		(declScope.Kind == symbols.ScopeFile || declScope.Kind == symbols.ScopeBuiltin)
	name := lookupName(analysis, sym.Name)

	var out []location
	for _, uri := range store.URIs() {
		if cancelled != nil && cancelled() {
			return nil, true
		}
		other, ok := store.Get(uri)
		if !ok || other.Analysis == nil || other.Analysis.Symbols == nil {
			continue
		}
		var spans []source.Span
		if other.URI == doc.URI {
			spans = append(spans, analysis.Symbols.Usages[symID]...)
			if includeDecl && sym.Span != (source.Span{}) {
				spans = append(spans, sym.Span)
			}
		} else if crossDocument {
			spans = sameNameUsages(other, name, includeDecl)
		}
		if len(spans) == 0 {
			continue
		}
		sort.Slice(spans, func(i, j int) bool {
			if spans[i].Start != spans[j].Start {
				return spans[i].Start < spans[j].Start
			}
			return spans[i].End < spans[j].End
		})
		for _, span := range spans {
			out = append(out, location{
				URI:   other.URI,
				Range: rangeForSpan(other.Analysis.File, span),
			})
		}
	}
	return out, false
}

// sameNameUsages finds usages bound to the file-scope (or builtin) symbol
// with the given name in another open document.
func sameNameUsages(doc *document, name string, includeDecl bool) []source.Span {
	res := doc.Analysis.Symbols
	table := res.Table
	nameID, ok := table.Strings.ID(name)
	if !ok {
		return nil
	}
	var out []source.Span
	for _, scopeID := range []symbols.ScopeID{res.FileScope, res.BuiltinScope} {
		scope := table.Scope(scopeID)
		if scope == nil {
			continue
		}
		for _, symID := range scope.NameIndex[nameID] {
			out = append(out, res.Usages[symID]...)
			if includeDecl {
				if sym := table.Symbol(symID); sym != nil && sym.Span != (source.Span{}) {
					out = append(out, sym.Span)
				}
			}
		}
	}
	return out
}
