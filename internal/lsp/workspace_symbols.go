package lsp

import (
	"encoding/json"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"drift/internal/source"
	"drift/internal/symbols"
)

func (s *Server) handleWorkspaceSymbol(msg *rpcMessage) error {
	var params workspaceSymbolParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	result, aborted := buildWorkspaceSymbols(s.store, params.Query, s.cancelCheck(msg.ID))
	if aborted {
		return s.sendError(msg.ID, codeRequestCancelled, "request cancelled")
	}
	if result == nil {
		result = []symbolInformation{}
	}
	return s.sendResponse(msg.ID, result)
}

// buildWorkspaceSymbols matches the query case-insensitively against every
// declaration in every open document. Prefix matches rank above substring
// matches; ties sort alphabetically. The cancelled callback is polled once
// per document.
func buildWorkspaceSymbols(store *documentStore, query string, cancelled func() bool) ([]symbolInformation, bool) {
	needle := matchKey(query)

	type match struct {
		rank int
		info symbolInformation
	}
	var matches []match
	for _, uri := range store.URIs() {
		if cancelled != nil && cancelled() {
			return nil, true
		}
		doc, ok := store.Get(uri)
		if !ok || doc.Analysis == nil || doc.Analysis.Symbols == nil {
			continue
		}
		table := doc.Analysis.Symbols.Table
		for i := uint32(1); i <= table.Symbols.Len(); i++ {
			sym := table.Symbols.Get(i)
			if sym.Flags&symbols.SymbolFlagBuiltin != 0 {
				continue
			}
			if sym.Span == (source.Span{}) {
				continue
			}
			name := table.LookupName(sym.Name)
			rank, ok := matchRank(matchKey(name), needle)
			if !ok {
				continue
			}
			matches = append(matches, match{
				rank: rank,
				info: symbolInformation{
					Name: name,
					Kind: workspaceSymbolKind(sym.Kind),
					Location: location{
						URI:   doc.URI,
						Range: rangeForSpan(doc.Analysis.File, sym.Span),
					},
					ContainerName: enclosingFunctionName(doc.Analysis.Builder, sym.Span.Start),
				},
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		if matches[i].info.Name != matches[j].info.Name {
			return matches[i].info.Name < matches[j].info.Name
		}
		return matches[i].info.Location.URI < matches[j].info.Location.URI
	})

	out := make([]symbolInformation, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.info)
	}
	return out, false
}

// matchKey folds a name for case-insensitive comparison. NFC normalization
// keeps composed and decomposed spellings of the same name equal.
func matchKey(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// matchRank ranks prefix matches (0) above substring matches (1). An empty
// query matches everything at prefix rank.
func matchRank(name, query string) (int, bool) {
	if strings.HasPrefix(name, query) {
		return 0, true
	}
	if strings.Contains(name, query) {
		return 1, true
	}
	return 0, false
}

func workspaceSymbolKind(kind symbols.SymbolKind) int {
	if kind == symbols.SymbolFunction {
		return symbolKindFunction
	}
	return symbolKindVariable
}
