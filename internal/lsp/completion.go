package lsp

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"drift/internal/symbols"
	"drift/internal/token"
)

// Candidate groups, in result order. Lower ranks sort first.
const (
	completionRankLocal     = 1 // declared in the exact scope under the cursor
	completionRankEnclosing = 2 // declared in an enclosing scope
	completionRankBuiltin   = 3
	completionRankKeyword   = 4
)

func (s *Server) handleCompletion(msg *rpcMessage) error {
	var params completionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	doc, ok := s.store.Get(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, []completionItem{})
	}
	result := buildCompletion(doc, params.Position)
	if result == nil {
		result = []completionItem{}
	}
	return s.sendResponse(msg.ID, result)
}

// buildCompletion returns prefix-matching candidates at the position:
// exact-scope locals, then enclosing-scope locals, then builtins, then
// keywords, alphabetical within each group. Matching is case-sensitive.
func buildCompletion(doc *document, pos position) []completionItem {
	analysis := doc.Analysis
	if analysis == nil || analysis.Symbols == nil {
		return nil
	}
	file := analysis.File
	offset := offsetForPositionInFile(file, pos)
	prefix := identPrefixAt(file.Content, offset)

	res := analysis.Symbols
	table := res.Table
	scopeID := table.ScopeAt(res.FileScope, file.ID, offset)
	if !scopeID.IsValid() {
		scopeID = res.FileScope
	}

	type candidate struct {
		rank  int
		label string
		kind  int
	}
	seen := make(map[string]struct{})
	candidates := make([]candidate, 0, 16)
	add := func(rank int, label string, kind int) {
		if label == "" || !strings.HasPrefix(label, prefix) {
			return
		}
		if _, ok := seen[label]; ok {
			return
		}
		seen[label] = struct{}{}
		candidates = append(candidates, candidate{rank: rank, label: label, kind: kind})
	}

	depth := 0
	for scopeID.IsValid() {
		scope := table.Scope(scopeID)
		if scope == nil {
			break
		}
		for _, symID := range scope.Symbols {
			sym := table.Symbol(symID)
			if sym == nil {
				continue
			}
			rank := completionRankLocal
			switch {
			case scope.Kind == symbols.ScopeBuiltin:
				rank = completionRankBuiltin
			case depth > 0:
				rank = completionRankEnclosing
			}
			add(rank, table.LookupName(sym.Name), completionKindForSymbol(sym))
		}
		scopeID = scope.Parent
		depth++
	}
	for _, kw := range token.Keywords() {
		add(completionRankKeyword, kw, completionKindKeyword)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].rank != candidates[j].rank {
			return candidates[i].rank < candidates[j].rank
		}
		return candidates[i].label < candidates[j].label
	})

	items := make([]completionItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, completionItem{
			Label:    c.label,
			Kind:     c.kind,
			SortText: strconv.Itoa(c.rank) + "_" + c.label,
		})
	}
	return items
}

func completionKindForSymbol(sym *symbols.Symbol) int {
	switch sym.Kind {
	case symbols.SymbolFunction, symbols.SymbolBuiltin:
		return completionKindFunction
	default:
		return completionKindVariable
	}
}
