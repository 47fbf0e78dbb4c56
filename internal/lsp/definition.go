package lsp

import (
	"encoding/json"

	"drift/internal/source"
	"drift/internal/token"
)

func (s *Server) handleDefinition(msg *rpcMessage) error {
	var params definitionParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	doc, ok := s.store.Get(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, []location{})
	}
	result := buildDefinition(doc, params.Position)
	if result == nil {
		result = []location{}
	}
	return s.sendResponse(msg.ID, result)
}

// buildDefinition resolves the identifier under the position to its
// declaration site. Unresolved names yield an empty list, never an error.
func buildDefinition(doc *document, pos position) []location {
	analysis := doc.Analysis
	if analysis == nil {
		return nil
	}
	file := analysis.File
	offset := offsetForPositionInFile(file, pos)
	tok, tokOK := tokenAtOffset(analysis.Tokens, offset)
	if !tokOK || tok.Kind != token.Ident {
		return nil
	}
	symID, sym := symbolAtOffset(analysis, offset)
	if !symID.IsValid() || sym == nil {
		return nil
	}
	if sym.Span == (source.Span{}) {
		// Builtins have no declaration site.
		return nil
	}
	return []location{{
		URI:   doc.URI,
		Range: rangeForSpan(file, sym.Span),
	}}
}
