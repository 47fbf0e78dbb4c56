package lsp

import (
	"encoding/json"
	"fmt"
	"strings"

	"drift/internal/driver"
	"drift/internal/source"
	"drift/internal/symbols"
	"drift/internal/token"
)

func (s *Server) handleHover(msg *rpcMessage) error {
	var params hoverParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	doc, ok := s.store.Get(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, nil)
	}
	result := buildHover(doc, params.Position)
	return s.sendResponse(msg.ID, result)
}

// buildHover describes the symbol under the position, or nil when nothing
// resolves. Hover never produces an error.
func buildHover(doc *document, pos position) *hover {
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

	name := lookupName(analysis, sym.Name)
	lines := make([]string, 0, 3)
	if signature := symbolSignature(analysis, sym, name); signature != "" {
		lines = append(lines, "```drift\n"+signature+"\n```")
	}
	if sym.Kind == symbols.SymbolBuiltin {
		if docstring := symbols.BuiltinDoc(name); docstring != "" {
			lines = append(lines, docstring)
		}
	} else if loc := declarationLocation(doc, sym); loc != "" {
		lines = append(lines, loc)
	}
	if len(lines) == 0 {
		return nil
	}
	hoverRange := rangeForSpan(file, tok.Span)
	return &hover{
		Contents: markupContent{
			Kind:  "markdown",
			Value: strings.Join(lines, "\n"),
		},
		Range: &hoverRange,
	}
}

func symbolSignature(analysis *driver.FileAnalysis, sym *symbols.Symbol, name string) string {
	if sym == nil || name == "" {
		return ""
	}
	switch sym.Kind {
	case symbols.SymbolFunction, symbols.SymbolBuiltin:
		params := make([]string, 0, len(sym.Params))
		for _, p := range sym.Params {
			params = append(params, lookupName(analysis, p))
		}
		return "fn " + name + "(" + strings.Join(params, ", ") + ")"
	case symbols.SymbolLet:
		return "let " + name
	case symbols.SymbolParam:
		return "param " + name
	case symbols.SymbolForVar:
		return "for " + name
	}
	return name
}

func declarationLocation(doc *document, sym *symbols.Symbol) string {
	if sym.Span == (source.Span{}) {
		return ""
	}
	file := doc.Analysis.File
	lc := lineColForOffset(file, sym.Span.Start)
	return fmt.Sprintf("Declared in %s:%d", file.Path, lc.Line)
}

func lineColForOffset(file *source.File, offset uint32) source.LineCol {
	pos := positionForOffsetInFile(file, offset)
	return source.LineCol{Line: safeUint32(pos.Line) + 1, Col: safeUint32(pos.Character) + 1}
}
