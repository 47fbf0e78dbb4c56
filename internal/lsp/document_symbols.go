package lsp

import (
	"encoding/json"

	"drift/internal/ast"
	"drift/internal/driver"
	"drift/internal/source"
)

func (s *Server) handleDocumentSymbol(msg *rpcMessage) error {
	var params documentSymbolParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	doc, ok := s.store.Get(params.TextDocument.URI)
	if !ok {
		return s.sendResponse(msg.ID, []documentSymbol{})
	}
	result := buildDocumentSymbols(doc)
	if result == nil {
		result = []documentSymbol{}
	}
	return s.sendResponse(msg.ID, result)
}

// buildDocumentSymbols returns the declaration outline as a tree: functions
// nest their body declarations, control-flow blocks are transparent. Order
// follows the source.
func buildDocumentSymbols(doc *document) []documentSymbol {
	analysis := doc.Analysis
	if analysis == nil || analysis.Builder == nil {
		return nil
	}
	return outlineStmts(analysis, analysis.Builder.File.Stmts)
}

func outlineStmts(analysis *driver.FileAnalysis, stmts []ast.StmtID) []documentSymbol {
	builder := analysis.Builder
	file := analysis.File
	var out []documentSymbol
	for _, id := range stmts {
		stmt := builder.Stmt(id)
		if stmt == nil {
			continue
		}
		switch stmt.Kind {
		case ast.StmtFn:
			out = append(out, documentSymbol{
				Name:           builder.LookupName(stmt.Name),
				Detail:         fnDetail(builder, stmt),
				Kind:           symbolKindFunction,
				Range:          rangeForSpan(file, stmt.Span),
				SelectionRange: rangeForSpan(file, stmt.NameSpan),
				Children:       outlineStmts(analysis, stmt.Body),
			})
		case ast.StmtLet:
			out = append(out, documentSymbol{
				Name:           builder.LookupName(stmt.Name),
				Kind:           symbolKindVariable,
				Range:          rangeForSpan(file, stmt.Span),
				SelectionRange: rangeForSpan(file, stmt.NameSpan),
			})
		case ast.StmtFor:
			if stmt.NameSpan != (source.Span{}) {
				out = append(out, documentSymbol{
					Name:           builder.LookupName(stmt.Name),
					Kind:           symbolKindVariable,
					Range:          rangeForSpan(file, stmt.NameSpan),
					SelectionRange: rangeForSpan(file, stmt.NameSpan),
				})
			}
			out = append(out, outlineStmts(analysis, stmt.Body)...)
		case ast.StmtIf:
			out = append(out, outlineStmts(analysis, stmt.Body)...)
			out = append(out, outlineStmts(analysis, stmt.Else)...)
		case ast.StmtWhile, ast.StmtBlock:
			out = append(out, outlineStmts(analysis, stmt.Body)...)
		}
	}
	return out
}

func fnDetail(builder *ast.Builder, stmt *ast.Stmt) string {
	detail := "fn("
	for i, param := range stmt.Params {
		if i > 0 {
			detail += ", "
		}
		detail += builder.LookupName(param.Name)
	}
	return detail + ")"
}
