package lsp

import (
	"drift/internal/diag"
	"drift/internal/source"
)

// diagnosticsForBag converts analyzer diagnostics into wire diagnostics.
// The bag is already sorted by range start with errors before warnings at
// the same position, so the output order is stable.
func diagnosticsForBag(bag *diag.Bag, file *source.File) []lspDiagnostic {
	if bag == nil || file == nil {
		return nil
	}
	out := make([]lspDiagnostic, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, lspDiagnostic{
			Range:    rangeForSpan(file, d.Primary),
			Severity: lspSeverity(d.Severity),
			Code:     d.Code.ID(),
			Source:   "drift",
			Message:  d.Message,
		})
	}
	return out
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	case diag.SevInfo:
		return 3
	case diag.SevHint:
		return 4
	}
	return 3
}
