package driver

import (
	"drift/internal/ast"
	"drift/internal/diag"
	"drift/internal/lexer"
	"drift/internal/parser"
	"drift/internal/source"
	"drift/internal/symbols"
	"drift/internal/token"
)

// DefaultMaxDiagnostics bounds the diagnostics kept per analyzed file.
const DefaultMaxDiagnostics = 100

// AnalyzeOptions configures a single analysis run.
type AnalyzeOptions struct {
	MaxDiagnostics int
}

// FileAnalysis is the analyzer output for one file: the lexed tokens, the
// AST, the resolved symbol information, and the collected diagnostics. It
// holds no references to the input beyond its own source.File copy.
type FileAnalysis struct {
	File    *source.File
	Tokens  []token.Token
	Builder *ast.Builder
	Symbols *symbols.Result
	Bag     *diag.Bag
}

// AnalyzeFile runs the full pipeline (lex, parse, resolve) over content.
// It is synchronous, pure, and never fails: broken input comes back as
// diagnostics alongside whatever partial analysis survived.
func AnalyzeFile(path string, content []byte, opts AnalyzeOptions) *FileAnalysis {
	maxDiagnostics := opts.MaxDiagnostics
	if maxDiagnostics <= 0 {
		maxDiagnostics = DefaultMaxDiagnostics
	}
	fileSet := source.NewFileSet()
	fileID := fileSet.AddVirtual(path, content)
	file := fileSet.Get(fileID)

	bag := diag.NewBag(maxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}

	tokens := lexer.Tokenize(file, lexer.Options{Reporter: reporter})
	builder := parser.Parse(file, tokens, parser.Options{Reporter: reporter})
	resolved := symbols.Resolve(builder, symbols.Options{Reporter: reporter})

	bag.Dedup()
	bag.Sort()

	return &FileAnalysis{
		File:    file,
		Tokens:  tokens,
		Builder: builder,
		Symbols: resolved,
		Bag:     bag,
	}
}
