package diagfmt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"drift/internal/lexer"
	"drift/internal/source"
)

func TestFormatTokensPretty(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.dr", []byte("let x = 1\nx\n"))
	tokens := lexer.Tokenize(fs.Get(id), lexer.Options{})

	var out bytes.Buffer
	if err := FormatTokensPretty(&out, tokens, fs); err != nil {
		t.Fatalf("format: %v", err)
	}
	got := out.String()

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != len(tokens) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(tokens), len(lines), got)
	}
	if !strings.Contains(lines[0], "let") {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if !strings.Contains(lines[1], `"x"`) {
		t.Fatalf("unexpected ident line: %q", lines[1])
	}
	// Второй x стоит на второй строке.
	if !strings.Contains(lines[4], "2:1") {
		t.Fatalf("expected second-line position, got %q", lines[4])
	}
	if !strings.Contains(lines[len(lines)-1], "eof") {
		t.Fatalf("expected eof last, got %q", lines[len(lines)-1])
	}
}

func TestFormatTokensWriterError(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.dr", []byte("x"))
	tokens := lexer.Tokenize(fs.Get(id), lexer.Options{})

	if err := FormatTokensPretty(failWriter{}, tokens, fs); err == nil {
		t.Fatal("expected writer error")
	}
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("write failed")
}
