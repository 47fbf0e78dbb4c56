package diagfmt

import (
	"fmt"
	"io"

	"drift/internal/source"
	"drift/internal/token"
)

// FormatTokensPretty prints one token per line with its resolved position.
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet) error {
	for _, tok := range tokens {
		start, _ := fs.Resolve(tok.Span)
		var err error
		if tok.Text != "" {
			_, err = fmt.Fprintf(w, "%4d:%-3d %-10s %q\n", start.Line, start.Col, tok.Kind, tok.Text)
		} else {
			_, err = fmt.Fprintf(w, "%4d:%-3d %s\n", start.Line, start.Col, tok.Kind)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
