package lexer

import (
	"unicode"
	"unicode/utf8"

	"drift/internal/diag"
	"drift/internal/source"
	"drift/internal/token"
)

// Options configures lexing behavior.
type Options struct {
	Reporter diag.Reporter
}

// Lexer produces tokens from a single source file.
type Lexer struct {
	file     *source.File
	reporter diag.Reporter
	pos      uint32
}

func New(file *source.File, opts Options) *Lexer {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Lexer{
		file:     file,
		reporter: reporter,
	}
}

// Tokenize scans the whole file and returns every significant token,
// terminated by an EOF token.
func Tokenize(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	tokens := make([]token.Token, 0, len(file.Content)/4)
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens
		}
	}
}

// Next возвращает следующий значимый токен. После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	lx.skipTriviaAndComments()
	if lx.eof() {
		return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
	}

	ch := lx.peek()
	switch {
	case isIdentStartByte(ch):
		return lx.scanIdentOrKeyword()
	case ch >= '0' && ch <= '9':
		return lx.scanNumber()
	case ch == '"':
		return lx.scanString()
	default:
		return lx.scanOperator()
	}
}

func (lx *Lexer) skipTriviaAndComments() {
	content := lx.file.Content
	for lx.pos < uint32(len(content)) {
		ch := content[lx.pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			lx.pos++
		case ch == '#':
			// комментарий до конца строки
			for lx.pos < uint32(len(content)) && content[lx.pos] != '\n' {
				lx.pos++
			}
		default:
			return
		}
	}
}

func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.pos
	content := lx.file.Content
	for lx.pos < uint32(len(content)) && isIdentContinueByte(content[lx.pos]) {
		lx.pos++
	}
	text := string(content[start:lx.pos])
	return token.Token{
		Kind: token.LookupKeyword(text),
		Span: lx.span(start),
		Text: text,
	}
}

func (lx *Lexer) scanNumber() token.Token {
	start := lx.pos
	content := lx.file.Content
	kind := token.IntLit
	for lx.pos < uint32(len(content)) && content[lx.pos] >= '0' && content[lx.pos] <= '9' {
		lx.pos++
	}
	if lx.pos+1 < uint32(len(content)) && content[lx.pos] == '.' &&
		content[lx.pos+1] >= '0' && content[lx.pos+1] <= '9' {
		kind = token.FloatLit
		lx.pos++
		for lx.pos < uint32(len(content)) && content[lx.pos] >= '0' && content[lx.pos] <= '9' {
			lx.pos++
		}
	}
	if lx.pos < uint32(len(content)) && isIdentStartByte(content[lx.pos]) {
		// "12abc" — съедаем хвост, чтобы не каскадировать ошибки
		for lx.pos < uint32(len(content)) && isIdentContinueByte(content[lx.pos]) {
			lx.pos++
		}
		span := lx.span(start)
		diag.ReportError(lx.reporter, diag.LexBadNumber, span,
			"malformed number literal '"+string(content[start:lx.pos])+"'")
		return token.Token{Kind: token.Invalid, Span: span, Text: string(content[start:lx.pos])}
	}
	return token.Token{Kind: kind, Span: lx.span(start), Text: string(content[start:lx.pos])}
}

func (lx *Lexer) scanString() token.Token {
	start := lx.pos
	content := lx.file.Content
	lx.pos++ // opening quote
	for lx.pos < uint32(len(content)) {
		ch := content[lx.pos]
		if ch == '\n' {
			break
		}
		if ch == '\\' {
			if lx.pos+1 < uint32(len(content)) {
				next := content[lx.pos+1]
				switch next {
				case 'n', 't', 'r', '\\', '"':
				default:
					diag.ReportError(lx.reporter, diag.LexBadEscape,
						source.Span{File: lx.file.ID, Start: lx.pos, End: lx.pos + 2},
						"invalid escape sequence '\\"+string(next)+"'")
				}
				lx.pos += 2
				continue
			}
			lx.pos++
			continue
		}
		if ch == '"' {
			lx.pos++
			return token.Token{
				Kind: token.StringLit,
				Span: lx.span(start),
				Text: string(content[start:lx.pos]),
			}
		}
		lx.pos++
	}
	span := lx.span(start)
	diag.ReportError(lx.reporter, diag.LexUnterminatedString, span, "unterminated string literal")
	return token.Token{Kind: token.Invalid, Span: span, Text: string(content[start:lx.pos])}
}

func (lx *Lexer) scanOperator() token.Token {
	start := lx.pos
	content := lx.file.Content
	ch := content[lx.pos]

	two := func(kind token.Kind) token.Token {
		lx.pos += 2
		return token.Token{Kind: kind, Span: lx.span(start), Text: string(content[start:lx.pos])}
	}
	one := func(kind token.Kind) token.Token {
		lx.pos++
		return token.Token{Kind: kind, Span: lx.span(start), Text: string(content[start:lx.pos])}
	}
	hasNext := lx.pos+1 < uint32(len(content))
	var next byte
	if hasNext {
		next = content[lx.pos+1]
	}

	switch ch {
	case '+':
		return one(token.Plus)
	case '-':
		return one(token.Minus)
	case '*':
		return one(token.Star)
	case '/':
		return one(token.Slash)
	case '%':
		return one(token.Percent)
	case '=':
		if hasNext && next == '=' {
			return two(token.EqEq)
		}
		return one(token.Assign)
	case '!':
		if hasNext && next == '=' {
			return two(token.BangEq)
		}
		return one(token.Bang)
	case '<':
		if hasNext && next == '=' {
			return two(token.LtEq)
		}
		return one(token.Lt)
	case '>':
		if hasNext && next == '=' {
			return two(token.GtEq)
		}
		return one(token.Gt)
	case '&':
		if hasNext && next == '&' {
			return two(token.AndAnd)
		}
	case '|':
		if hasNext && next == '|' {
			return two(token.OrOr)
		}
	case ',':
		return one(token.Comma)
	case ';':
		return one(token.Semicolon)
	case '(':
		return one(token.LParen)
	case ')':
		return one(token.RParen)
	case '{':
		return one(token.LBrace)
	case '}':
		return one(token.RBrace)
	case '[':
		return one(token.LBracket)
	case ']':
		return one(token.RBracket)
	}

	// Неизвестный символ: съедаем одну руну целиком.
	r, size := utf8.DecodeRune(content[lx.pos:])
	if r == utf8.RuneError && size == 1 {
		size = 1
	}
	lx.pos += uint32(size)
	span := lx.span(start)
	diag.ReportError(lx.reporter, diag.LexUnknownChar, span,
		"unknown character "+quoteRune(r))
	return token.Token{Kind: token.Invalid, Span: span, Text: string(content[start:lx.pos])}
}

func (lx *Lexer) eof() bool {
	return lx.pos >= uint32(len(lx.file.Content))
}

func (lx *Lexer) peek() byte {
	return lx.file.Content[lx.pos]
}

func (lx *Lexer) span(start uint32) source.Span {
	return source.Span{File: lx.file.ID, Start: start, End: lx.pos}
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.pos, End: lx.pos}
}

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= utf8.RuneSelf
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || (b >= '0' && b <= '9')
}

func quoteRune(r rune) string {
	if unicode.IsPrint(r) {
		return "'" + string(r) + "'"
	}
	return "U+" + string("0123456789ABCDEF"[(r>>12)&0xF]) +
		string("0123456789ABCDEF"[(r>>8)&0xF]) +
		string("0123456789ABCDEF"[(r>>4)&0xF]) +
		string("0123456789ABCDEF"[r&0xF])
}
