package token

var keywords = map[string]Kind{
	"let":      KwLet,
	"fn":       KwFn,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"for":      KwFor,
	"in":       KwIn,
	"return":   KwReturn,
	"break":    KwBreak,
	"continue": KwContinue,
	"true":     KwTrue,
	"false":    KwFalse,
	"nil":      KwNil,
}

// LookupKeyword returns the keyword kind for an identifier spelling, or
// Ident when the spelling is not reserved.
func LookupKeyword(name string) Kind {
	if kind, ok := keywords[name]; ok {
		return kind
	}
	return Ident
}

// Keywords returns every reserved spelling. The slice is a fresh copy in
// deterministic declaration order.
func Keywords() []string {
	return []string{
		"let", "fn", "if", "else", "while", "for", "in",
		"return", "break", "continue", "true", "false", "nil",
	}
}
