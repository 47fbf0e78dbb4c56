package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Лексические
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003
	LexBadEscape          Code = 1004

	// Парсерные
	SynInfo             Code = 2000
	SynUnexpectedToken  Code = 2001
	SynExpectIdentifier Code = 2002
	SynExpectExpression Code = 2003
	SynUnclosedParen    Code = 2004
	SynUnclosedBrace    Code = 2005
	SynUnclosedBracket  Code = 2006
	SynForMissingIn     Code = 2007
	SynBadAssignTarget  Code = 2008

	// Семантические
	SemInfo             Code = 3000
	SemUndefinedName    Code = 3001
	SemDuplicateName    Code = 3002
	SemBreakOutsideLoop Code = 3003
	SemUnusedLocal      Code = 3004
	SemShadowsBuiltin   Code = 3005
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown error",

	LexInfo:               "lexer note",
	LexUnknownChar:        "unknown character",
	LexUnterminatedString: "unterminated string literal",
	LexBadNumber:          "malformed number literal",
	LexBadEscape:          "invalid escape sequence",

	SynInfo:             "parser note",
	SynUnexpectedToken:  "unexpected token",
	SynExpectIdentifier: "expected identifier",
	SynExpectExpression: "expected expression",
	SynUnclosedParen:    "missing closing ')'",
	SynUnclosedBrace:    "missing closing '}'",
	SynUnclosedBracket:  "missing closing ']'",
	SynForMissingIn:     "expected 'in' in for statement",
	SynBadAssignTarget:  "invalid assignment target",

	SemInfo:             "resolver note",
	SemUndefinedName:    "undefined name",
	SemDuplicateName:    "duplicate declaration",
	SemBreakOutsideLoop: "loop control outside loop",
	SemUnusedLocal:      "unused local binding",
	SemShadowsBuiltin:   "declaration shadows builtin",
}

// ID returns the stable diagnostic code identifier, e.g. "SYN2001".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	}
	return "E0000"
}

// Title returns the short human-readable description for the code.
func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
