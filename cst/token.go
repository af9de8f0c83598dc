package cst

// TokenKind identifies a lexer token kind. The set partitions into
// structural, value-start, annotation, trivia, and error kinds per the
// data model.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokError

	// Structural.
	TokLBrace
	TokRBrace
	TokLBracket
	TokRBracket
	TokComma
	TokColon
	TokLParen
	TokRParen

	// Value-start.
	TokNull
	TokTrue
	TokFalse
	TokInteger
	TokFloat
	TokString

	// Identifiers and annotations.
	TokIdent
	TokAtName

	// Trivia.
	TokWhitespace
	TokNewline
	TokLineComment
	TokBlockComment
)

//go:generate stringer -type=TokenKind

func (k TokenKind) String() string {
	switch k {
	case TokEOF:
		return "EOF"
	case TokError:
		return "Error"
	case TokLBrace:
		return "{"
	case TokRBrace:
		return "}"
	case TokLBracket:
		return "["
	case TokRBracket:
		return "]"
	case TokComma:
		return ","
	case TokColon:
		return ":"
	case TokLParen:
		return "("
	case TokRParen:
		return ")"
	case TokNull:
		return "null"
	case TokTrue:
		return "true"
	case TokFalse:
		return "false"
	case TokInteger:
		return "Integer"
	case TokFloat:
		return "Float"
	case TokString:
		return "String"
	case TokIdent:
		return "Ident"
	case TokAtName:
		return "AtName"
	case TokWhitespace:
		return "Whitespace"
	case TokNewline:
		return "Newline"
	case TokLineComment:
		return "LineComment"
	case TokBlockComment:
		return "BlockComment"
	default:
		return "Unknown"
	}
}

// IsTrivia reports whether the token kind is whitespace, a newline, or a
// comment — i.e. not structurally significant but preserved by the CST.
func (k TokenKind) IsTrivia() bool {
	switch k {
	case TokWhitespace, TokNewline, TokLineComment, TokBlockComment:
		return true
	default:
		return false
	}
}

// NumBase identifies the base a numeric literal was written in.
type NumBase int

const (
	NumBaseDec NumBase = iota
	NumBaseHex
	NumBaseOct
	NumBaseBin
)

// QuoteStyle identifies which quote character delimited a string literal.
type QuoteStyle int

const (
	QuoteDouble QuoteStyle = iota
	QuoteSingle
	QuoteBacktick
)

// Token is a single lexical token with its byte span.
type Token struct {
	Kind  TokenKind
	Text  string // verbatim source slice, including quotes/escapes/'@'
	Range Range
}
