package sparql

import "fmt"

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIRI
	TokenPrefixedName
	TokenVar
	TokenString
	TokenNumber
	TokenLangTag
	TokenBlankNode
	TokenName
	TokenPunct
	TokenPlaceholder
	TokenComment
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:          "EOF",
	TokenIRI:          "IRI",
	TokenPrefixedName: "PrefixedName",
	TokenVar:          "Var",
	TokenString:       "String",
	TokenNumber:       "Number",
	TokenLangTag:      "LangTag",
	TokenBlankNode:    "BlankNode",
	TokenName:         "Name",
	TokenPunct:        "Punct",
	TokenPlaceholder:  "Placeholder",
	TokenComment:      "Comment",
}

// String returns the kind name.
func (k TokenKind) String() string {
	if s, ok := tokenKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a lexical token. Text is the exact source text; Offset is the byte
// offset of the first character.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
	Line   int
	Col    int
}

// Value returns the token text without its delimiters: the IRI between angle
// brackets, the variable name without sigil, the placeholder name.
func (t Token) Value() string {
	switch t.Kind {
	case TokenIRI, TokenPlaceholder:
		return t.Text[1 : len(t.Text)-1]
	case TokenVar:
		return t.Text[1:]
	case TokenLangTag:
		return t.Text[1:]
	default:
		return t.Text
	}
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}
