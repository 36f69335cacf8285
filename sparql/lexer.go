package sparql

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize splits SPARQL text into tokens. Whitespace is dropped; comments are
// kept as TokenComment so text can be reproduced. The returned slice does not
// include a trailing EOF token.
func Tokenize(text string) ([]Token, error) {
	lx := &lexer{src: text, line: 1, col: 1}
	var toks []Token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == TokenEOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func (l *lexer) errorf(line, col int, msg string) error {
	return &SyntaxError{Line: line, Col: col, Msg: msg}
}

func (l *lexer) peekByte(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

// advance moves n bytes forward keeping line and column current.
func (l *lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.src); i++ {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else if l.src[l.pos]&0xC0 != 0x80 {
			l.col++
		}
		l.pos++
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.advance(1)
		default:
			return
		}
	}
}

func (l *lexer) emit(kind TokenKind, start, line, col int) Token {
	return Token{Kind: kind, Text: l.src[start:l.pos], Offset: start, Line: line, Col: col}
}

func (l *lexer) next() (Token, error) {
	l.skipSpace()
	start, line, col := l.pos, l.line, l.col
	if l.pos >= len(l.src) {
		return Token{Kind: TokenEOF, Offset: l.pos, Line: line, Col: col}, nil
	}

	c := l.src[l.pos]
	switch {
	case c == '#':
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.advance(1)
		}
		return l.emit(TokenComment, start, line, col), nil

	case c == '<':
		if n := matchPlaceholder(l.src[l.pos:]); n > 0 {
			l.advance(n)
			return l.emit(TokenPlaceholder, start, line, col), nil
		}
		if n := matchIRIRef(l.src[l.pos:]); n > 0 {
			l.advance(n)
			return l.emit(TokenIRI, start, line, col), nil
		}
		if l.peekByte(1) == '=' {
			l.advance(2)
		} else {
			l.advance(1)
		}
		return l.emit(TokenPunct, start, line, col), nil

	case c == '?' || c == '$':
		if r, _ := utf8.DecodeRuneInString(l.src[l.pos+1:]); isVarChar(r) {
			l.advance(1)
			for l.pos < len(l.src) {
				r, size := utf8.DecodeRuneInString(l.src[l.pos:])
				if !isVarChar(r) {
					break
				}
				l.advance(size)
			}
			return l.emit(TokenVar, start, line, col), nil
		}
		if c == '$' {
			return Token{}, l.errorf(line, col, "'$' must start a variable")
		}
		l.advance(1)
		return l.emit(TokenPunct, start, line, col), nil

	case c == '"' || c == '\'':
		if err := l.lexString(c); err != nil {
			return Token{}, err
		}
		return l.emit(TokenString, start, line, col), nil

	case c == '@':
		l.advance(1)
		n := 0
		for l.pos < len(l.src) {
			b := l.src[l.pos]
			if isASCIILetter(b) || (n > 0 && (b == '-' || isDigit(b))) {
				l.advance(1)
				n++
				continue
			}
			break
		}
		if n == 0 {
			return Token{}, l.errorf(line, col, "empty language tag")
		}
		return l.emit(TokenLangTag, start, line, col), nil

	case isDigit(c) || (c == '.' && isDigit(l.peekByte(1))):
		l.lexNumber()
		return l.emit(TokenNumber, start, line, col), nil

	case c == '_' && l.peekByte(1) == ':':
		l.advance(2)
		l.lexLocal()
		if l.pos == start+2 {
			return Token{}, l.errorf(line, col, "empty blank node label")
		}
		return l.emit(TokenBlankNode, start, line, col), nil

	case c == ':':
		l.advance(1)
		l.lexLocal()
		return l.emit(TokenPrefixedName, start, line, col), nil
	}

	if r, _ := utf8.DecodeRuneInString(l.src[l.pos:]); unicode.IsLetter(r) {
		l.lexName()
		if l.pos < len(l.src) && l.src[l.pos] == ':' {
			l.advance(1)
			l.lexLocal()
			return l.emit(TokenPrefixedName, start, line, col), nil
		}
		return l.emit(TokenName, start, line, col), nil
	}

	for _, op := range []string{"^^", "&&", "||", "!=", ">="} {
		if strings.HasPrefix(l.src[l.pos:], op) {
			l.advance(len(op))
			return l.emit(TokenPunct, start, line, col), nil
		}
	}
	if strings.IndexByte("{}()[].;,*/|^+-!=>", c) >= 0 {
		l.advance(1)
		return l.emit(TokenPunct, start, line, col), nil
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return Token{}, l.errorf(line, col, "unexpected character "+strconv.QuoteRune(r))
}

func (l *lexer) lexString(quote byte) error {
	line, col := l.line, l.col
	long := l.peekByte(1) == quote && l.peekByte(2) == quote
	if long {
		l.advance(3)
		for l.pos < len(l.src) {
			if l.src[l.pos] == '\\' {
				l.advance(2)
				continue
			}
			if l.src[l.pos] == quote && l.peekByte(1) == quote && l.peekByte(2) == quote {
				l.advance(3)
				// A long string may end with up to two extra quotes.
				for i := 0; i < 2 && l.pos < len(l.src) && l.src[l.pos] == quote; i++ {
					l.advance(1)
				}
				return nil
			}
			l.advance(1)
		}
		return l.errorf(line, col, "unterminated long string")
	}

	l.advance(1)
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.advance(2)
		case '\n', '\r':
			return l.errorf(line, col, "newline in string literal")
		case quote:
			l.advance(1)
			return nil
		default:
			l.advance(1)
		}
	}
	return l.errorf(line, col, "unterminated string")
}

func (l *lexer) lexNumber() {
	for isDigit(l.peekByte(0)) {
		l.advance(1)
	}
	if l.peekByte(0) == '.' && isDigit(l.peekByte(1)) {
		l.advance(1)
		for isDigit(l.peekByte(0)) {
			l.advance(1)
		}
	}
	if e := l.peekByte(0); e == 'e' || e == 'E' {
		off := 1
		if s := l.peekByte(1); s == '+' || s == '-' {
			off = 2
		}
		if isDigit(l.peekByte(off)) {
			l.advance(off)
			for isDigit(l.peekByte(0)) {
				l.advance(1)
			}
		}
	}
}

// lexName consumes a prefix or keyword: letters, digits, '_', '-' and inner dots.
func (l *lexer) lexName() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			l.advance(size)
		case r == '.':
			next, _ := utf8.DecodeRuneInString(l.src[l.pos+1:])
			if !(unicode.IsLetter(next) || unicode.IsDigit(next) || next == '_' || next == '-') {
				return
			}
			l.advance(1)
		default:
			return
		}
	}
}

// lexLocal consumes the local part of a prefixed name. Dots are allowed only
// when followed by another local character.
func (l *lexer) lexLocal() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		switch {
		case isLocalChar(r):
			l.advance(size)
		case r == '%' && isHex(l.peekByte(1)) && isHex(l.peekByte(2)):
			l.advance(3)
		case r == '\\' && l.pos+1 < len(l.src):
			l.advance(2)
		case r == '.':
			next, _ := utf8.DecodeRuneInString(l.src[l.pos+1:])
			if !isLocalChar(next) {
				return
			}
			l.advance(1)
		default:
			return
		}
	}
}

// matchPlaceholder returns the length of a <UPPER_SNAKE> placeholder at the
// start of s, or 0.
func matchPlaceholder(s string) int {
	if len(s) < 3 || s[0] != '<' || !isUpper(s[1]) {
		return 0
	}
	for i := 2; i < len(s); i++ {
		switch {
		case s[i] == '>':
			return i + 1
		case isUpper(s[i]) || isDigit(s[i]) || s[i] == '_':
		default:
			return 0
		}
	}
	return 0
}

// matchIRIRef returns the length of an IRIREF at the start of s, or 0.
func matchIRIRef(s string) int {
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c == '>' {
			return i + 1
		}
		if c <= 0x20 || strings.IndexByte("<\"{}|^`\\", c) >= 0 {
			return 0
		}
	}
	return 0
}

func isVarChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isLocalChar(r rune) bool {
	return r == '_' || r == '-' || r == ':' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(c byte) bool       { return c >= '0' && c <= '9' }
func isUpper(c byte) bool       { return c >= 'A' && c <= 'Z' }
func isASCIILetter(c byte) bool { return (c >= 'a' && c <= 'z') || isUpper(c) }
func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
