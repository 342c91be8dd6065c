// Package lexer implements the tokenizer for bridge source files.
//
// Bridge files are written in the host language's ordinary item syntax;
// the lexer recognizes enough of it to let the parser find modules, impl
// blocks, paths, generic arguments and types, and to skip everything else
// as balanced token trees.
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/qtbridge/bridgegen/internal/position"
)

// TokenType represents the type of a token
type TokenType int

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

const (
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenIdentifier
	TokenLifetime
	TokenInteger
	TokenFloat
	TokenString
	TokenChar
	TokenBool

	// Keywords
	TokenAs
	TokenConst
	TokenCrate
	TokenDyn
	TokenEnum
	TokenExtern
	TokenFn
	TokenFor
	TokenImpl
	TokenMod
	TokenMut
	TokenPub
	TokenSelfValue // self
	TokenSelfType  // Self
	TokenStatic
	TokenStruct
	TokenSuper
	TokenTrait
	TokenTypeKeyword // type
	TokenUnsafe
	TokenUse
	TokenWhere

	// Delimiters
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenLt
	TokenGt

	// Punctuation
	TokenComma
	TokenSemicolon
	TokenColon
	TokenDoubleColon
	TokenAssign
	TokenArrow
	TokenFatArrow
	TokenHash
	TokenExclamation
	TokenAmpersand
	TokenStar
	TokenPlus
	TokenQuestion
	TokenUnderscore

	// TokenOperator covers punctuation the parser never inspects
	// (arithmetic, comparison, range operators inside skipped bodies).
	TokenOperator
)

// Token represents a lexical token with position information
type Token struct {
	Type    TokenType
	Literal string
	Span    position.Span
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %q, At: %s}", t.Type, t.Literal, t.Span.Start)
}

var tokenNames = map[TokenType]string{
	TokenEOF:   "EOF",
	TokenError: "ERROR",

	TokenIdentifier: "IDENTIFIER",
	TokenLifetime:   "LIFETIME",
	TokenInteger:    "INTEGER",
	TokenFloat:      "FLOAT",
	TokenString:     "STRING",
	TokenChar:       "CHAR",
	TokenBool:       "BOOL",

	TokenAs:          "as",
	TokenConst:       "const",
	TokenCrate:       "crate",
	TokenDyn:         "dyn",
	TokenEnum:        "enum",
	TokenExtern:      "extern",
	TokenFn:          "fn",
	TokenFor:         "for",
	TokenImpl:        "impl",
	TokenMod:         "mod",
	TokenMut:         "mut",
	TokenPub:         "pub",
	TokenSelfValue:   "self",
	TokenSelfType:    "Self",
	TokenStatic:      "static",
	TokenStruct:      "struct",
	TokenSuper:       "super",
	TokenTrait:       "trait",
	TokenTypeKeyword: "type",
	TokenUnsafe:      "unsafe",
	TokenUse:         "use",
	TokenWhere:       "where",

	TokenLParen:   "'('",
	TokenRParen:   "')'",
	TokenLBrace:   "'{'",
	TokenRBrace:   "'}'",
	TokenLBracket: "'['",
	TokenRBracket: "']'",
	TokenLt:       "'<'",
	TokenGt:       "'>'",

	TokenComma:       "','",
	TokenSemicolon:   "';'",
	TokenColon:       "':'",
	TokenDoubleColon: "'::'",
	TokenAssign:      "'='",
	TokenArrow:       "'->'",
	TokenFatArrow:    "'=>'",
	TokenHash:        "'#'",
	TokenExclamation: "'!'",
	TokenAmpersand:   "'&'",
	TokenStar:        "'*'",
	TokenPlus:        "'+'",
	TokenQuestion:    "'?'",
	TokenUnderscore:  "'_'",
	TokenOperator:    "OPERATOR",
}

var keywords = map[string]TokenType{
	"as":     TokenAs,
	"const":  TokenConst,
	"crate":  TokenCrate,
	"dyn":    TokenDyn,
	"enum":   TokenEnum,
	"extern": TokenExtern,
	"fn":     TokenFn,
	"for":    TokenFor,
	"impl":   TokenImpl,
	"mod":    TokenMod,
	"mut":    TokenMut,
	"pub":    TokenPub,
	"self":   TokenSelfValue,
	"Self":   TokenSelfType,
	"static": TokenStatic,
	"struct": TokenStruct,
	"super":  TokenSuper,
	"trait":  TokenTrait,
	"type":   TokenTypeKeyword,
	"unsafe": TokenUnsafe,
	"use":    TokenUse,
	"where":  TokenWhere,
	"true":   TokenBool,
	"false":  TokenBool,
	"_":      TokenUnderscore,
}

// operators lists multi-character punctuation, longest first.
var operators = []string{
	"..=", "...", "<<=", ">>=",
	"::", "->", "=>", "==", "!=", "<=", ">=", "&&", "||", "..",
	"+=", "-=", "*=", "/=", "%=", "^=", "&=", "|=",
}

// Lexer converts bridge source into tokens.
type Lexer struct {
	input    string
	filename string

	offset int // byte offset of the next unread character
	line   int
	column int // rune column of the next unread character

	errors int
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "")
}

// NewWithFilename creates a new lexer instance with filename for error reporting
func NewWithFilename(input, filename string) *Lexer {
	return &Lexer{
		input:    input,
		filename: filename,
		line:     1,
		column:   1,
	}
}

// ErrorCount returns the number of error tokens produced so far.
func (l *Lexer) ErrorCount() int {
	return l.errors
}

// Tokenize scans the whole input. The final token is always TokenEOF.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens
		}
	}
}

func (l *Lexer) peekByte(n int) byte {
	if l.offset+n >= len(l.input) {
		return 0
	}
	return l.input[l.offset+n]
}

func (l *Lexer) atEnd() bool {
	return l.offset >= len(l.input)
}

// advance consumes one rune and keeps line/column in sync.
func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.input[l.offset:])
	l.offset += size
	if r == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return r
}

func (l *Lexer) currentPosition() position.Position {
	return position.Position{
		Filename: l.filename,
		Line:     l.line,
		Column:   l.column,
		Offset:   l.offset,
	}
}

// skipTrivia skips whitespace and comments, including nested block comments.
func (l *Lexer) skipTrivia() *Token {
	for !l.atEnd() {
		c := l.input[l.offset]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.peekByte(1) == '/':
			for !l.atEnd() && l.input[l.offset] != '\n' {
				l.advance()
			}
		case c == '/' && l.peekByte(1) == '*':
			start := l.currentPosition()
			l.advance()
			l.advance()
			depth := 1
			for depth > 0 {
				if l.atEnd() {
					tok := l.errorToken(start, "unterminated block comment")
					return &tok
				}
				switch {
				case l.input[l.offset] == '/' && l.peekByte(1) == '*':
					l.advance()
					l.advance()
					depth++
				case l.input[l.offset] == '*' && l.peekByte(1) == '/':
					l.advance()
					l.advance()
					depth--
				default:
					l.advance()
				}
			}
		default:
			return nil
		}
	}
	return nil
}

// NextToken scans the input and returns the next token with full position information
func (l *Lexer) NextToken() Token {
	if errTok := l.skipTrivia(); errTok != nil {
		return *errTok
	}

	start := l.currentPosition()
	if l.atEnd() {
		return l.makeToken(TokenEOF, "", start)
	}

	c := l.input[l.offset]

	switch c {
	case '(':
		return l.single(TokenLParen, start)
	case ')':
		return l.single(TokenRParen, start)
	case '{':
		return l.single(TokenLBrace, start)
	case '}':
		return l.single(TokenRBrace, start)
	case '[':
		return l.single(TokenLBracket, start)
	case ']':
		return l.single(TokenRBracket, start)
	case ',':
		return l.single(TokenComma, start)
	case ';':
		return l.single(TokenSemicolon, start)
	case '#':
		return l.single(TokenHash, start)
	case '?':
		return l.single(TokenQuestion, start)
	case '"':
		return l.readString(start, 0)
	case '\'':
		return l.readQuote(start)
	}

	if c == 'r' || c == 'b' {
		if tok, ok := l.readPrefixed(start); ok {
			return tok
		}
	}

	if isIdentStart(l.input[l.offset:]) {
		return l.readIdentifier(start)
	}
	if isDigit(c) {
		return l.readNumber(start)
	}

	return l.readPunctuation(start)
}

func (l *Lexer) single(tt TokenType, start position.Position) Token {
	r := l.advance()
	return l.makeToken(tt, string(r), start)
}

// readPunctuation handles operators. '<' and '>' are always emitted as
// single tokens so that nested generics like Vec<Vec<u8>> close correctly.
func (l *Lexer) readPunctuation(start position.Position) Token {
	rest := l.input[l.offset:]

	if rest[0] != '<' && rest[0] != '>' {
		for _, op := range operators {
			if len(rest) >= len(op) && rest[:len(op)] == op {
				for range op {
					l.advance()
				}
				return l.makeToken(punctType(op), op, start)
			}
		}
	}

	r := l.advance()
	switch r {
	case '<':
		return l.makeToken(TokenLt, "<", start)
	case '>':
		return l.makeToken(TokenGt, ">", start)
	case ':':
		return l.makeToken(TokenColon, ":", start)
	case '=':
		return l.makeToken(TokenAssign, "=", start)
	case '!':
		return l.makeToken(TokenExclamation, "!", start)
	case '&':
		return l.makeToken(TokenAmpersand, "&", start)
	case '*':
		return l.makeToken(TokenStar, "*", start)
	case '+':
		return l.makeToken(TokenPlus, "+", start)
	case '-', '/', '%', '^', '|', '.', '@', '$', '~':
		return l.makeToken(TokenOperator, string(r), start)
	}

	return l.errorToken(start, fmt.Sprintf("unexpected character %q", r))
}

func punctType(op string) TokenType {
	switch op {
	case "::":
		return TokenDoubleColon
	case "->":
		return TokenArrow
	case "=>":
		return TokenFatArrow
	}
	return TokenOperator
}

func (l *Lexer) readIdentifier(start position.Position) Token {
	begin := l.offset
	for !l.atEnd() {
		r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.advance()
	}

	ident := l.input[begin:l.offset]
	if tt, ok := keywords[ident]; ok {
		return l.makeToken(tt, ident, start)
	}
	return l.makeToken(TokenIdentifier, ident, start)
}

// readPrefixed handles raw identifiers (r#type), raw strings (r"..", r#".."#)
// and byte strings (b"..", br"..", b'x'). It reports false when the 'r' or 'b'
// starts an ordinary identifier.
func (l *Lexer) readPrefixed(start position.Position) (Token, bool) {
	rest := l.input[l.offset:]

	switch {
	case len(rest) > 2 && rest[0] == 'r' && rest[1] == '#' && isIdentStart(rest[2:]):
		l.advance()
		l.advance()
		tok := l.readIdentifier(start)
		tok.Type = TokenIdentifier
		return tok, true
	case len(rest) > 1 && rest[0] == 'r' && (rest[1] == '"' || rest[1] == '#'):
		l.advance()
		return l.readRawString(start), true
	case len(rest) > 2 && rest[0] == 'b' && rest[1] == 'r' && (rest[2] == '"' || rest[2] == '#'):
		l.advance()
		l.advance()
		return l.readRawString(start), true
	case len(rest) > 1 && rest[0] == 'b' && rest[1] == '"':
		l.advance()
		return l.readString(start, 1), true
	case len(rest) > 1 && rest[0] == 'b' && rest[1] == '\'':
		l.advance()
		return l.readQuote(start), true
	}
	return Token{}, false
}

// readString reads a "..." literal; prefix is the number of bytes already
// consumed before the opening quote. The literal excludes the quotes.
func (l *Lexer) readString(start position.Position, prefix int) Token {
	l.advance() // opening quote
	begin := l.offset
	for {
		if l.atEnd() {
			return l.errorToken(start, "unterminated string literal")
		}
		c := l.input[l.offset]
		if c == '"' {
			literal := l.input[begin:l.offset]
			l.advance()
			return l.makeToken(TokenString, literal, start)
		}
		if c == '\\' {
			l.advance()
			if l.atEnd() {
				continue
			}
		}
		l.advance()
	}
}

// readRawString reads r#"..."# with any number of hashes; the 'r' is consumed.
func (l *Lexer) readRawString(start position.Position) Token {
	hashes := 0
	for !l.atEnd() && l.input[l.offset] == '#' {
		hashes++
		l.advance()
	}
	if l.atEnd() || l.input[l.offset] != '"' {
		return l.errorToken(start, "malformed raw string literal")
	}
	l.advance()

	begin := l.offset
	for !l.atEnd() {
		if l.input[l.offset] == '"' && l.closesRaw(hashes) {
			literal := l.input[begin:l.offset]
			l.advance()
			for i := 0; i < hashes; i++ {
				l.advance()
			}
			return l.makeToken(TokenString, literal, start)
		}
		l.advance()
	}
	return l.errorToken(start, "unterminated raw string literal")
}

func (l *Lexer) closesRaw(hashes int) bool {
	for i := 1; i <= hashes; i++ {
		if l.peekByte(i) != '#' {
			return false
		}
	}
	return true
}

// readQuote disambiguates lifetimes ('a, 'static) from char literals ('a', '\n').
func (l *Lexer) readQuote(start position.Position) Token {
	l.advance() // '

	rest := l.input[l.offset:]
	if isIdentStart(rest) {
		_, size := utf8.DecodeRuneInString(rest)
		if len(rest) <= size || rest[size] != '\'' {
			begin := l.offset
			for !l.atEnd() {
				r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
				if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
					break
				}
				l.advance()
			}
			return l.makeToken(TokenLifetime, "'"+l.input[begin:l.offset], start)
		}
	}

	begin := l.offset
	for {
		if l.atEnd() || l.input[l.offset] == '\n' {
			return l.errorToken(start, "unterminated character literal")
		}
		c := l.input[l.offset]
		if c == '\'' {
			literal := l.input[begin:l.offset]
			l.advance()
			return l.makeToken(TokenChar, literal, start)
		}
		if c == '\\' {
			l.advance()
		}
		l.advance()
	}
}

// readNumber reads integer and float literals including suffixes (1u8, 2.5f32, 0xff).
func (l *Lexer) readNumber(start position.Position) Token {
	begin := l.offset
	isFloat := false

	for !l.atEnd() {
		c := l.input[l.offset]
		switch {
		case isDigit(c) || isLetter(c) || c == '_':
			l.advance()
		case c == '.' && isDigit(l.peekByte(1)) && !isFloat:
			isFloat = true
			l.advance()
		default:
			goto done
		}
	}
done:
	literal := l.input[begin:l.offset]
	if isFloat {
		return l.makeToken(TokenFloat, literal, start)
	}
	return l.makeToken(TokenInteger, literal, start)
}

func (l *Lexer) makeToken(tt TokenType, literal string, start position.Position) Token {
	return Token{
		Type:    tt,
		Literal: literal,
		Span:    position.Span{Start: start, End: l.currentPosition()},
	}
}

func (l *Lexer) errorToken(start position.Position, message string) Token {
	l.errors++
	if l.offset == start.Offset && !l.atEnd() {
		l.advance()
	}
	return Token{
		Type:    TokenError,
		Literal: message,
		Span:    position.Span{Start: start, End: l.currentPosition()},
	}
}

func isIdentStart(s string) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || unicode.IsLetter(r)
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
