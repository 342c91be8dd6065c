package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qtbridge/bridgegen/internal/diagnostic"
	"github.com/qtbridge/bridgegen/internal/lexer"
	"github.com/qtbridge/bridgegen/internal/position"
)

// Parser is a recursive descent parser over a pre-lexed token stream.
//
// Items are parsed one at a time inside their token extent: tokens past
// the extent read as EOF, so a malformed item is reported once and the
// parser resumes at the next item.
type Parser struct {
	tokens []lexer.Token
	index  int
	limit  int // tokens at or beyond limit read as EOF

	current lexer.Token
	peek    lexer.Token
	prev    lexer.Token

	filename string
	errors   []*diagnostic.Diagnostic
	failed   bool // an error was already reported for the current item
}

// NewParser creates a new parser instance. Lexical errors are converted
// to syntax diagnostics up front.
func NewParser(l *lexer.Lexer, filename string) *Parser {
	p := &Parser{filename: filename}

	for _, tok := range l.Tokenize() {
		if tok.Type == lexer.TokenError {
			p.errors = append(p.errors, diagnostic.Common.Syntax(tok.Span, tok.Literal))
			continue
		}
		p.tokens = append(p.tokens, tok)
	}

	p.limit = len(p.tokens) - 1 // index of the trailing EOF
	p.setIndex(0)

	return p
}

// ParseFile parses a complete bridge source file.
func ParseFile(filename, src string) (*File, []*diagnostic.Diagnostic) {
	return NewParser(lexer.NewWithFilename(src, filename), filename).Parse()
}

// ParseType parses a single type expression such as "&mut QString".
func ParseType(src string) (Type, error) {
	p := NewParser(lexer.New(src), "")
	typ := p.parseType()
	if typ != nil && !p.currentTokenIs(lexer.TokenEOF) {
		p.unexpected("end of type")
	}
	if err := p.firstError(); err != nil {
		return nil, err
	}
	return typ, nil
}

// ParseImpl parses src and returns its first top-level impl block.
func ParseImpl(filename, src string) (*ItemImpl, error) {
	file, diags := ParseFile(filename, src)
	if len(diags) > 0 {
		return nil, diags[0]
	}
	for _, item := range file.Items {
		if impl, ok := item.(*ItemImpl); ok {
			return impl, nil
		}
	}
	return nil, errors.New("no impl block found")
}

// Parse parses the input and returns the file and any syntax diagnostics.
func (p *Parser) Parse() (*File, []*diagnostic.Diagnostic) {
	file := &File{Filename: p.filename}
	start := p.current.Span

	file.Attrs = p.parseInnerAttributes()
	file.Items = p.parseItems(lexer.TokenEOF)
	file.Span = position.Between(start, p.current.Span)

	return file, p.errors
}

func (p *Parser) firstError() error {
	if len(p.errors) == 0 {
		return nil
	}
	return p.errors[0]
}

// ====== Token handling ======

func (p *Parser) tokenAt(i int) lexer.Token {
	if i >= p.limit {
		eof := p.tokens[p.limit]
		return lexer.Token{
			Type: lexer.TokenEOF,
			Span: position.Span{Start: eof.Span.Start, End: eof.Span.Start},
		}
	}
	if i < 0 {
		return lexer.Token{}
	}
	return p.tokens[i]
}

func (p *Parser) setIndex(i int) {
	p.index = i
	p.prev = p.tokenAt(i - 1)
	p.current = p.tokenAt(i)
	p.peek = p.tokenAt(i + 1)
}

// nextToken advances the parser to the next token
func (p *Parser) nextToken() {
	p.prev = p.current
	if p.index < p.limit {
		p.index++
	}
	p.current = p.tokenAt(p.index)
	p.peek = p.tokenAt(p.index + 1)
}

// currentTokenIs checks if the current token is of the given type
func (p *Parser) currentTokenIs(tokenType lexer.TokenType) bool {
	return p.current.Type == tokenType
}

// peekTokenIs checks if the peek token is of the given type
func (p *Parser) peekTokenIs(tokenType lexer.TokenType) bool {
	return p.peek.Type == tokenType
}

// expect consumes the current token if it has the given type
func (p *Parser) expect(tokenType lexer.TokenType) bool {
	if p.currentTokenIs(tokenType) {
		p.nextToken()
		return true
	}
	p.unexpected(tokenType.String())
	return false
}

// withLimit runs fn with the token stream truncated at end.
func (p *Parser) withLimit(end int, fn func()) {
	saved := p.limit
	p.limit = end
	p.setIndex(p.index)

	fn()

	p.limit = saved
	p.setIndex(p.index)
}

// addError records a syntax diagnostic. Only the first error of an item is kept.
func (p *Parser) addError(span position.Span, message string) {
	if p.failed {
		return
	}
	p.failed = true
	p.errors = append(p.errors, diagnostic.Common.Syntax(span, message))
}

func (p *Parser) unexpected(expected string) {
	p.addError(p.current.Span, fmt.Sprintf("expected %s, found %s", expected, describe(p.current)))
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokenEOF {
		return "end of item"
	}
	return fmt.Sprintf("%q", tokenText(tok))
}

// ====== Items ======

// itemEnd returns the index just past the item starting at start: the
// first top-level ';' or the brace group that closes the item. Brace groups
// inside a header's angle brackets (const generic blocks) do not end it. Any
// other top-level '{' opens the item body, so an unclosed '<' in the header
// cannot run the item into its siblings. A closing delimiter that belongs to
// an enclosing block ends the item before it.
func (p *Parser) itemEnd(start int) int {
	depth, angle := 0, 0
	for i := start; i < p.limit; i++ {
		switch p.tokens[i].Type {
		case lexer.TokenLt:
			if depth == 0 {
				angle++
			}
		case lexer.TokenGt:
			if depth == 0 && angle > 0 {
				angle--
			}
		case lexer.TokenLBrace:
			if depth == 0 && angle > 0 && !opensConstBlock(p.tokens[i-1].Type) {
				angle = 0
			}
			depth++
		case lexer.TokenLParen, lexer.TokenLBracket:
			depth++
		case lexer.TokenRParen, lexer.TokenRBracket:
			depth--
			if depth < 0 {
				return i
			}
		case lexer.TokenRBrace:
			depth--
			if depth < 0 {
				return i
			}
			if depth == 0 && angle == 0 {
				return i + 1
			}
		case lexer.TokenSemicolon:
			if depth == 0 {
				return i + 1
			}
		}
	}
	return p.limit
}

// opensConstBlock reports whether a '{' following prev starts a const
// generic argument such as Foo<{ N }> rather than an item body.
func opensConstBlock(prev lexer.TokenType) bool {
	switch prev {
	case lexer.TokenLt, lexer.TokenComma, lexer.TokenAssign:
		return true
	}
	return false
}

// parseItems parses items until the closing token (not consumed).
func (p *Parser) parseItems(closing lexer.TokenType) []Item {
	var items []Item

	for !p.currentTokenIs(lexer.TokenEOF) && !p.currentTokenIs(closing) {
		if p.currentTokenIs(lexer.TokenSemicolon) {
			p.nextToken()
			continue
		}

		start := p.index
		end := p.itemEnd(start)
		if end <= start {
			p.addError(p.current.Span, fmt.Sprintf("unexpected %s", describe(p.current)))
			p.nextToken()
			continue
		}

		savedFailed := p.failed
		p.failed = false

		var item Item
		p.withLimit(end, func() {
			item = p.parseItem()
			if item != nil && !p.currentTokenIs(lexer.TokenEOF) {
				p.unexpected("end of item")
				item = nil
			}
		})
		p.setIndex(end)
		p.failed = savedFailed

		if item != nil {
			items = append(items, item)
		}
	}

	return items
}

func (p *Parser) parseItem() Item {
	attrs := p.parseOuterAttributes()
	if p.failed {
		return nil
	}

	start := p.current.Span
	vis := p.parseVisibility()

	switch p.current.Type {
	case lexer.TokenMod:
		return p.parseMod(attrs, vis, start)
	case lexer.TokenStruct:
		return p.parseStruct(attrs, vis, start)
	case lexer.TokenImpl:
		return p.parseImpl(attrs, start)
	case lexer.TokenTypeKeyword:
		return p.parseTypeAlias(attrs, vis, start)
	case lexer.TokenUnsafe:
		if p.peekTokenIs(lexer.TokenImpl) {
			return p.parseImpl(attrs, start)
		}
		if p.peekTokenIs(lexer.TokenExtern) && p.tokenAt(p.index+2).Type == lexer.TokenString &&
			p.tokenAt(p.index+3).Type == lexer.TokenLBrace {
			return p.parseForeignMod(attrs, start)
		}
	case lexer.TokenExtern:
		if p.peekTokenIs(lexer.TokenLBrace) ||
			(p.peekTokenIs(lexer.TokenString) && p.tokenAt(p.index+2).Type == lexer.TokenLBrace) {
			return p.parseForeignMod(attrs, start)
		}
	case lexer.TokenEOF:
		p.unexpected("item")
		return nil
	}

	return p.parseOther(attrs, start)
}

func (p *Parser) parseVisibility() string {
	if !p.currentTokenIs(lexer.TokenPub) {
		return ""
	}
	p.nextToken()

	if !p.currentTokenIs(lexer.TokenLParen) {
		return "pub"
	}
	if p.peekTokenIs(lexer.TokenCrate) || p.peekTokenIs(lexer.TokenSuper) ||
		p.peekTokenIs(lexer.TokenSelfValue) || p.peek.Literal == "in" {
		p.nextToken()
		inner := joinTokens(p.collectUntil(lexer.TokenRParen))
		p.expect(lexer.TokenRParen)
		return "pub(" + inner + ")"
	}
	return "pub"
}

func (p *Parser) parseIdent() *Ident {
	if !p.currentTokenIs(lexer.TokenIdentifier) {
		p.unexpected("identifier")
		return nil
	}
	ident := &Ident{Span: p.current.Span, Value: p.current.Literal}
	p.nextToken()
	return ident
}

func (p *Parser) parseMod(attrs []*Attribute, vis string, start position.Span) Item {
	p.nextToken() // mod

	name := p.parseIdent()
	if name == nil {
		return nil
	}
	mod := &ItemMod{Attrs: attrs, Visibility: vis, Name: name}

	if p.currentTokenIs(lexer.TokenSemicolon) {
		p.nextToken()
		mod.Span = position.Between(start, p.prev.Span)
		return mod
	}

	if !p.expect(lexer.TokenLBrace) {
		return nil
	}
	mod.HasBody = true
	mod.Attrs = append(mod.Attrs, p.parseInnerAttributes()...)
	mod.Items = p.parseItems(lexer.TokenRBrace)
	if !p.expect(lexer.TokenRBrace) {
		return nil
	}

	mod.Span = position.Between(start, p.prev.Span)
	return mod
}

func (p *Parser) parseStruct(attrs []*Attribute, vis string, start position.Span) Item {
	p.nextToken() // struct

	name := p.parseIdent()
	if name == nil {
		return nil
	}
	s := &ItemStruct{Attrs: attrs, Visibility: vis, Name: name}

	if p.currentTokenIs(lexer.TokenLt) {
		if s.Generics = p.parseGenerics(); s.Generics == nil {
			return nil
		}
	}

	switch p.current.Type {
	case lexer.TokenLParen:
		p.skipGroup()
		p.skipWhere()
		if !p.expect(lexer.TokenSemicolon) {
			return nil
		}
	case lexer.TokenSemicolon:
		p.nextToken()
	default:
		p.skipWhere()
		fields, ok := p.parseFields()
		if !ok {
			return nil
		}
		s.Fields = fields
	}

	s.Span = position.Between(start, p.prev.Span)
	return s
}

func (p *Parser) parseFields() ([]*Field, bool) {
	if !p.expect(lexer.TokenLBrace) {
		return nil, false
	}

	var fields []*Field
	for !p.currentTokenIs(lexer.TokenRBrace) {
		attrs := p.parseOuterAttributes()
		if p.failed {
			return nil, false
		}
		start := p.current.Span
		vis := p.parseVisibility()
		name := p.parseIdent()
		if name == nil || !p.expect(lexer.TokenColon) {
			return nil, false
		}
		typ := p.parseType()
		if typ == nil {
			return nil, false
		}
		fields = append(fields, &Field{
			Span:       position.Between(start, p.prev.Span),
			Attrs:      attrs,
			Visibility: vis,
			Name:       name,
			Type:       typ,
		})

		if p.currentTokenIs(lexer.TokenComma) {
			p.nextToken()
			continue
		}
		if !p.currentTokenIs(lexer.TokenRBrace) {
			p.unexpected("`,` or `}`")
			return nil, false
		}
	}
	p.nextToken() // }

	return fields, true
}

func (p *Parser) parseImpl(attrs []*Attribute, start position.Span) Item {
	impl := &ItemImpl{Attrs: attrs}

	if p.currentTokenIs(lexer.TokenUnsafe) {
		unsafeSpan := p.current.Span
		impl.Unsafe = &unsafeSpan
		p.nextToken()
	}
	if !p.expect(lexer.TokenImpl) {
		return nil
	}

	if p.currentTokenIs(lexer.TokenLt) {
		if impl.Generics = p.parseGenerics(); impl.Generics == nil {
			return nil
		}
	}

	if p.currentTokenIs(lexer.TokenExclamation) {
		impl.Negative = true
		p.nextToken()
	}

	first := p.parseType()
	if first == nil {
		return nil
	}

	if p.currentTokenIs(lexer.TokenFor) {
		trait, ok := first.(*PathType)
		if !ok || trait.QSelf != nil {
			p.addError(first.GetSpan(), "expected a trait path before `for`")
			return nil
		}
		impl.Trait = trait.Path
		p.nextToken()

		if impl.SelfType = p.parseType(); impl.SelfType == nil {
			return nil
		}
	} else {
		if impl.Negative {
			p.addError(first.GetSpan(), "negative impls require a trait")
			return nil
		}
		impl.SelfType = first
	}

	if p.currentTokenIs(lexer.TokenWhere) {
		whereStart := p.current.Span
		p.skipWhere()
		whereSpan := position.Between(whereStart, p.prev.Span)
		impl.WhereSpan = &whereSpan
	}

	if !p.currentTokenIs(lexer.TokenLBrace) {
		p.unexpected("`{`")
		return nil
	}
	bodyStart := p.current.Span
	p.nextToken()

	impl.Attrs = append(impl.Attrs, p.parseInnerAttributes()...)
	impl.Items = p.parseItems(lexer.TokenRBrace)
	if !p.expect(lexer.TokenRBrace) {
		return nil
	}

	impl.BodySpan = position.Between(bodyStart, p.prev.Span)
	impl.Span = position.Between(start, p.prev.Span)
	return impl
}

func (p *Parser) parseTypeAlias(attrs []*Attribute, vis string, start position.Span) Item {
	p.nextToken() // type

	name := p.parseIdent()
	if name == nil {
		return nil
	}
	alias := &ItemType{Attrs: attrs, Visibility: vis, Name: name}

	if p.currentTokenIs(lexer.TokenLt) {
		if alias.Generics = p.parseGenerics(); alias.Generics == nil {
			return nil
		}
	}

	if p.currentTokenIs(lexer.TokenColon) {
		p.collectUntil(lexer.TokenAssign, lexer.TokenSemicolon)
	}

	if p.currentTokenIs(lexer.TokenAssign) {
		p.nextToken()
		if alias.Value = p.parseType(); alias.Value == nil {
			return nil
		}
	}

	if !p.expect(lexer.TokenSemicolon) {
		return nil
	}

	alias.Span = position.Between(start, p.prev.Span)
	return alias
}

func (p *Parser) parseForeignMod(attrs []*Attribute, start position.Span) Item {
	foreign := &ItemForeignMod{Attrs: attrs}

	if p.currentTokenIs(lexer.TokenUnsafe) {
		foreign.Unsafe = true
		p.nextToken()
	}
	p.nextToken() // extern

	if p.currentTokenIs(lexer.TokenString) {
		foreign.ABI = p.current.Literal
		p.nextToken()
	}

	if !p.expect(lexer.TokenLBrace) {
		return nil
	}
	foreign.Attrs = append(foreign.Attrs, p.parseInnerAttributes()...)
	foreign.Items = p.parseItems(lexer.TokenRBrace)
	if !p.expect(lexer.TokenRBrace) {
		return nil
	}

	foreign.Span = position.Between(start, p.prev.Span)
	return foreign
}

// parseOther consumes the rest of the item extent as an opaque item.
func (p *Parser) parseOther(attrs []*Attribute, start position.Span) Item {
	other := &ItemOther{Attrs: attrs}

	for {
		switch {
		case p.currentTokenIs(lexer.TokenUnsafe), p.current.Literal == "async":
			p.nextToken()
			continue
		case p.currentTokenIs(lexer.TokenConst) && (p.peekTokenIs(lexer.TokenFn) || p.peekTokenIs(lexer.TokenUnsafe)):
			p.nextToken()
			continue
		case p.currentTokenIs(lexer.TokenExtern) && !p.peekTokenIs(lexer.TokenCrate):
			p.nextToken()
			if p.currentTokenIs(lexer.TokenString) {
				p.nextToken()
			}
			continue
		}
		break
	}

	if p.currentTokenIs(lexer.TokenEOF) {
		p.unexpected("item")
		return nil
	}

	other.Keyword = p.current.Literal
	if p.peekTokenIs(lexer.TokenIdentifier) {
		other.Name = p.peek.Literal
	}

	for !p.currentTokenIs(lexer.TokenEOF) {
		p.nextToken()
	}

	other.Span = position.Between(start, p.prev.Span)
	return other
}

// ====== Attributes ======

func (p *Parser) parseOuterAttributes() []*Attribute {
	var attrs []*Attribute
	for p.currentTokenIs(lexer.TokenHash) && !p.peekTokenIs(lexer.TokenExclamation) {
		attr := p.parseAttribute(false)
		if attr == nil {
			return nil
		}
		attrs = append(attrs, attr)
	}
	return attrs
}

func (p *Parser) parseInnerAttributes() []*Attribute {
	var attrs []*Attribute
	for p.currentTokenIs(lexer.TokenHash) && p.peekTokenIs(lexer.TokenExclamation) {
		attr := p.parseAttribute(true)
		if attr == nil {
			return nil
		}
		attrs = append(attrs, attr)
	}
	return attrs
}

func (p *Parser) parseAttribute(inner bool) *Attribute {
	start := p.current.Span
	p.nextToken() // #
	if inner {
		p.nextToken() // !
	}
	if !p.expect(lexer.TokenLBracket) {
		return nil
	}

	path := p.parsePath(pathModeAttribute)
	if path == nil {
		return nil
	}
	attr := &Attribute{Inner: inner, Path: path}

	switch p.current.Type {
	case lexer.TokenLParen:
		attr.HasArgs = true
		p.nextToken()
		for !p.currentTokenIs(lexer.TokenRParen) {
			arg := p.parseAttributeArg()
			if arg == nil {
				return nil
			}
			attr.Args = append(attr.Args, arg)
			if p.currentTokenIs(lexer.TokenComma) {
				p.nextToken()
			}
		}
		p.nextToken() // )
	case lexer.TokenAssign:
		p.nextToken()
		attr.HasValue = true
		attr.Value = valueText(p.collectUntil(lexer.TokenRBracket))
	}

	if !p.expect(lexer.TokenRBracket) {
		return nil
	}

	attr.Span = position.Between(start, p.prev.Span)
	return attr
}

func (p *Parser) parseAttributeArg() *AttributeArg {
	toks := p.collectUntil(lexer.TokenComma, lexer.TokenRParen)
	if len(toks) == 0 {
		p.unexpected("attribute argument")
		return nil
	}

	arg := &AttributeArg{Span: position.Between(toks[0].Span, toks[len(toks)-1].Span)}
	if eq := topLevelIndex(toks, lexer.TokenAssign); eq > 0 {
		arg.Name = joinTokens(toks[:eq])
		arg.Value = valueText(toks[eq+1:])
		arg.HasValue = true
	} else {
		arg.Name = joinTokens(toks)
	}
	return arg
}

// ====== Generics ======

// parseGenerics parses a declared parameter list <'a, T: Bound, const N: usize>.
func (p *Parser) parseGenerics() *Generics {
	start := p.current.Span
	p.nextToken() // <

	generics := &Generics{}
	for !p.currentTokenIs(lexer.TokenGt) {
		paramStart := p.current.Span
		var name string

		switch p.current.Type {
		case lexer.TokenLifetime, lexer.TokenIdentifier:
			name = p.current.Literal
			p.nextToken()
		case lexer.TokenConst:
			p.nextToken()
			ident := p.parseIdent()
			if ident == nil {
				return nil
			}
			name = "const " + ident.Value
		default:
			p.unexpected("generic parameter")
			return nil
		}

		if p.currentTokenIs(lexer.TokenColon) || p.currentTokenIs(lexer.TokenAssign) {
			p.skipGenericBound()
		}

		generics.Params = append(generics.Params, &GenericParam{
			Span: position.Between(paramStart, p.prev.Span),
			Name: name,
		})

		if p.currentTokenIs(lexer.TokenComma) {
			p.nextToken()
			continue
		}
		if !p.currentTokenIs(lexer.TokenGt) {
			p.unexpected("`,` or `>`")
			return nil
		}
	}
	p.nextToken() // >

	generics.Span = position.Between(start, p.prev.Span)
	return generics
}

// skipGenericBound skips ": Bound + Bound" or "= Default" up to the next
// parameter separator, honouring nested brackets.
func (p *Parser) skipGenericBound() {
	depth := 0
	for !p.currentTokenIs(lexer.TokenEOF) {
		switch p.current.Type {
		case lexer.TokenComma:
			if depth == 0 {
				return
			}
		case lexer.TokenGt:
			if depth == 0 {
				return
			}
			depth--
		case lexer.TokenLt, lexer.TokenLParen, lexer.TokenLBracket:
			depth++
		case lexer.TokenRParen, lexer.TokenRBracket:
			depth--
		}
		p.nextToken()
	}
}

func (p *Parser) skipWhere() {
	if !p.currentTokenIs(lexer.TokenWhere) {
		return
	}
	p.nextToken()
	p.collectUntil(lexer.TokenLBrace, lexer.TokenSemicolon)
}

// skipGroup consumes a balanced delimiter group starting at the current token.
func (p *Parser) skipGroup() {
	p.nextToken()
	p.collectUntil()
	p.nextToken()
}

// collectUntil consumes and returns tokens until one of stops is found at
// nesting depth zero, or an unmatched closing delimiter is reached.
func (p *Parser) collectUntil(stops ...lexer.TokenType) []lexer.Token {
	var toks []lexer.Token
	depth := 0

	for !p.currentTokenIs(lexer.TokenEOF) {
		if depth == 0 && isOneOf(p.current.Type, stops) {
			break
		}
		switch p.current.Type {
		case lexer.TokenLParen, lexer.TokenLBracket, lexer.TokenLBrace:
			depth++
		case lexer.TokenRParen, lexer.TokenRBracket, lexer.TokenRBrace:
			if depth == 0 {
				return toks
			}
			depth--
		}
		toks = append(toks, p.current)
		p.nextToken()
	}

	return toks
}

func isOneOf(tt lexer.TokenType, types []lexer.TokenType) bool {
	for _, t := range types {
		if t == tt {
			return true
		}
	}
	return false
}

func topLevelIndex(toks []lexer.Token, tt lexer.TokenType) int {
	depth := 0
	for i, tok := range toks {
		switch tok.Type {
		case lexer.TokenLParen, lexer.TokenLBracket, lexer.TokenLBrace:
			depth++
		case lexer.TokenRParen, lexer.TokenRBracket, lexer.TokenRBrace:
			depth--
		case tt:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// ====== Token text ======

func tokenText(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokenString:
		return `"` + tok.Literal + `"`
	case lexer.TokenChar:
		return "'" + tok.Literal + "'"
	}
	return tok.Literal
}

func isWord(tt lexer.TokenType) bool {
	return (tt >= lexer.TokenIdentifier && tt <= lexer.TokenWhere) || tt == lexer.TokenUnderscore
}

// joinTokens renders tokens back to compact source text.
func joinTokens(toks []lexer.Token) string {
	var sb strings.Builder
	for i, tok := range toks {
		if i > 0 {
			prev := toks[i-1]
			if (isWord(prev.Type) && isWord(tok.Type)) || prev.Type == lexer.TokenComma {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(tokenText(tok))
	}
	return sb.String()
}

// valueText renders an attribute value; a lone string literal is unquoted.
func valueText(toks []lexer.Token) string {
	if len(toks) == 1 && toks[0].Type == lexer.TokenString {
		return toks[0].Literal
	}
	return joinTokens(toks)
}
