package parser

import (
	"github.com/qtbridge/bridgegen/internal/lexer"
	"github.com/qtbridge/bridgegen/internal/position"
)

type pathMode int

const (
	// pathModeType allows generic and parenthesized arguments on segments.
	pathModeType pathMode = iota
	// pathModeAttribute accepts plain a::b paths only.
	pathModeAttribute
)

// parseType parses a type expression
func (p *Parser) parseType() Type {
	start := p.current.Span

	switch p.current.Type {
	case lexer.TokenLParen:
		return p.parseTupleOrParen()
	case lexer.TokenAmpersand:
		p.nextToken()
		return p.parseReferenceRest(start)
	case lexer.TokenOperator:
		if p.current.Literal == "&&" {
			// &&T lexes as one token but is a reference to a reference.
			p.nextToken()
			innerStart := start
			innerStart.Start.Column++
			innerStart.Start.Offset++
			inner := p.parseReferenceRest(innerStart)
			if inner == nil {
				return nil
			}
			return &ReferenceType{Span: position.Between(start, p.prev.Span), Elem: inner}
		}
	case lexer.TokenStar:
		return p.parsePointer()
	case lexer.TokenLBracket:
		return p.parseSliceOrArray()
	case lexer.TokenExclamation:
		p.nextToken()
		return &NeverType{Span: start}
	case lexer.TokenUnderscore:
		p.nextToken()
		return &InferType{Span: start}
	case lexer.TokenFn, lexer.TokenUnsafe, lexer.TokenExtern:
		return p.parseFnPointer()
	case lexer.TokenFor:
		// for<'a> fn(&'a T)
		p.nextToken()
		if !p.currentTokenIs(lexer.TokenLt) || p.parseGenerics() == nil {
			p.unexpected("`<`")
			return nil
		}
		return p.parseType()
	case lexer.TokenDyn, lexer.TokenImpl:
		return p.parseTraitObject()
	case lexer.TokenLt:
		return p.parseQualifiedPath()
	case lexer.TokenIdentifier, lexer.TokenSelfType, lexer.TokenSelfValue,
		lexer.TokenSuper, lexer.TokenCrate, lexer.TokenDoubleColon:
		path := p.parsePath(pathModeType)
		if path == nil {
			return nil
		}
		if p.currentTokenIs(lexer.TokenExclamation) {
			p.addError(p.current.Span, "macro invocations are not supported in type position")
			return nil
		}
		return &PathType{Span: path.Span, Path: path}
	}

	p.unexpected("type")
	return nil
}

// parseTupleOrParen distinguishes (T) from (T,): only the latter is a tuple.
func (p *Parser) parseTupleOrParen() Type {
	start := p.current.Span
	p.nextToken() // (

	var elems []Type
	trailing := false

	for !p.currentTokenIs(lexer.TokenRParen) {
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		elems = append(elems, elem)
		trailing = false

		if p.currentTokenIs(lexer.TokenComma) {
			trailing = true
			p.nextToken()
			continue
		}
		if !p.currentTokenIs(lexer.TokenRParen) {
			p.unexpected("`,` or `)`")
			return nil
		}
	}
	p.nextToken() // )

	span := position.Between(start, p.prev.Span)
	if len(elems) == 1 && !trailing {
		return &ParenType{Span: span, Elem: elems[0]}
	}
	return &TupleType{Span: span, Elems: elems, TrailingComma: trailing}
}

func (p *Parser) parseReferenceRest(start position.Span) Type {
	ref := &ReferenceType{}

	if p.currentTokenIs(lexer.TokenLifetime) {
		ref.Lifetime = p.current.Literal
		p.nextToken()
	}
	if p.currentTokenIs(lexer.TokenMut) {
		ref.Mutable = true
		p.nextToken()
	}

	if ref.Elem = p.parseType(); ref.Elem == nil {
		return nil
	}
	ref.Span = position.Between(start, p.prev.Span)
	return ref
}

func (p *Parser) parsePointer() Type {
	start := p.current.Span
	p.nextToken() // *

	ptr := &PointerType{}
	switch p.current.Type {
	case lexer.TokenConst:
	case lexer.TokenMut:
		ptr.Mutable = true
	default:
		p.unexpected("`const` or `mut`")
		return nil
	}
	p.nextToken()

	if ptr.Elem = p.parseType(); ptr.Elem == nil {
		return nil
	}
	ptr.Span = position.Between(start, p.prev.Span)
	return ptr
}

func (p *Parser) parseSliceOrArray() Type {
	start := p.current.Span
	p.nextToken() // [

	elem := p.parseType()
	if elem == nil {
		return nil
	}

	if p.currentTokenIs(lexer.TokenSemicolon) {
		p.nextToken()
		length := joinTokens(p.collectUntil(lexer.TokenRBracket))
		if !p.expect(lexer.TokenRBracket) {
			return nil
		}
		return &ArrayType{Span: position.Between(start, p.prev.Span), Elem: elem, Len: length}
	}

	if !p.expect(lexer.TokenRBracket) {
		return nil
	}
	return &SliceType{Span: position.Between(start, p.prev.Span), Elem: elem}
}

func (p *Parser) parseFnPointer() Type {
	start := p.current.Span
	fn := &FnPointerType{}

	if p.currentTokenIs(lexer.TokenUnsafe) {
		fn.Unsafe = true
		p.nextToken()
	}
	if p.currentTokenIs(lexer.TokenExtern) {
		p.nextToken()
		fn.ABI = "C"
		if p.currentTokenIs(lexer.TokenString) {
			fn.ABI = p.current.Literal
			p.nextToken()
		}
	}
	if !p.expect(lexer.TokenFn) || !p.expect(lexer.TokenLParen) {
		return nil
	}

	for !p.currentTokenIs(lexer.TokenRParen) {
		// Named parameters are allowed: fn(count: i32)
		if (p.currentTokenIs(lexer.TokenIdentifier) || p.currentTokenIs(lexer.TokenUnderscore)) &&
			p.peekTokenIs(lexer.TokenColon) {
			p.nextToken()
			p.nextToken()
		}

		input := p.parseType()
		if input == nil {
			return nil
		}
		fn.Inputs = append(fn.Inputs, input)

		if p.currentTokenIs(lexer.TokenComma) {
			p.nextToken()
			continue
		}
		if !p.currentTokenIs(lexer.TokenRParen) {
			p.unexpected("`,` or `)`")
			return nil
		}
	}
	p.nextToken() // )

	if p.currentTokenIs(lexer.TokenArrow) {
		p.nextToken()
		if fn.Output = p.parseType(); fn.Output == nil {
			return nil
		}
	}

	fn.Span = position.Between(start, p.prev.Span)
	return fn
}

func (p *Parser) parseTraitObject() Type {
	start := p.current.Span
	obj := &TraitObjectType{Impl: p.currentTokenIs(lexer.TokenImpl)}
	p.nextToken()

	for {
		bound, ok := p.parseBound()
		if !ok {
			return nil
		}
		obj.Bounds = append(obj.Bounds, bound)

		if !p.currentTokenIs(lexer.TokenPlus) {
			break
		}
		p.nextToken()
	}

	obj.Span = position.Between(start, p.prev.Span)
	return obj
}

// parseBound parses one trait bound: 'a, ?Sized or a trait path.
func (p *Parser) parseBound() (string, bool) {
	switch p.current.Type {
	case lexer.TokenLifetime:
		bound := p.current.Literal
		p.nextToken()
		return bound, true
	case lexer.TokenQuestion:
		p.nextToken()
		path := p.parsePath(pathModeType)
		if path == nil {
			return "", false
		}
		return "?" + path.String(), true
	}

	path := p.parsePath(pathModeType)
	if path == nil {
		return "", false
	}
	return path.String(), true
}

// parseQualifiedPath parses <T as Trait>::Name
func (p *Parser) parseQualifiedPath() Type {
	start := p.current.Span
	p.nextToken() // <

	qself := &QSelf{}
	if qself.Type = p.parseType(); qself.Type == nil {
		return nil
	}
	if p.currentTokenIs(lexer.TokenAs) {
		p.nextToken()
		if qself.Trait = p.parsePath(pathModeType); qself.Trait == nil {
			return nil
		}
	}
	if !p.expect(lexer.TokenGt) {
		return nil
	}

	rest := &Path{Span: p.prev.Span}
	if p.currentTokenIs(lexer.TokenDoubleColon) {
		p.nextToken()
		if rest = p.parsePath(pathModeType); rest == nil {
			return nil
		}
	}

	return &PathType{Span: position.Between(start, p.prev.Span), QSelf: qself, Path: rest}
}

func isPathSegmentStart(tt lexer.TokenType) bool {
	switch tt {
	case lexer.TokenIdentifier, lexer.TokenSelfType, lexer.TokenSelfValue,
		lexer.TokenSuper, lexer.TokenCrate:
		return true
	}
	return false
}

// parsePath parses a::b::C<Args>
func (p *Parser) parsePath(mode pathMode) *Path {
	start := p.current.Span
	path := &Path{}

	if p.currentTokenIs(lexer.TokenDoubleColon) {
		path.Leading = true
		p.nextToken()
	}

	for {
		seg := p.parsePathSegment(mode)
		if seg == nil {
			return nil
		}
		path.Segments = append(path.Segments, seg)

		if p.currentTokenIs(lexer.TokenDoubleColon) && isPathSegmentStart(p.peek.Type) {
			p.nextToken()
			continue
		}
		break
	}

	path.Span = position.Between(start, p.prev.Span)
	return path
}

func (p *Parser) parsePathSegment(mode pathMode) *PathSegment {
	if !isPathSegmentStart(p.current.Type) {
		p.unexpected("path segment")
		return nil
	}

	start := p.current.Span
	seg := &PathSegment{Ident: &Ident{Span: start, Value: p.current.Literal}}
	p.nextToken()

	if mode == pathModeType {
		switch {
		case p.currentTokenIs(lexer.TokenLt):
			if seg.Args = p.parseGenericArgs(); seg.Args == nil {
				return nil
			}
		case p.currentTokenIs(lexer.TokenDoubleColon) && p.peekTokenIs(lexer.TokenLt):
			p.nextToken()
			if seg.Args = p.parseGenericArgs(); seg.Args == nil {
				return nil
			}
			seg.Args.Turbofish = true
		case p.currentTokenIs(lexer.TokenLParen):
			if seg.Parenthesized = p.parseParenthesizedArgs(); seg.Parenthesized == nil {
				return nil
			}
		}
	}

	seg.Span = position.Between(start, p.prev.Span)
	return seg
}

func (p *Parser) parseParenthesizedArgs() *ParenthesizedArgs {
	start := p.current.Span
	p.nextToken() // (

	args := &ParenthesizedArgs{}
	for !p.currentTokenIs(lexer.TokenRParen) {
		input := p.parseType()
		if input == nil {
			return nil
		}
		args.Inputs = append(args.Inputs, input)

		if p.currentTokenIs(lexer.TokenComma) {
			p.nextToken()
			continue
		}
		if !p.currentTokenIs(lexer.TokenRParen) {
			p.unexpected("`,` or `)`")
			return nil
		}
	}
	p.nextToken() // )

	if p.currentTokenIs(lexer.TokenArrow) {
		p.nextToken()
		if args.Output = p.parseType(); args.Output == nil {
			return nil
		}
	}

	args.Span = position.Between(start, p.prev.Span)
	return args
}

// parseGenericArgs parses <A, B, Name = C>. An empty list <> is allowed.
func (p *Parser) parseGenericArgs() *GenericArgs {
	start := p.current.Span
	p.nextToken() // <

	args := &GenericArgs{}
	for !p.currentTokenIs(lexer.TokenGt) {
		arg := p.parseGenericArg()
		if arg == nil {
			return nil
		}
		args.Args = append(args.Args, arg)

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

	args.Span = position.Between(start, p.prev.Span)
	return args
}

func (p *Parser) parseGenericArg() GenericArgument {
	start := p.current.Span

	switch p.current.Type {
	case lexer.TokenLifetime:
		arg := &LifetimeArgument{Span: start, Name: p.current.Literal}
		p.nextToken()
		return arg

	case lexer.TokenIdentifier:
		switch p.peek.Type {
		case lexer.TokenAssign:
			name := &Ident{Span: start, Value: p.current.Literal}
			p.nextToken()
			p.nextToken() // =
			typ := p.parseType()
			if typ == nil {
				return nil
			}
			return &AssocTypeBinding{Span: position.Between(start, p.prev.Span), Name: name, Type: typ}

		case lexer.TokenColon:
			name := &Ident{Span: start, Value: p.current.Literal}
			p.nextToken()
			p.nextToken() // :
			constraint := &ConstraintArgument{Name: name}
			for {
				bound, ok := p.parseBound()
				if !ok {
					return nil
				}
				constraint.Bounds = append(constraint.Bounds, bound)
				if !p.currentTokenIs(lexer.TokenPlus) {
					break
				}
				p.nextToken()
			}
			constraint.Span = position.Between(start, p.prev.Span)
			return constraint
		}

	case lexer.TokenInteger, lexer.TokenFloat, lexer.TokenString, lexer.TokenChar, lexer.TokenBool:
		arg := &ConstArgument{Span: start, Value: tokenText(p.current)}
		p.nextToken()
		return arg

	case lexer.TokenLBrace:
		p.nextToken()
		inner := joinTokens(p.collectUntil())
		if !p.expect(lexer.TokenRBrace) {
			return nil
		}
		return &ConstArgument{Span: position.Between(start, p.prev.Span), Value: "{" + inner + "}"}

	case lexer.TokenOperator:
		if p.current.Literal == "-" && (p.peekTokenIs(lexer.TokenInteger) || p.peekTokenIs(lexer.TokenFloat)) {
			p.nextToken()
			arg := &ConstArgument{Span: position.Between(start, p.current.Span), Value: "-" + p.current.Literal}
			p.nextToken()
			return arg
		}
	}

	typ := p.parseType()
	if typ == nil {
		return nil
	}
	return &TypeArgument{Type: typ}
}
