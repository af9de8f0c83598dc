package cst

import "fmt"

// pend is a mutable, in-progress tree node used only during building. The
// builder needs to mutate a container's trailing-annotation list after it
// has already "finished" parsing earlier siblings (annotations can appear
// after the value they modify), so construction works against this mutable
// shape and freezes to an immutable green tree only once a subtree is
// known to be complete.
type pend struct {
	kind     NodeKind
	token    Token
	children []*pend
}

func leafPend(tok Token) *pend {
	return &pend{kind: KindToken, token: tok}
}

func branchPend(kind NodeKind, children ...*pend) *pend {
	return &pend{kind: kind, children: children}
}

func (p *pend) append(children ...*pend) {
	p.children = append(p.children, children...)
}

func freeze(p *pend) *green {
	if p.kind == KindToken {
		return &green{kind: KindToken, token: p.token}
	}

	children := make([]*green, 0, len(p.children))
	for _, c := range p.children {
		children = append(children, freeze(c))
	}

	return &green{kind: p.kind, children: children}
}

// builder consumes a pre-lexed token stream and produces a lossless CST. It
// never fails outright: unexpected input becomes an Error node plus a
// diagnostic, and parsing resumes at the next synchronization point.
type builder struct {
	toks  []Token
	idx   int
	diags []Diagnostic
}

func newBuilder(src string) *builder {
	lex := newLexer(src)

	var toks []Token
	for {
		t := lex.Next()
		toks = append(toks, t)

		if t.Kind == TokEOF {
			break
		}
	}

	return &builder{toks: toks}
}

func (b *builder) cur() Token { return b.toks[b.idx] }

func (b *builder) advance() Token {
	t := b.toks[b.idx]
	if b.idx < len(b.toks)-1 {
		b.idx++
	}

	return t
}

func (b *builder) errorf(r Range, kind Kind, format string, args ...any) {
	b.diags = append(b.diags, Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Range: r})
}

func (b *builder) atEOF() bool { return b.cur().Kind == TokEOF }

func (b *builder) isTrivia() bool { return b.cur().Kind.IsTrivia() }

// drainTrivia consumes and returns a run of consecutive trivia tokens as
// leaf pend nodes, preserving source order.
func (b *builder) drainTrivia() []*pend {
	var out []*pend
	for !b.atEOF() && b.isTrivia() {
		out = append(out, leafPend(b.advance()))
	}

	return out
}

// Parse builds a lossless CST from text and returns it alongside any
// accumulated diagnostics. Parsing always succeeds structurally: malformed
// input produces Error nodes, never a nil tree.
func Parse(text string) (*Node, []Diagnostic) {
	b := newBuilder(text)
	root := b.parseRoot()

	return newRoot(freeze(root), text), b.diags
}

func (b *builder) parseRoot() *pend {
	root := branchPend(KindRoot)
	root.append(b.drainTrivia()...)

	if !b.atEOF() {
		val := b.parseValue(nil)
		root.append(val)
		root.append(b.drainTrivia()...)
	}

	// Anything left before EOF that isn't trivia is unexpected; consume it
	// into Error nodes so the builder always terminates.
	for !b.atEOF() {
		tok := b.advance()
		b.errorf(tok.Range, KindUnexpectedToken, "unexpected %s after root value", tok.Kind)
		root.append(branchPend(KindErrorNode, leafPend(tok)))
		root.append(b.drainTrivia()...)
	}

	return root
}

// isValueStart reports whether kind can begin a Scalar, Array, or Object.
func isValueStart(kind TokenKind) bool {
	switch kind {
	case TokNull, TokTrue, TokFalse, TokInteger, TokFloat, TokString, TokLBracket, TokLBrace:
		return true
	default:
		return false
	}
}

// parseValue parses `Annotation* (Scalar | Array | Object)`. leading is a
// set of already-consumed leading-annotation pend nodes (from a container's
// per-element dispatch); nil when called from the root or from an entry's
// value position, in which case parseValue consumes its own leading
// annotation run first.
func (b *builder) parseValue(leading []*pend) *pend {
	val := branchPend(KindValue)

	ownRun := leading == nil
	if ownRun {
		leading, _ = b.parseAnnotationRun()
	}

	if len(leading) > 0 {
		val.append(branchPend(KindAnnotations, leading...))
	}

	val.append(b.drainTrivia()...)

	switch {
	case isScalarStart(b.cur().Kind):
		val.append(branchPend(KindScalar, leafPend(b.advance())))
	case b.cur().Kind == TokLBracket:
		val.append(b.parseArray())
	case b.cur().Kind == TokLBrace:
		val.append(b.parseObject())
	default:
		// An annotation run with nothing after it but a ',' or the
		// parent's closing delimiter is an annotations-only value.
		if ownRun && len(leading) > 0 {
			switch b.cur().Kind {
			case TokComma, TokRBrace, TokRBracket:
				return val
			}
		}

		tok := b.cur()
		kind := KindUnexpectedToken

		// The lexer turns every malformed lexeme into one Error token;
		// its first byte tells which lexing kind to report.
		if tok.Kind == TokError && tok.Text != "" {
			switch c := tok.Text[0]; {
			case c == '"' || c == '\'' || c == '`':
				kind = KindUnterminatedString
			case c == '-' || c == '.' || isDigit(c):
				kind = KindInvalidNumber
			default:
				kind = KindUnexpectedChar
			}
		}

		b.errorf(tok.Range, kind, "expected a value, found %s", tok.Kind)
		val.append(branchPend(KindErrorNode))
		b.synchronize()
	}

	return val
}

func isScalarStart(k TokenKind) bool {
	switch k {
	case TokNull, TokTrue, TokFalse, TokInteger, TokFloat, TokString:
		return true
	default:
		return false
	}
}

// synchronize advances past tokens until a comma, a closing delimiter, or
// EOF, without consuming the synchronization token itself.
func (b *builder) synchronize() {
	for !b.atEOF() {
		switch b.cur().Kind {
		case TokComma, TokRBracket, TokRBrace, TokRParen:
			return
		}

		b.advance()
	}
}

// parseAnnotationRun parses zero or more consecutive `@Ident ('(' Value
// ')')?` annotations (trivia between them is absorbed into each
// Annotation's own children so it round-trips). Returns the parsed
// annotation pend nodes and whether any were present.
func (b *builder) parseAnnotationRun() ([]*pend, bool) {
	var out []*pend

	for {
		lead := b.peekTriviaRun()
		idx := b.idx + len(lead)

		if idx >= len(b.toks) || b.toks[idx].Kind != TokAtName {
			break
		}

		out = append(out, b.parseOneAnnotation())
	}

	return out, len(out) > 0
}

// peekTriviaRun returns the trivia tokens starting at the current position
// without consuming them.
func (b *builder) peekTriviaRun() []Token {
	var out []Token

	for i := b.idx; i < len(b.toks) && b.toks[i].Kind.IsTrivia(); i++ {
		out = append(out, b.toks[i])
	}

	return out
}

func (b *builder) parseOneAnnotation() *pend {
	anno := branchPend(KindAnnotation)
	anno.append(b.drainTrivia()...)
	anno.append(leafPend(b.advance())) // '@Ident'
	anno.append(b.drainTrivia()...)

	if b.cur().Kind == TokLParen {
		anno.append(leafPend(b.advance()))
		anno.append(b.drainTrivia()...)
		anno.append(b.parseAnnotationValue())
		anno.append(b.drainTrivia()...)

		if b.cur().Kind == TokRParen {
			anno.append(leafPend(b.advance()))
		} else {
			tok := b.cur()
			b.errorf(tok.Range, KindMissingDelimiter, "expected ')' to close annotation value")
		}
	}

	return anno
}

// parseAnnotationValue parses a value that may not itself carry
// annotations. Any '@' encountered here is rejected with a diagnostic and
// skipped.
func (b *builder) parseAnnotationValue() *pend {
	for b.cur().Kind == TokAtName {
		tok := b.advance()
		b.errorf(tok.Range, KindAnnotationInsideAnnotation, "annotation values cannot carry annotations")
		b.drainTrivia()
	}

	av := branchPend(KindAnnotationValue)

	switch {
	case isScalarStart(b.cur().Kind):
		av.append(branchPend(KindScalar, leafPend(b.advance())))
	case b.cur().Kind == TokLBracket:
		av.append(b.parseArray())
	case b.cur().Kind == TokLBrace:
		av.append(b.parseObject())
	default:
		tok := b.cur()
		b.errorf(tok.Range, KindUnexpectedToken, "expected an annotation value, found %s", tok.Kind)
		av.append(branchPend(KindErrorNode))
	}

	return av
}

// parseArray parses '[' (Annotation* (Value (',' Value)* ','?)? Annotation*)? ']'.
func (b *builder) parseArray() *pend {
	arr := branchPend(KindArray)
	arr.append(leafPend(b.advance())) // '['
	arr.append(b.drainTrivia()...)

	b.parseContainerBody(arr, TokRBracket, false)

	if b.cur().Kind == TokRBracket {
		arr.append(leafPend(b.advance()))
	} else {
		tok := b.cur()
		b.errorf(tok.Range, KindMissingDelimiter, "expected ']' to close array")
	}

	return arr
}

// parseObject parses '{' (Annotation* (Entry (',' Entry)* ','?)? Annotation*)? '}'.
func (b *builder) parseObject() *pend {
	obj := branchPend(KindObject)
	obj.append(leafPend(b.advance())) // '{'
	obj.append(b.drainTrivia()...)

	b.parseContainerBody(obj, TokRBrace, true)

	if b.cur().Kind == TokRBrace {
		obj.append(leafPend(b.advance()))
	} else {
		tok := b.cur()
		b.errorf(tok.Range, KindMissingDelimiter, "expected '}' to close object")
	}

	return obj
}

// parseContainerBody implements the shared Array/Object element-list
// grammar and the annotation-attachment rules: an annotation run seen
// before the first element attaches to the container; a run immediately
// followed by the next element attaches to that element as its leading
// annotations; a run NOT followed by an element (i.e. the next
// significant token is a comma or the closing delimiter) attaches to the
// container itself, appended in source order.
func (b *builder) parseContainerBody(container *pend, closeKind TokenKind, isObject bool) {
	first := true

	for {
		annos, hadAnnos := b.parseAnnotationRun()
		container.append(b.drainTrivia()...)

		var nextIsElement bool
		if isObject {
			nextIsElement = isKeyStart(b.cur().Kind)
		} else {
			nextIsElement = isValueStart(b.cur().Kind)
		}

		if hadAnnos && (first || !nextIsElement) {
			container.append(branchPend(KindAnnotations, annos...))
			container.append(b.drainTrivia()...)
			annos = nil
		}

		if b.cur().Kind == closeKind || b.atEOF() {
			if len(annos) > 0 {
				container.append(branchPend(KindAnnotations, annos...))
			}

			return
		}

		first = false

		var elem *pend
		if isObject {
			elem = b.parseEntry(annos)
		} else {
			elem = b.parseValue(annos)
		}

		container.append(elem)
		container.append(b.drainTrivia()...)

		if b.cur().Kind == TokComma {
			container.append(leafPend(b.advance()))
			container.append(b.drainTrivia()...)

			continue
		}

		if b.cur().Kind == closeKind || b.atEOF() {
			continue
		}

		tok := b.cur()
		b.errorf(tok.Range, KindUnexpectedToken, "expected ',' or closing delimiter, found %s", tok.Kind)
		container.append(branchPend(KindErrorNode, leafPend(tok)))
		b.advance()
		container.append(b.drainTrivia()...)
	}
}

// parseEntry parses `Key ':' Value`. leading carries any annotations
// already consumed for this element slot by parseContainerBody; JSONA's
// grammar places a key's own leading annotations on its value, not the
// key, so they are forwarded into parseValue.
func (b *builder) parseEntry(leading []*pend) *pend {
	entry := branchPend(KindEntry)

	if !isKeyStart(b.cur().Kind) {
		tok := b.cur()
		b.errorf(tok.Range, KindUnexpectedToken, "expected an object key, found %s", tok.Kind)
		entry.append(branchPend(KindErrorNode))
		b.synchronize()

		return entry
	}

	entry.append(branchPend(KindKey, leafPend(b.advance())))
	entry.append(b.drainTrivia()...)

	if b.cur().Kind == TokColon {
		entry.append(leafPend(b.advance()))
		entry.append(b.drainTrivia()...)
	} else {
		tok := b.cur()
		b.errorf(tok.Range, KindMissingDelimiter, "expected ':' after object key")
	}

	entry.append(b.parseValue(leading))

	return entry
}

func isKeyStart(k TokenKind) bool {
	switch k {
	case TokIdent, TokString, TokTrue, TokFalse, TokNull:
		return true
	default:
		return false
	}
}
