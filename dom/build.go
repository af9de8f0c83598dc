package dom

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.jsona.dev/jsona/cst"
)

// Build walks a parsed CST and produces a typed DOM tree plus any
// semantic diagnostics discovered along the way (duplicate keys, number
// overflow). It never fails: a document with no value produces a nil Node
// and a MissingValue diagnostic; a document whose CST contains Error
// nodes still produces a best-effort DOM with placeholder nodes.
func Build(root *cst.Node) (Node, []cst.Diagnostic) {
	b := &builder{}

	val := findRootValue(root)
	if val == nil {
		b.diags = append(b.diags, cst.Diagnostic{
			Kind:    cst.KindMissingValue,
			Message: "document has no value",
			Range:   root.Range(),
		})

		return nil, b.diags
	}

	return b.buildValue(val), b.diags
}

// Parse is a convenience wrapper combining [cst.Parse] and [Build].
func Parse(text string) (Node, []cst.Diagnostic) {
	root, diags := cst.Parse(text)
	node, more := Build(root)

	return node, append(diags, more...)
}

func findRootValue(root *cst.Node) *cst.Node {
	for _, c := range root.SignificantChildren() {
		if c.Kind() == cst.KindValue {
			return c
		}
	}

	return nil
}

type builder struct {
	diags []cst.Diagnostic
}

func (b *builder) errorf(r cst.Range, kind cst.Kind, format string, args ...any) {
	b.diags = append(b.diags, cst.Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Range: r})
}

// buildValue builds the Node for a KindValue node: its own leading
// Annotations (if any) followed by the wrapped Scalar/Array/Object.
func (b *builder) buildValue(v *cst.Node) Node {
	children := v.SignificantChildren()

	var leading []Annotation

	idx := 0

	if len(children) > 0 && children[0].Kind() == cst.KindAnnotations {
		leading = b.buildAnnotations(children[0])
		idx = 1
	}

	if idx >= len(children) {
		// A Value with annotations and no core (an annotations-only value
		// such as `other: @ref("Thing")`): treat as a null placeholder.
		return Null{base{annotations: leading, cstRef: v, rng: v.Range()}}
	}

	return b.buildCore(v, children[idx], leading)
}

// buildCore builds the Node for a Scalar/Array/Object/Error core, given
// the enclosing node (used for the overall source range) and any
// already-collected leading annotations.
func (b *builder) buildCore(enclosing, core *cst.Node, leading []Annotation) Node {
	switch core.Kind() {
	case cst.KindScalar:
		return b.buildScalar(enclosing, core, leading)
	case cst.KindArray:
		return b.buildArray(enclosing, core, leading)
	case cst.KindObject:
		return b.buildObject(enclosing, core, leading)
	default:
		return Null{base{annotations: leading, cstRef: enclosing, rng: enclosing.Range()}}
	}
}

func (b *builder) buildScalar(enclosing, scalar *cst.Node, leading []Annotation) Node {
	leaves := scalar.SignificantChildren()
	if len(leaves) == 0 {
		return Null{base{annotations: leading, cstRef: enclosing, rng: enclosing.Range()}}
	}

	tok := leaves[0].Token()
	bs := base{annotations: leading, cstRef: enclosing, rng: enclosing.Range()}

	switch tok.Kind {
	case cst.TokNull:
		return Null{bs}
	case cst.TokTrue:
		return Bool{base: bs, Value: true}
	case cst.TokFalse:
		return Bool{base: bs, Value: false}
	case cst.TokInteger, cst.TokFloat:
		return Number{base: bs, Value: b.decodeNumber(tok)}
	case cst.TokString:
		text, quote := DecodeString(tok)
		return String{base: bs, Value: text, Quote: quote}
	default:
		return Null{bs}
	}
}

func (b *builder) buildArray(enclosing, arr *cst.Node, leading []Annotation) Node {
	var (
		internal []Annotation
		elems    []Node
	)

	for _, c := range arr.SignificantChildren() {
		switch c.Kind() {
		case cst.KindAnnotations:
			internal = append(internal, b.buildAnnotations(c)...)
		case cst.KindValue:
			elems = append(elems, b.buildValue(c))
		}
	}

	return Array{
		base:     base{annotations: append(leading, internal...), cstRef: enclosing, rng: enclosing.Range()},
		Elements: elems,
	}
}

func (b *builder) buildObject(enclosing, obj *cst.Node, leading []Annotation) Node {
	var (
		internal []Annotation
		entries  []Entry
		seen     = map[string]bool{}
	)

	for _, c := range obj.SignificantChildren() {
		switch c.Kind() {
		case cst.KindAnnotations:
			internal = append(internal, b.buildAnnotations(c)...)
		case cst.KindEntry:
			e := b.buildEntry(c)
			if seen[e.Key] {
				b.errorf(e.KeyRange, cst.KindDuplicateKey, "duplicate key %q", e.Key)
			}

			seen[e.Key] = true

			entries = append(entries, e)
		}
	}

	return Object{
		base:    base{annotations: append(leading, internal...), cstRef: enclosing, rng: enclosing.Range()},
		Entries: entries,
	}
}

func (b *builder) buildEntry(entry *cst.Node) Entry {
	var e Entry

	for _, c := range entry.SignificantChildren() {
		switch c.Kind() {
		case cst.KindKey:
			e.KeyRange = c.Range()

			leaves := c.SignificantChildren()
			if len(leaves) == 0 {
				continue
			}

			tok := leaves[0].Token()
			if tok.Kind == cst.TokString {
				e.Key, _ = DecodeString(tok)
				e.Quoted = true
			} else {
				e.Key = tok.Text
			}
		case cst.KindValue:
			e.Value = b.buildValue(c)
		}
	}

	if e.Value == nil {
		e.Value = Null{base{cstRef: entry, rng: entry.Range()}}
	}

	return e
}

// buildAnnotations builds the Annotation list for one Annotations branch,
// in source order.
func (b *builder) buildAnnotations(anns *cst.Node) []Annotation {
	var out []Annotation

	for _, c := range anns.SignificantChildren() {
		if c.Kind() != cst.KindAnnotation {
			continue
		}

		out = append(out, b.buildAnnotation(c))
	}

	return out
}

func (b *builder) buildAnnotation(anno *cst.Node) Annotation {
	var (
		name      string
		nameRange cst.Range
		value     Node
	)

	for _, c := range anno.SignificantChildren() {
		switch {
		case c.Kind() == cst.KindToken && c.Token().Kind == cst.TokAtName:
			nameRange = c.Range()
			name = strings.TrimPrefix(c.Token().Text, "@")
		case c.Kind() == cst.KindAnnotationValue:
			value = b.buildAnnotationValue(c)
		}
	}

	return Annotation{Name: name, Value: value, NameRange: nameRange}
}

// buildAnnotationValue builds the Node for an annotation's own value,
// which by grammar construction carries no annotations of its own.
func (b *builder) buildAnnotationValue(av *cst.Node) Node {
	for _, c := range av.SignificantChildren() {
		switch c.Kind() {
		case cst.KindScalar:
			return b.buildScalar(av, c, nil)
		case cst.KindArray:
			return b.buildArray(av, c, nil)
		case cst.KindObject:
			return b.buildObject(av, c, nil)
		}
	}

	return Null{base{cstRef: av, rng: av.Range()}}
}

// decodeNumber parses a numeric literal token into a best-effort
// NumericValue, reporting NumberOutOfRange without discarding a value.
func (b *builder) decodeNumber(tok cst.Token) NumericValue {
	numBase, isFloat := cst.NumBaseOf(tok.Text)
	clean := strings.ReplaceAll(tok.Text, "_", "")

	nv := NumericValue{Base: numBase, IsFloat: isFloat, Text: tok.Text}

	if isFloat {
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			nv.OutOfRange = true
			b.errorf(tok.Range, cst.KindNumberOutOfRange, "number %q out of range", tok.Text)
		}

		nv.Float = f
		nv.Int = int64(f)

		return nv
	}

	neg := strings.HasPrefix(clean, "-")
	digits := clean
	radix := 10

	switch numBase {
	case cst.NumBaseHex:
		digits, radix = clean[2:], 16
	case cst.NumBaseBin:
		digits, radix = clean[2:], 2
	case cst.NumBaseOct:
		digits, radix = clean[2:], 8
	default:
		if neg {
			digits = clean[1:]
		}
	}

	bi, ok := new(big.Int).SetString(digits, radix)
	if !ok {
		nv.OutOfRange = true
		b.errorf(tok.Range, cst.KindInvalidNumber, "malformed number %q", tok.Text)

		return nv
	}

	if neg {
		bi.Neg(bi)
	}

	if bi.IsInt64() {
		nv.Int = bi.Int64()
	} else {
		nv.OutOfRange = true
		nv.Int = truncateToInt64(bi)
		b.errorf(tok.Range, cst.KindNumberOutOfRange, "number %q out of range", tok.Text)
	}

	nv.Float = float64(nv.Int)

	return nv
}

// truncateToInt64 returns the low 64 bits of bi as a best-effort value
// when bi does not fit in an int64.
func truncateToInt64(bi *big.Int) int64 {
	mod := new(big.Int).Lsh(big.NewInt(1), 64)
	wrapped := new(big.Int).Mod(bi, mod)

	return int64(wrapped.Uint64())
}

// DecodeString decodes a string token's escapes, mirroring the lexer's
// own scanEscape rules exactly, and returns the decoded text plus the
// quote style that delimited it. Exported so the formatter can reuse it
// when re-quoting keys under FormatOptions.FormatKey.
func DecodeString(tok cst.Token) (string, cst.QuoteStyle) {
	text := tok.Text
	if len(text) < 2 {
		return "", cst.QuoteDouble
	}

	quoteByte := text[0]

	var quote cst.QuoteStyle

	switch quoteByte {
	case '\'':
		quote = cst.QuoteSingle
	case '`':
		quote = cst.QuoteBacktick
	default:
		quote = cst.QuoteDouble
	}

	body := text[1 : len(text)-1]

	var sb strings.Builder

	i := 0
	for i < len(body) {
		ch := body[i]
		if ch != '\\' {
			sb.WriteByte(ch)
			i++

			continue
		}

		i++
		if i >= len(body) {
			break
		}

		n, consumed := decodeEscapeBody(body[i:])
		sb.WriteString(n)
		i += consumed
	}

	return sb.String(), quote
}

// decodeEscapeBody decodes one escape sequence body (the bytes after the
// backslash) and returns its replacement text plus how many input bytes
// it consumed.
func decodeEscapeBody(s string) (string, int) {
	if len(s) == 0 {
		return "", 0
	}

	switch s[0] {
	case '0':
		return "\x00", 1
	case 'b':
		return "\b", 1
	case 'f':
		return "\f", 1
	case 'n':
		return "\n", 1
	case 'r':
		return "\r", 1
	case 't':
		return "\t", 1
	case 'v':
		return "\v", 1
	case '\'':
		return "'", 1
	case '"':
		return "\"", 1
	case '\\':
		return "\\", 1
	case 'x':
		n := 1
		for n < 3 && n < len(s) && isHex(s[n]) {
			n++
		}

		if n == 1 {
			return "x", 1
		}

		v, _ := strconv.ParseUint(s[1:n], 16, 8)

		return string(rune(v)), n
	case 'u':
		if len(s) > 1 && s[1] == '{' {
			end := strings.IndexByte(s[2:], '}')
			if end < 0 {
				return "u{", 2
			}

			hex := s[2 : 2+end]

			v, err := strconv.ParseUint(hex, 16, 32)
			if err != nil {
				return "", 2 + end + 1
			}

			return string(rune(v)), 2 + end + 1
		}

		n := 1
		for n < 5 && n < len(s) && isHex(s[n]) {
			n++
		}

		if n == 1 {
			return "u", 1
		}

		v, _ := strconv.ParseUint(s[1:n], 16, 32)

		return string(rune(v)), n
	default:
		r, size := decodeFirstRune(s)

		return string(r), size
	}
}

func isHex(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// decodeFirstRune decodes the first UTF-8 rune of s, falling back to a
// single byte for invalid encodings.
func decodeFirstRune(s string) (rune, int) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return rune(s[0]), 1
	}

	return r, size
}
