package format

import (
	"errors"
	"strings"

	"go.jsona.dev/jsona/cst"
	"go.jsona.dev/jsona/dom"
)

// ErrContainsErrors is returned by Format when the input CST contains an
// Error node and force is false.
var ErrContainsErrors = errors.New("format: input contains parse errors")

// Format renders root as canonicalized text under opts. If root contains
// any Error node, Format returns ErrContainsErrors unless force is true,
// in which case it does its best to reproduce the errored span verbatim.
func Format(root *cst.Node, opts Options, force bool) (string, error) {
	if !force && hasErrorNode(root) {
		return "", ErrContainsErrors
	}

	var sb strings.Builder

	if val := findRootValue(root); val != nil {
		emitValue(&sb, val, 0, opts)
	}

	out := sb.String()

	if opts.TrailingNewline {
		out = strings.TrimRight(out, "\n") + "\n"
	}

	return out, nil
}

func findRootValue(root *cst.Node) *cst.Node {
	for _, c := range root.SignificantChildren() {
		if c.Kind() == cst.KindValue {
			return c
		}
	}

	return nil
}

func hasErrorNode(n *cst.Node) bool {
	if n.Kind() == cst.KindErrorNode {
		return true
	}

	for _, c := range n.Children() {
		if hasErrorNode(c) {
			return true
		}
	}

	return false
}

// emitValue renders a KindValue node: its own leading annotations (if
// any), a single space, then the wrapped Scalar/Array/Object.
func emitValue(sb *strings.Builder, v *cst.Node, level int, opts Options) {
	children := v.SignificantChildren()
	idx := 0

	if len(children) > 0 && children[0].Kind() == cst.KindAnnotations {
		emitAnnotations(sb, children[0], level, opts)
		sb.WriteByte(' ')

		idx = 1
	}

	if idx < len(children) {
		emitCore(sb, children[idx], level, opts)
	}
}

func emitCore(sb *strings.Builder, core *cst.Node, level int, opts Options) {
	switch core.Kind() {
	case cst.KindScalar:
		sb.WriteString(core.Text())
	case cst.KindArray:
		emitContainer(sb, core, level, opts, "[", "]", false)
	case cst.KindObject:
		emitContainer(sb, core, level, opts, "{", "}", true)
	default:
		sb.WriteString(core.Text())
	}
}

// emitContainer renders an Array or Object node: its elements are split
// into clusters at each structural comma (a cluster groups a possible
// leading/trailing Annotations node with the Value/Entry it is glued to,
// with no comma between them, exactly as the CST already structures it),
// then clusters are joined with ", " (single-line) or one per line
// (multi-line), per the block-based reflow rule.
func emitContainer(sb *strings.Builder, container *cst.Node, level int, opts Options, open, close string, pad bool) {
	inner := container.SignificantChildren()

	if len(inner) > 0 && isDelimToken(inner[0]) {
		inner = inner[1:]
	}

	if len(inner) > 0 && isDelimToken(inner[len(inner)-1]) {
		inner = inner[:len(inner)-1]
	}

	clusters := splitClusters(inner)

	sb.WriteString(open)

	if len(clusters) == 0 {
		sb.WriteString(close)

		return
	}

	if !isMultiline(container) {
		if pad {
			sb.WriteByte(' ')
		}

		for i, cl := range clusters {
			if i > 0 {
				sb.WriteString(", ")
			}

			emitCluster(sb, cl, level, opts)
		}

		if pad {
			sb.WriteByte(' ')
		}

		sb.WriteString(close)

		return
	}

	indent := opts.indentFor()
	sb.WriteByte('\n')

	for i, cl := range clusters {
		sb.WriteString(strings.Repeat(indent, level+1))
		emitCluster(sb, cl, level+1, opts)

		if i < len(clusters)-1 || opts.TrailingComma {
			sb.WriteByte(',')
		}

		sb.WriteByte('\n')
	}

	sb.WriteString(strings.Repeat(indent, level))
	sb.WriteString(close)
}

// isDelimToken reports whether n is a leaf wrapping a structural
// delimiter token ('[', ']', '{', or '}').
func isDelimToken(n *cst.Node) bool {
	if n.Kind() != cst.KindToken {
		return false
	}

	switch n.Token().Kind {
	case cst.TokLBracket, cst.TokRBracket, cst.TokLBrace, cst.TokRBrace:
		return true
	default:
		return false
	}
}

// splitClusters groups nodes between structural commas, discarding empty
// groups produced by a trailing comma immediately before the close
// delimiter.
func splitClusters(nodes []*cst.Node) [][]*cst.Node {
	var (
		out     [][]*cst.Node
		current []*cst.Node
	)

	for _, n := range nodes {
		if n.Kind() == cst.KindToken && n.Token().Kind == cst.TokComma {
			if len(current) > 0 {
				out = append(out, current)
			}

			current = nil

			continue
		}

		current = append(current, n)
	}

	if len(current) > 0 {
		out = append(out, current)
	}

	return out
}

// emitCluster renders the nodes of one cluster joined by a single space:
// a container-level Annotations group glued to the Value/Entry that
// follows it with no comma between them, or a lone Value/Entry/Annotations
// group.
func emitCluster(sb *strings.Builder, cluster []*cst.Node, level int, opts Options) {
	for i, n := range cluster {
		if i > 0 {
			sb.WriteByte(' ')
		}

		switch n.Kind() {
		case cst.KindAnnotations:
			emitAnnotations(sb, n, level, opts)
		case cst.KindValue:
			emitValue(sb, n, level, opts)
		case cst.KindEntry:
			emitEntry(sb, n, level, opts)
		default:
			sb.WriteString(n.Text())
		}
	}
}

func emitEntry(sb *strings.Builder, entry *cst.Node, level int, opts Options) {
	for _, c := range entry.SignificantChildren() {
		switch c.Kind() {
		case cst.KindKey:
			emitKey(sb, c, opts)
			sb.WriteString(": ")
		case cst.KindValue:
			emitValue(sb, c, level, opts)
		}
	}
}

func emitKey(sb *strings.Builder, key *cst.Node, opts Options) {
	leaves := key.SignificantChildren()
	if len(leaves) == 0 {
		return
	}

	tok := leaves[0].Token()

	if !opts.FormatKey || tok.Kind != cst.TokString {
		sb.WriteString(tok.Text)

		return
	}

	text, _ := dom.DecodeString(tok)

	if isIdentifier(text) {
		sb.WriteString(text)

		return
	}

	sb.WriteString(quoteBest(text))
}

// emitAnnotations renders one Annotations group: each Annotation joined
// by a single space, in source order.
func emitAnnotations(sb *strings.Builder, anns *cst.Node, level int, opts Options) {
	first := true

	for _, c := range anns.SignificantChildren() {
		if c.Kind() != cst.KindAnnotation {
			continue
		}

		if !first {
			sb.WriteByte(' ')
		}

		first = false
		emitAnnotation(sb, c, level, opts)
	}
}

func emitAnnotation(sb *strings.Builder, anno *cst.Node, level int, opts Options) {
	for _, c := range anno.SignificantChildren() {
		switch {
		case c.Kind() == cst.KindToken && c.Token().Kind == cst.TokAtName:
			sb.WriteString(c.Token().Text)
		case c.Kind() == cst.KindAnnotationValue:
			sb.WriteByte('(')
			emitAnnotationValue(sb, c, level, opts)
			sb.WriteByte(')')
		}
	}
}

func emitAnnotationValue(sb *strings.Builder, av *cst.Node, level int, opts Options) {
	for _, c := range av.SignificantChildren() {
		switch c.Kind() {
		case cst.KindScalar, cst.KindArray, cst.KindObject:
			emitCore(sb, c, level, opts)
		default:
			sb.WriteString(c.Text())
		}
	}
}

// isMultiline reports whether container's original span contains a
// newline or a line comment anywhere between its delimiters, including
// within nested children.
func isMultiline(container *cst.Node) bool {
	for _, leaf := range container.Leaves() {
		switch leaf.Token().Kind {
		case cst.TokNewline, cst.TokLineComment:
			return true
		}
	}

	return false
}

// isIdentifier reports whether s matches the bare-key grammar
// `[A-Za-z_$][A-Za-z_$0-9]*`.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
		isDigit := r >= '0' && r <= '9'

		switch {
		case i == 0 && !isAlpha:
			return false
		case i > 0 && !isAlpha && !isDigit:
			return false
		}
	}

	return true
}

// quoteBest re-quotes s with whichever of "/'/` does not already appear
// in it, preferring double quotes; falls back to double quotes with
// backslash-escaping if all three are present.
func quoteBest(s string) string {
	q := byte('"')

	switch {
	case !strings.ContainsRune(s, '"'):
		q = '"'
	case !strings.ContainsRune(s, '\''):
		q = '\''
	case !strings.ContainsRune(s, '`'):
		q = '`'
	}

	escaped := strings.ReplaceAll(s, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, string(q), "\\"+string(q))

	return string(q) + escaped + string(q)
}
