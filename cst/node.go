package cst

// NodeKind identifies a CST node kind. A node is either a branch (ordered
// children) or a leaf (a single token); TokenKind distinguishes which leaf a
// given node wraps.
type NodeKind int

const (
	KindRoot NodeKind = iota
	KindValue
	KindObject
	KindEntry
	KindKey
	KindArray
	KindScalar
	KindAnnotations
	KindAnnotation
	KindAnnotationValue
	KindErrorNode
	KindToken // leaf wrapping a single lexer Token (incl. trivia)
)

func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "Root"
	case KindValue:
		return "Value"
	case KindObject:
		return "Object"
	case KindEntry:
		return "Entry"
	case KindKey:
		return "Key"
	case KindArray:
		return "Array"
	case KindScalar:
		return "Scalar"
	case KindAnnotations:
		return "Annotations"
	case KindAnnotation:
		return "Annotation"
	case KindAnnotationValue:
		return "AnnotationValue"
	case KindErrorNode:
		return "Error"
	case KindToken:
		return "Token"
	default:
		return "Unknown"
	}
}

// green is the immutable, offset-free shape of a CST subtree: a kind plus
// either a token (leaves) or an ordered list of child greens (branches).
// Two greens with identical shape are structurally interchangeable, which is
// what makes the split reusable across edits in a red/green tree; this
// implementation does not yet intern/share greens across parses, but keeps
// the shape-only green node so that invariant can be added without touching
// the public Node API.
type green struct {
	kind     NodeKind
	token    Token // valid when kind == KindToken
	children []*green
}

func (g *green) width() int {
	if g.kind == KindToken {
		return len(g.token.Text)
	}

	w := 0
	for _, c := range g.children {
		w += c.width()
	}

	return w
}

// Node is the red (offset-aware, parent-aware) overlay over a green tree.
// Node values are immutable once constructed and safe to share across
// goroutines; Children and Parent materialize lazily from the underlying
// green node.
type Node struct {
	g      *green
	parent *Node
	start  Position // absolute start position of this node in the source
	src    *string   // full source text, for Position/line/col computation
}

// newRoot wraps a green tree as the root Node, computing absolute positions
// from the zero position.
func newRoot(g *green, src string) *Node {
	return &Node{g: g, start: Position{}, src: &src}
}

// Kind returns the node's kind. For leaves wrapping trivia/value tokens this
// is KindToken; inspect TokenKind via Node.Token().Kind for the specific
// token kind.
func (n *Node) Kind() NodeKind { return n.g.kind }

// Token returns the wrapped token for a leaf node, or the zero Token for a
// branch.
func (n *Node) Token() Token {
	if n.g.kind != KindToken {
		return Token{}
	}

	return Token{Kind: n.g.token.Kind, Text: n.g.token.Text, Range: n.Range()}
}

// Text returns this node's verbatim source slice. Concatenating the Text of
// every leaf of a node in order reproduces that node's own source slice
// exactly — the CST's losslessness invariant.
func (n *Node) Text() string {
	return (*n.src)[n.start.Index : n.start.Index+n.g.width()]
}

// Range returns this node's absolute byte/line/column span.
func (n *Node) Range() Range {
	end := advancePosition(n.start, n.Text())
	return Range{Start: n.start, End: end}
}

// Parent returns the node's parent, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children materializes this node's children as red Node overlays, each with
// its own absolute start position computed by walking sibling widths.
func (n *Node) Children() []*Node {
	if len(n.g.children) == 0 {
		return nil
	}

	out := make([]*Node, 0, len(n.g.children))
	cursor := n.start

	for _, cg := range n.g.children {
		child := &Node{g: cg, parent: n, start: cursor, src: n.src}
		out = append(out, child)
		cursor = advancePosition(cursor, cg.sliceText(*n.src, cursor.Index))
	}

	return out
}

// sliceText returns the verbatim text this green subtree occupies, given the
// absolute byte offset at which it begins within src.
func (g *green) sliceText(src string, start int) string {
	return src[start : start+g.width()]
}

// Leaves returns every leaf (KindToken) node under n, in source order,
// including trivia. Concatenating their Text() reproduces n.Text() exactly.
func (n *Node) Leaves() []*Node {
	var out []*Node

	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.Kind() == KindToken {
			out = append(out, cur)
			return
		}

		for _, c := range cur.Children() {
			walk(c)
		}
	}
	walk(n)

	return out
}

// SignificantChildren returns the children of n excluding trivia leaves
// (whitespace, newlines, comments).
func (n *Node) SignificantChildren() []*Node {
	var out []*Node

	for _, c := range n.Children() {
		if c.Kind() == KindToken && c.g.token.Kind.IsTrivia() {
			continue
		}

		out = append(out, c)
	}

	return out
}

// advancePosition computes the Position reached after consuming s starting
// at pos, tracking line/column (column in UTF-8 code units) the same way the
// lexer does.
func advancePosition(pos Position, s string) Position {
	for _, r := range s {
		sz := runeLen(r)
		pos.Index += sz

		if r == '\n' {
			pos.Line++
			pos.Column = 0
		} else {
			pos.Column += sz
		}
	}

	return pos
}

func runeLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}
