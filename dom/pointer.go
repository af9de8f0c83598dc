package dom

import (
	"strconv"
	"strings"
)

// Pointer is a parsed RFC-6901-style JSON Pointer (`/a/0/b`).
type Pointer struct {
	segments []string
}

// ParsePointer parses a pointer string, unescaping `~1` to `/` and `~0`
// to `~` per RFC 6901. The empty string and "/" both parse to the root
// pointer.
func ParsePointer(s string) Pointer {
	if s == "" || s == "/" {
		return Pointer{}
	}

	s = strings.TrimPrefix(s, "/")

	parts := strings.Split(s, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		p = strings.ReplaceAll(p, "~0", "~")
		parts[i] = p
	}

	return Pointer{segments: parts}
}

// Segments returns the pointer's unescaped path segments, in order. Exposed
// so collaborators outside this package (e.g. the schema validator's Query)
// can walk a pointer through their own tree shape instead of a DOM Node.
func (p Pointer) Segments() []string {
	return p.segments
}

// String renders the pointer back to its `/a/0/b` textual form.
func (p Pointer) String() string {
	if len(p.segments) == 0 {
		return ""
	}

	escaped := make([]string, len(p.segments))

	for i, s := range p.segments {
		s = strings.ReplaceAll(s, "~", "~0")
		s = strings.ReplaceAll(s, "/", "~1")
		escaped[i] = s
	}

	return "/" + strings.Join(escaped, "/")
}

// Get resolves a pointer against a Node, returning nil, false on a
// missing key or an out-of-range index.
func Get(node Node, p Pointer) (Node, bool) {
	cur := node

	for _, seg := range p.segments {
		if cur == nil {
			return nil, false
		}

		switch n := cur.(type) {
		case Object:
			v, ok := n.Get(seg)
			if !ok {
				return nil, false
			}

			cur = v
		case *Object:
			v, ok := n.Get(seg)
			if !ok {
				return nil, false
			}

			cur = v
		case Array:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(n.Elements) {
				return nil, false
			}

			cur = n.Elements[idx]
		default:
			return nil, false
		}
	}

	if cur == nil {
		return nil, false
	}

	return cur, true
}
