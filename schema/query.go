package schema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"go.jsona.dev/jsona/dom"
)

// Query walks a DOM pointer through a compiled schema, resolving internal
// $refs along the way, and returns the schema fragment found at that path.
// This is the one piece of LSP-facing surface the validator exposes
// directly, used for completion: given the document path the cursor sits
// at, find what schema governs it.
func Query(root *jsonschema.Schema, p dom.Pointer) (*jsonschema.Schema, bool) {
	cur, ok := derefWithin(root, root)
	if !ok {
		return nil, false
	}

	for _, seg := range p.Segments() {
		next, found := stepSchema(cur, seg)
		if !found {
			return nil, false
		}

		cur, ok = derefWithin(next, root)
		if !ok {
			return nil, false
		}
	}

	return cur, true
}

func stepSchema(s *jsonschema.Schema, seg string) (*jsonschema.Schema, bool) {
	if child, ok := s.Properties[seg]; ok {
		return child, true
	}

	for pattern, sub := range s.PatternProperties {
		if re, err := regexp.Compile(pattern); err == nil && re.MatchString(seg) {
			return sub, true
		}
	}

	if s.Items != nil {
		if _, err := strconv.Atoi(seg); err == nil {
			return s.Items, true
		}
	}

	return nil, false
}

// derefWithin resolves an internal `#/$defs/Name` $ref against root's Defs
// table. External refs (anything else) fail the query, matching
// UnresolvedRef's internal-pointer-only resolution contract.
func derefWithin(s, root *jsonschema.Schema) (*jsonschema.Schema, bool) {
	if s == nil {
		return nil, false
	}

	if s.Ref == "" {
		return s, true
	}

	name := strings.TrimPrefix(s.Ref, "#/$defs/")
	if root == nil || root.Defs == nil {
		return nil, false
	}

	resolved, ok := root.Defs[name]

	return resolved, ok
}
