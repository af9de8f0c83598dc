package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"go.jsona.dev/jsona/cst"
	"go.jsona.dev/jsona/dom"
)

// Validate walks value against a compiled schema, producing diagnostics
// with DOM/CST spans for every constraint violation. It never aborts on
// the first failure -- every independent branch is checked -- but per
// §7's propagation policy it stops descending into a subtree whose own
// `type` check already failed, since deeper diagnostics would be noise
// once the shape itself is wrong.
func Validate(value dom.Node, root *jsonschema.Schema) []cst.Diagnostic {
	v := &validator{root: root}
	v.validate(value, root, "")

	return v.diags
}

type validator struct {
	root  *jsonschema.Schema
	diags []cst.Diagnostic
}

func (v *validator) errorf(node dom.Node, kind cst.Kind, path string, format string, args ...any) {
	v.diags = append(v.diags, cst.Diagnostic{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		Range:      node.Range(),
		SchemaPath: path,
	})
}

// validate checks value against s at the given schemaPath, accumulating
// diagnostics onto v.
func (v *validator) validate(value dom.Node, s *jsonschema.Schema, path string) {
	if s == nil || value == nil {
		return
	}

	resolved, ok := v.resolveRef(value, s, path)
	if !ok {
		return
	}

	s = resolved

	if isFalseSchema(s) {
		v.errorf(value, cst.KindConstraintFailed, path, "value is not permitted here")

		return
	}

	if isTrueSchema(s) {
		return
	}

	if !v.checkType(value, s, path) {
		return // stop descending a subtree that already failed its type check
	}

	switch n := value.(type) {
	case dom.Object:
		v.validateObject(n, s, path)
	case dom.Array:
		v.validateArray(n, s, path)
	case dom.Number:
		v.validateNumber(n, s, path)
	}

	v.validateEnum(value, s, path)
	v.validateCompound(value, s, path)
}

func (v *validator) resolveRef(value dom.Node, s *jsonschema.Schema, path string) (*jsonschema.Schema, bool) {
	if s.Ref == "" {
		return s, true
	}

	name := strings.TrimPrefix(s.Ref, "#/$defs/")

	if v.root == nil || v.root.Defs == nil {
		v.errorf(value, cst.KindUnresolvedRef, path, "unresolved $ref %q", s.Ref)

		return nil, false
	}

	resolved, ok := v.root.Defs[name]
	if !ok {
		v.errorf(value, cst.KindUnresolvedRef, path, "unresolved $ref %q", s.Ref)

		return nil, false
	}

	return resolved, true
}

func (v *validator) checkType(value dom.Node, s *jsonschema.Schema, path string) bool {
	wanted := schemaTypes(s)
	if len(wanted) == 0 {
		return true
	}

	for _, t := range wanted {
		if typeMatches(value, t) {
			return true
		}
	}

	v.errorf(value, cst.KindTypeMismatch, path+".type",
		"expected type %s, got %s", strings.Join(wanted, " or "), jsonType(value))

	return false
}

func schemaTypes(s *jsonschema.Schema) []string {
	if s.Type != "" {
		return []string{s.Type}
	}

	return s.Types
}

func typeMatches(value dom.Node, want string) bool {
	switch want {
	case typeNull:
		return value.Kind() == dom.KindNull
	case typeBoolean:
		return value.Kind() == dom.KindBool
	case typeInteger:
		n, ok := value.(dom.Number)

		return ok && !n.Value.IsFloat
	case typeNumber:
		_, ok := value.(dom.Number)

		return ok
	case typeString:
		return value.Kind() == dom.KindString
	case typeArray:
		return value.Kind() == dom.KindArray
	case typeObject:
		return value.Kind() == dom.KindObject
	default:
		return true
	}
}

func jsonType(value dom.Node) string {
	switch n := value.(type) {
	case dom.Null:
		return typeNull
	case dom.Bool:
		return typeBoolean
	case dom.Number:
		if n.Value.IsFloat {
			return typeNumber
		}

		return typeInteger
	case dom.String:
		return typeString
	case dom.Array:
		return typeArray
	case dom.Object:
		return typeObject
	default:
		return "unknown"
	}
}

func (v *validator) validateObject(obj dom.Object, s *jsonschema.Schema, path string) {
	for _, key := range s.Required {
		if _, ok := obj.Get(key); !ok {
			v.errorf(obj, cst.KindMissingRequired, path+".required", "missing required property %q", key)
		}
	}

	strict := isFalseSchema(s.AdditionalProperties)

	for _, e := range obj.Entries {
		if child, ok := s.Properties[e.Key]; ok {
			v.validate(e.Value, child, path+".properties."+e.Key)

			continue
		}

		if child, matched := matchPatternProperty(s, e.Key); matched {
			v.validate(e.Value, child, path+".patternProperties")

			continue
		}

		if s.AdditionalProperties != nil && !isTrueSchema(s.AdditionalProperties) && !strict {
			v.validate(e.Value, s.AdditionalProperties, path+".additionalProperties")

			continue
		}

		if strict {
			v.errorf(e.Value, cst.KindUnknownProperty, path+".additionalProperties", "unknown property %q", e.Key)
		}
	}
}

func matchPatternProperty(s *jsonschema.Schema, key string) (*jsonschema.Schema, bool) {
	for pattern, sub := range s.PatternProperties {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}

		if re.MatchString(key) {
			return sub, true
		}
	}

	return nil, false
}

func (v *validator) validateArray(arr dom.Array, s *jsonschema.Schema, path string) {
	if s.Items == nil {
		return
	}

	for i, el := range arr.Elements {
		v.validate(el, s.Items, fmt.Sprintf("%s.items[%d]", path, i))
	}
}

func (v *validator) validateNumber(n dom.Number, s *jsonschema.Schema, path string) {
	val := n.Value.Float
	if !n.Value.IsFloat {
		val = float64(n.Value.Int)
	}

	if s.Minimum != nil && val < *s.Minimum {
		v.errorf(n, cst.KindConstraintFailed, path+".minimum", "value %v is less than minimum %v", val, *s.Minimum)
	}

	if s.Maximum != nil && val > *s.Maximum {
		v.errorf(n, cst.KindConstraintFailed, path+".maximum", "value %v is greater than maximum %v", val, *s.Maximum)
	}
}

func (v *validator) validateEnum(value dom.Node, s *jsonschema.Schema, path string) {
	if len(s.Enum) == 0 {
		return
	}

	want := dom.ToJSON(value)

	for _, candidate := range s.Enum {
		if reflect.DeepEqual(normalizeJSON(candidate), normalizeJSON(want)) {
			return
		}
	}

	v.errorf(value, cst.KindConstraintFailed, path+".enum", "value does not match any enum member")
}

// normalizeJSON widens ints to float64 so enum/const comparisons between a
// DOM-decoded int64 and a JSON-decoded float64 (or vice versa) don't spuriously
// fail on representation alone.
func normalizeJSON(v any) any {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return v
	}
}

func (v *validator) validateCompound(value dom.Node, s *jsonschema.Schema, path string) {
	if len(s.AllOf) > 0 {
		for i, sub := range s.AllOf {
			v.validate(value, sub, fmt.Sprintf("%s.allOf[%d]", path, i))
		}
	}

	if len(s.OneOf) > 0 {
		matches := v.countMatches(value, s.OneOf)
		if matches != 1 {
			v.errorf(value, cst.KindOneOfFailed, path+".oneOf", "value matches %d of oneOf's alternatives, want exactly 1", matches)
		}
	}

	if len(s.AnyOf) > 0 {
		if v.countMatches(value, s.AnyOf) == 0 {
			v.errorf(value, cst.KindOneOfFailed, path+".anyOf", "value matches none of anyOf's alternatives")
		}
	}
}

// countMatches reports how many of candidates value validates against
// cleanly, using an isolated sub-validator so a failed alternative's
// diagnostics never leak into the caller's result set.
func (v *validator) countMatches(value dom.Node, candidates []*jsonschema.Schema) int {
	matches := 0

	for _, candidate := range candidates {
		sub := &validator{root: v.root}
		sub.validate(value, candidate, "")

		if len(sub.diags) == 0 {
			matches++
		}
	}

	return matches
}

func isFalseSchema(s *jsonschema.Schema) bool {
	return s != nil && s.Not != nil && isTrueSchema(s.Not)
}
