package schema

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/google/jsonschema-go/jsonschema"

	"go.jsona.dev/jsona/cst"
	"go.jsona.dev/jsona/dom"
)

// JSON Schema type name constants, the Draft 2019-09 subset this package
// emits and consumes.
const (
	typeNull    = "null"
	typeBoolean = "boolean"
	typeInteger = "integer"
	typeNumber  = "number"
	typeString  = "string"
	typeArray   = "array"
	typeObject  = "object"
)

// The fixed schema annotation vocabulary. Any other annotation name found on
// a node in a schema document produces an InvalidSchemaAnnotation
// diagnostic; JSONA schema documents do not support pluggable annotators the
// way magicschema's Helm-flavored generator does (see DESIGN.md).
const (
	annDescribe    = "describe"
	annDefault     = "default"
	annRequired    = "required"
	annOptional    = "optional"
	annSchema      = "schema"
	annPattern     = "pattern"
	annCompound    = "compound"
	annDef         = "def"
	annRef         = "ref"
	annAnyType     = "anytype"
	annJSONASchema = "jsonaschema"
)

// Compile lowers a JSONA schema document's DOM root into a JSON Schema
// value plus any diagnostics discovered along the way. A nil root compiles
// to the "true" schema (validates everything, per the host contract's
// treatment of an empty document).
func Compile(root dom.Node) (*jsonschema.Schema, []cst.Diagnostic) {
	c := &compiler{defs: map[string]*jsonschema.Schema{}, refs: map[string]cst.Range{}}

	if root == nil {
		return &jsonschema.Schema{}, nil
	}

	result := c.walk(root)

	for name, r := range c.refs {
		if _, ok := c.defs[name]; !ok {
			c.errorf(r, cst.KindUnresolvedRef, "unresolved $ref to $defs.%s", name)
		}
	}

	if len(c.defs) > 0 {
		result.Defs = c.defs
	}

	return result, c.diags
}

type compiler struct {
	defs  map[string]*jsonschema.Schema
	refs  map[string]cst.Range // $defs name -> first @ref use site, for UnresolvedRef reporting
	diags []cst.Diagnostic
}

func (c *compiler) errorf(r cst.Range, kind cst.Kind, format string, args ...any) {
	c.diags = append(c.diags, cst.Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Range: r})
}

// walk compiles node's own schema fragment: @ref and @def bookkeeping, then
// either @anytype/@compound or structural inference for the core shape,
// then the describe/default/schema modifiers layered on top. Annotations
// that modify the *parent* instead of this node (@required, @optional,
// @pattern) are read by the caller (compileEntry), not here.
//
// A container's own annotation list mixes two grammar positions that the
// DOM collapses into one ordered slice: those written before its first
// child (§4.2's "inside a container with no preceding value" case, which
// describe the container) and those written after its last child, following
// a separator and before the closing delimiter (§4.2's "just-closed value"
// trailing case, e.g. `retries: 3, @default`, which describe that last
// child instead). ownAnnotations splits them back apart; the leading half
// governs this node, the trailing half is redistributed in redistribute.
func (c *compiler) walk(node dom.Node) *jsonschema.Schema {
	leading, trailing := c.ownAnnotations(node)

	if ann, ok := findAnnotation(leading, annRef); ok {
		return c.compileRef(ann)
	}

	var core *jsonschema.Schema

	switch {
	case hasAnnotation(leading, annAnyType):
		core = &jsonschema.Schema{}
	default:
		if ann, ok := findAnnotation(leading, annCompound); ok {
			core = c.compileCompound(node, ann)
		} else {
			core = c.structural(node)
		}
	}

	core = c.applyModifiers(leading, node, core)
	c.redistribute(node, core, trailing)

	if ann, ok := findAnnotation(leading, annDef); ok {
		return c.registerDef(ann, core)
	}

	return core
}

// ownAnnotations splits node's own annotation list into the subset
// positioned before its first child (leading, describes the node itself)
// and the subset positioned after its last child (trailing, redistributed
// onto that child by redistribute). Only Array and Object have children to
// split against; every other kind's whole list is its own.
func (c *compiler) ownAnnotations(node dom.Node) (leading, trailing []dom.Annotation) {
	anns := node.Annotations()

	switch n := node.(type) {
	case dom.Object:
		if len(n.Entries) == 0 {
			return anns, nil
		}

		return splitAnnotationsAt(anns, n.Entries[0].KeyRange.Start.Index)
	case dom.Array:
		if len(n.Elements) == 0 {
			return anns, nil
		}

		return splitAnnotationsAt(anns, n.Elements[0].Range().Start.Index)
	default:
		return anns, nil
	}
}

func splitAnnotationsAt(anns []dom.Annotation, firstChildStart int) (leading, trailing []dom.Annotation) {
	for _, a := range anns {
		if a.NameRange.Start.Index < firstChildStart {
			leading = append(leading, a)
		} else {
			trailing = append(trailing, a)
		}
	}

	return
}

// redistribute applies trailing container-level annotations onto the
// already-compiled schema of the container's last child, per the
// attachment rule explained on walk. Object redistributes onto its last
// property; Array redistributes onto its merged Items schema, the closest
// analogue available once per-element schemas have been widened together.
func (c *compiler) redistribute(node dom.Node, core *jsonschema.Schema, trailing []dom.Annotation) {
	if len(trailing) == 0 {
		return
	}

	switch n := node.(type) {
	case dom.Object:
		if len(n.Entries) == 0 || core.Properties == nil {
			return
		}

		last := n.Entries[len(n.Entries)-1]
		if s, ok := core.Properties[last.Key]; ok {
			c.applyModifiers(trailing, last.Value, s)
		}
	case dom.Array:
		if core.Items == nil || len(n.Elements) == 0 {
			return
		}

		c.applyModifiers(trailing, n.Elements[len(n.Elements)-1], core.Items)
	}
}

func (c *compiler) compileRef(ann dom.Annotation) *jsonschema.Schema {
	name, ok := annotationString(ann)
	if !ok || name == "" {
		c.errorf(ann.NameRange, cst.KindInvalidSchemaAnnotation, "@ref requires a string name")

		return &jsonschema.Schema{}
	}

	if _, seen := c.refs[name]; !seen {
		c.refs[name] = ann.NameRange
	}

	return &jsonschema.Schema{Ref: "#/$defs/" + name}
}

func (c *compiler) registerDef(ann dom.Annotation, core *jsonschema.Schema) *jsonschema.Schema {
	name, ok := annotationString(ann)
	if !ok || name == "" {
		c.errorf(ann.NameRange, cst.KindInvalidSchemaAnnotation, "@def requires a string name")

		return core
	}

	c.defs[name] = core

	return &jsonschema.Schema{Ref: "#/$defs/" + name}
}

// compileCompound implements @compound("oneOf"|"anyOf"|"allOf"): the
// annotated array's own elements become the compound keyword's member
// schemas instead of an "array of X" schema.
func (c *compiler) compileCompound(node dom.Node, ann dom.Annotation) *jsonschema.Schema {
	kind, ok := annotationString(ann)
	if !ok {
		c.errorf(ann.NameRange, cst.KindInvalidSchemaAnnotation, "@compound requires a string")

		return c.structural(node)
	}

	arr, isArray := node.(dom.Array)
	if !isArray {
		c.errorf(ann.NameRange, cst.KindInvalidSchemaAnnotation, "@compound requires an array value")

		return c.structural(node)
	}

	members := make([]*jsonschema.Schema, len(arr.Elements))
	for i, el := range arr.Elements {
		members[i] = c.walk(el)
	}

	s := &jsonschema.Schema{}

	switch kind {
	case "oneOf":
		s.OneOf = members
	case "anyOf":
		s.AnyOf = members
	case "allOf":
		s.AllOf = members
	default:
		c.errorf(ann.NameRange, cst.KindInvalidSchemaAnnotation,
			"@compound requires one of oneOf|anyOf|allOf, got %q", kind)
	}

	return s
}

// applyModifiers layers @schema, @describe, and @default from anns onto
// core -- in that priority order, so @describe/@default always win over a
// same-named @schema field -- and flags any annotation name outside the
// fixed vocabulary. node is the value the modifiers describe (core's own
// node normally; a redistributed trailing annotation's just-closed child
// when called from redistribute), used by @default to read "the node's own
// JSON value".
func (c *compiler) applyModifiers(anns []dom.Annotation, node dom.Node, core *jsonschema.Schema) *jsonschema.Schema {
	for _, ann := range anns {
		switch ann.Name {
		case annSchema:
			c.applySchemaPayload(core, ann)
		case annDescribe:
			text, ok := annotationString(ann)
			if !ok {
				c.errorf(ann.NameRange, cst.KindInvalidSchemaAnnotation, "@describe requires a string")

				continue
			}

			core.Description = text
		case annDefault:
			c.applyDefault(node, core, ann)
		case annRequired, annOptional, annPattern, annRef, annDef, annAnyType, annCompound, annJSONASchema:
			// Handled elsewhere (parent bookkeeping in compileEntry, or
			// already consumed by walk before structural/core computation).
			// @jsonaschema is a document-level declaration that is always
			// stripped during compilation, per the resolved open question.
		default:
			c.errorf(ann.NameRange, cst.KindInvalidSchemaAnnotation, "unknown schema annotation @%s", ann.Name)
		}
	}

	return core
}

func (c *compiler) applySchemaPayload(core *jsonschema.Schema, ann dom.Annotation) {
	obj, ok := ann.Value.(dom.Object)
	if !ok {
		c.errorf(ann.NameRange, cst.KindInvalidSchemaAnnotation, "@schema requires an object payload")

		return
	}

	raw, err := json.Marshal(dom.ToJSON(obj))
	if err != nil {
		c.errorf(ann.NameRange, cst.KindInvalidSchemaAnnotation, "@schema payload: %v", err)

		return
	}

	var override jsonschema.Schema

	if err := json.Unmarshal(raw, &override); err != nil {
		c.errorf(ann.NameRange, cst.KindInvalidSchemaAnnotation, "@schema payload: %v", err)

		return
	}

	applyOverride(core, &override)
}

// applyDefault implements "@default -- set default to the node's own JSON
// value": with no parenthesized value the node's own literal becomes the
// schema default, e.g. `{ retries: 3, @default }` sets default=3. An explicit
// `@default(value)` payload overrides the node's own value instead.
func (c *compiler) applyDefault(node dom.Node, core *jsonschema.Schema, ann dom.Annotation) {
	v := dom.ToJSON(node)
	if ann.Value != nil {
		v = dom.ToJSON(ann.Value)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return
	}

	core.Default = raw
}

// structural infers a baseline schema purely from node's shape, the
// fallback used whenever no annotation overrides a node, mirroring
// magicschema.Generator.walkNode/walkMapping/walkSequence/walkScalar.
func (c *compiler) structural(node dom.Node) *jsonschema.Schema {
	switch n := node.(type) {
	case dom.Null:
		return &jsonschema.Schema{}
	case dom.Bool:
		return &jsonschema.Schema{Type: typeBoolean}
	case dom.Number:
		if n.Value.IsFloat {
			return &jsonschema.Schema{Type: typeNumber}
		}

		return &jsonschema.Schema{Type: typeInteger}
	case dom.String:
		return &jsonschema.Schema{Type: typeString}
	case dom.Array:
		return c.structuralArray(n)
	case dom.Object:
		return c.structuralObject(n)
	default:
		return &jsonschema.Schema{}
	}
}

func (c *compiler) structuralObject(obj dom.Object) *jsonschema.Schema {
	s := &jsonschema.Schema{Type: typeObject, Properties: map[string]*jsonschema.Schema{}}

	var order []string

	for _, e := range obj.Entries {
		c.compileEntry(s, e, &order)
	}

	if len(s.Properties) == 0 {
		s.Properties = nil
	} else {
		s.PropertyOrder = order
	}

	return s
}

// compileEntry compiles one object entry's value and files the result under
// the parent schema: as a property, or (per @pattern) as a
// patternProperties entry; @required/@optional on the entry's value adjust
// the parent's Required list.
func (c *compiler) compileEntry(parent *jsonschema.Schema, e dom.Entry, order *[]string) {
	childSchema := c.walk(e.Value)
	anns := e.Value.Annotations()

	if ann, ok := findAnnotation(anns, annPattern); ok {
		if pattern, filed := c.filePatternProperty(parent, ann, childSchema); filed {
			_ = pattern

			return
		}
	}

	parent.Properties[e.Key] = childSchema
	*order = append(*order, e.Key)

	if _, ok := findAnnotation(anns, annRequired); ok && !containsString(parent.Required, e.Key) {
		parent.Required = append(parent.Required, e.Key)
	}

	if _, ok := findAnnotation(anns, annOptional); ok {
		parent.Required = removeString(parent.Required, e.Key)
	}
}

// filePatternProperty validates and installs a @pattern("…") entry under
// parent.PatternProperties, returning filed=true when it did so (the caller
// must then skip the normal Properties/Required bookkeeping for this entry).
func (c *compiler) filePatternProperty(
	parent *jsonschema.Schema, ann dom.Annotation, childSchema *jsonschema.Schema,
) (string, bool) {
	pattern, ok := annotationString(ann)
	if !ok {
		c.errorf(ann.NameRange, cst.KindInvalidSchemaAnnotation, "@pattern requires a string")

		return "", false
	}

	if _, err := regexp.Compile(pattern); err != nil {
		c.errorf(ann.NameRange, cst.KindBadPatternRegex, "invalid @pattern regex %q: %v", pattern, err)

		return "", false
	}

	if parent.PatternProperties == nil {
		parent.PatternProperties = map[string]*jsonschema.Schema{}
	}

	parent.PatternProperties[pattern] = childSchema

	return pattern, true
}

// structuralArray infers an array schema from its elements, merging
// per-element schemas with union semantics (mergeSchemas) the way
// magicschema.inferItemsFromSequence merges a sequence's mapping elements.
func (c *compiler) structuralArray(arr dom.Array) *jsonschema.Schema {
	s := &jsonschema.Schema{Type: typeArray}

	if len(arr.Elements) == 0 {
		return s
	}

	itemSchemas := make([]*jsonschema.Schema, len(arr.Elements))
	for i, el := range arr.Elements {
		itemSchemas[i] = c.walk(el)
	}

	result := itemSchemas[0]
	for _, item := range itemSchemas[1:] {
		result = mergeSchemas(result, item)
	}

	s.Items = result

	return s
}

func findAnnotation(anns []dom.Annotation, name string) (dom.Annotation, bool) {
	for _, a := range anns {
		if a.Name == name {
			return a, true
		}
	}

	return dom.Annotation{}, false
}

func hasAnnotation(anns []dom.Annotation, name string) bool {
	_, ok := findAnnotation(anns, name)

	return ok
}

func annotationString(ann dom.Annotation) (string, bool) {
	s, ok := ann.Value.(dom.String)
	if !ok {
		return "", false
	}

	return s.Value, true
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}

	return false
}

func removeString(ss []string, s string) []string {
	out := ss[:0]

	for _, v := range ss {
		if v != s {
			out = append(out, v)
		}
	}

	if len(out) == 0 {
		return nil
	}

	return out
}
