package schema

import "github.com/google/jsonschema-go/jsonschema"

// mergeSchemas combines two schemas with union semantics, grounded directly
// on MacroPower-x/magicschema's mergeSchemas: used here to merge the
// per-element schemas of a structurally-inferred array into one Items
// schema, the same role it plays merging sequence elements in the teacher.
func mergeSchemas(a, b *jsonschema.Schema) *jsonschema.Schema {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	result := &jsonschema.Schema{}

	if merged := widenType(schemaType(a), schemaType(b)); merged != "" {
		result.Type = merged
	}

	result.Title = firstNonEmpty(a.Title, b.Title)
	result.Description = firstNonEmpty(a.Description, b.Description)

	if a.Default != nil {
		result.Default = a.Default
	} else {
		result.Default = b.Default
	}

	if a.Properties != nil || b.Properties != nil {
		mergeProperties(result, a, b)
	}

	result.AdditionalProperties = mergeAdditionalProperties(a.AdditionalProperties, b.AdditionalProperties)
	result.Required = intersectStrings(a.Required, b.Required)

	switch {
	case a.Items != nil && b.Items != nil:
		result.Items = mergeSchemas(a.Items, b.Items)
	case a.Items != nil:
		result.Items = a.Items
	default:
		result.Items = b.Items
	}

	return result
}

// schemaType returns the effective type string from a schema, collapsing a
// single-element Types union the same way widenType expects.
func schemaType(s *jsonschema.Schema) string {
	if s.Type != "" {
		return s.Type
	}

	if len(s.Types) == 1 {
		return s.Types[0]
	}

	return ""
}

// widenType returns the widened type when merging two type strings, per
// magicschema's union-semantics table: incompatible types drop the type
// constraint entirely (the most permissive outcome), integer+number widens
// to number, and an empty side (no constraint / was absent) defers to the
// other.
func widenType(a, b string) string {
	if a == b {
		return a
	}

	if a == "" {
		return b
	}

	if b == "" {
		return a
	}

	if (a == typeInteger && b == typeNumber) || (a == typeNumber && b == typeInteger) {
		return typeNumber
	}

	return ""
}

func mergeAdditionalProperties(a, b *jsonschema.Schema) *jsonschema.Schema {
	if a == nil && b == nil {
		return nil
	}

	if a == nil || b == nil || isTrueSchema(a) || isTrueSchema(b) {
		return &jsonschema.Schema{}
	}

	return a
}

func isTrueSchema(s *jsonschema.Schema) bool {
	if s == nil {
		return false
	}

	return s.Not == nil &&
		s.Type == "" &&
		len(s.Types) == 0 &&
		s.Properties == nil &&
		s.Items == nil &&
		len(s.AllOf) == 0 &&
		len(s.AnyOf) == 0 &&
		len(s.OneOf) == 0
}

func intersectStrings(a, b []string) []string {
	if a == nil || b == nil {
		return nil
	}

	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}

	var result []string

	for _, s := range b {
		if set[s] {
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}

	return result
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}

	return b
}

// propertyKeys returns property keys in PropertyOrder, then any remaining
// keys in map iteration order.
func propertyKeys(s *jsonschema.Schema) []string {
	if s.Properties == nil {
		return nil
	}

	if len(s.PropertyOrder) > 0 {
		seen := make(map[string]bool, len(s.PropertyOrder))

		var keys []string

		for _, k := range s.PropertyOrder {
			if _, ok := s.Properties[k]; ok {
				keys = append(keys, k)
				seen[k] = true
			}
		}

		for k := range s.Properties {
			if !seen[k] {
				keys = append(keys, k)
			}
		}

		return keys
	}

	keys := make([]string, 0, len(s.Properties))
	for k := range s.Properties {
		keys = append(keys, k)
	}

	return keys
}

func mergeProperties(result, a, b *jsonschema.Schema) {
	result.Properties = make(map[string]*jsonschema.Schema)

	var order []string

	if a.Properties != nil {
		for _, k := range propertyKeys(a) {
			result.Properties[k] = a.Properties[k]
			order = append(order, k)
		}
	}

	if b.Properties != nil {
		for _, k := range propertyKeys(b) {
			if existing, ok := result.Properties[k]; ok {
				result.Properties[k] = mergeSchemas(existing, b.Properties[k])
			} else {
				result.Properties[k] = b.Properties[k]
				order = append(order, k)
			}
		}
	}

	result.PropertyOrder = order
}

// applyOverride copies every field set on src into dst, giving src (an
// explicit @schema(...) payload) priority over dst's structurally inferred
// baseline. This is mergeSchemaFields's dst/src priority reversed: the
// teacher fills gaps with a lower-priority annotator's fields, while here
// the annotation payload always wins over the structural guess.
func applyOverride(dst, src *jsonschema.Schema) {
	if src.Type != "" || len(src.Types) > 0 {
		dst.Type, dst.Types = src.Type, src.Types
	}

	if src.Title != "" {
		dst.Title = src.Title
	}

	if src.Description != "" {
		dst.Description = src.Description
	}

	if src.Default != nil {
		dst.Default = src.Default
	}

	if src.Enum != nil {
		dst.Enum = src.Enum
	}

	if src.Const != nil {
		dst.Const = src.Const
	}

	if src.Pattern != "" {
		dst.Pattern = src.Pattern
	}

	if src.Format != "" {
		dst.Format = src.Format
	}

	if src.Minimum != nil {
		dst.Minimum = src.Minimum
	}

	if src.Maximum != nil {
		dst.Maximum = src.Maximum
	}

	if src.ExclusiveMinimum != nil {
		dst.ExclusiveMinimum = src.ExclusiveMinimum
	}

	if src.ExclusiveMaximum != nil {
		dst.ExclusiveMaximum = src.ExclusiveMaximum
	}

	if src.MultipleOf != nil {
		dst.MultipleOf = src.MultipleOf
	}

	if src.MinLength != nil {
		dst.MinLength = src.MinLength
	}

	if src.MaxLength != nil {
		dst.MaxLength = src.MaxLength
	}

	if src.MinItems != nil {
		dst.MinItems = src.MinItems
	}

	if src.MaxItems != nil {
		dst.MaxItems = src.MaxItems
	}

	if src.UniqueItems {
		dst.UniqueItems = src.UniqueItems
	}

	if src.MinProperties != nil {
		dst.MinProperties = src.MinProperties
	}

	if src.MaxProperties != nil {
		dst.MaxProperties = src.MaxProperties
	}

	if src.Items != nil {
		dst.Items = src.Items
	}

	if src.Properties != nil {
		dst.Properties = src.Properties
	}

	if src.AdditionalProperties != nil {
		dst.AdditionalProperties = src.AdditionalProperties
	}

	if src.PatternProperties != nil {
		dst.PatternProperties = src.PatternProperties
	}

	if src.Required != nil {
		dst.Required = src.Required
	}

	if src.AllOf != nil {
		dst.AllOf = src.AllOf
	}

	if src.AnyOf != nil {
		dst.AnyOf = src.AnyOf
	}

	if src.OneOf != nil {
		dst.OneOf = src.OneOf
	}

	if src.Not != nil {
		dst.Not = src.Not
	}

	if src.Deprecated {
		dst.Deprecated = src.Deprecated
	}

	if src.ReadOnly {
		dst.ReadOnly = src.ReadOnly
	}

	if src.WriteOnly {
		dst.WriteOnly = src.WriteOnly
	}

	if src.Examples != nil {
		dst.Examples = src.Examples
	}

	if src.Ref != "" {
		dst.Ref = src.Ref
	}

	if src.ID != "" {
		dst.ID = src.ID
	}

	if src.Extra != nil {
		if dst.Extra == nil {
			dst.Extra = make(map[string]any)
		}

		for k, v := range src.Extra {
			dst.Extra[k] = v
		}
	}
}
