package dom

import (
	"encoding/json"
	"strings"

	"go.jsona.dev/jsona/cst"
)

// ASTKey is the wire shape of an object key or annotation name: a name
// plus its own source range.
type ASTKey struct {
	Name  string    `json:"name"`
	Range cst.Range `json:"range"`
}

// ASTProperty is one `{type: Key, value: Node}` object entry in the AST
// interchange form.
type ASTProperty struct {
	Type  ASTKey   `json:"type"`
	Value *ASTNode `json:"value"`
}

// ASTAnnotation is one `{type: Key, value: Node}` annotation entry. Value
// is nil for a bare `@name` annotation.
type ASTAnnotation struct {
	Type  ASTKey   `json:"type"`
	Value *ASTNode `json:"value,omitempty"`
}

// ASTNode is the AST interchange form used by ParseAST/StringifyAST,
// matching the host-contract wire shape exactly.
type ASTNode struct {
	Type        string          `json:"type"`
	Value       any             `json:"value,omitempty"`
	Items       []*ASTNode      `json:"items,omitempty"`
	Properties  []ASTProperty   `json:"properties,omitempty"`
	Annotations []ASTAnnotation `json:"annotations"`
	Range       cst.Range       `json:"range"`
}

// ToAST converts a DOM Node into its AST interchange form.
func ToAST(node Node) *ASTNode {
	if node == nil {
		return nil
	}

	out := &ASTNode{
		Annotations: toASTAnnotations(node.Annotations()),
		Range:       node.Range(),
	}

	switch n := node.(type) {
	case Null:
		out.Type = "null"
	case Bool:
		out.Type = "bool"
		out.Value = n.Value
	case Number:
		out.Type = "number"
		if n.Value.IsFloat {
			out.Value = n.Value.Float
		} else {
			out.Value = n.Value.Int
		}
	case String:
		out.Type = "string"
		out.Value = n.Value
	case Array:
		out.Type = "array"
		out.Items = make([]*ASTNode, len(n.Elements))

		for i, e := range n.Elements {
			out.Items[i] = ToAST(e)
		}
	case Object:
		out.Type = "object"
		out.Properties = make([]ASTProperty, len(n.Entries))

		for i, e := range n.Entries {
			out.Properties[i] = ASTProperty{
				Type:  ASTKey{Name: e.Key, Range: e.KeyRange},
				Value: ToAST(e.Value),
			}
		}
	}

	return out
}

func toASTAnnotations(anns []Annotation) []ASTAnnotation {
	out := make([]ASTAnnotation, len(anns))

	for i, a := range anns {
		out[i] = ASTAnnotation{Type: ASTKey{Name: a.Name, Range: a.NameRange}}
		if a.Value != nil {
			out[i].Value = ToAST(a.Value)
		}
	}

	return out
}

// FromAST is the inverse of ToAST: it rebuilds a DOM tree from an AST
// interchange value. It is lossy for formatting purposes (the rebuilt
// nodes carry no CST back-reference) but round-trips values, keys, and
// annotation structure exactly.
func FromAST(n *ASTNode) Node {
	if n == nil {
		return nil
	}

	anns := fromASTAnnotations(n.Annotations)
	b := base{annotations: anns, rng: n.Range}

	switch n.Type {
	case "bool":
		v, _ := n.Value.(bool)
		return Bool{base: b, Value: v}
	case "number":
		return Number{base: b, Value: numericFromAny(n.Value)}
	case "string":
		v, _ := n.Value.(string)
		return String{base: b, Value: v, Quote: cst.QuoteDouble}
	case "array":
		elems := make([]Node, len(n.Items))
		for i, it := range n.Items {
			elems[i] = FromAST(it)
		}

		return Array{base: b, Elements: elems}
	case "object":
		entries := make([]Entry, len(n.Properties))
		for i, p := range n.Properties {
			entries[i] = Entry{Key: p.Type.Name, KeyRange: p.Type.Range, Value: FromAST(p.Value)}
		}

		return Object{base: b, Entries: entries}
	default:
		return Null{base: b}
	}
}

func fromASTAnnotations(anns []ASTAnnotation) []Annotation {
	if len(anns) == 0 {
		return nil
	}

	out := make([]Annotation, len(anns))
	for i, a := range anns {
		out[i] = Annotation{Name: a.Type.Name, NameRange: a.Type.Range}
		if a.Value != nil {
			out[i].Value = FromAST(a.Value)
		}
	}

	return out
}

// numericFromAny reconstructs a NumericValue from a decoded JSON number
// (int64, float64, or json.Number), defaulting to decimal base since the
// AST form does not preserve the original literal's base or casing.
func numericFromAny(v any) NumericValue {
	switch t := v.(type) {
	case int64:
		return NumericValue{Int: t, Float: float64(t)}
	case float64:
		if t == float64(int64(t)) {
			return NumericValue{Int: int64(t), Float: t}
		}

		return NumericValue{IsFloat: true, Float: t, Int: int64(t)}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return NumericValue{Int: i, Float: float64(i)}
		}

		f, _ := t.Float64()

		return NumericValue{IsFloat: true, Float: f, Int: int64(f)}
	default:
		return NumericValue{}
	}
}

// StringifyAST serializes an AST node to its JSON wire form.
func StringifyAST(n *ASTNode) (string, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// ParseASTJSON is the inverse of StringifyAST: it decodes the JSON wire
// form back into an ASTNode.
func ParseASTJSON(text string) (*ASTNode, error) {
	var n ASTNode

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	if err := dec.Decode(&n); err != nil {
		return nil, err
	}

	return &n, nil
}
