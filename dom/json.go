package dom

// ToJSON strips annotations and renders node as a plain Go value suitable
// for `encoding/json` marshaling: nil, bool, int64/float64, string,
// []any, or map[string]any. Object key order is not preserved, since
// plain JSON objects are unordered.
func ToJSON(node Node) any {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case Null:
		return nil
	case Bool:
		return n.Value
	case Number:
		if n.Value.IsFloat {
			return n.Value.Float
		}

		return n.Value.Int
	case String:
		return n.Value
	case Array:
		out := make([]any, len(n.Elements))
		for i, e := range n.Elements {
			out[i] = ToJSON(e)
		}

		return out
	case Object:
		out := make(map[string]any, len(n.Entries))
		for _, e := range n.Entries {
			if _, exists := out[e.Key]; exists {
				continue // first occurrence wins, per DOM accessor semantics
			}

			out[e.Key] = ToJSON(e.Value)
		}

		return out
	default:
		return nil
	}
}
