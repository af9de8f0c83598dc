// Package format pretty-prints a parsed [cst.Node] tree under a
// configurable [Options], preserving the author's single-line/multi-line
// intent and comment placement while canonicalizing whitespace.
package format

// Options configures [Format]. Every field is optional; the zero value is
// the documented default.
type Options struct {
	// IndentString is prepended once per nesting level in multi-line
	// output. Defaults to two spaces.
	IndentString string

	// TrailingComma places a comma after the last element of a
	// multi-line array or object. Defaults to false.
	TrailingComma bool

	// TrailingNewline ensures the output ends with exactly one newline.
	// Defaults to false.
	TrailingNewline bool

	// FormatKey drops quotes from object keys that match the identifier
	// grammar, and re-quotes any other key with the quote style that
	// requires no internal escaping. Defaults to false (keys are
	// reproduced exactly as written).
	FormatKey bool
}

// indentFor returns the option's indent string, defaulting to two spaces.
func (o Options) indentFor() string {
	if o.IndentString == "" {
		return "  "
	}

	return o.IndentString
}
