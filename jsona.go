// Package jsona composes the cst/dom/format/schema packages into the six
// synchronous entry points a host embeds: Parse, ParseAST, StringifyAST,
// Format, CompileSchema, and Validate. Each is a thin wiring layer, the
// same role the teacher's cmd/magicschema plays over magicschema.Generator,
// just promoted to library functions rather than a CLI.
package jsona

import (
	"errors"
	"unicode/utf8"

	"github.com/google/jsonschema-go/jsonschema"

	"go.jsona.dev/jsona/cst"
	"go.jsona.dev/jsona/dom"
	"go.jsona.dev/jsona/format"
	"go.jsona.dev/jsona/schema"
)

var (
	// ErrInvalidUTF8's message is carried by the single UnexpectedChar
	// diagnostic that Parse and CompileSchema report when text is not valid
	// UTF-8; every downstream stage assumes decodable input.
	ErrInvalidUTF8 = errors.New("jsona: input is not valid UTF-8")
	// ErrNilAST is returned by StringifyAST when ast is nil.
	ErrNilAST = errors.New("jsona: nil ast")
)

// Parse lexes and builds text into a DOM, alongside every diagnostic
// accumulated along the way (lex, parse, and DOM-build errors all land in
// the same slice: lex and parse diagnostics first, then DOM-build ones).
func Parse(text string) (dom.Node, []cst.Diagnostic) {
	if !utf8.ValidString(text) {
		return nil, []cst.Diagnostic{{Kind: cst.KindUnexpectedChar, Message: ErrInvalidUTF8.Error()}}
	}

	return dom.Parse(text)
}

// ParseAST lexes and builds text, then renders the result in the AST
// interchange form instead of the DOM shape.
func ParseAST(text string) (*dom.ASTNode, []cst.Diagnostic) {
	node, diags := Parse(text)

	return dom.ToAST(node), diags
}

// StringifyAST serializes an AST interchange node to its JSON wire form
// (the AST shape itself, as dom.StringifyAST does). It does not render the
// value back as JSONA source text.
func StringifyAST(ast *dom.ASTNode) (string, error) {
	if ast == nil {
		return "", ErrNilAST
	}

	return dom.StringifyAST(ast)
}

// Format canonicalizes text under opts. It returns format.ErrContainsErrors
// if the parsed CST contains an Error node and force is false.
func Format(text string, opts format.Options, force bool) (string, error) {
	root, _ := cst.Parse(text)

	return format.Format(root, opts, force)
}

// CompileSchema reads text as an annotated JSONA document and lowers it
// into a JSON Schema, alongside every diagnostic from lexing through
// compilation.
func CompileSchema(text string) (*jsonschema.Schema, []cst.Diagnostic) {
	if !utf8.ValidString(text) {
		return nil, []cst.Diagnostic{{Kind: cst.KindUnexpectedChar, Message: ErrInvalidUTF8.Error()}}
	}

	node, diags := dom.Parse(text)

	compiled, compileDiags := schema.Compile(node)

	return compiled, append(diags, compileDiags...)
}

// Validate parses text and checks the resulting DOM against an
// already-compiled schema, returning every validation diagnostic. Parse
// diagnostics are included first so a caller showing one diagnostic feed
// doesn't need to special-case a document that never reached the DOM.
func Validate(text string, s *jsonschema.Schema) []cst.Diagnostic {
	node, diags := dom.Parse(text)
	if node == nil {
		return diags
	}

	return append(diags, schema.Validate(node, s)...)
}
