// Package schema lowers a JSONA document whose annotations describe a JSON
// Schema into a [*jsonschema.Schema] ([Compile]), and walks a [dom.Node]
// against a compiled schema to produce per-node diagnostics ([Validate]).
//
// Compile is a post-order, structurally-inferring walk in the same shape as
// MacroPower-x/magicschema's YAML-to-schema generator: every scalar, array,
// and object infers a baseline schema from its own structure, and the fixed
// JSONA schema annotation vocabulary (@describe, @default, @required,
// @optional, @schema, @pattern, @compound, @def, @ref, @anytype,
// @jsonaschema) adjusts or replaces that baseline per node. Unlike
// magicschema's pluggable, comment-parsed annotators, JSONA annotations are
// already structured DOM data, so there is nothing to parse: the compiler
// reads them directly off [dom.Node.Annotations].
package schema
