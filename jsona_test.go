package jsona_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jsona.dev/jsona"
	"go.jsona.dev/jsona/format"
)

func TestParseProducesDOM(t *testing.T) {
	node, diags := jsona.Parse(`{ name: @required "x" }`)
	require.Empty(t, diags)
	require.NotNil(t, node)
}

func TestParseInvalidUTF8(t *testing.T) {
	_, diags := jsona.Parse("{ name: \"\xff\" }")
	require.NotEmpty(t, diags)
}

func TestParseASTStringifyASTRoundTrip(t *testing.T) {
	src := `{ name: "x", age: 3 }`

	ast, diags := jsona.ParseAST(src)
	require.Empty(t, diags)

	out, err := jsona.StringifyAST(ast)
	require.NoError(t, err)

	reparsed, diags := jsona.ParseAST(out)
	require.Empty(t, diags)
	assert.Equal(t, ast.Type, reparsed.Type)
}

func TestStringifyASTNil(t *testing.T) {
	_, err := jsona.StringifyAST(nil)
	require.ErrorIs(t, err, jsona.ErrNilAST)
}

func TestFormatIdempotent(t *testing.T) {
	src := `{"a":1,"b":[1,2,3]}`

	out, err := jsona.Format(src, format.Options{TrailingNewline: true}, false)
	require.NoError(t, err)

	out2, err := jsona.Format(out, format.Options{TrailingNewline: true}, false)
	require.NoError(t, err)

	assert.Equal(t, out, out2)
}

func TestFormatContainsErrors(t *testing.T) {
	_, err := jsona.Format(`{ a: }`, format.Options{}, false)
	require.Error(t, err)
}

func TestCompileSchemaAndValidateEndToEnd(t *testing.T) {
	schemaSrc := `{ value: { @describe("A value") integer: 3, @schema({maximum: 10}) } }`

	compiled, diags := jsona.CompileSchema(schemaSrc)
	require.Empty(t, diags)

	got := jsona.Validate(`{ value: { integer: 11 } }`, compiled)
	require.Len(t, got, 1)
	assert.Equal(t, "ConstraintFailed", string(got[0].Kind))

	assert.Empty(t, jsona.Validate(`{ value: { integer: 5 } }`, compiled))
}

func TestValidateOnUnparsableDocument(t *testing.T) {
	compiled, diags := jsona.CompileSchema(`{ a: 1 }`)
	require.Empty(t, diags)

	got := jsona.Validate("{ a: \xff }", compiled)
	require.NotEmpty(t, got)
}
