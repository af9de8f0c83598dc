package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jsona.dev/jsona/dom"
)

func mustParse(t *testing.T, src string) dom.Node {
	t.Helper()

	node, diags := dom.Parse(src)
	require.Empty(t, diags, src)

	return node
}

func TestCompileDescribeAndSchemaAnnotations(t *testing.T) {
	// Scenario 5 from the spec: `value: { @describe("A value") integer: 3,
	// @schema({maximum: 10}) }` compiles to
	// properties.value.properties.integer = {type: integer, maximum: 10}
	// with the parent carrying description "A value".
	node := mustParse(t, `{ value: { @describe("A value") integer: 3, @schema({maximum: 10}) } }`)

	s, diags := Compile(node)
	require.Empty(t, diags)

	value := s.Properties["value"]
	require.NotNil(t, value)
	assert.Equal(t, "A value", value.Description)

	integer := value.Properties["integer"]
	require.NotNil(t, integer)
	assert.Equal(t, typeInteger, integer.Type)
	require.NotNil(t, integer.Maximum)
	assert.InDelta(t, 10.0, *integer.Maximum, 0)
}

func TestCompileRequiredAndOptional(t *testing.T) {
	node := mustParse(t, `{ name: @required "x", nickname: @optional "y" }`)

	s, diags := Compile(node)
	require.Empty(t, diags)

	assert.Contains(t, s.Required, "name")
	assert.NotContains(t, s.Required, "nickname")
}

func TestCompilePattern(t *testing.T) {
	node := mustParse(t, `{ "x-foo": @pattern("^x-") "bar" }`)

	s, diags := Compile(node)
	require.Empty(t, diags)

	assert.Nil(t, s.Properties)
	require.Contains(t, s.PatternProperties, "^x-")
	assert.Equal(t, typeString, s.PatternProperties["^x-"].Type)
}

func TestCompileBadPatternRegex(t *testing.T) {
	node := mustParse(t, `{ a: @pattern("[") "bar" }`)

	_, diags := Compile(node)
	require.Len(t, diags, 1)
	assert.Equal(t, "BadPatternRegex", string(diags[0].Kind))
}

func TestCompileCompound(t *testing.T) {
	node := mustParse(t, `@compound("oneOf") [1, "a"]`)

	s, diags := Compile(node)
	require.Empty(t, diags)

	require.Len(t, s.OneOf, 2)
	assert.Equal(t, typeInteger, s.OneOf[0].Type)
	assert.Equal(t, typeString, s.OneOf[1].Type)
}

func TestCompileDefAndRef(t *testing.T) {
	node := mustParse(t, `{
		thing: @def("Thing") { name: "x" },
		other: @ref("Thing"),
	}`)

	s, diags := Compile(node)
	require.Empty(t, diags)

	require.Contains(t, s.Defs, "Thing")
	assert.Equal(t, typeObject, s.Defs["Thing"].Type)

	assert.Equal(t, "#/$defs/Thing", s.Properties["thing"].Ref)
	assert.Equal(t, "#/$defs/Thing", s.Properties["other"].Ref)
}

func TestCompileUnresolvedRef(t *testing.T) {
	node := mustParse(t, `{ a: @ref("Missing") null }`)

	_, diags := Compile(node)
	require.Len(t, diags, 1)
	assert.Equal(t, "UnresolvedRef", string(diags[0].Kind))
}

func TestCompileAnyType(t *testing.T) {
	node := mustParse(t, `{ a: @anytype 3 }`)

	s, diags := Compile(node)
	require.Empty(t, diags)
	assert.Empty(t, s.Properties["a"].Type)
}

func TestCompileDefault(t *testing.T) {
	node := mustParse(t, `{ retries: 3, @default }`)

	s, diags := Compile(node)
	require.Empty(t, diags)

	retries := s.Properties["retries"]
	require.NotNil(t, retries)
	require.NotNil(t, retries.Default)
	assert.JSONEq(t, "3", string(retries.Default))
}

func TestCompileUnknownAnnotation(t *testing.T) {
	node := mustParse(t, `{ a: @bogus 1 }`)

	_, diags := Compile(node)
	require.Len(t, diags, 1)
	assert.Equal(t, "InvalidSchemaAnnotation", string(diags[0].Kind))
}

func TestCompileArrayItemsWidenType(t *testing.T) {
	node := mustParse(t, `{ nums: [1, 2.5] }`)

	s, diags := Compile(node)
	require.Empty(t, diags)

	items := s.Properties["nums"].Items
	require.NotNil(t, items)
	assert.Equal(t, typeNumber, items.Type)
}

func TestCompileEmptyDocument(t *testing.T) {
	s, diags := Compile(nil)
	require.Empty(t, diags)
	assert.True(t, isTrueSchema(s))
}
