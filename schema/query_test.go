package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jsona.dev/jsona/dom"
)

func TestQueryObjectAndArray(t *testing.T) {
	node := mustParse(t, `{
		thing: @def("Thing") { name: "x" },
		list: [ @ref("Thing") null ],
		self: @ref("Thing"),
	}`)

	s, diags := Compile(node)
	require.Empty(t, diags)

	got, ok := Query(s, dom.ParsePointer("/thing/name"))
	require.True(t, ok)
	assert.Equal(t, typeString, got.Type)

	got, ok = Query(s, dom.ParsePointer("/list/0/name"))
	require.True(t, ok)
	assert.Equal(t, typeString, got.Type)

	got, ok = Query(s, dom.ParsePointer("/self/name"))
	require.True(t, ok)
	assert.Equal(t, typeString, got.Type)
}

func TestQueryMissingPathFails(t *testing.T) {
	node := mustParse(t, `{ a: 1 }`)

	s, diags := Compile(node)
	require.Empty(t, diags)

	_, ok := Query(s, dom.ParsePointer("/b"))
	assert.False(t, ok)
}

func TestQueryPatternProperty(t *testing.T) {
	node := mustParse(t, `{ "x-foo": @pattern("^x-") "bar" }`)

	s, diags := Compile(node)
	require.Empty(t, diags)

	got, ok := Query(s, dom.ParsePointer("/x-anything"))
	require.True(t, ok)
	assert.Equal(t, typeString, got.Type)
}
