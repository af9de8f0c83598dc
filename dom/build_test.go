package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONSuperset(t *testing.T) {
	node, diags := Parse(`{ "a": 1, "b": [true, false, null] }`)
	require.Empty(t, diags)

	got := ToJSON(node)
	assert.Equal(t, map[string]any{
		"a": int64(1),
		"b": []any{true, false, nil},
	}, got)
}

func TestParseAnnotationOnTrailingPosition(t *testing.T) {
	// Scenario 1 from the spec: `{ a: 1, @note }` -> JSON {"a":1}; the
	// object itself bears one trailing annotation `note=Null`.
	node, diags := Parse(`{ a: 1, @note }`)
	require.Empty(t, diags)

	obj, ok := node.(Object)
	require.True(t, ok)

	assert.Equal(t, map[string]any{"a": int64(1)}, ToJSON(obj))
	require.Len(t, obj.Entries, 1)
	require.Len(t, obj.Annotations(), 1)
	assert.Equal(t, "note", obj.Annotations()[0].Name)
	assert.Nil(t, obj.Annotations()[0].Value)
}

func TestParseAnnotationAttachment(t *testing.T) {
	// Scenario 2: `[ @arr "x", @up "y" ]` -> array has one annotation
	// `arr=Null`; "x" has none; "y" has one annotation `up=Null`.
	node, diags := Parse(`[ @arr "x", @up "y" ]`)
	require.Empty(t, diags)

	arr, ok := node.(Array)
	require.True(t, ok)

	require.Len(t, arr.Annotations(), 1)
	assert.Equal(t, "arr", arr.Annotations()[0].Name)

	require.Len(t, arr.Elements, 2)
	assert.Empty(t, arr.Elements[0].Annotations())

	up := arr.Elements[1].Annotations()
	require.Len(t, up, 1)
	assert.Equal(t, "up", up[0].Name)
}

func TestDuplicateKeyDiagnostic(t *testing.T) {
	node, diags := Parse(`{ a: 1, a: 2 }`)
	require.Len(t, diags, 1)
	assert.Equal(t, `duplicate key "a"`, diags[0].Message)

	obj := node.(Object)
	v, ok := obj.Get("a")
	require.True(t, ok)
	assert.Equal(t, int64(1), ToJSON(v))
}

func TestNumberBases(t *testing.T) {
	cases := map[string]int64{
		"0xFF": 255,
		"0b11": 3,
		"0o17": 15,
		"-0":   0,
	}

	for src, want := range cases {
		node, diags := Parse(src)
		require.Empty(t, diags, src)

		num, ok := node.(Number)
		require.True(t, ok, src)
		assert.Equal(t, want, num.Value.Int, src)
	}
}

func TestStringEscapes(t *testing.T) {
	node, diags := Parse(`"a\tbA\x42"`)
	require.Empty(t, diags)

	str := node.(String)
	assert.Equal(t, "a\tbAB", str.Value)
}

func TestEmptyDocumentIsMissingValue(t *testing.T) {
	node, diags := Parse(`  `)
	assert.Nil(t, node)
	require.Len(t, diags, 1)
	assert.Equal(t, "MissingValue", string(diags[0].Kind))
}

func TestGetPointer(t *testing.T) {
	node, diags := Parse(`{ a: [1, { b: 2 }] }`)
	require.Empty(t, diags)

	got, ok := Get(node, ParsePointer("/a/1/b"))
	require.True(t, ok)
	assert.Equal(t, int64(2), ToJSON(got))

	_, ok = Get(node, ParsePointer("/a/9"))
	assert.False(t, ok)
}
