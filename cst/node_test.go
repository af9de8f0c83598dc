package cst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTripsSourceText(t *testing.T) {
	srcs := []string{
		``,
		`   `,
		`42`,
		`"hello"`,
		`[1, 2, 3]`,
		`{ a: 1, b: [2, 3] }`,
		"// a comment\n{ a: 1 /* trailing */ }\n",
		`@describe("x") { a: 1 }`,
		`[ @arr "x", @up "y" ]`,
	}

	for _, src := range srcs {
		node, _ := Parse(src)
		assert.Equal(t, src, node.Text(), "round-trip for %q", src)

		var leafText string
		for _, leaf := range node.Leaves() {
			leafText += leaf.Text()
		}
		assert.Equal(t, src, leafText, "leaf concatenation for %q", src)
	}
}

func TestParseEmptyDocumentHasNoValue(t *testing.T) {
	node, diags := Parse("   ")
	require.Empty(t, diags)

	var sig []*Node
	for _, c := range node.SignificantChildren() {
		sig = append(sig, c)
	}
	assert.Empty(t, sig)
}

func TestParseObjectShape(t *testing.T) {
	node, diags := Parse(`{ a: 1, b: 2 }`)
	require.Empty(t, diags)

	root := node.SignificantChildren()
	require.Len(t, root, 1)

	val := root[0]
	require.Equal(t, KindValue, val.Kind())

	core := val.SignificantChildren()
	require.Len(t, core, 1)
	require.Equal(t, KindObject, core[0].Kind())

	entries := []*Node{}
	for _, c := range core[0].SignificantChildren() {
		if c.Kind() == KindEntry {
			entries = append(entries, c)
		}
	}
	assert.Len(t, entries, 2)
}

func TestParseLeadingAnnotationOnValue(t *testing.T) {
	node, diags := Parse(`@describe("x") 1`)
	require.Empty(t, diags)

	root := node.SignificantChildren()
	require.Len(t, root, 1)

	children := root[0].SignificantChildren()
	require.Len(t, children, 2)
	assert.Equal(t, KindAnnotations, children[0].Kind())
	assert.Equal(t, KindScalar, children[1].Kind())
}

func TestParseFirstPositionArrayAnnotationAttachesToContainer(t *testing.T) {
	node, diags := Parse(`[ @arr "x", @up "y" ]`)
	require.Empty(t, diags)

	val := node.SignificantChildren()[0]
	arr := val.SignificantChildren()[0]
	require.Equal(t, KindArray, arr.Kind())

	// sig[0] is the '[' token; the container's own annotations follow it.
	sig := arr.SignificantChildren()
	require.GreaterOrEqual(t, len(sig), 2)
	assert.Equal(t, KindAnnotations, sig[1].Kind(), "first annotation run binds to the container")

	// The first element value ("x") carries no annotations of its own.
	var sawValue bool
	for _, c := range sig {
		if c.Kind() == KindValue {
			inner := c.SignificantChildren()
			require.NotEmpty(t, inner)
			if inner[0].Kind() == KindScalar && inner[0].Text() == `"x"` {
				sawValue = true
				assert.Len(t, inner, 1, `"x" should have no leading annotation`)
			}
		}
	}
	assert.True(t, sawValue)
}

func TestParseTrailingContainerAnnotation(t *testing.T) {
	node, diags := Parse(`{ a: 1, @note }`)
	require.Empty(t, diags)

	val := node.SignificantChildren()[0]
	obj := val.SignificantChildren()[0]
	require.Equal(t, KindObject, obj.Kind())

	sig := obj.SignificantChildren()
	require.NotEmpty(t, sig)
	last := sig[len(sig)-1]
	assert.Equal(t, KindAnnotations, last.Kind())
}

func TestParseAnnotationBetweenEntriesAttachesToNextKey(t *testing.T) {
	node, diags := Parse(`{ a: 1, @note b: 2 }`)
	require.Empty(t, diags)

	val := node.SignificantChildren()[0]
	obj := val.SignificantChildren()[0]
	require.Equal(t, KindObject, obj.Kind())

	sig := obj.SignificantChildren()

	// The object's own annotation list stays empty: @note belongs to b, not
	// to the object, even though it sits between two entries.
	for _, c := range sig {
		assert.NotEqual(t, KindAnnotations, c.Kind(), "@note should not attach to the object itself")
	}

	var sawEntryB bool

	for _, c := range sig {
		if c.Kind() != KindEntry {
			continue
		}

		key := c.SignificantChildren()[0]
		if key.Kind() != KindKey || key.Text() != "b" {
			continue
		}

		sawEntryB = true

		entryValue := c.SignificantChildren()[2] // Key, ':', Value
		require.Equal(t, KindValue, entryValue.Kind())

		inner := entryValue.SignificantChildren()
		require.NotEmpty(t, inner)
		assert.Equal(t, KindAnnotations, inner[0].Kind(), "@note forwards as b's leading annotation")
	}

	assert.True(t, sawEntryB)
}

func TestParseMissingClosingBracketProducesDiagnostic(t *testing.T) {
	_, diags := Parse(`[1, 2`)
	require.NotEmpty(t, diags)
	assert.Equal(t, KindMissingDelimiter, diags[0].Kind)
}

func TestParseAnnotationInsideAnnotationValueIsRejected(t *testing.T) {
	_, diags := Parse(`@foo(@bar) 1`)
	require.NotEmpty(t, diags)

	var found bool
	for _, d := range diags {
		if d.Kind == KindAnnotationInsideAnnotation {
			found = true
		}
	}
	assert.True(t, found)
}
