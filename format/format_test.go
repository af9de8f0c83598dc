package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jsona.dev/jsona/cst"
)

func mustFormat(t *testing.T, src string, opts Options) string {
	t.Helper()

	root, _ := cst.Parse(src)
	out, err := Format(root, opts, false)
	require.NoError(t, err)

	return out
}

func TestFormatIdempotence(t *testing.T) {
	// Scenario 3: `{a:1,b:[1,2,],}` with defaults -> `{ a: 1, b: [1, 2] }`.
	out := mustFormat(t, `{a:1,b:[1,2,],}`, Options{})
	assert.Equal(t, `{ a: 1, b: [1, 2] }`, out)

	root2, _ := cst.Parse(out)
	out2, err := Format(root2, Options{}, false)
	require.NoError(t, err)
	assert.Equal(t, out, out2)
}

func TestFormatMultilinePreservation(t *testing.T) {
	src := "[\n  1,\n  2\n]"
	out := mustFormat(t, src, Options{})
	assert.Contains(t, out, "\n")

	single := mustFormat(t, "[1, 2]", Options{})
	assert.NotContains(t, single, "\n")
}

func TestFormatTrailingCommaOption(t *testing.T) {
	src := "[\n  1,\n  2\n]"
	out := mustFormat(t, src, Options{TrailingComma: true})
	assert.Contains(t, out, "2,\n")
}

func TestFormatTrailingAnnotation(t *testing.T) {
	out := mustFormat(t, `{ a: 1, @note }`, Options{})
	assert.Equal(t, `{ a: 1, @note }`, out)
}

func TestFormatBailsOnErrors(t *testing.T) {
	root, diags := cst.Parse(`{ a: `)
	require.NotEmpty(t, diags)

	_, err := Format(root, Options{}, false)
	assert.ErrorIs(t, err, ErrContainsErrors)

	out, err := Format(root, Options{}, true)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestFormatTrailingNewline(t *testing.T) {
	out := mustFormat(t, `1`, Options{TrailingNewline: true})
	assert.Equal(t, "1\n", out)
}
