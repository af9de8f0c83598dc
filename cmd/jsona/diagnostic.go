package main

import (
	"fmt"
	"io"
	"strings"

	"go.jsona.dev/jsona/cst"
)

// printDiagnostics renders diags against source in a codespan-style format:
// a `file:line:col: kind: message` header per diagnostic, followed by the
// offending source line with a caret span underneath. This is the one piece
// of rendering logic the spec calls out explicitly ("the CLI prints with a
// codespan-style renderer") without mandating a byte-for-byte layout, so the
// shape here is this command's own.
func printDiagnostics(w io.Writer, name, source string, diags []cst.Diagnostic) {
	lines := strings.Split(source, "\n")

	for _, d := range diags {
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n",
			name, d.Range.Start.Line+1, d.Range.Start.Column+1, d.Kind, d.Message)

		if d.Range.Start.Line < 0 || d.Range.Start.Line >= len(lines) {
			continue
		}

		line := lines[d.Range.Start.Line]
		fmt.Fprintf(w, "  %s\n", line)

		span := spanWidth(d.Range, line)
		fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", d.Range.Start.Column), strings.Repeat("^", span))
	}
}

// spanWidth returns how many carets to draw for a same-line range. Ranges
// that cross a line boundary are underlined to the end of their first line
// only.
func spanWidth(r cst.Range, line string) int {
	width := r.End.Column - r.Start.Column
	if r.End.Line != r.Start.Line {
		width = len(line) - r.Start.Column
	}

	if width < 1 {
		return 1
	}

	return width
}
