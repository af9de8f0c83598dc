package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.jsona.dev/jsona"
	"go.jsona.dev/jsona/dom"
)

func newGetCmd() *cobra.Command {
	var (
		file            string
		showAnnotations bool
	)

	cmd := &cobra.Command{
		Use:   "get [flags] POINTER",
		Short: "Look up a value in a JSONA document by JSON Pointer",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runGet(os.Stdout, file, args[0], showAnnotations)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "input file (- for stdin)")
	cmd.Flags().BoolVarP(&showAnnotations, "all", "A", false, "include annotations in the output")

	return cmd
}

func runGet(stdout *os.File, file, pointer string, showAnnotations bool) error {
	data, name, err := readInput(file)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}

	root, diags := jsona.Parse(data)
	if len(diags) > 0 {
		printDiagnostics(stdout, name, data, diags)

		return fmt.Errorf("%s has parse errors", name)
	}

	got, ok := dom.Get(root, dom.ParsePointer(pointer))
	if !ok {
		return fmt.Errorf("pointer %q not found in %s", pointer, name)
	}

	var out any = dom.ToJSON(got)
	if showAnnotations {
		out = dom.ToAST(got)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}
