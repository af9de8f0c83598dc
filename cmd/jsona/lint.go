package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"

	"go.jsona.dev/jsona"
	"go.jsona.dev/jsona/cst"
	"go.jsona.dev/jsona/dom"
)

func newLintCmd() *cobra.Command {
	var (
		schemaPath string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "lint [flags] FILES",
		Short: "Check JSONA documents, optionally against a schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return runLint(os.Stdout, args, schemaPath, cfg)
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to a JSONA schema document to validate against, "+
		"overriding the document's own @jsonaschema annotation and any rules[] match")
	cmd.Flags().StringVar(&configPath, "config", ".jsona", "path to the .jsona workspace config")

	return cmd
}

// runLint checks every file in files, resolving each one's schema
// association per the host contract's precedence (manual flag, then the
// document's own @jsonaschema annotation, then the config's rules[]) and
// falling back to a plain syntax check when none applies.
func runLint(stdout *os.File, files []string, manualSchema string, cfg *Config) error {
	found := false
	cache := map[string]*jsonschema.Schema{}

	for _, arg := range files {
		data, name, err := readInput(arg)
		if err != nil {
			return fmt.Errorf("reading %s: %w", arg, err)
		}

		node, parseDiags := jsona.Parse(data)

		resolved := cfg.ResolveSchema(name, manualSchema, jsonaschemaURL(node))

		var diags []cst.Diagnostic

		switch {
		case resolved == "":
			diags = parseDiags
		case strings.HasPrefix(resolved, "http://") || strings.HasPrefix(resolved, "https://"):
			return fmt.Errorf("%s: remote schema fetch (%s) is not supported by this CLI", name, resolved)
		default:
			compiled, ok := cache[resolved]
			if !ok {
				compiled, err = loadSchema(resolved)
				if err != nil {
					return err
				}

				cache[resolved] = compiled
			}

			diags = jsona.Validate(data, compiled)
		}

		if len(diags) > 0 {
			printDiagnostics(stdout, name, data, diags)

			found = true
		}
	}

	if found {
		os.Exit(1)
	}

	return nil
}

func loadSchema(path string) (*jsonschema.Schema, error) {
	data, name, err := readInput(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}

	compiled, diags := jsona.CompileSchema(data)
	if len(diags) > 0 {
		printDiagnostics(os.Stdout, name, data, diags)

		return nil, fmt.Errorf("schema %s failed to compile", name)
	}

	return compiled, nil
}

// jsonaschemaURL returns the value of a root-level @jsonaschema("url")
// annotation, or "" if node is nil or carries none.
func jsonaschemaURL(node dom.Node) string {
	if node == nil {
		return ""
	}

	for _, a := range node.Annotations() {
		if a.Name != "jsonaschema" {
			continue
		}

		if s, ok := a.Value.(dom.String); ok {
			return s.Value
		}
	}

	return ""
}
