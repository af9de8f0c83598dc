package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"go.jsona.dev/jsona"
	"go.jsona.dev/jsona/format"
)

func newFormatCmd(configPath *string) *cobra.Command {
	var (
		rawOptions []string
		check      bool
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "format [flags] FILES|-",
		Short: "Canonicalize JSONA documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			overrides, err := parseOptionFlags(rawOptions)
			if err != nil {
				return err
			}

			return runFormat(os.Stdout, cfg, args, overrides, check, force)
		},
	}

	cmd.Flags().StringArrayVar(&rawOptions, "option", nil, "override a formatting option as key=value (may be repeated)")
	cmd.Flags().BoolVar(&check, "check", false, "exit nonzero if a file is not already formatted, without writing")
	cmd.Flags().BoolVar(&force, "force", false, "format past parse errors instead of refusing")

	return cmd
}

func runFormat(stdout io.Writer, cfg *Config, files []string, overrides map[string]string, check, force bool) error {
	diagnosticsFound := false
	unformatted := false

	for _, arg := range files {
		data, name, err := readInput(arg)
		if err != nil {
			return fmt.Errorf("reading %s: %w", arg, err)
		}

		opts := cfg.ResolveFormatting(name)
		applyOptionOverrides(&opts, overrides)

		out, err := jsona.Format(data, opts, force)
		if err != nil {
			if errors.Is(err, format.ErrContainsErrors) {
				fmt.Fprintf(stdout, "%s: %v\n", name, err)
				diagnosticsFound = true

				continue
			}

			return fmt.Errorf("formatting %s: %w", name, err)
		}

		if check {
			if out != data {
				fmt.Fprintf(stdout, "%s would be reformatted\n", name)
				unformatted = true
			}

			continue
		}

		if err := writeOutput(arg, out); err != nil {
			return fmt.Errorf("writing %s: %w", arg, err)
		}
	}

	if diagnosticsFound || unformatted {
		os.Exit(1)
	}

	return nil
}

// parseOptionFlags splits "key=value" flag values into a lookup map,
// rejecting malformed entries as a usage error.
func parseOptionFlags(raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))

	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --option %q: expected key=value", kv)
		}

		out[key] = value
	}

	return out, nil
}

func applyOptionOverrides(opts *format.Options, overrides map[string]string) {
	if v, ok := overrides["indent"]; ok {
		opts.IndentString = v
	}

	if v, ok := overrides["trailing-comma"]; ok {
		opts.TrailingComma = v == "true"
	}

	if v, ok := overrides["trailing-newline"]; ok {
		opts.TrailingNewline = v == "true"
	}

	if v, ok := overrides["format-key"]; ok {
		opts.FormatKey = v == "true"
	}
}

func readInput(arg string) (text, name string, err error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", err
		}

		return string(data), "<stdin>", nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", "", err
	}

	return string(data), arg, nil
}

func writeOutput(arg, out string) error {
	if arg == "-" {
		_, err := os.Stdout.WriteString(out)

		return err
	}

	return os.WriteFile(arg, []byte(out), 0o644)
}
