package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/reglet-transitions/parser"
	"github.com/reglet-dev/reglet-transitions/validation"
)

func newValidateCmd(cfg *config) *cobra.Command {
	var normalize bool

	cmd := &cobra.Command{
		Use:   "validate PATH...",
		Short: "Validate transition lists",
		Long: `Validates every file against the registered transition kinds and the
capabilities of --host. A PATH is a file, a directory (searched for
*.yaml, *.yml and *.json files), or a quoted glob such as 'lights/**/*.yaml'.
Use "-" to read YAML from stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, cfg, args, normalize)
		},
	}
	cmd.Flags().BoolVar(&normalize, "normalize", false, "Print the validated lists with all defaults filled in")
	return cmd
}

type fileResult struct {
	*validation.ValidationResult
	File string `json:"file"`
}

func runValidate(cmd *cobra.Command, cfg *config, args []string, normalize bool) error {
	files, err := expandPaths(args)
	if err != nil {
		return err
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	results := make([]fileResult, 0, len(files))
	invalid := 0
	for _, file := range files {
		data, format, err := readInput(cmd.InOrStdin(), file)
		if err != nil {
			return err
		}

		list, err := svc.ValidateBytes(data, format, cfg.Host)
		res := fileResult{File: file, ValidationResult: validation.NewValidationResult(list, err)}
		if !res.Valid {
			invalid++
		}
		results = append(results, res)

		if cfg.Output == "json" {
			continue
		}
		printResult(out, res)
		if normalize && res.Valid {
			normalized, err := parser.MarshalYAML(list.Raw())
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", file, err)
			}
			fmt.Fprint(out, string(normalized))
		}
	}

	if cfg.Output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d files invalid", invalid, len(files))
	}
	return nil
}

func printResult(w io.Writer, res fileResult) {
	if res.Valid {
		fmt.Fprintf(w, "%s: ok (%d transitions)\n", res.File, len(res.Names))
		return
	}
	fmt.Fprintf(w, "%s: %d errors\n", res.File, len(res.Errors))
	for _, e := range res.Errors {
		switch {
		case e.Index < 0:
			fmt.Fprintf(w, "  %s\n", e.Message)
		case e.Field != "":
			fmt.Fprintf(w, "  transitions[%d].%s.%s: %s [%s]\n", e.Index, e.Kind, e.Field, e.Message, e.Code)
		case e.Kind != "":
			fmt.Fprintf(w, "  transitions[%d].%s: %s [%s]\n", e.Index, e.Kind, e.Message, e.Code)
		default:
			fmt.Fprintf(w, "  transitions[%d]: %s [%s]\n", e.Index, e.Message, e.Code)
		}
	}
}

// configPattern matches transition files below a directory.
const configPattern = "**/*.{yaml,yml,json}"

// expandPaths resolves directories and glob patterns into a sorted file
// list per argument. Plain files and "-" are kept as given.
func expandPaths(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if arg == "-" {
			files = append(files, arg)
			continue
		}

		pattern := arg
		if info, err := os.Stat(arg); err == nil {
			if !info.IsDir() {
				files = append(files, arg)
				continue
			}
			pattern = filepath.Join(arg, filepath.FromSlash(configPattern))
		} else if !doublestar.ValidatePathPattern(arg) || !hasMeta(arg) {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no transition files match %s", arg)
		}
		slices.Sort(matches)
		files = append(files, matches...)
	}
	return files, nil
}

func hasMeta(path string) bool {
	for _, c := range path {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
