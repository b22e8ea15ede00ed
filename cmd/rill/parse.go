package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rill/internal/diagfmt"
	"rill/internal/driver"
	"rill/internal/source"
)

func newParseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [flags] <file.rl|directory|->",
		Short: "Parse a rill source file or directory and print the tree",
		Long: `Parse reads one expression from a rill source file, standard input or every
*.rl file in a directory and prints the parsed trees`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{sessionAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParse(cmd, args[0])
		},
	}
	cmd.Flags().String("format", "compact", "output format (compact|tree|json)")
	cmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	return cmd
}

type parsedFileJSON struct {
	Path string                 `json:"path"`
	AST  *diagfmt.ASTNodeOutput `json:"ast,omitempty"`
}

func (a *app) runParse(cmd *cobra.Command, path string) error {
	defer a.dumpOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "compact", "tree", "json":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}

	kind, err := classifyInput(path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	var (
		fileSet *source.FileSet
		results []driver.Result
	)
	err = a.timer.Measure("parse", func() error {
		var runErr error
		fileSet, results, runErr = a.collect(ctx, cmd, kind, path, jobs, driver.ParseSource, driver.Parse, driver.ParseDir)
		return runErr
	})
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}

	failed, err := a.printDiagnostics(errOut, fileSet, results, withNotes)
	if err != nil {
		return err
	}

	dirMode := kind == inputDir
	if format == "json" {
		if err := writeParsedJSON(out, results, dirMode); err != nil {
			return err
		}
	} else {
		for i := range results {
			if err := a.writeParsed(out, &results[i], format, dirMode); err != nil {
				return err
			}
		}
	}

	if failed {
		return errDiagnostics
	}
	return nil
}

func (a *app) writeParsed(w io.Writer, res *driver.Result, format string, dirMode bool) error {
	if !res.Root.IsValid() {
		return nil
	}
	switch format {
	case "tree":
		if dirMode && !a.settings.quiet {
			if _, err := fmt.Fprintf(w, "== %s ==\n", res.Path); err != nil {
				return err
			}
		}
		return diagfmt.WriteTree(w, res.Tables, res.Root)
	default:
		line := diagfmt.Expr(res.Tables, res.Root)
		if dirMode {
			line = res.Path + ": " + line
		}
		_, err := fmt.Fprintln(w, line)
		return err
	}
}

// writeParsedJSON writes one tree for a single input and an array of
// {path, ast} objects for a directory.
func writeParsedJSON(w io.Writer, results []driver.Result, dirMode bool) error {
	if !dirMode {
		if len(results) == 0 || !results[0].Root.IsValid() {
			return nil
		}
		return diagfmt.FormatASTJSON(w, results[0].Tables, results[0].Root)
	}
	files := make([]parsedFileJSON, 0, len(results))
	for i := range results {
		entry := parsedFileJSON{Path: results[i].Path}
		if results[i].Root.IsValid() {
			node := diagfmt.BuildASTOutput(results[i].Tables, results[i].Root)
			entry.AST = &node
		}
		files = append(files, entry)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(files)
}

type (
	sourceRunner func(ctx context.Context, name string, content []byte, opts driver.Options) *driver.Result
	fileRunner   func(ctx context.Context, path string, opts driver.Options) (*driver.Result, error)
	dirRunner    func(ctx context.Context, dir string, opts driver.Options) (*source.FileSet, []driver.Result, error)
)

// collect runs one of the driver entry points for the kind of input.
func (a *app) collect(ctx context.Context, cmd *cobra.Command, kind inputKind, path string, jobs int,
	onSource sourceRunner, onFile fileRunner, onDir dirRunner) (*source.FileSet, []driver.Result, error) {
	switch kind {
	case inputStdin:
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		res := onSource(ctx, stdinName, content, a.driverOptions(jobs, nil))
		return res.FileSet, []driver.Result{*res}, nil
	case inputDir:
		return a.runDir(cmd.ErrOrStderr(), cmd.Name()+" "+path, path, func(sink driver.ProgressSink) (*source.FileSet, []driver.Result, error) {
			return onDir(ctx, path, a.driverOptions(jobs, sink))
		})
	default:
		res, err := onFile(ctx, path, a.driverOptions(jobs, nil))
		if err != nil {
			return nil, nil, err
		}
		return res.FileSet, []driver.Result{*res}, nil
	}
}
