package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rill/internal/diagfmt"
	"rill/internal/driver"
	"rill/internal/source"
)

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] <file.rl|directory|->",
		Short: "Type-check a rill source file or directory",
		Long: `Check parses and type-checks a rill source file, standard input or every
*.rl file in a directory, printing the type of each program and any diagnostics`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{sessionAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args[0])
		},
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("clear-cache", false, "drop cached results before checking")
	return cmd
}

type checkedFileJSON struct {
	Path        string                    `json:"path"`
	Type        string                    `json:"type,omitempty"`
	Cached      bool                      `json:"cached,omitempty"`
	Errors      int                       `json:"errors"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics"`
}

type checkOutputJSON struct {
	Files  []checkedFileJSON `json:"files"`
	Errors int               `json:"errors"`
}

func (a *app) runCheck(cmd *cobra.Command, path string) error {
	defer a.dumpOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "pretty", "json":
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
	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	if clearCache && a.cache != nil {
		if err := a.cache.DropAll(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
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
	err = a.timer.Measure("check", func() error {
		var runErr error
		fileSet, results, runErr = a.collect(ctx, cmd, kind, path, jobs, driver.CheckSource, driver.Check, driver.CheckDir)
		return runErr
	})
	if err != nil {
		return fmt.Errorf("checking failed: %w", err)
	}

	if format == "json" {
		failed, err := writeCheckJSON(out, fileSet, results, withNotes)
		if err != nil {
			return err
		}
		if failed {
			return errDiagnostics
		}
		return nil
	}

	failed, err := a.printDiagnostics(errOut, fileSet, results, withNotes)
	if err != nil {
		return err
	}
	if err := writeTypes(out, results, kind == inputDir); err != nil {
		return err
	}
	if failed {
		return errDiagnostics
	}
	return nil
}

func writeTypes(w io.Writer, results []driver.Result, dirMode bool) error {
	for i := range results {
		res := &results[i]
		if res.Type == "" {
			continue
		}
		line := res.Type
		if dirMode {
			line = res.Path + ": " + line
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeCheckJSON(w io.Writer, fileSet *source.FileSet, results []driver.Result, withNotes bool) (bool, error) {
	output := checkOutputJSON{Files: make([]checkedFileJSON, 0, len(results))}
	opts := diagfmt.JSONOpts{IncludePositions: true, IncludeNotes: withNotes}
	for i := range results {
		res := &results[i]
		fs := fileSet
		if res.FileSet != nil {
			fs = res.FileSet
		}
		errs := countErrors(res.Bag)
		output.Errors += errs
		output.Files = append(output.Files, checkedFileJSON{
			Path:        res.Path,
			Type:        res.Type,
			Cached:      res.Cached,
			Errors:      errs,
			Diagnostics: diagfmt.BuildDiagnosticsOutput(res.Bag, fs, opts),
		})
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return output.Errors > 0, encoder.Encode(output)
}
