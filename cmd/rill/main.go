package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rill/internal/driver"
	"rill/internal/version"
)

// errDiagnostics is returned by commands whose diagnostics contain errors.
// They have already been printed.
var errDiagnostics = errors.New("errors reported")

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "rill",
		Short: "Parser and type checker for rill list expressions",
		Long:  `rill parses and type-checks bracketed list expressions and reports diagnostics`,

		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.AddCommand(newParseCmd(a))
	root.AddCommand(newCheckCmd(a))
	root.AddCommand(newVersionCmd())

	flags := root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", driver.DefaultMaxDiagnostics, "maximum number of diagnostics per file")
	flags.String("ui", "auto", "progress UI for directory runs (auto|on|off)")
	flags.Bool("cache", false, "serve check results from the on-disk cache")
	flags.String("cache-dir", "", "cache directory (default: $XDG_CACHE_HOME/rill)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	flags.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")
	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")

	return root
}

// main executes the root command. Any error, including error diagnostics,
// exits with status 1.
func main() {
	a := &app{}
	root := newRootCmd(a)
	err := root.Execute()
	a.finish(err)
	if err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintf(os.Stderr, "rill: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
