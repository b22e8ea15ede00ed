package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rill/internal/diag"
	"rill/internal/driver"
	"rill/internal/observ"
	"rill/internal/prof"
	"rill/internal/trace"
)

// sessionAnnotation marks commands that load the manifest and set up
// tracing before they run.
const sessionAnnotation = "rill/session"

// app holds the state shared by one invocation of the CLI.
type app struct {
	settings settings
	manifest *projectManifest
	cache    *driver.DiskCache
	timer    *observ.Timer
	profiler *prof.Session
	stderr   io.Writer

	tracer      trace.Tracer
	traceMode   trace.StorageMode
	traceFormat trace.Format
	heartbeat   *trace.Heartbeat
	span        *trace.Span
	ready       bool
}

// settings are the effective options after merging flags over rill.toml.
type settings struct {
	color          uiMode
	quiet          bool
	timings        bool
	maxDiagnostics int
	ui             uiMode
	cacheEnabled   bool
	cacheDir       string
	traceLevel     string
	traceOutput    string
	profile        prof.Options
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[sessionAnnotation] == "" {
		return nil
	}
	a.stderr = cmd.ErrOrStderr()

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	manifest, _, err := loadProjectManifest(wd)
	if err != nil {
		return fmt.Errorf("%s: %w", diag.ProjManifestError.ID(), err)
	}
	a.manifest = manifest

	s, err := resolveSettings(cmd, manifest)
	if err != nil {
		return err
	}
	a.settings = s

	if s.timings {
		a.timer = observ.NewTimer()
	}
	if s.cacheEnabled {
		cache, err := driver.OpenDiskCache(s.cacheDir)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		a.cache = cache
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, err = a.setupTracing(cmd, ctx)
	if err != nil {
		return err
	}
	if s.profile.Enabled() {
		if a.profiler, err = prof.Start(s.profile); err != nil {
			a.closeTracing()
			return err
		}
	}
	span, ctx := trace.BeginContext(ctx, trace.ScopeDriver, cmd.Name())
	a.span = span
	cmd.SetContext(ctx)
	a.ready = true
	return nil
}

// finish closes what setup opened. On failure the ring buffer, if tracing
// kept one, is dumped to stderr.
func (a *app) finish(err error) {
	if !a.ready {
		return
	}
	a.ready = false

	detail := ""
	if err != nil {
		detail = err.Error()
	}
	a.span.End(detail)

	if a.timer != nil && !a.settings.quiet {
		fmt.Fprint(a.stderr, a.timer.Summary())
	}
	if err != nil && a.traceMode == trace.ModeRing {
		a.dumpTrace()
	}
	a.closeTracing()
	if perr := a.profiler.Stop(); perr != nil {
		fmt.Fprintf(a.stderr, "rill: failed to write profiles: %v\n", perr)
	}
}

// dumpOnPanic writes the trace ring before re-panicking.
func (a *app) dumpOnPanic() {
	if r := recover(); r != nil {
		a.dumpTrace()
		panic(r)
	}
}

func (a *app) dumpTrace() {
	ring, ok := trace.RingOf(a.tracer)
	if !ok {
		return
	}
	fmt.Fprintln(a.stderr, "trace: most recent events")
	if err := ring.Dump(a.stderr, a.traceFormat); err != nil {
		fmt.Fprintf(a.stderr, "trace: dump error: %v\n", err)
	}
}

func (a *app) driverOptions(jobs int, sink driver.ProgressSink) driver.Options {
	return driver.Options{
		MaxDiagnostics: a.settings.maxDiagnostics,
		Timings:        a.settings.timings,
		Cache:          a.cache,
		Sink:           sink,
		Jobs:           jobs,
	}
}

// resolveSettings reads the persistent flags. A flag given on the command
// line wins over rill.toml; otherwise the manifest value, when set, wins
// over the flag default.
func resolveSettings(cmd *cobra.Command, manifest *projectManifest) (settings, error) {
	flags := cmd.Flags()
	var s settings
	var cfg projectConfig
	if manifest != nil {
		cfg = manifest.Config
	}

	colorStr, err := flags.GetString("color")
	if err != nil {
		return s, fmt.Errorf("failed to get color flag: %w", err)
	}
	if !flags.Changed("color") && cfg.Diagnostics.Color != "" {
		colorStr = cfg.Diagnostics.Color
	}
	if s.color, err = readColorMode(colorStr); err != nil {
		return s, err
	}

	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return s, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}

	if s.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return s, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if !flags.Changed("max-diagnostics") && cfg.Diagnostics.Max > 0 {
		s.maxDiagnostics = cfg.Diagnostics.Max
	}
	if err := validateMaxDiagnostics(s.maxDiagnostics); err != nil {
		return s, fmt.Errorf("invalid --max-diagnostics: %w", err)
	}

	uiStr, err := flags.GetString("ui")
	if err != nil {
		return s, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if s.ui, err = readUIMode(uiStr); err != nil {
		return s, err
	}

	if s.cacheEnabled, err = flags.GetBool("cache"); err != nil {
		return s, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if !flags.Changed("cache") && cfg.Cache.Enabled {
		s.cacheEnabled = true
	}
	if s.cacheDir, err = flags.GetString("cache-dir"); err != nil {
		return s, fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	if s.cacheDir == "" && manifest != nil {
		s.cacheDir = manifest.resolvePath(cfg.Cache.Dir)
	}
	if s.cacheDir == "" && s.cacheEnabled {
		if s.cacheDir, err = driver.DefaultCacheDir("rill"); err != nil {
			return s, fmt.Errorf("failed to locate cache directory: %w", err)
		}
	}

	if s.traceLevel, err = flags.GetString("trace-level"); err != nil {
		return s, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if !flags.Changed("trace-level") && cfg.Trace.Level != "" {
		s.traceLevel = cfg.Trace.Level
	}
	if s.traceOutput, err = flags.GetString("trace"); err != nil {
		return s, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if !flags.Changed("trace") && cfg.Trace.Output != "" {
		s.traceOutput = cfg.Trace.Output
		if manifest != nil && s.traceOutput != "-" {
			s.traceOutput = manifest.resolvePath(s.traceOutput)
		}
	}

	if s.profile.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return s, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if s.profile.Mem, err = flags.GetString("mem-profile"); err != nil {
		return s, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if s.profile.RuntimeTrace, err = flags.GetString("runtime-trace"); err != nil {
		return s, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	return s, nil
}
