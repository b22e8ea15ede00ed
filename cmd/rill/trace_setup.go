package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"rill/internal/trace"
)

// setupTracing builds the tracer from the resolved settings and the
// remaining trace flags and attaches it to ctx.
func (a *app) setupTracing(cmd *cobra.Command, ctx context.Context) (context.Context, error) {
	flags := cmd.Flags()
	a.tracer = trace.Nop

	level, err := trace.ParseLevel(a.settings.traceLevel)
	if err != nil {
		return ctx, fmt.Errorf("invalid trace level: %w", err)
	}

	// If level is off and no output specified, skip tracing
	if level == trace.LevelOff && a.settings.traceOutput == "" {
		return trace.WithTracer(ctx, trace.Nop), nil
	}
	// an output without a level traces phases
	if level == trace.LevelOff {
		level = trace.LevelPhase
	}

	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return ctx, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return ctx, fmt.Errorf("invalid trace mode: %w", err)
	}

	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return ctx, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return ctx, fmt.Errorf("invalid trace format: %w", err)
	}

	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return ctx, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	heartbeatInterval, err := flags.GetDuration("trace-heartbeat")
	if err != nil {
		return ctx, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	cfg := trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: a.settings.traceOutput,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		cfg.Output = cmd.ErrOrStderr()
	}

	tracer, err := trace.New(cfg)
	if err != nil {
		return ctx, fmt.Errorf("failed to create tracer: %w", err)
	}
	a.tracer = tracer
	a.traceMode = mode
	a.traceFormat = format
	if format == trace.FormatAuto {
		a.traceFormat = trace.FormatText
	}
	a.heartbeat = trace.StartHeartbeat(tracer, cfg.Heartbeat)

	return trace.WithTracer(ctx, tracer), nil
}

func (a *app) closeTracing() {
	// Stop heartbeat first
	if a.heartbeat != nil {
		a.heartbeat.Stop()
		a.heartbeat = nil
	}
	if a.tracer == nil {
		return
	}
	if err := a.tracer.Flush(); err != nil {
		fmt.Fprintf(a.stderr, "trace: flush error: %v\n", err)
	}
	if err := a.tracer.Close(); err != nil {
		fmt.Fprintf(a.stderr, "trace: close error: %v\n", err)
	}
}
