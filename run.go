// Package entrygate runs the first phase of container startup: materialize
// configuration files from environment-derived bindings, block until every
// dependency target is reachable, then hand control to the main process.
package entrygate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/entrygate/entrygate/internal/bindings"
	"github.com/entrygate/entrygate/internal/gate"
	"github.com/entrygate/entrygate/internal/materialize"
	"github.com/entrygate/entrygate/internal/probe"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RunOptions control one startup run.
type RunOptions struct {
	// Env is the process environment as a map. Bindings are derived from it;
	// pass an explicit map in tests instead of mutating the real environment.
	Env map[string]string
	// RootDir is the directory tree the materializer rewrites in place.
	// Empty skips materialization.
	RootDir string
	// Excludes are doublestar globs, relative to RootDir, of files the
	// materializer must not touch.
	Excludes []string
	// Targets are checked in order, each with its own full Timeout window.
	Targets []probe.Target
	// Timeout is the per-target budget. Zero means DefaultTimeout.
	Timeout time.Duration
	// Interval is the gate's fixed poll interval. Zero means the gate default.
	Interval time.Duration
	// AttemptTimeout bounds one connection attempt. Zero means the gate
	// default.
	AttemptTimeout time.Duration
	// Probe checks a single target. Nil means TCP connect.
	Probe probe.Probe
	// Argv is the payload command to exec once the gate passes. Empty means
	// no handoff; Run returns instead.
	Argv []string
	// LogLevel for the zap logger built inside Run.
	LogLevel zapcore.Level
}

// Run materializes configuration, awaits dependency readiness, and on
// success execs opts.Argv, replacing the current process. When Argv is
// empty, or when any phase fails, Run returns. A gate timeout comes back as
// a *gate.TimeoutError so callers can map it to a distinct exit status; the
// payload command is never launched in that case.
func Run(ctx context.Context, opts RunOptions) error {
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(opts.LogLevel)
	logger, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("create zap logger: %w", err)
	}
	defer logger.Sync() // nolint
	l := logger.Sugar()

	// Config must be in place before anything talks to dependent services.
	if opts.RootDir != "" {
		bs := bindings.Derive(opts.Env)
		l.Debugf("derived %d bindings from environment", len(bs))
		if err := materialize.Apply(opts.RootDir, bs, opts.Excludes); err != nil {
			return fmt.Errorf("materialize config under %s: %w", opts.RootDir, err)
		}
		l.Infof("materialized %d bindings under %s", len(bs), opts.RootDir)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	g := &gate.Gate{
		Probe:          opts.Probe,
		Interval:       opts.Interval,
		AttemptTimeout: opts.AttemptTimeout,
		Log:            l,
	}
	out, err := g.Await(ctx, opts.Targets, timeout)
	if err != nil {
		return fmt.Errorf("await readiness: %w", err)
	}
	if err := out.Err(); err != nil {
		return err
	}

	if len(opts.Argv) == 0 {
		return nil
	}
	l.Infof("handing off to %s", strings.Join(opts.Argv, " "))
	// Flush before exec replaces the process image.
	logger.Sync() // nolint
	return Handoff(opts.Argv)
}
