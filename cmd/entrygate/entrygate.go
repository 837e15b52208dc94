package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/entrygate/entrygate"
	"github.com/entrygate/entrygate/internal/bindings"
	"github.com/entrygate/entrygate/internal/flags"
	"github.com/entrygate/entrygate/internal/gate"
	"github.com/entrygate/entrygate/internal/probe"
	"github.com/peterbourgon/ff/v3/ffcli"
	"go.uber.org/zap/zapcore"
)

const flagHelp = `
entrygate gates container startup: it rewrites ${key} placeholders in config
files from environment-derived bindings, waits for dependency services to
accept connections, then execs the main process.
`

// exitUnavailable is EX_UNAVAILABLE from sysexits: a dependency never became
// reachable. Distinct from exit 1 so a supervisor can tell a gate timeout
// from a misconfiguration that stopped startup before the gate ran.
const exitUnavailable = 69

func run() error {
	rootFlagSet := flag.NewFlagSet("root", flag.ExitOnError)
	rootCmd := &ffcli.Command{
		ShortUsage: "entrygate <subcommand> [options...]",
		LongHelp:   flagHelp[1 : len(flagHelp)-1], // remove lead/trail newlines
		FlagSet:    rootFlagSet,
		Subcommands: []*ffcli.Command{
			newRunCmd(),
			newWaitCmd(),
			newRenderCmd(),
		},
	}
	rootCmd.Exec = func(ctx context.Context, args []string) error {
		fmt.Println(ffcli.DefaultUsageFunc(rootCmd))
		os.Exit(1)
		return nil
	}
	return rootCmd.ParseAndRun(context.Background(), os.Args[1:])
}

// gateFlags are the flags shared by the run and wait subcommands.
type gateFlags struct {
	services       *[]string
	timeout        *int
	interval       *time.Duration
	attemptTimeout *time.Duration
	probeName      *string
	pgUser         *string
	pgDatabase     *string
	logLevel       *string
}

func addGateFlags(fset *flag.FlagSet) *gateFlags {
	return &gateFlags{
		services:       flags.Strings(fset, "service", nil, "host:port target to wait for; repeatable, appended after $SERVICES"),
		timeout:        fset.Int("timeout", 0, "per-target timeout in seconds; defaults to $TIMEOUT, then 60"),
		interval:       fset.Duration("interval", gate.DefaultInterval, "poll interval between connection attempts"),
		attemptTimeout: fset.Duration("attempt-timeout", gate.DefaultAttemptTimeout, "bound on a single connection attempt"),
		probeName:      fset.String("probe", "tcp", "readiness probe: tcp, http, postgres, or docker"),
		pgUser:         fset.String("postgres-user", "", "user for the postgres probe"),
		pgDatabase:     fset.String("postgres-database", "", "database for the postgres probe"),
		logLevel:       fset.String("log-level", "info", "zap log level: debug, info, warn, error"),
	}
}

// resolve turns flags plus the environment into gate options.
func (gf *gateFlags) resolve(env map[string]string) (targets []probe.Target, timeout time.Duration, p probe.Probe, lvl zapcore.Level, err error) {
	targets, err = entrygate.ServicesFromEnv(env)
	if err != nil {
		return nil, 0, nil, 0, err
	}
	for _, s := range *gf.services {
		t, err := probe.ParseTarget(s)
		if err != nil {
			return nil, 0, nil, 0, err
		}
		targets = append(targets, t)
	}

	if *gf.timeout > 0 {
		timeout = time.Duration(*gf.timeout) * time.Second
	} else {
		timeout, err = entrygate.TimeoutFromEnv(env)
		if err != nil {
			return nil, 0, nil, 0, err
		}
	}

	switch *gf.probeName {
	case "tcp":
		p = probe.TCP{}
	case "http":
		p = probe.HTTP{}
	case "postgres":
		p = probe.Postgres{User: *gf.pgUser, Database: *gf.pgDatabase}
	case "docker":
		p, err = probe.NewDocker()
		if err != nil {
			return nil, 0, nil, 0, err
		}
	default:
		return nil, 0, nil, 0, fmt.Errorf("unknown probe %q; want tcp, http, postgres, or docker", *gf.probeName)
	}

	if err := lvl.Set(*gf.logLevel); err != nil {
		return nil, 0, nil, 0, fmt.Errorf("bad log level %q: %w", *gf.logLevel, err)
	}
	return targets, timeout, p, lvl, nil
}

func newRunCmd() *ffcli.Command {
	fset := flag.NewFlagSet("run", flag.ExitOnError)
	rootDir := fset.String("root", os.Getenv("ENTRYGATE_ROOT"), "directory tree to materialize; empty skips materialization")
	excludes := flags.Strings(fset, "exclude", nil, "glob of files to skip during materialization, relative to --root; repeatable")
	gf := addGateFlags(fset)
	return &ffcli.Command{
		Name:       "run",
		ShortUsage: "entrygate run [options...] -- cmd [args...]",
		ShortHelp:  "materializes config, waits for services, then execs cmd",
		FlagSet:    fset,
		Exec: func(ctx context.Context, args []string) error {
			env := bindings.FromEnviron(os.Environ())
			targets, timeout, p, lvl, err := gf.resolve(env)
			if err != nil {
				return err
			}
			return entrygate.Run(ctx, entrygate.RunOptions{
				Env:            env,
				RootDir:        *rootDir,
				Excludes:       *excludes,
				Targets:        targets,
				Timeout:        timeout,
				Interval:       *gf.interval,
				AttemptTimeout: *gf.attemptTimeout,
				Probe:          p,
				Argv:           args,
				LogLevel:       lvl,
			})
		},
	}
}

func newWaitCmd() *ffcli.Command {
	fset := flag.NewFlagSet("wait", flag.ExitOnError)
	gf := addGateFlags(fset)
	return &ffcli.Command{
		Name:       "wait",
		ShortUsage: "entrygate wait [options...]",
		ShortHelp:  "waits for services to accept connections, without exec",
		FlagSet:    fset,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("wait takes no arguments; use run to exec a command")
			}
			env := bindings.FromEnviron(os.Environ())
			targets, timeout, p, lvl, err := gf.resolve(env)
			if err != nil {
				return err
			}
			return entrygate.Run(ctx, entrygate.RunOptions{
				Targets:        targets,
				Timeout:        timeout,
				Interval:       *gf.interval,
				AttemptTimeout: *gf.attemptTimeout,
				Probe:          p,
				LogLevel:       lvl,
			})
		},
	}
}

func newRenderCmd() *ffcli.Command {
	fset := flag.NewFlagSet("render", flag.ExitOnError)
	rootDir := fset.String("root", os.Getenv("ENTRYGATE_ROOT"), "directory tree to materialize")
	excludes := flags.Strings(fset, "exclude", nil, "glob of files to skip, relative to --root; repeatable")
	logLevel := fset.String("log-level", "info", "zap log level: debug, info, warn, error")
	return &ffcli.Command{
		Name:       "render",
		ShortUsage: "entrygate render --root dir [options...]",
		ShortHelp:  "rewrites ${key} placeholders from environment bindings",
		FlagSet:    fset,
		Exec: func(ctx context.Context, args []string) error {
			if *rootDir == "" {
				return fmt.Errorf("render: --root (or $ENTRYGATE_ROOT) must be set")
			}
			var lvl zapcore.Level
			if err := lvl.Set(*logLevel); err != nil {
				return fmt.Errorf("bad log level %q: %w", *logLevel, err)
			}
			return entrygate.Run(ctx, entrygate.RunOptions{
				Env:      bindings.FromEnviron(os.Environ()),
				RootDir:  *rootDir,
				Excludes: *excludes,
				LogLevel: lvl,
			})
		},
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Printf("ERROR: %s\n", err.Error())
		var timeoutErr *gate.TimeoutError
		if errors.As(err, &timeoutErr) {
			os.Exit(exitUnavailable)
		}
		os.Exit(1)
	}
}
