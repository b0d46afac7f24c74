// Package app wires CLI parsing, logging, configuration, and the daemon
// controller into the process entrypoint.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/harkd/hark/internal/audio"
	"github.com/harkd/hark/internal/cli"
	"github.com/harkd/hark/internal/config"
	"github.com/harkd/hark/internal/daemon"
	"github.com/harkd/hark/internal/dispatch"
	"github.com/harkd/hark/internal/engine"
	"github.com/harkd/hark/internal/logging"
	"github.com/harkd/hark/internal/session"
	"github.com/harkd/hark/internal/version"
)

// Exit codes per failure class.
const (
	exitOK      = 0
	exitConfig  = 1
	exitUsage   = 2
	exitEngine  = 3
	exitRuntime = 4
)

// Runner executes the process with injectable collaborators for tests.
type Runner struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   *slog.Logger
	Engine   engine.Engine
	Listener daemon.Listener
	Spawner  dispatch.Spawner
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("hark"))
		return exitUsage
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("hark"))
		return exitOK
	}
	if parsed.ShowVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return exitOK
	}

	logger := r.Logger
	if logger == nil {
		logRuntime, err := logging.New()
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
			return exitConfig
		}
		defer func() { _ = logRuntime.Close() }()
		logger = logRuntime.Logger
	}

	store := config.NewStore(parsed.ConfigPaths)
	cfg, err := store.Load()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return exitConfig
	}
	logger.Info("config loaded",
		"model", cfg.ModelPath,
		"commands", len(cfg.Commands),
		"sources", cfg.SourcePaths,
	)

	eng := r.Engine
	if eng == nil {
		eng = engine.DeepSpeech{}
	}
	sess := session.New(logger, eng)
	if err := sess.EnsureLoaded(cfg); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load engine failed", "error", err.Error())
		return exitEngine
	}

	listener := r.Listener
	if listener == nil {
		listener = audio.NewListener(logger)
	}
	spawner := r.Spawner
	if spawner == nil {
		spawner = dispatch.Shell{}
	}

	controller := daemon.New(logger, store, sess, listener, spawner)

	if !parsed.Daemonize {
		if err := controller.RunOnce(ctx); err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return exitRuntime
		}
		return exitOK
	}

	logger.Info("daemon started", "pid", os.Getpid())

	wake := make(chan os.Signal, 1)
	signal.Notify(wake, syscall.SIGCONT, syscall.SIGUSR1, syscall.SIGHUP)
	defer signal.Stop(wake)

	// The signal path only posts triggers; the controller goroutine alone
	// touches configuration and engine state.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-wake:
				switch sig {
				case syscall.SIGHUP:
					logger.Debug("caught reload signal", "signal", sig.String())
					controller.Trigger(daemon.TriggerReload)
				default:
					logger.Debug("caught listen signal", "signal", sig.String())
					controller.Trigger(daemon.TriggerListen)
				}
			}
		}
	}()

	controller.Run(ctx)
	return exitOK
}
