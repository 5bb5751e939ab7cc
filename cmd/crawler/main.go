package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/riskibarqy/ga-meta/internal/app"
	"github.com/riskibarqy/ga-meta/internal/config"
	"github.com/riskibarqy/ga-meta/internal/domain/jobrun"
	"github.com/riskibarqy/ga-meta/internal/observability"
	"github.com/riskibarqy/ga-meta/internal/platform/logging"
)

var errUsage = errors.New("unknown command")

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	base := logging.NewJSON(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.AppEnv)
	logger, drainLogs, err := observability.InitBetterStack(cfg, base)
	if err != nil {
		panic(err)
	}
	logging.SetDefault(logger)

	run, err := runCommand(cfg, logger, os.Args[1:])
	if errors.Is(err, errUsage) {
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("crawler command failed", "command", os.Args[1], "run_id", run.ID, "error", err)
		_ = drainLogs(context.Background())
		_ = logger.Sync()
		os.Exit(1)
	}

	logger.Info("crawler command finished", "command", os.Args[1], "run_id", run.ID, "summary", run.Summary)
	_ = drainLogs(context.Background())
	_ = logger.Sync()
}

func runCommand(cfg config.Config, logger *logging.Logger, args []string) (jobrun.Run, error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return jobrun.Run{}, err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	container, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return jobrun.Run{}, err
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Warn("close app failed", "error", err)
		}
	}()

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "incremental":
		return container.Jobs.RunCrawl(ctx, nil)
	case "historical":
		if len(args) < 2 {
			return jobrun.Run{}, fmt.Errorf("historical requires a start event id")
		}
		startID, err := strconv.ParseInt(strings.TrimSpace(args[1]), 10, 64)
		if err != nil {
			return jobrun.Run{}, fmt.Errorf("invalid start event id %q: %w", args[1], err)
		}
		return container.Jobs.RunCrawl(ctx, &startID)
	case "cards":
		return container.Jobs.RunCardSync(ctx)
	case "meta":
		return container.Jobs.RunMetaSnapshot(ctx)
	default:
		return jobrun.Run{}, errUsage
	}
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <incremental|historical|cards|meta> [args]\n", name)
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s incremental\n", name)
	fmt.Fprintf(os.Stderr, "  %s historical 1\n", name)
	fmt.Fprintf(os.Stderr, "  %s cards\n", name)
	fmt.Fprintf(os.Stderr, "  %s meta\n", name)
}
