package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"orderbook/internal/config"
	"orderbook/internal/driver"
	"orderbook/internal/engine"
)

func main() {
	inputPath := flag.String("input", "-", "path to the event input file, or - for stdin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	in := os.Stdin
	if *inputPath != "-" {
		f, err := os.Open(*inputPath)
		if err != nil {
			logger.Error("failed to open input", slog.String("path", *inputPath), slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	e := engine.New(logger)

	pruner := engine.NewDayOrderPruner(e, logger, cfg.PruneCutoffHour, cfg.PruneCutoffMinute, cfg.PruneSlack, cfg.PruneTickInterval)
	pruner.Start()

	// A SIGINT/SIGTERM while blocked reading the input (e.g. stdin piped
	// from a slow producer) still stops the pruner goroutine cleanly
	// before the process exits, rather than leaking it.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		pruner.Stop()
		os.Exit(130)
	}()

	runErr := driver.Run(e, in, logger)
	pruner.Stop()

	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
		os.Exit(1)
	}
	os.Exit(0)
}
