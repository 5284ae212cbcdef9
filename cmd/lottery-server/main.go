// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// lottery-server accepts bet batches from agencies over TCP, runs the
// draw once every agency has finished, and answers winners queries.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/lottery/lib/betstore"
	"github.com/bureau-foundation/lottery/lib/clock"
	"github.com/bureau-foundation/lottery/lib/config"
	"github.com/bureau-foundation/lottery/lib/logging"
	"github.com/bureau-foundation/lottery/lib/process"
	"github.com/bureau-foundation/lottery/lib/service"
	"github.com/bureau-foundation/lottery/lib/version"
	"github.com/bureau-foundation/lottery/lottery"
	"github.com/bureau-foundation/lottery/server"
)

const binaryName = "lottery-server"

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

func run(args []string) error {
	var (
		configPath  string
		address     string
		backlog     int
		agencies    int
		logLevel    string
		showVersion bool
	)
	flags := pflag.NewFlagSet(binaryName, pflag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "path to lottery.yaml (default: $"+config.EnvironmentVariable+", else built-in defaults)")
	flags.StringVar(&address, "address", "", "TCP listen address (overrides server.address)")
	flags.IntVar(&backlog, "backlog", 0, "listen backlog (overrides server.listen_backlog)")
	flags.IntVar(&agencies, "agencies", 0, "number of agencies to wait for (overrides lottery.agency_amount)")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides logging.level)")
	flags.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if showVersion {
		version.Print(binaryName)
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if flags.Changed("address") {
		cfg.Server.Address = address
	}
	if flags.Changed("backlog") {
		cfg.Server.ListenBacklog = backlog
	}
	if flags.Changed("agencies") {
		cfg.Lottery.AgencyAmount = agencies
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	level, _ := cfg.Logging.SlogLevel()
	logger := logging.New(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := server.Listen(ctx, cfg.Server.Address, cfg.Server.ListenBacklog)
	if err != nil {
		return err
	}
	return serve(ctx, cfg, listener, logger, clock.Real())
}

// loadConfig reads path, or the file named by LOTTERY_CONFIG, or falls
// back to the built-in defaults when neither is set.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv(config.EnvironmentVariable) != "" {
		return config.Load()
	}
	cfg := config.Default()
	cfg.ExpandVariables()
	return cfg, nil
}

// serve runs the lottery server on listener until ctx is cancelled. It
// owns listener. cfg must already be valid. A nil logger discards.
func serve(ctx context.Context, cfg *config.Config, listener net.Listener, logger *slog.Logger, clk clock.Clock) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, err := betstore.Open(betstore.Config{
		Backend:       cfg.Storage.Backend,
		Path:          cfg.Storage.Path,
		WinningNumber: uint16(cfg.Storage.WinningNumber),
		Logger:        logger,
	})
	if err != nil {
		listener.Close()
		return fmt.Errorf("opening bet storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("closing bet storage failed", "error", err)
		}
	}()

	var onComplete func(lottery.Results)
	if cfg.Archive.Path != "" {
		archiver, err := newArchiver(cfg.Archive, logger)
		if err != nil {
			listener.Close()
			return err
		}
		onComplete = archiver.write
	}

	winnersMode := lottery.Block
	if cfg.Lottery.WinnersMode == config.WinnersNonBlocking {
		winnersMode = lottery.NoWait
	}
	coordinator, err := lottery.NewCoordinator(lottery.Config{
		AgencyAmount: cfg.Lottery.AgencyAmount,
		Storage:      store,
		WinnersMode:  winnersMode,
		OnComplete:   onComplete,
		Clock:        clk,
		Logger:       logger,
	})
	if err != nil {
		listener.Close()
		return err
	}

	lotteryServer := server.New(coordinator, server.Config{
		IdleTimeout:  cfg.Server.IdleTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Logger:       logger,
	})

	var socketDone chan struct{}
	if cfg.Status.SocketPath != "" {
		status := &statusService{
			coordinator: coordinator,
			server:      lotteryServer,
			clock:       clk,
			startedAt:   clk.Now(),
		}
		socketServer := service.NewSocketServer(cfg.Status.SocketPath, logger)
		status.registerActions(socketServer)

		socketDone = make(chan struct{})
		go func() {
			defer close(socketDone)
			if err := socketServer.Serve(ctx); err != nil {
				logger.Error("status socket failed", "error", err)
			}
		}()
	}

	logger.Info("lottery server running",
		"version", version.Info(),
		"agencies", cfg.Lottery.AgencyAmount,
		"winners_mode", cfg.Lottery.WinnersMode,
		"storage", cfg.Storage.Backend,
		"storage_path", cfg.Storage.Path,
	)

	err = lotteryServer.Serve(ctx, listener)

	cancel()
	if socketDone != nil {
		<-socketDone
	}
	logger.Info("lottery server stopped")
	return err
}
