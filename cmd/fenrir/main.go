// Command fenrir runs a standalone Engine API server: the authenticated
// control surface an execution-layer node exposes to its paired consensus
// client. It wires the core engineapi package to in-memory collaborators,
// suitable for local experimentation and integration testing against real
// consensus-client software.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fenrir-eth/fenrir/engineapi"
	"github.com/fenrir-eth/fenrir/internal/beacon"
	"github.com/fenrir-eth/fenrir/internal/chainspec"
	"github.com/fenrir-eth/fenrir/internal/log"
	"github.com/fenrir-eth/fenrir/internal/memstore"
	"github.com/fenrir-eth/fenrir/internal/metrics"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fenrir:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cfg := defaultConfig()

	return &cli.App{
		Name:  "fenrir",
		Usage: "standalone Engine API server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "datadir", Value: cfg.DataDir, Usage: "data directory", Destination: &cfg.DataDir},
			&cli.StringFlag{Name: "engine.addr", Value: cfg.EngineAddr, Usage: "authenticated Engine API listen address", Destination: &cfg.EngineAddr},
			&cli.StringFlag{Name: "metrics.addr", Value: cfg.MetricsAddr, Usage: "metrics listen address", Destination: &cfg.MetricsAddr},
			&cli.StringFlag{Name: "jwtsecret", Value: "", Usage: "path to the JWT secret file (created if absent)", Destination: &cfg.JWTSecretPath},
			&cli.StringFlag{Name: "logfile", Value: cfg.LogFilePath, Usage: "write logs to a rotating file here instead of stderr", Destination: &cfg.LogFilePath},
			&cli.IntFlag{Name: "verbosity", Value: cfg.Verbosity, Usage: "log verbosity 0-5", Destination: &cfg.Verbosity},
			&cli.IntFlag{Name: "payloadstore.capacity", Value: cfg.PayloadStoreCapacity, Usage: "max in-flight build jobs retained", Destination: &cfg.PayloadStoreCapacity},
			&cli.BoolFlag{Name: "mainnet", Usage: "use mainnet fork schedule instead of the test schedule"},
		},
		Action: func(c *cli.Context) error {
			if c.String("jwtsecret") == "" {
				cfg.JWTSecretPath = c.String("datadir") + "/jwt.hex"
			}
			spec := chainspec.TestConfig
			if c.Bool("mainnet") {
				spec = chainspec.MainnetConfig
			}
			return run(cfg, spec)
		},
	}
}

func run(cfg config, spec *chainspec.ChainConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.InitDataDir(); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	logger := newLogger(cfg).Module("cmd")

	secret, err := loadOrCreateJWTSecret(cfg.JWTSecretPath)
	if err != nil {
		return fmt.Errorf("jwt secret: %w", err)
	}

	m := metrics.New(metrics.DefaultConfig())

	blocks := memstore.NewBlockStore()
	payloads := memstore.NewPayloadStore(cfg.PayloadStoreCapacity)
	channel := beacon.NewChannel(cfg.BeaconChannelBuffer)
	defer channel.Close()

	api := engineapi.New(spec, channel, payloads, blocks, m)

	consensus := newStubConsensusEngine(channel, blocks, payloads, logger.Module("stubconsensus"))
	consensusCtx, stopConsensus := context.WithCancel(context.Background())
	defer stopConsensus()
	go consensus.run(consensusCtx)

	engineSrv := newServer(cfg.EngineAddr, api, secret, nil, logger)
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("engine api listening", "addr", cfg.EngineAddr)
		if err := engineSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("engine server: %w", err)
		}
	}()
	go func() {
		logger.Info("metrics listening", "addr", cfg.MetricsAddr, "path", m.Path())
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = engineSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	return nil
}

// newLogger returns a stderr logger, or a rotating-file logger when
// cfg.LogFilePath is set -- the latter for deployments run detached from a
// supervised stderr stream.
func newLogger(cfg config) *log.Logger {
	level := verbosityToLevel(cfg.Verbosity)
	if cfg.LogFilePath == "" {
		return log.New(level)
	}
	return log.NewRotatingFile(level, log.RotatingFileConfig{Path: cfg.LogFilePath})
}

func verbosityToLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError + 4
	case v == 1:
		return slog.LevelError
	case v == 2:
		return slog.LevelWarn
	case v == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
