package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityLedger/internal/chain"
	"liquidityLedger/internal/config"
	"liquidityLedger/internal/dex"
	"liquidityLedger/internal/ledger"
	"liquidityLedger/internal/metrics"
	"liquidityLedger/internal/source"
	"liquidityLedger/internal/storage"
	"liquidityLedger/internal/storage/memory"
	"liquidityLedger/internal/storage/postgres"
)

func runLedger(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadLedger(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	chainCfg := chain.Config{
		ChainID:        cfg.ChainID,
		NativeSymbol:   cfg.NativeSymbol,
		NativeName:     cfg.NativeName,
		NativeDecimals: cfg.NativeDecimals,
	}.Merge()
	if err := chainCfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ledgerMetrics := metrics.New(reg)
	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer shutdown()
	}

	var caller chain.ContractCaller
	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()
		caller = chainClient
	} else {
		logger.Warn("no rpc configured, token metadata will use placeholders")
	}
	resolver := dex.NewTokenResolver(caller, chainCfg, ledgerMetrics, logger)

	var (
		store  storage.EntityStore
		cursor storage.Cursor
	)
	switch cfg.Store {
	case config.StorePostgres:
		pg, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		store = pg
		cursor = pg.Cursor(cfg.StateName)
	default:
		store = memory.NewStore()
	}
	if cfg.StateFile != "" {
		cursor = &storage.FileCursor{Path: cfg.StateFile}
	}

	src, closeSource, err := newSource(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	processor := ledger.NewProcessor(store, resolver, ledgerMetrics, logger)
	runner := ledger.NewRunner(ledger.RunnerConfig{
		FromBlock:       cfg.FromBlock,
		CheckpointEvery: cfg.CheckpointEvery,
		Cursor:          cursor,
	}, processor, logger)

	logger.Info("ledger start",
		zap.String("source", cfg.Source),
		zap.String("store", cfg.Store),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Uint64("chain_id", chainCfg.ChainID),
		zap.Uint64("from_block", cfg.FromBlock),
		zap.Int("checkpoint_every", cfg.CheckpointEvery),
	)

	if err := runner.Start(ctx); err != nil {
		return err
	}
	runErr := src.Run(ctx, runner.Handle)

	// Progress is saved even on shutdown so a restart resumes from here.
	finishCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := runner.Finish(finishCtx); err != nil {
		return err
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func newSource(cfg config.LedgerConfig, logger *zap.Logger) (source.Source, func(), error) {
	if cfg.Source != config.SourceNATS {
		return &source.File{Path: cfg.Input, Logger: logger}, func() {}, nil
	}
	nc, js, err := source.Connect(cfg.NATSURL, logger)
	if err != nil {
		return nil, nil, err
	}
	src := source.NewJetStream(js, source.JetStreamConfig{
		Stream:   cfg.NATSStream,
		Subject:  cfg.NATSSubject,
		Consumer: cfg.NATSConsumer,
	}, logger)
	return src, func() { _ = nc.Drain() }, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
