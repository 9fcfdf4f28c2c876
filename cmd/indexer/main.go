package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"liquidityLedger/internal/chain"
	"liquidityLedger/internal/config"
	"liquidityLedger/internal/dex"
	"liquidityLedger/internal/indexer"
	"liquidityLedger/internal/storage"
)

func main() {
	root := &cobra.Command{
		Use:          "indexer",
		Short:        "Uniswap v4 PoolManager log indexer and liquidity ledger",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch PoolManager logs into JSONL",
		RunE:  runIndexer,
	}

	runCmd.Flags().String("rpc", "", "RPC URL")
	runCmd.Flags().Uint64("chain-id", 0, "chain id, 0 reads it from the RPC")
	runCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	runCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 follows the head minus confirmations")
	runCmd.Flags().Uint64("confirmations", 12, "blocks behind the head considered final")
	runCmd.Flags().StringSlice("address", nil, "contract addresses (comma-separated), defaults to the chain's PoolManager")
	runCmd.Flags().StringSlice("topic0", nil, "topic0 signatures (comma-separated), defaults to PoolManager events")
	runCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	runCmd.Flags().Uint64("min-batch-size", 10, "smallest batch when the node rejects a range")
	runCmd.Flags().String("out", "./data/logs.jsonl", "output JSONL path")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	decodeCmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode raw logs into typed events",
		RunE:  runDecode,
	}

	decodeCmd.Flags().String("in", "", "input raw logs JSONL")
	decodeCmd.Flags().String("out", "./data/typed_events.jsonl", "output typed events JSONL")
	decodeCmd.Flags().String("errors", "./data/decode_errors.jsonl", "decode errors JSONL")
	decodeCmd.Flags().String("topic0-map", "", "extra topic0->event mappings (comma-separated key=value)")
	decodeCmd.Flags().String("nats-url", "", "also publish typed events to this NATS server")
	decodeCmd.Flags().String("nats-stream", "LEDGER_EVENTS", "JetStream stream for published events")
	decodeCmd.Flags().String("nats-subject", "ledger.events", "subject for published events")
	decodeCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(decodeCmd)

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Apply typed events to the liquidity ledger",
		RunE:  runLedger,
	}

	ledgerCmd.Flags().String("source", config.SourceFile, "event source (file, nats)")
	ledgerCmd.Flags().String("in", "", "input typed events JSONL (source=file)")
	ledgerCmd.Flags().String("store", config.StoreMemory, "entity store (memory, postgres)")
	ledgerCmd.Flags().String("pg-dsn", "", "Postgres DSN (store=postgres)")
	ledgerCmd.Flags().String("state-file", "", "optional local cursor file, overrides the postgres cursor row")
	ledgerCmd.Flags().String("state-name", "ledger", "progress row name in indexer_state")
	ledgerCmd.Flags().Uint64("from-block", 0, "replay from this block, ignoring saved progress")
	ledgerCmd.Flags().Int("checkpoint-every", 1000, "save progress after this many events")
	ledgerCmd.Flags().String("rpc", "", "RPC URL for token metadata, empty uses placeholders")
	ledgerCmd.Flags().Uint64("chain-id", 1, "chain id of the events")
	ledgerCmd.Flags().String("native-symbol", "", "native currency symbol (default from chain id)")
	ledgerCmd.Flags().String("native-name", "", "native currency name (default from chain id)")
	ledgerCmd.Flags().Uint("native-decimals", 0, "native currency decimals (default from chain id)")
	ledgerCmd.Flags().String("nats-url", "", "NATS server URL (source=nats)")
	ledgerCmd.Flags().String("nats-stream", "LEDGER_EVENTS", "JetStream stream")
	ledgerCmd.Flags().String("nats-subject", "ledger.events", "JetStream subject filter")
	ledgerCmd.Flags().String("nats-consumer", "ledger", "durable consumer name")
	ledgerCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9102")
	ledgerCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(ledgerCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runIndexer(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	if len(cfg.Addresses) == 0 {
		chainID := cfg.ChainID
		if chainID == 0 {
			id, err := chainClient.GetChainID(ctx)
			if err != nil {
				return fmt.Errorf("get chain id: %w", err)
			}
			chainID = id.Uint64()
		}
		known, ok := chain.KnownConfig(chainID)
		if !ok {
			return fmt.Errorf("address list is required for chain %d", chainID)
		}
		cfg.Addresses = []string{known.PoolManager}
	}
	if len(cfg.Topic0) == 0 {
		if cfg.Topic0, err = dex.PoolManagerTopic0(); err != nil {
			return fmt.Errorf("pool manager topics: %w", err)
		}
	}
	filter, err := indexer.ParseFilter(cfg.Addresses, cfg.Topic0)
	if err != nil {
		return err
	}

	sink, err := storage.OpenJSONL(cfg.Out, true)
	if err != nil {
		return err
	}
	defer sink.Close()

	var cursor storage.Cursor
	if cfg.CheckpointEnabled {
		cursor = &storage.FileCursor{Path: cfg.Checkpoint}
	}

	runner := indexer.NewRunner(indexer.RunConfig{
		FromBlock:     cfg.FromBlock,
		ToBlock:       cfg.ToBlock,
		Confirmations: cfg.Confirmations,
		Filter:        filter,
		BatchSize:     cfg.BatchSize,
		MinBatchSize:  cfg.MinBatchSize,
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff:  cfg.RetryBackoff,
		Cursor:        cursor,
	}, chainClient, sink, logger)

	logger.Info("indexer start",
		zap.String("rpc", cfg.RPCURL),
		zap.Uint64("from", cfg.FromBlock),
		zap.Uint64("to", cfg.ToBlock),
		zap.Uint64("confirmations", cfg.Confirmations),
		zap.Int("addresses", len(filter.Addresses)),
		zap.Int("topic0", len(filter.Topic0)),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.String("out", cfg.Out),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	return runner.Run(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
