package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityLedger/internal/config"
	"liquidityLedger/internal/dex"
	"liquidityLedger/internal/model"
	"liquidityLedger/internal/source"
	"liquidityLedger/internal/storage"
)

func runDecode(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	decoder, err := dex.NewPoolManagerDecoder(dex.DecoderConfig{Topic0Map: cfg.Topic0Map})
	if err != nil {
		return err
	}

	var js jetstream.JetStream
	if cfg.NATSURL != "" {
		nc, stream, err := source.Connect(cfg.NATSURL, logger)
		if err != nil {
			return err
		}
		defer nc.Drain()
		if err := source.EnsureStream(ctx, stream, cfg.NATSStream, cfg.NATSSubject); err != nil {
			return err
		}
		js = stream
	}

	input, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer input.Close()

	out, err := storage.OpenJSONL(cfg.Out, false)
	if err != nil {
		return err
	}
	defer out.Close()

	errOut, err := storage.OpenJSONL(cfg.Errors, false)
	if err != nil {
		return err
	}
	defer errOut.Close()

	logger.Info("decode start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.Bool("publish", js != nil),
	)

	emit := func(event *model.TypedEvent) error {
		if err := out.Write(event); err != nil {
			return err
		}
		if js == nil {
			return nil
		}
		return source.Publish(ctx, js, cfg.NATSSubject, event)
	}
	fail := func(de model.DecodeError) error {
		logger.Debug("decode failed",
			zap.Uint64("block", de.BlockNumber),
			zap.String("tx", de.TxHash),
			zap.Uint64("log_index", de.LogIndex),
			zap.String("error", de.Error),
		)
		return errOut.Write(de)
	}

	stats, err := dex.DecodeLogs(ctx, input, decoder, emit, fail)
	if err != nil {
		return err
	}

	logger.Info("decode complete",
		zap.Int("total", stats.Total),
		zap.Int("decoded", stats.Decoded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return nil
}
