package indexer

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"liquidityLedger/internal/chain"
	"liquidityLedger/internal/model"
	"liquidityLedger/internal/storage"
)

// LogClient is the part of chain.Client the runner needs.
type LogClient interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, filter chain.LogFilter) ([]types.Log, error)
	BlockTimestamps(ctx context.Context, numbers []uint64) (map[uint64]uint64, error)
}

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	FromBlock uint64
	// ToBlock 0 follows the chain head minus Confirmations.
	ToBlock       uint64
	Confirmations uint64
	Filter        chain.LogFilter
	BatchSize     uint64
	MinBatchSize  uint64
	MaxRetries    int
	RetryBackoff  time.Duration
	// Cursor is optional; without it every run starts at FromBlock.
	Cursor storage.Cursor
}

// Runner streams logs from the chain and writes them to storage.
type Runner struct {
	cfg     RunConfig
	client  LogClient
	storage storage.Storage
	logger  *zap.Logger
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, client LogClient, sink storage.Storage, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		client:  client,
		storage: sink,
		logger:  logger,
	}
}

// Run fetches logs batch by batch until the target block, saving the cursor
// after each stored batch.
func (r *Runner) Run(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("chain client is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if len(r.cfg.Filter.Addresses) == 0 {
		return fmt.Errorf("at least one address is required")
	}

	chainID, err := r.client.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}

	from, to, err := r.bounds(ctx)
	if err != nil {
		return err
	}
	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	window, err := newBlockWindow(from, to, r.cfg.BatchSize, r.cfg.MinBatchSize)
	if err != nil {
		return err
	}

	var total int
	for {
		blockRange, ok := window.Next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		logs, err := r.filterLogs(ctx, blockRange)
		if isRangeTooLarge(err) && window.Shrink() {
			r.logger.Warn("range rejected, shrinking batch",
				zap.Uint64("from", blockRange.From),
				zap.Uint64("to", blockRange.To),
				zap.Uint64("batch_size", window.Size()),
				zap.Error(err),
			)
			continue
		}
		if err != nil {
			return fmt.Errorf("filter logs [%d, %d]: %w", blockRange.From, blockRange.To, err)
		}

		n, err := r.storeBatch(ctx, chainID.Uint64(), blockRange, logs)
		if err != nil {
			return err
		}
		total += n
		window.Advance(blockRange)
	}

	r.logger.Info("sync complete", zap.Uint64("from", from), zap.Uint64("to", to), zap.Int("logs", total))
	return nil
}

// bounds resolves the block range of this run from config, chain head and
// the saved cursor.
func (r *Runner) bounds(ctx context.Context) (uint64, uint64, error) {
	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		latest, err := r.client.LatestBlockNumber(ctx)
		if err != nil {
			return 0, 0, fmt.Errorf("get latest block: %w", err)
		}
		to = SafeHead(latest, r.cfg.Confirmations)
	}

	if r.cfg.Cursor != nil {
		last, ok, err := r.cfg.Cursor.Load(ctx)
		if err != nil {
			return 0, 0, fmt.Errorf("load cursor: %w", err)
		}
		if ok && last >= from {
			from = last + 1
			r.logger.Info("resume from cursor", zap.Uint64("last_processed", last), zap.Uint64("from", from))
		}
	}
	return from, to, nil
}

func (r *Runner) storeBatch(ctx context.Context, chainID uint64, blockRange BlockRange, logs []types.Log) (int, error) {
	seen := make(map[string]struct{}, len(logs))
	kept := make([]types.Log, 0, len(logs))
	blocks := make([]uint64, 0)
	var removed, dupes int
	for _, log := range logs {
		if log.Removed {
			removed++
			continue
		}
		id := fmt.Sprintf("%d:%s:%d", log.BlockNumber, log.TxHash.Hex(), log.Index)
		if _, ok := seen[id]; ok {
			dupes++
			continue
		}
		seen[id] = struct{}{}
		if len(blocks) == 0 || blocks[len(blocks)-1] != log.BlockNumber {
			blocks = append(blocks, log.BlockNumber)
		}
		kept = append(kept, log)
	}

	timestamps, err := r.blockTimestamps(ctx, blocks)
	if err != nil {
		return 0, fmt.Errorf("block timestamps [%d, %d]: %w", blockRange.From, blockRange.To, err)
	}

	ingestedAt := time.Now().UTC()
	records := make([]model.LogRecord, 0, len(kept))
	for _, log := range kept {
		records = append(records, buildLogRecord(chainID, log, timestamps[log.BlockNumber], ingestedAt))
	}
	// The ledger applies events in chain order; keep the file in that order.
	sortLogRecords(records)

	if err := r.storage.PutLogBatch(records); err != nil {
		return 0, fmt.Errorf("store logs: %w", err)
	}
	if r.cfg.Cursor != nil {
		if err := r.cfg.Cursor.Save(ctx, blockRange.To); err != nil {
			return 0, fmt.Errorf("save cursor: %w", err)
		}
	}

	r.logger.Info("batch complete",
		zap.Uint64("from", blockRange.From),
		zap.Uint64("to", blockRange.To),
		zap.Int("logs", len(records)),
		zap.Int("removed", removed),
		zap.Int("duplicates", dupes),
	)
	return len(records), nil
}

func (r *Runner) filterLogs(ctx context.Context, blockRange BlockRange) ([]types.Log, error) {
	var logs []types.Log
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, r.notify("filter logs", blockRange), func() error {
		var err error
		logs, err = r.client.FilterLogs(ctx, blockRange.From, blockRange.To, r.cfg.Filter)
		if isRangeTooLarge(err) {
			return backoff.Permanent(err)
		}
		return err
	})
	return logs, err
}

func (r *Runner) blockTimestamps(ctx context.Context, blocks []uint64) (map[uint64]uint64, error) {
	if len(blocks) == 0 {
		return nil, nil
	}
	var out map[uint64]uint64
	blockRange := BlockRange{From: blocks[0], To: blocks[len(blocks)-1]}
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, r.notify("block timestamps", blockRange), func() error {
		var err error
		out, err = r.client.BlockTimestamps(ctx, blocks)
		return err
	})
	return out, err
}

func (r *Runner) notify(op string, blockRange BlockRange) backoff.Notify {
	return func(err error, wait time.Duration) {
		r.logger.Warn(op+" failed",
			zap.Error(err),
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
			zap.Duration("retry_in", wait),
		)
	}
}
