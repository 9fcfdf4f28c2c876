package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"liquidityLedger/internal/model"
	"liquidityLedger/internal/storage"
)

// RunnerConfig controls how a stream of typed events is fed to the processor.
type RunnerConfig struct {
	// FromBlock replays from this block, ignoring saved state, when > 0.
	FromBlock uint64
	// CheckpointEvery saves state after this many handled records.
	CheckpointEvery int
	// Cursor stores the last processed block. Resuming re-reads that block;
	// the per-pool replay guard skips what was already applied.
	Cursor storage.Cursor
}

// Runner drives a Processor from any record source and checkpoints progress.
type Runner struct {
	cfg       RunnerConfig
	processor *Processor
	logger    *zap.Logger

	startBlock      uint64
	lastBlock       uint64
	sinceCheckpoint int
	total           int
	below           int
	outcomes        map[Outcome]int
}

func NewRunner(cfg RunnerConfig, processor *Processor, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CheckpointEvery <= 0 {
		cfg.CheckpointEvery = 1000
	}
	return &Runner{
		cfg:       cfg,
		processor: processor,
		logger:    logger,
		outcomes:  make(map[Outcome]int),
	}
}

// Start resolves the block to resume from.
func (r *Runner) Start(ctx context.Context) error {
	if r.cfg.FromBlock > 0 {
		r.startBlock = r.cfg.FromBlock
		return nil
	}
	if r.cfg.Cursor == nil {
		return nil
	}
	last, ok, err := r.cfg.Cursor.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cursor: %w", err)
	}
	if ok {
		r.startBlock = last
	}
	r.logger.Info("ledger resume", zap.Uint64("from_block", r.startBlock), zap.Bool("has_cursor", ok))
	return nil
}

// Handle processes one record. It is the callback handed to a source.
func (r *Runner) Handle(ctx context.Context, record model.TypedEventRecord) error {
	r.total++
	if record.BlockNumber < r.startBlock {
		r.below++
		return nil
	}

	outcome, err := r.processor.ProcessRecord(ctx, record)
	if err != nil {
		return err
	}
	r.outcomes[outcome]++
	if record.BlockNumber > r.lastBlock {
		r.lastBlock = record.BlockNumber
	}

	r.sinceCheckpoint++
	if r.sinceCheckpoint >= r.cfg.CheckpointEvery {
		return r.checkpoint(ctx)
	}
	return nil
}

// Finish saves the final state and logs a summary.
func (r *Runner) Finish(ctx context.Context) error {
	if err := r.checkpoint(ctx); err != nil {
		return err
	}
	r.logger.Info("ledger complete",
		zap.Int("total", r.total),
		zap.Int("before_start", r.below),
		zap.Int("applied", r.outcomes[Applied]),
		zap.Int("skipped", r.outcomes[Skipped]),
		zap.Int("dropped", r.outcomes[Dropped]),
		zap.Uint64("last_block", r.lastBlock),
	)
	return nil
}

func (r *Runner) checkpoint(ctx context.Context) error {
	r.sinceCheckpoint = 0
	if r.cfg.Cursor == nil || r.lastBlock == 0 {
		return nil
	}
	if err := r.cfg.Cursor.Save(ctx, r.lastBlock); err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}
