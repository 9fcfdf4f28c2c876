package storage

import (
	"context"

	"liquidityLedger/internal/model"
)

// Storage defines a sink for log records.
type Storage interface {
	PutLogBatch(logs []model.LogRecord) error
}

// EntityStore is the durable ledger state. Lookups report found=false for
// absent records; Apply writes a changeset as one unit.
type EntityStore interface {
	GetPool(ctx context.Context, key string) (model.Pool, bool, error)
	GetToken(ctx context.Context, key string) (model.Token, bool, error)
	GetTick(ctx context.Context, key string) (model.Tick, bool, error)
	// TicksInRange returns the initialized ticks of a pool with lo <= idx <= hi.
	TicksInRange(ctx context.Context, poolKey string, lo, hi int32) ([]model.Tick, error)
	GetPosition(ctx context.Context, key string) (model.Position, bool, error)
	GetProvider(ctx context.Context, key string) (model.LiquidityProvider, bool, error)
	GetHook(ctx context.Context, key string) (model.HookStats, bool, error)
	GetPoolBucket(ctx context.Context, key string) (model.PoolBucket, bool, error)
	GetTokenBucket(ctx context.Context, key string) (model.TokenBucket, bool, error)

	Apply(ctx context.Context, cs Changeset) error
}
