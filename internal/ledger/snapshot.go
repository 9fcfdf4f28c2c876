package ledger

import "liquidityLedger/internal/model"

// Snapshot is the ledger state one event reads, taken before any derived
// value is computed. Values are never mutated by the engine.
type Snapshot struct {
	Pool   model.Option[model.Pool]
	Token0 model.Option[model.Token]
	Token1 model.Option[model.Token]
	// Metadata for tokens that are not in the store yet. Only Initialize
	// creates tokens.
	Meta0 model.TokenMeta
	Meta1 model.TokenMeta

	Hook model.Option[model.HookStats]

	// Ticks holds the existing ticks the event may touch, keyed by index.
	// A missing entry means the tick is not initialized.
	Ticks map[int32]model.Tick

	Position model.Option[model.Position]
	Provider model.Option[model.LiquidityProvider]

	// Existing buckets keyed by bucket id.
	PoolBuckets  map[string]model.PoolBucket
	TokenBuckets map[string]model.TokenBucket
}
