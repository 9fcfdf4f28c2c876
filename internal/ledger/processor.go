package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"liquidityLedger/internal/bucket"
	"liquidityLedger/internal/clmath"
	"liquidityLedger/internal/metrics"
	"liquidityLedger/internal/model"
	"liquidityLedger/internal/storage"
)

// TokenResolver returns metadata for a token. Failures degrade to
// placeholder fields, so there is no error.
type TokenResolver interface {
	Resolve(ctx context.Context, chainID uint64, address string) model.TokenMeta
}

// Outcome is what happened to one event.
type Outcome int

const (
	Applied Outcome = iota
	Skipped
	Dropped
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	case Dropped:
		return "dropped"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Processor reads a snapshot for each event, runs the engine and writes the
// changeset. It must be fed events in chain order and is not safe for
// concurrent use: tokens are shared between pools.
type Processor struct {
	store    storage.EntityStore
	engine   *Engine
	resolver TokenResolver
	metrics  *metrics.Ledger
	logger   *zap.Logger
}

func NewProcessor(store storage.EntityStore, resolver TokenResolver, m *metrics.Ledger, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		store:    store,
		engine:   NewEngine(),
		resolver: resolver,
		metrics:  m,
		logger:   logger,
	}
}

// ProcessRecord parses a typed event record and processes it. Records that
// cannot be parsed are dropped.
func (p *Processor) ProcessRecord(ctx context.Context, record model.TypedEventRecord) (Outcome, error) {
	ev, err := ParseEvent(record)
	if err != nil {
		p.drop(record.EventName, err,
			zap.Uint64("block", record.BlockNumber),
			zap.Uint64("log_index", record.LogIndex),
			zap.String("tx", record.TxHash),
		)
		return Dropped, nil
	}
	return p.Process(ctx, ev)
}

// Process applies one event. Only store failures are returned as errors;
// events the ledger cannot apply are logged and dropped.
func (p *Processor) Process(ctx context.Context, ev Event) (Outcome, error) {
	start := time.Now()
	kind := string(ev.Kind())

	snap, err := p.loadSnapshot(ctx, ev)
	if err != nil {
		return Dropped, fmt.Errorf("load snapshot: %w", err)
	}

	cs, err := p.engine.Apply(snap, ev)
	switch {
	case errors.Is(err, ErrAlreadyApplied):
		p.metrics.Skipped(kind)
		p.logger.Debug("skip applied event",
			zap.String("pool", ev.PoolKey()),
			zap.Uint64("block", ev.BlockNumber),
			zap.Uint64("log_index", ev.LogIndex),
		)
		return Skipped, nil
	case err != nil:
		p.drop(kind, err,
			zap.String("pool", ev.PoolKey()),
			zap.Uint64("block", ev.BlockNumber),
			zap.Uint64("log_index", ev.LogIndex),
			zap.String("tx", ev.TxHash),
		)
		return Dropped, nil
	}

	if err := p.store.Apply(ctx, cs); err != nil {
		return Dropped, fmt.Errorf("write changeset: %w", err)
	}
	p.metrics.Applied(kind, cs.Writes(), ev.BlockNumber, time.Since(start))
	return Applied, nil
}

func (p *Processor) drop(kind string, err error, fields ...zap.Field) {
	reason := dropReason(err)
	p.metrics.Dropped(kind, reason)
	fields = append(fields, zap.String("event", kind), zap.String("reason", reason), zap.Error(err))
	if errors.Is(err, ErrNegativeLiquidity) {
		p.logger.Error("drop event", fields...)
		return
	}
	p.logger.Warn("drop event", fields...)
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, ErrPoolNotFound):
		return "pool_not_found"
	case errors.Is(err, ErrTokenNotFound):
		return "token_not_found"
	case errors.Is(err, ErrPoolExists):
		return "pool_exists"
	case errors.Is(err, ErrNegativeLiquidity):
		return "negative_liquidity"
	case errors.Is(err, ErrUnknownEvent):
		return "unknown_event"
	default:
		return "invalid"
	}
}

// loadSnapshot reads everything ev may touch. It stops early when the pool
// is missing (or already present for Initialize); the engine reports why.
func (p *Processor) loadSnapshot(ctx context.Context, ev Event) (Snapshot, error) {
	var snap Snapshot
	poolKey := ev.PoolKey()

	pool, found, err := p.store.GetPool(ctx, poolKey)
	if err != nil {
		return snap, fmt.Errorf("get pool %s: %w", poolKey, err)
	}
	snap.Pool = model.OptionOf(pool, found)

	var token0, token1, hooks string
	if initEv, ok := ev.Payload.(Initialize); ok {
		if found {
			return snap, nil
		}
		token0, token1, hooks = initEv.Currency0, initEv.Currency1, initEv.Hooks
	} else {
		if !found || pool.Applied(ev.BlockNumber, ev.LogIndex) {
			return snap, nil
		}
		token0, token1, hooks = pool.Token0, pool.Token1, pool.Hooks
	}

	token0Key := model.TokenKey(ev.ChainID, token0)
	token1Key := model.TokenKey(ev.ChainID, token1)
	if snap.Token0, err = getOption(ctx, token0Key, p.store.GetToken); err != nil {
		return snap, err
	}
	if snap.Token1, err = getOption(ctx, token1Key, p.store.GetToken); err != nil {
		return snap, err
	}
	if _, ok := ev.Payload.(Initialize); ok && p.resolver != nil {
		if !snap.Token0.IsSome() {
			snap.Meta0 = p.resolver.Resolve(ctx, ev.ChainID, token0)
		}
		if !snap.Token1.IsSome() {
			snap.Meta1 = p.resolver.Resolve(ctx, ev.ChainID, token1)
		}
	}

	if !model.IsZeroAddress(hooks) {
		if snap.Hook, err = getOption(ctx, model.HookKey(ev.ChainID, hooks), p.store.GetHook); err != nil {
			return snap, err
		}
	}

	snap.Ticks = make(map[int32]model.Tick)
	switch payload := ev.Payload.(type) {
	case ModifyLiquidity:
		for _, idx := range []int32{payload.TickLower, payload.TickUpper} {
			t, ok, err := p.store.GetTick(ctx, model.TickKey(poolKey, idx))
			if err != nil {
				return snap, fmt.Errorf("get tick %d: %w", idx, err)
			}
			if ok {
				snap.Ticks[idx] = t
			}
		}
		posKey := model.PositionKey(poolKey, payload.Sender, payload.TickLower, payload.TickUpper)
		if snap.Position, err = getOption(ctx, posKey, p.store.GetPosition); err != nil {
			return snap, err
		}
		if snap.Provider, err = getOption(ctx, model.ProviderKey(poolKey, payload.Sender), p.store.GetProvider); err != nil {
			return snap, err
		}
	case Swap:
		r := clmath.Candidates(pool.Tick, payload.Tick, pool.TickSpacing)
		if !r.Empty() {
			ticks, err := p.store.TicksInRange(ctx, poolKey, r.Lo(), r.Hi())
			if err != nil {
				return snap, fmt.Errorf("ticks in range [%d, %d]: %w", r.Lo(), r.Hi(), err)
			}
			for _, t := range ticks {
				snap.Ticks[t.TickIdx] = t
			}
		}
	}

	snap.PoolBuckets = make(map[string]model.PoolBucket)
	snap.TokenBuckets = make(map[string]model.TokenBucket)
	for _, period := range model.Periods {
		key := bucket.Key(poolKey, ev.Timestamp, period)
		b, ok, err := p.store.GetPoolBucket(ctx, key)
		if err != nil {
			return snap, fmt.Errorf("get pool bucket %s: %w", key, err)
		}
		if ok {
			snap.PoolBuckets[key] = b
		}
		for _, tokenKey := range []string{token0Key, token1Key} {
			key := bucket.Key(tokenKey, ev.Timestamp, period)
			b, ok, err := p.store.GetTokenBucket(ctx, key)
			if err != nil {
				return snap, fmt.Errorf("get token bucket %s: %w", key, err)
			}
			if ok {
				snap.TokenBuckets[key] = b
			}
		}
	}
	return snap, nil
}

func getOption[T any](ctx context.Context, key string, get func(context.Context, string) (T, bool, error)) (model.Option[T], error) {
	v, ok, err := get(ctx, key)
	if err != nil {
		return model.None[T](), fmt.Errorf("get %s: %w", key, err)
	}
	return model.OptionOf(v, ok), nil
}
