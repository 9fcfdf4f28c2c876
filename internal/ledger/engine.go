package ledger

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"liquidityLedger/internal/bucket"
	"liquidityLedger/internal/model"
	"liquidityLedger/internal/storage"
)

// Engine turns (snapshot, event) into the changeset to write. It keeps no
// state besides its dispatch table and is safe for concurrent use.
type Engine struct {
	transitions map[Kind]transition
}

type transition func(tx *txn) error

func NewEngine() *Engine {
	return &Engine{
		transitions: map[Kind]transition{
			KindInitialize:      applyInitialize,
			KindModifyLiquidity: applyModifyLiquidity,
			KindSwap:            applySwap,
			KindDonate:          applyDonate,
		},
	}
}

// Apply computes the writes produced by ev against snap. On error the
// changeset is empty and nothing must be written.
func (e *Engine) Apply(snap Snapshot, ev Event) (storage.Changeset, error) {
	fn, ok := e.transitions[ev.Kind()]
	if !ok {
		return storage.Changeset{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind())
	}

	tx := newTxn(snap, ev)
	if ev.Kind() != KindInitialize {
		if err := tx.loadExisting(); err != nil {
			return storage.Changeset{}, err
		}
	}
	if err := fn(tx); err != nil {
		return storage.Changeset{}, err
	}
	tx.finish()
	return tx.changeset(), nil
}

// activity is the period-scoped part of an event added to buckets.
type activity struct {
	volume0 *big.Int
	volume1 *big.Int
	fees0   *big.Int
	fees1   *big.Int
	swap    bool
	modify  bool
	donate  bool
}

// txn holds working copies of the snapshot entities for one event.
type txn struct {
	ev   Event
	snap Snapshot

	pool   model.Pool
	token0 model.Token
	token1 model.Token
	hook   *model.HookStats

	ticks     map[int32]model.Tick
	tickOrder []int32

	position *model.Position
	provider *model.LiquidityProvider

	activity activity
	out      storage.Changeset
}

func newTxn(snap Snapshot, ev Event) *txn {
	ticks := make(map[int32]model.Tick, len(snap.Ticks))
	for idx, t := range snap.Ticks {
		ticks[idx] = t
	}
	return &txn{ev: ev, snap: snap, ticks: ticks}
}

func (tx *txn) loadExisting() error {
	pool, ok := tx.snap.Pool.Get()
	if !ok {
		return fmt.Errorf("%w: %s", ErrPoolNotFound, tx.ev.PoolKey())
	}
	if pool.Applied(tx.ev.BlockNumber, tx.ev.LogIndex) {
		return fmt.Errorf("%w: %s at %d/%d", ErrAlreadyApplied, pool.ID, tx.ev.BlockNumber, tx.ev.LogIndex)
	}
	token0, ok := tx.snap.Token0.Get()
	if !ok {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, pool.Token0)
	}
	token1, ok := tx.snap.Token1.Get()
	if !ok {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, pool.Token1)
	}

	tx.pool = pool
	tx.token0 = token0
	tx.token1 = token1
	if pool.HasHooks() {
		hook := tx.snap.Hook.OrElse(newHookStats(pool.ChainID, pool.Hooks))
		tx.hook = &hook
	}
	return nil
}

// tick returns the working copy of a tick, creating it when absent. A new
// tick at or below the current price starts with all growth counted as
// outside, matching how the pool contract initializes ticks.
func (tx *txn) tick(idx int32) model.Tick {
	if t, ok := tx.ticks[idx]; ok {
		return t
	}
	t := model.Tick{
		ID:                 model.TickKey(tx.pool.ID, idx),
		PoolKey:            tx.pool.ID,
		TickIdx:            idx,
		LiquidityGross:     new(big.Int),
		LiquidityNet:       new(big.Int),
		FeeGrowthOutside0:  new(big.Int),
		FeeGrowthOutside1:  new(big.Int),
		CreatedAtBlock:     tx.ev.BlockNumber,
		CreatedAtTimestamp: tx.ev.Timestamp,
	}
	if idx <= tx.pool.Tick {
		t.FeeGrowthOutside0 = copyInt(tx.pool.FeeGrowthGlobal0)
		t.FeeGrowthOutside1 = copyInt(tx.pool.FeeGrowthGlobal1)
	}
	return t
}

func (tx *txn) putTick(t model.Tick) {
	if !tx.dirtyTick(t.TickIdx) {
		tx.tickOrder = append(tx.tickOrder, t.TickIdx)
	}
	tx.ticks[t.TickIdx] = t
}

func (tx *txn) dirtyTick(idx int32) bool {
	for _, v := range tx.tickOrder {
		if v == idx {
			return true
		}
	}
	return false
}

func (tx *txn) initialized(idx int32) bool {
	_, ok := tx.ticks[idx]
	return ok
}

// countTx bumps transaction counters on every entity the event touches.
func (tx *txn) countTx() {
	tx.pool.TxCount++
	tx.token0.TxCount++
	tx.token1.TxCount++
	if tx.hook != nil {
		tx.hook.TxCount++
	}
}

func (tx *txn) eventRef(sender string) model.EventRef {
	return model.EventRef{
		ID:          model.EventKey(tx.ev.ChainID, tx.ev.TxHash, tx.ev.LogIndex),
		ChainID:     tx.ev.ChainID,
		TxHash:      tx.ev.TxHash,
		LogIndex:    tx.ev.LogIndex,
		BlockNumber: tx.ev.BlockNumber,
		Timestamp:   tx.ev.Timestamp,
		PoolKey:     tx.pool.ID,
		Sender:      sender,
	}
}

// finish applies the steps shared by every transition: ordering cursor,
// prices, the transaction row and bucket rollups.
func (tx *txn) finish() {
	tx.pool.LastBlock = tx.ev.BlockNumber
	tx.pool.LastLogIndex = tx.ev.LogIndex
	tx.pool.Token0Price, tx.pool.Token1Price = poolPrices(tx.pool.SqrtPrice, tx.token0.Decimals, tx.token1.Decimals)

	tx.out.Transactions = append(tx.out.Transactions, model.Transaction{
		ID:          model.TransactionKey(tx.ev.ChainID, tx.ev.TxHash),
		ChainID:     tx.ev.ChainID,
		Hash:        tx.ev.TxHash,
		BlockNumber: tx.ev.BlockNumber,
		Timestamp:   tx.ev.Timestamp,
	})

	tx.rollup()
}

func (tx *txn) rollup() {
	ts := tx.ev.Timestamp
	act := tx.activity
	for _, period := range model.Periods {
		key := bucket.Key(tx.pool.ID, ts, period)
		pb := bucket.UpsertPool(lookup(tx.snap.PoolBuckets, key), tx.pool.ID, ts, period, tx.pool.Token0Price, tx.pool.Liquidity)
		pb.Volume0 = add(pb.Volume0, act.volume0)
		pb.Volume1 = add(pb.Volume1, act.volume1)
		pb.Fees0 = add(pb.Fees0, act.fees0)
		pb.Fees1 = add(pb.Fees1, act.fees1)
		pb.TVL0 = copyInt(tx.pool.TVL0)
		pb.TVL1 = copyInt(tx.pool.TVL1)
		if act.swap {
			pb.SwapCount++
		}
		if act.modify {
			pb.ModifyLiquidityCount++
		}
		if act.donate {
			pb.DonateCount++
		}
		tx.out.PoolBuckets = append(tx.out.PoolBuckets, pb)

		// Token prices are quoted in the counterpart of the touching pool.
		tx.out.TokenBuckets = append(tx.out.TokenBuckets,
			tx.tokenBucket(tx.token0, ts, period, tx.pool.Token0Price, act.volume0, act.fees0),
			tx.tokenBucket(tx.token1, ts, period, tx.pool.Token1Price, act.volume1, act.fees1),
		)
	}
}

func (tx *txn) tokenBucket(token model.Token, ts uint64, period model.Period, price decimal.Decimal, volume, fees *big.Int) model.TokenBucket {
	key := bucket.Key(token.ID, ts, period)
	tb := bucket.UpsertToken(lookup(tx.snap.TokenBuckets, key), token.ID, ts, period, price)
	tb.Volume = add(tb.Volume, volume)
	tb.Fees = add(tb.Fees, fees)
	tb.TVL = copyInt(token.TVL)
	if tx.activity.swap {
		tb.SwapCount++
	}
	return tb
}

func (tx *txn) changeset() storage.Changeset {
	cs := tx.out
	cs.Pools = []model.Pool{tx.pool}
	cs.Tokens = []model.Token{tx.token0}
	if tx.token1.ID != tx.token0.ID {
		cs.Tokens = append(cs.Tokens, tx.token1)
	}
	for _, idx := range tx.tickOrder {
		cs.Ticks = append(cs.Ticks, tx.ticks[idx])
	}
	if tx.position != nil {
		cs.Positions = []model.Position{*tx.position}
	}
	if tx.provider != nil {
		cs.Providers = []model.LiquidityProvider{*tx.provider}
	}
	if tx.hook != nil {
		cs.Hooks = []model.HookStats{*tx.hook}
	}
	return cs
}

func lookup[T any](m map[string]T, key string) model.Option[T] {
	v, ok := m[key]
	return model.OptionOf(v, ok)
}

func newHookStats(chainID uint64, address string) model.HookStats {
	return model.HookStats{
		ID:      model.HookKey(chainID, address),
		ChainID: chainID,
		Address: model.NormalizeAddress(address),
	}
}
