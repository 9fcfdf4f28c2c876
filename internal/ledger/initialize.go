package ledger

import (
	"fmt"
	"math/big"

	"liquidityLedger/internal/model"
)

func applyInitialize(tx *txn) error {
	p, ok := tx.ev.Payload.(Initialize)
	if !ok {
		return fmt.Errorf("%w: payload %T", ErrUnknownEvent, tx.ev.Payload)
	}
	ev := tx.ev
	if existing, found := tx.snap.Pool.Get(); found {
		if existing.Applied(ev.BlockNumber, ev.LogIndex) {
			return fmt.Errorf("%w: %s at %d/%d", ErrAlreadyApplied, existing.ID, ev.BlockNumber, ev.LogIndex)
		}
		return fmt.Errorf("%w: %s", ErrPoolExists, existing.ID)
	}

	tx.pool = model.Pool{
		ID:                 ev.PoolKey(),
		ChainID:            ev.ChainID,
		PoolID:             ev.PoolID,
		Token0:             model.NormalizeAddress(p.Currency0),
		Token1:             model.NormalizeAddress(p.Currency1),
		FeeTier:            p.Fee,
		TickSpacing:        p.TickSpacing,
		Hooks:              model.NormalizeAddress(p.Hooks),
		Tick:               p.Tick,
		SqrtPrice:          copyInt(p.SqrtPrice),
		Liquidity:          new(big.Int),
		FeeGrowthGlobal0:   new(big.Int),
		FeeGrowthGlobal1:   new(big.Int),
		Volume0:            new(big.Int),
		Volume1:            new(big.Int),
		Fees0:              new(big.Int),
		Fees1:              new(big.Int),
		TVL0:               new(big.Int),
		TVL1:               new(big.Int),
		CreatedAtBlock:     ev.BlockNumber,
		CreatedAtTimestamp: ev.Timestamp,
	}

	token0, found := tx.snap.Token0.Get()
	if !found {
		token0 = newToken(ev, tx.pool.Token0, tx.snap.Meta0)
	}
	token1, found := tx.snap.Token1.Get()
	if !found {
		token1 = newToken(ev, tx.pool.Token1, tx.snap.Meta1)
	}
	token0.PoolCount++
	token1.PoolCount++
	tx.token0 = token0
	tx.token1 = token1

	if tx.pool.HasHooks() {
		hook := tx.snap.Hook.OrElse(newHookStats(ev.ChainID, tx.pool.Hooks))
		hook.PoolCount++
		tx.hook = &hook
	}
	return nil
}

// newToken creates a token record from resolved metadata. Metadata is fixed
// from here on.
func newToken(ev Event, address string, meta model.TokenMeta) model.Token {
	if meta.Symbol == "" && meta.Name == "" {
		meta = model.UnknownTokenMeta(address)
	}
	return model.Token{
		ID:                 model.TokenKey(ev.ChainID, address),
		ChainID:            ev.ChainID,
		Address:            model.NormalizeAddress(address),
		Symbol:             meta.Symbol,
		Name:               meta.Name,
		Decimals:           meta.Decimals,
		Volume:             new(big.Int),
		Fees:               new(big.Int),
		TVL:                new(big.Int),
		CreatedAtBlock:     ev.BlockNumber,
		CreatedAtTimestamp: ev.Timestamp,
	}
}
