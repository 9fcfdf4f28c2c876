// Package memory is an in-process EntityStore used by tests and by the
// ledger command when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"liquidityLedger/internal/model"
	"liquidityLedger/internal/storage"
)

// Store keeps ledger entities in maps guarded by one lock, so Apply is
// atomic with respect to readers.
type Store struct {
	mu sync.RWMutex

	pools        map[string]model.Pool
	tokens       map[string]model.Token
	ticks        map[string]model.Tick
	positions    map[string]model.Position
	providers    map[string]model.LiquidityProvider
	hooks        map[string]model.HookStats
	poolBuckets  map[string]model.PoolBucket
	tokenBuckets map[string]model.TokenBucket
	transactions map[string]model.Transaction

	swaps             []model.SwapRecord
	modifyLiquidities []model.ModifyLiquidityRecord
	donates           []model.DonateRecord
}

func NewStore() *Store {
	return &Store{
		pools:        make(map[string]model.Pool),
		tokens:       make(map[string]model.Token),
		ticks:        make(map[string]model.Tick),
		positions:    make(map[string]model.Position),
		providers:    make(map[string]model.LiquidityProvider),
		hooks:        make(map[string]model.HookStats),
		poolBuckets:  make(map[string]model.PoolBucket),
		tokenBuckets: make(map[string]model.TokenBucket),
		transactions: make(map[string]model.Transaction),
	}
}

func (s *Store) GetPool(_ context.Context, key string) (model.Pool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.pools[key]
	return v, ok, nil
}

func (s *Store) GetToken(_ context.Context, key string) (model.Token, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.tokens[key]
	return v, ok, nil
}

func (s *Store) GetTick(_ context.Context, key string) (model.Tick, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.ticks[key]
	return v, ok, nil
}

// TicksInRange scans all ticks; fine for test-sized state.
func (s *Store) TicksInRange(_ context.Context, poolKey string, lo, hi int32) ([]model.Tick, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Tick
	for _, t := range s.ticks {
		if t.PoolKey == poolKey && t.TickIdx >= lo && t.TickIdx <= hi {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TickIdx < out[j].TickIdx })
	return out, nil
}

func (s *Store) GetPosition(_ context.Context, key string) (model.Position, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.positions[key]
	return v, ok, nil
}

func (s *Store) GetProvider(_ context.Context, key string) (model.LiquidityProvider, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.providers[key]
	return v, ok, nil
}

func (s *Store) GetHook(_ context.Context, key string) (model.HookStats, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.hooks[key]
	return v, ok, nil
}

func (s *Store) GetPoolBucket(_ context.Context, key string) (model.PoolBucket, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.poolBuckets[key]
	return v, ok, nil
}

func (s *Store) GetTokenBucket(_ context.Context, key string) (model.TokenBucket, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.tokenBuckets[key]
	return v, ok, nil
}

// GetTransaction is not part of EntityStore; tests use it to inspect rows.
func (s *Store) GetTransaction(key string) (model.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.transactions[key]
	return v, ok
}

// Swaps returns a copy of the appended swap rows.
func (s *Store) Swaps() []model.SwapRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.SwapRecord(nil), s.swaps...)
}

func (s *Store) ModifyLiquidities() []model.ModifyLiquidityRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ModifyLiquidityRecord(nil), s.modifyLiquidities...)
}

func (s *Store) Donates() []model.DonateRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.DonateRecord(nil), s.donates...)
}

// Apply writes the changeset under the write lock.
func (s *Store) Apply(_ context.Context, cs storage.Changeset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range cs.Pools {
		s.pools[v.ID] = v
	}
	for _, v := range cs.Tokens {
		s.tokens[v.ID] = v
	}
	for _, v := range cs.Ticks {
		s.ticks[v.ID] = v
	}
	for _, v := range cs.Positions {
		s.positions[v.ID] = v
	}
	for _, v := range cs.Providers {
		s.providers[v.ID] = v
	}
	for _, v := range cs.Hooks {
		s.hooks[v.ID] = v
	}
	for _, v := range cs.PoolBuckets {
		s.poolBuckets[v.ID] = v
	}
	for _, v := range cs.TokenBuckets {
		s.tokenBuckets[v.ID] = v
	}
	for _, v := range cs.Transactions {
		s.transactions[v.ID] = v
	}
	s.swaps = append(s.swaps, cs.Swaps...)
	s.modifyLiquidities = append(s.modifyLiquidities, cs.ModifyLiquidities...)
	s.donates = append(s.donates, cs.Donates...)
	return nil
}

var _ storage.EntityStore = (*Store)(nil)
