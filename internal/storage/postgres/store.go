package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityLedger/internal/model"
	"liquidityLedger/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

const (
	kindPool        = "pool"
	kindToken       = "token"
	kindTick        = "tick"
	kindPosition    = "position"
	kindProvider    = "provider"
	kindHook        = "hook"
	kindPoolBucket  = "pool_bucket"
	kindTokenBucket = "token_bucket"
	kindTransaction = "transaction"

	kindSwap            = "swap"
	kindModifyLiquidity = "modify_liquidity"
	kindDonate          = "donate"
)

// Store provides Postgres persistence for ledger entities. Entities live
// as JSONB documents keyed by (kind, id); event rows are append-only.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the ledger tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) GetPool(ctx context.Context, key string) (model.Pool, bool, error) {
	var v model.Pool
	ok, err := s.getEntity(ctx, kindPool, key, &v)
	return v, ok, err
}

func (s *Store) GetToken(ctx context.Context, key string) (model.Token, bool, error) {
	var v model.Token
	ok, err := s.getEntity(ctx, kindToken, key, &v)
	return v, ok, err
}

func (s *Store) GetTick(ctx context.Context, key string) (model.Tick, bool, error) {
	var v model.Tick
	ok, err := s.getEntity(ctx, kindTick, key, &v)
	return v, ok, err
}

func (s *Store) GetPosition(ctx context.Context, key string) (model.Position, bool, error) {
	var v model.Position
	ok, err := s.getEntity(ctx, kindPosition, key, &v)
	return v, ok, err
}

func (s *Store) GetProvider(ctx context.Context, key string) (model.LiquidityProvider, bool, error) {
	var v model.LiquidityProvider
	ok, err := s.getEntity(ctx, kindProvider, key, &v)
	return v, ok, err
}

func (s *Store) GetHook(ctx context.Context, key string) (model.HookStats, bool, error) {
	var v model.HookStats
	ok, err := s.getEntity(ctx, kindHook, key, &v)
	return v, ok, err
}

func (s *Store) GetPoolBucket(ctx context.Context, key string) (model.PoolBucket, bool, error) {
	var v model.PoolBucket
	ok, err := s.getEntity(ctx, kindPoolBucket, key, &v)
	return v, ok, err
}

func (s *Store) GetTokenBucket(ctx context.Context, key string) (model.TokenBucket, bool, error) {
	var v model.TokenBucket
	ok, err := s.getEntity(ctx, kindTokenBucket, key, &v)
	return v, ok, err
}

func (s *Store) getEntity(ctx context.Context, kind, id string, dst interface{}) (bool, error) {
	var data []byte
	row := s.pool.QueryRow(ctx, `SELECT data FROM ledger_entities WHERE kind=$1 AND id=$2`, kind, id)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("select %s %s: %w", kind, id, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s %s: %w", kind, id, err)
	}
	return true, nil
}

// TicksInRange returns initialized ticks of a pool with lo <= idx <= hi.
func (s *Store) TicksInRange(ctx context.Context, poolKey string, lo, hi int32) ([]model.Tick, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT data FROM ledger_entities
		WHERE kind = $1 AND pool_key = $2 AND tick_idx BETWEEN $3 AND $4
		ORDER BY tick_idx
	`, kindTick, poolKey, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("select ticks: %w", err)
	}
	defer rows.Close()

	var ticks []model.Tick
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		var t model.Tick
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("decode tick: %w", err)
		}
		ticks = append(ticks, t)
	}
	return ticks, rows.Err()
}

type entityRow struct {
	kind    string
	id      string
	poolKey *string
	tickIdx *int32
	value   interface{}
}

type eventRow struct {
	kind  string
	ref   model.EventRef
	value interface{}
}

// Apply writes the changeset in one transaction.
func (s *Store) Apply(ctx context.Context, cs storage.Changeset) error {
	if cs.Empty() {
		return nil
	}
	entities, events := rowsOf(cs)

	batch := &pgx.Batch{}
	for _, e := range entities {
		data, err := json.Marshal(e.value)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", e.kind, e.id, err)
		}
		batch.Queue(`
			INSERT INTO ledger_entities (kind, id, pool_key, tick_idx, data, updated_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (kind, id)
			DO UPDATE SET
				pool_key = EXCLUDED.pool_key,
				tick_idx = EXCLUDED.tick_idx,
				data = EXCLUDED.data,
				updated_at = now()
		`, e.kind, e.id, e.poolKey, e.tickIdx, data)
	}
	for _, e := range events {
		data, err := json.Marshal(e.value)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", e.kind, e.ref.ID, err)
		}
		batch.Queue(`
			INSERT INTO ledger_events (kind, id, chain_id, tx_hash, log_index, block_number, block_ts, pool_key, data)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (kind, id) DO NOTHING
		`,
			e.kind,
			e.ref.ID,
			int64(e.ref.ChainID),
			e.ref.TxHash,
			int64(e.ref.LogIndex),
			int64(e.ref.BlockNumber),
			int64(e.ref.Timestamp),
			e.ref.PoolKey,
			data,
		)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("write changeset: %w", err)
			}
		}
		return br.Close()
	})
}

func rowsOf(cs storage.Changeset) ([]entityRow, []eventRow) {
	entities := make([]entityRow, 0, cs.Writes())
	for _, v := range cs.Pools {
		entities = append(entities, entityRow{kind: kindPool, id: v.ID, value: v})
	}
	for _, v := range cs.Tokens {
		entities = append(entities, entityRow{kind: kindToken, id: v.ID, value: v})
	}
	for _, v := range cs.Ticks {
		poolKey, idx := v.PoolKey, v.TickIdx
		entities = append(entities, entityRow{kind: kindTick, id: v.ID, poolKey: &poolKey, tickIdx: &idx, value: v})
	}
	for _, v := range cs.Positions {
		poolKey := v.PoolKey
		entities = append(entities, entityRow{kind: kindPosition, id: v.ID, poolKey: &poolKey, value: v})
	}
	for _, v := range cs.Providers {
		poolKey := v.PoolKey
		entities = append(entities, entityRow{kind: kindProvider, id: v.ID, poolKey: &poolKey, value: v})
	}
	for _, v := range cs.Hooks {
		entities = append(entities, entityRow{kind: kindHook, id: v.ID, value: v})
	}
	for _, v := range cs.PoolBuckets {
		poolKey := v.PoolKey
		entities = append(entities, entityRow{kind: kindPoolBucket, id: v.ID, poolKey: &poolKey, value: v})
	}
	for _, v := range cs.TokenBuckets {
		entities = append(entities, entityRow{kind: kindTokenBucket, id: v.ID, value: v})
	}
	for _, v := range cs.Transactions {
		entities = append(entities, entityRow{kind: kindTransaction, id: v.ID, value: v})
	}

	events := make([]eventRow, 0, len(cs.Swaps)+len(cs.ModifyLiquidities)+len(cs.Donates))
	for _, v := range cs.Swaps {
		events = append(events, eventRow{kind: kindSwap, ref: v.EventRef, value: v})
	}
	for _, v := range cs.ModifyLiquidities {
		events = append(events, eventRow{kind: kindModifyLiquidity, ref: v.EventRef, value: v})
	}
	for _, v := range cs.Donates {
		events = append(events, eventRow{kind: kindDonate, ref: v.EventRef, value: v})
	}
	return entities, events
}

// LoadState returns last_processed_block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block uint64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return block, true, nil
}

// SaveState upserts last_processed_block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, int64(block))
	return err
}

// Cursor exposes the indexer_state row called name as a storage.Cursor.
func (s *Store) Cursor(name string) storage.Cursor {
	return stateCursor{store: s, name: name}
}

type stateCursor struct {
	store *Store
	name  string
}

func (c stateCursor) Load(ctx context.Context) (uint64, bool, error) {
	return c.store.LoadState(ctx, c.name)
}

func (c stateCursor) Save(ctx context.Context, block uint64) error {
	return c.store.SaveState(ctx, c.name, block)
}

var _ storage.EntityStore = (*Store)(nil)
