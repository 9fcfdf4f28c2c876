package postgres

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"liquidityLedger/internal/model"
	"liquidityLedger/internal/storage"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container test skipped in -short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.EnsureSchema(ctx))
	return store
}

func TestStoreApplyRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	poolKey := model.PoolKey(1, "0xaa")
	growth, ok := new(big.Int).SetString("340282366920938463463374607431768211456", 10)
	require.True(t, ok)

	cs := storage.Changeset{
		Pools: []model.Pool{{
			ID:               poolKey,
			ChainID:          1,
			Tick:             -42,
			SqrtPrice:        big.NewInt(79228162514264337),
			Liquidity:        big.NewInt(1000),
			FeeGrowthGlobal0: growth,
			Token0Price:      decimal.RequireFromString("1.000100000000000000000000000001"),
		}},
		Ticks: []model.Tick{
			{ID: model.TickKey(poolKey, -60), PoolKey: poolKey, TickIdx: -60, LiquidityNet: big.NewInt(1000)},
			{ID: model.TickKey(poolKey, 60), PoolKey: poolKey, TickIdx: 60, LiquidityNet: big.NewInt(-1000)},
			{ID: model.TickKey(poolKey, 600), PoolKey: poolKey, TickIdx: 600, LiquidityNet: big.NewInt(0)},
		},
		Swaps: []model.SwapRecord{{
			EventRef: model.EventRef{ID: model.EventKey(1, "0xtx", 3), ChainID: 1, TxHash: "0xtx", LogIndex: 3, PoolKey: poolKey},
			Amount0:  big.NewInt(-5),
		}},
	}
	require.NoError(t, store.Apply(ctx, cs))
	// Replaying the same rows must not fail.
	require.NoError(t, store.Apply(ctx, cs))

	pool, found, err := store.GetPool(ctx, poolKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int32(-42), pool.Tick)
	assert.Equal(t, 0, pool.FeeGrowthGlobal0.Cmp(growth))
	assert.True(t, pool.Token0Price.Equal(decimal.RequireFromString("1.000100000000000000000000000001")))

	ticks, err := store.TicksInRange(ctx, poolKey, -60, 60)
	require.NoError(t, err)
	require.Len(t, ticks, 2)
	assert.Equal(t, int32(-60), ticks[0].TickIdx)
	assert.Equal(t, 0, ticks[1].LiquidityNet.Cmp(big.NewInt(-1000)))

	_, found, err = store.GetToken(ctx, model.TokenKey(1, "0xbb"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreState(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, ok, err := store.LoadState(ctx, "ledger")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveState(ctx, "ledger", 100))
	require.NoError(t, store.SaveState(ctx, "ledger", 120))

	block, ok, err := store.LoadState(ctx, "ledger")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(120), block)
}

func TestStoreCursorsAreIndependent(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	logs := store.Cursor("logs")
	ledgerCursor := store.Cursor("ledger")
	require.NoError(t, logs.Save(ctx, 500))

	_, ok, err := ledgerCursor.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	block, ok, err := logs.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(500), block)
}
