package memory

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidityLedger/internal/model"
	"liquidityLedger/internal/storage"
)

func TestStoreApplyAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	poolKey := model.PoolKey(1, "0xaa")
	_, found, err := s.GetPool(ctx, poolKey)
	require.NoError(t, err)
	assert.False(t, found)

	cs := storage.Changeset{
		Pools: []model.Pool{{ID: poolKey, Liquidity: big.NewInt(5)}},
		Ticks: []model.Tick{
			{ID: model.TickKey(poolKey, -60), PoolKey: poolKey, TickIdx: -60},
			{ID: model.TickKey(poolKey, 60), PoolKey: poolKey, TickIdx: 60},
			{ID: model.TickKey(poolKey, 600), PoolKey: poolKey, TickIdx: 600},
			{ID: model.TickKey("other", 0), PoolKey: "other", TickIdx: 0},
		},
		Swaps: []model.SwapRecord{{EventRef: model.EventRef{ID: "s1"}}},
	}
	require.NoError(t, s.Apply(ctx, cs))

	pool, found, err := s.GetPool(ctx, poolKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 0, pool.Liquidity.Cmp(big.NewInt(5)))

	ticks, err := s.TicksInRange(ctx, poolKey, -60, 120)
	require.NoError(t, err)
	require.Len(t, ticks, 2)
	assert.Equal(t, int32(-60), ticks[0].TickIdx)
	assert.Equal(t, int32(60), ticks[1].TickIdx)

	assert.Len(t, s.Swaps(), 1)
	assert.Empty(t, s.Donates())
}

func TestStoreApplyReplacesEntity(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	key := model.TokenKey(1, "0xbb")

	require.NoError(t, s.Apply(ctx, storage.Changeset{Tokens: []model.Token{{ID: key, PoolCount: 1}}}))
	require.NoError(t, s.Apply(ctx, storage.Changeset{Tokens: []model.Token{{ID: key, PoolCount: 2}}}))

	token, found, err := s.GetToken(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(2), token.PoolCount)
}
