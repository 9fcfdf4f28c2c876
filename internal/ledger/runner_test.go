package ledger

import (
	"context"
	"encoding/json"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidityLedger/internal/model"
	"liquidityLedger/internal/storage"
	"liquidityLedger/internal/storage/memory"
)

func typedRecord(t *testing.T, block uint64, name string, payload interface{}) model.TypedEventRecord {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return model.TypedEventRecord{
		ChainID:     testChainID,
		BlockNumber: block,
		TxHash:      "0xtx",
		EventName:   name,
		Timestamp:   baseTime + block,
		Decoded:     data,
	}
}

func TestRunnerResumesFromState(t *testing.T) {
	ctx := context.Background()
	state := &storage.FileCursor{Path: filepath.Join(t.TempDir(), "ledger.json")}
	require.NoError(t, state.Save(ctx, 5))

	store := memory.NewStore()
	runner := NewRunner(RunnerConfig{Cursor: state, CheckpointEvery: 1}, NewProcessor(store, nil, nil, nil), nil)
	require.NoError(t, runner.Start(ctx))

	records := []model.TypedEventRecord{
		typedRecord(t, 4, model.EventInitialize, model.InitializeEventData{
			PoolID: testPoolID, Currency0: testToken0, Currency1: testToken1, Fee: 3000, TickSpacing: 60,
			Hooks: model.ZeroAddress, SqrtPriceX96: "79228162514264337593543950336",
		}),
		typedRecord(t, 5, model.EventInitialize, model.InitializeEventData{
			PoolID: testPoolID, Currency0: testToken0, Currency1: testToken1, Fee: 3000, TickSpacing: 60,
			Hooks: model.ZeroAddress, SqrtPriceX96: "79228162514264337593543950336",
		}),
		typedRecord(t, 6, model.EventDonate, model.DonateEventData{PoolID: testPoolID, Sender: testOwner, Amount0: "9", Amount1: "0"}),
		typedRecord(t, 7, "Transfer", map[string]string{}),
	}
	for _, rec := range records {
		require.NoError(t, runner.Handle(ctx, rec))
	}
	require.NoError(t, runner.Finish(ctx))

	pool, found, err := store.GetPool(ctx, model.PoolKey(testChainID, testPoolID))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(5), pool.CreatedAtBlock)
	assert.Equal(t, 0, pool.TVL0.Cmp(big.NewInt(9)))

	assert.Equal(t, 1, runner.below)
	assert.Equal(t, 2, runner.outcomes[Applied])
	assert.Equal(t, 1, runner.outcomes[Dropped])

	block, ok, err := state.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(7), block)
}
