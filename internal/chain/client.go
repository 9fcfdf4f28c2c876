package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	lru "github.com/hashicorp/golang-lru/v2"
)

const timestampCacheSize = 65536

// ContractCaller performs read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// LogFilter selects logs by emitting contract and event signature.
type LogFilter struct {
	Addresses []common.Address
	Topic0    []common.Hash
}

func (f LogFilter) query(fromBlock, toBlock uint64) ethereum.FilterQuery {
	q := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: f.Addresses,
	}
	if len(f.Topic0) > 0 {
		q.Topics = [][]common.Hash{f.Topic0}
	}
	return q
}

// Client wraps go-ethereum RPC for log fetching and contract reads.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	tsCache   *lru.Cache[uint64, uint64]
}

// NewClient dials rpcURL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[uint64, uint64](timestampCacheSize)
	if err != nil {
		rpcClient.Close()
		return nil, fmt.Errorf("timestamp cache: %w", err)
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		tsCache:   cache,
	}, nil
}

func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

func (c *Client) GetChainID(ctx context.Context) (*big.Int, error) {
	return c.ethClient.ChainID(ctx)
}

func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// BlockTimestamps returns the timestamps of the given blocks. Blocks missing
// from the cache are fetched in a single batch request.
func (c *Client) BlockTimestamps(ctx context.Context, numbers []uint64) (map[uint64]uint64, error) {
	out := make(map[uint64]uint64, len(numbers))
	var missing []uint64
	for _, n := range numbers {
		if _, dup := out[n]; dup {
			continue
		}
		if ts, ok := c.tsCache.Get(n); ok {
			out[n] = ts
			continue
		}
		out[n] = 0
		missing = append(missing, n)
	}
	if len(missing) == 0 {
		return out, nil
	}

	type blockTime struct {
		Timestamp hexutil.Uint64 `json:"timestamp"`
	}
	results := make([]*blockTime, len(missing))
	batch := make([]rpc.BatchElem, len(missing))
	for i, n := range missing {
		results[i] = new(blockTime)
		batch[i] = rpc.BatchElem{
			Method: "eth_getBlockByNumber",
			Args:   []interface{}{hexutil.EncodeUint64(n), false},
			Result: results[i],
		}
	}
	if err := c.rpcClient.BatchCallContext(ctx, batch); err != nil {
		return nil, fmt.Errorf("batch block headers: %w", err)
	}

	for i, elem := range batch {
		if elem.Error != nil {
			return nil, fmt.Errorf("block %d: %w", missing[i], elem.Error)
		}
		// A null result leaves the zero value; the block is not available yet.
		ts := uint64(results[i].Timestamp)
		if ts == 0 {
			return nil, fmt.Errorf("block %d: %w", missing[i], ethereum.NotFound)
		}
		out[missing[i]] = ts
		c.tsCache.Add(missing[i], ts)
	}
	return out, nil
}

// FilterLogs returns the logs in [fromBlock, toBlock] matching filter.
func (c *Client) FilterLogs(ctx context.Context, fromBlock, toBlock uint64, filter LogFilter) ([]types.Log, error) {
	return c.ethClient.FilterLogs(ctx, filter.query(fromBlock, toBlock))
}

// CallContract performs an eth_call. A nil block reads latest state.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return c.ethClient.CallContract(ctx, msg, blockNumber)
}

var _ ContractCaller = (*Client)(nil)
