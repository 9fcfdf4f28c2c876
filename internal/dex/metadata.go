package dex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"liquidityLedger/internal/chain"
	"liquidityLedger/internal/metrics"
	"liquidityLedger/internal/model"
)

// Lookup sources reported to metrics.
const (
	lookupCache  = "cache"
	lookupNative = "native"
	lookupRPC    = "rpc"
	lookupFailed = "fallback"
)

// TokenResolver resolves ERC20 metadata over RPC. Results are cached forever
// per (chain, address) and concurrent first lookups share one fetch. Lookups
// interrupted by context cancellation are not cached.
type TokenResolver struct {
	caller  chain.ContractCaller
	chain   chain.Config
	metrics *metrics.Ledger
	logger  *zap.Logger

	mu    sync.RWMutex
	cache map[string]model.TokenMeta
	group singleflight.Group
}

// NewTokenResolver builds a resolver. A nil caller yields placeholder
// metadata for every non-native token.
func NewTokenResolver(caller chain.ContractCaller, cfg chain.Config, m *metrics.Ledger, logger *zap.Logger) *TokenResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenResolver{
		caller:  caller,
		chain:   cfg,
		metrics: m,
		logger:  logger,
		cache:   make(map[string]model.TokenMeta),
	}
}

// Resolve returns metadata for address. Fields that cannot be read are
// replaced with placeholders.
func (r *TokenResolver) Resolve(ctx context.Context, chainID uint64, address string) model.TokenMeta {
	if model.IsZeroAddress(address) {
		r.metrics.TokenLookup(lookupNative)
		return r.chain.NativeToken()
	}

	key := model.TokenKey(chainID, address)
	r.mu.RLock()
	meta, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		r.metrics.TokenLookup(lookupCache)
		return meta
	}

	v, _, _ := r.group.Do(key, func() (interface{}, error) {
		r.mu.RLock()
		cached, ok := r.cache[key]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}

		meta, err := r.fetch(ctx, address)
		if err != nil {
			r.metrics.TokenLookup(lookupFailed)
			r.logger.Warn("token metadata fetch failed", zap.String("token", address), zap.Error(err))
			// A lookup cut short by its caller says nothing about the token;
			// leave it uncached so the next caller retries.
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return meta, nil
			}
		} else {
			r.metrics.TokenLookup(lookupRPC)
		}

		r.mu.Lock()
		r.cache[key] = meta
		r.mu.Unlock()
		return meta, nil
	})
	return v.(model.TokenMeta)
}

func (r *TokenResolver) fetch(ctx context.Context, address string) (model.TokenMeta, error) {
	if !common.IsHexAddress(address) {
		return model.UnknownTokenMeta(address), fmt.Errorf("invalid token address: %s", address)
	}
	if r.caller == nil {
		return model.UnknownTokenMeta(address), fmt.Errorf("chain client is nil")
	}
	return FetchTokenMeta(ctx, r.caller, common.HexToAddress(address), r.logger)
}

// FetchTokenMeta loads token metadata via ERC20 calls. Each field falls back
// independently; the returned error reports the first field that failed.
func FetchTokenMeta(ctx context.Context, caller chain.ContractCaller, token common.Address, logger *zap.Logger) (model.TokenMeta, error) {
	meta := model.UnknownTokenMeta(token.Hex())
	if caller == nil {
		return meta, fmt.Errorf("chain client is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	stringABI, err := erc20ABIStringInstance()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 string abi: %w", err)
	}
	bytes32ABI, err := erc20ABIBytes32Instance()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	call := func(method string, parsed abi.ABI) ([]interface{}, error) {
		data, err := parsed.Pack(method)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", method, err)
		}
		msg := ethereum.CallMsg{To: &token, Data: data}
		resp, err := caller.CallContract(ctx, msg, nil)
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", method, err)
		}
		values, err := parsed.Unpack(method, resp)
		if err != nil {
			return nil, fmt.Errorf("unpack %s: %w", method, err)
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("unpack %s: empty result", method)
		}
		return values, nil
	}

	var firstErr error
	fail := func(field string, err error) {
		logger.Debug("token field call failed", zap.String("token", token.Hex()), zap.String("field", field), zap.Error(err))
		if firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", field, err)
		}
	}

	if values, err := call("decimals", stringABI); err != nil {
		fail("decimals", err)
	} else if decimals, err := asUint8(values[0]); err != nil {
		fail("decimals", err)
	} else {
		meta.Decimals = decimals
	}

	if symbol, err := readText(call, "symbol", stringABI, bytes32ABI); err != nil {
		fail("symbol", err)
	} else {
		meta.Symbol = symbol
	}

	if name, err := readText(call, "name", stringABI, bytes32ABI); err != nil {
		fail("name", err)
	} else {
		meta.Name = name
	}

	return meta, firstErr
}

// readText tries the string ABI first and falls back to bytes32 for legacy
// tokens such as MKR.
func readText(call func(string, abi.ABI) ([]interface{}, error), method string, stringABI, bytes32ABI abi.ABI) (string, error) {
	values, err := call(method, stringABI)
	if err == nil {
		if text, ok := values[0].(string); ok && text != "" {
			return text, nil
		}
	}
	values, err = call(method, bytes32ABI)
	if err != nil {
		return "", err
	}
	text, ok := bytes32ToString(values[0])
	if !ok || text == "" {
		return "", fmt.Errorf("empty %s", method)
	}
	return text, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
