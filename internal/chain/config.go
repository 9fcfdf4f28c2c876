package chain

import (
	"fmt"

	"liquidityLedger/internal/model"
)

// Config is the per-chain information the ledger cannot read from events.
type Config struct {
	ChainID        uint64
	PoolManager    string
	NativeSymbol   string
	NativeName     string
	NativeDecimals uint8
}

var knownConfigs = map[uint64]Config{
	1: {
		ChainID:        1,
		PoolManager:    "0x000000000004444c5dc75cB358380D2e3dE08A90",
		NativeSymbol:   "ETH",
		NativeName:     "Ether",
		NativeDecimals: 18,
	},
	56: {
		ChainID:        56,
		PoolManager:    "0x28e2Ea090877bF75740558f6BFB36A5ffeE9e9dF",
		NativeSymbol:   "BNB",
		NativeName:     "BNB",
		NativeDecimals: 18,
	},
	8453: {
		ChainID:        8453,
		PoolManager:    "0x498581fF718922c3f8e6A244956aF099B2652b2b",
		NativeSymbol:   "ETH",
		NativeName:     "Ether",
		NativeDecimals: 18,
	},
	42161: {
		ChainID:        42161,
		PoolManager:    "0x360E68faCcca8cA495c1B759Fd9EEe466db9FB32",
		NativeSymbol:   "ETH",
		NativeName:     "Ether",
		NativeDecimals: 18,
	},
}

// KnownConfig returns the built-in config for chainID.
func KnownConfig(chainID uint64) (Config, bool) {
	cfg, ok := knownConfigs[chainID]
	return cfg, ok
}

// Merge fills empty fields of c from the known config of the same chain.
func (c Config) Merge() Config {
	known, ok := knownConfigs[c.ChainID]
	if !ok {
		return c
	}
	if c.PoolManager == "" {
		c.PoolManager = known.PoolManager
	}
	if c.NativeSymbol == "" {
		c.NativeSymbol = known.NativeSymbol
	}
	if c.NativeName == "" {
		c.NativeName = known.NativeName
	}
	if c.NativeDecimals == 0 {
		c.NativeDecimals = known.NativeDecimals
	}
	return c
}

// Validate checks the fields the ledger depends on.
func (c Config) Validate() error {
	if c.ChainID == 0 {
		return fmt.Errorf("chain id is required")
	}
	if c.NativeSymbol == "" || c.NativeName == "" {
		return fmt.Errorf("native currency metadata is required for chain %d", c.ChainID)
	}
	return nil
}

// NativeToken is the metadata of the zero-address currency.
func (c Config) NativeToken() model.TokenMeta {
	return model.TokenMeta{
		Address:  model.ZeroAddress,
		Decimals: c.NativeDecimals,
		Symbol:   c.NativeSymbol,
		Name:     c.NativeName,
	}
}
