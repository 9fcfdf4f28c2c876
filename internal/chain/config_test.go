package chain

import (
	"testing"

	"liquidityLedger/internal/model"
)

func TestConfigMerge(t *testing.T) {
	cfg := Config{ChainID: 56, NativeSymbol: "WBNB"}.Merge()
	if cfg.NativeSymbol != "WBNB" {
		t.Fatalf("explicit symbol overwritten: %s", cfg.NativeSymbol)
	}
	if cfg.NativeName != "BNB" || cfg.NativeDecimals != 18 || cfg.PoolManager == "" {
		t.Fatalf("known fields not filled: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected error for missing chain id")
	}
	cfg := Config{ChainID: 999999}.Merge()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown chain without native metadata")
	}
}

func TestNativeToken(t *testing.T) {
	cfg, ok := KnownConfig(1)
	if !ok {
		t.Fatalf("mainnet config missing")
	}
	meta := cfg.NativeToken()
	if meta.Address != model.ZeroAddress || meta.Symbol != "ETH" || meta.Decimals != 18 {
		t.Fatalf("unexpected native token: %+v", meta)
	}
}
