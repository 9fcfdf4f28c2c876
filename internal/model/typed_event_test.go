package model

import (
	"encoding/json"
	"testing"
)

func TestSwapEventDataJSONStringFields(t *testing.T) {
	payload := SwapEventData{
		PoolID:       "0x21c67e77068de97969ba93d4aab21826d33ca12bb9f565d8496e8fda8a82ca27",
		Sender:       "0x1111111111111111111111111111111111111111",
		Amount0:      "12345678901234567890",
		Amount1:      "-42",
		SqrtPriceX96: "79228162514264337593543950336",
		Liquidity:    "5000000000000000000",
		Tick:         10,
		Fee:          3000,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, field := range []string{"pool_id", "amount0", "amount1", "sqrt_price_x96", "liquidity"} {
		if _, ok := decoded[field].(string); !ok {
			t.Fatalf("%s should be string", field)
		}
	}
}

func TestModifyLiquidityEventDataKeepsSignedDelta(t *testing.T) {
	raw := []byte(`{"pool_id":"0x01","sender":"0x2222222222222222222222222222222222222222","tick_lower":-60,"tick_upper":60,"liquidity_delta":"-1000","salt":"0x00"}`)

	var decoded ModifyLiquidityEventData
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.LiquidityDelta != "-1000" || decoded.TickLower != -60 || decoded.TickUpper != 60 {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestTypedEventRecordBefore(t *testing.T) {
	a := TypedEventRecord{BlockNumber: 10, LogIndex: 5}
	b := TypedEventRecord{BlockNumber: 10, LogIndex: 6}
	c := TypedEventRecord{BlockNumber: 11, LogIndex: 0}

	if !a.Before(b) || !b.Before(c) || c.Before(a) || a.Before(a) {
		t.Fatalf("unexpected ordering")
	}
}
