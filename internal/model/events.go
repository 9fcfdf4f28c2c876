package model

// Event names emitted by the pool manager.
const (
	EventInitialize      = "Initialize"
	EventModifyLiquidity = "ModifyLiquidity"
	EventSwap            = "Swap"
	EventDonate          = "Donate"
)

// InitializeEventData is the decoded Initialize event payload.
type InitializeEventData struct {
	PoolID       string `json:"pool_id"`
	Currency0    string `json:"currency0"`
	Currency1    string `json:"currency1"`
	Fee          uint32 `json:"fee"`
	TickSpacing  int32  `json:"tick_spacing"`
	Hooks        string `json:"hooks"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Tick         int32  `json:"tick"`
}

// ModifyLiquidityEventData is the decoded ModifyLiquidity event payload.
type ModifyLiquidityEventData struct {
	PoolID         string `json:"pool_id"`
	Sender         string `json:"sender"`
	TickLower      int32  `json:"tick_lower"`
	TickUpper      int32  `json:"tick_upper"`
	LiquidityDelta string `json:"liquidity_delta"`
	Salt           string `json:"salt"`
}

// SwapEventData is the decoded Swap event payload. Amounts are signed from
// the pool's perspective: negative means tokens left the pool.
type SwapEventData struct {
	PoolID       string `json:"pool_id"`
	Sender       string `json:"sender"`
	Amount0      string `json:"amount0"`
	Amount1      string `json:"amount1"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Liquidity    string `json:"liquidity"`
	Tick         int32  `json:"tick"`
	Fee          uint32 `json:"fee"`
}

// DonateEventData is the decoded Donate event payload.
type DonateEventData struct {
	PoolID  string `json:"pool_id"`
	Sender  string `json:"sender"`
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
}
