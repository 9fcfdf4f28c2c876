package dex

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"liquidityLedger/internal/model"
)

var (
	testManager = common.HexToAddress("0x000000000004444c5dc75cB358380D2e3dE08A90")
	testPoolID  = common.HexToHash("0x21c67e77068de97969ba93d4aab21826d33ca12bb9f565d8496e8fda8a82ca27")
)

func TestPoolManagerDecoderInitialize(t *testing.T) {
	managerABI, err := PoolManagerABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewPoolManagerDecoder(DecoderConfig{})
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	currency0 := common.Address{}
	currency1 := common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	hooks := common.HexToAddress("0x4444444444444444444444444444444444444444")
	sqrtPrice, _ := new(big.Int).SetString("1461446703485210103287273052203988822378723970341", 10)

	data, err := managerABI.Events["Initialize"].Inputs.NonIndexed().Pack(
		big.NewInt(3000),
		big.NewInt(60),
		hooks,
		sqrtPrice,
		big.NewInt(-195000),
	)
	if err != nil {
		t.Fatalf("pack initialize: %v", err)
	}

	record := buildLogRecord(managerABI.Events["Initialize"].ID, data, []common.Hash{
		testPoolID,
		topicFromAddress(currency0),
		topicFromAddress(currency1),
	})
	if !decoder.CanDecode(record.Topics[0]) {
		t.Fatalf("initialize topic not supported")
	}

	event, err := decoder.Decode(record)
	if err != nil {
		t.Fatalf("decode initialize: %v", err)
	}
	initEv, ok := event.Decoded.(model.InitializeEventData)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", event.Decoded)
	}
	if initEv.PoolID != strings.ToLower(testPoolID.Hex()) {
		t.Fatalf("pool id mismatch: %s", initEv.PoolID)
	}
	if initEv.Currency0 != currency0.Hex() || initEv.Currency1 != currency1.Hex() {
		t.Fatalf("currency mismatch: %+v", initEv)
	}
	if initEv.Fee != 3000 || initEv.TickSpacing != 60 || initEv.Tick != -195000 {
		t.Fatalf("params mismatch: %+v", initEv)
	}
	if initEv.Hooks != hooks.Hex() || initEv.SqrtPriceX96 != sqrtPrice.String() {
		t.Fatalf("hooks/price mismatch: %+v", initEv)
	}
	if event.EventName != model.EventInitialize || event.Raw == nil {
		t.Fatalf("event envelope mismatch: %+v", event)
	}
}

func TestPoolManagerDecoderModifyLiquidity(t *testing.T) {
	managerABI, err := PoolManagerABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewPoolManagerDecoder(DecoderConfig{})
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	sender := common.HexToAddress("0x2222222222222222222222222222222222222222")
	var salt [32]byte
	salt[31] = 7

	data, err := managerABI.Events["ModifyLiquidity"].Inputs.NonIndexed().Pack(
		big.NewInt(-120),
		big.NewInt(120),
		big.NewInt(-5000),
		salt,
	)
	if err != nil {
		t.Fatalf("pack modify liquidity: %v", err)
	}

	event, err := decoder.Decode(buildLogRecord(managerABI.Events["ModifyLiquidity"].ID, data, []common.Hash{
		testPoolID,
		topicFromAddress(sender),
	}))
	if err != nil {
		t.Fatalf("decode modify liquidity: %v", err)
	}
	ml, ok := event.Decoded.(model.ModifyLiquidityEventData)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", event.Decoded)
	}
	if ml.TickLower != -120 || ml.TickUpper != 120 || ml.LiquidityDelta != "-5000" {
		t.Fatalf("modify liquidity mismatch: %+v", ml)
	}
	if ml.Sender != sender.Hex() || ml.Salt != hexutil.Encode(salt[:]) {
		t.Fatalf("sender/salt mismatch: %+v", ml)
	}
}

func TestPoolManagerDecoderSwapAndDonate(t *testing.T) {
	managerABI, err := PoolManagerABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewPoolManagerDecoder(DecoderConfig{})
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	sender := common.HexToAddress("0x3333333333333333333333333333333333333333")

	swapData, err := managerABI.Events["Swap"].Inputs.NonIndexed().Pack(
		big.NewInt(-1000),
		big.NewInt(2000),
		big.NewInt(123456789),
		big.NewInt(987654321),
		big.NewInt(-15),
		big.NewInt(500),
	)
	if err != nil {
		t.Fatalf("pack swap: %v", err)
	}
	event, err := decoder.Decode(buildLogRecord(managerABI.Events["Swap"].ID, swapData, []common.Hash{
		testPoolID,
		topicFromAddress(sender),
	}))
	if err != nil {
		t.Fatalf("decode swap: %v", err)
	}
	swap, ok := event.Decoded.(model.SwapEventData)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", event.Decoded)
	}
	if swap.Amount0 != "-1000" || swap.Amount1 != "2000" {
		t.Fatalf("amounts mismatch: %+v", swap)
	}
	if swap.Tick != -15 || swap.Fee != 500 || swap.Liquidity != "987654321" {
		t.Fatalf("swap state mismatch: %+v", swap)
	}

	donateData, err := managerABI.Events["Donate"].Inputs.NonIndexed().Pack(big.NewInt(100), big.NewInt(0))
	if err != nil {
		t.Fatalf("pack donate: %v", err)
	}
	event, err = decoder.Decode(buildLogRecord(managerABI.Events["Donate"].ID, donateData, []common.Hash{
		testPoolID,
		topicFromAddress(sender),
	}))
	if err != nil {
		t.Fatalf("decode donate: %v", err)
	}
	donate, ok := event.Decoded.(model.DonateEventData)
	if !ok {
		t.Fatalf("decoded type mismatch: %T", event.Decoded)
	}
	if donate.Amount0 != "100" || donate.Amount1 != "0" || donate.Sender != sender.Hex() {
		t.Fatalf("donate mismatch: %+v", donate)
	}
}

func TestPoolManagerDecoderRejects(t *testing.T) {
	managerABI, err := PoolManagerABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	decoder, err := NewPoolManagerDecoder(DecoderConfig{})
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	if decoder.CanDecode("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef") {
		t.Fatalf("transfer topic should not be supported")
	}

	// Missing the sender topic.
	record := buildLogRecord(managerABI.Events["Donate"].ID, nil, []common.Hash{testPoolID})
	if _, err := decoder.Decode(record); err == nil {
		t.Fatalf("expected topic count error")
	}

	if _, err := NewPoolManagerDecoder(DecoderConfig{Topic0Map: map[string]string{"0x01": "Mint"}}); err == nil {
		t.Fatalf("expected unsupported alias error")
	}
	aliased, err := NewPoolManagerDecoder(DecoderConfig{Topic0Map: map[string]string{"0xABCD": "swap"}})
	if err != nil {
		t.Fatalf("decoder with alias: %v", err)
	}
	if !aliased.CanDecode("0xabcd") {
		t.Fatalf("alias topic not supported")
	}
}

func TestPoolManagerTopic0(t *testing.T) {
	topics, err := PoolManagerTopic0()
	if err != nil {
		t.Fatalf("topic0: %v", err)
	}
	if len(topics) != 4 {
		t.Fatalf("expected 4 topics, got %d", len(topics))
	}
	decoder, err := NewPoolManagerDecoder(DecoderConfig{})
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	for _, topic := range topics {
		if !decoder.CanDecode(topic) {
			t.Fatalf("topic %s not decodable", topic)
		}
	}
}

func buildLogRecord(topic0 common.Hash, data []byte, indexed []common.Hash) model.LogRecord {
	topics := make([]string, 0, len(indexed)+1)
	topics = append(topics, topic0.Hex())
	for _, topic := range indexed {
		topics = append(topics, topic.Hex())
	}

	return model.LogRecord{
		ChainID:     1,
		BlockNumber: 21688329,
		BlockHash:   "0xabc",
		TxHash:      "0xdef",
		LogIndex:    1,
		Address:     testManager.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(data),
		Timestamp:   1737000000,
	}
}

func topicFromAddress(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}
