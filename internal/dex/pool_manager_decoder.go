package dex

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"liquidityLedger/internal/model"
)

// PoolManagerDecoder decodes Uniswap v4 PoolManager events. Every event
// carries the pool id in topic1, so no pool metadata lookup is needed.
type PoolManagerDecoder struct {
	managerABI  abi.ABI
	topicToName map[string]string
}

// NewPoolManagerDecoder builds a PoolManager decoder.
func NewPoolManagerDecoder(cfg DecoderConfig) (*PoolManagerDecoder, error) {
	managerABI, err := PoolManagerABI()
	if err != nil {
		return nil, err
	}

	topicToName := make(map[string]string, 4)
	for _, name := range []string{model.EventInitialize, model.EventModifyLiquidity, model.EventSwap, model.EventDonate} {
		topicToName[strings.ToLower(managerABI.Events[name].ID.Hex())] = name
	}

	for topic0, name := range cfg.Topic0Map {
		original := name
		name = normalizeEventName(name)
		if name == "" {
			return nil, fmt.Errorf("unsupported event name in topic0 map: %s", original)
		}
		if topic0 == "" {
			continue
		}
		topicToName[strings.ToLower(topic0)] = name
	}

	return &PoolManagerDecoder{
		managerABI:  managerABI,
		topicToName: topicToName,
	}, nil
}

// CanDecode checks if the topic0 is supported.
func (d *PoolManagerDecoder) CanDecode(topic0 string) bool {
	if topic0 == "" {
		return false
	}
	_, ok := d.topicToName[strings.ToLower(topic0)]
	return ok
}

// Decode converts a LogRecord into a TypedEvent.
func (d *PoolManagerDecoder) Decode(log model.LogRecord) (*model.TypedEvent, error) {
	if len(log.Topics) == 0 {
		return nil, fmt.Errorf("missing topics")
	}
	name, ok := d.topicToName[strings.ToLower(log.Topics[0])]
	if !ok {
		return nil, fmt.Errorf("unsupported topic0: %s", log.Topics[0])
	}
	if !common.IsHexAddress(log.Address) {
		return nil, fmt.Errorf("invalid pool manager address: %s", log.Address)
	}

	var (
		decoded interface{}
		err     error
	)
	switch name {
	case model.EventInitialize:
		decoded, err = d.decodeInitialize(log)
	case model.EventModifyLiquidity:
		decoded, err = d.decodeModifyLiquidity(log)
	case model.EventSwap:
		decoded, err = d.decodeSwap(log)
	case model.EventDonate:
		decoded, err = d.decodeDonate(log)
	default:
		return nil, fmt.Errorf("unsupported event name: %s", name)
	}
	if err != nil {
		return nil, err
	}
	return buildTypedEvent(log, name, decoded), nil
}

func normalizeEventName(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "initialize":
		return model.EventInitialize
	case "modifyliquidity", "modify_liquidity":
		return model.EventModifyLiquidity
	case "swap":
		return model.EventSwap
	case "donate":
		return model.EventDonate
	default:
		return ""
	}
}

func buildTypedEvent(log model.LogRecord, name string, decoded interface{}) *model.TypedEvent {
	raw := &model.RawLogRef{Topic0: log.Topics[0], Data: log.Data}
	return &model.TypedEvent{
		ChainID:     log.ChainID,
		BlockNumber: log.BlockNumber,
		BlockHash:   log.BlockHash,
		TxHash:      log.TxHash,
		LogIndex:    log.LogIndex,
		Address:     log.Address,
		EventName:   name,
		Timestamp:   log.Timestamp,
		Decoded:     decoded,
		Raw:         raw,
	}
}

func (d *PoolManagerDecoder) decodeInitialize(log model.LogRecord) (model.InitializeEventData, error) {
	event := d.managerABI.Events[model.EventInitialize]
	var indexed struct {
		Id        [32]byte
		Currency0 common.Address
		Currency1 common.Address
	}
	if err := parseIndexed(event, log.Topics, &indexed); err != nil {
		return model.InitializeEventData{}, err
	}

	values, err := unpackNonIndexed(event, log.Data, 5)
	if err != nil {
		return model.InitializeEventData{}, err
	}
	fee, err := asUint24(values[0])
	if err != nil {
		return model.InitializeEventData{}, fmt.Errorf("fee: %w", err)
	}
	tickSpacing, err := asInt24(values[1])
	if err != nil {
		return model.InitializeEventData{}, fmt.Errorf("tick spacing: %w", err)
	}
	hooks, err := asAddress(values[2])
	if err != nil {
		return model.InitializeEventData{}, fmt.Errorf("hooks: %w", err)
	}
	sqrtPrice, err := asBigInt(values[3])
	if err != nil {
		return model.InitializeEventData{}, fmt.Errorf("sqrt price: %w", err)
	}
	tick, err := asInt24(values[4])
	if err != nil {
		return model.InitializeEventData{}, fmt.Errorf("tick: %w", err)
	}

	return model.InitializeEventData{
		PoolID:       hexutil.Encode(indexed.Id[:]),
		Currency0:    indexed.Currency0.Hex(),
		Currency1:    indexed.Currency1.Hex(),
		Fee:          fee,
		TickSpacing:  tickSpacing,
		Hooks:        hooks.Hex(),
		SqrtPriceX96: sqrtPrice.String(),
		Tick:         tick,
	}, nil
}

func (d *PoolManagerDecoder) decodeModifyLiquidity(log model.LogRecord) (model.ModifyLiquidityEventData, error) {
	event := d.managerABI.Events[model.EventModifyLiquidity]
	var indexed struct {
		Id     [32]byte
		Sender common.Address
	}
	if err := parseIndexed(event, log.Topics, &indexed); err != nil {
		return model.ModifyLiquidityEventData{}, err
	}

	values, err := unpackNonIndexed(event, log.Data, 4)
	if err != nil {
		return model.ModifyLiquidityEventData{}, err
	}
	tickLower, err := asInt24(values[0])
	if err != nil {
		return model.ModifyLiquidityEventData{}, fmt.Errorf("tick lower: %w", err)
	}
	tickUpper, err := asInt24(values[1])
	if err != nil {
		return model.ModifyLiquidityEventData{}, fmt.Errorf("tick upper: %w", err)
	}
	delta, err := asBigInt(values[2])
	if err != nil {
		return model.ModifyLiquidityEventData{}, fmt.Errorf("liquidity delta: %w", err)
	}
	salt, ok := values[3].([32]byte)
	if !ok {
		return model.ModifyLiquidityEventData{}, fmt.Errorf("salt: unsupported type %T", values[3])
	}

	return model.ModifyLiquidityEventData{
		PoolID:         hexutil.Encode(indexed.Id[:]),
		Sender:         indexed.Sender.Hex(),
		TickLower:      tickLower,
		TickUpper:      tickUpper,
		LiquidityDelta: delta.String(),
		Salt:           hexutil.Encode(salt[:]),
	}, nil
}

func (d *PoolManagerDecoder) decodeSwap(log model.LogRecord) (model.SwapEventData, error) {
	event := d.managerABI.Events[model.EventSwap]
	var indexed struct {
		Id     [32]byte
		Sender common.Address
	}
	if err := parseIndexed(event, log.Topics, &indexed); err != nil {
		return model.SwapEventData{}, err
	}

	values, err := unpackNonIndexed(event, log.Data, 6)
	if err != nil {
		return model.SwapEventData{}, err
	}
	ints := make([]*big.Int, 4)
	for i := range ints {
		if ints[i], err = asBigInt(values[i]); err != nil {
			return model.SwapEventData{}, fmt.Errorf("swap value %d: %w", i, err)
		}
	}
	tick, err := asInt24(values[4])
	if err != nil {
		return model.SwapEventData{}, fmt.Errorf("tick: %w", err)
	}
	fee, err := asUint24(values[5])
	if err != nil {
		return model.SwapEventData{}, fmt.Errorf("fee: %w", err)
	}

	return model.SwapEventData{
		PoolID:       hexutil.Encode(indexed.Id[:]),
		Sender:       indexed.Sender.Hex(),
		Amount0:      ints[0].String(),
		Amount1:      ints[1].String(),
		SqrtPriceX96: ints[2].String(),
		Liquidity:    ints[3].String(),
		Tick:         tick,
		Fee:          fee,
	}, nil
}

func (d *PoolManagerDecoder) decodeDonate(log model.LogRecord) (model.DonateEventData, error) {
	event := d.managerABI.Events[model.EventDonate]
	var indexed struct {
		Id     [32]byte
		Sender common.Address
	}
	if err := parseIndexed(event, log.Topics, &indexed); err != nil {
		return model.DonateEventData{}, err
	}

	values, err := unpackNonIndexed(event, log.Data, 2)
	if err != nil {
		return model.DonateEventData{}, err
	}
	amount0, err := asBigInt(values[0])
	if err != nil {
		return model.DonateEventData{}, err
	}
	amount1, err := asBigInt(values[1])
	if err != nil {
		return model.DonateEventData{}, err
	}

	return model.DonateEventData{
		PoolID:  hexutil.Encode(indexed.Id[:]),
		Sender:  indexed.Sender.Hex(),
		Amount0: amount0.String(),
		Amount1: amount1.String(),
	}, nil
}

func parseIndexed(event abi.Event, topics []string, out interface{}) error {
	args := indexedArguments(event.Inputs)
	if len(topics) != len(args)+1 {
		return fmt.Errorf("expected %d topics, got %d", len(args)+1, len(topics))
	}
	hashes, err := parseTopicHashes(topics[1:])
	if err != nil {
		return err
	}
	if err := abi.ParseTopics(out, args, hashes); err != nil {
		return fmt.Errorf("parse topics: %w", err)
	}
	return nil
}

func parseTopicHashes(topics []string) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(topics))
	for _, topic := range topics {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, fmt.Errorf("invalid topic: %w", err)
		}
		if len(data) > 32 {
			return nil, fmt.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

func unpackNonIndexed(event abi.Event, dataHex string, want int) ([]interface{}, error) {
	data, err := hexutil.Decode(dataHex)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	values, err := event.Inputs.NonIndexed().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", event.Name, err)
	}
	if len(values) != want {
		return nil, fmt.Errorf("unexpected %s values: %d", event.Name, len(values))
	}
	return values, nil
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asInt24(value interface{}) (int32, error) {
	v, err := asBigInt(value)
	if err != nil {
		return 0, err
	}
	return int24FromBig(v)
}

func asUint24(value interface{}) (uint32, error) {
	v, err := asBigInt(value)
	if err != nil {
		return 0, err
	}
	if v.Sign() < 0 || v.BitLen() > 24 {
		return 0, fmt.Errorf("uint24 overflow: %s", v.String())
	}
	return uint32(v.Uint64()), nil
}

func int24FromBig(value *big.Int) (int32, error) {
	min := big.NewInt(-1 << 23)
	max := big.NewInt((1 << 23) - 1)
	if value.Cmp(min) < 0 || value.Cmp(max) > 0 {
		return 0, fmt.Errorf("int24 overflow: %s", value.String())
	}
	return int32(value.Int64()), nil
}
