package ledger

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"liquidityLedger/internal/model"
)

// Kind names one of the pool manager events the ledger understands.
type Kind string

const (
	KindInitialize      Kind = model.EventInitialize
	KindModifyLiquidity Kind = model.EventModifyLiquidity
	KindSwap            Kind = model.EventSwap
	KindDonate          Kind = model.EventDonate
)

// Event is one pool event with its chain coordinates.
type Event struct {
	ChainID     uint64
	BlockNumber uint64
	Timestamp   uint64
	TxHash      string
	LogIndex    uint64
	PoolID      string
	Payload     Payload
}

// Payload is the kind-specific part of an event.
type Payload interface {
	Kind() Kind
}

type Initialize struct {
	Currency0   string
	Currency1   string
	Fee         uint32
	TickSpacing int32
	Hooks       string
	SqrtPrice   *big.Int
	Tick        int32
}

type ModifyLiquidity struct {
	Sender         string
	TickLower      int32
	TickUpper      int32
	LiquidityDelta *big.Int
	Salt           string
}

// Swap amounts are signed from the swapper's side: negative means the pool
// received the token.
type Swap struct {
	Sender    string
	Amount0   *big.Int
	Amount1   *big.Int
	SqrtPrice *big.Int
	Liquidity *big.Int
	Tick      int32
	Fee       uint32
}

type Donate struct {
	Sender  string
	Amount0 *big.Int
	Amount1 *big.Int
}

func (Initialize) Kind() Kind      { return KindInitialize }
func (ModifyLiquidity) Kind() Kind { return KindModifyLiquidity }
func (Swap) Kind() Kind            { return KindSwap }
func (Donate) Kind() Kind          { return KindDonate }

// Kind returns the payload kind, or "" when the event has no payload.
func (e Event) Kind() Kind {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.Kind()
}

// PoolKey returns the entity key of the event's pool.
func (e Event) PoolKey() string {
	return model.PoolKey(e.ChainID, e.PoolID)
}

// ParseEvent converts a decoded typed event record into an Event. Records of
// other event types return ErrUnknownEvent.
func ParseEvent(record model.TypedEventRecord) (Event, error) {
	ev := Event{
		ChainID:     record.ChainID,
		BlockNumber: record.BlockNumber,
		Timestamp:   record.Timestamp,
		TxHash:      strings.ToLower(record.TxHash),
		LogIndex:    record.LogIndex,
	}

	switch Kind(record.EventName) {
	case KindInitialize:
		var data model.InitializeEventData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return Event{}, fmt.Errorf("decode initialize: %w", err)
		}
		sqrtPrice, err := parseBigInt(data.SqrtPriceX96)
		if err != nil {
			return Event{}, fmt.Errorf("initialize sqrt price: %w", err)
		}
		ev.PoolID = data.PoolID
		ev.Payload = Initialize{
			Currency0:   model.NormalizeAddress(data.Currency0),
			Currency1:   model.NormalizeAddress(data.Currency1),
			Fee:         data.Fee,
			TickSpacing: data.TickSpacing,
			Hooks:       model.NormalizeAddress(data.Hooks),
			SqrtPrice:   sqrtPrice,
			Tick:        data.Tick,
		}
	case KindModifyLiquidity:
		var data model.ModifyLiquidityEventData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return Event{}, fmt.Errorf("decode modify liquidity: %w", err)
		}
		delta, err := parseBigInt(data.LiquidityDelta)
		if err != nil {
			return Event{}, fmt.Errorf("modify liquidity delta: %w", err)
		}
		ev.PoolID = data.PoolID
		ev.Payload = ModifyLiquidity{
			Sender:         model.NormalizeAddress(data.Sender),
			TickLower:      data.TickLower,
			TickUpper:      data.TickUpper,
			LiquidityDelta: delta,
			Salt:           data.Salt,
		}
	case KindSwap:
		var data model.SwapEventData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return Event{}, fmt.Errorf("decode swap: %w", err)
		}
		values, err := parseBigInts(data.Amount0, data.Amount1, data.SqrtPriceX96, data.Liquidity)
		if err != nil {
			return Event{}, fmt.Errorf("swap: %w", err)
		}
		ev.PoolID = data.PoolID
		ev.Payload = Swap{
			Sender:    model.NormalizeAddress(data.Sender),
			Amount0:   values[0],
			Amount1:   values[1],
			SqrtPrice: values[2],
			Liquidity: values[3],
			Tick:      data.Tick,
			Fee:       data.Fee,
		}
	case KindDonate:
		var data model.DonateEventData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return Event{}, fmt.Errorf("decode donate: %w", err)
		}
		values, err := parseBigInts(data.Amount0, data.Amount1)
		if err != nil {
			return Event{}, fmt.Errorf("donate: %w", err)
		}
		ev.PoolID = data.PoolID
		ev.Payload = Donate{
			Sender:  model.NormalizeAddress(data.Sender),
			Amount0: values[0],
			Amount1: values[1],
		}
	default:
		return Event{}, fmt.Errorf("%w: %s", ErrUnknownEvent, record.EventName)
	}

	if ev.PoolID == "" {
		return Event{}, fmt.Errorf("%s event without pool id", record.EventName)
	}
	ev.PoolID = strings.ToLower(ev.PoolID)
	return ev, nil
}

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return parsed, nil
}

func parseBigInts(values ...string) ([]*big.Int, error) {
	out := make([]*big.Int, len(values))
	for i, v := range values {
		parsed, err := parseBigInt(v)
		if err != nil {
			return nil, err
		}
		out[i] = parsed
	}
	return out, nil
}
