package indexer

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"liquidityLedger/internal/chain"
)

// ParseFilter builds a log filter from address and topic0 strings. Blank
// entries are ignored and duplicates collapse.
func ParseFilter(addresses, topic0 []string) (chain.LogFilter, error) {
	var filter chain.LogFilter

	seenAddr := make(map[common.Address]struct{}, len(addresses))
	for _, input := range addresses {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !common.IsHexAddress(input) {
			return chain.LogFilter{}, fmt.Errorf("invalid address: %s", input)
		}
		addr := common.HexToAddress(input)
		if _, ok := seenAddr[addr]; ok {
			continue
		}
		seenAddr[addr] = struct{}{}
		filter.Addresses = append(filter.Addresses, addr)
	}
	if len(filter.Addresses) == 0 {
		return chain.LogFilter{}, fmt.Errorf("at least one address is required")
	}

	seenTopic := make(map[common.Hash]struct{}, len(topic0))
	for _, input := range topic0 {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		data, err := hexutil.Decode(input)
		if err != nil {
			return chain.LogFilter{}, fmt.Errorf("invalid topic0 %s: %w", input, err)
		}
		if len(data) != common.HashLength {
			return chain.LogFilter{}, fmt.Errorf("invalid topic0 length %d: %s", len(data), input)
		}
		topic := common.BytesToHash(data)
		if _, ok := seenTopic[topic]; ok {
			continue
		}
		seenTopic[topic] = struct{}{}
		filter.Topic0 = append(filter.Topic0, topic)
	}
	return filter, nil
}
