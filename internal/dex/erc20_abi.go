package dex

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Most tokens return string metadata; a few early ones return bytes32.
const erc20MetadataABITemplate = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "%[1]s"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "%[1]s"}], "stateMutability": "view", "type": "function"}
]`

type lazyABI struct {
	once   sync.Once
	parsed abi.ABI
	err    error
	text   string
}

func (l *lazyABI) get() (abi.ABI, error) {
	l.once.Do(func() {
		l.parsed, l.err = abi.JSON(strings.NewReader(fmt.Sprintf(erc20MetadataABITemplate, l.text)))
	})
	return l.parsed, l.err
}

var (
	erc20ABIString  = &lazyABI{text: "string"}
	erc20ABIBytes32 = &lazyABI{text: "bytes32"}
)

func erc20ABIStringInstance() (abi.ABI, error) {
	return erc20ABIString.get()
}

func erc20ABIBytes32Instance() (abi.ABI, error) {
	return erc20ABIBytes32.get()
}
