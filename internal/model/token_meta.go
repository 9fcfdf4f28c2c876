package model

// Placeholders used when a metadata field cannot be resolved.
const (
	UnknownName     = "unknown"
	UnknownSymbol   = "UNKNOWN"
	UnknownDecimals = 0
)

// TokenMeta captures ERC20 metadata.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
}

// UnknownTokenMeta returns placeholder metadata for address.
func UnknownTokenMeta(address string) TokenMeta {
	return TokenMeta{
		Address:  address,
		Decimals: UnknownDecimals,
		Symbol:   UnknownSymbol,
		Name:     UnknownName,
	}
}
