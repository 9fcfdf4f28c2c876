package model

import (
	"fmt"
	"strings"
)

// ZeroAddress is the native currency sentinel and the "no hooks" value.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// NormalizeAddress lowercases a hex address so keys are stable.
func NormalizeAddress(addr string) string {
	return strings.ToLower(addr)
}

// IsZeroAddress reports whether addr is empty or the zero address.
func IsZeroAddress(addr string) bool {
	return addr == "" || strings.EqualFold(addr, ZeroAddress)
}

func PoolKey(chainID uint64, poolID string) string {
	return fmt.Sprintf("%d_%s", chainID, strings.ToLower(poolID))
}

func TokenKey(chainID uint64, address string) string {
	return fmt.Sprintf("%d_%s", chainID, NormalizeAddress(address))
}

func HookKey(chainID uint64, address string) string {
	return fmt.Sprintf("%d_%s", chainID, NormalizeAddress(address))
}

func TickKey(poolKey string, tick int32) string {
	return fmt.Sprintf("%s#%d", poolKey, tick)
}

func PositionKey(poolKey, owner string, tickLower, tickUpper int32) string {
	return fmt.Sprintf("%s#%s#%d#%d", poolKey, NormalizeAddress(owner), tickLower, tickUpper)
}

func ProviderKey(poolKey, owner string) string {
	return fmt.Sprintf("%s#%s", poolKey, NormalizeAddress(owner))
}

func TransactionKey(chainID uint64, txHash string) string {
	return fmt.Sprintf("%d_%s", chainID, strings.ToLower(txHash))
}

func EventKey(chainID uint64, txHash string, logIndex uint64) string {
	return fmt.Sprintf("%d_%s_%d", chainID, strings.ToLower(txHash), logIndex)
}

// BucketKey identifies the bucket of entityKey starting at periodStart.
func BucketKey(entityKey string, period Period, periodStart uint64) string {
	return fmt.Sprintf("%s-%d-%d", entityKey, period, periodStart)
}
