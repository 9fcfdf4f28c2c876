package ledger

import "errors"

// Drop conditions. An event failing with one of these leaves the ledger
// unchanged and processing continues.
var (
	ErrPoolNotFound      = errors.New("pool not found")
	ErrTokenNotFound     = errors.New("token not found")
	ErrPoolExists        = errors.New("pool already initialized")
	ErrAlreadyApplied    = errors.New("event already applied")
	ErrNegativeLiquidity = errors.New("liquidity would become negative")
	ErrUnknownEvent      = errors.New("unknown event")
)

// IsDrop reports whether err drops the event instead of stopping processing.
func IsDrop(err error) bool {
	return errors.Is(err, ErrPoolNotFound) ||
		errors.Is(err, ErrTokenNotFound) ||
		errors.Is(err, ErrPoolExists) ||
		errors.Is(err, ErrNegativeLiquidity) ||
		errors.Is(err, ErrUnknownEvent)
}
