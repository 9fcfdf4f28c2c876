package indexer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/rpc"
)

// limitExceededCode is the JSON-RPC code nodes use for oversized log queries.
const limitExceededCode = -32005

var rangeLimitHints = []string{
	"query returned more than",
	"block range",
	"too many results",
	"response size",
	"limit exceeded",
}

// withRetry runs fn with exponential backoff, giving up after maxRetries
// retries or when ctx ends. Errors wrapped with backoff.Permanent stop at once.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, notify backoff.Notify, fn backoff.Operation) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = baseDelay
	policy.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(maxRetries)), ctx)
	return backoff.RetryNotify(fn, b, notify)
}

// isRangeTooLarge reports whether err means the node refused the block range
// rather than failed transiently.
func isRangeTooLarge(err error) bool {
	if err == nil {
		return false
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == limitExceededCode {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range rangeLimitHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
