// Package source feeds typed event records to the ledger from a JSONL file
// or a NATS JetStream subject.
package source

import (
	"context"

	"liquidityLedger/internal/model"
)

// Handler consumes one record. A returned error stops the source.
type Handler func(ctx context.Context, record model.TypedEventRecord) error

// Source delivers records in stream order until exhausted or cancelled.
type Source interface {
	Run(ctx context.Context, handle Handler) error
}
