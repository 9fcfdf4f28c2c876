package dex

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"liquidityLedger/internal/model"
)

// DecodeStats counts what DecodeLogs did with its input lines.
type DecodeStats struct {
	Total   int
	Decoded int
	Skipped int
	Failed  int
}

// DecodeLogs reads raw log records as JSON lines from r and hands each
// decoded event to emit. Lines that cannot be decoded go to fail; removed
// logs and foreign topics are skipped. An error from emit or fail stops the
// stream.
func DecodeLogs(
	ctx context.Context,
	r io.Reader,
	decoder Decoder,
	emit func(*model.TypedEvent) error,
	fail func(model.DecodeError) error,
) (DecodeStats, error) {
	var stats DecodeStats

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.Total++

		var record model.LogRecord
		if err := json.Unmarshal(line, &record); err != nil {
			stats.Failed++
			if err := fail(model.DecodeError{Error: err.Error()}); err != nil {
				return stats, err
			}
			continue
		}
		if record.Removed {
			stats.Skipped++
			continue
		}
		if record.Topic0() == "" {
			stats.Failed++
			if err := fail(decodeError(record, fmt.Errorf("missing topic0"))); err != nil {
				return stats, err
			}
			continue
		}
		if !decoder.CanDecode(record.Topic0()) {
			stats.Skipped++
			continue
		}

		event, err := decoder.Decode(record)
		if err != nil {
			stats.Failed++
			if err := fail(decodeError(record, err)); err != nil {
				return stats, err
			}
			continue
		}
		if err := emit(event); err != nil {
			return stats, err
		}
		stats.Decoded++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan input: %w", err)
	}
	return stats, nil
}

func decodeError(record model.LogRecord, err error) model.DecodeError {
	return model.DecodeError{
		ChainID:     record.ChainID,
		BlockNumber: record.BlockNumber,
		TxHash:      record.TxHash,
		LogIndex:    record.LogIndex,
		Address:     record.Address,
		Topic0:      record.Topic0(),
		Error:       err.Error(),
	}
}
