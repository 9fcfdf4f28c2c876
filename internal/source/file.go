package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"liquidityLedger/internal/model"
)

// File reads typed events from a JSONL file written by the decode command.
type File struct {
	Path   string
	Logger *zap.Logger
}

// Run streams every line of the file to handle. Lines that do not parse are
// logged and skipped.
func (f *File) Run(ctx context.Context, handle Handler) error {
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var lineNo, failed int
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var record model.TypedEventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			logger.Warn("decode typed event", zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		if err := handle(ctx, record); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	if failed > 0 {
		logger.Warn("typed event lines skipped", zap.Int("failed", failed))
	}
	return nil
}
