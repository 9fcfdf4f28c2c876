package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"liquidityLedger/internal/model"
)

// JSONLWriter writes one JSON document per line. It is safe for concurrent
// use; lines are never interleaved.
type JSONLWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	lines  int
}

// OpenJSONL opens path for writing, creating parent directories. With
// appendMode the file is extended, otherwise it is truncated.
func OpenJSONL(path string, appendMode bool) (*JSONLWriter, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &JSONLWriter{file: file, writer: bufio.NewWriter(file)}, nil
}

// Write appends value as a single line. Output is buffered until Flush.
func (w *JSONLWriter) Write(value interface{}) error {
	line, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writeLine(line)
}

func (w *JSONLWriter) writeLine(line []byte) error {
	if _, err := w.writer.Write(line); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	w.lines++
	return nil
}

// PutLogBatch writes a batch of raw logs and flushes it, so a cursor saved
// afterwards never points past data still sitting in the buffer.
func (w *JSONLWriter) PutLogBatch(logs []model.LogRecord) error {
	if len(logs) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, record := range logs {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal log record %s/%d: %w", record.TxHash, record.LogIndex, err)
		}
		if err := w.writeLine(line); err != nil {
			return err
		}
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func (w *JSONLWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writer.Flush()
}

// Lines reports how many lines were written since open.
func (w *JSONLWriter) Lines() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}

func (w *JSONLWriter) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

var _ Storage = (*JSONLWriter)(nil)
