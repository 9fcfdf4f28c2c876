package indexer

import "fmt"

// BlockRange is an inclusive block range.
type BlockRange struct {
	From uint64
	To   uint64
}

// SafeHead returns the newest block at least confirmations deep below latest.
func SafeHead(latest, confirmations uint64) uint64 {
	if confirmations >= latest {
		return 0
	}
	return latest - confirmations
}

// blockWindow walks [from, to] in batches. Shrink halves the batch down to
// minSize when the node rejects a range; each completed batch doubles it back
// toward maxSize.
type blockWindow struct {
	next    uint64
	to      uint64
	size    uint64
	minSize uint64
	maxSize uint64
	done    bool
}

func newBlockWindow(from, to, size, minSize uint64) (*blockWindow, error) {
	if size == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block %d must be >= from block %d", to, from)
	}
	if minSize == 0 {
		minSize = 1
	}
	if minSize > size {
		minSize = size
	}
	return &blockWindow{next: from, to: to, size: size, minSize: minSize, maxSize: size}, nil
}

// Next returns the batch to fetch, or false once the window is exhausted.
func (w *blockWindow) Next() (BlockRange, bool) {
	if w.done {
		return BlockRange{}, false
	}
	end := w.next + w.size - 1
	if end < w.next || end > w.to {
		end = w.to
	}
	return BlockRange{From: w.next, To: end}, true
}

// Advance marks r as done.
func (w *blockWindow) Advance(r BlockRange) {
	if r.To >= w.to {
		w.done = true
		return
	}
	w.next = r.To + 1
	if w.size < w.maxSize {
		w.size *= 2
		if w.size > w.maxSize {
			w.size = w.maxSize
		}
	}
}

// Shrink halves the batch size. It reports false when already at minSize.
func (w *blockWindow) Shrink() bool {
	if w.size <= w.minSize {
		return false
	}
	w.size /= 2
	if w.size < w.minSize {
		w.size = w.minSize
	}
	return true
}

// Size returns the current batch size.
func (w *blockWindow) Size() uint64 {
	return w.size
}
