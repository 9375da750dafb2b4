package db

import (
	"fmt"
	"strings"
)

// maxHostParams is SQLite's default bound-parameter limit per statement.
const maxHostParams = 999

// ErrBatcherClosed is returned if rows are added after Close.
var ErrBatcherClosed = &BatcherError{"batcher closed"}

// BatcherError provides a simple typed error for batch operations.
type BatcherError struct{ msg string }

func (e *BatcherError) Error() string { return e.msg }

// Batcher streams rows into one table as fixed-size multi-row INSERTs so a
// whole-lexicon load stays inside a single transaction without building
// unbounded statements. It performs no asynchronous work: the caller owns
// the transaction and the commit.
type Batcher struct {
	ex     Executor
	prefix string
	tuple  string
	width  int
	size   int
	args   []interface{}
	rows   int
	closed bool
}

// NewBatcher creates a batcher inserting into table with the given columns.
// size is the row count per statement; it is clamped so one statement never
// exceeds SQLite's parameter limit.
func NewBatcher(ex Executor, table string, columns []string, size int) *Batcher {
	width := len(columns)
	if size <= 0 {
		size = 256
	}
	if size*width > maxHostParams {
		size = maxHostParams / width
	}
	return &Batcher{
		ex:     ex,
		prefix: fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", ")),
		tuple:  "(" + Placeholders(width) + ")",
		width:  width,
		size:   size,
		args:   make([]interface{}, 0, size*width),
	}
}

// Add buffers one row, flushing when the batch is full.
func (b *Batcher) Add(args ...interface{}) error {
	if b.closed {
		return ErrBatcherClosed
	}
	if len(args) != b.width {
		return fmt.Errorf("batcher: got %d values, want %d", len(args), b.width)
	}
	b.args = append(b.args, args...)
	b.rows++
	if b.rows >= b.size {
		return b.Flush()
	}
	return nil
}

// Flush writes any buffered rows.
func (b *Batcher) Flush() error {
	if b.rows == 0 {
		return nil
	}
	tuples := make([]string, b.rows)
	for i := range tuples {
		tuples[i] = b.tuple
	}
	_, err := b.ex.Exec(b.prefix+strings.Join(tuples, ","), b.args...)
	b.args = b.args[:0]
	b.rows = 0
	if err != nil {
		return fmt.Errorf("batch insert: %w", err)
	}
	return nil
}

// Close flushes remaining rows and rejects further adds.
func (b *Batcher) Close() error {
	if b.closed {
		return ErrBatcherClosed
	}
	b.closed = true
	return b.Flush()
}
