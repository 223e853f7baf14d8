package abstract

import (
	"github.com/XAbade/tap-sherpaan/types"
)

// Chunker groups the flattened record sequence into bounded batches. Pure
// buffering: no I/O, no retries, order preserving; chunk boundaries may fall
// mid-page.
type Chunker struct {
	size   int
	buffer []types.Record
}

func NewChunker(size int) *Chunker {
	return &Chunker{size: size, buffer: make([]types.Record, 0, size)}
}

// Add buffers one record and returns a completed chunk once size records are
// held, nil otherwise.
func (c *Chunker) Add(record types.Record) []types.Record {
	c.buffer = append(c.buffer, record)
	if len(c.buffer) < c.size {
		return nil
	}
	chunk := c.buffer
	c.buffer = make([]types.Record, 0, c.size)
	return chunk
}

// Drain hands out the final partial chunk, if any.
func (c *Chunker) Drain() []types.Record {
	if len(c.buffer) == 0 {
		return nil
	}
	chunk := c.buffer
	c.buffer = make([]types.Record, 0, c.size)
	return chunk
}
